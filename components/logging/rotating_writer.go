// components/logging/rotating_writer.go
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var errWriterClosed = errors.New("log file writer is closed")

// fileWriter is the file destination of a sink.
type fileWriter interface {
	zapcore.WriteSyncer
	io.Closer
}

// sizeRotatingWriter 按大小轮转, 备份文件为 <path>.1 ... <path>.N, .1 最新.
// "检查大小 -> 轮转 -> 写入" 在同一把锁内完成, 并发写入不会交错或竞争轮转.
type sizeRotatingWriter struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	backupCount int
	onRotate    func()

	file *os.File
	size int64
}

func newSizeRotatingWriter(path string, maxBytes int64, backupCount int, onRotate func()) (*sizeRotatingWriter, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("invalid max file size: %d", maxBytes)
	}
	w := &sizeRotatingWriter{
		path:        path,
		maxBytes:    maxBytes,
		backupCount: backupCount,
		onRotate:    onRotate,
	}
	if err := w.openLocked(false); err != nil {
		return nil, err
	}
	return w, nil
}

// backupPath returns <path>.<index>.
func (w *sizeRotatingWriter) backupPath(index int) string {
	return w.path + "." + strconv.Itoa(index)
}

func (w *sizeRotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, errWriterClosed
	}

	var rotateErr error
	if w.size > 0 && w.size+int64(len(p)) > w.maxBytes {
		rotateErr = w.rotateLocked()
		if w.file == nil {
			return 0, rotateErr
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, multierr.Append(rotateErr, err)
}

func (w *sizeRotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *sizeRotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := multierr.Append(w.file.Sync(), w.file.Close())
	w.file = nil
	return err
}

// Rotate forces a rotation regardless of the current size.
func (w *sizeRotatingWriter) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return errWriterClosed
	}
	return w.rotateLocked()
}

// rotateLocked closes the active file, shifts backups and opens a fresh file.
// When shifting fails the active file is reopened for append so records that
// were already flushed stay where they are.
func (w *sizeRotatingWriter) rotateLocked() error {
	closeErr := multierr.Append(w.file.Sync(), w.file.Close())
	w.file = nil

	var shiftErr error
	truncate := false
	if w.backupCount > 0 {
		shiftErr = w.shiftBackupsLocked()
	} else {
		truncate = true
	}

	openErr := w.openLocked(truncate && shiftErr == nil)
	err := multierr.Combine(closeErr, shiftErr, openErr)
	if shiftErr == nil && openErr == nil && w.onRotate != nil {
		w.onRotate()
	}
	if err != nil {
		return fmt.Errorf("rotate %s: %w", w.path, err)
	}
	return nil
}

func (w *sizeRotatingWriter) shiftBackupsLocked() error {
	oldest := w.backupPath(w.backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove oldest backup: %w", err)
	}
	for i := w.backupCount - 1; i >= 1; i-- {
		src := w.backupPath(i)
		if _, err := os.Stat(src); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		if err := os.Rename(src, w.backupPath(i+1)); err != nil {
			return fmt.Errorf("shift backup %d: %w", i, err)
		}
	}
	if err := os.Rename(w.path, w.backupPath(1)); err != nil {
		return fmt.Errorf("archive active file: %w", err)
	}
	return nil
}

func (w *sizeRotatingWriter) openLocked(truncate bool) error {
	flag := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flag |= os.O_TRUNC
	}
	f, err := os.OpenFile(w.path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

// lumberjackWriter 时间戳命名的轮转, 交给 lumberjack 处理
type lumberjackWriter struct {
	*lumberjack.Logger
}

func newLumberjackWriter(cfg *LoggerConfig) *lumberjackWriter {
	const mib = 1024 * 1024
	maxMB := int((cfg.MaxFileSizeBytes + mib - 1) / mib)
	if maxMB < 1 {
		maxMB = 1
	}
	return &lumberjackWriter{Logger: &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    maxMB,
		MaxBackups: cfg.BackupCount,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}}
}

// Sync is a no-op: lumberjack writes straight to the file without buffering.
func (w *lumberjackWriter) Sync() error { return nil }
