// components/logging/sink.go
package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/core"
)

// ErrSinkClosed is returned by writes on a sink that is not started.
var ErrSinkClosed = errors.New("log sink is closed")

// LogSink 日志 sink 组件: 每条记录同时写入轮转文件和控制台
type LogSink struct {
	*core.BaseComponent
	config  *LoggerConfig
	metrics *Metrics
	console zapcore.WriteSyncer

	mu        sync.RWMutex
	file      fileWriter
	core      zapcore.Core
	zapLogger *zap.Logger
}

// NewLogSink 创建 sink 组件; 需要调用 Start 后才能写入
func NewLogSink(cfg *LoggerConfig, metrics *Metrics) *LogSink {
	return &LogSink{
		BaseComponent: core.NewBaseComponent(consts.SinkComponentName(cfg.Name)),
		config:        cfg,
		metrics:       metrics,
	}
}

// setConsole overrides the console destination chosen by config.Console.
func (s *LogSink) setConsole(ws zapcore.WriteSyncer) {
	s.console = ws
}

// Start 创建日志目录, 打开文件并构建 zap core
func (s *LogSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.core != nil {
		return nil
	}

	dir := filepath.Dir(s.config.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return configError(s.config.Name, "", fmt.Errorf("failed to create log directory: %w", err))
	}

	file, err := s.buildFileWriter()
	if err != nil {
		return configError(s.config.Name, "", err)
	}

	level := s.config.Level.zapLevel()
	encoder := buildEncoder(s.config.Name)
	cores := []zapcore.Core{zapcore.NewCore(encoder, file, level)}
	if console := s.consoleWriteSyncer(); console != nil {
		cores = append(cores, zapcore.NewCore(encoder.Clone(), console, level))
	}

	s.file = file
	s.core = zapcore.NewTee(cores...)
	s.zapLogger = zap.New(s.core).Named(s.config.Name)

	return s.BaseComponent.Start(ctx)
}

// Stop 同步并关闭文件, 之后的写入返回 ErrSinkClosed
func (s *LogSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.file != nil {
		err = s.file.Close()
	}
	s.file = nil
	s.core = nil
	s.zapLogger = nil

	if stopErr := s.BaseComponent.Stop(ctx); stopErr != nil {
		return stopErr
	}
	if err != nil {
		return fmt.Errorf("close log sink %s: %w", s.config.Name, err)
	}
	return nil
}

// Close is Stop without a context.
func (s *LogSink) Close() error {
	return s.Stop(context.Background())
}

// HealthCheck 健康检查
func (s *LogSink) HealthCheck() error {
	if err := s.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.core == nil {
		return fmt.Errorf("log sink %s is not initialized", s.config.Name)
	}
	return nil
}

func (s *LogSink) buildFileWriter() (fileWriter, error) {
	if s.config.Layout == consts.LAYOUT_TIMESTAMPED {
		return newLumberjackWriter(s.config), nil
	}
	name := s.config.Name
	return newSizeRotatingWriter(s.config.FilePath, s.config.MaxFileSizeBytes, s.config.BackupCount, func() {
		s.metrics.observeRotation(name)
	})
}

func (s *LogSink) consoleWriteSyncer() zapcore.WriteSyncer {
	if s.console != nil {
		return s.console
	}
	switch s.config.Console {
	case consts.CONSOLE_STDOUT:
		return zapcore.Lock(os.Stdout)
	case consts.CONSOLE_NONE:
		return nil
	default:
		return zapcore.Lock(os.Stderr)
	}
}

// SinkName 返回 sink 名称 (不带容器前缀)
func (s *LogSink) SinkName() string { return s.config.Name }

// Level 返回最低输出级别
func (s *LogSink) Level() Level { return s.config.Level }

// FilePath 返回当前活动日志文件路径
func (s *LogSink) FilePath() string { return s.config.FilePath }

// Config returns a copy of the sink configuration.
func (s *LogSink) Config() LoggerConfig { return *s.config }

// Enabled reports whether records at level pass the threshold.
func (s *LogSink) Enabled(level Level) bool {
	return level >= s.config.Level
}

func (s *LogSink) Debug(msg string) error    { return s.Log(DEBUG, msg) }
func (s *LogSink) Info(msg string) error     { return s.Log(INFO, msg) }
func (s *LogSink) Warning(msg string) error  { return s.Log(WARNING, msg) }
func (s *LogSink) Error(msg string) error    { return s.Log(ERROR, msg) }
func (s *LogSink) Critical(msg string) error { return s.Log(CRITICAL, msg) }

func (s *LogSink) Debugf(format string, args ...interface{}) error {
	return s.logf(DEBUG, format, args...)
}
func (s *LogSink) Infof(format string, args ...interface{}) error {
	return s.logf(INFO, format, args...)
}
func (s *LogSink) Warningf(format string, args ...interface{}) error {
	return s.logf(WARNING, format, args...)
}
func (s *LogSink) Errorf(format string, args ...interface{}) error {
	return s.logf(ERROR, format, args...)
}
func (s *LogSink) Criticalf(format string, args ...interface{}) error {
	return s.logf(CRITICAL, format, args...)
}

func (s *LogSink) logf(level Level, format string, args ...interface{}) error {
	if !s.Enabled(level) {
		return nil
	}
	return s.Log(level, fmt.Sprintf(format, args...))
}

// Log writes msg at level to every destination. Records below the sink level
// are dropped. The returned error aggregates the destinations that failed;
// the others still receive the record.
func (s *LogSink) Log(level Level, msg string) error {
	if !level.Valid() {
		return fmt.Errorf("log sink %s: unknown level %d", s.config.Name, int8(level))
	}
	if !s.Enabled(level) {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.core == nil {
		return ErrSinkClosed
	}

	err := s.core.Write(zapcore.Entry{
		LoggerName: s.config.Name,
		Time:       time.Now(),
		Level:      level.zapLevel(),
		Message:    msg,
	}, nil)
	s.metrics.observeRecord(s.config.Name, level, err)
	if err != nil {
		return fmt.Errorf("log sink %s: %w", s.config.Name, err)
	}
	return nil
}

// Sync 刷新文件缓冲; 控制台不做 sync
func (s *LogSink) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

// Zap 返回写入同一组目标的 *zap.Logger; sink 未启动时返回 no-op logger
func (s *LogSink) Zap() *zap.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.zapLogger == nil {
		return zap.NewNop()
	}
	return s.zapLogger
}
