package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var linePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3} - ([^ ]+) - (DEBUG|INFO|WARNING|ERROR|CRITICAL) - (.*)$`)

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func newTestSink(t *testing.T, path string, opts ...Option) (*LogSink, *bytes.Buffer) {
	t.Helper()
	console := &bytes.Buffer{}
	opts = append([]Option{WithConsoleWriter(console)}, opts...)
	sink, err := NewProvisioner(nil).Provision("svc", path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink, console
}

func TestSinkLineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, console := newTestSink(t, path)

	require.NoError(t, sink.Warning("disk almost full"))

	fileLines := lines(readFile(t, path))
	require.Len(t, fileLines, 1)
	match := linePattern.FindStringSubmatch(fileLines[0])
	require.NotNil(t, match, fileLines[0])
	assert.Equal(t, "svc", match[1])
	assert.Equal(t, "WARNING", match[2])
	assert.Equal(t, "disk almost full", match[3])

	assert.Equal(t, readFile(t, path), console.String())
}

func TestSinkCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "app.log")
	sink, _ := newTestSink(t, path)

	assert.DirExists(t, filepath.Dir(path))
	assert.FileExists(t, path)
	assert.Equal(t, path, sink.FilePath())
}

func TestSinkLevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, console := newTestSink(t, path, WithLevel(WARNING))

	require.NoError(t, sink.Debug("d"))
	require.NoError(t, sink.Info("i"))
	require.NoError(t, sink.Warning("w"))
	require.NoError(t, sink.Error("e"))
	require.NoError(t, sink.Critical("c"))

	fileLines := lines(readFile(t, path))
	consoleLines := lines(console.String())
	require.Len(t, fileLines, 3)
	require.Len(t, consoleLines, 3)

	var levels []string
	for _, line := range fileLines {
		levels = append(levels, linePattern.FindStringSubmatch(line)[2])
	}
	assert.Equal(t, []string{"WARNING", "ERROR", "CRITICAL"}, levels)
	assert.False(t, sink.Enabled(INFO))
	assert.True(t, sink.Enabled(CRITICAL))
}

func TestSinkDebugDroppedAtInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, console := newTestSink(t, path)

	require.NoError(t, sink.Debug("x"))
	require.NoError(t, sink.Debugf("x %d", 1))

	assert.Empty(t, readFile(t, path))
	assert.Empty(t, console.String())
}

func TestSinkRotationScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	sink, console := newTestSink(t, path, WithLevel(INFO), WithMaxFileSize(100), WithBackupCount(2))

	// each line is 23 (timestamp) + 3 + 3 (svc) + 3 + 4 (INFO) + 3 + 10 + 1 = 50 bytes
	for _, msg := range []string{"message-01", "message-02", "message-03"} {
		require.NoError(t, sink.Info(msg))
	}

	active := lines(readFile(t, path))
	require.Len(t, active, 1)
	assert.True(t, strings.HasSuffix(active[0], " - message-03"))

	backup := lines(readFile(t, path+".1"))
	require.Len(t, backup, 2)
	assert.True(t, strings.HasSuffix(backup[0], " - message-01"))
	assert.True(t, strings.HasSuffix(backup[1], " - message-02"))
	assert.NoFileExists(t, path+".2")

	assert.Len(t, lines(console.String()), 3)
}

func TestSinkFormattedHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, _ := newTestSink(t, path, WithLevel(DEBUG))

	require.NoError(t, sink.Debugf("a=%d", 1))
	require.NoError(t, sink.Infof("b=%s", "two"))
	require.NoError(t, sink.Warningf("c=%v", true))
	require.NoError(t, sink.Errorf("d=%.1f", 1.5))
	require.NoError(t, sink.Criticalf("e=%q", "x"))

	var msgs []string
	for _, line := range lines(readFile(t, path)) {
		msgs = append(msgs, linePattern.FindStringSubmatch(line)[3])
	}
	assert.Equal(t, []string{"a=1", "b=two", "c=true", "d=1.5", `e="x"`}, msgs)
}

type failingWriter struct{}

var errConsoleBroken = errors.New("console broken")

func (failingWriter) Write([]byte) (int, error) { return 0, errConsoleBroken }

func TestSinkWriteErrorsAreReturned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, err := NewProvisioner(nil).Provision("svc", path, WithConsoleWriter(failingWriter{}))
	require.NoError(t, err)
	defer sink.Close()

	err = sink.Error("boom")
	require.ErrorIs(t, err, errConsoleBroken)

	// the file destination still received the record
	fileLines := lines(readFile(t, path))
	require.Len(t, fileLines, 1)
	assert.True(t, strings.HasSuffix(fileLines[0], " - ERROR - boom"))
}

func TestSinkFileWriteErrorsAreReturned(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.log")
	console := &bytes.Buffer{}
	sink, err := NewProvisioner(nil, WithMetrics(m)).Provision("svc", path, WithConsoleWriter(console))
	require.NoError(t, err)
	defer sink.Close()

	w, ok := sink.file.(*sizeRotatingWriter)
	require.True(t, ok)
	require.NoError(t, w.file.Close())

	err = sink.Warning("disk gone")
	require.ErrorIs(t, err, os.ErrClosed)

	// the console destination still received the record
	consoleLines := lines(console.String())
	require.Len(t, consoleLines, 1)
	assert.True(t, strings.HasSuffix(consoleLines[0], " - WARNING - disk gone"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.writeErrors.WithLabelValues("svc")))
}

func TestSinkClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, _ := newTestSink(t, path)

	require.NoError(t, sink.HealthCheck())
	require.NoError(t, sink.Close())

	require.ErrorIs(t, sink.Info("late"), ErrSinkClosed)
	require.Error(t, sink.HealthCheck())
	assert.False(t, sink.IsActive())
	assert.NoError(t, sink.Sync())
}

func TestSinkConfigurationErrorOnBadDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	_, err := NewProvisioner(nil).Provision("svc", filepath.Join(blocker, "sub", "app.log"))
	require.ErrorIs(t, err, ErrConfiguration)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "svc", cfgErr.Sink)
}

func TestSinkRejectsInvalidParameters(t *testing.T) {
	dir := t.TempDir()
	p := NewProvisioner(nil)

	_, err := p.Provision("", filepath.Join(dir, "a.log"))
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = p.Provision("svc", filepath.Join(dir, "a.log"), WithMaxFileSize(-1))
	require.ErrorIs(t, err, ErrConfiguration)

	_, err = p.Provision("svc", filepath.Join(dir, "a.log"), WithMaxFileSize(0))
	require.ErrorIs(t, err, ErrConfiguration)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "max_file_size_bytes", cfgErr.Field)

	_, err = p.Provision("svc", filepath.Join(dir, "a.log"), WithLevel(Level(0)))
	require.ErrorIs(t, err, ErrConfiguration)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "level", cfgErr.Field)

	_, err = p.Provision("svc", filepath.Join(dir, "a.log"), WithBackupCount(-3))
	require.ErrorIs(t, err, ErrConfiguration)

	assert.Empty(t, p.Sinks())
}

func TestSinkZapLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, console := newTestSink(t, path)

	sink.Zap().Info("via zap")
	sink.Zap().Debug("dropped")

	fileLines := lines(readFile(t, path))
	require.Len(t, fileLines, 1)
	assert.True(t, strings.HasSuffix(fileLines[0], " - svc - INFO - via zap"))
	assert.Equal(t, readFile(t, path), console.String())

	require.NoError(t, sink.Close())
	assert.NotPanics(t, func() { sink.Zap().Info("after close", zap.Int("n", 1)) })
}

func TestSinkTimestampedLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, _ := newTestSink(t, path, WithLayout("timestamped"), WithMaxFileSize(3*1024*1024+1), WithBackupCount(3))

	require.NoError(t, sink.Info("hello"))
	require.NoError(t, sink.Sync())

	fileLines := lines(readFile(t, path))
	require.Len(t, fileLines, 1)
	assert.True(t, strings.HasSuffix(fileLines[0], " - INFO - hello"))

	lj, ok := sink.file.(*lumberjackWriter)
	require.True(t, ok)
	assert.Equal(t, 4, lj.MaxSize)
	assert.Equal(t, 3, lj.MaxBackups)
}
