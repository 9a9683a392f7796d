package logsink

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/prometheus"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/hooks"
)

func writeAppConfig(t *testing.T, dir string, metrics bool) string {
	t.Helper()
	content := fmt.Sprintf(`
app_info:
  app_name: svc
logging:
  sinks:
    - name: svc
      file_path: %s
      console: none
    - name: audit
      file_path: %s
      level: error
      console: none
metrics:
  enabled: %t
  address: 127.0.0.1:0
  collect_go_metrics: false
  collect_process: false
`, filepath.Join(dir, "logs", "app.log"), filepath.Join(dir, "audit", "audit.log"), metrics)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApp(t *testing.T, metrics bool) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	app := NewApp(consts.ENV_TEST, writeAppConfig(t, dir, metrics))
	app.ConfigManager().Loader().SetEnvironment(map[string]string{})
	app.SetShutdownTimeout(5 * time.Second)
	return app, dir
}

func TestAppProvisionsConfiguredSinks(t *testing.T) {
	app, dir := newTestApp(t, false)
	require.NoError(t, app.Start(context.Background()))
	defer app.Shutdown(context.Background())

	assert.DirExists(t, filepath.Join(dir, "logs"))
	assert.DirExists(t, filepath.Join(dir, "audit"))

	svc, err := app.Sink("svc")
	require.NoError(t, err)
	require.NoError(t, svc.Info("ready"))

	audit, err := app.Sink("audit")
	require.NoError(t, err)
	require.NoError(t, audit.Warning("dropped"))
	require.NoError(t, audit.Error("kept"))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "app.log"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), " - svc - INFO - ready\n"), string(data))
	assert.Contains(t, string(data), " - svc - INFO - application started")

	data, err = os.ReadFile(filepath.Join(dir, "audit", "audit.log"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), " - audit - ERROR - kept")

	_, err = app.GetComponent(consts.COMPONENT_PROMETHEUS)
	require.Error(t, err)
}

func TestAppShutdownClosesSinks(t *testing.T) {
	app, _ := newTestApp(t, false)
	require.NoError(t, app.Start(context.Background()))

	svc, err := app.Sink("svc")
	require.NoError(t, err)

	app.Shutdown(context.Background())
	assert.False(t, svc.IsActive())
	assert.Error(t, svc.Info("late"))
}

func TestAppServesMetrics(t *testing.T) {
	app, _ := newTestApp(t, true)
	require.NoError(t, app.Start(context.Background()))
	defer app.Shutdown(context.Background())

	svc, err := app.Sink("svc")
	require.NoError(t, err)
	require.NoError(t, svc.Info("counted"))

	comp, err := app.GetComponent(consts.COMPONENT_PROMETHEUS)
	require.NoError(t, err)
	exporter := comp.(*prometheus.Component)
	require.NotNil(t, exporter.Addr())

	resp, err := http.Get("http://" + exporter.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `logsink_records_total{level="INFO",sink="svc"} 1`)
}

func TestAppRunWithContext(t *testing.T) {
	app, _ := newTestApp(t, false)
	require.NoError(t, app.Boot())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunWithContext(ctx) }()

	require.Eventually(t, func() bool {
		sink, err := app.Sink("svc")
		return err == nil && sink.IsActive()
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunWithContext did not return after cancel")
	}
}

func TestAppCustomHooks(t *testing.T) {
	app, _ := newTestApp(t, false)
	require.NoError(t, app.Boot())

	var phases []hooks.Phase
	for _, phase := range []hooks.Phase{hooks.AfterStart, hooks.AfterShutdown} {
		phase := phase
		require.NoError(t, app.AddHook("record_"+string(phase), phase, func(context.Context) error {
			phases = append(phases, phase)
			return nil
		}, 1))
	}
	require.Error(t, app.AddHook("log_started", hooks.AfterStart, func(context.Context) error { return nil }, 1))

	require.NoError(t, app.Start(context.Background()))
	app.Shutdown(context.Background())
	assert.Equal(t, []hooks.Phase{hooks.AfterStart, hooks.AfterShutdown}, phases)
}

func TestAppBootFailsOnMissingConfig(t *testing.T) {
	app := NewApp(consts.ENV_TEST, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, app.Boot())
	require.Error(t, app.Start(context.Background()))
	_, err := app.Sink("svc")
	require.Error(t, err)
}
