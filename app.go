package logsink

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/logging"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/prometheus"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/config"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/core"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/hooks"
)

// App 根据配置文件创建全部 sink, 并统一管理启动与关闭
type App struct {
	container        *core.Container
	lifecycleManager *core.LifecycleManager
	configManager    *config.ConfigManager
	provisioner      *logging.Provisioner
	registry         *promclient.Registry

	bootOnce sync.Once
	bootErr  error

	shutdownTimeout time.Duration
}

func NewApp(env string, configPath string) *App {
	abs := configPath
	if p, err := filepath.Abs(configPath); err == nil {
		abs = p
	}
	container := core.NewContainer()
	return &App{
		configManager:    config.NewConfigManager(env, abs),
		container:        container,
		lifecycleManager: core.NewLifecycleManager(container, nil),
		registry:         promclient.NewRegistry(),
		shutdownTimeout:  30 * time.Second,
	}
}

// SetShutdownTimeout allows customizing graceful shutdown timeout.
func (app *App) SetShutdownTimeout(d time.Duration) {
	app.shutdownTimeout = d
	app.lifecycleManager.SetTimeout(d)
}

// ConfigManager exposes the config manager, e.g. to inject environment overrides before boot.
func (app *App) ConfigManager() *config.ConfigManager { return app.configManager }

// Boot loads the config and provisions every configured sink. It runs once;
// later calls return the first result.
func (app *App) Boot() error {
	app.bootOnce.Do(func() {
		if err := app.configManager.LoadConfig(); err != nil {
			app.bootErr = fmt.Errorf("load config failed: %w", err)
			return
		}
		if err := app.registerComponents(); err != nil {
			app.bootErr = fmt.Errorf("register components failed: %w", err)
			return
		}
	})
	return app.bootErr
}

func (app *App) registerComponents() error {
	cfg := app.configManager.GetConfig()
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}

	metrics, err := logging.NewMetrics(app.registry)
	if err != nil {
		return err
	}
	app.provisioner = logging.NewProvisioner(app.container, logging.WithMetrics(metrics))

	var sinkKeys []string
	if cfg.Logging != nil {
		for _, sinkCfg := range cfg.Logging.Sinks {
			if _, err := app.provisioner.ProvisionConfig(sinkCfg); err != nil {
				_ = app.provisioner.Close()
				return err
			}
			sinkKeys = append(sinkKeys, consts.SinkComponentName(sinkCfg.Name))
		}
	}
	log := app.frameworkLogger(cfg)
	app.lifecycleManager.SetLogger(log)
	if err := app.registerDefaultHooks(log); err != nil {
		return err
	}

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		comp, err := prometheus.NewFactory(app.registry, log).Create(cfg.Metrics)
		if err != nil {
			return err
		}
		// 先于 sink 关闭
		comp.(*prometheus.Component).AddDependencies(sinkKeys...)
		if err := app.container.Register(consts.COMPONENT_PROMETHEUS, comp); err != nil {
			return err
		}
	}
	return nil
}

// registerDefaultHooks 启动/关闭时记录日志, 关闭前刷新所有 sink
func (app *App) registerDefaultHooks(log *zap.Logger) error {
	announce := func(msg string) hooks.HookFunc {
		return func(ctx context.Context) error {
			log.Info(msg, zap.Int("sinks", len(app.provisioner.Sinks())))
			return nil
		}
	}
	flush := func(ctx context.Context) error {
		var err error
		for _, sink := range app.provisioner.Sinks() {
			err = multierr.Append(err, sink.Sync())
		}
		return err
	}

	return multierr.Combine(
		app.lifecycleManager.AddHook("log_startup", hooks.BeforeStart, announce("application is starting"), 100),
		app.lifecycleManager.AddHook("log_started", hooks.AfterStart, announce("application started"), 100),
		app.lifecycleManager.AddHook("log_shutdown", hooks.BeforeShutdown, announce("application is shutting down"), 100),
		app.lifecycleManager.AddHook("flush_sinks", hooks.BeforeShutdown, flush, 200),
	)
}

// AddHook 注册自定义生命周期钩子, 需在 Start 之前调用
func (app *App) AddHook(name string, phase hooks.Phase, fn hooks.HookFunc, priority int) error {
	return app.lifecycleManager.AddHook(name, phase, fn, priority)
}

// frameworkLogger 选择与应用同名的 sink, 否则使用第一个 sink
func (app *App) frameworkLogger(cfg *config.AppConfig) *zap.Logger {
	if cfg.APPInfo != nil && cfg.APPInfo.APPName != "" {
		if sink, err := app.provisioner.Sink(cfg.APPInfo.APPName); err == nil {
			return sink.Zap()
		}
	}
	if sinks := app.provisioner.Sinks(); len(sinks) > 0 {
		return sinks[0].Zap()
	}
	return zap.NewNop()
}

// Provisioner returns the provisioner holding the configured sinks; nil before Boot.
func (app *App) Provisioner() *logging.Provisioner { return app.provisioner }

// Sink 按名称获取已配置的 sink
func (app *App) Sink(name string) (*logging.LogSink, error) {
	if app.provisioner == nil {
		return nil, fmt.Errorf("app not booted")
	}
	return app.provisioner.Sink(name)
}

func (app *App) GetComponent(name string) (core.Component, error) {
	return app.container.Resolve(name)
}

func (app *App) GetConfig() *config.AppConfig {
	return app.configManager.GetConfig()
}

// Registry returns the prometheus registry the sink metrics live in.
func (app *App) Registry() *promclient.Registry { return app.registry }

// Run 监听 SIGINT/SIGTERM, 收到信号后优雅关闭
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunWithContext(ctx)
}

// Start boots the app and starts every component.
func (app *App) Start(ctx context.Context) error {
	if err := app.Boot(); err != nil {
		return err
	}
	return app.lifecycleManager.StartAll(ctx)
}

// RunWithContext starts components and blocks until context done,
// then performs graceful shutdown.
func (app *App) RunWithContext(ctx context.Context) error {
	if err := app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
	defer cancel()
	app.Shutdown(shutdownCtx)
	return nil
}

func (app *App) Shutdown(ctx context.Context) {
	app.lifecycleManager.StopAll(ctx)
}
