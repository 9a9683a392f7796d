// components/logging/provisioner.go
package logging

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/core"
)

// Provisioner hands out named sinks backed by a container. Provisioning a name
// that is already registered returns the registered sink; it never adds a
// second set of output destinations.
type Provisioner struct {
	container *core.Container
	factory   *Factory
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithMetrics attaches prometheus counters to every sink the provisioner creates.
func WithMetrics(m *Metrics) ProvisionerOption {
	return func(p *Provisioner) { p.factory = NewFactory(m) }
}

// NewProvisioner 创建 Provisioner; container 为 nil 时新建一个
func NewProvisioner(container *core.Container, opts ...ProvisionerOption) *Provisioner {
	if container == nil {
		container = core.NewContainer()
	}
	p := &Provisioner{
		container: container,
		factory:   NewFactory(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Container 返回底层容器
func (p *Provisioner) Container() *core.Container { return p.container }

// Option adjusts a single Provision call.
type Option func(*provisionSettings)

type provisionSettings struct {
	cfg     *LoggerConfig
	console zapcore.WriteSyncer
}

func WithLevel(level Level) Option {
	return func(s *provisionSettings) { s.cfg.Level = level }
}

func WithMaxFileSize(bytes int64) Option {
	return func(s *provisionSettings) { s.cfg.MaxFileSizeBytes = bytes }
}

func WithBackupCount(n int) Option {
	return func(s *provisionSettings) { s.cfg.BackupCount = n }
}

// WithConsole selects the console destination: "stderr", "stdout" or "none".
func WithConsole(console string) Option {
	return func(s *provisionSettings) { s.cfg.Console = console }
}

// WithConsoleWriter sends console output to w instead of a standard stream.
func WithConsoleWriter(w io.Writer) Option {
	return func(s *provisionSettings) {
		if w == nil {
			return
		}
		s.console = zapcore.Lock(zapcore.AddSync(w))
	}
}

// WithLayout selects the backup naming: "numbered" or "timestamped".
func WithLayout(layout string) Option {
	return func(s *provisionSettings) { s.cfg.Layout = layout }
}

// WithCompress gzips timestamped backups.
func WithCompress(compress bool) Option {
	return func(s *provisionSettings) { s.cfg.Compress = compress }
}

// Provision returns the sink registered under name, creating it when absent.
// Defaults: INFO, 5 MiB, 5 backups. The log directory is created if missing;
// failures are reported as *ConfigurationError.
func (p *Provisioner) Provision(name, filePath string, opts ...Option) (*LogSink, error) {
	settings := &provisionSettings{cfg: NewLoggerConfig(name, filePath)}
	for _, opt := range opts {
		opt(settings)
	}
	return p.provision(settings)
}

// ProvisionConfig is Provision driven by a LoggerConfig. Start from
// NewLoggerConfig: a zero Level or MaxFileSizeBytes is rejected, not defaulted.
func (p *Provisioner) ProvisionConfig(cfg *LoggerConfig, opts ...Option) (*LogSink, error) {
	if cfg == nil {
		return nil, configError("", "", fmt.Errorf("nil logger config"))
	}
	c := *cfg
	settings := &provisionSettings{cfg: &c}
	for _, opt := range opts {
		opt(settings)
	}
	return p.provision(settings)
}

func (p *Provisioner) provision(settings *provisionSettings) (*LogSink, error) {
	name := settings.cfg.Name
	if strings.TrimSpace(name) == "" {
		return nil, configError(name, "name", fmt.Errorf("must not be empty"))
	}

	comp, _, err := p.container.ResolveOrRegister(consts.SinkComponentName(name), func() (core.Component, error) {
		comp, err := p.factory.Create(settings.cfg)
		if err != nil {
			return nil, err
		}
		sink := comp.(*LogSink)
		if settings.console != nil {
			sink.setConsole(settings.console)
		}
		if err := sink.Start(context.Background()); err != nil {
			return nil, err
		}
		return sink, nil
	})
	if err != nil {
		return nil, err
	}

	sink, ok := comp.(*LogSink)
	if !ok {
		return nil, fmt.Errorf("component %s is not a log sink", comp.Name())
	}
	if !sink.IsActive() {
		if err := sink.Start(context.Background()); err != nil {
			return nil, err
		}
	}
	return sink, nil
}

// Sink 按名称获取已创建的 sink
func (p *Provisioner) Sink(name string) (*LogSink, error) {
	comp, err := p.container.Resolve(consts.SinkComponentName(name))
	if err != nil {
		return nil, err
	}
	sink, ok := comp.(*LogSink)
	if !ok {
		return nil, fmt.Errorf("component %s is not a log sink", comp.Name())
	}
	return sink, nil
}

// Sinks 返回所有 sink, 按名称排序
func (p *Provisioner) Sinks() []*LogSink {
	var out []*LogSink
	for _, key := range p.container.NamesWithPrefix(consts.COMPONENT_SINK_PREFIX) {
		comp, err := p.container.Resolve(key)
		if err != nil {
			continue
		}
		if sink, ok := comp.(*LogSink); ok {
			out = append(out, sink)
		}
	}
	return out
}

// Close 关闭全部 sink, 返回合并后的错误
func (p *Provisioner) Close() error {
	var err error
	for _, sink := range p.Sinks() {
		err = multierr.Append(err, sink.Close())
	}
	return err
}
