package prometheus

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/core"
)

// Component exposes a prometheus registry over HTTP.
type Component struct {
	*core.BaseComponent
	cfg      *Config
	registry *prometheus.Registry
	log      *zap.Logger
	server   *http.Server
	addr     net.Addr
}

func NewComponent(cfg *Config, registry *prometheus.Registry, log *zap.Logger) *Component {
	if log == nil {
		log = zap.NewNop()
	}
	return &Component{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_PROMETHEUS),
		cfg:           cfg,
		registry:      registry,
		log:           log,
	}
}

func (c *Component) Start(ctx context.Context) error {
	if c.cfg.CollectGoMetrics != nil && *c.cfg.CollectGoMetrics {
		_ = c.registry.Register(collectors.NewGoCollector())
	}
	if c.cfg.CollectProcess != nil && *c.cfg.CollectProcess {
		_ = c.registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	mux := http.NewServeMux()
	mux.Handle(c.cfg.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	ln, err := net.Listen("tcp", c.cfg.Address)
	if err != nil {
		return fmt.Errorf("prometheus listen %s: %w", c.cfg.Address, err)
	}
	c.addr = ln.Addr()
	c.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		c.log.Info("prometheus metrics listening", zap.String("address", c.addr.String()), zap.String("path", c.cfg.Path))
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error("prometheus server error", zap.Error(err))
		}
	}()

	return c.BaseComponent.Start(ctx)
}

func (c *Component) Stop(ctx context.Context) error {
	defer c.BaseComponent.Stop(ctx)
	if c.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("prometheus shutdown: %w", err)
	}
	c.server = nil
	return nil
}

// Addr returns the bound listener address once started.
func (c *Component) Addr() net.Addr { return c.addr }
