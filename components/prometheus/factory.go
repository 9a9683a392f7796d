package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/core"
)

type Factory struct {
	registry *prometheus.Registry
	log      *zap.Logger
}

// NewFactory binds the exporter to registry, which is also where the sink
// metrics are registered.
func NewFactory(registry *prometheus.Registry, log *zap.Logger) *Factory {
	return &Factory{registry: registry, log: log}
}

func (f *Factory) Create(cfg interface{}) (core.Component, error) {
	c, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for prometheus component (*Config required)")
	}
	if c == nil || !c.Enabled {
		return nil, fmt.Errorf("prometheus component disabled")
	}
	if f.registry == nil {
		return nil, fmt.Errorf("prometheus component requires a registry")
	}
	if c.Address == "" {
		c.Address = ":9090"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if c.CollectGoMetrics == nil {
		v := true
		c.CollectGoMetrics = &v
	}
	if c.CollectProcess == nil {
		v := true
		c.CollectProcess = &v
	}
	return NewComponent(c, f.registry, f.log), nil
}
