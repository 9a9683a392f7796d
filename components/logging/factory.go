// components/logging/factory.go
package logging

import (
	"fmt"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/core"
)

// Factory 日志 sink 组件工厂
type Factory struct {
	metrics *Metrics
}

// NewFactory 创建日志 sink 组件工厂, metrics 可以为 nil
func NewFactory(metrics *Metrics) *Factory {
	return &Factory{metrics: metrics}
}

// Create 创建 sink 组件实例 (未启动), 返回值的具体类型为 *LogSink
func (f *Factory) Create(cfg interface{}) (core.Component, error) {
	loggerConfig, ok := cfg.(*LoggerConfig)
	if !ok || loggerConfig == nil {
		return nil, configError("", "", fmt.Errorf("invalid config type for logging sink, expected *LoggerConfig"))
	}
	// 拷贝一份, 调用方后续修改不影响已创建的 sink
	c := *loggerConfig
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return NewLogSink(&c, f.metrics), nil
}
