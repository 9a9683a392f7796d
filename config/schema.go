// config/schema.go
package config

import (
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/logging"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/prometheus"
)

// AppConfig 应用程序配置结构
type AppConfig struct {
	APPInfo *APPInfo           `yaml:"app_info" json:"app_info"`
	Logging *LoggingConfig     `yaml:"logging" json:"logging"`
	Metrics *prometheus.Config `yaml:"metrics" json:"metrics"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name"`
	ENV     string `yaml:"env" json:"env"`
}

// LoggingConfig 日志 sink 列表
type LoggingConfig struct {
	Sinks []*logging.LoggerConfig `yaml:"sinks" json:"sinks"`
}

// envOverrides 环境变量覆盖项, 统一使用 LOGSINK_ 前缀
type envOverrides struct {
	Level          string `env:"LEVEL"`
	LogDir         string `env:"LOG_DIR"`
	MetricsAddress string `env:"METRICS_ADDRESS"`
}
