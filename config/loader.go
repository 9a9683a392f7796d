// config/loader.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/logging"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/components/prometheus"
	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
)

// Loader 配置加载器
type Loader struct {
	env        string
	configPath string
	// environment 为 nil 时读取进程环境变量, 测试中可注入
	environment map[string]string
}

// NewLoader 创建配置加载器
func NewLoader(env string, configPath string) *Loader {
	if env == "" {
		env = consts.ENV_DEVELOPMENT
	}
	if configPath == "" {
		configPath = consts.DEFAULT_CONFIG_PATH
	}
	return &Loader{env: env, configPath: configPath}
}

// SetEnvironment replaces the process environment used for overrides.
func (l *Loader) SetEnvironment(environment map[string]string) {
	l.environment = environment
}

// LoadConfig 按扩展名解析 YAML / JSON, 然后合并环境变量覆盖
func (l *Loader) LoadConfig() (*AppConfig, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	ext := strings.ToLower(filepath.Ext(l.configPath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if cfg.APPInfo == nil {
		cfg.APPInfo = &APPInfo{}
	}
	if cfg.APPInfo.ENV == "" {
		cfg.APPInfo.ENV = l.env
	}

	if err := l.mergeEnvVars(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeEnvVars 合并环境变量到配置中
func (l *Loader) mergeEnvVars(cfg *AppConfig) error {
	var overrides envOverrides
	opts := env.Options{Prefix: consts.ENV_PREFIX, Environment: l.environment}
	if err := env.ParseWithOptions(&overrides, opts); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	if overrides.Level != "" {
		level, err := logging.ParseLevel(overrides.Level)
		if err != nil {
			return fmt.Errorf("%sLEVEL: %w", consts.ENV_PREFIX, err)
		}
		if cfg.Logging != nil {
			for _, sink := range cfg.Logging.Sinks {
				if sink != nil {
					sink.Level = level
				}
			}
		}
	}

	if overrides.LogDir != "" && cfg.Logging != nil {
		for _, sink := range cfg.Logging.Sinks {
			if sink != nil && sink.FilePath != "" && !filepath.IsAbs(sink.FilePath) {
				sink.FilePath = filepath.Join(overrides.LogDir, sink.FilePath)
			}
		}
	}

	if overrides.MetricsAddress != "" {
		if cfg.Metrics == nil {
			cfg.Metrics = &prometheus.Config{}
		}
		cfg.Metrics.Address = overrides.MetricsAddress
	}
	return nil
}

// fileExists 检查文件是否存在
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
