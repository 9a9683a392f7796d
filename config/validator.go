// config/validator.go
package config

import (
	"fmt"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
)

// Validator 配置验证器
type Validator struct{}

// NewValidator 创建配置验证器
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAppConfig 校验 sink 列表: 名称唯一, 每项参数合法
func (v *Validator) ValidateAppConfig(config *AppConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if config.APPInfo != nil {
		if err := v.validateEnv(config.APPInfo.ENV); err != nil {
			return err
		}
	}
	if config.Logging == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(config.Logging.Sinks))
	for i, sink := range config.Logging.Sinks {
		if sink == nil {
			return fmt.Errorf("logging.sinks[%d] is empty", i)
		}
		if err := sink.Validate(); err != nil {
			return fmt.Errorf("logging.sinks[%d]: %w", i, err)
		}
		if _, dup := seen[sink.Name]; dup {
			return fmt.Errorf("logging.sinks[%d]: duplicate sink name %q", i, sink.Name)
		}
		seen[sink.Name] = struct{}{}
	}
	return nil
}

func (v *Validator) validateConfigFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("config file path cannot be empty")
	}
	if len(path) > 255 {
		return fmt.Errorf("config file path is too long")
	}
	if !fileExists(path) {
		return fmt.Errorf("config file does not exist: %s", path)
	}
	return nil
}

func (v *Validator) validateEnv(env string) error {
	switch env {
	case "", consts.ENV_DEVELOPMENT, consts.ENV_PRODUCTION, consts.ENV_TEST:
		return nil
	default:
		return fmt.Errorf("running environment is not valid: %s", env)
	}
}
