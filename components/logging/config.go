// components/logging/config.go
package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
)

// LoggerConfig 单个日志 sink 的配置
type LoggerConfig struct {
	Name             string `yaml:"name" json:"name"`
	FilePath         string `yaml:"file_path" json:"file_path"`
	Level            Level  `yaml:"level" json:"level"`
	MaxFileSizeBytes int64  `yaml:"max_file_size_bytes" json:"max_file_size_bytes"`
	BackupCount      int    `yaml:"backup_count" json:"backup_count"`

	Console  string `yaml:"console,omitempty" json:"console,omitempty"`   // stderr | stdout | none
	Layout   string `yaml:"layout,omitempty" json:"layout,omitempty"`     // numbered | timestamped
	Compress bool   `yaml:"compress,omitempty" json:"compress,omitempty"` // 仅 timestamped 生效
}

// NewLoggerConfig returns a config for name/filePath carrying every default:
// INFO, 5 MiB, 5 backups, console on stderr, numbered backups.
func NewLoggerConfig(name, filePath string) *LoggerConfig {
	return &LoggerConfig{
		Name:             name,
		FilePath:         filePath,
		Level:            INFO,
		MaxFileSizeBytes: consts.DEFAULT_MAX_FILE_SIZE_BYTES,
		BackupCount:      consts.DEFAULT_BACKUP_COUNT,
		Console:          consts.CONSOLE_STDERR,
		Layout:           consts.LAYOUT_NUMBERED,
	}
}

// UnmarshalYAML decodes on top of the defaults so omitted keys keep them.
func (c *LoggerConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain LoggerConfig
	p := plain(*NewLoggerConfig("", ""))
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = LoggerConfig(p)
	return nil
}

// UnmarshalJSON decodes on top of the defaults so omitted keys keep them.
func (c *LoggerConfig) UnmarshalJSON(data []byte) error {
	type plain LoggerConfig
	p := plain(*NewLoggerConfig("", ""))
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = LoggerConfig(p)
	return nil
}

// setDefaults 只补全输出目标相关的空字符串; 级别和大小上限的默认值由
// NewLoggerConfig 和解码器预置, 零值交给 Validate 拒绝
func (c *LoggerConfig) setDefaults() {
	if c.Console == "" {
		c.Console = consts.CONSOLE_STDERR
	}
	if c.Layout == "" {
		c.Layout = consts.LAYOUT_NUMBERED
	}
	c.Console = strings.ToLower(c.Console)
	c.Layout = strings.ToLower(c.Layout)
}

// Validate checks the config without applying defaults.
func (c *LoggerConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return configError(c.Name, "name", errors.New("must not be empty"))
	}
	if strings.TrimSpace(c.FilePath) == "" {
		return configError(c.Name, "file_path", errors.New("must not be empty"))
	}
	if !c.Level.Valid() {
		return configError(c.Name, "level", fmt.Errorf("unknown level %d", int8(c.Level)))
	}
	if c.MaxFileSizeBytes <= 0 {
		return configError(c.Name, "max_file_size_bytes", fmt.Errorf("must be > 0, got %d", c.MaxFileSizeBytes))
	}
	if c.BackupCount < 0 {
		return configError(c.Name, "backup_count", fmt.Errorf("must be >= 0, got %d", c.BackupCount))
	}
	switch strings.ToLower(c.Console) {
	case consts.CONSOLE_STDERR, consts.CONSOLE_STDOUT, consts.CONSOLE_NONE:
	default:
		return configError(c.Name, "console", fmt.Errorf("unsupported value %q", c.Console))
	}
	switch strings.ToLower(c.Layout) {
	case consts.LAYOUT_NUMBERED, consts.LAYOUT_TIMESTAMPED:
	default:
		return configError(c.Name, "layout", fmt.Errorf("unsupported value %q", c.Layout))
	}
	return nil
}
