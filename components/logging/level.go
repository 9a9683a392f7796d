// components/logging/level.go
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level 日志级别, 取值有序: DEBUG < INFO < WARNING < ERROR < CRITICAL
type Level int8

const (
	DEBUG Level = iota + 1
	INFO
	WARNING
	ERROR
	CRITICAL
)

// AllLevels lists every level in ascending severity.
var AllLevels = []Level{DEBUG, INFO, WARNING, ERROR, CRITICAL}

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Level(%d)", int8(l))
	}
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= DEBUG && l <= CRITICAL
}

// ParseLevel 解析日志级别, 不区分大小写; 兼容 WARN / FATAL 写法
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARNING, nil
	case "ERROR":
		return ERROR, nil
	case "CRITICAL", "FATAL":
		return CRITICAL, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("unknown log level %d", int8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so levels can be written
// by name in yaml, json and environment variables.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// zapLevel 映射到 zap 级别; CRITICAL 使用 DPanic, 非 development 模式下既不 panic 也不退出
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARNING:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case CRITICAL:
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

func levelFromZap(zl zapcore.Level) Level {
	switch {
	case zl <= zapcore.DebugLevel:
		return DEBUG
	case zl == zapcore.InfoLevel:
		return INFO
	case zl == zapcore.WarnLevel:
		return WARNING
	case zl == zapcore.ErrorLevel:
		return ERROR
	default:
		return CRITICAL
	}
}
