// components/logging/encoder.go
package logging

import (
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/grand-thief-cash/chaos/app/infra/go/logsink/consts"
)

// buildEncoder 构建行格式编码器: <timestamp> - <name> - <LEVEL> - <message>
//
// zap 的 console encoder 固定按 time, level, name 的顺序输出元数据,
// 所以 sink 名称由时间编码器在时间戳之后追加, NameKey 留空.
func buildEncoder(name string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		NameKey:          zapcore.OmitKey,
		CallerKey:        zapcore.OmitKey,
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "message",
		StacktraceKey:    zapcore.OmitKey,
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      encodeLevel,
		EncodeTime:       timeAndNameEncoder(name),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: consts.LINE_SEPARATOR,
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func timeAndNameEncoder(name string) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format(consts.TIMESTAMP_LAYOUT))
		enc.AppendString(name)
	}
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(levelFromZap(l).String())
}
