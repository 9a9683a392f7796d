package consts

const (
	// COMPONENT_SINK_PREFIX 日志 sink 在容器中的注册名前缀, 完整名称为 "sink:<name>"
	COMPONENT_SINK_PREFIX = "sink:"
	COMPONENT_PROMETHEUS  = "prometheus"
)

// SinkComponentName returns the container key of a named sink.
func SinkComponentName(name string) string {
	return COMPONENT_SINK_PREFIX + name
}
