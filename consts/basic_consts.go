package consts

const (
	ENV_PRODUCTION  = "production"
	ENV_DEVELOPMENT = "development"
	ENV_TEST        = "test"

	DEFAULT_CONFIG_PATH = "config.yaml"

	// ENV_PREFIX 环境变量覆盖前缀
	ENV_PREFIX = "LOGSINK_"
)

const (
	DEFAULT_MAX_FILE_SIZE_BYTES int64 = 5 * 1024 * 1024
	DEFAULT_BACKUP_COUNT              = 5

	// 本地时间, 毫秒精度, 逗号分隔毫秒
	TIMESTAMP_LAYOUT = "2006-01-02 15:04:05,000"
	LINE_SEPARATOR   = " - "

	CONSOLE_STDERR = "stderr"
	CONSOLE_STDOUT = "stdout"
	CONSOLE_NONE   = "none"

	LAYOUT_NUMBERED    = "numbered"
	LAYOUT_TIMESTAMPED = "timestamped"
)
