package config

const (
	// Monitor Defaults
	DefaultMonitorStorePath          = "database/etag.db"
	DefaultMonitorHTTPTimeoutSeconds = 30
	DefaultMonitorUserAgent          = "etagwatch/1.0"
	DefaultMonitorFollowRedirects    = true
	DefaultMonitorMaxRedirects       = 10
	DefaultMonitorEnableHTTP2        = true

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// ConfigPathEnvVar points at a config file when no flag is given.
	ConfigPathEnvVar = "ETAGWATCH_CONFIG_PATH"

	maxConfigFileSize = 10 * 1024 * 1024
)
