// Package config loads runtime configuration for the foldershare CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config (see parseFile).
//     Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the API, e.g. http://localhost:5000/api
//	-i int      online status check interval (seconds)
//	-t int      per-request timeout (seconds)
//	-l string   log level: debug, info, warn, error
//	-b string   log backend: slog or zap
//	-m string   listen address for the Prometheus metrics endpoint (empty = off)
//	-d string   directory where viewed files are downloaded
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "3s" or integer
// nanoseconds. Keys left out of the file keep their default:
//
//	{
//	  "api_base_url": "http://localhost:5000/api",
//	  "request_timeout": "30s",
//	  "online_check_interval": "3s",
//	  "startup_wait": "10s",
//	  "snackbar_duration": "4s",
//	  "download_dir": "download",
//	  "log_level": "info",
//	  "log_backend": "slog",
//	  "metrics_addr": ""
//	}
//
// Invalid files or flag values panic at startup.
package config
