package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the foldershare CLI.
type Config struct {
	// APIBaseURL is the API root; endpoint paths such as /folders are
	// appended to it.
	APIBaseURL string
	// RequestTimeout bounds every API call.
	RequestTimeout time.Duration
	// OnlineCheckInterval is how often the client pings the API to update
	// the online/offline indicator.
	OnlineCheckInterval time.Duration
	// StartupWait bounds the initial backoff loop waiting for the API.
	StartupWait time.Duration
	// SnackbarDuration is the notification auto-dismiss delay.
	SnackbarDuration time.Duration
	DownloadDir      string
	LogLevel         string
	LogBackend       string
	// MetricsAddr enables the Prometheus endpoint when non-empty.
	MetricsAddr string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000/api"
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.StartupWait = 10 * time.Second
	c.SnackbarDuration = 4 * time.Second
	c.DownloadDir = "download"
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.MetricsAddr = ""
}

// LoadConfig constructs a Config from defaults, the optional config file and
// the command-line flags in os.Args. Later sources take precedence.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
