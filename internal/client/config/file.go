package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/foldershare/internal/flagx"
	"github.com/dmitrijs2005/foldershare/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding config files. Zero
// values mean "not set" and leave the current Config value untouched.
type FileConfig struct {
	APIBaseURL          string         `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	StartupWait         timex.Duration `json:"startup_wait" yaml:"startup_wait"`
	SnackbarDuration    timex.Duration `json:"snackbar_duration" yaml:"snackbar_duration"`
	DownloadDir         string         `json:"download_dir" yaml:"download_dir"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	LogBackend          string         `json:"log_backend" yaml:"log_backend"`
	MetricsAddr         string         `json:"metrics_addr" yaml:"metrics_addr"`
}

// parseFile overlays cfg with values from the file named by -c/-config in
// args. No flag means no file. Read or decode errors panic.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.DownloadDir, fc.DownloadDir)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogBackend, fc.LogBackend)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)

	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.StartupWait.Duration > 0 {
		cfg.StartupWait = fc.StartupWait.Duration
	}
	if fc.SnackbarDuration.Duration > 0 {
		cfg.SnackbarDuration = fc.SnackbarDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
