package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:5000/api", c.APIBaseURL)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 4*time.Second, c.SnackbarDuration)
	assert.Equal(t, "download", c.DownloadDir)
	assert.Equal(t, "slog", c.LogBackend)
	assert.Empty(t, c.MetricsAddr)
}

func TestLoad_NoArgsGivesDefaults(t *testing.T) {
	cfg := load(nil)

	require.NotNil(t, cfg)
	if diff := cmp.Diff(defaults(), *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	cfg := load([]string{
		"-a", "http://api.example.com/api",
		"-i", "10",
		"-t", "5",
		"-l", "debug",
		"-b", "zap",
		"-m", ":9100",
		"-d", "/tmp/dl",
		"-unknown", "ignored",
	})

	want := defaults()
	want.APIBaseURL = "http://api.example.com/api"
	want.OnlineCheckInterval = 10 * time.Second
	want.RequestTimeout = 5 * time.Second
	want.LogLevel = "debug"
	want.LogBackend = "zap"
	want.MetricsAddr = ":9100"
	want.DownloadDir = "/tmp/dl"

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "client.json", `{
		"api_base_url": "http://files.local/api",
		"online_check_interval": "7s",
		"snackbar_duration": 2000000000,
		"download_dir": "out"
	}`)

	cfg := load([]string{"-c", path})

	want := defaults()
	want.APIBaseURL = "http://files.local/api"
	want.OnlineCheckInterval = 7 * time.Second
	want.SnackbarDuration = 2 * time.Second
	want.DownloadDir = "out"

	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "client.yaml", `
api_base_url: http://yaml.local/api
request_timeout: 12s
log_backend: zap
log_level: warn
`)

	cfg := load([]string{"-config", path})

	assert.Equal(t, "http://yaml.local/api", cfg.APIBaseURL)
	assert.Equal(t, 12*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "zap", cfg.LogBackend)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeFile(t, "client.json", `{"api_base_url": "http://file/api", "log_level": "error"}`)

	cfg := load([]string{"-c", path, "-a", "http://flag/api"})

	assert.Equal(t, "http://flag/api", cfg.APIBaseURL)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_PanicsOnBadInput(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		assert.Panics(t, func() { load([]string{"-c", filepath.Join(t.TempDir(), "nope.json")}) })
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{"api_base_url": `)
		assert.Panics(t, func() { load([]string{"-c", path}) })
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeFile(t, "bad.yml", "request_timeout: soon\n")
		assert.Panics(t, func() { load([]string{"-c", path}) })
	})

	t.Run("non-numeric interval flag", func(t *testing.T) {
		assert.Panics(t, func() { load([]string{"-i", "often"}) })
	})
}
