package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/apitest"
	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, url string) *config.Config {
	t.Helper()
	return &config.Config{
		APIBaseURL:       url,
		RequestTimeout:   5 * time.Second,
		StartupWait:      500 * time.Millisecond,
		SnackbarDuration: time.Minute,
		DownloadDir:      filepath.Join(t.TempDir(), "download"),
	}
}

func pipedInput(t *testing.T) {
	t.Helper()
	old := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = old })
}

func newTestApp(t *testing.T, cfg *config.Config, script ...string) (*App, *bytes.Buffer) {
	t.Helper()
	api, err := client.NewHTTPClient(cfg.APIBaseURL, client.WithTimeout(cfg.RequestTimeout))
	require.NoError(t, err)
	var prompts bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	return newApp(cfg, nil, api, prometheus.NewRegistry(), in, &prompts), &prompts
}

func TestApp_ProtectedFolderSession(t *testing.T) {
	out := captureOutput(t)
	pipedInput(t)

	srv, err := apitest.New()
	require.NoError(t, err)
	defer srv.Close()

	local := filepath.Join(t.TempDir(), "beach.txt")
	require.NoError(t, os.WriteFile(local, []byte("sand and sea"), 0o600))

	cfg := testConfig(t, srv.URL)
	app, prompts := newTestApp(t, cfg,
		"mkdir Vacation",
		"secret",
		"open 1",
		"files",
		"unlock",
		"wrong",
		"unlock",
		"secret",
		"upload "+local,
		"view 2",
		"link 2",
		"rm 2",
		"y",
		"back",
		"rmdir 1",
		"wrong",
		"secret",
		"exit",
	)

	require.NoError(t, app.Run(context.Background()))

	text := strings.Join(*out, "\n")
	for _, want := range []string{
		"Switched to online mode",
		"No folders yet.",
		"Success: Folder 'Vacation' created (ID: 1)",
		"Folder is password protected. Type 'unlock' to enter the password.",
		"[warning] Enter password to list files.",
		"Error: Incorrect password",
		"Access granted.",
		"This folder is empty.",
		"Successfully uploaded beach.txt!",
		"X-Amz-Signature=",
		`[success] File "beach.txt" deleted.`,
		"Confirm Folder Deletion",
		`[success] Folder "Vacation" deleted.`,
		"Bye!",
	} {
		assert.Contains(t, text, want)
	}

	assert.Contains(t, prompts.String(), "Uploading: 100%")
	assert.Equal(t, 3, srv.Requests("GET", "/api/folders/:id/files"))
	assert.Equal(t, 1, srv.Requests("DELETE", "/api/files/:id"))
	assert.Equal(t, 2, srv.Requests("DELETE", "/api/folders/:id"))

	got, err := os.ReadFile(filepath.Join(cfg.DownloadDir, "beach.txt"))
	require.NoError(t, err)
	assert.Equal(t, "sand and sea", string(got))
}

func TestApp_CancelledDeleteSendsNothing(t *testing.T) {
	out := captureOutput(t)
	pipedInput(t)

	srv, err := apitest.New()
	require.NoError(t, err)
	defer srv.Close()

	c, err := client.NewHTTPClient(srv.URL)
	require.NoError(t, err)
	folder, err := c.CreateFolder(context.Background(), "Docs", "")
	require.NoError(t, err)
	_, err = c.UploadFile(context.Background(), folder.ID, "a.txt", strings.NewReader("a"), 1, nil)
	require.NoError(t, err)

	app, _ := newTestApp(t, testConfig(t, srv.URL),
		"open 1",
		"rm 2",
		"n",
		"rm 99",
		"rmdir 1",
		"",
		"quit",
	)
	require.NoError(t, app.Run(context.Background()))

	text := strings.Join(*out, "\n")
	assert.Contains(t, text, `Opened folder "Docs".`)
	assert.Contains(t, text, "a.txt")
	assert.Contains(t, text, "File 99 is not in the list.")
	assert.Equal(t, 2, strings.Count(text, "Cancelled."))
	assert.Zero(t, srv.Requests("DELETE", "/api/files/:id"))
	assert.Zero(t, srv.Requests("DELETE", "/api/folders/:id"))
}

func TestApp_CommandsNeedOpenFolder(t *testing.T) {
	out := captureOutput(t)

	srv, err := apitest.New()
	require.NoError(t, err)
	defer srv.Close()

	app, _ := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	assert.ErrorIs(t, app.Files(ctx), errNoFolder)
	assert.ErrorIs(t, app.Unlock(ctx), errNoFolder)
	assert.ErrorIs(t, app.View(ctx, 1), errNoFolder)
	assert.Contains(t, *out, "Open a folder first with 'open <id>'.")

	require.Error(t, app.Open(ctx, 42))
	assert.Contains(t, *out, "Error: Folder with ID 42 not found")
	assert.False(t, app.inFolder())
}

func TestApp_WaitForServerAndWatcher(t *testing.T) {
	captureOutput(t)

	srv, err := apitest.New()
	require.NoError(t, err)

	app, _ := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	require.NoError(t, app.WaitForServer(ctx))
	app.checkOnline(ctx)
	assert.Equal(t, ModeOnline, app.Mode())
	assert.Equal(t, "(online)", app.getStatus())

	srv.Close()
	assert.Error(t, app.WaitForServer(ctx))
	app.checkOnline(ctx)
	assert.Equal(t, ModeOffline, app.Mode())
}

func TestApp_Diagnostics(t *testing.T) {
	out := captureOutput(t)

	srv, err := apitest.New()
	require.NoError(t, err)
	defer srv.Close()
	srv.SetDBDown(true)

	app, _ := newTestApp(t, testConfig(t, srv.URL))
	require.NoError(t, app.Ping(context.Background()))
	require.NoError(t, app.TestDB(context.Background()))

	assert.Contains(t, *out, "Backend: Connected!")
	assert.Contains(t, *out, "Database: Error - DB Error: connection refused")
}

func TestNewApp_InvalidURL(t *testing.T) {
	_, err := NewApp(&config.Config{APIBaseURL: "ftp://example.com"}, nil)
	assert.Error(t, err)
}
