package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/config"
	"github.com/dmitrijs2005/foldershare/internal/client/services"
	"github.com/dmitrijs2005/foldershare/internal/client/uistate"
	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config   *config.Config
	log      logging.Logger
	api      client.Client
	registry *prometheus.Registry
	snackbar *uistate.Snackbar
	home     *services.HomePage

	// folder is the opened folder page, nil at the top level.
	folder *services.FolderDetailPage

	scanner  *bufio.Scanner
	out      io.Writer
	download *http.Client

	mu   sync.Mutex
	mode Mode
}

// NewApp builds the HTTP API client and the page coordinators for c.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	api, err := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
		client.WithMetrics(client.NewMetrics(reg)),
	)
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	return newApp(c, log, api, reg, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, log logging.Logger, api client.Client, reg *prometheus.Registry, in io.Reader, out io.Writer) *App {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{
		config:   c,
		log:      log,
		api:      api,
		registry: reg,
		snackbar: uistate.NewSnackbar(c.SnackbarDuration),
		scanner:  bufio.NewScanner(in),
		out:      out,
	}
	a.home = services.NewHomePage(api, a.snackbar, log)
	a.snackbar.OnChange(func(open bool, n uistate.Notice) {
		if open {
			printlnFn(fmt.Sprintf("[%s] %s", n.Severity, n.Text))
		}
	})
	return a
}

// Run waits for the API, starts the background workers and blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.api.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.config.MetricsAddr != "" && a.registry != nil {
		go a.serveMetrics(ctx)
	}

	printlnFn("Welcome to foldershare CLI (type 'help' for commands)")

	if err := a.WaitForServer(ctx); err != nil {
		a.log.Warn(ctx, "api not reachable, starting offline", "url", a.config.APIBaseURL, "error", err)
		a.setMode(ModeOffline)
	} else {
		a.setMode(ModeOnline)
		_ = a.Folders(ctx)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.scanner)
	return nil
}

// WaitForServer pings the API with exponential backoff until it answers or
// the configured startup wait has elapsed.
func (a *App) WaitForServer(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = a.config.StartupWait

	attempt := 0
	op := func() error {
		attempt++
		err := a.ping(ctx)
		if client.IsSetup(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			a.log.Debug(ctx, "waiting for api", "attempt", attempt, "error", err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

func (a *App) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	_, err := a.api.Ping(ctx)
	return err
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
		printlnFn(fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// checkOnline pings once and updates the mode.
func (a *App) checkOnline(ctx context.Context) {
	if err := a.ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the API every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Info(ctx, "serving metrics", "addr", a.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error(ctx, "metrics server failed", "error", err)
	}
}

func (a *App) inFolder() bool { return a.folder != nil }

// getStatus renders the prompt status, e.g. "(online Vacation locked)".
func (a *App) getStatus() string {
	parts := []string{}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if a.folder != nil {
		if f := a.folder.Access().Folder(); f != nil {
			parts = append(parts, f.Name)
		} else {
			parts = append(parts, fmt.Sprintf("#%d", a.folder.Access().FolderID()))
		}
		if !a.folder.Access().Granted() {
			parts = append(parts, "locked")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// readLine prompts on a.out and reads one line from the REPL input.
func (a *App) readLine(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt+": ")
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.scanner.Text()), nil
}

// readSecret reads a password without echo on a terminal and as a plain
// line otherwise, e.g. when input is piped.
func (a *App) readSecret(prompt string) (string, error) {
	if !isTerminal(int(os.Stdin.Fd())) {
		return a.readLine(prompt)
	}
	pw, err := GetPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	s := string(pw)
	common.WipeByteArray(pw)
	return s, nil
}
