package logging

import (
	"fmt"
	"io"
	"strings"
)

// Backend names accepted by New.
const (
	BackendSlog = "slog"
	BackendZap  = "zap"
)

// New builds a Logger writing to w for the given backend ("slog" or "zap")
// and level ("debug", "info", "warn", "error"). Unknown levels fall back to
// info; an unknown backend is an error.
func New(backend, level string, w io.Writer) (Logger, error) {
	switch strings.ToLower(backend) {
	case "", BackendSlog:
		return newSlogText(w, level), nil
	case BackendZap:
		return newZapJSON(w, level), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}
