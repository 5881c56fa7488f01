package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/logging"
)

const (
	statusNotTested = "Not tested"
	statusTesting   = "Testing..."
)

// DiagnosticsAPI is the diagnostics part of client.Client.
type DiagnosticsAPI interface {
	Ping(ctx context.Context) (*models.PingResponse, error)
	TestDB(ctx context.Context) (*models.DBStatus, error)
}

// ConnectionTests runs the backend and database connectivity checks. Only
// one check runs at a time; starting one resets the other's result.
type ConnectionTests struct {
	api DiagnosticsAPI
	log logging.Logger

	mu      sync.Mutex
	busy    bool
	backend string
	db      models.DBStatus
}

func NewConnectionTests(api DiagnosticsAPI, log logging.Logger) *ConnectionTests {
	if log == nil {
		log = logging.Nop()
	}
	return &ConnectionTests{
		api:     api,
		log:     log,
		backend: statusNotTested,
		db:      models.DBStatus{Status: statusNotTested},
	}
}

func (t *ConnectionTests) begin(backend string, db models.DBStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy {
		return false
	}
	t.busy = true
	t.backend = backend
	t.db = db
	return true
}

// TestBackend pings the API and returns the resulting status text.
func (t *ConnectionTests) TestBackend(ctx context.Context) (string, error) {
	if !t.begin(statusTesting, models.DBStatus{Status: statusNotTested}) {
		return "", ErrBusy
	}

	resp, err := t.api.Ping(ctx)
	status := backendStatus(resp, err)

	t.mu.Lock()
	t.busy = false
	t.backend = status
	t.mu.Unlock()

	t.log.Debug(ctx, "backend test finished", "status", status)
	return status, nil
}

func backendStatus(resp *models.PingResponse, err error) string {
	if err == nil {
		if resp != nil && resp.Message == "pong" {
			return "Connected!"
		}
		b, _ := json.Marshal(resp)
		return "Unexpected: " + string(b)
	}

	var ae *client.APIError
	switch {
	case client.StatusCode(err) != 0:
		return fmt.Sprintf("Error: Status %d", client.StatusCode(err))
	case client.IsNetwork(err):
		return "Error: No response"
	case asAPIError(err, &ae):
		return "Error: " + ae.Message
	default:
		return "Error: " + err.Error()
	}
}

// TestDB asks the API to check its database and returns the reported status.
func (t *ConnectionTests) TestDB(ctx context.Context) (models.DBStatus, error) {
	if !t.begin(statusNotTested, models.DBStatus{Status: statusTesting}) {
		return models.DBStatus{}, ErrBusy
	}

	resp, err := t.api.TestDB(ctx)
	st := dbStatus(resp, err)

	t.mu.Lock()
	t.busy = false
	t.db = st
	t.mu.Unlock()

	t.log.Debug(ctx, "database test finished", "status", st.Status)
	return st, nil
}

func dbStatus(resp *models.DBStatus, err error) models.DBStatus {
	if err == nil {
		if resp == nil {
			return models.DBStatus{}
		}
		return *resp
	}

	var ae *client.APIError
	if code := client.StatusCode(err); code != 0 {
		st := models.DBStatus{}
		if asAPIError(err, &ae) {
			_ = ae.DecodeBody(&st)
		}
		if st.Status == "" {
			st.Status = "Error"
		}
		if st.Message == "" {
			st.Message = fmt.Sprintf("Server Error %d", code)
		}
		return st
	}
	if client.IsNetwork(err) {
		return models.DBStatus{Status: "Error", Message: "No response received"}
	}

	msg := err.Error()
	if asAPIError(err, &ae) && ae.Message != "" {
		msg = ae.Message
	}
	return models.DBStatus{Status: "Error", Message: "Request setup error: " + msg}
}

func (t *ConnectionTests) BackendStatus() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.backend
}

func (t *ConnectionTests) DBStatus() models.DBStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.db
}

func (t *ConnectionTests) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}
