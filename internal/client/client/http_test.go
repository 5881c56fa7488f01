package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/api", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewHTTPClient("localhost:5000")
	assert.Error(t, err)

	_, err = NewHTTPClient("ftp://example.com/api")
	assert.Error(t, err)
}

func TestHTTPClient_ListFolders(t *testing.T) {
	var gotRequestID, gotAccept string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/folders", func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get(common.RequestIDHeaderName)
		gotAccept = r.Header.Get("Accept")
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 2, "name": "B", "created_at": "2024-01-02T00:00:00", "is_protected": true},
			{"id": 1, "name": "A", "created_at": "2024-01-01T00:00:00Z", "is_protected": false},
		})
	})
	c := newTestClient(t, mux)

	folders, err := c.ListFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "B", folders[0].Name, "server order must be kept")
	assert.True(t, folders[0].IsProtected)
	assert.Equal(t, int64(1), folders[1].ID)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
}

func TestHTTPClient_ListFiles_EmptyIsNonNil(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/folders/3/files", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	c := newTestClient(t, mux)

	files, err := c.ListFiles(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestHTTPClient_SessionCookieIsForwarded(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/folders/5/verify-password", func(w http.ResponseWriter, r *http.Request) {
		var body models.VerifyPasswordRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "sun" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "Incorrect password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: common.SessionCookieName, Value: "granted", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password verified"})
	})
	mux.HandleFunc("GET /api/folders/5/files", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie(common.SessionCookieName); err != nil || ck.Value != "granted" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Password verification required"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "beach.jpg", "size": "10"}})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.ListFiles(ctx, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Password verification required", ServerMessage(err, ""))

	err = c.VerifyFolderPassword(ctx, 5, "moon")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Incorrect password", ServerMessage(err, "Verification failed"))

	require.NoError(t, c.VerifyFolderPassword(ctx, 5, "sun"))

	files, err := c.ListFiles(ctx, 5)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(10), files[0].Size)
}

func TestHTTPClient_CheckFolderAccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/folders/1/check-access", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AccessResult{Access: true})
	})
	mux.HandleFunc("GET /api/folders/2/check-access", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "No session"})
	})
	mux.HandleFunc("GET /api/folders/3/check-access", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /api/folders/4/check-access", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	res, err := c.CheckFolderAccess(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.Access)

	res, err = c.CheckFolderAccess(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.AccessResult{Access: false, Reason: "No session"}, *res)

	res, err = c.CheckFolderAccess(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized", res.Reason)

	_, err = c.CheckFolderAccess(ctx, 4)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestHTTPClient_DeleteFolder_PasswordBody(t *testing.T) {
	var bodies []string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/folders/{id}", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, c.DeleteFolder(ctx, 1, ""))
	require.NoError(t, c.DeleteFolder(ctx, 2, "pw"))

	require.Len(t, bodies, 2)
	assert.Empty(t, bodies[0])
	assert.JSONEq(t, `{"password":"pw"}`, bodies[1])
}

func TestHTTPClient_GetFileSignedURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/files/1/signed-url", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"signedUrl": "https://storage/x?sig=1"})
	})
	mux.HandleFunc("GET /api/files/2/signed-url", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	mux.HandleFunc("GET /api/files/3/signed-url", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"error": "storage offline"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	u, err := c.GetFileSignedURL(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://storage/x?sig=1", u)

	_, err = c.GetFileSignedURL(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, "Failed to retrieve signed URL: Signed URL key missing", ServerMessage(err, ""))

	_, err = c.GetFileSignedURL(ctx, 3)
	assert.Equal(t, "Failed to retrieve signed URL: storage offline", ServerMessage(err, ""))
}

func TestHTTPClient_SetupErrorsSendNothing(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	ctx := context.Background()

	errs := []error{
		c.VerifyFolderPassword(ctx, 1, ""),
		c.VerifyFolderPassword(ctx, 0, "pw"),
		c.DeleteFile(ctx, 0),
		c.DeleteFolder(ctx, -1, ""),
	}
	_, err := c.GetFolder(ctx, 0)
	errs = append(errs, err)
	_, err = c.ListFiles(ctx, 0)
	errs = append(errs, err)
	_, err = c.UploadFile(ctx, 1, "a.txt", nil, 0, nil)
	errs = append(errs, err)
	_, err = c.CreateFolder(ctx, "   ", "")
	errs = append(errs, err)

	for _, err := range errs {
		require.Error(t, err)
		assert.True(t, IsSetup(err), "%v", err)
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.False(t, IsNetwork(err))
	}
	assert.Zero(t, hits.Load())
}

func TestHTTPClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL + "/api"
	srv.Close()

	c, err := NewHTTPClient(base)
	require.NoError(t, err)

	_, err = c.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, StatusCode(err))
	assert.Equal(t, "fallback", ServerMessage(err, "fallback"))
}

func TestHTTPClient_Timeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c := newTestClient(t, mux, WithTimeout(50*time.Millisecond))

	_, err := c.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClient_TestDB_ErrorPayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/test-db", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, models.DBStatus{Status: "Error", Message: "DB Error 42"})
	})
	c := newTestClient(t, mux)

	_, err := c.TestDB(context.Background())
	require.Error(t, err)

	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "DB Error 42", ae.Message)

	var st models.DBStatus
	require.NoError(t, ae.DecodeBody(&st))
	assert.Equal(t, "Error", st.Status)
}

func TestHTTPClient_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.PingResponse{Message: "pong"})
	})
	c := newTestClient(t, mux, WithMetrics(NewMetrics(reg)))

	for i := 0; i < 3; i++ {
		_, err := c.Ping(context.Background())
		require.NoError(t, err)
	}

	mfs, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "foldershare_client_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(3), total)
}

func TestHTTPClient_ListKeepsRowsWithBadTimestamps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/folders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "name": "Old", "created_at": "Invalid"},
			{"id": 2, "name": "New", "created_at": "2024-05-06T07:08:09Z"},
		})
	})
	mux.HandleFunc("GET /api/folders/2/files", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 9, "name": "a.txt", "size": 1, "uploaded_at": "someday"},
		})
	})
	var logs bytes.Buffer
	log, err := logging.New(logging.BackendSlog, "warn", &logs)
	require.NoError(t, err)
	c := newTestClient(t, mux, WithLogger(log))

	folders, err := c.ListFolders(context.Background())
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Invalid", folders[0].BadTimestamp)
	assert.Equal(t, 2024, folders[1].CreatedAt.Year())

	files, err := c.ListFiles(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "someday", files[0].BadTimestamp)

	out := logs.String()
	assert.Contains(t, out, "folder_id=1")
	assert.Contains(t, out, "uploaded_at=someday")
}
