package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/client/uistate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploader_ProgressIsMonotonicAndResets(t *testing.T) {
	api := newFakeAPI()
	folder := api.addFolder("Docs", "")
	u := NewUploader(api, folder.ID, nil)

	var mu sync.Mutex
	var seen []int
	u.OnProgress(func(p int) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})

	content := strings.Repeat("x", 37)
	_, err := u.Upload(context.Background(), "a.txt", strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	mu.Lock()
	first := append([]int(nil), seen...)
	seen = nil
	mu.Unlock()

	require.NotEmpty(t, first)
	assert.Equal(t, 0, first[0])
	assert.Equal(t, 100, first[len(first)-1])
	for i := 1; i < len(first); i++ {
		assert.Greater(t, first[i], first[i-1], "progress must strictly increase between reports")
	}
	assert.Equal(t, 100, u.Progress())

	_, err = u.Upload(context.Background(), "b.txt", strings.NewReader("yy"), 2)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, seen[0], "next upload starts from 0")
}

func TestUploader_StatusMessages(t *testing.T) {
	api := newFakeAPI()
	folder := api.addFolder("Docs", "")
	u := NewUploader(api, folder.ID, nil)

	var uploaded *models.File
	u.OnSuccess(func(_ context.Context, f *models.File) { uploaded = f })

	f, err := u.Upload(context.Background(), "photo.jpg", strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, uistate.Notice{Text: "Successfully uploaded photo.jpg!", Severity: uistate.SeveritySuccess}, u.Status())
	assert.Empty(t, u.Selected())
	require.NotNil(t, uploaded)
	assert.Equal(t, f.ID, uploaded.ID)

	api.setFail("UploadFile", apiErr("UploadFile", 400, "No file selected"))
	_, err = u.Upload(context.Background(), "photo.jpg", strings.NewReader("abc"), 3)
	require.Error(t, err)
	assert.Equal(t, uistate.Notice{Text: "Error: No file selected", Severity: uistate.SeverityError}, u.Status())
	assert.False(t, u.Busy(), "control stays enabled for retry")
	assert.Equal(t, "photo.jpg", u.Selected())

	api.setFail("UploadFile", netErr("UploadFile"))
	_, err = u.Upload(context.Background(), "photo.jpg", strings.NewReader("abc"), 3)
	require.Error(t, err)
	assert.Equal(t, "Error: No response received from server.", u.Status().Text)

	api.setFail("UploadFile", errors.New("boom"))
	_, err = u.Upload(context.Background(), "photo.jpg", strings.NewReader("abc"), 3)
	require.Error(t, err)
	assert.Equal(t, "Error: File upload failed", u.Status().Text)
}

func TestUploader_EmptyFileCompletesProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":5,"name":"empty.txt","mime_type":"text/plain","size":0,"folder_id":3}`)
	}))
	defer srv.Close()

	api, err := client.NewHTTPClient(srv.URL + "/api")
	require.NoError(t, err)
	defer func() { _ = api.Close() }()

	fake := newFakeAPI()
	docs := fake.addFolder("Docs", "")

	cases := map[string]struct {
		api      FileUploader
		folderID int64
	}{
		"http": {api, 3},
		"fake": {fake, docs.ID},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			u := NewUploader(tc.api, tc.folderID, nil)
			var reports []int
			u.OnProgress(func(p int) { reports = append(reports, p) })

			_, err := u.Upload(context.Background(), "empty.txt", strings.NewReader(""), 0)
			require.NoError(t, err)

			assert.Equal(t, "Successfully uploaded empty.txt!", u.Status().Text)
			assert.Equal(t, 100, u.Progress())
			assert.Equal(t, []int{0, 100}, reports)
		})
	}
}
