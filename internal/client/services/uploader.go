package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/client/uistate"
	"github.com/dmitrijs2005/foldershare/internal/logging"
)

// FileUploader is the upload call of client.Client.
type FileUploader interface {
	UploadFile(ctx context.Context, folderID int64, name string, r io.Reader, size int64, onProgress client.ProgressFunc) (*models.File, error)
}

// Uploader uploads one file at a time into a folder.
type Uploader struct {
	api      FileUploader
	folderID int64
	log      logging.Logger

	mu         sync.Mutex
	busy       bool
	progress   int
	status     uistate.Notice
	selected   string
	onProgress func(int)
	onSuccess  func(context.Context, *models.File)
}

func NewUploader(api FileUploader, folderID int64, log logging.Logger) *Uploader {
	if log == nil {
		log = logging.Nop()
	}
	return &Uploader{api: api, folderID: folderID, log: log.With("folder_id", folderID)}
}

// OnSuccess registers fn, called after a successful upload response and
// before Upload returns.
func (u *Uploader) OnSuccess(fn func(context.Context, *models.File)) {
	u.mu.Lock()
	u.onSuccess = fn
	u.mu.Unlock()
}

// OnProgress registers fn, called whenever the percentage increases.
func (u *Uploader) OnProgress(fn func(int)) {
	u.mu.Lock()
	u.onProgress = fn
	u.mu.Unlock()
}

// Select records the file chosen for the next upload.
func (u *Uploader) Select(name string) {
	u.mu.Lock()
	u.selected = name
	u.status = uistate.Notice{}
	u.mu.Unlock()
}

// UploadPath opens the local file at path and uploads it under its base name.
func (u *Uploader) UploadPath(ctx context.Context, path string) (*models.File, error) {
	if u.Busy() {
		return nil, ErrBusy
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	u.Select(name)
	return u.Upload(ctx, name, f, st.Size())
}

// Upload sends r as file name. It returns ErrBusy while another upload is in
// flight. Progress restarts at 0 and never decreases during the upload.
func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader, size int64) (*models.File, error) {
	u.mu.Lock()
	if u.busy {
		u.mu.Unlock()
		return nil, ErrBusy
	}
	u.busy = true
	u.progress = 0
	u.selected = name
	u.status = uistate.Notice{Text: fmt.Sprintf("Uploading %s...", name), Severity: uistate.SeverityInfo}
	progressFn := u.onProgress
	u.mu.Unlock()

	if progressFn != nil {
		progressFn(0)
	}
	u.log.Info(ctx, "upload started", "file", name, "size", size)

	file, err := u.api.UploadFile(ctx, u.folderID, name, r, size, u.track)

	u.mu.Lock()
	u.busy = false
	if err != nil {
		u.status = uistate.Notice{
			Text:     "Error: " + errorMessage(err, "File upload failed"),
			Severity: uistate.SeverityError,
		}
		u.mu.Unlock()
		u.log.Warn(ctx, "upload failed", "file", name, "error", err)
		return nil, err
	}
	u.selected = ""
	u.status = uistate.Notice{Text: fmt.Sprintf("Successfully uploaded %s!", file.Name), Severity: uistate.SeveritySuccess}
	onSuccess := u.onSuccess
	var finish func(int)
	if u.progress < 100 {
		u.progress = 100
		finish = u.onProgress
	}
	u.mu.Unlock()

	if finish != nil {
		finish(100)
	}
	u.log.Info(ctx, "upload finished", "file", file.Name, "file_id", file.ID)
	if onSuccess != nil {
		onSuccess(ctx, file)
	}
	return file, nil
}

func (u *Uploader) track(loaded, total int64) {
	if total <= 0 {
		return
	}
	pct := int(math.Round(float64(loaded) * 100 / float64(total)))
	if pct > 100 {
		pct = 100
	}

	u.mu.Lock()
	if !u.busy || pct <= u.progress {
		u.mu.Unlock()
		return
	}
	u.progress = pct
	fn := u.onProgress
	u.mu.Unlock()

	if fn != nil {
		fn(pct)
	}
}

func (u *Uploader) Busy() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.busy
}

// Progress returns the percentage of the current or last upload.
func (u *Uploader) Progress() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.progress
}

func (u *Uploader) Status() uistate.Notice {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

func (u *Uploader) Selected() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.selected
}
