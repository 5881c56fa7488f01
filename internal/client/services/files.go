package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/client/uistate"
	"github.com/dmitrijs2005/foldershare/internal/logging"
)

// FileAPI is the file part of client.Client.
type FileAPI interface {
	ListFiles(ctx context.Context, folderID int64) ([]models.File, error)
	DeleteFile(ctx context.Context, fileID int64) error
}

// Gate decides whether file operations may be sent. access.Controller
// implements it.
type Gate interface {
	Permit(action string) error
	HandleError(err error) bool
}

// FileList holds the files of one folder. Nothing is fetched or shown while
// the gate denies access.
type FileList struct {
	api      FileAPI
	gate     Gate
	folderID int64
	log      logging.Logger
	snackbar *uistate.Snackbar
	dialog   uistate.DeleteDialog[*models.File]

	mu      sync.Mutex
	files   []models.File
	loading bool
	err     string
}

func NewFileList(api FileAPI, gate Gate, folderID int64, snackbar *uistate.Snackbar, log logging.Logger) *FileList {
	if log == nil {
		log = logging.Nop()
	}
	return &FileList{
		api:      api,
		gate:     gate,
		folderID: folderID,
		snackbar: snackbar,
		log:      log.With("folder_id", folderID),
	}
}

// Refresh replaces the collection with the server's. It is refused without
// a request while access is not granted. A 401 revokes access.
func (l *FileList) Refresh(ctx context.Context) error {
	if err := l.gate.Permit("list files"); err != nil {
		l.Clear()
		return err
	}

	l.mu.Lock()
	l.loading = true
	l.err = ""
	l.files = nil
	l.mu.Unlock()

	files, err := l.api.ListFiles(ctx, l.folderID)

	revoked := err != nil && l.gate.HandleError(err)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		if revoked {
			l.err = msgSessionExpired
		} else {
			l.err = errorMessage(err, "Failed fetch")
		}
		l.log.Warn(ctx, "file list refresh failed", "revoked", revoked, "error", err)
		return err
	}
	l.files = files
	return nil
}

// Clear drops the collection, e.g. after access was revoked.
func (l *FileList) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files = nil
	l.loading = false
}

// Files returns a copy of the collection in server order, or nil while
// access is not granted.
func (l *FileList) Files() []models.File {
	if l.gate.Permit("view") != nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.File(nil), l.files...)
}

// Find returns the index and value of a listed file.
func (l *FileList) Find(id int64) (int, models.File, bool) {
	for i, f := range l.Files() {
		if f.ID == id {
			return i, f, true
		}
	}
	return -1, models.File{}, false
}

func (l *FileList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *FileList) Error() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *FileList) setError(msg string) {
	l.mu.Lock()
	l.err = msg
	l.mu.Unlock()
}

func (l *FileList) Dialog() *uistate.DeleteDialog[*models.File] {
	return &l.dialog
}

// RequestDelete opens the confirmation prompt for file, if permitted.
func (l *FileList) RequestDelete(file models.File) error {
	if err := l.gate.Permit("delete"); err != nil {
		return err
	}
	if !l.dialog.Show(
		"Confirm File Deletion",
		fmt.Sprintf("Are you sure you want to delete the file %q? This cannot be undone.", file.Name),
		&file,
		false,
	) {
		return ErrBusy
	}
	return nil
}

func (l *FileList) CancelDelete() bool {
	return l.dialog.Close()
}

// ConfirmDelete deletes the dialog's file. Success closes the prompt and
// refreshes the list from the server; failure closes it and shows a notice.
func (l *FileList) ConfirmDelete(ctx context.Context) error {
	target := l.dialog.Target()
	if !l.dialog.Open() || target == nil {
		return ErrNoDeleteTarget
	}
	if err := l.gate.Permit("delete"); err != nil {
		l.dialog.Close()
		return err
	}
	if !l.dialog.Begin() {
		return ErrBusy
	}

	err := l.api.DeleteFile(ctx, target.ID)
	l.dialog.End()
	l.dialog.Close()

	if err == nil {
		l.log.Info(ctx, "file deleted", "file_id", target.ID)
		l.snackbar.Success(fmt.Sprintf("File %q deleted.", target.Name))
		_ = l.Refresh(ctx)
		return nil
	}

	if l.gate.HandleError(err) {
		l.Clear()
		l.setError(msgSessionExpired)
	}
	l.log.Warn(ctx, "file delete failed", "file_id", target.ID, "error", err)
	l.snackbar.Error("Delete Error: " + errorMessage(err, "Delete failed."))
	return err
}
