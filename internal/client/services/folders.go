package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/client/uistate"
	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/logging"
)

// FolderAPI is the folder part of client.Client.
type FolderAPI interface {
	ListFolders(ctx context.Context) ([]models.Folder, error)
	CreateFolder(ctx context.Context, name, password string) (*models.Folder, error)
	DeleteFolder(ctx context.Context, id int64, password string) error
}

// FolderList holds the folder collection and its create/delete flows.
type FolderList struct {
	api      FolderAPI
	log      logging.Logger
	snackbar *uistate.Snackbar
	dialog   uistate.DeleteDialog[*models.Folder]

	mu      sync.Mutex
	folders []models.Folder
	loading bool
	err     string
}

func NewFolderList(api FolderAPI, snackbar *uistate.Snackbar, log logging.Logger) *FolderList {
	if log == nil {
		log = logging.Nop()
	}
	return &FolderList{api: api, snackbar: snackbar, log: log}
}

// Refresh replaces the collection with the server's. On failure the
// collection is emptied and Error is set.
func (l *FolderList) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.err = ""
	l.mu.Unlock()

	folders, err := l.api.ListFolders(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.folders = nil
		l.err = errorMessage(err, "Failed to fetch folders")
		l.log.Warn(ctx, "folder list refresh failed", "error", err)
		return err
	}
	l.folders = folders
	return nil
}

// Folders returns a copy of the collection in server order.
func (l *FolderList) Folders() []models.Folder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Folder(nil), l.folders...)
}

// Find returns the listed folder with the given id.
func (l *FolderList) Find(id int64) (models.Folder, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range l.folders {
		if f.ID == id {
			return f, true
		}
	}
	return models.Folder{}, false
}

func (l *FolderList) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *FolderList) Error() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Create makes a folder. The name is trimmed and must not be empty; an
// empty password creates a public folder. Success refreshes the list.
func (l *FolderList) Create(ctx context.Context, name, password string) (*models.Folder, error) {
	if common.Blank(name) {
		return nil, common.Validationf("Folder name cannot be empty.")
	}
	name = strings.TrimSpace(name)

	folder, err := l.api.CreateFolder(ctx, name, password)
	if err != nil {
		l.log.Warn(ctx, "folder create failed", "name", name, "error", err)
		return nil, err
	}

	l.log.Info(ctx, "folder created", "folder_id", folder.ID, "protected", folder.IsProtected)
	l.snackbar.Success("Folder created successfully!")
	_ = l.Refresh(ctx)
	return folder, nil
}

// Dialog exposes the delete confirmation state for rendering and input.
func (l *FolderList) Dialog() *uistate.DeleteDialog[*models.Folder] {
	return &l.dialog
}

// RequestDelete opens the confirmation prompt for folder. It returns ErrBusy
// while another delete is in flight.
func (l *FolderList) RequestDelete(folder models.Folder) error {
	if l.dialog.Busy() {
		return ErrBusy
	}
	l.snackbar.Dismiss()
	ok := l.dialog.Show(
		"Confirm Folder Deletion",
		fmt.Sprintf("Are you sure you want to delete the folder %q and ALL its contents? This cannot be undone.", folder.Name),
		&folder,
		folder.IsProtected,
	)
	if !ok {
		return ErrBusy
	}
	return nil
}

// CancelDelete closes the prompt unless a delete is in flight.
func (l *FolderList) CancelDelete() bool {
	return l.dialog.Close()
}

// ConfirmDelete deletes the dialog's folder. A rejected password keeps the
// prompt open with a field error; any other failure closes it and shows a
// notice. Success closes it and refreshes the list.
func (l *FolderList) ConfirmDelete(ctx context.Context) error {
	target := l.dialog.Target()
	if !l.dialog.Open() || target == nil {
		return ErrNoDeleteTarget
	}

	var password string
	if target.IsProtected {
		password = l.dialog.Password()
		if password == "" {
			l.dialog.SetPasswordError("Password is required to delete this protected folder.")
			return common.Validationf("Password is required to delete this protected folder.")
		}
	}

	if !l.dialog.Begin() {
		return ErrBusy
	}
	l.dialog.SetPasswordError("")

	err := l.api.DeleteFolder(ctx, target.ID, password)
	l.dialog.End()

	if err == nil {
		l.dialog.Close()
		l.log.Info(ctx, "folder deleted", "folder_id", target.ID)
		l.snackbar.Success(fmt.Sprintf("Folder %q deleted.", target.Name))
		_ = l.Refresh(ctx)
		return nil
	}

	msg := errorMessage(err, "Could not delete folder.")
	if client.StatusCode(err) == http.StatusForbidden {
		l.dialog.RejectPassword(msg)
		l.log.Info(ctx, "folder delete password rejected", "folder_id", target.ID)
		return err
	}

	l.log.Warn(ctx, "folder delete failed", "folder_id", target.ID, "error", err)
	l.snackbar.Error("Delete Error: " + msg)
	l.dialog.Close()
	return err
}
