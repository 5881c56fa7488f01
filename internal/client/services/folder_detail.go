package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/access"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/client/uistate"
	"github.com/dmitrijs2005/foldershare/internal/logging"
)

var ErrFileNotListed = errors.New("file is not in the current list")

// DetailAPI is what the folder page needs from client.Client.
type DetailAPI interface {
	access.API
	FileAPI
	FileUploader
}

// Slide is one entry of the file viewer.
type Slide struct {
	FileID      int64
	Src         string
	Title       string
	Description string
	MimeType    string
	Video       bool
	Image       bool
}

// FolderDetailPage coordinates everything shown for one opened folder.
// Gated actions attempted without access post a warning and send nothing.
type FolderDetailPage struct {
	access   *access.Controller
	files    *FileList
	uploader *Uploader
	snackbar *uistate.Snackbar
	log      logging.Logger

	mu          sync.Mutex
	fetchingURL bool
	urlErr      string
	viewerOpen  bool
	viewerIndex int
}

func NewFolderDetailPage(api DetailAPI, folderID int64, snackbar *uistate.Snackbar, log logging.Logger) *FolderDetailPage {
	if log == nil {
		log = logging.Nop()
	}
	ac := access.NewController(api, folderID, log)
	p := &FolderDetailPage{
		access:   ac,
		files:    NewFileList(api, ac, folderID, snackbar, log),
		uploader: NewUploader(api, folderID, log),
		snackbar: snackbar,
		log:      log.With("folder_id", folderID),
	}
	p.uploader.OnSuccess(func(ctx context.Context, _ *models.File) {
		_ = p.files.Refresh(ctx)
	})
	return p
}

// Open loads the folder and, when access is already granted, its files.
func (p *FolderDetailPage) Open(ctx context.Context) error {
	p.files.Clear()
	if err := p.access.Load(ctx); err != nil {
		return err
	}
	if p.access.Granted() {
		return p.files.Refresh(ctx)
	}
	return nil
}

// Unlock submits the folder password and, on success, fetches the files
// once.
func (p *FolderDetailPage) Unlock(ctx context.Context, password string) error {
	if err := p.access.SubmitPassword(ctx, password); err != nil {
		return err
	}
	return p.files.Refresh(ctx)
}

// permit posts the denial warning when action is not allowed.
func (p *FolderDetailPage) permit(action string) error {
	err := p.access.Permit(action)
	if err != nil {
		p.snackbar.Warning(err.Error())
	}
	return err
}

// Upload uploads the local file at path into the folder.
func (p *FolderDetailPage) Upload(ctx context.Context, path string) (*models.File, error) {
	if err := p.permit("upload"); err != nil {
		return nil, err
	}
	file, err := p.uploader.UploadPath(ctx, path)
	if err != nil && p.access.HandleError(err) {
		p.files.Clear()
		p.files.setError(msgSessionExpired)
	}
	return file, err
}

// Refresh reloads the file list.
func (p *FolderDetailPage) Refresh(ctx context.Context) error {
	if err := p.permit("list files"); err != nil {
		return err
	}
	return p.files.Refresh(ctx)
}

// RequestDeleteFile opens the delete prompt for a listed file.
func (p *FolderDetailPage) RequestDeleteFile(fileID int64) error {
	if err := p.permit("delete"); err != nil {
		return err
	}
	_, file, ok := p.files.Find(fileID)
	if !ok {
		return ErrFileNotListed
	}
	return p.files.RequestDelete(file)
}

func (p *FolderDetailPage) ConfirmDeleteFile(ctx context.Context) error {
	return p.files.ConfirmDelete(ctx)
}

func (p *FolderDetailPage) CancelDelete() bool {
	return p.files.CancelDelete()
}

// View resolves the signed URL of a listed file and opens the viewer on it.
func (p *FolderDetailPage) View(ctx context.Context, fileID int64) (string, error) {
	if err := p.permit("view"); err != nil {
		return "", err
	}
	idx, _, ok := p.files.Find(fileID)
	if !ok {
		return "", ErrFileNotListed
	}

	p.mu.Lock()
	if p.fetchingURL {
		p.mu.Unlock()
		return "", ErrBusy
	}
	p.fetchingURL = true
	p.urlErr = ""
	p.mu.Unlock()

	u, err := p.signedURL(ctx, fileID)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchingURL = false
	if err != nil {
		p.urlErr = "URL fetch failed: " + errorMessage(err, err.Error())
		return "", err
	}
	p.viewerIndex = idx
	p.viewerOpen = true
	return u, nil
}

// CopyLink returns a shareable signed URL for a listed file.
func (p *FolderDetailPage) CopyLink(ctx context.Context, fileID int64) (string, error) {
	if err := p.permit("copy links"); err != nil {
		return "", err
	}
	_, file, ok := p.files.Find(fileID)
	if !ok {
		return "", ErrFileNotListed
	}

	u, err := p.signedURL(ctx, fileID)
	if err != nil {
		p.snackbar.Error("Could not get share link: " + errorMessage(err, err.Error()))
		return "", err
	}
	p.snackbar.Success(fmt.Sprintf("Share link for %q ready.", file.Name))
	return u, nil
}

func (p *FolderDetailPage) signedURL(ctx context.Context, fileID int64) (string, error) {
	u, err := p.access.SignedURL(ctx, fileID)
	if err != nil && p.access.State() == access.StateNeedsPassword {
		p.files.Clear()
		p.files.setError(msgSessionExpired)
	}
	return u, err
}

func (p *FolderDetailPage) CloseViewer() {
	p.mu.Lock()
	p.viewerOpen = false
	p.mu.Unlock()
}

// Viewer reports whether the viewer is open and on which slide.
func (p *FolderDetailPage) Viewer() (open bool, index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewerOpen, p.viewerIndex
}

// Slides builds the viewer entries for the listed files. Files without a
// cached signed URL get an empty Src.
func (p *FolderDetailPage) Slides() []Slide {
	files := p.files.Files()
	slides := make([]Slide, 0, len(files))
	for _, f := range files {
		src, _ := p.access.Cache().Get(f.ID)
		slides = append(slides, Slide{
			FileID:      f.ID,
			Src:         src,
			Title:       f.Name,
			Description: "Size: " + models.FormatFileSize(f.Size),
			MimeType:    f.MimeType,
			Video:       f.IsVideo(),
			Image:       f.IsImage(),
		})
	}
	return slides
}

func (p *FolderDetailPage) FetchingURL() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchingURL
}

func (p *FolderDetailPage) URLError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.urlErr
}

func (p *FolderDetailPage) Access() *access.Controller { return p.access }

func (p *FolderDetailPage) Files() *FileList { return p.files }

func (p *FolderDetailPage) Uploader() *Uploader { return p.uploader }

func (p *FolderDetailPage) Snackbar() *uistate.Snackbar { return p.snackbar }
