package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/foldershare/internal/client/client"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
)

// fakeAPI is an in-memory stand-in for the HTTP API with per-call counters
// and injectable failures.
type fakeAPI struct {
	mu        sync.Mutex
	folders   []models.Folder
	passwords map[int64]string
	files     map[int64][]models.File
	granted   map[int64]bool
	nextID    int64
	calls     map[string]int
	fail      map[string]error

	// uploadStarted/uploadRelease make UploadFile block mid-flight.
	uploadStarted chan struct{}
	uploadRelease chan struct{}

	ping   *models.PingResponse
	dbStat *models.DBStatus
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		passwords: map[int64]string{},
		files:     map[int64][]models.File{},
		granted:   map[int64]bool{},
		nextID:    100,
		calls:     map[string]int{},
		fail:      map[string]error{},
		ping:      &models.PingResponse{Message: "pong"},
		dbStat:    &models.DBStatus{Status: "Success", Message: "DB connection OK (3)"},
	}
}

func apiErr(op string, status int, msg string) error {
	return &client.APIError{Op: op, Kind: client.KindResponse, StatusCode: status, Message: msg}
}

func netErr(op string) error {
	return &client.APIError{Op: op, Kind: client.KindNetwork, Err: io.ErrUnexpectedEOF}
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) setFail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, op)
		return
	}
	f.fail[op] = err
}

// enter records a call and returns the injected failure, with f.mu held.
func (f *fakeAPI) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeAPI) addFolder(name, password string) models.Folder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addFolderLocked(name, password)
}

func (f *fakeAPI) addFolderLocked(name, password string) models.Folder {
	f.nextID++
	folder := models.Folder{ID: f.nextID, Name: name, IsProtected: password != ""}
	f.folders = append(f.folders, folder)
	if password != "" {
		f.passwords[folder.ID] = password
	}
	return folder
}

func (f *fakeAPI) addFile(folderID int64, name, mime string, size int64) models.File {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	file := models.File{ID: f.nextID, Name: name, MimeType: mime, Size: size, FolderID: folderID}
	f.files[folderID] = append(f.files[folderID], file)
	return file
}

func (f *fakeAPI) revoke(folderID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.granted, folderID)
}

func (f *fakeAPI) folderLocked(id int64) (models.Folder, bool) {
	for _, fo := range f.folders {
		if fo.ID == id {
			return fo, true
		}
	}
	return models.Folder{}, false
}

func (f *fakeAPI) allowedLocked(folderID int64) bool {
	fo, ok := f.folderLocked(folderID)
	return ok && (!fo.IsProtected || f.granted[folderID])
}

func (f *fakeAPI) Ping(ctx context.Context) (*models.PingResponse, error) {
	err := f.enter("Ping")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.ping, nil
}

func (f *fakeAPI) TestDB(ctx context.Context) (*models.DBStatus, error) {
	err := f.enter("TestDB")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.dbStat, nil
}

func (f *fakeAPI) CreateFolder(ctx context.Context, name, password string) (*models.Folder, error) {
	err := f.enter("CreateFolder")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, fo := range f.folders {
		if fo.Name == name {
			return nil, apiErr("CreateFolder", http.StatusConflict, fmt.Sprintf("Folder '%s' already exists", name))
		}
	}
	fo := f.addFolderLocked(name, password)
	return &fo, nil
}

func (f *fakeAPI) ListFolders(ctx context.Context) ([]models.Folder, error) {
	err := f.enter("ListFolders")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return append([]models.Folder{}, f.folders...), nil
}

func (f *fakeAPI) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	err := f.enter("GetFolder")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	fo, ok := f.folderLocked(id)
	if !ok {
		return nil, apiErr("GetFolder", http.StatusNotFound, fmt.Sprintf("Folder with ID %d not found", id))
	}
	return &fo, nil
}

func (f *fakeAPI) VerifyFolderPassword(ctx context.Context, id int64, password string) error {
	err := f.enter("VerifyFolderPassword")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	if f.passwords[id] != password {
		return apiErr("VerifyFolderPassword", http.StatusForbidden, "Incorrect password")
	}
	f.granted[id] = true
	return nil
}

func (f *fakeAPI) CheckFolderAccess(ctx context.Context, id int64) (*models.AccessResult, error) {
	err := f.enter("CheckFolderAccess")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if f.allowedLocked(id) {
		return &models.AccessResult{Access: true}, nil
	}
	return &models.AccessResult{Access: false, Reason: "Password verification required"}, nil
}

func (f *fakeAPI) DeleteFolder(ctx context.Context, id int64, password string) error {
	err := f.enter("DeleteFolder")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	fo, ok := f.folderLocked(id)
	if !ok {
		return apiErr("DeleteFolder", http.StatusNotFound, "Folder not found")
	}
	if fo.IsProtected {
		if password == "" {
			return apiErr("DeleteFolder", http.StatusBadRequest, "Password required in request body to delete this folder")
		}
		if f.passwords[id] != password {
			return apiErr("DeleteFolder", http.StatusForbidden, "Incorrect password")
		}
	}
	kept := f.folders[:0]
	for _, x := range f.folders {
		if x.ID != id {
			kept = append(kept, x)
		}
	}
	f.folders = kept
	delete(f.files, id)
	return nil
}

func (f *fakeAPI) ListFiles(ctx context.Context, folderID int64) ([]models.File, error) {
	err := f.enter("ListFiles")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !f.allowedLocked(folderID) {
		return nil, apiErr("ListFiles", http.StatusUnauthorized, "Password verification required")
	}
	return append([]models.File{}, f.files[folderID]...), nil
}

func (f *fakeAPI) UploadFile(ctx context.Context, folderID int64, name string, r io.Reader, size int64, onProgress client.ProgressFunc) (*models.File, error) {
	err := f.enter("UploadFile")
	started, release := f.uploadStarted, f.uploadRelease
	allowed := f.allowedLocked(folderID)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apiErr("UploadFile", http.StatusUnauthorized, "Password verification required")
	}

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}

	buf := make([]byte, 4)
	var loaded int64
	for {
		n, rerr := r.Read(buf)
		loaded += int64(n)
		if n > 0 && onProgress != nil {
			onProgress(loaded, size)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, rerr
		}
	}

	file := f.addFile(folderID, name, "application/octet-stream", loaded)
	return &file, nil
}

func (f *fakeAPI) GetFileSignedURL(ctx context.Context, fileID int64) (string, error) {
	err := f.enter("GetFileSignedURL")
	defer f.mu.Unlock()
	if err != nil {
		return "", err
	}
	for folderID, files := range f.files {
		for _, file := range files {
			if file.ID != fileID {
				continue
			}
			if !f.allowedLocked(folderID) {
				return "", apiErr("GetFileSignedURL", http.StatusUnauthorized, "Password verification required for parent folder to view this file")
			}
			return fmt.Sprintf("https://storage.test/%d?sig=abc", fileID), nil
		}
	}
	return "", apiErr("GetFileSignedURL", http.StatusNotFound, "File not found")
}

func (f *fakeAPI) DeleteFile(ctx context.Context, fileID int64) error {
	err := f.enter("DeleteFile")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	for folderID, files := range f.files {
		for i, file := range files {
			if file.ID != fileID {
				continue
			}
			if !f.allowedLocked(folderID) {
				return apiErr("DeleteFile", http.StatusUnauthorized, "Password verification required for parent folder to delete this file")
			}
			f.files[folderID] = append(files[:i:i], files[i+1:]...)
			return nil
		}
	}
	return apiErr("DeleteFile", http.StatusNotFound, "File not found")
}
