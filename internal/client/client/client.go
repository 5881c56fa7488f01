package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/foldershare/internal/client/models"
)

// ProgressFunc receives the number of file bytes sent so far and the total.
// total is zero when the size is unknown.
type ProgressFunc func(loaded, total int64)

type Client interface {
	Close() error
	Ping(ctx context.Context) (*models.PingResponse, error)
	TestDB(ctx context.Context) (*models.DBStatus, error)

	CreateFolder(ctx context.Context, name, password string) (*models.Folder, error)
	ListFolders(ctx context.Context) ([]models.Folder, error)
	GetFolder(ctx context.Context, id int64) (*models.Folder, error)
	VerifyFolderPassword(ctx context.Context, id int64, password string) error
	CheckFolderAccess(ctx context.Context, id int64) (*models.AccessResult, error)
	DeleteFolder(ctx context.Context, id int64, password string) error

	ListFiles(ctx context.Context, folderID int64) ([]models.File, error)
	UploadFile(ctx context.Context, folderID int64, name string, r io.Reader, size int64, onProgress ProgressFunc) (*models.File, error)
	GetFileSignedURL(ctx context.Context, fileID int64) (string, error)
	DeleteFile(ctx context.Context, fileID int64) error
}
