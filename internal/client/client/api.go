package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/common"
)

func (c *HTTPClient) Ping(ctx context.Context) (*models.PingResponse, error) {
	var out models.PingResponse
	if err := c.do(ctx, call{op: "Ping", method: http.MethodGet, path: "/ping"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestDB asks the API to check its database connection. On an error status
// the payload is still available through (*APIError).DecodeBody.
func (c *HTTPClient) TestDB(ctx context.Context) (*models.DBStatus, error) {
	var out models.DBStatus
	if err := c.do(ctx, call{op: "TestDB", method: http.MethodGet, path: "/test-db"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateFolder(ctx context.Context, name, password string) (*models.Folder, error) {
	const op = "CreateFolder"
	if common.Blank(name) {
		return nil, setupError(op, "folder name is required")
	}

	var out models.Folder
	req := models.CreateFolderRequest{Name: name, Password: password}
	if err := c.do(ctx, call{op: op, method: http.MethodPost, path: "/folders", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListFolders(ctx context.Context) ([]models.Folder, error) {
	var out []models.Folder
	if err := c.do(ctx, call{op: "ListFolders", method: http.MethodGet, path: "/folders"}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Folder{}
	}
	for _, f := range out {
		if f.BadTimestamp != "" {
			c.log.Warn(ctx, "unparseable folder timestamp", "folder_id", f.ID, "created_at", f.BadTimestamp)
		}
	}
	return out, nil
}

func (c *HTTPClient) GetFolder(ctx context.Context, id int64) (*models.Folder, error) {
	const op = "GetFolder"
	if id <= 0 {
		return nil, setupError(op, "folder ID is required")
	}

	var out models.Folder
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: folderPath(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyFolderPassword establishes a session grant for the folder. The grant
// lives in the cookie jar.
func (c *HTTPClient) VerifyFolderPassword(ctx context.Context, id int64, password string) error {
	const op = "VerifyFolderPassword"
	if id <= 0 || password == "" {
		return setupError(op, "folder ID and password required")
	}

	req := models.VerifyPasswordRequest{Password: password}
	return c.do(ctx, call{op: op, method: http.MethodPost, path: folderPath(id) + "/verify-password", body: req}, nil)
}

// CheckFolderAccess reports whether the session may use the folder. A 401 is
// an answer, not an error: it yields Access=false with the server's reason.
func (c *HTTPClient) CheckFolderAccess(ctx context.Context, id int64) (*models.AccessResult, error) {
	const op = "CheckFolderAccess"
	if id <= 0 {
		return nil, setupError(op, "folder ID is required")
	}

	var out models.AccessResult
	err := c.do(ctx, call{op: op, method: http.MethodGet, path: folderPath(id) + "/check-access"}, &out)
	if StatusCode(err) == http.StatusUnauthorized {
		return &models.AccessResult{Access: false, Reason: ServerMessage(err, "Unauthorized")}, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFolder removes a folder and its files. The password is sent only
// when non-empty.
func (c *HTTPClient) DeleteFolder(ctx context.Context, id int64, password string) error {
	const op = "DeleteFolder"
	if id <= 0 {
		return setupError(op, "folder ID is required")
	}

	cl := call{op: op, method: http.MethodDelete, path: folderPath(id)}
	if password != "" {
		cl.body = models.VerifyPasswordRequest{Password: password}
	}
	return c.do(ctx, cl, nil)
}

func (c *HTTPClient) ListFiles(ctx context.Context, folderID int64) ([]models.File, error) {
	const op = "ListFiles"
	if folderID <= 0 {
		return nil, setupError(op, "folder ID required to list files")
	}

	var out []models.File
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: folderPath(folderID) + "/files"}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.File{}
	}
	for _, f := range out {
		if f.BadTimestamp != "" {
			c.log.Warn(ctx, "unparseable file timestamp", "file_id", f.ID, "uploaded_at", f.BadTimestamp)
		}
	}
	return out, nil
}

func (c *HTTPClient) GetFileSignedURL(ctx context.Context, fileID int64) (string, error) {
	const op = "GetFileSignedURL"
	if fileID <= 0 {
		return "", setupError(op, "file ID is required to get signed URL")
	}

	var out models.SignedURLResponse
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: filePath(fileID) + "/signed-url"}, &out); err != nil {
		return "", err
	}
	if out.SignedURL == "" {
		reason := out.Error
		if reason == "" {
			reason = "Signed URL key missing"
		}
		return "", &APIError{
			Op:         op,
			Kind:       KindResponse,
			StatusCode: http.StatusOK,
			Message:    "Failed to retrieve signed URL: " + reason,
		}
	}
	return out.SignedURL, nil
}

func (c *HTTPClient) DeleteFile(ctx context.Context, fileID int64) error {
	const op = "DeleteFile"
	if fileID <= 0 {
		return setupError(op, "file ID is required for deletion")
	}
	return c.do(ctx, call{op: op, method: http.MethodDelete, path: filePath(fileID)}, nil)
}

func folderPath(id int64) string { return fmt.Sprintf("/folders/%d", id) }

func filePath(id int64) string { return fmt.Sprintf("/files/%d", id) }
