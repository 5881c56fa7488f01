package models

import "time"

// Folder is a named container of files. IsProtected means a password must be
// verified before its files can be listed, viewed or changed.
type Folder struct {
	ID          int64
	Name        string
	CreatedAt   time.Time
	IsProtected bool

	// BadTimestamp holds a created_at value that could not be parsed.
	// CreatedAt is zero then.
	BadTimestamp string
}

// CreateFolderRequest is the POST /folders body. Password is omitted for
// public folders.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
}

// VerifyPasswordRequest is the body of the verify-password and protected
// folder delete calls.
type VerifyPasswordRequest struct {
	Password string `json:"password"`
}

// AccessResult tells whether the current session may use a folder.
type AccessResult struct {
	Access bool   `json:"access"`
	Reason string `json:"reason,omitempty"`
}

// PingResponse is returned by GET /ping.
type PingResponse struct {
	Message string `json:"message"`
}

// DBStatus is returned by GET /test-db, on success and on failure.
type DBStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SignedURLResponse is returned by GET /files/:id/signed-url.
type SignedURLResponse struct {
	SignedURL string `json:"signedUrl"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse is the error payload of any failing API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}
