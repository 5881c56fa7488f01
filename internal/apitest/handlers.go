package apitest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const msgVerificationRequired = "Password verification required"

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (s *Server) handleTestDB(c *gin.Context) {
	s.mu.Lock()
	down, n := s.dbDown, len(s.folders)
	s.mu.Unlock()

	if down {
		c.JSON(http.StatusInternalServerError, models.DBStatus{Status: "Error", Message: "DB Error: connection refused"})
		return
	}
	c.JSON(http.StatusOK, models.DBStatus{Status: "Success", Message: fmt.Sprintf("DB connection OK (%d folders)", n)})
}

// session returns the caller's session id, issuing a new cookie when the
// request has none.
func (s *Server) session(c *gin.Context) string {
	if sid, err := c.Cookie(common.SessionCookieName); err == nil && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	c.SetCookie(common.SessionCookieName, sid, 0, "/", "", false, true)
	return sid
}

func (s *Server) grantedLocked(sid string, f *folderRecord) bool {
	return !f.IsProtected || s.sessions[sid][f.ID]
}

func (s *Server) folderLocked(id int64) *folderRecord {
	for _, f := range s.folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (s *Server) fileLocked(id int64) *fileRecord {
	for _, f := range s.files {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func idParam(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateFolder(c *gin.Context) {
	var req models.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Folder name is required"})
		return
	}

	var hash []byte
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.folders {
		if f.Name == name {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Folder '%s' already exists", name)})
			return
		}
	}
	s.nextID++
	rec := &folderRecord{
		Folder: models.Folder{ID: s.nextID, Name: name, CreatedAt: time.Now().UTC(), IsProtected: hash != nil},
		hash:   hash,
	}
	s.folders = append(s.folders, rec)
	c.JSON(http.StatusCreated, rec.Folder)
}

func (s *Server) handleListFolders(c *gin.Context) {
	s.mu.Lock()
	out := make([]models.Folder, 0, len(s.folders))
	for _, f := range s.folders {
		out = append(out, f.Folder)
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetFolder(c *gin.Context) {
	id, ok := idParam(c, "folder")
	if !ok {
		return
	}
	s.mu.Lock()
	f := s.folderLocked(id)
	s.mu.Unlock()
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Folder with ID %d not found", id)})
		return
	}
	c.JSON(http.StatusOK, f.Folder)
}

func (s *Server) handleCheckAccess(c *gin.Context) {
	id, ok := idParam(c, "folder")
	if !ok {
		return
	}
	sid := s.session(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.folderLocked(id)
	switch {
	case f == nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
	case s.grantedLocked(sid, f):
		c.JSON(http.StatusOK, models.AccessResult{Access: true})
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"access": false, "reason": msgVerificationRequired, "error": msgVerificationRequired})
	}
}

func (s *Server) handleVerifyPassword(c *gin.Context) {
	id, ok := idParam(c, "folder")
	if !ok {
		return
	}
	var req models.VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}
	sid := s.session(c)

	s.mu.Lock()
	f := s.folderLocked(id)
	s.mu.Unlock()
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	if !f.IsProtected {
		c.JSON(http.StatusOK, gin.H{"message": "Folder is not password protected"})
		return
	}
	if bcrypt.CompareHashAndPassword(f.hash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect password"})
		return
	}

	s.mu.Lock()
	if s.sessions[sid] == nil {
		s.sessions[sid] = map[int64]bool{}
	}
	s.sessions[sid][id] = true
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "Password verified"})
}

func (s *Server) handleDeleteFolder(c *gin.Context) {
	id, ok := idParam(c, "folder")
	if !ok {
		return
	}
	var req models.VerifyPasswordRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	s.mu.Lock()
	f := s.folderLocked(id)
	s.mu.Unlock()
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return
	}
	if f.IsProtected {
		if req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password required in request body to delete this folder"})
			return
		}
		if bcrypt.CompareHashAndPassword(f.hash, []byte(req.Password)) != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Incorrect password"})
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	folders := s.folders[:0]
	for _, x := range s.folders {
		if x.ID != id {
			folders = append(folders, x)
		}
	}
	s.folders = folders
	files := s.files[:0]
	for _, x := range s.files {
		if x.FolderID != id {
			files = append(files, x)
		}
	}
	s.files = files
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Folder '%s' deleted", f.Name)})
}

// gatedFolder resolves the :id folder and checks the session grant. It
// writes the error response itself.
func (s *Server) gatedFolder(c *gin.Context) (*folderRecord, bool) {
	id, ok := idParam(c, "folder")
	if !ok {
		return nil, false
	}
	sid := s.session(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.folderLocked(id)
	if f == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Folder not found"})
		return nil, false
	}
	if !s.grantedLocked(sid, f) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgVerificationRequired})
		return nil, false
	}
	return f, true
}

func (s *Server) handleListFiles(c *gin.Context) {
	f, ok := s.gatedFolder(c)
	if !ok {
		return
	}
	s.mu.Lock()
	out := make([]models.File, 0)
	for _, x := range s.files {
		if x.FolderID == f.ID {
			out = append(out, x.File)
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleUploadFile(c *gin.Context) {
	f, ok := s.gatedFolder(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec := &fileRecord{
		File: models.File{
			ID:         s.nextID,
			Name:       fh.Filename,
			MimeType:   mimeType,
			Size:       int64(len(data)),
			UploadedAt: time.Now().UTC(),
			FolderID:   f.ID,
		},
		key:  fmt.Sprintf("folders/%d/%s", f.ID, uuid.NewString()),
		data: data,
	}
	s.files = append(s.files, rec)
	c.JSON(http.StatusCreated, rec.File)
}

// gatedFile resolves the :id file and checks the grant of its folder.
func (s *Server) gatedFile(c *gin.Context, action string) (*fileRecord, bool) {
	id, ok := idParam(c, "file")
	if !ok {
		return nil, false
	}
	sid := s.session(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	file := s.fileLocked(id)
	if file == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return nil, false
	}
	folder := s.folderLocked(file.FolderID)
	if folder == nil || !s.grantedLocked(sid, folder) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgVerificationRequired + " for parent folder to " + action + " this file"})
		return nil, false
	}
	return file, true
}

func (s *Server) handleSignedURL(c *gin.Context) {
	file, ok := s.gatedFile(c, "view")
	if !ok {
		return
	}
	req, err := s.presign.PresignGetObject(c.Request.Context(), &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &file.key,
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate signed URL"})
		return
	}
	c.JSON(http.StatusOK, models.SignedURLResponse{SignedURL: req.URL})
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	file, ok := s.gatedFile(c, "delete")
	if !ok {
		return
	}
	s.mu.Lock()
	files := s.files[:0]
	for _, x := range s.files {
		if x.ID != file.ID {
			files = append(files, x)
		}
	}
	s.files = files
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// handleStorage serves object content for presigned GET URLs. Only the
// presence and expiry of the signature are checked.
func (s *Server) handleStorage(c *gin.Context) {
	q := c.Request.URL.Query()
	if q.Get("X-Amz-Signature") == "" || q.Get("X-Amz-Credential") == "" {
		c.String(http.StatusForbidden, "missing signature")
		return
	}
	signed, err := time.Parse("20060102T150405Z", q.Get("X-Amz-Date"))
	expires, err2 := strconv.Atoi(q.Get("X-Amz-Expires"))
	if err != nil || err2 != nil || time.Now().After(signed.Add(time.Duration(expires)*time.Second)) {
		c.String(http.StatusForbidden, "request has expired")
		return
	}
	if c.Param("bucket") != s.bucket {
		c.String(http.StatusNotFound, "no such bucket")
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")

	s.mu.Lock()
	var rec *fileRecord
	for _, f := range s.files {
		if f.key == key {
			rec = f
			break
		}
	}
	s.mu.Unlock()
	if rec == nil {
		c.String(http.StatusNotFound, "no such key")
		return
	}
	c.Data(http.StatusOK, rec.MimeType, rec.data)
}
