package apitest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/foldershare/internal/client/models"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/gin-gonic/gin"
)

const (
	defaultBucket = "foldershare"
	defaultRegion = "us-east-1"
	accessKey     = "apitest"
	secretKey     = "apitest-secret"
)

type folderRecord struct {
	models.Folder
	hash []byte
}

type fileRecord struct {
	models.File
	key  string
	data []byte
}

// Server is a running in-memory API. URL is the API base, e.g.
// http://127.0.0.1:41234/api.
type Server struct {
	URL string

	srv     *httptest.Server
	engine  *gin.Engine
	log     logging.Logger
	bucket  string
	expires time.Duration
	presign *s3.PresignClient

	mu       sync.Mutex
	nextID   int64
	folders  []*folderRecord
	files    []*fileRecord
	sessions map[string]map[int64]bool
	dbDown   bool
	hits     map[string]int
}

type Option func(*Server)

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithSignedURLExpiry sets the lifetime of issued signed URLs.
func WithSignedURLExpiry(d time.Duration) Option {
	return func(s *Server) { s.expires = d }
}

// New starts a server on a loopback port.
func New(opts ...Option) (*Server, error) {
	gin.SetMode(gin.TestMode)

	s := &Server{
		log:      logging.Nop(),
		bucket:   defaultBucket,
		expires:  15 * time.Minute,
		sessions: map[string]map[int64]bool{},
		hits:     map[string]int{},
	}
	for _, o := range opts {
		o(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.countRequests())
	s.setupRoutes()

	s.srv = httptest.NewServer(s.engine)
	s.URL = s.srv.URL + "/api"

	pc, err := newPresignClient(s.srv.URL + "/storage")
	if err != nil {
		s.srv.Close()
		return nil, fmt.Errorf("presign client: %w", err)
	}
	s.presign = pc
	return s, nil
}

func newPresignClient(endpoint string) (*s3.PresignClient, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(defaultRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return s3.NewPresignClient(c), nil
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/ping", s.handlePing)
	api.GET("/test-db", s.handleTestDB)

	api.POST("/folders", s.handleCreateFolder)
	api.GET("/folders", s.handleListFolders)
	api.GET("/folders/:id", s.handleGetFolder)
	api.DELETE("/folders/:id", s.handleDeleteFolder)
	api.GET("/folders/:id/check-access", s.handleCheckAccess)
	api.POST("/folders/:id/verify-password", s.handleVerifyPassword)
	api.GET("/folders/:id/files", s.handleListFiles)
	api.POST("/folders/:id/files", s.handleUploadFile)

	api.GET("/files/:id/signed-url", s.handleSignedURL)
	api.DELETE("/files/:id", s.handleDeleteFile)

	s.engine.GET("/storage/:bucket/*key", s.handleStorage)
}

// countRequests records every request by method and route pattern.
func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		s.mu.Lock()
		s.hits[c.Request.Method+" "+route]++
		s.mu.Unlock()

		s.log.Debug(c.Request.Context(), "apitest request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"request_id", c.GetHeader("X-Request-ID"),
		)
	}
}

// Requests returns how many requests matched method and route, where route
// is the registered pattern, e.g. "/api/folders/:id/files".
func (s *Server) Requests(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+route]
}

// ExpireSessions drops every folder grant, as a server restart would.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]map[int64]bool{}
}

// SetDBDown makes /test-db report a database failure.
func (s *Server) SetDBDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbDown = down
}

// Handler exposes the router, e.g. for use with a custom listener.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) Close() { s.srv.Close() }
