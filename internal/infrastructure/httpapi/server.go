// Package httpapi maps the request/response contract onto store calls.
// The router is deliberately forgiving: malformed bodies, missing fields
// and unknown identifiers degrade to defaults or no-ops and still get the
// generic success envelope. The only caller-visible failure is a fatal
// one (a failed durable write).
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tfaber/taskd/internal/application"
)

// Server is the API HTTP server.
type Server struct {
	addr   string
	store  *application.Store
	logger *slog.Logger
	extra  map[string]http.Handler
	server *http.Server
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHandler mounts an additional handler on the given route pattern
// (the live event feed, for instance).
func WithHandler(pattern string, h http.Handler) Option {
	return func(s *Server) { s.extra[pattern] = h }
}

// NewServer creates an API server around the store.
func NewServer(addr string, store *application.Store, opts ...Option) *Server {
	s := &Server{
		addr:   addr,
		store:  store,
		logger: slog.Default(),
		extra:  make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with request logging attached.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleListProjects)
	mux.HandleFunc("GET /project", s.handleGetProject)
	mux.HandleFunc("POST /project/create", s.handleCreateProject)
	mux.HandleFunc("POST /project/name", s.handleRenameProject)
	mux.HandleFunc("POST /project/description", s.handleDescribeProject)
	mux.HandleFunc("GET /task", s.handleGetTask)
	mux.HandleFunc("POST /task/create", s.handleCreateTask)
	mux.HandleFunc("POST /task/title", s.handleTaskTitle)
	mux.HandleFunc("POST /task/description", s.handleTaskDescription)
	mux.HandleFunc("POST /task/dependency", s.handleTaskDependency)
	mux.HandleFunc("POST /task/state", s.handleTaskState)
	mux.HandleFunc("POST /task/comment", s.handleTaskComment)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	for pattern, h := range s.extra {
		mux.Handle(pattern, h)
	}

	return s.logRequests(mux)
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	s.logger.Info("api server starting", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
