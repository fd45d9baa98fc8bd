// Package api exposes the assistant over HTTP REST.
//
// Endpoints:
//
//	GET  /health                        liveness probe
//	GET  /ready                         readiness probe (pings sqlite)
//	POST /api/chat                      one conversational turn
//	GET/POST   /api/memories            list / create
//	PUT/DELETE /api/memories/{id}       update / delete
//	DELETE     /api/memories            purge all
//	GET/PUT /api/canvas                 lean canvas state
//	POST    /api/canvas/suggestions     AI canvas review
//	GET/PUT /api/financial-model        model inputs
//	POST    /api/financial-model/projections   run the simulation
//	POST    /api/financial-model/analysis      AI financial review
//	POST /api/competitive-analysis      grounded landscape report
//	POST /api/templates                 markdown template generation
//	POST /api/images                    image generation (base64 JPEG)
//	GET        /api/sessions            list saved conversations
//	GET/DELETE /api/sessions/{id}       fetch / delete one
//	DELETE     /api/sessions            purge all
//	GET/PUT /api/settings/theme         UI theme
//	GET  /api/export                    full data export
//	POST /api/reset                     clear all data except settings
//
// File structure follows one handler type per concern: chat.go,
// memories.go, workspace.go, insights.go, sessions.go, settings.go,
// health.go, with middleware.go and response.go as shared plumbing.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/koopa0/pocketexpert/internal/log"
	"github.com/koopa0/pocketexpert/internal/memory"
	"github.com/koopa0/pocketexpert/internal/session"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8790"

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because pro-model turns can run long.
	WriteTimeout = 3 * time.Minute

	// IdleTimeout closes stale keep-alive connections.
	IdleTimeout = 2 * time.Minute
)

// Server is the HTTP server with all routes registered.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health    *HealthHandler
	chat      *ChatHandler
	memories  *MemoryHandler
	workspace *WorkspaceHandler
	insights  *InsightHandler
	sessions  *SessionHandler
	settings  *SettingsHandler
}

// Deps are the components the server routes to.
type Deps struct {
	Pinger   Pinger
	Chat     ChatService
	Sessions *session.Service
	Memories *memory.Manager
	Store    DataStore
	Insights Insights
	Logger   log.Logger
}

// NewServer creates a server and registers every route.
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:       mux,
		logger:    logger.With("component", "api"),
		health:    NewHealthHandler(d.Pinger, logger),
		chat:      NewChatHandler(d.Chat, d.Sessions, logger),
		memories:  NewMemoryHandler(d.Memories, logger),
		workspace: NewWorkspaceHandler(d.Store, logger),
		insights:  NewInsightHandler(d.Insights, d.Store, logger),
		sessions:  NewSessionHandler(d.Sessions, logger),
		settings:  NewSettingsHandler(d.Store, logger),
	}

	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.memories.RegisterRoutes(mux)
	s.workspace.RegisterRoutes(mux)
	s.insights.RegisterRoutes(mux)
	s.sessions.RegisterRoutes(mux)
	s.settings.RegisterRoutes(mux)

	return s
}

// Handler returns the mux with middleware applied.
// Order: recovery outermost, then logging.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware(s.logger), loggingMiddleware(s.logger))
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
