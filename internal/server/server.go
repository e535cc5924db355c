package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
)

// Server owns the HTTP listener and routes for the ingestion pipeline's
// external interface (spec.md §8), grounded on the teacher's
// internal/server/server.go.
type Server struct {
	handlers *Handlers
	router   *http.ServeMux
	server   *http.Server
	logger   arbor.ILogger
}

// New builds a Server bound to host:port, with every route wired.
func New(handlers *Handlers, host string, port int, logger arbor.ILogger) *Server {
	s := &Server{handlers: handlers, logger: logger}
	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start runs the HTTP server until it is shut down or fails.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler, for use with httptest in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
