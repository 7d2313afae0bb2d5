// Package api exposes the rent reminder HTTP API: recipient management,
// CSV upload and export, schedule settings and send run control.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/graymont/rent-reminder/internal/config"
)

// Server is the HTTP API server.
type Server struct {
	config   config.ServerConfig
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
}

// NewServer wires the handlers into a routed server.
func NewServer(cfg config.ServerConfig, handlers *Handlers) *Server {
	return &Server{
		config:   cfg,
		handlers: handlers,
		router:   SetupRoutes(handlers),
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
		// CSV uploads are small; keep timeouts tight.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}
