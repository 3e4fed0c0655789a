// Package api exposes the workflow actions over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ContentPilot/internal/config"
	"ContentPilot/internal/metrics"
	"ContentPilot/internal/workflow"
)

// Server is the HTTP API server.
type Server struct {
	router       *chi.Mux
	httpServer   *http.Server
	orchestrator *workflow.Orchestrator
	config       *config.ServerConfig
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewServer creates a new API server.
func NewServer(o *workflow.Orchestrator, cfg *config.ServerConfig, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		orchestrator: o,
		config:       cfg,
		metrics:      m,
		logger:       logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/workflow", s.handleWorkflow)
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
