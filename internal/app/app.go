package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"ContentPilot/internal/api"
	"ContentPilot/internal/config"
	"ContentPilot/internal/infrastructure/notify"
	"ContentPilot/internal/infrastructure/scraper"
	infrasearch "ContentPilot/internal/infrastructure/search"
	"ContentPilot/internal/infrastructure/storage"
	"ContentPilot/internal/infrastructure/synthesis"
	"ContentPilot/internal/logging"
	"ContentPilot/internal/metrics"
	"ContentPilot/internal/ports"
	"ContentPilot/internal/search"
	"ContentPilot/internal/workflow"
)

// Application wires configs to the orchestrator and HTTP lifecycle.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	server *api.Server
	db     *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgresStore(db)

	registry := search.NewRegistry()
	registry.Register("serp", infrasearch.NewClient(cfg.Search.Endpoint, cfg.Search.APIKey))

	provider, err := registry.Resolve(cfg.Search.Provider)
	if err != nil {
		return nil, fmt.Errorf("resolve search provider: %w", err)
	}

	var notifier ports.Notifier
	if cfg.Webhook.URL != "" {
		notifier = notify.NewWebhook(cfg.Webhook.URL)
	}

	m := metrics.New()

	orchestrator := workflow.New(workflow.Deps{
		Store:           store,
		Search:          provider,
		Fetcher:         scraper.New(nil, cfg.Scraper.MaxExcerptChars),
		Synthesis:       synthesis.NewClient(cfg.Synthesis),
		Usage:           store,
		Notifier:        notifier,
		Metrics:         m,
		Logger:          baseLogger.With("component", "orchestrator"),
		SynthesisModel:  cfg.Synthesis.Model,
		MaxCompetitors:  cfg.Workflow.MaxCompetitors,
		AnalysisRetries: cfg.Workflow.AnalysisRetries,
		RetryDelay:      time.Duration(cfg.Workflow.RetryDelaySeconds) * time.Second,
	})

	server := api.NewServer(orchestrator, &cfg.Server, m, baseLogger.With("component", "api"))

	return &Application{cfg: cfg, logger: baseLogger, server: server, db: db}, nil
}

// Run serves the API until interrupted, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
