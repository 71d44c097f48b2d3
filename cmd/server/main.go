// Package main implements the entry point for the stewardship feedback
// server: it scores learner submissions against module rubrics, grounds
// feedback in retrieved corpus evidence, and adapts scenario difficulty to
// the learner's mastery trajectory.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/haslamdb/asp-ai-agent-sub001/internal/config"
	"github.com/haslamdb/asp-ai-agent-sub001/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run initializes configuration, logging, the database, and all services,
// then serves HTTP until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	app, err := newApplication(context.Background(), cfg, db, appLogger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	return app.serve(context.Background())
}
