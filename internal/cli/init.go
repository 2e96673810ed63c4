// Package cli provides common CLI initialization utilities shared by
// cmd/hisab and cmd/hisab-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"hisab/internal/config"
	applog "hisab/internal/log"
	"hisab/internal/storage"
)

// Bootstrap loads the optional .env file, builds the default logger
// from LOG_LEVEL and returns a validated configuration. Validation
// failures end the process.
func Bootstrap() (*config.Config, *slog.Logger) {
	// .env is for local development; in production/docker the
	// environment is already populated.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: applog.ParseLevel(cfg.SlogLevel()),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	return cfg, logger
}

// OpenStorage opens the configured repository or exits the process on
// failure.
func OpenStorage(cfg *config.Config, logger *slog.Logger) storage.Repository {
	repo, err := storage.Open(cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return repo
}
