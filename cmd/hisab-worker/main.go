package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"hisab/internal/amqp"
	"hisab/internal/cli"
	"hisab/internal/config"
	"hisab/internal/sheets"
	gsheet "hisab/internal/sheets/google"
	mem "hisab/internal/sheets/memory"
	"hisab/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()

	logger.Info("Starting hisab-worker")

	repo := cli.OpenStorage(cfg, logger)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Statement destination: Google Sheets when configured, otherwise
	// an in-memory store so local runs exercise the full path.
	exporter := worker.NewStatementWorker(repo, pickExporter(ctx, cfg, logger))

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer events.Close()
	} else {
		logger.Info("AMQP disabled - running on the resync loop only")
	}

	g, ctx := errgroup.WithContext(ctx)

	if events != nil {
		g.Go(func() error {
			err := events.ConsumeLedgerEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
				return exporter.HandleLedgerEvent(ctx, msg)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		err := exporter.RunResyncLoop(ctx, cfg.ResyncInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

func pickExporter(ctx context.Context, cfg *config.Config, logger *slog.Logger) sheets.StatementWriter {
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		return client
	}
	logger.Info("Google Sheets disabled - statements kept in memory")
	return mem.New()
}
