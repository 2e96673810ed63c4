package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"hisab/internal/amqp"
	"hisab/internal/cli"
	"hisab/internal/feed"
	apphttp "hisab/internal/http"
	"hisab/internal/services"
	"hisab/internal/ws"
)

func main() {
	cfg, logger := cli.Bootstrap()
	repo := cli.OpenStorage(cfg, logger)

	// AMQP is optional: without it writes still land, only the
	// statement worker is left behind until resync.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	f := feed.New(repo)
	hub := ws.NewHub()
	svc := services.NewLedgerService(repo, events, f)

	srv := apphttp.NewServer(":"+cfg.Port, svc, f, hub)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting hisab server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		hub.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
	}

	if err := svc.Close(); err != nil {
		logger.Error("Failed to close service", "error", err)
	}

	logger.Info("Server stopped gracefully")
}
