package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hisab/internal/amqp"
	"hisab/internal/core"
	applog "hisab/internal/log"
	"hisab/internal/sheets"
	"hisab/internal/storage"
)

// StatementWorker keeps the exported monthly statements in step with
// the ledger. Events name the touched month; the worker recomputes
// that month's view from storage and upserts it, so replaying or
// duplicating an event is harmless.
type StatementWorker struct {
	repo     storage.Repository
	exporter sheets.StatementWriter
	log      *applog.Logger
}

func NewStatementWorker(repo storage.Repository, exporter sheets.StatementWriter) *StatementWorker {
	return &StatementWorker{
		repo:     repo,
		exporter: exporter,
		log: applog.New(applog.Config{
			Handler:   slog.Default().Handler(),
			Component: applog.ComponentWorker,
		}),
	}
}

// HandleLedgerEvent processes a single ledger event from AMQP.
func (w *StatementWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	w.log.InfoContext(ctx, "Processing ledger event",
		applog.FieldTransactionID, msg.ID,
		applog.FieldOperation, msg.Action,
		applog.FieldMonth, msg.Month)

	// A dateless transaction belongs to no statement; there is nothing
	// to recompute for it.
	if msg.Month == "" {
		return nil
	}

	ym, err := core.ParseYearMonth(msg.Month)
	if err != nil {
		return fmt.Errorf("parse event month: %w", err)
	}

	if err := w.exportMonth(ctx, ym); err != nil {
		return fmt.Errorf("export statement for %s: %w", msg.Month, err)
	}

	return nil
}

// ResyncAll recomputes and exports the statement of every month that
// has at least one transaction. This is the catch-up path for lost
// events and worker downtime.
func (w *StatementWorker) ResyncAll(ctx context.Context) error {
	txs, err := w.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	months := make(map[core.YearMonth]struct{})
	for _, tx := range txs {
		if tx.OccurredAt.IsZero() {
			continue
		}
		t := tx.OccurredAt.UTC()
		months[core.YearMonth{Year: t.Year(), Month: t.Month()}] = struct{}{}
	}

	if len(months) == 0 {
		w.log.InfoContext(ctx, "No months to resync")
		return nil
	}

	successCount := 0
	errorCount := 0
	for ym := range months {
		if err := w.exportMonth(ctx, ym); err != nil {
			w.log.ErrorContext(ctx, "Failed to export statement",
				applog.FieldMonth, ym.String(), applog.FieldError, err)
			errorCount++
			continue
		}
		successCount++
	}

	w.log.InfoContext(ctx, "Resync completed",
		"total", len(months),
		"exported", successCount,
		"errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("resync: %d of %d months failed", errorCount, len(months))
	}
	return nil
}

// RunResyncLoop runs ResyncAll on a fixed interval until the context
// is cancelled. An immediate first pass covers events missed while
// the worker was down.
func (w *StatementWorker) RunResyncLoop(ctx context.Context, interval time.Duration) error {
	if err := w.ResyncAll(ctx); err != nil {
		w.log.ErrorContext(ctx, "Startup resync failed", applog.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ResyncAll(ctx); err != nil {
				w.log.ErrorContext(ctx, "Periodic resync failed", applog.FieldError, err)
			}
		}
	}
}

func (w *StatementWorker) exportMonth(ctx context.Context, ym core.YearMonth) error {
	txs, err := w.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	view := core.MonthlyView(txs, ym)

	ref, err := w.exporter.WriteStatement(ctx, view)
	if err != nil {
		return fmt.Errorf("write statement: %w", err)
	}

	w.log.InfoContext(ctx, "Statement exported",
		applog.FieldMonth, ym.String(),
		applog.FieldSheetsRef, ref,
		"entries", len(view.Entries))

	return nil
}
