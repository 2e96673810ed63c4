package services

import (
	"context"
	"fmt"
	"log/slog"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/feed"
	"hisab/internal/storage"
)

// LedgerService orchestrates the boundary operations: validated writes
// against the repository, best-effort ledger events over AMQP and
// snapshot fan-out through the feed. Reads are pure recomputations from
// a fresh snapshot.
type LedgerService struct {
	repo   storage.Repository
	events *amqp.Client
	feed   *feed.Feed
}

func NewLedgerService(repo storage.Repository, events *amqp.Client, f *feed.Feed) *LedgerService {
	return &LedgerService{
		repo:   repo,
		events: events,
		feed:   f,
	}
}

// Create validates and persists a new transaction. Validation failures
// are reported before any write is attempted.
func (s *LedgerService) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.repo.Create(ctx, d)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publishEvent(ctx, tx.ID, amqp.ActionCreate, monthOf(tx))
	s.notify(ctx)
	return tx, nil
}

// Update validates and rewrites an existing transaction. Identity
// fields (id, createdAt) are preserved by the repository.
func (s *LedgerService) Update(ctx context.Context, id string, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := s.repo.Update(ctx, id, d)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.publishEvent(ctx, tx.ID, amqp.ActionUpdate, monthOf(tx))
	s.notify(ctx)
	return tx, nil
}

// Delete removes a transaction. The affected month is resolved before
// the delete so the statement worker knows what to recompute.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	month := ""
	if txs, err := s.repo.List(ctx); err == nil {
		for _, tx := range txs {
			if tx.ID == id {
				month = monthOf(tx)
				break
			}
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishEvent(ctx, id, amqp.ActionDelete, month)
	s.notify(ctx)
	return nil
}

// Transactions returns the current snapshot in display order.
func (s *LedgerService) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return core.SortChronological(txs), nil
}

// GlobalStats recomputes the lifetime balances from a fresh snapshot.
func (s *LedgerService) GlobalStats(ctx context.Context) (core.Stats, error) {
	txs, err := s.repo.List(ctx)
	if err != nil {
		return core.Stats{}, fmt.Errorf("load snapshot: %w", err)
	}
	return core.GlobalStats(txs), nil
}

// MonthlyView recomputes one month's statement from a fresh snapshot.
func (s *LedgerService) MonthlyView(ctx context.Context, ym core.YearMonth) (core.MonthView, error) {
	txs, err := s.repo.List(ctx)
	if err != nil {
		return core.MonthView{}, fmt.Errorf("load snapshot: %w", err)
	}
	return core.MonthlyView(txs, ym), nil
}

// publishEvent is fire-and-forget: the write already succeeded, a lost
// event only delays the statement export until the next resync.
func (s *LedgerService) publishEvent(ctx context.Context, id, action, month string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, id, action, month); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"transaction_id", id, "action", action, "error", err)
	}
}

func (s *LedgerService) notify(ctx context.Context) {
	if s.feed != nil {
		s.feed.Publish(ctx)
	}
}

func monthOf(tx core.Transaction) string {
	if tx.OccurredAt.IsZero() {
		return ""
	}
	at := tx.OccurredAt.UTC()
	return core.YearMonth{Year: at.Year(), Month: at.Month()}.String()
}

// Close closes storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
