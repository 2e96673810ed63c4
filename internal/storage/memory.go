package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hisab/internal/core"
)

// MemoryRepository keeps the collection in process memory. It backs the
// "memory" data backend and the unit tests; semantics match the SQLite
// repository.
type MemoryRepository struct {
	mu  sync.RWMutex
	txs map[string]core.Transaction
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{txs: make(map[string]core.Transaction)}
}

func (r *MemoryRepository) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := core.Transaction{
		ID:         uuid.NewString(),
		Kind:       d.Kind,
		Amount:     d.Amount,
		Note:       d.Note,
		OccurredAt: d.OccurredAt.UTC(),
		CreatedAt:  time.Now().UTC(),
	}
	r.txs[tx.ID] = tx
	return tx, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, d core.Draft) (core.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.txs[id]
	if !ok {
		return core.Transaction{}, ErrNotFound
	}
	// id and createdAt stay untouched through updates.
	tx.Kind = d.Kind
	tx.Amount = d.Amount
	tx.Note = d.Note
	tx.OccurredAt = d.OccurredAt.UTC()
	tx.UpdatedAt = time.Now().UTC()
	r.txs[id] = tx
	return tx, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.txs[id]; !ok {
		return ErrNotFound
	}
	delete(r.txs, id)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]core.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.Transaction, 0, len(r.txs))
	for _, tx := range r.txs {
		out = append(out, tx)
	}
	return out, nil
}

func (r *MemoryRepository) Close() error { return nil }

// Seed inserts a prebuilt transaction verbatim, for tests that need
// fixed ids and timestamps.
func (r *MemoryRepository) Seed(txs ...core.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range txs {
		r.txs[tx.ID] = tx
	}
}
