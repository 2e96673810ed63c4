package storage

import (
	"context"
	"errors"

	"hisab/internal/core"
)

// ErrNotFound is returned for updates and deletes against an unknown id.
var ErrNotFound = errors.New("transaction not found")

// Repository is the persistence collaborator. It assigns identity
// (id, createdAt) on create, stamps updatedAt on update and hands the
// engine read-only full snapshots. All derived figures are recomputed
// from snapshots, never stored.
type Repository interface {
	Create(ctx context.Context, d core.Draft) (core.Transaction, error)
	Update(ctx context.Context, id string, d core.Draft) (core.Transaction, error)
	Delete(ctx context.Context, id string) error
	// List returns the current full collection. Order is unspecified;
	// callers apply core.SortChronological for display.
	List(ctx context.Context) ([]core.Transaction, error)
	Close() error
}
