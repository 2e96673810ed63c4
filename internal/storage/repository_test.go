package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hisab/internal/core"
)

func draft(kind core.Kind, cents int64, day string) core.Draft {
	at, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return core.Draft{Kind: kind, Amount: core.Money{Cents: cents}, OccurredAt: at}
}

// Both backends must behave identically; run the same suite over each.
func repositories(t *testing.T) map[string]Repository {
	t.Helper()

	repos := map[string]Repository{
		"memory": NewMemoryRepository(),
	}
	sqlite, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "hisab.db"))
	if err != nil {
		t.Fatalf("open sqlite repository: %v", err)
	}
	repos["sqlite"] = sqlite
	return repos
}

func TestRepositoryCreateAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			defer repo.Close()

			tx, err := repo.Create(ctx, draft(core.Remittance, 1000, "2024-05-01"))
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if tx.ID == "" {
				t.Fatal("create must assign an id")
			}
			if tx.CreatedAt.IsZero() {
				t.Fatal("create must stamp createdAt")
			}
			if !tx.UpdatedAt.IsZero() {
				t.Fatal("updatedAt must stay zero until first update")
			}

			txs, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(txs) != 1 || txs[0].ID != tx.ID {
				t.Fatalf("list = %+v, want the created record", txs)
			}
			if txs[0].Amount.Cents != 1000 || txs[0].Kind != core.Remittance {
				t.Fatalf("round trip lost fields: %+v", txs[0])
			}
		})
	}
}

func TestRepositoryUpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			defer repo.Close()

			created, err := repo.Create(ctx, draft(core.Expense, 200, "2024-05-10"))
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			updated, err := repo.Update(ctx, created.ID, draft(core.Deposit, 300, "2024-05-11"))
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if updated.ID != created.ID {
				t.Fatalf("update changed id: %q -> %q", created.ID, updated.ID)
			}
			if !updated.CreatedAt.Equal(created.CreatedAt) {
				t.Fatalf("update changed createdAt: %v -> %v", created.CreatedAt, updated.CreatedAt)
			}
			if updated.UpdatedAt.IsZero() {
				t.Fatal("update must stamp updatedAt")
			}
			if updated.Kind != core.Deposit || updated.Amount.Cents != 300 {
				t.Fatalf("update lost payload: %+v", updated)
			}
		})
	}
}

func TestRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			defer repo.Close()

			created, err := repo.Create(ctx, draft(core.Interest, 5, "2024-05-30"))
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if err := repo.Delete(ctx, created.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			txs, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(txs) != 0 {
				t.Fatalf("list after delete = %+v, want empty", txs)
			}
		})
	}
}

func TestRepositoryUnknownID(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			defer repo.Close()

			if _, err := repo.Update(ctx, "missing", draft(core.Expense, 1, "2024-05-01")); !errors.Is(err, ErrNotFound) {
				t.Fatalf("update err = %v, want ErrNotFound", err)
			}
			if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("delete err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRepositoryEmptyList(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			defer repo.Close()

			txs, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(txs) != 0 {
				t.Fatalf("fresh repository list = %+v, want empty", txs)
			}
		})
	}
}
