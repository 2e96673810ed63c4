package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"hisab/internal/core"
	"hisab/internal/storage"
)

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	repo := storage.NewMemoryRepository()
	repo.Seed(core.Transaction{ID: "a", Kind: core.Expense, Amount: core.Money{Cents: 10}})
	f := New(repo)

	var got [][]core.Transaction
	cancel := f.Subscribe(func(txs []core.Transaction) {
		got = append(got, txs)
	}, nil)
	defer cancel()

	if len(got) != 1 {
		t.Fatalf("subscribe delivered %d snapshots, want 1", len(got))
	}
	if len(got[0]) != 1 || got[0][0].ID != "a" {
		t.Fatalf("initial snapshot = %+v", got[0])
	}
}

func TestSubscribeToleratesEmptyCollection(t *testing.T) {
	f := New(storage.NewMemoryRepository())

	delivered := false
	var errSeen error
	cancel := f.Subscribe(func(txs []core.Transaction) {
		delivered = true
		if len(txs) != 0 {
			t.Fatalf("snapshot = %+v, want empty", txs)
		}
	}, func(err error) { errSeen = err })
	defer cancel()

	if !delivered {
		t.Fatal("empty collection must still deliver a snapshot")
	}
	if errSeen != nil {
		t.Fatalf("unexpected error callback: %v", errSeen)
	}
}

func TestPublishFansOutAfterChanges(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	f := New(repo)

	var snapshots [][]core.Transaction
	cancel := f.Subscribe(func(txs []core.Transaction) {
		snapshots = append(snapshots, txs)
	}, nil)
	defer cancel()

	_, err := repo.Create(ctx, core.Draft{
		Kind:       core.Remittance,
		Amount:     core.Money{Cents: 500},
		OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.Publish(ctx)

	if len(snapshots) != 2 {
		t.Fatalf("got %d deliveries, want 2 (initial + publish)", len(snapshots))
	}
	if len(snapshots[1]) != 1 {
		t.Fatalf("second snapshot = %+v, want one record", snapshots[1])
	}
}

func TestCancelStopsDeliveries(t *testing.T) {
	ctx := context.Background()
	f := New(storage.NewMemoryRepository())

	count := 0
	cancel := f.Subscribe(func([]core.Transaction) { count++ }, nil)
	if f.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", f.Subscribers())
	}

	cancel()
	cancel() // second call is a no-op
	if f.Subscribers() != 0 {
		t.Fatalf("subscribers after cancel = %d, want 0", f.Subscribers())
	}

	f.Publish(ctx)
	if count != 1 {
		t.Fatalf("deliveries after cancel = %d, want just the initial one", count)
	}
}

type failingRepo struct {
	storage.Repository
	err error
}

func (r failingRepo) List(ctx context.Context) ([]core.Transaction, error) {
	return nil, r.err
}

func TestPublishReportsLoadFailure(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	f := New(failingRepo{Repository: storage.NewMemoryRepository(), err: wantErr})

	var snapshots int
	var got error
	cancel := f.Subscribe(func([]core.Transaction) { snapshots++ }, func(err error) { got = err })
	defer cancel()

	if snapshots != 0 {
		t.Fatal("failing load must not deliver a snapshot")
	}
	if !errors.Is(got, wantErr) {
		t.Fatalf("error callback got %v, want %v", got, wantErr)
	}
}
