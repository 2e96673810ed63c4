package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"hisab/internal/amqp"
	"hisab/internal/core"
	"hisab/internal/sheets/memory"
	"hisab/internal/storage"
)

func seedTx(kind core.Kind, cents int64, date string) core.Transaction {
	t, _ := time.Parse("2006-01-02", date)
	return core.Transaction{
		ID:         uuid.NewString(),
		Kind:       kind,
		Amount:     core.Money{Cents: cents},
		OccurredAt: t,
	}
}

func TestHandleLedgerEventExportsMonth(t *testing.T) {
	repo := storage.NewMemoryRepository()
	repo.Seed(
		seedTx(core.Remittance, 1000, "2024-05-01"),
		seedTx(core.Expense, 200, "2024-05-12"),
		seedTx(core.Expense, 400, "2024-06-03"),
	)
	exporter := memory.New()
	w := NewStatementWorker(repo, exporter)

	msg := amqp.NewLedgerEventMessage("tx-1", amqp.ActionCreate, "2024-05")
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerEvent: %v", err)
	}

	view, ok := exporter.Statement("2024-05")
	if !ok {
		t.Fatal("expected a statement for 2024-05")
	}
	if view.Summary.Income.Cents != 1000 {
		t.Fatalf("income=%d, want 1000", view.Summary.Income.Cents)
	}
	if view.Summary.Expense.Cents != 200 {
		t.Fatalf("expense=%d, want 200", view.Summary.Expense.Cents)
	}
	if len(view.Entries) != 2 {
		t.Fatalf("entries=%d, want 2", len(view.Entries))
	}

	if _, ok := exporter.Statement("2024-06"); ok {
		t.Fatal("event for 2024-05 must not touch 2024-06")
	}
}

func TestHandleLedgerEventRejectsBadMonth(t *testing.T) {
	w := NewStatementWorker(storage.NewMemoryRepository(), memory.New())

	msg := amqp.NewLedgerEventMessage("tx-1", amqp.ActionUpdate, "may-2024")
	if err := w.HandleLedgerEvent(context.Background(), msg); err == nil {
		t.Fatal("expected error for malformed month")
	}
}

func TestHandleLedgerEventDatelessTransaction(t *testing.T) {
	exporter := memory.New()
	w := NewStatementWorker(storage.NewMemoryRepository(), exporter)

	msg := amqp.NewLedgerEventMessage("tx-1", amqp.ActionDelete, "")
	if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerEvent: %v", err)
	}
	if exporter.Writes() != 0 {
		t.Fatalf("writes=%d, want 0", exporter.Writes())
	}
}

func TestHandleLedgerEventIsIdempotent(t *testing.T) {
	repo := storage.NewMemoryRepository()
	repo.Seed(seedTx(core.Expense, 300, "2024-05-10"))
	exporter := memory.New()
	w := NewStatementWorker(repo, exporter)

	msg := amqp.NewLedgerEventMessage("tx-1", amqp.ActionCreate, "2024-05")
	for i := 0; i < 3; i++ {
		if err := w.HandleLedgerEvent(context.Background(), msg); err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
	}

	view, ok := exporter.Statement("2024-05")
	if !ok {
		t.Fatal("expected a statement for 2024-05")
	}
	if view.Summary.Expense.Cents != 300 {
		t.Fatalf("expense=%d, want 300", view.Summary.Expense.Cents)
	}
	if got := exporter.Months(); len(got) != 1 {
		t.Fatalf("months=%v, want exactly one", got)
	}
}

func TestResyncAllCoversEveryMonth(t *testing.T) {
	repo := storage.NewMemoryRepository()
	repo.Seed(
		seedTx(core.Remittance, 1000, "2024-05-01"),
		seedTx(core.Expense, 400, "2024-06-03"),
		seedTx(core.Interest, 50, "2024-06-28"),
		core.Transaction{ID: uuid.NewString(), Kind: core.Expense, Amount: core.Money{Cents: 100}},
	)
	exporter := memory.New()
	w := NewStatementWorker(repo, exporter)

	if err := w.ResyncAll(context.Background()); err != nil {
		t.Fatalf("ResyncAll: %v", err)
	}

	// The undated transaction belongs to no month.
	if got := exporter.Months(); len(got) != 2 {
		t.Fatalf("months=%v, want 2", got)
	}
	for _, month := range []string{"2024-05", "2024-06"} {
		if _, ok := exporter.Statement(month); !ok {
			t.Fatalf("missing statement for %s", month)
		}
	}
}

func TestResyncAllEmptyLedger(t *testing.T) {
	exporter := memory.New()
	w := NewStatementWorker(storage.NewMemoryRepository(), exporter)

	if err := w.ResyncAll(context.Background()); err != nil {
		t.Fatalf("ResyncAll: %v", err)
	}
	if exporter.Writes() != 0 {
		t.Fatalf("writes=%d, want 0", exporter.Writes())
	}
}
