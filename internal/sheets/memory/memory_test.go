package memory

import (
	"context"
	"testing"
	"time"

	"hisab/internal/core"
)

func view(month string, incomeCents int64) core.MonthView {
	ym, _ := core.ParseYearMonth(month)
	return core.MonthView{
		Month:   ym,
		Summary: core.Summary{Income: core.Money{Cents: incomeCents}},
	}
}

func TestWriteStatementUpserts(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.WriteStatement(ctx, view("2024-05", 1000))
	if err != nil {
		t.Fatalf("WriteStatement: %v", err)
	}
	if ref != "mem:2024-05" {
		t.Fatalf("ref=%q", ref)
	}

	// Rewriting the same month replaces, it does not duplicate.
	if _, err := s.WriteStatement(ctx, view("2024-05", 2500)); err != nil {
		t.Fatalf("WriteStatement: %v", err)
	}

	got, ok := s.Statement("2024-05")
	if !ok {
		t.Fatal("missing statement")
	}
	if got.Summary.Income.Cents != 2500 {
		t.Fatalf("income=%d, want 2500", got.Summary.Income.Cents)
	}
	if months := s.Months(); len(months) != 1 {
		t.Fatalf("months=%v, want one", months)
	}
	if s.Writes() != 2 {
		t.Fatalf("writes=%d, want 2", s.Writes())
	}
}

func TestStatementMissingMonth(t *testing.T) {
	s := New()
	if _, ok := s.Statement(time.Now().UTC().Format("2006-01")); ok {
		t.Fatal("expected no statement")
	}
}
