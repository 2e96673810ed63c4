package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("bogus"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("ParseKind(bogus) err = %v, want ErrInvalidKind", err)
	}
	if _, err := ParseKind(""); err == nil {
		t.Fatal("ParseKind(\"\") expected error")
	}
}

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Kind:       Expense,
		Amount:     Money{Cents: 100},
		Note:       "groceries",
		OccurredAt: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"unknown kind", func(d *Draft) { d.Kind = "bogus" }, ErrInvalidKind},
		{"zero amount", func(d *Draft) { d.Amount.Cents = 0 }, ErrInvalidAmount},
		{"negative amount", func(d *Draft) { d.Amount.Cents = -5 }, ErrInvalidAmount},
		{"missing date", func(d *Draft) { d.OccurredAt = time.Time{} }, ErrMissingDate},
		{"note too long", func(d *Draft) { d.Note = strings.Repeat("x", 201) }, ErrNoteTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			if err := d.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	// Empty note is fine; the annotation is optional.
	d := valid
	d.Note = ""
	if err := d.Validate(); err != nil {
		t.Fatalf("empty note rejected: %v", err)
	}
}
