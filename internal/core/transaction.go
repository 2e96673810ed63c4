package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Money struct {
		Cents int64
	}

	// Transaction is one immutable ledger entry as delivered by the
	// persistence layer. The engine only ever derives aggregates from
	// snapshots of these; it never mutates one.
	Transaction struct {
		ID         string
		Kind       Kind
		Amount     Money
		Note       string
		OccurredAt time.Time // effective date, user supplied
		CreatedAt  time.Time // set at first persistence, display tie-break only
		UpdatedAt  time.Time // zero until first update, unused in folds
	}

	// Draft is the write payload for create and update. IDs and
	// persistence timestamps are assigned by the repository, never by
	// the caller.
	Draft struct {
		Kind       Kind
		Amount     Money
		Note       string
		OccurredAt time.Time
	}
)

var (
	ErrInvalidKind   = errors.New("invalid transaction kind")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrMissingDate   = errors.New("missing transaction date")
	ErrNoteTooLong   = errors.New("note too long (max 200 characters)")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate applies the write-boundary rules: a usable positive amount,
// a recognized kind and an effective date. Malformed records can still
// arrive from storage; only writes are rejected.
func (d Draft) Validate() error {
	if !d.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if d.OccurredAt.IsZero() {
		return ErrMissingDate
	}
	if len(strings.TrimSpace(d.Note)) > 200 {
		return ErrNoteTooLong
	}
	return nil
}
