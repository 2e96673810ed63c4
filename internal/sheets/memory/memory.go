package memory

import (
	"context"
	"fmt"
	"sync"

	"hisab/internal/core"
)

// Store keeps statements in memory, one per month, the way the sheet
// keeps one row per month. Useful in tests and local runs without
// Google credentials.
type Store struct {
	mu         sync.Mutex
	statements map[string]core.MonthView
	writes     int
}

func New() *Store {
	return &Store{statements: make(map[string]core.MonthView)}
}

// WriteStatement stores or replaces the month's statement and returns
// a synthetic row reference.
func (s *Store) WriteStatement(_ context.Context, view core.MonthView) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[view.Month.String()] = view
	s.writes++
	return fmt.Sprintf("mem:%s", view.Month.String()), nil
}

// Statement returns the stored statement for a month, if any.
func (s *Store) Statement(month string) (core.MonthView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.statements[month]
	return view, ok
}

// Writes reports how many statements have been written, replacements
// included.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Months returns the months with a stored statement.
func (s *Store) Months() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.statements))
	for m := range s.statements {
		out = append(out, m)
	}
	return out
}
