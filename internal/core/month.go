package core

import (
	"errors"
	"fmt"
	"time"
)

// YearMonth identifies one calendar month, the sole parameter of the
// month filter. The wire form is "YYYY-MM".
type YearMonth struct {
	Year  int
	Month time.Month
}

var ErrInvalidYearMonth = errors.New("invalid year-month, expected YYYY-MM")

// ParseYearMonth parses a "YYYY-MM" selector value.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidYearMonth, s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Contains reports whether t falls within the month. Zero times never
// match, so records without an effective date are excluded rather than
// raising.
func (ym YearMonth) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.UTC()
	return t.Year() == ym.Year && t.Month() == ym.Month
}

// Current returns the year-month of now in UTC.
func Current() YearMonth {
	now := time.Now().UTC()
	return YearMonth{Year: now.Year(), Month: now.Month()}
}
