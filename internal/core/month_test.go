package core

import (
	"testing"
	"time"
)

func TestParseYearMonth(t *testing.T) {
	cases := []struct {
		in    string
		year  int
		month time.Month
		ok    bool
	}{
		{"2024-05", 2024, time.May, true},
		{"1999-12", 1999, time.December, true},
		{"2024-13", 0, 0, false},
		{"2024-00", 0, 0, false},
		{"2024-5", 0, 0, false},
		{"2024", 0, 0, false},
		{"", 0, 0, false},
		{"05-2024", 0, 0, false},
	}
	for _, tc := range cases {
		got, err := ParseYearMonth(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.in, err)
			}
			if got.Year != tc.year || got.Month != tc.month {
				t.Fatalf("%q parsed as %v", tc.in, got)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %v", tc.in, got)
		}
	}
}

func TestYearMonthString(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.May}
	if got := ym.String(); got != "2024-05" {
		t.Fatalf("String() = %q, want 2024-05", got)
	}
}

func TestYearMonthContains(t *testing.T) {
	ym := YearMonth{Year: 2024, Month: time.May}
	if !ym.Contains(time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)) {
		t.Fatal("mid-month instant must be contained")
	}
	if ym.Contains(time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)) {
		t.Fatal("prior month must be excluded")
	}
	if ym.Contains(time.Time{}) {
		t.Fatal("zero time must never match")
	}
}
