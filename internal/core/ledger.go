package core

import "sort"

type (
	// Stats holds the lifetime running balances derived from the full
	// transaction set.
	Stats struct {
		CashOnHand  Money
		BankBalance Money
	}

	// Summary holds the canonical income/expense pair for one month.
	// BankDeposits is an informational side statistic; it is not part
	// of the income/expense contract and is never reconciled against
	// the lifetime bank balance.
	Summary struct {
		Income       Money
		Expense      Money
		BankDeposits Money
	}

	// MonthView is the outbound monthly statement: chronologically
	// ordered entries plus their summary.
	MonthView struct {
		Month   YearMonth
		Entries []Transaction
		Summary Summary
	}
)

// Net returns income minus expense. It is always recomputed from the
// two stored fields so the pair cannot drift.
func (s Summary) Net() Money {
	return Money{Cents: s.Income.Cents - s.Expense.Cents}
}

// SortChronological returns a new slice ordered by effective date
// descending, most recently entered first among same-day records, and
// original input order for full ties. The input is never mutated. Zero
// timestamps sort as the oldest possible instant.
func SortChronological(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// GlobalStats folds the full transaction set into lifetime cash and
// bank balances. The fold is commutative: input order never changes the
// result. Unrecognized kinds and missing amounts contribute zero.
//
//	remittance  cash +amount
//	expense     cash -amount
//	deposit     cash -amount, bank +amount
//	withdraw    cash +amount, bank -amount
//	interest    bank +amount
func GlobalStats(txs []Transaction) Stats {
	var s Stats
	for _, t := range txs {
		amt := t.Amount.Cents
		switch t.Kind {
		case Remittance:
			s.CashOnHand.Cents += amt
		case Expense:
			s.CashOnHand.Cents -= amt
		case Deposit:
			s.CashOnHand.Cents -= amt
			s.BankBalance.Cents += amt
		case Withdraw:
			s.CashOnHand.Cents += amt
			s.BankBalance.Cents -= amt
		case Interest:
			s.BankBalance.Cents += amt
		}
	}
	return s
}

// FilterMonth returns the subsequence whose effective date falls within
// the given month, preserving input order. Records without a usable
// effective date are excluded.
func FilterMonth(txs []Transaction, ym YearMonth) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if ym.Contains(t.OccurredAt) {
			out = append(out, t)
		}
	}
	return out
}

// Summarize folds a month-filtered subsequence into its summary. Only
// remittances count as income and only expenses as expense; deposits
// feed the informational BankDeposits figure. Empty input yields the
// zero summary.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Kind {
		case Remittance:
			s.Income.Cents += t.Amount.Cents
		case Expense:
			s.Expense.Cents += t.Amount.Cents
		case Deposit:
			s.BankDeposits.Cents += t.Amount.Cents
		}
	}
	return s
}

// MonthlyView derives the full monthly statement from a snapshot:
// month filter, then malformed-kind exclusion, then chronological
// ordering, with the summary folded from the same subsequence.
func MonthlyView(txs []Transaction, ym YearMonth) MonthView {
	filtered := FilterMonth(txs, ym)
	entries := filtered[:0:0]
	for _, t := range filtered {
		if t.Kind.Valid() {
			entries = append(entries, t)
		}
	}
	return MonthView{
		Month:   ym,
		Entries: SortChronological(entries),
		Summary: Summarize(entries),
	}
}
