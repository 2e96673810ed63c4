package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"hisab/internal/core"
)

// All monetary fields on the wire are integer cents; clients format
// them for display.
type (
	transactionJSON struct {
		ID         string     `json:"id"`
		Kind       string     `json:"kind"`
		Amount     int64      `json:"amount"`
		Note       string     `json:"note,omitempty"`
		OccurredAt string     `json:"occurredAt"`
		CreatedAt  time.Time  `json:"createdAt"`
		UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	}

	statsJSON struct {
		CashOnHand  int64 `json:"cashOnHand"`
		BankBalance int64 `json:"bankBalance"`
	}

	monthViewJSON struct {
		Month        string            `json:"month"`
		Entries      []transactionJSON `json:"entries"`
		Income       int64             `json:"income"`
		Expense      int64             `json:"expense"`
		Net          int64             `json:"net"`
		BankDeposits int64             `json:"bankDeposits"`
	}

	snapshotFrame struct {
		Type         string            `json:"type"`
		Stats        statsJSON         `json:"stats"`
		Transactions []transactionJSON `json:"transactions"`
	}

	errorFrame struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}

	errorJSON struct {
		Error string `json:"error"`
	}
)

func toTransactionJSON(tx core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:        tx.ID,
		Kind:      string(tx.Kind),
		Amount:    tx.Amount.Cents,
		Note:      tx.Note,
		CreatedAt: tx.CreatedAt,
	}
	if !tx.OccurredAt.IsZero() {
		out.OccurredAt = tx.OccurredAt.UTC().Format("2006-01-02")
	}
	if !tx.UpdatedAt.IsZero() {
		u := tx.UpdatedAt
		out.UpdatedAt = &u
	}
	return out
}

func toTransactionListJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionJSON(tx)
	}
	return out
}

func toStatsJSON(s core.Stats) statsJSON {
	return statsJSON{
		CashOnHand:  s.CashOnHand.Cents,
		BankBalance: s.BankBalance.Cents,
	}
}

func toMonthViewJSON(v core.MonthView) monthViewJSON {
	return monthViewJSON{
		Month:        v.Month.String(),
		Entries:      toTransactionListJSON(v.Entries),
		Income:       v.Summary.Income.Cents,
		Expense:      v.Summary.Expense.Cents,
		Net:          v.Summary.Net().Cents,
		BankDeposits: v.Summary.BankDeposits.Cents,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
