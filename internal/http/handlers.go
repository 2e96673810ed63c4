package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"hisab/internal/core"
	"hisab/internal/storage"
)

// handleTransactions serves the collection: GET lists every recorded
// transaction newest first, POST records a new one.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Transactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, toTransactionListJSON(txs))
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	draft, err := draftFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.svc.Create(r.Context(), draft)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

// handleTransactionByID serves /transactions/{id}: PUT replaces the
// transaction's fields, DELETE removes it.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateTransaction(w, r, id)
	case http.MethodDelete:
		s.deleteTransaction(w, r, id)
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	draft, err := draftFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := s.svc.Update(r.Context(), id, draft)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		case isValidationError(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to update transaction", "error", err, "transaction_id", id)
			writeError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}

	writeJSON(w, http.StatusOK, toTransactionJSON(tx))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "error", err, "transaction_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStats returns the running cash and bank balances over the
// whole collection.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	stats, err := s.svc.GlobalStats(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to compute stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	writeJSON(w, http.StatusOK, toStatsJSON(stats))
}

// handleMonthView serves /months/{YYYY-MM}: the month's entries plus
// its income and expense totals.
func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/months/")
	ym, err := core.ParseYearMonth(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := ym.String()
	if view, ok := s.monthCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toMonthViewJSON(view))
		return
	}

	view, err := s.svc.MonthlyView(r.Context(), ym)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build month view", "error", err, "month", key)
		writeError(w, http.StatusInternalServerError, "failed to build month view")
		return
	}

	s.monthCache.Set(key, view)
	writeJSON(w, http.StatusOK, toMonthViewJSON(view))
}

// handleWebsocket upgrades the connection and registers it with the
// hub; the client is read-only and is dropped on the first read error.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "realtime stream disabled")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade websocket", "error", err)
		return
	}

	// Send the current state so the client does not wait for the next
	// write to see anything. This must happen before registration: once
	// the hub knows the connection it may broadcast to it at any time,
	// and the connection tolerates only one writer.
	if txs, err := s.svc.Transactions(r.Context()); err == nil {
		_ = conn.WriteJSON(snapshotFrame{
			Type:         "snapshot",
			Stats:        toStatsJSON(core.GlobalStats(txs)),
			Transactions: toTransactionListJSON(txs),
		})
	}

	s.hub.RegisterClient(conn)

	go func() {
		defer s.hub.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidKind) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrMissingDate) ||
		errors.Is(err, core.ErrNoteTooLong)
}
