package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"hisab/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	tx := core.Transaction{
		ID:         uuid.NewString(),
		Kind:       d.Kind,
		Amount:     d.Amount,
		Note:       d.Note,
		OccurredAt: d.OccurredAt.UTC(),
		CreatedAt:  time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, amount_cents, note, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, string(tx.Kind), tx.Amount.Cents, tx.Note, tx.OccurredAt.Unix(), tx.CreatedAt.UnixNano())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"kind", tx.Kind,
		"amount_cents", tx.Amount.Cents)

	return tx, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, d core.Draft) (core.Transaction, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET kind = ?, amount_cents = ?, note = ?, occurred_at = ?, updated_at = ?
		 WHERE id = ?`,
		string(d.Kind), d.Amount.Cents, d.Note, d.OccurredAt.UTC().Unix(), now.UnixNano(), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update rows affected: %w", err)
	}
	if affected == 0 {
		return core.Transaction{}, ErrNotFound
	}

	return r.get(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, note, occurred_at, created_at, updated_at FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, kind, amount_cents, note, occurred_at, created_at, updated_at
		 FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTransaction maps one stored row into the core record. Missing or
// malformed numeric columns degrade to their zero value so a corrupt
// row never breaks a snapshot; the folds treat those as
// zero-contribution records.
func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx         core.Transaction
		kind       string
		amount     sql.NullInt64
		occurredAt sql.NullInt64
		createdAt  sql.NullInt64
		updatedAt  sql.NullInt64
	)
	if err := row.Scan(&tx.ID, &kind, &amount, &tx.Note, &occurredAt, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, err
	}
	tx.Kind = core.Kind(kind)
	if amount.Valid && amount.Int64 > 0 {
		tx.Amount = core.Money{Cents: amount.Int64}
	}
	if occurredAt.Valid {
		tx.OccurredAt = time.Unix(occurredAt.Int64, 0).UTC()
	}
	if createdAt.Valid {
		tx.CreatedAt = time.Unix(0, createdAt.Int64).UTC()
	}
	if updatedAt.Valid {
		tx.UpdatedAt = time.Unix(0, updatedAt.Int64).UTC()
	}
	return tx, nil
}
