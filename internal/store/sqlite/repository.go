// Package sqlite is the canonical document store: one table per collection,
// append/delete-only transactions, and an upsert-style goal table keyed by
// category title.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"oomsin/internal/core"
	"oomsin/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, image_url, kind FROM categories WHERE kind = ? ORDER BY rowid`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var k string
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL, &k); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.Kind(k)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, kind, title, category, amount_satang, note, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), t.Title, t.Category, t.Amount.Satang, t.Note, t.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"kind", t.Kind,
		"title", t.Title,
		"amount_satang", t.Amount.Satang)
	return nil
}

func (r *Repository) ListMonth(ctx context.Context, kind core.Kind, year, month int) ([]core.Transaction, error) {
	from, to := core.MonthWindow(year, month)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, title, category, amount_satang, note, created_at_ms
		 FROM transactions
		 WHERE kind = ? AND created_at_ms >= ? AND created_at_ms < ?
		 ORDER BY rowid`,
		string(kind), from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list month transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) ListCreatedAfter(ctx context.Context, kind core.Kind, since time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, title, category, amount_satang, note, created_at_ms
		 FROM transactions
		 WHERE kind = ? AND created_at_ms > ?
		 ORDER BY created_at_ms`,
		string(kind), since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list transactions created after: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *Repository) ListAfter(ctx context.Context, title string, since time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, title, category, amount_satang, note, created_at_ms
		 FROM transactions
		 WHERE title = ? AND created_at_ms > ?
		 ORDER BY created_at_ms`,
		title, since.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list transactions after: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var kind string
		var createdMs int64
		if err := rows.Scan(&t.ID, &kind, &t.Title, &t.Category, &t.Amount.Satang, &t.Note, &createdMs); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		t.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteTransaction(ctx context.Context, kind core.Kind, id string) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var t core.Transaction
	var k string
	var createdMs int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, kind, title, category, amount_satang, note, created_at_ms
		 FROM transactions WHERE id = ? AND kind = ?`, id, string(kind)).
		Scan(&t.ID, &k, &t.Title, &t.Category, &t.Amount.Satang, &t.Note, &createdMs)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load transaction for delete: %w", err)
	}
	t.Kind = core.Kind(k)
	t.CreatedAt = time.UnixMilli(createdMs).UTC()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return core.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "kind", kind, "title", t.Title)
	return t, nil
}

func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount_satang, remaining_satang, end_date_ms, icon, created_at_ms
		 FROM goals ORDER BY created_at_ms`)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGoal(scan func(...any) error) (core.Goal, error) {
	var g core.Goal
	var endMs, createdMs int64
	if err := scan(&g.ID, &g.Title, &g.Amount.Satang, &g.RemainingAmount.Satang, &endMs, &g.Icon, &createdMs); err != nil {
		return core.Goal{}, fmt.Errorf("scan goal: %w", err)
	}
	if endMs != 0 {
		g.EndDate = time.UnixMilli(endMs).UTC()
	}
	g.CreatedAt = time.UnixMilli(createdMs).UTC()
	return g, nil
}

func (r *Repository) GetGoalByTitle(ctx context.Context, title string) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, amount_satang, remaining_satang, end_date_ms, icon, created_at_ms
		 FROM goals WHERE title = ?`, title)
	g, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, store.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (r *Repository) PutGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	endMs := int64(0)
	if !g.EndDate.IsZero() {
		endMs = g.EndDate.UnixMilli()
	}

	// The unique index on title makes create-or-replace a single upsert; the
	// stored id and creation time survive a replace.
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, title, amount_satang, remaining_satang, end_date_ms, icon, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(title) DO UPDATE SET
			amount_satang = excluded.amount_satang,
			remaining_satang = excluded.remaining_satang,
			end_date_ms = excluded.end_date_ms,
			icon = excluded.icon`,
		g.ID, g.Title, g.Amount.Satang, g.RemainingAmount.Satang, endMs, g.Icon, g.CreatedAt.UnixMilli())
	if err != nil {
		return core.Goal{}, fmt.Errorf("upsert goal: %w", err)
	}

	stored, err := r.GetGoalByTitle(ctx, g.Title)
	if err != nil {
		return core.Goal{}, fmt.Errorf("reload goal after upsert: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved",
		"id", stored.ID,
		"title", stored.Title,
		"amount_satang", stored.Amount.Satang)
	return stored, nil
}

func (r *Repository) UpdateGoalAmounts(ctx context.Context, id string, amount, remaining core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET amount_satang = ?, remaining_satang = ? WHERE id = ?`,
		amount.Satang, remaining.Satang, id)
	if err != nil {
		return fmt.Errorf("update goal amounts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal amounts: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, id string) (core.Goal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Goal{}, fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT id, title, amount_satang, remaining_satang, end_date_ms, icon, created_at_ms
		 FROM goals WHERE id = ?`, id)
	g, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, store.ErrNotFound
	}
	if err != nil {
		return core.Goal{}, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
		return core.Goal{}, fmt.Errorf("delete goal: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Goal{}, fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Goal deleted", "id", id, "title", g.Title)
	return g, nil
}
