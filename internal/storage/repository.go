// Package storage persists the last authoritative reload of each table so a
// dead gateway at startup degrades to stale data instead of an empty ledger.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"badhige/internal/core"
)

// SQLiteCache is a snapshot-per-table cache backed by a local SQLite file.
type SQLiteCache struct {
	db *sql.DB
}

func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Save replaces the stored snapshot for a table.
func (c *SQLiteCache) Save(ctx context.Context, table string, txns []core.Transaction) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE table_name = ?`, table); err != nil {
		return fmt.Errorf("clear snapshot for %s: %w", table, err)
	}
	for i, t := range txns {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO snapshots (table_name, position, row_id, date, amount, name, category)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			table, i, t.RowID, t.Date, t.Amount.String(), t.Name, t.Category)
		if err != nil {
			return fmt.Errorf("insert snapshot row %d for %s: %w", i, table, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (table_name, saved_at) VALUES (?, ?)
		 ON CONFLICT(table_name) DO UPDATE SET saved_at = excluded.saved_at`,
		table, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("update snapshot meta for %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot for %s: %w", table, err)
	}
	slog.DebugContext(ctx, "snapshot persisted", "table", table, "rows", len(txns))
	return nil
}

// Load returns the stored snapshot for a table in insertion order.
func (c *SQLiteCache) Load(ctx context.Context, table string) ([]core.Transaction, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT row_id, date, amount, name, category
		 FROM snapshots WHERE table_name = ? ORDER BY position`, table)
	if err != nil {
		return nil, fmt.Errorf("query snapshot for %s: %w", table, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var amount string
		if err := rows.Scan(&t.RowID, &t.Date, &amount, &t.Name, &t.Category); err != nil {
			return nil, fmt.Errorf("scan snapshot row for %s: %w", table, err)
		}
		t.Amount = core.CoerceAmount(amount)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot for %s: %w", table, err)
	}
	return out, nil
}

// SavedAt reports when a table's snapshot was last persisted.
func (c *SQLiteCache) SavedAt(ctx context.Context, table string) (time.Time, error) {
	var raw string
	err := c.db.QueryRowContext(ctx,
		`SELECT saved_at FROM snapshot_meta WHERE table_name = ?`, table).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query snapshot meta for %s: %w", table, err)
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot timestamp for %s: %w", table, err)
	}
	return ts, nil
}
