// Package storage keeps ledger snapshots in a SQLite file. A snapshot is an
// explicit export target: the ledger is only written when asked to and only
// read back on import.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tracker/internal/codec"
	"tracker/internal/core"

	_ "modernc.org/sqlite"
)

// Snapshot is a SQLite-backed codec.
type Snapshot struct {
	db   *sql.DB
	path string
}

var _ codec.Codec = (*Snapshot)(nil)

// ExportInfo describes one past export.
type ExportInfo struct {
	ExportedAt time.Time
	Records    int
	Total      core.Money
}

// OpenExisting opens a snapshot that must already exist on disk. A missing
// file is reported as an error wrapping fs.ErrNotExist, and nothing is
// created.
func OpenExisting(dbPath string) (*Snapshot, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return Open(dbPath)
}

// Open opens the snapshot at dbPath, creating the file and its directory if
// needed, and brings the schema up to date.
func Open(dbPath string) (*Snapshot, error) {
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

	return &Snapshot{db: db, path: dbPath}, nil
}

// Close closes the database handle.
func (s *Snapshot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Export replaces the stored snapshot with recs inside one transaction.
func (s *Snapshot) Export(ctx context.Context, recs []core.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (position, date, category, description, amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var total core.Money
	for i, rec := range recs {
		raw := rec.Raw()
		if _, err = stmt.ExecContext(ctx, i+1, raw.Date, raw.Category, raw.Description, raw.Amount); err != nil {
			return fmt.Errorf("insert record %d: %w", rec.ID, err)
		}
		total = total.Add(rec.Amount)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO exports (exported_at, records, total_cents) VALUES (?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), len(recs), total.Cents); err != nil {
		return fmt.Errorf("record export: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}

	slog.InfoContext(ctx, "Ledger snapshot saved to SQLite",
		"path", s.path,
		"records", len(recs),
		"total_cents", total.Cents)
	return nil
}

// Import reads the snapshot in its stored order and validates every row.
func (s *Snapshot) Import(ctx context.Context) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, date, category, description, amount FROM expenses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var raws []codec.RawRow
	for rows.Next() {
		var (
			pos int
			raw core.RawFields
		)
		if err := rows.Scan(&pos, &raw.Date, &raw.Category, &raw.Description, &raw.Amount); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		raws = append(raws, codec.RawRow{Fields: raw, Width: len(codec.Header), Line: pos})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	recs, err := codec.CoerceRows(raws)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Ledger snapshot loaded from SQLite", "path", s.path, "records", len(recs))
	return recs, nil
}

// LastExport returns the most recent export, or ok=false if there was none.
func (s *Snapshot) LastExport(ctx context.Context) (info ExportInfo, ok bool, err error) {
	var (
		at    string
		cents int64
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT exported_at, records, total_cents FROM exports ORDER BY id DESC LIMIT 1`).
		Scan(&at, &info.Records, &cents)
	if errors.Is(err, sql.ErrNoRows) {
		return ExportInfo{}, false, nil
	}
	if err != nil {
		return ExportInfo{}, false, fmt.Errorf("get last export: %w", err)
	}
	info.ExportedAt, err = time.Parse(time.RFC3339, at)
	if err != nil {
		return ExportInfo{}, false, fmt.Errorf("parse export time: %w", err)
	}
	info.Total = core.Money{Cents: cents}
	return info, true, nil
}
