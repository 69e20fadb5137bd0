// Package scanlog persists one row per completed (or failed) CLI scan
// invocation to a local SQLite database (modernc.org/sqlite), for the
// "volscan history" subcommand. It is host-layer plumbing, entirely
// outside the scanning core: the core never reads it back, so a scan
// never gets shortcut or seeded from a prior run's history.
package scanlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/google/uuid"
)

// Record is one completed scan invocation.
type Record struct {
	RunID      string
	RootPath   string
	SourceKind string
	StartedAt  time.Time
	Duration   time.Duration
	FilesTotal int64
	DirsTotal  int64
	BytesTotal int64
	Error      string
}

// DB wraps the history database.
type DB struct {
	sql *sql.DB
}

// DefaultPath returns the XDG-resolved path to the history database,
// mirroring internal/config's Path().
func DefaultPath() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "volscan", "history.sqlite")
}

// Open opens (creating if needed) the history database at path and
// ensures its schema exists.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS scan_runs (
	run_id       TEXT PRIMARY KEY,
	root_path    TEXT NOT NULL,
	source_kind  TEXT NOT NULL,
	started_at   INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	files_total  INTEGER NOT NULL,
	dirs_total   INTEGER NOT NULL,
	bytes_total  INTEGER NOT NULL,
	error        TEXT NOT NULL DEFAULT ''
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{sql: db}, nil
}

func (d *DB) Close() error { return d.sql.Close() }

// NewRunID generates a fresh run identifier via github.com/google/uuid.
func NewRunID() string {
	return uuid.NewString()
}

// Insert writes one completed run. Called exactly once per CLI invocation,
// after the scan (or its failure) is already known.
func (d *DB) Insert(ctx context.Context, r Record) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO scan_runs (run_id, root_path, source_kind, started_at, duration_ms, files_total, dirs_total, bytes_total, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.RootPath, r.SourceKind,
		r.StartedAt.Unix(), r.Duration.Milliseconds(),
		r.FilesTotal, r.DirsTotal, r.BytesTotal, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert scan run: %w", err)
	}
	return nil
}

// Recent returns the n most recently started runs, newest first.
func (d *DB) Recent(ctx context.Context, n int) ([]Record, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT run_id, root_path, source_kind, started_at, duration_ms, files_total, dirs_total, bytes_total, error
FROM scan_runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query scan runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var startedAt int64
		var durationMs int64
		if err := rows.Scan(&r.RunID, &r.RootPath, &r.SourceKind, &startedAt, &durationMs, &r.FilesTotal, &r.DirsTotal, &r.BytesTotal, &r.Error); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.StartedAt = time.Unix(startedAt, 0)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}
