// Package localstore is the single-user SQLite backend: saved snapshots,
// bullet feedback, and a job application tracker.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Store wraps a SQLite database
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.resume_review/review.db
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".resume_review", "review.db")
}

// Open opens (or creates) the database at path and applies the schema
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("localstore: mkdir %s: %w", filepath.Dir(path), err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localstore: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("localstore: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	job_title    TEXT NOT NULL DEFAULT '',
	company      TEXT NOT NULL DEFAULT '',
	summary      TEXT NOT NULL DEFAULT '',
	body         TEXT NOT NULL,
	bullet_total INTEGER NOT NULL DEFAULT 0,
	score        REAL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT NOT NULL,
	role_key     TEXT NOT NULL,
	bullet_index INTEGER NOT NULL,
	source       TEXT NOT NULL,
	text         TEXT NOT NULL,
	vote         TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	company     TEXT NOT NULL,
	url         TEXT,
	status      TEXT NOT NULL DEFAULT 'saved',
	notes       TEXT,
	snapshot_id TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
`
