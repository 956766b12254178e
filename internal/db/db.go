// Package db provides PostgreSQL persistence for saved tailoring snapshots and
// bullet feedback.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

const (
	applicationName = "resume-review"
	maxConns        = 8
	maxConnIdle     = 5 * time.Minute
	connectTimeout  = 10 * time.Second
)

// schemaLockID serializes EnsureSchema across processes sharing a database
const schemaLockID = 0x7265766965770001

// DB is a pooled connection to the snapshot database.
type DB struct {
	pool *pgxpool.Pool
}

// Connect opens a pool for databaseURL and verifies the server answers.
// Pool limits set in the URL (pool_max_conns and friends) take precedence.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	cfg, err := poolConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &DB{pool: pool}, nil
}

func poolConfig(databaseURL string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	params := cfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
	if !hasParam(databaseURL, "pool_max_conns") {
		cfg.MaxConns = maxConns
	}
	if !hasParam(databaseURL, "pool_max_conn_idle_time") {
		cfg.MaxConnIdleTime = maxConnIdle
	}
	return cfg, nil
}

// hasParam reports whether a URL or keyword/value DSN sets name
func hasParam(databaseURL, name string) bool {
	return strings.Contains(databaseURL, name+"=")
}

// Close releases every pooled connection.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// EnsureSchema creates missing tables and indexes. It holds a transaction
// scoped advisory lock so concurrent starts do not race on CREATE.
func (db *DB) EnsureSchema(ctx context.Context) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(schemaLockID)); err != nil {
		return fmt.Errorf("locking schema: %w", err)
	}
	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return tx.Commit(ctx)
}
