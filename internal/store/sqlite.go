// Package store persists training records, parties, risk registers and
// the audit trail in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/soyeahso/suite/internal/logging"
)

const memoryPath = ":memory:"

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// DB is a migrated SQLite handle shared by the stores.
type DB struct {
	sql  *sql.DB
	log  *logging.Logger
	path string
}

// Open opens or creates the database at path and brings its schema up to
// date. ":memory:" gives a private database for tests.
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if path == memoryPath {
		// every pooled connection would get its own empty database
		conn.SetMaxOpenConns(1)
	}

	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	db := &DB{sql: conn, log: log.Sub("store"), path: path}
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}

	db.log.Info().Str("path", path).Msg("database ready")
	return db, nil
}

func (db *DB) Close() error {
	db.log.Debug().Str("path", db.path).Msg("closing database")
	return db.sql.Close()
}

// SQL exposes the handle for ad-hoc queries in tools and tests.
func (db *DB) SQL() *sql.DB { return db.sql }

// Ping checks the connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

// SchemaVersion is the highest applied migration, 0 for an empty database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var v sql.NullInt64
	if err := db.sql.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// migrate applies every migration newer than the recorded schema version,
// each in its own transaction.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.sql.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := db.apply(ctx, m); err != nil {
			return err
		}
		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("migration applied")
	}
	return nil
}

func (db *DB) apply(ctx context.Context, m migration) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	return tx.Commit()
}
