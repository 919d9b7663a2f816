// Package db provides SQLite connection utilities for sqlmigrate.
package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DefaultDBPath returns the default path for the database file.
func DefaultDBPath() (string, error) {
	if basePath := os.Getenv("SQLMIGRATE_BASE_PATH"); basePath != "" {
		return filepath.Join(basePath, "storage.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, ".sqlmigrate", "storage.db"), nil
}

// Open opens or creates a SQLite database at the given path.
func Open(ctx context.Context, dbPath string) (*sqlx.DB, error) {
	if dbPath != MemoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := Configure(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to configure database")
	}

	if err := VerifyConfiguration(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database configuration not in effect")
	}

	return db, nil
}

// Configure sets up SQLite pragmas. File databases run in WAL mode; an
// in-memory database keeps its "memory" journal.
//
// The pool is limited to one connection, so callers must not query through
// the *sqlx.DB while holding an open transaction.
func Configure(ctx context.Context, db *sqlx.DB) error {
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=1000",
		"PRAGMA temp_store=memory",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		return errors.Wrap(err, "failed to query journal mode")
	}

	switch strings.ToLower(journalMode) {
	case "wal", "memory":
		return nil
	default:
		return errors.Errorf("WAL mode not enabled. Current mode: %s", journalMode)
	}
}

// VerifyConfiguration checks that the pragmas applied by Configure are in effect.
func VerifyConfiguration(db *sqlx.DB) error {
	var journalMode string
	if err := db.Get(&journalMode, "PRAGMA journal_mode"); err != nil {
		return errors.Wrap(err, "failed to query journal mode")
	}
	if mode := strings.ToLower(journalMode); mode != "wal" && mode != "memory" {
		return errors.Errorf("expected WAL mode, got %s", journalMode)
	}

	var synchronous string
	if err := db.Get(&synchronous, "PRAGMA synchronous"); err != nil {
		return errors.Wrap(err, "failed to query synchronous mode")
	}
	if synchronous != "1" {
		return errors.Errorf("expected NORMAL synchronous mode, got %s", synchronous)
	}

	var foreignKeys string
	if err := db.Get(&foreignKeys, "PRAGMA foreign_keys"); err != nil {
		return errors.Wrap(err, "failed to query foreign keys")
	}
	if foreignKeys != "1" {
		return errors.Errorf("expected foreign keys ON, got %s", foreignKeys)
	}

	return nil
}
