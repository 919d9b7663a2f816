package migrate

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Uninitialized is the version reported for a database with no applied migrations.
const Uninitialized = -1

// VersionStore tracks applied migration indexes in the MigrationVersions table.
type VersionStore struct {
	db *sqlx.DB
}

// NewVersionStore returns a store backed by db.
func NewVersionStore(db *sqlx.DB) *VersionStore {
	return &VersionStore{db: db}
}

// EnsureSchema creates the MigrationVersions table and its index if missing.
func (s *VersionStore) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS 'MigrationVersions' ('VersionApplied' INTEGER NOT NULL UNIQUE);`); err != nil {
		return errors.Wrap(err, "failed to create MigrationVersions table")
	}
	if _, err := tx.ExecContext(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS 'MigrationVersionsIndex' ON 'MigrationVersions' ('VersionApplied' ASC);`); err != nil {
		return errors.Wrap(err, "failed to create MigrationVersionsIndex")
	}

	return errors.Wrap(tx.Commit(), "failed to commit MigrationVersions schema")
}

// CurrentVersion returns the highest applied index, or Uninitialized.
func (s *VersionStore) CurrentVersion(ctx context.Context) (int, error) {
	var max sql.NullInt64
	if err := s.db.GetContext(ctx, &max, "SELECT MAX(VersionApplied) FROM MigrationVersions"); err != nil {
		return Uninitialized, errors.Wrap(err, "failed to get current migration version")
	}
	if !max.Valid {
		return Uninitialized, nil
	}
	return int(max.Int64), nil
}

// RecordApplied marks index as applied within tx. Recording an index twice
// fails on the unique constraint.
func (s *VersionStore) RecordApplied(ctx context.Context, tx *sqlx.Tx, index int) error {
	if _, err := tx.ExecContext(ctx, "INSERT INTO MigrationVersions (VersionApplied) VALUES (?)", index); err != nil {
		return errors.Wrapf(err, "failed to record migration version %d", index)
	}
	return nil
}

// Applied returns every applied index in ascending order.
func (s *VersionStore) Applied(ctx context.Context) ([]int, error) {
	var versions []int
	if err := s.db.SelectContext(ctx, &versions, "SELECT VersionApplied FROM MigrationVersions ORDER BY VersionApplied"); err != nil {
		return nil, errors.Wrap(err, "failed to get applied versions")
	}
	return versions, nil
}
