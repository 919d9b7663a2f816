package migrate

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// IdentityGuard records which application owns a database in the AppIds table.
type IdentityGuard struct {
	db *sqlx.DB
}

// NewIdentityGuard returns a guard backed by db.
func NewIdentityGuard(db *sqlx.DB) *IdentityGuard {
	return &IdentityGuard{db: db}
}

// EnsureSchema creates the AppIds table if missing.
func (g *IdentityGuard) EnsureSchema(ctx context.Context) error {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS 'AppIds' ('ApplicationId' TEXT NOT NULL);`); err != nil {
		return errors.Wrap(err, "failed to create AppIds table")
	}

	return errors.Wrap(tx.Commit(), "failed to commit AppIds schema")
}

// Current returns the stored application id. The second result is false when
// no id has been recorded yet, including when the AppIds table is missing.
func (g *IdentityGuard) Current(ctx context.Context) (string, bool, error) {
	var tables int
	if err := g.db.GetContext(ctx, &tables,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'AppIds'"); err != nil {
		return "", false, errors.Wrap(err, "failed to look up AppIds table")
	}
	if tables == 0 {
		return "", false, nil
	}

	var id string
	err := g.db.GetContext(ctx, &id, "SELECT ApplicationId FROM AppIds LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "failed to read application id")
	}
	return id, true, nil
}

// Check verifies that the database belongs to expected, claiming it when no
// id is stored yet.
//
// The read and the insert run in separate transactions, so two processes
// initializing the same empty database concurrently may both claim it.
func (g *IdentityGuard) Check(ctx context.Context, expected string) error {
	if err := g.EnsureSchema(ctx); err != nil {
		return err
	}

	actual, found, err := g.Current(ctx)
	if err != nil {
		return err
	}
	if found {
		if actual != expected {
			return &AppIDMismatchError{Expected: expected, Actual: actual}
		}
		return nil
	}

	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT INTO AppIds (ApplicationId) VALUES (?)", expected); err != nil {
		return errors.Wrap(err, "failed to record application id")
	}

	return errors.Wrap(tx.Commit(), "failed to commit application id")
}
