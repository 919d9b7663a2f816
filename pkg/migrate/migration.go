// Package migrate applies an ordered list of schema migrations to a SQLite
// database exactly once each.
//
// A migration's position in the list is its version. The database records
// every applied position in the MigrationVersions table, inside the same
// transaction as the migration itself, so the recorded versions always form
// the contiguous range 0..current. An optional application identifier stored
// in the AppIds table prevents one application's migrations from being run
// against another application's database.
//
// Applying from several processes at once is not safe without external
// locking: two runners may both observe the same version and race on the
// MigrationVersions unique constraint.
package migrate

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Descriptor identifies a migration implementation. It is resolved to a
// Migration by a Factory.
type Descriptor string

// Migration is a single schema or data change applied inside a transaction.
// Returning an error rolls the transaction back.
type Migration interface {
	Apply(ctx context.Context, tx *sqlx.Tx) error
}

// Func adapts an ordinary function to the Migration interface.
type Func func(ctx context.Context, tx *sqlx.Tx) error

// Apply calls f(ctx, tx).
func (f Func) Apply(ctx context.Context, tx *sqlx.Tx) error {
	return f(ctx, tx)
}
