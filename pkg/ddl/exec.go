package ddl

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// CreateTable executes the CREATE TABLE statement for table.
func CreateTable(ctx context.Context, tx sqlx.ExecerContext, table *Table) error {
	if _, err := tx.ExecContext(ctx, table.SQL()); err != nil {
		return errors.Wrapf(err, "failed to create table %s", table.Name)
	}
	return nil
}

// CreateIndex executes the CREATE INDEX statement for index.
func CreateIndex(ctx context.Context, tx sqlx.ExecerContext, index *Index) error {
	if _, err := tx.ExecContext(ctx, index.SQL()); err != nil {
		return errors.Wrapf(err, "failed to create index %s", index.Name)
	}
	return nil
}

// AlterTableAddColumn adds column to an existing table, creating the unique
// index as well when the column is declared Unique.
func AlterTableAddColumn(ctx context.Context, tx sqlx.ExecerContext, table string, column Column) error {
	stmts, err := AlterTableAddColumnSQL(table, column)
	if err != nil {
		return err
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to add column %s to %s", column.Name, table)
		}
	}
	return nil
}
