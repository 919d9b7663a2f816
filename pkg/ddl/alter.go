package ddl

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnsupportedAlteration is returned when a column cannot be added with
// ALTER TABLE, such as a primary key column.
var ErrUnsupportedAlteration = errors.New("unsupported alteration")

// UniqueIndexName is the name of the index created for a UNIQUE column added
// through AlterTableAddColumnSQL.
func UniqueIndexName(table, column string) string {
	return fmt.Sprintf("%s_%s_IsUnique", table, column)
}

// AlterTableAddColumnSQL renders the statements that add column to table.
//
// SQLite cannot declare UNIQUE inside ALTER TABLE ADD COLUMN, so a unique
// column is added without the constraint and a second statement creates a
// unique index on it. Adding a primary key column is rejected.
func AlterTableAddColumnSQL(table string, column Column) ([]string, error) {
	if column.Attributes.Has(PrimaryKey) {
		return nil, errors.Wrapf(ErrUnsupportedAlteration, "cannot add primary key column %s to %s", column.Name, table)
	}

	stmts := []string{
		fmt.Sprintf("ALTER TABLE '%s' ADD COLUMN %s", table, column.SQL(Unique, true)),
	}

	if column.Attributes.Has(Unique) {
		stmts = append(stmts, fmt.Sprintf("CREATE UNIQUE INDEX '%s' ON '%s'('%s');",
			UniqueIndexName(table, column.Name), table, column.Name))
	}

	return stmts, nil
}
