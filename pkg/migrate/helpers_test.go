package migrate

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/sqlmigrate/pkg/db"
	"github.com/jingkaihe/sqlmigrate/pkg/ddl"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// tableMigrations registers n migrations, each creating table_<i>, and
// counts how often each one is constructed.
func tableMigrations(t *testing.T, n int) (*Registry, []Descriptor, map[Descriptor]int) {
	t.Helper()
	registry := NewRegistry()
	calls := make(map[Descriptor]int)

	for i := 0; i < n; i++ {
		d := Descriptor(fmt.Sprintf("create_table_%d", i))
		table := fmt.Sprintf("table_%d", i)
		require.NoError(t, registry.Register(d, func() (Migration, error) {
			calls[d]++
			return Func(func(ctx context.Context, tx *sqlx.Tx) error {
				return ddl.CreateTable(ctx, tx, ddl.NewTable(table).Add(ddl.NewColumn("col1", ddl.Integer, ddl.None)))
			}), nil
		}))
	}
	return registry, registry.Descriptors(), calls
}

func tableExists(t *testing.T, conn *sqlx.DB, name string) bool {
	t.Helper()
	var count int
	require.NoError(t, conn.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name))
	return count > 0
}

func versionRows(t *testing.T, conn *sqlx.DB) []int {
	t.Helper()
	var versions []int
	require.NoError(t, conn.Select(&versions, "SELECT VersionApplied FROM MigrationVersions ORDER BY VersionApplied"))
	return versions
}
