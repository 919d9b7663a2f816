package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionStore(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := NewVersionStore(conn)

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	current, err := store.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, Uninitialized, current)

	for _, v := range []int{0, 1, 2} {
		tx, err := conn.BeginTxx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordApplied(ctx, tx, v))
		require.NoError(t, tx.Commit())
	}

	current, err = store.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current)

	applied, err := store.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, applied)
}

func TestVersionStore_DuplicateRecord(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := NewVersionStore(conn)
	require.NoError(t, store.EnsureSchema(ctx))

	tx, err := conn.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, store.RecordApplied(ctx, tx, 0))
	err = store.RecordApplied(ctx, tx, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestVersionStore_RolledBackRecord(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	store := NewVersionStore(conn)
	require.NoError(t, store.EnsureSchema(ctx))

	tx, err := conn.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordApplied(ctx, tx, 0))
	require.NoError(t, tx.Rollback())

	current, err := store.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, Uninitialized, current)
}
