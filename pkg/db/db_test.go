package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, VerifyConfiguration(db))

	var journalMode string
	require.NoError(t, db.Get(&journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, VerifyConfiguration(db))

	_, err = db.Exec("CREATE TABLE scratch (id INTEGER)")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'scratch'"))
	assert.Equal(t, 1, count)
}

func TestDefaultDBPath(t *testing.T) {
	t.Run("with SQLMIGRATE_BASE_PATH", func(t *testing.T) {
		t.Setenv("SQLMIGRATE_BASE_PATH", "/custom/path")
		path, err := DefaultDBPath()
		require.NoError(t, err)
		assert.Equal(t, "/custom/path/storage.db", path)
	})

	t.Run("without SQLMIGRATE_BASE_PATH", func(t *testing.T) {
		t.Setenv("SQLMIGRATE_BASE_PATH", "")
		path, err := DefaultDBPath()
		require.NoError(t, err)
		home, _ := os.UserHomeDir()
		assert.Equal(t, filepath.Join(home, ".sqlmigrate", "storage.db"), path)
	})
}

func TestVerifyConfiguration_ForeignKeysOff(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("PRAGMA foreign_keys=OFF")
	require.NoError(t, err)

	err = VerifyConfiguration(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foreign keys")
}

func TestVerifyConfiguration_Unconfigured(t *testing.T) {
	raw, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "raw.db"))
	require.NoError(t, err)
	defer raw.Close()

	err = VerifyConfiguration(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected WAL mode")

	require.NoError(t, Configure(context.Background(), raw))
	assert.NoError(t, VerifyConfiguration(raw))
}
