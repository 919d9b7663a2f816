package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	m, err := Parse(strings.NewReader(`
app_id: demo
migrations:
  - name: first
    steps:
      - sql: CREATE TABLE t (id INTEGER)
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", m.AppID)
	require.Len(t, m.Migrations, 1)
	assert.Equal(t, "first", m.Migrations[0].Name)
	assert.Equal(t, "CREATE TABLE t (id INTEGER)", m.Migrations[0].Steps[0].SQL)
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Migrations)
	assert.Empty(t, m.AppID)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader(`
migrations:
  - name: first
    stepz: []
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stepz")
}

func TestLoad(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "blog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "blog", m.AppID)
	require.Len(t, m.Migrations, 3)

	users := m.Migrations[0].Steps[0].CreateTable
	require.NotNil(t, users)
	assert.Equal(t, []string{"primary_key", "autoincrement"}, users.Columns[0].Attributes)

	_, err = Load(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read manifest")
}

func TestLoadGlob(t *testing.T) {
	m, err := LoadGlob(filepath.Join("testdata", "split", "*.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "blog", m.AppID)
	assert.Equal(t, []string{"create_users", "create_posts"},
		[]string{m.Migrations[0].Name, m.Migrations[1].Name})
}

func TestLoadGlob_Recursive(t *testing.T) {
	m, err := LoadGlob(filepath.Join("testdata", "**", "0*.yaml"))
	require.NoError(t, err)
	assert.Len(t, m.Migrations, 2)
}

func TestLoadGlob_NoMatch(t *testing.T) {
	_, err := LoadGlob(filepath.Join(t.TempDir(), "*.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no manifest files match")
}

func TestLoadGlob_AppIDConflict(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("app_id: one\nmigrations: []\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("app_id: two\nmigrations: []\n"), 0o644))

	_, err := LoadGlob(filepath.Join(dir, "*.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `declares app_id "two"`)
}
