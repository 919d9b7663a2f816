// Package manifest declares migrations in YAML and turns them into
// migrate.Migration instances built from pkg/ddl descriptors.
//
// A manifest lists migrations in application order. Each migration is a list
// of steps and every step holds exactly one action: create_table,
// create_index, add_column or raw sql.
package manifest

import (
	"bytes"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest is a decoded migration manifest.
type Manifest struct {
	AppID      string          `yaml:"app_id,omitempty"`
	Migrations []MigrationSpec `yaml:"migrations"`
}

// MigrationSpec is one named migration.
type MigrationSpec struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is a single action of a migration. Exactly one field must be set.
type Step struct {
	CreateTable *TableSpec     `yaml:"create_table,omitempty"`
	CreateIndex *IndexSpec     `yaml:"create_index,omitempty"`
	AddColumn   *AddColumnSpec `yaml:"add_column,omitempty"`
	SQL         string         `yaml:"sql,omitempty"`
}

// TableSpec declares a table.
type TableSpec struct {
	Name       string       `yaml:"name"`
	PrimaryKey []string     `yaml:"primary_key,omitempty"`
	Columns    []ColumnSpec `yaml:"columns"`
}

// ColumnSpec declares a column.
type ColumnSpec struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Attributes []string       `yaml:"attributes,omitempty"`
	References *ReferenceSpec `yaml:"references,omitempty"`
}

// ReferenceSpec is a foreign key target.
type ReferenceSpec struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

// IndexSpec declares an index.
type IndexSpec struct {
	Name    string            `yaml:"name"`
	Table   string            `yaml:"table"`
	Unique  bool              `yaml:"unique,omitempty"`
	Columns []IndexColumnSpec `yaml:"columns"`
}

// IndexColumnSpec is one indexed column. Order is "", "asc" or "desc".
type IndexColumnSpec struct {
	Name  string `yaml:"name"`
	Order string `yaml:"order,omitempty"`
}

// AddColumnSpec adds a column to an existing table.
type AddColumnSpec struct {
	Table  string     `yaml:"table"`
	Column ColumnSpec `yaml:"column"`
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	m, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid manifest %s", path)
	}
	return m, nil
}

// LoadGlob loads every file matching pattern (doublestar syntax, e.g.
// "migrations/**/*.yaml") in lexical path order and concatenates their
// migrations. Files that set app_id must agree on it.
func LoadGlob(pattern string) (*Manifest, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid manifest pattern %s", pattern)
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no manifest files match %s", pattern)
	}
	sort.Strings(paths)

	merged := &Manifest{}
	for _, path := range paths {
		m, err := Load(path)
		if err != nil {
			return nil, err
		}
		if m.AppID != "" {
			if merged.AppID != "" && merged.AppID != m.AppID {
				return nil, errors.Errorf("manifest %s declares app_id %q, previous files declare %q", path, m.AppID, merged.AppID)
			}
			merged.AppID = m.AppID
		}
		merged.Migrations = append(merged.Migrations, m.Migrations...)
	}
	return merged, nil
}
