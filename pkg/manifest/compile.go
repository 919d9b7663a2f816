package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/sqlmigrate/pkg/ddl"
	"github.com/jingkaihe/sqlmigrate/pkg/migrate"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// action is a compiled step: the SQL it runs and how to run it.
type action struct {
	statements []string
	run        func(ctx context.Context, tx *sqlx.Tx) error
}

// Column converts the spec into a ddl column.
func (c ColumnSpec) Column() (ddl.Column, error) {
	if c.Name == "" {
		return ddl.Column{}, errors.New("column name is required")
	}
	typ, err := ddl.ParseColumnType(c.Type)
	if err != nil {
		return ddl.Column{}, errors.Wrapf(err, "column %s", c.Name)
	}
	attrs, err := ddl.ParseColumnAttributes(c.Attributes)
	if err != nil {
		return ddl.Column{}, errors.Wrapf(err, "column %s", c.Name)
	}

	col := ddl.NewColumn(c.Name, typ, attrs)
	if c.References != nil {
		if c.References.Table == "" || c.References.Column == "" {
			return ddl.Column{}, errors.Errorf("column %s: references needs both table and column", c.Name)
		}
		col = col.References(c.References.Table, c.References.Column)
	}
	return col, nil
}

// Table converts the spec into a ddl table.
func (t TableSpec) Table() (*ddl.Table, error) {
	if t.Name == "" {
		return nil, errors.New("table name is required")
	}
	if len(t.Columns) == 0 {
		return nil, errors.Errorf("table %s has no columns", t.Name)
	}

	table := ddl.NewTable(t.Name, t.PrimaryKey...)
	names := make(map[string]bool, len(t.Columns))
	for _, spec := range t.Columns {
		col, err := spec.Column()
		if err != nil {
			return nil, errors.Wrapf(err, "table %s", t.Name)
		}
		if names[col.Name] {
			return nil, errors.Errorf("table %s: duplicate column %s", t.Name, col.Name)
		}
		names[col.Name] = true
		table.Add(col)
	}

	for _, pk := range t.PrimaryKey {
		if !names[pk] {
			return nil, errors.Errorf("table %s: primary key column %s is not declared", t.Name, pk)
		}
	}
	return table, nil
}

// Index converts the spec into a ddl index.
func (i IndexSpec) Index() (*ddl.Index, error) {
	if i.Name == "" {
		return nil, errors.New("index name is required")
	}
	if i.Table == "" {
		return nil, errors.Errorf("index %s: table is required", i.Name)
	}
	if len(i.Columns) == 0 {
		return nil, errors.Errorf("index %s has no columns", i.Name)
	}

	index := ddl.NewIndex(i.Name, i.Table, i.Unique)
	for _, c := range i.Columns {
		if c.Name == "" {
			return nil, errors.Errorf("index %s: column name is required", i.Name)
		}
		order, err := ddl.ParseIndexOrder(c.Order)
		if err != nil {
			return nil, errors.Wrapf(err, "index %s", i.Name)
		}
		index.Add(c.Name, order)
	}
	return index, nil
}

func (s Step) kind() (string, error) {
	var kinds []string
	if s.CreateTable != nil {
		kinds = append(kinds, "create_table")
	}
	if s.CreateIndex != nil {
		kinds = append(kinds, "create_index")
	}
	if s.AddColumn != nil {
		kinds = append(kinds, "add_column")
	}
	if strings.TrimSpace(s.SQL) != "" {
		kinds = append(kinds, "sql")
	}

	switch len(kinds) {
	case 0:
		return "", errors.New("step has no action")
	case 1:
		return kinds[0], nil
	default:
		return "", errors.Errorf("step has several actions: %s", strings.Join(kinds, ", "))
	}
}

func (s Step) compile() (action, error) {
	kind, err := s.kind()
	if err != nil {
		return action{}, err
	}

	switch kind {
	case "create_table":
		table, err := s.CreateTable.Table()
		if err != nil {
			return action{}, err
		}
		return action{
			statements: []string{table.SQL()},
			run: func(ctx context.Context, tx *sqlx.Tx) error {
				return ddl.CreateTable(ctx, tx, table)
			},
		}, nil
	case "create_index":
		index, err := s.CreateIndex.Index()
		if err != nil {
			return action{}, err
		}
		return action{
			statements: []string{index.SQL()},
			run: func(ctx context.Context, tx *sqlx.Tx) error {
				return ddl.CreateIndex(ctx, tx, index)
			},
		}, nil
	case "add_column":
		if s.AddColumn.Table == "" {
			return action{}, errors.New("add_column: table is required")
		}
		col, err := s.AddColumn.Column.Column()
		if err != nil {
			return action{}, errors.Wrap(err, "add_column")
		}
		table := s.AddColumn.Table
		stmts, err := ddl.AlterTableAddColumnSQL(table, col)
		if err != nil {
			return action{}, err
		}
		return action{
			statements: stmts,
			run: func(ctx context.Context, tx *sqlx.Tx) error {
				return ddl.AlterTableAddColumn(ctx, tx, table, col)
			},
		}, nil
	default:
		stmt := strings.TrimSpace(s.SQL)
		return action{
			statements: []string{stmt},
			run: func(ctx context.Context, tx *sqlx.Tx) error {
				_, err := tx.ExecContext(ctx, stmt)
				return errors.Wrap(err, "failed to execute sql step")
			},
		}, nil
	}
}

// migration runs a compiled list of steps.
type migration struct {
	name    string
	actions []action
}

func (m *migration) Apply(ctx context.Context, tx *sqlx.Tx) error {
	for i, a := range m.actions {
		if err := a.run(ctx, tx); err != nil {
			return errors.Wrapf(err, "%s: step %d", m.name, i)
		}
	}
	return nil
}

func (s MigrationSpec) compile() (*migration, error) {
	m := &migration{name: s.Name}
	for i, step := range s.Steps {
		a, err := step.compile()
		if err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
		m.actions = append(m.actions, a)
	}
	return m, nil
}

func (s MigrationSpec) label(index int) string {
	if s.Name == "" {
		return fmt.Sprintf("migration %d", index)
	}
	return fmt.Sprintf("migration %d (%s)", index, s.Name)
}

// Validate reports every problem in the manifest at once.
func (m *Manifest) Validate() error {
	var result *multierror.Error
	seen := make(map[string]int, len(m.Migrations))

	for i, spec := range m.Migrations {
		label := spec.label(i)
		if spec.Name == "" {
			result = multierror.Append(result, errors.Errorf("%s: name is required", label))
		} else if prev, ok := seen[spec.Name]; ok {
			result = multierror.Append(result, errors.Errorf("%s: name already used by migration %d", label, prev))
		} else {
			seen[spec.Name] = i
		}

		if len(spec.Steps) == 0 {
			result = multierror.Append(result, errors.Errorf("%s: no steps", label))
		}
		for n, step := range spec.Steps {
			if _, err := step.compile(); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "%s: step %d", label, n))
			}
		}
	}

	return result.ErrorOrNil()
}

// Descriptors returns the migration names in manifest order.
func (m *Manifest) Descriptors() []migrate.Descriptor {
	out := make([]migrate.Descriptor, len(m.Migrations))
	for i, spec := range m.Migrations {
		out[i] = migrate.Descriptor(spec.Name)
	}
	return out
}

// Registry validates the manifest and registers one constructor per migration.
func (m *Manifest) Registry() (*migrate.Registry, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	registry := migrate.NewRegistry()
	for _, spec := range m.Migrations {
		err := registry.Register(migrate.Descriptor(spec.Name), func() (migrate.Migration, error) {
			compiled, err := spec.compile()
			if err != nil {
				return nil, err
			}
			return compiled, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// PlannedMigration is the SQL a migration would execute.
type PlannedMigration struct {
	Index      int
	Name       string
	Statements []string
}

// Plan renders the SQL of every migration without touching a database.
func (m *Manifest) Plan() ([]PlannedMigration, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	plan := make([]PlannedMigration, 0, len(m.Migrations))
	for i, spec := range m.Migrations {
		compiled, err := spec.compile()
		if err != nil {
			return nil, errors.Wrap(err, spec.label(i))
		}
		p := PlannedMigration{Index: i, Name: spec.Name}
		for _, a := range compiled.actions {
			p.Statements = append(p.Statements, a.statements...)
		}
		plan = append(plan, p)
	}
	return plan, nil
}
