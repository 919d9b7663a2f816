package ddl

import (
	"fmt"
	"strings"
)

// ForeignKey references a column of another table.
type ForeignKey struct {
	Table  string
	Column string
}

func (f *ForeignKey) references() string {
	return fmt.Sprintf("REFERENCES '%s'('%s')", f.Table, f.Column)
}

// CompositePrimaryKey is a table-level primary key over the named columns.
type CompositePrimaryKey struct {
	Columns []string
}

// SQL renders the table-level PRIMARY KEY clause.
func (p *CompositePrimaryKey) SQL() string {
	quoted := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		quoted[i] = "'" + c + "'"
	}
	return "PRIMARY KEY(" + strings.Join(quoted, ",") + ")"
}

// Column describes a single table column.
type Column struct {
	Name       string
	Type       ColumnType
	Attributes ColumnAttributes
	ForeignKey *ForeignKey
}

// NewColumn returns a column with the given attributes.
func NewColumn(name string, typ ColumnType, attrs ColumnAttributes) Column {
	return Column{Name: name, Type: typ, Attributes: attrs}
}

// References sets the column's foreign key and returns the column.
func (c Column) References(table, column string) Column {
	c.ForeignKey = &ForeignKey{Table: table, Column: column}
	return c
}

// SQL renders the column definition. Attributes in strip are omitted. When
// includeForeign is set an inline REFERENCES clause is appended, which is how
// foreign keys are expressed in ALTER TABLE statements.
func (c Column) SQL(strip ColumnAttributes, includeForeign bool) string {
	parts := []string{"'" + c.Name + "'", c.Type.String()}
	parts = append(parts, (c.Attributes &^ strip).Keywords()...)

	if includeForeign && c.ForeignKey != nil {
		parts = append(parts, c.ForeignKey.references())
	}

	return strings.Join(parts, " ")
}

// Table describes a CREATE TABLE statement.
type Table struct {
	Name       string
	PrimaryKey *CompositePrimaryKey
	Columns    []Column
}

// NewTable returns an empty table. If primaryKey columns are given, a
// composite PRIMARY KEY clause is emitted over them.
func NewTable(name string, primaryKey ...string) *Table {
	t := &Table{Name: name}
	if len(primaryKey) > 0 {
		t.PrimaryKey = &CompositePrimaryKey{Columns: primaryKey}
	}
	return t
}

// Add appends columns in order and returns the table for chaining.
func (t *Table) Add(columns ...Column) *Table {
	t.Columns = append(t.Columns, columns...)
	return t
}

// SQL renders the CREATE TABLE statement.
func (t *Table) SQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE '%s' (", t.Name)

	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		defs = append(defs, c.SQL(None, false))
	}

	if t.PrimaryKey != nil {
		defs = append(defs, t.PrimaryKey.SQL())
	}

	for _, c := range t.Columns {
		if c.ForeignKey == nil {
			continue
		}
		defs = append(defs, fmt.Sprintf("FOREIGN KEY('%s') %s", c.Name, c.ForeignKey.references()))
	}

	b.WriteString(strings.Join(defs, ","))
	b.WriteString(");")
	return b.String()
}
