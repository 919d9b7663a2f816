package ddl

import (
	"fmt"
	"strings"
)

// IndexItem is one indexed column.
type IndexItem struct {
	Column string
	Order  IndexOrder
}

// SQL renders the item as it appears inside CREATE INDEX.
func (i IndexItem) SQL() string {
	if i.Order == OrderNone {
		return fmt.Sprintf(`"%s"`, i.Column)
	}
	return fmt.Sprintf(`"%s" %s`, i.Column, i.Order)
}

// Index describes a CREATE INDEX statement.
type Index struct {
	Name   string
	Table  string
	Unique bool
	Items  []IndexItem
}

// NewIndex returns an index with no items.
func NewIndex(name, table string, unique bool) *Index {
	return &Index{Name: name, Table: table, Unique: unique}
}

// Add appends a column to the index and returns the index for chaining.
func (i *Index) Add(column string, order IndexOrder) *Index {
	i.Items = append(i.Items, IndexItem{Column: column, Order: order})
	return i
}

// SQL renders the CREATE INDEX statement.
func (i *Index) SQL() string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if i.Unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, `INDEX "%s" ON "%s" (`, i.Name, i.Table)

	items := make([]string, len(i.Items))
	for n, item := range i.Items {
		items[n] = item.SQL()
	}
	b.WriteString(strings.Join(items, ","))
	b.WriteString(");")
	return b.String()
}
