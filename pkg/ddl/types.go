// Package ddl builds SQLite data-definition statements (CREATE TABLE,
// ALTER TABLE ... ADD COLUMN and CREATE INDEX) from declarative descriptors
// so that migrations do not have to assemble SQL strings by hand.
//
// Descriptors are write-once builders: construct them, add columns or index
// items, render them to SQL and discard them. Tables and indexes must contain
// at least one column or item; rendering an empty descriptor yields invalid SQL.
package ddl

import (
	"strings"

	"github.com/pkg/errors"
)

// ColumnType is the storage class of a column.
type ColumnType int

const (
	// Integer is a signed integer column.
	Integer ColumnType = iota
	// Real is a floating point column.
	Real
	// Text is a text column.
	Text
	// Blob is a binary column.
	Blob
)

// String returns the SQL keyword for the column type.
func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	default:
		return "UNKNOWN"
	}
}

// ParseColumnType converts a case-insensitive type name into a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return Integer, nil
	case "real", "float":
		return Real, nil
	case "text", "string":
		return Text, nil
	case "blob", "bytes":
		return Blob, nil
	default:
		return 0, errors.Errorf("unknown column type %q", s)
	}
}

// ColumnAttributes is a bitmask of column constraints. Attributes may be
// combined with the | operator.
type ColumnAttributes uint8

// None is the empty attribute set.
const None ColumnAttributes = 0

const (
	NotNull ColumnAttributes = 1 << iota
	PrimaryKey
	Unique
	AutoIncrement
)

// attributeOrder fixes the order in which attribute keywords are emitted.
var attributeOrder = []struct {
	attr    ColumnAttributes
	keyword string
}{
	{NotNull, "NOT NULL"},
	{PrimaryKey, "PRIMARY KEY"},
	{Unique, "UNIQUE"},
	{AutoIncrement, "AUTOINCREMENT"},
}

// Has reports whether every attribute in other is set.
func (a ColumnAttributes) Has(other ColumnAttributes) bool {
	return a&other == other
}

// Keywords returns the SQL keywords of the set attributes in emission order.
func (a ColumnAttributes) Keywords() []string {
	var keywords []string
	for _, entry := range attributeOrder {
		if a.Has(entry.attr) {
			keywords = append(keywords, entry.keyword)
		}
	}
	return keywords
}

// String returns the attribute keywords separated by spaces.
func (a ColumnAttributes) String() string {
	return strings.Join(a.Keywords(), " ")
}

// ParseColumnAttribute converts a single attribute name such as "not_null"
// or "autoincrement" into its flag.
func ParseColumnAttribute(s string) (ColumnAttributes, error) {
	normalized := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	switch normalized {
	case "none", "":
		return None, nil
	case "notnull":
		return NotNull, nil
	case "primarykey", "pk":
		return PrimaryKey, nil
	case "unique":
		return Unique, nil
	case "autoincrement":
		return AutoIncrement, nil
	default:
		return None, errors.Errorf("unknown column attribute %q", s)
	}
}

// ParseColumnAttributes combines a list of attribute names into one mask.
func ParseColumnAttributes(names []string) (ColumnAttributes, error) {
	attrs := None
	for _, name := range names {
		attr, err := ParseColumnAttribute(name)
		if err != nil {
			return None, err
		}
		attrs |= attr
	}
	return attrs, nil
}

// IndexOrder is the sort order of an index item.
type IndexOrder int

const (
	// OrderNone leaves the sort order to the database default.
	OrderNone IndexOrder = iota
	// OrderAsc sorts ascending.
	OrderAsc
	// OrderDesc sorts descending.
	OrderDesc
)

// String returns the SQL keyword of the order, empty for OrderNone.
func (o IndexOrder) String() string {
	switch o {
	case OrderAsc:
		return "ASC"
	case OrderDesc:
		return "DESC"
	default:
		return ""
	}
}

// ParseIndexOrder converts "", "none", "asc" or "desc" into an IndexOrder.
func ParseIndexOrder(s string) (IndexOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return OrderNone, nil
	case "asc", "ascending":
		return OrderAsc, nil
	case "desc", "descending":
		return OrderDesc, nil
	default:
		return OrderNone, errors.Errorf("unknown index order %q", s)
	}
}
