// Package field describes relational columns and tables. A DatabaseField is
// also how a NoSQL document field is named: it simply carries no type
// information.
package field

import (
	"fmt"
	"strings"
)

// Table is a table, optionally qualified by a schema.
type Table struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema,omitempty"`
}

// QualifiedName returns "schema.name", or the bare name without a schema.
func (t Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}

	return t.Schema + "." + t.Name
}

// Identifier returns the name parts in order, for identifier builders.
func (t Table) Identifier() []string {
	if t.Schema == "" {
		return []string{t.Name}
	}

	return []string{t.Schema, t.Name}
}

func (t Table) String() string {
	return t.QualifiedName()
}

// DatabaseField is one column.
type DatabaseField struct {
	Name string `yaml:"name"`
	// Table is the owning table name. It may be empty when the field is
	// only ever used against one table.
	Table    string `yaml:"table,omitempty"`
	SQLType  string `yaml:"type,omitempty"`
	Length   int    `yaml:"length,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

// Column creates a field with a SQL type, e.g. Column("ID", "BIGINT").
func Column(name, sqlType string) DatabaseField {
	return DatabaseField{Name: name, SQLType: sqlType}
}

// WithLength returns a copy of f with a length, e.g. for VARCHAR columns.
func (f DatabaseField) WithLength(n int) DatabaseField {
	f.Length = n
	return f
}

// QualifiedName returns "table.name", or the bare name without a table.
func (f DatabaseField) QualifiedName() string {
	if f.Table == "" {
		return f.Name
	}

	return f.Table + "." + f.Name
}

// TypeDefinition is the column type as written in DDL, e.g. "VARCHAR(40)".
// Fields without a type are rendered as VARCHAR with their length, the
// usual fallback for untyped document fields.
func (f DatabaseField) TypeDefinition() string {
	typ := strings.ToUpper(strings.TrimSpace(f.SQLType))
	if typ == "" {
		typ = "VARCHAR"
		if f.Length == 0 {
			return "VARCHAR(255)"
		}
	}

	if f.Length > 0 && !strings.Contains(typ, "(") {
		return fmt.Sprintf("%s(%d)", typ, f.Length)
	}

	return typ
}

// Key identifies a field within a statement. Names compare case-insensitively
// as SQL identifiers do.
func (f DatabaseField) Key() string {
	return strings.ToUpper(f.QualifiedName())
}

func (f DatabaseField) String() string {
	return f.QualifiedName()
}

// Names returns the bare names of fields, in order.
func Names(fields []DatabaseField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}

	return out
}
