// Package platform is the database platform adapter: the only place that
// knows how a dialect spells temp-table bulk updates, sequence reads and
// schema drops. Callers depend on the Platform interface and its capability
// predicates, never on a concrete dialect.
//
// SQL text is built with goqu dialects. DDL, which goqu does not model, is
// written directly with the dialect's identifier quoting.
package platform

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"oxmapper/field"
)

var (
	ErrUnknownPlatform = errors.New("unknown database platform")
	ErrNoPrimaryKey    = errors.New("statement needs at least one primary key field")
	ErrNoFields        = errors.New("statement needs at least one field")
	ErrNoSequenceName  = errors.New("sequence object needs a name")
)

// TempTablePrefix is prepended to a table name to name its temp table.
const TempTablePrefix = "TL_"

// Platform is what statements need from a database dialect.
type Platform interface {
	Name() string

	// TempTableFor names the temp table that shadows t.
	TempTableFor(t field.Table) field.Table

	// WriteCreateTempTableSQL writes the DDL for the temp table of table
	// holding fields, keyed by primaryKeyFields.
	WriteCreateTempTableSQL(w io.Writer, table field.Table, fields, primaryKeyFields []field.DatabaseField) error
	// WriteInsertIntoTempTableSQL writes an insert of one row into the temp
	// table, with a "?" placeholder per field.
	WriteInsertIntoTempTableSQL(w io.Writer, table field.Table, fields []field.DatabaseField) error
	// WriteUpdateOriginalFromTempTableSQL writes the update that copies
	// assignedFields from the temp table into table, joining the two on
	// primaryKeyFields.
	WriteUpdateOriginalFromTempTableSQL(w io.Writer, table field.Table, primaryKeyFields, assignedFields []field.DatabaseField) error
	// WriteCleanupTempTableSQL writes the statement that empties or drops
	// the temp table.
	WriteCleanupTempTableSQL(w io.Writer, table field.Table) error

	// BuildSelectQueryForSequenceObject returns the query reading the next
	// value of a sequence object. Platforms without sequence objects return
	// a nil query and no error.
	BuildSelectQueryForSequenceObject(qualifiedName string, size int) (*ValueReadQuery, error)

	SupportsSequenceObjects() bool
	IsFractionalTimeSupported() bool
	IsAlterSequenceObjectSupported() bool
	DropDatabaseSchemaString(schema string) string
	IsMySQL() bool
	IsMariaDB() bool
}

// ValueReadQuery is a query returning a single value.
type ValueReadQuery struct {
	SQL  string
	Args []any
}

func (q *ValueReadQuery) String() string {
	return q.SQL
}

var factories = map[string]func() Platform{
	"database": func() Platform { return NewDatabasePlatform() },
	"mysql":    func() Platform { return NewMySQLPlatform() },
	"mariadb":  func() Platform { return NewMariaDBPlatform() },
}

// ForName returns the platform registered under name, ignoring case.
func ForName(name string) (Platform, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q: %w (known: %s)", name, ErrUnknownPlatform, strings.Join(Names(), ", "))
	}

	return f(), nil
}

// Names returns the registered platform names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
