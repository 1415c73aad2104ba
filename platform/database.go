package platform

import (
	"fmt"
	"io"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"oxmapper/field"
)

// DatabasePlatform is the generic ANSI platform. The original table is
// updated with one correlated sub-select per assigned column, limited to
// rows that have a temp-table counterpart.
type DatabasePlatform struct {
	name    string
	dialect goqu.DialectWrapper
	// quote delimits identifiers in DDL.
	quote           string
	createTempTable string
}

// NewDatabasePlatform creates the generic platform.
func NewDatabasePlatform() *DatabasePlatform {
	return &DatabasePlatform{
		name:            "database",
		dialect:         goqu.Dialect("default"),
		quote:           `"`,
		createTempTable: "CREATE TEMPORARY TABLE",
	}
}

func (p *DatabasePlatform) Name() string {
	return p.name
}

func (p *DatabasePlatform) TempTableFor(t field.Table) field.Table {
	return field.Table{Name: TempTablePrefix + t.Name, Schema: t.Schema}
}

func (p *DatabasePlatform) WriteCreateTempTableSQL(
	w io.Writer,
	table field.Table,
	fields, primaryKeyFields []field.DatabaseField,
) error {
	if len(fields) == 0 {
		return ErrNoFields
	}

	var b strings.Builder

	b.WriteString(p.createTempTable)
	b.WriteString(" ")
	b.WriteString(p.quoteTable(p.TempTableFor(table)))
	b.WriteString(" (")

	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.quoteIdentifier(f.Name))
		b.WriteString(" ")
		b.WriteString(f.TypeDefinition())

		if !f.Nullable {
			b.WriteString(" NOT NULL")
		}
	}

	if len(primaryKeyFields) > 0 {
		b.WriteString(", PRIMARY KEY (")

		for i, f := range primaryKeyFields {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(p.quoteIdentifier(f.Name))
		}

		b.WriteString(")")
	}

	b.WriteString(")")

	return write(w, b.String())
}

func (p *DatabasePlatform) WriteInsertIntoTempTableSQL(w io.Writer, table field.Table, fields []field.DatabaseField) error {
	if len(fields) == 0 {
		return ErrNoFields
	}

	cols := make([]any, len(fields))
	vals := make(goqu.Vals, len(fields))

	for i, f := range fields {
		cols[i] = f.Name
		vals[i] = goqu.L("?")
	}

	sql, _, err := p.dialect.Insert(tableIdentifier(p.TempTableFor(table))).Cols(cols...).Vals(vals).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build temp table insert: %w", err)
	}

	return write(w, sql)
}

func (p *DatabasePlatform) WriteUpdateOriginalFromTempTableSQL(
	w io.Writer,
	table field.Table,
	primaryKeyFields, assignedFields []field.DatabaseField,
) error {
	if err := checkUpdate(primaryKeyFields, assignedFields); err != nil {
		return err
	}

	temp := tableIdentifier(p.TempTableFor(table))
	join := autoJoin(tableIdentifier(table), temp, primaryKeyFields)

	set := goqu.Record{}
	for _, f := range assignedFields {
		set[f.Name] = p.dialect.From(temp).Select(goqu.C(f.Name)).Where(join)
	}

	exists := p.dialect.From(temp).Select(goqu.C(primaryKeyFields[0].Name)).Where(join)

	sql, _, err := p.dialect.Update(tableIdentifier(table)).
		Set(set).
		Where(goqu.L("EXISTS ?", exists)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build update from temp table: %w", err)
	}

	return write(w, sql)
}

func (p *DatabasePlatform) WriteCleanupTempTableSQL(w io.Writer, table field.Table) error {
	sql, _, err := p.dialect.Delete(tableIdentifier(p.TempTableFor(table))).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build temp table cleanup: %w", err)
	}

	return write(w, sql)
}

func (p *DatabasePlatform) BuildSelectQueryForSequenceObject(string, int) (*ValueReadQuery, error) {
	return nil, nil
}

func (p *DatabasePlatform) SupportsSequenceObjects() bool {
	return false
}

func (p *DatabasePlatform) IsFractionalTimeSupported() bool {
	return false
}

func (p *DatabasePlatform) IsAlterSequenceObjectSupported() bool {
	return false
}

func (p *DatabasePlatform) DropDatabaseSchemaString(schema string) string {
	return "DROP SCHEMA " + schema
}

func (p *DatabasePlatform) IsMySQL() bool {
	return false
}

func (p *DatabasePlatform) IsMariaDB() bool {
	return false
}

func (p *DatabasePlatform) quoteIdentifier(name string) string {
	return p.quote + strings.ReplaceAll(name, p.quote, p.quote+p.quote) + p.quote
}

func (p *DatabasePlatform) quoteTable(t field.Table) string {
	parts := t.Identifier()
	for i, s := range parts {
		parts[i] = p.quoteIdentifier(s)
	}

	return strings.Join(parts, ".")
}

func tableIdentifier(t field.Table) exp.IdentifierExpression {
	if t.Schema != "" {
		return goqu.S(t.Schema).Table(t.Name)
	}

	return goqu.T(t.Name)
}

// autoJoin matches the rows of two tables on their primary key columns.
func autoJoin(table, temp exp.IdentifierExpression, primaryKeyFields []field.DatabaseField) exp.ExpressionList {
	conds := make([]exp.Expression, len(primaryKeyFields))
	for i, f := range primaryKeyFields {
		conds[i] = temp.Col(f.Name).Eq(table.Col(f.Name))
	}

	return goqu.And(conds...)
}

func checkUpdate(primaryKeyFields, assignedFields []field.DatabaseField) error {
	if len(primaryKeyFields) == 0 {
		return ErrNoPrimaryKey
	}

	if len(assignedFields) == 0 {
		return fmt.Errorf("no assigned fields: %w", ErrNoFields)
	}

	return nil
}

func write(w io.Writer, sql string) error {
	if _, err := io.WriteString(w, sql); err != nil {
		return fmt.Errorf("failed to write SQL: %w", err)
	}

	return nil
}
