package platform

import (
	"fmt"
	"io"
	"strings"

	"github.com/doug-martin/goqu/v9"
	// registers the "mysql" dialect
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"

	"oxmapper/field"
)

// MySQLPlatform updates the original table with a multi-table UPDATE joined
// to the temp table, and drops the temp table on cleanup.
type MySQLPlatform struct {
	*DatabasePlatform
}

// NewMySQLPlatform creates the MySQL platform.
func NewMySQLPlatform() *MySQLPlatform {
	return &MySQLPlatform{DatabasePlatform: &DatabasePlatform{
		name:            "mysql",
		dialect:         goqu.Dialect("mysql"),
		quote:           "`",
		createTempTable: "CREATE TEMPORARY TABLE IF NOT EXISTS",
	}}
}

func (p *MySQLPlatform) WriteUpdateOriginalFromTempTableSQL(
	w io.Writer,
	table field.Table,
	primaryKeyFields, assignedFields []field.DatabaseField,
) error {
	if err := checkUpdate(primaryKeyFields, assignedFields); err != nil {
		return err
	}

	orig := tableIdentifier(table)
	temp := tableIdentifier(p.TempTableFor(table))

	set := goqu.Record{}
	for _, f := range assignedFields {
		set[table.QualifiedName()+"."+f.Name] = temp.Col(f.Name)
	}

	sql, _, err := p.dialect.Update(orig).
		From(temp).
		Set(set).
		Where(autoJoin(orig, temp, primaryKeyFields)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build update from temp table: %w", err)
	}

	return write(w, sql)
}

func (p *MySQLPlatform) WriteCleanupTempTableSQL(w io.Writer, table field.Table) error {
	return write(w, "DROP TEMPORARY TABLE IF EXISTS "+p.quoteTable(p.TempTableFor(table)))
}

func (p *MySQLPlatform) IsMySQL() bool {
	return true
}

// MariaDBPlatform is MySQL with sequence objects and fractional seconds.
type MariaDBPlatform struct {
	*MySQLPlatform
}

// NewMariaDBPlatform creates the MariaDB platform.
func NewMariaDBPlatform() *MariaDBPlatform {
	p := NewMySQLPlatform()
	p.name = "mariadb"

	return &MariaDBPlatform{MySQLPlatform: p}
}

// BuildSelectQueryForSequenceObject reads one value with nextval; size is
// the sequence increment and does not change the query.
func (p *MariaDBPlatform) BuildSelectQueryForSequenceObject(qualifiedName string, _ int) (*ValueReadQuery, error) {
	if strings.TrimSpace(qualifiedName) == "" {
		return nil, ErrNoSequenceName
	}

	sql, args, err := p.dialect.Select(goqu.Func("nextval", goqu.I(qualifiedName))).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build sequence query for %s: %w", qualifiedName, err)
	}

	return &ValueReadQuery{SQL: sql, Args: args}, nil
}

func (p *MariaDBPlatform) SupportsSequenceObjects() bool {
	return true
}

func (p *MariaDBPlatform) IsFractionalTimeSupported() bool {
	return true
}

func (p *MariaDBPlatform) IsAlterSequenceObjectSupported() bool {
	return true
}

func (p *MariaDBPlatform) DropDatabaseSchemaString(schema string) string {
	return "DROP SCHEMA IF EXISTS " + schema
}

func (p *MariaDBPlatform) IsMySQL() bool {
	return false
}

func (p *MariaDBPlatform) IsMariaDB() bool {
	return true
}
