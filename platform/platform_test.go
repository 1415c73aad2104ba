package platform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oxmapper/field"
)

var (
	orders   = field.Table{Name: "ORDERS"}
	orderID  = field.Column("ID", "BIGINT")
	status   = field.Column("STATUS", "VARCHAR").WithLength(20)
	modified = field.DatabaseField{Name: "MODIFIED", SQLType: "TIMESTAMP", Nullable: true}
)

func render(t *testing.T, fn func(*strings.Builder) error) string {
	t.Helper()

	var b strings.Builder
	require.NoError(t, fn(&b))

	return b.String()
}

func TestForName(t *testing.T) {
	for _, name := range []string{"database", "MySQL", " mariadb "} {
		p, err := ForName(name)
		require.NoError(t, err, name)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(name)), p.Name())
	}

	_, err := ForName("oracle")
	require.ErrorIs(t, err, ErrUnknownPlatform)
	assert.Contains(t, err.Error(), "database, mariadb, mysql")
}

func TestCapabilities(t *testing.T) {
	tests := []struct {
		platform   Platform
		sequences  bool
		fractional bool
		alterSeq   bool
		mysql      bool
		mariadb    bool
		dropSchema string
	}{
		{platform: NewDatabasePlatform(), dropSchema: "DROP SCHEMA s"},
		{platform: NewMySQLPlatform(), mysql: true, dropSchema: "DROP SCHEMA s"},
		{
			platform:   NewMariaDBPlatform(),
			sequences:  true,
			fractional: true,
			alterSeq:   true,
			mariadb:    true,
			dropSchema: "DROP SCHEMA IF EXISTS s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.platform.Name(), func(t *testing.T) {
			p := tt.platform
			assert.Equal(t, tt.sequences, p.SupportsSequenceObjects())
			assert.Equal(t, tt.fractional, p.IsFractionalTimeSupported())
			assert.Equal(t, tt.alterSeq, p.IsAlterSequenceObjectSupported())
			assert.Equal(t, tt.mysql, p.IsMySQL())
			assert.Equal(t, tt.mariadb, p.IsMariaDB())
			assert.Equal(t, tt.dropSchema, p.DropDatabaseSchemaString("s"))
		})
	}
}

func TestSequenceQuery(t *testing.T) {
	for _, p := range []Platform{NewDatabasePlatform(), NewMySQLPlatform()} {
		q, err := p.BuildSelectQueryForSequenceObject("SEQ", 50)
		require.NoError(t, err, p.Name())
		assert.Nil(t, q, p.Name())
	}

	q, err := NewMariaDBPlatform().BuildSelectQueryForSequenceObject("APP.ORDER_SEQ", 50)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "SELECT nextval(`APP`.`ORDER_SEQ`)", q.String())
	assert.Empty(t, q.Args)
}

func TestSequenceQuery_NoName(t *testing.T) {
	for _, name := range []string{"", "  "} {
		q, err := NewMariaDBPlatform().BuildSelectQueryForSequenceObject(name, 1)
		require.ErrorIs(t, err, ErrNoSequenceName)
		assert.Nil(t, q)
	}
}

func TestTempTableFor(t *testing.T) {
	assert.Equal(t, field.Table{Name: "TL_ORDERS", Schema: "APP"},
		NewDatabasePlatform().TempTableFor(field.Table{Name: "ORDERS", Schema: "APP"}))
}

func TestUpdateOriginalFromTempTable_Generic(t *testing.T) {
	p := NewDatabasePlatform()

	sql := render(t, func(b *strings.Builder) error {
		return p.WriteUpdateOriginalFromTempTableSQL(b, orders, []field.DatabaseField{orderID}, []field.DatabaseField{status, modified})
	})

	assert.True(t, strings.HasPrefix(sql, `UPDATE "ORDERS" SET `), sql)
	assert.Contains(t, sql, `"STATUS"=(SELECT "STATUS" FROM "TL_ORDERS" WHERE ("TL_ORDERS"."ID" = "ORDERS"."ID"))`)
	assert.Contains(t, sql, `"MODIFIED"=(SELECT "MODIFIED" FROM "TL_ORDERS"`)
	assert.Contains(t, sql, `WHERE EXISTS (SELECT "ID" FROM "TL_ORDERS" WHERE ("TL_ORDERS"."ID" = "ORDERS"."ID"))`)
}

func TestUpdateOriginalFromTempTable_MySQL(t *testing.T) {
	for _, p := range []Platform{NewMySQLPlatform(), NewMariaDBPlatform()} {
		sql := render(t, func(b *strings.Builder) error {
			return p.WriteUpdateOriginalFromTempTableSQL(b, orders, []field.DatabaseField{orderID}, []field.DatabaseField{status})
		})

		assert.True(t, strings.HasPrefix(sql, "UPDATE `ORDERS`,`TL_ORDERS` SET "), sql)
		assert.Contains(t, sql, "`ORDERS`.`STATUS`=`TL_ORDERS`.`STATUS`")
		assert.Contains(t, sql, "WHERE (`TL_ORDERS`.`ID` = `ORDERS`.`ID`)")
	}
}

func TestUpdateOriginalFromTempTable_Errors(t *testing.T) {
	for _, p := range []Platform{NewDatabasePlatform(), NewMySQLPlatform()} {
		var b strings.Builder

		err := p.WriteUpdateOriginalFromTempTableSQL(&b, orders, nil, []field.DatabaseField{status})
		require.ErrorIs(t, err, ErrNoPrimaryKey)

		err = p.WriteUpdateOriginalFromTempTableSQL(&b, orders, []field.DatabaseField{orderID}, nil)
		require.ErrorIs(t, err, ErrNoFields)

		assert.Empty(t, b.String())
	}
}

func TestCreateTempTable(t *testing.T) {
	fields := []field.DatabaseField{orderID, status, modified}

	sql := render(t, func(b *strings.Builder) error {
		return NewDatabasePlatform().WriteCreateTempTableSQL(b, orders, fields, []field.DatabaseField{orderID})
	})
	assert.Equal(t,
		`CREATE TEMPORARY TABLE "TL_ORDERS" ("ID" BIGINT NOT NULL, "STATUS" VARCHAR(20) NOT NULL, "MODIFIED" TIMESTAMP, PRIMARY KEY ("ID"))`,
		sql)

	sql = render(t, func(b *strings.Builder) error {
		return NewMySQLPlatform().WriteCreateTempTableSQL(b, field.Table{Name: "ORDERS", Schema: "APP"}, fields[:1], nil)
	})
	assert.Equal(t, "CREATE TEMPORARY TABLE IF NOT EXISTS `APP`.`TL_ORDERS` (`ID` BIGINT NOT NULL)", sql)

	err := NewDatabasePlatform().WriteCreateTempTableSQL(&strings.Builder{}, orders, nil, nil)
	require.ErrorIs(t, err, ErrNoFields)
}

func TestInsertIntoTempTable(t *testing.T) {
	sql := render(t, func(b *strings.Builder) error {
		return NewDatabasePlatform().WriteInsertIntoTempTableSQL(b, orders, []field.DatabaseField{orderID, status})
	})
	assert.Equal(t, `INSERT INTO "TL_ORDERS" ("ID", "STATUS") VALUES (?, ?)`, sql)
}

func TestCleanupTempTable(t *testing.T) {
	sql := render(t, func(b *strings.Builder) error {
		return NewDatabasePlatform().WriteCleanupTempTableSQL(b, orders)
	})
	assert.Equal(t, `DELETE FROM "TL_ORDERS"`, sql)

	sql = render(t, func(b *strings.Builder) error {
		return NewMariaDBPlatform().WriteCleanupTempTableSQL(b, orders)
	})
	assert.Equal(t, "DROP TEMPORARY TABLE IF EXISTS `TL_ORDERS`", sql)
}
