package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	assert.Equal(t, "ORDERS", Table{Name: "ORDERS"}.QualifiedName())
	assert.Equal(t, "APP.ORDERS", Table{Name: "ORDERS", Schema: "APP"}.String())
	assert.Equal(t, []string{"APP", "ORDERS"}, Table{Name: "ORDERS", Schema: "APP"}.Identifier())
}

func TestDatabaseField(t *testing.T) {
	tests := []struct {
		field DatabaseField
		def   string
	}{
		{field: Column("ID", "bigint"), def: "BIGINT"},
		{field: Column("NAME", "varchar").WithLength(40), def: "VARCHAR(40)"},
		{field: Column("PRICE", "DECIMAL(10,2)").WithLength(8), def: "DECIMAL(10,2)"},
		{field: DatabaseField{Name: "note"}, def: "VARCHAR(255)"},
		{field: DatabaseField{Name: "note", Length: 12}, def: "VARCHAR(12)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.def, tt.field.TypeDefinition(), tt.field.Name)
	}

	f := DatabaseField{Name: "id", Table: "orders"}
	assert.Equal(t, "orders.id", f.QualifiedName())
	assert.Equal(t, "ORDERS.ID", f.Key())
	assert.Equal(t, []string{"id", "NAME"}, Names([]DatabaseField{f, Column("NAME", "")}))
}
