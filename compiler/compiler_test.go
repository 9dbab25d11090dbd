package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taslite/taslite/tasl"
)

func personSchema() *tasl.Schema {
	s := tasl.NewSchema()
	s.AddClass("person", tasl.Product([]tasl.Field{
		{Key: "name", Type: tasl.Literal(tasl.String)},
		{Key: "contact", Type: tasl.Coproduct([]tasl.Field{
			{Key: "email", Type: tasl.Literal(tasl.String)},
			{Key: "phone", Type: tasl.Literal(tasl.String)},
		})},
	}))
	return s
}

func TestCompileColumnOrderAndNullability(t *testing.T) {
	layouts, err := Compile(personSchema())
	require.NoError(t, err)
	require.Len(t, layouts, 1)
	l := layouts[0]

	require.Len(t, l.Columns, 4) // name, contact tag, email, phone
	assert.Equal(t, "e_0", l.Columns[0].Name)
	assert.False(t, l.Columns[0].Nullable)

	assert.Equal(t, "e_1", l.Columns[1].Name)
	assert.True(t, l.Columns[1].IsTag)
	assert.False(t, l.Columns[1].Nullable) // the tag itself is always present

	assert.Equal(t, "e_1_0", l.Columns[2].Name)
	assert.True(t, l.Columns[2].Nullable)
	assert.Equal(t, "e_1_1", l.Columns[3].Name)
	assert.True(t, l.Columns[3].Nullable)
}

func TestWidthMatchesColumnCount(t *testing.T) {
	schema := personSchema()
	layouts, err := Compile(schema)
	require.NoError(t, err)
	c, _ := schema.Class("person")
	assert.Equal(t, len(layouts[0].Columns), Width(c.Type))
}

func TestCompileForeignKey(t *testing.T) {
	s := tasl.NewSchema()
	s.AddClass("widget", tasl.Literal(tasl.String))
	s.AddClass("owner", tasl.Reference("widget"))
	layouts, err := Compile(s)
	require.NoError(t, err)

	owner := layouts[1]
	require.Len(t, owner.Columns, 1)
	require.NotNil(t, owner.Columns[0].ForeignKey)
	assert.Equal(t, "c0", owner.Columns[0].ForeignKey.Table)
	assert.Equal(t, "widget", owner.Columns[0].ForeignKey.Class)
}

func TestCompileUnknownReferenceIsTypeErr(t *testing.T) {
	s := tasl.NewSchema()
	s.AddClass("owner", tasl.Reference("nope"))
	_, err := Compile(s)
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestCreateTableDDL(t *testing.T) {
	layouts, err := Compile(personSchema())
	require.NoError(t, err)
	ddl := CreateTableDDL(layouts[0])
	assert.True(t, strings.HasPrefix(ddl, `CREATE TABLE "c0" (`))
	assert.Contains(t, ddl, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, ddl, `"e_0" TEXT NOT NULL`)
	assert.Contains(t, ddl, `"e_1_0" TEXT`)
	assert.NotContains(t, ddl, `"e_1_0" TEXT NOT NULL`)
}
