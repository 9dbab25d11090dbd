package shred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taslite/taslite/compiler"
	"github.com/taslite/taslite/tasl"
)

func personType() *tasl.Type {
	return tasl.Product([]tasl.Field{
		{Key: "name", Type: tasl.Literal(tasl.String)},
		{Key: "age", Type: tasl.Literal(tasl.UnsignedByte)},
		{Key: "contact", Type: tasl.Coproduct([]tasl.Field{
			{Key: "email", Type: tasl.Literal(tasl.String)},
			{Key: "phone", Type: tasl.Literal(tasl.String)},
		})},
	})
}

func TestShredReassembleRoundTrip(t *testing.T) {
	typ := personType()
	v := tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Ada")},
		{Key: "age", Value: tasl.ValueLiteral("36")},
		{Key: "contact", Value: tasl.ValueCoproduct("email", tasl.ValueLiteral("ada@example.org"))},
	})

	row, err := Shred(typ, v)
	require.NoError(t, err)
	require.Len(t, row, compiler.Width(typ))

	// The non-selected "phone" arm's cell stays nil.
	assert.Nil(t, row[4])

	got, err := Reassemble(typ, row)
	require.NoError(t, err)
	assert.True(t, tasl.Conforms(typ, got))
	assert.Equal(t, "Ada", mustComponent(t, got, "name").Literal())
	contact := mustComponent(t, got, "contact")
	assert.Equal(t, "email", contact.OptionKey())
	assert.Equal(t, "ada@example.org", contact.Option().Literal())
}

func TestShredSelectsOtherCoproductArm(t *testing.T) {
	typ := personType()
	v := tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Grace")},
		{Key: "age", Value: tasl.ValueLiteral("79")},
		{Key: "contact", Value: tasl.ValueCoproduct("phone", tasl.ValueLiteral("555-0100"))},
	})

	row, err := Shred(typ, v)
	require.NoError(t, err)
	// email's cell (position 3) is nil; phone's cell (position 4) is set.
	assert.Nil(t, row[3])
	assert.Equal(t, "555-0100", row[4])

	got, err := Reassemble(typ, row)
	require.NoError(t, err)
	contact := mustComponent(t, got, "contact")
	assert.Equal(t, "phone", contact.OptionKey())
}

func TestShredRejectsNonConformingValue(t *testing.T) {
	typ := personType()
	_, err := Shred(typ, tasl.ValueURI("not a product"))
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestShredIntegerRangeErr(t *testing.T) {
	typ := tasl.Literal(tasl.UnsignedByte)
	_, err := Shred(typ, tasl.ValueLiteral("256"))
	require.Error(t, err)
	assert.IsType(t, &tasl.RangeErr{}, err)
}

func TestShredReferenceCell(t *testing.T) {
	typ := tasl.Reference("person")
	row, err := Shred(typ, tasl.ValueReference(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), row[0])

	got, err := Reassemble(typ, row)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.Reference())
}

func mustComponent(t *testing.T, v *tasl.Value, key string) *tasl.Value {
	t.Helper()
	c, ok := v.Component(key)
	require.True(t, ok, "missing component %q", key)
	return c
}
