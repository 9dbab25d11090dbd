package tasl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleSchema() *Schema {
	s := NewSchema()
	s.AddClass("widget", Product([]Field{
		{Key: "label", Type: URI()},
		{Key: "size", Type: Coproduct([]Field{
			{Key: "small", Type: Literal(Boolean)},
			{Key: "large", Type: Literal(Long)},
		})},
	}))
	s.AddClass("owner", Reference("widget"))
	return s
}

func TestSchemaEncodeDecodeRoundTrip(t *testing.T) {
	s := exampleSchema()
	data := EncodeSchema(s)
	got, err := DecodeSchema(data)
	require.NoError(t, err)
	assert.True(t, s.Equal(got))
}

func TestSchemaEncodeIsDeterministic(t *testing.T) {
	a := EncodeSchema(exampleSchema())
	b := EncodeSchema(exampleSchema())
	assert.Equal(t, a, b)
}

func TestDecodeSchemaRejectsTrailingBytes(t *testing.T) {
	data := append(EncodeSchema(exampleSchema()), 0xff)
	_, err := DecodeSchema(data)
	require.Error(t, err)
	assert.IsType(t, &DecodeErr{}, err)
}

func TestDecodeSchemaRejectsTruncation(t *testing.T) {
	data := EncodeSchema(exampleSchema())
	_, err := DecodeSchema(data[:len(data)-1])
	require.Error(t, err)
}

func TestTypeEqual(t *testing.T) {
	a := exampleSchema()
	b := exampleSchema()
	ca, _ := a.Class("widget")
	cb, _ := b.Class("widget")
	assert.True(t, ca.Type.Equal(cb.Type))

	other := Literal(Boolean)
	assert.False(t, ca.Type.Equal(other))
}

func TestConforms(t *testing.T) {
	typ := Coproduct([]Field{
		{Key: "small", Type: Literal(Boolean)},
		{Key: "large", Type: Literal(Long)},
	})
	ok := ValueCoproduct("small", ValueLiteral("true"))
	assert.True(t, Conforms(typ, ok))

	wrongArm := ValueCoproduct("medium", ValueLiteral("true"))
	assert.False(t, Conforms(typ, wrongArm))
}

func TestSchemaAddClassRejectsDuplicateKey(t *testing.T) {
	s := NewSchema()
	require.True(t, s.AddClass("widget", URI()))
	assert.False(t, s.AddClass("widget", Literal(Boolean)))
}
