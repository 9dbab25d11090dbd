package shred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taslite/taslite/codec"
	"github.com/taslite/taslite/tasl"
)

func encodeToBytes(t *testing.T, typ *tasl.Type, v *tasl.Value) []byte {
	t.Helper()
	sink := &codec.SliceSink{}
	enc, err := codec.NewEncoder(sink, codec.MinChunkSize)
	require.NoError(t, err)
	require.NoError(t, EncodeValue(enc, typ, v))
	require.NoError(t, enc.Close())
	return sink.Bytes()
}

func decodeFromBytes(t *testing.T, typ *tasl.Type, b []byte, chunkSize int) *tasl.Value {
	t.Helper()
	src := codec.NewSliceSource(splitBytes(b, chunkSize))
	dec := codec.NewDecoder(src)
	v, err := DecodeValue(dec, typ)
	require.NoError(t, err)
	return v
}

func splitBytes(b []byte, size int) [][]byte {
	var chunks [][]byte
	for len(b) > 0 {
		n := size
		if n > len(b) {
			n = len(b)
		}
		chunks = append(chunks, b[:n])
		b = b[n:]
	}
	return chunks
}

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	typ := personType()
	v := tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Ada")},
		{Key: "age", Value: tasl.ValueLiteral("36")},
		{Key: "contact", Value: tasl.ValueCoproduct("phone", tasl.ValueLiteral("555-0100"))},
	})
	b := encodeToBytes(t, typ, v)

	// Chunking invariance (spec.md §8 property 3): decoding must not
	// depend on where chunk boundaries happen to fall.
	for _, size := range []int{1, 3, codec.MinChunkSize, 4096} {
		got := decodeFromBytes(t, typ, b, size)
		assert.True(t, tasl.Conforms(typ, got))
		assert.Equal(t, "Ada", mustComponent(t, got, "name").Literal())
	}
}

func TestEncodeDecodeFixedWidthLiterals(t *testing.T) {
	cases := []struct {
		dt  tasl.Datatype
		lex string
	}{
		{tasl.Boolean, "true"},
		{tasl.Byte, "-12"},
		{tasl.UnsignedLong, "9223372036854775807"},
		{tasl.Float, "3.5"},
		{tasl.Double, "2.718281828"},
	}
	for _, c := range cases {
		typ := tasl.Literal(c.dt)
		v := tasl.ValueLiteral(c.lex)
		b := encodeToBytes(t, typ, v)
		got := decodeFromBytes(t, typ, b, 2)
		assert.Equal(t, c.lex, got.Literal(), "datatype %s", c.dt)
	}
}

func TestEncodeDecodeHexBinary(t *testing.T) {
	typ := tasl.Literal(tasl.HexBinary)
	v := tasl.ValueLiteral("deadbeef")
	b := encodeToBytes(t, typ, v)
	got := decodeFromBytes(t, typ, b, 3)
	assert.Equal(t, "deadbeef", got.Literal())
}

func TestEncodeDecodeRDFJSON(t *testing.T) {
	typ := tasl.Literal(tasl.RDFJSON)
	v := tasl.ValueLiteral(`{"a":1,"b":[true,null,"x"]}`)
	b := encodeToBytes(t, typ, v)
	got := decodeFromBytes(t, typ, b, 5)
	assert.JSONEq(t, `{"a":1,"b":[true,null,"x"]}`, got.Literal())
}

func TestEncodeDecodeReference(t *testing.T) {
	typ := tasl.Reference("widget")
	v := tasl.ValueReference(7)
	b := encodeToBytes(t, typ, v)
	got := decodeFromBytes(t, typ, b, 1)
	assert.Equal(t, uint64(7), got.Reference())
}

func TestInstanceRoundTrip(t *testing.T) {
	schema := tasl.NewSchema()
	require.True(t, schema.AddClass("widget", tasl.Literal(tasl.String)))

	widgets := []Element{
		{ID: 1, Value: tasl.ValueLiteral("first")},
		{ID: 3, Value: tasl.ValueLiteral("second")},
	}

	sink := &codec.SliceSink{}
	enc, err := codec.NewEncoder(sink, codec.MinChunkSize)
	require.NoError(t, err)
	require.NoError(t, WriteInstance(enc, schema, func(classIndex int) ([]Element, error) {
		return widgets, nil
	}))
	require.NoError(t, enc.Close())

	dec := codec.NewDecoder(codec.NewSliceSource(splitBytes(sink.Bytes(), 4)))
	var got []Element
	err = ReadInstance(dec, schema, func(classIndex int, els []Element) error {
		got = els
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].ID)
	assert.Equal(t, uint64(3), got[1].ID)
	assert.Equal(t, "second", got[1].Value.Literal())
}

// TestInstanceEncodingMatchesSpecFormula pins WriteInstance's byte output
// against the literal spec.md §4.3 formula (first id == first idDelta,
// each subsequent id == previous + 1 + idDelta) rather than just
// round-tripping through ReadInstance, so an encode/decode pair that
// shared the same wrong formula on both sides could not pass silently.
func TestInstanceEncodingMatchesSpecFormula(t *testing.T) {
	schema := tasl.NewSchema()
	require.True(t, schema.AddClass("flag", tasl.Literal(tasl.Boolean)))

	elements := []Element{
		{ID: 0, Value: tasl.ValueLiteral("true")},
		{ID: 1, Value: tasl.ValueLiteral("false")},
		{ID: 2, Value: tasl.ValueLiteral("true")},
	}

	sink := &codec.SliceSink{}
	enc, err := codec.NewEncoder(sink, codec.MinChunkSize)
	require.NoError(t, err)
	require.NoError(t, WriteInstance(enc, schema, func(classIndex int) ([]Element, error) {
		return elements, nil
	}))
	require.NoError(t, enc.Close())

	// Consecutive ids 0,1,2 encode a zero delta after the first element:
	// version(1), count(3), then (delta,value) per element with a
	// single-byte boolean literal for value.
	want := []byte{
		1,          // version
		3,          // count
		0, 1,       // id 0: delta == id, value true
		0, 0,       // id 1: delta == 1-0-1 == 0, value false
		0, 1,       // id 2: delta == 2-1-1 == 0, value true
	}
	assert.Equal(t, want, sink.Bytes())
}
