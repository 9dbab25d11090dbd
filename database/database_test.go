package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taslite/taslite/shred"
	"github.com/taslite/taslite/tasl"
)

func TestNanoScenario(t *testing.T) {
	schema := tasl.NewSchema()
	schema.AddClass("http://example.com/foo", tasl.Literal(tasl.Boolean))

	db, err := Create("", schema)
	require.NoError(t, err)
	defer db.Close()

	vals := []string{"true", "false", "true"}
	for i, lex := range vals {
		require.NoError(t, db.Set("http://example.com/foo", uint64(i), tasl.ValueLiteral(lex)))
	}

	count, err := db.Count("http://example.com/foo")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	for i := uint64(0); i < 3; i++ {
		has, err := db.Has("http://example.com/foo", i)
		require.NoError(t, err)
		assert.True(t, has)
	}
	has, err := db.Has("http://example.com/foo", 3)
	require.NoError(t, err)
	assert.False(t, has)

	entries, err := db.Entries("http://example.com/foo")
	require.NoError(t, err)
	var got []Entry
	for e, err := range entries {
		require.NoError(t, err)
		got = append(got, e)
	}
	require.Len(t, got, 3)
	for i, e := range got {
		assert.Equal(t, uint64(i), e.ID)
		assert.Equal(t, vals[i], e.Value.Literal())
	}
}

func microSchema() *tasl.Schema {
	s := tasl.NewSchema()
	s.AddClass("a", tasl.Product([]tasl.Field{
		{Key: "n", Type: tasl.Literal(tasl.UnsignedByte)},
		{Key: "flag", Type: tasl.Literal(tasl.Boolean)},
	}))
	s.AddClass("b", tasl.Coproduct([]tasl.Field{
		{Key: "bytes", Type: tasl.Literal(tasl.HexBinary)},
		{Key: "unit", Type: tasl.Literal(tasl.Boolean)},
		{Key: "uri", Type: tasl.URI()},
	}))
	return s
}

func TestMicroHasAndCount(t *testing.T) {
	schema := microSchema()
	db, err := Create("", schema)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Set("a", 0, tasl.ValueProduct([]tasl.Component{
		{Key: "n", Value: tasl.ValueLiteral("7")},
		{Key: "flag", Value: tasl.ValueLiteral("true")},
	})))

	bValues := []*tasl.Value{
		tasl.ValueCoproduct("bytes", tasl.ValueLiteral("ab")),
		tasl.ValueCoproduct("unit", tasl.ValueLiteral("false")),
		tasl.ValueCoproduct("uri", tasl.ValueURI("http://example.com")),
		tasl.ValueCoproduct("bytes", tasl.ValueLiteral("cd")),
	}
	for i, v := range bValues {
		require.NoError(t, db.Set("b", uint64(i), v))
	}

	for _, tc := range []struct {
		key string
		id  uint64
		ok  bool
	}{
		{"a", 0, true}, {"a", 1, false}, {"a", 3, false},
		{"b", 0, true}, {"b", 1, true}, {"b", 2, true}, {"b", 3, true}, {"b", 4, false},
	} {
		has, err := db.Has(tc.key, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.ok, has, "%s/%d", tc.key, tc.id)
	}

	countA, err := db.Count("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), countA)
	countB, err := db.Count("b")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), countB)
}

func TestCrossReferencedMerge(t *testing.T) {
	schema := tasl.NewSchema()
	schema.AddClass("person", tasl.Product([]tasl.Field{
		{Key: "name", Type: tasl.Literal(tasl.String)},
		{Key: "favoriteBook", Type: tasl.Reference("book")},
	}))
	schema.AddClass("book", tasl.Product([]tasl.Field{
		{Key: "title", Type: tasl.Literal(tasl.String)},
		{Key: "author", Type: tasl.Reference("person")},
	}))

	db, err := Create("", schema)
	require.NoError(t, err)
	defer db.Close()

	person := tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Ada")},
		{Key: "favoriteBook", Value: tasl.ValueReference(0)},
	})
	book := tasl.ValueProduct([]tasl.Component{
		{Key: "title", Value: tasl.ValueLiteral("Notes")},
		{Key: "author", Value: tasl.ValueReference(0)},
	})

	err = db.Merge(map[string][]shred.Element{
		"person": {{ID: 0, Value: person}},
		"book":   {{ID: 0, Value: book}},
	})
	require.NoError(t, err)

	has, err := db.Has("person", 0)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = db.Has("book", 0)
	require.NoError(t, err)
	assert.True(t, has)

	// Setting only one side (the book referenced doesn't exist) must
	// fail with a foreign-key error, and leave no partial row behind.
	orphan := tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Grace")},
		{Key: "favoriteBook", Value: tasl.ValueReference(99)},
	})
	err = db.Set("person", 1, orphan)
	require.Error(t, err)
	assert.IsType(t, &tasl.StorageErr{}, err)

	has, err = db.Has("person", 1)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSchemaPersistence(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/db.sqlite"
	schema := microSchema()

	db, err := Create(path, schema)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := Open(path, false)
	require.NoError(t, err)
	defer reopened.Close()
	assert.True(t, schema.Equal(reopened.Schema()))
}

func TestPushMonotonicity(t *testing.T) {
	schema := tasl.NewSchema()
	schema.AddClass("widget", tasl.Literal(tasl.String))
	db, err := Create("", schema)
	require.NoError(t, err)
	defer db.Close()

	var prev uint64
	for i := 0; i < 5; i++ {
		id, err := db.Push("widget", tasl.ValueLiteral("x"))
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, id, prev)
		}
		prev = id
	}
}

func TestGetUnknownElementIsLookupErr(t *testing.T) {
	schema := tasl.NewSchema()
	schema.AddClass("widget", tasl.Literal(tasl.String))
	db, err := Create("", schema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Get("widget", 42)
	require.Error(t, err)
	assert.IsType(t, &tasl.LookupErr{}, err)
}

func TestUnknownClassIsLookupErr(t *testing.T) {
	schema := tasl.NewSchema()
	schema.AddClass("widget", tasl.Literal(tasl.String))
	db, err := Create("", schema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Count("nope")
	require.Error(t, err)
	assert.IsType(t, &tasl.LookupErr{}, err)
}

func TestReadOnlyHandleRejectsWrites(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/db.sqlite"
	schema := tasl.NewSchema()
	schema.AddClass("widget", tasl.Literal(tasl.String))
	db, err := Create(path, schema)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ro, err := Open(path, true)
	require.NoError(t, err)
	defer ro.Close()

	err = ro.Set("widget", 0, tasl.ValueLiteral("x"))
	require.Error(t, err)
}
