package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taslite/taslite/tasl"
)

// fakeSource is a minimal Dereferencer backed by an in-memory map, used
// so evaluator tests don't need a real database handle.
type fakeSource struct {
	elements map[string]map[uint64]*tasl.Value
}

func (f *fakeSource) Get(className string, id uint64) (*tasl.Value, error) {
	els, ok := f.elements[className]
	if !ok {
		return nil, tasl.NewLookupErr("unknown class %q", className)
	}
	v, ok := els[id]
	if !ok {
		return nil, tasl.NewLookupErr("no element in %s with id %d", className, id)
	}
	return v, nil
}

func TestEvalConstants(t *testing.T) {
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})

	v, err := ev.Eval(tasl.ExprURI("http://example.com"), tasl.URI(), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", v.URI())

	v, err = ev.Eval(tasl.ExprLiteral("42"), tasl.Literal(tasl.Int), nil)
	require.NoError(t, err)
	assert.Equal(t, "42", v.Literal())

	_, err = ev.Eval(tasl.ExprURI("x"), tasl.Literal(tasl.Int), nil)
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestEvalProductMissingComponentIsTypeErr(t *testing.T) {
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})
	target := tasl.Product([]tasl.Field{
		{Key: "a", Type: tasl.Literal(tasl.Int)},
		{Key: "b", Type: tasl.Literal(tasl.Boolean)},
	})
	expr := tasl.ExprProduct([]tasl.ExprField{
		{Key: "a", Value: tasl.ExprLiteral("1")},
	})
	_, err := ev.Eval(expr, target, nil)
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestEvalCoproductUnknownOption(t *testing.T) {
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})
	target := tasl.Coproduct([]tasl.Field{
		{Key: "x", Type: tasl.Literal(tasl.Boolean)},
	})
	expr := tasl.ExprCoproduct("y", tasl.ExprLiteral("true"))
	_, err := ev.Eval(expr, target, nil)
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestEvalTermProjectionAndDereference(t *testing.T) {
	personType := tasl.Product([]tasl.Field{
		{Key: "name", Type: tasl.Literal(tasl.String)},
		{Key: "bestFriend", Type: tasl.Reference("person")},
	})
	schema := tasl.NewSchema()
	schema.AddClass("person", personType)

	ada := tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Ada")},
		{Key: "bestFriend", Value: tasl.ValueReference(1)},
	})
	grace := tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Grace")},
		{Key: "bestFriend", Value: tasl.ValueReference(0)},
	})
	source := &fakeSource{elements: map[string]map[uint64]*tasl.Value{
		"person": {0: ada, 1: grace},
	}}
	ev := NewEvaluator(schema, source)

	// term(p, [projection(bestFriend), dereference(person), projection(name)])
	// over p=ada should yield "Grace" (ada's best friend's name).
	env := Env{"p": {Type: personType, Value: ada}}
	expr := tasl.ExprTerm("p", []tasl.PathSegment{
		tasl.Projection("bestFriend"),
		tasl.Dereference("person"),
		tasl.Projection("name"),
	})
	v, err := ev.Eval(expr, tasl.Literal(tasl.String), env)
	require.NoError(t, err)
	assert.Equal(t, "Grace", v.Literal())
}

func TestEvalTermUnknownProjectionKey(t *testing.T) {
	personType := tasl.Product([]tasl.Field{
		{Key: "name", Type: tasl.Literal(tasl.String)},
	})
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})
	env := Env{"p": {Type: personType, Value: tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Ada")},
	})}}
	expr := tasl.ExprTerm("p", []tasl.PathSegment{tasl.Projection("age")})
	_, err := ev.Eval(expr, tasl.Literal(tasl.String), env)
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestEvalMatch(t *testing.T) {
	coType := tasl.Coproduct([]tasl.Field{
		{Key: "num", Type: tasl.Literal(tasl.Int)},
		{Key: "str", Type: tasl.Literal(tasl.String)},
	})
	env := Env{"c": {Type: coType, Value: tasl.ValueCoproduct("num", tasl.ValueLiteral("7"))}}
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})

	expr := tasl.ExprMatch("c", nil, map[string]tasl.MatchCase{
		"num": {ID: "n", Value: tasl.ExprLiteral("matched-num")},
		"str": {ID: "s", Value: tasl.ExprLiteral("matched-str")},
	})
	v, err := ev.Eval(expr, tasl.Literal(tasl.String), env)
	require.NoError(t, err)
	assert.Equal(t, "matched-num", v.Literal())
}

func TestEvalMatchMissingCaseIsTypeErr(t *testing.T) {
	coType := tasl.Coproduct([]tasl.Field{
		{Key: "num", Type: tasl.Literal(tasl.Int)},
		{Key: "str", Type: tasl.Literal(tasl.String)},
	})
	env := Env{"c": {Type: coType, Value: tasl.ValueCoproduct("str", tasl.ValueLiteral("hi"))}}
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})

	expr := tasl.ExprMatch("c", nil, map[string]tasl.MatchCase{
		"num": {ID: "n", Value: tasl.ExprLiteral("matched-num")},
	})
	_, err := ev.Eval(expr, tasl.Literal(tasl.String), env)
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestProjectLiteralDatatypeMismatch(t *testing.T) {
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})
	env := Env{"x": {Type: tasl.Literal(tasl.Int), Value: tasl.ValueLiteral("1")}}
	expr := tasl.ExprTerm("x", nil)
	_, err := ev.Eval(expr, tasl.Literal(tasl.Boolean), env)
	require.Error(t, err)
	assert.IsType(t, &tasl.TypeErr{}, err)
}

func TestProjectProductPointwiseDropsExtraComponents(t *testing.T) {
	ev := NewEvaluator(tasl.NewSchema(), &fakeSource{})
	fromType := tasl.Product([]tasl.Field{
		{Key: "name", Type: tasl.Literal(tasl.String)},
		{Key: "age", Type: tasl.Literal(tasl.Int)},
	})
	toType := tasl.Product([]tasl.Field{
		{Key: "name", Type: tasl.Literal(tasl.String)},
	})
	env := Env{"x": {Type: fromType, Value: tasl.ValueProduct([]tasl.Component{
		{Key: "name", Value: tasl.ValueLiteral("Ada")},
		{Key: "age", Value: tasl.ValueLiteral("36")},
	})}}
	v, err := ev.Eval(tasl.ExprTerm("x", nil), toType, env)
	require.NoError(t, err)
	nameVal, ok := v.Component("name")
	require.True(t, ok)
	assert.Equal(t, "Ada", nameVal.Literal())
	_, ok = v.Component("age")
	assert.False(t, ok)
}
