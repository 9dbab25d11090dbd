// Package mapping implements the Mapping Evaluator (spec.md §4.6): it
// evaluates a mapping rule's expression tree against an environment that
// binds identifiers to (type, value) pairs, following term paths by
// drilling into products and dereferencing references through a source
// database handle.
package mapping

import "github.com/taslite/taslite/tasl"

// Binding pairs a value with the type it was checked against, as carried
// through an environment entry or a term path's intermediate steps.
type Binding struct {
	Type  *tasl.Type
	Value *tasl.Value
}

// Env binds the free identifiers of an expression (there is normally
// exactly one live at a time: the rule's `id`, or a match case's bound
// identifier evaluated in an environment extended with it).
type Env map[string]Binding

// Dereferencer resolves a reference's target element, following
// `dereference(className)` path segments. database.DB's Get method
// satisfies this directly.
type Dereferencer interface {
	Get(className string, id uint64) (*tasl.Value, error)
}

// Evaluator evaluates mapping expressions against schema (used to look
// up a dereferenced class's algebraic type) and source (used to fetch
// the dereferenced element itself).
type Evaluator struct {
	schema *tasl.Schema
	source Dereferencer
}

func NewEvaluator(schema *tasl.Schema, source Dereferencer) *Evaluator {
	return &Evaluator{schema: schema, source: source}
}

// Eval evaluates expr under env, checking and casting the result to
// target (spec.md §4.6, "target type is always known from context").
func (ev *Evaluator) Eval(expr tasl.Expr, target *tasl.Type, env Env) (*tasl.Value, error) {
	switch expr.Kind() {
	case tasl.ExprKindURI:
		if target.Kind() != tasl.KindURI {
			return nil, tasl.NewTypeErr("uri(...) used where %s was expected", target.Kind())
		}
		return tasl.ValueURI(expr.Constant()), nil

	case tasl.ExprKindLiteral:
		if target.Kind() != tasl.KindLiteral {
			return nil, tasl.NewTypeErr("literal(...) used where %s was expected", target.Kind())
		}
		return tasl.ValueLiteral(expr.Constant()), nil

	case tasl.ExprKindProduct:
		if target.Kind() != tasl.KindProduct {
			return nil, tasl.NewTypeErr("product(...) used where %s was expected", target.Kind())
		}
		comps := make([]tasl.Component, 0, len(target.Components()))
		for _, f := range target.Components() {
			field, ok := findField(expr.ProductFields(), f.Key)
			if !ok {
				return nil, tasl.NewTypeErr("mapping product expression is missing component %q", f.Key)
			}
			v, err := ev.Eval(field.Value, f.Type, env)
			if err != nil {
				return nil, err
			}
			comps = append(comps, tasl.Component{Key: f.Key, Value: v})
		}
		return tasl.ValueProduct(comps), nil

	case tasl.ExprKindCoproduct:
		if target.Kind() != tasl.KindCoproduct {
			return nil, tasl.NewTypeErr("coproduct(...) used where %s was expected", target.Kind())
		}
		optType, ok := target.Option(expr.CoproductKey())
		if !ok {
			return nil, tasl.NewTypeErr("unknown coproduct option %q", expr.CoproductKey())
		}
		v, err := ev.Eval(expr.CoproductValue(), optType, env)
		if err != nil {
			return nil, err
		}
		return tasl.ValueCoproduct(expr.CoproductKey(), v), nil

	case tasl.ExprKindTerm:
		t, v, err := ev.resolveTerm(expr.TermID(), expr.TermPath(), env)
		if err != nil {
			return nil, err
		}
		return ev.project(t, target, v)

	case tasl.ExprKindMatch:
		t, v, err := ev.resolveTerm(expr.TermID(), expr.TermPath(), env)
		if err != nil {
			return nil, err
		}
		if t.Kind() != tasl.KindCoproduct || v.Kind() != tasl.ValueKindCoproduct {
			return nil, tasl.NewTypeErr("match(...) term did not resolve to a coproduct")
		}
		mc, ok := expr.Cases()[v.OptionKey()]
		if !ok {
			return nil, tasl.NewTypeErr("missing match case for option %q", v.OptionKey())
		}
		armType, ok := t.Option(v.OptionKey())
		if !ok {
			return nil, tasl.NewTypeErr("unreachable: resolved coproduct value has no matching option type")
		}
		extended := extend(env, mc.ID, Binding{Type: armType, Value: v.Option()})
		return ev.Eval(mc.Value, target, extended)

	default:
		return nil, tasl.NewTypeErr("unknown mapping expression kind")
	}
}

func findField(fields []tasl.ExprField, key string) (tasl.ExprField, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f, true
		}
	}
	return tasl.ExprField{}, false
}

func extend(env Env, id string, b Binding) Env {
	out := make(Env, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	out[id] = b
	return out
}

// resolveTerm looks up id in env and folds path over it, drilling into
// product components or following reference dereferences, and returns
// the type/value pair the path lands on — unprojected.
func (ev *Evaluator) resolveTerm(id string, path []tasl.PathSegment, env Env) (*tasl.Type, *tasl.Value, error) {
	b, ok := env[id]
	if !ok {
		return nil, nil, tasl.NewTypeErr("unbound identifier %q in mapping expression", id)
	}
	t, v := b.Type, b.Value
	for _, seg := range path {
		switch seg.Kind {
		case tasl.SegmentProjection:
			if t.Kind() != tasl.KindProduct {
				return nil, nil, tasl.NewTypeErr("projection(%q) on non-product term", seg.Key)
			}
			ft, ok := t.Component(seg.Key)
			if !ok {
				return nil, nil, tasl.NewTypeErr("unknown projection key %q", seg.Key)
			}
			fv, ok := v.Component(seg.Key)
			if !ok {
				return nil, nil, tasl.NewTypeErr("missing product component %q", seg.Key)
			}
			t, v = ft, fv

		case tasl.SegmentDereference:
			if t.Kind() != tasl.KindReference {
				return nil, nil, tasl.NewTypeErr("dereference(%q) on non-reference term", seg.ClassName)
			}
			target, ok := ev.schema.Class(seg.ClassName)
			if !ok {
				return nil, nil, tasl.NewTypeErr("dereference to unknown class %q", seg.ClassName)
			}
			dv, err := ev.source.Get(seg.ClassName, v.Reference())
			if err != nil {
				return nil, nil, err
			}
			t, v = target.Type, dv

		default:
			return nil, nil, tasl.NewTypeErr("unknown path segment kind")
		}
	}
	return t, v, nil
}

// project structurally checks and casts v (of type from) to the shape
// of to, per spec.md §4.6's "projection is structural: variants must
// match; product components are projected pointwise; coproducts
// preserve the chosen arm; datatypes of literals must match exactly."
func (ev *Evaluator) project(from, to *tasl.Type, v *tasl.Value) (*tasl.Value, error) {
	if from.Kind() != to.Kind() {
		return nil, tasl.NewTypeErr("cannot project %s to %s", from.Kind(), to.Kind())
	}
	switch to.Kind() {
	case tasl.KindURI:
		return v, nil

	case tasl.KindLiteral:
		if from.Datatype() != to.Datatype() {
			return nil, tasl.NewTypeErr("literal datatype mismatch: %s projected to %s", from.Datatype(), to.Datatype())
		}
		return v, nil

	case tasl.KindReference:
		return v, nil

	case tasl.KindProduct:
		comps := make([]tasl.Component, 0, len(to.Components()))
		for _, f := range to.Components() {
			fromFieldType, ok := from.Component(f.Key)
			if !ok {
				return nil, tasl.NewTypeErr("projection target requires component %q absent from source", f.Key)
			}
			fv, ok := v.Component(f.Key)
			if !ok {
				return nil, tasl.NewTypeErr("missing product component %q", f.Key)
			}
			pv, err := ev.project(fromFieldType, f.Type, fv)
			if err != nil {
				return nil, err
			}
			comps = append(comps, tasl.Component{Key: f.Key, Value: pv})
		}
		return tasl.ValueProduct(comps), nil

	case tasl.KindCoproduct:
		fromOptType, ok := from.Option(v.OptionKey())
		if !ok {
			return nil, tasl.NewTypeErr("unreachable: value's option absent from its own type")
		}
		toOptType, ok := to.Option(v.OptionKey())
		if !ok {
			return nil, tasl.NewTypeErr("projection target has no option %q", v.OptionKey())
		}
		pv, err := ev.project(fromOptType, toOptType, v.Option())
		if err != nil {
			return nil, err
		}
		return tasl.ValueCoproduct(v.OptionKey(), pv), nil

	default:
		return nil, tasl.NewTypeErr("unreachable type kind in project")
	}
}
