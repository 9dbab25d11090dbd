package tasl

import "fmt"

// TypeKind is the closed set of algebraic type constructors spec.md §3
// defines. Ported from the source's string-discriminant dispatch to an
// exhaustively-matchable enum (see SPEC_FULL.md's note on dynamic dispatch).
type TypeKind int

const (
	KindURI TypeKind = iota
	KindLiteral
	KindProduct
	KindCoproduct
	KindReference
)

func (k TypeKind) String() string {
	switch k {
	case KindURI:
		return "uri"
	case KindLiteral:
		return "literal"
	case KindProduct:
		return "product"
	case KindCoproduct:
		return "coproduct"
	case KindReference:
		return "reference"
	default:
		panic(fmt.Sprintf("tasl: unknown type kind %d", int(k)))
	}
}

// Field is one named slot of a product or coproduct, in declaration order.
// Order is significant: it is the canonical schema order spec.md §3
// requires, and it is what pathname indices are computed against.
type Field struct {
	Key  string
	Type *Type
}

// Type is a node of the algebraic type tree. Exactly one of the
// kind-specific fields is meaningful, selected by Kind.
type Type struct {
	kind       TypeKind
	datatype   Datatype // KindLiteral
	components []Field  // KindProduct, in order
	options    []Field   // KindCoproduct, in order
	className  string   // KindReference
}

func URI() *Type { return &Type{kind: KindURI} }

func Literal(datatype Datatype) *Type {
	return &Type{kind: KindLiteral, datatype: datatype}
}

func Product(components []Field) *Type {
	return &Type{kind: KindProduct, components: components}
}

func Coproduct(options []Field) *Type {
	return &Type{kind: KindCoproduct, options: options}
}

func Reference(className string) *Type {
	return &Type{kind: KindReference, className: className}
}

func (t *Type) Kind() TypeKind { return t.kind }

func (t *Type) Datatype() Datatype {
	if t.kind != KindLiteral {
		panic("tasl: Datatype() on non-literal type")
	}
	return t.datatype
}

func (t *Type) Components() []Field {
	if t.kind != KindProduct {
		panic("tasl: Components() on non-product type")
	}
	return t.components
}

func (t *Type) Options() []Field {
	if t.kind != KindCoproduct {
		panic("tasl: Options() on non-coproduct type")
	}
	return t.options
}

func (t *Type) ClassName() string {
	if t.kind != KindReference {
		panic("tasl: ClassName() on non-reference type")
	}
	return t.className
}

// Component looks up a product's component by key, in O(n) over its
// (typically small) field count.
func (t *Type) Component(key string) (*Type, bool) {
	for _, f := range t.Components() {
		if f.Key == key {
			return f.Type, true
		}
	}
	return nil, false
}

// Option looks up a coproduct's option by key.
func (t *Type) Option(key string) (*Type, bool) {
	for _, f := range t.Options() {
		if f.Key == key {
			return f.Type, true
		}
	}
	return nil, false
}

// OptionIndex returns the 0-based index of a coproduct option key, the
// value stored in the option-index column for a value selecting that arm.
func (t *Type) OptionIndex(key string) (int, bool) {
	for i, f := range t.Options() {
		if f.Key == key {
			return i, true
		}
	}
	return 0, false
}

// Equal reports structural equality, used through Schema.Equal by migrate
// to check mapping.source ≡ handle.schema (§4.7). Open does not compare
// its persisted schema against any other.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.kind != other.kind {
		return false
	}
	switch t.kind {
	case KindURI:
		return true
	case KindLiteral:
		return t.datatype == other.datatype
	case KindProduct, KindCoproduct:
		a, b := t.fields(), other.fields()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i].Key != b[i].Key || !a[i].Type.Equal(b[i].Type) {
				return false
			}
		}
		return true
	case KindReference:
		return t.className == other.className
	default:
		panic("tasl: unreachable type kind in Equal")
	}
}

func (t *Type) fields() []Field {
	if t.kind == KindProduct {
		return t.components
	}
	return t.options
}
