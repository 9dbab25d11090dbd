package tasl

// PathSegmentKind distinguishes the two ways a term path can step: drilling
// into a product component, or dereferencing a reference into another
// class's element (spec.md §4.6).
type PathSegmentKind int

const (
	SegmentProjection PathSegmentKind = iota
	SegmentDereference
)

// PathSegment is one step of a term's path.
type PathSegment struct {
	Kind      PathSegmentKind
	Key       string // SegmentProjection: component key
	ClassName string // SegmentDereference: class to follow the reference into
}

func Projection(key string) PathSegment {
	return PathSegment{Kind: SegmentProjection, Key: key}
}

func Dereference(className string) PathSegment {
	return PathSegment{Kind: SegmentDereference, ClassName: className}
}

// ExprKind is the closed set of mapping expression constructors spec.md
// §4.6 defines.
type ExprKind int

const (
	ExprKindURI ExprKind = iota
	ExprKindLiteral
	ExprKindProduct
	ExprKindCoproduct
	ExprKindTerm
	ExprKindMatch
)

// MatchCase binds a fresh identifier to a matched coproduct arm's value
// and evaluates an expression in that extended environment.
type MatchCase struct {
	ID    string
	Value Expr
}

// Expr is a node of the mapping expression tree.
type Expr struct {
	kind ExprKind

	constant string // ExprKindURI, ExprKindLiteral

	productFields   []ExprField      // ExprKindProduct
	coproductKey    string           // ExprKindCoproduct
	coproductValue  *Expr            // ExprKindCoproduct

	termID   string        // ExprKindTerm, ExprKindMatch
	termPath []PathSegment // ExprKindTerm, ExprKindMatch
	cases    map[string]MatchCase // ExprKindMatch
}

// ExprField is one product-construction component: key plus the
// expression that produces its value.
type ExprField struct {
	Key   string
	Value Expr
}

func ExprURI(s string) Expr           { return Expr{kind: ExprKindURI, constant: s} }
func ExprLiteral(lexical string) Expr { return Expr{kind: ExprKindLiteral, constant: lexical} }

func ExprProduct(fields []ExprField) Expr {
	return Expr{kind: ExprKindProduct, productFields: fields}
}

func ExprCoproduct(key string, value Expr) Expr {
	return Expr{kind: ExprKindCoproduct, coproductKey: key, coproductValue: &value}
}

func ExprTerm(id string, path []PathSegment) Expr {
	return Expr{kind: ExprKindTerm, termID: id, termPath: path}
}

func ExprMatch(id string, path []PathSegment, cases map[string]MatchCase) Expr {
	return Expr{kind: ExprKindMatch, termID: id, termPath: path, cases: cases}
}

func (e Expr) Kind() ExprKind { return e.kind }
func (e Expr) Constant() string {
	return e.constant
}
func (e Expr) ProductFields() []ExprField { return e.productFields }
func (e Expr) CoproductKey() string       { return e.coproductKey }
func (e Expr) CoproductValue() Expr       { return *e.coproductValue }
func (e Expr) TermID() string             { return e.termID }
func (e Expr) TermPath() []PathSegment    { return e.termPath }
func (e Expr) Cases() map[string]MatchCase {
	return e.cases
}

// ClassRule is one `target ⇐ source (id) => expression` rule of a mapping.
type ClassRule struct {
	TargetClass string
	SourceClass string
	ID          string
	Value       Expr
}

// Mapping is a schema-to-schema transformation: a source and target
// schema plus one rule per target class (spec.md §4.6–4.7).
type Mapping struct {
	Source *Schema
	Target *Schema
	Rules  []ClassRule
}
