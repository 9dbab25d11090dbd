// Package compiler implements the Type-to-Table compiler (spec.md §4.2):
// it walks a class's algebraic type and produces the ordered column list,
// the NOT-NULL/NULL partition coproducts induce, and the foreign-key
// edges references induce. The traversal order it produces is also the
// canonical row order the streaming codec and shredder rely on.
package compiler

import (
	"github.com/taslite/taslite/pathname"
	"github.com/taslite/taslite/tasl"
)

// SQLType is the column storage class the compiler assigns each leaf,
// per the table in spec.md §4.2.
type SQLType int

const (
	SQLText SQLType = iota
	SQLInteger
	SQLReal
	SQLBlob
)

// ForeignKey describes the edge a reference() column induces: the
// referenced class's table and its id column.
type ForeignKey struct {
	Table string
	Class string // class key, for error messages
}

// Column is one column of a class table, in canonical pre-order
// traversal order.
type Column struct {
	Name       string
	Path       pathname.Path
	SQLType    SQLType
	Nullable   bool
	Datatype   tasl.Datatype // meaningful only when this column stores a literal
	IsTag      bool          // true for a coproduct's option-index column
	IsURI      bool
	IsRef      bool
	ForeignKey *ForeignKey // non-nil iff IsRef
}

// Layout is the compiled table for one class.
type Layout struct {
	ClassIndex int
	ClassKey   string
	Table      string
	Type       *tasl.Type
	Columns    []Column
}

// Width returns the number of columns t's subtree occupies in a compiled
// table: 1 for every leaf (uri/literal/reference), 1 plus every option's
// width for a coproduct (the tag column plus every arm's reserved
// columns — every arm is reserved even though only one is ever
// non-null), and the sum of components for a product. Shred and
// Reassemble both use this to skip over a coproduct's
// non-selected arms without visiting them, rather than widening every
// row write to the whole table (spec.md §9's two documented-equivalent
// strategies; this is the cheaper one in column-position terms).
func Width(t *tasl.Type) int {
	switch t.Kind() {
	case tasl.KindURI, tasl.KindLiteral, tasl.KindReference:
		return 1
	case tasl.KindProduct:
		n := 0
		for _, f := range t.Components() {
			n += Width(f.Type)
		}
		return n
	case tasl.KindCoproduct:
		n := 1
		for _, f := range t.Options() {
			n += Width(f.Type)
		}
		return n
	default:
		panic("compiler: unreachable type kind in Width")
	}
}

// Compile produces one Layout per class of s, in class-index order.
func Compile(s *tasl.Schema) ([]*Layout, error) {
	layouts := make([]*Layout, s.Len())
	for _, c := range s.Classes() {
		l, err := compileClass(s, c)
		if err != nil {
			return nil, err
		}
		layouts[c.Index] = l
	}
	return layouts, nil
}

func compileClass(s *tasl.Schema, c tasl.Class) (*Layout, error) {
	l := &Layout{
		ClassIndex: c.Index,
		ClassKey:   c.Key,
		Table:      pathname.Table(c.Index),
		Type:       c.Type,
	}
	w := &walker{schema: s, layout: l}
	if err := w.walk(c.Type, pathname.Path{}, false); err != nil {
		return nil, err
	}
	return l, nil
}

type walker struct {
	schema *tasl.Schema
	layout *Layout
}

// walk traverses t at path, appending columns to w.layout. nullable is
// true when some ancestor coproduct did not select this subtree's arm
// (spec.md §4.2's "NULL iff on a non-selected coproduct branch" — which
// in DDL terms means the column's NOT-NULL-ness is inherited except that
// it always goes nullable once any ancestor is a coproduct, since any
// value's branch selection makes every *other* branch's columns null).
func (w *walker) walk(t *tasl.Type, path pathname.Path, nullable bool) error {
	switch t.Kind() {
	case tasl.KindURI:
		w.addColumn(Column{
			Name:     path.Column(),
			Path:     path,
			SQLType:  SQLText,
			Nullable: nullable,
			IsURI:    true,
		})
		return nil

	case tasl.KindLiteral:
		return w.walkLiteral(t, path, nullable)

	case tasl.KindProduct:
		for i, f := range t.Components() {
			if err := w.walk(f.Type, path.Append(i), nullable); err != nil {
				return err
			}
		}
		return nil

	case tasl.KindCoproduct:
		return w.walkCoproduct(t, path, nullable)

	case tasl.KindReference:
		target, ok := w.schema.Class(t.ClassName())
		if !ok {
			return tasl.NewTypeErr("reference to unknown class %q", t.ClassName())
		}
		w.addColumn(Column{
			Name:     path.Column(),
			Path:     path,
			SQLType:  SQLInteger,
			Nullable: nullable,
			IsRef:    true,
			ForeignKey: &ForeignKey{
				Table: pathname.Table(target.Index),
				Class: target.Key,
			},
		})
		return nil

	default:
		panic("compiler: unreachable type kind in walk")
	}
}

func (w *walker) walkLiteral(t *tasl.Type, path pathname.Path, nullable bool) error {
	dt := t.Datatype()
	col := Column{
		Name:     path.Column(),
		Path:     path,
		Nullable: nullable,
		Datatype: dt,
	}
	switch {
	case dt.IsBoolean(), dt.IsSignedInteger(), dt.IsUnsignedInteger():
		col.SQLType = SQLInteger
	case dt.IsFloat():
		col.SQLType = SQLReal
	case dt.IsHexBinary():
		col.SQLType = SQLBlob
	default: // variable-width strings, including rdf:JSON and "other"
		col.SQLType = SQLText
	}
	w.addColumn(col)
	return nil
}

// walkCoproduct emits the tag column for t, then walks every option's
// subtree as always-nullable (its columns are null unless this exact arm
// is selected). Every arm's columns are reserved in the table regardless
// of which arm a given row selects; Width gives shred and the row
// decoder the span to skip over the arms they don't visit.
func (w *walker) walkCoproduct(t *tasl.Type, path pathname.Path, nullable bool) error {
	w.addColumn(Column{
		Name:     path.Column(),
		Path:     path,
		SQLType:  SQLInteger,
		Nullable: nullable,
		IsTag:    true,
	})
	for i, f := range t.Options() {
		if err := w.walk(f.Type, path.Append(i), true); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) addColumn(c Column) {
	w.layout.Columns = append(w.layout.Columns, c)
}
