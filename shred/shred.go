// Package shred implements the shredder/reassembler of spec.md §4.4 (tree
// value <-> flat relational row) and the schema-directed wire codec of
// §4.3 that sits on top of package codec's chunk primitives. The two
// halves share one traversal order — the compiler's canonical pre-order
// walk — but differ in how a coproduct's non-selected arms are handled:
// a row reserves every arm's columns (most left nil) so the table's
// column list never changes shape, while the wire format only ever
// emits bytes for the arm actually selected.
package shred

import (
	"github.com/taslite/taslite/compiler"
	"github.com/taslite/taslite/tasl"
)

// Row is one class instance flattened to its compiled column order: one
// cell per compiler.Column, index-for-index. A coproduct's non-selected
// arms leave their cells nil.
type Row []any

// Shred flattens v (a value of class type t) into a Row of Width(t)
// cells, the shape compiler.Layout.Columns describes.
func Shred(t *tasl.Type, v *tasl.Value) (Row, error) {
	if !tasl.Conforms(t, v) {
		return nil, tasl.NewTypeErr("value does not conform to type %s", t.Kind())
	}
	row := make(Row, compiler.Width(t))
	if err := shredInto(t, v, row, 0); err != nil {
		return nil, err
	}
	return row, nil
}

func shredInto(t *tasl.Type, v *tasl.Value, row Row, pos int) error {
	switch t.Kind() {
	case tasl.KindURI:
		row[pos] = v.URI()
		return nil

	case tasl.KindLiteral:
		cell, err := literalToCell(t.Datatype(), v.Literal())
		if err != nil {
			return err
		}
		row[pos] = cell
		return nil

	case tasl.KindProduct:
		off := pos
		for _, f := range t.Components() {
			cv, _ := v.Component(f.Key) // Conforms already checked presence
			if err := shredInto(f.Type, cv, row, off); err != nil {
				return err
			}
			off += compiler.Width(f.Type)
		}
		return nil

	case tasl.KindCoproduct:
		idx, _ := t.OptionIndex(v.OptionKey()) // Conforms already checked membership
		row[pos] = int64(idx)
		off := pos + 1
		for i, f := range t.Options() {
			if i == idx {
				if err := shredInto(f.Type, v.Option(), row, off); err != nil {
					return err
				}
			}
			off += compiler.Width(f.Type)
		}
		return nil

	case tasl.KindReference:
		id := v.Reference()
		if id > maxHostInt {
			return tasl.NewRangeErr("reference id %d exceeds host integer range", id)
		}
		row[pos] = int64(id)
		return nil

	default:
		panic("shred: unreachable type kind in shredInto")
	}
}

// Reassemble rebuilds a value of class type t from a Row produced by
// Shred (or scanned back from storage in the same column order).
func Reassemble(t *tasl.Type, row Row) (*tasl.Value, error) {
	v, _, err := reassembleAt(t, row, 0)
	return v, err
}

func reassembleAt(t *tasl.Type, row Row, pos int) (*tasl.Value, int, error) {
	switch t.Kind() {
	case tasl.KindURI:
		s, ok := row[pos].(string)
		if !ok {
			return nil, 0, tasl.NewTypeErr("column %d: expected uri text, got %T", pos, row[pos])
		}
		return tasl.ValueURI(s), pos + 1, nil

	case tasl.KindLiteral:
		lex, err := cellToLiteral(t.Datatype(), row[pos])
		if err != nil {
			return nil, 0, err
		}
		return tasl.ValueLiteral(lex), pos + 1, nil

	case tasl.KindProduct:
		comps := make([]tasl.Component, len(t.Components()))
		off := pos
		for i, f := range t.Components() {
			cv, next, err := reassembleAt(f.Type, row, off)
			if err != nil {
				return nil, 0, err
			}
			comps[i] = tasl.Component{Key: f.Key, Value: cv}
			off = next
		}
		return tasl.ValueProduct(comps), off, nil

	case tasl.KindCoproduct:
		tag, ok := asInt64(row[pos])
		if !ok {
			return nil, 0, tasl.NewTypeErr("column %d: expected coproduct tag, got %T", pos, row[pos])
		}
		options := t.Options()
		if tag < 0 || int(tag) >= len(options) {
			return nil, 0, tasl.NewTypeErr("coproduct tag %d out of range (%d options)", tag, len(options))
		}
		off := pos + 1
		var selected *tasl.Value
		for i, f := range options {
			if int64(i) == tag {
				v, next, err := reassembleAt(f.Type, row, off)
				if err != nil {
					return nil, 0, err
				}
				selected = v
				off = next
			} else {
				off += compiler.Width(f.Type)
			}
		}
		return tasl.ValueCoproduct(options[tag].Key, selected), off, nil

	case tasl.KindReference:
		id, ok := asInt64(row[pos])
		if !ok {
			return nil, 0, tasl.NewTypeErr("column %d: expected reference id, got %T", pos, row[pos])
		}
		return tasl.ValueReference(uint64(id)), pos + 1, nil

	default:
		panic("shred: unreachable type kind in reassembleAt")
	}
}

func asInt64(cell any) (int64, bool) {
	switch n := cell.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
