package tasl

import (
	"bytes"
	"encoding/binary"

	"github.com/taslite/taslite/util"
)

// EncodeMapping serializes a mapping in the same varint/length-prefixed
// shape EncodeSchema uses, so migrate's CLI wrapper can load a mapping
// from a file without a textual tasl-expression parser (out of scope,
// spec.md's Non-goals) — this only round-trips the Go-native AST
// tasl.Mapping already is.
func EncodeMapping(m *Mapping) []byte {
	var buf bytes.Buffer
	buf.Write(EncodeSchema(m.Source))
	buf.Write(EncodeSchema(m.Target))
	writeUvarint(&buf, uint64(len(m.Rules)))
	for _, rule := range m.Rules {
		writeString(&buf, rule.TargetClass)
		writeString(&buf, rule.SourceClass)
		writeString(&buf, rule.ID)
		writeExpr(&buf, rule.Value)
	}
	return buf.Bytes()
}

func writeExpr(buf *bytes.Buffer, e Expr) {
	writeUvarint(buf, uint64(e.Kind()))
	switch e.Kind() {
	case ExprKindURI, ExprKindLiteral:
		writeString(buf, e.Constant())
	case ExprKindProduct:
		fields := e.ProductFields()
		writeUvarint(buf, uint64(len(fields)))
		for _, f := range fields {
			writeString(buf, f.Key)
			writeExpr(buf, f.Value)
		}
	case ExprKindCoproduct:
		writeString(buf, e.CoproductKey())
		writeExpr(buf, e.CoproductValue())
	case ExprKindTerm:
		writeString(buf, e.TermID())
		writePath(buf, e.TermPath())
	case ExprKindMatch:
		writeString(buf, e.TermID())
		writePath(buf, e.TermPath())
		cases := e.Cases()
		writeUvarint(buf, uint64(len(cases)))
		// Go map iteration order is randomized; walk cases in sorted key
		// order so two equal mappings always produce identical bytes
		// (the same determinism EncodeSchema's class order relies on).
		for key, mc := range util.CanonicalMapIter(cases) {
			writeString(buf, key)
			writeString(buf, mc.ID)
			writeExpr(buf, mc.Value)
		}
	default:
		panic("tasl: unreachable expr kind in writeExpr")
	}
}

func writePath(buf *bytes.Buffer, path []PathSegment) {
	writeUvarint(buf, uint64(len(path)))
	for _, seg := range path {
		writeUvarint(buf, uint64(seg.Kind))
		switch seg.Kind {
		case SegmentProjection:
			writeString(buf, seg.Key)
		case SegmentDereference:
			writeString(buf, seg.ClassName)
		default:
			panic("tasl: unreachable path segment kind in writePath")
		}
	}
}

// DecodeMapping is the inverse of EncodeMapping.
func DecodeMapping(data []byte) (*Mapping, error) {
	r := bytes.NewReader(data)
	source, err := decodeSchemaFrom(r)
	if err != nil {
		return nil, err
	}
	target, err := decodeSchemaFrom(r)
	if err != nil {
		return nil, err
	}
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, NewDecodeErr("truncated mapping rule count: %v", err)
	}
	rules := make([]ClassRule, 0, count)
	for i := uint64(0); i < count; i++ {
		targetClass, err := readString(r)
		if err != nil {
			return nil, err
		}
		sourceClass, err := readString(r)
		if err != nil {
			return nil, err
		}
		id, err := readString(r)
		if err != nil {
			return nil, err
		}
		expr, err := readExpr(r)
		if err != nil {
			return nil, err
		}
		rules = append(rules, ClassRule{TargetClass: targetClass, SourceClass: sourceClass, ID: id, Value: expr})
	}
	if r.Len() != 0 {
		return nil, NewDecodeErr("trailing %d bytes after mapping blob", r.Len())
	}
	return &Mapping{Source: source, Target: target, Rules: rules}, nil
}

// decodeSchemaFrom reads one schema's worth of bytes directly from r,
// rather than taking a standalone blob: mapping blobs concatenate two
// schemas back to back with no outer length prefix between them.
func decodeSchemaFrom(r *bytes.Reader) (*Schema, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, NewDecodeErr("truncated schema blob: %v", err)
	}
	s := NewSchema()
	for i := uint64(0); i < count; i++ {
		key, err := readString(r)
		if err != nil {
			return nil, err
		}
		t, err := readType(r)
		if err != nil {
			return nil, err
		}
		if !s.AddClass(key, t) {
			return nil, NewDecodeErr("duplicate class key %q in schema blob", key)
		}
	}
	return s, nil
}

func readExpr(r *bytes.Reader) (Expr, error) {
	kind, err := binary.ReadUvarint(r)
	if err != nil {
		return Expr{}, NewDecodeErr("truncated expr node: %v", err)
	}
	switch ExprKind(kind) {
	case ExprKindURI:
		s, err := readString(r)
		if err != nil {
			return Expr{}, err
		}
		return ExprURI(s), nil
	case ExprKindLiteral:
		s, err := readString(r)
		if err != nil {
			return Expr{}, err
		}
		return ExprLiteral(s), nil
	case ExprKindProduct:
		count, err := binary.ReadUvarint(r)
		if err != nil {
			return Expr{}, NewDecodeErr("truncated product expr: %v", err)
		}
		fields := make([]ExprField, 0, count)
		for i := uint64(0); i < count; i++ {
			key, err := readString(r)
			if err != nil {
				return Expr{}, err
			}
			v, err := readExpr(r)
			if err != nil {
				return Expr{}, err
			}
			fields = append(fields, ExprField{Key: key, Value: v})
		}
		return ExprProduct(fields), nil
	case ExprKindCoproduct:
		key, err := readString(r)
		if err != nil {
			return Expr{}, err
		}
		v, err := readExpr(r)
		if err != nil {
			return Expr{}, err
		}
		return ExprCoproduct(key, v), nil
	case ExprKindTerm:
		id, err := readString(r)
		if err != nil {
			return Expr{}, err
		}
		path, err := readPath(r)
		if err != nil {
			return Expr{}, err
		}
		return ExprTerm(id, path), nil
	case ExprKindMatch:
		id, err := readString(r)
		if err != nil {
			return Expr{}, err
		}
		path, err := readPath(r)
		if err != nil {
			return Expr{}, err
		}
		count, err := binary.ReadUvarint(r)
		if err != nil {
			return Expr{}, NewDecodeErr("truncated match cases: %v", err)
		}
		cases := make(map[string]MatchCase, count)
		for i := uint64(0); i < count; i++ {
			key, err := readString(r)
			if err != nil {
				return Expr{}, err
			}
			caseID, err := readString(r)
			if err != nil {
				return Expr{}, err
			}
			v, err := readExpr(r)
			if err != nil {
				return Expr{}, err
			}
			cases[key] = MatchCase{ID: caseID, Value: v}
		}
		return ExprMatch(id, path, cases), nil
	default:
		return Expr{}, NewDecodeErr("unknown expr kind tag %d", kind)
	}
}

func readPath(r *bytes.Reader) ([]PathSegment, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, NewDecodeErr("truncated path: %v", err)
	}
	path := make([]PathSegment, 0, count)
	for i := uint64(0); i < count; i++ {
		kind, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, NewDecodeErr("truncated path segment: %v", err)
		}
		switch PathSegmentKind(kind) {
		case SegmentProjection:
			key, err := readString(r)
			if err != nil {
				return nil, err
			}
			path = append(path, Projection(key))
		case SegmentDereference:
			name, err := readString(r)
			if err != nil {
				return nil, err
			}
			path = append(path, Dereference(name))
		default:
			return nil, NewDecodeErr("unknown path segment kind tag %d", kind)
		}
	}
	return path, nil
}
