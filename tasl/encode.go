package tasl

import (
	"bytes"
	"encoding/binary"
	"io"
)

// EncodeSchema produces the canonical byte encoding of a schema, persisted
// in the `schemas` table (spec.md §4.2/§6) and decoded again by Open. The
// format is
// deliberately the same shape as the instance wire format (§4.3):
// varint-length-prefixed strings, varint-tagged kinds, fields walked in
// declaration order, so that two calls on an Equal schema produce
// bit-identical bytes.
func EncodeSchema(s *Schema) []byte {
	var buf bytes.Buffer
	writeUvarint(&buf, uint64(s.Len()))
	for _, c := range s.Classes() {
		writeString(&buf, c.Key)
		writeType(&buf, c.Type)
	}
	return buf.Bytes()
}

func writeType(buf *bytes.Buffer, t *Type) {
	writeUvarint(buf, uint64(t.Kind()))
	switch t.Kind() {
	case KindURI:
	case KindLiteral:
		writeString(buf, string(t.Datatype()))
	case KindProduct:
		writeFields(buf, t.Components())
	case KindCoproduct:
		writeFields(buf, t.Options())
	case KindReference:
		writeString(buf, t.ClassName())
	default:
		panic("tasl: unreachable type kind in writeType")
	}
}

func writeFields(buf *bytes.Buffer, fields []Field) {
	writeUvarint(buf, uint64(len(fields)))
	for _, f := range fields {
		writeString(buf, f.Key)
		writeType(buf, f.Type)
	}
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUvarint(buf, uint64(len(s)))
	buf.WriteString(s)
}

// DecodeSchema is the inverse of EncodeSchema. It returns a DecodeErr on
// any truncated or malformed blob.
func DecodeSchema(data []byte) (*Schema, error) {
	r := bytes.NewReader(data)
	s, err := decodeSchemaFrom(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, NewDecodeErr("trailing %d bytes after schema blob", r.Len())
	}
	return s, nil
}

func readType(r *bytes.Reader) (*Type, error) {
	kind, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, NewDecodeErr("truncated type node: %v", err)
	}
	switch TypeKind(kind) {
	case KindURI:
		return URI(), nil
	case KindLiteral:
		dt, err := readString(r)
		if err != nil {
			return nil, err
		}
		return Literal(Datatype(dt)), nil
	case KindProduct:
		fields, err := readFields(r)
		if err != nil {
			return nil, err
		}
		return Product(fields), nil
	case KindCoproduct:
		fields, err := readFields(r)
		if err != nil {
			return nil, err
		}
		return Coproduct(fields), nil
	case KindReference:
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return Reference(name), nil
	default:
		return nil, NewDecodeErr("unknown type kind tag %d", kind)
	}
}

func readFields(r *bytes.Reader) ([]Field, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, NewDecodeErr("truncated field list: %v", err)
	}
	fields := make([]Field, 0, count)
	for i := uint64(0); i < count; i++ {
		key, err := readString(r)
		if err != nil {
			return nil, err
		}
		t, err := readType(r)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Key: key, Type: t})
	}
	return fields, nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", NewDecodeErr("truncated string length: %v", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", NewDecodeErr("truncated string body: %v", err)
	}
	return string(buf), nil
}
