package shred

import (
	"github.com/taslite/taslite/codec"
	"github.com/taslite/taslite/tasl"
)

// EncodeValue writes v's wire bytes depth-first: a uri or literal's own
// encoding, a product's components concatenated in order, a coproduct's
// option-index varint followed by only the selected arm's bytes (no
// filler for the arms not taken), and a reference's id as a bare varint.
func EncodeValue(enc *codec.Encoder, t *tasl.Type, v *tasl.Value) error {
	if !tasl.Conforms(t, v) {
		return tasl.NewTypeErr("value does not conform to type %s", t.Kind())
	}
	switch t.Kind() {
	case tasl.KindURI:
		return writeVarintPrefixed(enc, []byte(v.URI()))

	case tasl.KindLiteral:
		return encodeLiteralWire(enc, t.Datatype(), v.Literal())

	case tasl.KindProduct:
		for _, f := range t.Components() {
			cv, _ := v.Component(f.Key)
			if err := EncodeValue(enc, f.Type, cv); err != nil {
				return err
			}
		}
		return nil

	case tasl.KindCoproduct:
		idx, _ := t.OptionIndex(v.OptionKey())
		if err := enc.WriteVarint(uint64(idx)); err != nil {
			return err
		}
		opt, _ := t.Option(v.OptionKey())
		return EncodeValue(enc, opt, v.Option())

	case tasl.KindReference:
		if v.Reference() > maxHostInt {
			return tasl.NewRangeErr("reference id %d exceeds host integer range", v.Reference())
		}
		return enc.WriteVarint(v.Reference())

	default:
		panic("shred: unreachable type kind in EncodeValue")
	}
}

// DecodeValue is EncodeValue's inverse: it reads exactly the bytes t's
// shape requires and no more, so a caller decoding one value out of a
// stream of many can continue immediately with the next.
func DecodeValue(dec *codec.Decoder, t *tasl.Type) (*tasl.Value, error) {
	switch t.Kind() {
	case tasl.KindURI:
		b, err := readVarintPrefixed(dec)
		if err != nil {
			return nil, err
		}
		return tasl.ValueURI(string(b)), nil

	case tasl.KindLiteral:
		lex, err := decodeLiteralWire(dec, t.Datatype())
		if err != nil {
			return nil, err
		}
		return tasl.ValueLiteral(lex), nil

	case tasl.KindProduct:
		comps := make([]tasl.Component, len(t.Components()))
		for i, f := range t.Components() {
			cv, err := DecodeValue(dec, f.Type)
			if err != nil {
				return nil, err
			}
			comps[i] = tasl.Component{Key: f.Key, Value: cv}
		}
		return tasl.ValueProduct(comps), nil

	case tasl.KindCoproduct:
		idx, err := dec.DecodeVarint()
		if err != nil {
			return nil, err
		}
		options := t.Options()
		if idx >= uint64(len(options)) {
			return nil, tasl.NewDecodeErr("coproduct option index %d out of range (%d options)", idx, len(options))
		}
		f := options[idx]
		cv, err := DecodeValue(dec, f.Type)
		if err != nil {
			return nil, err
		}
		return tasl.ValueCoproduct(f.Key, cv), nil

	case tasl.KindReference:
		id, err := dec.DecodeVarint()
		if err != nil {
			return nil, err
		}
		return tasl.ValueReference(id), nil

	default:
		panic("shred: unreachable type kind in DecodeValue")
	}
}
