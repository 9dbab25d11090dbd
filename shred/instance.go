package shred

import (
	"github.com/taslite/taslite/codec"
	"github.com/taslite/taslite/tasl"
)

// Version is the only encoding version taslite currently emits or
// accepts. A mismatch on decode is a DecodeErr (spec.md §7, "unsupported
// version"), not a silent best-effort parse.
const Version = 1

// Element is one id/value pair belonging to a class, in the ascending-id
// order the wire format requires.
type Element struct {
	ID    uint64
	Value *tasl.Value
}

// WriteInstance writes a whole instance: varint(version), then for every
// class in schema order, varint(count) followed by each element as
// varint(idDelta) || value-bytes. The first element's idDelta equals its
// id; every subsequent element's id equals previous + 1 + idDelta, so two
// consecutive ids encode a zero delta. elements is called once per class,
// in class order, and must return elements already sorted by strictly
// ascending id.
func WriteInstance(enc *codec.Encoder, schema *tasl.Schema, elements func(classIndex int) ([]Element, error)) error {
	if err := enc.WriteVarint(Version); err != nil {
		return err
	}
	for _, c := range schema.Classes() {
		els, err := elements(c.Index)
		if err != nil {
			return err
		}
		if err := enc.WriteVarint(uint64(len(els))); err != nil {
			return err
		}
		var prev uint64
		for i, el := range els {
			var delta uint64
			if i == 0 {
				delta = el.ID
			} else {
				if el.ID <= prev {
					return tasl.NewTypeErr("class %q: element id %d out of ascending order", c.Key, el.ID)
				}
				delta = el.ID - prev - 1
			}
			if err := enc.WriteVarint(delta); err != nil {
				return err
			}
			if err := EncodeValue(enc, c.Type, el.Value); err != nil {
				return err
			}
			prev = el.ID
		}
	}
	return nil
}

// ReadInstance reads a whole instance written by WriteInstance, calling
// onClass once per class in schema order with that class's decoded
// elements. It returns a DecodeErr if the stream still has bytes left
// once every class has been read (spec.md §7, "stream not closed when
// expected").
func ReadInstance(dec *codec.Decoder, schema *tasl.Schema, onClass func(classIndex int, els []Element) error) error {
	version, err := dec.DecodeVarint()
	if err != nil {
		return err
	}
	if version != Version {
		return tasl.NewDecodeErr("unsupported encoding version %d", version)
	}
	for _, c := range schema.Classes() {
		count, err := dec.DecodeVarint()
		if err != nil {
			return err
		}
		els := make([]Element, 0, count)
		var id uint64
		for i := uint64(0); i < count; i++ {
			delta, err := dec.DecodeVarint()
			if err != nil {
				return err
			}
			if i == 0 {
				id = delta
			} else {
				id += delta + 1
			}
			v, err := DecodeValue(dec, c.Type)
			if err != nil {
				return err
			}
			els = append(els, Element{ID: id, Value: v})
		}
		if err := onClass(c.Index, els); err != nil {
			return err
		}
	}
	more, err := dec.HasMore()
	if err != nil {
		return err
	}
	if more {
		return tasl.NewDecodeErr("stream not closed when expected")
	}
	return nil
}
