package shred

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	"github.com/taslite/taslite/codec"
	"github.com/taslite/taslite/tasl"
)

// readFixed collects exactly n already-flushed bytes from dec.
func readFixed(dec *codec.Decoder, n int) ([]byte, error) {
	if err := dec.Skip(n); err != nil {
		return nil, err
	}
	b := dec.Collect()
	dec.Flush()
	return b, nil
}

// readVarintPrefixed reads a varint(byteLen) || bytes field.
func readVarintPrefixed(dec *codec.Decoder) ([]byte, error) {
	n, err := dec.DecodeVarint()
	if err != nil {
		return nil, err
	}
	return readFixed(dec, int(n))
}

func writeVarintPrefixed(enc *codec.Encoder, b []byte) error {
	if err := enc.WriteVarint(uint64(len(b))); err != nil {
		return err
	}
	return enc.WriteBytes(b)
}

// encodeLiteralWire writes one literal's wire bytes: fixed-width values
// as big-endian binary of their declared width, everything else as
// varint(byteLen) || bytes (spec.md §4.3).
func encodeLiteralWire(enc *codec.Encoder, dt tasl.Datatype, lexical string) error {
	switch {
	case dt.IsBoolean():
		b := byte(0)
		switch lexical {
		case "true":
			b = 1
		case "false":
			b = 0
		default:
			return tasl.NewTypeErr("invalid boolean lexical form %q", lexical)
		}
		return enc.WriteBytes([]byte{b})

	case dt.IsSignedInteger(), dt.IsUnsignedInteger():
		n, err := strconv.ParseInt(lexical, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return tasl.NewRangeErr("value %s out of range for %s", lexical, dt)
		}
		if err != nil {
			return tasl.NewTypeErr("invalid integer lexical form %q: %v", lexical, err)
		}
		lo, hi, _, _ := widthBounds(dt)
		if n < lo || n > hi {
			return tasl.NewRangeErr("value %d out of range for %s", n, dt)
		}
		width, _ := dt.FixedWidth()
		buf := make([]byte, width)
		putBigEndian(buf, uint64(n))
		return enc.WriteBytes(buf)

	case dt.IsFloat():
		width, _ := dt.FixedWidth()
		buf := make([]byte, width)
		if width == 4 {
			f, err := strconv.ParseFloat(lexical, 32)
			if err != nil {
				return tasl.NewTypeErr("invalid float lexical form %q: %v", lexical, err)
			}
			binary.BigEndian.PutUint32(buf, math.Float32bits(float32(f)))
		} else {
			f, err := strconv.ParseFloat(lexical, 64)
			if err != nil {
				return tasl.NewTypeErr("invalid float lexical form %q: %v", lexical, err)
			}
			binary.BigEndian.PutUint64(buf, math.Float64bits(f))
		}
		return enc.WriteBytes(buf)

	case dt.IsHexBinary():
		b, err := hex.DecodeString(lexical)
		if err != nil {
			return tasl.NewTypeErr("invalid hexBinary lexical form %q: %v", lexical, err)
		}
		return writeVarintPrefixed(enc, b)

	case dt.IsJSON():
		var v any
		if err := json.Unmarshal([]byte(lexical), &v); err != nil {
			return tasl.NewTypeErr("invalid rdf:JSON lexical form: %v", err)
		}
		b, err := cbor.Marshal(v)
		if err != nil {
			return tasl.NewTypeErr("cbor encode of rdf:JSON value: %v", err)
		}
		return writeVarintPrefixed(enc, b)

	default: // uri-like string and any other datatype
		return writeVarintPrefixed(enc, []byte(lexical))
	}
}

func decodeLiteralWire(dec *codec.Decoder, dt tasl.Datatype) (string, error) {
	switch {
	case dt.IsBoolean():
		b, err := readFixed(dec, 1)
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			return "false", nil
		}
		return "true", nil

	case dt.IsSignedInteger():
		width, _ := dt.FixedWidth()
		b, err := readFixed(dec, width)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(signedFromBigEndian(b, width), 10), nil

	case dt.IsUnsignedInteger():
		width, _ := dt.FixedWidth()
		b, err := readFixed(dec, width)
		if err != nil {
			return "", err
		}
		u := getBigEndian(b)
		if u > maxHostInt {
			return "", tasl.NewRangeErr("value %d out of range for %s", u, dt)
		}
		return strconv.FormatUint(u, 10), nil

	case dt.IsFloat():
		width, _ := dt.FixedWidth()
		b, err := readFixed(dec, width)
		if err != nil {
			return "", err
		}
		if width == 4 {
			f := math.Float32frombits(binary.BigEndian.Uint32(b))
			return strconv.FormatFloat(float64(f), 'g', -1, 32), nil
		}
		f := math.Float64frombits(binary.BigEndian.Uint64(b))
		return strconv.FormatFloat(f, 'g', -1, 64), nil

	case dt.IsHexBinary():
		b, err := readVarintPrefixed(dec)
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(b), nil

	case dt.IsJSON():
		b, err := readVarintPrefixed(dec)
		if err != nil {
			return "", err
		}
		// Decode maps as map[string]any: json.Marshal rejects cbor's
		// default map[any]any.
		dm, err := cbor.DecOptions{DefaultMapType: reflect.TypeOf(map[string]any(nil))}.DecMode()
		if err != nil {
			return "", tasl.NewDecodeErr("cbor decode mode for rdf:JSON: %v", err)
		}
		var v any
		if err := dm.Unmarshal(b, &v); err != nil {
			return "", tasl.NewDecodeErr("cbor decode of rdf:JSON value: %v", err)
		}
		out, err := json.Marshal(v)
		if err != nil {
			return "", tasl.NewDecodeErr("re-marshal of rdf:JSON value: %v", err)
		}
		return string(out), nil

	default:
		b, err := readVarintPrefixed(dec)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func putBigEndian(buf []byte, v uint64) {
	switch len(buf) {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(buf, v)
	default:
		panic("shred: unsupported fixed width")
	}
}

func getBigEndian(buf []byte) uint64 {
	switch len(buf) {
	case 1:
		return uint64(buf[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(buf))
	case 4:
		return uint64(binary.BigEndian.Uint32(buf))
	case 8:
		return binary.BigEndian.Uint64(buf)
	default:
		panic("shred: unsupported fixed width")
	}
}

// signedFromBigEndian sign-extends a big-endian two's complement value
// narrower than 64 bits.
func signedFromBigEndian(buf []byte, width int) int64 {
	u := getBigEndian(buf)
	shift := uint(64 - width*8)
	return int64(u<<shift) >> shift
}
