package shred

import (
	"encoding/hex"
	"errors"
	"math"
	"strconv"

	"github.com/taslite/taslite/tasl"
)

// maxHostInt is the ceiling taslite enforces on every integer-valued cell
// (literal or reference id): the full signed 64-bit range sqlite's
// INTEGER storage class provides, lifted from the source's 53-bit
// Number.MAX_SAFE_INTEGER ceiling (see SPEC_FULL.md). Values outside it
// raise RangeErr rather than wrapping or truncating.
const maxHostInt = math.MaxInt64

// widthBounds gives the inclusive [min, max] a datatype's lexical integer
// form must fall within, independent of the host's 64-bit storage range.
func widthBounds(dt tasl.Datatype) (min, max int64, unsigned bool, ok bool) {
	switch dt {
	case tasl.Byte:
		return math.MinInt8, math.MaxInt8, false, true
	case tasl.Short:
		return math.MinInt16, math.MaxInt16, false, true
	case tasl.Int:
		return math.MinInt32, math.MaxInt32, false, true
	case tasl.Long:
		return math.MinInt64, math.MaxInt64, false, true
	case tasl.UnsignedByte:
		return 0, math.MaxUint8, true, true
	case tasl.UnsignedShort:
		return 0, math.MaxUint16, true, true
	case tasl.UnsignedInt:
		return 0, math.MaxUint32, true, true
	case tasl.UnsignedLong:
		return 0, math.MaxInt64, true, true // host ceiling, not 2^64-1
	default:
		return 0, 0, false, false
	}
}

// literalToCell converts a literal's canonical lexical form to the Go
// value shred stores in a Row cell, ready for a database/sql bind.
func literalToCell(dt tasl.Datatype, lexical string) (any, error) {
	switch {
	case dt.IsBoolean():
		switch lexical {
		case "true":
			return int64(1), nil
		case "false":
			return int64(0), nil
		default:
			return nil, tasl.NewTypeErr("invalid boolean lexical form %q", lexical)
		}

	case dt.IsSignedInteger(), dt.IsUnsignedInteger():
		n, err := strconv.ParseInt(lexical, 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return nil, tasl.NewRangeErr("value %s out of range for %s", lexical, dt)
		}
		if err != nil {
			return nil, tasl.NewTypeErr("invalid integer lexical form %q: %v", lexical, err)
		}
		lo, hi, _, _ := widthBounds(dt)
		if n < lo || n > hi {
			return nil, tasl.NewRangeErr("value %d out of range for %s", n, dt)
		}
		return n, nil

	case dt.IsFloat():
		bits := 64
		if dt == tasl.Float {
			bits = 32
		}
		f, err := strconv.ParseFloat(lexical, bits)
		if err != nil {
			return nil, tasl.NewTypeErr("invalid float lexical form %q: %v", lexical, err)
		}
		return f, nil

	case dt.IsHexBinary():
		b, err := hex.DecodeString(lexical)
		if err != nil {
			return nil, tasl.NewTypeErr("invalid hexBinary lexical form %q: %v", lexical, err)
		}
		return b, nil

	default: // uri-like string, rdf:JSON, and any other datatype
		return lexical, nil
	}
}

// cellToLiteral is literalToCell's inverse, used by Reassemble and by
// database row-scanning to rebuild the canonical lexical form.
func cellToLiteral(dt tasl.Datatype, cell any) (string, error) {
	switch {
	case dt.IsBoolean():
		n, ok := asInt64(cell)
		if !ok {
			return "", tasl.NewTypeErr("expected boolean cell, got %T", cell)
		}
		if n == 0 {
			return "false", nil
		}
		return "true", nil

	case dt.IsSignedInteger(), dt.IsUnsignedInteger():
		n, ok := asInt64(cell)
		if !ok {
			return "", tasl.NewTypeErr("expected integer cell, got %T", cell)
		}
		return strconv.FormatInt(n, 10), nil

	case dt.IsFloat():
		f, ok := cell.(float64)
		if !ok {
			return "", tasl.NewTypeErr("expected float cell, got %T", cell)
		}
		bits := 64
		if dt == tasl.Float {
			bits = 32
		}
		return strconv.FormatFloat(f, 'g', -1, bits), nil

	case dt.IsHexBinary():
		b, ok := cell.([]byte)
		if !ok {
			return "", tasl.NewTypeErr("expected hexBinary cell, got %T", cell)
		}
		return hex.EncodeToString(b), nil

	default:
		s, ok := cell.(string)
		if !ok {
			return "", tasl.NewTypeErr("expected text cell, got %T", cell)
		}
		return s, nil
	}
}
