package tasl

import "fmt"

// The six fatal error kinds of spec.md §7. None are retried automatically;
// each operation that can raise one returns it as a plain Go error via %w
// wrapping, never a custom control-flow panic.

// DecodeErr covers every malformed-wire-format condition in §4.3/§7: a
// malformed chunk stream, an oversized varint, a non-bytes or zero-length
// chunk, premature end of stream, a stream not closed when expected, or
// an unsupported version.
type DecodeErr struct {
	Msg string
}

func (e *DecodeErr) Error() string { return "decode error: " + e.Msg }

func NewDecodeErr(format string, args ...any) error {
	return &DecodeErr{Msg: fmt.Sprintf(format, args...)}
}

// TypeErr covers value/type shape mismatches found during shredding,
// reassembly, or mapping evaluation.
type TypeErr struct {
	Msg string
}

func (e *TypeErr) Error() string { return "type error: " + e.Msg }

func NewTypeErr(format string, args ...any) error {
	return &TypeErr{Msg: fmt.Sprintf(format, args...)}
}

// RangeErr is raised when a numeric literal or id falls outside the
// host's accepted integer range (signed 64-bit here, see SPEC_FULL.md).
type RangeErr struct {
	Msg string
}

func (e *RangeErr) Error() string { return "range error: " + e.Msg }

func NewRangeErr(format string, args ...any) error {
	return &RangeErr{Msg: fmt.Sprintf(format, args...)}
}

// LookupErr covers `get` on a missing element and any operation on an
// unknown class key.
type LookupErr struct {
	Msg string
}

func (e *LookupErr) Error() string { return e.Msg }

func NewLookupErr(format string, args ...any) error {
	return &LookupErr{Msg: fmt.Sprintf(format, args...)}
}

// StorageErr wraps an underlying storage-engine error verbatim (e.g. a
// foreign-key constraint failure surfaced at commit).
type StorageErr struct {
	Msg string
	Err error
}

func (e *StorageErr) Error() string { return "storage error: " + e.Msg + ": " + e.Err.Error() }
func (e *StorageErr) Unwrap() error { return e.Err }

func NewStorageErr(msg string, err error) error {
	return &StorageErr{Msg: msg, Err: err}
}

// SchemaMismatchErr is raised by migrate when mapping.Source is not
// structurally equal to the handle's own schema.
type SchemaMismatchErr struct {
	Msg string
}

func (e *SchemaMismatchErr) Error() string { return "schema mismatch: " + e.Msg }

func NewSchemaMismatchErr(format string, args ...any) error {
	return &SchemaMismatchErr{Msg: fmt.Sprintf(format, args...)}
}
