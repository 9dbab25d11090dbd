// Package pathname implements the canonical, injective mapping from a
// structural path through an algebraic type to a SQL column identifier,
// and from a class position to a table identifier (spec.md §4.1). It is
// the smallest component in the system but the one every other layer
// (compiler, shred, database) must agree on bit-for-bit, so that DDL
// regenerated from an unchanged schema matches existing tables
// byte-for-byte.
package pathname

import (
	"strconv"
	"strings"
)

// ReservedID is the one column name every path mapping is forbidden from
// producing: the primary-key column every class table carries in addition
// to its structural columns.
const ReservedID = "id"

// Path is a sequence of non-negative component/option indices: "take
// component/option #i at each descent" from the class type's root.
type Path []int

// Column returns the column identifier for a path. The empty path (the
// root of a non-product, non-coproduct type, e.g. a bare `uri()` class)
// maps to "e"; a non-empty path `[i1,...,in]` maps to `e_i1_..._in`.
func (p Path) Column() string {
	if len(p) == 0 {
		return "e"
	}
	var b strings.Builder
	b.WriteByte('e')
	for _, i := range p {
		b.WriteByte('_')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Append returns a new path with i appended, never mutating p's backing
// array (callers build paths by repeated descent during a single
// traversal, so paths must not alias).
func (p Path) Append(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Table returns the table identifier for a class at the given 0-based
// class index: `c<k>`.
func Table(classIndex int) string {
	return "c" + strconv.Itoa(classIndex)
}
