package tasl

// Datatype is one of the closed set of XSD/RDF IRIs a literal type may
// carry. taslite only cares about the lexical/wire shape each one implies,
// not about full XSD validation.
type Datatype string

const (
	Boolean       Datatype = "http://www.w3.org/2001/XMLSchema#boolean"
	Byte          Datatype = "http://www.w3.org/2001/XMLSchema#byte"
	UnsignedByte  Datatype = "http://www.w3.org/2001/XMLSchema#unsignedByte"
	Short         Datatype = "http://www.w3.org/2001/XMLSchema#short"
	UnsignedShort Datatype = "http://www.w3.org/2001/XMLSchema#unsignedShort"
	Int           Datatype = "http://www.w3.org/2001/XMLSchema#int"
	UnsignedInt   Datatype = "http://www.w3.org/2001/XMLSchema#unsignedInt"
	Long          Datatype = "http://www.w3.org/2001/XMLSchema#long"
	UnsignedLong  Datatype = "http://www.w3.org/2001/XMLSchema#unsignedLong"
	Float         Datatype = "http://www.w3.org/2001/XMLSchema#float"
	Double        Datatype = "http://www.w3.org/2001/XMLSchema#double"
	HexBinary     Datatype = "http://www.w3.org/2001/XMLSchema#hexBinary"
	RDFJSON       Datatype = "http://www.w3.org/1999/02/22-rdf-syntax-ns#JSON"
	String        Datatype = "http://www.w3.org/2001/XMLSchema#string"
)

// fixedWidths holds the byte width of every fixed-width datatype. Datatypes
// absent from this map are variable-width (uri/hexBinary/JSON/other
// strings all go through length-prefixed encoding).
var fixedWidths = map[Datatype]int{
	Boolean:       1,
	Byte:          1,
	UnsignedByte:  1,
	Short:         2,
	UnsignedShort: 2,
	Int:           4,
	UnsignedInt:   4,
	Long:          8,
	UnsignedLong:  8,
	Float:         4,
	Double:        8,
}

// signedIntegers is the subset of fixed-width datatypes whose lexical form
// is a signed decimal integer, as opposed to unsigned or floating point.
var signedIntegers = map[Datatype]bool{
	Byte:  true,
	Short: true,
	Int:   true,
	Long:  true,
}

var unsignedIntegers = map[Datatype]bool{
	UnsignedByte:  true,
	UnsignedShort: true,
	UnsignedInt:   true,
	UnsignedLong:  true,
}

// FixedWidth returns the datatype's byte width and whether it is
// fixed-width at all. Variable-width datatypes (uri-like literals,
// hexBinary, rdf:JSON, and any other IRI) return (0, false).
func (d Datatype) FixedWidth() (int, bool) {
	w, ok := fixedWidths[d]
	return w, ok
}

func (d Datatype) IsBoolean() bool {
	return d == Boolean
}

func (d Datatype) IsSignedInteger() bool {
	return signedIntegers[d]
}

func (d Datatype) IsUnsignedInteger() bool {
	return unsignedIntegers[d]
}

func (d Datatype) IsFloat() bool {
	return d == Float || d == Double
}

func (d Datatype) IsHexBinary() bool {
	return d == HexBinary
}

func (d Datatype) IsJSON() bool {
	return d == RDFJSON
}

// IsVariableWidth reports whether values of this datatype are encoded as
// varint(byteLen) || bytes on the wire.
func (d Datatype) IsVariableWidth() bool {
	_, fixed := d.FixedWidth()
	return !fixed
}
