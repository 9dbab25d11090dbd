// Package codec implements the streaming codec of spec.md §4.3: a pull
// decoder over an asynchronous chunk stream exposing unsigned-varint
// reads and byte-range scans without allocating per chunk, and a push
// encoder emitting a chunk stream of a configured size. It knows nothing
// about tasl types or values — the schema-directed walk that decides
// *how many* bytes make up one value lives in package shred, one layer
// up, per the source's own module boundary (spec.md §2 component 3 vs 4).
//
// Ported from the source's coroutine-suspended generator as an explicit
// pull state machine (spec.md §9), since Go has no lightweight coroutine
// runtime to imitate one with.
package codec

import (
	"io"

	"github.com/taslite/taslite/tasl"
)

// ChunkSource supplies the next chunk of an instance's byte stream.
// Next returns io.EOF once the stream is exhausted. A zero-length chunk
// aborts decoding with a DecodeErr; any other error from Next is returned
// to the caller unchanged.
type ChunkSource interface {
	Next() ([]byte, error)
}

// Decoder is a pull decoder over a ChunkSource. It retains only the
// chunks spanning the current, not-yet-flushed byte range; Flush drops
// everything before the current read position.
type Decoder struct {
	src ChunkSource

	chunks   [][]byte // chunks overlapping [start, end)
	endIdx   int      // index into chunks the end cursor is positioned in
	endOff   int      // byte offset within chunks[endIdx]
	startOff int      // byte offset within chunks[0] where the live range begins

	byteLength int // bytes currently spanned by [start, end)
	eof        bool
}

func NewDecoder(src ChunkSource) *Decoder {
	return &Decoder{src: src}
}

// ByteLength returns the number of bytes currently buffered between the
// start and end cursors (i.e. read but not yet flushed).
func (d *Decoder) ByteLength() int { return d.byteLength }

// nextByte returns the byte at the end cursor and advances it by one,
// pulling additional chunks from the source as needed.
func (d *Decoder) nextByte() (byte, error) {
	for {
		if d.endIdx < len(d.chunks) && d.endOff < len(d.chunks[d.endIdx]) {
			b := d.chunks[d.endIdx][d.endOff]
			d.endOff++
			d.byteLength++
			return b, nil
		}
		if d.endIdx < len(d.chunks)-1 {
			d.endIdx++
			d.endOff = 0
			continue
		}
		if d.eof {
			return 0, io.EOF
		}
		chunk, err := d.src.Next()
		if err != nil {
			if err == io.EOF {
				d.eof = true
			}
			return 0, err
		}
		if len(chunk) == 0 {
			return 0, tasl.NewDecodeErr("zero-length chunk from chunk source")
		}
		d.chunks = append(d.chunks, chunk)
	}
}

// ReadVarint reads one LEB128 unsigned varint, advancing the end cursor
// but not flushing. It fails once the encoding needs more than 10
// continuation groups (70 encoded bits), the most a 64-bit value can
// need — see SPEC_FULL.md's note on lifting the original's 53-bit
// safe-integer ceiling.
func (d *Decoder) ReadVarint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := d.nextByte()
		if err != nil {
			if err == io.EOF {
				return 0, tasl.NewDecodeErr("unexpected end of stream while reading varint")
			}
			return 0, err
		}
		if shift >= 63 && b > 1 {
			return 0, tasl.NewDecodeErr("varint exceeds 64 bits")
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, tasl.NewDecodeErr("varint exceeds maximum length")
		}
	}
}

// Skip advances the end cursor by n bytes without collecting them.
func (d *Decoder) Skip(n int) error {
	for i := 0; i < n; i++ {
		if _, err := d.nextByte(); err != nil {
			if err == io.EOF {
				return tasl.NewDecodeErr("unexpected end of stream while skipping %d bytes", n)
			}
			return err
		}
	}
	return nil
}

// Collect allocates a fresh contiguous buffer spanning [start, end) and
// copies the live range into it, without discarding any chunk.
func (d *Decoder) Collect() []byte {
	out := make([]byte, 0, d.byteLength)
	for i := 0; i <= d.endIdx && i < len(d.chunks); i++ {
		chunk := d.chunks[i]
		lo := 0
		if i == 0 {
			lo = d.startOff
		}
		hi := len(chunk)
		if i == d.endIdx {
			hi = d.endOff
		}
		if lo < hi {
			out = append(out, chunk[lo:hi]...)
		}
	}
	return out
}

// Flush discards fully-consumed chunks and rebases the start cursor to
// the end cursor, so the next read starts a fresh live range.
func (d *Decoder) Flush() {
	if d.endIdx >= len(d.chunks) {
		d.chunks = nil
	} else {
		d.chunks = d.chunks[d.endIdx:]
	}
	d.endIdx = 0
	d.startOff = d.endOff
	d.byteLength = 0
	if len(d.chunks) == 0 {
		d.endOff = 0
		d.startOff = 0
	}
}

// HasMore reports whether the source has any further bytes, without
// consuming one. It is used by import to enforce "stream not closed when
// expected" (spec.md §4.5/§7): after reading every class's rows, the
// stream must be exhausted.
func (d *Decoder) HasMore() (bool, error) {
	if d.endIdx < len(d.chunks) && d.endOff < len(d.chunks[d.endIdx]) {
		return true, nil
	}
	_, err := d.nextByte()
	if err == nil {
		// Consumed a byte just to check: rewind isn't supported, so the
		// byte we peeked belongs to the next read. Since nextByte always
		// advances endOff/byteLength, undo that single-byte advance.
		d.rewindOneByte()
		return true, nil
	}
	if err == io.EOF {
		return false, nil
	}
	return false, err
}

// rewindOneByte undoes the single-byte advance nextByte just made. Since
// nextByte always leaves endOff >= 1 in whatever chunk it read from (it
// increments endOff immediately after indexing it), this is always a
// same-chunk decrement.
func (d *Decoder) rewindOneByte() {
	d.byteLength--
	d.endOff--
}

// DecodeVarint reads one varint and flushes, the composite operation
// spec.md §4.3 defines for reading standalone counts (element counts,
// id deltas) between values.
func (d *Decoder) DecodeVarint() (uint64, error) {
	v, err := d.ReadVarint()
	if err != nil {
		return 0, err
	}
	d.Flush()
	return v, nil
}
