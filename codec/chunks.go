package codec

import "io"

// FuncSink adapts a plain function to ChunkSink.
type FuncSink func(chunk []byte) error

func (f FuncSink) Emit(chunk []byte) error { return f(chunk) }

// SliceSink accumulates every emitted chunk in order. Used by export's
// in-memory callers and by tests asserting byte-identical round-trips.
type SliceSink struct {
	Chunks [][]byte
}

func (s *SliceSink) Emit(chunk []byte) error {
	s.Chunks = append(s.Chunks, chunk)
	return nil
}

// Bytes concatenates every chunk emitted so far.
func (s *SliceSink) Bytes() []byte {
	var n int
	for _, c := range s.Chunks {
		n += len(c)
	}
	out := make([]byte, 0, n)
	for _, c := range s.Chunks {
		out = append(out, c...)
	}
	return out
}

// SliceSource replays a pre-split list of chunks, the shape import takes
// when a whole instance is already buffered. Chunking invariance (spec.md
// §8 property 3) is exercised by constructing a SliceSource from the same
// bytes split at different boundaries.
type SliceSource struct {
	chunks [][]byte
	pos    int
}

func NewSliceSource(chunks [][]byte) *SliceSource {
	return &SliceSource{chunks: chunks}
}

func (s *SliceSource) Next() ([]byte, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.pos]
	s.pos++
	return c, nil
}

// ReaderSource pulls fixed-size chunks from an io.Reader, the shape a
// file- or socket-backed import takes.
type ReaderSource struct {
	r         io.Reader
	chunkSize int
}

func NewReaderSource(r io.Reader, chunkSize int) *ReaderSource {
	return &ReaderSource{r: r, chunkSize: chunkSize}
}

func (s *ReaderSource) Next() ([]byte, error) {
	buf := make([]byte, s.chunkSize)
	n, err := s.r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}
