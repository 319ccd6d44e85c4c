package cbor

import (
	"errors"
	"io"
)

// Lifetime classifies the storage backing a slice handed back by a Read
// implementation, per spec §3.3: Borrowed slices alias the caller's own
// input and remain valid for as long as the caller keeps that input
// around; Transient slices alias an internal scratch buffer and are only
// valid until the next call into the same Read.
type Lifetime uint8

const (
	// Transient indicates the returned slice aliases scratch state owned
	// by the Read and will be overwritten by the next read.
	Transient Lifetime = iota
	// Borrowed indicates the returned slice aliases the original input
	// and survives at least as long as that input does.
	Borrowed
)

// errShortRead is the internal short-input signal from a Read
// implementation; Decoder converts it into a context-appropriate
// DecodeError (EofWhileParsingValue/Array/Map/String) at the call site,
// since only the caller knows which container it was reading.
var errShortRead = errors.New("cbor: short read")

// Read is the byte-source abstraction every decode path is built on
// (component A). Four providers satisfy it: a slice source (Borrowed,
// except that indefinite-length strings are reassembled into internal
// scratch and reported Transient), a mutable-slice source (always
// Borrowed, via in-place splicing of indefinite chunks), a stream source
// (always Transient), and a fixed-scratch source (like the slice source,
// reassembling into caller-owned scratch). This is what lets one decoder
// core serve zero-copy,
// in-place, and streaming consumers uniformly.
type Read interface {
	// Peek returns the next byte without consuming it. ok is false at EOF.
	Peek() (b byte, ok bool, err error)
	// Next consumes and returns the next byte. ok is false at EOF.
	Next() (b byte, ok bool, err error)
	// Discard consumes the byte last returned by Peek.
	Discard()
	// ReadExact returns exactly n contiguous bytes, advancing past them.
	ReadExact(n int) (Lifetime, []byte, error)
	// ReadInto copies len(dst) bytes into dst, advancing past them.
	ReadInto(dst []byte) error
	// ClearBuffer resets the scratch accumulation region (used to
	// reassemble indefinite-length byte/text strings).
	ClearBuffer()
	// ReadToBuffer appends the next n bytes of input to the scratch
	// accumulation region.
	ReadToBuffer(n int) error
	// TakeBuffer returns the accumulated scratch region.
	TakeBuffer() ([]byte, Lifetime)
	// Offset returns the cumulative byte position, for error reporting.
	Offset() int64
}

// SliceSource reads from an immutable byte slice. Immediate reads borrow
// directly from the input; indefinite-string reassembly copies into an
// internal, reused scratch vector (so those reads are Transient).
type SliceSource struct {
	buf     []byte
	pos     int64
	scratch []byte
}

// NewSliceSource constructs a Read over an immutable slice.
func NewSliceSource(b []byte) *SliceSource { return &SliceSource{buf: b} }

func (s *SliceSource) Peek() (byte, bool, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, false, nil
	}
	return s.buf[s.pos], true, nil
}

func (s *SliceSource) Next() (byte, bool, error) {
	b, ok, err := s.Peek()
	if ok {
		s.pos++
	}
	return b, ok, err
}

func (s *SliceSource) Discard() { s.pos++ }

func (s *SliceSource) ReadExact(n int) (Lifetime, []byte, error) {
	if n < 0 || s.pos+int64(n) > int64(len(s.buf)) {
		return Borrowed, nil, errShortRead
	}
	out := s.buf[s.pos : s.pos+int64(n)]
	s.pos += int64(n)
	return Borrowed, out, nil
}

func (s *SliceSource) ReadInto(dst []byte) error {
	_, b, err := s.ReadExact(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

func (s *SliceSource) ClearBuffer() { s.scratch = s.scratch[:0] }

func (s *SliceSource) ReadToBuffer(n int) error {
	_, b, err := s.ReadExact(n)
	if err != nil {
		return err
	}
	s.scratch = append(s.scratch, b...)
	return nil
}

func (s *SliceSource) TakeBuffer() ([]byte, Lifetime) { return s.scratch, Transient }

func (s *SliceSource) Offset() int64 { return s.pos }

// MutSliceSource reads from a mutable byte slice. It reassembles
// indefinite-length strings in place by splicing later chunks backward
// over already-consumed header bytes, so TakeBuffer can hand back a
// Borrowed, contiguous slice of the original backing array even for
// indefinite input (unlike SliceSource, which must copy).
type MutSliceSource struct {
	buf      []byte
	pos      int64
	accStart int64
	accWrite int64
}

// NewMutSliceSource constructs a Read over a mutable slice.
func NewMutSliceSource(b []byte) *MutSliceSource { return &MutSliceSource{buf: b} }

func (s *MutSliceSource) Peek() (byte, bool, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, false, nil
	}
	return s.buf[s.pos], true, nil
}

func (s *MutSliceSource) Next() (byte, bool, error) {
	b, ok, err := s.Peek()
	if ok {
		s.pos++
	}
	return b, ok, err
}

func (s *MutSliceSource) Discard() { s.pos++ }

func (s *MutSliceSource) ReadExact(n int) (Lifetime, []byte, error) {
	if n < 0 || s.pos+int64(n) > int64(len(s.buf)) {
		return Borrowed, nil, errShortRead
	}
	out := s.buf[s.pos : s.pos+int64(n)]
	s.pos += int64(n)
	return Borrowed, out, nil
}

func (s *MutSliceSource) ReadInto(dst []byte) error {
	_, b, err := s.ReadExact(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

func (s *MutSliceSource) ClearBuffer() {
	s.accStart = s.pos
	s.accWrite = s.pos
}

func (s *MutSliceSource) ReadToBuffer(n int) error {
	if n < 0 || s.pos+int64(n) > int64(len(s.buf)) {
		return errShortRead
	}
	// Splice the chunk backward over the already-consumed header bytes.
	// copy() uses memmove semantics so this is safe even though the
	// source and destination regions of buf can overlap.
	copy(s.buf[s.accWrite:], s.buf[s.pos:s.pos+int64(n)])
	s.accWrite += int64(n)
	s.pos += int64(n)
	return nil
}

func (s *MutSliceSource) TakeBuffer() ([]byte, Lifetime) {
	return s.buf[s.accStart:s.accWrite], Borrowed
}

func (s *MutSliceSource) Offset() int64 { return s.pos }

// StreamSource reads from an io.Reader. Every read copies into an
// internal scratch buffer, so all returned slices are Transient: valid
// only until the next call.
type StreamSource struct {
	r       io.Reader
	offset  int64
	peeked  byte
	hasPeek bool
	one     []byte
	acc     []byte
	accLen  int
}

// NewStreamSource constructs a Read over an io.Reader.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r, one: make([]byte, 1)}
}

func (s *StreamSource) fillPeek() error {
	if s.hasPeek {
		return nil
	}
	n, err := io.ReadFull(s.r, s.one)
	if n == 1 {
		s.peeked = s.one[0]
		s.hasPeek = true
		return nil
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil
	}
	return err
}

func (s *StreamSource) Peek() (byte, bool, error) {
	if err := s.fillPeek(); err != nil {
		return 0, false, err
	}
	return s.peeked, s.hasPeek, nil
}

func (s *StreamSource) Next() (byte, bool, error) {
	b, ok, err := s.Peek()
	if ok {
		s.hasPeek = false
		s.offset++
	}
	return b, ok, err
}

func (s *StreamSource) Discard() {
	s.hasPeek = false
	s.offset++
}

func (s *StreamSource) ReadExact(n int) (Lifetime, []byte, error) {
	if n == 0 {
		return Transient, nil, nil
	}
	buf := make([]byte, n)
	if err := s.ReadInto(buf); err != nil {
		return Transient, nil, err
	}
	return Transient, buf, nil
}

func (s *StreamSource) ReadInto(dst []byte) error {
	i := 0
	if s.hasPeek {
		dst[0] = s.peeked
		s.hasPeek = false
		i = 1
	}
	if i < len(dst) {
		n, err := io.ReadFull(s.r, dst[i:])
		s.offset += int64(n)
		if err != nil {
			return errShortRead
		}
	}
	s.offset += int64(i)
	return nil
}

func (s *StreamSource) ClearBuffer() { s.accLen = 0 }

func (s *StreamSource) ReadToBuffer(n int) error {
	if cap(s.acc)-s.accLen < n {
		grown := make([]byte, s.accLen, s.accLen+n)
		copy(grown, s.acc[:s.accLen])
		s.acc = grown
	}
	s.acc = s.acc[:s.accLen+n]
	if err := s.ReadInto(s.acc[s.accLen : s.accLen+n]); err != nil {
		s.acc = s.acc[:s.accLen]
		return err
	}
	s.accLen += n
	return nil
}

func (s *StreamSource) TakeBuffer() ([]byte, Lifetime) { return s.acc[:s.accLen], Transient }

func (s *StreamSource) Offset() int64 { return s.offset }

// ErrScratchFull names the condition of a full caller-supplied scratch
// buffer. FixedScratchSource does not return this value: when
// reassembling an indefinite-length string would overrun its scratch
// buffer it returns a DecodeError of kind KindLengthOutOfRange at the
// current offset.
var ErrScratchFull = errors.New("cbor: fixed scratch buffer is full")

// FixedScratchSource reads from an immutable slice like SliceSource, but
// reassembles indefinite-length strings into a caller-owned,
// fixed-capacity scratch buffer instead of an internally-grown one —
// predictable allocation behavior for callers that want none at all on
// the decode hot path.
type FixedScratchSource struct {
	buf      []byte
	pos      int64
	scratch  []byte
	scratchN int
}

func newFixedScratchSource(buf, scratch []byte) *FixedScratchSource {
	return &FixedScratchSource{buf: buf, scratch: scratch}
}

func (s *FixedScratchSource) Peek() (byte, bool, error) {
	if s.pos >= int64(len(s.buf)) {
		return 0, false, nil
	}
	return s.buf[s.pos], true, nil
}

func (s *FixedScratchSource) Next() (byte, bool, error) {
	b, ok, err := s.Peek()
	if ok {
		s.pos++
	}
	return b, ok, err
}

func (s *FixedScratchSource) Discard() { s.pos++ }

func (s *FixedScratchSource) ReadExact(n int) (Lifetime, []byte, error) {
	if n < 0 || s.pos+int64(n) > int64(len(s.buf)) {
		return Borrowed, nil, errShortRead
	}
	out := s.buf[s.pos : s.pos+int64(n)]
	s.pos += int64(n)
	return Borrowed, out, nil
}

func (s *FixedScratchSource) ReadInto(dst []byte) error {
	_, b, err := s.ReadExact(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

func (s *FixedScratchSource) ClearBuffer() { s.scratchN = 0 }

func (s *FixedScratchSource) ReadToBuffer(n int) error {
	if s.scratchN+n > len(s.scratch) {
		return newErr(KindLengthOutOfRange, s.pos)
	}
	_, b, err := s.ReadExact(n)
	if err != nil {
		return err
	}
	s.scratchN += copy(s.scratch[s.scratchN:], b)
	return nil
}

func (s *FixedScratchSource) TakeBuffer() ([]byte, Lifetime) {
	return s.scratch[:s.scratchN], Transient
}

func (s *FixedScratchSource) Offset() int64 { return s.pos }
