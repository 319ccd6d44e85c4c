package cbor

import (
	"errors"
	"io"
)

// ErrSinkFull is returned by SliceSink when an encode would overrun the
// caller-supplied fixed buffer.
var ErrSinkFull = errors.New("cbor: fixed-size sink is full")

// Write is the byte-sink abstraction the encoder writes through
// (component B). Three providers satisfy it: an owned, growable byte
// vector; a caller-owned fixed-capacity slice; and an io.Writer.
type Write interface {
	WriteAll(p []byte) error
}

// VecSink appends to an owned, growable []byte, mirroring the teacher's
// ByteBuffer growth strategy (exponential doubling from a 1KiB floor).
type VecSink struct{ bb *ByteBuffer }

// NewVecSink constructs a Write backed by a fresh, owned buffer.
func NewVecSink() *VecSink { return &VecSink{bb: GetByteBuffer()} }

// NewVecSinkWithCapacity constructs a Write with room for at least n
// bytes reserved up front.
func NewVecSinkWithCapacity(n int) *VecSink { return &VecSink{bb: GetMinSize(n)} }

// NewVecSinkFromBuffer constructs a Write over a caller-owned ByteBuffer,
// for callers (Marshal, EncodeToVec) that want to read the bytes back out
// and return the buffer to the pool themselves rather than via Release.
func NewVecSinkFromBuffer(bb *ByteBuffer) *VecSink { return &VecSink{bb: bb} }

func (v *VecSink) WriteAll(p []byte) error {
	_, err := v.bb.Write(p)
	return err
}

// Bytes returns the bytes written so far.
func (v *VecSink) Bytes() []byte { return v.bb.Bytes() }

// Release returns the backing buffer to the shared pool. Callers that
// need the bytes to outlive this call must copy them first.
func (v *VecSink) Release() { PutByteBuffer(v.bb) }

// SliceSink writes into a caller-owned, fixed-capacity slice and never
// allocates; it fails with ErrSinkFull rather than growing.
type SliceSink struct {
	buf []byte
	n   int
}

// NewSliceSink constructs a Write over a fixed-capacity buffer.
func NewSliceSink(buf []byte) *SliceSink { return &SliceSink{buf: buf} }

func (s *SliceSink) WriteAll(p []byte) error {
	if len(p) > len(s.buf)-s.n {
		return ErrSinkFull
	}
	s.n += copy(s.buf[s.n:], p)
	return nil
}

// Bytes returns the portion of the buffer written so far.
func (s *SliceSink) Bytes() []byte { return s.buf[:s.n] }

// StreamSink writes through to an io.Writer with no intermediate buffering.
type StreamSink struct{ w io.Writer }

// NewStreamSink constructs a Write over an io.Writer.
func NewStreamSink(w io.Writer) *StreamSink { return &StreamSink{w: w} }

func (s *StreamSink) WriteAll(p []byte) error {
	_, err := s.w.Write(p)
	return err
}
