package cbor

import (
	"io"
	"sync"
)

// ByteBuffer is the pooled, growable buffer backing encode output (VecSink,
// Marshal, AppendValue) and DiagBytes rendering.
//
// The decode-side byte sources do not use it: they reassemble
// indefinite-length strings in their own scratch slices, or in place in
// the input for the mutable-slice source. Reuse across calls is what keeps
// encoding cheap, so callers must not retain a buffer's Bytes() past the
// next Reset()/PutByteBuffer call on that same buffer.
type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 1024)} }}

// GetByteBuffer obtains a pooled ByteBuffer. The buffer is Reset() before
// being returned so length is zero (capacity may be reused).
func GetByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// GetMinSize obtains a pooled ByteBuffer with capacity for at least size bytes.
// The buffer is Reset() and then grown if needed.
func GetMinSize(size int) *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	if size > 0 {
		bb.Ensure(size)
	}
	return bb
}

// PutByteBuffer returns the buffer to the pool after resetting its length
// to zero. Any slice previously obtained from Bytes() must not be used
// after this call.
func PutByteBuffer(bb *ByteBuffer) { bb.Reset(); bbPool.Put(bb) }

// bufferPool is the named public handle onto the package's shared
// sync.Pool of encode buffers, grounded in the teacher's unexported
// package-level bbPool.
type bufferPool struct{}

// GetBuffer obtains a pooled, empty ByteBuffer.
func (bufferPool) GetBuffer() *ByteBuffer { return GetByteBuffer() }

// PutBuffer returns a ByteBuffer to the pool.
func (bufferPool) PutBuffer(bb *ByteBuffer) { PutByteBuffer(bb) }

// Pool is the public encode-buffer pool (spec §7 external interface).
var Pool bufferPool

// Bytes returns the underlying bytes.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// Len returns length.
func (bb *ByteBuffer) Len() int { return len(bb.b) }

// Cap returns capacity.
func (bb *ByteBuffer) Cap() int { return cap(bb.b) }

// Reset resets the length to zero; capacity is unchanged.
func (bb *ByteBuffer) Reset() { bb.b = bb.b[:0] }

// Ensure ensures there is room for at least n more bytes without reallocation.
// If needed, it grows the underlying slice.
func (bb *ByteBuffer) Ensure(n int) {
	need := len(bb.b) + n
	if cap(bb.b) >= need {
		return
	}
	c := cap(bb.b)
	if c == 0 {
		c = 1024
	}
	for c < need {
		c <<= 1
	}
	nb := make([]byte, len(bb.b), c)
	copy(nb, bb.b)
	bb.b = nb
}

// Extend grows the buffer by n bytes and returns a slice to the newly
// appended region for direct writes. The buffer length is advanced by n.
func (bb *ByteBuffer) Extend(n int) []byte {
	old := len(bb.b)
	bb.Ensure(n)
	bb.b = bb.b[:old+n]
	return bb.b[old:]
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.Ensure(len(p))
	bb.b = append(bb.b, p...)
	return len(p), nil
}

// WriteString appends a string.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.Ensure(len(s))
	bb.b = append(bb.b, s...)
	return len(s), nil
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.Ensure(1)
	bb.b = append(bb.b, c)
	return nil
}

// ReadFrom implements io.ReaderFrom for efficient streaming into the buffer.
func (bb *ByteBuffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if cap(bb.b)-len(bb.b) < 32*1024 {
			bb.Ensure(32 * 1024)
		}
		n, err := r.Read(bb.b[len(bb.b):cap(bb.b)])
		if n > 0 {
			bb.b = bb.b[:len(bb.b)+n]
			total += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
	}
}

// CBOR item appenders on ByteBuffer, mirroring the teacher's
// AppendMapHeader/AppendArrayHeader/... convenience wrappers: each
// delegates to the package-level AppendXxx primitive in primitives.go,
// adjusted to this codec's int-sized header counts rather than the
// teacher's msgp-era uint32. Indefinite-length headers and the break stop
// code have no package-level AppendXxx counterpart here (they are only
// reachable through Encoder.BeginIndefiniteArray/Map/Bytes/Text, which
// write through the sink directly) so they are not wrapped here.
func (bb *ByteBuffer) AppendMapHeader(n int) *ByteBuffer {
	bb.b = AppendMapHeader(bb.b, n)
	return bb
}

func (bb *ByteBuffer) AppendArrayHeader(n int) *ByteBuffer {
	bb.b = AppendArrayHeader(bb.b, n)
	return bb
}

func (bb *ByteBuffer) AppendString(s string) *ByteBuffer {
	bb.b = AppendString(bb.b, s)
	return bb
}

func (bb *ByteBuffer) AppendBytes(v []byte) *ByteBuffer {
	bb.b = AppendBytes(bb.b, v)
	return bb
}

func (bb *ByteBuffer) AppendInt64(i int64) *ByteBuffer {
	bb.b = AppendInt64(bb.b, i)
	return bb
}

func (bb *ByteBuffer) AppendUint64(u uint64) *ByteBuffer {
	bb.b = AppendUint64(bb.b, u)
	return bb
}

func (bb *ByteBuffer) AppendBool(v bool) *ByteBuffer {
	bb.b = AppendBool(bb.b, v)
	return bb
}

func (bb *ByteBuffer) AppendFloat64(f float64) *ByteBuffer {
	bb.b = AppendFloat64(bb.b, f)
	return bb
}

func (bb *ByteBuffer) AppendFloat32(f float32) *ByteBuffer {
	bb.b = AppendFloat32(bb.b, f)
	return bb
}

func (bb *ByteBuffer) AppendTag(tag uint64) *ByteBuffer {
	bb.b = AppendTag(bb.b, tag)
	return bb
}

func (bb *ByteBuffer) AppendNull() *ByteBuffer {
	bb.b = AppendNull(bb.b)
	return bb
}
