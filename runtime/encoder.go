package cbor

import (
	"math/big"
)

// EncodeOptions carries the two encode-side feature-negotiation flags of
// spec §4.5. Defaults favor interoperability: named (string) keys and the
// standard one-element-map enum shape.
type EncodeOptions struct {
	Packed    bool
	EnumAsMap bool
}

// DefaultEncodeOptions returns the spec-mandated defaults.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Packed: false, EnumAsMap: true}
}

// Encoder drives a Write through the CBOR grammar (component E). Each
// Encode/Begin call writes exactly the bytes for one head or one
// complete scalar; callers compose arrays, maps, and tags by issuing a
// Begin call followed by the right number of element/pair encodes and,
// for indefinite-length containers, an explicit End.
type Encoder struct {
	w    Write
	opts EncodeOptions
}

// NewEncoder constructs an Encoder over an arbitrary Write.
func NewEncoder(w Write) *Encoder {
	return &Encoder{w: w, opts: DefaultEncodeOptions()}
}

// WithPacked toggles emitting struct/enum keys as integer indices rather
// than field names.
func (e *Encoder) WithPacked(v bool) *Encoder { e.opts.Packed = v; return e }

// WithEnumAsMap toggles the standard one-element-map enum shape versus
// the legacy array-prefixed shape.
func (e *Encoder) WithEnumAsMap(v bool) *Encoder { e.opts.EnumAsMap = v; return e }

// Options reports the encoder's current feature negotiation.
func (e *Encoder) Options() EncodeOptions { return e.opts }

func (e *Encoder) writeHead(major Major, u uint64) error {
	var buf [9]byte
	return e.w.WriteAll(appendUintCore(buf[:0], major, u))
}

// EncodeUint64 writes an unsigned integer using CBOR's minimal-length
// encoding (spec §4.4).
func (e *Encoder) EncodeUint64(u uint64) error { return e.writeHead(MajorUint, u) }

// EncodeInt64 writes a signed integer, choosing major 0 or 1 by sign.
func (e *Encoder) EncodeInt64(i int64) error {
	if i >= 0 {
		return e.writeHead(MajorUint, uint64(i))
	}
	return e.writeHead(MajorNegInt, uint64(-1-i))
}

// EncodeBigInt writes an arbitrary-precision integer. Magnitudes within
// int64/uint64 range use the ordinary minimal-length path; magnitudes up
// to the full major-1 extended range (-2^64 .. -1 via the -1-n payload
// transform, or up to 2^64-1 unsigned) are still representable. Anything
// beyond that returns ErrMessageOverflow, since CBOR's base integer
// majors have no wider payload than a u64 follow-on.
func (e *Encoder) EncodeBigInt(v *big.Int) error {
	if v.IsInt64() {
		return e.EncodeInt64(v.Int64())
	}
	if v.IsUint64() {
		return e.EncodeUint64(v.Uint64())
	}
	if v.Sign() >= 0 {
		if v.BitLen() > 64 {
			return ErrMessageOverflow
		}
		return e.EncodeUint64(v.Uint64())
	}
	// v < -2^63-1: compute u = -1 - v, which is positive since v is negative.
	u := new(big.Int).Sub(big.NewInt(-1), v)
	if !u.IsUint64() {
		return ErrMessageOverflow
	}
	return e.writeHead(MajorNegInt, u.Uint64())
}

// EncodeFloat64 writes f using the narrowest of {half, single, double}
// precision that represents it exactly, per spec §4.4.
func (e *Encoder) EncodeFloat64(f float64) error {
	width, bits := narrowestFloat(f)
	var buf [9]byte
	switch width {
	case 2:
		out := append(buf[:0], makeHead(MajorSimple, simpleFloat16), byte(bits>>8), byte(bits))
		return e.w.WriteAll(out)
	case 4:
		out := append(buf[:0], makeHead(MajorSimple, simpleFloat32))
		out = append(out, byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
		return e.w.WriteAll(out)
	default:
		out := append(buf[:0], makeHead(MajorSimple, simpleFloat64))
		for shift := 56; shift >= 0; shift -= 8 {
			out = append(out, byte(bits>>uint(shift)))
		}
		return e.w.WriteAll(out)
	}
}

// EncodeBool writes a CBOR boolean simple value.
func (e *Encoder) EncodeBool(v bool) error {
	ai := uint8(simpleFalse)
	if v {
		ai = simpleTrue
	}
	return e.w.WriteAll([]byte{makeHead(MajorSimple, ai)})
}

// EncodeNull writes the null simple value (0xf6).
func (e *Encoder) EncodeNull() error {
	return e.w.WriteAll([]byte{makeHead(MajorSimple, simpleNull)})
}

// EncodeUndefined writes the undefined simple value (0xf7).
func (e *Encoder) EncodeUndefined() error {
	return e.w.WriteAll([]byte{makeHead(MajorSimple, simpleUndefined)})
}

// EncodeBytes writes a definite-length byte string.
func (e *Encoder) EncodeBytes(b []byte) error {
	if err := e.writeHead(MajorBytes, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return e.w.WriteAll(b)
}

// EncodeString writes a definite-length UTF-8 text string.
func (e *Encoder) EncodeString(s string) error {
	if err := e.writeHead(MajorText, uint64(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return e.w.WriteAll(UnsafeBytes(s))
}

// EncodeArrayLen writes a definite-length array head; the caller must
// follow with exactly n element encodes.
func (e *Encoder) EncodeArrayLen(n int) error { return e.writeHead(MajorArray, uint64(n)) }

// EncodeMapLen writes a definite-length map head; the caller must follow
// with exactly n key/value encode pairs.
func (e *Encoder) EncodeMapLen(n int) error { return e.writeHead(MajorMap, uint64(n)) }

// BeginIndefiniteArray writes an indefinite-length array head; the caller
// follows with any number of element encodes, then End.
func (e *Encoder) BeginIndefiniteArray() error {
	var buf [1]byte
	return e.w.WriteAll(appendIndefiniteHead(buf[:0], MajorArray))
}

// BeginIndefiniteMap writes an indefinite-length map head.
func (e *Encoder) BeginIndefiniteMap() error {
	var buf [1]byte
	return e.w.WriteAll(appendIndefiniteHead(buf[:0], MajorMap))
}

// BeginIndefiniteBytes writes an indefinite-length byte-string head; the
// caller follows with any number of definite-length byte chunks, then End.
func (e *Encoder) BeginIndefiniteBytes() error {
	var buf [1]byte
	return e.w.WriteAll(appendIndefiniteHead(buf[:0], MajorBytes))
}

// BeginIndefiniteText writes an indefinite-length text-string head.
func (e *Encoder) BeginIndefiniteText() error {
	var buf [1]byte
	return e.w.WriteAll(appendIndefiniteHead(buf[:0], MajorText))
}

// End writes the stop byte (0xff) closing an indefinite-length container
// opened by one of the Begin methods.
func (e *Encoder) End() error {
	var buf [1]byte
	return e.w.WriteAll(appendBreak(buf[:0]))
}

// EncodeTag writes a semantic tag head; the caller must follow with
// exactly one nested value encode.
func (e *Encoder) EncodeTag(tag uint64) error { return e.writeHead(MajorTag, tag) }

// EncodeSelfDescribe writes the self-describing CBOR preamble (tag 55799,
// RFC 8949 §3.4.6); the caller must follow with exactly one value encode.
func (e *Encoder) EncodeSelfDescribe() error { return e.EncodeTag(SelfDescribeTag) }
