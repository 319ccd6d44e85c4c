// Package cbor implements the RFC 7049 / RFC 8949 Concise Binary Object
// Representation wire format: a decoder and encoder state machine driven by
// an abstract value-visitor, with zero-copy borrowing from slice sources,
// indefinite-length streaming, semantic tag passthrough, bounded recursion,
// and a negotiated compatibility matrix for struct-key and enum wire shapes.
//
// Most callers only need Marshal and Unmarshal. Callers that need to drive
// the state machine directly (custom MarshalCBOR/UnmarshalCBOR methods, or
// the code cborgen generates) use Encoder and Decoder.
package cbor

// Major is one of the 8 CBOR major types, carried in the top 3 bits of the
// initial byte of every item.
type Major uint8

const (
	MajorUint   Major = 0 // unsigned integer
	MajorNegInt Major = 1 // negative integer
	MajorBytes  Major = 2 // byte string
	MajorText   Major = 3 // text string (UTF-8)
	MajorArray  Major = 4 // array
	MajorMap    Major = 5 // map
	MajorTag    Major = 6 // semantic tag
	MajorSimple Major = 7 // float, simple value, break
)

func (m Major) String() string {
	switch m {
	case MajorUint:
		return "uint"
	case MajorNegInt:
		return "negint"
	case MajorBytes:
		return "bytes"
	case MajorText:
		return "text"
	case MajorArray:
		return "array"
	case MajorMap:
		return "map"
	case MajorTag:
		return "tag"
	case MajorSimple:
		return "simple"
	default:
		return "invalid"
	}
}

// Additional-information (low 5 bits of the initial byte) values with
// special meaning; 0-23 encode their value directly.
const (
	aiDirectMax  = 23 // largest value encoded directly in the AI field
	aiUint8      = 24 // 1-byte big-endian follow-on
	aiUint16     = 25 // 2-byte big-endian follow-on
	aiUint32     = 26 // 4-byte big-endian follow-on
	aiUint64     = 27 // 8-byte big-endian follow-on
	aiReservedLo = 28
	aiReservedHi = 30
	aiIndefinite = 31 // indefinite length (major 2-5) or break/simple (major 7)
)

// Major-7 simple values.
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	simpleBreak     = 31
)

// SelfDescribeTag is CBOR tag 55799, RFC 8949 §3.4.6: a self-describing
// preamble an encoder may prepend and a decoder must accept (but never
// require) as an ordinary tag.
const SelfDescribeTag = 55799

// DefaultRecursionLimit bounds decoder nesting across majors 4 (array),
// 5 (map), and 6 (tag): exceeding it is a decode error rather than a stack
// overflow on adversarial input.
const DefaultRecursionLimit = 128

// float16/float32 bit-layout constants, used by number.go for lossless
// float16<->float64 conversion. Implemented in-package rather than via
// x448/float16: that package is a transitive dependency of fxamacker/cbor
// in the teacher's go.mod, never imported by the teacher's own code, which
// inlines the same bit manipulation directly (see teacher's consts.go).
const (
	float16ExpBits  = 5
	float16MantBits = 10
	float16Bias     = 15

	float32ExpBits  = 8
	float32MantBits = 23
	float32Bias     = 127
)

func makeHead(major Major, ai uint8) byte {
	return byte(uint8(major)<<5) | ai
}

func splitHead(b byte) (Major, uint8) {
	return Major(b >> 5), b & 0x1f
}
