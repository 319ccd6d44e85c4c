package cbor

import (
	"encoding/json"
	"reflect"
	"sort"
	"time"
)

// Size constants are worst-case byte budgets for a Msgsize style
// capacity hint, mirroring the teacher's per-type Msgsize constants
// (msgp convention) adapted to CBOR's head encoding. Each covers the
// widest possible head (9 bytes) plus payload where fixed.
const (
	BoolSize    = 1
	Uint8Size   = 2
	Uint16Size  = 3
	Uint32Size  = 5
	Uint64Size  = 9
	Int8Size    = 2
	Int16Size   = 3
	Int32Size   = 5
	Int64Size   = 9
	IntSize     = Int64Size
	UintSize    = Uint64Size
	Float32Size = 5
	Float64Size = 9

	// StringPrefixSize and BytesPrefixSize bound the head only; callers
	// add len(value) themselves since the payload length is data-dependent.
	StringPrefixSize = 9
	BytesPrefixSize  = 9
	ArrayHeaderSize  = 9
	MapHeaderSize    = 9

	// TimeSize and DurationSize bound the tag head plus the widest
	// payload encoding used by AppendTime/AppendDuration.
	TimeSize     = 1 + Uint64Size + Float64Size
	DurationSize = Int64Size
)

// AppendStringSlice appends a CBOR array of text strings.
func AppendStringSlice(b []byte, v []string) []byte {
	b = AppendArrayHeader(b, len(v))
	for _, s := range v {
		b = AppendString(b, s)
	}
	return b
}

// AppendMapStrStr appends a CBOR map with text-string keys and values,
// in ascending key order so the wire form is deterministic.
func AppendMapStrStr(b []byte, v map[string]string) []byte {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b = AppendMapHeader(b, len(v))
	for _, k := range keys {
		b = AppendString(b, k)
		b = AppendString(b, v[k])
	}
	return b
}

// AppendPtrMarshaler appends m's encoding, or null for a nil pointer,
// letting generated code treat *T fields uniformly regardless of nilness.
func AppendPtrMarshaler(b []byte, m Marshaler) ([]byte, error) {
	rv := reflect.ValueOf(m)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return AppendNull(b), nil
	}
	return m.MarshalCBOR(b)
}

// cborEpochTag is the RFC 8949 §3.4.2 tag for epoch-based date/time.
const cborEpochTag = 1

// AppendTime appends t as a tag-1 (epoch) value: an integer when t carries
// no sub-second component, a float64 otherwise.
func AppendTime(b []byte, t time.Time) []byte {
	b = AppendTag(b, cborEpochTag)
	sec := t.Unix()
	if ns := t.Nanosecond(); ns != 0 {
		return AppendFloat64(b, float64(sec)+float64(ns)/1e9)
	}
	return AppendInt64(b, sec)
}

// ReadTimeBytes reads a tag-1 epoch time from the front of b.
func ReadTimeBytes(b []byte) (time.Time, []byte, error) {
	tag, rest, err := ReadTagBytes(b)
	if err != nil {
		return time.Time{}, b, err
	}
	if tag != cborEpochTag {
		return time.Time{}, b, newUnexpectedCode(0, MaskAll, b[0])
	}
	if len(rest) == 0 {
		return time.Time{}, b, newErr(KindEofWhileParsingValue, 0)
	}
	major, _ := splitHead(rest[0])
	if major == MajorSimple {
		f, after, err := ReadFloat64Bytes(rest)
		if err != nil {
			return time.Time{}, b, err
		}
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), after, nil
	}
	sec, after, err := ReadInt64Bytes(rest)
	if err != nil {
		return time.Time{}, b, err
	}
	return time.Unix(sec, 0).UTC(), after, nil
}

// AppendDuration appends d as a signed count of nanoseconds.
func AppendDuration(b []byte, d time.Duration) []byte { return AppendInt64(b, int64(d)) }

// ReadDurationBytes reads a signed nanosecond count from the front of b.
func ReadDurationBytes(b []byte) (time.Duration, []byte, error) {
	v, rest, err := ReadInt64Bytes(b)
	return time.Duration(v), rest, err
}

// ReadJSONNumberBytes reads a text string into a json.Number, for structs
// that carry arbitrary-precision numeric fields through both encodings.
func ReadJSONNumberBytes(b []byte) (json.Number, []byte, error) {
	s, rest, err := ReadStringBytes(b)
	return json.Number(s), rest, err
}

// AppendValue is the generic fallback cborgen emits for field shapes
// it does not specialize (nested maps of slices, interface fields, and
// the like): it hands off to the reflection-based default codec rather
// than silently dropping the field.
func AppendValue(b []byte, v any) ([]byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	e := NewEncoder(NewVecSinkFromBuffer(bb))
	if err := encodeAny(e, reflect.ValueOf(v)); err != nil {
		return b, err
	}
	return append(b, bb.Bytes()...), nil
}

// DecodeValue is AppendValue's decode counterpart: it reads exactly one
// item from the front of b into out (a non-nil pointer) via the
// reflection-based default codec, returning the remainder.
func DecodeValue(b []byte, out any) ([]byte, error) {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return b, newErr(KindMessage, 0)
	}
	d := NewDecoderFromSlice(b)
	if err := d.Value(MaskAll, &reflectVisitor{target: rv.Elem(), opts: d.opts}); err != nil {
		return b, err
	}
	return b[d.Offset():], nil
}
