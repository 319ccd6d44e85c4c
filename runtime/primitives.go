package cbor

// Append/Read primitives operating directly on []byte, grounded in the
// teacher's read_bytes.go/write_bytes.go shape: cborgen emits code
// that calls these rather than allocating an Encoder/Decoder per field,
// and callers with a []byte already in hand can skip the Read/Write
// abstraction entirely for a single scalar.

// AppendUint64 appends the minimal-length encoding of u.
func AppendUint64(b []byte, u uint64) []byte { return appendUintCore(b, MajorUint, u) }

// AppendInt64 appends the minimal-length encoding of i.
func AppendInt64(b []byte, i int64) []byte {
	if i >= 0 {
		return appendUintCore(b, MajorUint, uint64(i))
	}
	return appendUintCore(b, MajorNegInt, uint64(-1-i))
}

// AppendBool appends a CBOR boolean simple value.
func AppendBool(b []byte, v bool) []byte {
	if v {
		return append(b, makeHead(MajorSimple, simpleTrue))
	}
	return append(b, makeHead(MajorSimple, simpleFalse))
}

// AppendNull appends the null simple value.
func AppendNull(b []byte) []byte { return append(b, makeHead(MajorSimple, simpleNull)) }

// AppendFloat64 appends f using the narrowest lossless width.
func AppendFloat64(b []byte, f float64) []byte {
	width, bits := narrowestFloat(f)
	switch width {
	case 2:
		return append(b, makeHead(MajorSimple, simpleFloat16), byte(bits>>8), byte(bits))
	case 4:
		return append(b, makeHead(MajorSimple, simpleFloat32),
			byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
	default:
		b = append(b, makeHead(MajorSimple, simpleFloat64))
		for shift := 56; shift >= 0; shift -= 8 {
			b = append(b, byte(bits>>uint(shift)))
		}
		return b
	}
}

// AppendBytes appends a definite-length byte string.
func AppendBytes(b []byte, v []byte) []byte {
	b = appendUintCore(b, MajorBytes, uint64(len(v)))
	return append(b, v...)
}

// AppendString appends a definite-length UTF-8 text string.
func AppendString(b []byte, s string) []byte {
	b = appendUintCore(b, MajorText, uint64(len(s)))
	return append(b, s...)
}

// AppendArrayHeader appends a definite-length array head.
func AppendArrayHeader(b []byte, n int) []byte { return appendUintCore(b, MajorArray, uint64(n)) }

// AppendMapHeader appends a definite-length map head.
func AppendMapHeader(b []byte, n int) []byte { return appendUintCore(b, MajorMap, uint64(n)) }

// AppendTag appends a semantic tag head.
func AppendTag(b []byte, tag uint64) []byte { return appendUintCore(b, MajorTag, tag) }

// AppendInt appends the minimal-length encoding of i.
func AppendInt(b []byte, i int) []byte { return AppendInt64(b, int64(i)) }

// AppendInt8 appends the minimal-length encoding of i.
func AppendInt8(b []byte, i int8) []byte { return AppendInt64(b, int64(i)) }

// AppendInt16 appends the minimal-length encoding of i.
func AppendInt16(b []byte, i int16) []byte { return AppendInt64(b, int64(i)) }

// AppendInt32 appends the minimal-length encoding of i.
func AppendInt32(b []byte, i int32) []byte { return AppendInt64(b, int64(i)) }

// AppendUint appends the minimal-length encoding of u.
func AppendUint(b []byte, u uint) []byte { return AppendUint64(b, uint64(u)) }

// AppendUint8 appends the minimal-length encoding of u.
func AppendUint8(b []byte, u uint8) []byte { return AppendUint64(b, uint64(u)) }

// AppendUint16 appends the minimal-length encoding of u.
func AppendUint16(b []byte, u uint16) []byte { return AppendUint64(b, uint64(u)) }

// AppendUint32 appends the minimal-length encoding of u.
func AppendUint32(b []byte, u uint32) []byte { return AppendUint64(b, uint64(u)) }

// AppendFloat32 appends f, widened to float64 for narrowing so a value
// that fits in a half-precision float still encodes minimally.
func AppendFloat32(b []byte, f float32) []byte { return AppendFloat64(b, float64(f)) }

// ReadUint64Bytes reads an unsigned integer from the front of b.
func ReadUint64Bytes(b []byte) (uint64, []byte, error) {
	r := NewSliceSource(b)
	major, _, u, err := lexHead(r)
	if err != nil {
		return 0, b, wrapShort(err, KindEofWhileParsingValue, 0)
	}
	if major != MajorUint {
		return 0, b, newUnexpectedCode(0, MaskUint, b[0])
	}
	return u, b[r.Offset():], nil
}

// ReadInt64Bytes reads a signed integer (major 0 or 1) from the front of b.
func ReadInt64Bytes(b []byte) (int64, []byte, error) {
	r := NewSliceSource(b)
	major, _, u, err := lexHead(r)
	if err != nil {
		return 0, b, wrapShort(err, KindEofWhileParsingValue, 0)
	}
	switch major {
	case MajorUint:
		return int64(u), b[r.Offset():], nil
	case MajorNegInt:
		return -1 - int64(u), b[r.Offset():], nil
	default:
		return 0, b, newUnexpectedCode(0, MaskSigned, b[0])
	}
}

// ReadBoolBytes reads a boolean simple value from the front of b.
func ReadBoolBytes(b []byte) (bool, []byte, error) {
	if len(b) < 1 {
		return false, b, newErr(KindEofWhileParsingValue, 0)
	}
	switch b[0] {
	case makeHead(MajorSimple, simpleTrue):
		return true, b[1:], nil
	case makeHead(MajorSimple, simpleFalse):
		return false, b[1:], nil
	default:
		return false, b, newUnexpectedCode(0, MaskBool, b[0])
	}
}

// ReadBytesBytes reads a definite-length byte string, borrowing directly
// from b, from the front of b.
func ReadBytesBytes(b []byte, scratch []byte) ([]byte, []byte, error) {
	r := NewSliceSource(b)
	major, ai, u, err := lexHead(r)
	if err != nil {
		return nil, b, wrapShort(err, KindEofWhileParsingString, 0)
	}
	if major != MajorBytes || ai == aiIndefinite {
		return nil, b, newUnexpectedCode(0, MaskByteSeq, b[0])
	}
	n, err := lengthToInt(u, r.Offset())
	if err != nil {
		return nil, b, err
	}
	_, payload, err := r.ReadExact(n)
	if err != nil {
		return nil, b, wrapShort(err, KindEofWhileParsingString, r.Offset())
	}
	return payload, b[r.Offset():], nil
}

// ReadStringBytes reads a definite-length UTF-8 text string, borrowing
// directly from b, from the front of b.
func ReadStringBytes(b []byte) (string, []byte, error) {
	r := NewSliceSource(b)
	major, ai, u, err := lexHead(r)
	if err != nil {
		return "", b, wrapShort(err, KindEofWhileParsingString, 0)
	}
	if major != MajorText || ai == aiIndefinite {
		return "", b, newUnexpectedCode(0, MaskString, b[0])
	}
	n, err := lengthToInt(u, r.Offset())
	if err != nil {
		return "", b, err
	}
	payloadOffset := r.Offset()
	_, payload, err := r.ReadExact(n)
	if err != nil {
		return "", b, wrapShort(err, KindEofWhileParsingString, payloadOffset)
	}
	if !isUTF8Valid(payload) {
		return "", b, newErr(KindInvalidUTF8, payloadOffset)
	}
	return UnsafeString(payload), b[r.Offset():], nil
}

// ReadIntBytes reads a signed integer from the front of b.
func ReadIntBytes(b []byte) (int, []byte, error) {
	v, rest, err := ReadInt64Bytes(b)
	return int(v), rest, err
}

// ReadInt8Bytes reads a signed integer from the front of b.
func ReadInt8Bytes(b []byte) (int8, []byte, error) {
	v, rest, err := ReadInt64Bytes(b)
	return int8(v), rest, err
}

// ReadInt16Bytes reads a signed integer from the front of b.
func ReadInt16Bytes(b []byte) (int16, []byte, error) {
	v, rest, err := ReadInt64Bytes(b)
	return int16(v), rest, err
}

// ReadInt32Bytes reads a signed integer from the front of b.
func ReadInt32Bytes(b []byte) (int32, []byte, error) {
	v, rest, err := ReadInt64Bytes(b)
	return int32(v), rest, err
}

// ReadUintBytes reads an unsigned integer from the front of b.
func ReadUintBytes(b []byte) (uint, []byte, error) {
	v, rest, err := ReadUint64Bytes(b)
	return uint(v), rest, err
}

// ReadUint8Bytes reads an unsigned integer from the front of b.
func ReadUint8Bytes(b []byte) (uint8, []byte, error) {
	v, rest, err := ReadUint64Bytes(b)
	return uint8(v), rest, err
}

// ReadUint16Bytes reads an unsigned integer from the front of b.
func ReadUint16Bytes(b []byte) (uint16, []byte, error) {
	v, rest, err := ReadUint64Bytes(b)
	return uint16(v), rest, err
}

// ReadUint32Bytes reads an unsigned integer from the front of b.
func ReadUint32Bytes(b []byte) (uint32, []byte, error) {
	v, rest, err := ReadUint64Bytes(b)
	return uint32(v), rest, err
}

// ReadFloat32Bytes reads any of the three float widths, narrowed to
// float32, from the front of b.
func ReadFloat32Bytes(b []byte) (float32, []byte, error) {
	v, rest, err := ReadFloat64Bytes(b)
	return float32(v), rest, err
}

// SkipValueBytes consumes exactly one well-formed CBOR data item from the
// front of b without materializing it, for generated decoders that need
// to discard an unrecognized struct field or enum extension.
func SkipValueBytes(b []byte) ([]byte, error) {
	r := NewSliceSource(b)
	if err := validateItem(r, 0); err != nil {
		return b, err
	}
	return b[r.Offset():], nil
}

// ReadFloat64Bytes reads any of the three float widths, expanded
// losslessly to float64, from the front of b.
func ReadFloat64Bytes(b []byte) (float64, []byte, error) {
	if len(b) < 1 {
		return 0, b, newErr(KindEofWhileParsingValue, 0)
	}
	major, ai := splitHead(b[0])
	if major != MajorSimple {
		return 0, b, newUnexpectedCode(0, MaskFloat, b[0])
	}
	var width int
	switch ai {
	case simpleFloat16:
		width = 2
	case simpleFloat32:
		width = 4
	case simpleFloat64:
		width = 8
	default:
		return 0, b, newUnexpectedCode(0, MaskFloat, b[0])
	}
	if len(b) < 1+width {
		return 0, b, newErr(KindEofWhileParsingValue, 0)
	}
	return decodeFloatBits(ai, b[1:1+width]), b[1+width:], nil
}

// ReadTagBytes reads a semantic tag head from the front of b, returning
// the remainder positioned at the wrapped value.
func ReadTagBytes(b []byte) (uint64, []byte, error) {
	r := NewSliceSource(b)
	major, _, tag, err := lexHead(r)
	if err != nil {
		return 0, b, wrapShort(err, KindEofWhileParsingValue, 0)
	}
	if major != MajorTag {
		return 0, b, newUnexpectedCode(0, MaskAll, b[0])
	}
	return tag, b[r.Offset():], nil
}

// ReadArrayHeaderBytes reads a definite-length array head from the front
// of b. indefinite reports whether the array is indefinite-length, in
// which case n is meaningless and the caller must scan for the stop byte.
func ReadArrayHeaderBytes(b []byte) (n int, indefinite bool, rest []byte, err error) {
	if len(b) < 1 {
		return 0, false, b, newErr(KindEofWhileParsingArray, 0)
	}
	major, ai := splitHead(b[0])
	if major != MajorArray {
		return 0, false, b, newUnexpectedCode(0, MaskArray, b[0])
	}
	if ai == aiIndefinite {
		return 0, true, b[1:], nil
	}
	r := NewSliceSource(b)
	_, _, u, err := lexHead(r)
	if err != nil {
		return 0, false, b, wrapShort(err, KindEofWhileParsingArray, 0)
	}
	n, err = lengthToInt(u, r.Offset())
	if err != nil {
		return 0, false, b, err
	}
	return n, false, b[r.Offset():], nil
}

// ReadMapHeaderBytes reads a definite-length map head from the front of b.
func ReadMapHeaderBytes(b []byte) (n int, indefinite bool, rest []byte, err error) {
	if len(b) < 1 {
		return 0, false, b, newErr(KindEofWhileParsingMap, 0)
	}
	major, ai := splitHead(b[0])
	if major != MajorMap {
		return 0, false, b, newUnexpectedCode(0, MaskMap, b[0])
	}
	if ai == aiIndefinite {
		return 0, true, b[1:], nil
	}
	r := NewSliceSource(b)
	_, _, u, err := lexHead(r)
	if err != nil {
		return 0, false, b, wrapShort(err, KindEofWhileParsingMap, 0)
	}
	n, err = lengthToInt(u, r.Offset())
	if err != nil {
		return 0, false, b, err
	}
	return n, false, b[r.Offset():], nil
}

// NextMajor reports the major type of the next item in b without
// consuming it. ok is false when b is empty. It looks only at the first
// byte and does not check that the item is complete.
func NextMajor(b []byte) (Major, bool) {
	if len(b) < 1 {
		return 0, false
	}
	m, _ := splitHead(b[0])
	return m, true
}

// Diagnostic renders the next CBOR item in RFC 8949 §8 diagnostic
// notation, adapted from the teacher's DiagBytes/diagOneBuf.
func Diagnostic(b []byte) (string, []byte, error) { return DiagBytes(b) }
