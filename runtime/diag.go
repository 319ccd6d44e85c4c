package cbor

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

// DiagBytes renders the next CBOR item in RFC 8949 §8 diagnostic notation
// and returns the remaining bytes after that item.
func DiagBytes(b []byte) (string, []byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	r := NewSliceSource(b)
	if err := diagItem(bb, r, 0); err != nil {
		return "", b, err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return string(out), b[r.Offset():], nil
}

func diagItem(buf *ByteBuffer, r Read, depth int) error {
	if depth >= DefaultRecursionLimit {
		return newErr(KindRecursionLimitExceeded, r.Offset())
	}
	offset := r.Offset()
	b, ok, err := r.Peek()
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindEofWhileParsingValue, offset)
	}
	major, ai := splitHead(b)

	switch major {
	case MajorUint:
		_, _, u, err := lexHead(r)
		if err != nil {
			return wrapShort(err, KindEofWhileParsingValue, offset)
		}
		buf.WriteString(strconv.FormatUint(u, 10))
		return nil

	case MajorNegInt:
		_, _, u, err := lexHead(r)
		if err != nil {
			return wrapShort(err, KindEofWhileParsingValue, offset)
		}
		buf.WriteString(strconv.FormatInt(-1-int64(u), 10))
		return nil

	case MajorBytes, MajorText:
		return diagString(buf, r, major, offset)

	case MajorArray:
		return diagArray(buf, r, offset, depth)

	case MajorMap:
		return diagMap(buf, r, offset, depth)

	case MajorTag:
		_, _, tag, err := lexHead(r)
		if err != nil {
			return wrapShort(err, KindEofWhileParsingValue, offset)
		}
		buf.WriteString(strconv.FormatUint(tag, 10))
		buf.WriteString("(")
		if err := diagItem(buf, r, depth+1); err != nil {
			return err
		}
		buf.WriteString(")")
		return nil

	case MajorSimple:
		return diagSimple(buf, r, ai, offset)
	}
	return newErr(KindUnexpectedCode, offset)
}

func diagString(buf *ByteBuffer, r Read, major Major, offset int64) error {
	b, _, _ := r.Peek()
	_, ai := splitHead(b)
	isText := major == MajorText
	open, shut := "h'", "'"
	if isText {
		open, shut = "\"", "\""
	}
	if ai == aiIndefinite {
		r.Discard()
		buf.WriteString("(_")
		first := true
		for {
			chunkOffset := r.Offset()
			cb, ok, err := r.Peek()
			if err != nil {
				return err
			}
			if !ok {
				return newErr(kindEofForMajor(major), chunkOffset)
			}
			if cb == makeHead(MajorSimple, simpleBreak) {
				r.Discard()
				buf.WriteString(")")
				return nil
			}
			_, _, u, err := lexHead(r)
			if err != nil {
				return wrapShort(err, kindEofForMajor(major), chunkOffset)
			}
			n, err := lengthToInt(u, chunkOffset)
			if err != nil {
				return err
			}
			_, payload, err := r.ReadExact(n)
			if err != nil {
				return wrapShort(err, kindEofForMajor(major), chunkOffset)
			}
			if !first {
				buf.WriteString(", ")
			} else {
				buf.WriteString(" ")
				first = false
			}
			if isText {
				if !isUTF8Valid(payload) {
					return newErr(KindInvalidUTF8, chunkOffset)
				}
				buf.WriteString(strconv.Quote(string(payload)))
			} else {
				buf.WriteString(open)
				d := buf.Extend(hex.EncodedLen(len(payload)))
				hex.Encode(d, payload)
				buf.WriteString(shut)
			}
		}
	}
	_, _, u, err := lexHead(r)
	if err != nil {
		return wrapShort(err, kindEofForMajor(major), offset)
	}
	n, err := lengthToInt(u, offset)
	if err != nil {
		return err
	}
	payloadOffset := r.Offset()
	_, payload, err := r.ReadExact(n)
	if err != nil {
		return wrapShort(err, kindEofForMajor(major), payloadOffset)
	}
	if isText {
		if !isUTF8Valid(payload) {
			return newErr(KindInvalidUTF8, payloadOffset)
		}
		buf.WriteString(strconv.Quote(string(payload)))
		return nil
	}
	buf.WriteString(open)
	d := buf.Extend(hex.EncodedLen(len(payload)))
	hex.Encode(d, payload)
	buf.WriteString(shut)
	return nil
}

func diagArray(buf *ByteBuffer, r Read, offset int64, depth int) error {
	b, _, _ := r.Peek()
	_, ai := splitHead(b)
	if ai == aiIndefinite {
		r.Discard()
		buf.WriteString("[_")
		first := true
		for {
			itemOffset := r.Offset()
			cb, ok, err := r.Peek()
			if err != nil {
				return err
			}
			if !ok {
				return newErr(KindEofWhileParsingArray, itemOffset)
			}
			if cb == makeHead(MajorSimple, simpleBreak) {
				r.Discard()
				buf.WriteString("]")
				return nil
			}
			if !first {
				buf.WriteString(", ")
			} else {
				buf.WriteString(" ")
				first = false
			}
			if err := diagItem(buf, r, depth+1); err != nil {
				return err
			}
		}
	}
	_, _, u, err := lexHead(r)
	if err != nil {
		return wrapShort(err, KindEofWhileParsingArray, offset)
	}
	n, err := lengthToInt(u, offset)
	if err != nil {
		return err
	}
	buf.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteString(", ")
		}
		if err := diagItem(buf, r, depth+1); err != nil {
			return err
		}
	}
	buf.WriteString("]")
	return nil
}

func diagMap(buf *ByteBuffer, r Read, offset int64, depth int) error {
	b, _, _ := r.Peek()
	_, ai := splitHead(b)
	if ai == aiIndefinite {
		r.Discard()
		buf.WriteString("{_")
		first := true
		for {
			itemOffset := r.Offset()
			cb, ok, err := r.Peek()
			if err != nil {
				return err
			}
			if !ok {
				return newErr(KindEofWhileParsingMap, itemOffset)
			}
			if cb == makeHead(MajorSimple, simpleBreak) {
				r.Discard()
				buf.WriteString("}")
				return nil
			}
			if !first {
				buf.WriteString(", ")
			} else {
				buf.WriteString(" ")
				first = false
			}
			if err := diagItem(buf, r, depth+1); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := diagItem(buf, r, depth+1); err != nil {
				return err
			}
		}
	}
	_, _, u, err := lexHead(r)
	if err != nil {
		return wrapShort(err, KindEofWhileParsingMap, offset)
	}
	n, err := lengthToInt(u, offset)
	if err != nil {
		return err
	}
	buf.WriteString("{")
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteString(", ")
		}
		if err := diagItem(buf, r, depth+1); err != nil {
			return err
		}
		buf.WriteString(": ")
		if err := diagItem(buf, r, depth+1); err != nil {
			return err
		}
	}
	buf.WriteString("}")
	return nil
}

func diagSimple(buf *ByteBuffer, r Read, ai uint8, offset int64) error {
	switch ai {
	case simpleFalse:
		r.Discard()
		buf.WriteString("false")
		return nil
	case simpleTrue:
		r.Discard()
		buf.WriteString("true")
		return nil
	case simpleNull:
		r.Discard()
		buf.WriteString("null")
		return nil
	case simpleUndefined:
		r.Discard()
		buf.WriteString("undefined")
		return nil
	case simpleFloat16, simpleFloat32, simpleFloat64:
		r.Discard()
		var width int
		switch ai {
		case simpleFloat16:
			width = 2
		case simpleFloat32:
			width = 4
		case simpleFloat64:
			width = 8
		}
		var tmp [8]byte
		if err := r.ReadInto(tmp[:width]); err != nil {
			return wrapShort(err, KindEofWhileParsingValue, offset)
		}
		f := decodeFloatBits(ai, tmp[:width])
		if ai == simpleFloat64 {
			buf.WriteString(formatFloat64Diag(f))
		} else {
			buf.WriteString(formatFloat32Diag(float32(f)))
		}
		return nil
	default:
		if ai <= aiDirectMax {
			r.Discard()
			buf.WriteString(fmt.Sprintf("simple(%d)", ai))
			return nil
		}
		if ai == aiUint8 {
			r.Discard()
			val, ok, err := r.Next()
			if err != nil {
				return err
			}
			if !ok {
				return newErr(KindEofWhileParsingValue, offset)
			}
			buf.WriteString(fmt.Sprintf("simple(%d)", val))
			return nil
		}
		return newErr(KindUnexpectedCode, offset)
	}
}

// formatFloat64Diag renders a float64 in diagnostic notation.
func formatFloat64Diag(f float64) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	af := math.Abs(f)
	if af == 0 || af < 1e15 {
		return trimTrailingZerosDot(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatFloat32Diag renders a float32 in diagnostic notation.
func formatFloat32Diag(f float32) string {
	if math.IsInf(float64(f), +1) {
		return "Infinity"
	}
	if math.IsInf(float64(f), -1) {
		return "-Infinity"
	}
	if math.IsNaN(float64(f)) {
		return "NaN"
	}
	af := math.Abs(float64(f))
	if af == 0 || af < 1e15 {
		return trimTrailingZerosDot(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// trimTrailingZerosDot drops trailing fractional zeros from a decimal
// rendering, keeping at least one digit after the point, and appends ".0"
// to an integral rendering so a float never reads as an integer.
func trimTrailingZerosDot(s string) string {
	dot := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			dot = i
			break
		}
	}
	if dot < 0 {
		return s + ".0"
	}
	i := len(s)
	for i > dot+2 && s[i-1] == '0' {
		i--
	}
	return s[:i]
}
