package cbor

import "encoding/binary"

// lexHead decodes the one-byte initial byte into (major, additional-info)
// and, when the AI field names a follow-on width, reads that many
// big-endian bytes and returns the combined payload value (component C).
//
// AI values 28-30 are reserved and rejected; AI 31 is reported via ai so
// callers can distinguish "indefinite length" (majors 2-5) from "break or
// simple value" (major 7) without this function needing to know which.
func lexHead(r Read) (major Major, ai uint8, payload uint64, err error) {
	b, ok, err := r.Next()
	if err != nil {
		return 0, 0, 0, err
	}
	if !ok {
		return 0, 0, 0, errShortRead
	}
	major, ai = splitHead(b)
	if ai >= aiReservedLo && ai <= aiReservedHi {
		return major, ai, 0, &DecodeError{Kind: KindUnexpectedCode, Offset: r.Offset() - 1, Expected: MaskAll, Byte: b}
	}
	switch {
	case ai <= aiDirectMax:
		return major, ai, uint64(ai), nil
	case ai == aiIndefinite:
		return major, ai, 0, nil
	default:
		width := 1 << (ai - aiUint8)
		var buf [8]byte
		if err := r.ReadInto(buf[:width]); err != nil {
			return major, ai, 0, err
		}
		switch width {
		case 1:
			payload = uint64(buf[0])
		case 2:
			payload = uint64(binary.BigEndian.Uint16(buf[:2]))
		case 4:
			payload = uint64(binary.BigEndian.Uint32(buf[:4]))
		case 8:
			payload = binary.BigEndian.Uint64(buf[:8])
		}
		return major, ai, payload, nil
	}
}

// lengthToInt validates a decoded length against the platform's maximum
// addressable size before any allocation or iteration uses it, per spec
// §3.2 ("Any length prefix whose numeric value exceeds the platform's
// maximum addressable size produces a length-out-of-range error before
// allocation is attempted").
func lengthToInt(u uint64, offset int64) (int, error) {
	if u > uint64(maxInt) {
		return 0, &DecodeError{Kind: KindLengthOutOfRange, Offset: offset}
	}
	return int(u), nil
}

const maxInt = int(^uint(0) >> 1)

// appendUintCore appends the minimal-length encoding of u under the given
// major type: the single byte major<<5|ai when u<=23, otherwise the
// smallest of {1,2,4,8} follow-on byte widths that fits (component E's
// "always minimal" rule).
func appendUintCore(b []byte, major Major, u uint64) []byte {
	switch {
	case u <= aiDirectMax:
		return append(b, makeHead(major, uint8(u)))
	case u <= 0xff:
		return append(b, makeHead(major, aiUint8), byte(u))
	case u <= 0xffff:
		b = append(b, makeHead(major, aiUint16))
		return binary.BigEndian.AppendUint16(b, uint16(u))
	case u <= 0xffffffff:
		b = append(b, makeHead(major, aiUint32))
		return binary.BigEndian.AppendUint32(b, uint32(u))
	default:
		b = append(b, makeHead(major, aiUint64))
		return binary.BigEndian.AppendUint64(b, u)
	}
}

// appendIndefiniteHead appends the indefinite-length head byte for a
// major type in {2,3,4,5}.
func appendIndefiniteHead(b []byte, major Major) []byte {
	return append(b, makeHead(major, aiIndefinite))
}

// appendBreak appends the 0xff stop byte terminating an indefinite item.
func appendBreak(b []byte) []byte { return append(b, makeHead(MajorSimple, simpleBreak)) }
