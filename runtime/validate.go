package cbor

// ValidateWellFormedBytes checks that the next CBOR data item in b is
// well-formed per RFC 8949 §4.2 (structural correctness of every major
// type, UTF-8 validity for text strings, reserved AI values rejected)
// without materializing any host value, and returns the bytes after that
// item.
func ValidateWellFormedBytes(b []byte) (rest []byte, err error) {
	r := NewSliceSource(b)
	if err := validateItem(r, 0); err != nil {
		return b, err
	}
	return b[r.Offset():], nil
}

// ValidateDocument validates a sequence of concatenated top-level items
// until the input is exhausted.
func ValidateDocument(b []byte) error {
	for len(b) > 0 {
		rest, err := ValidateWellFormedBytes(b)
		if err != nil {
			return err
		}
		b = rest
	}
	return nil
}

func validateItem(r Read, depth int) error {
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
	if ai >= aiReservedLo && ai <= aiReservedHi {
		return newErr(KindUnexpectedCode, offset)
	}
	if ai == aiIndefinite && (major == MajorUint || major == MajorNegInt || major == MajorTag) {
		return newErr(KindUnexpectedCode, offset)
	}

	switch major {
	case MajorUint, MajorNegInt:
		_, _, _, err := lexHead(r)
		return wrapShort(err, KindEofWhileParsingValue, offset)

	case MajorTag:
		if _, _, _, err := lexHead(r); err != nil {
			return wrapShort(err, KindEofWhileParsingValue, offset)
		}
		return validateItem(r, depth+1)

	case MajorBytes, MajorText:
		return validateStringItem(r, major, offset)

	case MajorArray:
		return validateArrayItem(r, offset, depth)

	case MajorMap:
		return validateMapItem(r, offset, depth)

	case MajorSimple:
		return validateSimpleItem(r, ai, offset)
	}
	return newErr(KindUnexpectedCode, offset)
}

func validateStringItem(r Read, major Major, offset int64) error {
	b, _, _ := r.Peek()
	_, ai := splitHead(b)
	if ai == aiIndefinite {
		r.Discard()
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
				return nil
			}
			chunkMajor, chunkAI := splitHead(cb)
			if chunkMajor != major || chunkAI == aiIndefinite {
				return newErr(KindUnexpectedCode, chunkOffset)
			}
			_, _, u, err := lexHead(r)
			if err != nil {
				return wrapShort(err, kindEofForMajor(major), chunkOffset)
			}
			n, err := lengthToInt(u, chunkOffset)
			if err != nil {
				return err
			}
			life, payload, err := r.ReadExact(n)
			if err != nil {
				return wrapShort(err, kindEofForMajor(major), chunkOffset)
			}
			if major == MajorText && !isUTF8Valid(payload) {
				return newErr(KindInvalidUTF8, chunkOffset)
			}
			_ = life
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
	if major == MajorText && !isUTF8Valid(payload) {
		return newErr(KindInvalidUTF8, payloadOffset)
	}
	return nil
}

func validateArrayItem(r Read, offset int64, depth int) error {
	b, _, _ := r.Peek()
	_, ai := splitHead(b)
	if ai == aiIndefinite {
		r.Discard()
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
				return nil
			}
			if err := validateItem(r, depth+1); err != nil {
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
	for i := 0; i < n; i++ {
		if err := validateItem(r, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func validateMapItem(r Read, offset int64, depth int) error {
	b, _, _ := r.Peek()
	_, ai := splitHead(b)
	if ai == aiIndefinite {
		r.Discard()
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
				return nil
			}
			if err := validateItem(r, depth+1); err != nil {
				return err
			}
			if err := validateItem(r, depth+1); err != nil {
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
	for i := 0; i < n; i++ {
		if err := validateItem(r, depth+1); err != nil {
			return err
		}
		if err := validateItem(r, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func validateSimpleItem(r Read, ai uint8, offset int64) error {
	switch ai {
	case simpleFalse, simpleTrue, simpleNull, simpleUndefined:
		r.Discard()
		return nil
	case simpleFloat16:
		r.Discard()
		var buf [2]byte
		return wrapShort(r.ReadInto(buf[:]), KindEofWhileParsingValue, offset)
	case simpleFloat32:
		r.Discard()
		var buf [4]byte
		return wrapShort(r.ReadInto(buf[:]), KindEofWhileParsingValue, offset)
	case simpleFloat64:
		r.Discard()
		var buf [8]byte
		return wrapShort(r.ReadInto(buf[:]), KindEofWhileParsingValue, offset)
	case aiUint8:
		r.Discard()
		_, ok, err := r.Next()
		if err != nil {
			return err
		}
		if !ok {
			return newErr(KindEofWhileParsingValue, offset)
		}
		return nil
	default:
		if ai <= aiDirectMax {
			r.Discard()
			return nil
		}
		return newErr(KindUnexpectedCode, offset)
	}
}
