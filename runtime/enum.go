package cbor

// EnumVariant identifies which variant of an enum was found on the wire:
// a named identifier (text string) in named mode, or a 0-based index in
// packed mode, per spec §4.3.4/§4.4.
type EnumVariant struct {
	Name     string
	HasName  bool
	Index    uint64
	HasIndex bool
}

// EnumShape classifies which of the three wire representations an enum
// value took.
type EnumShape int

const (
	// EnumUnit: the variant identifier appears bare, with no payload.
	EnumUnit EnumShape = iota
	// EnumStandard: a one-element map {identifier: payload} (RFC "enum-as-map").
	EnumStandard
	// EnumLegacy: an array [identifier, ...payload-elements].
	EnumLegacy
)

// DecodeEnum dispatches on the wire shape of the next item per spec
// §4.3.4: a bare uint/text identifier is a unit variant; a one-element
// map is the standard shape (rejected unless AcceptStandardEnums); an
// array is the legacy shape (rejected unless AcceptLegacyEnums).
//
// For EnumUnit there is no payload to decode. For EnumStandard the caller
// must decode exactly one value next (via d.Value) to consume the
// payload. For EnumLegacy the returned SeqAccess yields the remaining
// payload elements (zero for what was encoded as a unit variant under
// the legacy shape, one for a newtype variant, more for a tuple variant).
//
// DecodeEnum itself acquires one level of recursion budget via
// EnterRecursion; the caller must call d.LeaveRecursion() exactly once
// after it has finished consuming the payload (including the EnumUnit
// case, where it should be called immediately).
func (d *Decoder) DecodeEnum() (EnumVariant, EnumShape, *SeqAccess, error) {
	offset := d.Offset()
	b, ok, err := d.r.Peek()
	if err != nil {
		return EnumVariant{}, 0, nil, err
	}
	if !ok {
		return EnumVariant{}, 0, nil, newErr(KindEofWhileParsingValue, offset)
	}
	major, ai := splitHead(b)

	switch major {
	case MajorUint, MajorText:
		if err := d.EnterRecursion(); err != nil {
			return EnumVariant{}, 0, nil, err
		}
		kv := &keyCapture{}
		if err := d.Value(MaskEnumIdent, kv); err != nil {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, err
		}
		return variantFrom(kv), EnumUnit, nil, nil

	case MajorMap:
		if !d.opts.AcceptStandardEnums {
			return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, offset)
		}
		if ai == aiIndefinite {
			return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, offset)
		}
		if err := d.EnterRecursion(); err != nil {
			return EnumVariant{}, 0, nil, err
		}
		_, _, u, err := lexHead(d.r)
		if err != nil {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, wrapShort(err, KindEofWhileParsingMap, offset)
		}
		n, err := lengthToInt(u, offset)
		if err != nil {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, err
		}
		if n != 1 {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, offset)
		}
		keyOffset := d.Offset()
		kb, ok, err := d.r.Peek()
		if err != nil {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, err
		}
		if !ok {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, newErr(KindEofWhileParsingMap, keyOffset)
		}
		keyMajor, _ := splitHead(kb)
		if keyMajor == MajorUint && !d.opts.AcceptPacked {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, keyOffset)
		}
		if keyMajor == MajorText && !d.opts.AcceptNamed {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, keyOffset)
		}
		kv := &keyCapture{}
		if err := d.Value(MaskEnumIdent, kv); err != nil {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, err
		}
		return variantFrom(kv), EnumStandard, nil, nil

	case MajorArray:
		if !d.opts.AcceptLegacyEnums {
			return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, offset)
		}
		if err := d.EnterRecursion(); err != nil {
			return EnumVariant{}, 0, nil, err
		}
		seq := &SeqAccess{d: d, major: MajorArray}
		if ai == aiIndefinite {
			d.r.Discard()
			seq.indefinite = true
		} else {
			_, _, u, err := lexHead(d.r)
			if err != nil {
				d.LeaveRecursion()
				return EnumVariant{}, 0, nil, wrapShort(err, KindEofWhileParsingArray, offset)
			}
			n, err := lengthToInt(u, offset)
			if err != nil {
				d.LeaveRecursion()
				return EnumVariant{}, 0, nil, err
			}
			if n == 0 {
				d.LeaveRecursion()
				return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, offset)
			}
			// seq.remaining counts all n elements; the identifier read
			// below via seq.Next consumes the first one, leaving n-1
			// payload elements for the caller.
			seq.remaining = n
		}
		kv := &keyCapture{}
		if done, err := seqIdentifier(seq, kv); err != nil {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, err
		} else if done {
			d.LeaveRecursion()
			return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, offset)
		}
		return variantFrom(kv), EnumLegacy, seq, nil

	default:
		return EnumVariant{}, 0, nil, newErr(KindWrongEnumFormat, offset)
	}
}

// seqIdentifier pulls the legacy shape's leading identifier element
// through the same SeqAccess the remaining payload will be read from, so
// accounting (remaining count / indefinite break detection) stays
// consistent with ordinary element reads.
func seqIdentifier(seq *SeqAccess, kv *keyCapture) (done bool, err error) {
	return seq.Next(MaskEnumIdent, kv)
}

func variantFrom(kv *keyCapture) EnumVariant {
	return EnumVariant{Name: kv.name, HasName: kv.hasName, Index: kv.index, HasIndex: kv.hasIndex}
}

// EncodeEnum writes one enum value in the shape e.opts selects: the
// standard one-element-map shape when EnumAsMap is set, otherwise the
// legacy array-prefixed shape. ident is written as a packed index when
// e.opts.Packed is set, otherwise as a name. payload is invoked to write
// the variant's payload (it may write nothing for a unit variant, one
// value for a newtype variant, or several for a tuple/struct variant);
// payloadCount must equal the number of values payload will write (for
// the legacy shape's array-length head).
func (e *Encoder) EncodeEnum(name string, index uint64, payloadCount int, payload func() error) error {
	writeIdent := func() error {
		if e.opts.Packed {
			return e.EncodeUint64(index)
		}
		return e.EncodeString(name)
	}

	if payloadCount == 0 {
		return writeIdent()
	}

	if e.opts.EnumAsMap {
		if err := e.EncodeMapLen(1); err != nil {
			return err
		}
		if err := writeIdent(); err != nil {
			return err
		}
		return payload()
	}

	if err := e.EncodeArrayLen(1 + payloadCount); err != nil {
		return err
	}
	if err := writeIdent(); err != nil {
		return err
	}
	return payload()
}
