package cbor

import (
	"math"
	"math/big"
)

// DecodeOptions carries the four feature-negotiation flags of spec §4.5.
// Defaults match the source implementation: both struct-key shapes and
// the standard enum shape are accepted; the legacy enum shape is not.
type DecodeOptions struct {
	AcceptNamed          bool
	AcceptPacked         bool
	AcceptStandardEnums  bool
	AcceptLegacyEnums    bool
}

// DefaultDecodeOptions returns the spec-mandated defaults.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{AcceptNamed: true, AcceptPacked: true, AcceptStandardEnums: true, AcceptLegacyEnums: false}
}

// Decoder drives a Read through the CBOR grammar, invoking a Visitor for
// every item (component D). It holds exclusive access to its Read for its
// lifetime (spec §3.3) and carries its own recursion budget and tag slot;
// none of that state is shared across Decoder instances, so concurrent
// decoders never contend (spec §5).
type Decoder struct {
	r     Read
	opts  DecodeOptions
	depth int
	limit int
	tag   *uint64 // non-nil only while delivering a tagged value to VisitTag
}

// NewDecoder constructs a Decoder over an arbitrary Read, for callers
// assembling a custom byte source.
func NewDecoder(r Read) *Decoder {
	return &Decoder{r: r, opts: DefaultDecodeOptions(), limit: DefaultRecursionLimit}
}

// NewDecoderFromSlice constructs a Decoder that borrows from an immutable
// slice; borrowed strings/bytes alias the input for its full lifetime,
// indefinite strings are reassembled into a reused internal scratch
// buffer (Transient).
func NewDecoderFromSlice(b []byte) *Decoder { return NewDecoder(NewSliceSource(b)) }

// NewDecoderFromMutSlice constructs a Decoder over a mutable slice; even
// indefinite strings are returned Borrowed, via in-place splicing.
func NewDecoderFromMutSlice(b []byte) *Decoder { return NewDecoder(NewMutSliceSource(b)) }

// NewDecoderFromReader constructs a Decoder over an io.Reader; every
// returned string/bytes value is Transient.
func NewDecoderFromReader(r interface {
	Read([]byte) (int, error)
}) *Decoder {
	return NewDecoder(NewStreamSource(r))
}

// WithAcceptNamed toggles acceptance of text-string struct/enum keys.
func (d *Decoder) WithAcceptNamed(v bool) *Decoder { d.opts.AcceptNamed = v; return d }

// WithAcceptPacked toggles acceptance of integer-index struct/enum keys.
func (d *Decoder) WithAcceptPacked(v bool) *Decoder { d.opts.AcceptPacked = v; return d }

// WithAcceptStandardEnums toggles acceptance of the one-element-map enum shape.
func (d *Decoder) WithAcceptStandardEnums(v bool) *Decoder { d.opts.AcceptStandardEnums = v; return d }

// WithAcceptLegacyEnums toggles acceptance of the array-prefixed enum shape.
func (d *Decoder) WithAcceptLegacyEnums(v bool) *Decoder { d.opts.AcceptLegacyEnums = v; return d }

// WithRecursionLimit overrides the default 128-deep recursion budget.
func (d *Decoder) WithRecursionLimit(n int) *Decoder { d.limit = n; return d }

// Offset returns the decoder's current cumulative byte position.
func (d *Decoder) Offset() int64 { return d.r.Offset() }

// End verifies no bytes remain after a complete top-level value, per the
// public from_slice/from_reader boundary contract (spec §6.2).
func (d *Decoder) End() error {
	_, ok, err := d.r.Peek()
	if err != nil {
		return err
	}
	if ok {
		return newErr(KindTrailingData, d.Offset())
	}
	return nil
}

func (d *Decoder) enter() error {
	if d.depth >= d.limit {
		return newErr(KindRecursionLimitExceeded, d.Offset())
	}
	d.depth++
	return nil
}

func (d *Decoder) leave() { d.depth-- }

// EnterRecursion and LeaveRecursion expose the recursion-budget bracket
// parseArray/parseMap/parseTag use internally, for custom Visitor or
// generated-code callers (such as DecodeEnum's caller for a legacy/
// standard enum payload) that recurse outside of Decoder.Value's own
// major-type dispatch and must still count against DefaultRecursionLimit.
// Every EnterRecursion call that returns nil must be matched by exactly
// one LeaveRecursion call.
func (d *Decoder) EnterRecursion() error { return d.enter() }

// LeaveRecursion releases one level of recursion budget acquired by
// EnterRecursion.
func (d *Decoder) LeaveRecursion() { d.leave() }

// Value reads one complete CBOR item, dispatching to the appropriate
// Visitor callback, honoring the caller-supplied validity mask (component
// H): a major type the mask disallows yields UnexpectedCode rather than
// a silent coercion.
func (d *Decoder) Value(mask ExpectedSet, v Visitor) error {
	headOffset := d.Offset()
	b, ok, err := d.r.Peek()
	if err != nil {
		return err
	}
	if !ok {
		return newErr(KindEofWhileParsingValue, headOffset)
	}
	major, ai := splitHead(b)
	if ai >= aiReservedLo && ai <= aiReservedHi {
		d.r.Discard()
		return newUnexpectedCode(headOffset, mask, b)
	}

	switch major {
	case MajorUint:
		if !mask.Allows(MajorUint) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		_, _, u, err := lexHead(d.r)
		if err != nil {
			return wrapShort(err, KindEofWhileParsingValue, headOffset)
		}
		return v.VisitUint64(u)

	case MajorNegInt:
		if !mask.Allows(MajorNegInt) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		_, _, u, err := lexHead(d.r)
		if err != nil {
			return wrapShort(err, KindEofWhileParsingValue, headOffset)
		}
		if u > uint64(1<<63-1) {
			// -1 - u underflows int64; deliver full precision via big.Int,
			// per spec ("if -1-u64 fits in i64 deliver i64, else i128").
			big128 := new(big.Int).Sub(big.NewInt(-1), new(big.Int).SetUint64(u))
			return v.VisitBigInt(big128)
		}
		return v.VisitInt64(-1 - int64(u))

	case MajorBytes:
		if !mask.Allows(MajorBytes) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		return d.parseByteOrText(headOffset, MajorBytes, v, false)

	case MajorText:
		if !mask.Allows(MajorText) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		return d.parseByteOrText(headOffset, MajorText, v, true)

	case MajorArray:
		if !mask.Allows(MajorArray) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		return d.parseArray(headOffset, v)

	case MajorMap:
		if !mask.Allows(MajorMap) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		return d.parseMap(headOffset, v)

	case MajorTag:
		return d.parseTag(headOffset, mask, v)

	case MajorSimple:
		return d.parseSimple(headOffset, ai, mask, v, b)
	}
	return newUnexpectedCode(headOffset, mask, b)
}

func wrapShort(err error, kind Kind, offset int64) error {
	if err == errShortRead {
		return newErr(kind, offset)
	}
	return err
}

func (d *Decoder) parseSimple(headOffset int64, ai uint8, mask ExpectedSet, v Visitor, b byte) error {
	switch ai {
	case simpleFalse, simpleTrue:
		if !mask.allowsSimple(bitBool) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		d.r.Discard()
		return v.VisitBool(ai == simpleTrue)
	case simpleNull, simpleUndefined:
		if !mask.allowsSimple(bitNull) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		d.r.Discard()
		return v.VisitNull()
	case simpleFloat16, simpleFloat32, simpleFloat64:
		if !mask.allowsSimple(bitFloat) {
			return newUnexpectedCode(headOffset, mask, b)
		}
		if _, _, _, err := lexHead(d.r); err != nil {
			return wrapShort(err, KindEofWhileParsingValue, headOffset)
		}
		var width int
		switch ai {
		case simpleFloat16:
			width = 2
		case simpleFloat32:
			width = 4
		case simpleFloat64:
			width = 8
		}
		var buf [8]byte
		if err := d.r.ReadInto(buf[:width]); err != nil {
			return wrapShort(err, KindEofWhileParsingValue, headOffset)
		}
		f := decodeFloatBits(ai, buf[:width])
		return v.VisitFloat64(f)
	default:
		return newUnexpectedCode(headOffset, mask, b)
	}
}

func decodeFloatBits(ai uint8, buf []byte) float64 {
	switch ai {
	case simpleFloat16:
		h := uint16(buf[0])<<8 | uint16(buf[1])
		return float16ToFloat64(h)
	case simpleFloat32:
		bits := uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
		return float64(math.Float32frombits(bits))
	default:
		var bits uint64
		for _, c := range buf {
			bits = bits<<8 | uint64(c)
		}
		return math.Float64frombits(bits)
	}
}

func (d *Decoder) parseByteOrText(headOffset int64, major Major, v Visitor, isText bool) error {
	b, _, _ := d.r.Peek()
	_, ai := splitHead(b)
	if ai == aiIndefinite {
		return d.parseIndefiniteString(headOffset, major, v, isText)
	}
	_, _, u, err := lexHead(d.r)
	if err != nil {
		return wrapShort(err, kindEofForMajor(major), headOffset)
	}
	n, err := lengthToInt(u, headOffset)
	if err != nil {
		return err
	}
	payloadOffset := d.Offset()
	life, buf, err := d.r.ReadExact(n)
	if err != nil {
		return wrapShort(err, kindEofForMajor(major), payloadOffset)
	}
	if isText {
		if !isUTF8Valid(buf) {
			return newErr(KindInvalidUTF8, payloadOffset)
		}
		if life == Borrowed {
			return v.VisitString(UnsafeString(buf), Borrowed)
		}
		return v.VisitString(string(buf), Transient)
	}
	return v.VisitBytes(buf, life)
}

func kindEofForMajor(major Major) Kind {
	if major == MajorText || major == MajorBytes {
		return KindEofWhileParsingString
	}
	return KindEofWhileParsingValue
}

// parseIndefiniteString implements spec §4.3.1: a loop of definite-length
// chunks of the same major type, accumulated into scratch, terminated by
// the stop byte. A nested indefinite marker or a chunk of the wrong major
// type is rejected rather than silently accepted.
func (d *Decoder) parseIndefiniteString(headOffset int64, major Major, v Visitor, isText bool) error {
	d.r.Discard() // the indefinite head byte itself
	d.r.ClearBuffer()
	for {
		chunkOffset := d.Offset()
		b, ok, err := d.r.Peek()
		if err != nil {
			return err
		}
		if !ok {
			return newErr(kindEofForMajor(major), chunkOffset)
		}
		if b == makeHead(MajorSimple, simpleBreak) {
			d.r.Discard()
			break
		}
		chunkMajor, ai := splitHead(b)
		if chunkMajor != major || ai == aiIndefinite {
			return newUnexpectedCode(chunkOffset, majorBit(major), b)
		}
		_, _, u, err := lexHead(d.r)
		if err != nil {
			return wrapShort(err, kindEofForMajor(major), chunkOffset)
		}
		n, err := lengthToInt(u, chunkOffset)
		if err != nil {
			return err
		}
		if err := d.r.ReadToBuffer(n); err != nil {
			return wrapShort(err, kindEofForMajor(major), chunkOffset)
		}
	}
	buf, life := d.r.TakeBuffer()
	if isText {
		if !isUTF8Valid(buf) {
			return newErr(KindInvalidUTF8, headOffset)
		}
		if life == Borrowed {
			return v.VisitString(UnsafeString(buf), Borrowed)
		}
		return v.VisitString(string(buf), Transient)
	}
	if life == Transient {
		owned := make([]byte, len(buf))
		copy(owned, buf)
		return v.VisitBytes(owned, Transient)
	}
	return v.VisitBytes(buf, Borrowed)
}

func (d *Decoder) parseArray(headOffset int64, v Visitor) error {
	if err := d.enter(); err != nil {
		return err
	}
	defer d.leave()

	b, _, _ := d.r.Peek()
	_, ai := splitHead(b)
	seq := &SeqAccess{d: d, major: MajorArray}
	if ai == aiIndefinite {
		d.r.Discard()
		seq.indefinite = true
	} else {
		_, _, u, err := lexHead(d.r)
		if err != nil {
			return wrapShort(err, KindEofWhileParsingArray, headOffset)
		}
		n, err := lengthToInt(u, headOffset)
		if err != nil {
			return err
		}
		seq.remaining = n
	}
	return v.VisitSeq(seq)
}

func (d *Decoder) parseMap(headOffset int64, v Visitor) error {
	if err := d.enter(); err != nil {
		return err
	}
	defer d.leave()

	b, _, _ := d.r.Peek()
	_, ai := splitHead(b)
	m := &MapAccess{d: d}
	if ai == aiIndefinite {
		d.r.Discard()
		m.indefinite = true
	} else {
		_, _, u, err := lexHead(d.r)
		if err != nil {
			return wrapShort(err, KindEofWhileParsingMap, headOffset)
		}
		n, err := lengthToInt(u, headOffset)
		if err != nil {
			return err
		}
		m.remaining = n
	}
	return v.VisitMap(m)
}

// parseTag implements spec §4.3's major-6 handling: read the tag number,
// bump recursion depth, set the per-decoder tag slot, deliver the wrapped
// value to VisitTag, then clear the slot — the slot is decoder-local
// state, never a process-global (see spec §9's "tag slot global vs.
// local" design note).
func (d *Decoder) parseTag(headOffset int64, mask ExpectedSet, v Visitor) error {
	if err := d.enter(); err != nil {
		return err
	}
	defer d.leave()

	_, _, tag, err := lexHead(d.r)
	if err != nil {
		return wrapShort(err, KindEofWhileParsingValue, headOffset)
	}
	prev := d.tag
	d.tag = &tag
	err = v.VisitTag(tag, d)
	d.tag = prev
	if err != nil {
		return err
	}
	return nil
}

// CurrentTag returns the tag number currently being delivered, valid only
// during a VisitTag callback's execution (and any synchronous calls it
// makes into d.Value).
func (d *Decoder) CurrentTag() (uint64, bool) {
	if d.tag == nil {
		return 0, false
	}
	return *d.tag, true
}

// SeqAccess lets a Visitor pull array elements lazily, mirroring the
// source implementation's SeqAccess protocol: the visitor decides how
// many elements to consume and is responsible for surfacing
// ArrayTooShort/ArrayTooLong when it expected an exact count (component
// D never auto-drains a partially-consumed sequence).
type SeqAccess struct {
	d          *Decoder
	major      Major
	remaining  int
	indefinite bool
}

// Size reports the element count for definite-length arrays.
func (s *SeqAccess) Size() (int, bool) {
	if s.indefinite {
		return 0, false
	}
	return s.remaining, true
}

// Next decodes the next element into v, or reports done=true if the
// sequence (or input) is exhausted.
func (s *SeqAccess) Next(mask ExpectedSet, v Visitor) (done bool, err error) {
	if s.indefinite {
		offset := s.d.Offset()
		b, ok, err := s.d.r.Peek()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, newErr(KindEofWhileParsingArray, offset)
		}
		if b == makeHead(MajorSimple, simpleBreak) {
			s.d.r.Discard()
			return true, nil
		}
		if err := s.d.Value(mask, v); err != nil {
			return false, err
		}
		return false, nil
	}
	if s.remaining == 0 {
		return true, nil
	}
	s.remaining--
	if err := s.d.Value(mask, v); err != nil {
		return false, err
	}
	return false, nil
}

// MapAccess lets a Visitor pull key/value pairs lazily.
type MapAccess struct {
	d          *Decoder
	remaining  int
	indefinite bool
}

// Size reports the pair count for definite-length maps.
func (m *MapAccess) Size() (int, bool) {
	if m.indefinite {
		return 0, false
	}
	return m.remaining, true
}

// NextKey decodes the next key, or reports done=true if the map is
// exhausted. Any valid CBOR value may be a key: structural schema
// enforcement (accept_named/accept_packed) is applied only by
// NextStructKey, not here — raw map key acceptance is unconditional, per
// spec §9's resolution of the accept_packed/map-key conflation bug.
func (m *MapAccess) NextKey(mask ExpectedSet, v Visitor) (done bool, err error) {
	if m.indefinite {
		offset := m.d.Offset()
		b, ok, err := m.d.r.Peek()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, newErr(KindEofWhileParsingMap, offset)
		}
		if b == makeHead(MajorSimple, simpleBreak) {
			m.d.r.Discard()
			return true, nil
		}
		if err := m.d.Value(mask, v); err != nil {
			return false, err
		}
		return false, nil
	}
	if m.remaining == 0 {
		return true, nil
	}
	if err := m.d.Value(mask, v); err != nil {
		return false, err
	}
	return false, nil
}

// NextValue decodes the value half of the pair whose key NextKey just
// produced.
func (m *MapAccess) NextValue(mask ExpectedSet, v Visitor) error {
	if !m.indefinite {
		m.remaining--
	}
	return m.d.Value(mask, v)
}

// NextStructKey decodes the next key the way a struct deserializer does:
// it enforces opts.AcceptNamed/AcceptPacked against the key's own major
// type (WrongStructFormat on violation) before decoding it as either a
// field name or a 0-based field index. This is the "structural schema
// enforcement" half of spec §9's invariant split; NextKey is the "raw map
// key acceptance" half.
func (m *MapAccess) NextStructKey(opts DecodeOptions) (name string, hasName bool, index uint64, hasIndex bool, done bool, err error) {
	var peekOffset int64
	var b byte
	var ok bool
	if m.indefinite {
		peekOffset = m.d.Offset()
		b, ok, err = m.d.r.Peek()
		if err != nil {
			return
		}
		if !ok {
			err = newErr(KindEofWhileParsingMap, peekOffset)
			return
		}
		if b == makeHead(MajorSimple, simpleBreak) {
			m.d.r.Discard()
			done = true
			return
		}
	} else {
		if m.remaining == 0 {
			done = true
			return
		}
		peekOffset = m.d.Offset()
		b, ok, err = m.d.r.Peek()
		if err != nil {
			return
		}
		if !ok {
			err = newErr(KindEofWhileParsingMap, peekOffset)
			return
		}
	}

	keyMajor, _ := splitHead(b)
	if keyMajor == MajorUint && !opts.AcceptPacked {
		err = newErr(KindWrongStructFormat, peekOffset)
		return
	}
	if keyMajor == MajorText && !opts.AcceptNamed {
		err = newErr(KindWrongStructFormat, peekOffset)
		return
	}

	kv := &keyCapture{}
	if err = m.d.Value(MaskEnumIdent, kv); err != nil {
		return
	}
	// remaining is decremented by NextValue, once per pair, matching
	// NextKey's accounting so the two can be mixed freely.
	return kv.name, kv.hasName, kv.index, kv.hasIndex, false, nil
}

// keyCapture is the minimal Visitor used by NextStructKey/enum-identifier
// decode: it accepts only the two shapes a struct/enum key may take.
type keyCapture struct {
	name     string
	hasName  bool
	index    uint64
	hasIndex bool
}

func (k *keyCapture) VisitBool(bool) error               { return newErr(KindWrongStructFormat, 0) }
func (k *keyCapture) VisitUint64(u uint64) error          { k.index = u; k.hasIndex = true; return nil }
func (k *keyCapture) VisitInt64(int64) error              { return newErr(KindWrongStructFormat, 0) }
func (k *keyCapture) VisitBigInt(*big.Int) error          { return newErr(KindWrongStructFormat, 0) }
func (k *keyCapture) VisitFloat64(float64) error          { return newErr(KindWrongStructFormat, 0) }
func (k *keyCapture) VisitNull() error                    { return newErr(KindWrongStructFormat, 0) }
func (k *keyCapture) VisitSeq(*SeqAccess) error           { return newErr(KindWrongStructFormat, 0) }
func (k *keyCapture) VisitMap(*MapAccess) error           { return newErr(KindWrongStructFormat, 0) }
func (k *keyCapture) VisitTag(_ uint64, d *Decoder) error { return d.Value(MaskEnumIdent, k) }
func (k *keyCapture) VisitBytes(b []byte, _ Lifetime) error {
	k.name = string(b)
	k.hasName = true
	return nil
}
func (k *keyCapture) VisitString(s string, _ Lifetime) error {
	k.name = s
	k.hasName = true
	return nil
}
