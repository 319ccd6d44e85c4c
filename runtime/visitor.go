package cbor

import "math/big"

// Visitor is the value-visitor bridge decode drives (spec §3.3, §6.3):
// Decoder.Value inspects the wire bytes and calls exactly one method,
// handing the visitor whatever host representation it can construct
// without knowing the visitor's ultimate target type. This mirrors the
// source implementation's trait-object Visitor, translated from Rust's
// zero-cost generic dispatch into an ordinary Go interface.
//
// Implementations that receive VisitBytes/VisitString with life==Borrowed
// must not retain the slice/string past the call if the underlying input
// may be reused or mutated; Transient values must not be retained past
// the call under any circumstance.
type Visitor interface {
	VisitBool(v bool) error
	VisitUint64(v uint64) error
	VisitInt64(v int64) error
	// VisitBigInt delivers an integer magnitude that overflows int64/uint64
	// (major 1 payload u>2^63-1, i.e. true i128 range per spec §4.3).
	VisitBigInt(v *big.Int) error
	VisitFloat64(v float64) error
	VisitBytes(b []byte, life Lifetime) error
	VisitString(s string, life Lifetime) error
	// VisitNull is called for both the null (0xf6) and undefined (0xf7)
	// simple values in the generic decode path; a caller that needs to
	// distinguish Option::None from unit uses Decoder.Option instead.
	VisitNull() error
	VisitSeq(seq *SeqAccess) error
	VisitMap(m *MapAccess) error
	// VisitTag receives the tag number and the Decoder positioned at the
	// wrapped value; it must call d.Value exactly once to consume it.
	VisitTag(tag uint64, d *Decoder) error
}

// Option decodes an optional value: if the next byte is the null simple
// value (0xf6) it is consumed and ok is false; otherwise the value is
// decoded into v and ok is true. This is the dedicated entry point for
// the Option::None/Some distinction the generic VisitNull path collapses
// (spec §6.3 note on visit_none vs. visit_unit).
func (d *Decoder) Option(mask ExpectedSet, v Visitor) (ok bool, err error) {
	b, present, err := d.r.Peek()
	if err != nil {
		return false, err
	}
	if present && b == makeHead(MajorSimple, simpleNull) {
		d.r.Discard()
		return false, nil
	}
	if err := d.Value(mask, v); err != nil {
		return false, err
	}
	return true, nil
}
