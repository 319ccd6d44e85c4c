package tests

import (
	"math/big"
	"testing"

	cbor "github.com/wireproto/cbor-go/runtime"
)

// bigIntCapture is a minimal Visitor that only expects VisitBigInt; any
// other callback is a test failure.
type bigIntCapture struct {
	t   *testing.T
	got *big.Int
}

func (c *bigIntCapture) VisitBool(bool) error   { c.t.Fatal("unexpected VisitBool"); return nil }
func (c *bigIntCapture) VisitUint64(uint64) error {
	c.t.Fatal("unexpected VisitUint64 for i128 underflow payload")
	return nil
}
func (c *bigIntCapture) VisitInt64(int64) error {
	c.t.Fatal("unexpected VisitInt64 for i128 underflow payload")
	return nil
}
func (c *bigIntCapture) VisitBigInt(v *big.Int) error { c.got = v; return nil }
func (c *bigIntCapture) VisitFloat64(float64) error   { c.t.Fatal("unexpected VisitFloat64"); return nil }
func (c *bigIntCapture) VisitBytes([]byte, cbor.Lifetime) error {
	c.t.Fatal("unexpected VisitBytes")
	return nil
}
func (c *bigIntCapture) VisitString(string, cbor.Lifetime) error {
	c.t.Fatal("unexpected VisitString")
	return nil
}
func (c *bigIntCapture) VisitNull() error { c.t.Fatal("unexpected VisitNull"); return nil }
func (c *bigIntCapture) VisitSeq(*cbor.SeqAccess) error {
	c.t.Fatal("unexpected VisitSeq")
	return nil
}
func (c *bigIntCapture) VisitMap(*cbor.MapAccess) error {
	c.t.Fatal("unexpected VisitMap")
	return nil
}
func (c *bigIntCapture) VisitTag(tag uint64, d *cbor.Decoder) error {
	c.t.Fatal("unexpected VisitTag")
	return nil
}

// TestNegativeIntegerUnderflowDeliversBigInt covers spec §4.3's i128
// fallback: a major-1 (negative integer) head whose 8-byte payload is the
// maximum uint64 (0xffffffffffffffff) computes -1-u, which underflows
// int64's range and so must be delivered via VisitBigInt rather than
// VisitInt64.
func TestNegativeIntegerUnderflowDeliversBigInt(t *testing.T) {
	b := []byte{0x3b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	d := cbor.NewDecoderFromSlice(b)
	capture := &bigIntCapture{t: t}
	if err := d.Value(cbor.MaskSigned, capture); err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if capture.got == nil {
		t.Fatal("VisitBigInt was never called")
	}

	want := new(big.Int).Sub(big.NewInt(-1), new(big.Int).SetUint64(^uint64(0)))
	if capture.got.Cmp(want) != 0 {
		t.Fatalf("big.Int mismatch: got %s want %s", capture.got.String(), want.String())
	}

	// Cross-checked via the reflection path: the same bytes decoded into
	// an interface{} target must yield a big.Int equal in magnitude.
	var out any
	if err := cbor.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	gotBig, ok := out.(big.Int)
	if !ok {
		t.Fatalf("expected big.Int from reflection decode, got %T", out)
	}
	if gotBig.Cmp(want) != 0 {
		t.Fatalf("reflection big.Int mismatch: got %s want %s", gotBig.String(), want.String())
	}
}
