package tests

import (
	"bytes"
	"math/big"
	"testing"

	cbor "github.com/wireproto/cbor-go/runtime"
)

// lifetimeCapture records the Lifetime tag delivered to VisitBytes/VisitString
// and stops there; every scenario below only reads a single top-level
// string or bytes value.
type lifetimeCapture struct {
	t        *testing.T
	gotBytes []byte
	gotStr   string
	life     cbor.Lifetime
	isStr    bool
}

func (c *lifetimeCapture) VisitBool(bool) error     { c.t.Fatal("unexpected VisitBool"); return nil }
func (c *lifetimeCapture) VisitUint64(uint64) error { c.t.Fatal("unexpected VisitUint64"); return nil }
func (c *lifetimeCapture) VisitInt64(int64) error   { c.t.Fatal("unexpected VisitInt64"); return nil }
func (c *lifetimeCapture) VisitBigInt(*big.Int) error {
	c.t.Fatal("unexpected VisitBigInt")
	return nil
}
func (c *lifetimeCapture) VisitFloat64(float64) error {
	c.t.Fatal("unexpected VisitFloat64")
	return nil
}
func (c *lifetimeCapture) VisitBytes(b []byte, life cbor.Lifetime) error {
	c.gotBytes = b
	c.life = life
	return nil
}
func (c *lifetimeCapture) VisitString(s string, life cbor.Lifetime) error {
	c.gotStr = s
	c.life = life
	c.isStr = true
	return nil
}
func (c *lifetimeCapture) VisitNull() error { c.t.Fatal("unexpected VisitNull"); return nil }
func (c *lifetimeCapture) VisitSeq(*cbor.SeqAccess) error {
	c.t.Fatal("unexpected VisitSeq")
	return nil
}
func (c *lifetimeCapture) VisitMap(*cbor.MapAccess) error {
	c.t.Fatal("unexpected VisitMap")
	return nil
}
func (c *lifetimeCapture) VisitTag(tag uint64, d *cbor.Decoder) error {
	c.t.Fatal("unexpected VisitTag")
	return nil
}

// TestLifetimeSliceSourceBorrowsDefiniteString covers spec §8.2 scenario 2:
// decoding a definite-length string from an immutable slice source always
// reports Borrowed, since the returned slice aliases the input directly.
func TestLifetimeSliceSourceBorrowsDefiniteString(t *testing.T) {
	b := cbor.AppendString(nil, "borrowed from input")

	d := cbor.NewDecoderFromSlice(b)
	c := &lifetimeCapture{t: t}
	if err := d.Value(cbor.MaskString, c); err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if !c.isStr {
		t.Fatal("expected VisitString, got VisitBytes")
	}
	if c.life != cbor.Borrowed {
		t.Fatalf("expected Borrowed, got %v", c.life)
	}
	if c.gotStr != "borrowed from input" {
		t.Fatalf("string mismatch: got %q", c.gotStr)
	}
}

// TestLifetimeStreamSourceTransientDefiniteString covers spec §8.2 scenario
// 3: a definite-length string decoded from an io.Reader-backed stream
// source reports Transient, since every stream read copies into internal scratch.
func TestLifetimeStreamSourceTransientDefiniteString(t *testing.T) {
	b := cbor.AppendString(nil, "transient via stream")

	d := cbor.NewDecoderFromReader(bytes.NewReader(b))
	c := &lifetimeCapture{t: t}
	if err := d.Value(cbor.MaskString, c); err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if !c.isStr {
		t.Fatal("expected VisitString, got VisitBytes")
	}
	if c.life != cbor.Transient {
		t.Fatalf("expected Transient, got %v", c.life)
	}
	if c.gotStr != "transient via stream" {
		t.Fatalf("string mismatch: got %q", c.gotStr)
	}
}

// TestLifetimeMutSliceSourceBorrowsIndefiniteBytes covers the third leg of
// spec §8.2 scenario 2/3: a mutable-slice source reassembles an
// indefinite-length byte string in place by splicing chunks backward over
// already-consumed header bytes, so even the reassembled result is
// Borrowed — unlike SliceSource, which must copy indefinite chunks into
// scratch and so reports Transient for the same wire bytes.
func TestLifetimeMutSliceSourceBorrowsIndefiniteBytes(t *testing.T) {
	wire := []byte{
		0x5f,                // indefinite-length byte string
		0x42, 'A', 'B',      // chunk 1: 2 bytes
		0x43, 'C', 'D', 'E', // chunk 2: 3 bytes
		0xff,                // break
	}

	mutable := append([]byte(nil), wire...)
	d := cbor.NewDecoderFromMutSlice(mutable)
	c := &lifetimeCapture{t: t}
	if err := d.Value(cbor.MaskString, c); err != nil {
		t.Fatalf("Value error: %v", err)
	}
	if c.isStr {
		t.Fatal("expected VisitBytes, got VisitString")
	}
	if c.life != cbor.Borrowed {
		t.Fatalf("expected Borrowed for mut-slice indefinite reassembly, got %v", c.life)
	}
	if string(c.gotBytes) != "ABCDE" {
		t.Fatalf("bytes mismatch: got %q", c.gotBytes)
	}

	// Contrast: the identical wire bytes through the immutable slice
	// source must copy into scratch and report Transient.
	d2 := cbor.NewDecoderFromSlice(wire)
	c2 := &lifetimeCapture{t: t}
	if err := d2.Value(cbor.MaskString, c2); err != nil {
		t.Fatalf("Value error (slice source): %v", err)
	}
	if c2.life != cbor.Transient {
		t.Fatalf("expected Transient for slice-source indefinite reassembly, got %v", c2.life)
	}
	if string(c2.gotBytes) != "ABCDE" {
		t.Fatalf("bytes mismatch (slice source): got %q", c2.gotBytes)
	}
}
