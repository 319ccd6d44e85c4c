package tests

import (
	"testing"
	"time"

	cbor "github.com/wireproto/cbor-go/runtime"
)

func TestTag1_Time_IntAndFloat(t *testing.T) {
	// Integer seconds.
	ti := time.Unix(1700000000, 0).UTC()
	b := cbor.AppendTime(nil, ti)
	got, rest, err := cbor.ReadTimeBytes(b)
	if err != nil {
		t.Fatalf("int time read err: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("int time rest: %d", len(rest))
	}
	if !got.Equal(ti) {
		t.Fatalf("int time mismatch: got %v want %v", got, ti)
	}

	// Fractional seconds.
	tf := time.Unix(1700000001, 123_456_789).UTC()
	b = cbor.AppendTime(nil, tf)
	got, rest, err = cbor.ReadTimeBytes(b)
	if err != nil {
		t.Fatalf("float time read err: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("float time rest: %d", len(rest))
	}
	dt := got.Sub(tf)
	if dt < 0 {
		dt = -dt
	}
	if dt > time.Microsecond {
		t.Fatalf("float time mismatch: got %v want %v delta=%v", got, tf, dt)
	}
}

func TestTag_Head_RoundTrip(t *testing.T) {
	b := cbor.AppendTag(nil, 37)
	b = cbor.AppendBytes(b, []byte{1, 2, 3, 4})

	tag, rest, err := cbor.ReadTagBytes(b)
	if err != nil {
		t.Fatalf("ReadTagBytes error: %v", err)
	}
	if tag != 37 {
		t.Fatalf("tag mismatch: got %d want 37", tag)
	}
	payload, rest, err := cbor.ReadBytesBytes(rest, nil)
	if err != nil {
		t.Fatalf("ReadBytesBytes error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("leftover bytes: %d", len(rest))
	}
	if string(payload) != "\x01\x02\x03\x04" {
		t.Fatalf("payload mismatch: got %x", payload)
	}
}

// TestSelfDescribeWrappedAndBareDecodeEqually verifies RFC 8949 §3.4.6:
// a value prefixed with the self-describe tag (55799) decodes to the same
// Go value as the bare encoding, since the generic reflection visitor
// treats any tag it does not specifically recognize (time.Time's epoch
// tag is the only one it does) as transparent and recurses into the
// wrapped value.
func TestSelfDescribeWrappedAndBareDecodeEqually(t *testing.T) {
	bare := cbor.AppendString(nil, "hello self-describe")

	sink := cbor.NewVecSink()
	enc := cbor.NewEncoder(sink)
	if err := enc.EncodeSelfDescribe(); err != nil {
		t.Fatalf("EncodeSelfDescribe error: %v", err)
	}
	if err := enc.EncodeString("hello self-describe"); err != nil {
		t.Fatalf("EncodeString error: %v", err)
	}
	wrapped := append([]byte(nil), sink.Bytes()...)
	sink.Release()

	wantTag, afterTag, err := cbor.ReadTagBytes(wrapped)
	if err != nil {
		t.Fatalf("ReadTagBytes error: %v", err)
	}
	if wantTag != cbor.SelfDescribeTag {
		t.Fatalf("tag mismatch: got %d want %d", wantTag, cbor.SelfDescribeTag)
	}
	if string(afterTag) != string(bare) {
		t.Fatalf("wrapped payload mismatch: got %x want %x", afterTag, bare)
	}

	var viaBare, viaWrapped string
	if err := cbor.Unmarshal(bare, &viaBare); err != nil {
		t.Fatalf("Unmarshal(bare) error: %v", err)
	}
	if err := cbor.Unmarshal(wrapped, &viaWrapped); err != nil {
		t.Fatalf("Unmarshal(wrapped) error: %v", err)
	}
	if viaBare != viaWrapped || viaBare != "hello self-describe" {
		t.Fatalf("decode mismatch: bare=%q wrapped=%q", viaBare, viaWrapped)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{0, time.Second, -3 * time.Hour, 42 * time.Nanosecond} {
		b := cbor.AppendDuration(nil, d)
		got, rest, err := cbor.ReadDurationBytes(b)
		if err != nil {
			t.Fatalf("ReadDurationBytes(%v) error: %v", d, err)
		}
		if len(rest) != 0 {
			t.Fatalf("leftover bytes for %v: %d", d, len(rest))
		}
		if got != d {
			t.Fatalf("duration mismatch: got %v want %v", got, d)
		}
	}
}
