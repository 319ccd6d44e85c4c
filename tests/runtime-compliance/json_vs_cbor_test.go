package tests

import (
	"encoding/json"
	"testing"

	cbor "github.com/wireproto/cbor-go/runtime"
)

// TestJSONNumberFieldRoundtrip exercises ReadJSONNumberBytes, used by
// generated decoders for struct fields that carry an arbitrary-precision
// numeric value as a CBOR text string shared with a JSON encoding of the
// same record.
func TestJSONNumberFieldRoundtrip(t *testing.T) {
	num := json.Number("123456789012345678901234567890")
	b := cbor.AppendString(nil, string(num))

	got, rest, err := cbor.ReadJSONNumberBytes(b)
	if err != nil {
		t.Fatalf("ReadJSONNumberBytes error: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("ReadJSONNumberBytes leftover: %d", len(rest))
	}
	if got != num {
		t.Fatalf("JSON number mismatch: got %q want %q", got, num)
	}
}

// TestConfigJSONPassthrough mirrors the jetstreammeta pattern of storing
// an embedded JSON-encoded configuration document as a CBOR byte string
// field, verifying the bytes survive a CBOR roundtrip unmodified.
func TestConfigJSONPassthrough(t *testing.T) {
	type wrapper struct {
		Config []byte `cbor:"config"`
	}
	cfg, err := json.Marshal(map[string]any{"name": "S", "retention": "limits"})
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	orig := wrapper{Config: cfg}

	b, err := cbor.Marshal(&orig)
	if err != nil {
		t.Fatalf("cbor.Marshal error: %v", err)
	}
	var dst wrapper
	if err := cbor.Unmarshal(b, &dst); err != nil {
		t.Fatalf("cbor.Unmarshal error: %v", err)
	}
	if string(dst.Config) != string(orig.Config) {
		t.Fatalf("embedded JSON mismatch: got %s want %s", dst.Config, orig.Config)
	}

	var decoded map[string]any
	if err := json.Unmarshal(dst.Config, &decoded); err != nil {
		t.Fatalf("json.Unmarshal of roundtripped config failed: %v", err)
	}
	if decoded["name"] != "S" {
		t.Fatalf("unexpected decoded config: %+v", decoded)
	}
}
