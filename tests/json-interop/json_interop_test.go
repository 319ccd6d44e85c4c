package tests

import (
	"encoding/json"
	"fmt"
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"

	cbor "github.com/wireproto/cbor-go/runtime"
)

// TestJSONValueRoundTrip exercises the generic reflection codec against
// plain JSON-shaped Go values (maps, slices, strings, numbers, bools,
// null) decoded from JSON with encoding/json, verifying that the same
// value structure survives a CBOR encode/decode cycle.
func TestJSONValueRoundTrip(t *testing.T) {
	cases := []string{
		`{"a":1,"b":"two","c":[1,2,3],"d":true,"e":null}`,
		`[1,2,3]`,
		`"just a string"`,
		`123.5`,
		`true`,
		`null`,
		`{"nested":{"x":{"y":[1,{"z":"deep"}]}}}`,
	}

	for _, js := range cases {
		js := js
		t.Run(js, func(t *testing.T) {
			var v any
			if err := json.Unmarshal([]byte(js), &v); err != nil {
				t.Fatalf("json.Unmarshal error: %v", err)
			}

			b, err := cbor.Marshal(v)
			if err != nil {
				t.Fatalf("cbor.Marshal error: %v", err)
			}

			var got any
			if err := cbor.Unmarshal(b, &got); err != nil {
				t.Fatalf("cbor.Unmarshal error: %v", err)
			}

			if diff := cmp.Diff(toJSONShape(v), toJSONShape(got)); diff != "" {
				t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestFxamackerDifferential cross-checks this runtime's encoding against
// github.com/fxamacker/cbor/v2 for a representative set of Go values: both
// encoders must agree byte-for-byte on these canonical inputs, and each
// must be able to decode the other's output.
func TestFxamackerDifferential(t *testing.T) {
	values := []any{
		int64(0), int64(-1), int64(1000000),
		"hello", true, false,
		[]any{int64(1), int64(2), int64(3)},
	}

	for _, v := range values {
		ours, err := cbor.Marshal(v)
		if err != nil {
			t.Fatalf("cbor.Marshal(%v) error: %v", v, err)
		}
		theirs, err := fxcbor.Marshal(v)
		if err != nil {
			t.Fatalf("fxamacker Marshal(%v) error: %v", v, err)
		}
		if string(ours) != string(theirs) {
			t.Fatalf("encoding mismatch for %v: ours=%x theirs=%x", v, ours, theirs)
		}

		var viaTheirs any
		if err := fxcbor.Unmarshal(ours, &viaTheirs); err != nil {
			t.Fatalf("fxamacker failed to decode our encoding of %v: %v", v, err)
		}
		var viaOurs any
		if err := cbor.Unmarshal(theirs, &viaOurs); err != nil {
			t.Fatalf("our runtime failed to decode fxamacker's encoding of %v: %v", v, err)
		}
	}
}

// toJSONShape converts the untyped trees produced by either
// encoding/json (map[string]any) or this package's reflection decoder
// (map[any]any, int64/uint64 for integers) into a common
// map[string]any/float64 shape so json.Marshal output can be compared.
func toJSONShape(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = toJSONShape(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = toJSONShape(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = toJSONShape(vv)
		}
		return out
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
