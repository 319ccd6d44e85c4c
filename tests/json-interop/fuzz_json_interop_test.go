package tests

import (
	"encoding/json"
	"testing"

	cbor "github.com/wireproto/cbor-go/runtime"
)

// FuzzJSONInterop fuzzes cbor.Marshal/Unmarshal against values decoded
// from arbitrary JSON input, to ensure neither panics regardless of the
// shape or magnitude of the resulting Go value tree.
func FuzzJSONInterop(f *testing.F) {
	seeds := []string{
		`{"a":1,"b":"two"}`,
		`[1,2,3]`,
		`"hi"`,
		`123.5`,
		`true`,
		`null`,
		`{"nested":{"x":[1,2,{"y":"z"}]}}`,
	}
	for _, s := range seeds {
		f.Add([]byte(s))
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic in JSON interop fuzz: %v", r)
			}
		}()

		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return
		}

		b, err := cbor.Marshal(v)
		if err != nil {
			return
		}

		if _, err := cbor.ValidateWellFormedBytes(b); err != nil {
			t.Fatalf("cbor.Marshal produced ill-formed output: %v", err)
		}

		var out any
		_ = cbor.Unmarshal(b, &out)
	})
}
