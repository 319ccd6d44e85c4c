package tests

import (
	"testing"

	cbor "github.com/wireproto/cbor-go/runtime"
)

// FuzzRuntimeReaderBasic fuzzes the slice-based validation and decode
// entrypoints to ensure they do not panic on arbitrary inputs.
func FuzzRuntimeReaderBasic(f *testing.F) {
	f.Add([]byte{0xa1, 0x61, 0x61, 0x01})       // map {"a":1}
	f.Add([]byte{0x83, 0x01, 0x02, 0x03})       // array [1,2,3]
	f.Add([]byte{0x9f, 0x01, 0x02, 0xff})       // indef array [1,2]
	f.Add([]byte{0xff, 0x00, 0x01, 0x02, 0x03}) // invalid start

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic in Reader fuzz: %v", r)
			}
		}()

		_, _ = cbor.ValidateWellFormedBytes(data)

		var v any
		_ = cbor.Unmarshal(data, &v)

		_, _, _ = cbor.DiagBytes(data)
		_, _ = cbor.SkipValueBytes(data)
	})
}
