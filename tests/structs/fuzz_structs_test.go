package structs

import (
	"testing"

	cbor "github.com/wireproto/cbor-go/runtime"
)

// FuzzDecodeStructs exercises cbor.Unmarshal for a few representative
// struct shapes to ensure the reflection-based decode path does not
// panic on arbitrary inputs.
func FuzzDecodeStructs(f *testing.F) {
	if b, err := cbor.Marshal(&Person{Name: "Alice", Age: 30, Data: []byte{1, 2, 3}}); err == nil {
		f.Add(b)
	}
	if b, err := cbor.Marshal(&Scalars{S: "s", B: true, I: 1}); err == nil {
		f.Add(b)
	}
	if b, err := cbor.Marshal(&Containers{}); err == nil {
		f.Add(b)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic in struct fuzz: %v", r)
			}
		}()

		// Quickly screen out inputs that are not even well-formed
		// CBOR before attempting struct-shaped decodes.
		if _, err := cbor.ValidateWellFormedBytes(data); err != nil {
			return
		}

		var p Person
		_ = cbor.Unmarshal(data, &p)

		var s Scalars
		_ = cbor.Unmarshal(data, &s)

		var c Containers
		_ = cbor.Unmarshal(data, &c)
	})
}
