package cbor

import (
	"fmt"
	"io"
	"reflect"
)

// EncodeToVec encodes v into a freshly allocated byte slice using the
// given options, the owning-allocation counterpart to Encoder/VecSink for
// callers that don't want to manage a Write themselves.
func EncodeToVec(v any, opts EncodeOptions) ([]byte, error) {
	return MarshalWithOptions(v, opts)
}

// DecodeFrom decodes exactly one top-level value from an immutable slice
// into v and verifies no trailing bytes remain, using the given decoder
// options. Borrowed strings/bytes in v alias data for as long as data is
// kept alive.
func DecodeFrom(data []byte, v any, opts DecodeOptions) error {
	rv, err := addressableTarget(v)
	if err != nil {
		return err
	}
	d := decoderWithOptions(NewDecoderFromSlice(data), opts)
	if err := d.Value(MaskAll, &reflectVisitor{target: rv, opts: opts}); err != nil {
		return err
	}
	return d.End()
}

// DecodeFromMut is DecodeFrom over a mutable slice, enabling in-place
// indefinite-string reassembly.
func DecodeFromMut(data []byte, v any, opts DecodeOptions) error {
	rv, err := addressableTarget(v)
	if err != nil {
		return err
	}
	d := decoderWithOptions(NewDecoderFromMutSlice(data), opts)
	if err := d.Value(MaskAll, &reflectVisitor{target: rv, opts: opts}); err != nil {
		return err
	}
	return d.End()
}

// DecodeFromReader decodes exactly one top-level value from an io.Reader.
// Every borrowed slice is Transient (valid only until the next read), so
// callers that need to retain string/byte values must copy them; the
// reflection visitor always copies, so this is only a concern for custom
// Visitor implementations.
func DecodeFromReader(r io.Reader, v any, opts DecodeOptions) error {
	rv, err := addressableTarget(v)
	if err != nil {
		return err
	}
	d := decoderWithOptions(NewDecoderFromReader(r), opts)
	return d.Value(MaskAll, &reflectVisitor{target: rv, opts: opts})
}

// DecodeFromSliceWithScratch decodes from an immutable slice using a
// caller-supplied, fixed-capacity scratch buffer for indefinite-string
// reassembly instead of an internally-grown one, for callers that want
// predictable allocation behavior. Returns a length-out-of-range style
// error if an indefinite string's reassembled length would exceed the
// scratch buffer's capacity.
func DecodeFromSliceWithScratch(data []byte, scratch []byte, v any, opts DecodeOptions) error {
	rv, err := addressableTarget(v)
	if err != nil {
		return err
	}
	d := decoderWithOptions(NewDecoder(newFixedScratchSource(data, scratch)), opts)
	if err := d.Value(MaskAll, &reflectVisitor{target: rv, opts: opts}); err != nil {
		return err
	}
	return d.End()
}

func decoderWithOptions(d *Decoder, opts DecodeOptions) *Decoder {
	d.opts = opts
	return d
}

func addressableTarget(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("cbor: decode target must be a non-nil pointer, got %T", v)
	}
	return rv.Elem(), nil
}
