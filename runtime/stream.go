package cbor

import (
	"bufio"
	"io"
)

// StreamDecoder reads a sequence of concatenated top-level CBOR items from
// an io.Reader one at a time, grounded in the fxamacker/cbor Decoder
// streaming pattern from the example pack. Each Decode runs a
// stream-source Decoder directly over a shared bufio.Reader, pulling bytes
// only as the item's structure requires; it does not scan ahead for item
// boundaries.
type StreamDecoder struct {
	br   *bufio.Reader
	opts DecodeOptions
}

// NewStreamDecoder constructs a StreamDecoder over r.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{br: bufio.NewReader(r), opts: DefaultDecodeOptions()}
}

// WithAcceptNamed toggles acceptance of text-string struct/enum keys.
func (s *StreamDecoder) WithAcceptNamed(v bool) *StreamDecoder { s.opts.AcceptNamed = v; return s }

// WithAcceptPacked toggles acceptance of integer-index struct/enum keys.
func (s *StreamDecoder) WithAcceptPacked(v bool) *StreamDecoder { s.opts.AcceptPacked = v; return s }

// Decode reads exactly one CBOR item into v, the Go-native counterpart of
// a JSON-Lines-style streaming decoder: repeated calls consume
// successive concatenated items from the same underlying stream.
func (s *StreamDecoder) Decode(v any) error {
	rv, err := addressableTarget(v)
	if err != nil {
		return err
	}
	d := NewDecoderFromReader(s.br)
	d.opts = s.opts
	return d.Value(MaskAll, &reflectVisitor{target: rv, opts: s.opts})
}

// More reports whether the stream has at least one more byte available,
// distinguishing a clean end-of-stream from mid-item EOF.
func (s *StreamDecoder) More() bool {
	_, err := s.br.Peek(1)
	return err == nil
}
