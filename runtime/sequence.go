package cbor

// AppendSequence concatenates items into a CBOR Sequence (RFC 8742): a
// bare concatenation of top-level data items with no enclosing array or
// length prefix. Generated code uses this to batch independent records
// for streaming transports that frame messages externally.
func AppendSequence(b []byte, items ...[]byte) []byte {
	for _, it := range items {
		b = append(b, it...)
	}
	return b
}

// SplitSequenceBytes splits a CBOR Sequence into its constituent
// top-level items without materializing their values.
func SplitSequenceBytes(b []byte) ([][]byte, error) {
	var items [][]byte
	for len(b) > 0 {
		rest, err := SkipValueBytes(b)
		if err != nil {
			return nil, err
		}
		items = append(items, b[:len(b)-len(rest)])
		b = rest
	}
	return items, nil
}

// ForEachSequenceBytes walks a CBOR Sequence, invoking fn with each raw
// item in order. It stops and returns fn's error immediately if fn
// returns a non-nil error.
func ForEachSequenceBytes(b []byte, fn func(item []byte) error) error {
	for len(b) > 0 {
		rest, err := SkipValueBytes(b)
		if err != nil {
			return err
		}
		if err := fn(b[:len(b)-len(rest)]); err != nil {
			return err
		}
		b = rest
	}
	return nil
}
