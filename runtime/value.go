package cbor

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"time"
)

// Marshaler is implemented by types that encode themselves directly,
// bypassing the reflection-based default path; grounded in the teacher's
// own Marshaler interface (defs.go), carried over with CBOR naming.
// Implementations append their encoding to b and return the result,
// mirroring the teacher's append-style MarshalMsg.
type Marshaler interface {
	MarshalCBOR(b []byte) ([]byte, error)
}

// Unmarshaler is implemented by types that decode themselves directly.
// Implementations consume their encoding from the front of b and return
// the remainder, mirroring the teacher's append-style UnmarshalMsg.
type Unmarshaler interface {
	UnmarshalCBOR(b []byte) ([]byte, error)
}

// Marshal encodes v to a new byte slice. Types implementing Marshaler are
// delegated to directly; everything else goes through the reflection
// visitor (spec §5.1's "default reflection-based visitor").
func Marshal(v any) ([]byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	e := NewEncoder(NewVecSinkFromBuffer(bb))
	if err := encodeAny(e, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}

// MarshalWithOptions encodes v using caller-supplied feature negotiation.
func MarshalWithOptions(v any, opts EncodeOptions) ([]byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	e := NewEncoder(NewVecSinkFromBuffer(bb))
	e.opts = opts
	if err := encodeAny(e, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, nil
}

// Unmarshal decodes a single CBOR item from data into v, which must be a
// non-nil pointer. Trailing bytes after the item are not an error; use
// Decoder.End via DecodeFrom for strict whole-document decoding.
func Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("cbor: Unmarshal requires a non-nil pointer, got %T", v)
	}
	d := NewDecoderFromSlice(data)
	return d.Value(MaskAll, &reflectVisitor{target: rv.Elem(), opts: d.opts})
}

// UnmarshalMut is Unmarshal over a mutable slice, enabling in-place
// indefinite-string reassembly (see MutSliceSource).
func UnmarshalMut(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("cbor: UnmarshalMut requires a non-nil pointer, got %T", v)
	}
	d := NewDecoderFromMutSlice(data)
	return d.Value(MaskAll, &reflectVisitor{target: rv.Elem(), opts: d.opts})
}

// encodeAny dispatches v to Marshaler or to the reflection path.
func encodeAny(e *Encoder, v reflect.Value) error {
	if !v.IsValid() {
		return e.EncodeNull()
	}
	if v.CanInterface() {
		if m, ok := v.Interface().(Marshaler); ok {
			return appendMarshaler(e, m)
		}
		if v.CanAddr() && v.Addr().CanInterface() {
			if m, ok := v.Addr().Interface().(Marshaler); ok {
				return appendMarshaler(e, m)
			}
		}
	}
	return encodeReflect(e, v)
}

func appendMarshaler(e *Encoder, m Marshaler) error {
	out, err := m.MarshalCBOR(nil)
	if err != nil {
		return err
	}
	return e.w.WriteAll(out)
}

func encodeReflect(e *Encoder, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		return e.EncodeBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.EncodeInt64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.EncodeUint64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return e.EncodeFloat64(v.Float())
	case reflect.String:
		return e.EncodeString(v.String())
	case reflect.Pointer:
		if v.IsNil() {
			return e.EncodeNull()
		}
		return encodeAny(e, v.Elem())
	case reflect.Interface:
		if v.IsNil() {
			return e.EncodeNull()
		}
		return encodeAny(e, v.Elem())
	case reflect.Slice:
		if v.IsNil() {
			return e.EncodeNull()
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return e.EncodeBytes(v.Bytes())
		}
		return encodeSeq(e, v)
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			for i := 0; i < v.Len(); i++ {
				b[i] = byte(v.Index(i).Uint())
			}
			return e.EncodeBytes(b)
		}
		return encodeSeq(e, v)
	case reflect.Map:
		return encodeMap(e, v)
	case reflect.Struct:
		if bi, ok := v.Interface().(big.Int); ok {
			return e.EncodeBigInt(&bi)
		}
		if t, ok := v.Interface().(time.Time); ok {
			return e.w.WriteAll(AppendTime(nil, t))
		}
		return encodeStruct(e, v)
	default:
		return newMessage(0, "cbor: unsupported kind "+v.Kind().String())
	}
}

func encodeSeq(e *Encoder, v reflect.Value) error {
	n := v.Len()
	if err := e.EncodeArrayLen(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := encodeAny(e, v.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func encodeMap(e *Encoder, v reflect.Value) error {
	if v.IsNil() {
		return e.EncodeNull()
	}
	keys := v.MapKeys()
	if err := e.EncodeMapLen(len(keys)); err != nil {
		return err
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})
	for _, k := range keys {
		if err := encodeAny(e, k); err != nil {
			return err
		}
		if err := encodeAny(e, v.MapIndex(k)); err != nil {
			return err
		}
	}
	return nil
}

type fieldInfo struct {
	index     int
	name      string
	omitempty bool
}

func structFields(t reflect.Type) []fieldInfo {
	var fields []fieldInfo
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		omitempty := false
		if tag, ok := f.Tag.Lookup("cbor"); ok {
			parts := splitTag(tag)
			if len(parts) > 0 && parts[0] != "" {
				if parts[0] == "-" {
					continue
				}
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					omitempty = true
				}
			}
		}
		fields = append(fields, fieldInfo{index: i, name: name, omitempty: omitempty})
	}
	return fields
}

func splitTag(tag string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(tag); i++ {
		if i == len(tag) || tag[i] == ',' {
			out = append(out, tag[start:i])
			start = i + 1
		}
	}
	return out
}

func encodeStruct(e *Encoder, v reflect.Value) error {
	fields := structFields(v.Type())
	var live []fieldInfo
	for _, f := range fields {
		fv := v.Field(f.index)
		if f.omitempty && fv.IsZero() {
			continue
		}
		live = append(live, f)
	}
	if err := e.EncodeMapLen(len(live)); err != nil {
		return err
	}
	for _, f := range live {
		if e.opts.Packed {
			if err := e.EncodeUint64(uint64(f.index)); err != nil {
				return err
			}
		} else {
			if err := e.EncodeString(f.name); err != nil {
				return err
			}
		}
		if err := encodeAny(e, v.Field(f.index)); err != nil {
			return err
		}
	}
	return nil
}

// reflectVisitor is the default decode-side Visitor: it decodes into an
// arbitrary addressable reflect.Value, the Go-native stand-in for
// spec.md's "external generic data-modeling framework" (spec §5.1).
type reflectVisitor struct {
	target reflect.Value
	opts   DecodeOptions
}

func (r *reflectVisitor) settable() reflect.Value {
	v := r.target
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}

func (r *reflectVisitor) VisitBool(b bool) error {
	v := r.settable()
	if v.Kind() == reflect.Interface {
		v.Set(reflect.ValueOf(b))
		return nil
	}
	if v.Kind() != reflect.Bool {
		return newErr(KindWrongStructFormat, 0)
	}
	v.SetBool(b)
	return nil
}

func (r *reflectVisitor) VisitUint64(u uint64) error {
	v := r.settable()
	switch v.Kind() {
	case reflect.Interface:
		v.Set(reflect.ValueOf(u))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v.SetUint(u)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(u))
	case reflect.Float32, reflect.Float64:
		v.SetFloat(float64(u))
	default:
		return newErr(KindWrongStructFormat, 0)
	}
	return nil
}

func (r *reflectVisitor) VisitInt64(i int64) error {
	v := r.settable()
	switch v.Kind() {
	case reflect.Interface:
		v.Set(reflect.ValueOf(i))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(i)
	case reflect.Float32, reflect.Float64:
		v.SetFloat(float64(i))
	default:
		return newErr(KindWrongStructFormat, 0)
	}
	return nil
}

func (r *reflectVisitor) VisitBigInt(b *big.Int) error {
	v := r.settable()
	if v.Kind() == reflect.Interface {
		v.Set(reflect.ValueOf(*b))
		return nil
	}
	if v.Type() == reflect.TypeOf(big.Int{}) {
		v.Set(reflect.ValueOf(*b))
		return nil
	}
	return newErr(KindWrongStructFormat, 0)
}

func (r *reflectVisitor) VisitFloat64(f float64) error {
	v := r.settable()
	switch v.Kind() {
	case reflect.Interface:
		v.Set(reflect.ValueOf(f))
	case reflect.Float32, reflect.Float64:
		v.SetFloat(f)
	default:
		return newErr(KindWrongStructFormat, 0)
	}
	return nil
}

func (r *reflectVisitor) VisitBytes(b []byte, life Lifetime) error {
	v := r.settable()
	owned := append([]byte(nil), b...)
	switch {
	case v.Kind() == reflect.Interface:
		v.Set(reflect.ValueOf(owned))
		return nil
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8:
		v.SetBytes(owned)
		return nil
	default:
		return newErr(KindWrongStructFormat, 0)
	}
}

func (r *reflectVisitor) VisitString(s string, life Lifetime) error {
	v := r.settable()
	owned := s
	if life == Borrowed {
		owned = string([]byte(s))
	}
	switch v.Kind() {
	case reflect.Interface:
		v.Set(reflect.ValueOf(owned))
	case reflect.String:
		v.SetString(owned)
	default:
		return newErr(KindWrongStructFormat, 0)
	}
	return nil
}

func (r *reflectVisitor) VisitNull() error {
	v := r.settable()
	v.Set(reflect.Zero(v.Type()))
	return nil
}

func (r *reflectVisitor) VisitTag(tag uint64, d *Decoder) error {
	v := r.settable()
	if tag == cborEpochTag && v.Type() == reflect.TypeOf(time.Time{}) {
		var ec epochCapture
		if err := d.Value(MaskAnyNonTag, &ec); err != nil {
			return err
		}
		v.Set(reflect.ValueOf(ec.toTime()))
		return nil
	}
	return d.Value(MaskAll, r)
}

// epochCapture is a minimal Visitor that records the int64 or float64
// payload of a tag-1 epoch time value, mirroring ReadTimeBytes' handling
// of the two wire shapes (integer seconds vs. fractional-second float).
type epochCapture struct {
	sec  int64
	frac float64
	isF  bool
}

func (e *epochCapture) toTime() time.Time {
	if e.isF {
		sec := int64(e.frac)
		nsec := int64((e.frac - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC()
	}
	return time.Unix(e.sec, 0).UTC()
}

func (e *epochCapture) VisitBool(bool) error         { return newErr(KindWrongStructFormat, 0) }
func (e *epochCapture) VisitUint64(u uint64) error   { e.sec = int64(u); return nil }
func (e *epochCapture) VisitInt64(i int64) error     { e.sec = i; return nil }
func (e *epochCapture) VisitBigInt(*big.Int) error   { return newErr(KindWrongStructFormat, 0) }
func (e *epochCapture) VisitFloat64(f float64) error { e.frac = f; e.isF = true; return nil }
func (e *epochCapture) VisitBytes([]byte, Lifetime) error {
	return newErr(KindWrongStructFormat, 0)
}
func (e *epochCapture) VisitString(string, Lifetime) error {
	return newErr(KindWrongStructFormat, 0)
}
func (e *epochCapture) VisitNull() error            { return newErr(KindWrongStructFormat, 0) }
func (e *epochCapture) VisitSeq(*SeqAccess) error    { return newErr(KindWrongStructFormat, 0) }
func (e *epochCapture) VisitMap(*MapAccess) error    { return newErr(KindWrongStructFormat, 0) }
func (e *epochCapture) VisitTag(tag uint64, d *Decoder) error {
	return d.Value(MaskAnyNonTag, e)
}

func (r *reflectVisitor) VisitSeq(seq *SeqAccess) error {
	v := r.settable()
	switch v.Kind() {
	case reflect.Slice:
		elemType := v.Type().Elem()
		n, known := seq.Size()
		if !known {
			n = 0
		}
		out := reflect.MakeSlice(v.Type(), 0, n)
		for {
			elem := reflect.New(elemType).Elem()
			done, err := seq.Next(MaskAll, &reflectVisitor{target: elem, opts: r.opts})
			if err != nil {
				return err
			}
			if done {
				break
			}
			out = reflect.Append(out, elem)
		}
		v.Set(out)
		return nil
	case reflect.Array:
		i := 0
		for {
			if i >= v.Len() {
				done, err := seq.Next(MaskAll, discardVisitor{})
				if err != nil {
					return err
				}
				if !done {
					return newErr(KindArrayTooLong, 0)
				}
				break
			}
			done, err := seq.Next(MaskAll, &reflectVisitor{target: v.Index(i), opts: r.opts})
			if err != nil {
				return err
			}
			if done {
				if i < v.Len() {
					return newErr(KindArrayTooShort, 0)
				}
				break
			}
			i++
		}
		return nil
	case reflect.Interface:
		var out []any
		for {
			var elem any
			ev := reflect.ValueOf(&elem).Elem()
			done, err := seq.Next(MaskAll, &reflectVisitor{target: ev, opts: r.opts})
			if err != nil {
				return err
			}
			if done {
				break
			}
			out = append(out, elem)
		}
		v.Set(reflect.ValueOf(out))
		return nil
	default:
		return newErr(KindWrongStructFormat, 0)
	}
}

func (r *reflectVisitor) VisitMap(m *MapAccess) error {
	v := r.settable()
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			v.Set(reflect.MakeMap(v.Type()))
		}
		keyType := v.Type().Key()
		elemType := v.Type().Elem()
		for {
			key := reflect.New(keyType).Elem()
			done, err := m.NextKey(MaskMapKey, &reflectVisitor{target: key, opts: r.opts})
			if err != nil {
				return err
			}
			if done {
				break
			}
			val := reflect.New(elemType).Elem()
			if err := m.NextValue(MaskAll, &reflectVisitor{target: val, opts: r.opts}); err != nil {
				return err
			}
			v.SetMapIndex(key, val)
		}
		return nil
	case reflect.Struct:
		fields := structFields(v.Type())
		byName := make(map[string]fieldInfo, len(fields))
		byIndex := make(map[uint64]fieldInfo, len(fields))
		for _, f := range fields {
			byName[f.name] = f
			byIndex[uint64(f.index)] = f
		}
		for {
			name, hasName, index, hasIndex, done, err := m.NextStructKey(r.opts)
			if err != nil {
				return err
			}
			if done {
				break
			}
			var target reflect.Value
			switch {
			case hasName:
				if f, ok := byName[name]; ok {
					target = v.Field(f.index)
				}
			case hasIndex:
				if f, ok := byIndex[index]; ok {
					target = v.Field(f.index)
				}
			}
			if !target.IsValid() {
				if err := m.NextValue(MaskAll, discardVisitor{}); err != nil {
					return err
				}
				continue
			}
			if err := m.NextValue(MaskAll, &reflectVisitor{target: target, opts: r.opts}); err != nil {
				return err
			}
		}
		return nil
	case reflect.Interface:
		out := make(map[any]any)
		for {
			var key any
			kv := reflect.ValueOf(&key).Elem()
			done, err := m.NextKey(MaskMapKey, &reflectVisitor{target: kv, opts: r.opts})
			if err != nil {
				return err
			}
			if done {
				break
			}
			var val any
			vv := reflect.ValueOf(&val).Elem()
			if err := m.NextValue(MaskAll, &reflectVisitor{target: vv, opts: r.opts}); err != nil {
				return err
			}
			out[key] = val
		}
		v.Set(reflect.ValueOf(out))
		return nil
	default:
		return newErr(KindWrongStructFormat, 0)
	}
}

// discardVisitor decodes and drops a value, used to skip unknown struct
// fields and unwanted trailing array elements.
type discardVisitor struct{}

func (discardVisitor) VisitBool(bool) error                 { return nil }
func (discardVisitor) VisitUint64(uint64) error              { return nil }
func (discardVisitor) VisitInt64(int64) error                { return nil }
func (discardVisitor) VisitBigInt(*big.Int) error            { return nil }
func (discardVisitor) VisitFloat64(float64) error            { return nil }
func (discardVisitor) VisitBytes([]byte, Lifetime) error     { return nil }
func (discardVisitor) VisitString(string, Lifetime) error    { return nil }
func (discardVisitor) VisitNull() error                      { return nil }
func (discardVisitor) VisitTag(_ uint64, d *Decoder) error    { return d.Value(MaskAll, discardVisitor{}) }
func (discardVisitor) VisitSeq(seq *SeqAccess) error {
	for {
		done, err := seq.Next(MaskAll, discardVisitor{})
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}
func (discardVisitor) VisitMap(m *MapAccess) error {
	for {
		done, err := m.NextKey(MaskMapKey, discardVisitor{})
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if err := m.NextValue(MaskAll, discardVisitor{}); err != nil {
			return err
		}
	}
}

