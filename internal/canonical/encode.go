// Package canonical renders Go values as the exact JSON text JavaScript's
// JSON.stringify would produce for the same data, so digests computed over
// that text agree across runtimes.
//
// Go maps are unordered; their keys are emitted in ascending byte order after
// any array-index keys. Use Object when the producer's key order matters.
package canonical

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	numberType        = reflect.TypeFor[json.Number]()
	objectPtrType     = reflect.TypeFor[*Object]()
	objectType        = reflect.TypeFor[Object]()
	marshalerType     = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// Stringify returns the canonical JSON text of v.
func Stringify(v any) (string, error) {
	e := &encoder{visiting: make(map[visitKey]struct{})}
	if err := e.encode(reflect.ValueOf(v)); err != nil {
		return "", err
	}
	return e.buf.String(), nil
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type encoder struct {
	buf      bytes.Buffer
	visiting map[visitKey]struct{}
}

func (e *encoder) encode(v reflect.Value) error {
	if !v.IsValid() {
		e.buf.WriteString("null")
		return nil
	}
	switch v.Type() {
	case objectPtrType:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		if !v.CanInterface() {
			return &UnsupportedTypeError{Type: v.Type()}
		}
		return e.encodeObject(v.Interface().(*Object))
	case objectType:
		if !v.CanInterface() {
			return &UnsupportedTypeError{Type: v.Type()}
		}
		o := v.Interface().(Object)
		return e.encodeObject(&o)
	case numberType:
		return e.encodeNumber(v.String())
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
	}
	if v.Type().Implements(marshalerType) || v.Type().Implements(textMarshalerType) {
		return e.encodeStdlib(v)
	}
	if v.Kind() != reflect.Pointer && v.CanAddr() {
		if pt := reflect.PointerTo(v.Type()); pt.Implements(marshalerType) || pt.Implements(textMarshalerType) {
			return e.encodeStdlib(v.Addr())
		}
	}

	switch v.Kind() {
	case reflect.Interface:
		return e.encode(v.Elem())
	case reflect.Pointer:
		return e.visit(v, func() error { return e.encode(v.Elem()) })
	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32:
		e.encodeFloat(v.Float(), 32)
	case reflect.Float64:
		e.encodeFloat(v.Float(), 64)
	case reflect.String:
		e.encodeString(v.String())
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return e.encodeStdlib(v)
		}
		return e.visit(v, func() error { return e.encodeMap(v) })
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			// []byte is a base64 string.
			return e.encodeStdlib(v)
		}
		return e.visit(v, func() error { return e.encodeArray(v) })
	case reflect.Array:
		return e.encodeArray(v)
	case reflect.Struct:
		return e.encodeStruct(v)
	default:
		return &UnsupportedTypeError{Type: v.Type()}
	}
	return nil
}

// visit runs fn while v is marked as being encoded.
func (e *encoder) visit(v reflect.Value, fn func() error) error {
	key := visitKey{ptr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		key.len = v.Len()
	}
	if _, seen := e.visiting[key]; seen {
		return &CycleError{Type: v.Type()}
	}
	e.visiting[key] = struct{}{}
	defer delete(e.visiting, key)
	return fn()
}

func (e *encoder) encodeObject(o *Object) error {
	key := visitKey{ptr: reflect.ValueOf(o).Pointer(), typ: objectPtrType}
	if _, seen := e.visiting[key]; seen {
		return &CycleError{Type: objectPtrType}
	}
	e.visiting[key] = struct{}{}
	defer delete(e.visiting, key)

	e.buf.WriteByte('{')
	for i, k := range o.Keys() {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.encodeString(k)
		e.buf.WriteByte(':')
		if err := e.encode(reflect.ValueOf(o.values[k])); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) encodeMap(v reflect.Value) error {
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	e.buf.WriteByte('{')
	for i, k := range enumerationOrder(keys) {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.encodeString(k)
		e.buf.WriteByte(':')
		kv := reflect.ValueOf(k).Convert(v.Type().Key())
		if err := e.encode(v.MapIndex(kv)); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) encodeArray(v reflect.Value) error {
	e.buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.encode(v.Index(i)); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

// encodeStruct writes the JSON members of v under the encoding/json tag
// rules. Fields stay on this encoder so cycles through them are caught.
func (e *encoder) encodeStruct(v reflect.Value) error {
	var (
		names  []string
		values = make(map[string]reflect.Value)
		fields = make(map[string]structField)
	)
	for _, f := range cachedFields(v.Type()) {
		fv, ok := fieldByIndex(v, f.index)
		if !ok {
			continue
		}
		if f.omitEmpty && isEmptyValue(fv) || f.omitZero && isZeroValue(fv) {
			continue
		}
		names = append(names, f.name)
		values[f.name] = fv
		fields[f.name] = f
	}

	e.buf.WriteByte('{')
	for i, name := range enumerationOrder(names) {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.encodeString(name)
		e.buf.WriteByte(':')
		var err error
		if fields[name].quoted {
			err = e.encodeQuoted(values[name])
		} else {
			err = e.encode(values[name])
		}
		if err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

// encodeQuoted handles the ",string" tag option: the scalar's JSON text is
// itself written as a string.
func (e *encoder) encodeQuoted(v reflect.Value) error {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		v = v.Elem()
	}
	inner := &encoder{visiting: e.visiting}
	if err := inner.encode(v); err != nil {
		return err
	}
	e.encodeString(inner.buf.String())
	return nil
}

// encodeStdlib lets encoding/json run a value's own marshaler, then
// re-reads the result order preserving and encodes it canonically.
func (e *encoder) encodeStdlib(v reflect.Value) error {
	if !v.CanInterface() {
		return &UnsupportedTypeError{Type: v.Type()}
	}
	data, err := json.Marshal(v.Interface())
	if err != nil {
		return translateStdlibError(err)
	}
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	return e.encode(reflect.ValueOf(parsed))
}

func translateStdlibError(err error) error {
	var typeErr *json.UnsupportedTypeError
	if errors.As(err, &typeErr) {
		return &UnsupportedTypeError{Type: typeErr.Type}
	}
	var valueErr *json.UnsupportedValueError
	if errors.As(err, &valueErr) && strings.HasPrefix(valueErr.Str, "encountered a cycle") {
		return &CycleError{Type: valueErr.Value.Type()}
	}
	return err
}

func (e *encoder) encodeFloat(f float64, bits int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		e.buf.WriteString("null")
		return
	}
	if f == 0 {
		// -0 prints as 0.
		e.buf.WriteByte('0')
		return
	}
	format := byte('f')
	abs := math.Abs(f)
	if bits == 64 && (abs < 1e-6 || abs >= 1e21) ||
		bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, f, format, -1, bits)
	if format == 'e' {
		// e-07 becomes e-7
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	e.buf.Write(b)
}

func (e *encoder) encodeNumber(lit string) error {
	if lit == "" {
		lit = "0"
	}
	if !isValidNumber(lit) {
		return &InvalidNumberError{Literal: lit}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return &InvalidNumberError{Literal: lit}
	}
	e.encodeFloat(f, 64)
	return nil
}

const hexDigits = "0123456789abcdef"

func (e *encoder) encodeString(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			switch c {
			case '"':
				e.buf.WriteString(`\"`)
			case '\\':
				e.buf.WriteString(`\\`)
			case '\b':
				e.buf.WriteString(`\b`)
			case '\f':
				e.buf.WriteString(`\f`)
			case '\n':
				e.buf.WriteString(`\n`)
			case '\r':
				e.buf.WriteString(`\r`)
			case '\t':
				e.buf.WriteString(`\t`)
			default:
				if c < 0x20 {
					e.buf.WriteString(`\u00`)
					e.buf.WriteByte(hexDigits[c>>4])
					e.buf.WriteByte(hexDigits[c&0xF])
				} else {
					e.buf.WriteByte(c)
				}
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			e.buf.WriteRune(utf8.RuneError)
		} else {
			e.buf.WriteString(s[i : i+size])
		}
		i += size
	}
	e.buf.WriteByte('"')
}

// isValidNumber reports whether s is a JSON number literal.
func isValidNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
		if s == "" {
			return false
		}
	}
	switch {
	case s[0] == '0':
		s = s[1:]
	case '1' <= s[0] && s[0] <= '9':
		s = s[1:]
		for len(s) > 0 && '0' <= s[0] && s[0] <= '9' {
			s = s[1:]
		}
	default:
		return false
	}
	if len(s) >= 2 && s[0] == '.' && '0' <= s[1] && s[1] <= '9' {
		s = s[2:]
		for len(s) > 0 && '0' <= s[0] && s[0] <= '9' {
			s = s[1:]
		}
	}
	if len(s) >= 2 && (s[0] == 'e' || s[0] == 'E') {
		s = s[1:]
		if s[0] == '+' || s[0] == '-' {
			s = s[1:]
			if s == "" {
				return false
			}
		}
		for len(s) > 0 && '0' <= s[0] && s[0] <= '9' {
			s = s[1:]
		}
	}
	return s == ""
}
