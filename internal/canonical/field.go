package canonical

import "reflect"

// Field returns the member of v that serializes under the JSON name name.
//
// Objects, string-keyed maps and structs are searched; pointers and
// interfaces are followed. Struct members are named as encoding/json names
// them, including fields promoted from embedded structs; a name claimed by
// two equally shallow fields belongs to neither. Any other value has no
// members and reports false.
func Field(v any, name string) (any, bool) {
	if o, ok := v.(*Object); ok {
		return o.Get(name)
	}
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return nil, false
		}
		if rv.Type() == objectPtrType {
			return rv.Interface().(*Object).Get(name)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Type() == objectType {
		o := rv.Interface().(Object)
		return o.Get(name)
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() || !mv.CanInterface() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		for _, f := range cachedFields(rv.Type()) {
			if f.name != name {
				continue
			}
			fv, ok := fieldByIndex(rv, f.index)
			if !ok {
				return nil, false
			}
			return fieldValue(fv)
		}
	}
	return nil, false
}

// fieldValue returns fv as an interface. Fields promoted through an
// unexported embedded struct cannot be handed out directly, so their
// JSON form is returned instead.
func fieldValue(fv reflect.Value) (any, bool) {
	if fv.CanInterface() {
		return fv.Interface(), true
	}
	e := &encoder{visiting: make(map[visitKey]struct{})}
	if err := e.encode(fv); err != nil {
		return nil, false
	}
	v, err := Parse(e.buf.Bytes())
	if err != nil {
		return nil, false
	}
	return v, true
}
