package partitionkey

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
)

var numberType = reflect.TypeFor[json.Number]()

// truthy reports whether v counts as a provided value. After following
// pointers and interfaces, nil, false, "", 0, -0 and NaN do not count;
// every other value does, including empty objects and arrays. Nil maps and
// slices serialize as null and do not count either.
func truthy(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return false
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		if rv.Type() == numberType {
			return numberTruthy(rv.String())
		}
		return rv.Len() != 0
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	default:
		return true
	}
}

// numberTruthy applies the numeric rule to a json.Number literal. An empty
// literal encodes as 0; a malformed one is left for the serializer to reject.
func numberTruthy(lit string) bool {
	if lit == "" {
		return false
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && f == 0 {
		return true
	}
	return f != 0 && !math.IsNaN(f)
}
