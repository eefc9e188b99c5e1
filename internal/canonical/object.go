package canonical

import (
	"fmt"
	"sort"
	"strconv"
)

// Object is a JSON object that remembers the order its keys were added.
//
// Keys are enumerated the way JavaScript enumerates own properties:
// array-index keys first in ascending numeric order, then every other key in
// insertion order. Re-setting an existing key keeps its position.
// The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an object holding kv, which alternates keys and values.
// It panics if a key is not a string or a value is missing.
func NewObject(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("canonical: NewObject needs key/value pairs")
	}
	o := &Object{}
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("canonical: NewObject key %v is not a string", kv[i]))
		}
		o.Set(k, kv[i+1])
	}
	return o
}

// Set stores value under key.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Delete removes key; it is a no-op when the key is absent.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in enumeration order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return enumerationOrder(o.keys)
}

// MarshalJSON encodes the object with Stringify.
func (o *Object) MarshalJSON() ([]byte, error) {
	s, err := Stringify(o)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalJSON replaces the contents of o with the decoded object.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Object)
	if !ok {
		return fmt.Errorf("canonical: cannot unmarshal %T into Object", v)
	}
	*o = *decoded
	return nil
}

// enumerationOrder moves array-index keys to the front in numeric order and
// keeps the relative order of the others.
func enumerationOrder(keys []string) []string {
	out := make([]string, 0, len(keys))
	var indexes []string
	for _, k := range keys {
		if isArrayIndex(k) {
			indexes = append(indexes, k)
		}
	}
	sort.Slice(indexes, func(i, j int) bool {
		if len(indexes[i]) != len(indexes[j]) {
			return len(indexes[i]) < len(indexes[j])
		}
		return indexes[i] < indexes[j]
	})
	out = append(out, indexes...)
	for _, k := range keys {
		if !isArrayIndex(k) {
			out = append(out, k)
		}
	}
	return out
}

// maxArrayIndex is 2^32-2, the largest valid JavaScript array index.
const maxArrayIndex = 1<<32 - 2

func isArrayIndex(k string) bool {
	if k == "" || len(k) > 10 {
		return false
	}
	if k == "0" {
		return true
	}
	if k[0] < '1' || k[0] > '9' {
		return false
	}
	for i := 1; i < len(k); i++ {
		if k[i] < '0' || k[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseUint(k, 10, 64)
	return err == nil && n <= maxArrayIndex
}
