// Package partitionkey derives stable, length-bounded partition keys for
// events so that producers written in different languages shard the same
// event the same way.
//
// An explicit partitionKey on the event wins. Without one the event's
// canonical JSON is hashed with SHA3-512. Keys longer than MaxKeyLength are
// re-hashed, and TrivialKey is returned when there is nothing to derive from.
package partitionkey

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/mycelian/partitionkey/internal/canonical"
	"github.com/mycelian/partitionkey/internal/digest"
)

const (
	// TrivialKey is returned when no other candidate exists.
	TrivialKey = "0"

	// MaxKeyLength bounds key length, counted in UTF-16 code units.
	MaxKeyLength = 256
)

// partitionKeyField is the JSON name of the explicit key.
const partitionKeyField = "partitionKey"

// Result is a derived key together with the step that produced it.
type Result struct {
	Key    string
	Source Source
}

// Derive returns the partition key for event.
//
// The only errors come from serializing values that have no JSON form
// (cycles, channels, functions); they are returned unchanged.
func Derive(event any) (string, error) {
	res, err := Resolve(event)
	if err != nil {
		return "", err
	}
	return res.Key, nil
}

// MustDerive is like Derive but panics on error.
func MustDerive(event any) string {
	key, err := Derive(event)
	if err != nil {
		panic(err)
	}
	return key
}

// DeriveJSON derives the key of the JSON document in data, keeping the
// document's object key order. Blank input is treated as no event.
func DeriveJSON(data []byte) (string, error) {
	res, err := ResolveJSON(data)
	if err != nil {
		return "", err
	}
	return res.Key, nil
}

// ResolveJSON is the Resolve counterpart of DeriveJSON.
func ResolveJSON(data []byte) (Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Resolve(nil)
	}
	event, err := canonical.Parse(data)
	if err != nil {
		return Result{}, err
	}
	return Resolve(event)
}

// Resolve derives the key for event and reports which step produced it.
func Resolve(event any) (Result, error) {
	if raw, ok := rawMessage(event); ok {
		return ResolveJSON(raw)
	}

	var (
		candidate any
		source    = SourceTrivial
	)
	if truthy(event) {
		// A falsy partitionKey (0, "", false) is not a key: the whole event,
		// that field included, is hashed instead.
		if pk, _ := canonical.Field(event, partitionKeyField); truthy(pk) {
			candidate, source = pk, SourceExplicit
		} else {
			data, err := canonical.Stringify(event)
			if err != nil {
				return Result{}, err
			}
			candidate, source = digest.SHA3512Hex(data), SourceEventDigest
		}
	}

	var key string
	if candidate != nil {
		if s, ok := asString(candidate); ok {
			key = s
		} else {
			s, err := canonical.Stringify(candidate)
			if err != nil {
				return Result{}, err
			}
			key, source = s, SourceEncoded
		}
	}

	if key != "" && tooLong(key) {
		key, source = digest.SHA3512Hex(key), SourceKeyDigest
	}
	if key == "" {
		return Result{Key: TrivialKey, Source: SourceTrivial}, nil
	}
	return Result{Key: key, Source: source}, nil
}

// asString unwraps string-kinded values, following pointers. json.Number is
// a number, not a string.
func asString(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.String || rv.Type() == numberType {
		return "", false
	}
	return rv.String(), true
}

// tooLong reports whether s exceeds MaxKeyLength in UTF-16 code units,
// the unit JavaScript's String#length counts.
func tooLong(s string) bool {
	if len(s) <= MaxKeyLength {
		return false
	}
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n > MaxKeyLength
}

var rawMessageType = reflect.TypeFor[json.RawMessage]()

// rawMessage reports whether v is a json.RawMessage, possibly behind
// pointers. A nil pointer yields an empty message.
func rawMessage(v any) (json.RawMessage, bool) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer {
		return nil, false
	}
	t := rv.Type()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != rawMessageType {
		return nil, false
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}
	return rv.Interface().(json.RawMessage), true
}
