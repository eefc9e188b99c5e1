package partitionkey

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycelian/partitionkey/internal/digest"
)

func TestDerive_AbsentEventReturnsTrivialKey(t *testing.T) {
	t.Parallel()
	for _, event := range []any{nil, (*Object)(nil), map[string]any(nil), []any(nil), json.RawMessage(nil), json.RawMessage("null")} {
		key, err := Derive(event)
		require.NoError(t, err)
		assert.Equal(t, TrivialKey, key, "event %#v", event)
	}
}

func TestDerive_ExplicitKeyIsHonored(t *testing.T) {
	t.Parallel()
	key, err := Derive(map[string]any{"partitionKey": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", key)
}

func TestDerive_HashesEventWithoutKey(t *testing.T) {
	t.Parallel()
	event := map[string]any{"a": 1, "b": "two", "c": []any{3, 4, 5}}
	key, err := Derive(event)
	require.NoError(t, err)
	assert.Equal(t, digest.SHA3512Hex(`{"a":1,"b":"two","c":[3,4,5]}`), key)
	assert.Len(t, key, digest.Size)
}

func TestDerive_NonStringKeyIsEncoded(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		pk   any
		want string
	}{
		{"int", 123, "123"},
		{"float", 1.5, "1.5"},
		{"true", true, "true"},
		{"json number", json.Number("1e2"), "100"},
		{"object", map[string]any{"x": 1}, `{"x":1}`},
		{"empty object", map[string]any{}, `{}`},
		{"array", []any{1, "a"}, `[1,"a"]`},
		{"infinity encodes as null", math.Inf(1), "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(map[string]any{"partitionKey": tt.pk})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Key)
			assert.Equal(t, SourceEncoded, res.Source)
		})
	}
}

func TestDerive_FalsyKeyHashesWholeEvent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		pk   any
		json string
	}{
		{"zero", 0, `{"partitionKey":0}`},
		{"empty string", "", `{"partitionKey":""}`},
		{"false", false, `{"partitionKey":false}`},
		{"nil", nil, `{"partitionKey":null}`},
		{"NaN", math.NaN(), `{"partitionKey":null}`},
		{"zero json number", json.Number("0.0"), `{"partitionKey":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(map[string]any{"partitionKey": tt.pk})
			require.NoError(t, err)
			assert.Equal(t, digest.SHA3512Hex(tt.json), res.Key)
			assert.Equal(t, SourceEventDigest, res.Source)
		})
	}
}

func TestDerive_FalsyEventReturnsTrivialKey(t *testing.T) {
	t.Parallel()
	for _, event := range []any{0, 0.0, "", false, math.NaN(), json.Number("0")} {
		res, err := Resolve(event)
		require.NoError(t, err)
		assert.Equal(t, Result{Key: TrivialKey, Source: SourceTrivial}, res, "event %#v", event)
	}
}

func TestDerive_PrimitiveEventIsHashed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		event any
		json  string
	}{
		{true, "true"},
		{5, "5"},
		{"abc", `"abc"`},
		{[]any{}, "[]"},
		{map[string]any{}, "{}"},
	}
	for _, tt := range tests {
		key, err := Derive(tt.event)
		require.NoError(t, err)
		assert.Equal(t, digest.SHA3512Hex(tt.json), key, "event %#v", tt.event)
	}
}

func TestDerive_LongKeyIsRehashed(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 300)
	res, err := Resolve(map[string]any{"partitionKey": long})
	require.NoError(t, err)
	assert.Equal(t, digest.SHA3512Hex(long), res.Key)
	assert.Equal(t, SourceKeyDigest, res.Source)
}

func TestDerive_LengthBoundary(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		key    string
		rehash bool
	}{
		{"at limit", strings.Repeat("a", MaxKeyLength), false},
		{"one over", strings.Repeat("a", MaxKeyLength+1), true},
		// 2 bytes each, 1 UTF-16 unit each
		{"multibyte under limit", strings.Repeat("é", 200), false},
		// 4 bytes each, 2 UTF-16 units each
		{"surrogate pairs at limit", strings.Repeat("😀", 128), false},
		{"surrogate pairs over", strings.Repeat("😀", 129), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Derive(map[string]any{"partitionKey": tt.key})
			require.NoError(t, err)
			if tt.rehash {
				assert.Equal(t, digest.SHA3512Hex(tt.key), key)
			} else {
				assert.Equal(t, tt.key, key)
			}
		})
	}
}

func TestDerive_LongEncodedKeyIsRehashed(t *testing.T) {
	t.Parallel()
	nums := make([]any, 100)
	for i := range nums {
		nums[i] = i
	}
	encoded, err := json.Marshal(nums)
	require.NoError(t, err)
	require.Greater(t, len(encoded), MaxKeyLength)

	res, err := Resolve(map[string]any{"partitionKey": nums})
	require.NoError(t, err)
	assert.Equal(t, digest.SHA3512Hex(string(encoded)), res.Key)
	assert.Equal(t, SourceKeyDigest, res.Source)
}

func TestDerive_BoundedKeysAreStable(t *testing.T) {
	t.Parallel()
	events := []any{
		map[string]any{"a": 1},
		map[string]any{"partitionKey": strings.Repeat("x", 1000)},
		map[string]any{"partitionKey": "short"},
		map[string]any{"partitionKey": 42},
	}
	for _, event := range events {
		first := MustDerive(event)
		again := MustDerive(map[string]any{"partitionKey": first})
		assert.Equal(t, first, again)
		assert.LessOrEqual(t, len(first), MaxKeyLength)
	}
}

func TestDerive_EventShapes(t *testing.T) {
	t.Parallel()
	type keyed struct {
		PartitionKey any    `json:"partitionKey,omitempty"`
		Name         string `json:"name"`
	}
	type label string
	type Base struct {
		PartitionKey string `json:"partitionKey"`
	}
	type Shadow struct {
		PartitionKey string `json:"partitionKey"`
	}
	type embedded struct {
		Base
		Name string `json:"name"`
	}
	type embeddedPtr struct {
		*Base
		Name string `json:"name"`
	}
	type conflicting struct {
		Base
		Shadow
	}
	type duplicateTags struct {
		First  string `json:"partitionKey"`
		Second string `json:"partitionKey"`
		Name   string `json:"name"`
	}
	s := "ptr"
	raw := json.RawMessage(`{"partitionKey":"k5"}`)

	tests := []struct {
		name  string
		event any
		want  string
	}{
		{"struct with tag", keyed{PartitionKey: "k1"}, "k1"},
		{"pointer to struct", &keyed{PartitionKey: "k2"}, "k2"},
		{"struct without key", keyed{Name: "n"}, digest.SHA3512Hex(`{"name":"n"}`)},
		{"object", NewObject("partitionKey", "k3"), "k3"},
		{"named string key", map[string]any{"partitionKey": label("k4")}, "k4"},
		{"pointer key", map[string]any{"partitionKey": &s}, "ptr"},
		{"typed map", map[string]int{"partitionKey": 7}, "7"},
		{"raw message", json.RawMessage(`{"partitionKey":"k5"}`), "k5"},
		{"pointer to raw message", &raw, "k5"},
		{"nil raw message pointer", (*json.RawMessage)(nil), TrivialKey},
		{"embedded struct", embedded{Base: Base{PartitionKey: "k6"}, Name: "n"}, "k6"},
		{"embedded pointer", embeddedPtr{Base: &Base{PartitionKey: "k7"}}, "k7"},
		{"nil embedded pointer", embeddedPtr{Name: "n"}, digest.SHA3512Hex(`{"name":"n"}`)},
		{
			"conflicting embedded keys",
			conflicting{Base{PartitionKey: "a"}, Shadow{PartitionKey: "b"}},
			digest.SHA3512Hex(`{}`),
		},
		{
			"duplicate tags cancel",
			duplicateTags{First: "a", Second: "b", Name: "n"},
			digest.SHA3512Hex(`{"name":"n"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := Derive(tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestDeriveJSON_KeepsDocumentKeyOrder(t *testing.T) {
	t.Parallel()
	key, err := DeriveJSON([]byte(`{"b":"two","a":1,"c":[3,4,5]}`))
	require.NoError(t, err)
	assert.Equal(t, digest.SHA3512Hex(`{"b":"two","a":1,"c":[3,4,5]}`), key)

	// The same data as a Go map hashes in sorted key order.
	mapKey, err := Derive(map[string]any{"b": "two", "a": 1, "c": []any{3, 4, 5}})
	require.NoError(t, err)
	assert.NotEqual(t, key, mapKey)

	ordered, err := Derive(NewObject("b", "two", "a", 1, "c", []any{3, 4, 5}))
	require.NoError(t, err)
	assert.Equal(t, key, ordered)
}

func TestDeriveJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"", TrivialKey},
		{"  \n", TrivialKey},
		{"null", TrivialKey},
		{"0", TrivialKey},
		{`""`, TrivialKey},
		{`{"partitionKey":"abc"}`, "abc"},
		{`{"partitionKey":123}`, "123"},
		{`{"partitionKey":1.0}`, "1"},
		{`{"partitionKey":0,"x":1.50}`, digest.SHA3512Hex(`{"partitionKey":0,"x":1.5}`)},
	}
	for _, tt := range tests {
		key, err := DeriveJSON([]byte(tt.in))
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, key, "input %q", tt.in)
	}

	_, err := DeriveJSON([]byte(`{"partitionKey":`))
	var syntaxErr *SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestDerive_SerializationErrorsPropagate(t *testing.T) {
	t.Parallel()
	cyclic := map[string]any{"a": 1}
	cyclic["self"] = cyclic

	_, err := Derive(cyclic)
	assert.ErrorIs(t, err, ErrCycle)
	assert.Panics(t, func() { MustDerive(cyclic) })

	type holder struct {
		O *Object `json:"o"`
	}
	o := NewObject("a", 1)
	o.Set("h", holder{O: o})
	_, err = Derive(o)
	assert.ErrorIs(t, err, ErrCycle)

	// An explicit key short-circuits serialization of the event.
	cyclic["partitionKey"] = "safe"
	key, err := Derive(cyclic)
	require.NoError(t, err)
	assert.Equal(t, "safe", key)

	_, err = Derive(map[string]any{"partitionKey": make(chan int)})
	var typeErr *UnsupportedTypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestDerive_ConcurrentCallsAgree(t *testing.T) {
	t.Parallel()
	event := map[string]any{"user": "u1", "n": []any{1, 2, 3}}
	want := MustDerive(event)

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := MustDerive(event); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("concurrent derive mismatch: %s", got)
	}
}
