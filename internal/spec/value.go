package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface representing lowered descriptor values.
// Only Null, String, Int, Float, Bool, List, and *Map implement this.
type Value interface {
	specValue() // Sealed - only these types implement it
}

// Null is an explicit null. It is what a reset field lowers to.
type Null struct{}

func (Null) specValue() {}

// String represents a string value.
type String string

func (String) specValue() {}

// Int represents an integer value.
type Int int64

func (Int) specValue() {}

// Float represents a floating point value.
type Float float64

func (Float) specValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) specValue() {}

// List represents an ordered list of values.
type List []Value

func (List) specValue() {}

// Map is an insertion-ordered string-keyed map.
// The zero value is not usable; construct with NewMap or M.
type Map struct {
	keys []string
	vals map[string]Value
}

func (*Map) specValue() {}

// Pair is a key-value pair for ordered Map construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: M(P("api", String("cloudtasks.googleapis.com")), P("reason", String("...")))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{vals: map[string]Value{}}
}

// M creates an ordered map from pairs, in the order given.
func M(pairs ...Pair) *Map {
	m := NewMap()
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set stores a value. A key that already exists keeps its original position.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is present (including keys holding Null).
func (m *Map) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Delete removes key, if present.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return slices.Clone(m.keys)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's default string ordering is UTF-8 and differs for astral characters.
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// MarshalJSON renders the map with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalValueJSON(m.vals[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalValueJSON marshals a Value to compact JSON bytes, keeping map order.
// This is NOT canonical marshaling. Use MarshalCanonical for hashing.
func MarshalValueJSON(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	case List:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalValueJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("list[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case *Map:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// ToAny converts a Value into plain Go values (map[string]any, []any,
// string, int64, float64, bool, nil). Map order is lost.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case List:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case *Map:
		out := make(map[string]any, val.Len())
		for _, k := range val.keys {
			out[k] = ToAny(val.vals[k])
		}
		return out
	default:
		return nil
	}
}
