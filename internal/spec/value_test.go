package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPreservesInsertionOrder(t *testing.T) {
	m := M(P("zebra", Int(1)), P("alpha", Int(2)), P("beta", Int(3)))
	assert.Equal(t, []string{"zebra", "alpha", "beta"}, m.Keys())

	m.Set("zebra", Int(9))
	assert.Equal(t, []string{"zebra", "alpha", "beta"}, m.Keys(), "overwrite keeps position")
	v, ok := m.Get("zebra")
	require.True(t, ok)
	assert.Equal(t, Int(9), v)
}

func TestMapDelete(t *testing.T) {
	m := M(P("a", Int(1)), P("b", Int(2)))
	m.Delete("a")
	m.Delete("missing")
	assert.Equal(t, []string{"b"}, m.Keys())
	assert.False(t, m.Has("a"))
	assert.Equal(t, 1, m.Len())
}

func TestMapHasNull(t *testing.T) {
	m := M(P("availableMemoryMb", Null{}))
	assert.True(t, m.Has("availableMemoryMb"))
	assert.False(t, m.Has("timeoutSeconds"))
}

func TestMarshalValueJSONKeepsOrder(t *testing.T) {
	m := M(
		P("specVersion", String("v1alpha1")),
		P("endpoints", NewMap()),
		P("params", List{}),
		P("memory", Null{}),
		P("ratio", Float(0.5)),
		P("on", Bool(true)),
	)
	b, err := MarshalValueJSON(m)
	require.NoError(t, err)
	assert.Equal(t, `{"specVersion":"v1alpha1","endpoints":{},"params":[],"memory":null,"ratio":0.5,"on":true}`, string(b))
}

func TestSortedKeysUTF16(t *testing.T) {
	// UTF-16 order puts the surrogate pair (0xD800) before 0xE000.
	m := M(P("\uE000", Int(1)), P("\U00010000", Int(2)))
	assert.Equal(t, []string{"\U00010000", "\uE000"}, m.SortedKeys())
}

func TestToAny(t *testing.T) {
	m := M(
		P("name", String("fn")),
		P("count", Int(2)),
		P("list", List{String("a"), Null{}}),
	)
	assert.Equal(t, map[string]any{
		"name":  "fn",
		"count": int64(2),
		"list":  []any{"a", nil},
	}, ToAny(m))
}
