package canon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONObjectKeysSorted(t *testing.T) {
	out, err := JSON(map[string]any{"b": 1, "a": 2, "c": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":3}`, string(out))
}

func TestJSONNoWhitespace(t *testing.T) {
	type inner struct {
		Z int `json:"z"`
		A int `json:"a"`
	}
	out, err := JSON(inner{Z: 1, A: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"z":1}`, string(out))
}

func TestJSONArrayPreservesOrder(t *testing.T) {
	out, err := JSON([]any{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, `[3,1,2]`, string(out))
}

func TestJSONStringEscaping(t *testing.T) {
	out, err := JSON("a\"b\\c\nd")
	require.NoError(t, err)
	assert.Equal(t, `"a\"b\\c\nd"`, string(out))
}

func TestJSONRejectsNaN(t *testing.T) {
	_, err := JSON(map[string]any{"x": nan()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestJSONRejectsCycle(t *testing.T) {
	m := map[string]any{}
	m["self"] = m
	_, err := JSON(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestJSONIdempotent(t *testing.T) {
	type doc struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	d := doc{Name: "artifact", Tags: []string{"b", "a"}}
	out1, err := JSON(d)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out1, &back))
	out2, err := JSON(back)
	require.NoError(t, err)
	assert.Equal(t, string(out1), string(out2))
}

func nan() float64 {
	var zero float64
	return zero / zero
}
