package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Scalars(t *testing.T) {
	testCases := []struct {
		name  string
		input any
		want  string
	}{
		{"string", "hello", `"hello"`},
		{"domain", DomainHealth, `"health_wellbeing"`},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"string slice", []string{"b", "a"}, `["b","a"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MarshalCanonical(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestMarshalCanonical_SortsKeysByUTF16(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"user_id":   "u",
		"intent":    "i",
		"tenant_id": "t",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"intent":"i","tenant_id":"t","user_id":"u"}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// e + combining acute accent normalizes to the precomposed form.
	decomposed := "é"
	precomposed := "é"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(precomposed)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonical_RejectsFloatsAndNull(t *testing.T) {
	_, err := MarshalCanonical(3.14)
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_NestedObject(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b": map[string]any{"y": 2, "x": 1},
		"a": []any{"s", true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":["s",true],"b":{"x":1,"y":2}}`, string(got))
}

func TestUTF16Less_SurrogateOrdering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting at 0xD800, which sorts
	// before U+FF61 in UTF-16 code units despite the reverse UTF-8 order.
	assert.True(t, utf16Less("\U00010000", "｡"))
	assert.False(t, utf16Less("｡", "\U00010000"))
	assert.True(t, utf16Less("ab", "abc"))
}
