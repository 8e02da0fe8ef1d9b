package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Keywords
	}{
		{name: "plain", raw: "happy,holy,angel", want: Keywords{"happy", "holy", "angel"}},
		{name: "spaces are trimmed", raw: "a, b ,  c", want: Keywords{"a", "b", "c"}},
		{name: "blank entries dropped", raw: "a,, ,b", want: Keywords{"a", "b"}},
		{name: "only separators", raw: " , ,", want: Keywords{}},
		{name: "single", raw: "smile", want: Keywords{"smile"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKeywords(tt.raw))
		})
	}
}

func TestKeywordsValueIsJSONArray(t *testing.T) {
	value, err := Keywords{"a", "b", "c"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b","c"]`, value)

	value, err = Keywords(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)
}

func TestKeywordsScan(t *testing.T) {
	var k Keywords
	require.NoError(t, k.Scan([]byte(`["x","y"]`)))
	assert.Equal(t, Keywords{"x", "y"}, k)

	require.NoError(t, k.Scan(`["z"]`))
	assert.Equal(t, Keywords{"z"}, k)

	require.NoError(t, k.Scan(nil))
	assert.Equal(t, Keywords{}, k)

	assert.Error(t, k.Scan("not json"))
	assert.Error(t, k.Scan(42))
}

func TestKeywordsContains(t *testing.T) {
	k := Keywords{"happy", "holy"}
	assert.True(t, k.Contains("holy"))
	assert.False(t, k.Contains("ho"))
}
