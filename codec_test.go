package darkroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringsRoundTrip(t *testing.T) {
	tests := [][]string{
		nil,
		{},
		{"one"},
		{"portrait", "studio", "black & white"},
		{"", "kept-empties-are-callers-problem"},
	}
	for _, in := range tests {
		got := decodeStrings(encodeStrings(in))
		if len(in) == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, in, got)
		}
	}
}

func TestStringMapRoundTrip(t *testing.T) {
	tests := []map[string]string{
		nil,
		{},
		{"title": "Weddings"},
		{"title": "Weddings", "description": "A gallery", "og:image": "/public/cover.jpg"},
	}
	for _, in := range tests {
		got := decodeStringMap(encodeStringMap(in))
		if len(in) == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, in, got)
		}
	}
}

func TestDecodeFallsBackOnMalformedText(t *testing.T) {
	assert.Equal(t, []string{}, decodeStrings("not json"))
	assert.Equal(t, []string{}, decodeStrings(`{"wrong":"shape"}`))
	assert.Equal(t, []string{}, decodeStrings("null"))
	assert.Equal(t, map[string]string{}, decodeStringMap("not json"))
	assert.Equal(t, map[string]string{}, decodeStringMap(`["wrong","shape"]`))
	assert.Equal(t, map[string]string{}, decodeStringMap("null"))
}

func TestBoolCoercion(t *testing.T) {
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
	assert.True(t, intToBool(1))
	assert.False(t, intToBool(0))
	assert.True(t, intToBool(7))
}
