package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{NewNumber(Red, 7), "Red 7"},
		{NewNumber(Yellow, 0), "Yellow 0"},
		{New(Blue, Skip), "Blue Skip"},
		{New(Green, Reverse), "Green Reverse"},
		{New(Green, DrawTwo), "Green DrawTwo"},
		{New(Wild, WildCard), "Wild"},
		{New(Wild, WildDrawFour), "WildDrawFour"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.card.String())
	}
}

func TestCardValid(t *testing.T) {
	assert.True(t, NewNumber(Red, 0).Valid())
	assert.True(t, NewNumber(Blue, 9).Valid())
	assert.True(t, New(Wild, WildDrawFour).Valid())
	assert.True(t, New(Yellow, Skip).Valid())

	// Rank out of range
	assert.False(t, NewNumber(Red, 10).Valid())
	assert.False(t, NewNumber(Red, -1).Valid())

	// Wild-colored number cards are not a thing
	assert.False(t, NewNumber(Wild, 5).Valid())

	// Undefined enums
	assert.False(t, Card{Color: Color(99), Type: Number}.Valid())
	assert.False(t, Card{Color: Red, Type: Type(99)}.Valid())
}

func TestParseColorRoundTrip(t *testing.T) {
	for c := Red; c <= Wild; c++ {
		parsed, err := ParseColor(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseColor("Purple")
	assert.Error(t, err)
}

func TestParseTypeRoundTrip(t *testing.T) {
	for typ := Number; typ <= WildDrawFour; typ++ {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseType("DrawSix")
	assert.Error(t, err)
}

func TestSeedColorOrder(t *testing.T) {
	// The seed-mapping order is fixed; changing it would change every
	// derived starting color.
	require.Equal(t, [4]Color{Red, Blue, Green, Yellow}, Colors)
	for _, c := range Colors {
		assert.False(t, c.IsWild())
	}
}
