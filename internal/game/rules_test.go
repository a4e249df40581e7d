package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/unobots/internal/card"
)

func TestIsLegalPlay(t *testing.T) {
	top := card.NewNumber(card.Red, 5)

	tests := []struct {
		name     string
		top      card.Card
		proposed card.Card
		want     bool
	}{
		{"wild always legal", top, card.New(card.Wild, card.WildCard), true},
		{"wild draw four always legal", top, card.New(card.Wild, card.WildDrawFour), true},
		{"matching color", top, card.NewNumber(card.Red, 9), true},
		{"matching color action", top, card.New(card.Red, card.Skip), true},
		{"matching rank", top, card.NewNumber(card.Blue, 5), true},
		{"matching action type", card.New(card.Red, card.Skip), card.New(card.Blue, card.Skip), true},
		{"matching reverse type", card.New(card.Yellow, card.Reverse), card.New(card.Green, card.Reverse), true},
		{"color and rank both differ", top, card.NewNumber(card.Blue, 6), false},
		{"action on unrelated number", top, card.New(card.Blue, card.DrawTwo), false},
		{"number type does not match by type alone", top, card.NewNumber(card.Green, 2), false},
		{"rank match requires both numbers", card.New(card.Red, card.Skip), card.NewNumber(card.Blue, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLegalPlay(tt.top, tt.proposed))
		})
	}
}

func TestIsLegalPlayTopColorAlwaysMatches(t *testing.T) {
	top := card.NewNumber(card.Yellow, 3)
	for typ := card.Number; typ <= card.DrawTwo; typ++ {
		for rank := 0; rank <= 9; rank++ {
			proposed := card.Card{Color: top.Color, Type: typ, Rank: rank}
			assert.True(t, IsLegalPlay(top, proposed), "expected %s to be legal on %s", proposed, top)
		}
	}
}

func TestNextIndexForward(t *testing.T) {
	assert.Equal(t, 1, NextIndex(0, 4, Forward))
	assert.Equal(t, 0, NextIndex(3, 4, Forward))
	assert.Equal(t, 0, NextIndex(0, 1, Forward))
}

func TestNextIndexReversed(t *testing.T) {
	assert.Equal(t, 3, NextIndex(0, 4, Reversed))
	assert.Equal(t, 2, NextIndex(3, 4, Reversed))
	assert.Equal(t, 0, NextIndex(0, 1, Reversed))
}

func TestNextIndexFullCycle(t *testing.T) {
	for _, dir := range []Direction{Forward, Reversed} {
		for _, count := range []int{1, 2, 3, 7, 10} {
			idx := 0
			for i := 0; i < count; i++ {
				idx = NextIndex(idx, count, dir)
			}
			assert.Equal(t, 0, idx, "cycle of %d players (%s) should return to seat 0", count, dir)
		}
	}
}

func TestDirectionToggle(t *testing.T) {
	assert.Equal(t, Reversed, Forward.Toggle())
	assert.Equal(t, Forward, Reversed.Toggle())
	assert.Equal(t, Forward, Forward.Toggle().Toggle())
}
