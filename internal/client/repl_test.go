package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unobots/internal/server"
)

func TestParseCardArgs(t *testing.T) {
	tests := []struct {
		args []string
		want server.CardData
	}{
		{[]string{"red", "5"}, server.CardData{Color: "Red", Type: "Number", Rank: 5}},
		{[]string{"GREEN", "0"}, server.CardData{Color: "Green", Type: "Number", Rank: 0}},
		{[]string{"blue", "skip"}, server.CardData{Color: "Blue", Type: "Skip"}},
		{[]string{"yellow", "reverse"}, server.CardData{Color: "Yellow", Type: "Reverse"}},
		{[]string{"red", "draw2"}, server.CardData{Color: "Red", Type: "DrawTwo"}},
		{[]string{"wild"}, server.CardData{Color: "Wild", Type: "Wild"}},
		{[]string{"wild4"}, server.CardData{Color: "Wild", Type: "WildDrawFour"}},
	}

	for _, tt := range tests {
		got, err := parseCardArgs(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseCardArgsRejectsMalformed(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"red"},
		{"red", "banana"},
		{"red", "5", "extra"},
	} {
		_, err := parseCardArgs(args)
		assert.Error(t, err, "args %v", args)
	}
}
