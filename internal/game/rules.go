package game

import "github.com/lox/unobots/internal/card"

// Direction represents the seating traversal order
type Direction int

const (
	Forward Direction = iota
	Reversed
)

// String returns the string representation of a direction
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reversed:
		return "reverse"
	default:
		return "unknown"
	}
}

// Toggle returns the opposite direction
func (d Direction) Toggle() Direction {
	if d == Forward {
		return Reversed
	}
	return Forward
}

// IsLegalPlay reports whether proposed may be played on top. The rules,
// in order:
//
//  1. Wild-colored cards are always legal.
//  2. Matching color is legal.
//  3. Matching non-number type is legal (Skip on Skip, etc).
//  4. Matching rank between two number cards is legal.
//
// Anything else is illegal.
func IsLegalPlay(top, proposed card.Card) bool {
	if proposed.Color.IsWild() {
		return true
	}
	if proposed.Color == top.Color {
		return true
	}
	if proposed.Type == top.Type && proposed.Type != card.Number {
		return true
	}
	if proposed.Type == card.Number && top.Type == card.Number && proposed.Rank == top.Rank {
		return true
	}
	return false
}

// NextIndex computes the seat that acts after current, honoring the
// traversal direction. playerCount must be >= 1.
func NextIndex(current, playerCount int, dir Direction) int {
	if dir == Reversed {
		return (current + playerCount - 1) % playerCount
	}
	return (current + 1) % playerCount
}
