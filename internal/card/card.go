package card

import "fmt"

// Color represents a card color
type Color int

const (
	Red Color = iota
	Blue
	Green
	Yellow
	Wild
)

// String returns the string representation of a color
func (c Color) String() string {
	switch c {
	case Red:
		return "Red"
	case Blue:
		return "Blue"
	case Green:
		return "Green"
	case Yellow:
		return "Yellow"
	case Wild:
		return "Wild"
	default:
		return "Unknown"
	}
}

// IsWild returns true if the color is the Wild pseudo-color
func (c Color) IsWild() bool {
	return c == Wild
}

// Valid returns true if the color is one of the defined colors
func (c Color) Valid() bool {
	return c >= Red && c <= Wild
}

// Colors lists the four non-wild colors in seed-mapping order.
// Seed-derived starting colors index into this slice.
var Colors = [4]Color{Red, Blue, Green, Yellow}

// Type represents a card type
type Type int

const (
	Number Type = iota
	Skip
	Reverse
	DrawTwo
	WildCard
	WildDrawFour
)

// String returns the string representation of a card type
func (t Type) String() string {
	switch t {
	case Number:
		return "Number"
	case Skip:
		return "Skip"
	case Reverse:
		return "Reverse"
	case DrawTwo:
		return "DrawTwo"
	case WildCard:
		return "Wild"
	case WildDrawFour:
		return "WildDrawFour"
	default:
		return "Unknown"
	}
}

// Valid returns true if the type is one of the defined types
func (t Type) Valid() bool {
	return t >= Number && t <= WildDrawFour
}

// Card represents a single card. Rank is only meaningful when Type is
// Number; it is ignored for action and wild cards. Cards are immutable
// values.
type Card struct {
	Color Color
	Type  Type
	Rank  int
}

// NewNumber creates a numbered card
func NewNumber(color Color, rank int) Card {
	return Card{Color: color, Type: Number, Rank: rank}
}

// New creates an action or wild card
func New(color Color, typ Type) Card {
	return Card{Color: color, Type: typ}
}

// String returns a compact representation (e.g., "Red 7", "Blue Skip", "Wild")
func (c Card) String() string {
	if c.Type == Number {
		return fmt.Sprintf("%s %d", c.Color, c.Rank)
	}
	if c.Color == Wild {
		return c.Type.String()
	}
	return fmt.Sprintf("%s %s", c.Color, c.Type)
}

// ParseColor parses a color name as produced by Color.String
func ParseColor(s string) (Color, error) {
	for c := Red; c <= Wild; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid color: %q", s)
}

// ParseType parses a type name as produced by Type.String
func ParseType(s string) (Type, error) {
	for t := Number; t <= WildDrawFour; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("invalid card type: %q", s)
}

// Valid checks structural validity: defined color and type, rank in
// range for numbered cards.
func (c Card) Valid() bool {
	if !c.Color.Valid() || !c.Type.Valid() {
		return false
	}
	if c.Type == Number {
		return !c.Color.IsWild() && c.Rank >= 0 && c.Rank <= 9
	}
	return true
}
