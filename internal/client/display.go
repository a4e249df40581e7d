package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/unobots/internal/server"
)

// Styles contains terminal styling for game output
type Styles struct {
	Header    lipgloss.Style
	Winner    lipgloss.Style
	Action    lipgloss.Style
	Separator lipgloss.Style

	CardRed    lipgloss.Style
	CardBlue   lipgloss.Style
	CardGreen  lipgloss.Style
	CardYellow lipgloss.Style
	CardWild   lipgloss.Style
}

// NewStyles creates the default style set
func NewStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 2).
			Bold(true),
		Winner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Action: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#74B9FF")),
		Separator: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		CardRed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		CardBlue: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#74B9FF")).
			Bold(true),
		CardGreen: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		CardYellow: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		CardWild: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C678DD")).
			Bold(true),
	}
}

// RenderCard renders a card with its color
func (s *Styles) RenderCard(c server.CardData) string {
	label := c.Type
	if c.Type == "Number" {
		label = fmt.Sprintf("%d", c.Rank)
	}
	text := c.Color + " " + label
	if strings.HasPrefix(c.Color, "Wild") {
		text = label
	}
	return s.styleForColor(c.Color).Render(text)
}

// RenderCardName renders an already formatted card name, picking the
// style from its leading color word
func (s *Styles) RenderCardName(name string) string {
	color, _, _ := strings.Cut(name, " ")
	return s.styleForColor(color).Render(name)
}

func (s *Styles) styleForColor(color string) lipgloss.Style {
	switch color {
	case "Red":
		return s.CardRed
	case "Blue":
		return s.CardBlue
	case "Green":
		return s.CardGreen
	case "Yellow":
		return s.CardYellow
	default:
		return s.CardWild
	}
}
