package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + borders.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Selected lipgloss.Style

	Border lipgloss.Border
	Frame  lipgloss.Color

	SymOK, SymFail, SymItem string
}

var current = themeFor("classic")

// SetTheme switches the theme by name; unknown names fall back to classic.
func SetTheme(name string) { current = themeFor(name) }

// Current exposes what renderers need.
func Current() Theme { return current }

func themeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:     "neon",
			Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
			Border:   lipgloss.RoundedBorder(),
			Frame:    lipgloss.Color("13"),
			SymOK:    "✔", SymFail: "✖", SymItem: "◼",
		}
	case "mono":
		plain := lipgloss.NewStyle()
		return Theme{
			Name:  "mono",
			Title: plain, Muted: plain, Accent: plain, Success: plain, Error: plain,
			Selected: plain.Reverse(true),
			Border:   lipgloss.ASCIIBorder(),
			SymOK:    "ok", SymFail: "x", SymItem: "-",
		}
	default: // classic
		return Theme{
			Name:     "classic",
			Title:    lipgloss.NewStyle().Bold(true),
			Muted:    lipgloss.NewStyle().Faint(true),
			Accent:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
			Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			Selected: lipgloss.NewStyle().Bold(true).Reverse(true),
			Border:   lipgloss.RoundedBorder(),
			Frame:    lipgloss.Color("8"),
			SymOK:    "✔", SymFail: "✖", SymItem: "•",
		}
	}
}
