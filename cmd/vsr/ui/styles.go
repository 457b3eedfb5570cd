// Package ui provides the interactive step mode of the vsr CLI.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#101F38"),
		Primary:    lipgloss.Color("#101F38"),
		Accent:     lipgloss.Color("#2E7D32"),
		Muted:      lipgloss.Color("#6B7280"),
		Error:      lipgloss.Color("#C62828"),
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#F2F2F2"),
		Primary:    lipgloss.Color("#8BC34A"),
		Accent:     lipgloss.Color("#FFD54F"),
		Muted:      lipgloss.Color("#9CA3AF"),
		Error:      lipgloss.Color("#EF5350"),
		IsDark:     true,
	}
}

// DetectTheme picks a theme from COLORFGBG ("fg;bg") or VSR_DARK_MODE=1.
func DetectTheme() Theme {
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bg, err := strconv.Atoi(parts[1]); err == nil && ((bg >= 0 && bg <= 6) || bg == 8) {
			return DarkTheme()
		}
	}
	if os.Getenv("VSR_DARK_MODE") == "1" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components of the step view.
type Styles struct {
	Theme   Theme
	Header  lipgloss.Style
	Phrase  lipgloss.Style
	Current lipgloss.Style
	Item    lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles creates styles for theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,
		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),
		Phrase: lipgloss.NewStyle().
			Foreground(theme.Muted).
			PaddingLeft(2),
		Current: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),
		Item: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Italic(true).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true).
			Padding(0, 1),
	}
}
