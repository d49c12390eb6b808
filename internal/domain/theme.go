package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Theme is a visitor's display mode.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ErrUnknownTheme is returned when a value is neither "light" nor "dark".
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme converts a stored or submitted value into a Theme.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool { return t == ThemeDark }

// Style describes presentational attributes for a UI surface.
type Style struct {
	Foreground string
	Background string
	Bold       bool
}

// StyleTokens is the full set of styles the view layer needs for one theme.
// Mode is the class applied to the document root ("dark" or empty).
type StyleTokens struct {
	Mode   string
	Page   Style
	Header Style
	Card   Style
	Input  Style
	Button Style

	Accent string
	Muted  string
	Danger string
	Border string
}

var palettes = map[Theme]StyleTokens{
	ThemeLight: {
		Mode:   "",
		Page:   Style{Foreground: "#1F2937", Background: "#EEF2FF"},
		Header: Style{Foreground: "#111827", Background: "#FFFFFF", Bold: true},
		Card:   Style{Foreground: "#1F2937", Background: "#FFFFFF"},
		Input:  Style{Foreground: "#1F2937", Background: "#FFFFFF"},
		Button: Style{Foreground: "#FFFFFF", Background: "#4F46E5", Bold: true},
		Accent: "#4F46E5",
		Muted:  "#4B5563",
		Danger: "#DC2626",
		Border: "#D1D5DB",
	},
	ThemeDark: {
		Mode:   "dark",
		Page:   Style{Foreground: "#F3F4F6", Background: "#312E81"},
		Header: Style{Foreground: "#FFFFFF", Background: "#1F2937", Bold: true},
		Card:   Style{Foreground: "#F3F4F6", Background: "#1F2937"},
		Input:  Style{Foreground: "#F3F4F6", Background: "#374151"},
		Button: Style{Foreground: "#FFFFFF", Background: "#4F46E5", Bold: true},
		Accent: "#818CF8",
		Muted:  "#D1D5DB",
		Danger: "#F87171",
		Border: "#4B5563",
	},
}

// Tokens maps a theme to its style tokens. Unknown themes resolve to light.
func Tokens(t Theme) StyleTokens {
	if tokens, ok := palettes[t]; ok {
		return tokens
	}
	return palettes[ThemeLight]
}
