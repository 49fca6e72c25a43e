package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// accentColor is the configured accent, empty when the default palette or no
// accent at all is in effect.
var accentColor string

// ConfigureTheme applies a configured accent color to the shared styles.
// Accepts ANSI 0-255 codes and hex colors; "none", "off", and "default"
// disable the accent entirely. An empty value keeps the built-in palette.
func ConfigureTheme(accent string) {
	if strings.TrimSpace(accent) == "" {
		return
	}
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		Accent = lipgloss.NewStyle()
		AccentBold = lipgloss.NewStyle().Bold(true)
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}

// normalizeAccentColor validates and canonicalizes a color value. Three-digit
// hex shorthand expands to six digits; ANSI codes must be 0-255.
func normalizeAccentColor(input string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(input))
	switch v {
	case "", "none", "off", "default":
		return "", false
	}

	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		for _, r := range hex {
			if !strings.ContainsRune("0123456789abcdef", r) {
				return "", false
			}
		}
		switch len(hex) {
		case 3:
			var b strings.Builder
			b.WriteByte('#')
			for _, r := range hex {
				b.WriteRune(r)
				b.WriteRune(r)
			}
			return b.String(), true
		case 6:
			return "#" + hex, true
		}
		return "", false
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 255 {
		return "", false
	}
	return strconv.Itoa(n), true
}
