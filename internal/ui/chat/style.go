package chat

import "github.com/charmbracelet/lipgloss"

// Chat palette.
const (
	colorBanner = lipgloss.Color("33")
	colorOK     = lipgloss.Color("34")
	colorWarn   = lipgloss.Color("214")
	colorErr    = lipgloss.Color("196")
	colorYou    = lipgloss.Color("34")
	colorAgent  = lipgloss.Color("36")
	colorFaint  = lipgloss.Color("242")
)

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
