package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette loosely follows spreadsheet greens on a dark background
var (
	// Base colors (backgrounds and text)
	ColorBase00 = lipgloss.Color("#151a17") // Dark background
	ColorBase01 = lipgloss.Color("#1f2622") // Status bar background
	ColorBase02 = lipgloss.Color("#2b352f") // Selection background
	ColorBase03 = lipgloss.Color("#4f5d54") // Separators, muted text
	ColorBase04 = lipgloss.Color("#7a8a7f") // Secondary text
	ColorBase05 = lipgloss.Color("#b4c2b8") // Default foreground

	// Accent colors
	ColorRed    = lipgloss.Color("#d95f5f")
	ColorOrange = lipgloss.Color("#eb8755")
	ColorYellow = lipgloss.Color("#f5b761")
	ColorGreen  = lipgloss.Color("#34a853") // Sheets green
	ColorCyan   = lipgloss.Color("#61afaf")
	ColorViolet = lipgloss.Color("#6c71c4")

	ColorFocus = ColorGreen
	ColorError = ColorRed
	ColorMuted = ColorBase03
)

// Styles defines the Lipgloss styles for the TUI components
type Styles struct {
	// Transcript
	UserMessage        lipgloss.Style
	BotMessage         lipgloss.Style
	PlaceholderMessage lipgloss.Style
	SenderLabel        lipgloss.Style

	// Chrome
	Header       lipgloss.Style
	Input        lipgloss.Style
	ErrorMessage lipgloss.Style
	HelpText     lipgloss.Style
}

// DefaultStyles returns the default Lipgloss styles
func DefaultStyles() *Styles {
	return &Styles{
		UserMessage: lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true),

		BotMessage: lipgloss.NewStyle().
			Foreground(ColorBase05),

		PlaceholderMessage: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true),

		SenderLabel: lipgloss.NewStyle().
			Foreground(ColorBase04),

		Header: lipgloss.NewStyle().
			Foreground(ColorFocus).
			Bold(true).
			Padding(0, 1),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFocus),

		ErrorMessage: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		HelpText: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}
