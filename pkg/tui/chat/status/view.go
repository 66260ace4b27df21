package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/sheetfreak/pkg/tui/theme"
)

func (m StatusModel) View() string {
	// Hide the entire status bar when not active
	if !m.isActive || m.width == 0 {
		return ""
	}

	var components []string
	components = append(components, m.spinner.View())

	if m.status != "" {
		statusStyle := lipgloss.NewStyle().Foreground(theme.ColorBase05)
		components = append(components, statusStyle.Render(m.status))
	}

	if m.timer > 0 {
		minutes := int(m.timer.Minutes())
		seconds := int(m.timer.Seconds()) % 60
		timerStyle := lipgloss.NewStyle().Foreground(theme.ColorBase04)
		components = append(components, timerStyle.Render(fmt.Sprintf("%02d:%02d", minutes, seconds)))
	}

	if m.icon != "" {
		iconStyle := lipgloss.NewStyle().Foreground(theme.ColorOrange)
		components = append(components, iconStyle.Render(m.icon))
	}

	if m.words > 0 {
		countStyle := lipgloss.NewStyle().Foreground(theme.ColorBase04)
		components = append(components, countStyle.Render(fmt.Sprintf("%d messages, %d words", m.messages, m.words)))
	}

	separator := lipgloss.NewStyle().Foreground(theme.ColorBase03).Render(" | ")

	return lipgloss.NewStyle().
		Width(m.width).
		Background(theme.ColorBase01).
		Padding(0, 1).
		Render(strings.Join(components, separator))
}
