package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/sheetfreak/pkg/tui/theme"
)

// StatusModel represents the status bar component
type StatusModel struct {
	spinner      spinner.Model
	status       string        // "Sending", "Receiving"
	timer        time.Duration // Elapsed time
	icon         string
	processState ProcessState
	messages     int
	words        int
	startTime    time.Time
	isActive     bool
	width        int
}

// NewStatusModel creates a new status bar model
func NewStatusModel() StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorViolet)

	return StatusModel{
		spinner: s,
	}
}

// IsActive reports whether a turn is in progress
func (m StatusModel) IsActive() bool {
	return m.isActive
}

func (m StatusModel) State() ProcessState {
	return m.processState
}
