package status

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.isActive {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StartStreamingMsg:
		state := msg.State
		if state == StateIdle {
			state = StateSending
		}
		m.isActive = true
		m.startTime = time.Now()
		m.timer = 0
		m.messages = 0
		m.words = 0
		m.processState = state
		m.icon = state.GetIcon()
		m.status = state.GetDisplayName()
		return m, tea.Batch(
			m.spinner.Tick,
			tickEvery(),
		)

	case SetProcessStateMsg:
		m.processState = msg.State
		m.icon = msg.State.GetIcon()
		m.status = msg.State.GetDisplayName()
		return m, nil

	case UpdateCountsMsg:
		m.messages = msg.Messages
		m.words = msg.Words
		return m, nil

	case StopStreamingMsg:
		m.isActive = false
		m.processState = StateIdle
		m.status = ""
		m.icon = ""
		m.timer = 0
		return m, nil

	case TickMsg:
		if m.isActive {
			m.timer = time.Since(m.startTime)
			return m, tickEvery()
		}
		return m, nil
	}

	return m, nil
}

// tickEvery returns a command that sends a tick message every second
func tickEvery() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
