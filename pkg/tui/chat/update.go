package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/sheetfreak/pkg/transcript"
	"github.com/killallgit/sheetfreak/pkg/tui/chat/status"
	"github.com/pkg/errors"
)

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowResize(msg.Width, msg.Height)
		statusModel, _ := m.statusBar.Update(msg)
		m.statusBar = statusModel.(status.StatusModel)

	case tea.KeyMsg:
		return handleKeyMsg(m, msg)

	case errMsg:
		m.err = msg
		return m, nil

	case TranscriptMsg:
		return m.applyUpdate(msg.Update)

	case submitDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, transcript.ErrSuperseded) {
			m.err = msg.err
		}
		return m, nil

	default:
		statusModel, statusCmd := m.statusBar.Update(msg)
		m.statusBar = statusModel.(status.StatusModel)
		cmds = append(cmds, statusCmd)

		var tiCmd tea.Cmd
		m.textarea, tiCmd = m.textarea.Update(msg)
		cmds = append(cmds, tiCmd)

		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// applyUpdate mirrors the assembler's transcript and drives the status bar
func (m chatModel) applyUpdate(u transcript.Update) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	started := u.TurnID != "" && u.TurnID != m.turnID
	firstWord := !started && m.streaming && len(u.Messages) > len(m.messages) &&
		m.statusBar.State() == status.StateSending

	m.messages = u.Messages
	m.updateViewportContent()

	switch {
	case started && !u.Done:
		m.turnID = u.TurnID
		m.streaming = true
		cmd = m.updateStatus(status.StartStreamingMsg{State: status.StateSending})
	case firstWord:
		cmd = m.updateStatus(status.SetProcessStateMsg{State: status.StateReceiving})
	}

	if m.streaming {
		msgs, words := answerSize(u.Messages)
		m.updateStatus(status.UpdateCountsMsg{Messages: msgs, Words: words})
	}

	if u.Done {
		m.streaming = false
		m.updateStatus(status.StopStreamingMsg{})
		if u.Err != nil {
			m.err = u.Err
		}
	}
	return m, cmd
}

func (m *chatModel) updateStatus(msg tea.Msg) tea.Cmd {
	statusModel, cmd := m.statusBar.Update(msg)
	m.statusBar = statusModel.(status.StatusModel)
	return cmd
}

// answerSize counts the bot messages and words of the latest turn,
// placeholder excluded
func answerSize(messages []transcript.Message) (int, int) {
	turn := transcript.LastTurn(messages)
	if len(turn) < 2 {
		return 0, 0
	}
	answer := turn[2:]
	words := 0
	for _, msg := range answer {
		words += len(strings.Fields(msg.Text))
	}
	return len(answer), words
}
