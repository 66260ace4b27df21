package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func handleKeyMsg(m chatModel, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEscape:
		m.numEscPress++
		if m.numEscPress == 2 {
			m.textarea.Reset()
			m.numEscPress = 0
			m.err = nil
			return m, nil
		}
		return m, nil

	case tea.KeyEnter:
		if msg.Alt {
			// Alt+Enter adds a newline
			m.textarea.InsertString("\n")
			m.resizeTextArea()
			return m, nil
		}
		command := m.textarea.Value()
		if strings.TrimSpace(command) == "" {
			return m, nil
		}
		m.textarea.Reset()
		m.textarea.SetHeight(1)
		m.updateViewportHeight()
		m.err = nil
		return m, m.submit(command)
	}
	m.numEscPress = 0

	// Let the textarea handle the key
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.resizeTextArea()

	return m, cmd
}

// submit runs the command off the event loop; the transcript itself arrives
// as TranscriptMsg values
func (m chatModel) submit(command string) tea.Cmd {
	ctx, assembler := m.ctx, m.assembler
	return func() tea.Msg {
		return submitDoneMsg{err: assembler.Submit(ctx, command)}
	}
}

func (m *chatModel) resizeTextArea() {
	newHeight := m.calculateTextAreaHeight()
	if m.textarea.Height() != newHeight {
		m.textarea.SetHeight(newHeight)
		m.updateViewportHeight()
	}
}
