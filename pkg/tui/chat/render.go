package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/sheetfreak/pkg/transcript"
)

func (m chatModel) renderMessages() string {
	availableWidth := m.viewport.Width
	if availableWidth <= 0 {
		availableWidth = 80
	}

	rendered := make([]string, 0, len(m.messages))
	for i, msg := range m.messages {
		var style lipgloss.Style
		switch {
		case msg.IsUser():
			style = m.styles.UserMessage
		case m.isPlaceholder(i):
			style = m.styles.PlaceholderMessage
		default:
			style = m.styles.BotMessage
		}

		label := m.styles.SenderLabel.Render(senderLabel(msg.Sender))
		body := style.Width(availableWidth).Render(msg.Text)
		rendered = append(rendered, label+"\n"+body)
	}

	return strings.Join(rendered, "\n\n")
}

// isPlaceholder reports whether message i is the bot message opened right
// after a command
func (m chatModel) isPlaceholder(i int) bool {
	return i > 0 && m.messages[i-1].IsUser() && m.messages[i].IsBot() && m.messages[i].Text == m.placeholder
}

func senderLabel(s transcript.Sender) string {
	if s == transcript.SenderUser {
		return "you"
	}
	return "sheet"
}

func (m *chatModel) updateViewportContent() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}
