package chat

import (
	"strings"
)

func (m chatModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("sheetfreak"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.styles.ErrorMessage.Render("Error: " + m.err.Error()))
	} else {
		b.WriteString(m.styles.HelpText.Render("enter to send · alt+enter for a newline · esc twice to clear · ctrl+c to quit"))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Input.Render(m.textarea.View()))

	return b.String()
}
