package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/killallgit/sheetfreak/pkg/transcript"
	"github.com/killallgit/sheetfreak/pkg/tui/chat/status"
	"github.com/killallgit/sheetfreak/pkg/tui/theme"
)

type chatModel struct {
	ctx         context.Context
	assembler   *transcript.Assembler
	placeholder string

	viewport    viewport.Model
	textarea    textarea.Model
	statusBar   status.StatusModel
	messages    []transcript.Message
	turnID      string
	streaming   bool
	err         error
	width       int
	height      int
	numEscPress int
	styles      *theme.Styles
}

// NewChatModel creates the chat screen for assembler. Commands are submitted
// with ctx as their parent context.
func NewChatModel(ctx context.Context, assembler *transcript.Assembler, placeholder string) chatModel {
	ta := textarea.New()
	ta.Focus()
	ta.Placeholder = "Tell the sheet what to do..."
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetEnabled(false)

	if placeholder == "" {
		placeholder = transcript.Placeholder
	}

	return chatModel{
		ctx:         ctx,
		assembler:   assembler,
		placeholder: placeholder,
		textarea:    ta,
		viewport:    viewport.New(80, 20),
		statusBar:   status.NewStatusModel(),
		messages:    assembler.Snapshot(),
		styles:      theme.DefaultStyles(),
	}
}
