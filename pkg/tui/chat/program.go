package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/transcript"
	"github.com/pkg/errors"
)

// Run shows the chat screen until the user quits. Assembler updates are
// forwarded to the program as TranscriptMsg values.
func Run(ctx context.Context, assembler *transcript.Assembler, placeholder string) error {
	log := logger.WithComponent("tui")

	p := tea.NewProgram(
		NewChatModel(ctx, assembler, placeholder),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	unsubscribe := assembler.Subscribe(func(u transcript.Update) {
		p.Send(TranscriptMsg{Update: u})
	})
	defer unsubscribe()

	log.Debug("Starting chat", "sheet_id", assembler.SheetID())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "chat program failed")
	}
	return nil
}
