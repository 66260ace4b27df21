package stream

import (
	"context"
	"io"
)

// Command is what the backend needs to start an agent run
type Command struct {
	TaskPrompt string `json:"task_prompt"`
	SheetID    string `json:"sheet_id"`
}

// Source opens streaming responses for commands. The returned body yields
// the wire protocol: space separated words with Sentinel between messages.
type Source interface {
	Open(ctx context.Context, cmd Command) (io.ReadCloser, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context, cmd Command) (io.ReadCloser, error)

// Open implements Source
func (f SourceFunc) Open(ctx context.Context, cmd Command) (io.ReadCloser, error) {
	return f(ctx, cmd)
}

var _ Source = SourceFunc(nil)
