package headless

import (
	"context"
	"io"
	"strings"

	"github.com/killallgit/sheetfreak/pkg/transcript"
	"github.com/pkg/errors"
)

// RunHeadless submits a single command and prints the answer to out, one
// line per bot message. This is the entry point for non-interactive use.
func RunHeadless(ctx context.Context, assembler *transcript.Assembler, prompt string, out io.Writer) error {
	if strings.TrimSpace(prompt) == "" {
		return errors.New("prompt cannot be empty in headless mode")
	}

	r := newRunner(assembler, NewOutput(out))
	if err := r.run(ctx, prompt); err != nil {
		return errors.Wrap(err, "failed to execute prompt")
	}
	return nil
}
