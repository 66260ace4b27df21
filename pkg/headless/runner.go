package headless

import (
	"context"

	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/transcript"
)

// runner runs one command in headless mode
type runner struct {
	assembler *transcript.Assembler
	output    *Output
	log       *logger.Logger
}

func newRunner(assembler *transcript.Assembler, output *Output) *runner {
	return &runner{
		assembler: assembler,
		output:    output,
		log:       logger.WithComponent("headless"),
	}
}

// run submits prompt and blocks until its stream ends
func (r *runner) run(ctx context.Context, prompt string) error {
	p := newPrinter(r.output)
	unsubscribe := r.assembler.Subscribe(p.onUpdate)
	defer unsubscribe()

	r.log.Debug("Running headless command", "sheet_id", r.assembler.SheetID(), "prompt_length", len(prompt))

	if err := r.assembler.Submit(ctx, prompt); err != nil {
		r.output.Error(err.Error())
		return err
	}

	r.log.Debug("Headless command complete", "messages", p.printed())
	return nil
}
