package headless

import (
	"fmt"
	"io"
	"os"

	"github.com/killallgit/sheetfreak/pkg/logger"
)

// Output handles console output for headless mode
type Output struct {
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates an output handler printing messages to out and errors
// to stderr
func NewOutput(out io.Writer) *Output {
	if out == nil {
		out = os.Stdout
	}
	return &Output{out: out, errOut: os.Stderr}
}

// Message prints one finished bot message
func (o *Output) Message(text string) {
	fmt.Fprintln(o.out, text)
}

// Error prints an error message and logs it
func (o *Output) Error(msg string) {
	logger.Error(msg)
	fmt.Fprintln(o.errOut, "Error: "+msg)
}
