package headless

import (
	"sync"

	"github.com/killallgit/sheetfreak/pkg/transcript"
)

// printer prints the bot messages of one turn as each of them closes. A
// message is closed once a later message exists, or the turn is done.
type printer struct {
	mu     sync.Mutex
	output *Output
	turnID string
	next   int // index of the first message not printed yet
	count  int
	done   bool
}

func newPrinter(output *Output) *printer {
	return &printer{output: output}
}

func (p *printer) onUpdate(u transcript.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done || u.TurnID == "" {
		return
	}
	if p.turnID == "" {
		// the first update of a turn holds the user message and placeholder
		p.turnID = u.TurnID
		p.next = len(u.Messages)
		return
	}
	if u.TurnID != p.turnID {
		return
	}

	closed := len(u.Messages) - 1
	if u.Done {
		closed = len(u.Messages)
		p.done = true
	}
	for ; p.next < closed; p.next++ {
		p.output.Message(u.Messages[p.next].Text)
		p.count++
	}
}

// printed reports how many messages were printed
func (p *printer) printed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
