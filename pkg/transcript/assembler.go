package transcript

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/pkg/errors"
)

// ErrSuperseded is returned by Submit when a newer submission cancelled the
// turn before its stream finished.
var ErrSuperseded = errors.New("turn superseded by a newer submission")

// Update is delivered to subscribers after every transcript change
type Update struct {
	TurnID   string
	Messages []Message
	Done     bool  // the turn's stream ended, successfully or not
	Err      error // set on a Done update when the turn failed
}

type Option func(*Assembler)

// WithPlaceholder sets the text of the bot message opened on submit
func WithPlaceholder(text string) Option {
	return func(a *Assembler) {
		a.placeholder = text
	}
}

// WithReadSize sets how many bytes are read from the stream at a time
func WithReadSize(n int) Option {
	return func(a *Assembler) {
		a.readSize = n
	}
}

// WithTrailingToken sets what happens to an unterminated last word
func WithTrailingToken(p stream.TrailingPolicy) Option {
	return func(a *Assembler) {
		a.trailing = p
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(a *Assembler) {
		a.log = l
	}
}

type subscriber struct {
	id int
	fn func(Update)
}

// Assembler owns a transcript and grows it from the response streams of
// submitted commands. It is safe for concurrent use; subscribers are called
// in mutation order, outside the transcript lock, and must not call Submit.
type Assembler struct {
	source      stream.Source
	sheetID     string
	placeholder string
	readSize    int
	trailing    stream.TrailingPolicy
	log         *logger.Logger

	// publishing holds mu's critical section and the notification that
	// follows it together so updates reach subscribers in order.
	publishing sync.Mutex

	mu         sync.Mutex
	state      State
	generation uint64
	turnID     string
	cancel     context.CancelFunc

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int
}

func NewAssembler(source stream.Source, sheetID string, opts ...Option) *Assembler {
	a := &Assembler{
		source:      source,
		sheetID:     sheetID,
		placeholder: Placeholder,
		readSize:    stream.DefaultReadSize,
		trailing:    stream.TrailingFlush,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.WithComponent("transcript")
	}
	return a
}

// Submit sends command to the backend and assembles the streamed answer into
// the transcript. The command is sent and recorded exactly as given; a
// blank command is ignored. Any stream still running from
// an earlier Submit is cancelled first.
//
// Submit blocks until the stream ends. It returns a *stream.StreamUnavailableError
// when the stream cannot be opened, a *stream.StreamReadError when it breaks
// mid-read, and ErrSuperseded when a later Submit or Reset took over.
// Messages already assembled are kept in every case.
func (a *Assembler) Submit(ctx context.Context, command string) error {
	if strings.TrimSpace(command) == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gen, turnID := a.beginTurn(command, cancel)
	log := a.log.With("turn_id", turnID)
	log.Info("Submitting command", "sheet_id", a.sheetID, "command_length", len(command))

	body, err := a.source.Open(ctx, stream.Command{TaskPrompt: command, SheetID: a.sheetID})
	if err == nil && body == nil {
		err = &stream.StreamUnavailableError{Reason: "response has no body"}
	}
	if err != nil {
		if a.superseded(gen) {
			return ErrSuperseded
		}
		var unavailable *stream.StreamUnavailableError
		if !errors.As(err, &unavailable) {
			err = &stream.StreamUnavailableError{Err: err}
		}
		log.Error("Failed to open response stream", "error", err.Error())
		a.finishTurn(gen, err)
		return errors.Wrap(err, "open response stream")
	}
	defer body.Close()

	dec := stream.NewDecoder(stream.WithTrailingToken(a.trailing))
	tokens := 0
	handler := stream.HandlerFunc{
		TokenFunc: func(token string) error {
			if !a.mutate(gen, func(s State) State { return Step(s, token) }, false, nil) {
				return ErrSuperseded
			}
			tokens++
			return nil
		},
	}

	err = stream.ReadTokens(ctx, body, dec, a.readSize, handler)
	if err != nil && a.superseded(gen) {
		log.Debug("Turn superseded", "tokens", tokens)
		return ErrSuperseded
	}
	if err != nil {
		log.Error("Response stream failed", "error", err.Error(), "tokens", tokens)
		a.finishTurn(gen, err)
		return errors.Wrap(err, "read response stream")
	}

	log.Info("Response stream complete", "tokens", tokens)
	a.finishTurn(gen, nil)
	return nil
}

func (a *Assembler) beginTurn(command string, cancel context.CancelFunc) (uint64, string) {
	a.publishing.Lock()
	defer a.publishing.Unlock()

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.generation++
	gen := a.generation
	a.turnID = uuid.NewString()
	a.cancel = cancel
	a.state = begin(a.state, command, a.placeholder)
	u := Update{TurnID: a.turnID, Messages: CopyMessages(a.state.Messages)}
	a.mu.Unlock()

	a.publish(u)
	return gen, u.TurnID
}

func (a *Assembler) finishTurn(gen uint64, err error) {
	identity := func(s State) State { return s }
	a.mutate(gen, identity, true, err)

	a.mu.Lock()
	if a.generation == gen {
		a.cancel = nil
	}
	a.mu.Unlock()
}

// mutate applies fn when gen is still the current turn and reports whether
// it did.
func (a *Assembler) mutate(gen uint64, fn func(State) State, done bool, err error) bool {
	a.publishing.Lock()
	defer a.publishing.Unlock()

	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		return false
	}
	a.state = fn(a.state)
	u := Update{
		TurnID:   a.turnID,
		Messages: CopyMessages(a.state.Messages),
		Done:     done,
		Err:      err,
	}
	a.mu.Unlock()

	a.publish(u)
	return true
}

func (a *Assembler) superseded(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return gen != a.generation
}

// Subscribe registers fn for every future update. The returned function
// removes it.
func (a *Assembler) Subscribe(fn func(Update)) (unsubscribe func()) {
	a.subsMu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs = append(a.subs, subscriber{id: id, fn: fn})
	a.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.subsMu.Lock()
			defer a.subsMu.Unlock()
			for i, s := range a.subs {
				if s.id == id {
					a.subs = append(a.subs[:i:i], a.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (a *Assembler) publish(u Update) {
	a.subsMu.Lock()
	subs := make([]subscriber, len(a.subs))
	copy(subs, a.subs)
	a.subsMu.Unlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].id < subs[j].id })
	for _, s := range subs {
		s.fn(u)
	}
}

// Snapshot returns a copy of the transcript
func (a *Assembler) Snapshot() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return CopyMessages(a.state.Messages)
}

func (a *Assembler) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Phase
}

// TurnID returns the ID of the latest submission, empty before the first
func (a *Assembler) TurnID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.turnID
}

func (a *Assembler) SheetID() string {
	return a.sheetID
}

// Reset cancels any running stream and empties the transcript
func (a *Assembler) Reset() {
	a.replace(nil)
}

// Load cancels any running stream and replaces the transcript with
// messages, typically restored from history.
func (a *Assembler) Load(messages []Message) {
	a.replace(CopyMessages(messages))
}

func (a *Assembler) replace(messages []Message) {
	a.publishing.Lock()
	defer a.publishing.Unlock()

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.generation++
	a.turnID = ""
	a.state = State{Messages: messages, Phase: AwaitingNewMessage}
	u := Update{Messages: CopyMessages(messages), Done: true}
	a.mu.Unlock()

	a.publish(u)
}
