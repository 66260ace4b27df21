package transcript

import (
	"strings"

	"github.com/killallgit/sheetfreak/pkg/stream"
)

// Phase tells Step what the next word does
type Phase int

const (
	// AwaitingNewMessage: the next word opens a new bot message
	AwaitingNewMessage Phase = iota
	// AppendingToCurrent: the next word extends the last bot message
	AppendingToCurrent
)

func (p Phase) String() string {
	switch p {
	case AwaitingNewMessage:
		return "awaiting_new_message"
	case AppendingToCurrent:
		return "appending_to_current"
	default:
		return "unknown"
	}
}

// State is an immutable transcript value. Transitions return a new State and
// never write into the backing array of the one they were given.
type State struct {
	Messages []Message
	Phase    Phase
}

// Step applies one decoded token.
//
// The sentinel closes the current message. Any other token either opens a
// new bot message or is appended to the open one, separated by a single
// space. A token carrying the sentinel glued to other text, as in
// "42\n--END_CHUNK--", is split around it and each piece applied in order.
func Step(s State, token string) State {
	if token == stream.Sentinel {
		return State{Messages: s.Messages, Phase: AwaitingNewMessage}
	}
	if !strings.Contains(token, stream.Sentinel) {
		return applyWord(s, token)
	}

	for i, part := range strings.Split(token, stream.Sentinel) {
		if i > 0 {
			s = State{Messages: s.Messages, Phase: AwaitingNewMessage}
		}
		if part != "" {
			s = applyWord(s, part)
		}
	}
	return s
}

func applyWord(s State, word string) State {
	n := len(s.Messages)
	if s.Phase == AwaitingNewMessage || n == 0 || !s.Messages[n-1].IsBot() {
		messages := make([]Message, n+1)
		copy(messages, s.Messages)
		messages[n] = NewBotMessage(word)
		return State{Messages: messages, Phase: AppendingToCurrent}
	}

	messages := CopyMessages(s.Messages)
	messages[n-1].Text += stream.TokenSeparator + word
	return State{Messages: messages, Phase: AppendingToCurrent}
}

// Begin records a submitted command: the user's message followed by the
// placeholder bot message. The placeholder is never written to; the first
// word of the response opens a message of its own.
func Begin(s State, command string) State {
	return begin(s, command, Placeholder)
}

func begin(s State, command, placeholder string) State {
	n := len(s.Messages)
	messages := make([]Message, n+2)
	copy(messages, s.Messages)
	messages[n] = NewUserMessage(command)
	messages[n+1] = NewBotMessage(placeholder)
	return State{Messages: messages, Phase: AwaitingNewMessage}
}

// Steps folds tokens over s
func Steps(s State, tokens ...string) State {
	for _, tok := range tokens {
		s = Step(s, tok)
	}
	return s
}
