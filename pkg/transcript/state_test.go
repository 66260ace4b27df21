package transcript

import (
	"strings"
	"testing"

	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bot(text string) Message  { return NewBotMessage(text) }
func user(text string) Message { return NewUserMessage(text) }

func TestStep(t *testing.T) {
	tests := []struct {
		name   string
		start  State
		tokens []string
		want   []Message
		phase  Phase
	}{
		{
			name:   "first word opens a bot message",
			tokens: []string{"hello"},
			want:   []Message{bot("hello")},
			phase:  AppendingToCurrent,
		},
		{
			name:   "words are joined by single spaces",
			tokens: []string{"hello", "there", "world"},
			want:   []Message{bot("hello there world")},
			phase:  AppendingToCurrent,
		},
		{
			name:   "sentinel separates messages",
			tokens: []string{"alpha", stream.Sentinel, "beta", "gamma"},
			want:   []Message{bot("alpha"), bot("beta gamma")},
			phase:  AppendingToCurrent,
		},
		{
			name:   "sentinel alone changes only the phase",
			start:  State{Messages: []Message{bot("alpha")}, Phase: AppendingToCurrent},
			tokens: []string{stream.Sentinel},
			want:   []Message{bot("alpha")},
			phase:  AwaitingNewMessage,
		},
		{
			name:   "consecutive sentinels open no empty message",
			tokens: []string{"a", stream.Sentinel, stream.Sentinel, "b"},
			want:   []Message{bot("a"), bot("b")},
			phase:  AppendingToCurrent,
		},
		{
			name:   "empty tokens are applied as words",
			tokens: []string{"a", "", "b"},
			want:   []Message{bot("a  b")},
			phase:  AppendingToCurrent,
		},
		{
			name:   "sentinel glued after a newline",
			tokens: []string{"Result:", "42\n" + stream.Sentinel, "Done"},
			want:   []Message{bot("Result: 42\n"), bot("Done")},
			phase:  AppendingToCurrent,
		},
		{
			name:   "sentinel glued on both sides",
			tokens: []string{"x", "end." + stream.Sentinel + "Next", "word"},
			want:   []Message{bot("x end."), bot("Next word")},
			phase:  AppendingToCurrent,
		},
		{
			name:   "word after a user message opens a bot message",
			start:  State{Messages: []Message{user("hi")}, Phase: AppendingToCurrent},
			tokens: []string{"reply"},
			want:   []Message{user("hi"), bot("reply")},
			phase:  AppendingToCurrent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Steps(tt.start, tt.tokens...)
			assert.Equal(t, tt.want, got.Messages)
			assert.Equal(t, tt.phase, got.Phase)
		})
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	messages := make([]Message, 1, 8)
	messages[0] = bot("alpha")
	start := State{Messages: messages, Phase: AppendingToCurrent}

	grown := Step(start, "beta")
	opened := Step(State{Messages: messages, Phase: AwaitingNewMessage}, "gamma")

	assert.Equal(t, "alpha", start.Messages[0].Text)
	assert.Equal(t, "alpha beta", grown.Messages[0].Text)
	assert.Equal(t, []Message{bot("alpha"), bot("gamma")}, opened.Messages)

	// a second branch from the same state must not see the first one's append
	other := Step(State{Messages: messages, Phase: AwaitingNewMessage}, "delta")
	assert.Equal(t, "gamma", opened.Messages[1].Text)
	assert.Equal(t, "delta", other.Messages[1].Text)
}

func TestBegin(t *testing.T) {
	s := Begin(State{}, "do X")

	assert.Equal(t, []Message{user("do X"), bot(Placeholder)}, s.Messages)
	assert.Equal(t, AwaitingNewMessage, s.Phase)

	t.Run("first word leaves the placeholder untouched", func(t *testing.T) {
		next := Step(s, "Working")
		assert.Equal(t, []Message{user("do X"), bot(Placeholder), bot("Working")}, next.Messages)
	})

	t.Run("records the command verbatim", func(t *testing.T) {
		got := Begin(State{}, "  do X\n")
		assert.Equal(t, "  do X\n", got.Messages[0].Text)
	})

	t.Run("resets the phase of a half finished turn", func(t *testing.T) {
		mid := Steps(s, "half", "done")
		require.Equal(t, AppendingToCurrent, mid.Phase)

		again := Begin(mid, "do Y")
		assert.Equal(t, AwaitingNewMessage, again.Phase)
		assert.Len(t, again.Messages, 5)
		assert.Equal(t, user("do Y"), again.Messages[3])
	})
}

// The open message only ever grows until a boundary closes it
func TestStepGrowth(t *testing.T) {
	tokens := strings.Split("one two three --END_CHUNK-- four five --END_CHUNK-- six", " ")

	s := Begin(State{}, "count")
	lastWords := 0
	for _, tok := range tokens {
		s = Step(s, tok)
		if tok == stream.Sentinel {
			lastWords = 0
			continue
		}
		words := len(strings.Fields(s.Messages[len(s.Messages)-1].Text))
		assert.GreaterOrEqual(t, words, lastWords)
		lastWords = words
	}

	assert.Equal(t, []Message{
		user("count"),
		bot(Placeholder),
		bot("one two three"),
		bot("four five"),
		bot("six"),
	}, s.Messages)
}

func TestLastTurn(t *testing.T) {
	messages := []Message{user("a"), bot(Placeholder), bot("x"), user("b"), bot(Placeholder), bot("y z")}

	assert.Equal(t, []Message{user("b"), bot(Placeholder), bot("y z")}, LastTurn(messages))
	assert.Nil(t, LastTurn([]Message{bot("orphan")}))
	assert.Nil(t, LastTurn(nil))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "awaiting_new_message", AwaitingNewMessage.String())
	assert.Equal(t, "appending_to_current", AppendingToCurrent.String())
	assert.Equal(t, "unknown", Phase(7).String())
}
