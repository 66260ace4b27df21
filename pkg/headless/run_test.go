package headless

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/killallgit/sheetfreak/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodySource(body string) stream.Source {
	return stream.SourceFunc(func(ctx context.Context, cmd stream.Command) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	})
}

func TestRunHeadless(t *testing.T) {
	t.Run("prints one line per bot message", func(t *testing.T) {
		var out bytes.Buffer
		a := transcript.NewAssembler(bodySource("Read in data... --END_CHUNK-- Sum is 42 --END_CHUNK-- Done here"), "sheet-1")

		require.NoError(t, RunHeadless(context.Background(), a, "sum column A", &out))
		assert.Equal(t, "Read in data...\nSum is 42\nDone here\n", out.String())
	})

	t.Run("skips earlier turns", func(t *testing.T) {
		var out bytes.Buffer
		a := transcript.NewAssembler(bodySource("fresh"), "sheet-1")
		a.Load([]transcript.Message{transcript.NewUserMessage("old"), transcript.NewBotMessage("old answer")})

		require.NoError(t, RunHeadless(context.Background(), a, "new", &out))
		assert.Equal(t, "fresh\n", out.String())
	})

	t.Run("rejects an empty prompt", func(t *testing.T) {
		a := transcript.NewAssembler(bodySource("unused"), "sheet-1")
		err := RunHeadless(context.Background(), a, "  ", io.Discard)
		assert.EqualError(t, err, "prompt cannot be empty in headless mode")
	})

	t.Run("returns the stream error", func(t *testing.T) {
		src := stream.SourceFunc(func(ctx context.Context, cmd stream.Command) (io.ReadCloser, error) {
			return nil, &stream.StreamUnavailableError{StatusCode: 400, Reason: "No sheet ID provided"}
		})
		a := transcript.NewAssembler(src, "")

		err := RunHeadless(context.Background(), a, "do X", io.Discard)

		var unavailable *stream.StreamUnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Contains(t, err.Error(), "No sheet ID provided")
	})
}

func TestRunnerPrintsMessagesBeforeFailure(t *testing.T) {
	broken := errors.New("connection reset")
	src := stream.SourceFunc(func(ctx context.Context, cmd stream.Command) (io.ReadCloser, error) {
		return io.NopCloser(io.MultiReader(strings.NewReader("first --END_CHUNK-- second "), errReader{broken})), nil
	})
	a := transcript.NewAssembler(src, "sheet-1")

	var out, errOut bytes.Buffer
	output := NewOutput(&out)
	output.errOut = &errOut

	err := newRunner(a, output).run(context.Background(), "go")

	assert.ErrorIs(t, err, broken)
	assert.Equal(t, "first\nsecond\n", out.String())
	assert.Contains(t, errOut.String(), "connection reset")
}

func TestPrinterIgnoresOtherTurns(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(NewOutput(&out))

	begin := []transcript.Message{transcript.NewUserMessage("go"), transcript.NewBotMessage("Starting...")}
	p.onUpdate(transcript.Update{TurnID: "t1", Messages: begin})
	p.onUpdate(transcript.Update{TurnID: "t2", Messages: append(begin, transcript.NewBotMessage("stray"))})
	p.onUpdate(transcript.Update{TurnID: "t1", Messages: append(begin, transcript.NewBotMessage("mine")), Done: true})
	p.onUpdate(transcript.Update{TurnID: "t1", Messages: append(begin, transcript.NewBotMessage("late")), Done: true})

	assert.Equal(t, "mine\n", out.String())
	assert.Equal(t, 1, p.printed())
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
