package replay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/sheetfreak/pkg/freak"
	"github.com/killallgit/sheetfreak/pkg/replay"
	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/killallgit/sheetfreak/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseScript(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := replay.ParseScript([]byte("turns:\n  - Read in data...\n  - \"Done with {{prompt}}\"\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Read in data...", "Done with {{prompt}}"}, s.Turns)
	})

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "no turns", yaml: "turns: []\n", want: "no turns"},
		{name: "delimiter inside a turn", yaml: "turns:\n  - a --END_CHUNK-- b\n", want: "delimiter"},
		{name: "not yaml", yaml: "turns: [unterminated\n", want: "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := replay.ParseScript([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte("turns:\n  - hello\n"), 0644))

	s, err := replay.LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, s.Turns)

	_, err = replay.LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScriptBody(t *testing.T) {
	s := replay.Script{Turns: []string{"Result: 42\n", "Done for {{prompt}}"}}

	assert.Equal(t, "Result: 42\n --END_CHUNK-- Done for sum A", s.Body("sum A"))
	assert.Equal(t, []string{"Result:", "42\n", stream.Sentinel, "Done", "for", "sum", "A"}, s.Words("sum A"))
}

func TestServerAct(t *testing.T) {
	srv := replay.NewServer(replay.Script{Turns: []string{"one two", "three"}})

	t.Run("streams the script", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/act", strings.NewReader(`{"task_prompt":"go","sheet_id":"s1"}`))
		req.Header.Set("Content-Type", "application/json")
		srv.Handler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "one two --END_CHUNK-- three", w.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.True(t, w.Flushed)
	})

	rejected := []struct {
		name string
		body string
		want string
	}{
		{name: "missing task", body: `{"sheet_id":"s1"}`, want: "Please provide a task!"},
		{name: "blank task", body: `{"task_prompt":"  ","sheet_id":"s1"}`, want: "Please provide a task!"},
		{name: "missing sheet", body: `{"task_prompt":"go"}`, want: "No sheet ID provided"},
		{name: "malformed body", body: `{"task_prompt":`, want: "Invalid request body"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/act", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}

	t.Run("home", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestServerCustomPath(t *testing.T) {
	srv := replay.NewServer(replay.Script{Turns: []string{"ok"}}, replay.WithPath("api/act"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/act", strings.NewReader(`{"task_prompt":"go","sheet_id":"s1"}`))
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

// The client, decoder and assembler reproduce the scripted turns as messages
func TestReplayEndToEnd(t *testing.T) {
	script := replay.Script{Turns: []string{"Read in data...", "The data you requested is:\n[1, 2, 3]", "Finished {{prompt}}"}}
	ts := httptest.NewServer(replay.NewServer(script, replay.WithDelay(time.Millisecond)).Handler())
	defer ts.Close()

	client := freak.NewClient(ts.URL)
	require.NoError(t, client.Ping(context.Background()))

	a := transcript.NewAssembler(client, "sheet-1", transcript.WithReadSize(5))
	require.NoError(t, a.Submit(context.Background(), "read A1"))

	assert.Equal(t, []transcript.Message{
		transcript.NewUserMessage("read A1"),
		transcript.NewBotMessage(transcript.Placeholder),
		transcript.NewBotMessage("Read in data..."),
		transcript.NewBotMessage("The data you requested is:\n[1, 2, 3]"),
		transcript.NewBotMessage("Finished read A1"),
	}, a.Snapshot())
}

func TestRun(t *testing.T) {
	srv := replay.NewServer(replay.DefaultScript())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDefaultScriptBody(t *testing.T) {
	body := replay.DefaultScript().Body("A1:B2")
	assert.True(t, strings.HasPrefix(body, "Read in data... --END_CHUNK-- Formulated"))
	assert.Contains(t, body, "A1:B2")
}

func TestRunAddressInUse(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	srv := replay.NewServer(replay.DefaultScript())
	err := srv.Run(context.Background(), strings.TrimPrefix(ts.URL, "http://"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replay backend stopped")
}
