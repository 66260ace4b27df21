package history_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/killallgit/sheetfreak/pkg/history"
	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/killallgit/sheetfreak/pkg/transcript"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHistory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "History Suite")
}

func user(text string) transcript.Message { return transcript.NewUserMessage(text) }
func bot(text string) transcript.Message  { return transcript.NewBotMessage(text) }

var _ = Describe("Store", func() {
	var (
		store  *history.Store
		dbPath string
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dbPath = filepath.Join(GinkgoT().TempDir(), "nested", "history.db")

		var err error
		store, err = history.OpenFile(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("creates the database file", func() {
		_, err := os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	It("loads turns in the order they were first saved", func() {
		Expect(store.SaveTurn(ctx, history.Turn{
			SheetID:  "sheet-1",
			TurnID:   "t1",
			Messages: []transcript.Message{user("first"), bot("Starting..."), bot("one")},
		})).To(Succeed())
		Expect(store.SaveTurn(ctx, history.Turn{
			SheetID:  "sheet-1",
			TurnID:   "t2",
			Messages: []transcript.Message{user("second"), bot("Starting..."), bot("two"), bot("three")},
		})).To(Succeed())

		messages, err := store.Load(ctx, "sheet-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(messages).To(Equal([]transcript.Message{
			user("first"), bot("Starting..."), bot("one"),
			user("second"), bot("Starting..."), bot("two"), bot("three"),
		}))
	})

	It("replaces the messages of a turn saved twice", func() {
		turn := history.Turn{SheetID: "sheet-1", TurnID: "t1", Messages: []transcript.Message{user("q"), bot("partial")}}
		Expect(store.SaveTurn(ctx, turn)).To(Succeed())
		Expect(store.SaveTurn(ctx, history.Turn{SheetID: "sheet-1", TurnID: "t2", Messages: []transcript.Message{user("later")}})).To(Succeed())

		turn.Messages = []transcript.Message{user("q"), bot("partial answer")}
		Expect(store.SaveTurn(ctx, turn)).To(Succeed())

		messages, err := store.Load(ctx, "sheet-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(messages).To(Equal([]transcript.Message{user("q"), bot("partial answer"), user("later")}))

		n, err := store.TurnCount(ctx, "sheet-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
	})

	It("keeps sheets apart and clears one at a time", func() {
		Expect(store.SaveTurn(ctx, history.Turn{SheetID: "a", TurnID: "t1", Messages: []transcript.Message{user("for a")}})).To(Succeed())
		Expect(store.SaveTurn(ctx, history.Turn{SheetID: "b", TurnID: "t1", Messages: []transcript.Message{user("for b")}})).To(Succeed())

		Expect(store.Clear(ctx, "a")).To(Succeed())

		a, err := store.Load(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(BeEmpty())

		b, err := store.Load(ctx, "b")
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal([]transcript.Message{user("for b")}))
	})

	It("rejects turns without identity", func() {
		Expect(store.SaveTurn(ctx, history.Turn{TurnID: "t1"})).To(MatchError(ContainSubstring("empty sheet id")))
		Expect(store.SaveTurn(ctx, history.Turn{SheetID: "a"})).To(MatchError(ContainSubstring("empty turn id")))
	})

	It("survives reopening", func() {
		Expect(store.SaveTurn(ctx, history.Turn{SheetID: "a", TurnID: "t1", Messages: []transcript.Message{user("kept")}})).To(Succeed())
		Expect(store.Close()).To(Succeed())

		var err error
		store, err = history.OpenFile(dbPath)
		Expect(err).NotTo(HaveOccurred())

		messages, err := store.Load(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(messages).To(Equal([]transcript.Message{user("kept")}))
	})

	Describe("Recorder", func() {
		It("saves each finished turn of an assembler", func() {
			answers := map[string]string{
				"sum column A": "Result: 42 --END_CHUNK-- Done",
				"sort rows":    "Sorted",
			}
			src := stream.SourceFunc(func(ctx context.Context, cmd stream.Command) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(answers[cmd.TaskPrompt])), nil
			})
			a := transcript.NewAssembler(src, "sheet-1")
			a.Subscribe(history.Recorder(store, "sheet-1"))

			Expect(a.Submit(ctx, "sum column A")).To(Succeed())
			Expect(a.Submit(ctx, "sort rows")).To(Succeed())

			messages, err := store.Load(ctx, "sheet-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(messages).To(Equal(a.Snapshot()))

			n, err := store.TurnCount(ctx, "sheet-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})

		It("ignores loads and resets", func() {
			a := transcript.NewAssembler(stream.SourceFunc(nil), "sheet-1")
			a.Subscribe(history.Recorder(store, "sheet-1"))

			a.Load([]transcript.Message{user("restored")})
			a.Reset()

			n, err := store.TurnCount(ctx, "sheet-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})
})

var _ = Describe("Open", func() {
	It("rejects an empty dsn", func() {
		_, err := history.Open("  ")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty path", func() {
		_, err := history.DSNForFile("")
		Expect(err).To(HaveOccurred())
	})
})
