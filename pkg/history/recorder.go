package history

import (
	"context"
	"time"

	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/transcript"
)

// Recorder returns an assembler subscriber that saves every finished turn
// of sheetID. Failed turns are saved too, with whatever arrived before the
// failure.
func Recorder(store *Store, sheetID string) func(transcript.Update) {
	log := logger.WithComponent("history")

	return func(u transcript.Update) {
		if !u.Done || u.TurnID == "" {
			return
		}
		turn := transcript.LastTurn(u.Messages)
		if len(turn) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := store.SaveTurn(ctx, Turn{SheetID: sheetID, TurnID: u.TurnID, Messages: turn})
		if err != nil {
			log.Error("Failed to save turn", "turn_id", u.TurnID, "error", err.Error())
			return
		}
		log.Debug("Saved turn", "turn_id", u.TurnID, "messages", len(turn))
	}
}
