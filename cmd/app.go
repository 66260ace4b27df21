package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/killallgit/sheetfreak/pkg/config"
	"github.com/killallgit/sheetfreak/pkg/freak"
	"github.com/killallgit/sheetfreak/pkg/headless"
	"github.com/killallgit/sheetfreak/pkg/history"
	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/stream"
	"github.com/killallgit/sheetfreak/pkg/transcript"
	"github.com/killallgit/sheetfreak/pkg/tui/chat"
	"github.com/pkg/errors"
)

// AppConfig contains all configuration needed to run the application
type AppConfig struct {
	Config          *config.Config
	Prompt          string
	Headless        bool
	ContinueHistory bool
	Out             io.Writer
}

// RunApplication is the main entry point for the application logic
func RunApplication(ctx context.Context, appCfg *AppConfig) error {
	log := logger.WithComponent("app")
	cfg := appCfg.Config

	if cfg.Sheet.ID == "" {
		log.Warn("No spreadsheet ID configured, the backend will reject commands")
	}

	assembler := newAssembler(cfg)

	if cfg.History.Enabled {
		store, err := openHistory(ctx, cfg, assembler, appCfg.ContinueHistory)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	if appCfg.Headless || appCfg.Prompt != "" {
		log.Info("Running headless", "sheet_id", cfg.Sheet.ID)
		return headless.RunHeadless(ctx, assembler, appCfg.Prompt, appCfg.Out)
	}

	log.Info("Starting TUI", "sheet_id", cfg.Sheet.ID, "backend", cfg.Backend.URL)
	return chat.Run(ctx, assembler, cfg.Stream.Placeholder)
}

func newClient(cfg *config.Config) *freak.Client {
	return freak.NewClient(cfg.Backend.URL,
		freak.WithPath(cfg.Backend.Path),
		freak.WithTimeout(cfg.Backend.Timeout),
		freak.WithHeaders(cfg.Backend.Headers),
	)
}

func newAssembler(cfg *config.Config) *transcript.Assembler {
	trailing := stream.TrailingFlush
	if cfg.Stream.DropTrailingToken {
		trailing = stream.TrailingDrop
	}

	return transcript.NewAssembler(newClient(cfg), cfg.Sheet.ID,
		transcript.WithPlaceholder(cfg.Stream.Placeholder),
		transcript.WithReadSize(cfg.Stream.ReadSize),
		transcript.WithTrailingToken(trailing),
		transcript.WithLogger(logger.WithComponent("transcript")),
	)
}

// openHistory restores or clears the sheet's saved transcript and records
// every new turn
func openHistory(ctx context.Context, cfg *config.Config, assembler *transcript.Assembler, continueHistory bool) (*history.Store, error) {
	log := logger.WithComponent("history")

	store, err := openStore(cfg.History.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history")
	}

	if continueHistory {
		messages, err := store.Load(ctx, cfg.Sheet.ID)
		if err != nil {
			_ = store.Close()
			return nil, errors.Wrap(err, "failed to restore history")
		}
		assembler.Load(messages)
		log.Info("Restored transcript", "sheet_id", cfg.Sheet.ID, "messages", len(messages))
	} else if err := store.Clear(ctx, cfg.Sheet.ID); err != nil {
		_ = store.Close()
		return nil, errors.Wrap(err, "failed to clear history")
	}

	assembler.Subscribe(history.Recorder(store, cfg.Sheet.ID))
	return store, nil
}

// openStore accepts a sqlite DSN ("file:...") or a path; a bare file name
// goes in the settings directory
func openStore(dsn string) (*history.Store, error) {
	if strings.HasPrefix(dsn, "file:") {
		return history.Open(dsn)
	}
	return history.OpenFile(config.ResolvePath(dsn))
}
