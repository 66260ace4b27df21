package cmd

import (
	"github.com/killallgit/sheetfreak/pkg/config"
	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/killallgit/sheetfreak/pkg/replay"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run a local backend that streams a scripted answer",
	Long: `replay serves the agent backend's wire protocol from a YAML script so the
client can be exercised without the real agent. Every command gets the same
turns, with {{prompt}} replaced by the command text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		log := logger.WithComponent("replay")

		script := replay.DefaultScript()
		if cfg.Replay.Script != "" {
			loaded, err := replay.LoadScript(cfg.Replay.Script)
			if err != nil {
				return err
			}
			script = loaded
		}
		log.Info("Loaded replay script", "turns", len(script.Turns), "path", cfg.Replay.Script)

		server := replay.NewServer(script,
			replay.WithDelay(cfg.Replay.Delay),
			replay.WithPath(cfg.Backend.Path),
		)
		cmd.Printf("Replay backend listening on http://%s%s\n", cfg.Replay.Addr, cfg.Backend.Path)
		return server.Run(cmd.Context(), cfg.Replay.Addr)
	},
}

func init() {
	replayCmd.Flags().String("addr", "127.0.0.1:8000", "address to listen on")
	viper.BindPFlag("replay.addr", replayCmd.Flags().Lookup("addr"))

	replayCmd.Flags().String("script", "", "YAML script with the turns to stream")
	viper.BindPFlag("replay.script", replayCmd.Flags().Lookup("script"))

	replayCmd.Flags().String("delay", "50ms", "pause between streamed words")
	viper.BindPFlag("replay.delay", replayCmd.Flags().Lookup("delay"))
}
