package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/killallgit/sheetfreak/pkg/config"
	"github.com/killallgit/sheetfreak/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sheetfreak",
	Short: "Talk to your spreadsheet",
	Long: `sheetfreak sends natural-language commands about a spreadsheet to an
agent backend and shows the streamed answer as a chat transcript.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunApplication(cmd.Context(), &AppConfig{
			Config:          config.Get(),
			Prompt:          viper.GetString("prompt"),
			Headless:        viper.GetBool("headless"),
			ContinueHistory: viper.GetBool("continue"),
			Out:             cmd.OutOrStdout(),
		})
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", ".sheetfreak/settings.yaml", "config file (default is .sheetfreak/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("url", "http://localhost:8000", "agent backend base URL")
	viper.BindPFlag("backend.url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.Flags().StringP("sheet", "s", "", "spreadsheet ID commands are issued against")
	viper.BindPFlag("sheet.id", rootCmd.Flags().Lookup("sheet"))

	rootCmd.Flags().Bool("continue", false, "continue from the sheet's previous transcript instead of starting fresh")
	viper.BindPFlag("continue", rootCmd.Flags().Lookup("continue"))

	rootCmd.Flags().StringP("prompt", "p", "", "execute a command directly without entering the TUI")
	viper.BindPFlag("prompt", rootCmd.Flags().Lookup("prompt"))

	rootCmd.Flags().BoolP("headless", "H", false, "run without TUI (requires --prompt)")
	viper.BindPFlag("headless", rootCmd.Flags().Lookup("headless"))

	rootCmd.Flags().Bool("drop-trailing-token", false, "discard a last word that is not followed by a space")
	viper.BindPFlag("stream.drop_trailing_token", rootCmd.Flags().Lookup("drop-trailing-token"))

	rootCmd.AddCommand(replayCmd)
}

func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	if used := config.GetConfigFileUsed(); used != "" {
		logger.WithComponent("config").Debug("Using config file", "path", used)
	}
}
