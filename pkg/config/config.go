package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Backend BackendConfig `mapstructure:"backend"`
	Sheet   SheetConfig   `mapstructure:"sheet"`
	Stream  StreamConfig  `mapstructure:"stream"`
	History HistoryConfig `mapstructure:"history"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile  string `mapstructure:"log_file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

// BackendConfig holds the agent backend connection settings
type BackendConfig struct {
	URL        string            `mapstructure:"url"`
	Path       string            `mapstructure:"path"`
	Headers    map[string]string `mapstructure:"headers"`
	Timeout    time.Duration     `mapstructure:"-"`
	TimeoutStr string            `mapstructure:"timeout"` // For parsing string duration
}

// SheetConfig identifies the spreadsheet commands are issued against
type SheetConfig struct {
	ID string `mapstructure:"id"`
}

// StreamConfig controls how the response stream is decoded
type StreamConfig struct {
	ReadSize          int    `mapstructure:"read_size"`
	DropTrailingToken bool   `mapstructure:"drop_trailing_token"`
	Placeholder       string `mapstructure:"placeholder"`
}

// HistoryConfig holds transcript persistence configuration
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// ReplayConfig holds settings for the local replay backend
type ReplayConfig struct {
	Addr     string        `mapstructure:"addr"`
	Script   string        `mapstructure:"script"`
	Delay    time.Duration `mapstructure:"-"`
	DelayStr string        `mapstructure:"delay"`
}

var (
	// Global config instance
	cfg *Config
)

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	// Set defaults first
	setDefaults()

	// A .env next to the working directory is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.sheetfreak") // Check project directory first
		viper.AddConfigPath(filepath.Join(xdgConfigHome, "sheetfreak"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.AutomaticEnv()
	bindEnvironmentVariables()

	// A missing settings file is fine, defaults and env still apply
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Post-process durations (viper doesn't handle time.Duration directly)
	if err := processDurations(loaded); err != nil {
		return nil, fmt.Errorf("failed to process durations: %w", err)
	}

	if loaded.Stream.ReadSize <= 0 {
		return nil, fmt.Errorf("stream.read_size must be positive, got %d", loaded.Stream.ReadSize)
	}

	cfg = loaded
	return cfg, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("backend.url", "http://localhost:8000")
	viper.SetDefault("backend.path", "/act")
	viper.SetDefault("backend.timeout", "5m")

	viper.SetDefault("sheet.id", "")

	viper.SetDefault("stream.read_size", 4096)
	viper.SetDefault("stream.drop_trailing_token", false)
	viper.SetDefault("stream.placeholder", "Starting...")

	viper.SetDefault("logging.log_file", "./.sheetfreak/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.dsn", "./.sheetfreak/history.db")

	viper.SetDefault("replay.addr", "127.0.0.1:8000")
	viper.SetDefault("replay.script", "")
	viper.SetDefault("replay.delay", "50ms")
}

// bindEnvironmentVariables binds specific environment variables to Viper keys
func bindEnvironmentVariables() {
	viper.BindEnv("backend.url", "SHEETFREAK_URL")
	viper.BindEnv("backend.path", "SHEETFREAK_PATH")
	viper.BindEnv("backend.timeout", "SHEETFREAK_TIMEOUT")
	viper.BindEnv("sheet.id", "SHEETFREAK_SHEET_ID")
	viper.BindEnv("stream.read_size", "SHEETFREAK_READ_SIZE")
	viper.BindEnv("stream.drop_trailing_token", "SHEETFREAK_DROP_TRAILING_TOKEN")
	viper.BindEnv("logging.log_file", "SHEETFREAK_LOG_FILE")
	viper.BindEnv("logging.level", "SHEETFREAK_LOG_LEVEL")
	viper.BindEnv("history.dsn", "SHEETFREAK_HISTORY_DSN")
	viper.BindEnv("replay.addr", "SHEETFREAK_REPLAY_ADDR")
}

// processDurations converts string durations to time.Duration
func processDurations(c *Config) error {
	if c.Backend.TimeoutStr != "" {
		d, err := time.ParseDuration(c.Backend.TimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid backend.timeout: %w", err)
		}
		c.Backend.Timeout = d
	} else {
		c.Backend.Timeout = 5 * time.Minute
	}

	if c.Replay.DelayStr != "" {
		d, err := time.ParseDuration(c.Replay.DelayStr)
		if err != nil {
			return fmt.Errorf("invalid replay.delay: %w", err)
		}
		c.Replay.Delay = d
	}

	return nil
}

// GetConfigFileUsed returns the path to the config file being used
func GetConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
