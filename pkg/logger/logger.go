package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/killallgit/sheetfreak/pkg/config"
	"github.com/rs/zerolog"
)

// Logger provides a unified logging interface over zerolog. Messages take a
// fixed text plus alternating key/value pairs.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

var defaultLogger *Logger

// Init initializes the logger with configuration from global config
func Init() error {
	if defaultLogger != nil {
		return nil // Already initialized
	}

	settings := config.Get()
	l, err := New(settings.Logging.Level, settings.Logging.LogFile, settings.Logging.Preserve)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defaultLogger = l
	return nil
}

// New creates a new Logger writing to logFile. A bare file name is placed in
// the settings directory.
func New(level string, logFile string, persist bool) (*Logger, error) {
	logPath := config.ResolvePath(logFile)

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if persist {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(logPath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := NewWithWriter(level, file)
	l.file = file
	return l, nil
}

// NewWithWriter creates a Logger writing JSON lines to w
func NewWithWriter(level string, w io.Writer) *Logger {
	return &Logger{
		zl: zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger(),
	}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// parseLevel converts a string level to a zerolog level, defaulting to info
func parseLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "warning":
		return zerolog.WarnLevel
	case "":
		return zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithComponent returns a child logger tagged with the component name
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{zl: l.zl.With().Fields(keyvals).Logger()}
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) Debug(msg string, keyvals ...any) {
	l.zl.Debug().Fields(keyvals).Msg(msg)
}

func (l *Logger) Info(msg string, keyvals ...any) {
	l.zl.Info().Fields(keyvals).Msg(msg)
}

func (l *Logger) Warn(msg string, keyvals ...any) {
	l.zl.Warn().Fields(keyvals).Msg(msg)
}

func (l *Logger) Error(msg string, keyvals ...any) {
	l.zl.Error().Fields(keyvals).Msg(msg)
}

// Package-level convenience functions using the default logger

// WithComponent returns a component logger from the default logger, or a
// no-op logger before Init.
func WithComponent(name string) *Logger {
	if defaultLogger == nil {
		return Nop()
	}
	return defaultLogger.WithComponent(name)
}

// Debug logs a debug message using the default logger
func Debug(msg string, keyvals ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.Debug(msg, keyvals...)
}

// Info logs an info message using the default logger
func Info(msg string, keyvals ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.Info(msg, keyvals...)
}

// Warn logs a warning message using the default logger
func Warn(msg string, keyvals ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.Warn(msg, keyvals...)
}

// Error logs an error message using the default logger
func Error(msg string, keyvals ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.Error(msg, keyvals...)
}

// SetOutput redirects the default logger (useful for testing). It installs a
// debug-level default logger when none exists yet.
func SetOutput(w io.Writer) {
	if defaultLogger == nil {
		defaultLogger = NewWithWriter("debug", w)
		return
	}
	defaultLogger.zl = defaultLogger.zl.Output(w)
}

// Close closes the default logger
func Close() error {
	if defaultLogger == nil {
		return nil
	}
	err := defaultLogger.Close()
	defaultLogger = nil
	return err
}
