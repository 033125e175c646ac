// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "trading-coach", "logs", "coach.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	// File writer with rotation
	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// SetInfoLevel sets the global log level to info.
func SetInfoLevel() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// ContextKey is the type for context keys.
type ContextKey string

const (
	// LoggerKey is the context key for the logger.
	LoggerKey ContextKey = "logger"
	// UserIDKey is the context key for the user ID.
	UserIDKey ContextKey = "user_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithUser adds a user ID to the logger context.
func WithUser(logger zerolog.Logger, userID string) zerolog.Logger {
	return logger.With().Str("user_id", userID).Logger()
}

// WithAnalyzer adds an analyzer name to the logger context.
func WithAnalyzer(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("analyzer", name).Logger()
}

// LogPatternIdentified logs a newly identified or refreshed pattern.
func LogPatternIdentified(logger zerolog.Logger, userID, patternType, patternName string, evidence float64, created bool) {
	logger.Info().
		Str("event", "pattern_identified").
		Str("user_id", userID).
		Str("pattern_type", patternType).
		Str("pattern_name", patternName).
		Float64("evidence_strength", evidence).
		Bool("created", created).
		Msg("Pattern identified")
}

// LogPatternDeactivated logs a pattern deactivation.
func LogPatternDeactivated(logger zerolog.Logger, userID, patternType, patternName string, lastObserved time.Time) {
	logger.Info().
		Str("event", "pattern_deactivated").
		Str("user_id", userID).
		Str("pattern_type", patternType).
		Str("pattern_name", patternName).
		Time("last_observed", lastObserved).
		Msg("Pattern deactivated")
}

// LogAnalyzerFailure logs an isolated analyzer failure.
func LogAnalyzerFailure(logger zerolog.Logger, analyzer string, err error) {
	logger.Warn().
		Str("event", "analyzer_failure").
		Str("analyzer", analyzer).
		Err(err).
		Msg("Analyzer failed, continuing pass")
}

// LogPassComplete logs a completed analysis pass.
func LogPassComplete(logger zerolog.Logger, userID string, created, updated, deactivated int, duration time.Duration) {
	logger.Info().
		Str("event", "pass_complete").
		Str("user_id", userID).
		Int("created", created).
		Int("updated", updated).
		Int("deactivated", deactivated).
		Dur("duration", duration).
		Msg("Analysis pass completed")
}
