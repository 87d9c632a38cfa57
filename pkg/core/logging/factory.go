// ============================================================================
// devcmd - Development task runner
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating loggers
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	dclog "github.com/msto63/devcmd/foundation/core/log"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name
	Name string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format, "text" or "json" (default: text)
	Format string

	// Destination (default: stderr)
	Output io.Writer

	// Correlation ID attached to every entry, usually the invocation ID
	CorrelationID string
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "warn",
		Format: "text",
	}
}

// NewLogger creates a new Foundation logger
func NewLogger(cfg LoggerConfig) *dclog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	format, err := dclog.ParseFormat(cfg.Format)
	if err != nil {
		format = dclog.FormatText
	}

	logger := dclog.NewWithConfig(dclog.Config{
		Level:  parseLevel(cfg.Level),
		Format: format,
		Output: output,
		Name:   cfg.Name,
	})
	if cfg.CorrelationID != "" {
		logger = logger.WithCorrelationID(cfg.CorrelationID)
	}
	return logger
}

// parseLevel converts a string level to dclog.Level
func parseLevel(level string) dclog.Level {
	parsed, err := dclog.ParseLevel(level)
	if err != nil {
		return dclog.DefaultLevel()
	}
	return parsed
}

// Logger wraps the Foundation logger with a key/value API
type Logger struct {
	*dclog.Logger
	name string
}

// New creates a logger with the default configuration
func New(name string) *Logger {
	return &Logger{Logger: NewLogger(DefaultLoggerConfig(name)), name: name}
}

// Wrap adapts a Foundation logger
func Wrap(l *dclog.Logger) *Logger {
	return &Logger{Logger: l}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return Wrap(dclog.Discard())
}

// Named returns a child logger for a component
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.WithName(name), name: name}
}

// With returns a logger that adds the given pairs to every entry
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{Logger: l.Logger.WithFields(toFields(keysAndValues...)), name: l.name}
}

// WithLevel returns a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	dcLevel := dclog.LevelInfo
	switch level {
	case LevelDebug:
		dcLevel = dclog.LevelDebug
	case LevelInfo:
		dcLevel = dclog.LevelInfo
	case LevelWarn:
		dcLevel = dclog.LevelWarn
	case LevelError:
		dcLevel = dclog.LevelError
	}

	return &Logger{
		Logger: l.Logger.WithLevel(dcLevel),
		name:   l.name,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to dclog.Fields
func toFields(keysAndValues ...any) dclog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(dclog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
