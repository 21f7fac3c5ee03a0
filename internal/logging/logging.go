// Package logging sets up the application loggers: a human-readable default
// logger on stderr plus per-service file loggers with rotation.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger *slog.Logger
	defaultLevel  = new(slog.LevelVar)
	initOnce      sync.Once
)

// Init initializes the default logger. Human-readable text output goes to
// stderr; the level is Debug when debug is true, Info otherwise. The level
// can be changed later with SetDebug.
func Init(debug bool) {
	initOnce.Do(func() {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: defaultLevel,
		})
		defaultLogger = slog.New(handler)
		slog.SetDefault(defaultLogger)
	})
	SetDebug(debug)
}

// SetDebug switches the default logger between debug and info level. Called
// again once command line flags are parsed so --debug takes effect.
func SetDebug(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	defaultLevel.Set(level)
}

// NewFileLogger creates a structured JSON logger writing to the given file
// with rotation handled by lumberjack. It returns the logger, a close
// function for releasing the underlying writer, and an error if the log
// directory cannot be created.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   false,
	}

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler).With("service", serviceName)

	return logger, logWriter.Close, nil
}

// NewDiscardLogger returns a logger that drops everything. Used as a fallback
// when file logging cannot be initialized.
func NewDiscardLogger(serviceName string) *slog.Logger {
	handler := slog.NewJSONHandler(io.Discard, nil)
	return slog.New(handler).With("service", serviceName)
}
