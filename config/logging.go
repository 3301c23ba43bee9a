package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w %q: must be one of debug, info, warn, error", ErrInvalidLogLevel, s)
	}
}

// SetupLogger creates a logger writing text to console and, when logFile is
// set, JSON to that file. Returns the logger and a cleanup function to close
// the file.
func SetupLogger(console io.Writer, logFile string, level slog.Level) (*slog.Logger, func() error) {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
	if logFile == "" {
		return slog.New(consoleHandler), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("failed to open log file, using console only", "err", err, "file", logFile)
		return logger, func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	logger := slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
	return logger, file.Close
}

// SetupLoggerWithWriters creates the same fanout over arbitrary writers.
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
}
