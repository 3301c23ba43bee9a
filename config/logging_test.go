package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		level, err := ParseLevel(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, level, tt.input)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var console, file bytes.Buffer
	logger := SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("indexed documents", "count", 3)

	assert.Contains(t, console.String(), "msg=\"indexed documents\" count=3")
	assert.NotContains(t, console.String(), "hidden")

	var record map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &record))
	assert.Equal(t, "indexed documents", record["msg"])
	assert.Equal(t, 3.0, record["count"])
}

func TestSetupLogger(t *testing.T) {
	t.Run("console only", func(t *testing.T) {
		var console bytes.Buffer
		logger, cleanup := SetupLogger(&console, "", slog.LevelInfo)
		defer cleanup()

		logger.Info("hello")
		assert.Contains(t, console.String(), "hello")
	})

	t.Run("with file", func(t *testing.T) {
		var console bytes.Buffer
		path := filepath.Join(t.TempDir(), "energuide.log")

		logger, cleanup := SetupLogger(&console, path, slog.LevelInfo)
		logger.Info("hello", "component", "test")
		require.NoError(t, cleanup())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
		assert.Contains(t, console.String(), "hello")
	})

	t.Run("unwritable file falls back to console", func(t *testing.T) {
		var console bytes.Buffer
		path := filepath.Join(t.TempDir(), "missing", "dir", "energuide.log")

		logger, cleanup := SetupLogger(&console, path, slog.LevelInfo)
		defer cleanup()

		logger.Info("still logging")
		assert.Contains(t, console.String(), "failed to open log file")
		assert.Contains(t, console.String(), "still logging")
	})
}

func TestLoadEnv(t *testing.T) {
	const key = "ENERGUIDE_TEST_ENV"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o644))

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "from-file", os.Getenv(key))
}
