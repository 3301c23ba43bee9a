package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/energuide/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findFlag[T cli.Flag](t *testing.T, cmd *cli.Command, name string) T {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(T); ok {
			for _, n := range flag.Names() {
				if n == name {
					return f
				}
			}
		}
	}
	t.Fatalf("flag %q not found on %s", name, cmd.Name)
	var zero T
	return zero
}

// testArgs points the app at an isolated config and index.
func testArgs(t *testing.T, args ...string) []string {
	t.Helper()
	dir := t.TempDir()
	base := []string{
		"energuide",
		"--config", filepath.Join(dir, "energuide.yaml"),
		"--env-file", filepath.Join(dir, "missing.env"),
		"--db", filepath.Join(dir, "index"),
	}
	return append(base, args...)
}

func TestCommands(t *testing.T) {
	app := newApp()
	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t, []string{"ingest", "reindex", "search", "ask", "chat", "serve", "info"}, names)
}

func TestCommandFlags(t *testing.T) {
	app := newApp()

	t.Run("search k defaults to 3", func(t *testing.T) {
		k := findFlag[*cli.IntFlag](t, findCommand(t, app, "search"), "k")
		assert.Equal(t, 3, k.Value)
		assert.Contains(t, k.Aliases, "n")
	})

	t.Run("reindex flags have no defaults", func(t *testing.T) {
		cmd := findCommand(t, app, "reindex")
		assert.Zero(t, findFlag[*cli.IntFlag](t, cmd, "batch-size").Value)
		assert.Zero(t, findFlag[*cli.IntFlag](t, cmd, "max-retries").Value)
		assert.Zero(t, findFlag[*cli.DurationFlag](t, cmd, "retry-delay").Value)
	})

	t.Run("serve shutdown timeout", func(t *testing.T) {
		timeout := findFlag[*cli.DurationFlag](t, findCommand(t, app, "serve"), "shutdown-timeout")
		assert.Equal(t, 10*time.Second, timeout.Value)
	})

	t.Run("ingest rebuild is off by default", func(t *testing.T) {
		rebuild := findFlag[*cli.BoolFlag](t, findCommand(t, app, "ingest"), "rebuild")
		assert.False(t, rebuild.Value)
	})
}

func TestSetup_Overrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "energuide.yaml")
	cfg := config.Default()
	cfg.Retrieval.TopK = 7
	cfg.Log.Level = "warn"
	require.NoError(t, config.Save(cfgPath, cfg))

	app := newApp()
	app.Writer = &bytes.Buffer{}
	dbPath := filepath.Join(dir, "override")
	err := app.Run([]string{
		"energuide",
		"--config", cfgPath,
		"--env-file", filepath.Join(dir, "missing.env"),
		"--db", dbPath,
		"--log-level", "debug",
		"info",
	})
	require.NoError(t, err)

	loaded, ok := app.Metadata[metaConfig].(*config.AppConfig)
	require.True(t, ok)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
	assert.Equal(t, dbPath, loaded.Database.Path)
	assert.Equal(t, "debug", loaded.Log.Level)
}

func TestSetup_InvalidLogLevel(t *testing.T) {
	app := newApp()
	err := app.Run(testArgs(t, "--log-level", "chatty", "info"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestSetup_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("ENERGUIDE_TEST_KEY=from-env-file\n"), 0o644))
	t.Setenv("ENERGUIDE_TEST_KEY", "")
	os.Unsetenv("ENERGUIDE_TEST_KEY")

	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{
		"energuide",
		"--config", filepath.Join(dir, "energuide.yaml"),
		"--env-file", envPath,
		"--db", filepath.Join(dir, "index"),
		"info",
	})
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", os.Getenv("ENERGUIDE_TEST_KEY"))
}

func TestInfoCommand(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out

	require.NoError(t, app.Run(testArgs(t, "info")))
	assert.Contains(t, out.String(), "Documents:        0")
	assert.Contains(t, out.String(), "text-embedding-3-small")
}

func TestArgumentsRequired(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"ingest", "at least one FAQ file is required"},
		{"search", "a query is required"},
		{"ask", "a question is required"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			app := newApp()
			err := app.Run(testArgs(t, tt.command))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIngestCommand_MissingFile(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run(testArgs(t, "ingest", filepath.Join(t.TempDir(), "nope.json")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.json")
}

func TestReindexCommand_Validation(t *testing.T) {
	app := newApp()
	err := app.Run(testArgs(t, "reindex", "--batch-size=0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch-size must be greater than 0")
}

func TestReindexCommand_EmptyIndex(t *testing.T) {
	app := newApp()
	var errOut bytes.Buffer
	app.ErrWriter = &errOut

	require.NoError(t, app.Run(testArgs(t, "reindex")))
	assert.Contains(t, errOut.String(), "No documents in the index")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "짧은 글", preview("짧은\n  글", 10))
	assert.Equal(t, "가나다...", preview("가나다라마", 3))
}
