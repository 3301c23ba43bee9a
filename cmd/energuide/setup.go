package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/energuide"
	"github.com/poiesic/energuide/config"
	"github.com/urfave/cli/v2"
)

const (
	metaConfig  = "config"
	metaCleanup = "cleanup"
)

// setup loads the environment and config and installs the default logger.
func setup(c *cli.Context) error {
	if err := config.LoadEnv(c.String("env-file")); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	// The chat UI owns the terminal.
	var console io.Writer = os.Stderr
	if c.Args().First() == "chat" {
		console = io.Discard
	}
	logger, cleanup := config.SetupLogger(console, cfg.Log.File, level)
	slog.SetDefault(logger)

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[metaConfig] = cfg
	c.App.Metadata[metaCleanup] = cleanup
	return nil
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Debug("loaded config", "path", path)
	return cfg, nil
}

func teardown(c *cli.Context) error {
	if cleanup, ok := c.App.Metadata[metaCleanup].(func() error); ok {
		return cleanup()
	}
	return nil
}

func appConfig(c *cli.Context) *config.AppConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.AppConfig); ok {
		return cfg
	}
	return config.Default()
}

func openGuide(c *cli.Context) (*energuide.Guide, error) {
	cfg := appConfig(c)
	g, err := energuide.Open(cfg.Database.Path, energuide.WithConfig(cfg), energuide.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return g, nil
}
