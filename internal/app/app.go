package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/restobridge/internal/config"
	"github.com/vk/restobridge/internal/ctxlog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings config.Settings
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and the settings
// file merged under any CLI overrides.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settings, err := config.Load(ctx, cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	settings = applyOverrides(settings, cfg)
	logger.Debug("Settings resolved.",
		"root", settings.Pipeline.Root,
		"python", settings.Pipeline.Python,
		"port", settings.Bridge.Port,
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		settings: settings,
	}, nil
}

// applyOverrides returns settings with any CLI-provided values applied on top.
func applyOverrides(s config.Settings, cfg *Config) config.Settings {
	if cfg.Port != nil {
		s.Bridge.Port = *cfg.Port
	}
	if cfg.Root != nil {
		s.Pipeline.Root = *cfg.Root
	}
	if cfg.Python != nil {
		s.Pipeline.Python = *cfg.Python
	}
	if cfg.OutputFolder != nil {
		s.Pipeline.OutputFolder = *cfg.OutputFolder
	}
	if cfg.GPU != nil {
		s.Pipeline.GPU = *cfg.GPU
	}
	if cfg.WithScratch != nil {
		s.Pipeline.WithScratch = *cfg.WithScratch
	}
	if cfg.HR != nil {
		s.Pipeline.HR = *cfg.HR
	}
	return s
}

// Settings returns the merged application settings. This is primarily for testing.
func (a *App) Settings() config.Settings {
	return a.settings
}
