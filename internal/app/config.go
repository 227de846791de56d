package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
// Pointer fields are CLI overrides: nil means the flag was not provided and
// the settings-file value (or built-in default) stands.
type Config struct {
	SettingsPath string
	LogFormat    string
	LogLevel     string

	// Serve selects bridge mode; InputPath selects one-shot mode.
	Serve     bool
	InputPath string

	Port         *int
	Root         *string
	Python       *string
	OutputFolder *string
	GPU          *string
	WithScratch  *bool
	HR           *bool
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Serve && cfg.InputPath != "" {
		return nil, errors.New("choose either -serve or an input path, not both")
	}
	if !cfg.Serve && cfg.InputPath == "" {
		return nil, errors.New("an input path is required unless -serve is set")
	}
	return &cfg, nil
}
