package app

import (
	"errors"
	"fmt"

	"github.com/vk/bundlegrid/internal/grouper"
	"github.com/vk/bundlegrid/internal/render"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // asset manifests, files or directories
	LibraryPaths  []string // bundle manifests

	Output string // text or json
	Cycles string // reject or ignore

	LogFormat string
	LogLevel  string
	// Listen switches to HTTP mode when set, e.g. ":8080".
	Listen string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ManifestPaths) == 0 && cfg.Listen == "" {
		return nil, errors.New("at least one manifest path is required unless --listen is set")
	}

	output, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	cfg.Output = string(output)

	cycles, err := grouper.ParseCyclePolicy(cfg.Cycles)
	if err != nil {
		return nil, err
	}
	cfg.Cycles = string(cycles)

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}

	return &cfg, nil
}
