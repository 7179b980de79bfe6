package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/ctxlog"
	"github.com/vk/bundlegrid/internal/grouper"
	"github.com/vk/bundlegrid/internal/library"
	"github.com/vk/bundlegrid/internal/metrics"
	"github.com/vk/bundlegrid/internal/render"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	registry *prometheus.Registry
	metrics  *metrics.Recorder
	grouper  *grouper.Grouper
	format   render.Format

	libMu   sync.Mutex
	library *library.Library
}

// NewApp is the constructor for the main application. Plans are written to
// outW and logs to logW. A nil loader means DefaultLoader.
//
// NewApp panics when the configuration was not produced by NewConfig; that
// is a programming error, not a user error.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	if cfg == nil {
		panic("app: nil config")
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if loader == nil {
		loader = DefaultLoader()
	}

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		panic(fmt.Errorf("app: %w", err))
	}
	cycles, err := grouper.ParseCyclePolicy(cfg.Cycles)
	if err != nil {
		panic(fmt.Errorf("app: %w", err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec, err := metrics.New(reg)
	if err != nil {
		panic(fmt.Errorf("app: %w", err))
	}
	logger.Debug("Metrics registered.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		registry: reg,
		metrics:  rec,
		grouper:  grouper.New(grouper.Options{Cycles: cycles, Metrics: rec}),
		format:   format,
	}
}

// Registry returns the application's metrics registry. This is primarily
// for testing.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
