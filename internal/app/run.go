package app

import (
	"context"
	"fmt"

	"github.com/vk/bundlegrid/internal/render"
)

// Run executes the main application logic: one plan from the configured
// manifests, or the HTTP server when Listen is set.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.")

	if _, err := a.LoadLibrary(ctx); err != nil {
		return err
	}

	if a.config.Listen != "" {
		return a.Serve(ctx)
	}

	model, err := a.LoadManifests(ctx)
	if err != nil {
		return err
	}
	if len(model.Assets) == 0 {
		a.logger.Warn("No assets found in manifests, nothing to plan.")
	}

	plan, err := a.Plan(ctx, model)
	if err != nil {
		return fmt.Errorf("failed to compute plan: %w", err)
	}
	if err := render.Write(a.outW, a.format, plan); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
