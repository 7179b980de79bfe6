package app

import (
	"context"
	"fmt"

	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/ctxlog"
	"github.com/vk/bundlegrid/internal/grouper"
	"github.com/vk/bundlegrid/internal/library"
)

// LoadLibrary reads the bundle manifests under the configured library paths.
// The result is reused by every plan of this App.
func (a *App) LoadLibrary(ctx context.Context) (*library.Library, error) {
	a.libMu.Lock()
	defer a.libMu.Unlock()
	if a.library != nil {
		return a.library, nil
	}
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading bundle library...", "paths", a.config.LibraryPaths)

	model := config.NewModel()
	if len(a.config.LibraryPaths) > 0 {
		loaded, err := a.loader.Load(ctx, a.config.LibraryPaths...)
		if err != nil {
			return nil, fmt.Errorf("failed to load libraries: %w", err)
		}
		if len(loaded.Assets) > 0 {
			logger.Warn("Asset declarations in library files are ignored.", "count", len(loaded.Assets))
		}
		model.Bundles = loaded.Bundles
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("failed to load libraries: %w", err)
	}
	lib, err := model.Library()
	if err != nil {
		return nil, fmt.Errorf("failed to load libraries: %w", err)
	}

	logger.Info("Bundle library loaded.", "bundles", lib.Len())
	a.library = lib
	return lib, nil
}

// LoadManifests reads the configured asset manifests.
func (a *App) LoadManifests(ctx context.Context) (*config.Model, error) {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading manifests...", "paths", a.config.ManifestPaths)

	model, err := a.loader.Load(ctx, a.config.ManifestPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	logger.Info("Manifests loaded successfully.", "assets", len(model.Assets), "bundles", len(model.Bundles))
	return model, nil
}

// Plan turns a manifest model into a delivery plan. Bundles declared in the
// model join the configured library for this call only.
func (a *App) Plan(ctx context.Context, model *config.Model) (*grouper.Plan, error) {
	ctx = a.context(ctx)

	if err := model.Validate(); err != nil {
		return nil, err
	}
	assets, err := model.WorkingSet()
	if err != nil {
		return nil, err
	}

	lib, err := a.LoadLibrary(ctx)
	if err != nil {
		return nil, err
	}
	if len(model.Bundles) > 0 {
		if lib, err = a.extendLibrary(lib, model); err != nil {
			return nil, err
		}
	}

	resolved, err := lib.Resolve(ctx, assets)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Working set ready.", "declared", len(assets), "resolved", len(resolved))
	return a.grouper.Group(ctx, resolved)
}

func (a *App) extendLibrary(base *library.Library, model *config.Model) (*library.Library, error) {
	local, err := model.Library()
	if err != nil {
		return nil, err
	}
	merged, err := library.New()
	if err != nil {
		return nil, err
	}
	for _, src := range []*library.Library{base, local} {
		for _, name := range src.Names() {
			for _, b := range src.Versions(name) {
				if err := merged.Add(b); err != nil {
					return nil, err
				}
			}
		}
	}
	return merged, nil
}
