package hclconfig

import (
	"context"
	"fmt"

	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/ctxlog"
)

// translateAsset converts the HCL-specific asset schema into the agnostic
// model.
func translateAsset(ctx context.Context, b *assetBlock) (*config.AssetDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("asset", b.ID)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL asset to internal config model.")

	def := &config.AssetDefinition{
		ID:         b.ID,
		Type:       b.Type,
		Source:     deref(b.Source),
		Path:       deref(b.Path),
		Version:    deref(b.Version),
		Media:      deref(b.Media),
		EveryPage:  deref(b.EveryPage),
		Preprocess: b.Preprocess,
		Scope:      deref(b.Scope),
		Defer:      deref(b.Defer),
		Requires:   b.Requires,
		Origin:     origin(b.Body),
	}

	var err error
	if isExprDefined(ctx, b.Browsers, "browsers") {
		if def.Browsers, err = decodeBrowsers(b.Browsers); err != nil {
			return nil, fmt.Errorf("asset %q: %w", b.ID, err)
		}
	}
	if isExprDefined(ctx, b.After, "after") {
		if def.After, err = decodeReferences(b.After); err != nil {
			return nil, fmt.Errorf("asset %q: %w", b.ID, err)
		}
	}
	if isExprDefined(ctx, b.Before, "before") {
		if def.Before, err = decodeReferences(b.Before); err != nil {
			return nil, fmt.Errorf("asset %q: %w", b.ID, err)
		}
	}
	return def, nil
}

// translateBundle converts a bundle block and its nested assets.
func translateBundle(ctx context.Context, b *bundleBlock) (*config.BundleDefinition, error) {
	logger := ctxlog.FromContext(ctx).With("bundle", b.Name)
	logger.Debug("Translating HCL bundle to internal config model.", "assets", len(b.Assets))

	def := &config.BundleDefinition{
		Name:     b.Name,
		Version:  b.Version,
		Requires: b.Requires,
		Origin:   origin(b.Body),
	}
	for _, ab := range b.Assets {
		a, err := translateAsset(ctxlog.WithLogger(ctx, logger), ab)
		if err != nil {
			return nil, fmt.Errorf("bundle %q: %w", b.Name, err)
		}
		def.Assets = append(def.Assets, a)
	}
	return def, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
