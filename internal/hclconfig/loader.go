package hclconfig

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/ctxlog"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Extensions() []string { return []string{".hcl"} }

// Load parses every .hcl file found under paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := config.FindFiles(paths, l.Extensions())
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := config.NewModel()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		m, err := l.decode(ctx, hclFile, file)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}

	logger.Debug("HCL loading complete.", "assets", len(model.Assets), "bundles", len(model.Bundles))
	return model, nil
}

// Parse reads one HCL manifest from memory.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(ctx, hclFile, filename)
}

func (l *Loader) decode(ctx context.Context, file *hcl.File, filename string) (*config.Model, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	model := config.NewModel()
	for _, block := range root.Assets {
		def, err := translateAsset(ctx, block)
		if err != nil {
			return nil, err
		}
		model.Assets = append(model.Assets, def)
	}
	for _, block := range root.Bundles {
		def, err := translateBundle(ctx, block)
		if err != nil {
			return nil, err
		}
		model.Bundles = append(model.Bundles, def)
	}
	return model, nil
}
