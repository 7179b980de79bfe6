// Package yamlconfig loads asset manifests written in YAML into the
// format-agnostic config.Model.
//
//	assets:
//	  - id: app.js
//	    type: script
//	    after: [jquery]
//	bundles:
//	  - name: ui
//	    version: 1.13.2
//	    assets:
//	      - id: ui.js
//	        type: script
//
// YAML has no reference syntax, so every relative position is a plain
// identity.
package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

type document struct {
	Assets  []assetDoc  `yaml:"assets"`
	Bundles []bundleDoc `yaml:"bundles"`
}

type assetDoc struct {
	ID         string            `yaml:"id"`
	Type       string            `yaml:"type"`
	Source     string            `yaml:"source"`
	Path       string            `yaml:"path"`
	Version    string            `yaml:"version"`
	Media      string            `yaml:"media"`
	Browsers   map[string]string `yaml:"browsers"`
	EveryPage  bool              `yaml:"every_page"`
	Preprocess *bool             `yaml:"preprocess"`
	Scope      string            `yaml:"scope"`
	Defer      bool              `yaml:"defer"`
	After      stringList        `yaml:"after"`
	Before     stringList        `yaml:"before"`
	Requires   stringList        `yaml:"requires"`
}

type bundleDoc struct {
	Name     string     `yaml:"name"`
	Version  string     `yaml:"version"`
	Requires stringList `yaml:"requires"`
	Assets   []assetDoc `yaml:"assets"`
}

// stringList accepts a single scalar or a sequence of scalars.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = stringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: want a string or a list of strings", node.Line)
	}
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Extensions() []string { return []string{".yaml", ".yml"} }

// Load parses every YAML file found under paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := config.FindFiles(paths, l.Extensions())
	if err != nil {
		return nil, err
	}

	model := config.NewModel()
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %w", file, err)
		}
		m, err := l.Parse(ctx, src, file)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}

	logger.Debug("YAML loading complete.", "files", len(files), "assets", len(model.Assets), "bundles", len(model.Bundles))
	return model, nil
}

// Parse reads one YAML manifest, possibly holding several documents.
// Unknown keys are errors.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	model := config.NewModel()
	for {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
		}
		for _, a := range doc.Assets {
			origin := fmt.Sprintf("%s:assets[%d]", filename, len(model.Assets))
			model.Assets = append(model.Assets, translateAsset(a, origin))
		}
		for _, b := range doc.Bundles {
			origin := fmt.Sprintf("%s:bundles[%d]", filename, len(model.Bundles))
			model.Bundles = append(model.Bundles, translateBundle(b, origin))
		}
	}

	ctxlog.FromContext(ctx).Debug("YAML manifest parsed.", "file", filename, "assets", len(model.Assets))
	return model, nil
}

func translateAsset(a assetDoc, origin string) *config.AssetDefinition {
	return &config.AssetDefinition{
		ID:         a.ID,
		Type:       a.Type,
		Source:     a.Source,
		Path:       a.Path,
		Version:    a.Version,
		Media:      a.Media,
		Browsers:   a.Browsers,
		EveryPage:  a.EveryPage,
		Preprocess: a.Preprocess,
		Scope:      a.Scope,
		Defer:      a.Defer,
		After:      references(a.After),
		Before:     references(a.Before),
		Requires:   a.Requires,
		Origin:     origin,
	}
}

func translateBundle(b bundleDoc, origin string) *config.BundleDefinition {
	def := &config.BundleDefinition{
		Name:     b.Name,
		Version:  b.Version,
		Requires: b.Requires,
		Origin:   origin,
	}
	for i, a := range b.Assets {
		def.Assets = append(def.Assets, translateAsset(a, fmt.Sprintf("%s.assets[%d]", origin, i)))
	}
	return def
}

func references(ids []string) []config.Reference {
	if len(ids) == 0 {
		return nil
	}
	refs := make([]config.Reference, len(ids))
	for i, id := range ids {
		refs[i] = config.Reference{ID: id}
	}
	return refs
}
