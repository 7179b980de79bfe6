package config

import (
	"errors"
	"fmt"
	"maps"

	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/library"
)

// ErrInvalidManifest reports a manifest that parsed but does not make sense.
var ErrInvalidManifest = errors.New("invalid manifest")

// Model is the unified, format-agnostic representation of all loaded
// manifests.
type Model struct {
	Assets  []*AssetDefinition
	Bundles []*BundleDefinition
}

// AssetDefinition is the format-agnostic representation of an `asset` block.
type AssetDefinition struct {
	ID      string
	Type    string
	Source  string
	Path    string
	Version string

	Media     string
	Browsers  map[string]string
	EveryPage bool
	// Preprocess is nil when the manifest leaves it out; that means true.
	Preprocess *bool
	Scope      string
	Defer      bool

	After    []Reference
	Before   []Reference
	Requires []string

	// Origin is "file:line" of the declaration, for error messages.
	Origin string
}

// Reference is one relative position. Direct references were written as
// references to another declared asset and must resolve inside the
// manifests; plain ones may name assets that never show up.
type Reference struct {
	ID     string
	Direct bool
}

// BundleDefinition is the format-agnostic representation of a `bundle` block.
type BundleDefinition struct {
	Name     string
	Version  string
	Requires []string
	Assets   []*AssetDefinition
	Origin   string
}

// NewModel returns an empty model.
func NewModel() *Model { return &Model{} }

// Merge appends the declarations of other to m.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Assets = append(m.Assets, other.Assets...)
	m.Bundles = append(m.Bundles, other.Bundles...)
}

// Validate checks identities and direct references across the whole model.
func (m *Model) Validate() error {
	seen := make(map[string]string, len(m.Assets))
	for _, def := range m.Assets {
		if def.ID == "" {
			return fmt.Errorf("%w: %s: asset without identity", ErrInvalidManifest, def.Origin)
		}
		if prev, ok := seen[def.ID]; ok {
			return fmt.Errorf("%w: %s: asset %q already declared at %s", ErrInvalidManifest, def.Origin, def.ID, prev)
		}
		seen[def.ID] = def.Origin
	}

	for _, b := range m.Bundles {
		if b.Name == "" {
			return fmt.Errorf("%w: %s: bundle without name", ErrInvalidManifest, b.Origin)
		}
		local := make(map[string]struct{}, len(b.Assets))
		for _, def := range b.Assets {
			local[def.ID] = struct{}{}
		}
		for _, def := range b.Assets {
			if err := checkDirect(def, func(id string) bool {
				_, ok := local[id]
				return ok
			}); err != nil {
				return err
			}
		}
	}

	for _, def := range m.Assets {
		if err := checkDirect(def, func(id string) bool {
			_, ok := seen[id]
			return ok
		}); err != nil {
			return err
		}
	}
	return nil
}

func checkDirect(def *AssetDefinition, known func(string) bool) error {
	for _, refs := range [][]Reference{def.After, def.Before} {
		for _, r := range refs {
			if r.Direct && !known(r.ID) {
				return fmt.Errorf("%w: %s: asset %q references undeclared asset %q", ErrInvalidManifest, def.Origin, def.ID, r.ID)
			}
		}
	}
	return nil
}

// WorkingSet converts the top-level asset declarations into assets, in
// declaration order. Direct references point at the converted targets.
func (m *Model) WorkingSet() ([]*asset.Asset, error) {
	return buildAssets(m.Assets)
}

// Library converts the bundle declarations into a bundle library.
func (m *Model) Library() (*library.Library, error) {
	lib, err := library.New()
	if err != nil {
		return nil, err
	}
	for _, b := range m.Bundles {
		assets, err := buildAssets(b.Assets)
		if err != nil {
			return nil, fmt.Errorf("bundle %q: %w", b.Name, err)
		}
		reqs, err := parseRequirements(b.Requires)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: bundle %q: %w", ErrInvalidManifest, b.Origin, b.Name, err)
		}
		bundle := &library.Bundle{
			Name:     b.Name,
			Version:  b.Version,
			Assets:   assets,
			Requires: reqs,
		}
		if err := lib.Add(bundle); err != nil {
			return nil, fmt.Errorf("%s: %w", b.Origin, err)
		}
	}
	return lib, nil
}

func buildAssets(defs []*AssetDefinition) ([]*asset.Asset, error) {
	out := make([]*asset.Asset, 0, len(defs))
	byID := make(map[string]*asset.Asset, len(defs))
	for _, def := range defs {
		a, err := def.toAsset()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
		byID[a.ID] = a
	}

	for i, def := range defs {
		a := out[i]
		a.After = resolveRefs(def.After, byID)
		a.Before = resolveRefs(def.Before, byID)
	}
	return out, nil
}

func resolveRefs(refs []Reference, byID map[string]*asset.Asset) []asset.Ref {
	if len(refs) == 0 {
		return nil
	}
	out := make([]asset.Ref, 0, len(refs))
	for _, r := range refs {
		if target, ok := byID[r.ID]; ok && r.Direct {
			out = append(out, asset.To(target))
			continue
		}
		out = append(out, asset.ByID(r.ID))
	}
	return out
}

func (def *AssetDefinition) toAsset() (*asset.Asset, error) {
	a := asset.New(def.ID, asset.Type(def.Type))
	if def.Source != "" {
		a.Source = asset.Source(def.Source)
	}
	if def.Path != "" {
		a.Path = def.Path
	}
	a.Version = def.Version
	a.Media = def.Media
	a.Browsers = maps.Clone(def.Browsers)
	a.EveryPage = def.EveryPage
	if def.Preprocess != nil {
		a.Preprocess = *def.Preprocess
	}
	a.Scope = def.Scope
	a.Defer = def.Defer

	reqs, err := parseRequirements(def.Requires)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: asset %q: %w", ErrInvalidManifest, def.Origin, def.ID, err)
	}
	a.Requires = reqs
	return a, nil
}

func parseRequirements(raw []string) ([]asset.Requirement, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]asset.Requirement, 0, len(raw))
	for _, r := range raw {
		req, err := asset.ParseRequirement(r)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}
