// Package library expands hard bundle dependencies into ordering
// constraints.
//
// A bundle is a named, versioned set of assets. An asset that requires a
// bundle pulls the bundle's assets into the working set and is placed after
// every bundle asset of its own type.
package library

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/bundlegrid/internal/asset"
	"github.com/vk/bundlegrid/internal/ctxlog"
	"github.com/vk/bundlegrid/internal/semver"
)

var (
	ErrInvalidBundle        = errors.New("invalid bundle")
	ErrUnresolvedDependency = errors.New("unresolved dependency")
)

// Bundle is one version of a named asset bundle. Requires applies to every
// asset of the bundle.
type Bundle struct {
	Name     string
	Version  string
	Assets   []*asset.Asset
	Requires []asset.Requirement
}

func (b *Bundle) String() string { return b.Name + "@" + b.Version }

type entry struct {
	bundle  *Bundle
	version semver.Version
}

// Library indexes bundles by name. Several versions of one name may coexist.
type Library struct {
	byName map[string][]entry
}

// New indexes bundles, rejecting unnamed bundles, unparsable versions and
// duplicate name/version pairs.
func New(bundles ...*Bundle) (*Library, error) {
	l := &Library{byName: make(map[string][]entry)}
	for _, b := range bundles {
		if err := l.Add(b); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add indexes one more bundle.
func (l *Library) Add(b *Bundle) error {
	if b == nil || b.Name == "" {
		return fmt.Errorf("%w: bundle has no name", ErrInvalidBundle)
	}
	v, err := semver.ParseVersion(b.Version)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidBundle, b.Name, err)
	}
	for _, e := range l.byName[b.Name] {
		if semver.Compare(e.version, v) == 0 {
			return fmt.Errorf("%w: %s is declared twice", ErrInvalidBundle, b)
		}
	}
	for _, a := range b.Assets {
		if a == nil || a.ID == "" {
			return fmt.Errorf("%w: %s has an asset without identity", ErrInvalidBundle, b)
		}
	}
	l.byName[b.Name] = append(l.byName[b.Name], entry{bundle: b, version: v})
	return nil
}

// Len returns the number of indexed bundle versions.
func (l *Library) Len() int {
	n := 0
	for _, entries := range l.byName {
		n += len(entries)
	}
	return n
}

// Names returns the indexed bundle names, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.byName))
	for name := range l.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Versions returns every bundle indexed under name, in the order added.
func (l *Library) Versions(name string) []*Bundle {
	entries := l.byName[name]
	out := make([]*Bundle, len(entries))
	for i, e := range entries {
		out[i] = e.bundle
	}
	return out
}

// Lookup returns the highest version of req.Name satisfying req.Constraint.
func (l *Library) Lookup(req asset.Requirement) (*Bundle, error) {
	entries, ok := l.byName[req.Name]
	if !ok {
		return nil, fmt.Errorf("%w: no bundle named %q", ErrUnresolvedDependency, req.Name)
	}
	c, err := semver.ParseConstraint(req.Constraint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnresolvedDependency, req, err)
	}

	versions := make([]semver.Version, len(entries))
	for i, e := range entries {
		versions[i] = e.version
	}
	best, ok := semver.MaxSatisfying(c, versions)
	if !ok {
		return nil, fmt.Errorf("%w: no version of %q satisfies %q", ErrUnresolvedDependency, req.Name, c)
	}
	return entries[best].bundle, nil
}

// Resolve returns a working set in which every requirement is expanded. The
// given assets are cloned, never modified. Bundle assets are added once, even
// when several assets require the same bundle. An asset whose identity is
// already in the working set is not added again.
func (l *Library) Resolve(ctx context.Context, assets []*asset.Asset) ([]*asset.Asset, error) {
	logger := ctxlog.FromContext(ctx)

	r := &resolution{
		lib:    l,
		byID:   make(map[string]*asset.Asset, len(assets)),
		loaded: make(map[*Bundle][]*asset.Asset),
		owner:  make(map[*asset.Asset]*Bundle),
	}
	for _, a := range assets {
		if a == nil {
			continue
		}
		r.add(a.Clone())
	}

	// r.out grows while bundles are loaded; their requirements are expanded
	// in the same pass.
	for i := 0; i < len(r.out); i++ {
		a := r.out[i]
		for _, req := range a.Requires {
			b, err := l.Lookup(req)
			if err != nil {
				return nil, fmt.Errorf("asset %q: %w", a.ID, err)
			}
			members, fresh := r.load(b)
			if r.owner[a] == b {
				// A bundle requiring itself adds nothing.
				continue
			}
			if fresh {
				logger.Debug("Bundle loaded.", "bundle", b.String(), "assets", len(members), "required_by", a.ID)
			}
			for _, m := range members {
				if m == a || m.Type != a.Type {
					continue
				}
				a.AddAfter(asset.ByID(m.ID))
			}
		}
	}

	logger.Debug("Requirements resolved.", "input", len(assets), "output", len(r.out), "bundles", len(r.loaded))
	return r.out, nil
}

type resolution struct {
	lib    *Library
	out    []*asset.Asset
	byID   map[string]*asset.Asset
	loaded map[*Bundle][]*asset.Asset
	// owner maps bundle assets to the bundle that brought them in.
	owner  map[*asset.Asset]*Bundle
}

func (r *resolution) add(a *asset.Asset) *asset.Asset {
	if existing, ok := r.byID[a.ID]; ok {
		return existing
	}
	r.byID[a.ID] = a
	r.out = append(r.out, a)
	return a
}

func (r *resolution) load(b *Bundle) ([]*asset.Asset, bool) {
	if members, ok := r.loaded[b]; ok {
		return members, false
	}
	members := make([]*asset.Asset, 0, len(b.Assets))
	for _, src := range b.Assets {
		c := src.Clone()
		c.Requires = append(c.Requires, b.Requires...)
		m := r.add(c)
		if m == c {
			r.owner[c] = b
		}
		members = append(members, m)
	}
	r.loaded[b] = members
	return members, true
}
