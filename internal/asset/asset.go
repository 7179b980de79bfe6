package asset

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Type is the front-end asset type.
type Type string

const (
	TypeStylesheet Type = "stylesheet"
	TypeScript     Type = "script"
)

// Source describes where an asset's contents come from.
type Source string

const (
	SourceFile     Source = "file"
	SourceInline   Source = "inline"
	SourceExternal Source = "external"
)

// Script scopes.
const (
	ScopeHeader = "header"
	ScopeFooter = "footer"
)

// Ref points at another asset, either by identity string or directly.
type Ref struct {
	ID    string
	Asset *Asset
}

// Key returns the identity the reference resolves to.
func (r Ref) Key() string {
	if r.Asset != nil {
		return r.Asset.ID
	}
	return r.ID
}

// String implements fmt.Stringer.
func (r Ref) String() string { return r.Key() }

// ByID returns a reference to the asset with the given identity.
func ByID(id string) Ref { return Ref{ID: id} }

// To returns a direct reference to a.
func To(a *Asset) Ref { return Ref{Asset: a} }

// Requirement is a hard dependency on a named bundle. An empty Constraint
// accepts any version.
type Requirement struct {
	Name       string
	Constraint string
}

// ParseRequirement parses "name" or "name@constraint".
func ParseRequirement(raw string) (Requirement, error) {
	raw = strings.TrimSpace(raw)
	name, constraint, _ := strings.Cut(raw, "@")
	name = strings.TrimSpace(name)
	if name == "" {
		return Requirement{}, fmt.Errorf("asset: requirement %q has no bundle name", raw)
	}
	return Requirement{Name: name, Constraint: strings.TrimSpace(constraint)}, nil
}

// String implements fmt.Stringer.
func (r Requirement) String() string {
	if r.Constraint == "" {
		return r.Name
	}
	return r.Name + "@" + r.Constraint
}

// Asset is a single stylesheet or script in a working set.
type Asset struct {
	ID     string
	Type   Type
	Source Source
	// Path is a file path, a URL for external assets, or a label for inline ones.
	Path    string
	Version string

	// Media is the stylesheet media query. Empty means "all".
	Media string
	// Browsers holds conditional-comment style browser conditions, e.g.
	// {"IE": "lt IE 9", "!IE": "false"}.
	Browsers  map[string]string
	EveryPage bool
	// Preprocess reports whether the asset may be merged with others.
	Preprocess bool
	// Scope and Defer only apply to scripts.
	Scope string
	Defer bool

	After    []Ref
	Before   []Ref
	Requires []Requirement
}

// New returns a file asset that may be merged, the common case.
func New(id string, typ Type) *Asset {
	return &Asset{ID: id, Type: typ, Source: SourceFile, Path: id, Preprocess: true}
}

// Predecessors returns the assets declared to come before a.
func (a *Asset) Predecessors() []Ref { return a.After }

// Successors returns the assets declared to come after a.
func (a *Asset) Successors() []Ref { return a.Before }

// AddAfter declares that a comes after every given reference.
func (a *Asset) AddAfter(refs ...Ref) *Asset {
	a.After = append(a.After, refs...)
	return a
}

// AddBefore declares that a comes before every given reference.
func (a *Asset) AddBefore(refs ...Ref) *Asset {
	a.Before = append(a.Before, refs...)
	return a
}

// AfterIDs is AddAfter for identity strings.
func (a *Asset) AfterIDs(ids ...string) *Asset {
	for _, id := range ids {
		a.After = append(a.After, ByID(id))
	}
	return a
}

// BeforeIDs is AddBefore for identity strings.
func (a *Asset) BeforeIDs(ids ...string) *Asset {
	for _, id := range ids {
		a.Before = append(a.Before, ByID(id))
	}
	return a
}

// IsExternal reports whether the asset is served from a remote location.
func (a *Asset) IsExternal() bool { return a.Source == SourceExternal }

// Clone returns a copy of a whose slices and maps can be modified freely.
// Direct references keep pointing at the original targets.
func (a *Asset) Clone() *Asset {
	c := *a
	c.Browsers = maps.Clone(a.Browsers)
	c.After = slices.Clone(a.After)
	c.Before = slices.Clone(a.Before)
	c.Requires = slices.Clone(a.Requires)
	return &c
}

// String implements fmt.Stringer.
func (a *Asset) String() string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s)", a.ID, a.Type)
}

// IDs returns the identities of the given assets, in order.
func IDs(assets []*Asset) []string {
	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	return ids
}
