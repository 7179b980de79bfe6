package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegrid/internal/asset"
)

func js(id string) *asset.Asset  { return asset.New(id, asset.TypeScript) }
func css(id string) *asset.Asset { return asset.New(id, asset.TypeStylesheet) }

func req(t *testing.T, raw string) asset.Requirement {
	t.Helper()
	r, err := asset.ParseRequirement(raw)
	require.NoError(t, err)
	return r
}

func afterIDs(a *asset.Asset) []string {
	ids := make([]string, 0, len(a.After))
	for _, r := range a.After {
		ids = append(ids, r.Key())
	}
	return ids
}

func byID(assets []*asset.Asset) map[string]*asset.Asset {
	m := make(map[string]*asset.Asset, len(assets))
	for _, a := range assets {
		m[a.ID] = a
	}
	return m
}

func testLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := New(
		&Bundle{Name: "jquery", Version: "1.12.4", Assets: []*asset.Asset{js("jquery-1")}},
		&Bundle{Name: "jquery", Version: "3.7.1", Assets: []*asset.Asset{js("jquery-3")}},
		&Bundle{
			Name:     "ui",
			Version:  "1.13.2",
			Assets:   []*asset.Asset{js("ui.js"), css("ui.css")},
			Requires: []asset.Requirement{{Name: "jquery", Constraint: "^3"}},
		},
	)
	require.NoError(t, err)
	return lib
}

func TestNew(t *testing.T) {
	lib := testLibrary(t)
	assert.Equal(t, 3, lib.Len())
	assert.Equal(t, []string{"jquery", "ui"}, lib.Names())

	var versions []string
	for _, b := range lib.Versions("jquery") {
		versions = append(versions, b.Version)
	}
	assert.Equal(t, []string{"1.12.4", "3.7.1"}, versions)
	assert.Empty(t, lib.Versions("missing"))
}

func TestNew_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		bundles []*Bundle
		msg     string
	}{
		{"nil bundle", []*Bundle{nil}, "bundle has no name"},
		{"missing name", []*Bundle{{Version: "1.0.0"}}, "bundle has no name"},
		{"bad version", []*Bundle{{Name: "x", Version: "one"}}, `parse version "one"`},
		{
			"duplicate version",
			[]*Bundle{{Name: "x", Version: "1.0.0"}, {Name: "x", Version: "1.0"}},
			"x@1.0 is declared twice",
		},
		{
			"asset without identity",
			[]*Bundle{{Name: "x", Version: "1.0.0", Assets: []*asset.Asset{{}}}},
			"asset without identity",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.bundles...)
			assert.ErrorIs(t, err, ErrInvalidBundle)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestLookup(t *testing.T) {
	lib := testLibrary(t)

	b, err := lib.Lookup(req(t, "jquery"))
	require.NoError(t, err)
	assert.Equal(t, "3.7.1", b.Version, "highest version wins without a constraint")

	b, err = lib.Lookup(req(t, "jquery@~1.12"))
	require.NoError(t, err)
	assert.Equal(t, "1.12.4", b.Version)

	_, err = lib.Lookup(req(t, "jquery@^2"))
	assert.ErrorIs(t, err, ErrUnresolvedDependency)
	assert.ErrorContains(t, err, `no version of "jquery" satisfies "^2"`)

	_, err = lib.Lookup(req(t, "lodash"))
	assert.ErrorIs(t, err, ErrUnresolvedDependency)
	assert.ErrorContains(t, err, `no bundle named "lodash"`)

	_, err = lib.Lookup(req(t, "jquery@>>1"))
	assert.ErrorIs(t, err, ErrUnresolvedDependency)
}

func TestResolve(t *testing.T) {
	lib := testLibrary(t)
	app := js("app.js")
	app.Requires = []asset.Requirement{req(t, "ui")}
	theme := css("theme.css")
	theme.Requires = []asset.Requirement{req(t, "ui")}

	out, err := lib.Resolve(context.Background(), []*asset.Asset{app, theme})
	require.NoError(t, err)

	assert.Equal(t, []string{"app.js", "theme.css", "ui.js", "ui.css", "jquery-3"}, asset.IDs(out))

	got := byID(out)
	assert.Equal(t, []string{"ui.js"}, afterIDs(got["app.js"]))
	assert.Equal(t, []string{"ui.css"}, afterIDs(got["theme.css"]))
	assert.Equal(t, []string{"jquery-3"}, afterIDs(got["ui.js"]))
	assert.Empty(t, afterIDs(got["ui.css"]), "no script dependency for a stylesheet")

	// Inputs are untouched.
	assert.Empty(t, app.After)
	assert.Empty(t, theme.After)
	assert.NotSame(t, app, got["app.js"])
}

func TestResolve_ExistingAssetIsReused(t *testing.T) {
	lib := testLibrary(t)
	own := js("jquery-3")
	own.Path = "vendor/jquery.js"
	app := js("app.js")
	app.Requires = []asset.Requirement{req(t, "jquery")}

	out, err := lib.Resolve(context.Background(), []*asset.Asset{own, app})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "vendor/jquery.js", byID(out)["jquery-3"].Path)
	assert.Equal(t, []string{"jquery-3"}, afterIDs(byID(out)["app.js"]))
}

func TestResolve_SelfRequiringBundle(t *testing.T) {
	lib, err := New(&Bundle{
		Name:     "loop",
		Version:  "1.0.0",
		Assets:   []*asset.Asset{js("a"), js("b")},
		Requires: []asset.Requirement{{Name: "loop"}},
	})
	require.NoError(t, err)
	entry := js("entry")
	entry.Requires = []asset.Requirement{{Name: "loop"}}

	out, err := lib.Resolve(context.Background(), []*asset.Asset{entry})
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, []string{"entry", "a", "b"}, asset.IDs(out))
	assert.Equal(t, []string{"a", "b"}, afterIDs(got["entry"]))
	assert.Empty(t, got["a"].After)
	assert.Empty(t, got["b"].After)
}

func TestResolve_WorkingSetAssetSharesBundleID(t *testing.T) {
	lib, err := New(&Bundle{
		Name:    "kit",
		Version: "2.0.0",
		Assets:  []*asset.Asset{js("kit-core"), js("kit-extra"), js("kit-ui")},
	})
	require.NoError(t, err)
	own := js("kit-extra")
	own.Requires = []asset.Requirement{{Name: "kit"}}

	out, err := lib.Resolve(context.Background(), []*asset.Asset{own})
	require.NoError(t, err)

	got := byID(out)
	assert.Equal(t, []string{"kit-extra", "kit-core", "kit-ui"}, asset.IDs(out))
	assert.Equal(t, []string{"kit-core", "kit-ui"}, afterIDs(got["kit-extra"]))
}

func TestResolve_Unresolved(t *testing.T) {
	lib := testLibrary(t)
	app := js("app.js")
	app.Requires = []asset.Requirement{req(t, "react@^18")}

	_, err := lib.Resolve(context.Background(), []*asset.Asset{app})
	assert.ErrorIs(t, err, ErrUnresolvedDependency)
	assert.ErrorContains(t, err, `asset "app.js"`)
}

func TestResolve_NoRequirements(t *testing.T) {
	lib, err := New()
	require.NoError(t, err)
	a := css("a")

	out, err := lib.Resolve(context.Background(), []*asset.Asset{a, nil})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, asset.IDs(out))
}
