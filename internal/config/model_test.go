package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegrid/internal/asset"
)

func ptr[T any](v T) *T { return &v }

func TestModel_WorkingSet(t *testing.T) {
	m := &Model{Assets: []*AssetDefinition{
		{ID: "base.css", Type: "stylesheet", Media: "screen"},
		{
			ID:         "app.css",
			Type:       "stylesheet",
			Path:       "css/app.css",
			Browsers:   map[string]string{"IE": "lt IE 9"},
			Preprocess: ptr(false),
			After:      []Reference{{ID: "base.css", Direct: true}, {ID: "ghost"}},
			Before:     []Reference{{ID: "print.css"}},
			Requires:   []string{"normalize@^8"},
		},
	}}
	require.NoError(t, m.Validate())

	assets, err := m.WorkingSet()
	require.NoError(t, err)
	require.Len(t, assets, 2)

	base, app := assets[0], assets[1]
	assert.Equal(t, "base.css", base.Path, "path defaults to the identity")
	assert.True(t, base.Preprocess)
	assert.Equal(t, asset.SourceFile, base.Source)

	assert.Equal(t, "css/app.css", app.Path)
	assert.False(t, app.Preprocess)
	assert.Equal(t, "lt IE 9", app.Browsers["IE"])
	require.Len(t, app.After, 2)
	assert.Same(t, base, app.After[0].Asset)
	assert.Equal(t, "ghost", app.After[1].ID)
	assert.Nil(t, app.After[1].Asset)
	assert.Equal(t, []string{"print.css"}, []string{app.Before[0].Key()})
	assert.Equal(t, []asset.Requirement{{Name: "normalize", Constraint: "^8"}}, app.Requires)
}

func TestModel_Validate(t *testing.T) {
	testCases := []struct {
		name  string
		model *Model
		msg   string
	}{
		{
			name:  "missing identity",
			model: &Model{Assets: []*AssetDefinition{{Type: "script", Origin: "a.hcl:1"}}},
			msg:   "a.hcl:1: asset without identity",
		},
		{
			name: "duplicate identity",
			model: &Model{Assets: []*AssetDefinition{
				{ID: "x", Origin: "a.hcl:1"},
				{ID: "x", Origin: "b.hcl:4"},
			}},
			msg: `b.hcl:4: asset "x" already declared at a.hcl:1`,
		},
		{
			name: "dangling direct reference",
			model: &Model{Assets: []*AssetDefinition{
				{ID: "x", Origin: "a.hcl:1", Before: []Reference{{ID: "y", Direct: true}}},
			}},
			msg: `asset "x" references undeclared asset "y"`,
		},
		{
			name:  "bundle without name",
			model: &Model{Bundles: []*BundleDefinition{{Version: "1.0.0", Origin: "lib.hcl:1"}}},
			msg:   "lib.hcl:1: bundle without name",
		},
		{
			name: "bundle reference outside the bundle",
			model: &Model{
				Assets: []*AssetDefinition{{ID: "app"}},
				Bundles: []*BundleDefinition{{Name: "b", Version: "1.0.0", Assets: []*AssetDefinition{
					{ID: "inner", After: []Reference{{ID: "app", Direct: true}}},
				}}},
			},
			msg: `asset "inner" references undeclared asset "app"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.model.Validate()
			assert.ErrorIs(t, err, ErrInvalidManifest)
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestModel_Library(t *testing.T) {
	m := &Model{Bundles: []*BundleDefinition{
		{
			Name:     "ui",
			Version:  "1.13.2",
			Requires: []string{"jquery@^3"},
			Assets: []*AssetDefinition{
				{ID: "ui.css", Type: "stylesheet"},
				{ID: "ui.js", Type: "script", After: []Reference{{ID: "ui.css", Direct: true}}},
			},
		},
		{Name: "jquery", Version: "3.7.1", Assets: []*AssetDefinition{{ID: "jquery", Type: "script"}}},
	}}
	require.NoError(t, m.Validate())

	lib, err := m.Library()
	require.NoError(t, err)
	assert.Equal(t, []string{"jquery", "ui"}, lib.Names())

	ui, err := lib.Lookup(asset.Requirement{Name: "ui"})
	require.NoError(t, err)
	assert.Equal(t, []asset.Requirement{{Name: "jquery", Constraint: "^3"}}, ui.Requires)
	assert.Same(t, ui.Assets[0], ui.Assets[1].After[0].Asset)
}

func TestModel_LibraryErrors(t *testing.T) {
	_, err := (&Model{Bundles: []*BundleDefinition{{Name: "x", Version: "nope", Origin: "lib.hcl:3"}}}).Library()
	assert.ErrorContains(t, err, "lib.hcl:3")

	_, err = (&Model{Bundles: []*BundleDefinition{{Name: "x", Version: "1.0.0", Requires: []string{"@1"}}}}).Library()
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestModel_Merge(t *testing.T) {
	m := NewModel()
	m.Merge(&Model{Assets: []*AssetDefinition{{ID: "a"}}})
	m.Merge(&Model{Assets: []*AssetDefinition{{ID: "b"}}, Bundles: []*BundleDefinition{{Name: "x"}}})
	m.Merge(nil)

	require.Len(t, m.Assets, 2)
	assert.Equal(t, "b", m.Assets[1].ID)
	assert.Len(t, m.Bundles, 1)
}
