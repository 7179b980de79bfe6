package hclconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegrid/internal/config"
)

const manifestHCL = `
asset "base" {
  type  = "stylesheet"
  path  = "css/base.css"
  media = "screen"
}

asset "app.css" {
  type       = "stylesheet"
  media      = "screen"
  every_page = true
  browsers   = { IE = "lt IE 9", "!IE" = false }
  after      = [asset.base, "theme.css"]
  before     = "print.css"
  requires   = ["icons@^2"]
}

asset "analytics" {
  type       = "script"
  source     = "external"
  path       = "https://cdn.example.com/a.js"
  scope      = "footer"
  defer      = true
  preprocess = false
  after      = [asset["app.css"]]
}
`

const libraryHCL = `
bundle "icons" {
  version  = "2.3.0"
  requires = ["fonts"]

  asset "icons.css" {
    type = "stylesheet"
  }
  asset "icons.js" {
    type  = "script"
    after = [asset["icons.css"]]
  }
}
`

func TestLoader_Parse(t *testing.T) {
	m, err := NewLoader().Parse(context.Background(), []byte(manifestHCL), "site.hcl")
	require.NoError(t, err)
	require.Len(t, m.Assets, 3)

	base := m.Assets[0]
	assert.Equal(t, "base", base.ID)
	assert.Equal(t, "stylesheet", base.Type)
	assert.Equal(t, "css/base.css", base.Path)
	assert.Nil(t, base.Preprocess)
	assert.Nil(t, base.After)
	assert.Nil(t, base.Browsers)
	assert.Contains(t, base.Origin, "site.hcl:")

	app := m.Assets[1]
	assert.True(t, app.EveryPage)
	assert.Equal(t, map[string]string{"IE": "lt IE 9", "!IE": "false"}, app.Browsers)
	assert.Equal(t, []config.Reference{{ID: "base", Direct: true}, {ID: "theme.css"}}, app.After)
	assert.Equal(t, []config.Reference{{ID: "print.css"}}, app.Before)
	assert.Equal(t, []string{"icons@^2"}, app.Requires)

	analytics := m.Assets[2]
	assert.Equal(t, "external", analytics.Source)
	assert.Equal(t, "footer", analytics.Scope)
	assert.True(t, analytics.Defer)
	require.NotNil(t, analytics.Preprocess)
	assert.False(t, *analytics.Preprocess)
	assert.Equal(t, []config.Reference{{ID: "app.css", Direct: true}}, analytics.After)

	require.NoError(t, m.Validate())
}

func TestLoader_ParseBundles(t *testing.T) {
	m, err := NewLoader().Parse(context.Background(), []byte(libraryHCL), "lib.hcl")
	require.NoError(t, err)
	require.Len(t, m.Bundles, 1)

	b := m.Bundles[0]
	assert.Equal(t, "icons", b.Name)
	assert.Equal(t, "2.3.0", b.Version)
	assert.Equal(t, []string{"fonts"}, b.Requires)
	require.Len(t, b.Assets, 2)
	assert.Equal(t, "icons.js", b.Assets[1].ID)
	assert.Equal(t, []config.Reference{{ID: "icons.css", Direct: true}}, b.Assets[1].After)
	require.NoError(t, m.Validate())
}

func TestLoader_ParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		msg  string
	}{
		{"syntax error", `asset "x" {`, "failed to parse HCL file bad.hcl"},
		{"missing type", `asset "x" {}`, "failed to decode HCL file bad.hcl"},
		{"unknown attribute", "asset \"x\" {\n  type = \"script\"\n  colour = 1\n}", "failed to decode HCL file bad.hcl"},
		{"unknown block", `widget "x" {}`, "failed to decode HCL file bad.hcl"},
		{"foreign reference", "asset \"x\" {\n  type = \"script\"\n  after = [var.y]\n}", "unsupported reference var.y"},
		{"nested reference", "asset \"x\" {\n  type = \"script\"\n  after = [asset.y.z]\n}", "unsupported reference"},
		{"non string reference", "asset \"x\" {\n  type = \"script\"\n  before = [[1]]\n}", "invalid reference"},
		{"bad browsers", "asset \"x\" {\n  type = \"script\"\n  browsers = [\"IE\"]\n}", "invalid browsers"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Parse(context.Background(), []byte(tc.src), "bad.hcl")
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.hcl"), []byte(manifestHCL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "icons.hcl"), []byte(libraryHCL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("ignored: true"), 0o644))

	m, err := NewLoader().Load(context.Background(), dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)

	assert.Len(t, m.Assets, 3)
	assert.Len(t, m.Bundles, 1)
	assert.Contains(t, m.Bundles[0].Origin, "icons.hcl:")

	lib, err := m.Library()
	require.NoError(t, err)
	assert.Equal(t, []string{"icons"}, lib.Names())
}

func TestLoader_Extensions(t *testing.T) {
	assert.Equal(t, []string{".hcl"}, NewLoader().Extensions())
}
