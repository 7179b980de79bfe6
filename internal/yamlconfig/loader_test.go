package yamlconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/bundlegrid/internal/config"
)

const manifestYAML = `
assets:
  - id: base
    type: stylesheet
    media: screen
  - id: app.css
    type: stylesheet
    every_page: true
    browsers:
      IE: lt IE 9
    after: [base, theme.css]
    before: print.css
    requires: icons@^2
  - id: analytics
    type: script
    source: external
    preprocess: false
    scope: footer
    defer: true
---
bundles:
  - name: icons
    version: 2.3.0
    requires: [fonts]
    assets:
      - id: icons.css
        type: stylesheet
`

func TestLoader_Parse(t *testing.T) {
	m, err := NewLoader().Parse(context.Background(), []byte(manifestYAML), "site.yaml")
	require.NoError(t, err)
	require.Len(t, m.Assets, 3)
	require.Len(t, m.Bundles, 1)

	base := m.Assets[0]
	assert.Equal(t, "base", base.ID)
	assert.Equal(t, "screen", base.Media)
	assert.Nil(t, base.Preprocess)
	assert.Equal(t, "site.yaml:assets[0]", base.Origin)

	app := m.Assets[1]
	assert.True(t, app.EveryPage)
	assert.Equal(t, map[string]string{"IE": "lt IE 9"}, app.Browsers)
	assert.Equal(t, []config.Reference{{ID: "base"}, {ID: "theme.css"}}, app.After)
	assert.Equal(t, []config.Reference{{ID: "print.css"}}, app.Before)
	assert.Equal(t, []string{"icons@^2"}, app.Requires)

	analytics := m.Assets[2]
	require.NotNil(t, analytics.Preprocess)
	assert.False(t, *analytics.Preprocess)
	assert.True(t, analytics.Defer)
	assert.Equal(t, "footer", analytics.Scope)

	b := m.Bundles[0]
	assert.Equal(t, "icons", b.Name)
	assert.Equal(t, "2.3.0", b.Version)
	assert.Equal(t, []string{"fonts"}, b.Requires)
	require.Len(t, b.Assets, 1)
	assert.Equal(t, "icons.css", b.Assets[0].ID)
	assert.Equal(t, "site.yaml:bundles[0].assets[0]", b.Assets[0].Origin)

	require.NoError(t, m.Validate())
	assets, err := m.WorkingSet()
	require.NoError(t, err)
	assert.Len(t, assets, 3)
}

func TestLoader_ParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"unknown key", "assets:\n  - id: x\n    colour: red\n"},
		{"bad list", "assets:\n  - id: x\n    after: {a: b}\n"},
		{"not yaml", "assets: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Parse(context.Background(), []byte(tc.src), "bad.yaml")
			assert.ErrorContains(t, err, "failed to decode YAML file bad.yaml")
		})
	}
}

func TestLoader_ParseEmpty(t *testing.T) {
	m, err := NewLoader().Parse(context.Background(), nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, m.Assets)
	assert.Empty(t, m.Bundles)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("assets:\n  - id: a\n    type: script\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("assets:\n  - id: b\n    type: script\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.hcl"), []byte(`asset "c" {}`), 0o644))

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	var ids []string
	for _, a := range m.Assets {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}
