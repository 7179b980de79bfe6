package hclconfig

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all top-level blocks of a manifest. Unknown blocks are
// errors.
type fileRoot struct {
	Assets  []*assetBlock  `hcl:"asset,block"`
	Bundles []*bundleBlock `hcl:"bundle,block"`
}

type assetBlock struct {
	ID         string         `hcl:"id,label"`
	Type       string         `hcl:"type"`
	Source     *string        `hcl:"source,optional"`
	Path       *string        `hcl:"path,optional"`
	Version    *string        `hcl:"version,optional"`
	Media      *string        `hcl:"media,optional"`
	Browsers   hcl.Expression `hcl:"browsers,optional"`
	EveryPage  *bool          `hcl:"every_page,optional"`
	Preprocess *bool          `hcl:"preprocess,optional"`
	Scope      *string        `hcl:"scope,optional"`
	Defer      *bool          `hcl:"defer,optional"`
	After      hcl.Expression `hcl:"after,optional"`
	Before     hcl.Expression `hcl:"before,optional"`
	Requires   []string       `hcl:"requires,optional"`
	Body       hcl.Body       `hcl:",body"`
}

type bundleBlock struct {
	Name     string        `hcl:"name,label"`
	Version  string        `hcl:"version"`
	Requires []string      `hcl:"requires,optional"`
	Assets   []*assetBlock `hcl:"asset,block"`
	Body     hcl.Body      `hcl:",body"`
}
