// Package hclconfig loads asset manifests written in HCL into the
// format-agnostic config.Model.
//
//	asset "app.js" {
//	  type     = "script"
//	  after    = ["jquery", asset.base]
//	  requires = ["ui@^1.13"]
//	}
//
//	bundle "ui" {
//	  version = "1.13.2"
//	  asset "ui.js" {
//	    type = "script"
//	  }
//	}
//
// Relative positions accept identity strings, which may name assets that are
// never declared, and asset.<id> or asset["<id>"] references, which must
// resolve.
package hclconfig
