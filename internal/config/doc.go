// Package config defines the format-agnostic manifest model and the Loader
// interface implemented by the HCL and YAML loaders.
//
// A Model is the single source of truth for the grouping run: it is turned
// into the working set of assets and the bundle library before anything
// else happens. Concrete loaders live in separate packages.
package config
