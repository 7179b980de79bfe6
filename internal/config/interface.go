package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads every manifest found under paths and merges them into one
	// model.
	Load(ctx context.Context, paths ...string) (*Model, error)
	// Parse reads one manifest held in memory. filename is used for
	// diagnostics only.
	Parse(ctx context.Context, src []byte, filename string) (*Model, error)
	// Extensions lists the file extensions the loader understands, with the
	// leading dot.
	Extensions() []string
}
