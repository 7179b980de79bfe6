package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vk/bundlegrid/internal/ctxlog"
)

// Router is a Loader that hands each manifest to the loader registered for
// its file extension and merges the results in discovery order.
type Router struct {
	loaders map[string]Loader
	exts    []string
}

// NewRouter registers loaders by their extensions. A later loader wins an
// extension claimed twice.
func NewRouter(loaders ...Loader) *Router {
	r := &Router{loaders: make(map[string]Loader)}
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			ext = strings.ToLower(ext)
			if _, ok := r.loaders[ext]; !ok {
				r.exts = append(r.exts, ext)
			}
			r.loaders[ext] = l
		}
	}
	return r
}

func (r *Router) Extensions() []string { return slices.Clone(r.exts) }

// Load discovers manifests under paths and loads them one by one.
func (r *Router) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := FindFiles(paths, r.exts)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	model := NewModel()
	for _, file := range files {
		loader := r.loaders[strings.ToLower(filepath.Ext(file))]
		m, err := loader.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}
	return model, nil
}

// Parse dispatches on the extension of filename.
func (r *Router) Parse(ctx context.Context, src []byte, filename string) (*Model, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	loader, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("no manifest loader for %q (known: %s)", filename, strings.Join(r.exts, ", "))
	}
	return loader.Parse(ctx, src, filename)
}
