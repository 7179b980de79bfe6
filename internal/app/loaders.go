package app

import (
	"github.com/vk/bundlegrid/internal/config"
	"github.com/vk/bundlegrid/internal/hclconfig"
	"github.com/vk/bundlegrid/internal/yamlconfig"
)

// coreLoaders is the definitive list of manifest formats compiled into the
// bundlegrid binary.
func coreLoaders() []config.Loader {
	return []config.Loader{
		hclconfig.NewLoader(),
		yamlconfig.NewLoader(),
	}
}

// DefaultLoader routes manifests to the core loaders by file extension.
func DefaultLoader() config.Loader {
	return config.NewRouter(coreLoaders()...)
}
