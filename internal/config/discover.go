package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FindFiles walks all given paths and returns every file whose extension is
// in exts, each path once, in walk order. Paths that do not exist are
// skipped.
func FindFiles(paths []string, exts []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if !slices.Contains(exts, strings.ToLower(filepath.Ext(p))) {
			return
		}
		if _, wasSeen := seen[p]; wasSeen {
			return
		}
		seen[p] = struct{}{}
		allFiles = append(allFiles, p)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return allFiles, nil
}
