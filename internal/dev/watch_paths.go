package dev

import (
	"path/filepath"

	"github.com/vango-dev/weft/internal/config"
)

// CollectWatchPaths returns the paths whose changes affect rendered pages:
// the pages directory and the config file.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := []string{cfg.PagesPath(), cfg.Path()}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}
