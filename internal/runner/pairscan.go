package runner

import (
	"os"
	"path/filepath"
)

// hasCompletePair reports whether dir contains at least one regular file
// named "*.meta" whose "*.data" sibling also exists — the pipelined
// execution mode's start condition for the next action, spec.md §4.2.
func hasCompletePair(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	const suffix = ".meta"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) == 0 || name[0] == '_' || name[0] == '.' {
			continue
		}
		if len(name) <= len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		base := name[:len(name)-len(suffix)]
		if info, err := os.Stat(filepath.Join(dir, base+".data")); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}
