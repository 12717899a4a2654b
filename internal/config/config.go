// Package config loads and merges LMAP control documents from the
// colon-separated config search path into one model.Model, spec.md §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"

	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/serialize"
)

// DefaultSearchPath resolves the "+" placeholder path segment (spec.md
// §6) to a portable default rooted under the user's XDG config home,
// instead of a hardcoded /etc/lmapd.
func DefaultSearchPath() string {
	return filepath.Join(xdg.ConfigHome, "lmapd")
}

// DefaultRunDir resolves the daemon's default run directory (PID file,
// unix socket, state snapshot) under XDG_RUNTIME_DIR.
func DefaultRunDir() string {
	return filepath.Join(xdg.RuntimeDir, "lmapd")
}

// Options configures Load.
type Options struct {
	SearchPath string // colon-separated, "+" expands to DefaultSearchPath()
	Engine     serialize.Engine
	EnvFile    string // optional .env path loaded before merge, ambient convenience
}

// Load walks every directory in SearchPath, globs it for files matching
// the active engine's extension, parses each as a config-scope document,
// and merges them in path order into one model.Model — spec.md §6:
// "content from later files merges into the model".
func Load(opts Options) (*model.Model, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile) // missing .env is not an error
	}

	ext := extensionFor(opts.Engine)
	m := model.New()

	for _, dir := range splitSearchPath(opts.SearchPath) {
		matches, err := doublestar.Glob(os.DirFS(dir), "*"+ext)
		if err != nil {
			return nil, fmt.Errorf("config: glob %s: %w", dir, err)
		}
		for _, name := range matches {
			path := filepath.Join(dir, name)
			if err := mergeFile(m, path, opts.Engine); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func mergeFile(m *model.Model, path string, engine serialize.Engine) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	next := model.New()
	if err := engine.ParseConfig(f, next); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return mergeInto(m, next)
}

// mergeInto appends next's list-valued collections onto m (mergo's
// WithAppendSlice) while scalar fields — here, Agent and Capability — are
// last-writer-wins, matching spec.md §6's merge rule.
func mergeInto(m *model.Model, next *model.Model) error {
	if next.Agent != nil {
		m.Agent = next.Agent
	}
	if next.Capability != nil {
		m.Capability = next.Capability
	}
	return mergo.Merge(m, next, mergo.WithAppendSlice)
}

func extensionFor(engine serialize.Engine) string {
	if engine != nil && engine.Kind() == "xml" {
		return ".xml"
	}
	return ".json"
}

func splitSearchPath(path string) []string {
	var dirs []string
	for _, seg := range strings.Split(path, ":") {
		if seg == "" {
			continue
		}
		if seg == "+" {
			dirs = append(dirs, DefaultSearchPath())
			continue
		}
		dirs = append(dirs, seg)
	}
	return dirs
}
