package build

import (
	"fmt"
	"strings"
)

// Version, AppName, and Slug are settable via -ldflags at build time,
// adapted directly from the teacher's internal/build/build.go.
var (
	Version = "dev"
	AppName = "lmapd"
	Slug    = ""
)

func init() {
	if Slug == "" {
		Slug = strings.ToLower(AppName)
	}
}

// LMAP protocol/implementation version numbers, carried over from
// original_source's LMAP_VERSION_{MAJOR,MINOR,PATCH}.
const (
	Major = 2
	Minor = 0
	Patch = 0
)

// Banner returns the "<AppName> version <Version>" string printed by
// lmapctl's version subcommand and the daemon's -v flag,
// original_source/src/lmapd.c's `-v` case.
func Banner() string {
	return fmt.Sprintf("%s version %s", AppName, Version)
}

// SemVer returns the LMAP protocol semantic version string, the Go
// expression of the original's three LMAP_VERSION_* macros.
func SemVer() string {
	return fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
}
