package context

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// version is set at build time via -ldflags "-X ...".
var version = ""

// VersionInfo describes the running build.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
	Go       string
}

// String returns the version in "<semantic> (<commit>[-dirty], <go version>)"
// format, omitting the parts that are unknown.
func (v *VersionInfo) String() string {
	var meta []string
	if v.Commit != "" {
		commit := v.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if v.Dirty {
			commit += "-dirty"
		}
		meta = append(meta, commit)
	}
	if v.Go != "" {
		meta = append(meta, v.Go)
	}

	if len(meta) == 0 {
		return v.Semantic
	}

	return fmt.Sprintf("%s (%s)", v.Semantic, strings.Join(meta, ", "))
}

// GetVersion returns the version of the running build, read from the build
// information embedded by the Go toolchain.
func GetVersion() (*VersionInfo, error) {
	vi := &VersionInfo{Semantic: version}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		if vi.Semantic == "" {
			vi.Semantic = "devel"
		}
		return vi, nil
	}

	vi.Go = bi.GoVersion
	if vi.Semantic == "" {
		vi.Semantic = bi.Main.Version
	}
	if vi.Semantic == "" || vi.Semantic == "(devel)" {
		vi.Semantic = "devel"
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			vi.Commit = s.Value
		case "vcs.modified":
			vi.Dirty = s.Value == "true"
		}
	}

	return vi, nil
}
