// Package buildinfo carries the build stamp shown in window titles and the startup log.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Version, Commit and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Short returns a compact build identifier for UI/logging. Without ldflags it falls back
// to the module version or VCS revision the toolchain embedded.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	if v := embedded(); v != "" {
		return v
	}
	return "dev"
}

func embedded() string {
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var rev string
	dirty := false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

// Title formats a window title carrying the build identifier.
func Title(name string) string {
	return fmt.Sprintf("%s (%s)", name, Short())
}
