package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version information, set at build time via ldflags
	Version   = "dev"     // Version string (e.g., "v0.2.0")
	GitCommit = "unknown" // Git commit hash
)

// GetVersion returns the version string for the application
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	// Fallback: try to get version from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	return "dev"
}

// GetFullVersion returns the version with the commit hash when known
func GetFullVersion() string {
	if GitCommit != "unknown" {
		return fmt.Sprintf("%s (commit: %s)", GetVersion(), GitCommit)
	}
	return GetVersion()
}
