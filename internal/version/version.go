// Package version holds build metadata injected via ldflags.
package version

// Set at build time:
//
//	-ldflags "-X .../internal/version.Version=v1.2.0 -X .../internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
