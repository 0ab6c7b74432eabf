// Package buildinfo carries version metadata injected at build time via
// -ldflags.
package buildinfo

var (
	// Version is the release version, e.g. "v0.3.0".
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
