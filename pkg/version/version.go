// Package version holds the build-time identity of the fnc binary: values
// with no meaningful default, set only by linker flags at build time
// (`-ldflags "-X ...=..."`), the same wiring the teacher uses for its own
// binary's version/commit/date trio.
package version

var (
	// Version is the release tag this binary was built from.
	Version = "dev"
	// Commit is the git commit hash this binary was built from.
	Commit = "none"
	// Date is the build timestamp, in whatever format the build pipeline
	// passes in (typically RFC3339).
	Date = "unknown"
)
