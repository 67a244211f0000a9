// Package version carries build metadata injected with -ldflags.
package version

var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = ""
	// BuildDate is the build timestamp.
	BuildDate = ""
)
