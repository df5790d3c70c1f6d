// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String returns the version with its commit and build time, as printed by
// the command line tools.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

// Title returns the window title for the named file, with the modified
// marker when the regions have unsaved changes.
func Title(file string, modified bool) string {
	title := "Region Mapper " + Version
	if file != "" {
		title = file + " - " + title
	}
	if modified {
		title = "*" + title
	}
	return title
}
