package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Tool name, used for logger grouping and path construction.
const Name = "pyship"

// String used when a build-time variable was not provided.
const defaultUndefined = "(undefined)"

// String returned for builds without release metadata.
const defaultDevBuild = "(dev)"

var (
	version   = "" // Release version (e.g., "0.4.1")
	channel   = "" // Release channel (e.g., "stable", "edge")
	gitCommit = "" // Git commit hash the binary was built from

	rawQuiet   = "false" // Default quiet mode
	rawDebug   = "false" // Default debug mode
	rawVerbose = "false" // Default verbose logging
)

// Returns the release version with any "v" prefix stripped.
//
// Returns "(undefined)" when the binary was built without a version.
func Version() string {
	v := strings.TrimSpace(version)
	if v == "" {
		return defaultUndefined
	}
	return strings.TrimPrefix(strings.ToLower(v), "v")
}

// Returns the release channel, lowercased.
func Channel() string {
	c := strings.TrimSpace(channel)
	if c == "" {
		return defaultUndefined
	}
	return strings.ToLower(c)
}

// Returns the git commit hash the binary was built from.
func GitCommit() string {
	c := strings.TrimSpace(gitCommit)
	if c == "" {
		return defaultUndefined
	}
	return c
}

// Returns true if the binary was built without release metadata.
//
// Release builds set version, channel, and commit via linker flags; a dev
// build (go build with no ldflags) leaves all three empty.
func IsDevBuild() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(channel) == "" ||
		strings.TrimSpace(gitCommit) == ""
}

// Returns a human-readable version string.
//
// Dev builds report "(dev)". Release builds report
// "<version> <commit> [<channel>/<arch>]", with the channel omitted for
// stable releases.
func VersionString() string {
	if IsDevBuild() {
		return defaultDevBuild
	}

	tag := runtime.GOARCH
	if c := Channel(); c != "stable" {
		tag = c + "/" + tag
	}

	return fmt.Sprintf("%s %s [%s]", Version(), GitCommit(), tag)
}
