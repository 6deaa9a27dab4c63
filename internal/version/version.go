package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
)

// Version information for the langlang CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Banner renders Version with colored major, minor and patch parts.
// A version that is not semver is returned as is.
func Banner() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	out := versionMajorColor.Sprint(sv.Major()) + "." +
		versionMinorColor.Sprint(sv.Minor()) + "." +
		versionPatchColor.Sprint(sv.Patch())
	if pre := sv.Prerelease(); pre != "" {
		out += "-" + pre
	}
	if meta := sv.Metadata(); meta != "" {
		out += "+" + meta
	}
	return out
}

// Semver parses Version; the CLI reports it next to the message schema version.
func Semver() (*semver.Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(Version))
	if err != nil {
		return nil, fmt.Errorf("version %q: %w", Version, err)
	}
	return sv, nil
}
