package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if _, err := Semver(); err != nil {
		t.Errorf("default version is not semver: %v", err)
	}
}

func TestBanner(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = true

	cases := []struct {
		in   string
		want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"v2.0.0-alpha+build.7", "2.0.0-alpha+build.7"},
		{"not-a-version", "not-a-version"},
		{"  ", "dev"},
	}
	for _, tc := range cases {
		Version = tc.in
		if got := Banner(); got != tc.want {
			t.Errorf("Banner(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate }()

	// имитация -ldflags
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	sv, err := Semver()
	if err != nil {
		t.Fatal(err)
	}
	if sv.Major() != 1 || sv.Minor() != 2 || sv.Patch() != 3 {
		t.Errorf("Semver() = %s", sv)
	}
	Version = "garbage"
	if _, err := Semver(); err == nil {
		t.Error("expected an error for a non-semver version")
	}
}
