package wire

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is written into every payload.
const SchemaVersion = "1.0.0"

// compatible is the range of schema versions this build can read.
var compatible = mustConstraint("^1.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(fmt.Errorf("wire: bad constraint %q: %w", s, err))
	}
	return c
}

// CheckVersion accepts any 1.x.y schema version.
func CheckVersion(v string) error {
	parsed, err := semver.StrictNewVersion(v)
	if err != nil {
		return &FormatError{Reason: ReasonIncompatibleSchema, Schema: "payload", Detail: fmt.Sprintf("bad schema version %q", v), Err: err}
	}
	if !compatible.Check(parsed) {
		return &FormatError{Reason: ReasonIncompatibleSchema, Schema: "payload", Detail: fmt.Sprintf("schema version %s, reader supports %s", parsed, compatible)}
	}
	return nil
}
