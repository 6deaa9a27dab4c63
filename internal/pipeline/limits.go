package pipeline

import "slices"

const (
	DefaultNormalizeFuel = 10_000
	DefaultEvalSteps     = 1_000_000
	DefaultEvalDepth     = 10_000
)

// DefaultSandboxAllow lists the effectful primitives permitted under Sandbox.
var DefaultSandboxAllow = []string{"print", "env", "now"}

// Limits fences the two places where unbounded computation is possible.
type Limits struct {
	NormalizeFuel int
	EvalSteps     int
	EvalDepth     int
}

func DefaultLimits() Limits {
	return Limits{
		NormalizeFuel: DefaultNormalizeFuel,
		EvalSteps:     DefaultEvalSteps,
		EvalDepth:     DefaultEvalDepth,
	}
}

// Normalized replaces non-positive fields with defaults.
func (l Limits) Normalized() Limits {
	d := DefaultLimits()
	if l.NormalizeFuel <= 0 {
		l.NormalizeFuel = d.NormalizeFuel
	}
	if l.EvalSteps <= 0 {
		l.EvalSteps = d.EvalSteps
	}
	if l.EvalDepth <= 0 {
		l.EvalDepth = d.EvalDepth
	}
	return l
}

// Allowlist is a sandbox whitelist of effectful primitive names.
type Allowlist []string

func DefaultAllowlist() Allowlist {
	return slices.Clone(DefaultSandboxAllow)
}

func (a Allowlist) Allows(name string) bool {
	return slices.Contains(a, name)
}
