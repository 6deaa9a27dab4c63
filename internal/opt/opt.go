// Package opt rewrites F-omega terms before evaluation.
//
// Release keeps every observable behaviour of the program, including its
// runtime errors. Aggressive additionally moves and drops bindings whose
// evaluation can neither fail, diverge nor perform an effect, so for such
// programs a Debug and an Aggressive run produce the same value.
//
// Every rewrite preserves the core type of the term it replaces; the result
// still passes fomega.Check.
package opt

import (
	"fmt"

	"langlang/internal/fomega"
	"langlang/internal/pipeline"
)

// maxRounds bounds the fixpoint iteration. Each round is a full bottom-up
// pass; most programs settle in two or three.
const maxRounds = 32

// Stats counts applied rewrites.
type Stats struct {
	Folded   int
	Branches int
	Casts    int
	DeadLets int
	Beta     int
	Inlined  int
	Rounds   int
}

func (s Stats) Total() int {
	return s.Folded + s.Branches + s.Casts + s.DeadLets + s.Beta + s.Inlined
}

func (s Stats) String() string {
	return fmt.Sprintf("folded=%d branches=%d casts=%d dead=%d beta=%d inlined=%d rounds=%d",
		s.Folded, s.Branches, s.Casts, s.DeadLets, s.Beta, s.Inlined, s.Rounds)
}

func (s *Stats) add(o Stats) {
	s.Folded += o.Folded
	s.Branches += o.Branches
	s.Casts += o.Casts
	s.DeadLets += o.DeadLets
	s.Beta += o.Beta
	s.Inlined += o.Inlined
}

// Result describes what Optimize did to a unit.
type Result struct {
	Requested pipeline.OptimizationLevel
	Applied   pipeline.OptimizationLevel
	// Degraded is set when Aggressive was requested for an Unrestricted unit.
	Degraded bool
	Stats    Stats
}

// Release applies the effect- and error-preserving rewrites.
func Release(t *fomega.Term) (*fomega.Term, Stats) {
	return fixpoint(t, false)
}

// Aggressive applies Release plus beta reduction and binding elimination.
func Aggressive(t *fomega.Term) (*fomega.Term, Stats) {
	return fixpoint(t, true)
}

// Optimize rewrites u at level. Aggressive degrades to Release when the
// unit runs with unrestricted effects. The input unit is not modified.
func Optimize(u *fomega.Unit, level pipeline.OptimizationLevel) (*fomega.Unit, Result) {
	res := Result{Requested: level, Applied: level}
	if level == pipeline.Aggressive && u.Config.Purity == pipeline.Unrestricted {
		res.Applied = pipeline.Release
		res.Degraded = true
	}
	out := *u
	switch res.Applied {
	case pipeline.Release:
		out.Term, res.Stats = Release(u.Term)
	case pipeline.Aggressive:
		out.Term, res.Stats = Aggressive(u.Term)
	}
	return &out, res
}

func fixpoint(t *fomega.Term, aggressive bool) (*fomega.Term, Stats) {
	var total Stats
	for total.Rounds < maxRounds {
		r := &rewriter{aggressive: aggressive}
		t = r.rewrite(t)
		total.Rounds++
		if r.stats.Total() == 0 {
			break
		}
		total.add(r.stats)
	}
	return t, total
}
