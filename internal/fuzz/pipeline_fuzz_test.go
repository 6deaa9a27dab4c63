package fuzztests

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"langlang/internal/ast"
	"langlang/internal/check"
	"langlang/internal/eval"
	"langlang/internal/fomega"
	"langlang/internal/lower"
	"langlang/internal/message"
	"langlang/internal/parser"
	"langlang/internal/pipeline"
)

// stageTimeout bounds one input; exceeding it means a stage does not terminate.
const stageTimeout = 5 * time.Second

var fuzzLimits = pipeline.Limits{NormalizeFuel: 2000, EvalSteps: 20000, EvalDepth: 200}

var typeSystems = []pipeline.TypeSystem{pipeline.Dynamic, pipeline.Inferred, pipeline.Gradual, pipeline.Dependent}

func FuzzPipeline(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input, maxFuzzInput)
		ctx, cancel := context.WithTimeout(context.Background(), stageTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			runPipeline(t, input)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("pipeline did not finish within %v on input %q", stageTimeout, input)
		}
	})
}

func runPipeline(t *testing.T, input []byte) {
	u, bag := parser.ParseSource("fuzz.ll", string(input))
	if u == nil {
		if !bag.HasErrors() {
			t.Errorf("parse failed without diagnostics on %q", input)
		}
		return
	}

	var buf bytes.Buffer
	if err := message.WriteAST(&buf, u); err != nil {
		t.Errorf("encode AST: %v", err)
		return
	}
	back, err := message.ReadAST(&buf)
	if err != nil || !ast.EqualUnit(u, back) {
		t.Errorf("AST round trip on %q: %v", input, err)
		return
	}

	for _, ts := range typeSystems {
		cfg := pipeline.Default().WithTypeSystem(ts)
		tu, err := check.Check(u, cfg, check.Options{Limits: fuzzLimits})
		if err != nil {
			var te *check.TypeError
			if !errors.As(err, &te) {
				t.Errorf("%s: check returned %T: %v", ts, err, err)
			}
			continue
		}
		// проверенный вход обязан понижаться
		fu, err := lower.Lower(tu)
		if err != nil {
			t.Errorf("%s: lowering a checked unit failed on %q: %v", ts, input, err)
			continue
		}
		if err := fomega.Check(fu); err != nil {
			t.Errorf("%s: lowered unit is ill-typed on %q: %v", ts, input, err)
			continue
		}
		_, err = eval.Evaluate(fu, cfg.Optimization, eval.Options{Limits: fuzzLimits, Host: eval.NewMemHost()})
		if err != nil {
			var ee *eval.Error
			if !errors.As(err, &ee) {
				t.Errorf("%s: eval returned %T: %v", ts, err, err)
			}
		}
		compareLevels(t, u, cfg.WithPurity(pipeline.Pure), input)
	}
}

// compareLevels evaluates a unit that checks as Pure at Debug and at
// Aggressive; both must give the same value or fail the same way.
func compareLevels(t *testing.T, u *ast.Unit, cfg pipeline.Config, input []byte) {
	tu, err := check.Check(u, cfg, check.Options{Limits: fuzzLimits})
	if err != nil {
		return
	}
	fu, err := lower.Lower(tu)
	if err != nil {
		t.Errorf("%s pure: lowering failed on %q: %v", cfg.TypeSystem, input, err)
		return
	}
	opts := eval.Options{Limits: fuzzLimits, Host: eval.NewMemHost()}
	dv, derr := eval.Evaluate(fu, pipeline.Debug, opts)
	av, aerr := eval.Evaluate(fu, pipeline.Aggressive, opts)
	var de, ae *eval.Error
	errors.As(derr, &de)
	errors.As(aerr, &ae)
	// rewriting saves steps, so only Debug may run out of budget
	if de != nil && de.Kind == eval.ErrResourceExhausted || ae != nil && ae.Kind == eval.ErrResourceExhausted {
		return
	}
	switch {
	case derr != nil || aerr != nil:
		if de == nil || ae == nil || de.Kind != ae.Kind {
			t.Errorf("%s pure %q: debug %v, aggressive %v", cfg.TypeSystem, input, derr, aerr)
		}
	case !dv.Transportable() || !av.Transportable():
		// closures have no structural equality
	case !eval.Equal(dv, av):
		t.Errorf("%s pure %q: debug %s, aggressive %s", cfg.TypeSystem, input, dv, av)
	}
}
