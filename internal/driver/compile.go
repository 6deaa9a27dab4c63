// Package driver wires the stages together.
//
// Compile runs a unit through parse, check, lower and eval in one process.
// RunStage runs a single stage over message frames, the way the CLI stage
// commands do. Batch runs many units in parallel.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"langlang/internal/ast"
	"langlang/internal/check"
	"langlang/internal/diag"
	"langlang/internal/eval"
	"langlang/internal/fomega"
	"langlang/internal/lower"
	"langlang/internal/message"
	"langlang/internal/observ"
	"langlang/internal/opt"
	"langlang/internal/parser"
	"langlang/internal/pipeline"
	"langlang/internal/source"
	"langlang/internal/trace"
	"langlang/internal/typedast"
)

// Options configures a compilation.
type Options struct {
	Config pipeline.Config
	Limits pipeline.Limits
	// Allow is the sandbox allow list; nil means the default list.
	Allow pipeline.Allowlist
	// Host performs effects during evaluation; nil means the process environment.
	Host eval.Host
	// Tracer receives stage spans; nil disables tracing.
	Tracer trace.Tracer
	// RoundTrip sends every stage boundary through its message encoding.
	RoundTrip bool
	// Timings records per-stage durations into Result.Timing.
	Timings bool
	// StopAfter ends the pipeline after the given stage; "" runs everything.
	StopAfter      Stage
	MaxDiagnostics int
	// Progress receives a working event as each stage starts.
	Progress ProgressSink
}

// Result holds whatever the pipeline produced before it stopped.
type Result struct {
	File  string
	Files *source.FileSet
	AST   *ast.Unit
	Typed *typedast.Unit
	Core  *fomega.Unit
	// Value is set only when HasValue is true.
	Value    eval.Value
	HasValue bool
	Steps    int
	Opt      opt.Result
	Bag      *diag.Bag
	Timing   *observ.Report
	// Err is the error that stopped the unit; it is also recorded in Bag.
	Err error
	// Failed names the stage that produced Err.
	Failed Stage

	spans typedast.SpanIndex
}

// OK reports whether the unit ran to completion without errors.
func (r *Result) OK() bool { return r != nil && r.Err == nil && !r.Bag.HasErrors() }

// Span resolves a typed node id to its source location.
func (r *Result) Span(id uint32) source.Span {
	return r.spans.Lookup(typedast.NodeID(id))
}

// CompileFile reads path and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Compile(ctx, path, src, opts)
}

// Compile runs src through the pipeline. Stage failures are reported in the
// result; the returned error is only for cancellation.
func Compile(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	ctx = trace.WithUnit(trace.WithTracer(ctx, tr), name)
	unitSpan, ctx := trace.StartSpan(ctx, trace.ScopeUnit, "unit")
	unitSpan.WithExtra("file", name).WithExtra("config", opts.Config.String())

	res := &Result{File: name, Files: source.NewFileSet(), Bag: diag.NewBag(opts.MaxDiagnostics)}
	var timer *observ.Timer
	if opts.Timings {
		timer = observ.NewTimer(name)
	}
	err := compile(ctx, res, src, opts, timer)
	if timer != nil {
		rep := timer.Report()
		res.Timing = &rep
	}
	res.Bag.Sort()
	switch {
	case err != nil:
		unitSpan.End("cancelled")
	case res.Err != nil:
		unitSpan.End("failed at " + string(res.Failed))
	default:
		unitSpan.End("ok")
	}
	return res, err
}

func compile(ctx context.Context, res *Result, src []byte, opts Options, timer *observ.Timer) error {
	stop := opts.StopAfter.index()
	tr := trace.FromContext(ctx)

	// run executes one stage inside a span and a timer phase.
	run := func(st Stage, fn func(parent uint64) (string, error)) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		emit(opts.Progress, Event{Unit: res.File, Stage: st, Status: StatusWorking})
		sp, _ := trace.StartSpan(ctx, trace.ScopeStage, string(st))
		idx := timer.Begin(string(st))
		note, err := fn(sp.ID())
		if err != nil {
			res.fail(st, err)
			note = "failed"
			if st == StageLower {
				var iv *lower.InvariantViolation
				if errors.As(err, &iv) {
					trace.Error(tr, trace.ScopeStage, "lower", iv.Error(), sp.ID())
					trace.Point(tr, trace.ScopeStage, "lower-stack", iv.Stack, sp.ID())
				}
			}
		}
		timer.End(idx, note)
		sp.End(note)
		return nil
	}

	// parse
	if err := run(StageParse, func(uint64) (string, error) {
		id := res.Files.AddVirtual(res.File, src)
		bag := diag.NewBag(opts.MaxDiagnostics)
		u := parser.ParseFile(res.Files.Get(id), parser.Options{Reporter: diag.BagReporter{Bag: bag, Stage: diag.StageParse}})
		res.Bag.Merge(bag)
		if u == nil {
			return "", errSyntax
		}
		if opts.RoundTrip {
			var buf bytes.Buffer
			if err := message.WriteAST(&buf, u); err != nil {
				return "", err
			}
			back, err := message.ReadAST(&buf)
			if err != nil {
				return "", err
			}
			u = back
		}
		res.AST = u
		return fmt.Sprintf("nodes=%d", ast.Count(u.Root)), nil
	}); err != nil || res.Err != nil || stop <= 0 {
		return err
	}

	// check
	if err := run(StageCheck, func(uint64) (string, error) {
		tu, err := check.Check(res.AST, opts.Config, check.Options{Limits: opts.Limits, Allow: opts.Allow})
		if err != nil {
			return "", err
		}
		if opts.RoundTrip {
			var buf bytes.Buffer
			if err := message.WriteTypedAST(&buf, tu); err != nil {
				return "", err
			}
			if tu, err = message.ReadTypedAST(&buf); err != nil {
				return "", err
			}
		}
		res.Typed = tu
		res.spans = typedast.IndexSpans(tu.Root)
		return "type " + typedast.SchemeString(tu.Scheme), nil
	}); err != nil || res.Err != nil || stop <= 1 {
		return err
	}

	// lower
	if err := run(StageLower, func(uint64) (string, error) {
		fu, err := lower.Lower(res.Typed)
		if err != nil {
			return "", err
		}
		if opts.RoundTrip {
			var buf bytes.Buffer
			if err := message.WriteFOmega(&buf, fu); err != nil {
				return "", err
			}
			if fu, err = message.ReadFOmega(&buf); err != nil {
				return "", err
			}
		}
		res.Core = fu
		return fmt.Sprintf("terms=%d", fomega.Size(fu.Term)), nil
	}); err != nil || res.Err != nil || stop <= 2 {
		return err
	}

	// eval
	return run(StageEval, func(parent uint64) (string, error) {
		out, err := eval.Run(res.Core, opts.Config.Optimization, eval.Options{
			Limits: opts.Limits,
			Allow:  opts.Allow,
			Host:   opts.Host,
			Tracer: tr,
			Span:   parent,
		})
		res.Steps, res.Opt = out.Steps, out.Opt
		if err != nil {
			return "", err
		}
		if opts.RoundTrip && out.Value.Transportable() {
			var buf bytes.Buffer
			if err := message.WriteValue(&buf, out.Value); err != nil {
				return "", err
			}
			if out.Value, err = message.ReadValue(&buf); err != nil {
				return "", err
			}
		}
		res.Value, res.HasValue = out.Value, true
		return fmt.Sprintf("steps=%d %s", out.Steps, out.Opt.Stats), nil
	})
}

// errSyntax marks a parse failure; its diagnostics are already in the bag.
var errSyntax = errors.New("syntax errors")

var stageDiag = map[Stage]diag.Stage{
	StageParse: diag.StageParse,
	StageCheck: diag.StageCheck,
	StageLower: diag.StageLower,
	StageEval:  diag.StageEval,
}

func (r *Result) fail(st Stage, err error) {
	r.Err, r.Failed = err, st
	if errors.Is(err, errSyntax) {
		return
	}
	d := diag.FromError(stageDiag[st], err)
	if d.Primary.IsZero() && d.NodeID != 0 {
		d.Primary = r.Span(d.NodeID)
	}
	r.Bag.Add(d)
}
