package driver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"langlang/internal/check"
	"langlang/internal/diag"
	"langlang/internal/eval"
	"langlang/internal/lower"
	"langlang/internal/message"
	"langlang/internal/parser"
	"langlang/internal/source"
	"langlang/internal/trace"
	"langlang/internal/wire"
)

// StageError is returned by RunStage when it wrote diagnostics instead of a
// result. Diagnostics holds exactly what was written.
type StageError struct {
	Stage       Stage
	Diagnostics []diag.Diagnostic
}

func (e *StageError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("%s failed", e.Stage)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, diag.Short(e.Diagnostics[0]))
}

// expects is the frame kind each stage consumes; parse reads source text.
var expects = map[Stage]wire.Kind{
	StageCheck: wire.KindAST,
	StageLower: wire.KindTypedAST,
	StageEval:  wire.KindFOmega,
}

// RunStage reads one input from r, runs st and writes exactly one frame to
// w: the stage result or a diagnostic message. A diagnostic frame on input
// is forwarded unchanged, so stage commands can be piped.
func RunStage(ctx context.Context, st Stage, name string, r io.Reader, w io.Writer, opts Options) error {
	if _, ok := ParseStage(string(st)); !ok {
		return fmt.Errorf("unknown stage %q", st)
	}
	if err := opts.Config.Validate(); err != nil {
		return err
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	sp, ctx := trace.StartSpan(trace.WithUnit(trace.WithTracer(ctx, tr), name), trace.ScopeStage, string(st))
	sp.WithExtra("config", opts.Config.String())

	out, diags, err := runStage(ctx, st, name, r, opts, tr, sp.ID())
	if err != nil {
		sp.End("error")
		return err
	}
	if len(diags) > 0 {
		sp.End("failed")
		if werr := message.WriteDiagnostics(w, diags); werr != nil {
			return werr
		}
		return &StageError{Stage: st, Diagnostics: diags}
	}
	sp.End("ok")
	return message.Write(w, out)
}

func runStage(ctx context.Context, st Stage, name string, r io.Reader, opts Options, tr trace.Tracer, parent uint64) (*message.Message, []diag.Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if st == StageParse {
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, nil, fmt.Errorf("read source: %w", err)
		}
		fs := source.NewFileSet()
		id := fs.AddVirtual(name, src)
		bag := diag.NewBag(opts.MaxDiagnostics)
		u := parser.ParseFile(fs.Get(id), parser.Options{Reporter: diag.BagReporter{Bag: bag, Stage: diag.StageParse}})
		if u == nil {
			bag.Sort()
			return nil, bag.Items(), nil
		}
		return &message.Message{Kind: wire.KindAST, AST: u}, nil, nil
	}

	in, err := message.Read(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = &wire.FormatError{Reason: wire.ReasonTruncated, Schema: "frame", Detail: "empty input", Err: err}
		}
		return nil, []diag.Diagnostic{diag.FromError(diag.StageMessage, err)}, nil
	}
	if in.Kind == wire.KindDiagnostic {
		return nil, in.Diagnostics, nil
	}
	if want := expects[st]; in.Kind != want {
		fe := &wire.FormatError{Reason: wire.ReasonUnexpectedKind, Schema: "frame", Detail: fmt.Sprintf("%s expects a %s message, got %s", st, want, in.Kind)}
		return nil, []diag.Diagnostic{fe.Diagnostic()}, nil
	}

	switch st {
	case StageCheck:
		tu, err := check.Check(in.AST, opts.Config, check.Options{Limits: opts.Limits, Allow: opts.Allow})
		if err != nil {
			return nil, []diag.Diagnostic{diag.FromError(diag.StageCheck, err)}, nil
		}
		return &message.Message{Kind: wire.KindTypedAST, TypedAST: tu}, nil, nil
	case StageLower:
		fu, err := lower.Lower(in.TypedAST)
		if err != nil {
			var iv *lower.InvariantViolation
			if errors.As(err, &iv) {
				trace.Error(tr, trace.ScopeStage, "lower", iv.Error(), parent)
			}
			return nil, []diag.Diagnostic{diag.FromError(diag.StageLower, err)}, nil
		}
		return &message.Message{Kind: wire.KindFOmega, FOmega: fu}, nil, nil
	default:
		v, err := eval.Evaluate(in.FOmega, in.FOmega.Config.Optimization, eval.Options{
			Limits: opts.Limits,
			Allow:  opts.Allow,
			Host:   opts.Host,
			Tracer: tr,
			Span:   parent,
		})
		if err != nil {
			return nil, []diag.Diagnostic{diag.FromError(diag.StageEval, err)}, nil
		}
		if !v.Transportable() {
			d := diag.NewError(diag.EvalInfo, source.Span{}, "result "+v.String()+" is a function and has no value message").WithStage(diag.StageEval)
			return nil, []diag.Diagnostic{d}, nil
		}
		return &message.Message{Kind: wire.KindValue, Value: &v}, nil, nil
	}
}
