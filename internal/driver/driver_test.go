package driver

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"langlang/internal/diag"
	"langlang/internal/eval"
	"langlang/internal/message"
	"langlang/internal/pipeline"
	"langlang/internal/trace"
	"langlang/internal/wire"
)

func optsFor(ts pipeline.TypeSystem) Options {
	return Options{Config: pipeline.Default().WithTypeSystem(ts), Host: eval.NewMemHost()}
}

func compileSrc(t *testing.T, opts Options, src string) *Result {
	t.Helper()
	res, err := Compile(context.Background(), "t.ll", []byte(src), opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return res
}

func firstCode(r *Result) diag.Code {
	if r.Bag.Len() == 0 {
		return diag.UnknownCode
	}
	return r.Bag.Items()[0].Code
}

func TestCompileRuns(t *testing.T) {
	for _, roundTrip := range []bool{false, true} {
		opts := optsFor(pipeline.Inferred)
		opts.RoundTrip = roundTrip
		opts.Timings = true
		res := compileSrc(t, opts, `let id = fun x -> x in id 5`)
		if !res.OK() || !res.HasValue || res.Value.Int != 5 {
			t.Fatalf("roundTrip=%v: value %s, err %v", roundTrip, res.Value, res.Err)
		}
		if res.AST == nil || res.Typed == nil || res.Core == nil {
			t.Fatal("intermediate units missing")
		}
		if res.Timing == nil || len(res.Timing.Phases) != 4 {
			t.Fatalf("timing = %+v", res.Timing)
		}
		for i, st := range Stages {
			if res.Timing.Phases[i].Name != string(st) {
				t.Errorf("phase %d = %s", i, res.Timing.Phases[i].Name)
			}
		}
	}
}

func TestCompileFailures(t *testing.T) {
	cases := []struct {
		name   string
		ts     pipeline.TypeSystem
		src    string
		failed Stage
		code   diag.Code
	}{
		{"syntax", pipeline.Inferred, `let x = in x`, StageParse, diag.SynExpectExpression},
		{"conflict", pipeline.Inferred, `1 + "a"`, StageCheck, diag.TypeUnificationConflict},
		{"unresolved", pipeline.Inferred, `y`, StageCheck, diag.TypeUnresolvedReference},
		{"dynamic", pipeline.Dynamic, `let x = 1 in x + "a"`, StageEval, diag.EvalTypeConfusion},
		{"division", pipeline.Inferred, `10 / 0`, StageEval, diag.EvalDivideByZero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := compileSrc(t, optsFor(tc.ts), tc.src)
			if res.OK() || res.Failed != tc.failed {
				t.Fatalf("failed at %q, err %v", res.Failed, res.Err)
			}
			if got := firstCode(res); got != tc.code {
				t.Fatalf("code = %s, want %s (%v)", got.ID(), tc.code.ID(), res.Bag.Items())
			}
			for _, d := range res.Bag.Items() {
				if d.Stage != stageDiag[tc.failed] {
					t.Fatalf("%s reported by stage %s", d.Code.ID(), d.Stage)
				}
			}
			if res.HasValue {
				t.Fatal("failed unit has a value")
			}
		})
	}
}

func TestEvalErrorHasSpan(t *testing.T) {
	res := compileSrc(t, optsFor(pipeline.Dynamic), `let x = 1 in x + "a"`)
	d := res.Bag.Items()[0]
	if d.NodeID == 0 || d.Primary.IsZero() || d.Primary.File != "t.ll" || d.Primary.StartLine != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}
}

func TestStopAfter(t *testing.T) {
	opts := optsFor(pipeline.Inferred)
	opts.StopAfter = StageCheck
	res := compileSrc(t, opts, `fun x -> x`)
	if !res.OK() || res.Typed == nil || res.Core != nil || res.HasValue {
		t.Fatalf("result = %+v", res)
	}
}

func TestCompileTraces(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	opts := optsFor(pipeline.Inferred)
	opts.Tracer = ring
	compileSrc(t, opts, `let u = @print("x") in 1`)

	var stages []string
	var effects int
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin && ev.Scope == trace.ScopeStage {
			stages = append(stages, ev.Name)
		}
		if ev.Kind == trace.KindPoint && ev.Name == "effect" {
			effects++
		}
	}
	if !slices.Equal(stages, []string{"parse", "check", "lower", "eval"}) {
		t.Fatalf("stage spans = %v", stages)
	}
	if effects != 1 {
		t.Fatalf("effect points = %d", effects)
	}
}

func TestCompileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Compile(ctx, "c.ll", []byte("1"), optsFor(pipeline.Inferred)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestRunStagePipe(t *testing.T) {
	ctx := context.Background()
	opts := optsFor(pipeline.Gradual)
	in := bytes.NewBufferString(`let f = fun (x : Int) -> x * 2 in f 21`)
	for _, st := range Stages {
		var out bytes.Buffer
		if err := RunStage(ctx, st, "p.ll", in, &out, opts); err != nil {
			t.Fatalf("%s: %v", st, err)
		}
		in = &out
	}
	v, err := message.ReadValue(in)
	if err != nil || v.Unbox().Int != 42 {
		t.Fatalf("value %s, err %v", v, err)
	}
}

func TestRunStageForwardsDiagnostics(t *testing.T) {
	ctx := context.Background()
	opts := optsFor(pipeline.Inferred)
	var parsed bytes.Buffer
	err := RunStage(ctx, StageParse, "bad.ll", bytes.NewBufferString(`(1 +`), &parsed, opts)
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageParse || len(se.Diagnostics) == 0 {
		t.Fatalf("parse err = %v", err)
	}

	var checked bytes.Buffer
	err = RunStage(ctx, StageCheck, "bad.ll", &parsed, &checked, opts)
	if !errors.As(err, &se) || se.Stage != StageCheck {
		t.Fatalf("check err = %v", err)
	}
	m, rerr := message.Read(&checked)
	if rerr != nil || m.Kind != wire.KindDiagnostic || m.Diagnostics[0].Stage != diag.StageParse {
		t.Fatalf("forwarded = %+v, %v", m, rerr)
	}
}

func TestRunStageWrongKind(t *testing.T) {
	ctx := context.Background()
	opts := optsFor(pipeline.Inferred)
	var ast bytes.Buffer
	if err := RunStage(ctx, StageParse, "k.ll", bytes.NewBufferString(`1`), &ast, opts); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	err := RunStage(ctx, StageLower, "k.ll", &ast, &out, opts)
	var se *StageError
	if !errors.As(err, &se) || se.Diagnostics[0].Code != diag.MsgUnexpectedKind {
		t.Fatalf("err = %v", err)
	}
	if ds, err := message.ReadDiagnostics(&out); err != nil || len(ds) != 1 {
		t.Fatalf("diagnostic frame: %v %v", ds, err)
	}

	err = RunStage(ctx, StageEval, "k.ll", &bytes.Buffer{}, &out, opts)
	if !errors.As(err, &se) || se.Diagnostics[0].Code != diag.MsgTruncated {
		t.Fatalf("empty input: %v", err)
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(unit string, status Status) int {
	n := 0
	for _, ev := range r.events {
		if ev.Unit == unit && ev.Status == status {
			n++
		}
	}
	return n
}

func TestBatch(t *testing.T) {
	inputs := []Input{
		{Name: "a.ll", Source: []byte(`1 + 1`)},
		{Name: "b.ll", Source: []byte(`1 + "a"`)},
		{Name: "c.ll", Source: []byte(`let f = fun x -> x in f "c"`)},
		{Name: filepath.Join(t.TempDir(), "missing.ll")},
		{Name: "e.ll", Source: []byte(`[1, 2, 3]`)},
	}
	rec := &recorder{}
	opts := BatchOptions{Options: optsFor(pipeline.Inferred), Jobs: 2}
	opts.Progress = rec
	results, err := Batch(context.Background(), inputs, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.File != inputs[i].Name {
			t.Fatalf("result %d is %s", i, r.File)
		}
	}
	want := []bool{true, false, true, false, true}
	for i, r := range results {
		if r.OK() != want[i] {
			t.Errorf("%s: ok=%v err=%v", r.File, r.OK(), r.Err)
		}
	}
	if results[0].Value.Int != 2 || results[2].Value.Str != "c" {
		t.Errorf("values: %s, %s", results[0].Value, results[2].Value)
	}
	if got := firstCode(results[3]); got != diag.IOLoadFileError {
		t.Errorf("missing file code = %s", got.ID())
	}

	for _, in := range inputs {
		if rec.count(in.Name, StatusQueued) != 1 {
			t.Errorf("%s: queued events = %d", in.Name, rec.count(in.Name, StatusQueued))
		}
	}
	if rec.count("a.ll", StatusDone) != 1 || rec.count("b.ll", StatusError) != 1 || rec.count("a.ll", StatusWorking) != 4 {
		t.Errorf("events = %+v", rec.events)
	}
	if last := rec.events[len(rec.events)-1]; last.Unit != "" || last.Status != StatusDone {
		t.Errorf("last event = %+v", last)
	}
}

func TestBatchTraceUnits(t *testing.T) {
	ring := trace.NewRingTracer(512, trace.LevelDetail)
	opts := BatchOptions{Options: optsFor(pipeline.Inferred), Jobs: 2}
	opts.Tracer = ring
	inputs := []Input{{Name: "a.ll", Source: []byte(`1`)}, {Name: "b.ll", Source: []byte(`"b"`)}}
	if _, err := Batch(context.Background(), inputs, opts); err != nil {
		t.Fatal(err)
	}

	var batchID uint64
	units := map[string]int{}
	for _, ev := range ring.Snapshot() {
		if ev.Kind != trace.KindSpanBegin {
			continue
		}
		switch ev.Scope {
		case trace.ScopeDriver:
			batchID = ev.SpanID
		case trace.ScopeUnit:
			if ev.Name == "unit" && ev.ParentID != batchID {
				t.Errorf("unit span of %s not under the batch span", ev.Unit)
			}
		case trace.ScopeStage:
			units[ev.Unit]++
		}
	}
	if batchID == 0 || units["a.ll"] != 4 || units["b.ll"] != 4 || len(units) != 2 {
		t.Fatalf("batch span %d, stage spans per unit %v", batchID, units)
	}
}

func TestBatchEmpty(t *testing.T) {
	results, err := Batch(context.Background(), nil, BatchOptions{Options: optsFor(pipeline.Inferred)})
	if err != nil || len(results) != 0 {
		t.Fatalf("%v %v", results, err)
	}
}
