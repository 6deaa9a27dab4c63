package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	Begin(ring, ScopeStage, "check", 0).End("")
	Begin(ring, ScopeUnit, "unit:a.ll", 0).End("")
	Point(ring, ScopeNode, "step", "", 0)
	Error(ring, ScopeStage, "lower", "invariant violated", 0)

	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Kind.String()+":"+ev.Name)
	}
	got := strings.Join(names, " ")
	if got != "begin:check end:check error:lower" {
		t.Fatalf("events = %s", got)
	}

	errOnly := NewRingTracer(4, LevelError)
	Begin(errOnly, ScopeDriver, "run", 0).End("")
	Error(errOnly, ScopeStage, "lower", "", 0)
	if evs := errOnly.Snapshot(); len(evs) != 1 || evs[0].Kind != KindError {
		t.Fatalf("error level recorded %v", evs)
	}
}

func TestRingWraps(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, n := range []string{"a", "b", "c"} {
		Point(ring, ScopeNode, n, "", 0)
	}
	evs := ring.Snapshot()
	if len(evs) != 2 || evs[0].Name != "b" || evs[1].Name != "c" {
		t.Fatalf("snapshot = %v", evs)
	}
	if ring.Dropped() != 1 {
		t.Fatalf("dropped = %d", ring.Dropped())
	}
}

func TestStreamText(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDetail, FormatAuto)
	sp := Begin(st, ScopeStage, "eval", 0)
	sp.WithExtra("steps", "12").WithExtra("level", "release").End("ok")
	out := buf.String()
	if !strings.Contains(out, "→ eval") || !strings.Contains(out, "← eval (ok) {level=release, steps=12}") {
		t.Fatalf("text trace:\n%s", out)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Error(st, ScopeStage, "lower", "bad node", 0)
	if !strings.Contains(buf.String(), `"kind":"error"`) || !strings.Contains(buf.String(), `"detail":"bad node"`) {
		t.Fatalf("ndjson = %s", buf.String())
	}
}

func TestContextSpans(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	outer, ctx := StartSpan(ctx, ScopeDriver, "run")
	inner, _ := StartSpan(ctx, ScopeStage, "parse")
	inner.End("")
	outer.End("")
	evs := ring.Snapshot()
	if len(evs) != 4 || evs[1].ParentID != outer.ID() {
		t.Fatalf("parent not propagated: %+v", evs)
	}

	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer should be Nop")
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("unknown level accepted")
	}
}

func TestUnitPropagation(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithUnit(WithTracer(context.Background(), ring), "a.ll")
	unit, ctx := StartSpan(ctx, ScopeUnit, "unit")
	stage, _ := StartSpan(ctx, ScopeStage, "check")
	stage.End("ok")
	unit.End("ok")
	for _, ev := range ring.Snapshot() {
		if ev.Unit != "a.ll" {
			t.Fatalf("%s %s has unit %q", ev.Kind, ev.Name, ev.Unit)
		}
	}
	if UnitOf(ctx) != "a.ll" || CurrentSpan(ctx).SpanID != unit.ID() {
		t.Fatalf("context = %+v", CurrentSpan(ctx))
	}
	// WithTracer keeps the span and the unit
	if sc := CurrentSpan(WithTracer(ctx, Nop)); sc.Unit != "a.ll" || sc.SpanID != unit.ID() {
		t.Fatalf("span lost: %+v", sc)
	}

	var buf bytes.Buffer
	Begin(NewStreamTracer(&buf, LevelPhase, FormatText), ScopeStage, "eval", 0).End("")
	stamped := FormatEvent(&Event{Kind: KindSpanEnd, Scope: ScopeStage, Name: "eval", Unit: "b.ll"}, FormatText)
	if !strings.Contains(string(stamped), "← eval [b.ll]") || strings.Contains(buf.String(), "[") {
		t.Fatalf("text = %q / %q", stamped, buf.String())
	}
}

func TestMultiTracer(t *testing.T) {
	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelPhase, FormatText)
	ring := NewRingTracer(8, LevelDebug)
	m := NewMultiTracer(stream, nil, Nop, ring)
	if m.Level() != LevelDebug || len(m.tracers) != 2 {
		t.Fatalf("level %s with %d tracers", m.Level(), len(m.tracers))
	}
	Point(m, ScopeNode, "effect", "@print", 0)
	Begin(m, ScopeStage, "parse", 0).End("")
	if n := len(ring.Snapshot()); n != 3 {
		t.Fatalf("ring got %d events", n)
	}
	if strings.Contains(buf.String(), "effect") || !strings.Contains(buf.String(), "parse") {
		t.Fatalf("stream filtered wrongly:\n%s", buf.String())
	}
	if RingOf(m) != ring || RingOf(stream) != nil {
		t.Fatal("RingOf does not look through the fan-out")
	}
}

func TestNewModes(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*MultiTracer); !ok || RingOf(tr) == nil {
		t.Fatalf("both mode built %T", tr)
	}
	if tr, _ := New(Config{Level: LevelOff, Mode: ModeRing}); tr != Nop {
		t.Fatal("off level should be Nop")
	}
	if FormatFor(FormatAuto, "out.ndjson") != FormatNDJSON || FormatFor(FormatAuto, "-") != FormatText {
		t.Fatal("format from path")
	}
	if _, err := ParseMode("Ring"); err != nil {
		t.Fatal(err)
	}
}

func TestDescribeOpen(t *testing.T) {
	now := time.Unix(100, 0)
	open := map[uint64]openSpan{
		1: {unit: "b.ll", stage: "eval", since: now.Add(-40 * time.Millisecond)},
		2: {unit: "a.ll", stage: "check", since: now.Add(-1200 * time.Millisecond)},
		3: {stage: "parse", since: now},
	}
	if got := describeOpen(open, now); got != "a.ll/check 1.2s, b.ll/eval 40ms, -/parse 0s" {
		t.Fatalf("describeOpen = %q", got)
	}
	if got := describeOpen(nil, now); got != "idle" {
		t.Fatalf("empty = %q", got)
	}
}

func TestHeartbeatReportsOpenStages(t *testing.T) {
	ring := NewRingTracer(256, LevelPhase)
	hb := StartHeartbeat(ring, time.Millisecond)
	if hb == nil {
		t.Fatal("heartbeat not started")
	}
	ctx := WithUnit(WithTracer(context.Background(), hb), "slow.ll")
	sp, _ := StartSpan(ctx, ScopeStage, "eval")

	deadline := time.Now().Add(5 * time.Second)
	found := false
	for !found && time.Now().Before(deadline) {
		for _, ev := range ring.Snapshot() {
			if ev.Kind == KindHeartbeat && strings.Contains(ev.Detail, "slow.ll/eval") {
				found = true
			}
		}
		time.Sleep(time.Millisecond)
	}
	sp.End("ok")
	if err := hb.Close(); err != nil {
		t.Fatal(err)
	}
	hb.Stop()
	if !found {
		t.Fatal("no heartbeat named the open stage")
	}
	if RingOf(hb) != ring {
		t.Fatal("RingOf does not look through the heartbeat")
	}
	hb.mu.Lock()
	defer hb.mu.Unlock()
	if len(hb.open) != 0 {
		t.Fatalf("stage still open: %v", hb.open)
	}

	if StartHeartbeat(Nop, time.Second) != nil || StartHeartbeat(ring, 0) != nil {
		t.Fatal("disabled heartbeat started")
	}
	var none *Heartbeat
	none.Stop()
}
