package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"langlang/internal/diag"
	"langlang/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	bag := diag.NewBag(10)
	sp := source.Span{File: "/w/src/test.ll", StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 9}
	bag.Add(diag.New(diag.SevError, diag.SynUnterminatedString, sp, "Unterminated string literal").
		WithStage(diag.StageParse).WithNote(source.Span{}, "opened here"))
	bag.Add(diag.NewError(diag.EvalFieldNotFound, source.Span{}, "no field b").WithStage(diag.StageEval).WithNode(4))

	var buf bytes.Buffer
	if err := JSON(&buf, bag, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SYN2002" || d.Stage != "parse" || d.Title != "Unterminated string literal" {
		t.Errorf("first = %+v", d)
	}
	if d.Location == nil || d.Location.File != "test.ll" || d.Location.StartLine != 2 || d.Location.EndCol != 9 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location != nil {
		t.Errorf("notes = %+v", d.Notes)
	}
	e := out.Diagnostics[1]
	if e.Location != nil || e.NodeID != 4 || e.Code != "EVL5003" {
		t.Errorf("second = %+v", e)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	bag := diag.NewBag(10)
	for range 3 {
		bag.Add(diag.NewError(diag.TypeMalformed, source.Span{}, "x").WithNote(source.Span{}, "n"))
	}
	out := BuildDiagnosticsOutput(bag, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Fatal("notes included without IncludeNotes")
	}
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diag.NewBag(1), JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"diagnostics\": [],\n  \"count\": 0\n}\n" {
		t.Fatalf("got %q", got)
	}
}
