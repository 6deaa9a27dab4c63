package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"langlang/internal/pipeline"
)

// execute runs a fresh command tree so flag values do not leak between tests.
func execute(t *testing.T, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	root := &cobra.Command{Use: "langlang", SilenceUsage: true, SilenceErrors: true}
	registerGlobalFlags(root)
	root.AddCommand(stageCmds()...)
	root.AddCommand(newRunCmd(), newBatchCmd(), &cobra.Command{Use: "dump [file]", RunE: runDump})

	var stdout, stderr bytes.Buffer
	root.SetIn(bytes.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--color", "off"))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.ll", `let id = fun x -> x in id 5`)
	out, _, err := execute(t, nil, "run", path)
	if err != nil || strings.TrimSpace(out) != "5" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestRunCommandJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.ll", `let x = 1 in x + "a"`)
	out, _, err := execute(t, nil, "run", path, "--type-system", "dynamic", "--format", "json")
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v", err)
	}
	var res resultJSON
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.OK || res.FailedAt != "eval" || res.Diagnostics == nil || res.Diagnostics.Diagnostics[0].Code != "EVL5001" {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunCommandPrettyDiagnostics(t *testing.T) {
	path := writeFile(t, t.TempDir(), "conflict.ll", "1 + \"a\"\n")
	_, stderr, err := execute(t, nil, "run", path)
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(stderr, "TYP3001") || !strings.Contains(stderr, "^") {
		t.Fatalf("stderr:\n%s", stderr)
	}
}

func TestStagePipeline(t *testing.T) {
	path := writeFile(t, t.TempDir(), "p.ll", `{a = 1 + 1, b = "x"}`)
	msg, _, err := execute(t, nil, "parse", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, st := range []string{"check", "lower", "eval"} {
		if msg, _, err = execute(t, []byte(msg), st); err != nil {
			t.Fatalf("%s: %v", st, err)
		}
	}
	out, _, err := execute(t, []byte(msg), "dump")
	if err != nil || !strings.Contains(out, `value {a = 2, b = "x"}`) {
		t.Fatalf("dump out=%q err=%v", out, err)
	}
}

func TestStageForwardsFailure(t *testing.T) {
	msg, stderr, err := execute(t, []byte("(1 +"), "parse")
	if !errors.Is(err, errReported) || !strings.Contains(stderr, "SYN") {
		t.Fatalf("parse err=%v stderr=%s", err, stderr)
	}
	msg, _, err = execute(t, []byte(msg), "check")
	if !errors.Is(err, errReported) {
		t.Fatalf("check err = %v", err)
	}
	out, _, err := execute(t, []byte(msg), "dump")
	if !errors.Is(err, errReported) || !strings.HasPrefix(out, "diagnostics (") {
		t.Fatalf("dump out=%q err=%v", out, err)
	}
}

func TestProfileAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, pipeline.ProfileFile, "[pipeline]\ntype_system = \"dynamic\"\n")
	path := writeFile(t, dir, "d.ll", `let x = 1 in x + "a"`)

	// профиль включает dynamic, ошибка только при вычислении
	_, stderr, err := execute(t, nil, "run", path, "--config", cfg)
	if !errors.Is(err, errReported) || !strings.Contains(stderr, "EVL5001") {
		t.Fatalf("profile: err=%v stderr=%s", err, stderr)
	}
	// флаг перекрывает профиль
	_, stderr, err = execute(t, nil, "run", path, "--config", cfg, "--type-system", "inferred")
	if !errors.Is(err, errReported) || !strings.Contains(stderr, "TYP3001") {
		t.Fatalf("flag: err=%v stderr=%s", err, stderr)
	}
	if _, _, err = execute(t, nil, "run", path, "--purity", "bogus"); err == nil {
		t.Fatal("expected a bad --purity to fail")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ll", `1 + 1`)
	writeFile(t, dir, "b.ll", `1 + "a"`)
	writeFile(t, dir, "notes.txt", `ignored`)
	out, stderr, err := execute(t, nil, "batch", dir, "--ui", "off", "--jobs", "2")
	if !errors.Is(err, errReported) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "a.ll = 2") || !strings.Contains(stderr, "2 units, 1 failed") {
		t.Fatalf("out=%q stderr=%q", out, stderr)
	}
}

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o700); err != nil {
		t.Fatal(err)
	}
	a := writeFile(t, dir, "a.ll", "1")
	b := writeFile(t, sub, "b.ll", "2")
	writeFile(t, dir, "c.txt", "3")
	missing := filepath.Join(dir, "missing.ll")

	got, err := collectSources([]string{dir, a, missing})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{a, missing, b}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRelevant(t *testing.T) {
	target := filepath.Join(string(filepath.Separator)+"tmp", "cfg.ll")
	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: target + ".swp", Op: fsnotify.Write}, false},
	}
	for _, tc := range cases {
		if got := relevant(tc.ev, target); got != tc.want {
			t.Errorf("relevant(%v) = %v", tc.ev, got)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Error("expected an error")
	}
}
