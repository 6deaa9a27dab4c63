package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := Default()
	if c.SourceLanguage != "unknown" || c.TypeSystem != Inferred || c.Purity != Sandbox || c.Optimization != Release {
		t.Fatalf("unexpected default: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("default must validate: %v", err)
	}
	if got := c.String(); got != "unknown/inferred/sandbox/release" {
		t.Fatalf("String() = %q", got)
	}
}

func TestParseEnums(t *testing.T) {
	for _, ts := range []TypeSystem{Dynamic, Inferred, Gradual, Dependent} {
		got, err := ParseTypeSystem(ts.String())
		if err != nil || got != ts {
			t.Fatalf("ParseTypeSystem(%q) = %v, %v", ts, got, err)
		}
	}
	if got, err := ParsePurityLevel("UNRESTRICTED"); err != nil || got != Unrestricted {
		t.Fatalf("ParsePurityLevel = %v, %v", got, err)
	}
	if got, err := ParseOptimizationLevel("aggressive"); err != nil || got != Aggressive {
		t.Fatalf("ParseOptimizationLevel = %v, %v", got, err)
	}
	if _, err := ParseTypeSystem("linear"); err == nil {
		t.Fatalf("expected error for unknown type system")
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	c := Default()
	c.TypeSystem = 9
	c.Purity = 7
	err := c.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestWithReturnsCopy(t *testing.T) {
	base := Default()
	mod := base.WithPurity(Pure).WithTypeSystem(Gradual)
	if base.Purity != Sandbox || base.TypeSystem != Inferred {
		t.Fatalf("base mutated: %+v", base)
	}
	if mod.Purity != Pure || mod.TypeSystem != Gradual {
		t.Fatalf("copy not modified: %+v", mod)
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProfileFile)
	data := `[pipeline]
source_language = "langlang"
type_system = "gradual"
purity = "pure"

[limits]
eval_steps = 500

[sandbox]
allow = ["print"]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Config.TypeSystem != Gradual || p.Config.Purity != Pure || p.Config.Optimization != Release {
		t.Fatalf("unexpected config %+v", p.Config)
	}
	if p.Config.SourceLanguage != "langlang" {
		t.Fatalf("source language = %q", p.Config.SourceLanguage)
	}
	if p.Limits.EvalSteps != 500 || p.Limits.EvalDepth != DefaultEvalDepth {
		t.Fatalf("unexpected limits %+v", p.Limits)
	}
	if !p.Sandbox.Allows("print") || p.Sandbox.Allows("env") {
		t.Fatalf("unexpected sandbox %v", p.Sandbox)
	}
}

func TestLoadProfileErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad_enum":    "[pipeline]\ntype_system = \"linear\"\n",
		"unknown_key": "[pipeline]\ncolour = \"red\"\n",
		"bad_limit":   "[limits]\neval_depth = 0\n",
		"syntax":      "[pipeline\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadProfile(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFindProfileWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ProfileFile)
	if err := os.WriteFile(want, []byte("[pipeline]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, ok, err := FindProfile(nested)
	if err != nil || !ok {
		t.Fatalf("FindProfile: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("FindProfile = %q, want %q", got, want)
	}
}

func TestLimitsNormalized(t *testing.T) {
	l := Limits{EvalSteps: 10}.Normalized()
	if l.EvalSteps != 10 || l.EvalDepth != DefaultEvalDepth || l.NormalizeFuel != DefaultNormalizeFuel {
		t.Fatalf("unexpected %+v", l)
	}
}
