package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"langlang/internal/diag"
	"langlang/internal/source"
)

func sample(path, content string, sp source.Span, code diag.Code, msg string) (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	fs.AddVirtual(path, []byte(content))
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, code, sp, msg))
	return bag, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	path := "/home/user/project/src/test.ll"
	sp := source.Span{File: path, StartLine: 1, StartCol: 9, EndLine: 1, EndCol: 22}
	bag, fs := sample(path, "let x = \"unterminated\n", sp, diag.SynUnterminatedString, "Unterminated string literal")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/test.ll:1:9"},
		{"relative", PathModeRelative, "src/test.ll:1:9"},
		{"basename", PathModeBasename, "test.ll:1:9"},
		{"auto", PathModeAuto, "src/test.ll:1:9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			out := buf.String()
			for _, want := range []string{tt.contains, "ERROR", "SYN2002", "Unterminated string literal"} {
				if !strings.Contains(out, want) {
					t.Errorf("missing %q in:\n%s", want, out)
				}
			}
			if tt.mode == PathModeBasename && strings.Contains(out, "/home") {
				t.Errorf("basename mode leaked a directory:\n%s", out)
			}
		})
	}
}

func TestPrettyCaret(t *testing.T) {
	src := `let x = 1 in x + "a"`
	sp := source.Span{File: "m.ll", StartLine: 1, StartCol: 14, EndLine: 1, EndCol: 21}
	bag, fs := sample("m.ll", src, sp, diag.TypeUnificationConflict, "cannot unify Int with String")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("output:\n%s", buf.String())
	}
	if lines[0] != "m.ll:1:14: ERROR TYP3001: cannot unify Int with String" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != " 1 | "+src {
		t.Errorf("source line = %q", lines[1])
	}
	if want := "   | " + strings.Repeat(" ", 13) + "^~~~~~~"; lines[2] != want {
		t.Errorf("caret line = %q, want %q", lines[2], want)
	}
}

func TestUnderlineWidth(t *testing.T) {
	cases := []struct {
		line       string
		start, end uint32
		pad, width int
	}{
		{"\tx", 2, 3, 4, 1},
		{"日本 x", 8, 9, 5, 1},
		{"日本", 1, 7, 0, 4},
		{"abc", 2, 2, 1, 1},
		{"ab", 9, 12, 2, 1},
	}
	for _, c := range cases {
		sp := source.Span{StartLine: 1, StartCol: c.start, EndLine: 1, EndCol: c.end}
		pad, width := underline(c.line, sp)
		if pad != c.pad || width != c.width {
			t.Errorf("underline(%q, %d..%d) = %d, %d; want %d, %d", c.line, c.start, c.end, pad, width, c.pad, c.width)
		}
	}
}

func TestPrettyNodeAndNotes(t *testing.T) {
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.EvalDivideByZero, source.Span{}, "division by zero").WithStage(diag.StageEval).WithNode(12).
		WithNote(source.Span{}, "while evaluating @div"))

	var buf bytes.Buffer
	Pretty(&buf, bag, nil, PrettyOpts{ShowNotes: true})
	out := buf.String()
	if !strings.HasPrefix(out, "<eval>:node 12: ERROR EVL5004: division by zero") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "note: while evaluating @div") {
		t.Errorf("note missing:\n%s", out)
	}
}

func TestPrettyContextAndWidth(t *testing.T) {
	src := "let a = 1 in\nlet b = a + true in\nb\n"
	sp := source.Span{File: "c.ll", StartLine: 2, StartCol: 9, EndLine: 2, EndCol: 17}
	bag, fs := sample("c.ll", src, sp, diag.TypeUnificationConflict, strings.Repeat("long ", 20))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, Width: 20})
	out := buf.String()
	for _, want := range []string{" 1 | let a = 1 in", " 2 | let b = a + true in", " 3 | b", "..."} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPrettyColor(t *testing.T) {
	sp := source.Span{File: "m.ll", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 2}
	bag, fs := sample("m.ll", "x", sp, diag.TypeUnresolvedReference, "unbound x")
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Error("escape codes without color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Error("no escape codes with color")
	}
}
