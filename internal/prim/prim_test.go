package prim

import (
	"errors"
	"testing"

	"langlang/internal/ast"
)

func TestCatalog(t *testing.T) {
	for _, name := range []string{"add", "eq", "concat", "upper", "print", "now"} {
		if _, ok := Lookup(name); !ok {
			t.Fatalf("missing %s", name)
		}
	}
	if _, ok := Lookup("launchMissiles"); ok {
		t.Fatalf("unexpected primitive")
	}
	eq, _ := Lookup("eq")
	if !eq.Poly() || eq.Arity() != 2 || !eq.Foldable() {
		t.Fatalf("eq: poly=%v arity=%d", eq.Poly(), eq.Arity())
	}
	div, _ := Lookup("div")
	if div.Foldable() {
		t.Fatalf("div is partial and must not fold")
	}
	got := Effectful()
	want := []string{"env", "now", "print", "readFile", "writeFile"}
	if len(got) != len(want) {
		t.Fatalf("Effectful = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Effectful = %v", got)
		}
	}
}

func lit(v any) ast.LitData {
	switch x := v.(type) {
	case int:
		return intLit(int64(x))
	case bool:
		return boolLit(x)
	case string:
		return strLit(x)
	}
	return ast.LitData{Kind: ast.LitUnit}
}

func TestApply(t *testing.T) {
	cases := []struct {
		name string
		args []any
		want any
	}{
		{"add", []any{2, 3}, 5},
		{"sub", []any{2, 3}, -1},
		{"mul", []any{4, 3}, 12},
		{"div", []any{7, 2}, 3},
		{"mod", []any{7, 2}, 1},
		{"neg", []any{7}, -7},
		{"lt", []any{1, 2}, true},
		{"ge", []any{1, 2}, false},
		{"eq", []any{"a", "a"}, true},
		{"ne", []any{1, 1}, false},
		{"not", []any{true}, false},
		{"concat", []any{"ab", "cd"}, "abcd"},
		{"strlen", []any{"héllo"}, 5},
		{"show", []any{42}, "42"},
		{"show", []any{"x"}, `"x"`},
		{"upper", []any{"straße"}, "STRASSE"},
		{"lower", []any{"ÀB"}, "àb"},
	}
	for _, tc := range cases {
		args := make([]ast.LitData, len(tc.args))
		for i, a := range tc.args {
			args[i] = lit(a)
		}
		got, err := Apply(tc.name, args)
		if err != nil {
			t.Fatalf("%s%v: %v", tc.name, tc.args, err)
		}
		if got != lit(tc.want) {
			t.Errorf("%s%v = %+v, want %v", tc.name, tc.args, got, tc.want)
		}
	}
}

func TestApplyErrors(t *testing.T) {
	if _, err := Apply("div", []ast.LitData{lit(1), lit(0)}); !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("div by zero: %v", err)
	}
	if _, err := Apply("print", []ast.LitData{lit("x")}); !errors.Is(err, ErrNotFoldable) {
		t.Fatalf("print: %v", err)
	}
	if _, err := Apply("add", []ast.LitData{lit(1), lit("x")}); err == nil {
		t.Fatalf("expected shape error")
	}
	if _, err := Apply("add", []ast.LitData{lit(1)}); err == nil {
		t.Fatalf("expected arity error")
	}
}
