package normalize

import (
	"errors"
	"testing"

	"langlang/internal/ast"
	"langlang/internal/parser"
)

func parse(t *testing.T, src string) *ast.Expr {
	t.Helper()
	u, bag := parser.ParseSource("n.ll", src)
	if u == nil {
		t.Fatalf("parse %q: %v", src, bag.Items())
	}
	return u.Root
}

func TestNormalForms(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{"(fun (x : Type) -> x) Int", "Int"},
		{"let t = Int in t -> t", "Int -> Int"},
		{"if true then Int else Bool", "Int"},
		{"if 1 < 2 && false then Int else Bool", "Bool"},
		{"{a = Int, b = Bool}.b", "Bool"},
		{"1 + 2 * 3", "7"},
		{"@strlen(\"abc\") - 1", "2"},
		{"fun (x : Int) -> f x", "f"},
		{"(t : Type) -> (fun (u : Type) -> u) t", "(t : Type) -> t"},
		{"List ((Int : Type))", "List Int"},
		{"@print(\"x\")", "@print(\"x\")"},
		{"10 / 0", "10 / 0"},
	}
	for _, tc := range cases {
		got, err := Normalize(parse(t, tc.src), nil, 1000)
		if err != nil {
			t.Fatalf("%s: %v", tc.src, err)
		}
		if s := ast.Print(got); s != tc.want {
			t.Errorf("nf(%s) = %q, want %q", tc.src, s, tc.want)
		}
	}
}

func TestScopeDeltaAndShadowing(t *testing.T) {
	scope := []Def{
		{Name: "T", Value: parse(t, "List Int")},
		{Name: "U", Value: parse(t, "T -> T")},
	}
	got, err := Normalize(parse(t, "U"), scope, 100)
	if err != nil {
		t.Fatal(err)
	}
	if s := ast.Print(got); s != "List Int -> List Int" {
		t.Fatalf("delta = %q", s)
	}

	shadowed := append(scope[:1:1], Def{Name: "T"})
	got, err = Normalize(parse(t, "T"), shadowed, 100)
	if err != nil {
		t.Fatal(err)
	}
	if s := ast.Print(got); s != "T" {
		t.Fatalf("opaque binder must shadow, got %q", s)
	}
}

func TestSubstAvoidsCapture(t *testing.T) {
	out, hits := Subst(parse(t, "fun y -> x"), "x", parse(t, "y"))
	if hits != 1 {
		t.Fatalf("hits = %d", hits)
	}
	if s := ast.Print(out); s != "fun y' -> y" {
		t.Fatalf("subst = %q", s)
	}
	out, hits = Subst(parse(t, "fun x -> x"), "x", parse(t, "1"))
	if hits != 0 || ast.Print(out) != "fun x -> x" {
		t.Fatalf("bound occurrence replaced: %s", ast.Print(out))
	}
}

func TestNonConvergent(t *testing.T) {
	omega := parse(t, "(fun (f : Type) -> f f) (fun (f : Type) -> f f)")
	_, err := Normalize(omega, nil, 500)
	if !errors.Is(err, ErrNonConvergent) {
		t.Fatalf("expected ErrNonConvergent, got %v", err)
	}
	var detail *ErrorDetail
	if !errors.As(err, &detail) || detail.Fuel != 500 {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestStepsAndEquivalent(t *testing.T) {
	_, steps, err := Steps(parse(t, "(fun (x : Type) -> x) Int"), nil, 10)
	if err != nil || steps != 1 {
		t.Fatalf("steps = %d, err = %v", steps, err)
	}
	ok, err := Equivalent(parse(t, "(a : Type) -> a"), parse(t, "(b : Type) -> (fun (x : Type) -> x) b"), nil, 100)
	if err != nil || !ok {
		t.Fatalf("Equivalent = %v, %v", ok, err)
	}
}
