package parser

import (
	"testing"

	"langlang/internal/ast"
	"langlang/internal/diag"
	"langlang/internal/source"
)

var z source.Span

func mustParse(t *testing.T, src string) *ast.Expr {
	t.Helper()
	u, bag := ParseSource("test.ll", src)
	if u == nil {
		for _, d := range bag.Items() {
			t.Logf("%s", diag.Short(d))
		}
		t.Fatalf("parse failed for %q", src)
	}
	return u.Root
}

func TestParseShapes(t *testing.T) {
	v := func(n string) *ast.Expr { return ast.Var(z, n) }
	i := func(n int64) *ast.Expr { return ast.Int(z, n) }
	cases := []struct {
		src  string
		want *ast.Expr
	}{
		{"let x = 1 in x + \"a\"", ast.Let(z, "x", nil, i(1), ast.Binary(z, ast.OpAdd, v("x"), ast.Str(z, "a")))},
		{"fun x -> x", ast.Lambda(z, "x", nil, v("x"))},
		{"fun x (y : Int) -> x", ast.Lambda(z, "x", nil, ast.Lambda(z, "y", v("Int"), v("x")))},
		{"f x y", ast.App(z, ast.App(z, v("f"), v("x")), v("y"))},
		{"1 + 2 * 3", ast.Binary(z, ast.OpAdd, i(1), ast.Binary(z, ast.OpMul, i(2), i(3)))},
		{"a || b && c", ast.Binary(z, ast.OpOr, v("a"), ast.Binary(z, ast.OpAnd, v("b"), v("c")))},
		{"\"a\" ++ \"b\" == s", ast.Binary(z, ast.OpEq, ast.Binary(z, ast.OpConcat, ast.Str(z, "a"), ast.Str(z, "b")), v("s"))},
		{"-5", i(-5)},
		{"-x", ast.Unary(z, ast.OpNeg, v("x"))},
		{"!true", ast.Unary(z, ast.OpNot, ast.Bool(z, true))},
		{"r.a.b", ast.Field(z, ast.Field(z, v("r"), "a"), "b")},
		{"{a = 1, b = ()}", ast.Record(z, ast.F("a", i(1)), ast.F("b", ast.UnitLit(z)))},
		{"{a : Int}", ast.RecordType(z, ast.F("a", v("Int")))},
		{"{}", ast.Record(z)},
		{"[1, 2]", ast.List(z, i(1), i(2))},
		{"[]", ast.List(z)},
		{"@print(\"hi\")", ast.Prim(z, "print", ast.Str(z, "hi"))},
		{"@now()", ast.Prim(z, "now")},
		{"(1 : Int)", ast.Annot(z, i(1), v("Int"))},
		{"if a then 1 else 2", ast.If(z, v("a"), i(1), i(2))},
		{"Int -> Bool -> Int", ast.Arrow(z, v("Int"), ast.Arrow(z, v("Bool"), v("Int")))},
		{"(t : Type) -> t -> t", ast.Pi(z, "t", ast.Universe(z), ast.Arrow(z, v("t"), v("t")))},
		{"forall a. a -> a", ast.Forall(z, []string{"a"}, ast.Arrow(z, v("a"), v("a")))},
		{"let id : forall a. a -> a = fun x -> x in id 5",
			ast.Let(z, "id", ast.Forall(z, []string{"a"}, ast.Arrow(z, v("a"), v("a"))), ast.Lambda(z, "x", nil, v("x")), ast.App(z, v("id"), i(5)))},
		{"List Int", ast.App(z, v("List"), v("Int"))},
		{"# comment\n42", i(42)},
	}
	for _, tc := range cases {
		got := mustParse(t, tc.src)
		if !ast.AlphaEqual(got, tc.want) {
			t.Errorf("%q: got %s, want %s", tc.src, ast.Print(got), ast.Print(tc.want))
		}
	}
}

func TestPrintParseRoundTrip(t *testing.T) {
	srcs := []string{
		"let f = fun (x : Int) -> x * 2 in f (f 3)",
		"(fun x -> x) (-(5))",
		"if 1 < 2 then {a = [1, 2], b = \"q\\n\"}.a else []",
		"let r : {a : Int, b : Bool} = {a = 1, b = true} in r.b",
		"(1 : (fun x -> x x) (fun x -> x x))",
		"(t : Type) -> (x : t) -> t",
		"-9223372036854775808",
	}
	for _, src := range srcs {
		first := mustParse(t, src)
		printed := ast.Print(first)
		second := mustParse(t, printed)
		if !ast.AlphaEqual(first, second) {
			t.Errorf("%q: reprint %q parsed differently", src, printed)
		}
	}
}

func TestParseSpans(t *testing.T) {
	root := mustParse(t, "let x = 1 in\n  x + 2")
	want := source.Span{File: "test.ll", StartLine: 1, StartCol: 1, EndLine: 2, EndCol: 8}
	if root.Span != want {
		t.Fatalf("let span = %v, want %v", root.Span, want)
	}
	body := root.Data.(ast.LetData).Body
	if body.Span != (source.Span{File: "test.ll", StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 8}) {
		t.Fatalf("body span = %v", body.Span)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{"let = 1 in x", diag.SynExpectIdentifier},
		{"let x = 1", diag.SynUnexpectedToken},
		{"(1 + 2", diag.SynUnclosedDelimiter},
		{"1 2 )", diag.SynTrailingInput},
		{"[1, 2", diag.SynUnexpectedToken},
		{"a < b < c", diag.SynUnexpectedToken},
		{"fun -> x", diag.SynExpectIdentifier},
		{"99999999999999999999", diag.SynBadNumber},
		{"\"open", diag.SynUnterminatedString},
		{"", diag.SynExpectExpression},
	}
	for _, tc := range cases {
		u, bag := ParseSource("test.ll", tc.src)
		if u != nil {
			t.Errorf("%q: expected failure", tc.src)
			continue
		}
		if bag.Len() == 0 {
			t.Errorf("%q: expected diagnostic", tc.src)
			continue
		}
		if got := bag.Items()[0].Code; got != tc.code {
			t.Errorf("%q: code %s, want %s", tc.src, got.ID(), tc.code.ID())
		}
	}
}
