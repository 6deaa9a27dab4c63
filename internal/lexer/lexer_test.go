package lexer

import (
	"testing"

	"langlang/internal/diag"
	"langlang/internal/source"
	"langlang/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.ll", []byte(src))
	bag := diag.NewBag(16)
	lx := New(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.All(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func TestLexExpression(t *testing.T) {
	toks, bag := lexAll(t, "let id = fun x -> x in id 5 # trailing\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{
		token.KwLet, token.Ident, token.Assign, token.KwFun, token.Ident, token.Arrow,
		token.Ident, token.KwIn, token.Ident, token.IntLit, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexOperators(t *testing.T) {
	toks, _ := lexAll(t, "++ + == = != ! <= < >= > && || -> - @ . : , ( ) { } [ ]")
	want := []token.Kind{
		token.PlusPlus, token.Plus, token.EqEq, token.Assign, token.BangEq, token.Bang,
		token.LtEq, token.Lt, token.GtEq, token.Gt, token.AndAnd, token.OrOr, token.Arrow,
		token.Minus, token.At, token.Dot, token.Colon, token.Comma, token.LParen, token.RParen,
		token.LBrace, token.RBrace, token.LBracket, token.RBracket, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexSpans(t *testing.T) {
	toks, _ := lexAll(t, "a\n  bc")
	if toks[0].Span != (source.Span{File: "test.ll", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 2}) {
		t.Fatalf("span a = %v", toks[0].Span)
	}
	if toks[1].Span != (source.Span{File: "test.ll", StartLine: 2, StartCol: 3, EndLine: 2, EndCol: 5}) {
		t.Fatalf("span bc = %v", toks[1].Span)
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src  string
		code diag.Code
	}{
		{`"abc`, diag.SynUnterminatedString},
		{"\"a\nb\"", diag.SynUnterminatedString},
		{"12ab", diag.SynBadNumber},
		{"$", diag.SynUnknownChar},
	}
	for _, tc := range cases {
		toks, bag := lexAll(t, tc.src)
		if bag.Len() == 0 {
			t.Fatalf("%q: expected diagnostic", tc.src)
		}
		if bag.Items()[0].Code != tc.code {
			t.Fatalf("%q: code %v, want %v", tc.src, bag.Items()[0].Code, tc.code)
		}
		if toks[0].Kind != token.Invalid {
			t.Fatalf("%q: expected invalid token, got %v", tc.src, toks[0].Kind)
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, bag := lexAll(t, `"a\"b\n"`)
	if bag.Len() != 0 || toks[0].Kind != token.StringLit {
		t.Fatalf("unexpected result: %v %v", toks[0], bag.Items())
	}
	if toks[0].Text != `"a\"b\n"` {
		t.Fatalf("text = %q", toks[0].Text)
	}
}
