package ast

import (
	"errors"
	"testing"

	"langlang/internal/source"
	"langlang/internal/wire"
)

func sp(line, col, end uint32) source.Span {
	return source.Span{File: "t.ll", StartLine: line, StartCol: col, EndLine: line, EndCol: end}
}

func sample() *Unit {
	body := Binary(sp(1, 20, 34), OpAdd, Var(sp(1, 20, 21), "x"), Field(sp(1, 24, 34), Record(sp(1, 24, 32), F("a", Int(sp(1, 29, 30), -3))), "a"))
	fn := Lambda(sp(1, 1, 34), "x", Var(sp(1, 10, 13), "Int"), body)
	root := Let(sp(1, 1, 60), "f", Arrow(sp(1, 5, 15), Var(sp(1, 5, 8), "Int"), Var(sp(1, 12, 15), "Int")), fn,
		If(sp(2, 1, 30), Bool(sp(2, 4, 8), true),
			App(sp(2, 14, 17), Var(sp(2, 14, 15), "f"), Int(sp(2, 16, 17), 1)),
			Prim(sp(2, 23, 30), "strlen", Str(sp(2, 27, 29), "ok\n"))))
	return &Unit{File: "t.ll", Root: root}
}

func TestRoundTrip(t *testing.T) {
	units := []*Unit{
		sample(),
		{File: "u.ll", Root: UnitLit(sp(1, 1, 3))},
		{File: "v.ll", Root: Forall(sp(1, 1, 20), []string{"a", "b"}, Pi(sp(1, 12, 20), "x", Universe(sp(1, 13, 17)), List(sp(1, 20, 22))))},
		{File: "w.ll", Root: Annot(sp(1, 1, 9), Unary(sp(1, 2, 4), OpNot, Bool(sp(1, 3, 4), false)), RecordType(sp(1, 5, 8), F("a", Var(sp(1, 6, 7), "Bool"))))},
	}
	for _, u := range units {
		data, err := Marshal(u)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if !EqualUnit(u, got) {
			t.Fatalf("round trip mismatch:\nwant %s\n got %s", Print(u.Root), Print(got.Root))
		}
	}
}

func TestUnknownTagRejected(t *testing.T) {
	data, err := wire.Marshal(func(e *wire.Encoder) {
		e.Array(2)
		e.String("x.ll")
		e.Node(200, 1)
		e.Span(sp(1, 1, 1))
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Unmarshal(data)
	var fe *wire.FormatError
	if !errors.As(err, &fe) || fe.Reason != wire.ReasonUnsupportedVariant || fe.Tag != 200 {
		t.Fatalf("expected unsupported variant, got %v", err)
	}
}

func TestMissingChildRejected(t *testing.T) {
	data, err := wire.Marshal(func(e *wire.Encoder) {
		e.Array(2)
		e.String("x.ll")
		e.Node(uint8(ExprApp), 3)
		e.Span(sp(1, 1, 4))
		EncodeExpr(e, Var(sp(1, 1, 2), "f"))
		e.Nil()
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Fatalf("expected missing argument error")
	}
}

func TestWrongFieldCountRejected(t *testing.T) {
	data, err := wire.Marshal(func(e *wire.Encoder) {
		e.Array(2)
		e.String("x.ll")
		e.Node(uint8(ExprVar), 1)
		e.Span(sp(1, 1, 2))
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Fatalf("expected field count error")
	}
}

func TestEqualIncludesSpans(t *testing.T) {
	a := Var(sp(1, 1, 2), "x")
	b := Var(sp(1, 2, 3), "x")
	if Equal(a, b) {
		t.Fatalf("spans differ, Equal must be false")
	}
	if !AlphaEqual(a, b) {
		t.Fatalf("AlphaEqual ignores spans")
	}
}

func TestAlphaEqual(t *testing.T) {
	var z source.Span
	idX := Lambda(z, "x", nil, Var(z, "x"))
	idY := Lambda(z, "y", nil, Var(z, "y"))
	constX := Lambda(z, "x", nil, Var(z, "y"))
	if !AlphaEqual(idX, idY) {
		t.Fatalf("fun x -> x should equal fun y -> y")
	}
	if AlphaEqual(idX, constX) {
		t.Fatalf("bound and free variable must differ")
	}
	k1 := Lambda(z, "a", nil, Lambda(z, "b", nil, Var(z, "a")))
	k2 := Lambda(z, "b", nil, Lambda(z, "a", nil, Var(z, "b")))
	k3 := Lambda(z, "b", nil, Lambda(z, "a", nil, Var(z, "a")))
	if !AlphaEqual(k1, k2) || AlphaEqual(k1, k3) {
		t.Fatalf("shadowing handled incorrectly")
	}
	fa := Forall(z, []string{"a"}, Arrow(z, Var(z, "a"), Var(z, "a")))
	fb := Forall(z, []string{"b"}, Arrow(z, Var(z, "b"), Var(z, "b")))
	if !AlphaEqual(fa, fb) {
		t.Fatalf("forall binders should alpha-rename")
	}
}

func TestPrint(t *testing.T) {
	var z source.Span
	cases := []struct {
		e    *Expr
		want string
	}{
		{Binary(z, OpMul, Binary(z, OpAdd, Int(z, 1), Int(z, 2)), Int(z, 3)), "(1 + 2) * 3"},
		{Binary(z, OpSub, Int(z, 1), Binary(z, OpSub, Int(z, 2), Int(z, 3))), "1 - (2 - 3)"},
		{App(z, Lambda(z, "x", nil, Var(z, "x")), Int(z, 5)), "(fun x -> x) 5"},
		{Arrow(z, Arrow(z, Var(z, "a"), Var(z, "b")), Var(z, "c")), "(a -> b) -> c"},
		{Field(z, App(z, Var(z, "f"), Var(z, "x")), "a"), "(f x).a"},
		{Unary(z, OpNeg, Int(z, 5)), "-(5)"},
		{Record(z, F("a", Int(z, 1)), F("b", Str(z, "s"))), `{a = 1, b = "s"}`},
		{Let(z, "f", Forall(z, []string{"a"}, Arrow(z, Var(z, "a"), Var(z, "a"))), Lambda(z, "x", nil, Var(z, "x")), Var(z, "f")),
			"let f : forall a. a -> a = fun x -> x in f"},
		{Pi(z, "t", Universe(z), Arrow(z, Var(z, "t"), Var(z, "t"))), "(t : Type) -> t -> t"},
		{Prim(z, "print", Str(z, "hi")), `@print("hi")`},
	}
	for _, tc := range cases {
		if got := Print(tc.e); got != tc.want {
			t.Errorf("Print = %q, want %q", got, tc.want)
		}
	}
}

func TestCount(t *testing.T) {
	if n := Count(sample().Root); n != 18 {
		t.Fatalf("Count = %d", n)
	}
}
