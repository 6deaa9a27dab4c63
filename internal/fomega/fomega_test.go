package fomega

import (
	"errors"
	"testing"

	"langlang/internal/ast"
	"langlang/internal/pipeline"
	"langlang/internal/wire"
)

func intLit(o Origin, v int64) *Term { return Lit(o, ast.LitData{Kind: ast.LitInt, Int: v}) }

// let id : forall a. a -> a = /\a. \x : a. x in id [Int] 5
func idUnit() *Unit {
	a := TVar("a")
	idType := Forall("a", Star(), Arrow(a, a))
	idVal := TyAbs(2, "a", Star(), Lam(3, "x", a, Var(4, "x")))
	body := App(5, TyApp(6, Var(7, "id"), Int()), intLit(8, 5))
	return &Unit{
		File:   "id.ll",
		Config: pipeline.Default(),
		Term:   Let(1, "id", idType, idVal, body),
		Type:   Int(),
	}
}

func TestCheckIdentity(t *testing.T) {
	u := idUnit()
	if err := Check(u); err != nil {
		t.Fatal(err)
	}
	vt, err := TypeOf(u.Term.Data.(LetData).Value)
	if err != nil {
		t.Fatal(err)
	}
	if got := vt.String(); got != "forall a. a -> a" {
		t.Fatalf("type = %s", got)
	}
}

func TestCheckRejects(t *testing.T) {
	a := TVar("a")
	cases := []struct {
		name string
		term *Term
	}{
		{"unbound", Var(1, "y")},
		{"bad application", App(1, intLit(2, 1), intLit(3, 2))},
		{"argument mismatch", App(1, Lam(2, "x", Bool(), Var(3, "x")), intLit(4, 1))},
		{"instantiate non-forall", TyApp(1, intLit(2, 1), Int())},
		{"unbound type var", Lam(1, "x", a, Var(2, "x"))},
		{"kind mismatch", TyApp(1, TyAbs(2, "f", KArrow(Star(), Star()), intLit(3, 1)), Int())},
		{"branches differ", If(1, Lit(2, ast.LitData{Kind: ast.LitBool, Bool: true}), intLit(3, 1), Lit(4, ast.LitData{Kind: ast.LitString, Str: "s"}))},
		{"inconsistent cast", Cast(1, intLit(2, 1), Int(), String())},
		{"prim arity", Prim(1, "add", nil, intLit(2, 1))},
		{"poly prim needs type arg", Prim(1, "eq", nil, intLit(2, 1), intLit(3, 1))},
		{"missing field", FieldOf(1, Record(2, Field{Label: "a", Value: intLit(3, 1)}), "b")},
		{"list element", List(1, Int(), intLit(2, 1), Lit(3, ast.LitData{Kind: ast.LitBool}))},
	}
	for _, tc := range cases {
		if _, err := TypeOf(tc.term); err == nil {
			t.Errorf("%s: expected error", tc.name)
		} else {
			var ce *CheckError
			if !errors.As(err, &ce) || ce.Origin == 0 {
				t.Errorf("%s: error without origin: %v", tc.name, err)
			}
		}
	}
}

func TestCastsAndRows(t *testing.T) {
	dynRec := TRecord([]FieldType{{Label: "a", Type: Dyn()}}, nil)
	// <Dyn => {a : Dyn}> (<Int => Dyn> 1)
	term := FieldOf(1, Cast(2, Cast(3, intLit(4, 1), Int(), Dyn()), Dyn(), dynRec), "a")
	got, err := TypeOf(term)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tag != TypeDyn {
		t.Fatalf("type = %s", got)
	}

	// /\r : Row. \p : {a : Int | r}. p.a, instantiated at the row {b : Bool}
	r := TVar("r")
	getA := TyAbs(1, "r", Row(), Lam(2, "p", TRecord([]FieldType{{Label: "a", Type: Int()}}, r), FieldOf(3, Var(4, "p"), "a")))
	inst := TyApp(5, getA, TRecord([]FieldType{{Label: "b", Type: Bool()}}, nil))
	it, err := TypeOf(inst)
	if err != nil {
		t.Fatal(err)
	}
	if s := it.String(); s != "{a : Int, b : Bool} -> Int" {
		t.Fatalf("instantiated type = %s", s)
	}
}

func TestTypeOperators(t *testing.T) {
	// (\f : * -> *. forall a. f a -> f a) List
	listOp := TLam("x", Star(), TList(TVar("x")))
	ty := TApp(TLam("f", KArrow(Star(), Star()), Forall("a", Star(), Arrow(TApp(TVar("f"), TVar("a")), TApp(TVar("f"), TVar("a"))))), listOp)
	k, err := KindOf(ty)
	if err != nil {
		t.Fatal(err)
	}
	if k.Tag != KindStar {
		t.Fatalf("kind = %s", k)
	}
	if got := Reduce(ty).String(); got != "forall a. List a -> List a" {
		t.Fatalf("reduced = %s", got)
	}
	if !EqualType(ty, Forall("b", Star(), Arrow(TList(TVar("b")), TList(TVar("b"))))) {
		t.Fatal("types should be equivalent up to beta and alpha")
	}
	if _, err := KindOf(TApp(Int(), Int())); err == nil {
		t.Fatal("applying Int must be a kind error")
	}
}

func TestSubstAvoidsCapture(t *testing.T) {
	// (forall b. a -> b)[a := b] must not capture
	ty := Forall("b", Star(), Arrow(TVar("a"), TVar("b")))
	got := SubstType(ty, "a", TVar("b"))
	if got.Name == "b" {
		t.Fatalf("binder captured the substituted variable: %s", got)
	}
	if fv := FreeTypeVars(got); len(fv) != 1 || fv[0] != "b" {
		t.Fatalf("free vars = %v (%s)", fv, got)
	}
}

func TestConsistent(t *testing.T) {
	cases := []struct {
		a, b *Type
		want bool
	}{
		{Dyn(), Int(), true},
		{Arrow(Dyn(), Int()), Arrow(Bool(), Dyn()), true},
		{Arrow(Int(), Int()), Arrow(Bool(), Int()), false},
		{TList(Dyn()), TList(String()), true},
		{TRecord([]FieldType{{Label: "a", Type: Dyn()}}, nil), TRecord([]FieldType{{Label: "a", Type: Int()}}, nil), true},
		{TRecord([]FieldType{{Label: "a", Type: Int()}}, nil), TRecord([]FieldType{{Label: "b", Type: Int()}}, nil), false},
	}
	for _, tc := range cases {
		if got := Consistent(tc.a, tc.b); got != tc.want {
			t.Errorf("Consistent(%s, %s) = %v", tc.a, tc.b, got)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	u := idUnit()
	u.Config = u.Config.WithTypeSystem(pipeline.Gradual)
	// wrap the body in casts, a record, a reified type and a polymorphic prim
	inner := u.Term.Data.(LetData)
	rec := Record(9,
		Field{Label: "n", Value: Cast(10, Cast(11, inner.Body, Int(), Dyn()), Dyn(), Int())},
		Field{Label: "t", Value: TypeLit(12, TApp(TLam("x", Star(), TList(TVar("x"))), Int()))},
		Field{Label: "e", Value: Prim(13, "eq", []*Type{String()}, Lit(14, ast.LitData{Kind: ast.LitString, Str: "a"}), Lit(15, ast.LitData{Kind: ast.LitString, Str: "b"}))},
		Field{Label: "l", Value: List(16, Bool())},
	)
	inner.Body = rec
	u.Term = Let(1, inner.Name, inner.Type, inner.Value, inner.Body)
	rt, err := TypeOf(u.Term)
	if err != nil {
		t.Fatal(err)
	}
	u.Type = rt
	if err := Check(u); err != nil {
		t.Fatal(err)
	}

	data, err := Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !EqualUnit(u, back) {
		t.Fatalf("round trip mismatch:\n%s\n%s", Dump(u), Dump(back))
	}
}

func TestUnknownTermTag(t *testing.T) {
	data, err := wire.Marshal(func(e *wire.Encoder) {
		e.Array(4)
		e.String("x.ll")
		e.Config(pipeline.Default())
		e.Node(99, 1)
		e.Uint(1)
		e.Nil()
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Unmarshal(data)
	var fe *wire.FormatError
	if !errors.As(err, &fe) || fe.Reason != wire.ReasonUnsupportedVariant {
		t.Fatalf("expected unsupported variant, got %v", err)
	}
}

func TestPrint(t *testing.T) {
	u := idUnit()
	want := "let id : forall a. a -> a = /\\a. \\x : a. x in id [Int] 5"
	if got := Print(u.Term); got != want {
		t.Fatalf("print = %q", got)
	}
	if got := Forall("f", KArrow(Star(), Star()), TApp(TVar("f"), Int())).String(); got != "forall (f : * -> *). f Int" {
		t.Fatalf("kinded binder = %q", got)
	}
}

func TestSubstTermAvoidsCapture(t *testing.T) {
	// (\y : Int. x)[x := y] renames the binder
	lam := Lam(1, "y", Int(), Var(2, "x"))
	got := SubstTerm(lam, "x", Var(3, "y"))
	d := got.Data.(LamData)
	if d.Param == "y" {
		t.Fatalf("binder captured the substituted variable: %s", Print(got))
	}
	if fv := FreeVars(got); len(fv) != 1 || fv[0] != "y" {
		t.Fatalf("free vars = %v (%s)", fv, Print(got))
	}

	// /\a. \z : a. w with w := v where v mentions a free type variable a
	abs := TyAbs(1, "a", Star(), Lam(2, "z", TVar("a"), Var(3, "w")))
	v := Lam(4, "q", TVar("a"), Var(5, "q"))
	got = SubstTerm(abs, "w", v)
	if got.Data.(TyAbsData).Param == "a" {
		t.Fatalf("type binder captured: %s", Print(got))
	}
	if ftv := FreeTypeVarsOf(got); len(ftv) != 1 || ftv[0] != "a" {
		t.Fatalf("free type vars = %v (%s)", ftv, Print(got))
	}

	if n := Occurrences(Let(1, "x", Int(), Var(2, "x"), Var(3, "x")), "x"); n != 1 {
		t.Fatalf("let body shadows x, occurrences = %d", n)
	}
}
