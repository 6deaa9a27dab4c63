package typedast

import (
	"errors"
	"strings"
	"testing"

	"langlang/internal/ast"
	"langlang/internal/pipeline"
	"langlang/internal/source"
	"langlang/internal/wire"
)

func span(col uint32) source.Span {
	return source.Span{File: "t.ll", StartLine: 1, StartCol: col, EndLine: 1, EndCol: col + 1}
}

// let id = fun x -> x in id 5
func idUnit() *Unit {
	a := Param("a")
	scheme := &Scheme{Vars: []TypeVar{{Name: "a"}}, Body: Fun(a, a)}
	lam := &Expr{Kind: ExprLambda, Span: span(10), Type: Fun(a, a), Data: LambdaData{
		Param: "x", ParamType: a,
		Body: &Expr{Kind: ExprVar, Span: span(19), Type: a, Data: VarData{Name: "x"}},
	}}
	use := &Expr{Kind: ExprApp, Span: span(24), Type: Int(), Data: AppData{
		Fn:  &Expr{Kind: ExprVar, Span: span(24), Type: Fun(Int(), Int()), Data: VarData{Name: "id", TypeArgs: []*Type{Int()}}},
		Arg: &Expr{Kind: ExprLit, Span: span(27), Type: Int(), Data: LitData{Lit: ast.LitData{Kind: ast.LitInt, Int: 5}}},
	}}
	root := &Expr{Kind: ExprLet, Span: span(1), Type: Int(), Data: LetData{Name: "id", Scheme: scheme, Value: lam, Body: use}}
	Renumber(root)
	return &Unit{File: "t.ll", Config: pipeline.Default(), Root: root, Scheme: Mono(Int())}
}

func TestRenumberAndValidate(t *testing.T) {
	u := idUnit()
	if u.Root.ID != 1 {
		t.Fatalf("root id = %d", u.Root.ID)
	}
	if err := Validate(u); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	idx := IndexSpans(u.Root)
	if len(idx) != 6 {
		t.Fatalf("index has %d entries", len(idx))
	}
	if idx.Lookup(1) != span(1) {
		t.Fatalf("span of #1 = %v", idx.Lookup(1))
	}
}

func TestValidateRejectsMeta(t *testing.T) {
	u := idUnit()
	u.Root.Data.(LetData).Body.Type = Meta(3)
	err := Validate(u)
	if !errors.Is(err, ErrPartiallyTyped) {
		t.Fatalf("expected ErrPartiallyTyped, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	u := idUnit()
	cast := &Expr{Kind: ExprCast, Span: span(3), Type: Int(), Data: CastData{
		Expr: &Expr{Kind: ExprVar, Span: span(3), Type: Dyn(), Data: VarData{Name: "y"}},
		From: Dyn(), To: Int(),
	}}
	rec := &Expr{Kind: ExprRecord, Span: span(2), Type: Record([]FieldType{{"b", Int()}, {"a", Universe()}}, nil), Data: RecordData{
		Fields: []FieldInit{
			{Label: "b", Value: cast, Span: span(3)},
			{Label: "a", Value: &Expr{Kind: ExprTypeValue, Span: span(5), Type: Universe(), Data: TypeValueData{Denotes: List(Int())}}, Span: span(5)},
		},
	}}
	Renumber(rec)
	units := []*Unit{u, {File: "r.ll", Config: pipeline.Default().WithTypeSystem(pipeline.Gradual), Root: rec, Scheme: Mono(rec.Type)}}
	for _, in := range units {
		data, err := Marshal(in)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		out, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if !EqualUnit(in, out) {
			t.Fatalf("round trip mismatch:\n%s\n%s", Dump(in), Dump(out))
		}
	}
}

func TestUnknownTypeTag(t *testing.T) {
	data, err := wire.Marshal(func(e *wire.Encoder) { e.Node(77, 0) })
	if err != nil {
		t.Fatal(err)
	}
	err = wire.Unmarshal(data, "t", func(d *wire.Decoder) { DecodeType(d) })
	var fe *wire.FormatError
	if !errors.As(err, &fe) || fe.Reason != wire.ReasonUnsupportedVariant {
		t.Fatalf("expected unsupported variant, got %v", err)
	}
}

func TestTypeString(t *testing.T) {
	r := Param("r")
	cases := []struct {
		t    *Type
		want string
	}{
		{Fun(Fun(Int(), Bool()), List(String())), "(Int -> Bool) -> List String"},
		{List(List(Int())), "List (List Int)"},
		{Record([]FieldType{{"b", Int()}, {"a", Dyn()}}, r), "{a : Dyn, b : Int | r}"},
		{Pi("t", Universe(), Fun(Param("t"), Param("t"))), "(t : Type) -> t -> t"},
		{Meta(4), "?4"},
	}
	for _, tc := range cases {
		if got := TypeString(tc.t); got != tc.want {
			t.Errorf("TypeString = %q, want %q", got, tc.want)
		}
	}
	s := &Scheme{Vars: []TypeVar{{Name: "a"}}, Body: Fun(Param("a"), Param("a"))}
	if got := SchemeString(s); got != "forall a. a -> a" {
		t.Fatalf("SchemeString = %q", got)
	}
}

func TestSubstParamsSplicesRows(t *testing.T) {
	open := Record([]FieldType{{"a", Int()}}, Param("r"))
	got := SubstParams(open, map[string]*Type{"r": Record([]FieldType{{"b", Bool()}}, nil)})
	if TypeString(got) != "{a : Int, b : Bool}" {
		t.Fatalf("spliced = %s", TypeString(got))
	}
	pi := Pi("a", Universe(), Param("a"))
	if !EqualType(SubstParams(pi, map[string]*Type{"a": Int()}), pi) {
		t.Fatalf("bound binder must not be substituted")
	}
}

func TestFreeParams(t *testing.T) {
	ty := Fun(Param("b"), Pi("t", Universe(), Fun(Param("t"), Param("a"))))
	got := strings.Join(FreeParams(ty), ",")
	if got != "b,a" {
		t.Fatalf("FreeParams = %s", got)
	}
}

func TestErase(t *testing.T) {
	u := idUnit()
	got := ast.Print(Erase(u.Root))
	if got != "let id = fun x -> x in id 5" {
		t.Fatalf("Erase = %q", got)
	}
}
