package lower

import (
	"errors"
	"strings"
	"testing"

	"langlang/internal/ast"
	"langlang/internal/check"
	"langlang/internal/diag"
	"langlang/internal/fomega"
	"langlang/internal/parser"
	"langlang/internal/pipeline"
	"langlang/internal/source"
	"langlang/internal/typedast"
)

func checked(t *testing.T, ts pipeline.TypeSystem, src string) *typedast.Unit {
	t.Helper()
	u, bag := parser.ParseSource("l.ll", src)
	if u == nil {
		t.Fatalf("parse %q: %v", src, bag.Items())
	}
	out, err := check.Check(u, pipeline.Default().WithTypeSystem(ts), check.Options{})
	if err != nil {
		t.Fatalf("check %q under %s: %v", src, ts, err)
	}
	return out
}

func mustLower(t *testing.T, ts pipeline.TypeSystem, src string) *fomega.Unit {
	t.Helper()
	out, err := Lower(checked(t, ts, src))
	if err != nil {
		t.Fatalf("lower %q under %s: %v", src, ts, err)
	}
	return out
}

func count(u *fomega.Unit, kind fomega.TermKind) int {
	n := 0
	fomega.Inspect(u.Term, func(t *fomega.Term) bool {
		if t.Kind == kind {
			n++
		}
		return true
	})
	return n
}

// Programs accepted by the three non-dependent disciplines.
var corpus = []string{
	`1`,
	`fun x -> x`,
	`let id = fun x -> x in id 5`,
	`let id = fun x -> x in {a = id 1, b = id true}`,
	`let getA = fun r -> r.a in getA {a = 1, b = "s"}`,
	`fun r -> r.a`,
	`let k = fun x -> fun y -> x in k 1 "two"`,
	`if 1 < 2 && true || false then "yes" else "no"`,
	`[1, 2, 3]`,
	`[]`,
	`let xs = [] in 1`,
	`{n = 1 + 2 * 3, s = "a" ++ "b", neg = -4, b = !true}`,
	`fun x -> x == x`,
	`@show(42)`,
	`@strlen(@upper("abc"))`,
	`let f = fun g -> fun x -> g (g x) in f (fun n -> n + 1) 0`,
	`let p = {x = 1, y = 2} in p.x + p.y`,
	`(fun x -> {l = x}) 3`,
	`let f : Int -> Int = fun x -> x in f`,
}

// dependentCorpus holds programs that only check under Dependent.
var dependentCorpus = []string{
	`let id = fun (t : Type) -> fun (x : t) -> x in id Int 5`,
	`fun (f : Type -> Type) -> f Int`,
	`fun (f : Type -> Type) -> f`,
	`fun (f : Type -> Type -> Type) -> f Int`,
	`let app = fun (f : Type -> Type) -> fun (t : Type) -> f t in app (fun (x : Type) -> List x) Int`,
	`let F = fun (b : Bool) -> if b then Int else String in let x : F false = "s" in x`,
}

func TestLowerTotal(t *testing.T) {
	sources := map[pipeline.TypeSystem][]string{
		pipeline.Dynamic:   corpus,
		pipeline.Inferred:  corpus,
		pipeline.Gradual:   corpus,
		pipeline.Dependent: dependentCorpus,
	}
	for _, ts := range []pipeline.TypeSystem{pipeline.Dynamic, pipeline.Inferred, pipeline.Gradual, pipeline.Dependent} {
		for _, src := range sources[ts] {
			tu := checked(t, ts, src)
			out, err := Lower(tu)
			if err != nil {
				t.Errorf("%s %q: %v", ts, src, err)
				continue
			}
			if out.Config != tu.Config {
				t.Errorf("%s %q: config not carried", ts, src)
			}
			max := fomega.Origin(0)
			typedast.Inspect(tu.Root, func(x *typedast.Expr) bool {
				if o := fomega.Origin(x.ID); o > max {
					max = o
				}
				return true
			})
			fomega.Inspect(out.Term, func(c *fomega.Term) bool {
				if c.Origin == 0 || c.Origin > max {
					t.Errorf("%s %q: %s term has origin %d outside 1..%d", ts, src, c.Kind, c.Origin, max)
				}
				return true
			})
		}
	}
}

func TestLowerPolymorphism(t *testing.T) {
	u := mustLower(t, pipeline.Inferred, `let id = fun x -> x in id 5`)
	if count(u, fomega.TermTyAbs) != 1 || count(u, fomega.TermTyApp) != 1 {
		t.Fatalf("expected one TyAbs and one TyApp:\n%s", fomega.Dump(u))
	}
	if !u.Type.IsCon(fomega.ConInt) {
		t.Fatalf("unit type = %s", u.Type)
	}
	let := u.Term.Data.(fomega.LetData)
	if got := let.Type.String(); got != "forall a. a -> a" {
		t.Fatalf("id : %s", got)
	}

	u = mustLower(t, pipeline.Inferred, `fun x -> x`)
	if got := u.Type.String(); got != "forall a. a -> a" {
		t.Fatalf("root type = %s", got)
	}

	u = mustLower(t, pipeline.Inferred, `let getA = fun r -> r.a in getA`)
	if got := u.Type.String(); got != "forall a. forall (r : Row). {a : a | r} -> a" {
		t.Fatalf("row polymorphism = %s", got)
	}
}

func TestLowerDynamicCasts(t *testing.T) {
	u := mustLower(t, pipeline.Dynamic, `let x = 1 in x + "a"`)
	if count(u, fomega.TermCast) == 0 {
		t.Fatalf("no casts in dynamic code:\n%s", fomega.Dump(u))
	}
	if u.Type.Tag != fomega.TypeDyn {
		t.Fatalf("unit type = %s", u.Type)
	}
	u = mustLower(t, pipeline.Inferred, `let x = 1 in x + 2`)
	if n := count(u, fomega.TermCast); n != 0 {
		t.Fatalf("static code has %d casts", n)
	}
}

func TestLowerGradualBoundary(t *testing.T) {
	u := mustLower(t, pipeline.Gradual, `let f = fun (x : Int) -> x + 1 in fun y -> f y`)
	var found bool
	fomega.Inspect(u.Term, func(c *fomega.Term) bool {
		if d, ok := c.Data.(fomega.CastData); ok && d.From.Tag == fomega.TypeDyn && d.To.IsCon(fomega.ConInt) {
			found = true
		}
		return true
	})
	if !found {
		t.Fatalf("missing Dyn => Int cast:\n%s", fomega.Dump(u))
	}
}

func TestLowerDependent(t *testing.T) {
	u := mustLower(t, pipeline.Dependent, `let id = fun (t : Type) -> fun (x : t) -> x in id Int 5`)
	if !u.Type.IsCon(fomega.ConInt) {
		t.Fatalf("unit type = %s", u.Type)
	}
	var abs *fomega.TyAbsData
	fomega.Inspect(u.Term, func(c *fomega.Term) bool {
		if d, ok := c.Data.(fomega.TyAbsData); ok && abs == nil {
			abs = &d
		}
		return true
	})
	if abs == nil || abs.Param != "t" || abs.Kind.Tag != fomega.KindStar {
		t.Fatalf("type parameter not lowered to a TyAbs:\n%s", fomega.Dump(u))
	}
	if count(u, fomega.TermTyApp) != 1 {
		t.Fatalf("expected one TyApp:\n%s", fomega.Dump(u))
	}

	// a type operator used as a term is eta-expanded into type abstractions
	u = mustLower(t, pipeline.Dependent, `fun (f : Type -> Type) -> f`)
	if count(u, fomega.TermTyAbs) != 2 || count(u, fomega.TermTypeLit) != 1 {
		t.Fatalf("expected f to be eta-expanded:\n%s", fomega.Dump(u))
	}

	for _, src := range []string{
		`Type`,
		`Int -> Bool`,
		`let T = Int in let x : T = 5 in x`,
		`let F = fun (b : Bool) -> if b then Int else String in let x : F false = "s" in x`,
		`let F = fun (b : Bool) -> if b then Int else String in F true`,
		`let app = fun (f : Type -> Type) -> fun (t : Type) -> f t in app (fun (x : Type) -> List x) Int`,
		`let T = Int in let id = fun (t : Type) -> fun (x : t) -> x in id T 3`,
		`let x : {a : Int} = {a = 1} in x.a`,
	} {
		u := mustLower(t, pipeline.Dependent, src)
		if err := fomega.Check(u); err != nil {
			t.Errorf("%q: %v", src, err)
		}
	}
}

func TestInvariantViolation(t *testing.T) {
	sp := source.Span{File: "bad.ll", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 2}
	// a Var nobody binds
	root := &typedast.Expr{ID: 1, Kind: typedast.ExprVar, Span: sp, Type: typedast.Int(), Data: typedast.VarData{Name: "ghost"}}
	u := &typedast.Unit{File: "bad.ll", Config: pipeline.Default(), Root: root, Scheme: typedast.Mono(typedast.Int())}
	_, err := Lower(u)
	var iv *InvariantViolation
	if !errors.As(err, &iv) {
		t.Fatalf("expected InvariantViolation, got %v", err)
	}
	if iv.Node != 1 || iv.Stack == "" || !strings.Contains(iv.Detail, "ghost") {
		t.Fatalf("violation = %+v", iv)
	}
	if d := iv.Diagnostic(); d.Code != diag.LowerInvariantViolation || d.Stage != diag.StageLower || d.NodeID != 1 {
		t.Fatalf("diagnostic = %+v", d)
	}

	// a literal that claims the wrong type fails the consistency check
	bad := &typedast.Expr{ID: 1, Kind: typedast.ExprLit, Span: sp, Type: typedast.Bool(), Data: typedast.LitData{Lit: ast.LitData{Kind: ast.LitInt, Int: 1}}}
	if _, err := Lower(&typedast.Unit{Config: pipeline.Default(), Root: bad, Scheme: typedast.Mono(typedast.Bool())}); !errors.As(err, &iv) {
		t.Fatalf("mistyped literal: %v", err)
	}

	// nil data panics inside lowering and is recovered
	odd := &typedast.Expr{ID: 1, Kind: typedast.ExprApp, Span: sp, Type: typedast.Int(), Data: typedast.AppData{}}
	if _, err := Lower(&typedast.Unit{Config: pipeline.Default(), Root: odd, Scheme: typedast.Mono(typedast.Int())}); !errors.As(err, &iv) {
		t.Fatalf("panic not recovered: %v", err)
	}
}
