package check

import (
	"errors"
	"testing"

	"langlang/internal/ast"
	"langlang/internal/parser"
	"langlang/internal/pipeline"
	"langlang/internal/typedast"
)

func parse(t *testing.T, src string) *ast.Unit {
	t.Helper()
	u, bag := parser.ParseSource("c.ll", src)
	if u == nil {
		t.Fatalf("parse %q: %v", src, bag.Items())
	}
	return u
}

func cfgFor(ts pipeline.TypeSystem) pipeline.Config {
	return pipeline.Default().WithTypeSystem(ts)
}

func mustCheck(t *testing.T, ts pipeline.TypeSystem, src string) *typedast.Unit {
	t.Helper()
	out, err := Check(parse(t, src), cfgFor(ts), Options{})
	if err != nil {
		t.Fatalf("check %q under %s: %v", src, ts, err)
	}
	return out
}

func checkErr(t *testing.T, cfg pipeline.Config, src string) *TypeError {
	t.Helper()
	out, err := Check(parse(t, src), cfg, Options{})
	if err == nil {
		t.Fatalf("check %q: expected error, got %s", src, typedast.SchemeString(out.Scheme))
	}
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("check %q: not a TypeError: %v", src, err)
	}
	return te
}

func TestDynamicAcceptsIllTyped(t *testing.T) {
	u := mustCheck(t, pipeline.Dynamic, `let x = 1 in x + "a"`)
	typedast.Inspect(u.Root, func(x *typedast.Expr) bool {
		if x.Type.Kind != typedast.TypeDyn {
			t.Fatalf("node #%d %s has type %s", x.ID, x.Kind, typedast.TypeString(x.Type))
		}
		return true
	})
	te := checkErr(t, cfgFor(pipeline.Dynamic), `x + 1`)
	if te.Kind != ErrUnresolvedReference || te.Name != "x" {
		t.Fatalf("got %v", te)
	}
}

func TestInferredIdentity(t *testing.T) {
	u := mustCheck(t, pipeline.Inferred, `fun x -> x`)
	if got := typedast.SchemeString(u.Scheme); got != "forall a. a -> a" {
		t.Fatalf("scheme = %s", got)
	}

	u = mustCheck(t, pipeline.Inferred, `let id = fun x -> x in id 5`)
	if !u.Root.Type.IsCon(typedast.ConInt) {
		t.Fatalf("root type = %s", typedast.TypeString(u.Root.Type))
	}
	let := u.Root.Data.(typedast.LetData)
	if got := typedast.SchemeString(let.Scheme); got != "forall a. a -> a" {
		t.Fatalf("id scheme = %s", got)
	}
	fn := let.Body.Data.(typedast.AppData).Fn.Data.(typedast.VarData)
	if len(fn.TypeArgs) != 1 || !fn.TypeArgs[0].IsCon(typedast.ConInt) {
		t.Fatalf("instantiation = %v", fn.TypeArgs)
	}
}

func TestInferredSchemes(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{`let getA = fun r -> r.a in getA`, "forall a r. {a : a | r} -> a"},
		{`let id = fun x -> x in id`, "forall a. a -> a"},
		{`let id = fun x -> x in id id`, "Unit -> Unit"},
		{`let getA = fun r -> r.a in getA {a = 1, b = true}`, "Int"},
		{`fun f -> fun x -> f (f x)`, "forall a. (a -> a) -> a -> a"},
		{`let f = (fun x -> x) (fun y -> y) in f`, "Unit -> Unit"},
		{`let k = fun x -> fun y -> x in k 1 true`, "Int"},
		{`let f : forall a. a -> a = fun x -> x in f "s"`, "String"},
		{`fun x -> x == x`, "forall a. a -> Bool"},
		{`[1, 2, 3]`, "List Int"},
		{`[]`, "forall a. List a"},
		{`let p = {x = 1, y = "s"} in p.y ++ "!"`, "String"},
		{`if 1 < 2 && true then @strlen("ab") else -1`, "Int"},
		{`@upper("x")`, "String"},
	}
	for _, tc := range cases {
		u := mustCheck(t, pipeline.Inferred, tc.src)
		if got := typedast.SchemeString(u.Scheme); got != tc.want {
			t.Errorf("%s: scheme = %s, want %s", tc.src, got, tc.want)
		}
	}
}

func TestInferredErrors(t *testing.T) {
	cfg := cfgFor(pipeline.Inferred)
	cases := []struct {
		src  string
		kind ErrorKind
	}{
		{`1 + "a"`, ErrUnificationConflict},
		{`{a = 1}.b`, ErrUnificationConflict},
		{`fun x -> x x`, ErrUnificationConflict},
		{`let f = fun x -> x in f 1 2`, ErrUnificationConflict},
		{`y`, ErrUnresolvedReference},
		{`@nope(1)`, ErrUnresolvedReference},
		{`@strlen(1, 2)`, ErrMalformed},
		{`{a = 1, a = 2}`, ErrMalformed},
		{`fun (x : Any) -> x`, ErrMalformed},
		{`Int`, ErrMalformed},
		{`fun (x : Type) -> x`, ErrMalformed},
		{`let f : forall a. a -> a = fun x -> 1 in f`, ErrUnificationConflict},
	}
	for _, tc := range cases {
		te := checkErr(t, cfg, tc.src)
		if te.Kind != tc.kind {
			t.Errorf("%s: kind = %s, want %s (%v)", tc.src, te.Kind, tc.kind, te)
		}
		if got := te.Diagnostic().Code; got != tc.kind.Code() {
			t.Errorf("%s: code = %v", tc.src, got)
		}
	}

	te := checkErr(t, cfg, `1 + "a"`)
	if !te.Expected.IsCon(typedast.ConInt) || !te.Actual.IsCon(typedast.ConString) {
		t.Fatalf("conflict types: expected %s, actual %s", typedast.TypeString(te.Expected), typedast.TypeString(te.Actual))
	}
	if te.Span.StartCol != 5 {
		t.Fatalf("conflict span = %v", te.Span)
	}
}

func countCasts(u *typedast.Unit) int {
	n := 0
	typedast.Inspect(u.Root, func(x *typedast.Expr) bool {
		if x.Kind == typedast.ExprCast {
			n++
		}
		return true
	})
	return n
}

func TestGradualBoundary(t *testing.T) {
	u := mustCheck(t, pipeline.Gradual, `let f = fun (x : Int) -> x + 1 in fun y -> f y`)
	if countCasts(u) == 0 {
		t.Fatalf("expected a cast at the Dyn -> Int boundary:\n%s", typedast.Dump(u))
	}
	var found bool
	typedast.Inspect(u.Root, func(x *typedast.Expr) bool {
		if d, ok := x.Data.(typedast.CastData); ok && d.From.Kind == typedast.TypeDyn && d.To.IsCon(typedast.ConInt) {
			found = true
		}
		return true
	})
	if !found {
		t.Fatalf("no Dyn => Int cast:\n%s", typedast.Dump(u))
	}

	// fully annotated code needs no casts
	u = mustCheck(t, pipeline.Gradual, `let f = fun (x : Int) -> x + 1 in f 2`)
	if n := countCasts(u); n != 0 {
		t.Fatalf("identity casts survived: %d\n%s", n, typedast.Dump(u))
	}

	u = mustCheck(t, pipeline.Gradual, `let f : forall a. a -> a = fun x -> x in f 1`)
	if !u.Root.Type.IsCon(typedast.ConInt) {
		t.Fatalf("polymorphic annotation: %s", typedast.TypeString(u.Root.Type))
	}

	te := checkErr(t, cfgFor(pipeline.Gradual), `(1 : String)`)
	if te.Kind != ErrUnificationConflict {
		t.Fatalf("precise region must still be checked: %v", te)
	}
}

func TestDependent(t *testing.T) {
	cases := []struct {
		src, want string
	}{
		{`let id = fun (t : Type) -> fun (x : t) -> x in id`, "(t : Type) -> t -> t"},
		{`let id = fun (t : Type) -> fun (x : t) -> x in id Int 5`, "Int"},
		{`let T = Int in let x : T = 5 in x`, "Int"},
		{`let F = fun (b : Bool) -> if b then Int else String in let x : F false = "s" in x`, "String"},
		{`Type`, "Type"},
		{`Int -> Bool`, "Type"},
		{`let x : {a : Int} = {a = 1} in x.a`, "Int"},
	}
	for _, tc := range cases {
		u := mustCheck(t, pipeline.Dependent, tc.src)
		if got := typedast.SchemeString(u.Scheme); got != tc.want {
			t.Errorf("%s: type = %s, want %s", tc.src, got, tc.want)
		}
	}

	cfg := cfgFor(pipeline.Dependent)
	if te := checkErr(t, cfg, `fun x -> x`); te.Kind != ErrMalformed {
		t.Fatalf("missing annotation: %v", te)
	}
	if te := checkErr(t, cfg, `let x : 1 = 1 in x`); te.Kind != ErrUnificationConflict {
		t.Fatalf("term as type: %v", te)
	}
	if te := checkErr(t, cfg, `let F = fun (b : Bool) -> if b then Int else String in let x : F true = "s" in x`); te.Kind != ErrUnificationConflict {
		t.Fatalf("computed type mismatch: %v", te)
	}
}

func TestDependentNonConvergent(t *testing.T) {
	src := `let t : (fun (f : Type) -> f f) (fun (f : Type) -> f f) = 1 in t`
	cfg := cfgFor(pipeline.Dependent)
	_, err := Check(parse(t, src), cfg, Options{Limits: pipeline.Limits{NormalizeFuel: 200}})
	if !IsKind(err, ErrNonConvergent) {
		t.Fatalf("expected non-convergent error, got %v", err)
	}
}

func TestPurity(t *testing.T) {
	cases := []struct {
		purity pipeline.PurityLevel
		src    string
		ok     bool
	}{
		{pipeline.Pure, `@print("x")`, false},
		{pipeline.Pure, `@strlen("x")`, true},
		{pipeline.Sandbox, `@print("x")`, true},
		{pipeline.Sandbox, `@readFile("/etc/passwd")`, false},
		{pipeline.Unrestricted, `@writeFile("o", "x")`, true},
	}
	for _, ts := range []pipeline.TypeSystem{pipeline.Dynamic, pipeline.Inferred, pipeline.Gradual, pipeline.Dependent} {
		for _, tc := range cases {
			cfg := cfgFor(ts).WithPurity(tc.purity)
			_, err := Check(parse(t, tc.src), cfg, Options{})
			if tc.ok && err != nil {
				t.Errorf("%s/%s %s: %v", ts, tc.purity, tc.src, err)
			}
			if !tc.ok && !IsKind(err, ErrEffectNotPermitted) {
				t.Errorf("%s/%s %s: expected effect error, got %v", ts, tc.purity, tc.src, err)
			}
		}
	}

	cfg := cfgFor(pipeline.Inferred)
	if _, err := Check(parse(t, `@print("x")`), cfg, Options{Allow: pipeline.Allowlist{"env"}}); !IsKind(err, ErrEffectNotPermitted) {
		t.Fatalf("custom allow list ignored: %v", err)
	}
}

func TestDeterministic(t *testing.T) {
	src := `let pair = fun a -> fun b -> {fst = a, snd = b} in let p = pair 1 "x" in {n = p.fst + 1, s = p.snd, f = fun r -> r.z}`
	for _, ts := range []pipeline.TypeSystem{pipeline.Dynamic, pipeline.Inferred, pipeline.Gradual} {
		a := mustCheck(t, ts, src)
		b := mustCheck(t, ts, src)
		if !typedast.EqualUnit(a, b) {
			t.Fatalf("%s: checking is not deterministic", ts)
		}
		data, err := typedast.Marshal(a)
		if err != nil {
			t.Fatal(err)
		}
		back, err := typedast.Unmarshal(data)
		if err != nil {
			t.Fatal(err)
		}
		if !typedast.EqualUnit(a, back) {
			t.Fatalf("%s: round trip mismatch", ts)
		}
	}
}

func TestEraseRoundTrip(t *testing.T) {
	src := `let f = fun (x : Int) -> x + 1 in f 2`
	u := mustCheck(t, pipeline.Gradual, src)
	if got := ast.Print(typedast.Erase(u.Root)); got != src {
		t.Fatalf("erase = %q", got)
	}
}
