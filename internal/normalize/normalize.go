// Package normalize reduces type-level terms to normal form for the dependent
// checker: beta, eta, delta through let definitions, and folding of if,
// field projection and literal primitives. Every reduction spends one unit of
// fuel; running dry is reported as ErrNonConvergent.
package normalize

import (
	"errors"
	"fmt"

	"langlang/internal/ast"
	"langlang/internal/prim"
)

var ErrNonConvergent = errors.New("normalization did not converge")

// MaxTermSize bounds intermediate terms; growing past it counts as divergence.
const MaxTermSize = 1 << 16

// Def is one entry of the lexical scope. A nil Value marks an opaque binder
// (a lambda parameter) that shadows outer definitions of the same name.
type Def struct {
	Name  string
	Value *ast.Expr
}

// ErrorDetail describes why normalization stopped.
type ErrorDetail struct {
	Fuel  int
	Steps int
	Term  *ast.Expr
	Size  bool
}

func (e *ErrorDetail) Error() string {
	if e.Size {
		return fmt.Sprintf("%s: term grew past %d nodes after %d steps", ErrNonConvergent, MaxTermSize, e.Steps)
	}
	return fmt.Sprintf("%s: fuel of %d steps exhausted", ErrNonConvergent, e.Fuel)
}

func (e *ErrorDetail) Unwrap() error { return ErrNonConvergent }

type outOfFuel struct{ detail *ErrorDetail }

type normalizer struct {
	fuel  int
	steps int
	scope []Def
	// nf of scope[i].Value, filled lazily; valid for one Normalize call
	memo map[int]*ast.Expr
}

// Normalize returns the normal form of e in scope. Definitions later in scope
// shadow earlier ones.
func Normalize(e *ast.Expr, scope []Def, fuel int) (*ast.Expr, error) {
	out, _, err := Steps(e, scope, fuel)
	return out, err
}

// Steps is Normalize that also reports the number of reductions spent.
func Steps(e *ast.Expr, scope []Def, fuel int) (out *ast.Expr, steps int, err error) {
	n := &normalizer{fuel: fuel, scope: scope, memo: make(map[int]*ast.Expr)}
	defer func() {
		if r := recover(); r != nil {
			oof, ok := r.(outOfFuel)
			if !ok {
				panic(r)
			}
			out, steps, err = nil, n.steps, oof.detail
		}
	}()
	out = n.nf(n.close(e, len(scope)))
	return out, n.steps, nil
}

// Equivalent reports whether a and b have alpha-equivalent normal forms.
func Equivalent(a, b *ast.Expr, scope []Def, fuel int) (bool, error) {
	na, err := Normalize(a, scope, fuel)
	if err != nil {
		return false, err
	}
	nb, err := Normalize(b, scope, fuel)
	if err != nil {
		return false, err
	}
	return ast.AlphaEqual(na, nb), nil
}

func (n *normalizer) tick(e *ast.Expr) {
	n.steps++
	if n.steps > n.fuel {
		panic(outOfFuel{&ErrorDetail{Fuel: n.fuel, Steps: n.steps, Term: e}})
	}
}

func (n *normalizer) guardSize(e *ast.Expr) {
	if ast.Count(e) > MaxTermSize {
		panic(outOfFuel{&ErrorDetail{Fuel: n.fuel, Steps: n.steps, Term: e, Size: true}})
	}
}

// close substitutes the visible definitions of scope[:upto] into e.
func (n *normalizer) close(e *ast.Expr, upto int) *ast.Expr {
	seen := make(map[string]bool)
	for i := upto - 1; i >= 0; i-- {
		d := n.scope[i]
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		if d.Value == nil || !occursFree(e, d.Name) {
			continue
		}
		var hits int
		e, hits = Subst(e, d.Name, n.def(i))
		for range hits {
			n.tick(e)
		}
		n.guardSize(e)
	}
	return e
}

func (n *normalizer) def(i int) *ast.Expr {
	if v, ok := n.memo[i]; ok {
		return v
	}
	v := n.nf(n.close(n.scope[i].Value, i))
	n.memo[i] = v
	return v
}

func (n *normalizer) beta(e *ast.Expr, name string, body, arg *ast.Expr) *ast.Expr {
	n.tick(e)
	out, _ := Subst(body, name, arg)
	n.guardSize(out)
	return out
}

func (n *normalizer) whnf(e *ast.Expr) *ast.Expr {
	for {
		if e == nil {
			return nil
		}
		sp := e.Span
		switch d := e.Data.(type) {
		case ast.AppData:
			fn := n.whnf(d.Fn)
			if lam, ok := fn.Data.(ast.LambdaData); ok {
				e = n.beta(e, lam.Param, lam.Body, d.Arg)
				continue
			}
			return ast.App(sp, fn, d.Arg)
		case ast.LetData:
			e = n.beta(e, d.Name, d.Body, d.Value)
		case ast.AnnotData:
			e = d.Expr
		case ast.IfData:
			cond := n.whnf(d.Cond)
			if b, ok := boolLit(cond); ok {
				n.tick(e)
				if b {
					e = d.Then
				} else {
					e = d.Else
				}
				continue
			}
			return ast.If(sp, cond, d.Then, d.Else)
		case ast.FieldData:
			rec := n.whnf(d.Record)
			if r, ok := rec.Data.(ast.RecordData); ok {
				if v, found := lookupField(r.Fields, d.Label); found {
					n.tick(e)
					e = v
					continue
				}
			}
			return ast.Field(sp, rec, d.Label)
		case ast.BinaryData:
			if d.Op == ast.OpAnd || d.Op == ast.OpOr {
				left := n.whnf(d.Left)
				b, ok := boolLit(left)
				if !ok {
					return ast.Binary(sp, d.Op, left, d.Right)
				}
				n.tick(e)
				if b == (d.Op == ast.OpOr) {
					return ast.Bool(sp, b)
				}
				e = d.Right
				continue
			}
			left, right := n.nf(d.Left), n.nf(d.Right)
			if lit, ok := n.fold(e, d.Op.Prim(), left, right); ok {
				return lit
			}
			return ast.Binary(sp, d.Op, left, right)
		case ast.UnaryData:
			operand := n.nf(d.Operand)
			if lit, ok := n.fold(e, d.Op.Prim(), operand); ok {
				return lit
			}
			return ast.Unary(sp, d.Op, operand)
		case ast.PrimData:
			args := make([]*ast.Expr, len(d.Args))
			for i, a := range d.Args {
				args[i] = n.nf(a)
			}
			if lit, ok := n.fold(e, d.Name, args...); ok {
				return lit
			}
			return ast.Prim(sp, d.Name, args...)
		default:
			return e
		}
	}
}

func (n *normalizer) nf(e *ast.Expr) *ast.Expr {
	e = n.whnf(e)
	if e == nil {
		return nil
	}
	sp := e.Span
	switch d := e.Data.(type) {
	case ast.LambdaData:
		var pt *ast.Expr
		if d.ParamType != nil {
			pt = n.nf(d.ParamType)
		}
		body := n.nf(d.Body)
		// eta: fun x -> f x  ==>  f
		if app, ok := body.Data.(ast.AppData); ok {
			if v, ok := app.Arg.Data.(ast.VarData); ok && v.Name == d.Param && !occursFree(app.Fn, d.Param) {
				n.tick(e)
				return app.Fn
			}
		}
		return ast.Lambda(sp, d.Param, pt, body)
	case ast.AppData:
		return ast.App(sp, n.nf(d.Fn), n.nf(d.Arg))
	case ast.IfData:
		return ast.If(sp, n.nf(d.Cond), n.nf(d.Then), n.nf(d.Else))
	case ast.FieldData:
		return ast.Field(sp, n.nf(d.Record), d.Label)
	case ast.BinaryData:
		if d.Op == ast.OpAnd || d.Op == ast.OpOr {
			return ast.Binary(sp, d.Op, n.nf(d.Left), n.nf(d.Right))
		}
		return e
	case ast.RecordData:
		return ast.Record(sp, n.fields(d.Fields)...)
	case ast.RecordTypeData:
		return ast.RecordType(sp, n.fields(d.Fields)...)
	case ast.ListData:
		elems := make([]*ast.Expr, len(d.Elems))
		for i, x := range d.Elems {
			elems[i] = n.nf(x)
		}
		return ast.List(sp, elems...)
	case ast.PiData:
		return ast.Pi(sp, d.Binder, n.nf(d.Domain), n.nf(d.Codomain))
	case ast.ForallData:
		return ast.Forall(sp, d.Vars, n.nf(d.Body))
	}
	return e
}

func (n *normalizer) fields(fs []ast.FieldInit) []ast.FieldInit {
	out := make([]ast.FieldInit, len(fs))
	for i, f := range fs {
		out[i] = ast.FieldInit{Label: f.Label, Value: n.nf(f.Value), Span: f.Span}
	}
	return out
}

// fold computes a primitive when every argument is a literal. Partial
// primitives fold only when they succeed; a failing one stays stuck.
func (n *normalizer) fold(e *ast.Expr, name string, args ...*ast.Expr) (*ast.Expr, bool) {
	p, ok := prim.Lookup(name)
	if !ok || !p.Pure() || len(args) != p.Arity() {
		return nil, false
	}
	lits := make([]ast.LitData, len(args))
	for i, a := range args {
		l, ok := a.Data.(ast.LitData)
		if !ok {
			return nil, false
		}
		lits[i] = l
	}
	v, err := prim.Apply(name, lits)
	if err != nil {
		return nil, false
	}
	n.tick(e)
	return &ast.Expr{Kind: ast.ExprLit, Span: e.Span, Data: v}, true
}

func boolLit(e *ast.Expr) (bool, bool) {
	if l, ok := e.Data.(ast.LitData); ok && l.Kind == ast.LitBool {
		return l.Bool, true
	}
	return false, false
}

func lookupField(fs []ast.FieldInit, label string) (*ast.Expr, bool) {
	for _, f := range fs {
		if f.Label == label {
			return f.Value, true
		}
	}
	return nil, false
}
