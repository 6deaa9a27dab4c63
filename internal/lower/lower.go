// Package lower translates a checked TypedAST into the F-omega core.
//
// Lowering is total on checker output. Schemes become type abstractions,
// instantiations become type applications and every place where a Dyn meets
// a precise type becomes an explicit Cast. The result is re-validated with
// the core checker before it is returned.
package lower

import (
	"errors"
	"fmt"
	"runtime/debug"

	"langlang/internal/ast"
	"langlang/internal/fomega"
	"langlang/internal/prim"
	"langlang/internal/typedast"
)

type lowerer struct{}

// fail aborts lowering; Lower turns the panic into an error.
func (l *lowerer) fail(node typedast.NodeID, format string, args ...any) {
	panic(&InvariantViolation{Node: node, Detail: fmt.Sprintf(format, args...), Stack: string(debug.Stack())})
}

// Lower returns a validated core unit or an *InvariantViolation.
func Lower(u *typedast.Unit) (out *fomega.Unit, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		out = nil
		if iv, ok := r.(*InvariantViolation); ok {
			err = iv
			return
		}
		err = &InvariantViolation{Detail: fmt.Sprintf("panic: %v", r), Stack: string(debug.Stack())}
	}()
	if u == nil || u.Root == nil || u.Scheme == nil {
		return nil, &InvariantViolation{Detail: "empty unit"}
	}
	l := &lowerer{}
	term, ty := l.generalized(u.Root, u.Scheme, nil)
	out = &fomega.Unit{File: u.File, Config: u.Config, Term: term, Type: ty}
	if err := fomega.Check(out); err != nil {
		iv := &InvariantViolation{Detail: "core check failed", Err: err}
		var ce *fomega.CheckError
		if errors.As(err, &ce) {
			iv.Node = typedast.NodeID(ce.Origin)
		}
		return nil, iv
	}
	return out, nil
}

// generalized lowers x under the type abstractions of s.
func (l *lowerer) generalized(x *typedast.Expr, s *typedast.Scheme, en *env) (*fomega.Term, *fomega.Type) {
	inner := en
	for _, v := range s.Vars {
		inner = inner.bind(binding{name: v.Name, kind: bindTyVar})
	}
	term := l.expect(x, l.typ(s.Body, inner), inner)
	o := origin(x)
	for i := len(s.Vars) - 1; i >= 0; i-- {
		term = fomega.TyAbs(o, s.Vars[i].Name, varKind(s.Vars[i].Kind), term)
	}
	return term, l.scheme(s, en)
}

func origin(x *typedast.Expr) fomega.Origin { return fomega.Origin(x.ID) }

// expect lowers x and coerces the result to want.
func (l *lowerer) expect(x *typedast.Expr, want *fomega.Type, en *env) *fomega.Term {
	t, have := l.lower(x, en)
	return l.coerce(x, t, have, want)
}

// coerce inserts a cast when the types differ only where Dyn occurs.
func (l *lowerer) coerce(x *typedast.Expr, t *fomega.Term, have, want *fomega.Type) *fomega.Term {
	if fomega.EqualType(have, want) {
		return t
	}
	if !fomega.Consistent(have, want) {
		l.fail(x.ID, "%s lowers to %s, node type is %s", x.Kind, have, want)
	}
	return fomega.Cast(origin(x), t, have, want)
}

// lower returns the core term for x together with the node's core type.
func (l *lowerer) lower(x *typedast.Expr, en *env) (*fomega.Term, *fomega.Type) {
	if x == nil {
		l.fail(typedast.NoNode, "missing expression")
	}
	want := l.typ(x.Type, en)
	t, have := l.build(x, want, en)
	return l.coerce(x, t, have, want), want
}

// build lowers x; want is x's own type, used where the core needs an
// explicit annotation the TypedAST keeps on the node.
func (l *lowerer) build(x *typedast.Expr, want *fomega.Type, en *env) (*fomega.Term, *fomega.Type) {
	o := origin(x)
	switch d := x.Data.(type) {
	case typedast.LitData:
		return fomega.Lit(o, d.Lit), litType(d.Lit.Kind)

	case typedast.VarData:
		b, ok := en.lookup(d.Name)
		if !ok {
			l.fail(x.ID, "unbound variable %s", d.Name)
		}
		if b.kind == bindTyVar {
			k := fomega.Star()
			if isSort(x.Type) {
				k = kindOf(x.Type)
			}
			return typeTerm(o, fomega.TVar(d.Name), k)
		}
		t, ty := fomega.Var(o, d.Name), b.typ
		for _, a := range d.TypeArgs {
			fr := fomega.Reduce(ty)
			if fr.Tag != fomega.TypeForall {
				l.fail(x.ID, "%s has type %s and cannot be instantiated", d.Name, ty)
			}
			arg := l.typ(a, en)
			t = fomega.TyApp(o, t, arg)
			ty = fomega.SubstType(fr.Body, fr.Name, arg)
		}
		return t, ty

	case typedast.LambdaData:
		if isSort(d.ParamType) {
			k := kindOf(d.ParamType)
			body, bt := l.lower(d.Body, en.bind(binding{name: d.Param, kind: bindTyVar}))
			return fomega.TyAbs(o, d.Param, k, body), fomega.Forall(d.Param, k, bt)
		}
		pt := l.typ(d.ParamType, en)
		body, bt := l.lower(d.Body, en.bind(binding{name: d.Param, typ: pt}))
		return fomega.Lam(o, d.Param, pt, body), fomega.Arrow(pt, bt)

	case typedast.AppData:
		return l.app(x, d, en)

	case typedast.LetData:
		value, vt := l.generalized(d.Value, d.Scheme, en)
		b := binding{name: d.Name, typ: vt}
		if d.Scheme.IsMono() && isSort(d.Scheme.Body) {
			b.alias = l.reify(d.Value, en)
		}
		body, bt := l.lower(d.Body, en.bind(b))
		return fomega.Let(o, d.Name, vt, value, body), bt

	case typedast.RecordData:
		fields := make([]fomega.Field, len(d.Fields))
		types := make([]fomega.FieldType, len(d.Fields))
		for i, f := range d.Fields {
			v, t := l.lower(f.Value, en)
			fields[i] = fomega.Field{Label: f.Label, Value: v}
			types[i] = fomega.FieldType{Label: f.Label, Type: t}
		}
		return fomega.Record(o, fields...), fomega.TRecord(types, nil)

	case typedast.FieldData:
		rec, rt := l.lower(d.Record, en)
		switch r := fomega.Reduce(rt); {
		case r.Tag == fomega.TypeDyn:
			view := fomega.TRecord([]fomega.FieldType{{Label: d.Label, Type: fomega.Dyn()}}, nil)
			return fomega.FieldOf(o, fomega.Cast(o, rec, rt, view), d.Label), fomega.Dyn()
		case r.Tag == fomega.TypeRecord:
			ft, ok := r.Field(d.Label)
			if !ok {
				l.fail(x.ID, "no field %q in %s", d.Label, rt)
			}
			return fomega.FieldOf(o, rec, d.Label), ft
		}
		l.fail(x.ID, "field access on %s", rt)

	case typedast.IfData:
		cond := l.expect(d.Cond, fomega.Bool(), en)
		return fomega.If(o, cond, l.expect(d.Then, want, en), l.expect(d.Else, want, en)), want

	case typedast.AnnotData:
		return l.expect(d.Expr, want, en), want

	case typedast.BinaryData:
		return l.binary(x, d, en)

	case typedast.UnaryData:
		p := catalog(x, d.Op.Prim(), l)
		arg := l.expect(d.Operand, fomega.ShapeType(p.Params[0], nil), en)
		return fomega.Prim(o, p.Name, nil, arg), fomega.ShapeType(p.Result, nil)

	case typedast.ListData:
		elem := fomega.Dyn()
		if r := fomega.Reduce(want); r.Tag == fomega.TypeList {
			elem = r.Elem
		}
		elems := make([]*fomega.Term, len(d.Elems))
		for i, it := range d.Elems {
			elems[i] = l.expect(it, elem, en)
		}
		return fomega.List(o, elem, elems...), fomega.TList(elem)

	case typedast.PrimData:
		return l.prim(x, d, en)

	case typedast.CastData:
		from, to := l.typ(d.From, en), l.typ(d.To, en)
		inner := l.expect(d.Expr, from, en)
		if fomega.EqualType(from, to) {
			return inner, to
		}
		return fomega.Cast(o, inner, from, to), to

	case typedast.TypeValueData:
		return fomega.TypeLit(o, l.typ(d.Denotes, en)), fomega.TypeType()
	}
	l.fail(x.ID, "unexpected %s node", x.Kind)
	return nil, nil
}

func (l *lowerer) app(x *typedast.Expr, d typedast.AppData, en *env) (*fomega.Term, *fomega.Type) {
	o := origin(x)
	fn, ft := l.lower(d.Fn, en)
	fr := fomega.Reduce(ft)
	switch {
	case fr.Tag == fomega.TypeForall && isSort(d.Arg.Type):
		arg := l.reify(d.Arg, en)
		if arg == nil {
			arg = dynOfKind(fr.Kind, fomega.FreeTypeVars(fr.Body))
		}
		return fomega.TyApp(o, fn, arg), fomega.SubstType(fr.Body, fr.Name, arg)
	case fr.Tag == fomega.TypeArrow:
		return fomega.App(o, fn, l.expect(d.Arg, fr.Param, en)), fr.Result
	case fr.Tag == fomega.TypeDyn:
		dynFn := fomega.Arrow(fomega.Dyn(), fomega.Dyn())
		return fomega.App(o, fomega.Cast(o, fn, ft, dynFn), l.expect(d.Arg, fomega.Dyn(), en)), fomega.Dyn()
	}
	l.fail(x.ID, "applying a term of type %s", ft)
	return nil, nil
}

func (l *lowerer) binary(x *typedast.Expr, d typedast.BinaryData, en *env) (*fomega.Term, *fomega.Type) {
	o := origin(x)
	switch d.Op {
	case ast.OpAnd, ast.OpOr:
		left := l.expect(d.Left, fomega.Bool(), en)
		right := l.expect(d.Right, fomega.Bool(), en)
		if d.Op == ast.OpAnd {
			return fomega.If(o, left, right, boolLit(o, false)), fomega.Bool()
		}
		return fomega.If(o, left, boolLit(o, true), right), fomega.Bool()
	case ast.OpEq, ast.OpNe:
		operand := l.typ(d.Left.Type, en)
		left := l.expect(d.Left, operand, en)
		right := l.expect(d.Right, operand, en)
		return fomega.Prim(o, d.Op.Prim(), []*fomega.Type{operand}, left, right), fomega.Bool()
	}
	p := catalog(x, d.Op.Prim(), l)
	left := l.expect(d.Left, fomega.ShapeType(p.Params[0], nil), en)
	right := l.expect(d.Right, fomega.ShapeType(p.Params[1], nil), en)
	return fomega.Prim(o, p.Name, nil, left, right), fomega.ShapeType(p.Result, nil)
}

// prim lowers a named call. A polymorphic primitive is instantiated at the
// type of its first argument in the variable position.
func (l *lowerer) prim(x *typedast.Expr, d typedast.PrimData, en *env) (*fomega.Term, *fomega.Type) {
	p := catalog(x, d.Name, l)
	if len(d.Args) != p.Arity() {
		l.fail(x.ID, "@%s with %d arguments", d.Name, len(d.Args))
	}
	var targ *fomega.Type
	var targs []*fomega.Type
	if p.Poly() {
		for i, s := range p.Params {
			if s == prim.Var {
				targ = l.typ(d.Args[i].Type, en)
				break
			}
		}
		targs = []*fomega.Type{targ}
	}
	args := make([]*fomega.Term, len(d.Args))
	for i, a := range d.Args {
		args[i] = l.expect(a, fomega.ShapeType(p.Params[i], targ), en)
	}
	return fomega.Prim(origin(x), p.Name, targs, args...), fomega.ShapeType(p.Result, targ)
}

func catalog(x *typedast.Expr, name string, l *lowerer) *prim.Prim {
	p, ok := prim.Lookup(name)
	if !ok {
		l.fail(x.ID, "unknown primitive %q", name)
	}
	return p
}

func litType(k ast.LitKind) *fomega.Type {
	switch k {
	case ast.LitInt:
		return fomega.Int()
	case ast.LitBool:
		return fomega.Bool()
	case ast.LitString:
		return fomega.String()
	}
	return fomega.UnitType()
}

func boolLit(o fomega.Origin, v bool) *fomega.Term {
	return fomega.Lit(o, ast.LitData{Kind: ast.LitBool, Bool: v})
}
