package check

import (
	"errors"

	"langlang/internal/ast"
	"langlang/internal/normalize"
	"langlang/internal/source"
	"langlang/internal/typedast"
)

// Dependent mode: types are terms of type Type (and Type : Type). Annotations
// are normalized first, then checked to have sort Type, then reified.

// defs flattens env into a normalizer scope, outermost first.
func defs(env *scope) []normalize.Def {
	var out []normalize.Def
	for it := env; it != nil; it = it.parent {
		out = append(out, normalize.Def{Name: it.name, Value: it.def})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (c *checker) normalize(e *ast.Expr, env *scope) (*ast.Expr, error) {
	nf, err := normalize.Normalize(e, defs(env), c.limits.NormalizeFuel)
	if err != nil {
		if errors.Is(err, normalize.ErrNonConvergent) {
			return nil, &TypeError{Kind: ErrNonConvergent, Span: e.Span, Message: err.Error(), Err: err}
		}
		return nil, err
	}
	return nf, nil
}

// depType elaborates a type expression.
func (c *checker) depType(e *ast.Expr, env *scope) (*typedast.Type, error) {
	nf, err := c.normalize(e, env)
	if err != nil {
		return nil, err
	}
	x, err := c.dependent(nf, env)
	if err != nil {
		return nil, err
	}
	if x.Type.Kind != typedast.TypeUniverse {
		return nil, conflict(e.Span, typedast.Universe(), x.Type, "expected a type, found a term of type %s", typedast.TypeString(x.Type))
	}
	switch d := x.Data.(type) {
	case typedast.TypeValueData:
		return d.Denotes, nil
	case typedast.VarData:
		return typedast.Param(d.Name), nil
	}
	// stuck: the type is the term itself
	return typedast.TermType(x), nil
}

// convertible decides type equality by comparing normal forms up to
// alpha-equivalence.
func (c *checker) convertible(a, b *typedast.Type, env *scope) (bool, error) {
	if typedast.EqualType(a, b) {
		return true, nil
	}
	sp := spanOf(a)
	ok, err := normalize.Equivalent(typedast.TypeToAST(a, sp), typedast.TypeToAST(b, sp), defs(env), c.limits.NormalizeFuel)
	if err != nil && errors.Is(err, normalize.ErrNonConvergent) {
		return false, &TypeError{Kind: ErrNonConvergent, Span: sp, Message: err.Error(), Err: err}
	}
	return ok, err
}

func spanOf(t *typedast.Type) (sp source.Span) {
	if t != nil && t.Kind == typedast.TypeTerm && t.Term != nil {
		return t.Term.Span
	}
	return sp
}

// depCheck checks e against want.
func (c *checker) depCheck(e *ast.Expr, want *typedast.Type, env *scope) (*typedast.Expr, error) {
	if l, ok := e.Data.(ast.ListData); ok && len(l.Elems) == 0 && want.Kind == typedast.TypeList {
		return node(typedast.ExprList, e, want, typedast.ListData{}), nil
	}
	x, err := c.dependent(e, env)
	if err != nil {
		return nil, err
	}
	ok, err := c.convertible(x.Type, want, env)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflict(e.Span, want, x.Type, "type mismatch: expected %s, found %s", typedast.TypeString(want), typedast.TypeString(x.Type))
	}
	return x, nil
}

// mentions reports whether name occurs free in t, including inside stuck terms.
func mentions(t *typedast.Type, name string) bool {
	found := false
	var walk func(t *typedast.Type)
	walk = func(t *typedast.Type) {
		if t == nil || found {
			return
		}
		switch t.Kind {
		case typedast.TypeParam:
			found = t.Name == name
		case typedast.TypeFun:
			walk(t.Param)
			if t.Binder != name {
				walk(t.Result)
			}
		case typedast.TypeList:
			walk(t.Elem)
		case typedast.TypeRecord:
			for _, f := range t.Fields {
				walk(f.Type)
			}
			walk(t.Rest)
		case typedast.TypeTerm:
			_, found = normalize.FreeVars(typedast.Erase(t.Term))[name]
		}
	}
	walk(t)
	return found
}

// depFun builds a function type, keeping the binder only when the result
// depends on it.
func depFun(binder string, dom, cod *typedast.Type) *typedast.Type {
	if binder != "" && mentions(cod, binder) {
		return typedast.Pi(binder, dom, cod)
	}
	return typedast.Fun(dom, cod)
}

func typeValue(e *ast.Expr, t *typedast.Type) *typedast.Expr {
	return node(typedast.ExprTypeValue, e, typedast.Universe(), typedast.TypeValueData{Denotes: t})
}

func (c *checker) dependent(e *ast.Expr, env *scope) (*typedast.Expr, error) {
	switch d := e.Data.(type) {
	case ast.LitData:
		return node(typedast.ExprLit, e, litType(d.Kind), typedast.LitData{Lit: d}), nil

	case ast.VarData:
		if b, ok := env.lookup(d.Name); ok {
			return node(typedast.ExprVar, e, b.scheme.Body, typedast.VarData{Name: d.Name}), nil
		}
		switch {
		case typedast.IsBaseCon(d.Name):
			return typeValue(e, typedast.Con(d.Name)), nil
		case d.Name == listName:
			return nil, malformed(e.Span, "%s expects an element type", listName)
		case d.Name == anyName:
			return nil, malformed(e.Span, "%s is not available under the %s type system", anyName, c.cfg.TypeSystem)
		}
		return nil, unresolved(e.Span, d.Name)

	case ast.UniverseData:
		return typeValue(e, typedast.Universe()), nil

	case ast.PiData:
		dom, err := c.depType(d.Domain, env)
		if err != nil {
			return nil, err
		}
		inner := env
		if d.Binder != "" {
			inner = env.bind(binding{name: d.Binder, scheme: typedast.Mono(dom)})
		}
		cod, err := c.depType(d.Codomain, inner)
		if err != nil {
			return nil, err
		}
		return typeValue(e, depFun(d.Binder, dom, cod)), nil

	case ast.ForallData:
		inner := env
		for _, v := range d.Vars {
			inner = inner.bind(binding{name: v, scheme: typedast.Mono(typedast.Universe())})
		}
		t, err := c.depType(d.Body, inner)
		if err != nil {
			return nil, err
		}
		for i := len(d.Vars) - 1; i >= 0; i-- {
			t = depFun(d.Vars[i], typedast.Universe(), t)
		}
		return typeValue(e, t), nil

	case ast.RecordTypeData:
		if err := checkLabels(d.Fields); err != nil {
			return nil, err
		}
		fields := make([]typedast.FieldType, 0, len(d.Fields))
		for _, f := range d.Fields {
			t, err := c.depType(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields = append(fields, typedast.FieldType{Label: f.Label, Type: t})
		}
		return typeValue(e, typedast.Record(fields, nil)), nil

	case ast.LambdaData:
		if d.ParamType == nil {
			return nil, malformed(e.Span, "parameter %q needs a type annotation under the dependent type system", d.Param)
		}
		dom, err := c.depType(d.ParamType, env)
		if err != nil {
			return nil, err
		}
		body, err := c.dependent(d.Body, env.bind(binding{name: d.Param, scheme: typedast.Mono(dom)}))
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprLambda, e, depFun(d.Param, dom, body.Type), typedast.LambdaData{
			Param:     d.Param,
			ParamType: dom,
			Annotated: true,
			Body:      body,
		}), nil

	case ast.AppData:
		if fn, ok := d.Fn.Data.(ast.VarData); ok && fn.Name == listName {
			if _, bound := env.lookup(listName); !bound {
				el, err := c.depType(d.Arg, env)
				if err != nil {
					return nil, err
				}
				return typeValue(e, typedast.List(el)), nil
			}
		}
		fn, err := c.dependent(d.Fn, env)
		if err != nil {
			return nil, err
		}
		ft := fn.Type
		if ft.Kind != typedast.TypeFun {
			return nil, conflict(d.Fn.Span, typedast.Fun(typedast.Dyn(), typedast.Dyn()), ft, "cannot apply a value of type %s", typedast.TypeString(ft))
		}
		arg, err := c.depCheck(d.Arg, ft.Param, env)
		if err != nil {
			return nil, err
		}
		result := ft.Result
		if ft.Binder != "" {
			// instantiate the dependent result with the argument term
			sub, _ := normalize.Subst(typedast.TypeToAST(ft.Result, e.Span), ft.Binder, d.Arg)
			if result, err = c.depType(sub, env); err != nil {
				return nil, err
			}
		}
		return node(typedast.ExprApp, e, result, typedast.AppData{Fn: fn, Arg: arg}), nil

	case ast.LetData:
		var (
			value *typedast.Expr
			annot *typedast.Scheme
			err   error
		)
		if d.Annot != nil {
			t, err := c.depType(d.Annot, env)
			if err != nil {
				return nil, err
			}
			annot = typedast.Mono(t)
			value, err = c.depCheck(d.Value, t, env)
			if err != nil {
				return nil, err
			}
		} else if value, err = c.dependent(d.Value, env); err != nil {
			return nil, err
		}
		scheme := typedast.Mono(value.Type)
		if annot != nil {
			scheme = annot
		}
		body, err := c.dependent(d.Body, env.bind(binding{name: d.Name, scheme: scheme, def: d.Value}))
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprLet, e, body.Type, typedast.LetData{Name: d.Name, Scheme: scheme, Annot: annot, Value: value, Body: body}), nil

	case ast.AnnotData:
		t, err := c.depType(d.Type, env)
		if err != nil {
			return nil, err
		}
		x, err := c.depCheck(d.Expr, t, env)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprAnnot, e, t, typedast.AnnotData{Expr: x, Annot: t}), nil

	case ast.IfData:
		cond, err := c.depCheck(d.Cond, typedast.Bool(), env)
		if err != nil {
			return nil, err
		}
		then, err := c.dependent(d.Then, env)
		if err != nil {
			return nil, err
		}
		els, err := c.depCheck(d.Else, then.Type, env)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprIf, e, then.Type, typedast.IfData{Cond: cond, Then: then, Else: els}), nil

	case ast.RecordData:
		if err := checkLabels(d.Fields); err != nil {
			return nil, err
		}
		fields := make([]typedast.FieldInit, 0, len(d.Fields))
		types := make([]typedast.FieldType, 0, len(d.Fields))
		for _, f := range d.Fields {
			x, err := c.dependent(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields = append(fields, typedast.FieldInit{Label: f.Label, Value: x, Span: f.Span})
			types = append(types, typedast.FieldType{Label: f.Label, Type: x.Type})
		}
		return node(typedast.ExprRecord, e, typedast.Record(types, nil), typedast.RecordData{Fields: fields}), nil

	case ast.FieldData:
		rec, err := c.dependent(d.Record, env)
		if err != nil {
			return nil, err
		}
		ft, ok := rec.Type.Field(d.Label)
		if !ok {
			want := typedast.Record([]typedast.FieldType{{Label: d.Label, Type: typedast.Dyn()}}, nil)
			return nil, conflict(e.Span, want, rec.Type, "no field %q in %s", d.Label, typedast.TypeString(rec.Type))
		}
		return node(typedast.ExprField, e, ft, typedast.FieldData{Record: rec, Label: d.Label}), nil

	case ast.BinaryData:
		left, err := c.dependent(d.Left, env)
		if err != nil {
			return nil, err
		}
		var right *typedast.Expr
		result := typedast.Bool()
		switch d.Op {
		case ast.OpAnd, ast.OpOr:
			if left, err = c.depExpect(left, typedast.Bool(), env); err == nil {
				right, err = c.depCheck(d.Right, typedast.Bool(), env)
			}
		case ast.OpEq, ast.OpNe:
			right, err = c.depCheck(d.Right, left.Type, env)
		default:
			p := opPrim(d.Op.Prim())
			if left, err = c.depExpect(left, shapeType(p.Params[0], nil), env); err == nil {
				right, err = c.depCheck(d.Right, shapeType(p.Params[1], nil), env)
			}
			result = shapeType(p.Result, nil)
		}
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprBinary, e, result, typedast.BinaryData{Op: d.Op, Left: left, Right: right}), nil

	case ast.UnaryData:
		p := opPrim(d.Op.Prim())
		x, err := c.depCheck(d.Operand, shapeType(p.Params[0], nil), env)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprUnary, e, shapeType(p.Result, nil), typedast.UnaryData{Op: d.Op, Operand: x}), nil

	case ast.ListData:
		if len(d.Elems) == 0 {
			return nil, malformed(e.Span, "cannot infer the element type of an empty list; annotate it")
		}
		first, err := c.dependent(d.Elems[0], env)
		if err != nil {
			return nil, err
		}
		elems := []*typedast.Expr{first}
		for _, it := range d.Elems[1:] {
			x, err := c.depCheck(it, first.Type, env)
			if err != nil {
				return nil, err
			}
			elems = append(elems, x)
		}
		return node(typedast.ExprList, e, typedast.List(first.Type), typedast.ListData{Elems: elems}), nil

	case ast.PrimData:
		p, err := c.lookupPrim(e, d)
		if err != nil {
			return nil, err
		}
		var v *typedast.Type
		args := make([]*typedast.Expr, 0, len(d.Args))
		for i, a := range d.Args {
			var x *typedast.Expr
			if want := shapeType(p.Params[i], v); want != nil {
				x, err = c.depCheck(a, want, env)
			} else {
				x, err = c.dependent(a, env)
				if err == nil {
					v = x.Type
				}
			}
			if err != nil {
				return nil, err
			}
			args = append(args, x)
		}
		return node(typedast.ExprPrim, e, shapeType(p.Result, v), typedast.PrimData{Name: d.Name, Args: args}), nil
	}
	return nil, malformed(e.Span, "unexpected %s", e.Kind)
}

// depExpect checks an already inferred node against want.
func (c *checker) depExpect(x *typedast.Expr, want *typedast.Type, env *scope) (*typedast.Expr, error) {
	ok, err := c.convertible(x.Type, want, env)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflict(x.Span, want, x.Type, "type mismatch: expected %s, found %s", typedast.TypeString(want), typedast.TypeString(x.Type))
	}
	return x, nil
}
