package check

import (
	"langlang/internal/ast"
	"langlang/internal/source"
	"langlang/internal/typedast"
)

func litType(k ast.LitKind) *typedast.Type {
	switch k {
	case ast.LitInt:
		return typedast.Int()
	case ast.LitBool:
		return typedast.Bool()
	case ast.LitString:
		return typedast.String()
	}
	return typedast.UnitType()
}

// expect unifies x's type with want. Under gradual rules the boundary is
// recorded as a Cast; identity casts are dropped by finish.
func (c *checker) expect(x *typedast.Expr, want *typedast.Type, sp source.Span) (*typedast.Expr, error) {
	if err := c.unify(x.Type, want, sp); err != nil {
		return nil, err
	}
	if !c.rules.gradual {
		return x, nil
	}
	return castTo(x, want), nil
}

func castTo(x *typedast.Expr, want *typedast.Type) *typedast.Expr {
	return &typedast.Expr{
		Kind: typedast.ExprCast,
		Span: x.Span,
		Type: want,
		Data: typedast.CastData{Expr: x, From: x.Type, To: want},
	}
}

// instArgs allocates one fresh argument per quantified variable. Row
// variables are instantiated with an empty record over a fresh row meta.
func (c *checker) instArgs(s *typedast.Scheme) []*typedast.Type {
	if s.IsMono() {
		return nil
	}
	args := make([]*typedast.Type, len(s.Vars))
	for i, v := range s.Vars {
		if v.Kind == typedast.KindRow {
			args[i] = typedast.Record(nil, c.freshRow())
		} else {
			args[i] = c.fresh()
		}
	}
	return args
}

func (c *checker) infer(e *ast.Expr, env *scope) (*typedast.Expr, error) {
	switch d := e.Data.(type) {
	case ast.LitData:
		return node(typedast.ExprLit, e, litType(d.Kind), typedast.LitData{Lit: d}), nil

	case ast.VarData:
		b, ok := env.lookup(d.Name)
		if !ok {
			if isTypeName(d.Name) {
				return nil, malformed(e.Span, "type %s used as a value", d.Name)
			}
			return nil, unresolved(e.Span, d.Name)
		}
		args := c.instArgs(b.scheme)
		return node(typedast.ExprVar, e, b.scheme.Instantiate(args), typedast.VarData{Name: d.Name, TypeArgs: args}), nil

	case ast.LambdaData:
		var pt *typedast.Type
		switch {
		case d.ParamType != nil:
			t, err := c.elabType(d.ParamType, nil)
			if err != nil {
				return nil, err
			}
			pt = t
		case c.rules.dynParams:
			pt = typedast.Dyn()
		default:
			pt = c.fresh()
		}
		body, err := c.infer(d.Body, env.bind(binding{name: d.Param, scheme: typedast.Mono(pt)}))
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprLambda, e, typedast.Fun(pt, body.Type), typedast.LambdaData{
			Param:     d.Param,
			ParamType: pt,
			Annotated: d.ParamType != nil,
			Body:      body,
		}), nil

	case ast.AppData:
		return c.inferApp(e, d, env)

	case ast.LetData:
		return c.inferLet(e, d, env)

	case ast.RecordData:
		if err := checkLabels(d.Fields); err != nil {
			return nil, err
		}
		fields := make([]typedast.FieldInit, 0, len(d.Fields))
		types := make([]typedast.FieldType, 0, len(d.Fields))
		for _, f := range d.Fields {
			x, err := c.infer(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields = append(fields, typedast.FieldInit{Label: f.Label, Value: x, Span: f.Span})
			types = append(types, typedast.FieldType{Label: f.Label, Type: x.Type})
		}
		return node(typedast.ExprRecord, e, typedast.Record(types, nil), typedast.RecordData{Fields: fields}), nil

	case ast.FieldData:
		rec, err := c.infer(d.Record, env)
		if err != nil {
			return nil, err
		}
		ft := c.fresh()
		want := typedast.Record([]typedast.FieldType{{Label: d.Label, Type: ft}}, c.freshRow())
		if rec, err = c.expect(rec, want, e.Span); err != nil {
			return nil, err
		}
		return node(typedast.ExprField, e, ft, typedast.FieldData{Record: rec, Label: d.Label}), nil

	case ast.IfData:
		cond, err := c.infer(d.Cond, env)
		if err != nil {
			return nil, err
		}
		if cond, err = c.expect(cond, typedast.Bool(), d.Cond.Span); err != nil {
			return nil, err
		}
		then, err := c.infer(d.Then, env)
		if err != nil {
			return nil, err
		}
		els, err := c.infer(d.Else, env)
		if err != nil {
			return nil, err
		}
		if els, err = c.expect(els, then.Type, d.Else.Span); err != nil {
			return nil, err
		}
		return node(typedast.ExprIf, e, then.Type, typedast.IfData{Cond: cond, Then: then, Else: els}), nil

	case ast.AnnotData:
		t, err := c.elabType(d.Type, nil)
		if err != nil {
			return nil, err
		}
		x, err := c.infer(d.Expr, env)
		if err != nil {
			return nil, err
		}
		if x, err = c.expect(x, t, d.Expr.Span); err != nil {
			return nil, err
		}
		return node(typedast.ExprAnnot, e, t, typedast.AnnotData{Expr: x, Annot: t}), nil

	case ast.BinaryData:
		return c.inferBinary(e, d, env)

	case ast.UnaryData:
		p := opPrim(d.Op.Prim())
		x, err := c.infer(d.Operand, env)
		if err != nil {
			return nil, err
		}
		if x, err = c.expect(x, shapeType(p.Params[0], nil), d.Operand.Span); err != nil {
			return nil, err
		}
		return node(typedast.ExprUnary, e, shapeType(p.Result, nil), typedast.UnaryData{Op: d.Op, Operand: x}), nil

	case ast.ListData:
		el := c.fresh()
		elems := make([]*typedast.Expr, 0, len(d.Elems))
		for _, it := range d.Elems {
			x, err := c.infer(it, env)
			if err != nil {
				return nil, err
			}
			if x, err = c.expect(x, el, it.Span); err != nil {
				return nil, err
			}
			elems = append(elems, x)
		}
		return node(typedast.ExprList, e, typedast.List(el), typedast.ListData{Elems: elems}), nil

	case ast.PrimData:
		p, err := c.lookupPrim(e, d)
		if err != nil {
			return nil, err
		}
		var v *typedast.Type
		if p.Poly() {
			v = c.fresh()
		}
		args := make([]*typedast.Expr, 0, len(d.Args))
		for i, a := range d.Args {
			x, err := c.infer(a, env)
			if err != nil {
				return nil, err
			}
			if x, err = c.expect(x, shapeType(p.Params[i], v), a.Span); err != nil {
				return nil, err
			}
			args = append(args, x)
		}
		return node(typedast.ExprPrim, e, shapeType(p.Result, v), typedast.PrimData{Name: d.Name, Args: args}), nil
	}
	if err := typeFormInValue(e); err != nil {
		return nil, err
	}
	return nil, malformed(e.Span, "unexpected %s", e.Kind)
}

func (c *checker) inferApp(e *ast.Expr, d ast.AppData, env *scope) (*typedast.Expr, error) {
	fn, err := c.infer(d.Fn, env)
	if err != nil {
		return nil, err
	}
	arg, err := c.infer(d.Arg, env)
	if err != nil {
		return nil, err
	}
	var result *typedast.Type
	switch ft := c.resolve(fn.Type); ft.Kind {
	case typedast.TypeFun:
		if arg, err = c.expect(arg, ft.Param, d.Arg.Span); err != nil {
			return nil, err
		}
		result = ft.Result
	case typedast.TypeDyn:
		fn = castTo(fn, typedast.Fun(typedast.Dyn(), typedast.Dyn()))
		if arg, err = c.expect(arg, typedast.Dyn(), d.Arg.Span); err != nil {
			return nil, err
		}
		result = typedast.Dyn()
	default:
		result = c.fresh()
		if err := c.unify(fn.Type, typedast.Fun(arg.Type, result), d.Fn.Span); err != nil {
			return nil, err
		}
	}
	return node(typedast.ExprApp, e, result, typedast.AppData{Fn: fn, Arg: arg}), nil
}

func (c *checker) inferBinary(e *ast.Expr, d ast.BinaryData, env *scope) (*typedast.Expr, error) {
	left, err := c.infer(d.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := c.infer(d.Right, env)
	if err != nil {
		return nil, err
	}
	var result *typedast.Type
	switch d.Op {
	case ast.OpAnd, ast.OpOr:
		if left, err = c.expect(left, typedast.Bool(), d.Left.Span); err != nil {
			return nil, err
		}
		if right, err = c.expect(right, typedast.Bool(), d.Right.Span); err != nil {
			return nil, err
		}
		result = typedast.Bool()
	case ast.OpEq, ast.OpNe:
		// polymorphic equality: both sides share one type
		if right, err = c.expect(right, left.Type, d.Right.Span); err != nil {
			return nil, err
		}
		result = typedast.Bool()
	default:
		p := opPrim(d.Op.Prim())
		if left, err = c.expect(left, shapeType(p.Params[0], nil), d.Left.Span); err != nil {
			return nil, err
		}
		if right, err = c.expect(right, shapeType(p.Params[1], nil), d.Right.Span); err != nil {
			return nil, err
		}
		result = shapeType(p.Result, nil)
	}
	return node(typedast.ExprBinary, e, result, typedast.BinaryData{Op: d.Op, Left: left, Right: right}), nil
}

func (c *checker) inferLet(e *ast.Expr, d ast.LetData, env *scope) (*typedast.Expr, error) {
	var annot *typedast.Scheme
	if d.Annot != nil {
		s, err := c.elabScheme(d.Annot)
		if err != nil {
			return nil, err
		}
		annot = s
	}
	before := len(c.metas)
	c.level++
	value, err := c.infer(d.Value, env)
	if err == nil && annot != nil {
		value, err = c.expect(value, annot.Body, d.Value.Span)
	}
	c.level--
	if err != nil {
		return nil, err
	}

	var scheme *typedast.Scheme
	switch {
	case annot != nil:
		if err := c.checkEscape(annot, before, d.Value.Span); err != nil {
			return nil, err
		}
		scheme = annot
	case c.rules.generalize && isValue(d.Value):
		scheme = c.generalize(value.Type)
	default:
		scheme = typedast.Mono(value.Type)
	}
	body, err := c.infer(d.Body, env.bind(binding{name: d.Name, scheme: scheme}))
	if err != nil {
		return nil, err
	}
	return node(typedast.ExprLet, e, body.Type, typedast.LetData{
		Name:   d.Name,
		Scheme: scheme,
		Annot:  annot,
		Value:  value,
		Body:   body,
	}), nil
}
