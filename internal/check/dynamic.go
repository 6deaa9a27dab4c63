package check

import (
	"langlang/internal/ast"
	"langlang/internal/typedast"
)

// dynamic types every node Dyn. Only scope, primitive arity, duplicate labels,
// purity and the well-formedness of annotations are checked.
func (c *checker) dynamic(e *ast.Expr, env *scope) (*typedast.Expr, error) {
	dyn := typedast.Dyn()
	kids := func(xs ...*ast.Expr) ([]*typedast.Expr, error) {
		out := make([]*typedast.Expr, len(xs))
		for i, x := range xs {
			t, err := c.dynamic(x, env)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}

	switch d := e.Data.(type) {
	case ast.LitData:
		return node(typedast.ExprLit, e, dyn, typedast.LitData{Lit: d}), nil
	case ast.VarData:
		if _, ok := env.lookup(d.Name); !ok {
			if isTypeName(d.Name) {
				return nil, malformed(e.Span, "type %s used as a value", d.Name)
			}
			return nil, unresolved(e.Span, d.Name)
		}
		return node(typedast.ExprVar, e, dyn, typedast.VarData{Name: d.Name}), nil
	case ast.LambdaData:
		if d.ParamType != nil {
			if _, err := c.elabType(d.ParamType, nil); err != nil {
				return nil, err
			}
		}
		body, err := c.dynamic(d.Body, env.bind(binding{name: d.Param, scheme: typedast.Mono(dyn)}))
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprLambda, e, dyn, typedast.LambdaData{Param: d.Param, ParamType: dyn, Body: body}), nil
	case ast.AppData:
		xs, err := kids(d.Fn, d.Arg)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprApp, e, dyn, typedast.AppData{Fn: xs[0], Arg: xs[1]}), nil
	case ast.LetData:
		if d.Annot != nil {
			if _, err := c.elabScheme(d.Annot); err != nil {
				return nil, err
			}
		}
		value, err := c.dynamic(d.Value, env)
		if err != nil {
			return nil, err
		}
		body, err := c.dynamic(d.Body, env.bind(binding{name: d.Name, scheme: typedast.Mono(dyn)}))
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprLet, e, dyn, typedast.LetData{Name: d.Name, Scheme: typedast.Mono(dyn), Value: value, Body: body}), nil
	case ast.RecordData:
		if err := checkLabels(d.Fields); err != nil {
			return nil, err
		}
		fields := make([]typedast.FieldInit, 0, len(d.Fields))
		for _, f := range d.Fields {
			x, err := c.dynamic(f.Value, env)
			if err != nil {
				return nil, err
			}
			fields = append(fields, typedast.FieldInit{Label: f.Label, Value: x, Span: f.Span})
		}
		return node(typedast.ExprRecord, e, dyn, typedast.RecordData{Fields: fields}), nil
	case ast.FieldData:
		rec, err := c.dynamic(d.Record, env)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprField, e, dyn, typedast.FieldData{Record: rec, Label: d.Label}), nil
	case ast.IfData:
		xs, err := kids(d.Cond, d.Then, d.Else)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprIf, e, dyn, typedast.IfData{Cond: xs[0], Then: xs[1], Else: xs[2]}), nil
	case ast.AnnotData:
		if _, err := c.elabType(d.Type, nil); err != nil {
			return nil, err
		}
		x, err := c.dynamic(d.Expr, env)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprAnnot, e, dyn, typedast.AnnotData{Expr: x, Annot: dyn}), nil
	case ast.BinaryData:
		xs, err := kids(d.Left, d.Right)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprBinary, e, dyn, typedast.BinaryData{Op: d.Op, Left: xs[0], Right: xs[1]}), nil
	case ast.UnaryData:
		x, err := c.dynamic(d.Operand, env)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprUnary, e, dyn, typedast.UnaryData{Op: d.Op, Operand: x}), nil
	case ast.ListData:
		xs, err := kids(d.Elems...)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprList, e, dyn, typedast.ListData{Elems: xs}), nil
	case ast.PrimData:
		if _, err := c.lookupPrim(e, d); err != nil {
			return nil, err
		}
		xs, err := kids(d.Args...)
		if err != nil {
			return nil, err
		}
		return node(typedast.ExprPrim, e, dyn, typedast.PrimData{Name: d.Name, Args: xs}), nil
	}
	if err := typeFormInValue(e); err != nil {
		return nil, err
	}
	return nil, malformed(e.Span, "unexpected %s", e.Kind)
}
