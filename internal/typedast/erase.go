package typedast

import (
	"strconv"

	"langlang/internal/ast"
	"langlang/internal/source"
)

// Erase forgets types: Cast nodes disappear, TypeValue nodes become the type
// expression they denote and annotations written in the source come back.
// Spans are kept.
func Erase(e *Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	sp := e.Span
	switch d := e.Data.(type) {
	case LitData:
		return &ast.Expr{Kind: ast.ExprLit, Span: sp, Data: d.Lit}
	case VarData:
		return ast.Var(sp, d.Name)
	case LambdaData:
		var annot *ast.Expr
		if d.Annotated {
			annot = TypeToAST(d.ParamType, sp)
		}
		return ast.Lambda(sp, d.Param, annot, Erase(d.Body))
	case AppData:
		return ast.App(sp, Erase(d.Fn), Erase(d.Arg))
	case LetData:
		var annot *ast.Expr
		if d.Annot != nil {
			annot = SchemeToAST(d.Annot, sp)
		}
		return ast.Let(sp, d.Name, annot, Erase(d.Value), Erase(d.Body))
	case RecordData:
		fields := make([]ast.FieldInit, 0, len(d.Fields))
		for _, f := range d.Fields {
			fields = append(fields, ast.FieldInit{Label: f.Label, Value: Erase(f.Value), Span: f.Span})
		}
		return ast.Record(sp, fields...)
	case FieldData:
		return ast.Field(sp, Erase(d.Record), d.Label)
	case IfData:
		return ast.If(sp, Erase(d.Cond), Erase(d.Then), Erase(d.Else))
	case AnnotData:
		return ast.Annot(sp, Erase(d.Expr), TypeToAST(d.Annot, sp))
	case BinaryData:
		return ast.Binary(sp, d.Op, Erase(d.Left), Erase(d.Right))
	case UnaryData:
		return ast.Unary(sp, d.Op, Erase(d.Operand))
	case ListData:
		elems := make([]*ast.Expr, 0, len(d.Elems))
		for _, x := range d.Elems {
			elems = append(elems, Erase(x))
		}
		return ast.List(sp, elems...)
	case PrimData:
		args := make([]*ast.Expr, 0, len(d.Args))
		for _, x := range d.Args {
			args = append(args, Erase(x))
		}
		return ast.Prim(sp, d.Name, args...)
	case CastData:
		return Erase(d.Expr)
	case TypeValueData:
		return TypeToAST(d.Denotes, sp)
	}
	return nil
}

// TypeToAST renders a type as a type expression; every node gets sp.
func TypeToAST(t *Type, sp source.Span) *ast.Expr {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeCon, TypeParam:
		return ast.Var(sp, t.Name)
	case TypeMeta:
		return ast.Var(sp, "?"+strconv.FormatUint(uint64(t.Meta), 10))
	case TypeDyn:
		return ast.Var(sp, "Any")
	case TypeUniverse:
		return ast.Universe(sp)
	case TypeList:
		return ast.App(sp, ast.Var(sp, "List"), TypeToAST(t.Elem, sp))
	case TypeFun:
		return ast.Pi(sp, t.Binder, TypeToAST(t.Param, sp), TypeToAST(t.Result, sp))
	case TypeRecord:
		fields := make([]ast.FieldInit, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, ast.FieldInit{Label: f.Label, Value: TypeToAST(f.Type, sp), Span: sp})
		}
		return ast.RecordType(sp, fields...)
	case TypeTerm:
		return Erase(t.Term)
	}
	return nil
}

// SchemeToAST renders a scheme, wrapping polymorphic bodies in forall.
func SchemeToAST(s *Scheme, sp source.Span) *ast.Expr {
	body := TypeToAST(s.Body, sp)
	if s.IsMono() {
		return body
	}
	names := make([]string, 0, len(s.Vars))
	for _, v := range s.Vars {
		if v.Kind == KindStar {
			names = append(names, v.Name)
		}
	}
	if len(names) == 0 {
		return body
	}
	return ast.Forall(sp, names, body)
}
