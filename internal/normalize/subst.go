package normalize

import (
	"slices"

	"langlang/internal/ast"
)

// FreeVars returns the set of variables occurring free in e.
func FreeVars(e *ast.Expr) map[string]struct{} {
	out := make(map[string]struct{})
	var walk func(e *ast.Expr, bound []string)
	walk = func(e *ast.Expr, bound []string) {
		if e == nil {
			return
		}
		switch d := e.Data.(type) {
		case ast.VarData:
			if !slices.Contains(bound, d.Name) {
				out[d.Name] = struct{}{}
			}
			return
		case ast.LambdaData:
			walk(d.ParamType, bound)
			walk(d.Body, with(bound, d.Param))
			return
		case ast.LetData:
			walk(d.Annot, bound)
			walk(d.Value, bound)
			walk(d.Body, with(bound, d.Name))
			return
		case ast.PiData:
			walk(d.Domain, bound)
			walk(d.Codomain, with(bound, d.Binder))
			return
		case ast.ForallData:
			walk(d.Body, with(bound, d.Vars...))
			return
		}
		for _, c := range ast.Children(e) {
			walk(c, bound)
		}
	}
	walk(e, nil)
	return out
}

func with(bound []string, names ...string) []string {
	out := bound[:len(bound):len(bound)]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

func occursFree(e *ast.Expr, name string) bool {
	_, ok := FreeVars(e)[name]
	return ok
}

// subster performs capture-avoiding substitution of value for name.
type subster struct {
	name  string
	value *ast.Expr
	fv    map[string]struct{}
	hits  int
}

// Subst replaces free occurrences of name in e by value, renaming binders that
// would capture a free variable of value. It returns the number of replaced
// occurrences.
func Subst(e *ast.Expr, name string, value *ast.Expr) (*ast.Expr, int) {
	s := &subster{name: name, value: value, fv: FreeVars(value)}
	out := s.expr(e)
	return out, s.hits
}

func (s *subster) expr(e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	sp := e.Span
	switch d := e.Data.(type) {
	case ast.LitData, ast.UniverseData:
		return e
	case ast.VarData:
		if d.Name == s.name {
			s.hits++
			return s.value
		}
		return e
	case ast.LambdaData:
		pt := s.expr(d.ParamType)
		param, body := s.binder(d.Param, d.Body)
		return ast.Lambda(sp, param, pt, body)
	case ast.AppData:
		return ast.App(sp, s.expr(d.Fn), s.expr(d.Arg))
	case ast.LetData:
		annot := s.expr(d.Annot)
		value := s.expr(d.Value)
		name, body := s.binder(d.Name, d.Body)
		return ast.Let(sp, name, annot, value, body)
	case ast.RecordData:
		return ast.Record(sp, s.fields(d.Fields)...)
	case ast.RecordTypeData:
		return ast.RecordType(sp, s.fields(d.Fields)...)
	case ast.FieldData:
		return ast.Field(sp, s.expr(d.Record), d.Label)
	case ast.IfData:
		return ast.If(sp, s.expr(d.Cond), s.expr(d.Then), s.expr(d.Else))
	case ast.AnnotData:
		return ast.Annot(sp, s.expr(d.Expr), s.expr(d.Type))
	case ast.BinaryData:
		return ast.Binary(sp, d.Op, s.expr(d.Left), s.expr(d.Right))
	case ast.UnaryData:
		return ast.Unary(sp, d.Op, s.expr(d.Operand))
	case ast.ListData:
		return ast.List(sp, s.exprs(d.Elems)...)
	case ast.PrimData:
		return ast.Prim(sp, d.Name, s.exprs(d.Args)...)
	case ast.PiData:
		dom := s.expr(d.Domain)
		if d.Binder == "" {
			return ast.Pi(sp, "", dom, s.expr(d.Codomain))
		}
		binder, cod := s.binder(d.Binder, d.Codomain)
		return ast.Pi(sp, binder, dom, cod)
	case ast.ForallData:
		if slices.Contains(d.Vars, s.name) {
			return e
		}
		vars := slices.Clone(d.Vars)
		body := d.Body
		for i, v := range vars {
			if _, clash := s.fv[v]; clash {
				fresh := freshName(v, s.fv, FreeVars(body))
				body = rename(body, v, fresh)
				vars[i] = fresh
			}
		}
		return ast.Forall(sp, vars, s.expr(body))
	}
	return e
}

// binder handles a single binder scoping over body.
func (s *subster) binder(name string, body *ast.Expr) (string, *ast.Expr) {
	if name == s.name {
		return name, body
	}
	if _, clash := s.fv[name]; clash && occursFree(body, s.name) {
		fresh := freshName(name, s.fv, FreeVars(body))
		body = rename(body, name, fresh)
		name = fresh
	}
	return name, s.expr(body)
}

func (s *subster) fields(fs []ast.FieldInit) []ast.FieldInit {
	out := make([]ast.FieldInit, 0, len(fs))
	for _, f := range fs {
		out = append(out, ast.FieldInit{Label: f.Label, Value: s.expr(f.Value), Span: f.Span})
	}
	return out
}

func (s *subster) exprs(xs []*ast.Expr) []*ast.Expr {
	out := make([]*ast.Expr, 0, len(xs))
	for _, x := range xs {
		out = append(out, s.expr(x))
	}
	return out
}

func rename(e *ast.Expr, from, to string) *ast.Expr {
	out, _ := Subst(e, from, &ast.Expr{Kind: ast.ExprVar, Span: e.Span, Data: ast.VarData{Name: to}})
	return out
}

// freshName primes base until it clashes with nothing in avoid.
func freshName(base string, avoid ...map[string]struct{}) string {
	name := base
	for {
		name += "'"
		taken := false
		for _, set := range avoid {
			if _, ok := set[name]; ok {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
	}
}
