package check

import (
	"slices"

	"langlang/internal/ast"
	"langlang/internal/typedast"
)

const (
	anyName  = "Any"
	listName = "List"
)

// isTypeName reports whether name is reserved for a type in annotations.
func isTypeName(name string) bool {
	return typedast.IsBaseCon(name) || name == anyName || name == listName
}

// elabScheme elaborates a let annotation; a top-level forall quantifies.
func (c *checker) elabScheme(e *ast.Expr) (*typedast.Scheme, error) {
	if fa, ok := e.Data.(ast.ForallData); ok {
		vars := make([]typedast.TypeVar, 0, len(fa.Vars))
		for _, v := range fa.Vars {
			if slices.ContainsFunc(vars, func(tv typedast.TypeVar) bool { return tv.Name == v }) {
				return nil, malformed(e.Span, "type variable %q bound twice", v)
			}
			vars = append(vars, typedast.TypeVar{Name: v, Kind: typedast.KindStar})
		}
		body, err := c.elabType(fa.Body, fa.Vars)
		if err != nil {
			return nil, err
		}
		return &typedast.Scheme{Vars: vars, Body: body}, nil
	}
	t, err := c.elabType(e, nil)
	if err != nil {
		return nil, err
	}
	return typedast.Mono(t), nil
}

// elabType turns a type expression into a type. tvars are the names bound by
// an enclosing forall.
func (c *checker) elabType(e *ast.Expr, tvars []string) (*typedast.Type, error) {
	switch d := e.Data.(type) {
	case ast.VarData:
		switch {
		case slices.Contains(tvars, d.Name):
			return typedast.Param(d.Name), nil
		case typedast.IsBaseCon(d.Name):
			return typedast.Con(d.Name), nil
		case d.Name == anyName:
			if !c.rules.allowAny {
				return nil, malformed(e.Span, "%s is not available under the %s type system", anyName, c.cfg.TypeSystem)
			}
			return typedast.Dyn(), nil
		case d.Name == listName:
			return nil, malformed(e.Span, "%s expects an element type", listName)
		}
		return nil, unresolved(e.Span, d.Name)
	case ast.AppData:
		if fn, ok := d.Fn.Data.(ast.VarData); ok && fn.Name == listName {
			el, err := c.elabType(d.Arg, tvars)
			if err != nil {
				return nil, err
			}
			return typedast.List(el), nil
		}
	case ast.PiData:
		if d.Binder != "" {
			return nil, malformed(e.Span, "dependent function type requires the dependent type system")
		}
		p, err := c.elabType(d.Domain, tvars)
		if err != nil {
			return nil, err
		}
		r, err := c.elabType(d.Codomain, tvars)
		if err != nil {
			return nil, err
		}
		return typedast.Fun(p, r), nil
	case ast.RecordTypeData:
		return c.elabRecordType(e, d.Fields, tvars)
	case ast.RecordData:
		// {} reads as a record literal; in type position it is the empty record
		if len(d.Fields) == 0 {
			return typedast.Record(nil, nil), nil
		}
	case ast.ForallData:
		return nil, malformed(e.Span, "forall is only allowed at the top of a let annotation")
	case ast.UniverseData:
		return nil, malformed(e.Span, "Type requires the dependent type system")
	}
	return nil, malformed(e.Span, "expected a type, found %s", e.Kind)
}

func (c *checker) elabRecordType(e *ast.Expr, fields []ast.FieldInit, tvars []string) (*typedast.Type, error) {
	out := make([]typedast.FieldType, 0, len(fields))
	for _, f := range fields {
		if slices.ContainsFunc(out, func(ft typedast.FieldType) bool { return ft.Label == f.Label }) {
			return nil, malformed(f.Span, "duplicate field %q in record type", f.Label)
		}
		t, err := c.elabType(f.Value, tvars)
		if err != nil {
			return nil, err
		}
		out = append(out, typedast.FieldType{Label: f.Label, Type: t})
	}
	return typedast.Record(out, nil), nil
}

// checkLabels rejects duplicate labels in a record literal.
func checkLabels(fields []ast.FieldInit) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Label] {
			return malformed(f.Span, "duplicate field %q", f.Label)
		}
		seen[f.Label] = true
	}
	return nil
}

// typeFormInValue rejects type-level syntax where a value is expected.
func typeFormInValue(e *ast.Expr) error {
	switch e.Data.(type) {
	case ast.PiData, ast.ForallData, ast.RecordTypeData, ast.UniverseData:
		return malformed(e.Span, "type expression used as a value")
	}
	return nil
}
