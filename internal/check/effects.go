package check

import (
	"fmt"

	"langlang/internal/ast"
	"langlang/internal/pipeline"
	"langlang/internal/prim"
	"langlang/internal/source"
	"langlang/internal/typedast"
)

// permit enforces the purity level on an effectful primitive.
func (c *checker) permit(p *prim.Prim, sp source.Span) error {
	if p.Pure() {
		return nil
	}
	var why string
	switch c.cfg.Purity {
	case pipeline.Unrestricted:
		return nil
	case pipeline.Sandbox:
		if c.allow.Allows(p.Name) {
			return nil
		}
		why = fmt.Sprintf("@%s (%s) is not in the sandbox allow list", p.Name, p.Effect)
	default:
		why = fmt.Sprintf("@%s has effect %s, not permitted under %s purity", p.Name, p.Effect, c.cfg.Purity)
	}
	return &TypeError{Kind: ErrEffectNotPermitted, Span: sp, Message: why, Name: p.Name}
}

// lookupPrim resolves a named primitive call and checks its arity.
func (c *checker) lookupPrim(e *ast.Expr, d ast.PrimData) (*prim.Prim, error) {
	p, ok := prim.Lookup(d.Name)
	if !ok {
		return nil, unresolved(e.Span, "@"+d.Name)
	}
	if len(d.Args) != p.Arity() {
		return nil, malformed(e.Span, "@%s expects %d arguments, got %d", d.Name, p.Arity(), len(d.Args))
	}
	if err := c.permit(p, e.Span); err != nil {
		return nil, err
	}
	return p, nil
}

// shapeType maps a primitive shape to a type; v stands for the type variable.
func shapeType(s prim.Shape, v *typedast.Type) *typedast.Type {
	switch s {
	case prim.Int:
		return typedast.Int()
	case prim.Bool:
		return typedast.Bool()
	case prim.String:
		return typedast.String()
	case prim.Unit:
		return typedast.UnitType()
	}
	return v
}

// opPrim returns the catalog entry behind an operator; && and || have none.
func opPrim(name string) *prim.Prim {
	p, _ := prim.Lookup(name)
	return p
}
