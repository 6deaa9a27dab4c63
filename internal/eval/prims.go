package eval

import (
	"errors"
	"fmt"

	"langlang/internal/ast"
	"langlang/internal/fomega"
	"langlang/internal/pipeline"
	"langlang/internal/prim"
	"langlang/internal/trace"
)

func (m *machine) prim(o fomega.Origin, name string, args []Value) (Value, error) {
	p, ok := prim.Lookup(name)
	if !ok {
		return Value{}, errAt(o, ErrTypeConfusion, "unknown primitive @%s", name)
	}
	if len(args) != p.Arity() {
		return Value{}, errAt(o, ErrArityMismatch, "@%s expects %d arguments, got %d", name, p.Arity(), len(args))
	}
	if !p.Pure() {
		return m.effect(o, p, args)
	}
	switch name {
	case "eq", "ne":
		for _, a := range args {
			if !equatable(a) {
				return Value{}, errAt(o, ErrTypeConfusion, "@%s on a value containing functions", name)
			}
		}
		eq := Equal(args[0], args[1])
		return BoolValue(eq == (name == "eq")), nil
	case "show":
		a := args[0].Unbox()
		if l, ok := a.lit(); ok {
			return StringValue(prim.Show(l)), nil
		}
		return StringValue(a.String()), nil
	}
	lits, err := literals(o, name, args)
	if err != nil {
		return Value{}, err
	}
	res, err := prim.Apply(name, lits)
	switch {
	case errors.Is(err, prim.ErrDivideByZero):
		return Value{}, &Error{Kind: ErrDivideByZero, Origin: o, Msg: "@" + name, Err: err}
	case err != nil:
		return Value{}, &Error{Kind: ErrTypeConfusion, Origin: o, Msg: "@" + name, Err: err}
	}
	return litValue(res), nil
}

func literals(o fomega.Origin, name string, args []Value) ([]ast.LitData, error) {
	lits := make([]ast.LitData, len(args))
	for i, a := range args {
		l, ok := a.Unbox().lit()
		if !ok {
			return nil, errAt(o, ErrTypeConfusion, "@%s argument %d is a %s", name, i+1, a.Unbox().Kind)
		}
		lits[i] = l
	}
	return lits, nil
}

// equatable reports whether v contains no functions, so eq can compare it.
func equatable(v Value) bool {
	switch v.Kind {
	case ValClosure, ValTypeClosure, ValProxy:
		return false
	case ValBox:
		return equatable(*v.Inner)
	case ValRecord:
		for _, f := range v.Fields {
			if !equatable(f.Value) {
				return false
			}
		}
	case ValList:
		for _, e := range v.Elems {
			if !equatable(e) {
				return false
			}
		}
	}
	return true
}

// permitted is the runtime purity guard, the same rule the checker applies.
func (m *machine) permitted(p *prim.Prim) error {
	switch m.purity {
	case pipeline.Unrestricted:
		return nil
	case pipeline.Sandbox:
		if m.allow.Allows(p.Name) {
			return nil
		}
		return fmt.Errorf("@%s (%s) is not in the sandbox allow list", p.Name, p.Effect)
	}
	return fmt.Errorf("@%s has effect %s, not permitted under %s purity", p.Name, p.Effect, m.purity)
}

func (m *machine) effect(o fomega.Origin, p *prim.Prim, args []Value) (Value, error) {
	if err := m.permitted(p); err != nil {
		return Value{}, &Error{Kind: ErrEffectDenied, Origin: o, Err: err}
	}
	lits, err := literals(o, p.Name, args)
	if err != nil {
		return Value{}, err
	}
	trace.Point(m.tr, trace.ScopeNode, "effect", "@"+p.Name, m.span)

	var out Value
	switch p.Name {
	case "print":
		err = m.host.Print(lits[0].Str)
		out = UnitValue()
	case "readFile":
		var s string
		s, err = m.host.ReadFile(lits[0].Str)
		out = StringValue(s)
	case "writeFile":
		err = m.host.WriteFile(lits[0].Str, lits[1].Str)
		out = UnitValue()
	case "env":
		out = StringValue(m.host.Getenv(lits[0].Str))
	case "now":
		out = IntValue(m.host.Now().Unix())
	default:
		return Value{}, errAt(o, ErrTypeConfusion, "no host operation for @%s", p.Name)
	}
	if err != nil {
		return Value{}, &Error{Kind: ErrEffectFailed, Origin: o, Msg: "@" + p.Name, Err: err}
	}
	return out, nil
}
