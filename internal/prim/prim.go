// Package prim is the fixed catalog of primitive operations: the operators the
// surface syntax desugars into and the named @prim calls, pure or effectful.
package prim

import (
	"slices"
	"sort"
)

// Shape is the type of a primitive parameter or result. Var stands for the
// single type variable of a polymorphic primitive.
type Shape uint8

const (
	Int Shape = iota
	Bool
	String
	Unit
	Var
)

func (s Shape) String() string {
	switch s {
	case Int:
		return "Int"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Unit:
		return "Unit"
	case Var:
		return "a"
	default:
		return "?"
	}
}

// Effect classifies what a primitive may touch outside the program.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectConsole
	EffectFileRead
	EffectFileWrite
	EffectEnv
	EffectClock
)

func (e Effect) String() string {
	switch e {
	case EffectNone:
		return "none"
	case EffectConsole:
		return "console"
	case EffectFileRead:
		return "file-read"
	case EffectFileWrite:
		return "file-write"
	case EffectEnv:
		return "env"
	case EffectClock:
		return "clock"
	default:
		return "unknown"
	}
}

// Prim describes one catalog entry.
type Prim struct {
	Name   string
	Params []Shape
	Result Shape
	Effect Effect
	// Partial primitives may fail at runtime (div, mod) and are never folded.
	Partial bool
}

func (p *Prim) Arity() int { return len(p.Params) }

// Poly reports whether the signature mentions the type variable.
func (p *Prim) Poly() bool {
	return p.Result == Var || slices.Contains(p.Params, Var)
}

func (p *Prim) Pure() bool { return p.Effect == EffectNone }

// Foldable primitives may be evaluated at compile time.
func (p *Prim) Foldable() bool { return p.Pure() && !p.Partial }

func sig(name string, result Shape, params ...Shape) *Prim {
	return &Prim{Name: name, Params: params, Result: result}
}

func effect(p *Prim, e Effect) *Prim {
	p.Effect = e
	return p
}

func partial(p *Prim) *Prim {
	p.Partial = true
	return p
}

var catalog = map[string]*Prim{}

func init() {
	for _, p := range []*Prim{
		sig("add", Int, Int, Int),
		sig("sub", Int, Int, Int),
		sig("mul", Int, Int, Int),
		partial(sig("div", Int, Int, Int)),
		partial(sig("mod", Int, Int, Int)),
		sig("neg", Int, Int),
		sig("lt", Bool, Int, Int),
		sig("le", Bool, Int, Int),
		sig("gt", Bool, Int, Int),
		sig("ge", Bool, Int, Int),
		sig("eq", Bool, Var, Var),
		sig("ne", Bool, Var, Var),
		sig("not", Bool, Bool),
		sig("concat", String, String, String),
		sig("strlen", Int, String),
		sig("show", String, Var),
		sig("upper", String, String),
		sig("lower", String, String),
		effect(sig("print", Unit, String), EffectConsole),
		effect(sig("readFile", String, String), EffectFileRead),
		effect(sig("writeFile", Unit, String, String), EffectFileWrite),
		effect(sig("env", String, String), EffectEnv),
		effect(sig("now", Int, Unit), EffectClock),
	} {
		catalog[p.Name] = p
	}
}

// Lookup finds a primitive by name.
func Lookup(name string) (*Prim, bool) {
	p, ok := catalog[name]
	return p, ok
}

// Names lists the catalog in sorted order.
func Names() []string {
	out := make([]string, 0, len(catalog))
	for n := range catalog {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Effectful lists the names of primitives with an effect class, sorted.
func Effectful() []string {
	var out []string
	for _, n := range Names() {
		if !catalog[n].Pure() {
			out = append(out, n)
		}
	}
	return out
}
