package lower

import (
	"langlang/internal/fomega"
	"langlang/internal/typedast"
)

type bindKind uint8

const (
	bindTerm bindKind = iota
	// bindTyVar: a type parameter, bound by a TyAbs or a forall.
	bindTyVar
)

type binding struct {
	name string
	kind bindKind
	// core type of a term binder
	typ *fomega.Type
	// alias is the type a let-bound term denotes, when it denotes one
	alias *fomega.Type
}

type env struct {
	parent *env
	binding
}

func (e *env) bind(b binding) *env { return &env{parent: e, binding: b} }

func (e *env) lookup(name string) (binding, bool) {
	for it := e; it != nil; it = it.parent {
		if it.name == name {
			return it.binding, true
		}
	}
	return binding{}, false
}

// isSort reports whether t classifies types: Type, or an arrow between sorts.
func isSort(t *typedast.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case typedast.TypeUniverse:
		return true
	case typedast.TypeFun:
		return isSort(t.Param) && isSort(t.Result)
	}
	return false
}

// kindOf computes the core kind of a sort.
func kindOf(t *typedast.Type) *fomega.Kind {
	if t.Kind == typedast.TypeFun {
		return fomega.KArrow(kindOf(t.Param), kindOf(t.Result))
	}
	return fomega.Star()
}

func varKind(k typedast.VarKind) *fomega.Kind {
	if k == typedast.KindRow {
		return fomega.Row()
	}
	return fomega.Star()
}

// typ lowers a TypedAST type. Stuck type-level computations the core cannot
// express become Dyn; casts at the seams keep the program well typed.
func (l *lowerer) typ(t *typedast.Type, en *env) *fomega.Type {
	if t == nil {
		l.fail(typedast.NoNode, "missing type")
	}
	switch t.Kind {
	case typedast.TypeCon:
		return fomega.TCon(t.Name)
	case typedast.TypeParam:
		return fomega.TVar(t.Name)
	case typedast.TypeMeta:
		l.fail(typedast.NoNode, "unsolved meta variable ?%d", t.Meta)
	case typedast.TypeDyn:
		return fomega.Dyn()
	case typedast.TypeUniverse:
		return fomega.TypeType()
	case typedast.TypeList:
		return fomega.TList(l.typ(t.Elem, en))
	case typedast.TypeRecord:
		fields := make([]fomega.FieldType, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = fomega.FieldType{Label: f.Label, Type: l.typ(f.Type, en)}
		}
		var rest *fomega.Type
		if t.Rest != nil {
			rest = l.typ(t.Rest, en)
		}
		return fomega.TRecord(fields, rest)
	case typedast.TypeFun:
		if isSort(t.Param) {
			k := kindOf(t.Param)
			if t.Binder == "" {
				body := l.typ(t.Result, en)
				return fomega.Forall(fomega.FreshName("t", fomega.FreeTypeVars(body)), k, body)
			}
			return fomega.Forall(t.Binder, k, l.typ(t.Result, en.bind(binding{name: t.Binder, kind: bindTyVar})))
		}
		inner := en
		if t.Binder != "" {
			inner = en.bind(binding{name: t.Binder, kind: bindTerm})
		}
		return fomega.Arrow(l.typ(t.Param, en), l.typ(t.Result, inner))
	case typedast.TypeTerm:
		if r := l.reify(t.Term, en); r != nil {
			return r
		}
		return fomega.Dyn()
	}
	l.fail(typedast.NoNode, "invalid type kind %s", t.Kind)
	return nil
}

// scheme lowers a scheme to a chain of foralls.
func (l *lowerer) scheme(s *typedast.Scheme, en *env) *fomega.Type {
	inner := en
	for _, v := range s.Vars {
		inner = inner.bind(binding{name: v.Name, kind: bindTyVar})
	}
	t := l.typ(s.Body, inner)
	for i := len(s.Vars) - 1; i >= 0; i-- {
		t = fomega.Forall(s.Vars[i].Name, varKind(s.Vars[i].Kind), t)
	}
	return t
}

// reify reads a term of some sort as a core type. It returns nil for terms
// that compute a type in a way the core cannot follow.
func (l *lowerer) reify(x *typedast.Expr, en *env) *fomega.Type {
	if x == nil {
		return nil
	}
	switch d := x.Data.(type) {
	case typedast.TypeValueData:
		return l.typ(d.Denotes, en)
	case typedast.VarData:
		b, ok := en.lookup(d.Name)
		switch {
		case !ok:
			return nil
		case b.kind == bindTyVar:
			return fomega.TVar(d.Name)
		}
		return b.alias
	case typedast.AppData:
		fn := l.reify(d.Fn, en)
		arg := l.reify(d.Arg, en)
		if fn == nil || arg == nil {
			return nil
		}
		return fomega.Reduce(fomega.TApp(fn, arg))
	case typedast.LambdaData:
		if !isSort(d.ParamType) || !isSort(d.Body.Type) {
			return nil
		}
		body := l.reify(d.Body, en.bind(binding{name: d.Param, kind: bindTyVar}))
		if body == nil {
			return nil
		}
		return fomega.TLam(d.Param, kindOf(d.ParamType), body)
	case typedast.AnnotData:
		return l.reify(d.Expr, en)
	}
	return nil
}

// typeTerm is the term standing for a type of kind k. A type operator is
// eta-expanded into type abstractions over a reified application, so its
// core type matches the lowered sort.
func typeTerm(o fomega.Origin, t *fomega.Type, k *fomega.Kind) (*fomega.Term, *fomega.Type) {
	if k.Tag != fomega.KindArrow {
		return fomega.TypeLit(o, t), fomega.TypeType()
	}
	name := fomega.FreshName("t", fomega.FreeTypeVars(t))
	body, bt := typeTerm(o, fomega.TApp(t, fomega.TVar(name)), k.To)
	return fomega.TyAbs(o, name, k.From, body), fomega.Forall(name, k.From, bt)
}

// dynOfKind is the least informative type of kind k.
func dynOfKind(k *fomega.Kind, avoid []string) *fomega.Type {
	switch k.Tag {
	case fomega.KindArrow:
		name := fomega.FreshName("t", avoid)
		return fomega.TLam(name, k.From, dynOfKind(k.To, append(avoid, name)))
	case fomega.KindRow:
		return fomega.TRecord(nil, nil)
	}
	return fomega.Dyn()
}
