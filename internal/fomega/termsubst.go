package fomega

import "slices"

// FreeVars lists the free term variables of t in first-occurrence order.
func FreeVars(t *Term) []string {
	var out []string
	var walk func(t *Term, bound []string)
	walk = func(t *Term, bound []string) {
		if t == nil {
			return
		}
		switch d := t.Data.(type) {
		case VarData:
			if !slices.Contains(bound, d.Name) && !slices.Contains(out, d.Name) {
				out = append(out, d.Name)
			}
		case LamData:
			walk(d.Body, append(bound[:len(bound):len(bound)], d.Param))
		case LetData:
			walk(d.Value, bound)
			walk(d.Body, append(bound[:len(bound):len(bound)], d.Name))
		default:
			for _, c := range Children(t) {
				walk(c, bound)
			}
		}
	}
	walk(t, nil)
	return out
}

// FreeTypeVarsOf lists the type variables free in the types t mentions.
func FreeTypeVarsOf(t *Term) []string {
	var out []string
	add := func(ty *Type, bound []string) {
		for _, n := range FreeTypeVars(ty) {
			if !slices.Contains(bound, n) && !slices.Contains(out, n) {
				out = append(out, n)
			}
		}
	}
	var walk func(t *Term, bound []string)
	walk = func(t *Term, bound []string) {
		if t == nil {
			return
		}
		switch d := t.Data.(type) {
		case TyAbsData:
			walk(d.Body, append(bound[:len(bound):len(bound)], d.Param))
			return
		case LamData:
			add(d.ParamType, bound)
		case TyAppData:
			add(d.Arg, bound)
		case LetData:
			add(d.Type, bound)
		case PrimData:
			for _, a := range d.TypeArgs {
				add(a, bound)
			}
		case ListData:
			add(d.Elem, bound)
		case CastData:
			add(d.From, bound)
			add(d.To, bound)
		case TypeLitData:
			add(d.Type, bound)
		}
		for _, c := range Children(t) {
			walk(c, bound)
		}
	}
	walk(t, nil)
	return out
}

// Occurrences counts the free occurrences of x in t.
func Occurrences(t *Term, x string) int {
	if t == nil {
		return 0
	}
	switch d := t.Data.(type) {
	case VarData:
		if d.Name == x {
			return 1
		}
		return 0
	case LamData:
		if d.Param == x {
			return 0
		}
	case LetData:
		n := Occurrences(d.Value, x)
		if d.Name != x {
			n += Occurrences(d.Body, x)
		}
		return n
	}
	n := 0
	for _, c := range Children(t) {
		n += Occurrences(c, x)
	}
	return n
}

// SubstTerm replaces the free occurrences of x in t by v. Term and type
// binders that would capture a free variable of v are renamed.
func SubstTerm(t *Term, x string, v *Term) *Term {
	return (&termSubst{x: x, v: v, fv: FreeVars(v), ftv: FreeTypeVarsOf(v)}).term(t)
}

type termSubst struct {
	x   string
	v   *Term
	fv  []string
	ftv []string
	// renaming keeps the origin of each replaced occurrence
	renaming bool
}

func (s *termSubst) term(t *Term) *Term {
	if t == nil {
		return nil
	}
	switch d := t.Data.(type) {
	case VarData:
		switch {
		case d.Name != s.x:
			return t
		case s.renaming:
			return Var(t.Origin, s.v.Data.(VarData).Name)
		}
		return s.v
	case LamData:
		if d.Param == s.x || Occurrences(d.Body, s.x) == 0 {
			return t
		}
		param, body := s.rename(d.Param, d.Body)
		return Lam(t.Origin, param, d.ParamType, s.term(body))
	case LetData:
		value := s.term(d.Value)
		if d.Name == s.x || Occurrences(d.Body, s.x) == 0 {
			return Let(t.Origin, d.Name, d.Type, value, d.Body)
		}
		name, body := s.rename(d.Name, d.Body)
		return Let(t.Origin, name, d.Type, value, s.term(body))
	case TyAbsData:
		if Occurrences(d.Body, s.x) == 0 {
			return t
		}
		param, body := d.Param, d.Body
		if slices.Contains(s.ftv, param) {
			param = FreshName(param, append(slices.Clone(s.ftv), FreeTypeVarsOf(body)...))
			body = SubstTypeInTerm(body, d.Param, TVar(param))
		}
		return TyAbs(t.Origin, param, d.Kind, s.term(body))
	}
	return MapChildren(t, s.term)
}

// rename picks a fresh binder when name would capture a free variable of v.
func (s *termSubst) rename(name string, body *Term) (string, *Term) {
	if !slices.Contains(s.fv, name) {
		return name, body
	}
	avoid := append(slices.Clone(s.fv), FreeVars(body)...)
	avoid = append(avoid, s.x)
	fresh := FreshName(name, avoid)
	r := &termSubst{x: name, v: Var(0, fresh), fv: []string{fresh}, renaming: true}
	return fresh, r.term(body)
}

// SubstTypeInTerm replaces the free type variable a by ty in every type
// annotation of t.
func SubstTypeInTerm(t *Term, a string, ty *Type) *Term {
	if t == nil {
		return nil
	}
	sub := func(x *Type) *Type { return SubstType(x, a, ty) }
	switch d := t.Data.(type) {
	case TyAbsData:
		if d.Param == a {
			return t
		}
		param, body := d.Param, d.Body
		if fv := FreeTypeVars(ty); slices.Contains(fv, param) {
			param = FreshName(param, append(fv, FreeTypeVarsOf(body)...))
			body = SubstTypeInTerm(body, d.Param, TVar(param))
		}
		return TyAbs(t.Origin, param, d.Kind, SubstTypeInTerm(body, a, ty))
	case LamData:
		return Lam(t.Origin, d.Param, sub(d.ParamType), SubstTypeInTerm(d.Body, a, ty))
	case TyAppData:
		return TyApp(t.Origin, SubstTypeInTerm(d.Fn, a, ty), sub(d.Arg))
	case LetData:
		return Let(t.Origin, d.Name, sub(d.Type), SubstTypeInTerm(d.Value, a, ty), SubstTypeInTerm(d.Body, a, ty))
	case PrimData:
		targs := make([]*Type, len(d.TypeArgs))
		for i, x := range d.TypeArgs {
			targs[i] = sub(x)
		}
		args := make([]*Term, len(d.Args))
		for i, x := range d.Args {
			args[i] = SubstTypeInTerm(x, a, ty)
		}
		return Prim(t.Origin, d.Name, targs, args...)
	case ListData:
		elems := make([]*Term, len(d.Elems))
		for i, x := range d.Elems {
			elems[i] = SubstTypeInTerm(x, a, ty)
		}
		return List(t.Origin, sub(d.Elem), elems...)
	case CastData:
		return Cast(t.Origin, SubstTypeInTerm(d.Term, a, ty), sub(d.From), sub(d.To))
	case TypeLitData:
		return TypeLit(t.Origin, sub(d.Type))
	}
	return MapChildren(t, func(c *Term) *Term { return SubstTypeInTerm(c, a, ty) })
}

// MapChildren rebuilds t with f applied to each direct subterm. Binder
// nodes are rebuilt as they are; callers handle scoping themselves.
func MapChildren(t *Term, f func(*Term) *Term) *Term {
	if t == nil {
		return nil
	}
	switch d := t.Data.(type) {
	case LamData:
		return Lam(t.Origin, d.Param, d.ParamType, f(d.Body))
	case AppData:
		return App(t.Origin, f(d.Fn), f(d.Arg))
	case TyAbsData:
		return TyAbs(t.Origin, d.Param, d.Kind, f(d.Body))
	case TyAppData:
		return TyApp(t.Origin, f(d.Fn), d.Arg)
	case LetData:
		return Let(t.Origin, d.Name, d.Type, f(d.Value), f(d.Body))
	case PrimData:
		args := make([]*Term, len(d.Args))
		for i, a := range d.Args {
			args[i] = f(a)
		}
		return Prim(t.Origin, d.Name, d.TypeArgs, args...)
	case IfData:
		return If(t.Origin, f(d.Cond), f(d.Then), f(d.Else))
	case RecordData:
		fields := make([]Field, len(d.Fields))
		for i, fl := range d.Fields {
			fields[i] = Field{Label: fl.Label, Value: f(fl.Value)}
		}
		return Record(t.Origin, fields...)
	case FieldData:
		return FieldOf(t.Origin, f(d.Record), d.Label)
	case ListData:
		elems := make([]*Term, len(d.Elems))
		for i, e := range d.Elems {
			elems[i] = f(e)
		}
		return List(t.Origin, d.Elem, elems...)
	case CastData:
		return Cast(t.Origin, f(d.Term), d.From, d.To)
	}
	return t
}
