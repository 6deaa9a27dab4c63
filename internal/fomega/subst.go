package fomega

import (
	"slices"
	"strconv"
)

// FreeTypeVars lists free type variables in first-occurrence order.
func FreeTypeVars(t *Type) []string {
	var out []string
	var walk func(t *Type, bound []string)
	walk = func(t *Type, bound []string) {
		if t == nil {
			return
		}
		switch t.Tag {
		case TypeVar:
			if !slices.Contains(bound, t.Name) && !slices.Contains(out, t.Name) {
				out = append(out, t.Name)
			}
		case TypeArrow:
			walk(t.Param, bound)
			walk(t.Result, bound)
		case TypeForall, TypeLam:
			walk(t.Body, append(bound[:len(bound):len(bound)], t.Name))
		case TypeApp:
			walk(t.Fn, bound)
			walk(t.Arg, bound)
		case TypeList:
			walk(t.Elem, bound)
		case TypeRecord:
			for _, f := range t.Fields {
				walk(f.Type, bound)
			}
			walk(t.Rest, bound)
		}
	}
	walk(t, nil)
	return out
}

func freeIn(t *Type, name string) bool {
	return slices.Contains(FreeTypeVars(t), name)
}

// FreshName numbers base until it clashes with none of avoid.
func FreshName(base string, avoid []string) string {
	if base == "" {
		base = "t"
	}
	name := base
	for i := 1; slices.Contains(avoid, name); i++ {
		name = base + strconv.Itoa(i)
	}
	return name
}

// SubstType replaces free occurrences of name in t by s, renaming binders
// that would capture a free variable of s. A row variable replaced by a
// record type splices its fields into the enclosing record.
func SubstType(t *Type, name string, s *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Tag {
	case TypeVar:
		if t.Name == name {
			return s
		}
		return t
	case TypeCon, TypeDyn:
		return t
	case TypeArrow:
		return Arrow(SubstType(t.Param, name, s), SubstType(t.Result, name, s))
	case TypeForall, TypeLam:
		if t.Name == name || !freeIn(t.Body, name) {
			return t
		}
		binder, body := t.Name, t.Body
		if fv := FreeTypeVars(s); slices.Contains(fv, binder) {
			fresh := FreshName(binder, append(fv, FreeTypeVars(body)...))
			body = SubstType(body, binder, TVar(fresh))
			binder = fresh
		}
		return &Type{Tag: t.Tag, Name: binder, Kind: t.Kind, Body: SubstType(body, name, s)}
	case TypeApp:
		return TApp(SubstType(t.Fn, name, s), SubstType(t.Arg, name, s))
	case TypeList:
		return TList(SubstType(t.Elem, name, s))
	case TypeRecord:
		fields := make([]FieldType, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = FieldType{Label: f.Label, Type: SubstType(f.Type, name, s)}
		}
		return TRecord(fields, SubstType(t.Rest, name, s))
	}
	return t
}

// Reduce puts t in beta normal form. Types are strongly normalizing once
// kind-checked, so no fuel is needed.
func Reduce(t *Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Tag {
	case TypeArrow:
		return Arrow(Reduce(t.Param), Reduce(t.Result))
	case TypeForall, TypeLam:
		return &Type{Tag: t.Tag, Name: t.Name, Kind: t.Kind, Body: Reduce(t.Body)}
	case TypeApp:
		fn := Reduce(t.Fn)
		arg := Reduce(t.Arg)
		if fn.Tag == TypeLam {
			return Reduce(SubstType(fn.Body, fn.Name, arg))
		}
		return TApp(fn, arg)
	case TypeList:
		return TList(Reduce(t.Elem))
	case TypeRecord:
		fields := make([]FieldType, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = FieldType{Label: f.Label, Type: Reduce(f.Type)}
		}
		return TRecord(fields, Reduce(t.Rest))
	}
	return t
}
