package fomega

// EqualType decides type equivalence: beta normal forms compared up to
// renaming of bound variables. Dyn is equal only to itself.
func EqualType(a, b *Type) bool {
	if a == b {
		return true
	}
	return alphaType(Reduce(a), Reduce(b), nil, nil)
}

func lookup(env []string, name string) int {
	for i := len(env) - 1; i >= 0; i-- {
		if env[i] == name {
			return i
		}
	}
	return -1
}

func alphaType(a, b *Type, la, lb []string) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TypeVar:
		ia, ib := lookup(la, a.Name), lookup(lb, b.Name)
		if ia < 0 && ib < 0 {
			return a.Name == b.Name
		}
		return ia == ib
	case TypeCon:
		return a.Name == b.Name
	case TypeArrow:
		return alphaType(a.Param, b.Param, la, lb) && alphaType(a.Result, b.Result, la, lb)
	case TypeForall, TypeLam:
		if !EqualKind(a.Kind, b.Kind) {
			return false
		}
		return alphaType(a.Body, b.Body, append(la[:len(la):len(la)], a.Name), append(lb[:len(lb):len(lb)], b.Name))
	case TypeApp:
		return alphaType(a.Fn, b.Fn, la, lb) && alphaType(a.Arg, b.Arg, la, lb)
	case TypeList:
		return alphaType(a.Elem, b.Elem, la, lb)
	case TypeRecord:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Label != b.Fields[i].Label || !alphaType(a.Fields[i].Type, b.Fields[i].Type, la, lb) {
				return false
			}
		}
		return alphaType(a.Rest, b.Rest, la, lb)
	}
	return true
}

// Consistent is the gradual relation: equality where Dyn matches anything.
// Casts are only well formed between consistent types.
func Consistent(a, b *Type) bool {
	return consistent(Reduce(a), Reduce(b), nil, nil)
}

func consistent(a, b *Type, la, lb []string) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag == TypeDyn || b.Tag == TypeDyn {
		return true
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TypeArrow:
		return consistent(a.Param, b.Param, la, lb) && consistent(a.Result, b.Result, la, lb)
	case TypeForall:
		if !EqualKind(a.Kind, b.Kind) {
			return false
		}
		return consistent(a.Body, b.Body, append(la[:len(la):len(la)], a.Name), append(lb[:len(lb):len(lb)], b.Name))
	case TypeList:
		return consistent(a.Elem, b.Elem, la, lb)
	case TypeRecord:
		// labels present on both sides must agree; two closed rows must
		// have the same labels
		for _, fa := range a.Fields {
			tb, ok := b.Field(fa.Label)
			if ok && !consistent(fa.Type, tb, la, lb) {
				return false
			}
			if !ok && b.Rest == nil {
				return false
			}
		}
		if a.Rest == nil && len(b.Fields) > len(a.Fields) {
			return false
		}
		return true
	}
	return alphaType(a, b, la, lb)
}

// SameType is exact structural equality, binder names included.
func SameType(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag || a.Name != b.Name || !EqualKind(a.Kind, b.Kind) {
		return false
	}
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Label != b.Fields[i].Label || !SameType(a.Fields[i].Type, b.Fields[i].Type) {
			return false
		}
	}
	return SameType(a.Param, b.Param) && SameType(a.Result, b.Result) &&
		SameType(a.Body, b.Body) && SameType(a.Fn, b.Fn) && SameType(a.Arg, b.Arg) &&
		SameType(a.Elem, b.Elem) && SameType(a.Rest, b.Rest)
}

// EqualTerm is exact structural equality including origins.
func EqualTerm(a, b *Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Origin != b.Origin {
		return false
	}
	switch da := a.Data.(type) {
	case VarData:
		return da == b.Data.(VarData)
	case LitData:
		return da == b.Data.(LitData)
	case LamData:
		db := b.Data.(LamData)
		return da.Param == db.Param && SameType(da.ParamType, db.ParamType) && EqualTerm(da.Body, db.Body)
	case AppData:
		db := b.Data.(AppData)
		return EqualTerm(da.Fn, db.Fn) && EqualTerm(da.Arg, db.Arg)
	case TyAbsData:
		db := b.Data.(TyAbsData)
		return da.Param == db.Param && EqualKind(da.Kind, db.Kind) && EqualTerm(da.Body, db.Body)
	case TyAppData:
		db := b.Data.(TyAppData)
		return EqualTerm(da.Fn, db.Fn) && SameType(da.Arg, db.Arg)
	case LetData:
		db := b.Data.(LetData)
		return da.Name == db.Name && SameType(da.Type, db.Type) && EqualTerm(da.Value, db.Value) && EqualTerm(da.Body, db.Body)
	case PrimData:
		db := b.Data.(PrimData)
		if da.Name != db.Name || len(da.TypeArgs) != len(db.TypeArgs) {
			return false
		}
		for i := range da.TypeArgs {
			if !SameType(da.TypeArgs[i], db.TypeArgs[i]) {
				return false
			}
		}
		return equalTerms(da.Args, db.Args)
	case IfData:
		db := b.Data.(IfData)
		return EqualTerm(da.Cond, db.Cond) && EqualTerm(da.Then, db.Then) && EqualTerm(da.Else, db.Else)
	case RecordData:
		db := b.Data.(RecordData)
		if len(da.Fields) != len(db.Fields) {
			return false
		}
		for i := range da.Fields {
			if da.Fields[i].Label != db.Fields[i].Label || !EqualTerm(da.Fields[i].Value, db.Fields[i].Value) {
				return false
			}
		}
		return true
	case FieldData:
		db := b.Data.(FieldData)
		return da.Label == db.Label && EqualTerm(da.Record, db.Record)
	case ListData:
		db := b.Data.(ListData)
		return SameType(da.Elem, db.Elem) && equalTerms(da.Elems, db.Elems)
	case CastData:
		db := b.Data.(CastData)
		return SameType(da.From, db.From) && SameType(da.To, db.To) && EqualTerm(da.Term, db.Term)
	case TypeLitData:
		return SameType(da.Type, b.Data.(TypeLitData).Type)
	}
	return false
}

func equalTerms(a, b []*Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualTerm(a[i], b[i]) {
			return false
		}
	}
	return true
}

func EqualUnit(a, b *Unit) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.File == b.File && a.Config == b.Config && SameType(a.Type, b.Type) && EqualTerm(a.Term, b.Term)
}
