package ast

// Equal reports structural equality including spans.
func Equal(a, b *Expr) bool {
	return eq(a, b, true, nil, nil)
}

// EqualUnit compares two units field by field.
func EqualUnit(a, b *Unit) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.File == b.File && Equal(a.Root, b.Root)
}

// AlphaEqual ignores spans and the names of bound variables.
func AlphaEqual(a, b *Expr) bool {
	return eq(a, b, false, nil, nil)
}

func lookup(env []string, name string) int {
	for i := len(env) - 1; i >= 0; i-- {
		if env[i] == name {
			return i
		}
	}
	return -1
}

// eq compares a and b. In alpha mode la/lb are the binder stacks; they are
// always the same length so equal indices mean the same binder.
func eq(a, b *Expr, spans bool, la, lb []string) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if spans && a.Span != b.Span {
		return false
	}
	sub := func(x, y *Expr) bool { return eq(x, y, spans, la, lb) }
	bind := func(xa, xb string, x, y *Expr) bool {
		if spans {
			return xa == xb && eq(x, y, spans, la, lb)
		}
		return eq(x, y, spans, append(la[:len(la):len(la)], xa), append(lb[:len(lb):len(lb)], xb))
	}
	switch da := a.Data.(type) {
	case LitData:
		db, ok := b.Data.(LitData)
		return ok && da == db
	case VarData:
		db, ok := b.Data.(VarData)
		if !ok {
			return false
		}
		if spans {
			return da.Name == db.Name
		}
		ia, ib := lookup(la, da.Name), lookup(lb, db.Name)
		if ia != ib {
			return false
		}
		return ia >= 0 || da.Name == db.Name
	case LambdaData:
		db, ok := b.Data.(LambdaData)
		return ok && sub(da.ParamType, db.ParamType) && bind(da.Param, db.Param, da.Body, db.Body)
	case AppData:
		db, ok := b.Data.(AppData)
		return ok && sub(da.Fn, db.Fn) && sub(da.Arg, db.Arg)
	case LetData:
		db, ok := b.Data.(LetData)
		return ok && sub(da.Annot, db.Annot) && sub(da.Value, db.Value) && bind(da.Name, db.Name, da.Body, db.Body)
	case RecordData:
		db, ok := b.Data.(RecordData)
		return ok && eqFields(da.Fields, db.Fields, spans, sub)
	case RecordTypeData:
		db, ok := b.Data.(RecordTypeData)
		return ok && eqFields(da.Fields, db.Fields, spans, sub)
	case FieldData:
		db, ok := b.Data.(FieldData)
		return ok && da.Label == db.Label && sub(da.Record, db.Record)
	case IfData:
		db, ok := b.Data.(IfData)
		return ok && sub(da.Cond, db.Cond) && sub(da.Then, db.Then) && sub(da.Else, db.Else)
	case AnnotData:
		db, ok := b.Data.(AnnotData)
		return ok && sub(da.Expr, db.Expr) && sub(da.Type, db.Type)
	case BinaryData:
		db, ok := b.Data.(BinaryData)
		return ok && da.Op == db.Op && sub(da.Left, db.Left) && sub(da.Right, db.Right)
	case UnaryData:
		db, ok := b.Data.(UnaryData)
		return ok && da.Op == db.Op && sub(da.Operand, db.Operand)
	case ListData:
		db, ok := b.Data.(ListData)
		return ok && eqList(da.Elems, db.Elems, sub)
	case PrimData:
		db, ok := b.Data.(PrimData)
		return ok && da.Name == db.Name && eqList(da.Args, db.Args, sub)
	case PiData:
		db, ok := b.Data.(PiData)
		return ok && sub(da.Domain, db.Domain) && bind(da.Binder, db.Binder, da.Codomain, db.Codomain)
	case ForallData:
		db, ok := b.Data.(ForallData)
		if !ok || len(da.Vars) != len(db.Vars) {
			return false
		}
		if spans {
			for i := range da.Vars {
				if da.Vars[i] != db.Vars[i] {
					return false
				}
			}
			return sub(da.Body, db.Body)
		}
		na := append(la[:len(la):len(la)], da.Vars...)
		nb := append(lb[:len(lb):len(lb)], db.Vars...)
		return eq(da.Body, db.Body, spans, na, nb)
	case UniverseData:
		_, ok := b.Data.(UniverseData)
		return ok
	}
	return false
}

func eqFields(a, b []FieldInit, spans bool, sub func(x, y *Expr) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Label != b[i].Label {
			return false
		}
		if spans && a[i].Span != b[i].Span {
			return false
		}
		if !sub(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

func eqList(a, b []*Expr, sub func(x, y *Expr) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sub(a[i], b[i]) {
			return false
		}
	}
	return true
}
