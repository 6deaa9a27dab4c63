package typedast

// EqualType is structural equality; embedded terms compare with Equal.
func EqualType(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TypeCon, TypeParam:
		return a.Name == b.Name
	case TypeMeta:
		return a.Meta == b.Meta
	case TypeFun:
		return a.Binder == b.Binder && EqualType(a.Param, b.Param) && EqualType(a.Result, b.Result)
	case TypeList:
		return EqualType(a.Elem, b.Elem)
	case TypeRecord:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Label != b.Fields[i].Label || !EqualType(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return EqualType(a.Rest, b.Rest)
	case TypeTerm:
		return Equal(a.Term, b.Term)
	}
	return true
}

func EqualScheme(a, b *Scheme) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Vars) != len(b.Vars) {
		return false
	}
	for i := range a.Vars {
		if a.Vars[i] != b.Vars[i] {
			return false
		}
	}
	return EqualType(a.Body, b.Body)
}

func EqualUnit(a, b *Unit) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.File == b.File && a.Config == b.Config && EqualScheme(a.Scheme, b.Scheme) && Equal(a.Root, b.Root)
}

// Equal compares ids, spans, types and payloads.
func Equal(a, b *Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Kind != b.Kind || a.Span != b.Span || !EqualType(a.Type, b.Type) {
		return false
	}
	switch da := a.Data.(type) {
	case LitData:
		db, ok := b.Data.(LitData)
		return ok && da == db
	case VarData:
		db, ok := b.Data.(VarData)
		return ok && da.Name == db.Name && equalTypes(da.TypeArgs, db.TypeArgs)
	case LambdaData:
		db, ok := b.Data.(LambdaData)
		return ok && da.Param == db.Param && da.Annotated == db.Annotated &&
			EqualType(da.ParamType, db.ParamType) && Equal(da.Body, db.Body)
	case AppData:
		db, ok := b.Data.(AppData)
		return ok && Equal(da.Fn, db.Fn) && Equal(da.Arg, db.Arg)
	case LetData:
		db, ok := b.Data.(LetData)
		return ok && da.Name == db.Name && EqualScheme(da.Scheme, db.Scheme) && EqualScheme(da.Annot, db.Annot) &&
			Equal(da.Value, db.Value) && Equal(da.Body, db.Body)
	case RecordData:
		db, ok := b.Data.(RecordData)
		if !ok || len(da.Fields) != len(db.Fields) {
			return false
		}
		for i := range da.Fields {
			fa, fb := da.Fields[i], db.Fields[i]
			if fa.Label != fb.Label || fa.Span != fb.Span || !Equal(fa.Value, fb.Value) {
				return false
			}
		}
		return true
	case FieldData:
		db, ok := b.Data.(FieldData)
		return ok && da.Label == db.Label && Equal(da.Record, db.Record)
	case IfData:
		db, ok := b.Data.(IfData)
		return ok && Equal(da.Cond, db.Cond) && Equal(da.Then, db.Then) && Equal(da.Else, db.Else)
	case AnnotData:
		db, ok := b.Data.(AnnotData)
		return ok && EqualType(da.Annot, db.Annot) && Equal(da.Expr, db.Expr)
	case BinaryData:
		db, ok := b.Data.(BinaryData)
		return ok && da.Op == db.Op && Equal(da.Left, db.Left) && Equal(da.Right, db.Right)
	case UnaryData:
		db, ok := b.Data.(UnaryData)
		return ok && da.Op == db.Op && Equal(da.Operand, db.Operand)
	case ListData:
		db, ok := b.Data.(ListData)
		return ok && equalExprs(da.Elems, db.Elems)
	case PrimData:
		db, ok := b.Data.(PrimData)
		return ok && da.Name == db.Name && equalExprs(da.Args, db.Args)
	case CastData:
		db, ok := b.Data.(CastData)
		return ok && EqualType(da.From, db.From) && EqualType(da.To, db.To) && Equal(da.Expr, db.Expr)
	case TypeValueData:
		db, ok := b.Data.(TypeValueData)
		return ok && EqualType(da.Denotes, db.Denotes)
	}
	return false
}

func equalTypes(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualType(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalExprs(a, b []*Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
