package ast

// Children returns the direct sub-expressions of e in source order.
func Children(e *Expr) []*Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case LambdaData:
		if d.ParamType != nil {
			return []*Expr{d.ParamType, d.Body}
		}
		return []*Expr{d.Body}
	case AppData:
		return []*Expr{d.Fn, d.Arg}
	case LetData:
		if d.Annot != nil {
			return []*Expr{d.Annot, d.Value, d.Body}
		}
		return []*Expr{d.Value, d.Body}
	case RecordData:
		return fieldValues(d.Fields)
	case RecordTypeData:
		return fieldValues(d.Fields)
	case FieldData:
		return []*Expr{d.Record}
	case IfData:
		return []*Expr{d.Cond, d.Then, d.Else}
	case AnnotData:
		return []*Expr{d.Expr, d.Type}
	case BinaryData:
		return []*Expr{d.Left, d.Right}
	case UnaryData:
		return []*Expr{d.Operand}
	case ListData:
		return d.Elems
	case PrimData:
		return d.Args
	case PiData:
		return []*Expr{d.Domain, d.Codomain}
	case ForallData:
		return []*Expr{d.Body}
	}
	return nil
}

func fieldValues(fields []FieldInit) []*Expr {
	out := make([]*Expr, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Value)
	}
	return out
}

// Inspect walks e in pre-order. Returning false from fn skips the children.
func Inspect(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}

// Count returns the number of nodes in e.
func Count(e *Expr) int {
	n := 0
	Inspect(e, func(*Expr) bool { n++; return true })
	return n
}
