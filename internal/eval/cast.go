package eval

import (
	"langlang/internal/fomega"
)

// cast converts v from type from to type to. Both types are resolved and
// reduced. First-order values are checked now; functions and type
// abstractions get a proxy that checks at each use.
func (m *machine) cast(o fomega.Origin, v Value, from, to *fomega.Type) (Value, error) {
	if fomega.EqualType(from, to) {
		return v, nil
	}
	if to.Tag == fomega.TypeDyn {
		if v.Kind == ValBox {
			return v, nil
		}
		return box(v, from), nil
	}
	if from.Tag == fomega.TypeDyn {
		tag, inner := v.Type, v
		if v.Kind == ValBox {
			inner = *v.Inner
		} else {
			tag = shapeOf(v)
		}
		if tag == nil {
			return Value{}, errAt(o, ErrTypeConfusion, "cannot cast %s to %s", v.Kind, to)
		}
		return m.cast(o, inner, tag, to)
	}

	switch to.Tag {
	case fomega.TypeCon:
		if from.Tag == fomega.TypeCon && from.Name == to.Name {
			return v, nil
		}
	case fomega.TypeArrow, fomega.TypeForall:
		if from.Tag == to.Tag && compatible(from, to) {
			return proxy(v, from, to), nil
		}
	case fomega.TypeList:
		if from.Tag != fomega.TypeList || v.Kind != ValList {
			break
		}
		elems := make([]Value, len(v.Elems))
		for i, e := range v.Elems {
			c, err := m.cast(o, e, from.Elem, to.Elem)
			if err != nil {
				return Value{}, err
			}
			elems[i] = c
		}
		return ListValue(elems...), nil
	case fomega.TypeRecord:
		if from.Tag != fomega.TypeRecord || v.Kind != ValRecord {
			break
		}
		return m.castRecord(o, v, from, to)
	}
	return Value{}, errAt(o, ErrTypeConfusion, "cannot cast %s of type %s to %s", v, from, to)
}

// castRecord casts the fields the target names; the value must have at
// least those fields and keeps the rest unchanged.
func (m *machine) castRecord(o fomega.Origin, v Value, from, to *fomega.Type) (Value, error) {
	out := make([]FieldValue, len(v.Fields))
	copy(out, v.Fields)
	for _, want := range to.Fields {
		i := fieldIndex(out, want.Label)
		if i < 0 {
			return Value{}, errAt(o, ErrFieldNotFound, "record %s has no field %s required by %s", v, want.Label, to)
		}
		ft, ok := from.Field(want.Label)
		if !ok {
			ft = fomega.Dyn()
		}
		c, err := m.cast(o, out[i].Value, ft, want.Type)
		if err != nil {
			return Value{}, err
		}
		out[i].Value = c
	}
	return Value{Kind: ValRecord, Fields: out}, nil
}

func fieldIndex(fs []FieldValue, label string) int {
	for i, f := range fs {
		if f.Label == label {
			return i
		}
	}
	return -1
}

// shapeOf recovers the type of an unboxed first-order value.
func shapeOf(v Value) *fomega.Type {
	switch v.Kind {
	case ValInt:
		return fomega.Int()
	case ValBool:
		return fomega.Bool()
	case ValString:
		return fomega.String()
	case ValUnit:
		return fomega.UnitType()
	case ValType:
		return fomega.TypeType()
	case ValList:
		return fomega.TList(fomega.Dyn())
	case ValRecord:
		fields := make([]fomega.FieldType, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = fomega.FieldType{Label: f.Label, Type: fomega.Dyn()}
		}
		return fomega.TRecord(fields, nil)
	case ValProxy:
		return v.To
	}
	return nil
}

// compatible is consistency with the record rule used at run time: the
// source must have at least the labels the target names.
func compatible(a, b *fomega.Type) bool {
	if a.Tag == fomega.TypeDyn || b.Tag == fomega.TypeDyn {
		return true
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case fomega.TypeCon, fomega.TypeVar:
		return a.Name == b.Name
	case fomega.TypeArrow:
		return compatible(a.Param, b.Param) && compatible(a.Result, b.Result)
	case fomega.TypeList:
		return compatible(a.Elem, b.Elem)
	case fomega.TypeRecord:
		for _, f := range b.Fields {
			ft, ok := a.Field(f.Label)
			if !ok {
				if a.Rest == nil {
					return false
				}
				continue
			}
			if !compatible(ft, f.Type) {
				return false
			}
		}
		return true
	case fomega.TypeForall:
		if !fomega.EqualKind(a.Kind, b.Kind) {
			return false
		}
		return compatible(a.Body, fomega.SubstType(b.Body, b.Name, fomega.TVar(a.Name)))
	}
	return fomega.EqualType(a, b)
}
