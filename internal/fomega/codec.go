package fomega

import (
	"langlang/internal/ast"
	"langlang/internal/wire"
)

const (
	schemaKind = "fomega.Kind"
	schemaType = "fomega.Type"
	schemaTerm = "fomega.Term"
)

var kindFieldCount = [...]int{
	KindStar:  0,
	KindArrow: 2,
	KindRow:   0,
}

var typeFieldCount = [...]int{
	TypeVar:    1,
	TypeCon:    1,
	TypeArrow:  2,
	TypeForall: 3,
	TypeLam:    3,
	TypeApp:    2,
	TypeRecord: 2,
	TypeList:   1,
	TypeDyn:    0,
}

// payload fields after [tag, origin]
var termFieldCount = [...]int{
	TermVar:     1,
	TermLam:     3,
	TermApp:     2,
	TermTyAbs:   3,
	TermTyApp:   2,
	TermLet:     4,
	TermLit:     4,
	TermPrim:    3,
	TermIf:      3,
	TermRecord:  1,
	TermField:   2,
	TermList:    2,
	TermCast:    3,
	TermTypeLit: 1,
}

func Marshal(u *Unit) ([]byte, error) {
	return wire.Marshal(func(e *wire.Encoder) { EncodeUnit(e, u) })
}

func Unmarshal(payload []byte) (*Unit, error) {
	var u *Unit
	if err := wire.Unmarshal(payload, "fomega.Unit", func(d *wire.Decoder) { u = DecodeUnit(d) }); err != nil {
		return nil, err
	}
	return u, nil
}

func EncodeUnit(e *wire.Encoder, u *Unit) {
	e.Array(4)
	e.String(u.File)
	e.Config(u.Config)
	EncodeTerm(e, u.Term)
	EncodeType(e, u.Type)
}

func DecodeUnit(d *wire.Decoder) *Unit {
	if !d.Expect("fomega.Unit", d.Array(), 4) {
		return nil
	}
	u := &Unit{File: d.String(), Config: d.Config()}
	u.Term = requiredTerm(d, "unit term")
	u.Type = requiredType(d, "unit type")
	if d.Failed() {
		return nil
	}
	return u
}

func EncodeKind(e *wire.Encoder, k *Kind) {
	if k == nil {
		e.Nil()
		return
	}
	e.Node(uint8(k.Tag), kindFieldCount[k.Tag])
	if k.Tag == KindArrow {
		EncodeKind(e, k.From)
		EncodeKind(e, k.To)
	}
}

func DecodeKind(d *wire.Decoder) *Kind {
	if d.Failed() {
		return nil
	}
	if d.IsNil() {
		d.Failf("missing kind")
		return nil
	}
	tag, n := d.Node()
	if d.Failed() {
		return nil
	}
	kt := KindTag(tag)
	if !kt.Valid() {
		d.Fail(wire.UnsupportedVariant(schemaKind, int(tag)))
		return nil
	}
	if !d.Expect("kind", n, kindFieldCount[kt]) {
		return nil
	}
	switch kt {
	case KindStar:
		return Star()
	case KindRow:
		return Row()
	}
	k := KArrow(DecodeKind(d), DecodeKind(d))
	if d.Failed() {
		return nil
	}
	return k
}

func EncodeType(e *wire.Encoder, t *Type) {
	if t == nil {
		e.Nil()
		return
	}
	e.Node(uint8(t.Tag), typeFieldCount[t.Tag])
	switch t.Tag {
	case TypeVar, TypeCon:
		e.String(t.Name)
	case TypeArrow:
		EncodeType(e, t.Param)
		EncodeType(e, t.Result)
	case TypeForall, TypeLam:
		e.String(t.Name)
		EncodeKind(e, t.Kind)
		EncodeType(e, t.Body)
	case TypeApp:
		EncodeType(e, t.Fn)
		EncodeType(e, t.Arg)
	case TypeRecord:
		e.Array(len(t.Fields))
		for _, f := range t.Fields {
			e.Array(2)
			e.String(f.Label)
			EncodeType(e, f.Type)
		}
		EncodeType(e, t.Rest)
	case TypeList:
		EncodeType(e, t.Elem)
	}
}

func DecodeType(d *wire.Decoder) *Type {
	if d.Failed() || d.IsNil() {
		return nil
	}
	tag, n := d.Node()
	if d.Failed() {
		return nil
	}
	tt := TypeTag(tag)
	if !tt.Valid() {
		d.Fail(wire.UnsupportedVariant(schemaType, int(tag)))
		return nil
	}
	if !d.Expect("type "+tt.String(), n, typeFieldCount[tt]) {
		return nil
	}
	var t *Type
	switch tt {
	case TypeVar:
		t = TVar(d.String())
	case TypeCon:
		name := d.String()
		if !d.Failed() && !IsCon(name) {
			d.Failf("unknown type constructor %q", name)
		}
		t = TCon(name)
	case TypeArrow:
		t = Arrow(requiredType(d, "parameter type"), requiredType(d, "result type"))
	case TypeForall:
		t = Forall(d.String(), DecodeKind(d), requiredType(d, "forall body"))
	case TypeLam:
		t = TLam(d.String(), DecodeKind(d), requiredType(d, "operator body"))
	case TypeApp:
		t = TApp(requiredType(d, "operator"), requiredType(d, "operand"))
	case TypeRecord:
		m := d.Array()
		fields := make([]FieldType, 0, m)
		for i := 0; i < m && !d.Failed(); i++ {
			if !d.Expect("field type", d.Array(), 2) {
				break
			}
			fields = append(fields, FieldType{Label: d.String(), Type: requiredType(d, "field type")})
		}
		rest := DecodeType(d)
		for i := 1; i < len(fields) && !d.Failed(); i++ {
			if fields[i-1].Label >= fields[i].Label {
				d.Failf("record fields not sorted or duplicated at %q", fields[i].Label)
			}
		}
		if len(fields) == 0 {
			fields = nil
		}
		t = &Type{Tag: TypeRecord, Fields: fields, Rest: rest}
	case TypeList:
		t = TList(requiredType(d, "element type"))
	case TypeDyn:
		t = Dyn()
	}
	if d.Failed() {
		return nil
	}
	return t
}

func requiredType(d *wire.Decoder, what string) *Type {
	if d.Failed() {
		return nil
	}
	t := DecodeType(d)
	if t == nil && !d.Failed() {
		d.Failf("missing %s", what)
	}
	return t
}

func EncodeTerm(e *wire.Encoder, t *Term) {
	if t == nil {
		e.Nil()
		return
	}
	e.Node(uint8(t.Kind), 1+termFieldCount[t.Kind])
	e.Uint(uint64(t.Origin))
	switch d := t.Data.(type) {
	case VarData:
		e.String(d.Name)
	case LamData:
		e.String(d.Param)
		EncodeType(e, d.ParamType)
		EncodeTerm(e, d.Body)
	case AppData:
		EncodeTerm(e, d.Fn)
		EncodeTerm(e, d.Arg)
	case TyAbsData:
		e.String(d.Param)
		EncodeKind(e, d.Kind)
		EncodeTerm(e, d.Body)
	case TyAppData:
		EncodeTerm(e, d.Fn)
		EncodeType(e, d.Arg)
	case LetData:
		e.String(d.Name)
		EncodeType(e, d.Type)
		EncodeTerm(e, d.Value)
		EncodeTerm(e, d.Body)
	case LitData:
		e.Uint(uint64(d.Lit.Kind))
		e.Int(d.Lit.Int)
		e.Bool(d.Lit.Bool)
		e.String(d.Lit.Str)
	case PrimData:
		e.String(d.Name)
		e.Array(len(d.TypeArgs))
		for _, a := range d.TypeArgs {
			EncodeType(e, a)
		}
		encodeTerms(e, d.Args)
	case IfData:
		EncodeTerm(e, d.Cond)
		EncodeTerm(e, d.Then)
		EncodeTerm(e, d.Else)
	case RecordData:
		e.Array(len(d.Fields))
		for _, f := range d.Fields {
			e.Array(2)
			e.String(f.Label)
			EncodeTerm(e, f.Value)
		}
	case FieldData:
		EncodeTerm(e, d.Record)
		e.String(d.Label)
	case ListData:
		EncodeType(e, d.Elem)
		encodeTerms(e, d.Elems)
	case CastData:
		EncodeTerm(e, d.Term)
		EncodeType(e, d.From)
		EncodeType(e, d.To)
	case TypeLitData:
		EncodeType(e, d.Type)
	}
}

func encodeTerms(e *wire.Encoder, ts []*Term) {
	e.Array(len(ts))
	for _, t := range ts {
		EncodeTerm(e, t)
	}
}

func DecodeTerm(d *wire.Decoder) *Term {
	if d.Failed() || d.IsNil() {
		return nil
	}
	tag, n := d.Node()
	if d.Failed() {
		return nil
	}
	kind := TermKind(tag)
	if !kind.Valid() {
		d.Fail(wire.UnsupportedVariant(schemaTerm, int(tag)))
		return nil
	}
	if !d.Expect(kind.String(), n, 1+termFieldCount[kind]) {
		return nil
	}
	t := &Term{Kind: kind, Origin: Origin(d.Uint32())}
	switch kind {
	case TermVar:
		t.Data = VarData{Name: d.String()}
	case TermLam:
		t.Data = LamData{Param: d.String(), ParamType: requiredType(d, "parameter type"), Body: requiredTerm(d, "lambda body")}
	case TermApp:
		t.Data = AppData{Fn: requiredTerm(d, "function"), Arg: requiredTerm(d, "argument")}
	case TermTyAbs:
		t.Data = TyAbsData{Param: d.String(), Kind: DecodeKind(d), Body: requiredTerm(d, "type abstraction body")}
	case TermTyApp:
		t.Data = TyAppData{Fn: requiredTerm(d, "instantiated term"), Arg: requiredType(d, "type argument")}
	case TermLet:
		t.Data = LetData{
			Name:  d.String(),
			Type:  requiredType(d, "let type"),
			Value: requiredTerm(d, "let value"),
			Body:  requiredTerm(d, "let body"),
		}
	case TermLit:
		lk := ast.LitKind(d.Uint8())
		if !d.Failed() && lk > ast.LitUnit {
			d.Fail(wire.UnsupportedVariant("ast.LitKind", int(lk)))
		}
		t.Data = LitData{Lit: ast.LitData{Kind: lk, Int: d.Int(), Bool: d.Bool(), Str: d.String()}}
	case TermPrim:
		name := d.String()
		m := d.Array()
		var targs []*Type
		for i := 0; i < m && !d.Failed(); i++ {
			targs = append(targs, requiredType(d, "type argument"))
		}
		t.Data = PrimData{Name: name, TypeArgs: targs, Args: decodeTerms(d)}
	case TermIf:
		t.Data = IfData{Cond: requiredTerm(d, "condition"), Then: requiredTerm(d, "then"), Else: requiredTerm(d, "else")}
	case TermRecord:
		m := d.Array()
		var fields []Field
		for i := 0; i < m && !d.Failed(); i++ {
			if !d.Expect("field", d.Array(), 2) {
				break
			}
			fields = append(fields, Field{Label: d.String(), Value: requiredTerm(d, "field value")})
		}
		t.Data = RecordData{Fields: fields}
	case TermField:
		t.Data = FieldData{Record: requiredTerm(d, "record"), Label: d.String()}
	case TermList:
		t.Data = ListData{Elem: requiredType(d, "element type"), Elems: decodeTerms(d)}
	case TermCast:
		t.Data = CastData{Term: requiredTerm(d, "cast operand"), From: requiredType(d, "cast source"), To: requiredType(d, "cast target")}
	case TermTypeLit:
		t.Data = TypeLitData{Type: requiredType(d, "reified type")}
	}
	if d.Failed() {
		return nil
	}
	return t
}

func requiredTerm(d *wire.Decoder, what string) *Term {
	if d.Failed() {
		return nil
	}
	t := DecodeTerm(d)
	if t == nil && !d.Failed() {
		d.Failf("missing %s", what)
	}
	return t
}

func decodeTerms(d *wire.Decoder) []*Term {
	m := d.Array()
	var out []*Term
	for i := 0; i < m && !d.Failed(); i++ {
		out = append(out, requiredTerm(d, "element"))
	}
	return out
}
