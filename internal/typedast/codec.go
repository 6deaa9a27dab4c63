package typedast

import (
	"langlang/internal/ast"
	"langlang/internal/wire"
)

const (
	schemaType = "typedast.Type"
	schemaExpr = "typedast.Expr"
)

var typeFieldCount = [...]int{
	TypeCon:      1,
	TypeMeta:     1,
	TypeParam:    1,
	TypeFun:      3,
	TypeRecord:   2,
	TypeList:     1,
	TypeDyn:      0,
	TypeUniverse: 0,
	TypeTerm:     1,
}

// payload fields after [tag, id, span, type]
var exprFieldCount = [...]int{
	ExprLit:       4,
	ExprVar:       2,
	ExprLambda:    4,
	ExprApp:       2,
	ExprLet:       5,
	ExprRecord:    1,
	ExprField:     2,
	ExprIf:        3,
	ExprAnnot:     2,
	ExprBinary:    3,
	ExprUnary:     2,
	ExprList:      1,
	ExprPrim:      2,
	ExprCast:      3,
	ExprTypeValue: 1,
}

const exprHeader = 3

func Marshal(u *Unit) ([]byte, error) {
	return wire.Marshal(func(e *wire.Encoder) { EncodeUnit(e, u) })
}

func Unmarshal(payload []byte) (*Unit, error) {
	var u *Unit
	if err := wire.Unmarshal(payload, "typedast.Unit", func(d *wire.Decoder) { u = DecodeUnit(d) }); err != nil {
		return nil, err
	}
	return u, nil
}

func EncodeUnit(e *wire.Encoder, u *Unit) {
	e.Array(4)
	e.String(u.File)
	e.Config(u.Config)
	EncodeExpr(e, u.Root)
	EncodeScheme(e, u.Scheme)
}

func DecodeUnit(d *wire.Decoder) *Unit {
	if !d.Expect("typedast.Unit", d.Array(), 4) {
		return nil
	}
	u := &Unit{File: d.String(), Config: d.Config()}
	u.Root = requiredExpr(d, "root")
	u.Scheme = DecodeScheme(d)
	if !d.Failed() && u.Scheme == nil {
		d.Failf("missing unit scheme")
	}
	if d.Failed() {
		return nil
	}
	return u
}

func EncodeType(e *wire.Encoder, t *Type) {
	if t == nil {
		e.Nil()
		return
	}
	e.Node(uint8(t.Kind), typeFieldCount[t.Kind])
	switch t.Kind {
	case TypeCon, TypeParam:
		e.String(t.Name)
	case TypeMeta:
		e.Uint(uint64(t.Meta))
	case TypeFun:
		e.String(t.Binder)
		EncodeType(e, t.Param)
		EncodeType(e, t.Result)
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
	case TypeTerm:
		EncodeExpr(e, t.Term)
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
	kind := TypeKind(tag)
	if !kind.Valid() {
		d.Fail(wire.UnsupportedVariant(schemaType, int(tag)))
		return nil
	}
	if !d.Expect("type "+kind.String(), n, typeFieldCount[kind]) {
		return nil
	}
	var t *Type
	switch kind {
	case TypeCon:
		name := d.String()
		if !d.Failed() && !IsBaseCon(name) {
			d.Failf("unknown type constructor %q", name)
		}
		t = Con(name)
	case TypeParam:
		t = Param(d.String())
	case TypeMeta:
		t = Meta(d.Uint32())
	case TypeFun:
		t = Pi(d.String(), requiredType(d, "parameter type"), requiredType(d, "result type"))
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
		if !d.Failed() {
			for i := 1; i < len(fields); i++ {
				if fields[i-1].Label >= fields[i].Label {
					d.Failf("record fields not sorted or duplicated at %q", fields[i].Label)
					break
				}
			}
		}
		if len(fields) == 0 {
			fields = nil
		}
		t = &Type{Kind: TypeRecord, Fields: fields, Rest: rest}
	case TypeList:
		t = List(requiredType(d, "element type"))
	case TypeDyn:
		t = Dyn()
	case TypeUniverse:
		t = Universe()
	case TypeTerm:
		t = TermType(requiredExpr(d, "embedded term"))
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

func EncodeScheme(e *wire.Encoder, s *Scheme) {
	if s == nil {
		e.Nil()
		return
	}
	e.Array(2)
	e.Array(len(s.Vars))
	for _, v := range s.Vars {
		e.Array(2)
		e.String(v.Name)
		e.Uint(uint64(v.Kind))
	}
	EncodeType(e, s.Body)
}

func DecodeScheme(d *wire.Decoder) *Scheme {
	if d.Failed() || d.IsNil() {
		return nil
	}
	if !d.Expect("scheme", d.Array(), 2) {
		return nil
	}
	m := d.Array()
	var vars []TypeVar
	for i := 0; i < m && !d.Failed(); i++ {
		if !d.Expect("type variable", d.Array(), 2) {
			break
		}
		v := TypeVar{Name: d.String(), Kind: VarKind(d.Uint8())}
		if !d.Failed() && v.Kind > KindRow {
			d.Fail(wire.UnsupportedVariant("typedast.VarKind", int(v.Kind)))
		}
		vars = append(vars, v)
	}
	s := &Scheme{Vars: vars, Body: requiredType(d, "scheme body")}
	if d.Failed() {
		return nil
	}
	return s
}

func EncodeExpr(e *wire.Encoder, x *Expr) {
	if x == nil {
		e.Nil()
		return
	}
	e.Node(uint8(x.Kind), exprHeader+exprFieldCount[x.Kind])
	e.Uint(uint64(x.ID))
	e.Span(x.Span)
	EncodeType(e, x.Type)
	switch d := x.Data.(type) {
	case LitData:
		e.Uint(uint64(d.Lit.Kind))
		e.Int(d.Lit.Int)
		e.Bool(d.Lit.Bool)
		e.String(d.Lit.Str)
	case VarData:
		e.String(d.Name)
		e.Array(len(d.TypeArgs))
		for _, a := range d.TypeArgs {
			EncodeType(e, a)
		}
	case LambdaData:
		e.String(d.Param)
		EncodeType(e, d.ParamType)
		e.Bool(d.Annotated)
		EncodeExpr(e, d.Body)
	case AppData:
		EncodeExpr(e, d.Fn)
		EncodeExpr(e, d.Arg)
	case LetData:
		e.String(d.Name)
		EncodeScheme(e, d.Scheme)
		EncodeScheme(e, d.Annot)
		EncodeExpr(e, d.Value)
		EncodeExpr(e, d.Body)
	case RecordData:
		e.Array(len(d.Fields))
		for _, f := range d.Fields {
			e.Array(3)
			e.String(f.Label)
			EncodeExpr(e, f.Value)
			e.Span(f.Span)
		}
	case FieldData:
		EncodeExpr(e, d.Record)
		e.String(d.Label)
	case IfData:
		EncodeExpr(e, d.Cond)
		EncodeExpr(e, d.Then)
		EncodeExpr(e, d.Else)
	case AnnotData:
		EncodeExpr(e, d.Expr)
		EncodeType(e, d.Annot)
	case BinaryData:
		e.Uint(uint64(d.Op))
		EncodeExpr(e, d.Left)
		EncodeExpr(e, d.Right)
	case UnaryData:
		e.Uint(uint64(d.Op))
		EncodeExpr(e, d.Operand)
	case ListData:
		encodeExprs(e, d.Elems)
	case PrimData:
		e.String(d.Name)
		encodeExprs(e, d.Args)
	case CastData:
		EncodeExpr(e, d.Expr)
		EncodeType(e, d.From)
		EncodeType(e, d.To)
	case TypeValueData:
		EncodeType(e, d.Denotes)
	}
}

func encodeExprs(e *wire.Encoder, xs []*Expr) {
	e.Array(len(xs))
	for _, x := range xs {
		EncodeExpr(e, x)
	}
}

func DecodeExpr(d *wire.Decoder) *Expr {
	if d.Failed() || d.IsNil() {
		return nil
	}
	tag, n := d.Node()
	if d.Failed() {
		return nil
	}
	kind := ExprKind(tag)
	if !kind.Valid() {
		d.Fail(wire.UnsupportedVariant(schemaExpr, int(tag)))
		return nil
	}
	if !d.Expect(kind.String(), n, exprHeader+exprFieldCount[kind]) {
		return nil
	}
	x := &Expr{Kind: kind, ID: NodeID(d.Uint32()), Span: d.Span()}
	x.Type = requiredType(d, "node type")
	switch kind {
	case ExprLit:
		lk := ast.LitKind(d.Uint8())
		if !d.Failed() && lk > ast.LitUnit {
			d.Fail(wire.UnsupportedVariant("ast.LitKind", int(lk)))
		}
		x.Data = LitData{Lit: ast.LitData{Kind: lk, Int: d.Int(), Bool: d.Bool(), Str: d.String()}}
	case ExprVar:
		name := d.String()
		m := d.Array()
		var args []*Type
		for i := 0; i < m && !d.Failed(); i++ {
			args = append(args, requiredType(d, "type argument"))
		}
		x.Data = VarData{Name: name, TypeArgs: args}
	case ExprLambda:
		x.Data = LambdaData{
			Param:     d.String(),
			ParamType: requiredType(d, "parameter type"),
			Annotated: d.Bool(),
			Body:      requiredExpr(d, "lambda body"),
		}
	case ExprApp:
		x.Data = AppData{Fn: requiredExpr(d, "function"), Arg: requiredExpr(d, "argument")}
	case ExprLet:
		name := d.String()
		scheme := DecodeScheme(d)
		if !d.Failed() && scheme == nil {
			d.Failf("let %q without scheme", name)
		}
		x.Data = LetData{
			Name:   name,
			Scheme: scheme,
			Annot:  DecodeScheme(d),
			Value:  requiredExpr(d, "let value"),
			Body:   requiredExpr(d, "let body"),
		}
	case ExprRecord:
		m := d.Array()
		var fields []FieldInit
		for i := 0; i < m && !d.Failed(); i++ {
			if !d.Expect("field", d.Array(), 3) {
				break
			}
			f := FieldInit{Label: d.String(), Value: requiredExpr(d, "field value")}
			f.Span = d.Span()
			fields = append(fields, f)
		}
		x.Data = RecordData{Fields: fields}
	case ExprField:
		x.Data = FieldData{Record: requiredExpr(d, "record"), Label: d.String()}
	case ExprIf:
		x.Data = IfData{Cond: requiredExpr(d, "condition"), Then: requiredExpr(d, "then"), Else: requiredExpr(d, "else")}
	case ExprAnnot:
		x.Data = AnnotData{Expr: requiredExpr(d, "annotated expression"), Annot: requiredType(d, "annotation")}
	case ExprBinary:
		op := ast.BinaryOp(d.Uint8())
		if !d.Failed() && !op.Valid() {
			d.Fail(wire.UnsupportedVariant("ast.BinaryOp", int(op)))
		}
		x.Data = BinaryData{Op: op, Left: requiredExpr(d, "left"), Right: requiredExpr(d, "right")}
	case ExprUnary:
		op := ast.UnaryOp(d.Uint8())
		if !d.Failed() && !op.Valid() {
			d.Fail(wire.UnsupportedVariant("ast.UnaryOp", int(op)))
		}
		x.Data = UnaryData{Op: op, Operand: requiredExpr(d, "operand")}
	case ExprList:
		x.Data = ListData{Elems: decodeExprs(d)}
	case ExprPrim:
		x.Data = PrimData{Name: d.String(), Args: decodeExprs(d)}
	case ExprCast:
		x.Data = CastData{Expr: requiredExpr(d, "cast operand"), From: requiredType(d, "cast source"), To: requiredType(d, "cast target")}
	case ExprTypeValue:
		x.Data = TypeValueData{Denotes: requiredType(d, "denoted type")}
	}
	if d.Failed() {
		return nil
	}
	return x
}

func requiredExpr(d *wire.Decoder, what string) *Expr {
	if d.Failed() {
		return nil
	}
	x := DecodeExpr(d)
	if x == nil && !d.Failed() {
		d.Failf("missing %s", what)
	}
	return x
}

func decodeExprs(d *wire.Decoder) []*Expr {
	m := d.Array()
	var out []*Expr
	for i := 0; i < m && !d.Failed(); i++ {
		out = append(out, requiredExpr(d, "element"))
	}
	return out
}
