package ast

import (
	"langlang/internal/wire"
)

const schemaExpr = "ast.Expr"

// field counts after [tag, span]
var exprFieldCount = [...]int{
	ExprLit:        4,
	ExprVar:        1,
	ExprLambda:     3,
	ExprApp:        2,
	ExprLet:        4,
	ExprRecord:     1,
	ExprField:      2,
	ExprIf:         3,
	ExprAnnot:      2,
	ExprBinary:     3,
	ExprUnary:      2,
	ExprList:       1,
	ExprPrim:       2,
	ExprPi:         3,
	ExprForall:     2,
	ExprRecordType: 1,
	ExprUniverse:   0,
}

// Marshal encodes u as a message payload.
func Marshal(u *Unit) ([]byte, error) {
	return wire.Marshal(func(e *wire.Encoder) { EncodeUnit(e, u) })
}

// Unmarshal decodes and validates a payload produced by Marshal.
func Unmarshal(payload []byte) (*Unit, error) {
	var u *Unit
	err := wire.Unmarshal(payload, "ast.Unit", func(d *wire.Decoder) { u = DecodeUnit(d) })
	if err != nil {
		return nil, err
	}
	return u, nil
}

func EncodeUnit(e *wire.Encoder, u *Unit) {
	e.Array(2)
	e.String(u.File)
	EncodeExpr(e, u.Root)
}

func DecodeUnit(d *wire.Decoder) *Unit {
	n := d.Array()
	if !d.Expect("ast.Unit", n, 2) {
		return nil
	}
	u := &Unit{File: d.String()}
	u.Root = decodeRequired(d, "root")
	if d.Failed() {
		return nil
	}
	return u
}

// EncodeExpr writes e; nil becomes msgpack nil.
func EncodeExpr(e *wire.Encoder, x *Expr) {
	if x == nil {
		e.Nil()
		return
	}
	e.Node(uint8(x.Kind), exprFieldCount[x.Kind]+1)
	e.Span(x.Span)
	switch d := x.Data.(type) {
	case LitData:
		e.Uint(uint64(d.Kind))
		e.Int(d.Int)
		e.Bool(d.Bool)
		e.String(d.Str)
	case VarData:
		e.String(d.Name)
	case LambdaData:
		e.String(d.Param)
		EncodeExpr(e, d.ParamType)
		EncodeExpr(e, d.Body)
	case AppData:
		EncodeExpr(e, d.Fn)
		EncodeExpr(e, d.Arg)
	case LetData:
		e.String(d.Name)
		EncodeExpr(e, d.Annot)
		EncodeExpr(e, d.Value)
		EncodeExpr(e, d.Body)
	case RecordData:
		encodeFields(e, d.Fields)
	case FieldData:
		EncodeExpr(e, d.Record)
		e.String(d.Label)
	case IfData:
		EncodeExpr(e, d.Cond)
		EncodeExpr(e, d.Then)
		EncodeExpr(e, d.Else)
	case AnnotData:
		EncodeExpr(e, d.Expr)
		EncodeExpr(e, d.Type)
	case BinaryData:
		e.Uint(uint64(d.Op))
		EncodeExpr(e, d.Left)
		EncodeExpr(e, d.Right)
	case UnaryData:
		e.Uint(uint64(d.Op))
		EncodeExpr(e, d.Operand)
	case ListData:
		encodeList(e, d.Elems)
	case PrimData:
		e.String(d.Name)
		encodeList(e, d.Args)
	case PiData:
		e.String(d.Binder)
		EncodeExpr(e, d.Domain)
		EncodeExpr(e, d.Codomain)
	case ForallData:
		e.Strings(d.Vars)
		EncodeExpr(e, d.Body)
	case RecordTypeData:
		encodeFields(e, d.Fields)
	case UniverseData:
	}
}

func encodeList(e *wire.Encoder, xs []*Expr) {
	e.Array(len(xs))
	for _, x := range xs {
		EncodeExpr(e, x)
	}
}

func encodeFields(e *wire.Encoder, fs []FieldInit) {
	e.Array(len(fs))
	for _, f := range fs {
		e.Array(3)
		e.String(f.Label)
		EncodeExpr(e, f.Value)
		e.Span(f.Span)
	}
}

// DecodeExpr reads one node. A nil value decodes to a nil *Expr.
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
	if !d.Expect(kind.String(), n, exprFieldCount[kind]+1) {
		return nil
	}
	x := &Expr{Kind: kind, Span: d.Span()}
	switch kind {
	case ExprLit:
		lk := LitKind(d.Uint8())
		if !d.Failed() && lk > LitUnit {
			d.Fail(wire.UnsupportedVariant("ast.LitKind", int(lk)))
		}
		x.Data = LitData{Kind: lk, Int: d.Int(), Bool: d.Bool(), Str: d.String()}
	case ExprVar:
		x.Data = VarData{Name: decodeName(d)}
	case ExprLambda:
		x.Data = LambdaData{Param: decodeName(d), ParamType: DecodeExpr(d), Body: decodeRequired(d, "lambda body")}
	case ExprApp:
		x.Data = AppData{Fn: decodeRequired(d, "function"), Arg: decodeRequired(d, "argument")}
	case ExprLet:
		x.Data = LetData{
			Name:  decodeName(d),
			Annot: DecodeExpr(d),
			Value: decodeRequired(d, "let value"),
			Body:  decodeRequired(d, "let body"),
		}
	case ExprRecord:
		x.Data = RecordData{Fields: decodeFields(d)}
	case ExprField:
		x.Data = FieldData{Record: decodeRequired(d, "record"), Label: decodeName(d)}
	case ExprIf:
		x.Data = IfData{
			Cond: decodeRequired(d, "condition"),
			Then: decodeRequired(d, "then branch"),
			Else: decodeRequired(d, "else branch"),
		}
	case ExprAnnot:
		x.Data = AnnotData{Expr: decodeRequired(d, "annotated expression"), Type: decodeRequired(d, "annotation")}
	case ExprBinary:
		op := BinaryOp(d.Uint8())
		if !d.Failed() && !op.Valid() {
			d.Fail(wire.UnsupportedVariant("ast.BinaryOp", int(op)))
		}
		x.Data = BinaryData{Op: op, Left: decodeRequired(d, "left operand"), Right: decodeRequired(d, "right operand")}
	case ExprUnary:
		op := UnaryOp(d.Uint8())
		if !d.Failed() && !op.Valid() {
			d.Fail(wire.UnsupportedVariant("ast.UnaryOp", int(op)))
		}
		x.Data = UnaryData{Op: op, Operand: decodeRequired(d, "operand")}
	case ExprList:
		x.Data = ListData{Elems: decodeList(d)}
	case ExprPrim:
		x.Data = PrimData{Name: decodeName(d), Args: decodeList(d)}
	case ExprPi:
		x.Data = PiData{Binder: d.String(), Domain: decodeRequired(d, "domain"), Codomain: decodeRequired(d, "codomain")}
	case ExprForall:
		vars := d.Strings()
		if !d.Failed() && len(vars) == 0 {
			d.Failf("forall without variables")
		}
		x.Data = ForallData{Vars: vars, Body: decodeRequired(d, "forall body")}
	case ExprRecordType:
		x.Data = RecordTypeData{Fields: decodeFields(d)}
	case ExprUniverse:
		x.Data = UniverseData{}
	}
	if d.Failed() {
		return nil
	}
	return x
}

func decodeRequired(d *wire.Decoder, what string) *Expr {
	if d.Failed() {
		return nil
	}
	x := DecodeExpr(d)
	if x == nil && !d.Failed() {
		d.Failf("missing %s", what)
	}
	return x
}

func decodeName(d *wire.Decoder) string {
	s := d.String()
	if !d.Failed() && s == "" {
		d.Failf("empty identifier")
	}
	return s
}

func decodeList(d *wire.Decoder) []*Expr {
	n := d.Array()
	if n == 0 {
		return nil
	}
	out := make([]*Expr, 0, n)
	for i := 0; i < n && !d.Failed(); i++ {
		out = append(out, decodeRequired(d, "element"))
	}
	return out
}

func decodeFields(d *wire.Decoder) []FieldInit {
	n := d.Array()
	if n == 0 {
		return nil
	}
	out := make([]FieldInit, 0, n)
	for i := 0; i < n && !d.Failed(); i++ {
		if !d.Expect("field", d.Array(), 3) {
			return nil
		}
		f := FieldInit{Label: decodeName(d), Value: decodeRequired(d, "field value")}
		f.Span = d.Span()
		out = append(out, f)
	}
	return out
}
