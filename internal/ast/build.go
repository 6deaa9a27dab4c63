package ast

import "langlang/internal/source"

func Int(sp source.Span, v int64) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: LitData{Kind: LitInt, Int: v}}
}

func Bool(sp source.Span, v bool) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: LitData{Kind: LitBool, Bool: v}}
}

func Str(sp source.Span, v string) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: LitData{Kind: LitString, Str: v}}
}

func UnitLit(sp source.Span) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Data: LitData{Kind: LitUnit}}
}

func Var(sp source.Span, name string) *Expr {
	return &Expr{Kind: ExprVar, Span: sp, Data: VarData{Name: name}}
}

func Lambda(sp source.Span, param string, paramType, body *Expr) *Expr {
	return &Expr{Kind: ExprLambda, Span: sp, Data: LambdaData{Param: param, ParamType: paramType, Body: body}}
}

func App(sp source.Span, fn, arg *Expr) *Expr {
	return &Expr{Kind: ExprApp, Span: sp, Data: AppData{Fn: fn, Arg: arg}}
}

// Apps applies fn to args left to right; every intermediate node gets sp.
func Apps(sp source.Span, fn *Expr, args ...*Expr) *Expr {
	for _, a := range args {
		fn = App(sp, fn, a)
	}
	return fn
}

func Let(sp source.Span, name string, annot, value, body *Expr) *Expr {
	return &Expr{Kind: ExprLet, Span: sp, Data: LetData{Name: name, Annot: annot, Value: value, Body: body}}
}

func Record(sp source.Span, fields ...FieldInit) *Expr {
	return &Expr{Kind: ExprRecord, Span: sp, Data: RecordData{Fields: fields}}
}

func Field(sp source.Span, rec *Expr, label string) *Expr {
	return &Expr{Kind: ExprField, Span: sp, Data: FieldData{Record: rec, Label: label}}
}

func If(sp source.Span, cond, then, els *Expr) *Expr {
	return &Expr{Kind: ExprIf, Span: sp, Data: IfData{Cond: cond, Then: then, Else: els}}
}

func Annot(sp source.Span, e, typ *Expr) *Expr {
	return &Expr{Kind: ExprAnnot, Span: sp, Data: AnnotData{Expr: e, Type: typ}}
}

func Binary(sp source.Span, op BinaryOp, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Span: sp, Data: BinaryData{Op: op, Left: left, Right: right}}
}

func Unary(sp source.Span, op UnaryOp, operand *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Span: sp, Data: UnaryData{Op: op, Operand: operand}}
}

func List(sp source.Span, elems ...*Expr) *Expr {
	return &Expr{Kind: ExprList, Span: sp, Data: ListData{Elems: elems}}
}

func Prim(sp source.Span, name string, args ...*Expr) *Expr {
	return &Expr{Kind: ExprPrim, Span: sp, Data: PrimData{Name: name, Args: args}}
}

func Pi(sp source.Span, binder string, domain, codomain *Expr) *Expr {
	return &Expr{Kind: ExprPi, Span: sp, Data: PiData{Binder: binder, Domain: domain, Codomain: codomain}}
}

// Arrow is the non-dependent Pi.
func Arrow(sp source.Span, domain, codomain *Expr) *Expr {
	return Pi(sp, "", domain, codomain)
}

func Forall(sp source.Span, vars []string, body *Expr) *Expr {
	return &Expr{Kind: ExprForall, Span: sp, Data: ForallData{Vars: vars, Body: body}}
}

func RecordType(sp source.Span, fields ...FieldInit) *Expr {
	return &Expr{Kind: ExprRecordType, Span: sp, Data: RecordTypeData{Fields: fields}}
}

func Universe(sp source.Span) *Expr {
	return &Expr{Kind: ExprUniverse, Span: sp, Data: UniverseData{}}
}

// F builds a FieldInit.
func F(label string, value *Expr) FieldInit {
	return FieldInit{Label: label, Value: value, Span: value.Span}
}
