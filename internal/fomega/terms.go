package fomega

import (
	"langlang/internal/ast"
	"langlang/internal/pipeline"
)

type TermKind uint8

const (
	TermInvalid TermKind = iota
	TermVar
	TermLam
	TermApp
	TermTyAbs
	TermTyApp
	TermLet
	TermLit
	TermPrim
	TermIf
	TermRecord
	TermField
	TermList
	TermCast
	// TermTypeLit is a reified type, a value of type Type.
	TermTypeLit

	termKindCount
)

func (k TermKind) String() string {
	switch k {
	case TermVar:
		return "Var"
	case TermLam:
		return "Lam"
	case TermApp:
		return "App"
	case TermTyAbs:
		return "TyAbs"
	case TermTyApp:
		return "TyApp"
	case TermLet:
		return "Let"
	case TermLit:
		return "Lit"
	case TermPrim:
		return "Prim"
	case TermIf:
		return "If"
	case TermRecord:
		return "Record"
	case TermField:
		return "Field"
	case TermList:
		return "List"
	case TermCast:
		return "Cast"
	case TermTypeLit:
		return "TypeLit"
	default:
		return "Invalid"
	}
}

func (k TermKind) Valid() bool { return k > TermInvalid && k < termKindCount }

// Origin is the TypedAST node id a term was lowered from; 0 for synthesized
// terms.
type Origin uint32

type Term struct {
	Kind   TermKind
	Origin Origin
	Data   TermData
}

type TermData interface {
	termData()
}

type VarData struct {
	Name string
}

func (VarData) termData() {}

type LamData struct {
	Param     string
	ParamType *Type
	Body      *Term
}

func (LamData) termData() {}

type AppData struct {
	Fn  *Term
	Arg *Term
}

func (AppData) termData() {}

type TyAbsData struct {
	Param string
	Kind  *Kind
	Body  *Term
}

func (TyAbsData) termData() {}

type TyAppData struct {
	Fn  *Term
	Arg *Type
}

func (TyAppData) termData() {}

// LetData is non-recursive; Type is the declared type of Name.
type LetData struct {
	Name  string
	Type  *Type
	Value *Term
	Body  *Term
}

func (LetData) termData() {}

type LitData struct {
	Lit ast.LitData
}

func (LitData) termData() {}

// PrimData calls a catalog primitive; TypeArgs instantiate polymorphic ones.
type PrimData struct {
	Name     string
	TypeArgs []*Type
	Args     []*Term
}

func (PrimData) termData() {}

type IfData struct {
	Cond *Term
	Then *Term
	Else *Term
}

func (IfData) termData() {}

// Field initialisers keep source order, which is the evaluation order.
type Field struct {
	Label string
	Value *Term
}

type RecordData struct {
	Fields []Field
}

func (RecordData) termData() {}

type FieldData struct {
	Record *Term
	Label  string
}

func (FieldData) termData() {}

type ListData struct {
	Elem  *Type
	Elems []*Term
}

func (ListData) termData() {}

type CastData struct {
	Term *Term
	From *Type
	To   *Type
}

func (CastData) termData() {}

type TypeLitData struct {
	Type *Type
}

func (TypeLitData) termData() {}

// Unit is a lowered compilation unit.
type Unit struct {
	File   string
	Config pipeline.Config
	Term   *Term
	Type   *Type
}

func Var(o Origin, name string) *Term {
	return &Term{Kind: TermVar, Origin: o, Data: VarData{Name: name}}
}

func Lam(o Origin, param string, pt *Type, body *Term) *Term {
	return &Term{Kind: TermLam, Origin: o, Data: LamData{Param: param, ParamType: pt, Body: body}}
}

func App(o Origin, fn, arg *Term) *Term {
	return &Term{Kind: TermApp, Origin: o, Data: AppData{Fn: fn, Arg: arg}}
}

func TyAbs(o Origin, param string, k *Kind, body *Term) *Term {
	return &Term{Kind: TermTyAbs, Origin: o, Data: TyAbsData{Param: param, Kind: k, Body: body}}
}

func TyApp(o Origin, fn *Term, arg *Type) *Term {
	return &Term{Kind: TermTyApp, Origin: o, Data: TyAppData{Fn: fn, Arg: arg}}
}

func Let(o Origin, name string, t *Type, value, body *Term) *Term {
	return &Term{Kind: TermLet, Origin: o, Data: LetData{Name: name, Type: t, Value: value, Body: body}}
}

func Lit(o Origin, l ast.LitData) *Term {
	return &Term{Kind: TermLit, Origin: o, Data: LitData{Lit: l}}
}

func Prim(o Origin, name string, targs []*Type, args ...*Term) *Term {
	return &Term{Kind: TermPrim, Origin: o, Data: PrimData{Name: name, TypeArgs: targs, Args: args}}
}

func If(o Origin, cond, then, els *Term) *Term {
	return &Term{Kind: TermIf, Origin: o, Data: IfData{Cond: cond, Then: then, Else: els}}
}

func Record(o Origin, fields ...Field) *Term {
	return &Term{Kind: TermRecord, Origin: o, Data: RecordData{Fields: fields}}
}

func FieldOf(o Origin, rec *Term, label string) *Term {
	return &Term{Kind: TermField, Origin: o, Data: FieldData{Record: rec, Label: label}}
}

func List(o Origin, elem *Type, elems ...*Term) *Term {
	return &Term{Kind: TermList, Origin: o, Data: ListData{Elem: elem, Elems: elems}}
}

func Cast(o Origin, t *Term, from, to *Type) *Term {
	return &Term{Kind: TermCast, Origin: o, Data: CastData{Term: t, From: from, To: to}}
}

func TypeLit(o Origin, t *Type) *Term {
	return &Term{Kind: TermTypeLit, Origin: o, Data: TypeLitData{Type: t}}
}

// Children returns the direct sub-terms of t in evaluation order.
func Children(t *Term) []*Term {
	if t == nil {
		return nil
	}
	switch d := t.Data.(type) {
	case LamData:
		return []*Term{d.Body}
	case AppData:
		return []*Term{d.Fn, d.Arg}
	case TyAbsData:
		return []*Term{d.Body}
	case TyAppData:
		return []*Term{d.Fn}
	case LetData:
		return []*Term{d.Value, d.Body}
	case PrimData:
		return d.Args
	case IfData:
		return []*Term{d.Cond, d.Then, d.Else}
	case RecordData:
		out := make([]*Term, 0, len(d.Fields))
		for _, f := range d.Fields {
			out = append(out, f.Value)
		}
		return out
	case FieldData:
		return []*Term{d.Record}
	case ListData:
		return d.Elems
	case CastData:
		return []*Term{d.Term}
	}
	return nil
}

// Inspect walks t in pre-order.
func Inspect(t *Term, fn func(*Term) bool) {
	if t == nil || !fn(t) {
		return
	}
	for _, c := range Children(t) {
		Inspect(c, fn)
	}
}

// Size counts the terms in t.
func Size(t *Term) int {
	n := 0
	Inspect(t, func(*Term) bool { n++; return true })
	return n
}
