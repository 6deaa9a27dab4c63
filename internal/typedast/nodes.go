// Package typedast defines the typed syntax tree produced by the checker.
//
// Every node carries a dense pre-order NodeID (starting at 1), the span of
// the AST node it came from and its resolved Type. Binders carry schemes
// or explicit parameter types. Lowering refers back to nodes by NodeID only.
package typedast

import (
	"langlang/internal/ast"
	"langlang/internal/pipeline"
	"langlang/internal/source"
)

type NodeID uint32

const NoNode NodeID = 0

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLit
	ExprVar
	ExprLambda
	ExprApp
	ExprLet
	ExprRecord
	ExprField
	ExprIf
	ExprAnnot
	ExprBinary
	ExprUnary
	ExprList
	ExprPrim
	// ExprCast is an explicit gradual boundary checked at run time.
	ExprCast
	// ExprTypeValue is a term that denotes a type (dependent mode).
	ExprTypeValue

	exprKindCount
)

func (k ExprKind) String() string {
	switch k {
	case ExprLit:
		return "Lit"
	case ExprVar:
		return "Var"
	case ExprLambda:
		return "Lambda"
	case ExprApp:
		return "App"
	case ExprLet:
		return "Let"
	case ExprRecord:
		return "Record"
	case ExprField:
		return "Field"
	case ExprIf:
		return "If"
	case ExprAnnot:
		return "Annot"
	case ExprBinary:
		return "Binary"
	case ExprUnary:
		return "Unary"
	case ExprList:
		return "List"
	case ExprPrim:
		return "Prim"
	case ExprCast:
		return "Cast"
	case ExprTypeValue:
		return "TypeValue"
	default:
		return "Invalid"
	}
}

func (k ExprKind) Valid() bool { return k > ExprInvalid && k < exprKindCount }

type Expr struct {
	ID   NodeID
	Kind ExprKind
	Span source.Span
	Type *Type
	Data ExprData
}

type ExprData interface {
	exprData()
}

// LitData reuses the AST literal payload.
type LitData struct {
	Lit ast.LitData
}

func (LitData) exprData() {}

// VarData carries the explicit instantiation of the binder's scheme.
type VarData struct {
	Name     string
	TypeArgs []*Type
}

func (VarData) exprData() {}

type LambdaData struct {
	Param     string
	ParamType *Type
	// Annotated is true when the source wrote the parameter type.
	Annotated bool
	Body      *Expr
}

func (LambdaData) exprData() {}

type AppData struct {
	Fn  *Expr
	Arg *Expr
}

func (AppData) exprData() {}

type LetData struct {
	Name   string
	Scheme *Scheme
	// Annot is the elaborated source annotation, nil when absent.
	Annot *Scheme
	Value *Expr
	Body  *Expr
}

func (LetData) exprData() {}

type FieldInit struct {
	Label string
	Value *Expr
	Span  source.Span
}

type RecordData struct {
	Fields []FieldInit
}

func (RecordData) exprData() {}

type FieldData struct {
	Record *Expr
	Label  string
}

func (FieldData) exprData() {}

type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

func (IfData) exprData() {}

type AnnotData struct {
	Expr *Expr
	// Annot is the elaborated annotation; equal to the node's Type.
	Annot *Type
}

func (AnnotData) exprData() {}

type BinaryData struct {
	Op    ast.BinaryOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

type UnaryData struct {
	Op      ast.UnaryOp
	Operand *Expr
}

func (UnaryData) exprData() {}

type ListData struct {
	Elems []*Expr
}

func (ListData) exprData() {}

type PrimData struct {
	Name string
	Args []*Expr
}

func (PrimData) exprData() {}

// CastData converts Expr from From to To; the node's Type is To.
type CastData struct {
	Expr *Expr
	From *Type
	To   *Type
}

func (CastData) exprData() {}

// TypeValueData: the node's Type is Universe, Denotes is the type it names.
type TypeValueData struct {
	Denotes *Type
}

func (TypeValueData) exprData() {}

// Unit is a fully typed compilation unit.
type Unit struct {
	File   string
	Config pipeline.Config
	Root   *Expr
	Scheme *Scheme
}
