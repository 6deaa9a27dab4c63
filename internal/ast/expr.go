// Package ast defines the untyped syntax tree produced by the parser.
//
// Trees are immutable once built; children are owned by their parent and
// identity is structural.
package ast

import (
	"langlang/internal/source"
)

// ExprKind enumerates AST node kinds. The numeric value is the wire tag.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	// ExprLit represents Int, Bool, String and Unit literals.
	ExprLit
	// ExprVar represents a variable or type-name reference.
	ExprVar
	// ExprLambda represents `fun x -> e` with an optional parameter annotation.
	ExprLambda
	// ExprApp represents juxtaposition `f x`.
	ExprApp
	// ExprLet represents `let x [: T] = v in body`.
	ExprLet
	// ExprRecord represents `{a = 1, b = 2}`.
	ExprRecord
	// ExprField represents `e.label`.
	ExprField
	// ExprIf represents `if c then a else b`.
	ExprIf
	// ExprAnnot represents `(e : T)`.
	ExprAnnot
	// ExprBinary represents infix operators.
	ExprBinary
	// ExprUnary represents prefix `-` and `!`.
	ExprUnary
	// ExprList represents `[a, b, c]`.
	ExprList
	// ExprPrim represents a primitive call `@name(args)`.
	ExprPrim
	// ExprPi represents function types `A -> B` and `(x : A) -> B`.
	ExprPi
	// ExprForall represents `forall a b. T`.
	ExprForall
	// ExprRecordType represents `{a : Int}`.
	ExprRecordType
	// ExprUniverse represents `Type`.
	ExprUniverse

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
	case ExprPi:
		return "Pi"
	case ExprForall:
		return "Forall"
	case ExprRecordType:
		return "RecordType"
	case ExprUniverse:
		return "Universe"
	default:
		return "Invalid"
	}
}

// Valid reports whether k is a known variant.
func (k ExprKind) Valid() bool { return k > ExprInvalid && k < exprKindCount }

// Expr is one AST node.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is the kind-specific payload.
type ExprData interface {
	exprData()
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitBool
	LitString
	LitUnit
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "Int"
	case LitBool:
		return "Bool"
	case LitString:
		return "String"
	case LitUnit:
		return "Unit"
	default:
		return "?"
	}
}

type LitData struct {
	Kind LitKind
	Int  int64
	Bool bool
	Str  string
}

func (LitData) exprData() {}

type VarData struct {
	Name string
}

func (VarData) exprData() {}

type LambdaData struct {
	Param     string
	ParamType *Expr // nil when unannotated
	Body      *Expr
}

func (LambdaData) exprData() {}

type AppData struct {
	Fn  *Expr
	Arg *Expr
}

func (AppData) exprData() {}

type LetData struct {
	Name  string
	Annot *Expr // nil when unannotated
	Value *Expr
	Body  *Expr
}

func (LetData) exprData() {}

// FieldInit is one `label = value` (records) or `label : type` (record types).
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
	Type *Expr
}

func (AnnotData) exprData() {}

type BinaryData struct {
	Op    BinaryOp
	Left  *Expr
	Right *Expr
}

func (BinaryData) exprData() {}

type UnaryData struct {
	Op      UnaryOp
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

// PiData is a function type. Binder is empty for the non-dependent arrow.
type PiData struct {
	Binder   string
	Domain   *Expr
	Codomain *Expr
}

func (PiData) exprData() {}

type ForallData struct {
	Vars []string
	Body *Expr
}

func (ForallData) exprData() {}

type RecordTypeData struct {
	Fields []FieldInit
}

func (RecordTypeData) exprData() {}

type UniverseData struct{}

func (UniverseData) exprData() {}

// Unit is one compilation unit as handed to the checker.
type Unit struct {
	File string
	Root *Expr
}
