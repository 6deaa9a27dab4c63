package ast

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpConcat
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr

	binaryOpCount
)

var binaryOpText = [...]string{
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpMod:    "%",
	OpConcat: "++",
	OpEq:     "==",
	OpNe:     "!=",
	OpLt:     "<",
	OpLe:     "<=",
	OpGt:     ">",
	OpGe:     ">=",
	OpAnd:    "&&",
	OpOr:     "||",
}

// binaryOpPrim maps an operator to its primitive; && and || have none.
var binaryOpPrim = [...]string{
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpDiv:    "div",
	OpMod:    "mod",
	OpConcat: "concat",
	OpEq:     "eq",
	OpNe:     "ne",
	OpLt:     "lt",
	OpLe:     "le",
	OpGt:     "gt",
	OpGe:     "ge",
}

func (op BinaryOp) String() string {
	if op < binaryOpCount {
		return binaryOpText[op]
	}
	return "?"
}

func (op BinaryOp) Valid() bool { return op < binaryOpCount }

// Prim returns the primitive implementing op. Short-circuit operators return "".
func (op BinaryOp) Prim() string {
	if int(op) < len(binaryOpPrim) {
		return binaryOpPrim[op]
	}
	return ""
}

// Precedence follows the surface grammar: or < and < cmp < concat < add < mul.
func (op BinaryOp) Precedence() int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return precCmp
	case OpConcat:
		return precConcat
	case OpAdd, OpSub:
		return precAdd
	default:
		return precMul
	}
}

type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot

	unaryOpCount
)

func (op UnaryOp) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "!"
	default:
		return "?"
	}
}

func (op UnaryOp) Valid() bool { return op < unaryOpCount }

func (op UnaryOp) Prim() string {
	if op == OpNeg {
		return "neg"
	}
	return "not"
}

const (
	precExpr = iota
	precArrow
	precOr
	precAnd
	precCmp
	precConcat
	precAdd
	precMul
	precUnary
	precApp
	precPostfix
	precAtom
)
