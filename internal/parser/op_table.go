package parser

import (
	"langlang/internal/ast"
	"langlang/internal/token"
)

type binaryLevel struct {
	ops      map[token.Kind]ast.BinaryOp
	nonAssoc bool
}

// binaryLevels от низшего приоритета к высшему; выше mul идут unary и app.
var binaryLevels = []binaryLevel{
	{ops: map[token.Kind]ast.BinaryOp{token.OrOr: ast.OpOr}},
	{ops: map[token.Kind]ast.BinaryOp{token.AndAnd: ast.OpAnd}},
	{ops: map[token.Kind]ast.BinaryOp{
		token.EqEq: ast.OpEq, token.BangEq: ast.OpNe,
		token.Lt: ast.OpLt, token.LtEq: ast.OpLe,
		token.Gt: ast.OpGt, token.GtEq: ast.OpGe,
	}, nonAssoc: true},
	{ops: map[token.Kind]ast.BinaryOp{token.PlusPlus: ast.OpConcat}},
	{ops: map[token.Kind]ast.BinaryOp{token.Plus: ast.OpAdd, token.Minus: ast.OpSub}},
	{ops: map[token.Kind]ast.BinaryOp{token.Star: ast.OpMul, token.Slash: ast.OpDiv, token.Percent: ast.OpMod}},
}

// startsAtom reports whether k can begin an application argument.
func startsAtom(k token.Kind) bool {
	switch k {
	case token.Ident, token.IntLit, token.StringLit, token.KwTrue, token.KwFalse,
		token.KwType, token.LParen, token.LBrace, token.LBracket, token.At:
		return true
	default:
		return false
	}
}
