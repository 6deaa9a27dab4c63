package parser

import (
	"math"
	"strconv"
	"strings"

	"langlang/internal/ast"
	"langlang/internal/diag"
	"langlang/internal/source"
	"langlang/internal/token"
)

// parseExpr := let | fun | if | forall | arrow
func (p *Parser) parseExpr() *ast.Expr {
	switch p.lx.Peek().Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwFun:
		return p.parseFun()
	case token.KwIf:
		return p.parseIf()
	case token.KwForall:
		return p.parseForall()
	default:
		return p.parseArrow()
	}
}

func (p *Parser) parseLet() *ast.Expr {
	start := p.advance().Span
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected binding name after 'let'")
	if !ok {
		return nil
	}
	var annot *ast.Expr
	if p.at(token.Colon) {
		p.advance()
		if annot = p.parseExpr(); annot == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in let binding"); !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken, "expected 'in' after let value"); !ok {
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		return nil
	}
	return ast.Let(p.spanFrom(start), name.Text, annot, value, body)
}

type lambdaParam struct {
	name  string
	annot *ast.Expr
}

// parseFun := 'fun' param+ '->' expr; несколько параметров дают вложенные лямбды.
func (p *Parser) parseFun() *ast.Expr {
	start := p.advance().Span
	var params []lambdaParam
	for p.atOr(token.Ident, token.LParen) {
		if p.at(token.Ident) {
			params = append(params, lambdaParam{name: p.advance().Text})
			continue
		}
		p.advance()
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name")
		if !ok {
			return nil
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after parameter name"); !ok {
			return nil
		}
		annot := p.parseExpr()
		if annot == nil {
			return nil
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' after parameter type"); !ok {
			return nil
		}
		params = append(params, lambdaParam{name: name.Text, annot: annot})
	}
	if len(params) == 0 {
		p.err(diag.SynExpectIdentifier, "expected at least one parameter after 'fun'")
		return nil
	}
	if _, ok := p.expect(token.Arrow, diag.SynUnexpectedToken, "expected '->' after parameters"); !ok {
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		return nil
	}
	sp := p.spanFrom(start)
	for i := len(params) - 1; i >= 0; i-- {
		body = ast.Lambda(sp, params[i].name, params[i].annot, body)
	}
	return body
}

func (p *Parser) parseIf() *ast.Expr {
	start := p.advance().Span
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.KwThen, diag.SynUnexpectedToken, "expected 'then'"); !ok {
		return nil
	}
	then := p.parseExpr()
	if then == nil {
		return nil
	}
	if _, ok := p.expect(token.KwElse, diag.SynUnexpectedToken, "expected 'else'"); !ok {
		return nil
	}
	els := p.parseExpr()
	if els == nil {
		return nil
	}
	return ast.If(p.spanFrom(start), cond, then, els)
}

func (p *Parser) parseForall() *ast.Expr {
	start := p.advance().Span
	var vars []string
	for p.at(token.Ident) {
		vars = append(vars, p.advance().Text)
	}
	if len(vars) == 0 {
		p.err(diag.SynExpectIdentifier, "expected type variable after 'forall'")
		return nil
	}
	if _, ok := p.expect(token.Dot, diag.SynUnexpectedToken, "expected '.' after forall variables"); !ok {
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		return nil
	}
	return ast.Forall(p.spanFrom(start), vars, body)
}

// parseArrow := or ['->' arrow]. Левая часть вида `(x : A)` даёт зависимый Pi.
func (p *Parser) parseArrow() *ast.Expr {
	start := p.lx.Peek().Span
	left := p.parseBinary(0)
	if left == nil || !p.at(token.Arrow) {
		return left
	}
	p.advance()
	right := p.parseArrowRHS()
	if right == nil {
		return nil
	}
	sp := p.spanFrom(start)
	if an, ok := left.Data.(ast.AnnotData); ok {
		if v, ok := an.Expr.Data.(ast.VarData); ok {
			return ast.Pi(sp, v.Name, an.Type, right)
		}
	}
	return ast.Arrow(sp, left, right)
}

// codomain may itself be a forall or another arrow
func (p *Parser) parseArrowRHS() *ast.Expr {
	if p.at(token.KwForall) {
		return p.parseForall()
	}
	return p.parseArrow()
}

func (p *Parser) parseBinary(level int) *ast.Expr {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	start := p.lx.Peek().Span
	left := p.parseBinary(level + 1)
	if left == nil {
		return nil
	}
	lvl := binaryLevels[level]
	for {
		op, ok := lvl.ops[p.lx.Peek().Kind]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseBinary(level + 1)
		if right == nil {
			return nil
		}
		left = ast.Binary(p.spanFrom(start), op, left, right)
		if lvl.nonAssoc {
			if _, again := lvl.ops[p.lx.Peek().Kind]; again {
				p.err(diag.SynUnexpectedToken, "comparison operators do not chain; add parentheses")
				return nil
			}
			return left
		}
	}
}

func (p *Parser) parseUnary() *ast.Expr {
	var op ast.UnaryOp
	switch p.lx.Peek().Kind {
	case token.Minus:
		op = ast.OpNeg
	case token.Bang:
		op = ast.OpNot
	default:
		return p.parseApp()
	}
	start := p.advance().Span
	if op == ast.OpNeg && p.at(token.IntLit) {
		return p.parseNegative(start)
	}
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return ast.Unary(p.spanFrom(start), op, operand)
}

// parseNegative: `-5` сворачивается в отрицательный литерал, `-5 x` остаётся Unary.
func (p *Parser) parseNegative(start source.Span) *ast.Expr {
	tok := p.advance()
	mag, ok := p.parseMagnitude(tok)
	if !ok {
		return nil
	}
	if !startsAtom(p.lx.Peek().Kind) && !p.at(token.Dot) {
		if mag > 1<<63 {
			p.report(diag.SynBadNumber, p.spanFrom(start), "integer literal -"+tok.Text+" out of range")
			return nil
		}
		return ast.Int(p.spanFrom(start), -int64(mag))
	}
	if mag > math.MaxInt64 {
		p.report(diag.SynBadNumber, tok.Span, "integer literal "+tok.Text+" out of range")
		return nil
	}
	head := p.continuePostfix(tok.Span, ast.Int(tok.Span, int64(mag)))
	operand := p.continueApp(tok.Span, head)
	if operand == nil {
		return nil
	}
	return ast.Unary(p.spanFrom(start), ast.OpNeg, operand)
}

// parseApp := postfix { postfix }
func (p *Parser) parseApp() *ast.Expr {
	start := p.lx.Peek().Span
	return p.continueApp(start, p.parsePostfix())
}

func (p *Parser) continueApp(start source.Span, fn *ast.Expr) *ast.Expr {
	if fn == nil {
		return nil
	}
	for startsAtom(p.lx.Peek().Kind) {
		arg := p.parsePostfix()
		if arg == nil {
			return nil
		}
		fn = ast.App(p.spanFrom(start), fn, arg)
	}
	return fn
}

// parsePostfix := atom { '.' IDENT }
func (p *Parser) parsePostfix() *ast.Expr {
	start := p.lx.Peek().Span
	return p.continuePostfix(start, p.parseAtom())
}

func (p *Parser) continuePostfix(start source.Span, e *ast.Expr) *ast.Expr {
	if e == nil {
		return nil
	}
	for p.at(token.Dot) {
		p.advance()
		label, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field name after '.'")
		if !ok {
			return nil
		}
		e = ast.Field(p.spanFrom(start), e, label.Text)
	}
	return e
}

// parseMagnitude reads an IntLit as an unsigned value (underscores allowed).
func (p *Parser) parseMagnitude(tok token.Token) (uint64, bool) {
	v, err := strconv.ParseUint(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
	if err != nil {
		p.report(diag.SynBadNumber, tok.Span, "integer literal "+tok.Text+" out of range")
		return 0, false
	}
	return v, true
}

func (p *Parser) parseIntLit(tok token.Token) *ast.Expr {
	mag, ok := p.parseMagnitude(tok)
	if !ok {
		return nil
	}
	if mag > math.MaxInt64 {
		p.report(diag.SynBadNumber, tok.Span, "integer literal "+tok.Text+" out of range")
		return nil
	}
	return ast.Int(tok.Span, int64(mag))
}
