package parser

import (
	"strconv"

	"langlang/internal/ast"
	"langlang/internal/diag"
	"langlang/internal/token"
)

func (p *Parser) parseAtom() *ast.Expr {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return p.parseIntLit(tok)
	case token.StringLit:
		p.advance()
		s, err := strconv.Unquote(tok.Text)
		if err != nil {
			p.report(diag.SynUnterminatedString, tok.Span, "invalid escape in string literal")
			return nil
		}
		return ast.Str(tok.Span, s)
	case token.KwTrue, token.KwFalse:
		p.advance()
		return ast.Bool(tok.Span, tok.Kind == token.KwTrue)
	case token.Ident:
		p.advance()
		return ast.Var(tok.Span, tok.Text)
	case token.KwType:
		p.advance()
		return ast.Universe(tok.Span)
	case token.LParen:
		return p.parseParen()
	case token.LBrace:
		return p.parseBraces()
	case token.LBracket:
		return p.parseList()
	case token.At:
		return p.parsePrim()
	case token.Invalid:
		// лексер уже отрепортил
		p.failed = true
		return nil
	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
		return nil
	}
}

// parseParen := '()' | '(' expr [':' expr] ')'
func (p *Parser) parseParen() *ast.Expr {
	start := p.advance().Span
	if p.at(token.RParen) {
		p.advance()
		return ast.UnitLit(p.spanFrom(start))
	}
	inner := p.parseExpr()
	if inner == nil {
		return nil
	}
	if p.at(token.Colon) {
		p.advance()
		typ := p.parseExpr()
		if typ == nil {
			return nil
		}
		if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close annotation"); !ok {
			return nil
		}
		return ast.Annot(p.spanFrom(start), inner, typ)
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'"); !ok {
		return nil
	}
	return inner
}

// parseBraces := '{' '}' | '{' field {',' field} '}'; разделитель первого поля
// ('=' или ':') решает, запись это или тип записи.
func (p *Parser) parseBraces() *ast.Expr {
	start := p.advance().Span
	var fields []ast.FieldInit
	sep := token.Invalid
	for !p.at(token.RBrace) {
		if len(fields) > 0 {
			if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, "expected ',' or '}' in record"); !ok {
				return nil
			}
		}
		label, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected field label")
		if !ok {
			return nil
		}
		if sep == token.Invalid && p.atOr(token.Assign, token.Colon) {
			sep = p.lx.Peek().Kind
		}
		msg := "expected '=' after field label"
		if sep == token.Colon {
			msg = "expected ':' after field label"
		}
		if _, ok := p.expect(sep, diag.SynUnexpectedToken, msg); !ok {
			return nil
		}
		value := p.parseExpr()
		if value == nil {
			return nil
		}
		fields = append(fields, ast.FieldInit{Label: label.Text, Value: value, Span: label.Span.Cover(value.Span)})
	}
	p.advance()
	sp := p.spanFrom(start)
	if sep == token.Colon {
		return ast.RecordType(sp, fields...)
	}
	return ast.Record(sp, fields...)
}

func (p *Parser) parseList() *ast.Expr {
	start := p.advance().Span
	elems, ok := p.parseCommaList(token.RBracket, "expected ',' or ']' in list")
	if !ok {
		return nil
	}
	return ast.List(p.spanFrom(start), elems...)
}

// parsePrim := '@' IDENT '(' [expr {',' expr}] ')'
func (p *Parser) parsePrim() *ast.Expr {
	start := p.advance().Span
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected primitive name after '@'")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after primitive name"); !ok {
		return nil
	}
	args, ok := p.parseCommaList(token.RParen, "expected ',' or ')' in primitive arguments")
	if !ok {
		return nil
	}
	return ast.Prim(p.spanFrom(start), name.Text, args...)
}

// parseCommaList reads expressions up to and including the closing token.
func (p *Parser) parseCommaList(closing token.Kind, msg string) ([]*ast.Expr, bool) {
	var out []*ast.Expr
	for !p.at(closing) {
		if len(out) > 0 {
			if _, ok := p.expect(token.Comma, diag.SynUnexpectedToken, msg); !ok {
				return nil, false
			}
		}
		if p.at(token.EOF) {
			p.err(diag.SynUnclosedDelimiter, "unclosed '"+openerOf(closing)+"'")
			return nil, false
		}
		e := p.parseExpr()
		if e == nil {
			return nil, false
		}
		out = append(out, e)
	}
	p.advance()
	return out, true
}

func openerOf(k token.Kind) string {
	switch k {
	case token.RParen:
		return "("
	case token.RBracket:
		return "["
	default:
		return "{"
	}
}
