package parser

import (
	"langlang/internal/diag"
	"langlang/internal/source"
	"langlang/internal/token"
)

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan - для EOF используем позицию сразу после последнего токена
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && !p.lastSpan.IsZero() {
		return source.Point(p.lastSpan.File, p.lastSpan.EndLine, p.lastSpan.EndCol)
	}
	return peek.Span
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	if p.at(token.Invalid) {
		// лексер уже отрепортил
		p.failed = true
		return token.Token{Kind: token.Invalid}, false
	}
	p.err(code, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: p.getDiagnosticSpan()}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sp source.Span, msg string) {
	if p.failed {
		return
	}
	p.failed = true
	if p.opts.Reporter != nil {
		p.opts.Reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

// cover spans from a start position to the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	return start.Cover(p.lastSpan)
}
