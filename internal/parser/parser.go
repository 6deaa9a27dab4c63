// Package parser builds an ast.Unit from tokens using recursive descent with
// one token of lookahead. Parsing stops at the first syntax error; the
// diagnostic carries the span of the offending token.
package parser

import (
	"slices"

	"langlang/internal/ast"
	"langlang/internal/diag"
	"langlang/internal/lexer"
	"langlang/internal/source"
	"langlang/internal/token"
)

type Options struct {
	Reporter diag.Reporter
}

// Parser - состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	file     *source.File
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
	failed   bool
}

// ParseFile parses the whole file as one expression.
// It returns nil when any lexical or syntax error was reported.
func ParseFile(file *source.File, opts Options) *ast.Unit {
	counting := &countingReporter{next: opts.Reporter}
	p := Parser{
		lx:   lexer.New(file, lexer.Options{Reporter: counting}),
		file: file,
		opts: Options{Reporter: counting},
	}
	root := p.parseExpr()
	if root != nil && !p.at(token.EOF) {
		p.err(diag.SynTrailingInput, "unexpected "+describe(p.lx.Peek())+" after expression")
		root = nil
	}
	if p.failed || counting.errors > 0 || root == nil {
		return nil
	}
	return &ast.Unit{File: file.Path, Root: root}
}

// ParseSource is a convenience wrapper for in-memory sources.
func ParseSource(name, src string) (*ast.Unit, *diag.Bag) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	bag := diag.NewBag(32)
	u := ParseFile(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag, Stage: diag.StageParse}})
	return u, bag
}

type countingReporter struct {
	next   diag.Reporter
	errors int
}

func (r *countingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		r.errors++
	}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of input"
	case token.Ident, token.IntLit, token.StringLit, token.Invalid:
		return t.Kind.String() + " \"" + t.Text + "\""
	default:
		return "\"" + t.Kind.String() + "\""
	}
}
