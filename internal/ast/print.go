package ast

import (
	"strconv"
	"strings"
)

// Print renders e in surface syntax. The output parses back to an
// alpha-equal tree.
func Print(e *Expr) string {
	var p printer
	p.expr(e, precExpr)
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) word(s string) { p.sb.WriteString(s) }

func ownPrec(e *Expr) int {
	switch d := e.Data.(type) {
	case LambdaData, LetData, IfData, ForallData:
		return precExpr
	case PiData:
		return precArrow
	case BinaryData:
		return d.Op.Precedence()
	case UnaryData:
		return precUnary
	case AppData:
		return precApp
	case FieldData:
		return precPostfix
	case LitData:
		if d.Kind == LitInt && d.Int < 0 {
			return precUnary
		}
	}
	return precAtom
}

func (p *printer) expr(e *Expr, prec int) {
	if e == nil {
		p.word("<nil>")
		return
	}
	own := ownPrec(e)
	if own < prec {
		p.word("(")
		defer p.word(")")
	}
	switch d := e.Data.(type) {
	case LitData:
		p.lit(d)
	case VarData:
		p.word(d.Name)
	case LambdaData:
		p.word("fun ")
		if d.ParamType != nil {
			p.word("(" + d.Param + " : ")
			p.expr(d.ParamType, precExpr)
			p.word(")")
		} else {
			p.word(d.Param)
		}
		p.word(" -> ")
		p.expr(d.Body, precExpr)
	case AppData:
		p.expr(d.Fn, precApp)
		p.word(" ")
		p.expr(d.Arg, precPostfix)
	case LetData:
		p.word("let " + d.Name)
		if d.Annot != nil {
			p.word(" : ")
			p.expr(d.Annot, precExpr)
		}
		p.word(" = ")
		p.expr(d.Value, precExpr)
		p.word(" in ")
		p.expr(d.Body, precExpr)
	case RecordData:
		p.fields(d.Fields, " = ")
	case RecordTypeData:
		p.fields(d.Fields, " : ")
	case FieldData:
		p.expr(d.Record, precPostfix)
		p.word("." + d.Label)
	case IfData:
		p.word("if ")
		p.expr(d.Cond, precExpr)
		p.word(" then ")
		p.expr(d.Then, precExpr)
		p.word(" else ")
		p.expr(d.Else, precExpr)
	case AnnotData:
		p.word("(")
		p.expr(d.Expr, precExpr)
		p.word(" : ")
		p.expr(d.Type, precExpr)
		p.word(")")
	case BinaryData:
		lp, rp := own, own+1
		if own == precCmp {
			lp = own + 1
		}
		p.expr(d.Left, lp)
		p.word(" " + d.Op.String() + " ")
		p.expr(d.Right, rp)
	case UnaryData:
		p.word(d.Op.String())
		if lit, ok := d.Operand.Data.(LitData); ok && lit.Kind == LitInt && d.Op == OpNeg {
			// "-5" would read back as a negative literal
			p.expr(d.Operand, precAtom+1)
			break
		}
		p.expr(d.Operand, precUnary)
	case ListData:
		p.word("[")
		p.list(d.Elems)
		p.word("]")
	case PrimData:
		p.word("@" + d.Name + "(")
		p.list(d.Args)
		p.word(")")
	case PiData:
		if d.Binder != "" {
			p.word("(" + d.Binder + " : ")
			p.expr(d.Domain, precExpr)
			p.word(")")
		} else {
			p.expr(d.Domain, precOr)
		}
		p.word(" -> ")
		p.expr(d.Codomain, precArrow)
	case ForallData:
		p.word("forall " + strings.Join(d.Vars, " ") + ". ")
		p.expr(d.Body, precExpr)
	case UniverseData:
		p.word("Type")
	default:
		p.word("<?>")
	}
}

func (p *printer) lit(d LitData) {
	switch d.Kind {
	case LitInt:
		p.word(strconv.FormatInt(d.Int, 10))
	case LitBool:
		p.word(strconv.FormatBool(d.Bool))
	case LitString:
		p.word(strconv.Quote(d.Str))
	case LitUnit:
		p.word("()")
	}
}

func (p *printer) list(xs []*Expr) {
	for i, x := range xs {
		if i > 0 {
			p.word(", ")
		}
		p.expr(x, precExpr)
	}
}

func (p *printer) fields(fs []FieldInit, sep string) {
	p.word("{")
	for i, f := range fs {
		if i > 0 {
			p.word(", ")
		}
		p.word(f.Label + sep)
		p.expr(f.Value, precExpr)
	}
	p.word("}")
}
