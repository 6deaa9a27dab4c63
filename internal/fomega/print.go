package fomega

import (
	"fmt"
	"strconv"
	"strings"

	"langlang/internal/ast"
)

func (t *Type) String() string {
	var sb strings.Builder
	writeType(&sb, t, 0)
	return sb.String()
}

// prec 0: top, 1: arrow domain, 2: application argument
func writeType(sb *strings.Builder, t *Type, prec int) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	paren := func(min int) func() {
		if prec < min {
			return func() {}
		}
		sb.WriteString("(")
		return func() { sb.WriteString(")") }
	}
	switch t.Tag {
	case TypeVar, TypeCon:
		sb.WriteString(t.Name)
	case TypeDyn:
		sb.WriteString("Dyn")
	case TypeArrow:
		defer paren(1)()
		writeType(sb, t.Param, 1)
		sb.WriteString(" -> ")
		writeType(sb, t.Result, 0)
	case TypeForall:
		defer paren(1)()
		sb.WriteString("forall " + binder(t.Name, t.Kind) + ". ")
		writeType(sb, t.Body, 0)
	case TypeLam:
		defer paren(1)()
		sb.WriteString("\\" + binder(t.Name, t.Kind) + ". ")
		writeType(sb, t.Body, 0)
	case TypeApp:
		defer paren(2)()
		writeType(sb, t.Fn, 1)
		sb.WriteString(" ")
		writeType(sb, t.Arg, 2)
	case TypeList:
		defer paren(2)()
		sb.WriteString("List ")
		writeType(sb, t.Elem, 2)
	case TypeRecord:
		sb.WriteString("{")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Label + " : ")
			writeType(sb, f.Type, 0)
		}
		if t.Rest != nil {
			if len(t.Fields) > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString("| ")
			writeType(sb, t.Rest, 0)
		}
		sb.WriteString("}")
	default:
		sb.WriteString("<?>")
	}
}

// binder omits the kind when it is *.
func binder(name string, k *Kind) string {
	if k != nil && k.Tag == KindStar {
		return name
	}
	return "(" + name + " : " + k.String() + ")"
}

// Print renders t on one line.
func Print(t *Term) string {
	var sb strings.Builder
	writeTerm(&sb, t, 0)
	return sb.String()
}

// prec 0: top, 1: application head, 2: atom
func writeTerm(sb *strings.Builder, t *Term, prec int) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	paren := func(min int) func() {
		if prec < min {
			return func() {}
		}
		sb.WriteString("(")
		return func() { sb.WriteString(")") }
	}
	switch d := t.Data.(type) {
	case VarData:
		sb.WriteString(d.Name)
	case LitData:
		switch d.Lit.Kind {
		case ast.LitInt:
			sb.WriteString(strconv.FormatInt(d.Lit.Int, 10))
		case ast.LitBool:
			sb.WriteString(strconv.FormatBool(d.Lit.Bool))
		case ast.LitString:
			sb.WriteString(strconv.Quote(d.Lit.Str))
		default:
			sb.WriteString("()")
		}
	case LamData:
		defer paren(1)()
		sb.WriteString("\\" + d.Param + " : " + d.ParamType.String() + ". ")
		writeTerm(sb, d.Body, 0)
	case TyAbsData:
		defer paren(1)()
		sb.WriteString("/\\" + binder(d.Param, d.Kind) + ". ")
		writeTerm(sb, d.Body, 0)
	case AppData:
		defer paren(2)()
		writeTerm(sb, d.Fn, 1)
		sb.WriteString(" ")
		writeTerm(sb, d.Arg, 2)
	case TyAppData:
		defer paren(2)()
		writeTerm(sb, d.Fn, 1)
		sb.WriteString(" [" + d.Arg.String() + "]")
	case LetData:
		defer paren(1)()
		sb.WriteString("let " + d.Name + " : " + d.Type.String() + " = ")
		writeTerm(sb, d.Value, 0)
		sb.WriteString(" in ")
		writeTerm(sb, d.Body, 0)
	case IfData:
		defer paren(1)()
		sb.WriteString("if ")
		writeTerm(sb, d.Cond, 0)
		sb.WriteString(" then ")
		writeTerm(sb, d.Then, 0)
		sb.WriteString(" else ")
		writeTerm(sb, d.Else, 0)
	case PrimData:
		sb.WriteString("@" + d.Name)
		if len(d.TypeArgs) > 0 {
			args := make([]string, len(d.TypeArgs))
			for i, a := range d.TypeArgs {
				args[i] = a.String()
			}
			sb.WriteString("[" + strings.Join(args, ", ") + "]")
		}
		sb.WriteString("(")
		for i, a := range d.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTerm(sb, a, 0)
		}
		sb.WriteString(")")
	case RecordData:
		sb.WriteString("{")
		for i, f := range d.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Label + " = ")
			writeTerm(sb, f.Value, 0)
		}
		sb.WriteString("}")
	case FieldData:
		writeTerm(sb, d.Record, 2)
		sb.WriteString("." + d.Label)
	case ListData:
		sb.WriteString("[")
		for i, it := range d.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeTerm(sb, it, 0)
		}
		sb.WriteString("] : List " + d.Elem.String())
	case CastData:
		defer paren(2)()
		sb.WriteString("<" + d.From.String() + " => " + d.To.String() + "> ")
		writeTerm(sb, d.Term, 2)
	case TypeLitData:
		sb.WriteString("type(" + d.Type.String() + ")")
	default:
		sb.WriteString("<?>")
	}
}

// Dump renders the unit one term per line, with origins.
func Dump(u *Unit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unit %s [%s] : %s\n", u.File, u.Config, u.Type)
	dumpTerm(&sb, u.Term, 1)
	return sb.String()
}

func dumpTerm(sb *strings.Builder, t *Term, depth int) {
	if t == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(t.Kind.String())
	if t.Origin != 0 {
		fmt.Fprintf(sb, " <#%d>", t.Origin)
	}
	switch d := t.Data.(type) {
	case VarData:
		sb.WriteString(" " + d.Name)
	case LitData:
		sb.WriteString(" " + Print(t))
	case LamData:
		sb.WriteString(" " + d.Param + " : " + d.ParamType.String())
	case TyAbsData:
		sb.WriteString(" " + binder(d.Param, d.Kind))
	case TyAppData:
		sb.WriteString(" [" + d.Arg.String() + "]")
	case LetData:
		sb.WriteString(" " + d.Name + " : " + d.Type.String())
	case PrimData:
		sb.WriteString(" @" + d.Name)
	case FieldData:
		sb.WriteString(" ." + d.Label)
	case ListData:
		sb.WriteString(" of " + d.Elem.String())
	case CastData:
		sb.WriteString(" " + d.From.String() + " => " + d.To.String())
	case TypeLitData:
		sb.WriteString(" " + d.Type.String())
	case RecordData:
		labels := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			labels[i] = f.Label
		}
		sb.WriteString(" {" + strings.Join(labels, ", ") + "}")
	}
	sb.WriteString("\n")
	for _, c := range Children(t) {
		dumpTerm(sb, c, depth+1)
	}
}
