package typedast

import (
	"fmt"
	"strconv"
	"strings"

	"langlang/internal/ast"
)

// TypeString renders t in surface type syntax.
func TypeString(t *Type) string {
	var sb strings.Builder
	writeType(&sb, t, 0)
	return sb.String()
}

// SchemeString renders "forall a b. body".
func SchemeString(s *Scheme) string {
	if s == nil {
		return "<nil>"
	}
	if s.IsMono() {
		return TypeString(s.Body)
	}
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = v.Name
	}
	return "forall " + strings.Join(names, " ") + ". " + TypeString(s.Body)
}

// prec 0: top, 1: function domain, 2: type application argument
func writeType(sb *strings.Builder, t *Type, prec int) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case TypeCon, TypeParam:
		sb.WriteString(t.Name)
	case TypeMeta:
		sb.WriteString("?" + strconv.FormatUint(uint64(t.Meta), 10))
	case TypeDyn:
		sb.WriteString("Dyn")
	case TypeUniverse:
		sb.WriteString("Type")
	case TypeList:
		if prec >= 2 {
			sb.WriteString("(")
			defer sb.WriteString(")")
		}
		sb.WriteString("List ")
		writeType(sb, t.Elem, 2)
	case TypeFun:
		if prec >= 1 {
			sb.WriteString("(")
			defer sb.WriteString(")")
		}
		if t.Binder != "" {
			sb.WriteString("(" + t.Binder + " : ")
			writeType(sb, t.Param, 0)
			sb.WriteString(")")
		} else {
			writeType(sb, t.Param, 1)
		}
		sb.WriteString(" -> ")
		writeType(sb, t.Result, 0)
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
	case TypeTerm:
		sb.WriteString("(")
		sb.WriteString(ast.Print(Erase(t.Term)))
		sb.WriteString(")")
	default:
		sb.WriteString("<?>")
	}
}

// Dump renders the tree one node per line with ids and types.
func Dump(u *Unit) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unit %s [%s] : %s\n", u.File, u.Config, SchemeString(u.Scheme))
	dumpExpr(&sb, u.Root, 1)
	return sb.String()
}

func dumpExpr(sb *strings.Builder, e *Expr, depth int) {
	if e == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(sb, "#%d %s", e.ID, e.Kind)
	switch d := e.Data.(type) {
	case LitData:
		sb.WriteString(" " + ast.Print(&ast.Expr{Kind: ast.ExprLit, Data: d.Lit}))
	case VarData:
		sb.WriteString(" " + d.Name)
		if len(d.TypeArgs) > 0 {
			args := make([]string, len(d.TypeArgs))
			for i, a := range d.TypeArgs {
				args[i] = TypeString(a)
			}
			sb.WriteString(" [" + strings.Join(args, ", ") + "]")
		}
	case LambdaData:
		sb.WriteString(" " + d.Param + " : " + TypeString(d.ParamType))
	case LetData:
		sb.WriteString(" " + d.Name + " : " + SchemeString(d.Scheme))
	case FieldData:
		sb.WriteString(" ." + d.Label)
	case BinaryData:
		sb.WriteString(" " + d.Op.String())
	case UnaryData:
		sb.WriteString(" " + d.Op.String())
	case PrimData:
		sb.WriteString(" @" + d.Name)
	case CastData:
		sb.WriteString(" " + TypeString(d.From) + " => " + TypeString(d.To))
	case TypeValueData:
		sb.WriteString(" " + TypeString(d.Denotes))
	case RecordData:
		labels := make([]string, len(d.Fields))
		for i, f := range d.Fields {
			labels[i] = f.Label
		}
		sb.WriteString(" {" + strings.Join(labels, ", ") + "}")
	}
	sb.WriteString(" :: " + TypeString(e.Type) + "\n")
	for _, c := range Children(e) {
		dumpExpr(sb, c, depth+1)
	}
}
