package prim

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"langlang/internal/ast"
)

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrNotFoldable  = errors.New("primitive cannot be computed from literals")
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// Apply computes a pure primitive over literal arguments. The caller checks
// arity; argument shapes are checked here. Effectful primitives and polymorphic
// ones applied to non-literal values return ErrNotFoldable.
func Apply(name string, args []ast.LitData) (ast.LitData, error) {
	p, ok := Lookup(name)
	if !ok {
		return ast.LitData{}, fmt.Errorf("unknown primitive %q", name)
	}
	if !p.Pure() {
		return ast.LitData{}, ErrNotFoldable
	}
	if len(args) != p.Arity() {
		return ast.LitData{}, fmt.Errorf("%s expects %d arguments, got %d", name, p.Arity(), len(args))
	}
	for i, want := range p.Params {
		if want != Var && shapeOf(args[i]) != want {
			return ast.LitData{}, fmt.Errorf("%s: argument %d is %s, want %s", name, i+1, shapeOf(args[i]), want)
		}
	}
	switch name {
	case "add":
		return intLit(args[0].Int + args[1].Int), nil
	case "sub":
		return intLit(args[0].Int - args[1].Int), nil
	case "mul":
		return intLit(args[0].Int * args[1].Int), nil
	case "div", "mod":
		if args[1].Int == 0 {
			return ast.LitData{}, ErrDivideByZero
		}
		if name == "div" {
			// MinInt64 / -1 wraps
			return intLit(args[0].Int / args[1].Int), nil
		}
		return intLit(args[0].Int % args[1].Int), nil
	case "neg":
		return intLit(-args[0].Int), nil
	case "lt":
		return boolLit(args[0].Int < args[1].Int), nil
	case "le":
		return boolLit(args[0].Int <= args[1].Int), nil
	case "gt":
		return boolLit(args[0].Int > args[1].Int), nil
	case "ge":
		return boolLit(args[0].Int >= args[1].Int), nil
	case "eq":
		return boolLit(args[0] == args[1]), nil
	case "ne":
		return boolLit(args[0] != args[1]), nil
	case "not":
		return boolLit(!args[0].Bool), nil
	case "concat":
		return strLit(args[0].Str + args[1].Str), nil
	case "strlen":
		return intLit(int64(utf8.RuneCountInString(args[0].Str))), nil
	case "show":
		return strLit(Show(args[0])), nil
	case "upper":
		return strLit(upperCaser.String(args[0].Str)), nil
	case "lower":
		return strLit(lowerCaser.String(args[0].Str)), nil
	}
	return ast.LitData{}, ErrNotFoldable
}

// Show renders a literal the way the show primitive does.
func Show(l ast.LitData) string {
	switch l.Kind {
	case ast.LitInt:
		return strconv.FormatInt(l.Int, 10)
	case ast.LitBool:
		return strconv.FormatBool(l.Bool)
	case ast.LitString:
		return strconv.Quote(l.Str)
	default:
		return "()"
	}
}

func shapeOf(l ast.LitData) Shape {
	switch l.Kind {
	case ast.LitInt:
		return Int
	case ast.LitBool:
		return Bool
	case ast.LitString:
		return String
	default:
		return Unit
	}
}

func intLit(v int64) ast.LitData  { return ast.LitData{Kind: ast.LitInt, Int: v} }
func boolLit(v bool) ast.LitData  { return ast.LitData{Kind: ast.LitBool, Bool: v} }
func strLit(v string) ast.LitData { return ast.LitData{Kind: ast.LitString, Str: v} }
