package eval

import (
	"slices"
	"strconv"
	"strings"

	"langlang/internal/ast"
	"langlang/internal/fomega"
)

// ValueKind tags runtime values.
type ValueKind uint8

const (
	ValInvalid ValueKind = iota
	ValInt
	ValBool
	ValString
	ValUnit
	ValRecord
	ValList
	// ValClosure is a term abstraction with its environment.
	ValClosure
	// ValTypeClosure is a delayed type abstraction.
	ValTypeClosure
	// ValType is a type used as a value (dependent mode).
	ValType
	// ValBox is a value injected into Dyn together with its type.
	ValBox
	// ValProxy wraps a function or type abstraction cast between two types.
	ValProxy

	valueKindCount
)

var valueKindNames = [...]string{
	ValInvalid:     "invalid",
	ValInt:         "int",
	ValBool:        "bool",
	ValString:      "string",
	ValUnit:        "unit",
	ValRecord:      "record",
	ValList:        "list",
	ValClosure:     "closure",
	ValTypeClosure: "type-closure",
	ValType:        "type",
	ValBox:         "dyn",
	ValProxy:       "proxy",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "ValueKind(" + strconv.Itoa(int(k)) + ")"
}

func (k ValueKind) Valid() bool { return k > ValInvalid && k < valueKindCount }

// Value is the result of evaluation. Only the fields of its kind are set.
type Value struct {
	Kind   ValueKind
	Int    int64
	Bool   bool
	Str    string
	Fields []FieldValue // record, sorted by label
	Elems  []Value      // list
	// Type is the denoted type of ValType and the injected type of ValBox.
	Type *fomega.Type
	// Inner is the boxed or proxied value.
	Inner *Value
	// From and To describe a proxy cast.
	From, To *fomega.Type
	fn       *closure
}

type FieldValue struct {
	Label string
	Value Value
}

// closure is kept out of the exported surface: it references the term and
// the environment and does not cross a message boundary.
type closure struct {
	param string
	body  *fomega.Term
	env   *env
	tenv  *tenv
}

func IntValue(v int64) Value         { return Value{Kind: ValInt, Int: v} }
func BoolValue(v bool) Value         { return Value{Kind: ValBool, Bool: v} }
func StringValue(v string) Value     { return Value{Kind: ValString, Str: v} }
func UnitValue() Value               { return Value{Kind: ValUnit} }
func TypeValue(t *fomega.Type) Value { return Value{Kind: ValType, Type: t} }
func ListValue(elems ...Value) Value { return Value{Kind: ValList, Elems: elems} }

// RecordValue builds a record; fields are sorted by label.
func RecordValue(fields ...FieldValue) Value {
	fs := slices.Clone(fields)
	slices.SortFunc(fs, func(a, b FieldValue) int { return strings.Compare(a.Label, b.Label) })
	return Value{Kind: ValRecord, Fields: fs}
}

func box(v Value, t *fomega.Type) Value {
	return Value{Kind: ValBox, Inner: &v, Type: t}
}

func proxy(v Value, from, to *fomega.Type) Value {
	return Value{Kind: ValProxy, Inner: &v, From: from, To: to}
}

func litValue(l ast.LitData) Value {
	switch l.Kind {
	case ast.LitInt:
		return IntValue(l.Int)
	case ast.LitBool:
		return BoolValue(l.Bool)
	case ast.LitString:
		return StringValue(l.Str)
	}
	return UnitValue()
}

// lit converts a first-order scalar back to a literal for the primitives.
func (v Value) lit() (ast.LitData, bool) {
	switch v.Kind {
	case ValInt:
		return ast.LitData{Kind: ast.LitInt, Int: v.Int}, true
	case ValBool:
		return ast.LitData{Kind: ast.LitBool, Bool: v.Bool}, true
	case ValString:
		return ast.LitData{Kind: ast.LitString, Str: v.Str}, true
	case ValUnit:
		return ast.LitData{Kind: ast.LitUnit}, true
	}
	return ast.LitData{}, false
}

// Unbox strips Dyn injections.
func (v Value) Unbox() Value {
	for v.Kind == ValBox && v.Inner != nil {
		v = *v.Inner
	}
	return v
}

// Field looks a label up in a record value.
func (v Value) Field(label string) (Value, bool) {
	i, ok := slices.BinarySearchFunc(v.Fields, label, func(f FieldValue, l string) int {
		return strings.Compare(f.Label, l)
	})
	if !ok {
		return Value{}, false
	}
	return v.Fields[i].Value, true
}

// IsFunction reports whether v can be applied to a term argument.
func (v Value) IsFunction() bool {
	switch v.Kind {
	case ValClosure:
		return true
	case ValProxy:
		return v.To != nil && v.To.Tag == fomega.TypeArrow
	}
	return false
}

// Transportable reports whether v can be written as a Value message:
// closures and proxies cannot.
func (v Value) Transportable() bool {
	switch v.Kind {
	case ValClosure, ValTypeClosure, ValProxy:
		return false
	case ValBox:
		return v.Inner.Transportable()
	case ValRecord:
		for _, f := range v.Fields {
			if !f.Value.Transportable() {
				return false
			}
		}
	case ValList:
		for _, e := range v.Elems {
			if !e.Transportable() {
				return false
			}
		}
	}
	return true
}

// String renders v in surface syntax. Dyn boxes are transparent.
func (v Value) String() string {
	var sb strings.Builder
	writeValue(&sb, v)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value) {
	switch v.Kind {
	case ValInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case ValBool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case ValString:
		sb.WriteString(strconv.Quote(v.Str))
	case ValUnit:
		sb.WriteString("()")
	case ValRecord:
		sb.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Label)
			sb.WriteString(" = ")
			writeValue(sb, f.Value)
		}
		sb.WriteByte('}')
	case ValList:
		sb.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, e)
		}
		sb.WriteByte(']')
	case ValClosure, ValProxy:
		sb.WriteString("<fun>")
	case ValTypeClosure:
		sb.WriteString("<type-fun>")
	case ValType:
		sb.WriteString(v.Type.String())
	case ValBox:
		writeValue(sb, *v.Inner)
	default:
		sb.WriteString("<invalid>")
	}
}

// Equal compares two transportable values structurally; boxes are
// compared by content.
func Equal(a, b Value) bool {
	a, b = a.Unbox(), b.Unbox()
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValInt:
		return a.Int == b.Int
	case ValBool:
		return a.Bool == b.Bool
	case ValString:
		return a.Str == b.Str
	case ValUnit:
		return true
	case ValType:
		return fomega.EqualType(a.Type, b.Type)
	case ValRecord:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Label != b.Fields[i].Label || !Equal(a.Fields[i].Value, b.Fields[i].Value) {
				return false
			}
		}
		return true
	case ValList:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}
