package typedast

import (
	"slices"
	"strings"
)

// TypeKind enumerates the type language shared by all four disciplines.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	// TypeCon is a base constructor: Int, Bool, String or Unit.
	TypeCon
	// TypeMeta is a unification variable. It never survives checking.
	TypeMeta
	// TypeParam is a rigid variable: quantified by a scheme or bound by a dependent Pi.
	TypeParam
	// TypeFun is a function type; a non-empty Binder makes it a dependent Pi.
	TypeFun
	// TypeRecord has fields sorted by label and an optional row tail.
	TypeRecord
	TypeList
	// TypeDyn is the single "any" type.
	TypeDyn
	// TypeUniverse is the type of types.
	TypeUniverse
	// TypeTerm embeds a stuck term inside a type (dependent mode).
	TypeTerm

	typeKindCount
)

func (k TypeKind) String() string {
	switch k {
	case TypeCon:
		return "Con"
	case TypeMeta:
		return "Meta"
	case TypeParam:
		return "Param"
	case TypeFun:
		return "Fun"
	case TypeRecord:
		return "Record"
	case TypeList:
		return "List"
	case TypeDyn:
		return "Dyn"
	case TypeUniverse:
		return "Universe"
	case TypeTerm:
		return "Term"
	default:
		return "Invalid"
	}
}

func (k TypeKind) Valid() bool { return k > TypeInvalid && k < typeKindCount }

const (
	ConInt    = "Int"
	ConBool   = "Bool"
	ConString = "String"
	ConUnit   = "Unit"
)

// IsBaseCon reports whether name is one of the base constructors.
func IsBaseCon(name string) bool {
	switch name {
	case ConInt, ConBool, ConString, ConUnit:
		return true
	}
	return false
}

// Type is immutable once built; share freely.
type Type struct {
	Kind   TypeKind
	Name   string // Con, Param
	Meta   uint32 // Meta
	Binder string // Fun: dependent binder name, "" otherwise
	Param  *Type  // Fun
	Result *Type  // Fun
	Elem   *Type  // List
	Fields []FieldType
	Rest   *Type // Record: nil for closed rows, Meta or Param for open ones
	Term   *Expr // Term
}

type FieldType struct {
	Label string
	Type  *Type
}

var (
	intType      = &Type{Kind: TypeCon, Name: ConInt}
	boolType     = &Type{Kind: TypeCon, Name: ConBool}
	stringType   = &Type{Kind: TypeCon, Name: ConString}
	unitType     = &Type{Kind: TypeCon, Name: ConUnit}
	dynType      = &Type{Kind: TypeDyn}
	universeType = &Type{Kind: TypeUniverse}
)

func Int() *Type      { return intType }
func Bool() *Type     { return boolType }
func String() *Type   { return stringType }
func UnitType() *Type { return unitType }
func Dyn() *Type      { return dynType }
func Universe() *Type { return universeType }

func Con(name string) *Type {
	switch name {
	case ConInt:
		return intType
	case ConBool:
		return boolType
	case ConString:
		return stringType
	case ConUnit:
		return unitType
	}
	return &Type{Kind: TypeCon, Name: name}
}

func Meta(id uint32) *Type    { return &Type{Kind: TypeMeta, Meta: id} }
func Param(name string) *Type { return &Type{Kind: TypeParam, Name: name} }
func Fun(a, b *Type) *Type    { return &Type{Kind: TypeFun, Param: a, Result: b} }
func List(elem *Type) *Type   { return &Type{Kind: TypeList, Elem: elem} }
func TermType(e *Expr) *Type  { return &Type{Kind: TypeTerm, Term: e} }
func Pi(binder string, a, b *Type) *Type {
	return &Type{Kind: TypeFun, Binder: binder, Param: a, Result: b}
}

// Record sorts fields by label. The caller guarantees labels are distinct.
func Record(fields []FieldType, rest *Type) *Type {
	fs := slices.Clone(fields)
	slices.SortFunc(fs, func(a, b FieldType) int { return strings.Compare(a.Label, b.Label) })
	return &Type{Kind: TypeRecord, Fields: fs, Rest: rest}
}

// Funs builds a -> b -> ... -> result.
func Funs(result *Type, params ...*Type) *Type {
	for i := len(params) - 1; i >= 0; i-- {
		result = Fun(params[i], result)
	}
	return result
}

// Field looks up a label in a record type.
func (t *Type) Field(label string) (*Type, bool) {
	if t == nil || t.Kind != TypeRecord {
		return nil, false
	}
	i, ok := slices.BinarySearchFunc(t.Fields, label, func(f FieldType, l string) int { return strings.Compare(f.Label, l) })
	if !ok {
		return nil, false
	}
	return t.Fields[i].Type, true
}

func (t *Type) IsCon(name string) bool { return t != nil && t.Kind == TypeCon && t.Name == name }

// HasMeta reports whether a unification variable occurs anywhere in t.
func (t *Type) HasMeta() bool {
	found := false
	VisitType(t, func(x *Type) bool {
		if x.Kind == TypeMeta {
			found = true
		}
		return !found
	})
	return found
}

// VisitType walks t in pre-order; embedded terms are not entered.
func VisitType(t *Type, fn func(*Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch t.Kind {
	case TypeFun:
		VisitType(t.Param, fn)
		VisitType(t.Result, fn)
	case TypeList:
		VisitType(t.Elem, fn)
	case TypeRecord:
		for _, f := range t.Fields {
			VisitType(f.Type, fn)
		}
		VisitType(t.Rest, fn)
	}
}

// FreeParams lists Param names in first-occurrence order, skipping names bound by dependent Pis.
func FreeParams(t *Type) []string {
	var out []string
	var walk func(t *Type, bound []string)
	walk = func(t *Type, bound []string) {
		if t == nil {
			return
		}
		switch t.Kind {
		case TypeParam:
			if !slices.Contains(bound, t.Name) && !slices.Contains(out, t.Name) {
				out = append(out, t.Name)
			}
		case TypeFun:
			walk(t.Param, bound)
			if t.Binder != "" {
				bound = append(bound[:len(bound):len(bound)], t.Binder)
			}
			walk(t.Result, bound)
		case TypeList:
			walk(t.Elem, bound)
		case TypeRecord:
			for _, f := range t.Fields {
				walk(f.Type, bound)
			}
			walk(t.Rest, bound)
		}
	}
	walk(t, nil)
	return out
}

// SubstParams replaces free Params by name. Row params are replaced by
// splicing the substituted record's fields into the enclosing record.
func SubstParams(t *Type, sub map[string]*Type) *Type {
	if t == nil || len(sub) == 0 {
		return t
	}
	switch t.Kind {
	case TypeParam:
		if r, ok := sub[t.Name]; ok {
			return r
		}
		return t
	case TypeFun:
		inner := sub
		if t.Binder != "" {
			if _, shadow := sub[t.Binder]; shadow {
				inner = make(map[string]*Type, len(sub))
				for k, v := range sub {
					if k != t.Binder {
						inner[k] = v
					}
				}
			}
		}
		return &Type{Kind: TypeFun, Binder: t.Binder, Param: SubstParams(t.Param, sub), Result: SubstParams(t.Result, inner)}
	case TypeList:
		return List(SubstParams(t.Elem, sub))
	case TypeRecord:
		fields := make([]FieldType, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, FieldType{Label: f.Label, Type: SubstParams(f.Type, sub)})
		}
		rest := SubstParams(t.Rest, sub)
		if rest != nil && rest.Kind == TypeRecord {
			// splice {a | ρ} with ρ := {b | r} into {a, b | r}
			fields = append(fields, rest.Fields...)
			rest = rest.Rest
		}
		return Record(fields, rest)
	}
	return t
}
