package fomega

import (
	"slices"
	"strings"
)

type TypeTag uint8

const (
	TypeInvalid TypeTag = iota
	TypeVar
	// TypeCon is a base constructor: Int, Bool, String, Unit or Type.
	TypeCon
	TypeArrow
	TypeForall
	// TypeLam is a type operator.
	TypeLam
	TypeApp
	// TypeRecord has fields sorted by label and an optional row tail.
	TypeRecord
	TypeList
	TypeDyn

	typeTagCount
)

func (t TypeTag) String() string {
	switch t {
	case TypeVar:
		return "Var"
	case TypeCon:
		return "Con"
	case TypeArrow:
		return "Arrow"
	case TypeForall:
		return "Forall"
	case TypeLam:
		return "Lam"
	case TypeApp:
		return "App"
	case TypeRecord:
		return "Record"
	case TypeList:
		return "List"
	case TypeDyn:
		return "Dyn"
	default:
		return "Invalid"
	}
}

func (t TypeTag) Valid() bool { return t > TypeInvalid && t < typeTagCount }

const (
	ConInt    = "Int"
	ConBool   = "Bool"
	ConString = "String"
	ConUnit   = "Unit"
	// ConType is the type of reified types.
	ConType = "Type"
)

func IsCon(name string) bool {
	switch name {
	case ConInt, ConBool, ConString, ConUnit, ConType:
		return true
	}
	return false
}

// Type is immutable once built.
type Type struct {
	Tag  TypeTag
	Name string // Var, Con; binder of Forall and Lam
	Kind *Kind  // binder kind of Forall and Lam
	// Arrow
	Param  *Type
	Result *Type
	// Forall, Lam
	Body *Type
	// App
	Fn  *Type
	Arg *Type
	// List
	Elem *Type
	// Record
	Fields []FieldType
	Rest   *Type
}

type FieldType struct {
	Label string
	Type  *Type
}

var (
	intType    = &Type{Tag: TypeCon, Name: ConInt}
	boolType   = &Type{Tag: TypeCon, Name: ConBool}
	stringType = &Type{Tag: TypeCon, Name: ConString}
	unitType   = &Type{Tag: TypeCon, Name: ConUnit}
	typeType   = &Type{Tag: TypeCon, Name: ConType}
	dynType    = &Type{Tag: TypeDyn}
)

func Int() *Type      { return intType }
func Bool() *Type     { return boolType }
func String() *Type   { return stringType }
func UnitType() *Type { return unitType }
func TypeType() *Type { return typeType }
func Dyn() *Type      { return dynType }

func TCon(name string) *Type {
	switch name {
	case ConInt:
		return intType
	case ConBool:
		return boolType
	case ConString:
		return stringType
	case ConUnit:
		return unitType
	case ConType:
		return typeType
	}
	return &Type{Tag: TypeCon, Name: name}
}

func TVar(name string) *Type   { return &Type{Tag: TypeVar, Name: name} }
func Arrow(a, b *Type) *Type   { return &Type{Tag: TypeArrow, Param: a, Result: b} }
func TList(elem *Type) *Type   { return &Type{Tag: TypeList, Elem: elem} }
func TApp(fn, arg *Type) *Type { return &Type{Tag: TypeApp, Fn: fn, Arg: arg} }
func Forall(name string, k *Kind, body *Type) *Type {
	return &Type{Tag: TypeForall, Name: name, Kind: k, Body: body}
}
func TLam(name string, k *Kind, body *Type) *Type {
	return &Type{Tag: TypeLam, Name: name, Kind: k, Body: body}
}

// TRecord sorts fields by label. A Record tail is spliced into the result.
func TRecord(fields []FieldType, rest *Type) *Type {
	fs := slices.Clone(fields)
	for rest != nil && rest.Tag == TypeRecord {
		fs = append(fs, rest.Fields...)
		rest = rest.Rest
	}
	slices.SortFunc(fs, func(a, b FieldType) int { return strings.Compare(a.Label, b.Label) })
	if len(fs) == 0 {
		fs = nil
	}
	return &Type{Tag: TypeRecord, Fields: fs, Rest: rest}
}

// Arrows builds a -> b -> ... -> result.
func Arrows(result *Type, params ...*Type) *Type {
	for i := len(params) - 1; i >= 0; i-- {
		result = Arrow(params[i], result)
	}
	return result
}

func (t *Type) Field(label string) (*Type, bool) {
	if t == nil || t.Tag != TypeRecord {
		return nil, false
	}
	i, ok := slices.BinarySearchFunc(t.Fields, label, func(f FieldType, l string) int { return strings.Compare(f.Label, l) })
	if !ok {
		return nil, false
	}
	return t.Fields[i].Type, true
}

func (t *Type) IsCon(name string) bool { return t != nil && t.Tag == TypeCon && t.Name == name }

// HasDyn reports whether Dyn occurs anywhere in t.
func (t *Type) HasDyn() bool {
	found := false
	VisitType(t, func(x *Type) bool {
		found = found || x.Tag == TypeDyn
		return !found
	})
	return found
}

// VisitType walks t in pre-order.
func VisitType(t *Type, fn func(*Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch t.Tag {
	case TypeArrow:
		VisitType(t.Param, fn)
		VisitType(t.Result, fn)
	case TypeForall, TypeLam:
		VisitType(t.Body, fn)
	case TypeApp:
		VisitType(t.Fn, fn)
		VisitType(t.Arg, fn)
	case TypeList:
		VisitType(t.Elem, fn)
	case TypeRecord:
		for _, f := range t.Fields {
			VisitType(f.Type, fn)
		}
		VisitType(t.Rest, fn)
	}
}
