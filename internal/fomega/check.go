package fomega

import (
	"errors"
	"fmt"
	"slices"

	"langlang/internal/ast"
	"langlang/internal/prim"
)

// CheckError reports an ill-typed or ill-kinded core term. Core terms are
// produced by lowering, so a CheckError is always a compiler bug or a
// corrupted message.
type CheckError struct {
	Origin Origin
	Msg    string
}

func (e *CheckError) Error() string {
	if e.Origin == 0 {
		return "fomega: " + e.Msg
	}
	return fmt.Sprintf("fomega: node #%d: %s", e.Origin, e.Msg)
}

func errAt(o Origin, format string, args ...any) error {
	return &CheckError{Origin: o, Msg: fmt.Sprintf(format, args...)}
}

// kenv and tenv are persistent scopes for type and term variables.
type kenv struct {
	parent *kenv
	name   string
	kind   *Kind
}

func (k *kenv) bind(name string, kind *Kind) *kenv { return &kenv{parent: k, name: name, kind: kind} }

func (k *kenv) lookup(name string) (*Kind, bool) {
	for it := k; it != nil; it = it.parent {
		if it.name == name {
			return it.kind, true
		}
	}
	return nil, false
}

type tenv struct {
	parent *tenv
	name   string
	typ    *Type
}

func (t *tenv) bind(name string, typ *Type) *tenv { return &tenv{parent: t, name: name, typ: typ} }

func (t *tenv) lookup(name string) (*Type, bool) {
	for it := t; it != nil; it = it.parent {
		if it.name == name {
			return it.typ, true
		}
	}
	return nil, false
}

// Check validates a whole unit: the term is closed, well typed and its type
// is equivalent to the unit's declared type.
func Check(u *Unit) error {
	if u == nil || u.Term == nil || u.Type == nil {
		return errors.New("fomega: empty unit")
	}
	if err := u.Config.Validate(); err != nil {
		return err
	}
	if _, err := KindOf(u.Type); err != nil {
		return err
	}
	t, err := TypeOf(u.Term)
	if err != nil {
		return err
	}
	if !EqualType(t, u.Type) {
		return errAt(u.Term.Origin, "unit declares %s but the term has type %s", u.Type, t)
	}
	return nil
}

// TypeOf infers the type of a closed term.
func TypeOf(t *Term) (*Type, error) {
	c := &checker{}
	return c.typeOf(t, nil, nil)
}

type checker struct{}

// KindOf infers the kind of a closed type.
func KindOf(t *Type) (*Kind, error) { return kindOf(t, nil) }

func kindOf(t *Type, k *kenv) (*Kind, error) {
	if t == nil {
		return nil, errAt(0, "missing type")
	}
	switch t.Tag {
	case TypeVar:
		kind, ok := k.lookup(t.Name)
		if !ok {
			return nil, errAt(0, "unbound type variable %s", t.Name)
		}
		return kind, nil
	case TypeCon:
		if !IsCon(t.Name) {
			return nil, errAt(0, "unknown type constructor %s", t.Name)
		}
		return Star(), nil
	case TypeDyn:
		return Star(), nil
	case TypeArrow:
		if err := expectStar(t.Param, k); err != nil {
			return nil, err
		}
		if err := expectStar(t.Result, k); err != nil {
			return nil, err
		}
		return Star(), nil
	case TypeForall:
		if err := validKind(t.Kind); err != nil {
			return nil, err
		}
		if err := expectStar(t.Body, k.bind(t.Name, t.Kind)); err != nil {
			return nil, err
		}
		return Star(), nil
	case TypeLam:
		if err := validKind(t.Kind); err != nil {
			return nil, err
		}
		body, err := kindOf(t.Body, k.bind(t.Name, t.Kind))
		if err != nil {
			return nil, err
		}
		return KArrow(t.Kind, body), nil
	case TypeApp:
		fk, err := kindOf(t.Fn, k)
		if err != nil {
			return nil, err
		}
		if fk.Tag != KindArrow {
			return nil, errAt(0, "type %s of kind %s is applied to an argument", t.Fn, fk)
		}
		if err := expectKind(t.Arg, fk.From, k); err != nil {
			return nil, err
		}
		return fk.To, nil
	case TypeList:
		if err := expectStar(t.Elem, k); err != nil {
			return nil, err
		}
		return Star(), nil
	case TypeRecord:
		for i, f := range t.Fields {
			if i > 0 && t.Fields[i-1].Label >= f.Label {
				return nil, errAt(0, "record type fields not sorted or duplicated at %q", f.Label)
			}
			if err := expectStar(f.Type, k); err != nil {
				return nil, err
			}
		}
		if t.Rest != nil {
			if err := expectKind(t.Rest, Row(), k); err != nil {
				return nil, err
			}
		}
		return Star(), nil
	}
	return nil, errAt(0, "invalid type tag %d", t.Tag)
}

func validKind(k *Kind) error {
	if k == nil || !k.Tag.Valid() {
		return errAt(0, "invalid binder kind")
	}
	if k.Tag == KindArrow {
		if err := validKind(k.From); err != nil {
			return err
		}
		return validKind(k.To)
	}
	return nil
}

func expectStar(t *Type, k *kenv) error { return expectKind(t, Star(), k) }

// expectKind also accepts a record type where a Row is wanted: the record
// then stands for its row of fields.
func expectKind(t *Type, want *Kind, k *kenv) error {
	if want.Tag == KindRow && t != nil && t.Tag == TypeRecord {
		_, err := kindOf(t, k)
		return err
	}
	got, err := kindOf(t, k)
	if err != nil {
		return err
	}
	if !EqualKind(got, want) {
		return errAt(0, "type %s has kind %s, expected %s", t, got, want)
	}
	return nil
}

func (c *checker) kind(o Origin, t *Type, want *Kind, k *kenv) error {
	if err := expectKind(t, want, k); err != nil {
		var ce *CheckError
		if errors.As(err, &ce) && ce.Origin == 0 {
			ce.Origin = o
		}
		return err
	}
	return nil
}

func litType(l ast.LitData) *Type {
	switch l.Kind {
	case ast.LitInt:
		return Int()
	case ast.LitBool:
		return Bool()
	case ast.LitString:
		return String()
	}
	return UnitType()
}

// ShapeType maps a primitive shape to a core type; arg instantiates Var.
func ShapeType(s prim.Shape, arg *Type) *Type {
	switch s {
	case prim.Int:
		return Int()
	case prim.Bool:
		return Bool()
	case prim.String:
		return String()
	case prim.Unit:
		return UnitType()
	}
	return arg
}

func (c *checker) typeOf(t *Term, k *kenv, env *tenv) (*Type, error) {
	if t == nil {
		return nil, errAt(0, "missing term")
	}
	o := t.Origin
	switch d := t.Data.(type) {
	case VarData:
		typ, ok := env.lookup(d.Name)
		if !ok {
			return nil, errAt(o, "unbound variable %s", d.Name)
		}
		return typ, nil

	case LamData:
		if err := c.kind(o, d.ParamType, Star(), k); err != nil {
			return nil, err
		}
		body, err := c.typeOf(d.Body, k, env.bind(d.Param, d.ParamType))
		if err != nil {
			return nil, err
		}
		return Arrow(d.ParamType, body), nil

	case AppData:
		ft, err := c.typeOf(d.Fn, k, env)
		if err != nil {
			return nil, err
		}
		at, err := c.typeOf(d.Arg, k, env)
		if err != nil {
			return nil, err
		}
		fr := Reduce(ft)
		if fr.Tag != TypeArrow {
			return nil, errAt(o, "applying a term of type %s", ft)
		}
		if !EqualType(fr.Param, at) {
			return nil, errAt(o, "argument has type %s, function expects %s", at, fr.Param)
		}
		return fr.Result, nil

	case TyAbsData:
		if err := validKind(d.Kind); err != nil {
			return nil, errAt(o, "%v", err)
		}
		body, err := c.typeOf(d.Body, k.bind(d.Param, d.Kind), env)
		if err != nil {
			return nil, err
		}
		return Forall(d.Param, d.Kind, body), nil

	case TyAppData:
		ft, err := c.typeOf(d.Fn, k, env)
		if err != nil {
			return nil, err
		}
		fr := Reduce(ft)
		if fr.Tag != TypeForall {
			return nil, errAt(o, "instantiating a term of type %s", ft)
		}
		if err := c.kind(o, d.Arg, fr.Kind, k); err != nil {
			return nil, err
		}
		return SubstType(fr.Body, fr.Name, d.Arg), nil

	case LetData:
		if err := c.kind(o, d.Type, Star(), k); err != nil {
			return nil, err
		}
		vt, err := c.typeOf(d.Value, k, env)
		if err != nil {
			return nil, err
		}
		if !EqualType(vt, d.Type) {
			return nil, errAt(o, "let %s declares %s, value has type %s", d.Name, d.Type, vt)
		}
		return c.typeOf(d.Body, k, env.bind(d.Name, d.Type))

	case LitData:
		return litType(d.Lit), nil

	case PrimData:
		return c.primType(t, d, k, env)

	case IfData:
		ct, err := c.typeOf(d.Cond, k, env)
		if err != nil {
			return nil, err
		}
		if !EqualType(ct, Bool()) {
			return nil, errAt(o, "condition has type %s", ct)
		}
		tt, err := c.typeOf(d.Then, k, env)
		if err != nil {
			return nil, err
		}
		et, err := c.typeOf(d.Else, k, env)
		if err != nil {
			return nil, err
		}
		if !EqualType(tt, et) {
			return nil, errAt(o, "branches have types %s and %s", tt, et)
		}
		return tt, nil

	case RecordData:
		fields := make([]FieldType, 0, len(d.Fields))
		for _, f := range d.Fields {
			if slices.ContainsFunc(fields, func(x FieldType) bool { return x.Label == f.Label }) {
				return nil, errAt(o, "duplicate field %q", f.Label)
			}
			ft, err := c.typeOf(f.Value, k, env)
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldType{Label: f.Label, Type: ft})
		}
		return TRecord(fields, nil), nil

	case FieldData:
		rt, err := c.typeOf(d.Record, k, env)
		if err != nil {
			return nil, err
		}
		ft, ok := Reduce(rt).Field(d.Label)
		if !ok {
			return nil, errAt(o, "no field %q in %s", d.Label, rt)
		}
		return ft, nil

	case ListData:
		if err := c.kind(o, d.Elem, Star(), k); err != nil {
			return nil, err
		}
		for _, it := range d.Elems {
			et, err := c.typeOf(it, k, env)
			if err != nil {
				return nil, err
			}
			if !EqualType(et, d.Elem) {
				return nil, errAt(it.Origin, "list element has type %s, expected %s", et, d.Elem)
			}
		}
		return TList(d.Elem), nil

	case CastData:
		if err := c.kind(o, d.From, Star(), k); err != nil {
			return nil, err
		}
		if err := c.kind(o, d.To, Star(), k); err != nil {
			return nil, err
		}
		xt, err := c.typeOf(d.Term, k, env)
		if err != nil {
			return nil, err
		}
		if !EqualType(xt, d.From) {
			return nil, errAt(o, "cast from %s applied to a term of type %s", d.From, xt)
		}
		if !Consistent(d.From, d.To) {
			return nil, errAt(o, "cast between inconsistent types %s and %s", d.From, d.To)
		}
		return d.To, nil

	case TypeLitData:
		if _, err := kindOf(d.Type, k); err != nil {
			return nil, errAt(o, "%v", err)
		}
		return TypeType(), nil
	}
	return nil, errAt(o, "invalid term kind %s", t.Kind)
}

func (c *checker) primType(t *Term, d PrimData, k *kenv, env *tenv) (*Type, error) {
	o := t.Origin
	p, ok := prim.Lookup(d.Name)
	if !ok {
		return nil, errAt(o, "unknown primitive %q", d.Name)
	}
	if len(d.Args) != p.Arity() {
		return nil, errAt(o, "primitive %s takes %d arguments, got %d", d.Name, p.Arity(), len(d.Args))
	}
	var targ *Type
	switch {
	case p.Poly() && len(d.TypeArgs) != 1:
		return nil, errAt(o, "polymorphic primitive %s needs one type argument", d.Name)
	case !p.Poly() && len(d.TypeArgs) != 0:
		return nil, errAt(o, "primitive %s takes no type arguments", d.Name)
	case p.Poly():
		targ = d.TypeArgs[0]
		if err := c.kind(o, targ, Star(), k); err != nil {
			return nil, err
		}
	}
	for i, a := range d.Args {
		at, err := c.typeOf(a, k, env)
		if err != nil {
			return nil, err
		}
		if want := ShapeType(p.Params[i], targ); !EqualType(at, want) {
			return nil, errAt(o, "argument %d of %s has type %s, expected %s", i+1, d.Name, at, want)
		}
	}
	return ShapeType(p.Result, targ), nil
}
