package typedast

// VarKind distinguishes ordinary type variables from row variables.
type VarKind uint8

const (
	KindStar VarKind = iota
	KindRow
)

func (k VarKind) String() string {
	if k == KindRow {
		return "row"
	}
	return "*"
}

type TypeVar struct {
	Name string
	Kind VarKind
}

// Scheme quantifies Body over Vars. A monomorphic binder has no Vars.
type Scheme struct {
	Vars []TypeVar
	Body *Type
}

// Mono wraps t in a scheme without quantifiers.
func Mono(t *Type) *Scheme { return &Scheme{Body: t} }

func (s *Scheme) IsMono() bool { return s == nil || len(s.Vars) == 0 }

// Instantiate substitutes args for the quantified variables in order.
func (s *Scheme) Instantiate(args []*Type) *Type {
	if s.IsMono() {
		return s.Body
	}
	sub := make(map[string]*Type, len(s.Vars))
	for i, v := range s.Vars {
		if i < len(args) {
			sub[v.Name] = args[i]
		}
	}
	return SubstParams(s.Body, sub)
}
