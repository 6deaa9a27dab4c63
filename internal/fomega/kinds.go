// Package fomega is the explicitly typed core calculus that lowering targets
// and the evaluator runs.
//
// Every binder carries its type or kind, every instantiation is an explicit
// TyApp and every gradual boundary is an explicit Cast. Terms have no spans;
// each one remembers the TypedAST node it was lowered from in Origin.
package fomega

type KindTag uint8

const (
	KindInvalid KindTag = iota
	KindStar
	KindArrow
	KindRow

	kindTagCount
)

func (t KindTag) Valid() bool { return t > KindInvalid && t < kindTagCount }

// Kind classifies types: * for inhabited types, k1 -> k2 for type operators
// and Row for record tails.
type Kind struct {
	Tag  KindTag
	From *Kind
	To   *Kind
}

var (
	starKind = &Kind{Tag: KindStar}
	rowKind  = &Kind{Tag: KindRow}
)

func Star() *Kind { return starKind }
func Row() *Kind  { return rowKind }

func KArrow(from, to *Kind) *Kind { return &Kind{Tag: KindArrow, From: from, To: to} }

func EqualKind(a, b *Kind) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag {
		return false
	}
	if a.Tag == KindArrow {
		return EqualKind(a.From, b.From) && EqualKind(a.To, b.To)
	}
	return true
}

func (k *Kind) String() string {
	if k == nil {
		return "<nil>"
	}
	switch k.Tag {
	case KindStar:
		return "*"
	case KindRow:
		return "Row"
	case KindArrow:
		from := k.From.String()
		if k.From != nil && k.From.Tag == KindArrow {
			from = "(" + from + ")"
		}
		return from + " -> " + k.To.String()
	}
	return "<?>"
}
