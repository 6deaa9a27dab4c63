package check

import (
	"fmt"
	"slices"
	"strings"

	"langlang/internal/source"
	"langlang/internal/typedast"
)

// mismatch is the innermost failure found by unifyTypes.
type mismatch struct {
	have, want *typedast.Type
	reason     string
}

func (m *mismatch) Error() string { return m.reason }

// unify solves have = want. Under gradual rules Dyn is consistent with
// everything instead.
func (c *checker) unify(have, want *typedast.Type, sp source.Span) error {
	err := c.unifyTypes(have, want)
	if err == nil {
		return nil
	}
	exp, act := c.zonk(want), c.zonk(have)
	te := conflict(sp, exp, act, "type mismatch: expected %s, found %s", typedast.TypeString(exp), typedast.TypeString(act))
	if m, ok := err.(*mismatch); ok {
		inner := fmt.Sprintf("%s vs %s", typedast.TypeString(c.zonk(m.want)), typedast.TypeString(c.zonk(m.have)))
		if m.reason != "" {
			inner = m.reason + ": " + inner
		}
		te.Notes = append(te.Notes, noteAt(sp, inner))
	}
	return te
}

func (c *checker) unifyTypes(have, want *typedast.Type) error {
	a, b := c.resolve(have), c.resolve(want)
	if a == b {
		return nil
	}
	if a == nil || b == nil {
		return &mismatch{have: a, want: b, reason: "missing type"}
	}
	if c.rules.gradual && (a.Kind == typedast.TypeDyn || b.Kind == typedast.TypeDyn) {
		for _, t := range []*typedast.Type{a, b} {
			if t.Kind == typedast.TypeMeta && !c.info(t).row {
				c.info(t).ref = typedast.Dyn()
			}
		}
		return nil
	}
	if a.Kind == typedast.TypeMeta {
		return c.bind(a, b)
	}
	if b.Kind == typedast.TypeMeta {
		return c.bind(b, a)
	}
	if a.Kind != b.Kind {
		return &mismatch{have: a, want: b}
	}
	switch a.Kind {
	case typedast.TypeCon, typedast.TypeParam:
		if a.Name != b.Name {
			return &mismatch{have: a, want: b}
		}
		return nil
	case typedast.TypeDyn, typedast.TypeUniverse:
		return nil
	case typedast.TypeFun:
		if err := c.unifyTypes(a.Param, b.Param); err != nil {
			return err
		}
		return c.unifyTypes(a.Result, b.Result)
	case typedast.TypeList:
		return c.unifyTypes(a.Elem, b.Elem)
	case typedast.TypeRecord:
		return c.unifyRows(a, b)
	case typedast.TypeTerm:
		if typedast.Equal(a.Term, b.Term) {
			return nil
		}
	}
	return &mismatch{have: a, want: b}
}

func (c *checker) bind(m, t *typedast.Type) error {
	if t.Kind == typedast.TypeMeta && t.Meta == m.Meta {
		return nil
	}
	info := c.info(m)
	if c.occurs(m.Meta, info.level, t) {
		return &mismatch{have: m, want: t, reason: "infinite type"}
	}
	info.ref = t
	return nil
}

// unifyRows unifies two record types with possibly open tails. Labels present
// on one side only must be absorbed by the other side's row meta.
func (c *checker) unifyRows(a, b *typedast.Type) error {
	fa, ra := c.flattenRow(a)
	fb, rb := c.flattenRow(b)
	var onlyA, onlyB []typedast.FieldType
	for _, f := range fa {
		i := slices.IndexFunc(fb, func(g typedast.FieldType) bool { return g.Label == f.Label })
		if i < 0 {
			onlyA = append(onlyA, f)
			continue
		}
		if err := c.unifyTypes(f.Type, fb[i].Type); err != nil {
			return err
		}
	}
	for _, g := range fb {
		if !slices.ContainsFunc(fa, func(f typedast.FieldType) bool { return f.Label == g.Label }) {
			onlyB = append(onlyB, g)
		}
	}
	switch {
	case len(onlyA) == 0 && len(onlyB) == 0:
		return c.unifyRest(ra, rb, a, b)
	case len(onlyA) == 0:
		return c.bindRest(ra, typedast.Record(onlyB, rb), onlyB, a, b)
	case len(onlyB) == 0:
		return c.bindRest(rb, typedast.Record(onlyA, ra), onlyA, a, b)
	}
	if ra != nil && rb != nil && ra.Kind == typedast.TypeMeta && rb.Kind == typedast.TypeMeta && ra.Meta == rb.Meta {
		return &mismatch{have: a, want: b, reason: "recursive row"}
	}
	tail := c.freshRow()
	if err := c.bindRest(ra, typedast.Record(onlyB, tail), onlyB, a, b); err != nil {
		return err
	}
	return c.bindRest(rb, typedast.Record(onlyA, tail), onlyA, a, b)
}

func (c *checker) bindRest(rest, ext *typedast.Type, extra []typedast.FieldType, a, b *typedast.Type) error {
	if rest == nil || rest.Kind != typedast.TypeMeta {
		labels := make([]string, len(extra))
		for i, f := range extra {
			labels[i] = f.Label
		}
		return &mismatch{have: a, want: b, reason: "missing fields " + strings.Join(labels, ", ")}
	}
	return c.bind(rest, ext)
}

func (c *checker) unifyRest(ra, rb, a, b *typedast.Type) error {
	switch {
	case ra == nil && rb == nil:
		return nil
	case ra != nil && ra.Kind == typedast.TypeMeta:
		if rb == nil {
			rb = typedast.Record(nil, nil)
		}
		return c.bind(ra, rb)
	case rb != nil && rb.Kind == typedast.TypeMeta:
		if ra == nil {
			ra = typedast.Record(nil, nil)
		}
		return c.bind(rb, ra)
	case ra != nil && rb != nil && ra.Kind == typedast.TypeParam && rb.Kind == typedast.TypeParam && ra.Name == rb.Name:
		return nil
	}
	return &mismatch{have: a, want: b, reason: "row tails differ"}
}
