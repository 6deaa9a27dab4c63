package opt

import (
	"langlang/internal/ast"
	"langlang/internal/fomega"
	"langlang/internal/prim"
)

type rewriter struct {
	aggressive bool
	stats      Stats
}

// rewrite is one bottom-up pass: children first, then the node itself.
func (r *rewriter) rewrite(t *fomega.Term) *fomega.Term {
	if t == nil {
		return nil
	}
	t = fomega.MapChildren(t, r.rewrite)
	switch d := t.Data.(type) {
	case fomega.PrimData:
		return r.fold(t, d)
	case fomega.IfData:
		if c, ok := d.Cond.Data.(fomega.LitData); ok && c.Lit.Kind == ast.LitBool {
			r.stats.Branches++
			if c.Lit.Bool {
				return d.Then
			}
			return d.Else
		}
	case fomega.CastData:
		return r.cast(t, d)
	case fomega.LetData:
		return r.let(t, d)
	case fomega.AppData:
		if !r.aggressive {
			break
		}
		if lam, ok := d.Fn.Data.(fomega.LamData); ok && isValue(d.Arg) {
			r.stats.Beta++
			return fomega.SubstTerm(lam.Body, lam.Param, d.Arg)
		}
	case fomega.TyAppData:
		if !r.aggressive {
			break
		}
		if abs, ok := d.Fn.Data.(fomega.TyAbsData); ok {
			r.stats.Beta++
			return fomega.SubstTypeInTerm(abs.Body, abs.Param, d.Arg)
		}
	}
	return t
}

// fold computes a total pure primitive whose arguments are all literals.
func (r *rewriter) fold(t *fomega.Term, d fomega.PrimData) *fomega.Term {
	p, ok := prim.Lookup(d.Name)
	if !ok || !p.Foldable() {
		return t
	}
	lits := make([]ast.LitData, len(d.Args))
	for i, a := range d.Args {
		l, ok := a.Data.(fomega.LitData)
		if !ok {
			return t
		}
		lits[i] = l.Lit
	}
	v, err := prim.Apply(d.Name, lits)
	if err != nil {
		return t
	}
	r.stats.Folded++
	return fomega.Lit(t.Origin, v)
}

// cast drops identity casts and Dyn round trips: <Dyn => A> (<A => Dyn> e)
// is e whenever e has type A.
func (r *rewriter) cast(t *fomega.Term, d fomega.CastData) *fomega.Term {
	if fomega.EqualType(d.From, d.To) {
		r.stats.Casts++
		return d.Term
	}
	inner, ok := d.Term.Data.(fomega.CastData)
	if ok && d.From.Tag == fomega.TypeDyn && inner.To.Tag == fomega.TypeDyn && fomega.EqualType(inner.From, d.To) {
		r.stats.Casts++
		return inner.Term
	}
	return t
}

func (r *rewriter) let(t *fomega.Term, d fomega.LetData) *fomega.Term {
	uses := fomega.Occurrences(d.Body, d.Name)
	switch {
	case uses == 0 && isValue(d.Value):
		r.stats.DeadLets++
		return d.Body
	case !r.aggressive:
		return t
	case uses == 0 && effectFree(d.Value):
		r.stats.DeadLets++
		return d.Body
	case uses == 1 && effectFree(d.Value):
		r.stats.Inlined++
		return fomega.SubstTerm(d.Body, d.Name, d.Value)
	}
	return t
}

// isValue reports whether t is a syntactic value: evaluating it takes no
// step that could fail.
func isValue(t *fomega.Term) bool {
	switch d := t.Data.(type) {
	case fomega.LitData, fomega.VarData, fomega.LamData, fomega.TyAbsData, fomega.TypeLitData:
		return true
	case fomega.RecordData:
		for _, f := range d.Fields {
			if !isValue(f.Value) {
				return false
			}
		}
		return true
	case fomega.ListData:
		for _, e := range d.Elems {
			if !isValue(e) {
				return false
			}
		}
		return true
	}
	return false
}

// effectFree reports whether evaluating t always terminates with a value
// and performs no effect. Applications, partial primitives and casts that
// may fail are excluded.
func effectFree(t *fomega.Term) bool {
	if isValue(t) {
		return true
	}
	switch d := t.Data.(type) {
	case fomega.PrimData:
		p, ok := prim.Lookup(d.Name)
		if !ok || !p.Foldable() {
			return false
		}
	case fomega.CastData:
		// upcasts to Dyn never fail
		if d.To.Tag != fomega.TypeDyn {
			return false
		}
	case fomega.AppData, fomega.TyAppData:
		return false
	}
	for _, c := range fomega.Children(t) {
		if !effectFree(c) {
			return false
		}
	}
	return true
}
