package check

import (
	"slices"
	"strconv"

	"langlang/internal/source"
	"langlang/internal/typedast"
)

// generalize quantifies the metas of t created deeper than the current level.
// Names are picked in first-occurrence order. A name is skipped when an earlier
// scheme binds it and still mentions the meta being named, so the later binder
// cannot capture the earlier one.
func (c *checker) generalize(t *typedast.Type) *typedast.Scheme {
	zt := c.zonk(t)
	var vars []typedast.TypeVar
	used := typedast.FreeParams(zt)
	var outer []*typedast.Type
	stars, rows := 0, 0
	for _, m := range c.freeMetas(zt) {
		info := c.info(m)
		if info.level <= c.level {
			outer = append(outer, m)
			continue
		}
		avoid := append(slices.Clone(used), c.boundAround(m)...)
		var name string
		kind := typedast.KindStar
		if info.row {
			kind = typedast.KindRow
			name, rows = nextName("r", rows, avoid)
		} else {
			name, stars = nextName("", stars, avoid)
		}
		used = append(used, name)
		info.ref = typedast.Param(name)
		vars = append(vars, typedast.TypeVar{Name: name, Kind: kind})
	}
	if len(vars) > 0 && len(outer) > 0 {
		names := make([]string, len(vars))
		for i, v := range vars {
			names[i] = v.Name
		}
		c.quantified = append(c.quantified, quantified{names: names, metas: outer})
	}
	return &typedast.Scheme{Vars: vars, Body: c.zonk(zt)}
}

// quantified remembers the binders of a scheme that still has free metas.
type quantified struct {
	names []string
	metas []*typedast.Type
}

// boundAround lists names bound by earlier schemes whose free metas now
// resolve to m.
func (c *checker) boundAround(m *typedast.Type) []string {
	var out []string
	for _, q := range c.quantified {
		for _, qm := range q.metas {
			if slices.ContainsFunc(c.freeMetas(qm), func(x *typedast.Type) bool { return x.Meta == m.Meta }) {
				out = append(out, q.names...)
				break
			}
		}
	}
	return out
}

// nextName yields a, b, ..., z, a1, ... (or r, r1, ... for a prefix).
func nextName(prefix string, n int, used []string) (string, int) {
	for {
		var name string
		if prefix == "" {
			name = string(rune('a' + n%26))
			if n >= 26 {
				name += strconv.Itoa(n / 26)
			}
		} else {
			name = prefix
			if n > 0 {
				name += strconv.Itoa(n)
			}
		}
		n++
		if !slices.Contains(used, name) {
			return name, n
		}
	}
}

// checkEscape rejects solutions that leak the rigid variables of annot into
// metas that existed before the annotated value was checked.
func (c *checker) checkEscape(annot *typedast.Scheme, before int, sp source.Span) error {
	if annot.IsMono() {
		return nil
	}
	for i := 0; i < before; i++ {
		if c.metas[i].ref == nil {
			continue
		}
		for _, p := range typedast.FreeParams(c.zonk(c.metas[i].ref)) {
			if slices.ContainsFunc(annot.Vars, func(v typedast.TypeVar) bool { return v.Name == p }) {
				return malformed(sp, "type variable %s escapes its annotation", p)
			}
		}
	}
	return nil
}

// finish zonks the whole tree with defaulting and drops identity casts.
func (c *checker) finish(x *typedast.Expr) *typedast.Expr {
	if x == nil {
		return nil
	}
	x.Type = c.zonkFinal(x.Type)
	switch d := x.Data.(type) {
	case typedast.VarData:
		for i, a := range d.TypeArgs {
			d.TypeArgs[i] = c.zonkFinal(a)
		}
	case typedast.LambdaData:
		d.ParamType = c.zonkFinal(d.ParamType)
		d.Body = c.finish(d.Body)
		x.Data = d
	case typedast.AppData:
		d.Fn, d.Arg = c.finish(d.Fn), c.finish(d.Arg)
		x.Data = d
	case typedast.LetData:
		d.Scheme = c.finishScheme(d.Scheme)
		if d.Annot != nil {
			d.Annot = c.finishScheme(d.Annot)
		}
		d.Value, d.Body = c.finish(d.Value), c.finish(d.Body)
		x.Data = d
	case typedast.RecordData:
		for i := range d.Fields {
			d.Fields[i].Value = c.finish(d.Fields[i].Value)
		}
	case typedast.FieldData:
		d.Record = c.finish(d.Record)
		x.Data = d
	case typedast.IfData:
		d.Cond, d.Then, d.Else = c.finish(d.Cond), c.finish(d.Then), c.finish(d.Else)
		x.Data = d
	case typedast.AnnotData:
		d.Annot = c.zonkFinal(d.Annot)
		d.Expr = c.finish(d.Expr)
		x.Data = d
	case typedast.BinaryData:
		d.Left, d.Right = c.finish(d.Left), c.finish(d.Right)
		x.Data = d
	case typedast.UnaryData:
		d.Operand = c.finish(d.Operand)
		x.Data = d
	case typedast.ListData:
		for i := range d.Elems {
			d.Elems[i] = c.finish(d.Elems[i])
		}
	case typedast.PrimData:
		for i := range d.Args {
			d.Args[i] = c.finish(d.Args[i])
		}
	case typedast.CastData:
		d.From, d.To = c.zonkFinal(d.From), c.zonkFinal(d.To)
		d.Expr = c.finish(d.Expr)
		if typedast.EqualType(d.From, d.To) {
			return d.Expr
		}
		x.Data = d
	}
	return x
}

func (c *checker) finishScheme(s *typedast.Scheme) *typedast.Scheme {
	return &typedast.Scheme{Vars: s.Vars, Body: c.zonkFinal(s.Body)}
}
