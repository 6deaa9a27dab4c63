package check

import (
	"fortio.org/safecast"

	"langlang/internal/typedast"
)

type metaInfo struct {
	level int
	row   bool
	// solution, nil while unsolved
	ref *typedast.Type
}

func (c *checker) newMeta(row bool) *typedast.Type {
	c.metas = append(c.metas, metaInfo{level: c.level, row: row})
	id, err := safecast.Conv[uint32](len(c.metas))
	if err != nil {
		panic(err)
	}
	return typedast.Meta(id)
}

func (c *checker) fresh() *typedast.Type { return c.newMeta(false) }

func (c *checker) freshRow() *typedast.Type { return c.newMeta(true) }

func (c *checker) info(t *typedast.Type) *metaInfo { return &c.metas[t.Meta-1] }

// resolve follows solved metas until it reaches a non-meta or an unsolved one.
func (c *checker) resolve(t *typedast.Type) *typedast.Type {
	for t != nil && t.Kind == typedast.TypeMeta {
		ref := c.info(t).ref
		if ref == nil {
			return t
		}
		t = ref
	}
	return t
}

// zonk substitutes solved metas everywhere; unsolved ones stay.
func (c *checker) zonk(t *typedast.Type) *typedast.Type {
	return c.zonkWith(t, false)
}

// zonkFinal also defaults unsolved metas and closes unsolved rows.
func (c *checker) zonkFinal(t *typedast.Type) *typedast.Type {
	return c.zonkWith(t, true)
}

func (c *checker) zonkWith(t *typedast.Type, final bool) *typedast.Type {
	t = c.resolve(t)
	if t == nil {
		return nil
	}
	switch t.Kind {
	case typedast.TypeMeta:
		if final {
			return c.rules.defaultMeta
		}
		return t
	case typedast.TypeFun:
		p, r := c.zonkWith(t.Param, final), c.zonkWith(t.Result, final)
		if p == t.Param && r == t.Result {
			return t
		}
		return typedast.Pi(t.Binder, p, r)
	case typedast.TypeList:
		el := c.zonkWith(t.Elem, final)
		if el == t.Elem {
			return t
		}
		return typedast.List(el)
	case typedast.TypeRecord:
		fields, rest := c.flattenRow(t)
		out := make([]typedast.FieldType, len(fields))
		for i, f := range fields {
			out[i] = typedast.FieldType{Label: f.Label, Type: c.zonkWith(f.Type, final)}
		}
		if rest != nil && rest.Kind == typedast.TypeMeta && final {
			rest = nil
		}
		return typedast.Record(out, rest)
	}
	return t
}

// flattenRow collects the fields of a record and of every solved tail. The
// returned rest is nil, an unsolved meta or a Param.
func (c *checker) flattenRow(t *typedast.Type) ([]typedast.FieldType, *typedast.Type) {
	var fields []typedast.FieldType
	for {
		fields = append(fields, t.Fields...)
		rest := c.resolve(t.Rest)
		if rest == nil || rest.Kind != typedast.TypeRecord {
			return fields, rest
		}
		t = rest
	}
}

// occurs reports whether meta id occurs in t, lowering levels of the metas
// it meets to level on the way.
func (c *checker) occurs(id uint32, level int, t *typedast.Type) bool {
	t = c.resolve(t)
	if t == nil {
		return false
	}
	switch t.Kind {
	case typedast.TypeMeta:
		if t.Meta == id {
			return true
		}
		if m := c.info(t); m.level > level {
			m.level = level
		}
		return false
	case typedast.TypeFun:
		return c.occurs(id, level, t.Param) || c.occurs(id, level, t.Result)
	case typedast.TypeList:
		return c.occurs(id, level, t.Elem)
	case typedast.TypeRecord:
		for _, f := range t.Fields {
			if c.occurs(id, level, f.Type) {
				return true
			}
		}
		return c.occurs(id, level, t.Rest)
	}
	return false
}

// freeMetas lists unsolved metas of t in first-occurrence order.
func (c *checker) freeMetas(t *typedast.Type) []*typedast.Type {
	var out []*typedast.Type
	seen := make(map[uint32]bool)
	var walk func(t *typedast.Type)
	walk = func(t *typedast.Type) {
		t = c.resolve(t)
		if t == nil {
			return
		}
		switch t.Kind {
		case typedast.TypeMeta:
			if !seen[t.Meta] {
				seen[t.Meta] = true
				out = append(out, t)
			}
		case typedast.TypeFun:
			walk(t.Param)
			walk(t.Result)
		case typedast.TypeList:
			walk(t.Elem)
		case typedast.TypeRecord:
			for _, f := range t.Fields {
				walk(f.Type)
			}
			walk(t.Rest)
		}
	}
	walk(t)
	return out
}
