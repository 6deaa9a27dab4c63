// Package eval runs F-omega units to a value.
//
// The machine is call-by-value and left to right. It keeps a term
// environment and a runtime type environment: type applications bind type
// variables so that casts mentioning them can be checked. Casts into Dyn
// box a value with its type, casts out of Dyn check the box, and casts
// between function or polymorphic types wrap the value in a proxy that
// checks arguments and results when it is used.
package eval

import (
	"errors"
	"fmt"
	"strconv"

	"langlang/internal/fomega"
	"langlang/internal/opt"
	"langlang/internal/pipeline"
	"langlang/internal/trace"
)

type Options struct {
	// Limits fences evaluation; zero fields take the defaults.
	Limits pipeline.Limits
	// Allow overrides the sandbox allow list; nil means the default list.
	Allow pipeline.Allowlist
	// Host performs effects; nil means the real process environment.
	Host Host
	// Tracer and Span place evaluation events in a trace.
	Tracer trace.Tracer
	Span   uint64
}

// Outcome is a finished run with its bookkeeping.
type Outcome struct {
	Value Value
	Steps int
	Opt   opt.Result
}

// Evaluate optimizes unit at level and runs it.
func Evaluate(unit *fomega.Unit, level pipeline.OptimizationLevel, opts Options) (Value, error) {
	out, err := Run(unit, level, opts)
	return out.Value, err
}

// Run is Evaluate with step counts and optimizer statistics.
func Run(unit *fomega.Unit, level pipeline.OptimizationLevel, opts Options) (out Outcome, err error) {
	if unit == nil || unit.Term == nil {
		return out, errors.New("eval: empty unit")
	}
	if !level.Valid() {
		return out, fmt.Errorf("eval: invalid optimization level %d", uint8(level))
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.Nop
	}
	if err := fomega.Check(unit); err != nil {
		ee := &Error{Kind: ErrTypeConfusion, Msg: "ill-typed core unit", Err: err}
		var ce *fomega.CheckError
		if errors.As(err, &ce) {
			ee.Origin = ce.Origin
		}
		return out, ee
	}

	sp := trace.Begin(tr, trace.ScopeUnit, "optimize", opts.Span)
	optimized, res := opt.Optimize(unit, level)
	out.Opt = res
	if res.Degraded {
		trace.Point(tr, trace.ScopeUnit, "optimize", "aggressive degraded to release under unrestricted purity", opts.Span)
	}
	sp.WithExtra("level", res.Applied.String()).End(res.Stats.String())

	allow := opts.Allow
	if allow == nil {
		allow = pipeline.DefaultAllowlist()
	}
	host := opts.Host
	if host == nil {
		host = OSHost{}
	}
	lim := opts.Limits.Normalized()
	m := &machine{
		host:     host,
		allow:    allow,
		purity:   unit.Config.Purity,
		maxSteps: lim.EvalSteps,
		maxDepth: lim.EvalDepth,
		tr:       tr,
		span:     opts.Span,
	}

	run := trace.Begin(tr, trace.ScopeUnit, "run", opts.Span)
	defer func() {
		if r := recover(); r != nil {
			out.Value, err = Value{}, &Error{Kind: ErrTypeConfusion, Msg: fmt.Sprintf("internal evaluator error: %v", r)}
		}
		out.Steps = m.steps
		run.WithExtra("steps", strconv.Itoa(m.steps)).End(resultNote(err))
	}()
	out.Value, err = m.eval(optimized.Term, nil, nil)
	if err != nil {
		trace.Point(tr, trace.ScopeUnit, "runtime-error", err.Error(), opts.Span)
	}
	return out, err
}

func resultNote(err error) string {
	if err != nil {
		return "failed"
	}
	return "ok"
}

type env struct {
	parent *env
	name   string
	val    Value
}

func (e *env) bind(name string, v Value) *env { return &env{parent: e, name: name, val: v} }

func (e *env) lookup(name string) (Value, bool) {
	for it := e; it != nil; it = it.parent {
		if it.name == name {
			return it.val, true
		}
	}
	return Value{}, false
}

type tenv struct {
	parent *tenv
	name   string
	typ    *fomega.Type
}

func (e *tenv) bind(name string, t *fomega.Type) *tenv { return &tenv{parent: e, name: name, typ: t} }

func (e *tenv) lookup(name string) (*fomega.Type, bool) {
	for it := e; it != nil; it = it.parent {
		if it.name == name {
			return it.typ, true
		}
	}
	return nil, false
}

type machine struct {
	host     Host
	allow    pipeline.Allowlist
	purity   pipeline.PurityLevel
	steps    int
	maxSteps int
	depth    int
	maxDepth int
	tr       trace.Tracer
	span     uint64
}

// resolve closes t over the runtime type environment.
func (m *machine) resolve(t *fomega.Type, te *tenv) *fomega.Type {
	if t == nil {
		return nil
	}
	for _, name := range fomega.FreeTypeVars(t) {
		if bound, ok := te.lookup(name); ok {
			t = fomega.SubstType(t, name, bound)
		}
	}
	return fomega.Reduce(t)
}

func (m *machine) eval(t *fomega.Term, en *env, te *tenv) (Value, error) {
	if t == nil {
		return Value{}, errAt(0, ErrTypeConfusion, "missing term")
	}
	m.steps++
	if m.steps > m.maxSteps {
		return Value{}, errAt(t.Origin, ErrResourceExhausted, "step budget of %d exhausted", m.maxSteps)
	}
	m.depth++
	defer func() { m.depth-- }()
	if m.depth > m.maxDepth {
		return Value{}, errAt(t.Origin, ErrResourceExhausted, "depth limit of %d exceeded", m.maxDepth)
	}

	switch d := t.Data.(type) {
	case fomega.VarData:
		v, ok := en.lookup(d.Name)
		if !ok {
			return Value{}, errAt(t.Origin, ErrTypeConfusion, "unbound variable %s", d.Name)
		}
		return v, nil
	case fomega.LitData:
		return litValue(d.Lit), nil
	case fomega.LamData:
		return Value{Kind: ValClosure, fn: &closure{param: d.Param, body: d.Body, env: en, tenv: te}}, nil
	case fomega.TyAbsData:
		return Value{Kind: ValTypeClosure, fn: &closure{param: d.Param, body: d.Body, env: en, tenv: te}}, nil
	case fomega.TypeLitData:
		return TypeValue(m.resolve(d.Type, te)), nil
	case fomega.AppData:
		fn, err := m.eval(d.Fn, en, te)
		if err != nil {
			return Value{}, err
		}
		arg, err := m.eval(d.Arg, en, te)
		if err != nil {
			return Value{}, err
		}
		return m.apply(t.Origin, fn, arg)
	case fomega.TyAppData:
		fn, err := m.eval(d.Fn, en, te)
		if err != nil {
			return Value{}, err
		}
		return m.instantiate(t.Origin, fn, m.resolve(d.Arg, te))
	case fomega.LetData:
		v, err := m.eval(d.Value, en, te)
		if err != nil {
			return Value{}, err
		}
		return m.eval(d.Body, en.bind(d.Name, v), te)
	case fomega.IfData:
		c, err := m.eval(d.Cond, en, te)
		if err != nil {
			return Value{}, err
		}
		c = c.Unbox()
		if c.Kind != ValBool {
			return Value{}, errAt(d.Cond.Origin, ErrTypeConfusion, "condition is %s, not bool", c.Kind)
		}
		if c.Bool {
			return m.eval(d.Then, en, te)
		}
		return m.eval(d.Else, en, te)
	case fomega.RecordData:
		fields := make([]FieldValue, len(d.Fields))
		for i, f := range d.Fields {
			v, err := m.eval(f.Value, en, te)
			if err != nil {
				return Value{}, err
			}
			fields[i] = FieldValue{Label: f.Label, Value: v}
		}
		return RecordValue(fields...), nil
	case fomega.FieldData:
		r, err := m.eval(d.Record, en, te)
		if err != nil {
			return Value{}, err
		}
		r = r.Unbox()
		if r.Kind != ValRecord {
			return Value{}, errAt(t.Origin, ErrTypeConfusion, "field %s of a %s", d.Label, r.Kind)
		}
		v, ok := r.Field(d.Label)
		if !ok {
			return Value{}, errAt(t.Origin, ErrFieldNotFound, "record %s has no field %s", r, d.Label)
		}
		return v, nil
	case fomega.ListData:
		elems := make([]Value, len(d.Elems))
		for i, e := range d.Elems {
			v, err := m.eval(e, en, te)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return ListValue(elems...), nil
	case fomega.PrimData:
		args := make([]Value, len(d.Args))
		for i, a := range d.Args {
			v, err := m.eval(a, en, te)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		return m.prim(t.Origin, d.Name, args)
	case fomega.CastData:
		v, err := m.eval(d.Term, en, te)
		if err != nil {
			return Value{}, err
		}
		return m.cast(t.Origin, v, m.resolve(d.From, te), m.resolve(d.To, te))
	}
	return Value{}, errAt(t.Origin, ErrTypeConfusion, "cannot evaluate %s", t.Kind)
}

func (m *machine) apply(o fomega.Origin, fn, arg Value) (Value, error) {
	switch fn.Kind {
	case ValClosure:
		c := fn.fn
		return m.eval(c.body, c.env.bind(c.param, arg), c.tenv)
	case ValProxy:
		if fn.To.Tag != fomega.TypeArrow || fn.From.Tag != fomega.TypeArrow {
			return Value{}, errAt(o, ErrArityMismatch, "term argument for a value of type %s", fn.To)
		}
		in, err := m.cast(o, arg, fn.To.Param, fn.From.Param)
		if err != nil {
			return Value{}, err
		}
		r, err := m.apply(o, *fn.Inner, in)
		if err != nil {
			return Value{}, err
		}
		return m.cast(o, r, fn.From.Result, fn.To.Result)
	case ValTypeClosure:
		return Value{}, errAt(o, ErrArityMismatch, "term argument for a type abstraction")
	}
	return Value{}, errAt(o, ErrTypeConfusion, "applying a %s", fn.Kind)
}

func (m *machine) instantiate(o fomega.Origin, fn Value, arg *fomega.Type) (Value, error) {
	switch fn.Kind {
	case ValTypeClosure:
		c := fn.fn
		return m.eval(c.body, c.env, c.tenv.bind(c.param, arg))
	case ValProxy:
		if fn.To.Tag != fomega.TypeForall || fn.From.Tag != fomega.TypeForall {
			return Value{}, errAt(o, ErrArityMismatch, "type argument for a value of type %s", fn.To)
		}
		r, err := m.instantiate(o, *fn.Inner, arg)
		if err != nil {
			return Value{}, err
		}
		from := fomega.Reduce(fomega.SubstType(fn.From.Body, fn.From.Name, arg))
		to := fomega.Reduce(fomega.SubstType(fn.To.Body, fn.To.Name, arg))
		return m.cast(o, r, from, to)
	case ValClosure:
		return Value{}, errAt(o, ErrArityMismatch, "type argument for a function")
	}
	return Value{}, errAt(o, ErrTypeConfusion, "instantiating a %s", fn.Kind)
}
