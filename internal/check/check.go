// Package check turns an untyped AST into a fully typed TypedAST under one of
// four type disciplines. A single checker is parameterized by a rule table;
// the dependent discipline swaps in the normalizing engine.
package check

import (
	"fmt"

	"langlang/internal/ast"
	"langlang/internal/pipeline"
	"langlang/internal/typedast"
)

// Options configure a checking run.
type Options struct {
	Limits pipeline.Limits
	// Allow overrides the sandbox allow list; nil means the default list.
	Allow pipeline.Allowlist
}

type engine uint8

const (
	engineDynamic engine = iota
	engineUnify
	engineDependent
)

// rules is one row of the discipline table.
type rules struct {
	engine engine
	// unannotated lambda parameters get a fresh meta, or Dyn when dynParams
	dynParams bool
	// consistency instead of equality, with explicit casts at boundaries
	gradual bool
	// let-generalization of syntactic values
	generalize bool
	// type given to metas still unsolved after checking
	defaultMeta *typedast.Type
	// whether "Any" may appear in annotations
	allowAny bool
	// lambda parameters must be annotated
	requireParamAnnot bool
}

var ruleTable = [...]rules{
	pipeline.Dynamic: {
		engine:      engineDynamic,
		dynParams:   true,
		defaultMeta: typedast.Dyn(),
		allowAny:    true,
	},
	pipeline.Inferred: {
		engine:      engineUnify,
		generalize:  true,
		defaultMeta: typedast.UnitType(),
	},
	pipeline.Gradual: {
		engine:      engineUnify,
		dynParams:   true,
		gradual:     true,
		generalize:  true,
		defaultMeta: typedast.Dyn(),
		allowAny:    true,
	},
	pipeline.Dependent: {
		engine:            engineDependent,
		defaultMeta:       typedast.UnitType(),
		requireParamAnnot: true,
	},
}

// Check type-checks unit under cfg. The result is complete and validated, or
// nil with a *TypeError.
func Check(unit *ast.Unit, cfg pipeline.Config, opts Options) (*typedast.Unit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if unit == nil || unit.Root == nil {
		return nil, fmt.Errorf("check: empty unit")
	}
	allow := opts.Allow
	if allow == nil {
		allow = pipeline.DefaultAllowlist()
	}
	c := &checker{
		cfg:    cfg,
		rules:  ruleTable[cfg.TypeSystem],
		limits: opts.Limits.Normalized(),
		allow:  allow,
	}
	root, scheme, err := c.run(unit.Root)
	if err != nil {
		return nil, err
	}
	out := &typedast.Unit{File: unit.File, Config: cfg, Root: root, Scheme: scheme}
	typedast.Renumber(out.Root)
	if err := typedast.Validate(out); err != nil {
		return nil, &TypeError{Kind: ErrMalformed, Span: unit.Root.Span, Message: "checker produced an invalid tree", Err: err}
	}
	return out, nil
}

type checker struct {
	cfg    pipeline.Config
	rules  rules
	limits pipeline.Limits
	allow  pipeline.Allowlist

	metas []metaInfo
	level int
	// schemes that were generalized around still-free metas
	quantified []quantified
}

func (c *checker) run(root *ast.Expr) (*typedast.Expr, *typedast.Scheme, error) {
	switch c.rules.engine {
	case engineDynamic:
		x, err := c.dynamic(root, nil)
		if err != nil {
			return nil, nil, err
		}
		return x, typedast.Mono(typedast.Dyn()), nil
	case engineDependent:
		x, err := c.dependent(root, nil)
		if err != nil {
			return nil, nil, err
		}
		return x, typedast.Mono(x.Type), nil
	}

	c.level++
	x, err := c.infer(root, nil)
	c.level--
	if err != nil {
		return nil, nil, err
	}
	scheme := typedast.Mono(x.Type)
	if c.rules.generalize && isValue(root) {
		scheme = c.generalize(x.Type)
	}
	return c.finish(x), c.finishScheme(scheme), nil
}

// binding is one entry of the persistent lexical scope.
type binding struct {
	name   string
	scheme *typedast.Scheme
	// def is the let-bound value, used for delta reduction in dependent mode
	def *ast.Expr
}

type scope struct {
	parent *scope
	binding
}

func (s *scope) bind(b binding) *scope { return &scope{parent: s, binding: b} }

func (s *scope) lookup(name string) (*binding, bool) {
	for it := s; it != nil; it = it.parent {
		if it.name == name {
			return &it.binding, true
		}
	}
	return nil, false
}

// isValue is the syntactic value restriction.
func isValue(e *ast.Expr) bool {
	switch d := e.Data.(type) {
	case ast.LitData, ast.VarData, ast.LambdaData:
		return true
	case ast.AnnotData:
		return isValue(d.Expr)
	case ast.LetData:
		// non-expansive when nothing in it is evaluated beyond values
		return isValue(d.Value) && isValue(d.Body)
	case ast.RecordData:
		for _, f := range d.Fields {
			if !isValue(f.Value) {
				return false
			}
		}
		return true
	case ast.ListData:
		for _, x := range d.Elems {
			if !isValue(x) {
				return false
			}
		}
		return true
	}
	return false
}

func node(kind typedast.ExprKind, e *ast.Expr, t *typedast.Type, data typedast.ExprData) *typedast.Expr {
	return &typedast.Expr{Kind: kind, Span: e.Span, Type: t, Data: data}
}
