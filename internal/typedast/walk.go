package typedast

import (
	"errors"
	"fmt"

	"langlang/internal/source"
)

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e *Expr) []*Expr {
	if e == nil {
		return nil
	}
	switch d := e.Data.(type) {
	case LambdaData:
		return []*Expr{d.Body}
	case AppData:
		return []*Expr{d.Fn, d.Arg}
	case LetData:
		return []*Expr{d.Value, d.Body}
	case RecordData:
		out := make([]*Expr, 0, len(d.Fields))
		for _, f := range d.Fields {
			out = append(out, f.Value)
		}
		return out
	case FieldData:
		return []*Expr{d.Record}
	case IfData:
		return []*Expr{d.Cond, d.Then, d.Else}
	case AnnotData:
		return []*Expr{d.Expr}
	case BinaryData:
		return []*Expr{d.Left, d.Right}
	case UnaryData:
		return []*Expr{d.Operand}
	case ListData:
		return d.Elems
	case PrimData:
		return d.Args
	case CastData:
		return []*Expr{d.Expr}
	}
	return nil
}

// Inspect walks e in pre-order.
func Inspect(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}

// Renumber assigns dense pre-order ids starting at 1 and returns the count.
func Renumber(root *Expr) NodeID {
	var next NodeID
	Inspect(root, func(e *Expr) bool {
		next++
		e.ID = next
		return true
	})
	return next
}

// SpanIndex resolves node ids back to source spans for diagnostics.
type SpanIndex map[NodeID]source.Span

func IndexSpans(root *Expr) SpanIndex {
	idx := make(SpanIndex)
	Inspect(root, func(e *Expr) bool {
		idx[e.ID] = e.Span
		return true
	})
	return idx
}

// Lookup returns the span of id, or the zero span.
func (idx SpanIndex) Lookup(id NodeID) source.Span {
	if idx == nil {
		return source.Span{}
	}
	return idx[id]
}

var ErrPartiallyTyped = errors.New("typed tree is not fully typed")

// Validate checks the structural invariants every TypedAST must satisfy:
// dense pre-order ids, a type on every node and no surviving metas.
func Validate(u *Unit) error {
	if u == nil || u.Root == nil {
		return fmt.Errorf("%w: empty unit", ErrPartiallyTyped)
	}
	var errs []error
	var want NodeID
	Inspect(u.Root, func(e *Expr) bool {
		want++
		if e.ID != want {
			errs = append(errs, fmt.Errorf("node %s at %s: id %d, want %d", e.Kind, e.Span, e.ID, want))
		}
		if e.Type == nil {
			errs = append(errs, fmt.Errorf("%w: node #%d (%s) has no type", ErrPartiallyTyped, e.ID, e.Kind))
		} else if e.Type.HasMeta() {
			errs = append(errs, fmt.Errorf("%w: node #%d (%s) has unsolved type %s", ErrPartiallyTyped, e.ID, e.Kind, TypeString(e.Type)))
		}
		switch d := e.Data.(type) {
		case LambdaData:
			if d.ParamType == nil || d.ParamType.HasMeta() {
				errs = append(errs, fmt.Errorf("%w: lambda #%d parameter %q", ErrPartiallyTyped, e.ID, d.Param))
			}
		case LetData:
			if d.Scheme == nil || d.Scheme.Body.HasMeta() {
				errs = append(errs, fmt.Errorf("%w: let #%d scheme of %q", ErrPartiallyTyped, e.ID, d.Name))
			}
		case VarData:
			for _, a := range d.TypeArgs {
				if a.HasMeta() {
					errs = append(errs, fmt.Errorf("%w: var #%d instantiation", ErrPartiallyTyped, e.ID))
				}
			}
		}
		return true
	})
	if u.Scheme == nil || u.Scheme.Body.HasMeta() {
		errs = append(errs, fmt.Errorf("%w: unit scheme", ErrPartiallyTyped))
	}
	return errors.Join(errs...)
}
