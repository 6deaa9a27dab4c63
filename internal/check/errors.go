package check

import (
	"errors"
	"fmt"

	"langlang/internal/diag"
	"langlang/internal/source"
	"langlang/internal/typedast"
)

// ErrorKind subdivides type errors.
type ErrorKind uint8

const (
	ErrUnificationConflict ErrorKind = iota + 1
	ErrUnresolvedReference
	ErrEffectNotPermitted
	ErrNonConvergent
	ErrMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnificationConflict:
		return "unification-conflict"
	case ErrUnresolvedReference:
		return "unresolved-reference"
	case ErrEffectNotPermitted:
		return "effect-not-permitted"
	case ErrNonConvergent:
		return "non-convergent-normalization"
	case ErrMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

func (k ErrorKind) Code() diag.Code {
	switch k {
	case ErrUnificationConflict:
		return diag.TypeUnificationConflict
	case ErrUnresolvedReference:
		return diag.TypeUnresolvedReference
	case ErrEffectNotPermitted:
		return diag.TypeEffectNotPermitted
	case ErrNonConvergent:
		return diag.TypeNonConvergent
	case ErrMalformed:
		return diag.TypeMalformed
	default:
		return diag.TypeInternal
	}
}

// TypeError aborts checking of a unit.
type TypeError struct {
	Kind    ErrorKind
	Span    source.Span
	Message string
	// Expected and Actual are set for unification conflicts.
	Expected *typedast.Type
	Actual   *typedast.Type
	// Name is the unresolved identifier or the offending primitive.
	Name  string
	Notes []diag.Note
	Err   error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Message)
}

func (e *TypeError) Unwrap() error { return e.Err }

func (e *TypeError) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Kind.Code(), e.Span, e.Message).WithStage(diag.StageCheck)
	if e.Kind == ErrUnificationConflict && e.Expected != nil && e.Actual != nil {
		d = d.WithNote(e.Span, "expected "+typedast.TypeString(e.Expected))
		d = d.WithNote(e.Span, "found "+typedast.TypeString(e.Actual))
	}
	d.Notes = append(d.Notes, e.Notes...)
	return d
}

// IsKind reports whether err is a TypeError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *TypeError
	return errors.As(err, &te) && te.Kind == kind
}

func conflict(sp source.Span, expected, actual *typedast.Type, format string, args ...any) *TypeError {
	return &TypeError{
		Kind:     ErrUnificationConflict,
		Span:     sp,
		Message:  fmt.Sprintf(format, args...),
		Expected: expected,
		Actual:   actual,
	}
}

func unresolved(sp source.Span, name string) *TypeError {
	return &TypeError{
		Kind:    ErrUnresolvedReference,
		Span:    sp,
		Message: fmt.Sprintf("unresolved reference %q", name),
		Name:    name,
	}
}

func malformed(sp source.Span, format string, args ...any) *TypeError {
	return &TypeError{Kind: ErrMalformed, Span: sp, Message: fmt.Sprintf(format, args...)}
}

func noteAt(sp source.Span, msg string) diag.Note { return diag.Note{Span: sp, Msg: msg} }
