package eval

import (
	"errors"
	"fmt"

	"langlang/internal/diag"
	"langlang/internal/fomega"
)

// ErrorKind classifies runtime failures.
type ErrorKind uint8

const (
	ErrTypeConfusion ErrorKind = iota + 1
	ErrArityMismatch
	ErrFieldNotFound
	ErrDivideByZero
	ErrEffectDenied
	ErrEffectFailed
	ErrResourceExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTypeConfusion:
		return "type-confusion"
	case ErrArityMismatch:
		return "arity-mismatch"
	case ErrFieldNotFound:
		return "field-not-found"
	case ErrDivideByZero:
		return "divide-by-zero"
	case ErrEffectDenied:
		return "effect-denied"
	case ErrEffectFailed:
		return "effect-failed"
	case ErrResourceExhausted:
		return "resource-exhausted"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

func (k ErrorKind) Code() diag.Code {
	switch k {
	case ErrTypeConfusion:
		return diag.EvalTypeConfusion
	case ErrArityMismatch:
		return diag.EvalArityMismatch
	case ErrFieldNotFound:
		return diag.EvalFieldNotFound
	case ErrDivideByZero:
		return diag.EvalDivideByZero
	case ErrEffectDenied:
		return diag.EvalEffectDenied
	case ErrEffectFailed:
		return diag.EvalEffectFailed
	case ErrResourceExhausted:
		return diag.EvalResourceExhausted
	}
	return diag.EvalInfo
}

// Error is a runtime failure at a core term. Origin is the TypedAST node
// the term was lowered from.
type Error struct {
	Kind   ErrorKind
	Origin fomega.Origin
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Origin != 0 {
		msg += fmt.Sprintf(" at node #%d", e.Origin)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     e.Kind.Code(),
		Stage:    diag.StageEval,
		Message:  e.Error(),
		NodeID:   uint32(e.Origin),
	}
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func errAt(o fomega.Origin, k ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: k, Origin: o, Msg: fmt.Sprintf(format, args...)}
}
