package wire

import (
	"fmt"

	"langlang/internal/diag"
)

type Reason uint8

const (
	ReasonMalformed Reason = iota
	ReasonUnsupportedVariant
	ReasonIncompatibleSchema
	ReasonUnexpectedKind
	ReasonTruncated
	ReasonTooLarge
)

func (r Reason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed"
	case ReasonUnsupportedVariant:
		return "unsupported variant"
	case ReasonIncompatibleSchema:
		return "incompatible schema"
	case ReasonUnexpectedKind:
		return "unexpected kind"
	case ReasonTruncated:
		return "truncated"
	case ReasonTooLarge:
		return "too large"
	default:
		return "unknown"
	}
}

// FormatError is fatal to the unit being read; no part of the tree is used.
type FormatError struct {
	Reason Reason
	// Schema names the tree or construct being decoded ("ast.Expr", "frame", ...).
	Schema string
	Tag    int
	Detail string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Schema, e.Reason)
	if e.Reason == ReasonUnsupportedVariant {
		msg = fmt.Sprintf("%s: unsupported variant tag %d", e.Schema, e.Tag)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Code() diag.Code {
	switch e.Reason {
	case ReasonUnsupportedVariant:
		return diag.MsgUnsupportedVariant
	case ReasonIncompatibleSchema:
		return diag.MsgIncompatibleSchema
	case ReasonUnexpectedKind:
		return diag.MsgUnexpectedKind
	case ReasonTruncated:
		return diag.MsgTruncated
	case ReasonTooLarge:
		return diag.MsgTooLarge
	default:
		return diag.MsgMalformed
	}
}

func (e *FormatError) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     e.Code(),
		Stage:    diag.StageMessage,
		Message:  e.Error(),
	}
}

// UnsupportedVariant builds the error for an unknown tag.
func UnsupportedVariant(schema string, tag int) *FormatError {
	return &FormatError{Reason: ReasonUnsupportedVariant, Schema: schema, Tag: tag}
}

// Malformed builds a well-formedness error.
func Malformed(schema, format string, args ...any) *FormatError {
	return &FormatError{Reason: ReasonMalformed, Schema: schema, Detail: fmt.Sprintf(format, args...)}
}
