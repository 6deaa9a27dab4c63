package diag

import (
	"langlang/internal/source"
)

// Stage names the pipeline stage that produced a diagnostic.
type Stage uint8

const (
	StageUnknown Stage = iota
	StageMessage
	StageParse
	StageCheck
	StageLower
	StageEval
	StageDriver
)

func (s Stage) String() string {
	switch s {
	case StageMessage:
		return "message"
	case StageParse:
		return "parse"
	case StageCheck:
		return "check"
	case StageLower:
		return "lower"
	case StageEval:
		return "eval"
	case StageDriver:
		return "driver"
	default:
		return "unknown"
	}
}

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Stage    Stage
	Message  string
	Primary  source.Span
	// NodeID points at the originating TypedAST node for stages that have no spans.
	NodeID uint32
	Notes  []Note
}

// Diagnoser is implemented by stage errors that know how to describe themselves.
type Diagnoser interface {
	error
	Diagnostic() Diagnostic
}
