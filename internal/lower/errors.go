package lower

import (
	"fmt"

	"langlang/internal/diag"
	"langlang/internal/typedast"
)

// InvariantViolation means lowering met a TypedAST it should never see, or
// produced core the F-omega checker rejects. It is a compiler bug, never a
// user error.
type InvariantViolation struct {
	Node   typedast.NodeID
	Detail string
	// Stack is captured where the violation was detected.
	Stack string
	Err   error
}

func (e *InvariantViolation) Error() string {
	msg := "lowering invariant violated"
	if e.Node != typedast.NoNode {
		msg += fmt.Sprintf(" at node #%d", e.Node)
	}
	msg += ": " + e.Detail
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvariantViolation) Unwrap() error { return e.Err }

func (e *InvariantViolation) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.LowerInvariantViolation,
		Stage:    diag.StageLower,
		Message:  e.Error(),
		NodeID:   uint32(e.Node),
	}
}
