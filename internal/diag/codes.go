package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Message framing / schema (1000-1999)
	MsgInfo               Code = 1000
	MsgMalformed          Code = 1001
	MsgUnsupportedVariant Code = 1002
	MsgIncompatibleSchema Code = 1003
	MsgUnexpectedKind     Code = 1004
	MsgTruncated          Code = 1005
	MsgTooLarge           Code = 1006

	// Лексические и синтаксические (2000-2999)
	SynInfo               Code = 2000
	SynUnknownChar        Code = 2001
	SynUnterminatedString Code = 2002
	SynBadNumber          Code = 2003
	SynUnexpectedToken    Code = 2004
	SynExpectExpression   Code = 2005
	SynExpectIdentifier   Code = 2006
	SynUnclosedDelimiter  Code = 2007
	SynTrailingInput      Code = 2008

	// Type checking (3000-3999)
	TypeInfo                Code = 3000
	TypeUnificationConflict Code = 3001
	TypeUnresolvedReference Code = 3002
	TypeEffectNotPermitted  Code = 3003
	TypeNonConvergent       Code = 3004
	TypeMalformed           Code = 3005
	TypeInternal            Code = 3099

	// Lowering (4000-4999)
	LowerInfo               Code = 4000
	LowerInvariantViolation Code = 4001

	// Evaluation (5000-5999)
	EvalInfo              Code = 5000
	EvalTypeConfusion     Code = 5001
	EvalArityMismatch     Code = 5002
	EvalFieldNotFound     Code = 5003
	EvalDivideByZero      Code = 5004
	EvalEffectDenied      Code = 5005
	EvalEffectFailed      Code = 5006
	EvalResourceExhausted Code = 5007

	// IO / driver (6000-6999)
	IOInfo          Code = 6000
	IOLoadFileError Code = 6001
	IOConfigError   Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	MsgInfo:                 "Message information",
	MsgMalformed:            "Malformed message",
	MsgUnsupportedVariant:   "Unsupported variant",
	MsgIncompatibleSchema:   "Incompatible schema version",
	MsgUnexpectedKind:       "Unexpected message kind",
	MsgTruncated:            "Truncated message",
	MsgTooLarge:             "Message exceeds size limit",
	SynInfo:                 "Syntax information",
	SynUnknownChar:          "Unknown character",
	SynUnterminatedString:   "Unterminated string literal",
	SynBadNumber:            "Malformed number literal",
	SynUnexpectedToken:      "Unexpected token",
	SynExpectExpression:     "Expected expression",
	SynExpectIdentifier:     "Expected identifier",
	SynUnclosedDelimiter:    "Unclosed delimiter",
	SynTrailingInput:        "Unexpected input after expression",
	TypeInfo:                "Type information",
	TypeUnificationConflict: "Type mismatch",
	TypeUnresolvedReference: "Unresolved reference",
	TypeEffectNotPermitted:  "Effect not permitted",
	TypeNonConvergent:       "Type checking did not converge",
	TypeMalformed:           "Malformed program",
	TypeInternal:            "Internal type checker error",
	LowerInfo:               "Lowering information",
	LowerInvariantViolation: "Lowering invariant violation",
	EvalInfo:                "Evaluation information",
	EvalTypeConfusion:       "Runtime type confusion",
	EvalArityMismatch:       "Arity mismatch",
	EvalFieldNotFound:       "Field not found",
	EvalDivideByZero:        "Division by zero",
	EvalEffectDenied:        "Effect denied at runtime",
	EvalEffectFailed:        "Effect failed",
	EvalResourceExhausted:   "Evaluation budget exhausted",
	IOInfo:                  "IO information",
	IOLoadFileError:         "I/O error",
	IOConfigError:           "Configuration error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MSG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("EVL%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
