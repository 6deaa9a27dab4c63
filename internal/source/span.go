package source

import (
	"fmt"
)

// Span is a diagnostic location inside a named file.
// Lines and columns are 1-based, columns count bytes, EndCol is exclusive.
// A point span has Start == End. Spans never carry semantics.
type Span struct {
	File      string
	StartLine uint32
	StartCol  uint32
	EndLine   uint32
	EndCol    uint32
}

// Point builds a zero-width span at line:col.
func Point(file string, line, col uint32) Span {
	return Span{File: file, StartLine: line, StartCol: col, EndLine: line, EndCol: col}
}

// IsZero reports whether the span carries no location at all.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Empty reports whether the span is a point.
func (s Span) Empty() bool {
	return s.StartLine == s.EndLine && s.StartCol == s.EndCol
}

// Start returns the first position of the span.
func (s Span) Start() LineCol {
	return LineCol{Line: s.StartLine, Col: s.StartCol}
}

// End returns the exclusive end position of the span.
func (s Span) End() LineCol {
	return LineCol{Line: s.EndLine, Col: s.EndCol}
}

func (s Span) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	if s.StartLine == s.EndLine {
		return fmt.Sprintf("%s:%d:%d-%d", s.File, s.StartLine, s.StartCol, s.EndCol)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.File, s.StartLine, s.StartCol, s.EndLine, s.EndCol)
}

// Cover returns the smallest span enclosing s and other.
// Spans of different files are not merged.
func (s Span) Cover(other Span) Span {
	if other.IsZero() {
		return s
	}
	if s.IsZero() {
		return other
	}
	if s.File != other.File {
		return s
	}
	if before(other.Start(), s.Start()) {
		s.StartLine, s.StartCol = other.StartLine, other.StartCol
	}
	if before(s.End(), other.End()) {
		s.EndLine, s.EndCol = other.EndLine, other.EndCol
	}
	return s
}

func before(a, b LineCol) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Col < b.Col
}
