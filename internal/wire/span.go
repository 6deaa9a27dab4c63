package wire

import "langlang/internal/source"

// Span writes sp as [file, start_line, start_col, end_line, end_col].
func (e *Encoder) Span(sp source.Span) {
	e.Array(5)
	e.String(sp.File)
	e.Uint(uint64(sp.StartLine))
	e.Uint(uint64(sp.StartCol))
	e.Uint(uint64(sp.EndLine))
	e.Uint(uint64(sp.EndCol))
}

func (d *Decoder) Span() source.Span {
	n := d.Array()
	if !d.Expect("span", n, 5) {
		return source.Span{}
	}
	sp := source.Span{
		File:      d.String(),
		StartLine: d.Uint32(),
		StartCol:  d.Uint32(),
		EndLine:   d.Uint32(),
		EndCol:    d.Uint32(),
	}
	if d.Failed() {
		return source.Span{}
	}
	if sp.EndLine < sp.StartLine || (sp.EndLine == sp.StartLine && sp.EndCol < sp.StartCol) {
		d.Failf("span end precedes start")
	}
	return sp
}
