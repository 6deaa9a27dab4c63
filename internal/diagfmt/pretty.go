package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"langlang/internal/diag"
	"langlang/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, loc, gutter, caret, note *color.Color
}

func newPalette(on bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		loc:    mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
		note:   mk(color.FgCyan),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строки контекста с подчёркиванием ^~~~ по Span, затем Notes.
// fs may be nil; source lines are then omitted.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, p, d, fs, opts)
	}
}

func prettyOne(w io.Writer, p palette, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	msg := d.Message
	if opts.Width > 0 && runewidth.StringWidth(msg) > int(opts.Width) {
		msg = runewidth.Truncate(msg, int(opts.Width), "...")
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.loc.Sprint(location(d, opts.PathMode, opts.BaseDir)),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.severity(d.Severity).Sprint(d.Code.ID()),
		msg)
	if !d.Primary.IsZero() {
		snippet(w, p, fs, d.Primary, opts.Context)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if n.Span.IsZero() {
			fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
			continue
		}
		fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), formatPath(n.Span.File, opts.PathMode, opts.BaseDir)+pos(n.Span), n.Msg)
		snippet(w, p, fs, n.Span, 0)
	}
}

func location(d diag.Diagnostic, mode PathMode, base string) string {
	if d.Primary.IsZero() {
		if d.NodeID != 0 {
			return fmt.Sprintf("<%s>:node %d", d.Stage, d.NodeID)
		}
		return "<" + d.Stage.String() + ">"
	}
	return formatPath(d.Primary.File, mode, base) + pos(d.Primary)
}

func pos(sp source.Span) string {
	return fmt.Sprintf(":%d:%d", sp.StartLine, sp.StartCol)
}

func snippet(w io.Writer, p palette, fs *source.FileSet, sp source.Span, ctx int8) {
	if fs == nil {
		return
	}
	f, ok := fs.GetByPath(sp.File)
	if !ok {
		return
	}
	first := sp.StartLine
	if c := uint32(max(ctx, 0)); first > c {
		first -= c
	} else {
		first = 1
	}
	last := min(sp.StartLine+uint32(max(ctx, 0)), uint32(len(f.LineIdx)+1))
	gw := len(fmt.Sprint(last))
	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gw, ln), expandTabs(text))
		if ln == sp.StartLine {
			pad, width := underline(text, sp)
			fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", gw, ""), strings.Repeat(" ", pad), p.caret.Sprint("^"+strings.Repeat("~", max(width-1, 0))))
		}
	}
}

// underline returns the display offset and width of sp on its first line.
// Columns are bytes; the display accounts for tabs and wide runes.
func underline(line string, sp source.Span) (int, int) {
	start := clampCol(line, sp.StartCol)
	end := len(line)
	if sp.EndLine == sp.StartLine {
		end = clampCol(line, sp.EndCol)
	}
	pad := displayWidth(line[:start])
	width := displayWidth(line[start:max(end, start)])
	return pad, max(width, 1)
}

func clampCol(line string, col uint32) int {
	if col == 0 {
		return 0
	}
	return min(int(col)-1, len(line))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
