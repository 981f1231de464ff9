package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
)

// Pretty renders diagnostics for a terminal, in bag order (callers sort the
// bag first). Each diagnostic prints as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line underlined with ^~~~ and, when enabled, its
// notes in the same format. Diagnostics without a location print only the
// severity, code and message.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := printer{w: w, fs: fs, opts: opts, palette: newPalette(opts.Color)}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		p.diagnostic(d)
	}
}

type palette struct {
	sev   map[diag.Severity]*color.Color
	loc   *color.Color
	caret *color.Color
	note  *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		loc:   mk(color.Bold),
		caret: mk(color.FgGreen, color.Bold),
		note:  mk(color.FgBlue),
	}
}

type printer struct {
	w       io.Writer
	fs      *source.FileSet
	opts    PrettyOpts
	palette palette
}

func (p *printer) diagnostic(d diag.Diagnostic) {
	sev := p.palette.sev[d.Severity]
	if sev == nil {
		sev = p.palette.sev[diag.SevError]
	}
	if loc := p.location(d.Primary); loc != "" {
		fmt.Fprintf(p.w, "%s: ", p.palette.loc.Sprint(loc))
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)
	p.excerpt(d.Primary)

	showNotes := p.opts.ShowNotes || d.Code == diag.ObsTimings
	if !showNotes {
		return
	}
	for _, n := range d.Notes {
		label := p.palette.note.Sprint("note")
		if loc := p.location(n.Span); loc != "" {
			fmt.Fprintf(p.w, "  %s: %s: %s\n", label, loc, n.Msg)
			p.excerpt(n.Span)
			continue
		}
		fmt.Fprintf(p.w, "  %s: %s\n", label, n.Msg)
	}
}

func (p *printer) location(span source.Span) string {
	path := displayPath(span, p.fs, p.opts.PathMode)
	if path == "" {
		return ""
	}
	start, _ := p.fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

// excerpt prints the primary line of span with context and a caret run
// under the covered columns. Multi-line spans are underlined to the end of
// their first line.
func (p *printer) excerpt(span source.Span) {
	if !hasSource(span, p.fs) {
		return
	}
	f := p.fs.Get(span.File)
	start, end := p.fs.Resolve(span)
	ctx, err := safecast.Conv[uint32](max(p.opts.Context, 0))
	if err != nil {
		ctx = 0
	}
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := start.Line + ctx
	gutter := len(fmt.Sprint(last))

	for line := first; line <= last; line++ {
		text := f.GetLine(line)
		if text == "" && line != start.Line {
			if line > start.Line {
				break
			}
			continue
		}
		text = p.clip(expandTabs(text))
		fmt.Fprintf(p.w, "  %*d | %s\n", gutter, line, text)
		if line != start.Line {
			continue
		}
		from := int(start.Col) - 1
		width := 1
		switch {
		case end.Line == start.Line && end.Col > start.Col:
			width = int(end.Col - start.Col)
		case end.Line > start.Line:
			width = max(len(text)-from, 1)
		}
		marks := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(p.w, "  %s | %s%s\n", strings.Repeat(" ", gutter), strings.Repeat(" ", max(from, 0)), p.palette.caret.Sprint(marks))
	}
}

func (p *printer) clip(s string) string {
	if p.opts.Width == 0 || len(s) <= int(p.opts.Width) {
		return s
	}
	return s[:p.opts.Width]
}

// expandTabs keeps caret columns aligned with the byte columns of the line.
func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", " ")
}
