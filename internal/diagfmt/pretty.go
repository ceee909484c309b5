package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"oxide/internal/diag"
	"oxide/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, note, code, gutter, caret, add, del, bold func(a ...any) string
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		if !enabled {
			return fmt.Sprint
		}
		c := color.New(attrs...)
		c.EnableColor()
		return c.SprintFunc()
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		note:   mk(color.FgCyan, color.Bold),
		code:   mk(color.FgHiBlack),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		add:    mk(color.FgGreen),
		del:    mk(color.FgRed),
		bold:   mk(color.Bold),
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	pr := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		pr.diagnostic(&d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (p *prettyPrinter) location(sp source.Span) string {
	f := p.fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	pos := f.LineCol(sp.Start)
	return fmt.Sprintf("%s:%d:%d", formatPath(p.fs, f, p.opts.PathMode), pos.Line, pos.Col)
}

func (p *prettyPrinter) severity(sev diag.Severity) string {
	if sev == diag.SevError {
		return p.pal.err(sev.String())
	}
	return p.pal.warn(sev.String())
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	fmt.Fprintf(p.w, "%s: %s %s: %s\n",
		p.pal.bold(p.location(d.Primary)), p.severity(d.Severity), p.pal.code(d.Code.ID()), d.Message)
	p.snippet(d.Primary)

	if p.opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(p.w, "  %s %s: %s\n", p.pal.note("note:"), p.location(n.Span), n.Msg)
		}
	}
	if p.opts.ShowFixes {
		for i, fix := range d.Fixes {
			fmt.Fprintf(p.w, "  %s %s\n", p.pal.note(fmt.Sprintf("fix #%d:", i+1)), fix.Title)
			for _, edit := range fix.Edits {
				fmt.Fprintf(p.w, "    edit %s: apply=%q\n", p.location(edit.Span), edit.NewText)
				if p.opts.ShowPreview {
					p.preview(edit)
				}
			}
		}
	}
}

func (p *prettyPrinter) preview(edit diag.FixEdit) {
	pv, err := buildFixEditPreview(p.fs, edit)
	if err != nil {
		return
	}
	fmt.Fprintln(p.w, "    preview:")
	for _, line := range pv.before {
		fmt.Fprintf(p.w, "      %s\n", p.pal.del("- "+line))
	}
	for _, line := range pv.after {
		fmt.Fprintf(p.w, "      %s\n", p.pal.add("+ "+line))
	}
}

// snippet prints the primary line with Context lines around it and a caret
// line under the span. A span running past its line is underlined to the
// end of that line.
func (p *prettyPrinter) snippet(sp source.Span) {
	f := p.fs.Get(sp.File)
	if f == nil {
		return
	}
	ctx, err := safecast.Conv[uint32](p.opts.Context)
	if err != nil {
		return
	}
	lineCount, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	start := f.LineCol(sp.Start)
	end := f.LineCol(sp.End)

	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := min(start.Line+ctx, lineCount)

	gw := len(strconv.FormatUint(uint64(last), 10))
	blank := p.pal.gutter(strings.Repeat(" ", gw+1) + " |")
	for ln := first; ln <= last; ln++ {
		text := f.GetLine(ln)
		if ln != start.Line && ln == lineCount && text == "" {
			continue
		}
		fmt.Fprintf(p.w, "%s %s\n", p.pal.gutter(fmt.Sprintf("%*d |", gw+1, ln)), p.clip(expandTabs(text)))
		if ln != start.Line {
			continue
		}
		from := min(int(start.Col-1), len(text))
		to := len(text)
		if end.Line == start.Line {
			to = min(max(int(end.Col-1), from), len(text))
		}
		pad := runewidth.StringWidth(expandTabs(text[:from]))
		width := runewidth.StringWidth(expandTabs(text[from:to]))
		marker := "^"
		if width > 1 {
			marker += strings.Repeat("~", width-1)
		}
		fmt.Fprintf(p.w, "%s %s%s\n", blank, strings.Repeat(" ", pad), p.pal.caret(marker))
	}
}

func (p *prettyPrinter) clip(s string) string {
	if p.opts.Width <= 0 {
		return s
	}
	return runewidth.Truncate(s, p.opts.Width, "…")
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
