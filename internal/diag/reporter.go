package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"anilang/internal/source"
)

// Diagnostic is one recorded error or warning.
type Diagnostic struct {
	Kind    Kind
	Message string
	Span    source.Span
}

// Severity returns a human label for the diagnostic's kind.
func (d Diagnostic) Severity() string {
	if d.Kind.IsWarning() {
		return "warning"
	}
	return "error"
}

// Reporter accumulates diagnostics against a source.Text and renders them
// with colorized caret highlighting, unless silenced. Every
// pipeline stage calls Any between expensive steps and bails out once it is
// true.
type Reporter struct {
	text     *source.Text
	errors   int
	warnings int
	silent   bool
	out      io.Writer
	diags    []Diagnostic
}

// NewReporter creates a reporter that renders diagnostics to os.Stderr as
// they are reported.
func NewReporter(text *source.Text) *Reporter {
	return &Reporter{text: text, out: os.Stderr}
}

// NewSilentReporter creates a reporter that records diagnostics without
// printing them, for use in tests.
func NewSilentReporter(text *source.Text) *Reporter {
	return &Reporter{text: text, silent: true}
}

// Report records an error-severity diagnostic.
func (r *Reporter) Report(kind Kind, span source.Span, format string, args ...any) {
	r.record(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span})
}

// Warn records a warning-severity diagnostic. Only UnusedStatement is
// currently a warning; warnings never stop execution.
func (r *Reporter) Warn(kind Kind, span source.Span, format string, args ...any) {
	r.record(Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span})
}

func (r *Reporter) record(d Diagnostic) {
	r.diags = append(r.diags, d)
	if d.Kind.IsWarning() {
		r.warnings++
	} else {
		r.errors++
	}
	if !r.silent {
		r.Render(r.out, d)
	}
}

// Any reports whether any error (not warning) has been recorded. Every stage
// short-circuits once this becomes true.
func (r *Reporter) Any() bool { return r.errors > 0 }

// ErrorCount and WarningCount return the accumulated counters.
func (r *Reporter) ErrorCount() int   { return r.errors }
func (r *Reporter) WarningCount() int { return r.warnings }

// Diagnostics returns every diagnostic recorded so far, in report order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// Render prints d against the reporter's source text with a colorized caret
// under the offending span, across every line the span covers.
func (r *Reporter) Render(w io.Writer, d Diagnostic) {
	sev := color.New(color.FgRed, color.Bold)
	if d.Kind.IsWarning() {
		sev = color.New(color.FgYellow, color.Bold)
	}

	startLine := r.text.LineNo(d.Span.Start)
	endLine := r.text.LineNo(d.Span.End())
	if d.Span.IsEmpty() {
		endLine = startLine
	}

	sev.Fprintf(w, "%s", d.Severity())
	fmt.Fprintf(w, " %s: %s\n", d.Kind, d.Message)

	for line := startLine; line <= endLine; line++ {
		lineStart, _ := r.text.Line(line)
		text := r.text.LineText(line)
		fmt.Fprintf(w, "  %4d | %s\n", line, text)

		caretStart := 0
		caretLen := len(text)
		if line == startLine {
			caretStart = d.Span.Start - lineStart
			if caretStart < 0 {
				caretStart = 0
			}
		}
		if line == endLine {
			end := d.Span.End() - lineStart
			if end < caretStart+1 {
				end = caretStart + 1
			}
			if end > len(text) {
				end = len(text)
			}
			caretLen = end - caretStart
		}
		if caretLen < 1 {
			caretLen = 1
		}

		pad := strings.Repeat(" ", caretStart)
		caret := strings.Repeat("^", caretLen)
		fmt.Fprintf(w, "       | %s", pad)
		sev.Fprintln(w, caret)
	}
}
