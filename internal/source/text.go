package source

import (
	"sort"
	"strings"
)

// lineRange is a half-open byte range [start, end) of one line, excluding
// the trailing line break.
type lineRange struct {
	start, end int
}

// Text owns a reference to the program text and a sorted index of line
// ranges built once at construction. lineOffset lets an embedded fragment
// (e.g. a REPL line typed after others) render with the caller's own line
// numbering instead of starting back at 1.
type Text struct {
	buf        string
	lines      []lineRange
	lineOffset int
}

// New indexes src starting at line 1.
func New(src string) *Text {
	return NewWithOffset(src, 1)
}

// NewWithOffset indexes src, numbering its first line as lineOffset.
func NewWithOffset(src string, lineOffset int) *Text {
	t := &Text{buf: src, lineOffset: lineOffset}
	t.indexLines()
	return t
}

// NewFromLines builds a Text from a vector of already-split source lines, as
// the REPL does for multiline input. Lines are joined with '\n'; the lexer
// never indexes across that synthetic break because it treats it as
// whitespace.
func NewFromLines(lines []string, lineOffset int) *Text {
	return NewWithOffset(strings.Join(lines, "\n"), lineOffset)
}

// indexLines performs one linear pass over buf, merging a consecutive
// "\r\n" pair into a single line break.
func (t *Text) indexLines() {
	start := 0
	i := 0
	n := len(t.buf)
	for i < n {
		c := t.buf[i]
		if c == '\n' || c == '\r' {
			end := i
			i++
			if c == '\r' && i < n && t.buf[i] == '\n' {
				i++
			}
			t.lines = append(t.lines, lineRange{start, end})
			start = i
			continue
		}
		i++
	}
	t.lines = append(t.lines, lineRange{start, n})
}

// Len returns the length in bytes of the indexed text.
func (t *Text) Len() int { return len(t.buf) }

// LineOffset returns the caller-supplied number of the text's first line.
func (t *Text) LineOffset() int { return t.lineOffset }

// Source returns the raw, unindexed text, e.g. for re-serializing a compiled
// artifact's source header (internal/artifact).
func (t *Text) Source() string { return t.buf }

// LineCount returns the number of indexed lines.
func (t *Text) LineCount() int { return len(t.lines) }

// LineNo returns the (caller-offset) line number containing the given byte
// offset, found by binary search over the line index.
func (t *Text) LineNo(offset int) int {
	i := sort.Search(len(t.lines), func(i int) bool {
		return t.lines[i].end >= offset
	})
	if i >= len(t.lines) {
		i = len(t.lines) - 1
	}
	return i + t.lineOffset
}

// Line returns the byte range of line n (in the caller's numbering).
func (t *Text) Line(n int) (start, end int) {
	n -= t.lineOffset
	if n < 0 || n >= len(t.lines) {
		return 0, 0
	}
	r := t.lines[n]
	return r.start, r.end
}

// LineText returns the text of line n, excluding its line break.
func (t *Text) LineText(n int) string {
	s, e := t.Line(n)
	return t.buf[s:e]
}

// Slice returns the substring of the indexed text covered by sp.
func (t *Text) Slice(sp Span) string {
	start, end := sp.Start, sp.End()
	if start < 0 {
		start = 0
	}
	if end > len(t.buf) {
		end = len(t.buf)
	}
	if start > end {
		return ""
	}
	return t.buf[start:end]
}
