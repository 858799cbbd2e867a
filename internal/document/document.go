// Package document holds the immutable text buffer the decoration engine reads.
//
// Offsets are byte offsets into the UTF-8 text. A Document never changes after
// construction; Apply returns the next revision.
package document

import (
	"fmt"
	"sort"
	"strings"
)

// Document is one revision of a text buffer.
type Document struct {
	text       string
	revision   uint64
	lineStarts []int
}

// Edit replaces [From, To) with Insert.
type Edit struct {
	From   int
	To     int
	Insert string
}

// Line is a logical line of the document, excluding its trailing newline.
type Line struct {
	Number int // 1-based
	From   int
	To     int
}

// New creates revision 0 of a document.
func New(text string) *Document {
	return newAt(text, 0)
}

func newAt(text string, rev uint64) *Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Document{text: text, revision: rev, lineStarts: starts}
}

// Text returns the full buffer.
func (d *Document) Text() string { return d.text }

// Bytes returns a copy of the buffer.
func (d *Document) Bytes() []byte { return []byte(d.text) }

// Len returns the buffer length in bytes.
func (d *Document) Len() int { return len(d.text) }

// Revision returns the revision counter.
func (d *Document) Revision() uint64 { return d.revision }

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int { return len(d.lineStarts) }

// Slice returns text in [from, to), clamped to the buffer.
func (d *Document) Slice(from, to int) string {
	from = d.clamp(from)
	to = d.clamp(to)
	if from >= to {
		return ""
	}
	return d.text[from:to]
}

// LineAt returns the line containing pos. Positions past the end resolve to
// the last line.
func (d *Document) LineAt(pos int) Line {
	pos = d.clamp(pos)
	idx := sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > pos }) - 1
	return d.Line(idx + 1)
}

// Line returns the 1-based line n. Out of range values are clamped.
func (d *Document) Line(n int) Line {
	if n < 1 {
		n = 1
	}
	if n > len(d.lineStarts) {
		n = len(d.lineStarts)
	}
	from := d.lineStarts[n-1]
	to := len(d.text)
	if n < len(d.lineStarts) {
		to = d.lineStarts[n] - 1
	}
	return Line{Number: n, From: from, To: to}
}

// LineText returns the text of the given line.
func (d *Document) LineText(l Line) string {
	return d.text[l.From:l.To]
}

// Apply returns the document with e applied and the revision advanced.
func (d *Document) Apply(e Edit) (*Document, error) {
	if e.From < 0 || e.To < e.From || e.To > len(d.text) {
		return nil, fmt.Errorf("edit [%d, %d) out of range for length %d", e.From, e.To, len(d.text))
	}
	var b strings.Builder
	b.Grow(len(d.text) - (e.To - e.From) + len(e.Insert))
	b.WriteString(d.text[:e.From])
	b.WriteString(e.Insert)
	b.WriteString(d.text[e.To:])
	return newAt(b.String(), d.revision+1), nil
}

// Replace returns a new revision holding text, used when the file changes on disk.
func (d *Document) Replace(text string) *Document {
	return newAt(text, d.revision+1)
}

// MapPos maps a position in the pre-edit document to the post-edit document.
// Positions inside the replaced range move to the end of the insertion.
func (e Edit) MapPos(pos int) int {
	switch {
	case pos < e.From:
		return pos
	case pos >= e.To:
		return pos - (e.To - e.From) + len(e.Insert)
	default:
		return e.From + len(e.Insert)
	}
}

func (d *Document) clamp(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(d.text) {
		return len(d.text)
	}
	return pos
}
