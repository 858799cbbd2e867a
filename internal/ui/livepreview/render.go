package livepreview

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/mdlive/internal/decorate"
	"github.com/zjrosen/mdlive/internal/document"
	"github.com/zjrosen/mdlive/internal/syntax"
	"github.com/zjrosen/mdlive/internal/ui/styles"
	"github.com/zjrosen/mdlive/internal/widget"
)

// styleSpan applies a markdown style to a byte range of the source.
type styleSpan struct {
	from, to int
	style    lipgloss.Style
}

// codeRegion is the body of a fenced code block, excluding its fence lines.
type codeRegion struct {
	from, to int
	lang     string
}

// frame is one rendered screen.
type frame struct {
	rows []string
	// lastLine is the last document line drawn, even partially.
	lastLine int
	// cursorRow is the row holding the cursor, or -1.
	cursorRow int
}

// renderer draws a document with a decoration set applied. Concealed spans
// produce nothing, substituted spans draw their widget, and everything else
// is source text styled from the syntax tree.
type renderer struct {
	doc         *document.Document
	tree        *syntax.Tree
	set         []decorate.Instruction
	cursor      int
	showCursor  bool
	width       int
	lineNumbers bool
	hl          *highlighter

	spans []styleSpan
	code  []codeRegion
}

// row accumulates one screen row.
type row struct {
	line      int // document line number, 0 for continuation rows
	b         strings.Builder
	consumed  bool
	visible   bool
	hasCursor bool
}

func zoneID(offset int) string {
	return "mdlive-widget-" + strconv.Itoa(offset)
}

func markupStyle(k syntax.Kind) (lipgloss.Style, bool) {
	switch k {
	case syntax.KindHeading:
		return styles.HeadingStyle, true
	case syntax.KindEmphasis:
		return lipgloss.NewStyle().Italic(true), true
	case syntax.KindStrongEmphasis:
		return lipgloss.NewStyle().Bold(true), true
	case syntax.KindStrikethrough:
		return lipgloss.NewStyle().Strikethrough(true), true
	case syntax.KindInlineCode:
		return lipgloss.NewStyle().Foreground(styles.WidgetBadgeColor), true
	case syntax.KindLink, syntax.KindAutolink, syntax.KindWikiLink:
		return styles.LinkStyle, true
	case syntax.KindHeaderMark, syntax.KindEmphasisMark, syntax.KindStrikethroughMark,
		syntax.KindCodeMark, syntax.KindQuoteMark, syntax.KindListMark, syntax.KindTaskMarker:
		return styles.MarkupStyle, true
	}
	return lipgloss.Style{}, false
}

// collect gathers style spans and code regions intersecting [from, to].
func (r *renderer) collect(from, to int) {
	r.spans = r.spans[:0]
	r.code = r.code[:0]
	src := r.tree.Source
	r.tree.Iterate(from, to, func(n *syntax.Node) syntax.WalkStatus {
		if n.Kind == syntax.KindFencedCode {
			body := string(src[n.From:n.To])
			nl := strings.IndexByte(body, '\n')
			if nl < 0 {
				return syntax.WalkContinue
			}
			region := codeRegion{from: n.From + nl + 1, to: n.To, lang: infoLanguage(body[:nl])}
			if last := strings.LastIndexByte(body, '\n'); last > nl && isFenceLine(body[last+1:]) {
				region.to = n.From + last
			}
			r.code = append(r.code, region)
		}
		if s, ok := markupStyle(n.Kind); ok {
			r.spans = append(r.spans, styleSpan{n.From, n.To, s})
		}
		return syntax.WalkContinue
	})
}

func infoLanguage(line string) string {
	info := strings.TrimLeft(strings.TrimSpace(line), "`~")
	if f := strings.Fields(info); len(f) > 0 {
		return strings.Trim(f[0], "{}.")
	}
	return ""
}

func isFenceLine(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) >= 3 && (strings.Trim(t, "`") == "" || strings.Trim(t, "~") == "")
}

// render draws up to height rows starting at document line top.
func (r *renderer) render(top, height int) frame {
	f := frame{cursorRow: -1, lastLine: top}
	text := r.doc.Text()
	start := r.doc.Line(top).From
	// markdown styling only needs the part of the tree on screen; widgets can
	// expand but never past twice the screen of source lines
	r.collect(start, r.doc.Line(top+2*height).To)

	digits := len(strconv.Itoa(r.doc.LineCount()))
	contentWidth := r.width
	if r.lineNumbers {
		contentWidth -= digits + 1
	}

	cur := &row{line: top}
	finish := func() {
		defer func() { cur = &row{} }()
		// a line that was concealed entirely takes no space
		if cur.consumed && !cur.visible && !cur.hasCursor {
			return
		}
		content := cur.b.String()
		if contentWidth > 0 && ansi.StringWidth(content) > contentWidth {
			content = ansi.Truncate(content, contentWidth, "…")
		}
		if r.lineNumbers {
			gutter := strings.Repeat(" ", digits+1)
			if cur.line > 0 {
				gutter = fmt.Sprintf("%*d ", digits, cur.line)
			}
			content = styles.GutterStyle.Render(gutter) + content
		}
		if cur.hasCursor {
			f.cursorRow = len(f.rows)
		}
		f.rows = append(f.rows, content)
	}

	set := r.set
	i := sort.Search(len(set), func(i int) bool { return set[i].To > start })
	pos := start
	for len(f.rows) < height {
		if i < len(set) && set[i].From <= pos {
			ins := set[i]
			i++
			cur.consumed = true
			if ins.Op == decorate.OpSubstitute {
				r.drawWidget(&cur, ins, finish)
			}
			pos = max(pos, ins.To)
			f.lastLine = max(f.lastLine, r.doc.LineAt(pos).Number)
			continue
		}

		lineEnd := strings.IndexByte(text[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += pos
		}
		segEnd := lineEnd
		if i < len(set) && set[i].From < segEnd {
			segEnd = set[i].From
		}
		if segEnd > pos {
			r.drawText(cur, pos, segEnd)
			pos = segEnd
			continue
		}

		// pos is at a line end
		if r.showCursor && r.cursor == pos {
			cur.b.WriteString(styles.CursorStyle.Render(" "))
			cur.hasCursor = true
		}
		f.lastLine = max(f.lastLine, r.doc.LineAt(pos).Number)
		finish()
		if pos >= len(text) {
			break
		}
		pos++
		cur.line = r.doc.LineAt(pos).Number
	}
	return f
}

// drawWidget writes a substituted widget. Multi-line views continue on
// new rows, which newRow starts by finishing the current one.
func (r *renderer) drawWidget(cur **row, ins decorate.Instruction, newRow func()) {
	view := ins.Widget.View(r.width)
	if view == "" {
		return
	}
	if _, ok := ins.Widget.(widget.Clickable); ok {
		view = zone.Mark(zoneID(ins.From), view)
	}
	lines := strings.Split(view, "\n")
	c := *cur
	if r.showCursor && len(lines) == 1 && r.cursor >= ins.From && r.cursor < ins.To {
		lines[0] = styles.CursorStyle.Render(ansi.Strip(lines[0]))
		c.hasCursor = true
	}
	c.b.WriteString(lines[0])
	c.visible = true
	for _, l := range lines[1:] {
		newRow()
		c = *cur
		c.b.WriteString(l)
		c.visible = true
		c.consumed = true
	}
}

// drawText writes source text in [from, to), which never crosses a newline.
func (r *renderer) drawText(c *row, from, to int) {
	text := r.doc.Text()
	c.consumed = true
	c.visible = true

	cuts := []int{from, to}
	cursorEnd := -1
	if r.showCursor && r.cursor >= from && r.cursor < to {
		cursorEnd = nextBoundary(text, r.cursor)
		cuts = append(cuts, r.cursor, min(cursorEnd, to))
	}
	for _, s := range r.spans {
		if s.from > from && s.from < to {
			cuts = append(cuts, s.from)
		}
		if s.to > from && s.to < to {
			cuts = append(cuts, s.to)
		}
	}
	region, inCode := r.codeAt(from)
	var toks []token
	lineFrom := 0
	if inCode {
		line := r.doc.LineAt(from)
		lineFrom = line.From
		toks = r.hl.tokenize(region.lang, r.doc.LineText(line))
		for _, t := range toks {
			if a := lineFrom + t.start; a > from && a < to {
				cuts = append(cuts, a)
			}
			if b := lineFrom + t.end; b > from && b < to {
				cuts = append(cuts, b)
			}
		}
	}
	sort.Ints(cuts)

	prev := from
	for _, cut := range cuts {
		if cut <= prev || cut > to {
			continue
		}
		seg := text[prev:cut]
		switch {
		case prev == r.cursor && cursorEnd >= 0:
			c.b.WriteString(styles.CursorStyle.Render(seg))
			c.hasCursor = true
		case inCode:
			c.b.WriteString(tokenStyle(toks, prev-lineFrom).Render(seg))
		default:
			c.b.WriteString(r.styleAt(prev).Render(seg))
		}
		prev = cut
	}
}

func (r *renderer) codeAt(pos int) (codeRegion, bool) {
	for _, c := range r.code {
		if pos >= c.from && pos < c.to {
			return c, true
		}
	}
	return codeRegion{}, false
}

func tokenStyle(toks []token, off int) lipgloss.Style {
	for _, t := range toks {
		if off >= t.start && off < t.end {
			return t.style
		}
	}
	return lipgloss.NewStyle()
}

// styleAt composes every span containing pos, inner spans taking precedence.
func (r *renderer) styleAt(pos int) lipgloss.Style {
	s := lipgloss.NewStyle()
	for j := len(r.spans) - 1; j >= 0; j-- {
		if sp := r.spans[j]; pos >= sp.from && pos < sp.to {
			s = s.Inherit(sp.style)
		}
	}
	return s
}
