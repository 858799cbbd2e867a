package syntax

import (
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var spanTableKey = parser.NewContextKey()

type span struct {
	from, to int
}

// spanTable collects source positions that goldmark drops. It lives in the
// parser.Context of a single Parse call.
type spanTable struct {
	src     []byte
	nodes   map[ast.Node]span
	marks   map[ast.Node][]*Node
	linkPos []int
}

func newSpanTable(src []byte) *spanTable {
	return &spanTable{
		src:   src,
		nodes: make(map[ast.Node]span),
		marks: make(map[ast.Node][]*Node),
	}
}

func tableFrom(pc parser.Context) *spanTable {
	t, _ := pc.Get(spanTableKey).(*spanTable)
	return t
}

func (t *spanTable) mark(owner ast.Node, kind Kind, from, to int) {
	if from >= to {
		return
	}
	t.marks[owner] = append(t.marks[owner], &Node{Kind: kind, From: from, To: to})
}

// lineEnd returns the end of the line holding seg, excluding the newline and
// trailing whitespace.
func (t *spanTable) lineEnd(seg text.Segment) int {
	end := seg.Stop
	for end > seg.Start && isSpaceByte(t.src[end-1]) {
		end--
	}
	return end
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// lineOffset maps an index into a PeekLine result back to the source.
func lineOffset(seg text.Segment, i int) int {
	return seg.Start - seg.Padding + i
}

func firstNonSpace(line []byte) int {
	for i, c := range line {
		if c != ' ' && c != '\t' {
			return i
		}
	}
	return len(line)
}

// --- block parsers -----------------------------------------------------------

type atxHeadingSpans struct {
	parser.BlockParser
}

func (b atxHeadingSpans) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	node, state := b.BlockParser.Open(parent, reader, pc)
	if t := tableFrom(pc); t != nil && pos >= 0 {
		if h, ok := node.(*ast.Heading); ok {
			start := lineOffset(seg, pos)
			t.nodes[h] = span{start, t.lineEnd(seg)}
			t.mark(h, KindHeaderMark, start, start+h.Level)
			if end := closingHashes(line, pos+h.Level); end > 0 {
				t.mark(h, KindHeaderMark, lineOffset(seg, end), t.lineEnd(seg))
			}
		}
	}
	return node, state
}

// closingHashes finds an optional closing "#" run preceded by a space.
func closingHashes(line []byte, from int) int {
	stop := len(line)
	for stop > from && isSpaceByte(line[stop-1]) {
		stop--
	}
	i := stop
	for i > from && line[i-1] == '#' {
		i--
	}
	if i == stop || i <= from || (line[i-1] != ' ' && line[i-1] != '\t') {
		return -1
	}
	return i
}

type setextHeadingSpans struct {
	parser.BlockParser
}

func (b setextHeadingSpans) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	node, state := b.BlockParser.Open(parent, reader, pc)
	if t := tableFrom(pc); t != nil && node != nil {
		start := lineOffset(seg, firstNonSpace(line))
		t.mark(node, KindHeaderMark, start, t.lineEnd(seg))
	}
	return node, state
}

type thematicBreakSpans struct {
	parser.BlockParser
}

func (b thematicBreakSpans) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	node, state := b.BlockParser.Open(parent, reader, pc)
	if t := tableFrom(pc); t != nil && node != nil {
		t.nodes[node] = span{lineOffset(seg, firstNonSpace(line)), t.lineEnd(seg)}
	}
	return node, state
}

type fencedCodeSpans struct {
	parser.BlockParser
}

func (b fencedCodeSpans) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	_, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	node, state := b.BlockParser.Open(parent, reader, pc)
	if t := tableFrom(pc); t != nil && node != nil {
		start := lineOffset(seg, pos)
		end := t.lineEnd(seg)
		t.nodes[node] = span{start, end}
		t.mark(node, KindCodeMark, start, start+fenceRun(t.src[start:end]))
	}
	return node, state
}

func (b fencedCodeSpans) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, seg := reader.PeekLine()
	_, pos := util.IndentWidth(line, reader.LineOffset())
	state := b.BlockParser.Continue(node, reader, pc)
	t := tableFrom(pc)
	if t == nil {
		return state
	}
	sp := t.nodes[node]
	if state&parser.Continue == 0 {
		start := lineOffset(seg, pos)
		end := t.lineEnd(seg)
		sp.to = end
		t.mark(node, KindCodeMark, start, start+fenceRun(t.src[start:end]))
	} else if end := t.lineEnd(seg); end > sp.to {
		sp.to = end
	}
	t.nodes[node] = sp
	return state
}

func fenceRun(b []byte) int {
	if len(b) == 0 || (b[0] != '`' && b[0] != '~') {
		return 0
	}
	n := 0
	for n < len(b) && b[n] == b[0] {
		n++
	}
	return n
}

type blockquoteSpans struct {
	parser.BlockParser
}

func (b blockquoteSpans) quoteMark(owner ast.Node, line []byte, seg text.Segment, lineOff int, pc parser.Context) {
	t := tableFrom(pc)
	if t == nil || owner == nil {
		return
	}
	_, pos := util.IndentWidth(line, lineOff)
	if pos < len(line) && line[pos] == '>' {
		start := lineOffset(seg, pos)
		t.mark(owner, KindQuoteMark, start, start+1)
	}
}

func (b blockquoteSpans) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	off := reader.LineOffset()
	node, state := b.BlockParser.Open(parent, reader, pc)
	b.quoteMark(node, line, seg, off, pc)
	return node, state
}

func (b blockquoteSpans) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, seg := reader.PeekLine()
	off := reader.LineOffset()
	state := b.BlockParser.Continue(node, reader, pc)
	if state&parser.Continue != 0 {
		b.quoteMark(node, line, seg, off, pc)
	}
	return state
}

type listItemSpans struct {
	parser.BlockParser
}

func (b listItemSpans) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	node, state := b.BlockParser.Open(parent, reader, pc)
	if t := tableFrom(pc); t != nil && node != nil {
		i := firstNonSpace(line)
		j := i
		switch {
		case j < len(line) && (line[j] == '-' || line[j] == '+' || line[j] == '*'):
			j++
		default:
			for j < len(line) && line[j] >= '0' && line[j] <= '9' {
				j++
			}
			if j < len(line) && (line[j] == '.' || line[j] == ')') {
				j++
			}
		}
		t.mark(node, KindListMark, lineOffset(seg, i), lineOffset(seg, j))
	}
	return node, state
}

// --- inline parsers ----------------------------------------------------------

type codeSpanSpans struct {
	parser.InlineParser
}

func (s codeSpanSpans) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	_, seg := block.PeekLine()
	node := s.InlineParser.Parse(parent, block, pc)
	if cs, ok := node.(*ast.CodeSpan); ok {
		if t := tableFrom(pc); t != nil {
			_, pos := block.Position()
			t.nodes[cs] = span{seg.Start, pos.Start}
		}
	}
	return node
}

type autoLinkSpans struct {
	parser.InlineParser
}

func (s autoLinkSpans) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	_, seg := block.PeekLine()
	node := s.InlineParser.Parse(parent, block, pc)
	if node != nil {
		if t := tableFrom(pc); t != nil {
			_, pos := block.Position()
			t.nodes[node] = span{seg.Start, pos.Start}
		}
	}
	return node
}

// linkSpans tracks open brackets in step with goldmark's label list: every
// successful '[' or '![' pushes, every ']' with an open label pops.
type linkSpans struct {
	parser.InlineParser
}

func (s linkSpans) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	t := tableFrom(pc)
	closing := len(line) > 0 && line[0] == ']'
	var start = -1
	if closing && t != nil && len(t.linkPos) > 0 {
		start = t.linkPos[len(t.linkPos)-1]
		t.linkPos = t.linkPos[:len(t.linkPos)-1]
	}
	node := s.InlineParser.Parse(parent, block, pc)
	if t == nil || node == nil {
		return node
	}
	if !closing {
		t.linkPos = append(t.linkPos, seg.Start)
		return node
	}
	if start >= 0 {
		_, pos := block.Position()
		t.nodes[node] = span{start, pos.Start}
	}
	return node
}

func (s linkSpans) CloseBlock(parent ast.Node, block text.Reader, pc parser.Context) {
	if t := tableFrom(pc); t != nil {
		t.linkPos = t.linkPos[:0]
	}
	if cb, ok := s.InlineParser.(parser.CloseBlocker); ok {
		cb.CloseBlock(parent, block, pc)
	}
}

type taskCheckBoxSpans struct {
	parser.InlineParser
}

func (s taskCheckBoxSpans) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	_, seg := block.PeekLine()
	node := s.InlineParser.Parse(parent, block, pc)
	if cb, ok := node.(*extast.TaskCheckBox); ok {
		if t := tableFrom(pc); t != nil {
			t.nodes[cb] = span{seg.Start, seg.Start + 3}
		}
	}
	return node
}
