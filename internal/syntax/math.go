package syntax

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMathInline is the goldmark node kind for $...$ and $$...$$ spans.
var KindMathInline = ast.NewNodeKind("MathInline")

// MathInline is a TeX span inside a paragraph.
type MathInline struct {
	ast.BaseInline
	Display bool
	From    int
	To      int
}

func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Value": string(source[n.From:n.To]),
	}, nil)
}

type mathInlineParser struct{}

func (s *mathInlineParser) Trigger() []byte {
	return []byte{'$'}
}

func (s *mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) > 1 && line[1] == '$' {
		end := bytes.Index(line[2:], []byte("$$"))
		if end <= 0 {
			return nil
		}
		stop := 2 + end + 2
		block.Advance(stop)
		return &MathInline{Display: true, From: seg.Start, To: seg.Start + stop}
	}
	// Opening $ must be followed by non-space; closing $ must follow
	// non-space and not precede a digit, so "$5 and $6" stays text.
	if len(line) < 3 || util.IsSpace(line[1]) {
		return nil
	}
	for i := 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '\n':
			return nil
		case '$':
			if util.IsSpace(line[i-1]) {
				continue
			}
			if i+1 < len(line) && util.IsNumeric(line[i+1]) {
				continue
			}
			block.Advance(i + 1)
			return &MathInline{From: seg.Start, To: seg.Start + i + 1}
		}
	}
	return nil
}

// KindMathBlock is the goldmark node kind for $$ display blocks.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// MathBlock is a display math block delimited by $$ lines.
type MathBlock struct {
	ast.BaseBlock
	From   int
	To     int
	closed bool
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) IsRaw() bool { return true }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type mathBlockParser struct{}

func (b *mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (b *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], []byte("$$")) {
		return nil, parser.NoChildren
	}
	src := reader.Source()
	node := &MathBlock{From: lineOffset(seg, pos)}
	node.To = trimmedEnd(src, seg)

	rest := bytes.TrimSpace(line[pos+2:])
	if len(rest) >= 2 && bytes.HasSuffix(rest, []byte("$$")) {
		node.closed = true
	}
	reader.Advance(seg.Len() - 1)
	return node, parser.NoChildren
}

func (b *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	mb := node.(*MathBlock)
	if mb.closed {
		return parser.Close
	}
	line, seg := reader.PeekLine()
	if line == nil {
		return parser.Close
	}
	src := reader.Source()
	if end := trimmedEnd(src, seg); end > mb.To {
		mb.To = end
	}
	if bytes.HasSuffix(bytes.TrimSpace(line), []byte("$$")) {
		mb.closed = true
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(seg.Len() - newline)
		return parser.Close
	}
	node.Lines().Append(seg)
	reader.Advance(seg.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (b *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *mathBlockParser) CanInterruptParagraph() bool {
	return true
}

func (b *mathBlockParser) CanAcceptIndentedLine() bool {
	return false
}

func trimmedEnd(src []byte, seg text.Segment) int {
	end := seg.Stop
	for end > seg.Start && isSpaceByte(src[end-1]) {
		end--
	}
	return end
}
