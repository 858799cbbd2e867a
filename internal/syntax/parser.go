package syntax

import (
	"context"
	"sort"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/tracing"
)

var tracer = otel.Tracer("mdlive/syntax")

// Parser turns Markdown source into a span Tree. It is safe for concurrent use.
type Parser struct {
	md parser.Parser
}

// NewParser builds a CommonMark parser with task lists, strikethrough,
// TeX math and wiki links.
func NewParser() *Parser {
	return &Parser{md: parser.NewParser(
		parser.WithBlockParsers(blockParsers()...),
		parser.WithInlineParsers(inlineParsers()...),
		parser.WithParagraphTransformers(parser.DefaultParagraphTransformers()...),
	)}
}

func blockParsers() []util.PrioritizedValue {
	return []util.PrioritizedValue{
		util.Prioritized(setextHeadingSpans{parser.NewSetextHeadingParser()}, 100),
		util.Prioritized(thematicBreakSpans{parser.NewThematicBreakParser()}, 200),
		util.Prioritized(parser.NewListParser(), 300),
		util.Prioritized(listItemSpans{parser.NewListItemParser()}, 400),
		util.Prioritized(parser.NewCodeBlockParser(), 500),
		util.Prioritized(atxHeadingSpans{parser.NewATXHeadingParser()}, 600),
		util.Prioritized(fencedCodeSpans{parser.NewFencedCodeBlockParser()}, 700),
		util.Prioritized(&mathBlockParser{}, 750),
		util.Prioritized(blockquoteSpans{parser.NewBlockquoteParser()}, 800),
		util.Prioritized(parser.NewHTMLBlockParser(), 900),
		util.Prioritized(parser.NewParagraphParser(), 1000),
	}
}

func inlineParsers() []util.PrioritizedValue {
	return []util.PrioritizedValue{
		util.Prioritized(taskCheckBoxSpans{extension.NewTaskCheckBoxParser()}, 0),
		util.Prioritized(&wikiLinkParser{}, 50),
		util.Prioritized(codeSpanSpans{parser.NewCodeSpanParser()}, 100),
		util.Prioritized(&mathInlineParser{}, 150),
		util.Prioritized(linkSpans{parser.NewLinkParser()}, 200),
		util.Prioritized(autoLinkSpans{parser.NewAutoLinkParser()}, 300),
		util.Prioritized(parser.NewRawHTMLParser(), 400),
		util.Prioritized(parser.NewEmphasisParser(), 500),
		util.Prioritized(extension.NewStrikethroughParser(), 500),
	}
}

var defaultParser = NewParser()

// Parse parses src with the default parser.
func Parse(src []byte) *Tree {
	return defaultParser.Parse(src)
}

// Parse parses src into a Tree. The tree keeps a reference to src.
func (p *Parser) Parse(src []byte) *Tree {
	return p.ParseContext(context.Background(), src)
}

// ParseContext is Parse with a tracing parent.
func (p *Parser) ParseContext(ctx context.Context, src []byte) *Tree {
	_, span := tracer.Start(ctx, tracing.SpanParse)
	defer span.End()

	table := newSpanTable(src)
	pc := parser.NewContext()
	pc.Set(spanTableKey, table)
	doc := p.md.Parse(text.NewReader(src), parser.WithContext(pc))

	b := &builder{src: src, table: table}
	nodes := b.convert(doc)
	root := nodes[0]

	span.SetAttributes(
		attribute.Int(tracing.AttrSourceBytes, len(src)),
		attribute.Int(tracing.AttrNodes, b.count),
		attribute.Int(tracing.AttrUnresolved, b.unresolved),
	)
	if b.unresolved > 0 {
		log.Debug(log.CatSyntax, "unresolved spans", "count", b.unresolved)
	}
	return newTree(src, root)
}

type builder struct {
	src        []byte
	table      *spanTable
	count      int
	unresolved int
}

// convert maps a goldmark node to zero or one span node. Nodes without a
// recoverable span are dropped and their children are lifted to the parent.
func (b *builder) convert(gn ast.Node) []*Node {
	var children []*Node
	if !rawChildren(gn) {
		for c := gn.FirstChild(); c != nil; c = c.NextSibling() {
			children = append(children, b.convert(c)...)
		}
		sortNodes(children)
	}

	kind, ok := b.kindOf(gn)
	if !ok {
		return children
	}
	n := &Node{Kind: kind}
	if !b.resolve(gn, n, children) {
		b.unresolved++
		return children
	}
	b.count++

	switch kind {
	case KindEmphasis, KindStrongEmphasis, KindStrikethrough:
		n.Children = b.wrapMarks(n, children)
	case KindInlineCode:
		n.Children = codeMarks(b.src, n)
	case KindFencedCode:
		n.Children = b.fenceChildren(gn.(*ast.FencedCodeBlock), n)
	default:
		n.Children = children
	}
	for _, m := range b.table.marks[gn] {
		insertMark(n, m)
	}
	return []*Node{n}
}

func rawChildren(gn ast.Node) bool {
	switch gn.(type) {
	case *ast.CodeSpan, *ast.AutoLink:
		return true
	}
	return false
}

func (b *builder) kindOf(gn ast.Node) (Kind, bool) {
	switch n := gn.(type) {
	case *ast.Document:
		return KindDocument, true
	case *ast.Paragraph, *ast.TextBlock:
		return KindParagraph, true
	case *ast.Heading:
		return KindHeading, true
	case *ast.ThematicBreak:
		return KindHorizontalRule, true
	case *ast.CodeBlock:
		return KindCodeBlock, true
	case *ast.FencedCodeBlock:
		return KindFencedCode, true
	case *ast.Blockquote:
		return KindBlockquote, true
	case *ast.List:
		if n.IsOrdered() {
			return KindOrderedList, true
		}
		return KindBulletList, true
	case *ast.ListItem:
		return KindListItem, true
	case *ast.HTMLBlock:
		return KindHTMLBlock, true
	case *ast.Text:
		return KindText, true
	case *ast.CodeSpan:
		return KindInlineCode, true
	case *ast.Emphasis:
		if n.Level >= 2 {
			return KindStrongEmphasis, true
		}
		return KindEmphasis, true
	case *ast.Link:
		return KindLink, true
	case *ast.Image:
		return KindImage, true
	case *ast.AutoLink:
		return KindAutolink, true
	case *ast.RawHTML:
		return KindHTML, true
	case *extast.Strikethrough:
		return KindStrikethrough, true
	case *extast.TaskCheckBox:
		return KindTaskMarker, true
	case *MathInline:
		return KindInlineMath, true
	case *MathBlock:
		return KindBlockMath, true
	case *WikiLinkNode:
		return KindWikiLink, true
	}
	return 0, false
}

// resolve fills n.From/n.To (and Level) for gn.
func (b *builder) resolve(gn ast.Node, n *Node, children []*Node) bool {
	switch g := gn.(type) {
	case *ast.Document:
		n.From, n.To = 0, len(b.src)
		return true
	case *ast.Text:
		n.From, n.To = g.Segment.Start, g.Segment.Stop
		return n.From <= n.To
	case *ast.RawHTML:
		if g.Segments.Len() == 0 {
			return false
		}
		n.From, n.To = g.Segments.At(0).Start, g.Segments.At(g.Segments.Len()-1).Stop
		return true
	case *MathInline:
		n.From, n.To = g.From, g.To
		return true
	case *WikiLinkNode:
		n.From, n.To = g.From, g.To
		return true
	case *ast.Emphasis:
		n.Level = g.Level
		return b.delimited(n, children, g.Level, '*', '_')
	case *extast.Strikethrough:
		if len(children) == 0 {
			return false
		}
		level := 0
		for level < 2 && children[0].From-level-1 >= 0 && b.src[children[0].From-level-1] == '~' {
			level++
		}
		n.Level = level
		return level > 0 && b.delimited(n, children, level, '~')
	case *ast.Heading:
		n.Level = g.Level
	}

	if gn.Type() == ast.TypeInline {
		sp, ok := b.table.nodes[gn]
		n.From, n.To = sp.from, sp.to
		return ok
	}
	return b.blockSpan(gn, n, children)
}

// blockSpan is the union of everything known about a block: recorded spans,
// content lines, marks and children.
func (b *builder) blockSpan(gn ast.Node, n *Node, children []*Node) bool {
	from, to := -1, -1
	add := func(f, t int) {
		if f < 0 || t < f {
			return
		}
		if from < 0 || f < from {
			from = f
		}
		if t > to {
			to = t
		}
	}
	if sp, ok := b.table.nodes[gn]; ok {
		add(sp.from, sp.to)
	}
	if mb, ok := gn.(*MathBlock); ok {
		add(mb.From, mb.To)
	}
	if lines := gn.Lines(); lines != nil && lines.Len() > 0 {
		first, last := lines.At(0), lines.At(lines.Len()-1)
		add(first.Start, trimmedEnd(b.src, last))
	}
	if hb, ok := gn.(*ast.HTMLBlock); ok && hb.HasClosure() {
		add(hb.ClosureLine.Start, trimmedEnd(b.src, hb.ClosureLine))
	}
	for _, m := range b.table.marks[gn] {
		add(m.From, m.To)
	}
	if len(children) > 0 {
		add(children[0].From, children[len(children)-1].To)
	}
	n.From, n.To = from, to
	return from >= 0
}

// delimited derives the span of a delimiter-run container from its children
// and checks the source actually holds matching runs on both sides.
func (b *builder) delimited(n *Node, children []*Node, level int, chars ...byte) bool {
	if len(children) == 0 || level <= 0 {
		return false
	}
	from := children[0].From - level
	to := children[len(children)-1].To + level
	if from < 0 || to > len(b.src) {
		return false
	}
	c := b.src[from]
	if !containsByte(chars, c) {
		return false
	}
	for i := 0; i < level; i++ {
		if b.src[from+i] != c || b.src[to-1-i] != c {
			return false
		}
	}
	n.From, n.To = from, to
	return true
}

func containsByte(set []byte, c byte) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

func (b *builder) wrapMarks(n *Node, children []*Node) []*Node {
	mark := KindEmphasisMark
	if n.Kind == KindStrikethrough {
		mark = KindStrikethroughMark
	}
	out := make([]*Node, 0, len(children)+2)
	out = append(out, &Node{Kind: mark, From: n.From, To: n.From + n.Level})
	out = append(out, children...)
	out = append(out, &Node{Kind: mark, From: n.To - n.Level, To: n.To})
	return out
}

func codeMarks(src []byte, n *Node) []*Node {
	open := 0
	for n.From+open < n.To && src[n.From+open] == '`' {
		open++
	}
	closing := 0
	for n.To-closing-1 >= n.From+open && src[n.To-closing-1] == '`' {
		closing++
	}
	if open == 0 || open != closing {
		return nil
	}
	return []*Node{
		{Kind: KindCodeMark, From: n.From, To: n.From + open},
		{Kind: KindCodeMark, From: n.To - closing, To: n.To},
	}
}

func (b *builder) fenceChildren(fc *ast.FencedCodeBlock, n *Node) []*Node {
	var out []*Node
	if fc.Info != nil {
		out = append(out, &Node{Kind: KindCodeInfo, From: fc.Info.Segment.Start, To: fc.Info.Segment.Stop})
	}
	if lines := fc.Lines(); lines.Len() > 0 {
		first, last := lines.At(0), lines.At(lines.Len()-1)
		if to := trimmedEnd(b.src, last); to > first.Start {
			out = append(out, &Node{Kind: KindCodeText, From: first.Start, To: to})
		}
	}
	return out
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].From < nodes[j].From })
}

// insertMark places m in the deepest node under parent that contains it.
// A mark that would overlap a sibling is dropped.
func insertMark(parent, m *Node) {
	kids := parent.Children
	i := sort.Search(len(kids), func(i int) bool { return kids[i].From >= m.To })
	if i > 0 {
		prev := kids[i-1]
		if prev.From <= m.From && m.To <= prev.To && prev.Len() > m.Len() {
			insertMark(prev, m)
			return
		}
		if prev.To > m.From {
			return
		}
	}
	kids = append(kids, nil)
	copy(kids[i+1:], kids[i:])
	kids[i] = m
	parent.Children = kids
}
