// Package syntax parses Markdown into a span tree for the decoration engine.
//
// Goldmark does not keep source positions for most nodes, so the parser wraps
// goldmark's block and inline parsers and records spans as they are matched.
// The result is a tree of Node values where every node carries a [From, To)
// byte range and children are sorted and never overlap their siblings.
package syntax

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Kind tags a node with the construct it represents.
type Kind uint8

const (
	KindDocument Kind = iota
	KindParagraph
	KindHeading
	KindHeaderMark
	KindEmphasis
	KindStrongEmphasis
	KindEmphasisMark
	KindStrikethrough
	KindStrikethroughMark
	KindInlineCode
	KindCodeMark
	KindLink
	KindImage
	KindAutolink
	KindWikiLink
	KindInlineMath
	KindBlockMath
	KindFencedCode
	KindCodeInfo
	KindCodeText
	KindCodeBlock
	KindBlockquote
	KindQuoteMark
	KindBulletList
	KindOrderedList
	KindListItem
	KindListMark
	KindTaskMarker
	KindHorizontalRule
	KindHTMLBlock
	KindHTML
	KindText
)

var kindNames = [...]string{
	KindDocument:          "Document",
	KindParagraph:         "Paragraph",
	KindHeading:           "Heading",
	KindHeaderMark:        "HeaderMark",
	KindEmphasis:          "Emphasis",
	KindStrongEmphasis:    "StrongEmphasis",
	KindEmphasisMark:      "EmphasisMark",
	KindStrikethrough:     "Strikethrough",
	KindStrikethroughMark: "StrikethroughMark",
	KindInlineCode:        "InlineCode",
	KindCodeMark:          "CodeMark",
	KindLink:              "Link",
	KindImage:             "Image",
	KindAutolink:          "Autolink",
	KindWikiLink:          "WikiLink",
	KindInlineMath:        "InlineMath",
	KindBlockMath:         "BlockMath",
	KindFencedCode:        "FencedCode",
	KindCodeInfo:          "CodeInfo",
	KindCodeText:          "CodeText",
	KindCodeBlock:         "CodeBlock",
	KindBlockquote:        "Blockquote",
	KindQuoteMark:         "QuoteMark",
	KindBulletList:        "BulletList",
	KindOrderedList:       "OrderedList",
	KindListItem:          "ListItem",
	KindListMark:          "ListMark",
	KindTaskMarker:        "TaskMarker",
	KindHorizontalRule:    "HorizontalRule",
	KindHTMLBlock:         "HTMLBlock",
	KindHTML:              "HTML",
	KindText:              "Text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Node is a span of the source tagged with a Kind.
type Node struct {
	Kind     Kind
	From     int
	To       int
	Level    int // heading level, emphasis level
	Children []*Node
}

// Len returns the span length in bytes.
func (n *Node) Len() int { return n.To - n.From }

// WalkStatus tells Iterate how to continue after visiting a node.
type WalkStatus int

const (
	// WalkContinue descends into the node's children.
	WalkContinue WalkStatus = iota
	// WalkSkipChildren moves on to the next sibling.
	WalkSkipChildren
)

// Visitor is called once per node in pre-order.
type Visitor func(n *Node) WalkStatus

// Tree is a parsed document.
type Tree struct {
	Source     []byte
	Root       *Node
	lineStarts []int
}

func newTree(src []byte, root *Node) *Tree {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Tree{Source: src, Root: root, lineStarts: starts}
}

// Slice returns the source text of a node.
func (t *Tree) Slice(n *Node) string {
	return string(t.Source[n.From:n.To])
}

// LineAt returns the 1-based line number containing pos.
func (t *Tree) LineAt(pos int) int {
	return sort.Search(len(t.lineStarts), func(i int) bool { return t.lineStarts[i] > pos })
}

// Iterate walks every node whose span touches [from, to], edges inclusive,
// in pre-order. Subtrees outside the range are never entered.
func (t *Tree) Iterate(from, to int, visit Visitor) {
	if t.Root == nil {
		return
	}
	iterate(t.Root, from, to, visit)
}

// Walk visits the whole tree.
func (t *Tree) Walk(visit Visitor) {
	t.Iterate(0, len(t.Source), visit)
}

func iterate(n *Node, from, to int, visit Visitor) {
	if n.From > to || n.To < from {
		return
	}
	if visit(n) == WalkSkipChildren {
		return
	}
	kids := n.Children
	i := sort.Search(len(kids), func(i int) bool { return kids[i].To >= from })
	for ; i < len(kids) && kids[i].From <= to; i++ {
		iterate(kids[i], from, to, visit)
	}
}

// Heading is one entry of the document outline.
type Heading struct {
	Level  int
	Text   string
	Offset int
	Line   int
}

// Headings returns the document outline in source order.
func (t *Tree) Headings() []Heading {
	var out []Heading
	t.Walk(func(n *Node) WalkStatus {
		if n.Kind != KindHeading {
			return WalkContinue
		}
		out = append(out, Heading{
			Level:  n.Level,
			Text:   t.headingText(n),
			Offset: n.From,
			Line:   t.LineAt(n.From),
		})
		return WalkSkipChildren
	})
	return out
}

func (t *Tree) headingText(h *Node) string {
	from, to := -1, -1
	for _, c := range h.Children {
		if c.Kind == KindHeaderMark {
			continue
		}
		if from < 0 {
			from = c.From
		}
		to = c.To
	}
	if from < 0 {
		return ""
	}
	return strings.TrimSpace(string(t.Source[from:to]))
}

// Dump writes an indented outline of the tree.
func (t *Tree) Dump(w io.Writer) error {
	var err error
	var dump func(n *Node, depth int)
	dump = func(n *Node, depth int) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s%s [%d, %d)", strings.Repeat("  ", depth), n.Kind, n.From, n.To)
		if err == nil && len(n.Children) == 0 && n.Len() <= 40 {
			_, err = fmt.Fprintf(w, " %q", t.Slice(n))
		}
		if err == nil {
			_, err = io.WriteString(w, "\n")
		}
		for _, c := range n.Children {
			dump(c, depth+1)
		}
	}
	dump(t.Root, 0)
	return err
}
