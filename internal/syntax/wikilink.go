package syntax

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindWikiLinkNode is the goldmark node kind for [[target|alias]] links.
var KindWikiLinkNode = ast.NewNodeKind("WikiLink")

// WikiLinkNode is a [[target]] or [[target|alias]] reference.
type WikiLinkNode struct {
	ast.BaseInline
	Target []byte
	Alias  []byte
	From   int
	To     int
}

func (n *WikiLinkNode) Kind() ast.NodeKind { return KindWikiLinkNode }

func (n *WikiLinkNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Target": string(n.Target),
		"Alias":  string(n.Alias),
	}, nil)
}

type wikiLinkParser struct{}

func (s *wikiLinkParser) Trigger() []byte {
	return []byte{'['}
}

func (s *wikiLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 5 || line[1] != '[' {
		return nil
	}
	end := bytes.Index(line[2:], []byte("]]"))
	if end <= 0 {
		return nil
	}
	body := line[2 : 2+end]
	if bytes.ContainsAny(body, "[]\n") {
		return nil
	}
	target, alias := SplitWikiLink(body)
	if len(target) == 0 {
		return nil
	}
	stop := 2 + end + 2
	block.Advance(stop)
	return &WikiLinkNode{
		Target: target,
		Alias:  alias,
		From:   seg.Start,
		To:     seg.Start + stop,
	}
}

// SplitWikiLink splits "target|alias" and trims both halves.
func SplitWikiLink(body []byte) (target, alias []byte) {
	if i := bytes.IndexByte(body, '|'); i >= 0 {
		return bytes.TrimSpace(body[:i]), bytes.TrimSpace(body[i+1:])
	}
	return bytes.TrimSpace(body), nil
}
