package decorate

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/syntax"
	"github.com/zjrosen/mdlive/internal/widget"
)

var imagePattern = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

// pass is one run of the rule table over a tree.
type pass struct {
	engine  *Engine
	state   State
	tree    *syntax.Tree
	src     []byte
	acc     accumulator
	visited int
}

// touching reports whether the selection overlaps or touches [from, to].
func (p *pass) touching(from, to int) bool {
	sel := p.state.Selection
	return p.state.Focus && sel.To >= from && sel.From <= to
}

// cursorOnLine reports whether the cursor is on the line containing pos.
func (p *pass) cursorOnLine(pos int) bool {
	return p.state.Focus && p.tree.LineAt(p.state.Selection.Head) == p.tree.LineAt(pos)
}

func (p *pass) text(n *syntax.Node) string {
	return string(p.src[n.From:n.To])
}

func (p *pass) skip(n *syntax.Node, reason string) {
	log.Debug(log.CatDecorate, "leaving node undecorated", "kind", n.Kind.String(), "from", n.From, "reason", reason)
}

func (p *pass) visit(n *syntax.Node) syntax.WalkStatus {
	p.visited++
	switch n.Kind {
	case syntax.KindImage:
		return p.image(n)
	case syntax.KindLink:
		p.link(n)
	case syntax.KindInlineMath, syntax.KindBlockMath:
		return p.math(n)
	case syntax.KindHeaderMark:
		if !p.cursorOnLine(n.From) {
			p.acc.conceal(n.From, p.withSpace(n.To))
		}
	case syntax.KindEmphasisMark, syntax.KindStrikethroughMark:
		if !p.touching(n.From, n.To) {
			p.acc.conceal(n.From, n.To)
		}
	case syntax.KindInlineCode:
		p.inlineCode(n)
	case syntax.KindQuoteMark:
		if !p.cursorOnLine(n.From) {
			p.acc.conceal(n.From, p.withSpace(n.To))
		}
	case syntax.KindHorizontalRule:
		if !p.touching(n.From, n.To) {
			p.acc.add(Instruction{From: n.From, To: n.To, Op: OpSubstitute, Widget: &widget.Rule{}})
		}
	case syntax.KindTaskMarker:
		return p.taskMarker(n)
	case syntax.KindListMark:
		if t := p.text(n); t == "-" || t == "*" {
			p.acc.add(Instruction{From: n.From, To: n.To, Op: OpSubstitute, Widget: &widget.Bullet{Glyph: p.engine.bullet}})
		}
	case syntax.KindFencedCode:
		return p.fencedCode(n)
	case syntax.KindWikiLink:
		return p.wikiLink(n)
	case syntax.KindAutolink:
		p.autolink(n)
	}
	return syntax.WalkContinue
}

// withSpace extends a marker end over one following space.
func (p *pass) withSpace(end int) int {
	if end < len(p.src) && p.src[end] == ' ' {
		return end + 1
	}
	return end
}

func (p *pass) image(n *syntax.Node) syntax.WalkStatus {
	if p.touching(n.From, n.To) {
		return syntax.WalkSkipChildren
	}
	m := imagePattern.FindStringSubmatch(p.text(n))
	if m == nil {
		p.skip(n, "image pattern mismatch")
		return syntax.WalkSkipChildren
	}
	src := strings.TrimSpace(m[2])
	if i := strings.IndexAny(src, " \t"); i >= 0 {
		src = src[:i]
	}
	src = strings.TrimSuffix(strings.TrimPrefix(src, "<"), ">")
	p.acc.add(Instruction{From: n.From, To: n.To, Op: OpSubstitute, Widget: p.engine.renderers.NewImage(src, m[1])})
	return syntax.WalkSkipChildren
}

func (p *pass) link(n *syntax.Node) {
	if p.touching(n.From, n.To) {
		return
	}
	t := p.text(n)
	end := linkLabelEnd(t)
	if end < 0 || strings.ContainsRune(t, '\n') || !strings.HasSuffix(t, ")") {
		p.skip(n, "link pattern mismatch")
		return
	}
	p.acc.conceal(n.From, n.From+1)
	p.acc.conceal(n.From+end, n.To)
}

// linkLabelEnd returns the offset of the "]" that closes the label of
// [label](dest), counting nested brackets so an image in the label stays
// whole. It returns -1 when s does not have that shape.
func linkLabelEnd(s string) int {
	if !strings.HasPrefix(s, "[") {
		return -1
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth > 0 {
				continue
			}
			if i+1 < len(s) && s[i+1] == '(' {
				return i
			}
			return -1
		}
	}
	return -1
}

func (p *pass) math(n *syntax.Node) syntax.WalkStatus {
	if p.touching(n.From, n.To) {
		return syntax.WalkSkipChildren
	}
	source, display := stripMath(p.text(n))
	if n.Kind == syntax.KindBlockMath {
		display = true
	}
	p.acc.add(Instruction{From: n.From, To: n.To, Op: OpSubstitute, Widget: p.engine.renderers.NewMath(source, display)})
	return syntax.WalkSkipChildren
}

// stripMath removes $ or $$ delimiters. $$ on both ends means display mode.
func stripMath(s string) (string, bool) {
	if len(s) >= 4 && strings.HasPrefix(s, "$$") && strings.HasSuffix(s, "$$") {
		return strings.TrimSpace(s[2 : len(s)-2]), true
	}
	if len(s) >= 2 && s[0] == '$' && s[len(s)-1] == '$' {
		return strings.TrimSpace(s[1 : len(s)-1]), false
	}
	return strings.TrimSpace(strings.Trim(s, "$")), false
}

func (p *pass) inlineCode(n *syntax.Node) {
	if p.touching(n.From, n.To) {
		return
	}
	t := p.src[n.From:n.To]
	lead := len(t) - len(bytes.TrimLeft(t, "`"))
	trail := len(t) - len(bytes.TrimRight(t, "`"))
	if lead == 0 || lead != trail || lead*2 >= len(t) {
		p.skip(n, "unmatched backtick runs")
		return
	}
	p.acc.conceal(n.From, n.From+lead)
	p.acc.conceal(n.To-trail, n.To)
}

func (p *pass) taskMarker(n *syntax.Node) syntax.WalkStatus {
	t := p.text(n)
	if len(t) != 3 || t[0] != '[' || t[2] != ']' {
		p.skip(n, "task marker pattern mismatch")
		return syntax.WalkSkipChildren
	}
	cb := widget.NewCheckbox(t[1] == 'x' || t[1] == 'X', n.From, p.engine.caps.Dispatch)
	cb.CheckedGlyph = p.engine.checkedGlyph
	cb.UncheckedGlyph = p.engine.uncheckedGlyph
	p.acc.add(Instruction{From: n.From, To: n.To, Op: OpSubstitute, Widget: cb})
	return syntax.WalkSkipChildren
}

func (p *pass) fencedCode(n *syntax.Node) syntax.WalkStatus {
	if p.touching(n.From, n.To) {
		return syntax.WalkContinue
	}

	body := p.text(n)
	lines := strings.Split(body, "\n")
	first := lines[0]
	lang := fenceLanguage(first)

	closed := len(lines) > 1 && isFence(lines[len(lines)-1])
	inner := lines[1:]
	if closed {
		inner = inner[:len(inner)-1]
	}

	if p.engine.diagramLangs[lang] {
		d := p.engine.renderers.NewDiagram(lang, strings.Join(inner, "\n"))
		p.acc.add(Instruction{From: n.From, To: n.To, Op: OpSubstitute, Widget: d})
		return syntax.WalkSkipChildren
	}

	badge := lang
	if badge == "" {
		badge = "text"
	}
	p.acc.add(Instruction{From: n.From, To: n.From + len(first), Op: OpSubstitute, Widget: &widget.LanguageBadge{Lang: badge}})
	if closed {
		last := lines[len(lines)-1]
		p.acc.conceal(n.To-len(last), n.To)
	}
	return syntax.WalkSkipChildren
}

// fenceLanguage returns the first word of a fence line's info string.
func fenceLanguage(line string) string {
	info := strings.TrimLeft(strings.TrimSpace(line), "`~")
	if f := strings.Fields(info); len(f) > 0 {
		return strings.Trim(f[0], "{}.")
	}
	return ""
}

// isFence reports whether a line is made only of fence characters.
func isFence(line string) bool {
	t := strings.TrimSpace(line)
	if len(t) < 3 {
		return false
	}
	return strings.Trim(t, "`") == "" || strings.Trim(t, "~") == ""
}

func (p *pass) wikiLink(n *syntax.Node) syntax.WalkStatus {
	if p.touching(n.From, n.To) {
		return syntax.WalkSkipChildren
	}
	t := p.src[n.From:n.To]
	if len(t) < 4 || !bytes.HasPrefix(t, []byte("[[")) || !bytes.HasSuffix(t, []byte("]]")) {
		p.skip(n, "wiki link pattern mismatch")
		return syntax.WalkSkipChildren
	}
	target, alias := syntax.SplitWikiLink(t[2 : len(t)-2])
	w := widget.NewWikiLink(string(target), string(alias), p.engine.caps.OpenWikiLink)
	p.acc.add(Instruction{From: n.From, To: n.To, Op: OpSubstitute, Widget: w})
	return syntax.WalkSkipChildren
}

func (p *pass) autolink(n *syntax.Node) {
	if p.touching(n.From, n.To) {
		return
	}
	t := p.text(n)
	if len(t) < 3 || t[0] != '<' || t[len(t)-1] != '>' {
		p.skip(n, "autolink without brackets")
		return
	}
	p.acc.conceal(n.From, n.From+1)
	p.acc.conceal(n.To-1, n.To)
}
