package decorate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/mdlive/internal/document"
)

var fragments = []string{
	"# Heading\n",
	"## Sub *em* ##\n",
	"plain text ",
	"*em* ",
	"**strong** ",
	"~~gone~~ ",
	"`code` ",
	"``a`b`` ",
	"[label](http://x.io) ",
	"![alt](img.png) ",
	"<https://a.io> ",
	"[[Page|alias]] ",
	"$x^2$ ",
	"\n\n$$\n\\frac{a}{b}\n$$\n\n",
	"\n> quoted *text*\n> more\n\n",
	"\n- [ ] task\n- [x] done\n\n",
	"\n* item\n+ other\n\n",
	"\n1. first\n\n",
	"\n---\n\n",
	"\n```go\nfunc main() {}\n```\n\n",
	"\n```mermaid\ngraph TD\nA-->B\n```\n\n",
	"\n~~~\nunclosed",
	"[broken](",
	"\n",
}

func drawState(rt *rapid.T) State {
	parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 12).Draw(rt, "parts")
	src := strings.Join(parts, "")
	from := rapid.IntRange(0, len(src)).Draw(rt, "from")
	to := rapid.IntRange(0, len(src)).Draw(rt, "to")
	return State{
		Doc:       document.New(src),
		Selection: Selection{From: from, To: to, Head: to},
		Focus:     rapid.Bool().Draw(rt, "focus"),
	}
}

func TestCompute_Properties(t *testing.T) {
	e := New()
	t.Cleanup(e.Renderers().Close)

	rapid.Check(t, func(rt *rapid.T) {
		s := drawState(rt)
		ins := e.Compute(s)

		for i, in := range ins {
			require.Less(rt, in.From, in.To, "instruction %d is empty", i)
			require.GreaterOrEqual(rt, in.From, 0)
			require.LessOrEqual(rt, in.To, s.Doc.Len())
			if i > 0 {
				require.LessOrEqual(rt, ins[i-1].From, in.From, "ordering")
				require.LessOrEqual(rt, ins[i-1].To, in.From, "overlap between %s and %s", ins[i-1], in)
			}
		}

		again := e.Compute(s)
		require.Len(rt, again, len(ins))
		for i := range ins {
			require.True(rt, ins[i].Eq(again[i]), "recompute differs at %d: %s vs %s", i, ins[i], again[i])
		}
	})
}

func TestCompute_UnfocusedIgnoresSelection(t *testing.T) {
	e := New()
	t.Cleanup(e.Renderers().Close)

	rapid.Check(t, func(rt *rapid.T) {
		s := drawState(rt)
		s.Focus = false
		other := s
		pos := rapid.IntRange(0, s.Doc.Len()).Draw(rt, "pos")
		other.Selection = Cursor(pos)

		a, b := e.Compute(s), e.Compute(other)
		require.Len(rt, b, len(a))
		for i := range a {
			require.True(rt, a[i].Eq(b[i]))
		}
	})
}

func TestCompute_FocusOnlyReveals(t *testing.T) {
	e := New()
	t.Cleanup(e.Renderers().Close)

	rapid.Check(t, func(rt *rapid.T) {
		s := drawState(rt)
		s.Focus = true
		unfocused := s
		unfocused.Focus = false

		all := e.Compute(unfocused)
		for _, in := range e.Compute(s) {
			found := false
			for _, u := range all {
				if u.Eq(in) {
					found = true
					break
				}
			}
			require.True(rt, found, "focused pass emitted %s which the unfocused pass did not", in)
		}
	})
}
