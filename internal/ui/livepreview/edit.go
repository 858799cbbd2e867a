package livepreview

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/mdlive/internal/decorate"
	"github.com/zjrosen/mdlive/internal/document"
	"github.com/zjrosen/mdlive/internal/keys"
	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/syntax"
	"github.com/zjrosen/mdlive/internal/widget"
)

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	text := m.doc.Text()
	switch {
	case key.Matches(msg, keys.Editor.Quit):
		return m.quit()
	case key.Matches(msg, keys.Editor.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, keys.Editor.ToggleLog):
		m.logs.Toggle()
		return m, nil
	case key.Matches(msg, keys.Editor.ToggleReading):
		return m.enterReading()
	case key.Matches(msg, keys.Editor.TogglePreview):
		return m.togglePreview()
	case key.Matches(msg, keys.Editor.Save):
		return m, m.save()
	case key.Matches(msg, keys.Editor.Activate):
		return m.activate()

	case key.Matches(msg, keys.Editor.Up):
		m.moveVertical(-1)
	case key.Matches(msg, keys.Editor.Down):
		m.moveVertical(1)
	case key.Matches(msg, keys.Editor.PageUp):
		m.moveVertical(-m.editorHeight())
	case key.Matches(msg, keys.Editor.PageDown):
		m.moveVertical(m.editorHeight())
	case key.Matches(msg, keys.Editor.Left):
		m.cursor = prevBoundary(text, m.cursor)
		m.goalCol = -1
	case key.Matches(msg, keys.Editor.Right):
		m.cursor = nextBoundary(text, m.cursor)
		m.goalCol = -1
	case key.Matches(msg, keys.Editor.Home):
		m.cursor = m.doc.LineAt(m.cursor).From
		m.goalCol = -1
	case key.Matches(msg, keys.Editor.End):
		m.cursor = m.doc.LineAt(m.cursor).To
		m.goalCol = -1

	case key.Matches(msg, keys.Editor.Newline):
		m.insert("\n")
	case key.Matches(msg, keys.Editor.Backspace):
		if m.cursor > 0 {
			m.apply(document.Edit{From: prevBoundary(text, m.cursor), To: m.cursor})
		}
	case key.Matches(msg, keys.Editor.Delete):
		if m.cursor < len(text) {
			m.apply(document.Edit{From: m.cursor, To: nextBoundary(text, m.cursor)})
		}
	case msg.Type == tea.KeyRunes:
		m.insert(string(msg.Runes))
	case msg.Type == tea.KeySpace:
		m.insert(" ")

	default:
		return m, nil
	}
	m.ensureCursorVisible()
	return m, nil
}

func (m *Model) insert(s string) {
	m.apply(document.Edit{From: m.cursor, To: m.cursor, Insert: s})
}

// apply edits the buffer and maps the cursor through the edit.
func (m *Model) apply(e document.Edit) {
	next, err := m.doc.Apply(e)
	if err != nil {
		log.ErrorErr(log.CatUI, "edit rejected", err, "from", e.From, "to", e.To)
		return
	}
	m.cursor = e.MapPos(m.cursor)
	m.goalCol = -1
	m.setDocument(next)
}

func (m *Model) setDocument(doc *document.Document) {
	m.doc = doc
	m.tree = parser.ParseContext(m.ctx, doc.Bytes())
	m.cursor = min(m.cursor, doc.Len())
}

// moveVertical moves delta lines, keeping the display column the cursor had
// when vertical movement started.
func (m *Model) moveVertical(delta int) {
	line := m.doc.LineAt(m.cursor)
	if m.goalCol < 0 {
		m.goalCol = displayWidth(m.doc.Slice(line.From, m.cursor))
	}
	target := m.doc.Line(line.Number + delta)
	m.cursor = target.From + offsetAtColumn(m.doc.LineText(target), m.goalCol)
}

// activate clicks the widget under the cursor, or the first one on the
// cursor's line. A revealed wiki link under the cursor is opened directly.
func (m Model) activate() (tea.Model, tea.Cmd) {
	line := m.doc.LineAt(m.cursor)
	var target widget.Clickable
	for _, ins := range m.set {
		if ins.Op != decorate.OpSubstitute || ins.To < line.From || ins.From > line.To {
			continue
		}
		c, ok := ins.Widget.(widget.Clickable)
		if !ok {
			continue
		}
		if ins.From <= m.cursor && m.cursor < ins.To {
			target = c
			break
		}
		if target == nil {
			target = c
		}
	}
	if target != nil {
		target.Click()
		return m.drainHost()
	}
	if link, ok := m.wikiLinkAt(m.cursor); ok {
		return m, m.openLink(link)
	}
	return m, nil
}

func (m Model) wikiLinkAt(pos int) (string, bool) {
	var target string
	src := m.tree.Source
	m.tree.Walk(func(n *syntax.Node) syntax.WalkStatus {
		if pos < n.From || pos > n.To {
			return syntax.WalkSkipChildren
		}
		if n.Kind == syntax.KindWikiLink && n.To-n.From > 4 {
			t, _ := syntax.SplitWikiLink(src[n.From+2 : n.To-2])
			target = string(t)
		}
		return syntax.WalkContinue
	})
	return target, target != ""
}

// drainHost applies what widgets requested during a click.
func (m Model) drainHost() (tea.Model, tea.Cmd) {
	edits, opened := m.host.edits, m.host.opened
	m.host.edits, m.host.opened = nil, nil
	for _, e := range edits {
		m.apply(e)
	}
	m.ensureCursorVisible()
	if len(opened) > 0 {
		return m, m.openLink(opened[len(opened)-1])
	}
	return m, nil
}
