package widget

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/mdlive/internal/document"
	"github.com/zjrosen/mdlive/internal/ui/styles"
)

// Default glyphs.
const (
	DefaultBullet    = "•"
	DefaultChecked   = "☑"
	DefaultUnchecked = "☐"
)

// Checkbox replaces a task list marker. Clicking it toggles the marker in
// the document through the dispatch capability.
type Checkbox struct {
	Checked bool
	// Offset is the position of the marker's opening bracket.
	Offset int

	CheckedGlyph   string
	UncheckedGlyph string

	dispatch func(document.Edit)
}

// NewCheckbox creates a checkbox for the marker at offset.
func NewCheckbox(checked bool, offset int, dispatch func(document.Edit)) *Checkbox {
	return &Checkbox{
		Checked:        checked,
		Offset:         offset,
		CheckedGlyph:   DefaultChecked,
		UncheckedGlyph: DefaultUnchecked,
		dispatch:       dispatch,
	}
}

func (c *Checkbox) Kind() Kind { return KindCheckbox }

func (c *Checkbox) Eq(other Widget) bool {
	o, ok := other.(*Checkbox)
	return ok && o.Checked == c.Checked && o.Offset == c.Offset
}

func (c *Checkbox) String() string {
	if c.Checked {
		return "checked@" + strconv.Itoa(c.Offset)
	}
	return "unchecked@" + strconv.Itoa(c.Offset)
}

// Edit returns the change that toggles the marker: the character between
// the brackets becomes "x" or " ".
func (c *Checkbox) Edit() document.Edit {
	insert := "x"
	if c.Checked {
		insert = " "
	}
	return document.Edit{From: c.Offset + 1, To: c.Offset + 2, Insert: insert}
}

// Click toggles the checkbox. Without a dispatch capability it does nothing.
func (c *Checkbox) Click() {
	if c.dispatch == nil {
		return
	}
	c.dispatch(c.Edit())
}

func (c *Checkbox) View(int) string {
	if c.Checked {
		return styles.CheckboxStyle.Render(c.CheckedGlyph)
	}
	return styles.CheckboxStyle.Render(c.UncheckedGlyph)
}

// Bullet replaces an unordered list marker.
type Bullet struct {
	Glyph string
}

func (b *Bullet) Kind() Kind { return KindBullet }

func (b *Bullet) Eq(other Widget) bool {
	o, ok := other.(*Bullet)
	return ok && o.Glyph == b.Glyph
}

func (b *Bullet) String() string { return b.Glyph }
func (b *Bullet) View(int) string { return styles.BulletStyle.Render(b.Glyph) }

// LanguageBadge replaces the opening fence of a code block.
type LanguageBadge struct {
	Lang string
}

func (l *LanguageBadge) Kind() Kind { return KindBadge }

func (l *LanguageBadge) Eq(other Widget) bool {
	o, ok := other.(*LanguageBadge)
	return ok && o.Lang == l.Lang
}

func (l *LanguageBadge) String() string { return l.Lang }

func (l *LanguageBadge) View(int) string {
	return styles.BadgeStyle.Render(l.Lang)
}

// Rule replaces a thematic break with a line across the view.
type Rule struct{}

func (*Rule) Kind() Kind { return KindRule }

func (*Rule) Eq(other Widget) bool {
	_, ok := other.(*Rule)
	return ok
}

func (*Rule) String() string { return "rule" }

func (*Rule) View(width int) string {
	if width <= 0 {
		width = 3
	}
	n := width / runewidth.StringWidth("─")
	return styles.RuleStyle.Render(strings.Repeat("─", n))
}

// WikiLink replaces [[target|alias]] with its display text. Clicking opens
// the target through the host.
type WikiLink struct {
	Target string
	Alias  string

	open func(string)
}

// NewWikiLink creates a wikilink widget.
func NewWikiLink(target, alias string, open func(string)) *WikiLink {
	return &WikiLink{Target: target, Alias: alias, open: open}
}

func (w *WikiLink) Kind() Kind { return KindWikiLink }

func (w *WikiLink) Eq(other Widget) bool {
	o, ok := other.(*WikiLink)
	return ok && o.Target == w.Target && o.Alias == w.Alias
}

func (w *WikiLink) String() string { return w.Target }

// Label is the displayed text.
func (w *WikiLink) Label() string {
	if w.Alias != "" {
		return w.Alias
	}
	return w.Target
}

func (w *WikiLink) Click() {
	if w.open != nil {
		w.open(w.Target)
	}
}

func (w *WikiLink) View(int) string {
	return styles.LinkStyle.Render(w.Label())
}
