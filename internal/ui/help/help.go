// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/mdlive/internal/keys"
	"github.com/zjrosen/mdlive/internal/ui/overlay"
	"github.com/zjrosen/mdlive/internal/ui/styles"
	"github.com/zjrosen/mdlive/internal/widget"
)

// Legend entry describing what a rendered widget stands for.
type Legend struct {
	Glyph string
	Desc  string
}

// DefaultLegend lists the widgets the editor draws in place of markup.
func DefaultLegend() []Legend {
	return []Legend{
		{Glyph: widget.DefaultBullet, Desc: "list item"},
		{Glyph: widget.DefaultUnchecked + " " + widget.DefaultChecked, Desc: "task, click to toggle"},
		{Glyph: "▣", Desc: "image"},
		{Glyph: "─", Desc: "horizontal rule"},
		{Glyph: "link", Desc: "wiki link, click to open"},
	}
}

var sectionNames = []string{"Navigation", "Editing", "View", "General"}

// Model holds the help view state.
type Model struct {
	keys   keys.EditorKeyMap
	legend []Legend
	width  int
	height int
}

// New creates the editor help view.
func New() Model {
	return Model{keys: keys.Editor, legend: DefaultLegend()}
}

// WithLegend replaces the widget legend, used when glyphs are configured.
func (m Model) WithLegend(legend []Legend) Model {
	m.legend = legend
	return m
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help box centered on an empty screen.
func (m Model) View() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.box())
}

// Overlay draws the help box over background.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.box(), background)
}

func (m Model) box() string {
	section := lipgloss.NewStyle().Bold(true).Foreground(styles.HeadingColor)
	column := lipgloss.NewStyle().MarginRight(4)

	var cols []string
	for i, row := range m.keys.FullHelp() {
		var b strings.Builder
		b.WriteString(section.Render(sectionNames[i]))
		for _, binding := range row {
			b.WriteString("\n")
			b.WriteString(renderBinding(binding))
		}
		cols = append(cols, column.Render(b.String()))
	}

	var legend strings.Builder
	legend.WriteString(section.Render("Markdown"))
	for _, l := range m.legend {
		legend.WriteString("\n")
		legend.WriteString(renderKeyDesc(l.Glyph, l.Desc))
	}
	cols = append(cols, legend.String())

	title := lipgloss.NewStyle().Bold(true).Foreground(styles.HeadingColor).Render("mdlive")
	footer := lipgloss.NewStyle().Foreground(styles.TextMutedColor).MarginTop(1).Render("Press any key to close")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		footer,
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 2).
		Render(body)
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return renderKeyDesc(h.Key, h.Desc)
}

func renderKeyDesc(k, desc string) string {
	keyStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Width(10)
	descStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	return keyStyle.Render(k) + descStyle.Render(desc)
}
