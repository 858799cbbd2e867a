// Package decorate computes the live-preview decoration set for a Markdown
// document: which spans to hide and which to replace with rendered widgets,
// given where the cursor is and whether the editor has focus.
//
// Compute is a pure function of its State. It walks only the parts of the
// syntax tree that intersect the visible ranges, never fails, and returns
// instructions that are sorted by start offset and never overlap.
package decorate

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/mdlive/internal/document"
	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/syntax"
	"github.com/zjrosen/mdlive/internal/tracing"
	"github.com/zjrosen/mdlive/internal/widget"
)

var (
	tracer = otel.Tracer("mdlive/decorate")
	parser = syntax.NewParser()
)

// Op is what an instruction does to its span.
type Op uint8

const (
	// OpConceal renders the span as nothing.
	OpConceal Op = iota
	// OpSubstitute renders the span as the instruction's widget.
	OpSubstitute
)

func (o Op) String() string {
	switch o {
	case OpConceal:
		return "conceal"
	case OpSubstitute:
		return "substitute"
	default:
		return fmt.Sprintf("Op(%d)", o)
	}
}

// Range is a [From, To) byte span.
type Range struct {
	From int
	To   int
}

// Selection is the primary selection. Head is the cursor end.
type Selection struct {
	From int
	To   int
	Head int
}

// Cursor returns an empty selection at pos.
func Cursor(pos int) Selection {
	return Selection{From: pos, To: pos, Head: pos}
}

func (s Selection) normalized() Selection {
	if s.From > s.To {
		s.From, s.To = s.To, s.From
	}
	return s
}

// State is everything a decoration pass depends on.
type State struct {
	Doc *document.Document
	// Tree is parsed from Doc when nil.
	Tree      *syntax.Tree
	Selection Selection
	Focus     bool
	// Visible lists the spans the host is rendering. Empty means the whole
	// document.
	Visible []Range
}

// Instruction hides or replaces one span of the source.
type Instruction struct {
	From   int
	To     int
	Op     Op
	Widget widget.Widget
}

// Eq reports whether two instructions render identically.
func (i Instruction) Eq(o Instruction) bool {
	if i.From != o.From || i.To != o.To || i.Op != o.Op {
		return false
	}
	if i.Widget == nil || o.Widget == nil {
		return i.Widget == nil && o.Widget == nil
	}
	return i.Widget.Eq(o.Widget)
}

func (i Instruction) String() string {
	if i.Widget == nil {
		return fmt.Sprintf("%s [%d, %d)", i.Op, i.From, i.To)
	}
	return fmt.Sprintf("%s [%d, %d) %s(%s)", i.Op, i.From, i.To, i.Widget.Kind(), i.Widget)
}

// Capabilities are the host actions widgets may invoke.
type Capabilities struct {
	// Dispatch applies an edit to the document. Used by checkboxes.
	Dispatch func(document.Edit)
	// OpenWikiLink navigates to a wiki link target.
	OpenWikiLink func(target string)
}

// Engine computes decoration sets.
type Engine struct {
	caps           Capabilities
	renderers      *widget.Renderers
	diagramLangs   map[string]bool
	bullet         string
	checkedGlyph   string
	uncheckedGlyph string
}

// Option configures an Engine.
type Option func(*Engine)

// WithCapabilities sets the host actions handed to interactive widgets.
func WithCapabilities(caps Capabilities) Option {
	return func(e *Engine) { e.caps = caps }
}

// WithRenderers shares widget services between engines.
func WithRenderers(r *widget.Renderers) Option {
	return func(e *Engine) { e.renderers = r }
}

// WithDiagramLanguages sets the fenced code info strings rendered as
// diagrams. The default is mermaid.
func WithDiagramLanguages(langs ...string) Option {
	return func(e *Engine) {
		e.diagramLangs = make(map[string]bool, len(langs))
		for _, l := range langs {
			e.diagramLangs[l] = true
		}
	}
}

// WithBullet sets the glyph shown for "-" and "*" list markers.
func WithBullet(glyph string) Option {
	return func(e *Engine) { e.bullet = glyph }
}

// WithCheckboxGlyphs sets the glyphs for task list markers.
func WithCheckboxGlyphs(checked, unchecked string) Option {
	return func(e *Engine) {
		e.checkedGlyph = checked
		e.uncheckedGlyph = unchecked
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		diagramLangs:   map[string]bool{"mermaid": true},
		bullet:         widget.DefaultBullet,
		checkedGlyph:   widget.DefaultChecked,
		uncheckedGlyph: widget.DefaultUnchecked,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderers == nil {
		e.renderers = widget.NewRenderers()
	}
	return e
}

// Renderers returns the widget services the engine builds widgets with.
func (e *Engine) Renderers() *widget.Renderers {
	return e.renderers
}

// Compute returns the decoration set for s.
func (e *Engine) Compute(s State) []Instruction {
	return e.ComputeContext(context.Background(), s)
}

// ComputeContext is Compute with a tracing parent.
func (e *Engine) ComputeContext(ctx context.Context, s State) []Instruction {
	ctx, span := tracer.Start(ctx, tracing.SpanCompute)
	defer span.End()

	if s.Tree == nil {
		if s.Doc == nil {
			return nil
		}
		s.Tree = parser.ParseContext(ctx, s.Doc.Bytes())
	}
	s.Selection = s.Selection.normalized()

	p := &pass{engine: e, state: s, tree: s.Tree, src: s.Tree.Source}
	visible := mergeRanges(s.Visible, len(p.src))
	for _, r := range visible {
		s.Tree.Iterate(r.From, r.To, p.visit)
	}
	out := p.acc.instructions()

	attrs := []attribute.KeyValue{
		attribute.Int(tracing.AttrVisibleRanges, len(visible)),
		attribute.Int(tracing.AttrInstructions, len(out)),
		attribute.Int(tracing.AttrDropped, p.acc.dropped),
		attribute.Bool(tracing.AttrFocus, s.Focus),
	}
	if s.Doc != nil {
		attrs = append(attrs, attribute.Int64(tracing.AttrRevision, int64(s.Doc.Revision())))
	}
	span.SetAttributes(attrs...)

	log.Debug(log.CatDecorate, "computed decorations",
		"instructions", len(out), "dropped", p.acc.dropped, "visited", p.visited, "focus", s.Focus)
	return out
}

// mergeRanges clamps ranges to the document and merges overlapping or
// adjacent ones, in order.
func mergeRanges(ranges []Range, docLen int) []Range {
	if len(ranges) == 0 {
		return []Range{{From: 0, To: docLen}}
	}
	rs := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		r.From = max(0, min(r.From, docLen))
		r.To = max(r.From, min(r.To, docLen))
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i].From < rs[j].From })

	merged := rs[:1]
	for _, r := range rs[1:] {
		last := &merged[len(merged)-1]
		if r.From <= last.To {
			last.To = max(last.To, r.To)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
