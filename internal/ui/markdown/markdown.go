// Package markdown renders a whole document for reading mode with glamour.
//
// Constructs glamour cannot draw (math, diagrams, wiki links) are first
// replaced with the text their widgets would show, using the same decoration
// pass as the live editor with focus off.
package markdown

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/mdlive/internal/decorate"
	"github.com/zjrosen/mdlive/internal/document"
	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/widget"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with mdlive configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	engine   *decorate.Engine
	width    int
}

// New creates a renderer with the given word-wrap width and glamour style.
// The style defaults to "dark"; WithAutoStyle is avoided because its terminal
// background query leaks escape sequences into bubbletea's input.
func New(width int, style string, engine *decorate.Engine) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	if engine == nil {
		engine = decorate.New()
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, engine: engine, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(ctx context.Context, markdown string) (string, error) {
	return r.renderer.Render(r.Prepare(ctx, markdown))
}

type replacement struct {
	from, to int
	text     string
}

// Prepare returns src with math, diagrams and wiki links replaced by plain
// Markdown that glamour can display.
func (r *Renderer) Prepare(ctx context.Context, src string) string {
	doc := document.New(src)
	set := r.engine.ComputeContext(ctx, decorate.State{Doc: doc, Focus: false})

	var reps []replacement
	for _, ins := range set {
		if ins.Op != decorate.OpSubstitute {
			continue
		}
		if text, ok := r.replace(ctx, src, ins); ok {
			reps = append(reps, replacement{ins.From, ins.To, text})
		}
	}
	if len(reps) == 0 {
		return src
	}

	sort.Slice(reps, func(i, j int) bool { return reps[i].from < reps[j].from })
	var b strings.Builder
	last := 0
	for _, rep := range reps {
		b.WriteString(src[last:rep.from])
		b.WriteString(rep.text)
		last = rep.to
	}
	b.WriteString(src[last:])
	return b.String()
}

func (r *Renderer) replace(ctx context.Context, src string, ins decorate.Instruction) (string, bool) {
	switch w := ins.Widget.(type) {
	case *widget.Math:
		out, err := w.Rendered()
		if err != nil {
			return "`" + w.Source + "`", true
		}
		if w.Display {
			return block(src, ins.From, ins.To, out), true
		}
		return "`" + out + "`", true
	case *widget.Diagram:
		out, err := r.engine.Renderers().RenderDiagram(ctx, w.Lang, w.Source)
		if err != nil {
			log.Warn(log.CatWidget, "reading mode diagram failed", "lang", w.Lang, "error", err)
			return "", false
		}
		return block(src, ins.From, ins.To, out), true
	case *widget.WikiLink:
		return "**" + w.Label() + "**", true
	}
	return "", false
}

// block formats text as a fenced block, padding with newlines when the span
// does not already sit on its own lines.
func block(src string, from, to int, text string) string {
	var b strings.Builder
	if from > 0 && src[from-1] != '\n' {
		b.WriteString("\n")
	}
	b.WriteString("```text\n")
	b.WriteString(text)
	b.WriteString("\n```")
	if to < len(src) && src[to] != '\n' {
		b.WriteString("\n")
	}
	return b.String()
}
