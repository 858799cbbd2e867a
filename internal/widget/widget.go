// Package widget implements the rendered replacements the decoration engine
// substitutes for concealed markup.
//
// Every widget renders itself and absorbs its own failures: a missing image
// hides itself, a bad formula shows its source in the error color, and a
// diagram that fails to render shows an inline message. Nothing here returns
// an error to the decoration pass.
package widget

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/mdlive/internal/cachemanager"
	"github.com/zjrosen/mdlive/internal/pubsub"
)

// Kind identifies a widget type.
type Kind string

const (
	KindImage    Kind = "image"
	KindMath     Kind = "math"
	KindDiagram  Kind = "diagram"
	KindCheckbox Kind = "checkbox"
	KindBullet   Kind = "bullet"
	KindBadge    Kind = "badge"
	KindRule     Kind = "rule"
	KindWikiLink Kind = "wikilink"
)

// Widget is a self-rendering replacement for a source span.
type Widget interface {
	Kind() Kind
	// Eq reports whether other would render identically, so a host can keep
	// an existing instance instead of rebuilding it.
	Eq(other Widget) bool
	// View renders the widget for a line of the given width.
	View(width int) string
	// String describes the widget payload for logs and the CLI.
	String() string
}

// Clickable widgets react to activation (mouse click or enter).
type Clickable interface {
	Widget
	Click()
}

// Mountable widgets do background work while they are on screen.
type Mountable interface {
	Widget
	Mount(ctx context.Context)
	Destroy()
}

// RenderEvent reports an async widget finishing.
type RenderEvent struct {
	WidgetID string
	Kind     Kind
	Err      error
}

// Renderers bundles the services widgets render through. One instance is
// shared by every widget the engine builds.
type Renderers struct {
	math    MathRenderer
	diagram DiagramRenderer
	images  ImageProbe
	imageMu sync.RWMutex
	events  *pubsub.Broker[RenderEvent]
	ttl     time.Duration

	mathCache    *cachemanager.Loader[mathInput, string]
	diagramCache *cachemanager.Loader[diagramInput, string]
}

// Option configures Renderers.
type Option func(*Renderers)

// WithMathRenderer replaces the default TeX renderer.
func WithMathRenderer(m MathRenderer) Option {
	return func(r *Renderers) { r.math = m }
}

// WithDiagramRenderer replaces the default flowchart renderer.
func WithDiagramRenderer(d DiagramRenderer) Option {
	return func(r *Renderers) { r.diagram = d }
}

// WithImageProbe replaces the default file probe.
func WithImageProbe(p ImageProbe) Option {
	return func(r *Renderers) { r.images = p }
}

// WithImageRoot resolves relative image paths against dir, normally the
// folder holding the document.
func WithImageRoot(dir string) Option {
	return func(r *Renderers) { r.images = FileProbe{Root: dir} }
}

// WithCacheTTL sets how long rendered math and diagrams are kept.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Renderers) { r.ttl = ttl }
}

// WithEvents publishes async render results to broker instead of a private one.
func WithEvents(broker *pubsub.Broker[RenderEvent]) Option {
	return func(r *Renderers) { r.events = broker }
}

// NewRenderers creates the shared widget services.
func NewRenderers(opts ...Option) *Renderers {
	r := &Renderers{
		math:    TeXRenderer{},
		diagram: FlowchartRenderer{},
		images:  FileProbe{},
		ttl:     cachemanager.DefaultExpiration,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.events == nil {
		r.events = pubsub.NewBroker[RenderEvent]()
	}
	r.mathCache = cachemanager.NewLoader[mathInput, string](
		cachemanager.NewInMemory[string, string]("math", r.ttl, 0),
		mathInput.key,
		func(_ context.Context, in mathInput) (string, error) {
			return renderMath(r.math, in)
		},
		r.ttl,
	)
	r.diagramCache = cachemanager.NewLoader[diagramInput, string](
		cachemanager.NewInMemory[string, string]("diagram", r.ttl, 0),
		diagramInput.key,
		func(ctx context.Context, in diagramInput) (string, error) {
			return renderDiagram(ctx, r.diagram, in)
		},
		r.ttl,
	)
	return r
}

// SetImageRoot points the default file probe at dir after the host opens a
// document in another folder. A probe that is not a FileProbe is kept.
func (r *Renderers) SetImageRoot(dir string) {
	r.imageMu.Lock()
	defer r.imageMu.Unlock()
	if _, ok := r.images.(FileProbe); ok {
		r.images = FileProbe{Root: dir}
	}
}

func (r *Renderers) checkImage(src string) error {
	r.imageMu.RLock()
	probe := r.images
	r.imageMu.RUnlock()
	return probe.Probe(src)
}

// Events returns the broker async widgets publish to.
func (r *Renderers) Events() *pubsub.Broker[RenderEvent] {
	return r.events
}

// Close shuts down the event broker.
func (r *Renderers) Close() {
	r.events.Close()
}

// RenderDiagram renders source synchronously through the diagram cache. It is
// used where there is no widget lifecycle, such as reading mode.
func (r *Renderers) RenderDiagram(ctx context.Context, lang, source string) (string, error) {
	return r.diagramCache.Load(ctx, diagramInput{Lang: lang, Source: source})
}

// RenderMath renders source through the math cache.
func (r *Renderers) RenderMath(source string, display bool) (string, error) {
	return r.NewMath(source, display).Rendered()
}
