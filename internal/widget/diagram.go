package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/pubsub"
	"github.com/zjrosen/mdlive/internal/ui/styles"
)

// DiagramRenderer turns diagram source into display text. Render may block;
// it runs off the editor loop and should honor ctx.
type DiagramRenderer interface {
	Render(ctx context.Context, lang, source string) (string, error)
}

type diagramState int

const (
	diagramPending diagramState = iota
	diagramRendered
	diagramFailed
)

// Diagram replaces a whole fenced block in a diagram language. It shows a
// placeholder until Mount's background render completes.
//
// A diagram destroyed before its render finishes drops the result: the
// completion checks the alive flag under the same lock Destroy takes.
type Diagram struct {
	ID     string
	Lang   string
	Source string

	renderers *Renderers
	alive     atomic.Bool

	mu      sync.Mutex
	state   diagramState
	output  string
	err     error
	mounted bool
	cancel  context.CancelFunc
}

// NewDiagram creates an unmounted diagram widget.
func (r *Renderers) NewDiagram(lang, source string) *Diagram {
	return &Diagram{
		ID:        uuid.New().String(),
		Lang:      lang,
		Source:    source,
		renderers: r,
	}
}

func (d *Diagram) Kind() Kind { return KindDiagram }

func (d *Diagram) Eq(other Widget) bool {
	o, ok := other.(*Diagram)
	return ok && o.Lang == d.Lang && o.Source == d.Source
}

func (d *Diagram) String() string {
	return d.Lang + ":" + strings.ReplaceAll(d.Source, "\n", `\n`)
}

type diagramInput struct {
	Lang   string
	Source string
}

func (in diagramInput) key() string {
	return in.Lang + "\x00" + in.Source
}

func (d *Diagram) input() diagramInput {
	return diagramInput{Lang: d.Lang, Source: d.Source}
}

// Alive reports whether the diagram is mounted and not yet destroyed.
func (d *Diagram) Alive() bool {
	return d.alive.Load()
}

// Mount starts rendering. A cached result is applied immediately; otherwise
// the render runs in a goroutine and publishes a RenderEvent when done.
// Mounting twice is a no-op.
func (d *Diagram) Mount(ctx context.Context) {
	d.mu.Lock()
	if d.mounted {
		d.mu.Unlock()
		return
	}
	d.mounted = true
	d.alive.Store(true)

	if out, ok := d.renderers.diagramCache.Peek(ctx, d.input()); ok {
		d.state = diagramRendered
		d.output = out
		d.mu.Unlock()
		return
	}

	renderCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.mu.Unlock()

	log.Debug(log.CatWidget, "diagram render started", "id", d.ID, "lang", d.Lang)
	go func() {
		out, err := d.load(renderCtx)
		d.complete(out, err)
	}()
}

// load renders through the shared cache so identical diagrams mounted together
// share one render. A join on a render whose owner was destroyed is retried.
func (d *Diagram) load(ctx context.Context) (string, error) {
	const maxJoins = 3
	for attempt := 1; ; attempt++ {
		out, err := d.renderers.diagramCache.Load(ctx, d.input())
		if attempt < maxJoins && errors.Is(err, context.Canceled) && ctx.Err() == nil && d.alive.Load() {
			continue
		}
		return out, err
	}
}

func renderDiagram(ctx context.Context, r DiagramRenderer, in diagramInput) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("diagram renderer panicked: %v", p)
		}
	}()
	return r.Render(ctx, in.Lang, in.Source)
}

func (d *Diagram) complete(out string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.alive.Load() {
		log.Debug(log.CatWidget, "discarding render for destroyed diagram", "id", d.ID)
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	event := RenderEvent{WidgetID: d.ID, Kind: KindDiagram, Err: err}
	if err != nil {
		d.state = diagramFailed
		d.err = err
		log.Warn(log.CatWidget, "diagram render failed", "id", d.ID, "lang", d.Lang, "error", err)
		d.renderers.events.Publish(pubsub.FailedEvent, event)
		return
	}

	d.state = diagramRendered
	d.output = out
	d.renderers.events.Publish(pubsub.RenderedEvent, event)
}

// Destroy stops any in-flight render. Results arriving afterwards are dropped.
func (d *Diagram) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.alive.Store(false)
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Rendered returns the render output once available.
func (d *Diagram) Rendered() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.output, d.state == diagramRendered
}

// Err returns the render failure, if any.
func (d *Diagram) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *Diagram) View(width int) string {
	d.mu.Lock()
	state, out, err := d.state, d.output, d.err
	d.mu.Unlock()

	switch state {
	case diagramRendered:
		style := styles.DiagramStyle
		if width > 4 {
			style = style.MaxWidth(width)
		}
		return style.Render(out)
	case diagramFailed:
		return styles.WidgetErrorStyle.Render(fmt.Sprintf("%s diagram: %v", d.Lang, err))
	default:
		return styles.PlaceholderStyle.Render(fmt.Sprintf("rendering %s diagram…", d.Lang))
	}
}
