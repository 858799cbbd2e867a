package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultBatchLimit caps how many queued events one Batch carries.
const DefaultBatchLimit = 32

// Batch is the tea message a listener delivers: the event that woke it plus
// whatever was already queued behind it, oldest first. A burst of diagram
// renders therefore costs the editor a single redraw.
type Batch[T any] []Event[T]

// Last returns the newest event in the batch.
func (b Batch[T]) Last() Event[T] {
	return b[len(b)-1]
}

// ListenCmd waits for the next event on ch and drains up to limit-1 more
// without blocking. It yields nil once ctx is done or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T], limit int) tea.Cmd {
	limit = max(limit, 1)
	return func() tea.Msg {
		var first Event[T]
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			first = ev
		}

		batch := Batch[T]{first}
		for len(batch) < limit {
			select {
			case ev, ok := <-ch:
				if !ok {
					return batch
				}
				batch = append(batch, ev)
			default:
				return batch
			}
		}
		return batch
	}
}

// Listener holds one subscription for the lifetime of a tea model. Call
// Listen from Init and again after each Batch it delivers.
type Listener[T any] struct {
	ctx   context.Context
	ch    <-chan Event[T]
	limit int
}

// NewListener subscribes to broker until ctx is done.
func NewListener[T any](ctx context.Context, broker Subscriber[T]) *Listener[T] {
	return &Listener[T]{ctx: ctx, ch: broker.Subscribe(ctx), limit: DefaultBatchLimit}
}

// WithBatchLimit changes how many events one Batch may carry.
func (l *Listener[T]) WithBatchLimit(n int) *Listener[T] {
	l.limit = max(n, 1)
	return l
}

// Listen returns a command that delivers the next Batch.
func (l *Listener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch, l.limit)
}
