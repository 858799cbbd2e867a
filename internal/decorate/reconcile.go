package decorate

import (
	"context"

	"github.com/zjrosen/mdlive/internal/widget"
)

// Reconcile carries mounted widgets from the previous decoration set into
// next. A widget in next that Eq-matches a mountable widget in prev is
// replaced by the old instance so an in-flight or finished render survives
// the recompute. Remaining new mountables are mounted and unmatched old ones
// are destroyed.
func Reconcile(ctx context.Context, prev, next []Instruction) []Instruction {
	var old []widget.Mountable
	for _, in := range prev {
		if m, ok := in.Widget.(widget.Mountable); ok {
			old = append(old, m)
		}
	}

	used := make([]bool, len(old))
	for i := range next {
		m, ok := next[i].Widget.(widget.Mountable)
		if !ok {
			continue
		}
		reused := false
		for j, o := range old {
			if !used[j] && o.Eq(m) {
				used[j] = true
				next[i].Widget = o
				reused = true
				break
			}
		}
		if !reused {
			m.Mount(ctx)
		}
	}

	for j, o := range old {
		if !used[j] {
			o.Destroy()
		}
	}
	return next
}

// DestroyAll tears down every mounted widget in set.
func DestroyAll(set []Instruction) {
	for _, in := range set {
		if m, ok := in.Widget.(widget.Mountable); ok {
			m.Destroy()
		}
	}
}
