package widget

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/ui/styles"
)

// MathRenderer turns a TeX formula into display text.
type MathRenderer interface {
	Render(source string, display bool) (string, error)
}

type mathInput struct {
	Source  string
	Display bool
}

func (in mathInput) key() string {
	if in.Display {
		return "d:" + in.Source
	}
	return "i:" + in.Source
}

func renderMath(r MathRenderer, in mathInput) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("math renderer panicked: %v", p)
		}
	}()
	return r.Render(in.Source, in.Display)
}

// Math renders a formula. The delimiters are already stripped from Source.
type Math struct {
	Source  string
	Display bool

	renderers *Renderers
}

// NewMath creates a math widget rendered through r.
func (r *Renderers) NewMath(source string, display bool) *Math {
	return &Math{Source: source, Display: display, renderers: r}
}

func (m *Math) Kind() Kind { return KindMath }

func (m *Math) Eq(other Widget) bool {
	o, ok := other.(*Math)
	return ok && o.Source == m.Source && o.Display == m.Display
}

func (m *Math) String() string {
	if m.Display {
		return "display:" + m.Source
	}
	return m.Source
}

// Rendered returns the formula text, or an error when the renderer rejected
// or panicked on the source.
func (m *Math) Rendered() (string, error) {
	return m.renderers.mathCache.Load(context.Background(), mathInput{Source: m.Source, Display: m.Display})
}

func (m *Math) View(width int) string {
	out, err := m.Rendered()
	if err != nil {
		log.Debug(log.CatWidget, "math render failed", "source", m.Source, "error", err)
		return styles.WidgetErrorStyle.Render(m.Source)
	}
	if m.Display && width > 0 {
		return styles.MathStyle.Width(width).Align(lipgloss.Center).Render(out)
	}
	return styles.MathStyle.Render(out)
}
