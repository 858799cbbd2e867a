// Package overlay draws a box over the editor view without clearing it.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Position is where the box sits on screen.
type Position int

const (
	// Center places the box in the middle of the screen.
	Center Position = iota
	// Bottom places the box above the bottom edge, offset by Margin rows.
	Bottom
)

// Config describes the screen the box is drawn on.
type Config struct {
	Width    int
	Height   int
	Position Position
	Margin   int
}

// Place draws fg over bg. Both may carry ANSI styling; cells outside the box
// keep the background's styling.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, "")
	}

	boxWidth := 0
	for _, l := range fgLines {
		boxWidth = max(boxWidth, ansi.StringWidth(l))
	}
	x, y := origin(cfg, boxWidth, len(fgLines))

	for i, fgLine := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], fgLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of line starting at column x with fg.
func splice(line, fg string, x int) string {
	left := ansi.Truncate(line, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(fg)
	var right string
	if end < ansi.StringWidth(line) {
		right = ansi.TruncateLeft(line, end, "")
	}
	return left + fg + right
}

func origin(cfg Config, w, h int) (x, y int) {
	x = (cfg.Width - w) / 2
	switch cfg.Position {
	case Bottom:
		y = cfg.Height - h - cfg.Margin
	default:
		y = (cfg.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
