package livepreview

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// The cursor is a byte offset into the document, the unit the decoration
// engine works in. These helpers keep it on grapheme cluster boundaries and
// translate to display columns for vertical movement.

// nextBoundary returns the byte offset after the grapheme starting at pos.
func nextBoundary(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	cluster, _, _, _ := uniseg.StepString(s[pos:], -1)
	return pos + len(cluster)
}

// prevBoundary returns the start of the grapheme ending at pos.
func prevBoundary(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	prev := 0
	state := -1
	rest := s[:pos]
	offset := 0
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		prev = offset
		offset += len(cluster)
	}
	return prev
}

// displayWidth returns the terminal cell width of s.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

// offsetAtColumn returns the byte offset of the grapheme in line that covers
// display column col, or len(line) when the line is shorter.
func offsetAtColumn(line string, col int) int {
	width := 0
	offset := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		w := runewidth.StringWidth(cluster)
		if width+w > col {
			return offset
		}
		width += w
		offset += len(cluster)
	}
	return offset
}

// splitGrapheme returns the grapheme at the start of s and the remainder.
func splitGrapheme(s string) (string, string) {
	if s == "" {
		return "", ""
	}
	cluster, rest, _, _ := uniseg.StepString(s, -1)
	return cluster, rest
}
