package livepreview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextBoundary(t *testing.T) {
	s := "aé日👍🏽b"
	require.Equal(t, 1, nextBoundary(s, 0))
	require.Equal(t, 3, nextBoundary(s, 1))
	require.Equal(t, 6, nextBoundary(s, 3))
	require.Equal(t, 14, nextBoundary(s, 6), "emoji with skin tone is one grapheme")
	require.Equal(t, 15, nextBoundary(s, 14))
	require.Equal(t, 15, nextBoundary(s, 15))
}

func TestPrevBoundary(t *testing.T) {
	s := "aé日👍🏽b"
	require.Equal(t, 14, prevBoundary(s, 15))
	require.Equal(t, 6, prevBoundary(s, 14))
	require.Equal(t, 3, prevBoundary(s, 6))
	require.Equal(t, 0, prevBoundary(s, 1))
	require.Equal(t, 0, prevBoundary(s, 0))
}

func TestOffsetAtColumn(t *testing.T) {
	line := "a日b"
	require.Equal(t, 0, offsetAtColumn(line, 0))
	require.Equal(t, 1, offsetAtColumn(line, 1))
	require.Equal(t, 1, offsetAtColumn(line, 2), "column inside a wide rune lands on its start")
	require.Equal(t, 4, offsetAtColumn(line, 3))
	require.Equal(t, 5, offsetAtColumn(line, 10))
}

func TestDisplayWidth(t *testing.T) {
	require.Equal(t, 4, displayWidth("a日b"))
	require.Equal(t, 0, displayWidth(""))
}

func TestSplitGrapheme(t *testing.T) {
	g, rest := splitGrapheme("é!")
	require.Equal(t, "é", g)
	require.Equal(t, "!", rest)

	g, rest = splitGrapheme("")
	require.Empty(t, g)
	require.Empty(t, rest)
}
