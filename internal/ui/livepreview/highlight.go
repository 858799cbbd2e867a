package livepreview

import (
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// token is a styled byte range within one line. Tokens are non-overlapping
// and sorted by start; gaps render unstyled.
type token struct {
	start int
	end   int
	style lipgloss.Style
}

// highlighter tokenizes fenced code lines with chroma. Each line is lexed on
// its own, so constructs spanning lines (block comments, raw strings) are
// only approximated.
type highlighter struct {
	style *chroma.Style

	mu    sync.Mutex
	cache map[string][]token
}

func newHighlighter(styleName string) *highlighter {
	style := chromastyles.Get(styleName)
	if style == nil {
		style = chromastyles.Fallback
	}
	return &highlighter{style: style, cache: make(map[string][]token)}
}

// tokenize returns tokens for line in the given language, or nil when the
// language is unknown.
func (h *highlighter) tokenize(lang, line string) []token {
	if h == nil || lang == "" || line == "" {
		return nil
	}
	key := lang + "\x00" + line

	h.mu.Lock()
	defer h.mu.Unlock()
	if toks, ok := h.cache[key]; ok {
		return toks
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		h.cache[key] = nil
		return nil
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, line)
	if err != nil {
		h.cache[key] = nil
		return nil
	}

	var toks []token
	offset := 0
	for _, t := range it.Tokens() {
		start := offset
		offset += len(t.Value)
		end := min(offset, len(line))
		if start >= end {
			continue
		}
		entry := h.style.Get(t.Type)
		if !entry.Colour.IsSet() && entry.Bold != chroma.Yes && entry.Italic != chroma.Yes {
			continue
		}
		s := lipgloss.NewStyle()
		if entry.Colour.IsSet() {
			s = s.Foreground(lipgloss.Color(entry.Colour.String()))
		}
		if entry.Bold == chroma.Yes {
			s = s.Bold(true)
		}
		if entry.Italic == chroma.Yes {
			s = s.Italic(true)
		}
		toks = append(toks, token{start: start, end: end, style: s})
	}
	if len(h.cache) > 4096 {
		h.cache = make(map[string][]token)
	}
	h.cache[key] = toks
	return toks
}
