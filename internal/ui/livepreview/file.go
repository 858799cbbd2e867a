package livepreview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/mdlive/internal/decorate"
	"github.com/zjrosen/mdlive/internal/document"
	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/tracing"
	"github.com/zjrosen/mdlive/internal/ui/markdown"
	"github.com/zjrosen/mdlive/internal/ui/toaster"
	"github.com/zjrosen/mdlive/internal/watcher"
)

var errNoPath = errors.New("buffer has no file name")

type (
	fileChangedMsg struct{ path string }
	reloadMsg      struct {
		path string
		text string
		err  error
	}
	savedMsg struct {
		path string
		text string
		err  error
	}
	linkOpenedMsg struct {
		target string
		path   string
		text   string
		err    error
	}
)

// documentDir is the folder relative image paths resolve against. A scratch
// buffer uses the working directory.
func documentDir(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

func readDocument(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func (m *Model) watch(path string) error {
	cfg := watcher.DefaultConfig(path)
	if m.cfg.ReloadDebounce > 0 {
		cfg.Debounce = m.cfg.ReloadDebounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	ch, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return err
	}
	m.watcher, m.changes = w, ch
	return nil
}

func (m *Model) unwatch() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Stop(); err != nil {
		log.ErrorErr(log.CatWatcher, "stopping watcher", err)
	}
	m.watcher, m.changes = nil, nil
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ctx, ch, path := m.ctx, m.changes, m.path
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return fileChangedMsg{path: path}
		}
	}
}

func (m Model) readForReload() tea.Cmd {
	path := m.path
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return reloadMsg{path: path, text: string(data), err: err}
	}
}

// reload replaces the buffer with the file's new contents. Unsaved edits are
// never discarded; the user is told instead.
func (m Model) reload(msg reloadMsg) (tea.Model, tea.Cmd) {
	if msg.path != m.path {
		return m, nil
	}
	if msg.err != nil {
		log.ErrorErr(log.CatWatcher, "reload failed", msg.err, "path", msg.path)
		return m, nil
	}
	if msg.text == m.doc.Text() {
		m.saved = msg.text
		return m, nil
	}
	if m.Dirty() {
		log.Warn(log.CatWatcher, "file changed with unsaved edits", "path", msg.path)
		return m.notify("file changed on disk, save to overwrite", toaster.StyleWarn)
	}

	_, span := tracer.Start(m.ctx, tracing.SpanReload)
	defer span.End()

	m.cursor = remapCursor(m.doc.Text(), msg.text, m.cursor)
	m.setDocument(m.doc.Replace(msg.text))
	m.saved = msg.text
	m.ensureCursorVisible()

	span.SetAttributes(
		attribute.String(tracing.AttrReloadStrategy, "diff"),
		attribute.Int64(tracing.AttrRevision, int64(m.doc.Revision())),
		attribute.Int(tracing.AttrSourceBytes, m.doc.Len()),
	)
	log.Info(log.CatWatcher, "reloaded", "path", msg.path, "bytes", m.doc.Len())
	return m.notify("reloaded from disk", toaster.StyleInfo)
}

// remapCursor carries a position in before over to after by diffing the
// two texts.
func remapCursor(before, after string, pos int) int {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	return min(max(dmp.DiffXIndex(diffs, pos), 0), len(after))
}

func (m Model) save() tea.Cmd {
	path, text := m.path, m.doc.Text()
	return func() tea.Msg {
		if path == "" {
			return savedMsg{err: errNoPath}
		}
		mode := os.FileMode(0o644)
		if info, err := os.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
		err := os.WriteFile(path, []byte(text), mode)
		return savedMsg{path: path, text: text, err: err}
	}
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.ErrorErr(log.CatUI, "save failed", msg.err, "path", msg.path)
		return m.notify("save failed: "+msg.err.Error(), toaster.StyleError)
	}
	if msg.path == m.path {
		m.saved = msg.text
	}
	log.Info(log.CatUI, "saved", "path", msg.path, "bytes", len(msg.text))
	return m.notify("saved "+filepath.Base(msg.path), toaster.StyleSuccess)
}

// resolveLink maps a wiki link target to a file next to the current
// document. Targets without an extension get ".md"; a heading anchor is
// ignored.
func resolveLink(from, target string) string {
	name, _, _ := strings.Cut(target, "#")
	name = strings.TrimSpace(name)
	if filepath.Ext(name) == "" {
		name += ".md"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(from), name)
}

func (m Model) openLink(target string) tea.Cmd {
	path := resolveLink(m.path, target)
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return linkOpenedMsg{target: target, path: path, text: string(data), err: err}
	}
}

func (m Model) followLink(msg linkOpenedMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, os.ErrNotExist):
		return m.notify("no page "+msg.target, toaster.StyleWarn)
	case msg.err != nil:
		log.ErrorErr(log.CatUI, "opening link", msg.err, "path", msg.path)
		return m.notify(msg.err.Error(), toaster.StyleError)
	case m.Dirty():
		return m.notify("save before following links", toaster.StyleWarn)
	}

	decorate.DestroyAll(m.set)
	m.set = nil
	m.unwatch()
	m.path = msg.path
	m.renderers.SetImageRoot(documentDir(msg.path))
	m.saved = msg.text
	m.cursor, m.top, m.goalCol = 0, 1, -1
	m.setDocument(document.New(msg.text))
	if m.cfg.AutoReload {
		if err := m.watch(msg.path); err != nil {
			log.ErrorErr(log.CatWatcher, "auto reload disabled", err, "path", msg.path)
		}
	}
	m.ensureCursorVisible()
	log.Info(log.CatUI, "opened", "path", msg.path)

	m, cmd := m.notify("opened "+msg.target, toaster.StyleInfo)
	return m, tea.Batch(cmd, m.waitForChange(), tea.SetWindowTitle(m.title()))
}

func (m Model) enterReading() (tea.Model, tea.Cmd) {
	if err := m.refreshReader(); err != nil {
		log.ErrorErr(log.CatUI, "reading view failed", err)
		return m.notify(err.Error(), toaster.StyleError)
	}
	m.reading = true
	return m, nil
}

// refreshReader renders the whole buffer with glamour into the reading
// viewport.
func (m *Model) refreshReader() error {
	width := max(m.width, 20)
	if m.md == nil || m.md.Width() != width {
		md, err := markdown.New(width, m.cfg.GlamourStyle, m.engine)
		if err != nil {
			return err
		}
		m.md = md
	}
	out, err := m.md.Render(m.ctx, m.doc.Text())
	if err != nil {
		return err
	}
	m.reader = viewport.New(width, m.editorHeight())
	m.reader.SetContent(out)
	return nil
}
