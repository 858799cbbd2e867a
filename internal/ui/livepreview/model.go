// Package livepreview is the live-preview Markdown editor. The buffer is shown
// as source text with the decoration set applied: markup away from the
// cursor is hidden or drawn as widgets, and the construct under the cursor
// shows its raw source.
package livepreview

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	bubbleshelp "github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/truncate"
	"go.opentelemetry.io/otel"

	"github.com/zjrosen/mdlive/internal/decorate"
	"github.com/zjrosen/mdlive/internal/document"
	"github.com/zjrosen/mdlive/internal/keys"
	"github.com/zjrosen/mdlive/internal/log"
	"github.com/zjrosen/mdlive/internal/pubsub"
	"github.com/zjrosen/mdlive/internal/syntax"
	"github.com/zjrosen/mdlive/internal/ui/help"
	"github.com/zjrosen/mdlive/internal/ui/logoverlay"
	"github.com/zjrosen/mdlive/internal/ui/markdown"
	"github.com/zjrosen/mdlive/internal/ui/styles"
	"github.com/zjrosen/mdlive/internal/ui/toaster"
	"github.com/zjrosen/mdlive/internal/watcher"
	"github.com/zjrosen/mdlive/internal/widget"
)

var (
	tracer = otel.Tracer("mdlive/livepreview")
	parser = syntax.NewParser()
)

// DefaultCodeStyle is the chroma style used for fenced code.
const DefaultCodeStyle = "monokai"

// Config configures the editor.
type Config struct {
	// Path of the document. A missing file opens an empty buffer that is
	// created on save.
	Path string

	// EngineOptions are passed to decorate.New. The editor installs its own
	// capabilities and renderers after them.
	EngineOptions []decorate.Option

	// Renderers is shared with the engine. Nil creates a default set.
	Renderers *widget.Renderers

	GlamourStyle string

	// Highlight enables chroma highlighting of fenced code in CodeStyle.
	Highlight   bool
	CodeStyle   string
	LineNumbers bool

	AutoReload     bool
	ReloadDebounce time.Duration
}

// host collects what widgets ask of the editor while handling a click.
type host struct {
	edits  []document.Edit
	opened []string
}

func (h *host) dispatch(e document.Edit) {
	h.edits = append(h.edits, e)
}

func (h *host) open(target string) {
	h.opened = append(h.opened, target)
}

// Model is the editor state.
type Model struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
	stop   *sync.Once

	path  string
	doc   *document.Document
	tree  *syntax.Tree
	saved string

	engine    *decorate.Engine
	renderers *widget.Renderers
	host      *host
	set       []decorate.Instruction
	hl        *highlighter

	cursor  int
	goalCol int
	top     int

	focus   bool
	preview bool
	width   int
	height  int

	reading bool
	reader  viewport.Model
	md      *markdown.Renderer

	showHelp  bool
	help      help.Model
	logs      logoverlay.Model
	toast     toaster.Model
	quitArmed bool

	renderEvents *pubsub.Listener[widget.RenderEvent]
	logEvents    *pubsub.Listener[string]
	watcher      *watcher.Watcher
	changes      <-chan struct{}
}

// New opens cfg.Path in a new editor.
func New(cfg Config) (Model, error) {
	if cfg.CodeStyle == "" {
		cfg.CodeStyle = DefaultCodeStyle
	}
	text, err := readDocument(cfg.Path)
	if err != nil {
		return Model{}, err
	}

	renderers := cfg.Renderers
	if renderers == nil {
		renderers = widget.NewRenderers()
	}
	renderers.SetImageRoot(documentDir(cfg.Path))
	h := &host{}
	opts := append(slices.Clone(cfg.EngineOptions),
		decorate.WithRenderers(renderers),
		decorate.WithCapabilities(decorate.Capabilities{Dispatch: h.dispatch, OpenWikiLink: h.open}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
		stop:      &sync.Once{},
		path:      cfg.Path,
		saved:     text,
		engine:    decorate.New(opts...),
		renderers: renderers,
		host:      h,
		goalCol:   -1,
		top:       1,
		focus:     true,
		preview:   true,
		help:      help.New(),
		logs:      logoverlay.New(logoverlay.DefaultLimit),
		toast:     toaster.New(),
	}
	if cfg.Highlight {
		m.hl = newHighlighter(cfg.CodeStyle)
	}
	m.renderEvents = pubsub.NewListener[widget.RenderEvent](ctx, renderers.Events())
	m.logEvents = log.NewListener(ctx)
	if cfg.AutoReload && cfg.Path != "" {
		if err := m.watch(cfg.Path); err != nil {
			log.ErrorErr(log.CatWatcher, "auto reload disabled", err, "path", cfg.Path)
		}
	}
	m.setDocument(document.New(text))
	m.recompute()
	return m, nil
}

// Init starts the event listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.renderEvents.Listen(),
		m.waitForChange(),
		tea.SetWindowTitle(m.title()),
	}
	if m.logEvents != nil {
		cmds = append(cmds, m.logEvents.Listen())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.logs.SetSize(msg.Width, msg.Height)
		if m.reading {
			if err := m.refreshReader(); err != nil {
				log.ErrorErr(log.CatUI, "reading view failed", err)
			}
		}
		m.ensureCursorVisible()
		return m, nil

	case tea.FocusMsg:
		m.focus = true
		m.recompute()
		return m, nil

	case tea.BlurMsg:
		m.focus = false
		m.recompute()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.reading {
			var cmd tea.Cmd
			m.reader, cmd = m.reader.Update(msg)
			return m, cmd
		}
		return m.handleMouse(msg)

	case pubsub.Batch[widget.RenderEvent]:
		for _, ev := range msg {
			if ev.Payload.Err != nil {
				log.Warn(log.CatWidget, "render failed", "widget", ev.Payload.WidgetID, "error", ev.Payload.Err)
			}
		}
		return m, m.renderEvents.Listen()

	case log.Batch:
		for _, ev := range msg {
			m.logs.Append(ev.Payload)
		}
		if m.logEvents == nil {
			return m, nil
		}
		return m, m.logEvents.Listen()

	case fileChangedMsg:
		if msg.path != m.path {
			return m, nil
		}
		return m, tea.Batch(m.readForReload(), m.waitForChange())

	case reloadMsg:
		return m.reload(msg)

	case savedMsg:
		return m.handleSaved(msg)

	case linkOpenedMsg:
		return m.followLink(msg)

	case toaster.DismissMsg:
		m.toast = m.toast.Update(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}
	quitKey := keys.Editor.Quit
	if m.reading {
		quitKey = keys.Reading.Quit
	}
	if !key.Matches(msg, quitKey) {
		m.quitArmed = false
	}
	if m.reading {
		return m.handleReadingKey(msg)
	}
	return m.handleEditorKey(msg)
}

func (m Model) handleReadingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Reading.Back):
		m.reading = false
		m.ensureCursorVisible()
		return m, nil
	case key.Matches(msg, keys.Reading.Quit):
		return m.quit()
	case key.Matches(msg, keys.Editor.Help):
		m.showHelp = true
		return m, nil
	}
	var cmd tea.Cmd
	m.reader, cmd = m.reader.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll(-3)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll(3)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		for _, ins := range m.set {
			c, ok := ins.Widget.(widget.Clickable)
			if !ok || ins.Op != decorate.OpSubstitute {
				continue
			}
			if z := zone.Get(zoneID(ins.From)); z != nil && z.InBounds(msg) {
				log.Debug(log.CatUI, "widget clicked", "widget", ins.Widget.String())
				c.Click()
				return m.drainHost()
			}
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.Dirty() && !m.quitArmed {
		m.quitArmed = true
		return m.notify("unsaved changes, quit again to discard", toaster.StyleWarn)
	}
	m.Close()
	return m, tea.Quit
}

func (m Model) notify(text string, style toaster.Style) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toast, cmd = m.toast.Show(text, style, toaster.DefaultDuration)
	return m, cmd
}

func (m Model) togglePreview() (tea.Model, tea.Cmd) {
	m.preview = !m.preview
	m.recompute()
	if m.preview {
		return m.notify("live preview on", toaster.StyleInfo)
	}
	return m.notify("live preview off", toaster.StyleInfo)
}

// recompute runs the decoration pass for the current state and reconciles
// the result with the mounted set.
func (m *Model) recompute() {
	var next []decorate.Instruction
	if m.preview {
		next = m.engine.ComputeContext(m.ctx, decorate.State{
			Doc:       m.doc,
			Tree:      m.tree,
			Selection: decorate.Cursor(m.cursor),
			Focus:     m.focus,
			Visible:   m.visible(),
		})
	}
	m.set = decorate.Reconcile(m.ctx, m.set, next)
}

// visible is the source the screen can show. Widgets expand lines and
// concealment shrinks them, so twice the screen height is decorated.
func (m Model) visible() []decorate.Range {
	if m.height == 0 {
		return nil
	}
	from := m.doc.Line(m.top).From
	to := m.doc.Line(m.top + 2*m.editorHeight()).To
	return []decorate.Range{{From: from, To: to}}
}

func (m Model) editorHeight() int {
	return max(m.height-1, 1)
}

func (m Model) frame() frame {
	r := renderer{
		doc:         m.doc,
		tree:        m.tree,
		set:         m.set,
		cursor:      m.cursor,
		showCursor:  m.focus,
		width:       m.width,
		lineNumbers: m.cfg.LineNumbers,
		hl:          m.hl,
	}
	return r.render(m.top, m.editorHeight())
}

// ensureCursorVisible scrolls so the cursor line is on screen, then
// recomputes decorations for the new viewport.
func (m *Model) ensureCursorVisible() {
	line := m.doc.LineAt(m.cursor).Number
	if line < m.top {
		m.top = line
	}
	if lo := line - 2*m.editorHeight(); m.top < lo {
		m.top = lo
	}
	m.recompute()
	if m.height == 0 {
		return
	}
	for m.top < line {
		f := m.frame()
		if f.cursorRow >= 0 || line < f.lastLine || (!m.focus && line == f.lastLine) {
			return
		}
		m.top++
		m.recompute()
	}
}

func (m *Model) scroll(delta int) {
	m.top = min(max(m.top+delta, 1), m.doc.LineCount())
	m.recompute()
}

// View renders the editor.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var body string
	if m.reading {
		body = m.reader.View()
	} else {
		rows := m.frame().rows
		for len(rows) < m.editorHeight() {
			rows = append(rows, "")
		}
		body = strings.Join(rows, "\n")
	}
	out := body + "\n" + m.statusBar()

	if m.showHelp {
		out = m.help.Overlay(out)
	}
	out = m.logs.Overlay(out)
	out = m.toast.Overlay(out, m.width, m.height)
	return zone.Scan(out)
}

func (m Model) statusBar() string {
	name := "[scratch]"
	if m.path != "" {
		name = filepath.Base(m.path)
	}
	if m.Dirty() {
		name += " [+]"
	}

	mode := "live"
	switch {
	case m.reading:
		mode = "reading"
	case !m.preview:
		mode = "source"
	}
	if !m.focus {
		mode += " (unfocused)"
	}

	line := m.doc.LineAt(m.cursor)
	pos := fmt.Sprintf("%d:%d", line.Number, displayWidth(m.doc.Slice(line.From, m.cursor))+1)

	bindings := keys.Editor.ShortHelp()
	if m.reading {
		bindings = keys.Reading.ShortHelp()
	}
	hints := bubbleshelp.New().ShortHelpView(bindings)

	avail := max(m.width-2, 0)
	left := strings.Join([]string{name, mode, pos}, "  ")
	bar := left
	if gap := avail - lipgloss.Width(left) - lipgloss.Width(hints); gap >= 2 {
		bar = left + strings.Repeat(" ", gap) + hints
	}
	return styles.StatusBarStyle.Render(truncate.StringWithTail(bar, uint(avail), "…"))
}

func (m Model) title() string {
	if m.path == "" {
		return "mdlive"
	}
	return "mdlive - " + filepath.Base(m.path)
}

// Close unmounts widgets and stops background work. It is safe to call more
// than once.
func (m Model) Close() {
	m.stop.Do(func() {
		decorate.DestroyAll(m.set)
		if m.watcher != nil {
			if err := m.watcher.Stop(); err != nil {
				log.ErrorErr(log.CatWatcher, "stopping watcher", err)
			}
		}
		m.cancel()
	})
}

// Text returns the buffer contents.
func (m Model) Text() string {
	return m.doc.Text()
}

// Cursor returns the cursor byte offset.
func (m Model) Cursor() int {
	return m.cursor
}

// Path returns the open document's path.
func (m Model) Path() string {
	return m.path
}

// Dirty reports whether the buffer differs from the file on disk.
func (m Model) Dirty() bool {
	return m.doc.Text() != m.saved
}

// Decorations returns the mounted decoration set.
func (m Model) Decorations() []decorate.Instruction {
	return m.set
}
