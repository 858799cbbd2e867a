// Package log is mdlive's debug log.
//
// Lines look like
//
//	2026-10-17T10:45:00 [WARN] [widget] diagram render failed lang=mermaid error="parse error"
//
// and go to a file chosen by --debug, MDLIVE_DEBUG or log.path. Every line is
// also published on a broker so the editor's log overlay can show it live.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/mdlive/internal/pubsub"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a config level name to a Level. Unknown names are debug.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Category names the subsystem a line came from.
type Category string

const (
	CatSyntax   Category = "syntax"   // parsing and span recovery
	CatDecorate Category = "decorate" // decoration passes, dropped candidates
	CatWidget   Category = "widget"   // math, diagram and image rendering
	CatConfig   Category = "config"
	CatWatcher  Category = "watcher"
	CatUI       Category = "ui"
	CatCache    Category = "cache"
	CatTrace    Category = "trace"
)

type logger struct {
	mu       sync.Mutex
	w        io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
	now      func() time.Time
}

var (
	std  *logger
	once sync.Once
)

func newLogger(w io.Writer, minLevel Level) *logger {
	return &logger{
		w:        w,
		enabled:  true,
		minLevel: minLevel,
		broker:   pubsub.NewBroker[string](),
		now:      time.Now,
	}
}

// Init opens path for appending and makes it the log destination. Only the
// first call has any effect. The returned func closes the file.
func Init(path string) (func(), error) {
	var err error
	once.Do(func() {
		var f *os.File
		f, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // user-chosen log path
		if err != nil {
			return
		}
		std = newLogger(f, LevelDebug)
		std.closer = f
	})
	if err != nil {
		return nil, err
	}
	if std == nil {
		return nil, fmt.Errorf("log: earlier initialization failed")
	}
	l := std
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.closer != nil {
			_ = l.closer.Close()
			l.closer = nil
		}
		l.enabled = false
	}, nil
}

// InitWriter logs to w at or above minLevel, replacing any earlier logger.
func InitWriter(w io.Writer, minLevel Level) {
	std = newLogger(w, minLevel)
}

// SetEnabled turns logging on or off.
func SetEnabled(enabled bool) {
	if l := std; l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel drops lines below level.
func SetMinLevel(level Level) {
	if l := std; l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any)  { write(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any)  { write(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", text))
}

func write(level Level, cat Category, msg string, fields []any) {
	l := std
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		b.WriteByte(' ')
		fmt.Fprint(&b, fields[i])
		b.WriteByte('=')
		if i+1 == len(fields) {
			b.WriteString("<missing>")
			break
		}
		b.WriteString(formatValue(fields[i+1]))
	}
	b.WriteByte('\n')
	entry := b.String()

	if l.w != nil {
		_, _ = io.WriteString(l.w, entry)
	}
	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// formatValue quotes values that would otherwise be ambiguous in a
// space-separated line.
func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// Batch is the overlay's message type: one or more formatted lines.
type Batch = pubsub.Batch[string]

// NewListener subscribes to log lines until ctx is done. It returns nil when
// logging was never initialized.
func NewListener(ctx context.Context) *pubsub.Listener[string] {
	l := std
	if l == nil {
		return nil
	}
	return pubsub.NewListener[string](ctx, l.broker)
}
