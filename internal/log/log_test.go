package log

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)

	Debug(CatDecorate, "dropped candidate", "from", 3, "to", 7)
	ErrorErr(CatWidget, "math render failed", errors.New("unbalanced braces"), "src", `\frac{a`)
	Info(CatUI, "odd", "orphan")

	out := buf.String()
	require.Contains(t, out, "[DEBUG] [decorate] dropped candidate from=3 to=7")
	require.Contains(t, out, `[ERROR] [widget] math render failed src=\frac{a error="unbalanced braces"`)
	require.Contains(t, out, "[INFO] [ui] odd orphan=<missing>")
}

func TestLog_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelWarn)

	Debug(CatSyntax, "hidden")
	Info(CatSyntax, "hidden")
	Warn(CatSyntax, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[WARN] [syntax] shown")
}

func TestLog_Disabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	SetEnabled(false)
	defer SetEnabled(true)

	Error(CatConfig, "nothing")
	require.Empty(t, buf.String())
}

func TestLog_Listener(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := NewListener(ctx)
	require.NotNil(t, listener)

	done := make(chan any, 1)
	go func() { done <- listener.Listen()() }()

	// Give the listener goroutine time to block on the channel
	time.Sleep(10 * time.Millisecond)
	Warn(CatCache, "evicted", "key", "k1")

	select {
	case msg := <-done:
		batch, ok := msg.(Batch)
		require.True(t, ok)
		require.Contains(t, batch.Last().Payload, "evicted key=k1")
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel("info"))
	require.Equal(t, LevelWarn, ParseLevel("WARN"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelDebug, ParseLevel(""))
	require.Equal(t, LevelDebug, ParseLevel("verbose"))
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "UNKNOWN", Level(9).String())
	require.Equal(t, "UNKNOWN", Level(-1).String())
}

func TestFormatValue(t *testing.T) {
	require.Equal(t, "42", formatValue(42))
	require.Equal(t, "mermaid", formatValue("mermaid"))
	require.Equal(t, `""`, formatValue(""))
	require.Equal(t, `"a b"`, formatValue("a b"))
	require.Equal(t, `"k=v"`, formatValue("k=v"))
}

func TestInit_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdlive.log")
	closeLog, err := Init(path)
	require.NoError(t, err)
	std.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	Info(CatWatcher, "file changed", "path", "notes.md")
	closeLog()
	Info(CatWatcher, "after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "2024-05-06T07:08:09 [INFO] [watcher] file changed path=notes.md\n", string(data))
}

func TestNewListener_Uninitialized(t *testing.T) {
	saved := std
	std = nil
	defer func() { std = saved }()

	require.Nil(t, NewListener(context.Background()))
	require.NotPanics(t, func() { Info(CatUI, "dropped") })
}
