package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []SpanRecord
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec SpanRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestFileExporter_ExportSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	traceID := trace.TraceID{1}
	parent := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{1}})
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	stubs := tracetest.SpanStubs{
		{
			Name:        SpanCompute,
			SpanContext: trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{2}}),
			Parent:      parent,
			StartTime:   start,
			EndTime:     start.Add(1500 * time.Microsecond),
			Attributes:  []attribute.KeyValue{attribute.Int(AttrInstructions, 7), attribute.Bool(AttrFocus, true)},
			Status:      sdktrace.Status{Code: codes.Error, Description: "boom"},
			Events:      []sdktrace.Event{{Name: "dropped", Time: start}},
		},
		{
			Name:      SpanParse,
			StartTime: start,
			EndTime:   start,
		},
	}
	require.NoError(t, exp.ExportSpans(context.Background(), stubs.Snapshots()))
	require.NoError(t, exp.Shutdown(context.Background()))

	recs := readRecords(t, path)
	require.Len(t, recs, 2)

	first := recs[0]
	require.Equal(t, SpanCompute, first.Name)
	require.Equal(t, traceID.String(), first.TraceID)
	require.Equal(t, trace.SpanID{1}.String(), first.ParentID)
	require.InDelta(t, 1.5, first.DurationMs, 0.001)
	require.Equal(t, "ERROR", first.Status)
	require.Equal(t, "boom", first.StatusMsg)
	require.Equal(t, float64(7), first.Attributes[AttrInstructions])
	require.Equal(t, true, first.Attributes[AttrFocus])
	require.Len(t, first.Events, 1)

	second := recs[1]
	require.Empty(t, second.ParentID)
	require.Equal(t, "UNSET", second.Status)
	require.Nil(t, second.Attributes)
}

func TestFileExporter_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"old"}`+"\n"), 0o600))

	exp, err := NewFileExporter(path)
	require.NoError(t, err)
	stub := tracetest.SpanStub{Name: "new"}
	require.NoError(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exp.Shutdown(context.Background()))

	recs := readRecords(t, path)
	require.Len(t, recs, 2)
	require.Equal(t, "old", recs[0].Name)
	require.Equal(t, "new", recs[1].Name)
}

func TestFileExporter_ShutdownTwiceAndExportAfter(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	err = exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.ErrorContains(t, err, "shut down")
}
