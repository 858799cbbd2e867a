package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineAt(t *testing.T) {
	doc := New("# Title\n\nbody text\n")

	tests := []struct {
		name string
		pos  int
		want Line
	}{
		{"start", 0, Line{Number: 1, From: 0, To: 7}},
		{"end of first line", 7, Line{Number: 1, From: 0, To: 7}},
		{"blank line", 8, Line{Number: 2, From: 8, To: 8}},
		{"body", 12, Line{Number: 3, From: 9, To: 18}},
		{"trailing empty line", 19, Line{Number: 4, From: 19, To: 19}},
		{"past end clamps", 500, Line{Number: 4, From: 19, To: 19}},
		{"negative clamps", -3, Line{Number: 1, From: 0, To: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, doc.LineAt(tt.pos))
		})
	}
}

func TestApply(t *testing.T) {
	doc := New("- [ ] task")

	next, err := doc.Apply(Edit{From: 3, To: 4, Insert: "x"})
	require.NoError(t, err)
	require.Equal(t, "- [x] task", next.Text())
	require.Equal(t, uint64(1), next.Revision())

	// Original revision is untouched
	require.Equal(t, "- [ ] task", doc.Text())
	require.Equal(t, uint64(0), doc.Revision())
}

func TestApply_OutOfRange(t *testing.T) {
	doc := New("abc")

	_, err := doc.Apply(Edit{From: 2, To: 9})
	require.Error(t, err)

	_, err = doc.Apply(Edit{From: 2, To: 1})
	require.Error(t, err)
}

func TestSlice_Clamps(t *testing.T) {
	doc := New("hello")
	require.Equal(t, "ell", doc.Slice(1, 4))
	require.Equal(t, "hello", doc.Slice(-5, 50))
	require.Empty(t, doc.Slice(4, 1))
}

func TestEditMapPos(t *testing.T) {
	e := Edit{From: 2, To: 4, Insert: "xyz"}

	require.Equal(t, 1, e.MapPos(1))
	require.Equal(t, 5, e.MapPos(3), "inside replaced range moves to end of insert")
	require.Equal(t, 5, e.MapPos(4))
	require.Equal(t, 7, e.MapPos(6))
}

func TestReplace_AdvancesRevision(t *testing.T) {
	doc := New("a")
	next := doc.Replace("b\nc")
	require.Equal(t, uint64(1), next.Revision())
	require.Equal(t, 2, next.LineCount())
}
