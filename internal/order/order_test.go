package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

func TestUniqueSortedDescending(t *testing.T) {
	tbl := frame.MustNew([]string{"company"}, [][]frame.Value{
		{frame.Text("A")}, {frame.Text("C")}, {frame.Text("B")}, {frame.Text("A")},
	})
	got, err := UniqueSorted(tbl, "company")
	require.NoError(t, err)
	assert.Equal(t, []frame.Value{frame.Text("C"), frame.Text("B"), frame.Text("A")}, got)
	assert.Equal(t, 4, tbl.Len(), "read-only")
}

func TestSortByDescendingIsStableWithNullsLast(t *testing.T) {
	tbl := frame.MustNew([]string{"name", "gross"}, [][]frame.Value{
		{frame.Text("a"), frame.Int(10)},
		{frame.Text("b"), frame.Null()},
		{frame.Text("c"), frame.Float(30)},
		{frame.Text("d"), frame.Int(10)},
		{frame.Text("e"), frame.Int(20)},
	})
	out, err := SortByDescending(tbl, "gross")
	require.NoError(t, err)
	var names []string
	for i := 0; i < out.Len(); i++ {
		names = append(names, out.Cell(i, 0).String())
	}
	assert.Equal(t, []string{"c", "e", "a", "d", "b"}, names)
	assert.Equal(t, 2, out.Label(0))
	assert.Equal(t, 1, out.Label(4))
}

func TestSortByDescendingText(t *testing.T) {
	tbl := frame.MustNew([]string{"k"}, [][]frame.Value{{frame.Text("x")}, {frame.Int(3)}, {frame.Text("z")}})
	out, err := SortByDescending(tbl, "k")
	require.NoError(t, err)
	assert.Equal(t, frame.Text("z"), out.Cell(0, 0))
	assert.Equal(t, frame.Int(3), out.Cell(2, 0), "numbers sort before text, so last when descending")
}

func TestSortMissingColumn(t *testing.T) {
	_, err := SortByDescending(frame.MustNew([]string{"a"}, nil), "gross")
	assert.Error(t, err)
	_, err = UniqueSorted(frame.MustNew([]string{"a"}, nil), "gross")
	assert.Error(t, err)
}
