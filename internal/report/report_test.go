package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/filmcorr-cli/internal/clean"
	"github.com/KaramelBytes/filmcorr-cli/internal/corr"
	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
	"github.com/KaramelBytes/filmcorr-cli/internal/pipeline"
)

func result() *pipeline.Result {
	head := frame.MustNew([]string{"name", "budget"}, [][]frame.Value{
		{frame.Text("Alien"), frame.Int(11000000)},
		{frame.Text("Heat"), frame.Int(60000000)},
	})
	m := &corr.Matrix{Columns: []string{"budget", "gross"}, Values: [][]float64{{1, 0.74}, {0.74, 1}}}
	return &pipeline.Result{
		Input:        "movies.csv",
		RowsInFile:   7668,
		RowsLoaded:   7668,
		RowsComplete: 5436,
		Head:         head,
		Missing:      []clean.ColumnMissing{{Column: "budget", Ratio: 0.25}, {Column: "name", Ratio: 0}},
		DtypesBefore: []frame.Column{{Name: "budget", Dtype: frame.Float64}},
		DtypesAfter:  []frame.Column{{Name: "budget", Dtype: frame.Int64}},
		Derived:      head,
		Sorted:       head,
		Companies:    []frame.Value{frame.Text("Warner Bros."), frame.Text("Fox")},
		Numeric:      m,
		Encoded:      &corr.Matrix{Columns: []string{"k"}, Values: [][]float64{{math.NaN()}}},
		Threshold:    0.5,
		HighPairs:    corr.FlattenAndFilter(m, 0.5),
		Rejections:   []clean.Rejection{{Label: 3, Column: "released", Value: frame.Text("TBD"), Err: errors.New("no year")}},
		Artifacts:    []string{"/tmp/run/budget_vs_gross.png"},
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Build(result()).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"Rows: 7,668",
		"Complete rows: 5,436",
		"[MISSING DATA]",
		"budget - 25%",
		"name - 0%",
		"[DTYPES]",
		"| budget | float64 | int64 |",
		"[AFTER YEAR DERIVATION]",
		"[COMPANIES]",
		"- Warner Bros.",
		"[CORRELATION MATRIX (NUMERIC)]",
		"0.74",
		"NaN",
		"[HIGH CORRELATION PAIRS (r > 0.5)]",
		"| budget | gross | 0.740000 |",
		"[NOTES]",
		`row 3 released="TBD": no year`,
		"Wrote /tmp/run/budget_vs_gross.png",
	} {
		assert.Contains(t, md, want)
	}
	assert.Less(t, strings.Index(md, "[MISSING DATA]"), strings.Index(md, "[DTYPES]"))
}

func TestTextRendersTables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Build(result()).Text(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "DATASET SUMMARY\n")
	assert.Contains(t, out, "╭")
	assert.NotContains(t, out, "\x1b[")

	buf.Reset()
	require.NoError(t, Build(result()).Text(&buf, true))
	assert.Contains(t, buf.String(), "DATASET SUMMARY")
}

func TestCorrelateOnlyResultSkipsCleaningSections(t *testing.T) {
	res := &pipeline.Result{
		Input:   "movies.csv",
		Numeric: &corr.Matrix{Columns: []string{"a"}, Values: [][]float64{{1}}},
	}
	md := Build(res).Markdown()
	assert.NotContains(t, md, "[DTYPES]")
	assert.NotContains(t, md, "[COMPANIES]")
	assert.Contains(t, md, "(none)")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 60)
	assert.Len(t, []rune(truncate(long)), maxCell)
	assert.Equal(t, "a/b c", safeVal("a|b\nc"))
}

func TestShouldColorizeBuffer(t *testing.T) {
	assert.False(t, ShouldColorize(&bytes.Buffer{}))
}

func TestGridRender(t *testing.T) {
	g := Grid{
		Headers: []string{"id", "rows"},
		Rows:    [][]string{{"abc", "1,234"}, {"d"}},
		Aligns:  []Align{AlignLeft, AlignRight},
	}
	out := g.Render()
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "abc")
	assert.Empty(t, (&Grid{}).Render())
}
