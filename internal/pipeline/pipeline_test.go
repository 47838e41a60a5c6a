package pipeline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/filmcorr-cli/internal/chart"
	"github.com/KaramelBytes/filmcorr-cli/internal/clean"
	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

const moviesCSV = `name,rating,genre,year,released,score,votes,budget,gross,company,runtime
The Shining,R,Drama,1980,"June 13, 1980 (United States)",8.4,927000,19000000.0,46998772.0,Warner Bros.,146.0
The Blue Lagoon,R,Adventure,1980,"July 2, 1980 (United States)",5.8,65000,4500000.0,58853106.0,Columbia Pictures,104.0
Star Wars: Episode V,PG,Action,1980,"June 20, 1980 (United States)",8.7,1200000,18000000.0,538375067.0,Lucasfilm,124.0
Airplane!,PG,Comedy,1980,"July 2, 1980 (United States)",7.7,221000,3500000.0,83453539.0,Paramount Pictures,88.0
Caddyshack,R,Comedy,1980,"July 25, 1980 (United States)",7.3,108000,6000000.0,39846344.0,Orion Pictures,98.0
Friday the 13th,R,Horror,1980,"May 9, 1980 (United States)",6.4,123000,550000.0,39754601.0,Paramount Pictures,95.0
The Final Countdown,PG,Action,1980,,6.7,32000,,,The Bryna Company,103.0
`

type fakeRenderer struct {
	calls []string
	fail  string
}

func (f *fakeRenderer) draw(kind, name string) (string, error) {
	f.calls = append(f.calls, kind+":"+name)
	if kind == f.fail {
		return "", errors.New("boom")
	}
	return name + ".png", nil
}

func (f *fakeRenderer) Scatter(s chart.XYSpec) (string, error)    { return f.draw("scatter", s.Name) }
func (f *fakeRenderer) Regression(s chart.XYSpec) (string, error) { return f.draw("regression", s.Name) }
func (f *fakeRenderer) Heatmap(s chart.HeatmapSpec) (string, error) {
	if len(s.Labels) != len(s.Values) {
		return "", errors.New("ragged heatmap")
	}
	return f.draw("heatmap", s.Name)
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestAnalyzeRunsStepsInOrder(t *testing.T) {
	fr := &fakeRenderer{}
	res, err := Run(context.Background(), DefaultOptions(writeCSV(t, moviesCSV)), fr, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, res.RowsLoaded)
	assert.Equal(t, 6, res.RowsComplete)
	assert.Equal(t, 6, res.RowsKept())
	assert.Equal(t, 5, res.Head.Len())

	var budgetMissing float64
	for _, m := range res.Missing {
		if m.Column == "budget" {
			budgetMissing = m.Ratio
		}
	}
	assert.InDelta(t, 1.0/7, budgetMissing, 1e-12)

	dtype := func(cols []frame.Column, name string) frame.Dtype {
		for _, c := range cols {
			if c.Name == name {
				return c.Dtype
			}
		}
		return ""
	}
	assert.Equal(t, frame.Float64, dtype(res.DtypesBefore, "budget"))
	assert.Equal(t, frame.Int64, dtype(res.DtypesAfter, "budget"))
	assert.Equal(t, frame.Int64, dtype(res.DtypesAfter, "gross"))

	years, err := res.Sorted.Values("yearcorrect")
	require.NoError(t, err)
	for _, y := range years {
		assert.Equal(t, frame.Int(1980), y)
	}
	gross, _ := res.Sorted.Values("gross")
	assert.Equal(t, frame.Int(538375067), gross[0])
	assert.Equal(t, 2, res.Sorted.Label(0))

	require.NotEmpty(t, res.Companies)
	assert.Equal(t, frame.Text("Warner Bros."), res.Companies[0])
	assert.Len(t, res.Companies, 5)

	assert.Equal(t, []string{
		"scatter:budget_vs_gross",
		"regression:budget_vs_gross_regression",
		"heatmap:correlation_numeric",
		"heatmap:correlation_encoded",
	}, fr.calls)
	assert.Len(t, res.Artifacts, 4)

	require.NotNil(t, res.Encoded)
	assert.Contains(t, res.Encoded.Columns, "company")
	assert.NotContains(t, res.Numeric.Columns, "company")
	for i, p := range res.HighPairs {
		assert.Greater(t, p.R, 0.5)
		if i > 0 {
			assert.LessOrEqual(t, res.HighPairs[i-1].R, p.R)
		}
	}
}

func TestAnalyzeMissingColumn(t *testing.T) {
	_, err := Run(context.Background(), DefaultOptions(writeCSV(t, "name,budget\nA,1\n")), nil, nil)
	var cnf *frame.ColumnNotFoundError
	require.True(t, errors.As(err, &cnf), "err = %v", err)
	assert.Equal(t, "gross", cnf.Column)
}

func TestAnalyzeAbortsOnBadYearUnlessSkipping(t *testing.T) {
	body := strings.Replace(moviesCSV, `"May 9, 1980 (United States)"`, "TBD", 1)
	path := writeCSV(t, body)

	_, err := Run(context.Background(), DefaultOptions(path), nil, nil)
	var ee *frame.ExtractionError
	require.True(t, errors.As(err, &ee), "err = %v", err)

	opts := DefaultOptions(path)
	opts.Policy = clean.PolicySkip
	res, err := Run(context.Background(), opts, nil, nil)
	require.NoError(t, err)
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, 5, res.Rejections[0].Label)
	assert.Equal(t, 5, res.RowsKept())
}

func TestAnalyzeRendererFailure(t *testing.T) {
	_, err := Run(context.Background(), DefaultOptions(writeCSV(t, moviesCSV)), &fakeRenderer{fail: "heatmap"}, nil)
	assert.ErrorContains(t, err, "render chart")
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, DefaultOptions(writeCSV(t, moviesCSV)), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCorrelateOnly(t *testing.T) {
	opts := DefaultOptions(writeCSV(t, moviesCSV))
	opts.Encode = false
	opts.Dedupe = true
	res, err := New(nil, nil).Correlate(context.Background(), opts)
	require.NoError(t, err)
	assert.Nil(t, res.Encoded)
	r, ok := res.Numeric.At("budget", "gross")
	require.True(t, ok)
	assert.False(t, math.IsNaN(r), "complete pairs should give a number")
	for _, p := range res.HighPairs {
		assert.NotEqual(t, p.A, p.B)
	}
}

func TestAnalyzeDropsNaNSpelledScores(t *testing.T) {
	body := strings.Replace(moviesCSV, ",8.4,927000,", ",NAN,927000,", 1)
	res, err := Run(context.Background(), DefaultOptions(writeCSV(t, body)), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, res.RowsKept())
	r, ok := res.Numeric.At("score", "votes")
	require.True(t, ok)
	assert.False(t, math.IsNaN(r))
}
