// Package pipeline runs the movie analysis end to end: load, clean, derive the
// release year, sort, chart and correlate, in that order.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/filmcorr-cli/internal/chart"
	"github.com/KaramelBytes/filmcorr-cli/internal/clean"
	"github.com/KaramelBytes/filmcorr-cli/internal/corr"
	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
	"github.com/KaramelBytes/filmcorr-cli/internal/loader"
	"github.com/KaramelBytes/filmcorr-cli/internal/order"
)

// Columns names the columns the analysis depends on.
type Columns struct {
	Budget   string
	Gross    string
	Released string
	Company  string
	Year     string
}

// DefaultColumns matches the public movie dataset.
func DefaultColumns() Columns {
	return Columns{Budget: "budget", Gross: "gross", Released: "released", Company: "company", Year: "yearcorrect"}
}

// Options controls a run.
type Options struct {
	Input      string
	Load       loader.Options
	Columns    Columns
	Policy     clean.Policy
	Threshold  float64
	SampleRows int
	// Encode adds the categorical-code correlation pass.
	Encode bool
	// Dedupe drops self and mirrored pairs from HighPairs.
	Dedupe bool
}

// DefaultOptions returns the options of the reference analysis.
func DefaultOptions(input string) Options {
	return Options{
		Input:      input,
		Load:       loader.DefaultOptions(),
		Columns:    DefaultColumns(),
		Policy:     clean.PolicyAbort,
		Threshold:  0.5,
		SampleRows: 5,
		Encode:     true,
	}
}

// Result collects what each step produced.
type Result struct {
	Input      string
	StartedAt  time.Time
	Duration   time.Duration
	RowsInFile int
	Truncated  bool

	Head    *frame.Table
	Missing []clean.ColumnMissing

	RowsLoaded   int
	RowsComplete int
	DtypesBefore []frame.Column
	DtypesAfter  []frame.Column
	Rejections   []clean.Rejection

	Derived   *frame.Table
	Sorted    *frame.Table
	Companies []frame.Value

	Numeric   *corr.Matrix
	Encoded   *corr.Matrix
	Encodings map[string]corr.Encoding
	Threshold float64
	HighPairs []corr.Pair

	Artifacts []string
}

// RowsKept is the row count after cleaning and derivation.
func (r *Result) RowsKept() int {
	if r.Sorted == nil {
		return 0
	}
	return r.Sorted.Len()
}

// Runner executes the steps against a renderer.
type Runner struct {
	Renderer chart.Renderer
	Logger   *zap.Logger
}

// New returns a Runner. A nil renderer draws nothing and a nil logger discards output.
func New(renderer chart.Renderer, logger *zap.Logger) *Runner {
	if renderer == nil {
		renderer = chart.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Renderer: renderer, Logger: logger}
}

// Run loads opts.Input and performs the full analysis.
func Run(ctx context.Context, opts Options, renderer chart.Renderer, logger *zap.Logger) (*Result, error) {
	return New(renderer, logger).Analyze(ctx, opts)
}

func (r *Runner) load(opts Options, res *Result) (*frame.Table, error) {
	lr, err := loader.Load(opts.Input, opts.Load)
	if err != nil {
		return nil, err
	}
	res.RowsInFile = lr.Rows
	res.Truncated = lr.Truncated()
	res.RowsLoaded = lr.Table.Len()
	r.Logger.Info("loaded dataset",
		zap.String("input", opts.Input),
		zap.Int("rows", lr.Table.Len()),
		zap.Int("columns", lr.Table.Width()),
		zap.Bool("truncated", res.Truncated))
	return lr.Table, nil
}

func sampleRows(opts Options) int {
	if opts.SampleRows <= 0 {
		return 5
	}
	return opts.SampleRows
}

// Analyze runs every step in order and stops at the first failure.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{Input: opts.Input, StartedAt: time.Now(), Threshold: opts.Threshold}
	defer func() { res.Duration = time.Since(res.StartedAt) }()
	cols := opts.Columns

	t, err := r.load(opts, res)
	if err != nil {
		return nil, err
	}
	if err := t.Require(cols.Budget, cols.Gross, cols.Released, cols.Company); err != nil {
		return nil, err
	}
	n := sampleRows(opts)
	res.Head = t.Head(n)
	res.Missing = clean.MissingReport(t)

	t = clean.DropIncompleteRows(t)
	res.RowsComplete = t.Len()
	res.DtypesBefore = t.Schema()
	r.Logger.Debug("dropped incomplete rows", zap.Int("kept", t.Len()), zap.Int("dropped", res.RowsLoaded-t.Len()))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cl := clean.New(opts.Policy, r.Logger)
	for _, c := range []string{cols.Budget, cols.Gross} {
		var rej []clean.Rejection
		t, rej, err = cl.CoerceInt64(t, c)
		if err != nil {
			return nil, fmt.Errorf("coerce %s: %w", c, err)
		}
		res.Rejections = append(res.Rejections, rej...)
	}
	res.DtypesAfter = t.Schema()

	var rej []clean.Rejection
	t, rej, err = cl.DeriveYear(t, cols.Released, cols.Year)
	if err != nil {
		return nil, fmt.Errorf("derive %s: %w", cols.Year, err)
	}
	res.Rejections = append(res.Rejections, rej...)
	res.Derived = t.Head(n)

	t, err = order.SortByDescending(t, cols.Gross)
	if err != nil {
		return nil, err
	}
	res.Sorted = t
	res.Companies, err = order.UniqueSorted(t, cols.Company)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.plotBudgetGross(t, cols, res); err != nil {
		return nil, err
	}
	if err := r.correlate(ctx, t, opts, res); err != nil {
		return nil, err
	}
	r.Logger.Info("analysis complete",
		zap.Int("rows_kept", t.Len()),
		zap.Int("rejected", len(res.Rejections)),
		zap.Int("high_pairs", len(res.HighPairs)),
		zap.Int("artifacts", len(res.Artifacts)))
	return res, nil
}

// Correlate loads opts.Input and computes only the correlation steps. Rows
// are not cleaned, so nulls are skipped pairwise.
func (r *Runner) Correlate(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{Input: opts.Input, StartedAt: time.Now(), Threshold: opts.Threshold}
	defer func() { res.Duration = time.Since(res.StartedAt) }()
	t, err := r.load(opts, res)
	if err != nil {
		return nil, err
	}
	res.Head = t.Head(sampleRows(opts))
	res.Missing = clean.MissingReport(t)
	res.DtypesBefore = t.Schema()
	if err := r.correlate(ctx, t, opts, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) plotBudgetGross(t *frame.Table, cols Columns, res *Result) error {
	if t.Len() == 0 {
		r.Logger.Warn("no rows left to plot", zap.String("x", cols.Budget), zap.String("y", cols.Gross))
		return nil
	}
	x, err := t.Floats(cols.Budget)
	if err != nil {
		return err
	}
	y, err := t.Floats(cols.Gross)
	if err != nil {
		return err
	}
	scatter := chart.XYSpec{
		Name:   "budget_vs_gross",
		Title:  "Budget vs Gross Earnings",
		XLabel: "Budget for Film",
		YLabel: "Gross Earnings",
		X:      x,
		Y:      y,
	}
	path, err := r.Renderer.Scatter(scatter)
	if err := r.record(res, path, err); err != nil {
		return err
	}
	reg := scatter
	reg.Name = "budget_vs_gross_regression"
	reg.XLabel, reg.YLabel = cols.Budget, cols.Gross
	path, err = r.Renderer.Regression(reg)
	return r.record(res, path, err)
}

func (r *Runner) correlate(ctx context.Context, t *frame.Table, opts Options, res *Result) error {
	m, err := corr.CorrelationMatrix(t, corr.NumericColumns(t))
	if err != nil {
		return err
	}
	res.Numeric = m
	if err := r.heatmap(res, "correlation_numeric", m); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	final := m
	if opts.Encode {
		enc, encodings := corr.EncodeCategoricals(t)
		res.Encodings = encodings
		em, err := corr.CorrelationMatrix(enc, corr.NumericColumns(enc))
		if err != nil {
			return err
		}
		res.Encoded = em
		if err := r.heatmap(res, "correlation_encoded", em); err != nil {
			return err
		}
		final = em
	}

	pairs := corr.FlattenAndFilter(final, opts.Threshold)
	if opts.Dedupe {
		pairs = corr.Distinct(pairs)
	}
	res.HighPairs = pairs
	return nil
}

func (r *Runner) heatmap(res *Result, name string, m *corr.Matrix) error {
	if len(m.Columns) == 0 {
		r.Logger.Warn("no numeric columns to correlate", zap.String("chart", name))
		return nil
	}
	path, err := r.Renderer.Heatmap(chart.HeatmapSpec{
		Name:   name,
		Title:  "Correlation Matrix for Numeric Features",
		XLabel: "Movie Features",
		YLabel: "Movie Features",
		Labels: m.Columns,
		Values: m.Values,
	})
	return r.record(res, path, err)
}

// record appends a written chart path to the result.
func (r *Runner) record(res *Result, path string, err error) error {
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if path != "" {
		r.Logger.Debug("wrote chart", zap.String("path", path))
		res.Artifacts = append(res.Artifacts, path)
	}
	return nil
}
