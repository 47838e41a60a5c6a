package cmd

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/filmcorr-cli/internal/chart"
	"github.com/KaramelBytes/filmcorr-cli/internal/clean"
	"github.com/KaramelBytes/filmcorr-cli/internal/corr"
	"github.com/KaramelBytes/filmcorr-cli/internal/loader"
	"github.com/KaramelBytes/filmcorr-cli/internal/logging"
	"github.com/KaramelBytes/filmcorr-cli/internal/pipeline"
	"github.com/KaramelBytes/filmcorr-cli/internal/report"
	"github.com/KaramelBytes/filmcorr-cli/internal/run"
	"github.com/KaramelBytes/filmcorr-cli/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaThreshold  float64
	anaRowPolicy  string
	anaSampleRows int
	anaMaxRows    int
	anaDelimiter  string
	anaSheetName  string
	anaPlots      bool
	anaPlotFormat string
	anaOutputDir  string
	anaDedupe     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run the full cleaning, charting and correlation analysis",
	Long: `Load a movie dataset, report missing data, drop incomplete rows, coerce budget
and gross to integers, derive the release year, sort by gross, list distinct
companies, draw the budget/gross scatter and regression plots, and correlate
numeric and encoded categorical features.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := pipelineOptions(cmd, args)
		if err != nil {
			return err
		}
		opts.Encode = true
		return execute(cmd, "analyze", opts, func(ctx context.Context, r *pipeline.Runner) (*pipeline.Result, error) {
			return r.Analyze(ctx, opts)
		})
	},
}

// pipelineOptions merges config values with the flags that were set.
func pipelineOptions(cmd *cobra.Command, args []string) (pipeline.Options, error) {
	input := cfg.Input
	if len(args) == 1 {
		input = args[0]
	}
	if input == "" {
		return pipeline.Options{}, fmt.Errorf("no input file (pass one or set input in config)")
	}
	opts := pipeline.DefaultOptions(input)
	f := cmd.Flags()

	opts.Load = loader.Options{
		Delimiter:   cfg.DelimiterRune(),
		NullMarkers: cfg.NullMarkers,
		MaxRows:     cfg.MaxRows,
		Sheet:       cfg.Sheet,
	}
	if f.Changed("delimiter") {
		switch anaDelimiter {
		case ",":
			opts.Load.Delimiter = ','
		case "\t", "tab":
			opts.Load.Delimiter = '\t'
		case ";":
			opts.Load.Delimiter = ';'
		case "|":
			opts.Load.Delimiter = '|'
		default:
			return opts, fmt.Errorf("unsupported --delimiter: %s", anaDelimiter)
		}
	}
	if f.Changed("max-rows") {
		opts.Load.MaxRows = anaMaxRows
	}
	if f.Changed("sheet") {
		opts.Load.Sheet = anaSheetName
	}

	opts.Columns = pipeline.Columns{
		Budget:   cfg.BudgetColumn,
		Gross:    cfg.GrossColumn,
		Released: cfg.ReleasedColumn,
		Company:  cfg.CompanyColumn,
		Year:     cfg.YearColumn,
	}
	def := pipeline.DefaultColumns()
	for _, c := range []struct {
		dst *string
		def string
	}{
		{&opts.Columns.Budget, def.Budget},
		{&opts.Columns.Gross, def.Gross},
		{&opts.Columns.Released, def.Released},
		{&opts.Columns.Company, def.Company},
		{&opts.Columns.Year, def.Year},
	} {
		if *c.dst == "" {
			*c.dst = c.def
		}
	}

	policy := cfg.RowPolicy
	if f.Changed("row-policy") {
		policy = anaRowPolicy
	}
	p, err := clean.ParsePolicy(strings.ToLower(policy))
	if err != nil {
		return opts, err
	}
	opts.Policy = p

	opts.Threshold = cfg.Threshold
	if f.Changed("threshold") {
		opts.Threshold = anaThreshold
	}
	if math.IsNaN(opts.Threshold) || opts.Threshold < -1 || opts.Threshold > 1 {
		return opts, fmt.Errorf("--threshold must be within [-1, 1], got %v", opts.Threshold)
	}
	opts.SampleRows = cfg.SampleRows
	if f.Changed("sample-rows") {
		opts.SampleRows = anaSampleRows
	}
	opts.Dedupe = cfg.DedupePairs
	if f.Changed("dedupe") {
		opts.Dedupe = anaDedupe
	}
	return opts, nil
}

type analysisFunc func(ctx context.Context, r *pipeline.Runner) (*pipeline.Result, error)

// execute wires the renderer, run manifest and report around fn.
func execute(cmd *cobra.Command, name string, opts pipeline.Options, fn analysisFunc) error {
	f := cmd.Flags()
	plots := cfg.Plots
	if f.Changed("plots") {
		plots = anaPlots
	}
	format := cfg.PlotFormat
	if f.Changed("plot-format") {
		format = anaPlotFormat
	}
	outDir := cfg.OutputDir
	if f.Changed("output-dir") {
		outDir = anaOutputDir
	}

	ctx := cmd.Context()
	var m *run.Manifest
	var renderer chart.Renderer = chart.Discard
	if plots {
		m = run.New(outDir, opts.Input, name)
		fr, err := chart.NewFileRenderer(m.Dir(), format)
		if err != nil {
			return err
		}
		renderer = fr
		ctx = logging.WithRunID(ctx, m.ID)
	}

	res, err := fn(ctx, pipeline.New(renderer, logging.FromContext(ctx, logger)))
	if err != nil {
		return err
	}

	if m != nil {
		m.StartedAt = res.StartedAt
		m.FinishedAt = time.Now()
		m.RowsLoaded = res.RowsLoaded
		m.RowsKept = res.RowsKept()
		m.Rejected = len(res.Rejections)
		m.Threshold = res.Threshold
		m.Artifacts = res.Artifacts
		m.HighPairs = pairInfos(res.HighPairs)
		if err := m.Save(); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Saved run %s (%d charts) to %s\n", m.ID, len(m.Artifacts), m.Dir())
	}

	rep := report.Build(res)
	if anaOutputPath != "" {
		if err := utils.SafeWriteFile(anaOutputPath, []byte(rep.Markdown())); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote report to %s\n", anaOutputPath)
		return nil
	}
	switch strings.ToLower(anaFormat) {
	case "", "text":
		out := cmd.OutOrStdout()
		return rep.Text(out, report.ShouldColorize(out))
	case "markdown", "md":
		_, err := fmt.Fprint(cmd.OutOrStdout(), rep.Markdown())
		return err
	default:
		return fmt.Errorf("unsupported --format: %s (use text or markdown)", anaFormat)
	}
}

func pairInfos(ps []corr.Pair) []run.PairInfo {
	out := make([]run.PairInfo, len(ps))
	for i, p := range ps {
		out[i] = run.PairInfo{A: p.A, B: p.B, R: p.R}
	}
	return out
}

// addAnalysisFlags registers the flags shared by analyze and corr.
func addAnalysisFlags(c *cobra.Command) {
	c.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the markdown report to this file instead of stdout")
	c.Flags().StringVar(&anaFormat, "format", "text", "stdout format: text or markdown")
	c.Flags().Float64Var(&anaThreshold, "threshold", 0.5, "keep correlation pairs with r above this value")
	c.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "rows shown in previews")
	c.Flags().IntVar(&anaMaxRows, "max-rows", 0, "limit rows read (0 = all)")
	c.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',', ';', '|' or 'tab' (default from extension)")
	c.Flags().StringVar(&anaSheetName, "sheet", "", "XLSX sheet name (default first sheet)")
	c.Flags().BoolVar(&anaPlots, "plots", true, "write chart images and a run manifest")
	c.Flags().StringVar(&anaPlotFormat, "plot-format", "png", "chart format: png, svg or pdf")
	c.Flags().StringVar(&anaOutputDir, "output-dir", "", "directory for run folders (default ~/.filmcorr/runs)")
	c.Flags().BoolVar(&anaDedupe, "dedupe", false, "drop self and mirrored pairs from the high-correlation list")
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalysisFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaRowPolicy, "row-policy", "abort", "what to do with rows that fail conversion: abort or skip")
}
