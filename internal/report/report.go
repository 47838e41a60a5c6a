// Package report renders a pipeline result as console tables or markdown.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/KaramelBytes/filmcorr-cli/internal/clean"
	"github.com/KaramelBytes/filmcorr-cli/internal/corr"
	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
	"github.com/KaramelBytes/filmcorr-cli/internal/pipeline"
)

const maxCell = 40

// Align is the horizontal alignment of a grid column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Grid is a table inside a section.
type Grid struct {
	Headers []string
	Rows    [][]string
	Aligns  []Align
}

// Section is one titled block of the report.
type Section struct {
	Title string
	Lines []string
	Grid  *Grid
}

// Report is the rendered-ready view of a pipeline result.
type Report struct {
	Sections []Section
}

// Build lays out every step of res that produced output.
func Build(res *pipeline.Result) *Report {
	r := &Report{}
	r.add(summary(res))
	if res.Head != nil {
		r.add(Section{Title: "HEAD", Grid: preview(res.Head)})
	}
	if len(res.Missing) > 0 {
		r.add(Section{Title: "MISSING DATA", Lines: missingLines(res.Missing)})
	}
	if len(res.DtypesBefore) > 0 {
		r.add(Section{Title: "DTYPES", Grid: dtypes(res.DtypesBefore, res.DtypesAfter)})
	}
	if res.Derived != nil {
		r.add(Section{Title: "AFTER YEAR DERIVATION", Grid: preview(res.Derived)})
	}
	if res.Companies != nil {
		lines := []string{fmt.Sprintf("Distinct: %s", humanize.Comma(int64(len(res.Companies))))}
		for _, c := range res.Companies {
			lines = append(lines, "- "+safeVal(c.String()))
		}
		r.add(Section{Title: "COMPANIES", Lines: lines})
	}
	if res.Numeric != nil && len(res.Numeric.Columns) > 0 {
		r.add(Section{Title: "CORRELATION MATRIX (NUMERIC)", Grid: matrix(res.Numeric)})
	}
	if res.Encoded != nil && len(res.Encoded.Columns) > 0 {
		r.add(Section{Title: "CORRELATION MATRIX (ENCODED)", Grid: matrix(res.Encoded)})
	}
	if res.Numeric != nil {
		r.add(pairs(res.HighPairs, res.Threshold))
	}
	if notes := notes(res); len(notes) > 0 {
		r.add(Section{Title: "NOTES", Lines: notes})
	}
	return r
}

func (r *Report) add(s Section) { r.Sections = append(r.Sections, s) }

func summary(res *pipeline.Result) Section {
	lines := []string{fmt.Sprintf("File: %s", res.Input)}
	if res.Truncated {
		lines = append(lines, fmt.Sprintf("Rows: ~%s (processed %s)", humanize.Comma(int64(res.RowsInFile)), humanize.Comma(int64(res.RowsLoaded))))
	} else {
		lines = append(lines, fmt.Sprintf("Rows: %s", humanize.Comma(int64(res.RowsLoaded))))
	}
	if res.Head != nil {
		lines = append(lines, fmt.Sprintf("Columns: %d", res.Head.Width()))
	}
	if res.Sorted != nil {
		lines = append(lines, fmt.Sprintf("Complete rows: %s", humanize.Comma(int64(res.RowsComplete))))
		lines = append(lines, fmt.Sprintf("Rows kept: %s", humanize.Comma(int64(res.RowsKept()))))
	}
	return Section{Title: "DATASET SUMMARY", Lines: lines}
}

func missingLines(ms []clean.ColumnMissing) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = fmt.Sprintf("%s - %s%%", m.Column, strconv.FormatFloat(m.Percent(), 'f', -1, 64))
	}
	return out
}

func preview(t *frame.Table) *Grid {
	g := &Grid{Headers: append([]string{""}, t.Columns()...)}
	g.Aligns = make([]Align, len(g.Headers))
	g.Aligns[0] = AlignRight
	for i, c := range t.Schema() {
		if c.Dtype.Numeric() {
			g.Aligns[i+1] = AlignRight
		}
	}
	for i := 0; i < t.Len(); i++ {
		row := []string{strconv.Itoa(t.Label(i))}
		for _, v := range t.Row(i) {
			row = append(row, truncate(safeVal(v.String())))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func dtypes(before, after []frame.Column) *Grid {
	g := &Grid{Headers: []string{"column", "before"}}
	if len(after) > 0 {
		g.Headers = append(g.Headers, "after")
	}
	afterByName := make(map[string]frame.Dtype, len(after))
	for _, c := range after {
		afterByName[c.Name] = c.Dtype
	}
	for _, c := range before {
		row := []string{c.Name, string(c.Dtype)}
		if len(after) > 0 {
			row = append(row, string(afterByName[c.Name]))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func formatR(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func matrix(m *corr.Matrix) *Grid {
	g := &Grid{Headers: append([]string{""}, m.Columns...)}
	g.Aligns = make([]Align, len(g.Headers))
	for i := 1; i < len(g.Aligns); i++ {
		g.Aligns[i] = AlignRight
	}
	for i, name := range m.Columns {
		row := []string{name}
		for _, v := range m.Values[i] {
			row = append(row, formatR(v))
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func pairs(ps []corr.Pair, threshold float64) Section {
	s := Section{Title: fmt.Sprintf("HIGH CORRELATION PAIRS (r > %s)", strconv.FormatFloat(threshold, 'f', -1, 64))}
	if len(ps) == 0 {
		s.Lines = []string{"(none)"}
		return s
	}
	g := &Grid{Headers: []string{"a", "b", "r"}, Aligns: []Align{AlignLeft, AlignLeft, AlignRight}}
	for _, p := range ps {
		g.Rows = append(g.Rows, []string{p.A, p.B, strconv.FormatFloat(p.R, 'f', 6, 64)})
	}
	s.Grid = g
	return s
}

func notes(res *pipeline.Result) []string {
	var out []string
	if res.Truncated {
		out = append(out, fmt.Sprintf("Input truncated to %s of %s rows", humanize.Comma(int64(res.RowsLoaded)), humanize.Comma(int64(res.RowsInFile))))
	}
	if n := len(res.Rejections); n > 0 {
		out = append(out, fmt.Sprintf("Skipped %s rows that failed conversion", humanize.Comma(int64(n))))
		for i, rj := range res.Rejections {
			if i == 10 {
				out = append(out, fmt.Sprintf("... and %d more", n-i))
				break
			}
			out = append(out, fmt.Sprintf("row %d %s=%q: %v", rj.Label, rj.Column, rj.Value.String(), rj.Err))
		}
	}
	for _, a := range res.Artifacts {
		out = append(out, "Wrote "+a)
	}
	return out
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxCell {
		return string(r[:maxCell-3]) + "..."
	}
	return s
}

func (g *Grid) writer() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(g.Headers))
	for i, h := range g.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range g.Rows {
		r := make(table.Row, len(g.Headers))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	configs := make([]table.ColumnConfig, 0, len(g.Headers))
	for i := range g.Headers {
		align := text.AlignLeft
		if i < len(g.Aligns) && g.Aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

// Render draws the grid as a rounded console table.
func (g *Grid) Render() string {
	if len(g.Headers) == 0 {
		return ""
	}
	return g.writer().Render()
}

// Text writes the report as titled console tables.
func (r *Report) Text(w io.Writer, colorize bool) error {
	var b strings.Builder
	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		title := s.Title
		if colorize {
			title = text.Colors{text.Bold, text.FgHiBlue}.Sprint(title)
		}
		b.WriteString(title)
		b.WriteString("\n")
		for _, l := range s.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		if s.Grid != nil {
			b.WriteString(s.Grid.Render())
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders [SECTION] blocks with markdown tables.
func (r *Report) Markdown() string {
	var b strings.Builder
	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[" + s.Title + "]\n")
		for _, l := range s.Lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
		if s.Grid != nil {
			b.WriteString(s.Grid.writer().RenderMarkdown())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
