package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
)

// grid adapts a square matrix to plotter.GridXYZ. Row 0 of the matrix is
// drawn at the top.
type grid struct {
	values [][]float64
}

func (g grid) Dims() (c, r int)   { return len(g.values), len(g.values) }
func (g grid) Z(c, r int) float64 { return g.values[len(g.values)-1-r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// cellLabel formats an annotation with two significant digits.
func cellLabel(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'g', 2, 64)
}

// Heatmap draws the matrix on a blue-red scale over [-1, 1], writes each
// value in its cell and names both axes after Labels.
func (r *FileRenderer) Heatmap(spec HeatmapSpec) (string, error) {
	out, err := r.path(spec.Name)
	if err != nil {
		return "", err
	}
	n := len(spec.Labels)
	if n == 0 || len(spec.Values) != n {
		return "", fmt.Errorf("chart %s: %d labels for %d rows", spec.Name, n, len(spec.Values))
	}
	for i, row := range spec.Values {
		if len(row) != n {
			return "", fmt.Errorf("chart %s: row %d has %d values, want %d", spec.Name, i, len(row), n)
		}
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(grid{values: spec.Values}, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 0xdd}
	p.Add(hm)

	xys := make(plotter.XYs, 0, n*n)
	labels := make([]string, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(n - 1 - i)})
			labels = append(labels, cellLabel(spec.Values[i][j]))
		}
	}
	annot, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return "", fmt.Errorf("chart %s: %w", spec.Name, err)
	}
	for i := range annot.TextStyle {
		annot.TextStyle[i].XAlign = text.XCenter
		annot.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(annot)

	xt := make([]plot.Tick, n)
	yt := make([]plot.Tick, n)
	for i, name := range spec.Labels {
		xt[i] = plot.Tick{Value: float64(i), Label: name}
		yt[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xt)
	p.Y.Tick.Marker = plot.ConstantTicks(yt)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5

	if err := p.Save(r.Width, r.Height, out); err != nil {
		return "", fmt.Errorf("save %s: %w", out, err)
	}
	return out, nil
}
