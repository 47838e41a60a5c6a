package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	black  = color.RGBA{A: 255}
	purple = color.RGBA{R: 128, B: 128, A: 255}
)

func points(spec XYSpec) (plotter.XYs, error) {
	if len(spec.X) != len(spec.Y) {
		return nil, fmt.Errorf("chart %s: %d x values, %d y values", spec.Name, len(spec.X), len(spec.Y))
	}
	xys := make(plotter.XYs, len(spec.X))
	for i := range spec.X {
		xys[i].X = spec.X[i]
		xys[i].Y = spec.Y[i]
	}
	return xys, nil
}

func newXYPlot(spec XYSpec) *plot.Plot {
	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	return p
}

// Scatter draws the points with default glyphs.
func (r *FileRenderer) Scatter(spec XYSpec) (string, error) {
	out, err := r.path(spec.Name)
	if err != nil {
		return "", err
	}
	xys, err := points(spec)
	if err != nil {
		return "", err
	}
	p := newXYPlot(spec)
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return "", fmt.Errorf("chart %s: %w", spec.Name, err)
	}
	p.Add(s)
	if err := p.Save(r.Width, r.Height, out); err != nil {
		return "", fmt.Errorf("save %s: %w", out, err)
	}
	return out, nil
}

// Regression draws black points and a purple least-squares line.
func (r *FileRenderer) Regression(spec XYSpec) (string, error) {
	out, err := r.path(spec.Name)
	if err != nil {
		return "", err
	}
	xys, err := points(spec)
	if err != nil {
		return "", err
	}
	p := newXYPlot(spec)
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return "", fmt.Errorf("chart %s: %w", spec.Name, err)
	}
	s.GlyphStyle.Color = black
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)

	if fit, ok := fitLine(spec.X, spec.Y); ok {
		line, err := plotter.NewLine(fit)
		if err != nil {
			return "", fmt.Errorf("chart %s: %w", spec.Name, err)
		}
		line.LineStyle.Color = purple
		line.LineStyle.Width = vg.Points(2)
		p.Add(line)
	}
	if err := p.Save(r.Width, r.Height, out); err != nil {
		return "", fmt.Errorf("save %s: %w", out, err)
	}
	return out, nil
}

// fitLine returns the endpoints of the OLS line y = alpha + beta*x over the
// x range. It fails with fewer than two points or a constant x.
func fitLine(x, y []float64) (plotter.XYs, bool) {
	if len(x) < 2 {
		return nil, false
	}
	lo, hi := floats.Min(x), floats.Max(x)
	if lo == hi {
		return nil, false
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	return plotter.XYs{
		{X: lo, Y: alpha + beta*lo},
		{X: hi, Y: alpha + beta*hi},
	}, true
}
