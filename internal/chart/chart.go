// Package chart renders scatter plots, regression plots and annotated
// correlation heatmaps to image files with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"
)

// XYSpec describes a two-variable plot.
type XYSpec struct {
	// Name is the file stem of the written artifact.
	Name   string
	Title  string
	XLabel string
	YLabel string
	X, Y   []float64
}

// HeatmapSpec describes a square matrix plot. Labels name both the rows and
// the columns of Values.
type HeatmapSpec struct {
	Name   string
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values [][]float64
}

// Renderer draws charts and returns the path of each artifact it wrote. An
// empty path means nothing was written.
type Renderer interface {
	Scatter(spec XYSpec) (string, error)
	Regression(spec XYSpec) (string, error)
	Heatmap(spec HeatmapSpec) (string, error)
}

// Formats supported by FileRenderer.
var Formats = []string{"png", "svg", "pdf"}

// ErrFormat indicates an image format FileRenderer cannot write.
var ErrFormat = errors.New("unsupported chart format")

// FileRenderer writes each chart into Dir using Format as the extension.
type FileRenderer struct {
	Dir    string
	Format string
	Width  vg.Length
	Height vg.Length
}

// NewFileRenderer validates format and creates dir.
func NewFileRenderer(dir, format string) (*FileRenderer, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = "png"
	}
	ok := false
	for _, f := range Formats {
		if f == format {
			ok = true
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w %q (use %s)", ErrFormat, format, strings.Join(Formats, ", "))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	return &FileRenderer{Dir: dir, Format: format, Width: 8 * vg.Inch, Height: 6 * vg.Inch}, nil
}

func (r *FileRenderer) path(name string) (string, error) {
	if name == "" {
		return "", errors.New("chart name is empty")
	}
	return filepath.Join(r.Dir, name+"."+r.Format), nil
}

// Discard is a Renderer that draws nothing.
var Discard Renderer = discard{}

type discard struct{}

func (discard) Scatter(XYSpec) (string, error)      { return "", nil }
func (discard) Regression(XYSpec) (string, error)   { return "", nil }
func (discard) Heatmap(HeatmapSpec) (string, error) { return "", nil }
