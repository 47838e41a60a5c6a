// Package corr computes Pearson correlation matrices over table columns,
// encodes categorical columns as integer codes and flattens a matrix into a
// sorted, filterable list of column pairs.
package corr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

// Matrix is a square correlation matrix; Values[i][j] is r(Columns[i], Columns[j]).
type Matrix struct {
	Columns []string
	Values  [][]float64
}

// At returns r(a, b) and whether both columns are in the matrix.
func (m *Matrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// NumericColumns returns the int64 and float64 columns in table order.
func NumericColumns(t *frame.Table) []string {
	var out []string
	for _, c := range t.Schema() {
		if c.Dtype.Numeric() {
			out = append(out, c.Name)
		}
	}
	return out
}

// Pearson returns the correlation of columns a and b over rows where both are
// non-null. The result is clamped to [-1, 1]; it is NaN with fewer than two
// such rows or when either side has zero variance.
func Pearson(t *frame.Table, a, b string) (float64, error) {
	xs, err := t.Values(a)
	if err != nil {
		return 0, err
	}
	ys, err := t.Values(b)
	if err != nil {
		return 0, err
	}
	x := make([]float64, 0, len(xs))
	y := make([]float64, 0, len(ys))
	for i := range xs {
		if xs[i].IsNull() || ys[i].IsNull() {
			continue
		}
		xf, err := xs[i].ToFloat()
		if err != nil {
			return 0, fmt.Errorf("column %q row %d: %w", a, t.Label(i), err)
		}
		yf, err := ys[i].ToFloat()
		if err != nil {
			return 0, fmt.Errorf("column %q row %d: %w", b, t.Label(i), err)
		}
		x = append(x, xf)
		y = append(y, yf)
	}
	r := pearson(x, y)
	if a == b && !math.IsNaN(r) {
		// Rounding in the variance sums can leave a self pair a ulp below 1.
		return 1, nil
	}
	return r, nil
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN()
	}
	return math.Max(-1, math.Min(1, r))
}

// CorrelationMatrix computes r for every pair of the named columns. The
// diagonal is 1 and the lower triangle mirrors the upper one.
func CorrelationMatrix(t *frame.Table, columns []string) (*Matrix, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	for _, c := range columns {
		if dt, _ := t.Dtype(c); !dt.Numeric() {
			return nil, fmt.Errorf("correlate column %q: dtype %s is not numeric", c, dt)
		}
	}
	n := len(columns)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
		vals[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r, err := Pearson(t, columns[i], columns[j])
			if err != nil {
				return nil, err
			}
			vals[i][j] = r
			vals[j][i] = r
		}
	}
	cols := make([]string, n)
	copy(cols, columns)
	return &Matrix{Columns: cols, Values: vals}, nil
}
