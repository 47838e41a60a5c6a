// Package clean holds the row-level cleaning steps: missing-value ratios,
// dropping incomplete rows, int64 coercion and release-year derivation.
package clean

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

// Policy decides what happens to a row whose cell cannot be converted.
type Policy string

const (
	// PolicyAbort fails on the first bad row.
	PolicyAbort Policy = "abort"
	// PolicySkip drops bad rows and reports them as rejections.
	PolicySkip Policy = "skip"
)

// ParsePolicy accepts "abort" or "skip"; empty means abort.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyAbort:
		return PolicyAbort, nil
	case PolicySkip:
		return PolicySkip, nil
	}
	return "", fmt.Errorf("invalid row policy %q (want abort or skip)", s)
}

// Rejection records a row dropped under PolicySkip.
type Rejection struct {
	Label  int
	Column string
	Value  frame.Value
	Err    error
}

// ColumnMissing is the missing ratio of one column.
type ColumnMissing struct {
	Column string
	Ratio  float64
}

// Percent returns the ratio as a percentage.
func (c ColumnMissing) Percent() float64 { return c.Ratio * 100 }

// Cleaner applies the row-level steps and logs rows it drops.
type Cleaner struct {
	Policy Policy
	Logger *zap.Logger
}

// New returns a Cleaner. A nil logger discards output.
func New(policy Policy, logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{Policy: policy, Logger: logger}
}

// MissingRatio returns the fraction of null cells in column; 0 for an empty table.
func MissingRatio(t *frame.Table, column string) (float64, error) {
	vals, err := t.Values(column)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, nil
	}
	nulls := 0
	for _, v := range vals {
		if v.IsNull() {
			nulls++
		}
	}
	return float64(nulls) / float64(len(vals)), nil
}

// MissingReport returns the missing ratio of every column in table order.
func MissingReport(t *frame.Table) []ColumnMissing {
	out := make([]ColumnMissing, 0, t.Width())
	for _, c := range t.Columns() {
		r, _ := MissingRatio(t, c)
		out = append(out, ColumnMissing{Column: c, Ratio: r})
	}
	return out
}

// DropIncompleteRows keeps only rows in which every cell is non-null.
func DropIncompleteRows(t *frame.Table) *frame.Table {
	keep := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		complete := true
		for j := 0; j < t.Width(); j++ {
			if t.Cell(i, j).IsNull() {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	return t.Take(keep)
}

// CoerceInt64 converts column to int64 under the given policy.
func CoerceInt64(t *frame.Table, column string, policy Policy) (*frame.Table, []Rejection, error) {
	return New(policy, nil).CoerceInt64(t, column)
}

// DeriveYear writes the year found in source into target under the given policy.
func DeriveYear(t *frame.Table, source, target string, policy Policy) (*frame.Table, []Rejection, error) {
	return New(policy, nil).DeriveYear(t, source, target)
}

// CoerceInt64 converts every cell of column to int64. Ints stay, integral
// floats and integer text convert; anything else is a TypeConversionError.
func (c *Cleaner) CoerceInt64(t *frame.Table, column string) (*frame.Table, []Rejection, error) {
	return c.mapColumn(t, column, column, func(label int, v frame.Value) (frame.Value, error) {
		n, err := v.ToInt()
		if err != nil {
			return frame.Value{}, &frame.TypeConversionError{Column: column, Label: label, Value: v, Reason: err.Error()}
		}
		return frame.Int(n), nil
	})
}

// DeriveYear scans the string form of each source cell for the first run of
// exactly four digits and stores it as int64 in target.
func (c *Cleaner) DeriveYear(t *frame.Table, source, target string) (*frame.Table, []Rejection, error) {
	return c.mapColumn(t, source, target, func(label int, v frame.Value) (frame.Value, error) {
		y, ok := ExtractYear(v.String())
		if !ok || v.IsNull() {
			return frame.Value{}, &frame.ExtractionError{Column: source, Label: label, Value: v}
		}
		return frame.Int(y), nil
	})
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// ExtractYear returns the first maximal digit run of length four in s.
func ExtractYear(s string) (int64, bool) {
	for _, run := range digitRun.FindAllString(s, -1) {
		if len(run) != 4 {
			continue
		}
		y, err := strconv.ParseInt(run, 10, 64)
		return y, err == nil
	}
	return 0, false
}

type cellFunc func(label int, v frame.Value) (frame.Value, error)

// mapColumn converts source cell by cell into an int64 target column. Under
// PolicySkip failing rows are dropped and returned as rejections.
func (c *Cleaner) mapColumn(t *frame.Table, source, target string, fn cellFunc) (*frame.Table, []Rejection, error) {
	vals, err := t.Values(source)
	if err != nil {
		return nil, nil, err
	}
	out := make([]frame.Value, 0, len(vals))
	keep := make([]int, 0, len(vals))
	var rejected []Rejection
	for i, v := range vals {
		nv, err := fn(t.Label(i), v)
		if err != nil {
			if c.Policy != PolicySkip {
				return nil, nil, err
			}
			rejected = append(rejected, Rejection{Label: t.Label(i), Column: source, Value: v, Err: err})
			c.Logger.Warn("skipping row",
				zap.Int("row", t.Label(i)),
				zap.String("column", source),
				zap.String("value", v.String()),
				zap.Error(err))
			continue
		}
		out = append(out, nv)
		keep = append(keep, i)
	}
	if len(rejected) > 0 {
		t = t.Take(keep)
	}
	res, err := t.WithColumn(target, frame.Int64, out)
	if err != nil {
		return nil, nil, fmt.Errorf("write column %q: %w", target, err)
	}
	return res, rejected, nil
}

// IsRowError reports whether err is a per-row conversion failure that
// PolicySkip would have recovered.
func IsRowError(err error) bool {
	var tce *frame.TypeConversionError
	var ee *frame.ExtractionError
	return errors.As(err, &tce) || errors.As(err, &ee)
}
