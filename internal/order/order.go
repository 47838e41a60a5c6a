// Package order sorts tables and lists distinct column values.
package order

import (
	"sort"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

// less orders values for a descending sort with nulls last.
func less(a, b frame.Value) bool {
	switch {
	case a.IsNull():
		return false
	case b.IsNull():
		return true
	}
	return frame.Compare(a, b) > 0
}

// SortByDescending returns the rows ordered by column, largest first. The sort
// is stable and nulls always go last.
func SortByDescending(t *frame.Table, column string) (*frame.Table, error) {
	vals, err := t.Values(column)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return less(vals[idx[i]], vals[idx[j]])
	})
	return t.Take(idx), nil
}

// UniqueSorted returns the distinct values of column in descending order.
func UniqueSorted(t *frame.Table, column string) ([]frame.Value, error) {
	vals, err := t.Values(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[frame.Value]struct{}, len(vals))
	out := make([]frame.Value, 0)
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}
