package corr

import (
	"math"
	"sort"
)

// Pair is one flattened matrix entry.
type Pair struct {
	A, B string
	R    float64
}

// Flatten lists every matrix entry in row-major order, self pairs included.
func Flatten(m *Matrix) []Pair {
	out := make([]Pair, 0, len(m.Columns)*len(m.Columns))
	for i, a := range m.Columns {
		for j, b := range m.Columns {
			out = append(out, Pair{A: a, B: b, R: m.Values[i][j]})
		}
	}
	return out
}

// SortAscending orders pairs by R, NaN last; ties keep their order.
func SortAscending(pairs []Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		ri, rj := pairs[i].R, pairs[j].R
		switch {
		case math.IsNaN(ri):
			return false
		case math.IsNaN(rj):
			return true
		}
		return ri < rj
	})
}

// FlattenAndFilter flattens m, sorts ascending and keeps pairs with R strictly
// above threshold.
func FlattenAndFilter(m *Matrix, threshold float64) []Pair {
	pairs := Flatten(m)
	SortAscending(pairs)
	out := pairs[:0]
	for _, p := range pairs {
		if p.R > threshold {
			out = append(out, p)
		}
	}
	return out
}

// Distinct drops self pairs and the mirrored copy of each pair, keeping the
// first occurrence.
func Distinct(pairs []Pair) []Pair {
	seen := make(map[[2]string]struct{}, len(pairs))
	var out []Pair
	for _, p := range pairs {
		if p.A == p.B {
			continue
		}
		key := [2]string{p.A, p.B}
		if p.B < p.A {
			key = [2]string{p.B, p.A}
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
