package corr

import (
	"sort"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

// Encoding maps the distinct values of one categorical column to codes.
type Encoding struct {
	Column string
	// Categories holds the distinct non-null values in ascending order; a
	// value's code is its index.
	Categories []frame.Value
}

// Code returns the code for v, or -1 for null and unseen values.
func (e Encoding) Code(v frame.Value) int64 {
	if v.IsNull() {
		return -1
	}
	i := sort.Search(len(e.Categories), func(i int) bool {
		return frame.Compare(e.Categories[i], v) >= 0
	})
	if i < len(e.Categories) && frame.Equal(e.Categories[i], v) {
		return int64(i)
	}
	return -1
}

// EncodeCategoricals replaces every object column with int64 codes assigned
// by sorted order of its distinct values. Numeric columns are unchanged.
func EncodeCategoricals(t *frame.Table) (*frame.Table, map[string]Encoding) {
	encodings := make(map[string]Encoding)
	out := t
	for _, c := range t.Schema() {
		if c.Dtype != frame.Object {
			continue
		}
		vals, _ := t.Values(c.Name)
		enc := encodingOf(c.Name, vals)
		codes := make([]frame.Value, len(vals))
		for i, v := range vals {
			codes[i] = frame.Int(enc.Code(v))
		}
		next, err := out.WithColumn(c.Name, frame.Int64, codes)
		if err != nil {
			// lengths always match t.
			panic(err)
		}
		out = next
		encodings[c.Name] = enc
	}
	return out, encodings
}

func encodingOf(column string, vals []frame.Value) Encoding {
	seen := make(map[frame.Value]struct{})
	var cats []frame.Value
	for _, v := range vals {
		if v.IsNull() {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		cats = append(cats, v)
	}
	sort.Slice(cats, func(i, j int) bool { return frame.Compare(cats[i], cats[j]) < 0 })
	return Encoding{Column: column, Categories: cats}
}
