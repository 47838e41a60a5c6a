// Package frame holds the in-memory table model: tagged cell values, typed
// columns and the error taxonomy shared by the loaders and transforms.
package frame

import (
	"fmt"
	"strings"
)

// Dtype is the declared type of a column.
type Dtype string

const (
	Int64   Dtype = "int64"
	Float64 Dtype = "float64"
	Object  Dtype = "object"
)

// Numeric reports whether the column participates in numeric correlation.
func (d Dtype) Numeric() bool { return d == Int64 || d == Float64 }

// Column describes one named, typed column.
type Column struct {
	Name  string
	Dtype Dtype
}

// Table is an immutable in-memory dataset. Transformations return new tables
// and never modify their input.
type Table struct {
	cols   []Column
	index  map[string]int
	rows   [][]Value
	labels []int
}

// New builds a table from column names and rows, inferring each column's
// dtype from its cells. Every row must have exactly len(columns) cells.
func New(columns []string, rows [][]Value) (*Table, error) {
	cols := make([]Column, len(columns))
	for i, name := range columns {
		cols[i] = Column{Name: name}
	}
	labels := make([]int, len(rows))
	for i := range labels {
		labels[i] = i
	}
	t, err := build(cols, rows, labels)
	if err != nil {
		return nil, err
	}
	for j := range t.cols {
		t.cols[j].Dtype = inferDtype(t.rows, j)
	}
	return t, nil
}

// MustNew is New for fixtures; it panics on malformed input.
func MustNew(columns []string, rows [][]Value) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

func build(cols []Column, rows [][]Value, labels []int) (*Table, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		index[c.Name] = i
	}
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(r), len(cols))
		}
	}
	return &Table{cols: cols, index: index, rows: rows, labels: labels}, nil
}

func inferDtype(rows [][]Value, j int) Dtype {
	var ints, floats, texts, nulls int
	for _, r := range rows {
		switch r[j].Kind() {
		case KindInt:
			ints++
		case KindFloat:
			floats++
		case KindText:
			texts++
		default:
			nulls++
		}
	}
	switch {
	case texts > 0:
		return Object
	case floats > 0:
		return Float64
	case ints > 0 && nulls == 0:
		return Int64
	default:
		// Integers with gaps and all-null columns are floats, as in the source data.
		return Float64
	}
}

func (t *Table) Len() int   { return len(t.rows) }
func (t *Table) Width() int { return len(t.cols) }

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.Name
	}
	return out
}

// Schema returns the columns with their dtypes.
func (t *Table) Schema() []Column {
	out := make([]Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Dtype returns the declared dtype of a column.
func (t *Table) Dtype(name string) (Dtype, error) {
	i, ok := t.index[name]
	if !ok {
		return "", &ColumnNotFoundError{Column: name, Available: t.Columns()}
	}
	return t.cols[i].Dtype, nil
}

// Cell returns the value at row i, column j.
func (t *Table) Cell(i, j int) Value { return t.rows[i][j] }

// Label returns the original load position of row i.
func (t *Table) Label(i int) int { return t.labels[i] }

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Values returns a copy of the named column.
func (t *Table) Values(name string) ([]Value, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Column: name, Available: t.Columns()}
	}
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[j]
	}
	return out, nil
}

// Floats returns the named column as float64s. Any cell that is not numeric
// is an error.
func (t *Table) Floats(name string) ([]float64, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, &ColumnNotFoundError{Column: name, Available: t.Columns()}
	}
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		if !r[j].IsNumeric() {
			return nil, fmt.Errorf("column %q row %d: %s cell is not numeric", name, t.labels[i], r[j].Kind())
		}
		out[i], _ = r[j].ToFloat()
	}
	return out, nil
}

// Require returns a ColumnNotFoundError for the first missing name.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if _, ok := t.index[n]; !ok {
			return &ColumnNotFoundError{Column: n, Available: t.Columns()}
		}
	}
	return nil
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.rows) {
		n = len(t.rows)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Take(idx)
}

// Take returns the rows at the given positions, in that order, keeping labels.
func (t *Table) Take(positions []int) *Table {
	rows := make([][]Value, len(positions))
	labels := make([]int, len(positions))
	for k, p := range positions {
		rows[k] = t.rows[p]
		labels[k] = t.labels[p]
	}
	return &Table{cols: t.Schema(), index: t.index, rows: rows, labels: labels}
}

// WithColumn returns a table where the named column holds values and has the
// given dtype. An existing column is replaced in place; a new one is appended.
func (t *Table) WithColumn(name string, dtype Dtype, values []Value) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	cols := t.Schema()
	j, exists := t.index[name]
	if exists {
		cols[j].Dtype = dtype
	} else {
		j = len(cols)
		cols = append(cols, Column{Name: name, Dtype: dtype})
	}
	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		nr := make([]Value, len(cols))
		copy(nr, r)
		nr[j] = values[i]
		rows[i] = nr
	}
	labels := make([]int, len(t.labels))
	copy(labels, t.labels)
	return build(cols, rows, labels)
}

// String renders a compact, tab-separated dump used in test failures.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns(), "\t"))
	for i, r := range t.rows {
		b.WriteString(fmt.Sprintf("\n%d", t.labels[i]))
		for _, v := range r {
			b.WriteString("\t")
			b.WriteString(v.String())
		}
	}
	return b.String()
}
