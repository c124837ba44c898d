// Package table holds the in-memory data model: an ordered set of named,
// equal-length columns, each either numerical or categorical.
//
// Tables are mutable. Callers that must not disturb their input work on a
// Clone, which is what every preprocessing entry point does.
package table

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// Table is an ordered collection of columns aligned by row position.
type Table struct {
	cols  []*Column
	index map[string]int
	nrow  int
}

// New builds a table from columns. Names must be unique and lengths equal.
// The columns are used as given, not copied.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for _, c := range cols {
		if _, dup := t.index[c.Name()]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", c.Name())
		}
		if len(t.cols) == 0 {
			t.nrow = c.Len()
		} else if c.Len() != t.nrow {
			return nil, errors.NewDimensionError("table.New", t.nrow, c.Len(), 0)
		}
		t.index[c.Name()] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New that panics on error.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Nrow() int { return t.nrow }
func (t *Table) Ncol() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name()
	}
	return names
}

// Has reports whether a column called name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks a column up by name. The returned column is shared with the table.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// At returns the i-th column.
func (t *Table) At(i int) *Column {
	return t.cols[i]
}

// Set replaces the column with the same name in place, or appends it.
func (t *Table) Set(c *Column) error {
	if len(t.cols) > 0 && c.Len() != t.nrow {
		return errors.NewDimensionError("Table.Set", t.nrow, c.Len(), 0)
	}
	if len(t.cols) == 0 {
		t.nrow = c.Len()
	}
	if i, ok := t.index[c.Name()]; ok {
		t.cols[i] = c
		return nil
	}
	t.index[c.Name()] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Drop removes the named columns. Absent names are ignored.
func (t *Table) Drop(names ...string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.cols[:0]
	for _, c := range t.cols {
		if !drop[c.Name()] {
			kept = append(kept, c)
		}
	}
	t.cols = kept
	t.reindex()
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.index[c.Name()] = i
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		cols:  make([]*Column, len(t.cols)),
		index: make(map[string]int, len(t.cols)),
		nrow:  t.nrow,
	}
	for i, c := range t.cols {
		out.cols[i] = c.Clone()
		out.index[c.Name()] = i
	}
	return out
}

// Select returns a deep copy restricted to names, in the order given.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, errors.NewValueErrorf("Table.Select", "column %q not found", n)
		}
		cols = append(cols, c.Clone())
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.nrow = t.nrow
	}
	return out, nil
}

// Take returns a deep copy holding rows idx in that order.
func (t *Table) Take(idx []int) *Table {
	out := &Table{
		cols:  make([]*Column, len(t.cols)),
		index: make(map[string]int, len(t.cols)),
		nrow:  len(idx),
	}
	for i, c := range t.cols {
		out.cols[i] = c.Take(idx)
		out.index[c.Name()] = i
	}
	return out
}

// ColumnsOfKind returns the names of columns of the given kind, in table order.
func (t *Table) ColumnsOfKind(kind Kind) []string {
	var names []string
	for _, c := range t.cols {
		if c.Kind() == kind {
			names = append(names, c.Name())
		}
	}
	return names
}

// Matrix copies the named numerical columns into a rows x len(names) matrix.
// With no names every numerical column is used. A categorical column is a ValueError.
func (t *Table) Matrix(names ...string) (*mat.Dense, error) {
	if len(names) == 0 {
		names = t.ColumnsOfKind(Numerical)
	}
	if len(names) == 0 || t.nrow == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Table.Matrix")
	}
	m := mat.NewDense(t.nrow, len(names), nil)
	for j, n := range names {
		c, ok := t.Column(n)
		if !ok {
			return nil, errors.NewValueErrorf("Table.Matrix", "column %q not found", n)
		}
		if c.Kind() != Numerical {
			return nil, errors.NewValueErrorf("Table.Matrix", "column %q is categorical", n)
		}
		m.SetCol(j, c.nums)
	}
	return m, nil
}

// FromMatrix builds a numerical table from m using names as column names.
func FromMatrix(m mat.Matrix, names []string) (*Table, error) {
	r, c := m.Dims()
	if len(names) != c {
		return nil, errors.NewDimensionError("table.FromMatrix", c, len(names), 1)
	}
	cols := make([]*Column, c)
	for j := 0; j < c; j++ {
		vals := make([]float64, r)
		for i := 0; i < r; i++ {
			vals[i] = m.At(i, j)
		}
		cols[j] = &Column{name: names[j], kind: Numerical, nums: vals}
	}
	return New(cols...)
}

// MissingCounts returns per-column missing counts in table order.
func (t *Table) MissingCounts() []int {
	out := make([]int, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.MissingCount()
	}
	return out
}

// MemoryUsage is an approximate byte count of the stored values.
func (t *Table) MemoryUsage() int {
	total := 0
	for _, c := range t.cols {
		if c.kind == Numerical {
			total += 8 * len(c.nums)
			continue
		}
		for _, s := range c.strs {
			total += 16 + len(s)
		}
		total += len(c.missing)
	}
	return total
}
