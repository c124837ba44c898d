package table

import (
	"math"
	"sort"
	"strconv"
)

// Kind is decided once when a column is created and never re-inferred.
type Kind int

const (
	Numerical Kind = iota
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numerical:
		return "numerical"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is a named vector of either float64 values (NaN = missing) or
// strings with a missing mask.
type Column struct {
	name    string
	kind    Kind
	nums    []float64
	strs    []string
	missing []bool
}

// NewNumerical copies values into a numerical column. NaN marks a missing value.
func NewNumerical(name string, values []float64) *Column {
	nums := make([]float64, len(values))
	copy(nums, values)
	return &Column{name: name, kind: Numerical, nums: nums}
}

// NewCategorical copies values into a categorical column. missing may be nil
// when no value is missing; otherwise it must have the same length as values.
func NewCategorical(name string, values []string, missing []bool) *Column {
	strs := make([]string, len(values))
	copy(strs, values)
	mask := make([]bool, len(values))
	if missing != nil {
		copy(mask, missing)
	}
	for i := range strs {
		if mask[i] {
			strs[i] = ""
		}
	}
	return &Column{name: name, kind: Categorical, strs: strs, missing: mask}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

func (c *Column) Len() int {
	if c.kind == Numerical {
		return len(c.nums)
	}
	return len(c.strs)
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	if c.kind == Numerical {
		return math.IsNaN(c.nums[i])
	}
	return c.missing[i]
}

// MissingCount returns the number of missing rows.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Float returns row i of a numerical column. It panics on a categorical column.
func (c *Column) Float(i int) float64 {
	if c.kind != Numerical {
		panic("table: Float called on categorical column " + c.name)
	}
	return c.nums[i]
}

// String returns row i as text. Missing values render as "NaN".
func (c *Column) String(i int) string {
	if c.IsMissing(i) {
		return "NaN"
	}
	if c.kind == Numerical {
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64)
	}
	return c.strs[i]
}

// Floats returns a copy of a numerical column's values, or nil for a categorical column.
func (c *Column) Floats() []float64 {
	if c.kind != Numerical {
		return nil
	}
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out
}

// Strings returns every row as text, see String.
func (c *Column) Strings() []string {
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.String(i)
	}
	return out
}

// SetFloat overwrites row i of a numerical column.
func (c *Column) SetFloat(i int, v float64) {
	if c.kind != Numerical {
		panic("table: SetFloat called on categorical column " + c.name)
	}
	c.nums[i] = v
}

// SetString overwrites row i of a categorical column and clears its missing flag.
func (c *Column) SetString(i int, s string) {
	if c.kind != Categorical {
		panic("table: SetString called on numerical column " + c.name)
	}
	c.strs[i] = s
	c.missing[i] = false
}

// Unique returns the distinct non-missing values as text, sorted. Numerical
// values are sorted by value, categorical ones lexically.
func (c *Column) Unique() []string {
	if c.kind == Numerical {
		seen := make(map[float64]struct{})
		var vals []float64
		for _, v := range c.nums {
			if math.IsNaN(v) {
				continue
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vals = append(vals, v)
			}
		}
		sort.Float64s(vals)
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return out
	}

	seen := make(map[string]struct{})
	var out []string
	for i, s := range c.strs {
		if c.missing[i] {
			continue
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// NUnique is len(Unique()).
func (c *Column) NUnique() int {
	return len(c.Unique())
}

// ValueCount is one entry of ValueCounts.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts counts non-missing values, most frequent first; ties are ordered by value.
func (c *Column) ValueCounts() []ValueCount {
	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if !c.IsMissing(i) {
			counts[c.String(i)]++
		}
	}
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	return c.Rename(c.name)
}

// Rename returns a deep copy under a new name.
func (c *Column) Rename(name string) *Column {
	out := &Column{name: name, kind: c.kind}
	if c.kind == Numerical {
		out.nums = append([]float64(nil), c.nums...)
		return out
	}
	out.strs = append([]string(nil), c.strs...)
	out.missing = append([]bool(nil), c.missing...)
	return out
}

// Take returns a new column holding rows idx in that order.
func (c *Column) Take(idx []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	if c.kind == Numerical {
		out.nums = make([]float64, len(idx))
		for i, r := range idx {
			out.nums[i] = c.nums[r]
		}
		return out
	}
	out.strs = make([]string, len(idx))
	out.missing = make([]bool, len(idx))
	for i, r := range idx {
		out.strs[i] = c.strs[r]
		out.missing[i] = c.missing[r]
	}
	return out
}
