package table

import (
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

func sample() *Table {
	return MustNew(
		NewNumerical("age", []float64{30, math.NaN(), 45}),
		NewCategorical("city", []string{"Tokyo", "", "Osaka"}, []bool{false, true, false}),
		NewNumerical("income", []float64{100, 200, 300}),
	)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cols    []*Column
		wantErr interface{}
	}{
		{
			name: "valid",
			cols: []*Column{NewNumerical("a", []float64{1, 2}), NewCategorical("b", []string{"x", "y"}, nil)},
		},
		{
			name:    "length mismatch",
			cols:    []*Column{NewNumerical("a", []float64{1, 2}), NewNumerical("b", []float64{1})},
			wantErr: &errors.DimensionError{},
		},
		{
			name:    "duplicate name",
			cols:    []*Column{NewNumerical("a", []float64{1}), NewNumerical("a", []float64{2})},
			wantErr: &errors.ValidationError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.cols...)
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, 2, tbl.Nrow())
			case *errors.DimensionError:
				assert.True(t, errors.As(err, &want))
			case *errors.ValidationError:
				assert.True(t, errors.As(err, &want))
			}
		})
	}
}

func TestColumnBasics(t *testing.T) {
	tbl := sample()
	age, ok := tbl.Column("age")
	require.True(t, ok)
	assert.Equal(t, Numerical, age.Kind())
	assert.Equal(t, 1, age.MissingCount())
	assert.Equal(t, "NaN", age.String(1))

	city, _ := tbl.Column("city")
	assert.Equal(t, Categorical, city.Kind())
	assert.True(t, city.IsMissing(1))
	assert.Equal(t, []string{"Osaka", "Tokyo"}, city.Unique())
	assert.Equal(t, 2, city.NUnique())
	assert.Nil(t, city.Floats())
}

func TestValueCounts(t *testing.T) {
	c := NewCategorical("c", []string{"b", "a", "b", "c", "a", ""}, []bool{false, false, false, false, false, true})
	got := c.ValueCounts()
	assert.Equal(t, []ValueCount{{"a", 2}, {"b", 2}, {"c", 1}}, got)
}

func TestSetAndDrop(t *testing.T) {
	tbl := sample()

	require.NoError(t, tbl.Set(NewNumerical("age", []float64{1, 2, 3})))
	assert.Equal(t, []string{"age", "city", "income"}, tbl.Names(), "replacement keeps position")

	require.NoError(t, tbl.Set(NewNumerical("new", []float64{0, 0, 0})))
	assert.Equal(t, []string{"age", "city", "income", "new"}, tbl.Names())

	err := tbl.Set(NewNumerical("bad", []float64{1}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	tbl.Drop("city", "missing")
	assert.Equal(t, []string{"age", "income", "new"}, tbl.Names())
	_, ok := tbl.Column("income")
	assert.True(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	tbl := sample()
	cp := tbl.Clone()

	c, _ := cp.Column("income")
	c.SetFloat(0, -1)
	cp.Drop("age")

	orig, _ := tbl.Column("income")
	assert.Equal(t, 100.0, orig.Float(0))
	assert.Equal(t, 3, tbl.Ncol())
}

func TestSelectAndTake(t *testing.T) {
	tbl := sample()
	sel, err := tbl.Select("income", "city")
	require.NoError(t, err)
	assert.Equal(t, []string{"income", "city"}, sel.Names())

	_, err = tbl.Select("nope")
	assert.Error(t, err)

	sub := tbl.Take([]int{2, 0})
	assert.Equal(t, 2, sub.Nrow())
	inc, _ := sub.Column("income")
	assert.Equal(t, []float64{300, 100}, inc.Floats())
}

func TestMatrix(t *testing.T) {
	tbl := sample()
	m, err := tbl.Matrix()
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 300.0, m.At(2, 1))

	_, err = tbl.Matrix("city")
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	back, err := FromMatrix(m, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, back.Names())
}

func TestDataFrameRoundTrip(t *testing.T) {
	tbl := sample()
	df := tbl.ToDataFrame()
	assert.Equal(t, 3, df.Nrow())

	back, err := FromDataFrame(df)
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), back.Names())

	city, _ := back.Column("city")
	assert.Equal(t, Categorical, city.Kind())
	assert.True(t, city.IsMissing(1))
	age, _ := back.Column("age")
	assert.True(t, math.IsNaN(age.Float(1)))
}

func TestFromDataFrameInfersKinds(t *testing.T) {
	df := dataframe.LoadRecords(
		[][]string{
			{"n", "s", "i"},
			{"1.5", "a", "1"},
			{"NA", "b", "2"},
		},
		dataframe.NaNValues([]string{"NA"}),
	)
	tbl, err := FromDataFrame(df)
	require.NoError(t, err)

	kinds := map[string]Kind{}
	for _, name := range tbl.Names() {
		c, _ := tbl.Column(name)
		kinds[name] = c.Kind()
	}
	assert.Equal(t, map[string]Kind{"n": Numerical, "s": Categorical, "i": Numerical}, kinds)
	n, _ := tbl.Column("n")
	assert.Equal(t, 1, n.MissingCount())
}
