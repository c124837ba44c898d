package preprocessing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/datakit/core/table"
)

func correlatedTable() *table.Table {
	rng := rand.New(rand.NewSource(7))
	n := 200
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = rng.NormFloat64()
		b[i] = 2*a[i] + 0.01*rng.NormFloat64() // |r| ~ 1 with a
		c[i] = a[i] + rng.NormFloat64()        // moderate
		d[i] = rng.NormFloat64()               // noise
	}
	return table.MustNew(
		table.NewNumerical("a", a),
		table.NewNumerical("b", b),
		table.NewNumerical("c", c),
		table.NewNumerical("d", d),
		table.NewCategorical("label", make([]string, n), nil),
	)
}

func TestCreateFeatures(t *testing.T) {
	in := correlatedTable()
	out := CreateFeatures(in)

	pairs := CorrelatedPairs(in)
	require.Len(t, pairs, 6)
	assert.Equal(t, FeaturePair{A: "a", B: "b", AbsCorr: pairs[0].AbsCorr}, pairs[0])

	assert.Equal(t, 5+2*MaxInteractionPairs, out.Ncol())
	assert.Equal(t, 5, in.Ncol(), "input is not modified")

	a, _ := in.Column("a")
	b, _ := in.Column("b")
	prod, ok := out.Column("a_x_b")
	require.True(t, ok)
	ratio, ok := out.Column("a_div_b")
	require.True(t, ok)
	for i := 0; i < in.Nrow(); i++ {
		assert.Equal(t, a.Float(i)*b.Float(i), prod.Float(i))
		assert.Equal(t, a.Float(i)/(b.Float(i)+1e-8), ratio.Float(i))
	}
}

func TestCreateFeaturesDeterministic(t *testing.T) {
	in := correlatedTable()
	first := CreateFeatures(in)
	second := CreateFeatures(in)
	assert.Equal(t, first.Names(), second.Names())
	for _, name := range first.Names()[5:] {
		x, _ := first.Column(name)
		y, _ := second.Column(name)
		assert.Equal(t, x.Floats(), y.Floats(), name)
	}
}

func TestCreateFeaturesFewNumericalColumns(t *testing.T) {
	in := table.MustNew(
		table.NewNumerical("only", []float64{1, 2, 3}),
		table.NewCategorical("c", []string{"x", "y", "z"}, nil),
	)
	out := CreateFeatures(in)
	assert.Equal(t, in.Names(), out.Names())
}

func TestCorrelatedPairsOrdering(t *testing.T) {
	// p and q are constant, so their correlations are undefined and rank last
	in := table.MustNew(
		table.NewNumerical("p", []float64{1, 1, 1, 1}),
		table.NewNumerical("x", []float64{1, 2, 3, 4}),
		table.NewNumerical("y", []float64{2, 4, 6, 8}),
		table.NewNumerical("z", []float64{4, 3, 2, 1}),
	)
	pairs := CorrelatedPairs(in)
	require.Len(t, pairs, 6)

	// x-y, x-z and y-z all have |r| = 1, ties keep enumeration order
	assert.Equal(t, [][2]string{{"x", "y"}, {"x", "z"}, {"y", "z"}},
		[][2]string{{pairs[0].A, pairs[0].B}, {pairs[1].A, pairs[1].B}, {pairs[2].A, pairs[2].B}})
	for _, p := range pairs[3:] {
		assert.True(t, math.IsNaN(p.AbsCorr))
	}
}

func TestCreateFeaturesReplacesExisting(t *testing.T) {
	in := table.MustNew(
		table.NewNumerical("x", []float64{1, 2, 3}),
		table.NewNumerical("y", []float64{2, 4, 7}),
		table.NewNumerical("x_x_y", []float64{0, 0, 0}),
	)
	out := CreateFeatures(in)
	c, _ := out.Column("x_x_y")
	assert.Equal(t, []float64{2, 8, 21}, c.Floats())
	assert.Equal(t, "x_x_y", out.Names()[2], "replaced in place")
	assert.Equal(t, 3+5, out.Ncol())
}

func TestCorrelationMatrix(t *testing.T) {
	tbl := table.MustNew(
		table.NewNumerical("x", []float64{1, 2, 3, 4, math.NaN()}),
		table.NewNumerical("y", []float64{2, 4, 6, 8, 100}),
		table.NewNumerical("z", []float64{4, 3, 2, 1, 0}),
		table.NewCategorical("s", []string{"a", "b", "c", "d", "e"}, nil),
	)
	corr, names := CorrelationMatrix(tbl)
	require.NotNil(t, corr)
	assert.Equal(t, []string{"x", "y", "z"}, names)
	assert.Equal(t, 1.0, corr.At(0, 0))
	assert.InDelta(t, 1.0, corr.At(0, 1), 1e-12, "the NaN row is skipped")
	assert.InDelta(t, -1.0, corr.At(0, 2), 1e-12)
	assert.Equal(t, corr.At(1, 2), corr.At(2, 1))

	empty, none := CorrelationMatrix(table.MustNew(table.NewCategorical("s", []string{"a"}, nil)))
	assert.Nil(t, empty)
	assert.Nil(t, none)
}
