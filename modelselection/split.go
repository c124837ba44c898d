// Package modelselection splits tables into train and test sets and runs the
// basic preprocessing used by quick baseline models.
package modelselection

import (
	"math"
	"math/rand"
	"sort"

	"github.com/YuminosukeSato/datakit/pkg/errors"
)

// DefaultTestSize is the test fraction used by the CLI and PreprocessData callers.
const DefaultTestSize = 0.2

// DefaultSeed seeds the shuffle.
const DefaultSeed int64 = 42

// TrainTestSplit shuffles the row indices 0..n-1 with seed and returns the
// train and test indices. The test set has ceil(testSize*n) rows.
//
// When stratify is non-nil it holds one class label per row, and every class
// keeps its share of the test set. Per-class counts are floored and the rows
// left over go to the classes with the largest remainders.
func TrainTestSplit(n int, testSize float64, seed int64, stratify []string) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	if n < 2 || nTest == 0 || nTest == n {
		return nil, nil, errors.NewValueErrorf("TrainTestSplit", "cannot split %d samples with test_size=%g", n, testSize)
	}
	rng := rand.New(rand.NewSource(seed))

	if stratify == nil {
		perm := rng.Perm(n)
		return perm[nTest:], perm[:nTest], nil
	}
	if len(stratify) != n {
		return nil, nil, errors.NewDimensionError("TrainTestSplit", n, len(stratify), 0)
	}
	return stratifiedSplit(stratify, nTest, rng)
}

func stratifiedSplit(labels []string, nTest int, rng *rand.Rand) (train, test []int, err error) {
	groups := make(map[string][]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	classes := make([]string, 0, len(groups))
	for l, idx := range groups {
		if len(idx) < 2 {
			return nil, nil, errors.NewValueErrorf("TrainTestSplit",
				"class %q has %d member, stratified split needs at least 2", l, len(idx))
		}
		classes = append(classes, l)
	}
	sort.Strings(classes)
	if nTest < len(classes) {
		return nil, nil, errors.NewValueErrorf("TrainTestSplit",
			"test size %d is smaller than the number of classes %d", nTest, len(classes))
	}
	if len(labels)-nTest < len(classes) {
		return nil, nil, errors.NewValueErrorf("TrainTestSplit",
			"train size %d is smaller than the number of classes %d", len(labels)-nTest, len(classes))
	}

	n := len(labels)
	quota := make([]int, len(classes))
	remainders := make([]float64, len(classes))
	assigned := 0
	for i, l := range classes {
		exact := float64(nTest) * float64(len(groups[l])) / float64(n)
		quota[i] = int(math.Floor(exact))
		remainders[i] = exact - float64(quota[i])
		assigned += quota[i]
	}
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for k := 0; assigned < nTest; k = (k + 1) % len(order) {
		i := order[k]
		if quota[i] < len(groups[classes[i]])-1 {
			quota[i]++
			assigned++
		}
	}

	for i, l := range classes {
		idx := groups[l]
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		test = append(test, idx[:quota[i]]...)
		train = append(train, idx[quota[i]:]...)
	}
	rng.Shuffle(len(test), func(a, b int) { test[a], test[b] = test[b], test[a] })
	rng.Shuffle(len(train), func(a, b int) { train[a], train[b] = train[b], train[a] })
	return train, test, nil
}
