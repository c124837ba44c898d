package linear

// Option configures LinearRegression.
type Option func(*LinearRegression)

// WithFitIntercept sets whether to learn an intercept. Default true.
func WithFitIntercept(fit bool) Option {
	return func(lr *LinearRegression) {
		lr.fitIntercept = fit
	}
}

// CentroidOption configures NearestCentroid.
type CentroidOption func(*NearestCentroid)

// WithShrinkThreshold zeroes the part of each centroid within threshold
// (in within-class standard deviations) of the overall mean. Zero disables
// shrinking.
func WithShrinkThreshold(threshold float64) CentroidOption {
	return func(nc *NearestCentroid) {
		nc.shrinkThreshold = threshold
	}
}
