// Package preprocessing turns raw tables into model-ready features.
//
// DataPreprocessor learns a three-step pipeline (impute, encode, scale) with
// FitTransform and replays it with Transform:
//
//	p := preprocessing.NewDataPreprocessor()
//	train, err := p.FitTransform(rawTrain, "target")
//	...
//	rawTest.Drop("target")
//	test, err := p.Transform(rawTest)
//
// CreateFeatures adds product and ratio features for the most correlated
// numerical pairs, and SelectFeatures keeps the k columns that score highest
// against a target by mutual information (classification) or the F statistic
// (regression).
package preprocessing
