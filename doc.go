// Package datakit is a datathon starter kit: it checks that a project is set
// up and turns raw tables into model-ready features.
//
// # Quick Start
//
//	t, err := dataio.Load("data/raw/train.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p := preprocessing.NewDataPreprocessor()
//	processed, err := p.FitTransform(t, "churn")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	y, _ := processed.Column("churn")
//	features := processed.Clone()
//	features.Drop("churn")
//	selected, names, err := preprocessing.SelectFeatures(preprocessing.CreateFeatures(features), y, 20)
//
// # Packages
//
//   - core/table: column-typed tables with explicit missing values
//   - core/model: estimator interfaces and fitted-state bookkeeping
//   - core/parallel: row-range parallelism above a size threshold
//   - preprocessing: imputers, encoders, scalers, feature creation and selection
//   - dataio: CSV, JSON and Excel loading, inspection and saving
//   - eda: quick exploratory summaries
//   - plots: correlation heatmaps, histograms and confusion matrices as PNG
//   - modelselection: train/test splitting and the quick baseline pipeline
//   - linear: least squares and nearest centroid baselines
//   - metrics, evaluation: classification and regression scores
//   - pkg/errors, pkg/log: structured errors and zerolog-backed logging
//
// The datakit command (cmd/datakit) wraps these as status, inspect,
// preprocess, plot and baseline subcommands.
package datakit
