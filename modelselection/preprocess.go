package modelselection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
	"github.com/YuminosukeSato/datakit/pkg/log"
	"github.com/YuminosukeSato/datakit/preprocessing"
)

// Split is the result of PreprocessData. XTrain and XTest are standard-scaled
// with statistics learned on XTrain only.
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest *table.Column

	FeatureNames []string
	TrainIndex   []int
	TestIndex    []int
	Scaler       *preprocessing.StandardScaler
}

// PreprocessData is the quick baseline pipeline. It drops the target,
// label-encodes categorical features with missing values as their own
// category, fills numerical gaps with the column mean, splits the rows
// (stratified when the target is categorical) and standard-scales.
func PreprocessData(t *table.Table, target string, testSize float64, seed int64) (split *Split, err error) {
	defer errors.Recover(&err, "PreprocessData")
	const op = "PreprocessData"

	y, ok := t.Column(target)
	if !ok {
		return nil, errors.NewValueErrorf(op, "target column %q not found", target)
	}
	X := t.Clone()
	X.Drop(target)

	for _, name := range X.ColumnsOfKind(table.Categorical) {
		c, _ := X.Column(name)
		asText := table.NewCategorical(name, c.Strings(), nil)
		enc := preprocessing.NewLabelEncoder()
		if err := enc.Fit(asText); err != nil {
			return nil, err
		}
		codes, err := enc.Transform(asText)
		if err != nil {
			return nil, err
		}
		if err := X.Set(codes[0]); err != nil {
			return nil, err
		}
	}
	for _, name := range X.Names() {
		c, _ := X.Column(name)
		if c.MissingCount() == 0 {
			continue
		}
		filled, err := preprocessing.NewSimpleImputer(preprocessing.StrategyMean).FitTransform(c)
		if err != nil {
			return nil, err
		}
		if err := X.Set(filled); err != nil {
			return nil, err
		}
	}

	var stratify []string
	if y.Kind() == table.Categorical {
		stratify = y.Strings()
	}
	train, test, err := TrainTestSplit(t.Nrow(), testSize, seed, stratify)
	if err != nil {
		return nil, err
	}

	names := X.Names()
	xTrain, err := X.Take(train).Matrix(names...)
	if err != nil {
		return nil, err
	}
	xTest, err := X.Take(test).Matrix(names...)
	if err != nil {
		return nil, err
	}
	scaler := preprocessing.NewStandardScalerDefault()
	trainScaled, err := scaler.FitTransform(xTrain)
	if err != nil {
		return nil, err
	}
	testScaled, err := scaler.Transform(xTest)
	if err != nil {
		return nil, err
	}

	log.GetLoggerWithName("modelselection").Debug("data split",
		log.OperationKey, log.OperationSplit,
		log.TargetKey, target,
		log.SamplesKey, t.Nrow(),
		log.FeaturesKey, len(names),
		"train", len(train),
		"test", len(test),
		log.RandomSeedKey, seed,
	)
	return &Split{
		XTrain:       mat.DenseCopyOf(trainScaled),
		XTest:        mat.DenseCopyOf(testScaled),
		YTrain:       y.Take(train),
		YTest:        y.Take(test),
		FeatureNames: names,
		TrainIndex:   train,
		TestIndex:    test,
		Scaler:       scaler,
	}, nil
}
