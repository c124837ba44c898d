package preprocessing

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/datakit/core/model"
	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/pkg/errors"
	"github.com/YuminosukeSato/datakit/pkg/log"
)

// DefaultMaxOneHotCardinality is the largest number of distinct values for
// which a categorical column is one-hot encoded rather than label encoded.
const DefaultMaxOneHotCardinality = 10

// Option configures a DataPreprocessor.
type Option func(*DataPreprocessor)

// WithLogger sets the logger. The default is log.GetLoggerWithName("DataPreprocessor").
func WithLogger(l log.Logger) Option {
	return func(p *DataPreprocessor) {
		p.logger = l
	}
}

// WithMaxOneHotCardinality sets the one-hot/label encoding threshold.
func WithMaxOneHotCardinality(n int) Option {
	return func(p *DataPreprocessor) {
		p.maxOneHot = n
	}
}

// DataPreprocessor learns an impute, encode and scale pipeline over a table
// and replays it on new tables.
//
// FitTransform treats one column as the target: it is imputed but neither
// encoded nor scaled, and it is left in the output. Transform has no target
// argument, so callers drop a numerical target before calling it; otherwise
// the scaler sees one extra column and fails with a DimensionError.
//
// Fitting again discards the previous state. A DataPreprocessor is not safe
// for concurrent use.
type DataPreprocessor struct {
	state     *model.StateManager
	logger    log.Logger
	maxOneHot int

	target       string
	imputerOrder []string
	imputers     map[string]*SimpleImputer
	encoderOrder []string
	encoders     map[string]CategoricalEncoder
	scaler       *RobustScaler
	scaled       []string
}

// NewDataPreprocessor creates an unfitted preprocessor.
func NewDataPreprocessor(opts ...Option) *DataPreprocessor {
	p := &DataPreprocessor{
		state:     model.NewStateManager(),
		maxOneHot: DefaultMaxOneHotCardinality,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.GetLoggerWithName("DataPreprocessor")
	}
	p.reset()
	return p
}

func (p *DataPreprocessor) reset() {
	p.state.Reset()
	p.target = ""
	p.imputerOrder = nil
	p.imputers = make(map[string]*SimpleImputer)
	p.encoderOrder = nil
	p.encoders = make(map[string]CategoricalEncoder)
	p.scaler = nil
	p.scaled = nil
}

// FitTransform fits every step on t and returns the transformed copy.
// targetColumn may be empty. The input table is not modified.
func (p *DataPreprocessor) FitTransform(t *table.Table, targetColumn string) (out *table.Table, err error) {
	defer errors.Recover(&err, "DataPreprocessor.FitTransform")
	if t == nil {
		return nil, errors.NewValueError("DataPreprocessor.FitTransform", "nil table")
	}

	start := time.Now()
	p.reset()
	p.target = targetColumn
	logger := p.logger.With(log.OperationKey, log.OperationFitTransform, log.PhaseKey, log.PhasePreprocessing)
	if targetColumn != "" && !t.Has(targetColumn) {
		logger.Warn("target column not present, fitting without target", log.TargetKey, targetColumn)
	}

	out = t.Clone()
	if err := p.fitImpute(out, logger); err != nil {
		logger.Error("imputation failed", err)
		return nil, err
	}
	if err := p.fitEncode(out, logger); err != nil {
		logger.Error("encoding failed", err)
		return nil, err
	}
	if err := p.fitScale(out, logger); err != nil {
		logger.Error("scaling failed", err)
		return nil, err
	}

	features := make([]string, 0, out.Ncol())
	for _, name := range out.Names() {
		if name != targetColumn {
			features = append(features, name)
		}
	}
	p.state.SetFitted(out.Nrow(), features)

	logger.Info("fit completed",
		log.SamplesKey, out.Nrow(),
		log.FeaturesKey, len(features),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (p *DataPreprocessor) fitImpute(t *table.Table, logger log.Logger) error {
	for _, name := range t.Names() {
		c, _ := t.Column(name)
		missing := c.MissingCount()
		if missing == 0 {
			continue
		}
		strategy := StrategyMedian
		if c.Kind() == table.Categorical {
			strategy = StrategyMostFrequent
		}
		imp := NewSimpleImputer(strategy)
		filled, err := imp.FitTransform(c)
		if err != nil {
			return err
		}
		if err := t.Set(filled); err != nil {
			return err
		}
		p.imputerOrder = append(p.imputerOrder, name)
		p.imputers[name] = imp
		logger.Debug("imputed column",
			log.ColumnKey, name,
			log.MissingKey, missing,
			"strategy", string(strategy),
			"fill_value", imp.FillValue(),
		)
	}
	return nil
}

func (p *DataPreprocessor) fitEncode(t *table.Table, logger log.Logger) error {
	for _, name := range t.ColumnsOfKind(table.Categorical) {
		if name == p.target {
			continue
		}
		c, _ := t.Column(name)
		var enc CategoricalEncoder
		if c.NUnique() <= p.maxOneHot {
			enc = NewOneHotEncoder(true)
		} else {
			enc = NewLabelEncoder()
		}
		if err := enc.Fit(c); err != nil {
			return err
		}
		if err := applyEncoder(t, c, enc); err != nil {
			return err
		}
		p.encoderOrder = append(p.encoderOrder, name)
		p.encoders[name] = enc
		logger.Debug("encoded column",
			log.ColumnKey, name,
			log.EncodingKey, enc.Method(),
			"categories", len(enc.Categories()),
		)
	}
	return nil
}

func (p *DataPreprocessor) fitScale(t *table.Table, logger log.Logger) error {
	names := p.scalableColumns(t)
	if len(names) == 0 {
		logger.Debug("no numerical columns, scaling skipped")
		return nil
	}
	scaler := NewRobustScaler()
	if err := scaleInto(t, names, scaler.FitTransform); err != nil {
		return err
	}
	p.scaler = scaler
	p.scaled = names
	logger.Debug("scaled columns", log.FeaturesKey, len(names))
	return nil
}

// Transform replays the fitted steps on a copy of t.
//
// Imputation covers the fitted columns that t has. Encoders raise a
// ValueError on a category they did not see. Every numerical column of t is
// scaled, so the numerical layout must match the one seen by FitTransform.
func (p *DataPreprocessor) Transform(t *table.Table) (out *table.Table, err error) {
	defer errors.Recover(&err, "DataPreprocessor.Transform")
	if err := p.state.RequireFitted("DataPreprocessor", "Transform"); err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NewValueError("DataPreprocessor.Transform", "nil table")
	}

	start := time.Now()
	logger := p.logger.With(log.OperationKey, log.OperationTransform, log.PhaseKey, log.PhasePreprocessing)
	out = t.Clone()

	for _, name := range p.imputerOrder {
		c, ok := out.Column(name)
		if !ok {
			continue
		}
		filled, err := p.imputers[name].Transform(c)
		if err != nil {
			return nil, err
		}
		if err := out.Set(filled); err != nil {
			return nil, err
		}
	}

	for _, name := range p.encoderOrder {
		c, ok := out.Column(name)
		if !ok {
			continue
		}
		if err := applyEncoder(out, c, p.encoders[name]); err != nil {
			logger.Error("encoding failed", err, log.ColumnKey, name)
			return nil, err
		}
	}

	if p.scaler != nil {
		names := out.ColumnsOfKind(table.Numerical)
		if len(names) == 0 {
			return nil, errors.NewDimensionError("RobustScaler.Transform", p.scaler.NFeatures(), 0, 1)
		}
		if err := scaleInto(out, names, p.scaler.Transform); err != nil {
			logger.Error("scaling failed", err)
			return nil, err
		}
	}

	logger.Info("transform completed",
		log.SamplesKey, out.Nrow(),
		log.FeaturesKey, out.Ncol(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// FeatureNames returns the output columns recorded by FitTransform, target excluded.
func (p *DataPreprocessor) FeatureNames() []string {
	return p.state.FeatureNames()
}

// Target returns the target column given to the last FitTransform.
func (p *DataPreprocessor) Target() string {
	return p.target
}

// IsFitted reports whether FitTransform has completed.
func (p *DataPreprocessor) IsFitted() bool {
	return p.state.IsFitted()
}

// Imputer returns the fitted imputer of a column.
func (p *DataPreprocessor) Imputer(column string) (*SimpleImputer, bool) {
	imp, ok := p.imputers[column]
	return imp, ok
}

// Encoder returns the fitted encoder of a column.
func (p *DataPreprocessor) Encoder(column string) (CategoricalEncoder, bool) {
	enc, ok := p.encoders[column]
	return enc, ok
}

// Scaler returns the fitted scaler and the columns it was fitted on, or nil
// when no numerical column existed.
func (p *DataPreprocessor) Scaler() (*RobustScaler, []string) {
	return p.scaler, append([]string(nil), p.scaled...)
}

// Summary describes the fitted state for results files.
type Summary struct {
	Target       string            `json:"target,omitempty"`
	Imputed      map[string]string `json:"imputed"`
	Encoded      map[string]string `json:"encoded"`
	Scaled       []string          `json:"scaled"`
	FeatureNames []string          `json:"feature_names"`
}

// Summary returns a snapshot of the fitted state.
func (p *DataPreprocessor) Summary() Summary {
	s := Summary{
		Target:       p.target,
		Imputed:      make(map[string]string, len(p.imputers)),
		Encoded:      make(map[string]string, len(p.encoders)),
		Scaled:       append([]string(nil), p.scaled...),
		FeatureNames: p.FeatureNames(),
	}
	for name, imp := range p.imputers {
		s.Imputed[name] = imp.FillValue()
	}
	for name, enc := range p.encoders {
		s.Encoded[name] = enc.Method()
	}
	return s
}

func (p *DataPreprocessor) scalableColumns(t *table.Table) []string {
	var names []string
	for _, name := range t.ColumnsOfKind(table.Numerical) {
		if name != p.target {
			names = append(names, name)
		}
	}
	return names
}

// applyEncoder replaces c in t with the encoder output. A single column of the
// same name replaces in place; anything else drops c and appends at the end.
func applyEncoder(t *table.Table, c *table.Column, enc CategoricalEncoder) error {
	encoded, err := enc.Transform(c)
	if err != nil {
		return err
	}
	if len(encoded) != 1 || encoded[0].Name() != c.Name() {
		t.Drop(c.Name())
	}
	for _, col := range encoded {
		if err := t.Set(col); err != nil {
			return err
		}
	}
	return nil
}

func scaleInto(t *table.Table, names []string, fn func(X mat.Matrix) (mat.Matrix, error)) error {
	X, err := t.Matrix(names...)
	if err != nil {
		return err
	}
	scaled, err := fn(X)
	if err != nil {
		return err
	}
	back, err := table.FromMatrix(scaled, names)
	if err != nil {
		return err
	}
	for _, name := range names {
		c, _ := back.Column(name)
		if err := t.Set(c); err != nil {
			return err
		}
	}
	return nil
}
