package log

// Component and operation context.
const (
	// ModelNameKey names the transformer or estimator, e.g. "StandardScaler".
	ModelNameKey = "model.name"

	// ComponentKey names the logger's component. Set by GetLoggerWithName.
	ComponentKey = "component"

	// OperationKey is one of the Operation* values below.
	OperationKey = "ml.operation"

	// PhaseKey is one of the Phase* values below.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	TargetKey   = "data.target"
	ColumnKey   = "data.column"
	MissingKey  = "data.missing"
	MemoryKey   = "data.memory_bytes"
)

// Feature engineering and selection.
const (
	SelectedKey  = "features.selected"
	ScoreFuncKey = "features.score_func"
	CreatedKey   = "features.created"
	EncodingKey  = "features.encoding"
)

// I/O.
const (
	PathKey   = "io.path"
	FormatKey = "io.format"
)

// Performance and evaluation.
const (
	DurationMsKey = "perf.duration_ms"
	AccuracyKey   = "metrics.accuracy"
	F1ScoreKey    = "metrics.f1_score"
	R2ScoreKey    = "metrics.r2_score"
	RandomSeedKey = "config.random_seed"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	StacktraceKey = "error.stacktrace"
)

const (
	OperationFit            = "fit"
	OperationTransform      = "transform"
	OperationFitTransform   = "fit_transform"
	OperationCreateFeatures = "create_features"
	OperationSelect         = "select_features"
	OperationLoad           = "load"
	OperationEvaluate       = "evaluate"
	OperationSplit          = "split"

	PhasePreprocessing      = "preprocessing"
	PhaseFeatureEngineering = "feature_engineering"
	PhaseInspection         = "inspection"
	PhaseEvaluation         = "evaluation"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorUnknownCategory   = "UNKNOWN_CATEGORY"
)
