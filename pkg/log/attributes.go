// Standard attribute keys. Keys follow a dotted hierarchy ("model.name",
// "data.samples") so that records from different transforms can be filtered
// uniformly.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the transform type, e.g. "SNV", "MSC".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one transform instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey is one of the Operation* values below.
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"

	// StepKey is the pipeline step name.
	StepKey = "pipeline.step"

	PipelineNameKey  = "pipeline.name"
	PipelineStepsKey = "pipeline.steps"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"

	// OutputFeaturesKey is set by transforms whose output width differs from
	// the input width.
	OutputFeaturesKey = "data.output_features"
)

// Performance.
const (
	DurationMsKey = "perf.duration_ms"
	WorkersKey    = "perf.workers"
)

// Spectral hyperparameters.
const (
	WaveletKey       = "spectral.wavelet"
	LevelKey         = "spectral.level"
	WindowLengthKey  = "spectral.window_length"
	PolyOrderKey     = "spectral.polyorder"
	DerivKey         = "spectral.deriv"
	ReferenceKey     = "spectral.reference"
	InterpolationKey = "spectral.interpolation"
)

// Error context.
const (
	ErrorCodeKey = "error.code"
	ErrorTypeKey = "error.type"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorMissingInput      = "MISSING_INPUT"
)
