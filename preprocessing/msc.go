package preprocessing

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/spectro/core/model"
	"github.com/YuminosukeSato/spectro/core/parallel"
	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

type mscParams struct {
	reference []float64
}

// MSC performs Multiplicative Scatter Correction. Fit computes a reference
// spectrum; Transform regresses every spectrum on the reference,
// x ≈ a*ref + b, and returns (x - b) / a.
type MSC struct {
	referenceMethod string
	referenceFunc   Reduction
	fixedReference  []float64
	nJobs           int

	state *model.StateManager[mscParams]
	telemetry
}

// NewMSC creates an MSC transform. The default reference is the column-wise
// mean and rows are processed on every CPU.
func NewMSC(opts ...MSCOption) *MSC {
	m := &MSC{
		referenceMethod: "mean",
		state:           model.NewStateManager[mscParams](),
		telemetry:       newTelemetry("MSC"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit computes the reference spectrum from X, or validates the fixed
// reference against X's width.
func (m *MSC) Fit(X mat.Matrix) error {
	start := time.Now()
	rows, cols, err := tensor.Dims("MSC.Fit", X)
	if err != nil {
		return err
	}

	ref, err := m.reference(X, cols)
	if err != nil {
		m.failed(log.OperationFit, err)
		return err
	}

	m.state.Set(mscParams{reference: ref}, rows, cols)
	m.done(log.OperationFit, rows, cols, start, log.ReferenceKey, m.referenceLabel())
	return nil
}

func (m *MSC) reference(X mat.Matrix, cols int) ([]float64, error) {
	if m.fixedReference != nil {
		if len(m.fixedReference) != cols {
			return nil, serrors.NewDimensionError("MSC.Fit", len(m.fixedReference), cols, 1)
		}
		return append([]float64(nil), m.fixedReference...), nil
	}

	reduce := m.referenceFunc
	if reduce == nil {
		switch m.referenceMethod {
		case "mean":
			reduce = Mean
		case "median":
			reduce = Median
		default:
			return nil, serrors.NewValidationError("reference_method", "must be 'mean' or 'median'", m.referenceMethod)
		}
	}

	rows, _ := X.Dims()
	ref := make([]float64, cols)
	col := make([]float64, rows)
	for j := range cols {
		mat.Col(col, j, X)
		ref[j] = reduce.Reduce(col)
	}
	return ref, nil
}

// Transform corrects every row of X against the fitted reference. A row
// whose fitted slope is zero or not finite aborts the whole call with a
// NumericalInstabilityError.
func (m *MSC) Transform(X mat.Matrix) (mat.Matrix, error) {
	start := time.Now()
	params, err := m.state.Params("MSC", "Transform")
	if err != nil {
		return nil, err
	}
	ref := params.reference
	if err := tensor.CheckColumns("MSC.Transform", X, len(ref)); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()

	out, err := tensor.MapRowsParallel(X, cols, m.nJobs, func(i int, src, dst []float64) error {
		intercept, slope := stat.LinearRegression(ref, src, nil, false)
		fit := []float64{slope, intercept}
		if err := serrors.CheckNumericalStability("MSC.Transform", fit, i); err != nil {
			return err
		}
		if slope == 0 {
			return serrors.NewNumericalInstabilityError("MSC.Transform", fit, i)
		}
		for k, v := range src {
			dst[k] = (v - intercept) / slope
		}
		return nil
	})
	if err != nil {
		m.failed(log.OperationTransform, err)
		return nil, err
	}

	m.done(log.OperationTransform, rows, cols, start, log.WorkersKey, parallel.Workers(m.nJobs, rows))
	return out, nil
}

// FitTransform is Fit followed by Transform.
func (m *MSC) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// Reference returns a copy of the fitted reference spectrum, or nil before
// Fit.
func (m *MSC) Reference() []float64 {
	params, err := m.state.Params("MSC", "Reference")
	if err != nil {
		return nil
	}
	return append([]float64(nil), params.reference...)
}

// IsFitted reports whether Fit has succeeded.
func (m *MSC) IsFitted() bool {
	return m.state.IsFitted()
}

func (m *MSC) referenceLabel() string {
	switch {
	case m.fixedReference != nil:
		return "fixed"
	case m.referenceFunc != nil:
		return reductionName(m.referenceFunc)
	default:
		return m.referenceMethod
	}
}

// GetParams returns the transform's hyperparameters.
func (m *MSC) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"reference_method": m.referenceLabel(),
		"n_jobs":           m.nJobs,
	}
}

// String returns a readable description.
func (m *MSC) String() string {
	if nFeatures, nSamples := m.state.GetDimensions(); m.state.IsFitted() {
		return fmt.Sprintf("MSC(reference=%s, n_jobs=%d, n_features=%d, n_samples=%d)", m.referenceLabel(), m.nJobs, nFeatures, nSamples)
	}
	return fmt.Sprintf("MSC(reference=%s, n_jobs=%d)", m.referenceLabel(), m.nJobs)
}
