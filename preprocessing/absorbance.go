package preprocessing

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

// ToAbsorbance converts reflectance R to absorbance -log10(R). Reflectance is
// clipped to [eps, 1] first, so zero or negative readings map to -log10(eps)
// instead of +Inf or NaN.
type ToAbsorbance struct {
	eps float64
	telemetry
}

// NewToAbsorbance creates the transform with eps 1e-5 unless overridden.
func NewToAbsorbance(opts ...AbsorbanceOption) *ToAbsorbance {
	a := &ToAbsorbance{eps: 1e-5, telemetry: newTelemetry("ToAbsorbance")}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ToAbsorbance) validate() error {
	if !(a.eps > 0 && a.eps <= 1) {
		return serrors.NewValidationError("eps", "must be in (0, 1]", a.eps)
	}
	return nil
}

// Fit validates eps.
func (a *ToAbsorbance) Fit(X mat.Matrix) error {
	return a.validate()
}

// Transform returns -log10(clip(X, eps, 1)).
func (a *ToAbsorbance) Transform(X mat.Matrix) (mat.Matrix, error) {
	start := time.Now()
	if err := a.validate(); err != nil {
		return nil, err
	}
	rows, cols, err := tensor.Dims("ToAbsorbance.Transform", X)
	if err != nil {
		return nil, err
	}

	out, err := tensor.MapRows(X, cols, func(_ int, src, dst []float64) error {
		for k, v := range src {
			dst[k] = -math.Log10(serrors.ClipValue(v, a.eps, 1))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.done(log.OperationTransform, rows, cols, start)
	return out, nil
}

// FitTransform is Fit followed by Transform.
func (a *ToAbsorbance) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := a.Fit(X); err != nil {
		return nil, err
	}
	return a.Transform(X)
}

// GetParams returns the transform's hyperparameters.
func (a *ToAbsorbance) GetParams() map[string]interface{} {
	return map[string]interface{}{"eps": a.eps}
}

func (a *ToAbsorbance) String() string {
	return fmt.Sprintf("ToAbsorbance(eps=%g)", a.eps)
}
