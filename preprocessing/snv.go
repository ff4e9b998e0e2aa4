package preprocessing

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/tensor"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

// SNV applies the Standard Normal Variate transform to each spectrum:
//
//	(x - center(x)) / (scale(x - center(x)) + eps)
//
// With the defaults every output row has zero mean and unit population
// standard deviation. SNV has no fitted state.
type SNV struct {
	center Reduction
	scale  Reduction
	eps    float64

	telemetry
}

// NewSNV creates an SNV transform. Defaults: center Mean, scale Std,
// eps 1e-10.
//
// 使用例:
//
//	snv := preprocessing.NewSNV(preprocessing.WithCenter(preprocessing.Median),
//	    preprocessing.WithScale(preprocessing.MAD))
//	Xs, err := snv.Transform(X)
func NewSNV(opts ...SNVOption) *SNV {
	s := &SNV{
		center:    Mean,
		scale:     Std,
		eps:       1e-10,
		telemetry: newTelemetry("SNV"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit is a no-op.
func (s *SNV) Fit(X mat.Matrix) error {
	return nil
}

// Transform normalises every row of X.
func (s *SNV) Transform(X mat.Matrix) (mat.Matrix, error) {
	start := time.Now()
	rows, cols, err := tensor.Dims("SNV.Transform", X)
	if err != nil {
		return nil, err
	}

	out, err := tensor.MapRows(X, cols, func(_ int, src, dst []float64) error {
		c := s.center.Reduce(src)
		floats.AddConst(-c, src)
		scale := s.scale.Reduce(src) + s.eps
		tensor.Scale(dst, src, 1/scale)
		return nil
	})
	if err != nil {
		s.failed(log.OperationTransform, err)
		return nil, err
	}

	s.done(log.OperationTransform, rows, cols, start)
	return out, nil
}

// FitTransform is Fit followed by Transform.
func (s *SNV) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// GetParams returns the transform's hyperparameters.
func (s *SNV) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"center": reductionName(s.center),
		"scale":  reductionName(s.scale),
		"eps":    s.eps,
	}
}

// String returns a readable description.
func (s *SNV) String() string {
	return fmt.Sprintf("SNV(center=%s, scale=%s, eps=%g)", reductionName(s.center), reductionName(s.scale), s.eps)
}
