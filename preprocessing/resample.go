package preprocessing

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/model"
	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

// InterpolationKind selects the interpolant used by Resample.
type InterpolationKind string

const (
	// Cubic is a not-a-knot cubic spline.
	Cubic InterpolationKind = "cubic"
	// Natural is a cubic spline with zero second derivative at both ends.
	Natural InterpolationKind = "natural"
	// Clamped is a cubic spline with zero first derivative at both ends.
	Clamped InterpolationKind = "clamped"
	// Akima is Akima's locally weighted cubic.
	Akima InterpolationKind = "akima"
	// PCHIP is the monotone Fritsch-Butland cubic.
	PCHIP InterpolationKind = "pchip"
	// Linear is piecewise linear interpolation.
	Linear InterpolationKind = "linear"
)

// ParseInterpolation converts a name into an InterpolationKind.
func ParseInterpolation(name string) (InterpolationKind, error) {
	switch k := InterpolationKind(name); k {
	case Cubic, Natural, Clamped, Akima, PCHIP, Linear:
		return k, nil
	}
	return "", serrors.NewValidationError("interpolation",
		"must be one of cubic, natural, clamped, akima, pchip, linear", name)
}

// minAxisPoints is the shortest axis every interpolation kind accepts.
const minAxisPoints = 2

// predictor returns the interpolant for an axis of n points. A not-a-knot
// spline through two points is the line and through three the parabola.
func (k InterpolationKind) predictor(n int) interp.FittablePredictor {
	switch k {
	case Natural:
		return &interp.NaturalCubic{}
	case Clamped:
		return &interp.ClampedCubic{}
	case Akima:
		return &interp.AkimaSpline{}
	case PCHIP:
		return &interp.FritschButland{}
	case Linear:
		return &interp.PiecewiseLinear{}
	}
	switch n {
	case 2:
		return &interp.PiecewiseLinear{}
	case 3:
		return &parabola{}
	default:
		return &interp.NotAKnotCubic{}
	}
}

// parabola is the quadratic through three points in Newton form.
type parabola struct {
	x0, x1, y0, c1, c2 float64
}

func (p *parabola) Fit(xs, ys []float64) error {
	if len(xs) != 3 || len(ys) != 3 {
		return serrors.NewDimensionError("parabola.Fit", 3, len(ys), 1)
	}
	d01 := (ys[1] - ys[0]) / (xs[1] - xs[0])
	d12 := (ys[2] - ys[1]) / (xs[2] - xs[1])
	*p = parabola{x0: xs[0], x1: xs[1], y0: ys[0], c1: d01, c2: (d12 - d01) / (xs[2] - xs[0])}
	return nil
}

func (p *parabola) Predict(x float64) float64 {
	return p.y0 + (x-p.x0)*(p.c1+p.c2*(x-p.x1))
}

func (p *parabola) PredictDerivative(x float64) float64 {
	return p.c1 + p.c2*(2*x-p.x0-p.x1)
}

// hermite is the cubic on [x0, x0+h] with end values y0, y1 and slopes d0,
// d1. Evaluated outside that interval it continues the same polynomial.
type hermite struct {
	x0, h, y0, y1, d0, d1 float64
}

// endPiece rebuilds the piece of pred between the nodes x0 < x1. Predictors
// without derivatives are piecewise linear, so the secant is their slope.
func endPiece(pred interp.Predictor, x0, x1 float64) hermite {
	c := hermite{x0: x0, h: x1 - x0, y0: pred.Predict(x0), y1: pred.Predict(x1)}
	if dp, ok := pred.(interp.DerivativePredictor); ok {
		c.d0, c.d1 = dp.PredictDerivative(x0), dp.PredictDerivative(x1)
	} else {
		c.d0 = (c.y1 - c.y0) / c.h
		c.d1 = c.d0
	}
	return c
}

func (c hermite) at(x float64) float64 {
	s := (x - c.x0) / c.h
	s2 := s * s
	s3 := s2 * s
	return (2*s3-3*s2+1)*c.y0 + (s3-2*s2+s)*c.h*c.d0 + (-2*s3+3*s2)*c.y1 + (s3-s2)*c.h*c.d1
}

type resampleParams struct {
	// originalX is strictly increasing
	originalX []float64
	// reversed rows must be flipped to match originalX
	reversed bool
}

// Resample interpolates every spectrum from the axis supplied to FitAxis
// onto a fixed target axis.
//
// Targets outside the original axis continue the first or last polynomial
// piece of the interpolant and are reported with an ExtrapolationWarning.
type Resample struct {
	targetX []float64
	kind    InterpolationKind

	state *model.StateManager[resampleParams]
	telemetry
}

// NewResample creates a Resample onto targetX. The default interpolation is
// a not-a-knot cubic spline.
//
// 使用例:
//
//	r := preprocessing.NewResample(grid, preprocessing.WithInterpolation(preprocessing.PCHIP))
//	if err := r.FitAxis(X, wavenumbers); err != nil { ... }
//	Xr, err := r.Transform(X)
func NewResample(targetX []float64, opts ...ResampleOption) *Resample {
	r := &Resample{
		targetX:   slices.Clone(targetX),
		kind:      Cubic,
		state:     model.NewStateManager[resampleParams](),
		telemetry: newTelemetry("Resample"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit always fails: Resample needs the original axis, use FitAxis.
func (r *Resample) Fit(X mat.Matrix) error {
	return serrors.NewMissingInputError("Resample.Fit", "x")
}

// FitAxis records x, the axis of the columns of X.
func (r *Resample) FitAxis(X mat.Matrix, x []float64) error {
	start := time.Now()
	rows, cols, err := tensor.Dims("Resample.Fit", X)
	if err != nil {
		return err
	}
	if x == nil {
		return serrors.NewMissingInputError("Resample.Fit", "x")
	}
	if len(x) != cols {
		return serrors.NewDimensionError("Resample.Fit", cols, len(x), 1)
	}
	if _, err := ParseInterpolation(string(r.kind)); err != nil {
		return err
	}
	if cols < minAxisPoints {
		return serrors.NewValidationError("x",
			fmt.Sprintf("interpolation needs at least %d points", minAxisPoints), cols)
	}
	if err := r.validateTarget(); err != nil {
		return err
	}
	increasing, ok := tensor.Monotonic(x)
	if !ok {
		return serrors.NewValidationError("x", "must be strictly monotonic", x)
	}

	p := resampleParams{originalX: slices.Clone(x), reversed: !increasing}
	if p.reversed {
		slices.Reverse(p.originalX)
	}
	r.state.Set(p, rows, cols)

	r.done(log.OperationFit, rows, cols, start, log.InterpolationKey, string(r.kind))
	return nil
}

func (r *Resample) validateTarget() error {
	if len(r.targetX) == 0 {
		return serrors.NewValidationError("target_x", "must not be empty", r.targetX)
	}
	for _, v := range r.targetX {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return serrors.NewValidationError("target_x", "must be finite", v)
		}
	}
	return nil
}

// Transform interpolates every row of X onto the target axis.
func (r *Resample) Transform(X mat.Matrix) (mat.Matrix, error) {
	start := time.Now()
	p, err := r.state.Params("Resample", "Transform")
	if err != nil {
		return nil, err
	}
	if err := tensor.CheckColumns("Resample.Transform", X, len(p.originalX)); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()

	r.warnExtrapolation(p.originalX)

	out, err := tensor.MapRows(X, len(r.targetX), func(i int, src, dst []float64) error {
		if p.reversed {
			slices.Reverse(src)
		}
		xs := p.originalX
		pred := r.kind.predictor(len(xs))
		err := serrors.SafeExecute("Resample.Transform", func() error {
			return pred.Fit(xs, src)
		})
		if err != nil {
			return serrors.Wrapf(err, "Resample.Transform: row %d", i)
		}
		var first, last *hermite
		n := len(xs)
		for j, t := range r.targetX {
			switch {
			case t < xs[0]:
				if first == nil {
					c := endPiece(pred, xs[0], xs[1])
					first = &c
				}
				dst[j] = first.at(t)
			case t > xs[n-1]:
				if last == nil {
					c := endPiece(pred, xs[n-2], xs[n-1])
					last = &c
				}
				dst[j] = last.at(t)
			default:
				dst[j] = pred.Predict(t)
			}
		}
		return nil
	})
	if err != nil {
		r.failed(log.OperationTransform, err)
		return nil, err
	}

	r.done(log.OperationTransform, rows, cols, start,
		log.InterpolationKey, string(r.kind),
		log.OutputFeaturesKey, len(r.targetX),
	)
	return out, nil
}

func (r *Resample) warnExtrapolation(x []float64) {
	lo, hi := x[0], x[len(x)-1]
	count := 0
	for _, t := range r.targetX {
		if t < lo || t > hi {
			count++
		}
	}
	if count > 0 {
		serrors.Warn(serrors.NewExtrapolationWarning("Resample.Transform", count, lo, hi,
			floats.Min(r.targetX), floats.Max(r.targetX)))
	}
}

// FitTransform calls Fit, so it always returns a MissingInputError. Use
// FitAxisTransform to supply the original axis.
func (r *Resample) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := r.Fit(X); err != nil {
		return nil, err
	}
	return r.Transform(X)
}

// FitAxisTransform is FitAxis followed by Transform.
func (r *Resample) FitAxisTransform(X mat.Matrix, x []float64) (mat.Matrix, error) {
	if err := r.FitAxis(X, x); err != nil {
		return nil, err
	}
	return r.Transform(X)
}

// OutputAxis returns a copy of the target axis.
func (r *Resample) OutputAxis() []float64 {
	return slices.Clone(r.targetX)
}

// OriginalAxis returns the fitted axis in the order it was supplied, or nil
// before FitAxis.
func (r *Resample) OriginalAxis() []float64 {
	st, ok := r.state.State().(model.Fitted[resampleParams])
	if !ok {
		return nil
	}
	x := slices.Clone(st.Params.originalX)
	if st.Params.reversed {
		slices.Reverse(x)
	}
	return x
}

// IsFitted reports whether FitAxis has been called.
func (r *Resample) IsFitted() bool {
	return r.state.IsFitted()
}

// GetParams returns the transform's hyperparameters.
func (r *Resample) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"target_x":      r.OutputAxis(),
		"interpolation": string(r.kind),
	}
}

func (r *Resample) String() string {
	if len(r.targetX) == 0 {
		return fmt.Sprintf("Resample(points=0, interpolation=%s)", r.kind)
	}
	return fmt.Sprintf("Resample(points=%d, range=[%g, %g], interpolation=%s)",
		len(r.targetX), r.targetX[0], r.targetX[len(r.targetX)-1], r.kind)
}
