package savgol

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// Option configures a Filter.
type Option func(*Filter)

// WithDeriv sets the derivative order. 0 smooths.
func WithDeriv(deriv int) Option {
	return func(f *Filter) {
		f.deriv = deriv
	}
}

// WithDelta sets the sample spacing used to scale derivatives.
func WithDelta(delta float64) Option {
	return func(f *Filter) {
		f.delta = delta
	}
}

// Filter is a Savitzky-Golay filter with precomputed weights. It is safe for
// concurrent use.
type Filter struct {
	windowLength int
	polyorder    int
	deriv        int
	delta        float64

	// weights[c] evaluates the window fit at window position c; the interior
	// kernel is weights[halfWindow].
	weights [][]float64
	zero    bool
}

// New validates the parameters and precomputes the filter weights.
func New(windowLength, polyorder int, opts ...Option) (*Filter, error) {
	f := &Filter{
		windowLength: windowLength,
		polyorder:    polyorder,
		delta:        1,
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := Validate(f.windowLength, f.polyorder, f.deriv, f.delta); err != nil {
		return nil, err
	}

	if f.deriv > f.polyorder {
		f.zero = true
		return f, nil
	}

	w, err := windowWeights(f.windowLength, f.polyorder, f.deriv, f.delta)
	if err != nil {
		return nil, err
	}
	f.weights = w
	return f, nil
}

// Validate checks filter parameters without building weights.
func Validate(windowLength, polyorder, deriv int, delta float64) error {
	switch {
	case windowLength < 1:
		return serrors.NewValidationError("window_length", "must be a positive integer", windowLength)
	case windowLength%2 == 0:
		return serrors.NewValidationError("window_length", "must be odd", windowLength)
	case polyorder < 0:
		return serrors.NewValidationError("polyorder", "must be non-negative", polyorder)
	case polyorder >= windowLength:
		return serrors.NewValidationError("polyorder", fmt.Sprintf("must be less than window_length (%d)", windowLength), polyorder)
	case deriv < 0:
		return serrors.NewValidationError("deriv", "must be non-negative", deriv)
	case delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0):
		return serrors.NewValidationError("delta", "must be finite and non-zero", delta)
	}
	return nil
}

// WindowLength returns the window length.
func (f *Filter) WindowLength() int { return f.windowLength }

// PolyOrder returns the polynomial order.
func (f *Filter) PolyOrder() int { return f.polyorder }

// Deriv returns the derivative order.
func (f *Filter) Deriv() int { return f.deriv }

// Coefficients returns a copy of the interior kernel in dot-product order:
// y[i] = sum_k c[k]*x[i-halfWindow+k].
func (f *Filter) Coefficients() []float64 {
	c := make([]float64, f.windowLength)
	if !f.zero {
		copy(c, f.weights[f.windowLength/2])
	}
	return c
}

// Apply filters x into dst. dst and x must have the same length, at least
// the window length, and must not overlap.
func (f *Filter) Apply(dst, x []float64) error {
	n := len(x)
	if len(dst) != n {
		return serrors.NewDimensionError("savgol.Apply", n, len(dst), 1)
	}
	if f.windowLength > n {
		return serrors.NewValueError("savgol.Apply",
			fmt.Sprintf("window_length (%d) must be less than or equal to the size of x (%d)", f.windowLength, n))
	}
	if f.zero {
		clear(dst)
		return nil
	}

	half := f.windowLength / 2
	kernel := f.weights[half]
	for i := half; i < n-half; i++ {
		dst[i] = tensor.Dot(kernel, x[i-half:i+half+1])
	}

	head := x[:f.windowLength]
	tail := x[n-f.windowLength:]
	for c := 0; c < half; c++ {
		dst[c] = tensor.Dot(f.weights[c], head)
	}
	for c := half + 1; c < f.windowLength; c++ {
		dst[n-f.windowLength+c] = tensor.Dot(f.weights[c], tail)
	}
	return nil
}

// ApplyRows filters every row of X along the column axis.
func (f *Filter) ApplyRows(X mat.Matrix) (*mat.Dense, error) {
	_, cols, err := tensor.Dims("savgol.ApplyRows", X)
	if err != nil {
		return nil, err
	}
	return tensor.MapRows(X, cols, func(_ int, src, dst []float64) error {
		return f.Apply(dst, src)
	})
}

// Coefficients returns the interior kernel for the given parameters.
func Coefficients(windowLength, polyorder, deriv int, delta float64) ([]float64, error) {
	f, err := New(windowLength, polyorder, WithDeriv(deriv), WithDelta(delta))
	if err != nil {
		return nil, err
	}
	return f.Coefficients(), nil
}

// FilterSignal filters a single signal.
func FilterSignal(x []float64, windowLength, polyorder, deriv int, delta float64) ([]float64, error) {
	f, err := New(windowLength, polyorder, WithDeriv(deriv), WithDelta(delta))
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	if err := f.Apply(out, x); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterRows filters every row of X.
func FilterRows(X mat.Matrix, windowLength, polyorder, deriv int, delta float64) (*mat.Dense, error) {
	f, err := New(windowLength, polyorder, WithDeriv(deriv), WithDelta(delta))
	if err != nil {
		return nil, err
	}
	return f.ApplyRows(X)
}

// unitScale maps window offsets onto [-1, 1].
func unitScale(windowLength int) float64 {
	if half := windowLength / 2; half > 0 {
		return float64(half)
	}
	return 1
}

// windowWeights returns, for every window position c, the weights w such
// that dot(w, window) is the deriv-th derivative at c of the least-squares
// polynomial through the window.
//
// With u_k = (k-half)/s the design matrix A[j][k] = u_k^j is wide, and w is
// the minimum-norm solution of A w = g(c), where g holds the deriv-th
// derivatives of the monomials at u_c.
func windowWeights(windowLength, polyorder, deriv int, delta float64) ([][]float64, error) {
	half := windowLength / 2
	s := unitScale(windowLength)
	p := polyorder + 1

	A := mat.NewDense(p, windowLength, nil)
	for k := 0; k < windowLength; k++ {
		u := float64(k-half) / s
		v := 1.0
		for j := 0; j < p; j++ {
			A.Set(j, k, v)
			v *= u
		}
	}

	scale := math.Pow(s*delta, float64(deriv))
	G := mat.NewDense(p, windowLength, nil)
	for c := 0; c < windowLength; c++ {
		u := float64(c-half) / s
		for j := deriv; j < p; j++ {
			// d^deriv/du^deriv u^j = j!/(j-deriv)! u^(j-deriv)
			fall := 1.0
			for m := j - deriv + 1; m <= j; m++ {
				fall *= float64(m)
			}
			G.Set(j, c, fall*math.Pow(u, float64(j-deriv))/scale)
		}
	}

	var W mat.Dense
	if err := W.Solve(A, G); err != nil {
		var cond mat.Condition
		if !serrors.As(err, &cond) || math.IsInf(float64(cond), 0) {
			return nil, serrors.Wrapf(err, "savgol: solving for window=%d polyorder=%d", windowLength, polyorder)
		}
	}

	weights := make([][]float64, windowLength)
	for c := range weights {
		weights[c] = mat.Col(nil, c, &W)
	}
	return weights, nil
}
