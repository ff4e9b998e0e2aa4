package preprocessing

import "github.com/YuminosukeSato/spectro/signal/wavelet"

// SNVOption configures SNV.
type SNVOption func(*SNV)

// WithCenter sets the per-spectrum centre reduction (default Mean).
func WithCenter(r Reduction) SNVOption {
	return func(s *SNV) {
		s.center = r
	}
}

// WithScale sets the per-spectrum scale reduction (default Std). It is
// evaluated on the centred spectrum.
func WithScale(r Reduction) SNVOption {
	return func(s *SNV) {
		s.scale = r
	}
}

// WithSNVEps sets the constant added to the scale.
func WithSNVEps(eps float64) SNVOption {
	return func(s *SNV) {
		s.eps = eps
	}
}

// MSCOption configures MSC.
type MSCOption func(*MSC)

// WithReferenceMethod selects a named column-wise reference: "mean" or
// "median". Unknown names fail at Fit.
func WithReferenceMethod(method string) MSCOption {
	return func(m *MSC) {
		m.referenceMethod = method
		m.referenceFunc = nil
		m.fixedReference = nil
	}
}

// WithReferenceFunc computes the reference with an arbitrary column-wise
// reduction.
func WithReferenceFunc(r Reduction) MSCOption {
	return func(m *MSC) {
		m.referenceFunc = r
		m.fixedReference = nil
	}
}

// WithReferenceSpectrum uses a fixed reference spectrum. The slice is copied.
func WithReferenceSpectrum(ref []float64) MSCOption {
	return func(m *MSC) {
		m.fixedReference = append([]float64(nil), ref...)
		m.referenceFunc = nil
	}
}

// WithNJobs sets the number of parallel workers. Values <= 0 use every CPU,
// 1 runs sequentially.
func WithNJobs(n int) MSCOption {
	return func(m *MSC) {
		m.nJobs = n
	}
}

// FilterOption configures the Savitzky-Golay based transforms
// (TakeDerivative and SavGolSmooth).
type FilterOption func(*filterConfig)

type filterConfig struct {
	windowLength int
	polyorder    int
	deriv        int
	delta        float64
}

// WithWindowLength sets the filter window; it must be odd.
func WithWindowLength(n int) FilterOption {
	return func(c *filterConfig) {
		c.windowLength = n
	}
}

// WithPolyOrder sets the order of the fitted polynomial.
func WithPolyOrder(p int) FilterOption {
	return func(c *filterConfig) {
		c.polyorder = p
	}
}

// WithDeriv sets the derivative order.
func WithDeriv(d int) FilterOption {
	return func(c *filterConfig) {
		c.deriv = d
	}
}

// WithDelta sets the wavelength spacing used to scale derivatives.
func WithDelta(delta float64) FilterOption {
	return func(c *filterConfig) {
		c.delta = delta
	}
}

// WaveletOption configures WaveletDenoise.
type WaveletOption func(*WaveletDenoise)

// WithWavelet sets the wavelet name, e.g. "db6" or "haar".
func WithWavelet(name string) WaveletOption {
	return func(w *WaveletDenoise) {
		w.wavelet = name
	}
}

// WithLevel fixes the decomposition level instead of using the maximum
// level for each spectrum.
func WithLevel(level int) WaveletOption {
	return func(w *WaveletDenoise) {
		w.level = level
		w.levelSet = true
	}
}

// WithThresholdMode sets the shrinkage rule.
func WithThresholdMode(mode wavelet.ThresholdMode) WaveletOption {
	return func(w *WaveletDenoise) {
		w.mode = mode
	}
}

// AbsorbanceOption configures ToAbsorbance.
type AbsorbanceOption func(*ToAbsorbance)

// WithAbsorbanceEps sets the lower clipping bound for reflectance.
func WithAbsorbanceEps(eps float64) AbsorbanceOption {
	return func(a *ToAbsorbance) {
		a.eps = eps
	}
}

// ResampleOption configures Resample.
type ResampleOption func(*Resample)

// WithInterpolation sets the interpolation kind.
func WithInterpolation(kind InterpolationKind) ResampleOption {
	return func(r *Resample) {
		r.kind = kind
	}
}

// ScalerOption configures StandardScaler.
type ScalerOption func(*StandardScaler)

// WithMean sets whether columns are centred (default true).
func WithMean(on bool) ScalerOption {
	return func(s *StandardScaler) {
		s.withMean = on
	}
}

// WithStd sets whether columns are scaled to unit variance (default true).
func WithStd(on bool) ScalerOption {
	return func(s *StandardScaler) {
		s.withStd = on
	}
}
