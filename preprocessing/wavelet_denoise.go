package preprocessing

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
	"github.com/YuminosukeSato/spectro/signal/wavelet"
)

// madScale converts the median absolute deviation of Gaussian noise to its
// standard deviation.
const madScale = 0.6745

// WaveletDenoise removes noise from every spectrum by wavelet shrinkage.
//
// Each spectrum is decomposed to level L, the noise level is estimated from
// the median absolute detail coefficient, and detail band i (1 = coarsest)
// is thresholded at sigma*sqrt(2 ln n) / 2^((L-i)/2). The approximation band
// is kept as is.
type WaveletDenoise struct {
	wavelet  string
	level    int
	levelSet bool
	mode     wavelet.ThresholdMode
	telemetry
}

// NewWaveletDenoise creates the transform. Defaults: wavelet "db6", soft
// thresholding, maximum level for each spectrum.
func NewWaveletDenoise(opts ...WaveletOption) *WaveletDenoise {
	w := &WaveletDenoise{
		wavelet:   "db6",
		mode:      wavelet.Soft,
		telemetry: newTelemetry("WaveletDenoise"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Fit is a no-op.
func (w *WaveletDenoise) Fit(X mat.Matrix) error {
	return nil
}

// DecompositionLevel returns the level used for spectra of n samples.
func (w *WaveletDenoise) DecompositionLevel(n int) (int, error) {
	if w.levelSet {
		if w.level < 0 {
			return 0, serrors.NewValidationError("level", "must be non-negative", w.level)
		}
		return w.level, nil
	}
	wv, err := wavelet.Lookup(w.wavelet)
	if err != nil {
		return 0, err
	}
	return wavelet.MaxLevel(n, wv.FilterLength()), nil
}

// Transform denoises every row of X independently.
func (w *WaveletDenoise) Transform(X mat.Matrix) (mat.Matrix, error) {
	start := time.Now()
	rows, cols, err := tensor.Dims("WaveletDenoise.Transform", X)
	if err != nil {
		return nil, err
	}
	wv, err := wavelet.Lookup(w.wavelet)
	if err != nil {
		return nil, err
	}
	mode, err := wavelet.ParseThresholdMode(string(w.mode))
	if err != nil {
		return nil, err
	}
	level, err := w.DecompositionLevel(cols)
	if err != nil {
		return nil, err
	}

	out, err := tensor.MapRows(X, cols, func(_ int, src, dst []float64) error {
		return denoise(dst, src, wv, level, mode)
	})
	if err != nil {
		w.failed(log.OperationTransform, err)
		return nil, err
	}
	w.done(log.OperationTransform, rows, cols, start,
		log.WaveletKey, wv.Name,
		log.LevelKey, level,
	)
	return out, nil
}

func denoise(dst, x []float64, wv *wavelet.Wavelet, level int, mode wavelet.ThresholdMode) error {
	if level == 0 {
		copy(dst, x)
		return nil
	}

	coeffs, err := wavelet.Wavedec(x, wv, level)
	if err != nil {
		return err
	}

	var details []float64
	for _, band := range coeffs[1:] {
		for _, c := range band {
			details = append(details, math.Abs(c))
		}
	}
	sigma := median(details) / madScale
	tau := sigma * math.Sqrt(2*math.Log(float64(len(x))))

	for i := 1; i <= level; i++ {
		coeffs[i] = wavelet.Threshold(coeffs[i], bandThreshold(tau, level, i), mode)
	}

	rec, err := wavelet.Waverec(coeffs, wv)
	if err != nil {
		return err
	}
	// reconstruction can run one sample long; a short one is zero padded
	n := copy(dst, rec)
	clear(dst[n:])
	return nil
}

// FitTransform is Fit followed by Transform.
func (w *WaveletDenoise) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := w.Fit(X); err != nil {
		return nil, err
	}
	return w.Transform(X)
}

// GetParams returns the transform's hyperparameters. level is nil when the
// maximum level is used.
func (w *WaveletDenoise) GetParams() map[string]interface{} {
	var level interface{}
	if w.levelSet {
		level = w.level
	}
	return map[string]interface{}{
		"wavelet":        w.wavelet,
		"level":          level,
		"threshold_mode": string(w.mode),
	}
}

func (w *WaveletDenoise) String() string {
	level := "max"
	if w.levelSet {
		level = fmt.Sprint(w.level)
	}
	return fmt.Sprintf("WaveletDenoise(wavelet=%s, level=%s, threshold_mode=%s)", w.wavelet, level, w.mode)
}

// bandThreshold scales tau for detail band i of a level-deep decomposition,
// band 1 being the coarsest.
func bandThreshold(tau float64, level, i int) float64 {
	return tau / math.Pow(2, float64(level-i)/2)
}
