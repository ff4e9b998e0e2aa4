package wavelet

import (
	"fmt"

	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// CoeffLen returns the number of coefficients a single-level DWT produces
// for a signal of dataLen samples.
func CoeffLen(dataLen, filterLen int) int {
	return (dataLen + filterLen - 1) / 2
}

// MaxLevel returns the deepest useful decomposition level: the largest L
// with (filterLen-1) * 2^L <= dataLen.
func MaxLevel(dataLen, filterLen int) int {
	if filterLen <= 1 || dataLen < filterLen-1 {
		return 0
	}
	level := 0
	for (filterLen-1)<<(level+1) <= dataLen {
		level++
	}
	return level
}

// DWT performs a single-level decomposition of x.
func DWT(x []float64, w *Wavelet) (cA, cD []float64, err error) {
	if len(x) == 0 {
		return nil, nil, serrors.Wrap(serrors.ErrEmptyData, "wavelet.DWT")
	}
	ext := symmetricExtend(x, w.FilterLength()-1)
	return downsample(ext, len(x), w.decLoRev), downsample(ext, len(x), w.decHiRev), nil
}

// IDWT reconstructs a signal of length 2*len(cA)-F+2 from one level of
// coefficients.
func IDWT(cA, cD []float64, w *Wavelet) ([]float64, error) {
	if len(cA) != len(cD) {
		return nil, serrors.NewDimensionError("wavelet.IDWT", len(cA), len(cD), 1)
	}
	f := w.FilterLength()
	outLen := 2*len(cA) - f + 2
	if outLen <= 0 {
		return nil, serrors.NewValueError("wavelet.IDWT",
			fmt.Sprintf("%d coefficients are too few for a %d-tap filter", len(cA), f))
	}

	out := make([]float64, outLen)
	upsampleAdd(out, cA, w.recLoEven, w.recLoOdd)
	upsampleAdd(out, cD, w.recHiEven, w.recHiOdd)
	return out, nil
}

// Wavedec performs a multilevel decomposition and returns
// [cA_level, cD_level, ..., cD_1]. A level above MaxLevel is allowed but
// emits a BoundaryEffectWarning.
func Wavedec(x []float64, w *Wavelet, level int) ([][]float64, error) {
	if level < 0 {
		return nil, serrors.NewValidationError("level", "must be non-negative", level)
	}
	if len(x) == 0 {
		return nil, serrors.Wrap(serrors.ErrEmptyData, "wavelet.Wavedec")
	}
	if maxLevel := MaxLevel(len(x), w.FilterLength()); level > maxLevel {
		serrors.Warn(serrors.NewBoundaryEffectWarning(level, maxLevel))
	}

	details := make([][]float64, 0, level)
	a := x
	for range level {
		cA, cD, err := DWT(a, w)
		if err != nil {
			return nil, err
		}
		details = append(details, cD)
		a = cA
	}

	coeffs := make([][]float64, 0, level+1)
	coeffs = append(coeffs, append([]float64(nil), a...))
	for i := len(details) - 1; i >= 0; i-- {
		coeffs = append(coeffs, details[i])
	}
	return coeffs, nil
}

// Waverec reconstructs a signal from Wavedec output. An approximation one
// sample longer than the next detail band is trimmed, which happens when an
// intermediate signal had odd length.
func Waverec(coeffs [][]float64, w *Wavelet) ([]float64, error) {
	if len(coeffs) == 0 {
		return nil, serrors.NewValueError("wavelet.Waverec", "coefficient list is empty")
	}

	a := coeffs[0]
	for i, d := range coeffs[1:] {
		switch {
		case len(a) == len(d)+1:
			a = a[:len(a)-1]
		case len(a) != len(d):
			return nil, serrors.NewValueError("wavelet.Waverec",
				fmt.Sprintf("coefficient shape mismatch at band %d: approximation %d, detail %d", i+1, len(a), len(d)))
		}
		next, err := IDWT(a, d, w)
		if err != nil {
			return nil, err
		}
		a = next
	}
	if len(coeffs) == 1 {
		a = append([]float64(nil), a...)
	}
	return a, nil
}

// symmetricExtend pads x on both sides with pad samples of half-sample
// symmetric extension (x[-1] = x[0]). Extension is periodic with period
// 2*len(x), so padding longer than the signal keeps reflecting.
func symmetricExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)
	for k := range ext {
		m := (k - pad) % (2 * n)
		if m < 0 {
			m += 2 * n
		}
		if m < n {
			ext[k] = x[m]
		} else {
			ext[k] = x[2*n-1-m]
		}
	}
	return ext
}

// downsample convolves the extended signal with a filter (given reversed)
// and keeps the odd-indexed outputs of the full convolution.
func downsample(ext []float64, n int, rev []float64) []float64 {
	f := len(rev)
	out := make([]float64, CoeffLen(n, f))
	for o := range out {
		i := 2*o + 1
		out[o] = tensor.Dot(rev, ext[i:i+f])
	}
	return out
}

// upsampleAdd adds the reconstruction of one coefficient band to out.
func upsampleAdd(out, c, even, odd []float64) {
	h := len(even)
	for m := range len(out) / 2 {
		window := c[m : m+h]
		out[2*m] += tensor.Dot(even, window)
		out[2*m+1] += tensor.Dot(odd, window)
	}
}
