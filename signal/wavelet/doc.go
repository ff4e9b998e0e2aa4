// Package wavelet provides the Daubechies wavelet family and a discrete
// wavelet transform with half-sample symmetric signal extension.
//
// Coefficient layout follows the convention used by PyWavelets:
//
//   - [DWT] of a length-n signal with a length-F filter returns
//     floor((n+F-1)/2) approximation and detail coefficients.
//   - [Wavedec] returns [cA_L, cD_L, cD_L-1, ..., cD_1], coarsest first.
//   - [Waverec] inverts [Wavedec]; the result may be one sample longer than
//     the original when the original length is odd.
//
// # Usage
//
//	w, err := wavelet.Lookup("db6")
//	if err != nil {
//		return err
//	}
//	level := wavelet.MaxLevel(len(x), w.FilterLength())
//	coeffs, err := wavelet.Wavedec(x, w, level)
//	...
//	y, err := wavelet.Waverec(coeffs, w)
//
// # Filters
//
// Filters are derived at first use by spectral factorisation of the
// Daubechies half-band polynomial and cached. "haar" is an alias for "db1";
// orders db1 through db20 are supported.
package wavelet
