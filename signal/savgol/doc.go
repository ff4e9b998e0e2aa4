// Package savgol implements Savitzky-Golay smoothing and differentiation.
//
// A Savitzky-Golay filter fits a polynomial of degree polyorder to every
// window of windowLength samples by least squares and replaces the centre
// sample with the value (or a derivative) of that polynomial. Interior
// samples reduce to a dot product with a fixed coefficient vector.
//
// Edges follow the "interp" convention: the first and last windowLength
// samples are each fitted once and the fitted polynomial is evaluated at the
// halfWindow positions the interior kernel cannot reach. Signals must
// therefore have at least windowLength samples.
//
// Example:
//
//	f, err := savgol.New(11, 2, savgol.WithDeriv(1))
//	if err != nil {
//		return err
//	}
//	dy := make([]float64, len(y))
//	if err := f.Apply(dy, y); err != nil {
//		return err
//	}
package savgol
