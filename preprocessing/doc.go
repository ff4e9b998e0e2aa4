// Package preprocessing provides fit/transform components for spectral data.
//
// Every transform works on a matrix of shape (n_samples, n_wavelengths), one
// spectrum per row, and returns a newly allocated *mat.Dense. Inputs are never
// modified.
//
//   - SNV: per-spectrum centring and scaling with pluggable reductions
//   - MSC: multiplicative scatter correction against a fitted reference
//   - TakeDerivative: Savitzky-Golay derivative
//   - WaveletDenoise: Daubechies wavelet shrinkage with a MAD noise estimate
//   - SavGolSmooth: validated Savitzky-Golay smoothing
//   - ToAbsorbance: reflectance to absorbance, -log10(R)
//   - Resample: spline interpolation onto a new wavelength axis
//   - StandardScaler: column-wise standardisation across spectra
//
// Hyperparameters are set at construction with functional options and are
// immutable afterwards. Transforms that learn from data (MSC, Resample,
// StandardScaler) return a NotFittedError from Transform until Fit succeeds.
// Concurrent Transform calls on a fitted instance are safe; concurrent Fit
// calls on one instance are not and must be serialised by the caller.
//
// Example:
//
//	snv := preprocessing.NewSNV()
//	msc := preprocessing.NewMSC(preprocessing.WithReferenceMethod("median"))
//	if err := msc.Fit(X); err != nil {
//		return err
//	}
//	corrected, err := msc.Transform(X)
package preprocessing
