// Package spectro provides preprocessing transforms for spectroscopic data
// (NIR, MIR, Raman) in Go.
//
// Spectra are rows of a gonum matrix of shape (n_samples, n_wavelengths).
// Every transform follows a scikit-learn-like Fit/Transform contract, so
// transforms chain into pipelines and can be described in YAML.
//
// # Features
//
//   - Scatter correction: SNV with pluggable centre and scale reductions, MSC
//     against a mean, median, custom or fixed reference
//   - Savitzky-Golay smoothing and derivatives with polynomial edge fitting
//   - Wavelet shrinkage denoising with Daubechies wavelets (haar, db1-db20)
//   - Reflectance to absorbance conversion
//   - Resampling onto a new wavelength grid with cubic, Akima, PCHIP or
//     linear interpolation
//   - Structured errors with stack traces and zerolog logging
//
// # Installation
//
//	go get github.com/YuminosukeSato/spectro
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/spectro/pipeline"
//	    "github.com/YuminosukeSato/spectro/preprocessing"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(2, 5, []float64{
//	        0.52, 0.48, 0.31, 0.47, 0.55,
//	        0.61, 0.57, 0.40, 0.55, 0.63,
//	    })
//
//	    smooth, err := preprocessing.NewSavGolSmooth(
//	        preprocessing.WithWindowLength(3),
//	        preprocessing.WithPolyOrder(1),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    p, err := pipeline.New(
//	        pipeline.Step{Name: "absorbance", Transformer: preprocessing.NewToAbsorbance()},
//	        pipeline.Step{Name: "snv", Transformer: preprocessing.NewSNV()},
//	        pipeline.Step{Name: "smooth", Transformer: smooth},
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    Xt, err := p.FitTransform(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(Xt))
//	}
//
// # Packages
//
//   - preprocessing: the transforms and reductions
//   - pipeline: ordered chains of named transforms with axis propagation,
//     plus chunked and streaming execution of a fitted chain
//   - config: YAML/JSON pipeline descriptions
//   - metrics: spectral comparison (MSE, RMSE, per-row RMSE, R², SNR)
//   - signal/savgol: Savitzky-Golay coefficients and filtering
//   - signal/wavelet: Daubechies filters, multilevel DWT and thresholding
//   - core: Transformer interfaces
//   - core/model: generic fitted-state management
//   - core/tensor: matrix helpers
//   - core/parallel: bounded parallel loops
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # License
//
// spectro is released under the MIT License.
package spectro
