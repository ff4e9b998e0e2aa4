package preprocessing

import (
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

// syntheticSpectra returns n reflectance-like spectra over p wavelengths with
// a Gaussian band, a sample-dependent gain and offset, and some noise.
func syntheticSpectra(n, p int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, p, nil)
	for i := range n {
		gain := 0.6 + 0.3*rng.Float64()
		offset := 0.05 * rng.Float64()
		for j := range p {
			t := float64(j) / float64(p-1)
			band := math.Exp(-math.Pow((t-0.5)/0.1, 2))
			X.Set(i, j, offset+gain*(0.2+0.5*band)+0.005*rng.NormFloat64())
		}
	}
	return X
}

func rowMeanStd(X mat.Matrix, i int) (mean, std float64) {
	_, cols := X.Dims()
	row := mat.Row(make([]float64, cols), i, X)
	return stat.Mean(row, nil), math.Sqrt(stat.PopVariance(row, nil))
}

func requireFinite(t *testing.T, X mat.Matrix) {
	t.Helper()
	rows, cols := X.Dims()
	require.NoError(t, serrors.CheckMatrix("test", X, rows, cols))
}

// captureWarnings collects warnings emitted through errors.Warn for the
// duration of the test.
func captureWarnings(t *testing.T) *[]error {
	t.Helper()
	var warnings []error
	serrors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { serrors.SetWarningHandler(func(error) {}) })
	return &warnings
}

// captureLogs routes the package logger into a TestLogger at debug level.
func captureLogs(t *testing.T) *log.TestLogger {
	t.Helper()
	provider, logger := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	t.Cleanup(func() { log.SetProvider(log.NewZerologProvider(os.Stderr, log.LevelWarn)) })
	return logger
}
