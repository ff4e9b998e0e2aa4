package preprocessing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/signal/wavelet"
)

func TestWaveletDenoiseZeroSignal(t *testing.T) {
	X := mat.NewDense(2, 100, nil)

	out, err := NewWaveletDenoise().FitTransform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, out))
}

func TestWaveletDenoiseKeepsLength(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, name := range []string{"haar", "db2", "db6", "db20"} {
		for _, n := range []int{7, 33, 100, 101, 257} {
			X := mat.NewDense(3, n, nil)
			for i := range 3 {
				for j := range n {
					X.Set(i, j, rng.NormFloat64())
				}
			}
			out, err := NewWaveletDenoise(WithWavelet(name)).Transform(X)
			require.NoError(t, err, "%s n=%d", name, n)
			rows, cols := out.Dims()
			assert.Equal(t, 3, rows)
			assert.Equal(t, n, cols, "%s", name)
			requireFinite(t, out)
		}
	}
}

func TestWaveletDenoiseReducesNoise(t *testing.T) {
	const n = 512
	rng := rand.New(rand.NewSource(11))
	clean := make([]float64, n)
	noisy := make([]float64, n)
	for j := range n {
		clean[j] = math.Sin(2 * math.Pi * 4 * float64(j) / n)
		noisy[j] = clean[j] + 0.1*rng.NormFloat64()
	}
	X := mat.NewDense(1, n, noisy)

	for _, mode := range []wavelet.ThresholdMode{wavelet.Soft, wavelet.Hard, wavelet.Garrote} {
		t.Run(string(mode), func(t *testing.T) {
			out, err := NewWaveletDenoise(WithThresholdMode(mode)).Transform(X)
			require.NoError(t, err)
			before := floats.Distance(noisy, clean, 2)
			after := floats.Distance(mat.Row(nil, 0, out), clean, 2)
			assert.Less(t, after, before)
		})
	}
}

func TestWaveletDenoiseLevelZeroIsIdentity(t *testing.T) {
	X := syntheticSpectra(2, 64, 8)

	out, err := NewWaveletDenoise(WithLevel(0)).Transform(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(X, out))
}

func TestWaveletDenoiseLevelAboveMaxWarns(t *testing.T) {
	warnings := captureWarnings(t)
	X := syntheticSpectra(1, 40, 9)

	out, err := NewWaveletDenoise(WithLevel(4)).Transform(X)
	require.NoError(t, err)
	_, cols := out.Dims()
	assert.Equal(t, 40, cols)
	require.NotEmpty(t, *warnings)
	var bw *serrors.BoundaryEffectWarning
	assert.True(t, serrors.As((*warnings)[0], &bw))
}

func TestWaveletDenoiseDecompositionLevel(t *testing.T) {
	tests := []struct {
		name string
		opts []WaveletOption
		n    int
		want int
	}{
		{name: "db6 max level", n: 100, want: 3},
		{name: "haar max level", opts: []WaveletOption{WithWavelet("haar")}, n: 100, want: 6},
		{name: "too short for any level", n: 10, want: 0},
		{name: "explicit", opts: []WaveletOption{WithLevel(2)}, n: 100, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := NewWaveletDenoise(tt.opts...).DecompositionLevel(tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestWaveletDenoiseErrors(t *testing.T) {
	X := syntheticSpectra(1, 64, 10)

	_, err := NewWaveletDenoise(WithWavelet("sym8")).Transform(X)
	assert.True(t, serrors.Is(err, serrors.ErrUnknownWavelet))

	_, err = NewWaveletDenoise(WithLevel(-1)).Transform(X)
	var ve *serrors.ValidationError
	require.True(t, serrors.As(err, &ve))
	assert.Equal(t, "level", ve.ParamName)

	_, err = NewWaveletDenoise(WithThresholdMode("firm")).Transform(X)
	require.True(t, serrors.As(err, &ve))
	assert.Equal(t, "threshold_mode", ve.ParamName)
}

func TestWaveletDenoiseParams(t *testing.T) {
	w := NewWaveletDenoise()
	assert.Nil(t, w.GetParams()["level"])
	assert.Equal(t, "WaveletDenoise(wavelet=db6, level=max, threshold_mode=soft)", w.String())

	w = NewWaveletDenoise(WithWavelet("db4"), WithLevel(3), WithThresholdMode(wavelet.Hard))
	assert.Equal(t, 3, w.GetParams()["level"])
	assert.Equal(t, "WaveletDenoise(wavelet=db4, level=3, threshold_mode=hard)", w.String())
}

func TestBandThreshold(t *testing.T) {
	tests := []struct {
		level, band int
		want        float64
	}{
		{level: 1, band: 1, want: 8},
		{level: 3, band: 3, want: 8},
		{level: 3, band: 2, want: 8 / math.Sqrt2},
		{level: 3, band: 1, want: 4},
		{level: 5, band: 1, want: 2},
		{level: 6, band: 2, want: 2},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, bandThreshold(8, tt.level, tt.band), 1e-12, "level %d band %d", tt.level, tt.band)
	}
}

// Coefficients are placed so that each band's survivor depends on the
// coarse bands getting the smaller thresholds. All but four details have
// magnitude 1, so σ = 1/0.6745 and τ = σ·sqrt(2 ln 16) ≈ 3.49; the band
// thresholds are ≈ 1.75 (cD3), 2.47 (cD2) and 3.49 (cD1).
func TestWaveletDenoiseBandOrderAndScaling(t *testing.T) {
	haar, err := wavelet.Lookup("haar")
	require.NoError(t, err)

	ones := func(head float64, n int) []float64 {
		b := make([]float64, n)
		for i := range b {
			b[i] = 1
		}
		b[0] = head
		return b
	}
	coeffs := [][]float64{
		{5, -4},       // cA3
		{2, -1},       // cD3: 2 > 1.75 survives
		ones(-2.2, 4), // cD2: 2.2 < 2.47 is removed
		ones(-3, 8),   // cD1: 3 < 3.49 is removed
	}
	signal, err := wavelet.Waverec(coeffs, haar)
	require.NoError(t, err)
	require.Len(t, signal, 16)

	want, err := wavelet.Waverec([][]float64{
		{5, -4},
		{2, 0},
		make([]float64, 4),
		make([]float64, 8),
	}, haar)
	require.NoError(t, err)

	d := NewWaveletDenoise(WithWavelet("haar"), WithLevel(3), WithThresholdMode(wavelet.Hard))
	out, err := d.Transform(mat.NewDense(1, 16, signal))
	require.NoError(t, err)

	got := mat.Row(nil, 0, out)
	for j := range want {
		assert.InDelta(t, want[j], got[j], 1e-12, "sample %d", j)
	}
}
