package wavelet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

func TestLookupNames(t *testing.T) {
	tests := []struct {
		name    string
		taps    int
		wantErr bool
	}{
		{"haar", 2, false},
		{"db1", 2, false},
		{"DB4", 8, false},
		{"db6", 12, false},
		{"db20", 40, false},
		{"db0", 0, true},
		{"db21", 0, true},
		{"sym4", 0, true},
		{"dbx", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Lookup(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, serrors.ErrUnknownWavelet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.taps, w.FilterLength())
		})
	}
}

func TestLookupIsCached(t *testing.T) {
	a, err := Lookup("db3")
	require.NoError(t, err)
	b, err := Daubechies(3)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestDaubechiesKnownFilters(t *testing.T) {
	s3 := math.Sqrt(3)
	d := 4 * math.Sqrt2
	db2 := []float64{(1 - s3) / d, (3 - s3) / d, (3 + s3) / d, (1 + s3) / d}

	tests := []struct {
		name  string
		decLo []float64
	}{
		{"haar", []float64{1 / math.Sqrt2, 1 / math.Sqrt2}},
		{"db2", db2},
		{"db3", []float64{
			0.035226291882100656, -0.08544127388224149, -0.13501102001039084,
			0.4598775021193313, 0.8068915093133388, 0.3326705529509569,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.decLo, w.DecLo, 1e-10)
		})
	}
}

func TestDaubechiesOrthonormality(t *testing.T) {
	for order := 1; order <= MaxOrder; order++ {
		w, err := Daubechies(order)
		require.NoError(t, err)
		h := w.RecLo

		sum := 0.0
		for _, v := range h {
			sum += v
		}
		assert.InDelta(t, math.Sqrt2, sum, 1e-10, "db%d sum", order)

		for shift := 0; shift < order; shift++ {
			dot := 0.0
			for i := 0; i+2*shift < len(h); i++ {
				dot += h[i] * h[i+2*shift]
			}
			want := 0.0
			if shift == 0 {
				want = 1
			}
			assert.InDelta(t, want, dot, 1e-9, "db%d shift %d", order, shift)
		}

		// high-pass filters annihilate constants
		hiSum := 0.0
		for _, v := range w.DecHi {
			hiSum += v
		}
		assert.InDelta(t, 0, hiSum, 1e-10, "db%d high-pass sum", order)
	}
}

func TestMaxLevel(t *testing.T) {
	tests := []struct {
		dataLen, filterLen, want int
	}{
		{100, 12, 3},
		{1000, 2, 9},
		{1024, 2, 10},
		{5, 12, 0},
		{11, 12, 0},
		{22, 12, 1},
		{10, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaxLevel(tt.dataLen, tt.filterLen), "MaxLevel(%d, %d)", tt.dataLen, tt.filterLen)
	}
}

func TestDWTHaar(t *testing.T) {
	w, err := Lookup("haar")
	require.NoError(t, err)

	cA, cD, err := DWT([]float64{1, 2, 3, 4}, w)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3 / math.Sqrt2, 7 / math.Sqrt2}, cA, 1e-12)
	assert.InDeltaSlice(t, []float64{-1 / math.Sqrt2, -1 / math.Sqrt2}, cD, 1e-12)

	_, _, err = DWT(nil, w)
	assert.ErrorIs(t, err, serrors.ErrEmptyData)
}

func TestDWTCoefficientLength(t *testing.T) {
	w, err := Lookup("db6")
	require.NoError(t, err)
	for _, n := range []int{1, 5, 12, 100, 101} {
		cA, cD, err := DWT(make([]float64, n), w)
		require.NoError(t, err)
		assert.Len(t, cA, (n+11)/2)
		assert.Len(t, cD, (n+11)/2)
	}
}

func TestDWTIDWTPerfectReconstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, name := range []string{"haar", "db2", "db3", "db6", "db10"} {
		w, err := Lookup(name)
		require.NoError(t, err)
		for _, n := range []int{5, 10, 11, 31, 64} {
			x := make([]float64, n)
			for i := range x {
				x[i] = rng.NormFloat64()
			}
			cA, cD, err := DWT(x, w)
			require.NoError(t, err)
			y, err := IDWT(cA, cD, w)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(y), n)
			assert.InDeltaSlice(t, x, y[:n], 1e-9, "%s n=%d", name, n)
		}
	}
}

func TestIDWTShapeErrors(t *testing.T) {
	w, err := Lookup("db4")
	require.NoError(t, err)

	_, err = IDWT([]float64{1, 2}, []float64{1}, w)
	var de *serrors.DimensionError
	assert.True(t, serrors.As(err, &de))

	_, err = IDWT([]float64{1, 2}, []float64{1, 2}, w)
	var ve *serrors.ValueError
	assert.True(t, serrors.As(err, &ve))
}

func TestWavedecLayoutAndRoundTrip(t *testing.T) {
	w, err := Lookup("db6")
	require.NoError(t, err)

	n := 100
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(float64(i)/7) + 0.2*math.Cos(float64(i))
	}

	level := MaxLevel(n, w.FilterLength())
	require.Equal(t, 3, level)

	coeffs, err := Wavedec(x, w, level)
	require.NoError(t, err)
	require.Len(t, coeffs, level+1)

	// [cA3, cD3, cD2, cD1]: lengths shrink toward the coarsest band
	assert.Len(t, coeffs[3], 55) // (100+11)/2
	assert.Len(t, coeffs[2], 33) // (55+11)/2
	assert.Len(t, coeffs[1], 22) // (33+11)/2
	assert.Len(t, coeffs[0], 22)

	y, err := Waverec(coeffs, w)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(y), n)
	assert.InDeltaSlice(t, x, y[:n], 1e-9)
}

func TestWavedecLevelZero(t *testing.T) {
	w, err := Lookup("db2")
	require.NoError(t, err)
	x := []float64{1, 2, 3}

	coeffs, err := Wavedec(x, w, 0)
	require.NoError(t, err)
	require.Len(t, coeffs, 1)
	coeffs[0][0] = 99
	assert.Equal(t, 1.0, x[0])

	y, err := Waverec([][]float64{x}, w)
	require.NoError(t, err)
	assert.Equal(t, x, y)
}

func TestWavedecWarnsAboveMaxLevel(t *testing.T) {
	var warnings []error
	serrors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	t.Cleanup(func() { serrors.SetWarningHandler(func(error) {}) })

	w, err := Lookup("db6")
	require.NoError(t, err)
	x := make([]float64, 40)
	x[3] = 1

	coeffs, err := Wavedec(x, w, 4)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	var bw *serrors.BoundaryEffectWarning
	require.True(t, serrors.As(warnings[0], &bw))
	assert.Equal(t, 4, bw.Level)
	assert.Equal(t, 1, bw.MaxLevel)

	y, err := Waverec(coeffs, w)
	require.NoError(t, err)
	assert.InDeltaSlice(t, x, y[:len(x)], 1e-9)
}

func TestWavedecNegativeLevel(t *testing.T) {
	w, err := Lookup("db1")
	require.NoError(t, err)
	_, err = Wavedec([]float64{1, 2}, w, -1)
	var ve *serrors.ValidationError
	assert.True(t, serrors.As(err, &ve))
}

func TestWaverecErrors(t *testing.T) {
	w, err := Lookup("db1")
	require.NoError(t, err)

	_, err = Waverec(nil, w)
	assert.Error(t, err)

	_, err = Waverec([][]float64{{1, 2, 3, 4}, {1}}, w)
	var ve *serrors.ValueError
	assert.True(t, serrors.As(err, &ve))
}

func TestThreshold(t *testing.T) {
	x := []float64{-3, -1, -0.5, 0, 0.5, 1, 3}
	tests := []struct {
		mode ThresholdMode
		want []float64
	}{
		{Soft, []float64{-2, 0, 0, 0, 0, 0, 2}},
		{Hard, []float64{-3, -1, 0, 0, 0, 1, 3}},
		{Garrote, []float64{-3 + 1.0/3, 0, 0, 0, 0, 0, 3 - 1.0/3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := Threshold(x, 1, tt.mode)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}

	// a zero threshold leaves zeros at zero
	assert.Equal(t, []float64{0, 0}, Threshold([]float64{0, 0}, 0, Soft))
}

func TestParseThresholdMode(t *testing.T) {
	m, err := ParseThresholdMode("HARD")
	require.NoError(t, err)
	assert.Equal(t, Hard, m)

	_, err = ParseThresholdMode("median")
	var ve *serrors.ValidationError
	assert.True(t, serrors.As(err, &ve))
}

func BenchmarkWavedecWaverec(b *testing.B) {
	w, err := Lookup("db6")
	if err != nil {
		b.Fatal(err)
	}
	x := make([]float64, 1700)
	for i := range x {
		x[i] = math.Sin(float64(i) / 30)
	}
	level := MaxLevel(len(x), w.FilterLength())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		coeffs, _ := Wavedec(x, w, level)
		_, _ = Waverec(coeffs, w)
	}
}
