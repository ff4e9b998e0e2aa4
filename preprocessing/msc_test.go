package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

func TestMSCCorrectedRowsLineUpWithReference(t *testing.T) {
	X := syntheticSpectra(8, 50, 3)

	m := NewMSC()
	out, err := m.FitTransform(X)
	require.NoError(t, err)

	ref := m.Reference()
	require.Len(t, ref, 50)
	rows, _ := out.Dims()
	for i := range rows {
		row := mat.Row(nil, i, out)
		intercept, slope := stat.LinearRegression(ref, row, nil, false)
		assert.InDelta(t, 1, slope, 1e-9, "row %d", i)
		assert.InDelta(t, 0, intercept, 1e-9, "row %d", i)
	}
}

func TestMSCRemovesExactScatter(t *testing.T) {
	ref := []float64{0.1, 0.4, 0.9, 0.3, 0.2}
	X := mat.NewDense(2, 5, nil)
	for j, r := range ref {
		X.Set(0, j, 2*r+0.5)
		X.Set(1, j, 0.5*r-0.1)
	}

	out, err := NewMSC(WithReferenceSpectrum(ref)).FitTransform(X)
	require.NoError(t, err)
	assert.InDeltaSlice(t, ref, mat.Row(nil, 0, out), 1e-12)
	assert.InDeltaSlice(t, ref, mat.Row(nil, 1, out), 1e-12)
}

func TestMSCReferenceMethods(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 10,
		2, 20,
		6, 30,
	})

	tests := []struct {
		name string
		opts []MSCOption
		want []float64
	}{
		{name: "mean", want: []float64{3, 20}},
		{name: "median", opts: []MSCOption{WithReferenceMethod("median")}, want: []float64{2, 20}},
		{name: "custom", opts: []MSCOption{WithReferenceFunc(Min)}, want: []float64{1, 10}},
		{name: "fixed", opts: []MSCOption{WithReferenceSpectrum([]float64{5, 5.5})}, want: []float64{5, 5.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMSC(tt.opts...)
			assert.Nil(t, m.Reference())
			require.NoError(t, m.Fit(X))
			assert.InDeltaSlice(t, tt.want, m.Reference(), 1e-12)
			assert.True(t, m.IsFitted())
		})
	}
}

func TestMSCErrors(t *testing.T) {
	X := syntheticSpectra(3, 10, 4)

	t.Run("not fitted", func(t *testing.T) {
		_, err := NewMSC().Transform(X)
		var nf *serrors.NotFittedError
		require.True(t, serrors.As(err, &nf))
		assert.Equal(t, "MSC", nf.ModelName)
	})

	t.Run("unknown reference method", func(t *testing.T) {
		err := NewMSC(WithReferenceMethod("mode")).Fit(X)
		var ve *serrors.ValidationError
		require.True(t, serrors.As(err, &ve))
		assert.Equal(t, "reference_method", ve.ParamName)
	})

	t.Run("fixed reference of wrong length", func(t *testing.T) {
		err := NewMSC(WithReferenceSpectrum(make([]float64, 4))).Fit(X)
		var de *serrors.DimensionError
		require.True(t, serrors.As(err, &de))
		assert.Equal(t, 1, de.Axis)
	})

	t.Run("column mismatch", func(t *testing.T) {
		m := NewMSC()
		require.NoError(t, m.Fit(X))
		_, err := m.Transform(syntheticSpectra(3, 11, 4))
		var de *serrors.DimensionError
		require.True(t, serrors.As(err, &de))
		assert.Equal(t, 10, de.Expected)
		assert.Equal(t, 11, de.Got)
	})

	t.Run("flat row", func(t *testing.T) {
		m := NewMSC()
		require.NoError(t, m.Fit(X))
		flat := mat.NewDense(2, 10, nil)
		for j := range 10 {
			flat.Set(0, j, X.At(0, j))
			flat.Set(1, j, 0)
		}
		_, err := m.Transform(flat)
		var ne *serrors.NumericalInstabilityError
		require.True(t, serrors.As(err, &ne))
		assert.Equal(t, 1, ne.Row)
	})

	t.Run("non-finite row", func(t *testing.T) {
		m := NewMSC(WithNJobs(1))
		require.NoError(t, m.Fit(X))
		bad := mat.DenseCopyOf(X)
		bad.Set(2, 4, math.NaN())
		_, err := m.Transform(bad)
		var ne *serrors.NumericalInstabilityError
		require.True(t, serrors.As(err, &ne))
		assert.Equal(t, 2, ne.Row)
		assert.True(t, math.IsNaN(ne.Values[0]))
	})
}

func TestMSCResultIndependentOfWorkers(t *testing.T) {
	X := syntheticSpectra(37, 40, 5)

	serial, err := NewMSC(WithNJobs(1)).FitTransform(X)
	require.NoError(t, err)

	for _, n := range []int{2, 4, 0, -1} {
		parallel, err := NewMSC(WithNJobs(n)).FitTransform(X)
		require.NoError(t, err)
		assert.True(t, mat.Equal(serial, parallel), "n_jobs=%d", n)
	}
}

func TestMSCString(t *testing.T) {
	m := NewMSC(WithReferenceMethod("median"), WithNJobs(2))
	assert.Equal(t, "MSC(reference=median, n_jobs=2)", m.String())
	require.NoError(t, m.Fit(syntheticSpectra(4, 6, 6)))
	assert.Equal(t, "MSC(reference=median, n_jobs=2, n_features=6, n_samples=4)", m.String())
	assert.Equal(t, "median", m.GetParams()["reference_method"])
}

func BenchmarkMSCTransform(b *testing.B) {
	X := syntheticSpectra(500, 1700, 1)
	for _, bc := range []struct {
		name  string
		nJobs int
	}{
		{"sequential", 1},
		{"parallel", -1},
	} {
		m := NewMSC(WithNJobs(bc.nJobs))
		if err := m.Fit(X); err != nil {
			b.Fatal(err)
		}
		b.Run(bc.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := m.Transform(X); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
