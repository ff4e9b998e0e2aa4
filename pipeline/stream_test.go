package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/preprocessing"
)

// reflectance returns rows below 1 so absorbance never flattens a row.
func reflectance(rows, cols int) (*mat.Dense, []float64) {
	x := floats.Span(make([]float64, cols), 1000, 2000)
	X := mat.NewDense(rows, cols, nil)
	for i := range rows {
		for j, w := range x {
			X.Set(i, j, 0.2+0.03*float64(i)+0.3*math.Exp(-math.Pow((w-1500)/120, 2)))
		}
	}
	return X, x
}

func fittedPipeline(t *testing.T, X mat.Matrix, x []float64) *Pipeline {
	t.Helper()
	grid := floats.Span(make([]float64, 30), 1100, 1900)
	p, err := New(
		Step{Name: "absorbance", Transformer: preprocessing.NewToAbsorbance()},
		Step{Name: "msc", Transformer: preprocessing.NewMSC(preprocessing.WithNJobs(1))},
		Step{Name: "resample", Transformer: preprocessing.NewResample(grid)},
	)
	require.NoError(t, err)
	_, err = p.FitAxisTransform(X, x)
	require.NoError(t, err)
	return p
}

func TestTransformChunked(t *testing.T) {
	X, x := reflectance(11, 50)
	p := fittedPipeline(t, X, x)

	want, err := p.Transform(X)
	require.NoError(t, err)

	tests := []struct {
		name      string
		chunkSize int
		nJobs     int
	}{
		{"single chunk", 20, 1},
		{"uneven chunks", 3, 2},
		{"one row per chunk", 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.TransformChunked(X, tt.chunkSize, tt.nJobs)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(want, got, 1e-12))
		})
	}
}

func TestTransformChunkedErrors(t *testing.T) {
	X, x := reflectance(4, 50)
	p := fittedPipeline(t, X, x)

	_, err := p.TransformChunked(X, 0, 1)
	var ve *serrors.ValidationError
	require.True(t, serrors.As(err, &ve))
	assert.Equal(t, "chunk_size", ve.ParamName)

	_, err = p.TransformChunked(mat.NewDense(4, 10, nil), 2, 1)
	var de *serrors.DimensionError
	require.True(t, serrors.As(err, &de))
	assert.Contains(t, err.Error(), "chunk 0")

	unfitted, err := New(Step{Name: "msc", Transformer: preprocessing.NewMSC()})
	require.NoError(t, err)
	_, err = unfitted.TransformChunked(X, 2, 1)
	var nf *serrors.NotFittedError
	assert.True(t, serrors.As(err, &nf))
}

func TestStream(t *testing.T) {
	X, x := reflectance(6, 50)
	p := fittedPipeline(t, X, x)

	in := make(chan mat.Matrix)
	go func() {
		defer close(in)
		in <- X.Slice(0, 2, 0, 50)
		in <- mat.NewDense(1, 7, nil)
		in <- X.Slice(2, 6, 0, 50)
	}()

	var batches []Batch
	for b := range p.Stream(context.Background(), in, 1) {
		batches = append(batches, b)
	}
	require.Len(t, batches, 3)
	for i, b := range batches {
		assert.Equal(t, i, b.Seq)
	}

	require.NoError(t, batches[0].Err)
	require.NoError(t, batches[2].Err)
	var de *serrors.DimensionError
	assert.True(t, serrors.As(batches[1].Err, &de))

	want, err := p.Transform(X.Slice(2, 6, 0, 50))
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, batches[2].X, 1e-12))

	m := p.Metrics()
	assert.Equal(t, uint64(3), m.Batches)
	assert.Equal(t, uint64(6), m.Samples)
	assert.Equal(t, uint64(1), m.Errors)
}

func TestStreamCancel(t *testing.T) {
	X, x := reflectance(2, 50)
	p := fittedPipeline(t, X, x)

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan mat.Matrix)
	out := p.Stream(ctx, in, 0)
	cancel()

	for range out {
	}
	assert.Equal(t, uint64(0), p.Metrics().Batches)
}
