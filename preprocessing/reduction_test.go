package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

func TestReductions(t *testing.T) {
	x := []float64{10, 1, 4, 3, 2}

	tests := []struct {
		name string
		want float64
	}{
		{"mean", 4},
		{"median", 3},
		{"min", 1},
		{"zero", 0},
		{"none", 0},
		{"std", math.Sqrt(10)},
		{"rms", math.Sqrt(26)},
		{"iqr", 2},
		{"range", 9},
		{"mad", 1},
		{"MEAN", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseReduction(tt.name)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, r.Reduce(x), 1e-12)
		})
	}
	assert.Equal(t, []float64{10, 1, 4, 3, 2}, x)
}

func TestMedianEvenLength(t *testing.T) {
	assert.Equal(t, 2.5, Median.Reduce([]float64{4, 1, 3, 2}))
	assert.True(t, math.IsNaN(Median.Reduce(nil)))
}

func TestParseReductionUnknown(t *testing.T) {
	_, err := ParseReduction("mode")
	var ve *serrors.ValidationError
	require.True(t, serrors.As(err, &ve))
	assert.Equal(t, "reduction", ve.ParamName)
}

func TestReductionName(t *testing.T) {
	assert.Equal(t, "mad", reductionName(MAD))
	assert.Equal(t, "custom", reductionName(ReductionFunc(func([]float64) float64 { return 1 })))
}
