package wavelet

import (
	"math"
	"strings"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// ThresholdMode selects how coefficients are shrunk.
type ThresholdMode string

const (
	// Soft shrinks every coefficient toward zero by the threshold.
	Soft ThresholdMode = "soft"
	// Hard zeroes coefficients below the threshold and keeps the rest.
	Hard ThresholdMode = "hard"
	// Garrote is the non-negative garrote, between soft and hard.
	Garrote ThresholdMode = "garrote"
)

// ParseThresholdMode resolves a mode name.
func ParseThresholdMode(name string) (ThresholdMode, error) {
	switch mode := ThresholdMode(strings.ToLower(name)); mode {
	case Soft, Hard, Garrote:
		return mode, nil
	default:
		return "", serrors.NewValidationError("threshold_mode", "must be one of soft, hard, garrote", name)
	}
}

// Threshold returns a thresholded copy of x.
func Threshold(x []float64, value float64, mode ThresholdMode) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		mag := math.Abs(v)
		switch mode {
		case Hard:
			if mag >= value {
				out[i] = v
			}
		case Garrote:
			if mag > value {
				out[i] = v - value*value/v
			}
		default:
			if mag > value {
				out[i] = math.Copysign(mag-value, v)
			}
		}
	}
	return out
}
