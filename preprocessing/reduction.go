package preprocessing

import (
	"math"
	"sort"
	"strings"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// Reduction collapses a vector to a single value. SNV applies reductions to
// each spectrum; MSC applies them to each wavelength column.
type Reduction interface {
	Reduce(x []float64) float64
}

// ReductionFunc adapts an ordinary function to Reduction.
type ReductionFunc func(x []float64) float64

// Reduce calls f(x).
func (f ReductionFunc) Reduce(x []float64) float64 {
	return f(x)
}

type namedReduction struct {
	name string
	fn   func([]float64) float64
}

func (r namedReduction) Reduce(x []float64) float64 { return r.fn(x) }
func (r namedReduction) String() string             { return r.name }

// Built-in reductions.
var (
	// Mean is the arithmetic mean.
	Mean Reduction = namedReduction{"mean", func(x []float64) float64 { return stat.Mean(x, nil) }}
	// Median averages the two middle values for even lengths.
	Median Reduction = namedReduction{"median", median}
	// Min is the smallest value.
	Min Reduction = namedReduction{"min", floats.Min}
	// Zero always returns 0; as a centre it disables centring.
	Zero Reduction = namedReduction{"zero", func([]float64) float64 { return 0 }}
	// Std is the population standard deviation.
	Std Reduction = namedReduction{"std", func(x []float64) float64 { return math.Sqrt(stat.PopVariance(x, nil)) }}
	// RMS is the root mean square.
	RMS Reduction = namedReduction{"rms", rms}
	// IQR is the interquartile range with linear interpolation between order
	// statistics.
	IQR Reduction = namedReduction{"iqr", func(x []float64) float64 {
		s := sortedCopy(x)
		return percentileSorted(s, 0.75) - percentileSorted(s, 0.25)
	}}
	// Range is max - min.
	Range Reduction = namedReduction{"range", func(x []float64) float64 { return floats.Max(x) - floats.Min(x) }}
	// MAD is the median absolute deviation from the median.
	MAD Reduction = namedReduction{"mad", mad}
)

var reductions = map[string]Reduction{
	"mean":   Mean,
	"median": Median,
	"min":    Min,
	"zero":   Zero,
	"none":   Zero,
	"std":    Std,
	"rms":    RMS,
	"iqr":    IQR,
	"range":  Range,
	"mad":    MAD,
}

// ParseReduction resolves a built-in reduction by name.
func ParseReduction(name string) (Reduction, error) {
	if r, ok := reductions[strings.ToLower(name)]; ok {
		return r, nil
	}
	return nil, serrors.NewValidationError("reduction", "must be one of mean, median, min, zero, std, rms, iqr, range, mad", name)
}

// reductionName returns the name of a built-in reduction or "custom".
func reductionName(r Reduction) string {
	if n, ok := r.(interface{ String() string }); ok {
		return n.String()
	}
	return "custom"
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	return math.Sqrt(vecmath.DotProduct(x, x) / float64(len(x)))
}

func median(x []float64) float64 {
	return percentileSorted(sortedCopy(x), 0.5)
}

func mad(x []float64) float64 {
	m := median(x)
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - m)
	}
	return median(dev)
}

func sortedCopy(x []float64) []float64 {
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	return s
}

// percentileSorted interpolates linearly between the order statistics
// around position p*(n-1).
func percentileSorted(s []float64, p float64) float64 {
	n := len(s)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return s[lo]
	}
	frac := pos - float64(lo)
	return s[lo] + (s[hi]-s[lo])*frac
}
