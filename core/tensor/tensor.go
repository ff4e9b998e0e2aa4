// Package tensor holds the spectral-matrix helpers shared by transforms:
// shape checks, row access and row-wise maps into freshly allocated
// matrices.
package tensor

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/parallel"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// Dims returns the shape of X, rejecting nil and empty matrices.
func Dims(op string, X mat.Matrix) (rows, cols int, err error) {
	if X == nil {
		return 0, 0, serrors.Wrapf(serrors.ErrEmptyData, "%s: nil matrix", op)
	}
	if dense, ok := X.(*mat.Dense); ok && dense.IsEmpty() {
		return 0, 0, serrors.Wrapf(serrors.ErrEmptyData, "%s: empty matrix", op)
	}
	rows, cols = X.Dims()
	if rows == 0 || cols == 0 {
		return 0, 0, serrors.Wrapf(serrors.ErrEmptyData, "%s: matrix has shape (%d, %d)", op, rows, cols)
	}
	return rows, cols, nil
}

// CheckColumns returns a DimensionError when X does not have want columns.
func CheckColumns(op string, X mat.Matrix, want int) error {
	_, cols, err := Dims(op, X)
	if err != nil {
		return err
	}
	if cols != want {
		return serrors.NewDimensionError(op, want, cols, 1)
	}
	return nil
}

// Row copies row i of X into dst, allocating when dst is nil.
func Row(dst []float64, X mat.Matrix, i int) []float64 {
	return mat.Row(dst, i, X)
}

// RowFunc maps one source row to one destination row. src is a private copy
// and may be modified.
type RowFunc func(i int, src, dst []float64) error

// MapRows applies fn to every row of X and returns a new rows × outCols
// matrix. X is never modified.
func MapRows(X mat.Matrix, outCols int, fn RowFunc) (*mat.Dense, error) {
	return MapRowsParallel(X, outCols, 1, fn)
}

// MapRowsParallel is MapRows with rows spread over at most nJobs workers
// (nJobs <= 0 uses every CPU). The first failing row aborts the call.
func MapRowsParallel(X mat.Matrix, outCols, nJobs int, fn RowFunc) (*mat.Dense, error) {
	rows, cols := X.Dims()
	out := mat.NewDense(rows, outCols, nil)
	raw := out.RawMatrix()

	err := parallel.ForEach(rows, nJobs, func(i int) error {
		src := make([]float64, cols)
		mat.Row(src, i, X)
		dst := raw.Data[i*raw.Stride : i*raw.Stride+outCols]
		return fn(i, src, dst)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dot returns the inner product of two equal-length slices.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("tensor: length mismatch in Dot")
	}
	return vecmath.DotProduct(a, b)
}

// Scale sets dst[i] = src[i] * s.
func Scale(dst, src []float64, s float64) {
	vecmath.ScaleBlock(dst, src, s)
}

// Monotonic reports whether x is strictly increasing or strictly decreasing.
// NaN entries make x non-monotonic.
func Monotonic(x []float64) (increasing, ok bool) {
	if len(x) < 2 {
		return true, len(x) == 1 && !math.IsNaN(x[0])
	}
	increasing = x[1] > x[0]
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if math.IsNaN(d) {
			return false, false
		}
		if increasing && d <= 0 || !increasing && d >= 0 {
			return false, false
		}
	}
	return increasing, true
}
