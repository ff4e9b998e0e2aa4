// Package metrics compares spectral matrices element by element, e.g. a
// denoised or smoothed matrix against a clean reference.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/spectro/core/tensor"
	"github.com/YuminosukeSato/spectro/pkg/errors"
)

// checkPair は2つの行列が空でなく同じ形であることを確認する
func checkPair(op string, yTrue, yPred mat.Matrix) (rows, cols int, err error) {
	rows, cols, err = tensor.Dims(op, yTrue)
	if err != nil {
		return 0, 0, err
	}
	rPred, cPred, err := tensor.Dims(op, yPred)
	if err != nil {
		return 0, 0, err
	}
	if rPred != rows {
		return 0, 0, errors.NewDimensionError(op, rows, rPred, 0)
	}
	if cPred != cols {
		return 0, 0, errors.NewDimensionError(op, cols, cPred, 1)
	}
	return rows, cols, nil
}

// flatten は行列の全要素を行優先で並べたスライスを返す
func flatten(X mat.Matrix) []float64 {
	rows, cols := X.Dims()
	out := make([]float64, 0, rows*cols)
	row := make([]float64, cols)
	for i := range rows {
		out = append(out, mat.Row(row, i, X)...)
	}
	return out
}

// MSE は全要素の平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred mat.Matrix) (float64, error) {
	rows, cols, err := checkPair("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	d := floats.Distance(flatten(yTrue), flatten(yPred), 2)
	return d * d / float64(rows*cols), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred mat.Matrix) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// RowRMSE はスペクトル（行）ごとのRMSEを返す
func RowRMSE(yTrue, yPred mat.Matrix) ([]float64, error) {
	rows, cols, err := checkPair("RowRMSE", yTrue, yPred)
	if err != nil {
		return nil, err
	}
	out := make([]float64, rows)
	a := make([]float64, cols)
	b := make([]float64, cols)
	for i := range rows {
		mat.Row(a, i, yTrue)
		mat.Row(b, i, yPred)
		out[i] = floats.Distance(a, b, 2) / math.Sqrt(float64(cols))
	}
	return out, nil
}

// MAE は全要素の平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred mat.Matrix) (float64, error) {
	rows, cols, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return floats.Distance(flatten(yTrue), flatten(yPred), 1) / float64(rows*cols), nil
}

// R2Score は全要素を1つの系列とみなした決定係数（R²）を計算する
func R2Score(yTrue, yPred mat.Matrix) (float64, error) {
	if _, _, err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}
	t, p := flatten(yTrue), flatten(yPred)

	mean := stat.Mean(t, nil)
	var tss float64
	for _, v := range t {
		tss += (v - mean) * (v - mean)
	}
	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	rss := floats.Distance(t, p, 2)
	return 1 - rss*rss/tss, nil
}

// ExplainedVarianceScore は説明分散スコア 1 - Var(yTrue - yPred) / Var(yTrue) を計算する
func ExplainedVarianceScore(yTrue, yPred mat.Matrix) (float64, error) {
	if _, _, err := checkPair("ExplainedVarianceScore", yTrue, yPred); err != nil {
		return 0, err
	}
	t, p := flatten(yTrue), flatten(yPred)

	varTrue := stat.PopVariance(t, nil)
	if varTrue == 0 {
		return 0, errors.Newf("ExplainedVarianceScore: no variance in yTrue")
	}
	diff := make([]float64, len(t))
	floats.SubTo(diff, t, p)
	return 1 - stat.PopVariance(diff, nil)/varTrue, nil
}

// SNR は参照スペクトル clean に対する estimate の信号対雑音比をdBで返す。
// 完全一致のときは +Inf
func SNR(clean, estimate mat.Matrix) (float64, error) {
	if _, _, err := checkPair("SNR", clean, estimate); err != nil {
		return 0, err
	}
	c := flatten(clean)
	signal := floats.Dot(c, c)
	noise := floats.Distance(c, flatten(estimate), 2)
	if signal == 0 {
		return 0, errors.NewValueError("SNR", "reference signal has zero energy")
	}
	return 10 * math.Log10(signal/(noise*noise)), nil
}
