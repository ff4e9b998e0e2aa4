package core

import "gonum.org/v1/gonum/mat"

// Fitter は変換パラメータを学習するインターフェース
type Fitter interface {
	// Fit は X (n_samples × n_wavelengths) から変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error
}

// Transformer はスペクトル変換のインターフェース
type Transformer interface {
	Fitter

	// Transform は X を変換した新しい行列を返す。X は変更しない
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// AxisFitter は元の波長軸を必要とする変換のインターフェース
type AxisFitter interface {
	// FitAxis は X と、X の列に対応する波長軸 x で学習する
	FitAxis(X mat.Matrix, x []float64) error
}

// AxisMapper は出力の波長軸を変える変換のインターフェース
type AxisMapper interface {
	// OutputAxis は Transform の出力列に対応する波長軸を返す
	OutputAxis() []float64
}
