package preprocessing

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/spectro/core/model"
	"github.com/YuminosukeSato/spectro/core/tensor"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

// constantColumnTol 以下の標準偏差を持つ波長は定数とみなし、スケール1を使う
const constantColumnTol = 1e-8

type scalerParams struct {
	mean  []float64
	scale []float64
}

// StandardScaler は波長ごと（列ごと）の標準化を行う。オートスケーリングとも呼ばれる。
// SNVが各スペクトルを正規化するのに対し、こちらはサンプル集合の統計量を学習する。
type StandardScaler struct {
	withMean bool
	withStd  bool

	state *model.StateManager[scalerParams]
	telemetry
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(preprocessing.WithStd(false))
//	err := scaler.Fit(X)
//	XScaled, err := scaler.Transform(X)
func NewStandardScaler(opts ...ScalerOption) *StandardScaler {
	s := &StandardScaler{
		withMean:  true,
		withStd:   true,
		state:     model.NewStateManager[scalerParams](),
		telemetry: newTelemetry("StandardScaler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit は訓練データから各波長の平均と母標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	start := time.Now()
	rows, cols, err := tensor.Dims("StandardScaler.Fit", X)
	if err != nil {
		return err
	}

	p := scalerParams{
		mean:  make([]float64, cols),
		scale: make([]float64, cols),
	}
	col := make([]float64, rows)
	for j := range cols {
		mat.Col(col, j, X)
		if s.withMean {
			p.mean[j] = stat.Mean(col, nil)
		}
		p.scale[j] = 1
		if s.withStd {
			sd := math.Sqrt(stat.PopVariance(col, nil))
			if sd >= constantColumnTol {
				p.scale[j] = sd
			}
		}
	}
	s.state.Set(p, rows, cols)

	s.done(log.OperationFit, rows, cols, start)
	return nil
}

// Transform は学習済みの統計量でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply(X, "Transform", func(v, mean, scale float64) float64 {
		return (v - mean) / scale
	})
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	return s.apply(X, "InverseTransform", func(v, mean, scale float64) float64 {
		return v*scale + mean
	})
}

func (s *StandardScaler) apply(X mat.Matrix, method string, f func(v, mean, scale float64) float64) (mat.Matrix, error) {
	start := time.Now()
	p, err := s.state.Params("StandardScaler", method)
	if err != nil {
		return nil, err
	}
	op := "StandardScaler." + method
	if err := tensor.CheckColumns(op, X, len(p.mean)); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()

	out, err := tensor.MapRows(X, cols, func(_ int, src, dst []float64) error {
		for j, v := range src {
			dst[j] = f(v, p.mean[j], p.scale[j])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.done(log.OperationTransform, rows, cols, start)
	return out, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Mean は学習済みの平均を返す。未学習ならnil
func (s *StandardScaler) Mean() []float64 {
	st, ok := s.state.State().(model.Fitted[scalerParams])
	if !ok {
		return nil
	}
	return slices.Clone(st.Params.mean)
}

// Scale は学習済みのスケールを返す。未学習ならnil
func (s *StandardScaler) Scale() []float64 {
	st, ok := s.state.State().(model.Fitted[scalerParams])
	if !ok {
		return nil
	}
	return slices.Clone(st.Params.scale)
}

// IsFitted は学習済みかどうかを返す
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.withMean,
		"with_std":  s.withStd,
	}
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	nFeatures, _ := s.state.GetDimensions()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, nFeatures)
}
