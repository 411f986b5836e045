// Package linear は不確かさ付きデータに対する重み付き最小二乗直線フィットを提供する。
package linear

import (
	"math"

	"github.com/YuminosukeSato/scifit/core/model"
	"github.com/YuminosukeSato/scifit/core/parallel"
	"github.com/YuminosukeSato/scifit/metrics"
	"github.com/YuminosukeSato/scifit/pkg/errors"
	"github.com/YuminosukeSato/scifit/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// minPoints は直線フィットに必要な最小データ点数（換算カイ二乗の自由度を1以上にする）
const minPoints = 3

// LineFit は重み付き直線フィット y = a·x + b の結果
type LineFit struct {
	Slope            float64 // a
	SlopeErr         float64 // da
	Intercept        float64 // b
	InterceptErr     float64 // db
	ChiSquare        float64
	ReducedChiSquare float64
	NPoints          int
}

// Eval はフィットした直線の x における値を返す
func (f *LineFit) Eval(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// WeightedFit は y の不確かさ sigmaY を考慮して直線 y = a·x + b を閉形式で求める
//
// 重み w_i = 1/sigmaY_i² を用いて
//
//	delta = Sw·Sxx − Sx²
//	a = (Sw·Sxy − Sx·Sy) / delta,  da = sqrt(Sw/delta)
//	b = (Sxx·Sy − Sx·Sxy) / delta, db = sqrt(Sxx/delta)
//
// delta が0（またはそれと区別できない）場合は DegenerateSystemError を返す。
func WeightedFit(x, y, sigmaY []float64) (*LineFit, error) {
	const op = "linear.WeightedFit"

	// 入力の検証
	if err := errors.CheckSameLength(op,
		errors.Series{Name: "x", Values: x},
		errors.Series{Name: "y", Values: y},
		errors.Series{Name: "sigma_y", Values: sigmaY},
	); err != nil {
		return nil, err
	}
	n := len(x)
	if n < minPoints {
		return nil, errors.NewValidationError("x", "at least 3 points are required", n)
	}
	if err := errors.CheckFinite("x", x); err != nil {
		return nil, err
	}
	if err := errors.CheckFinite("y", y); err != nil {
		return nil, err
	}
	if err := errors.CheckPositive("sigma_y", sigmaY); err != nil {
		return nil, err
	}

	// 重みは点ごとに独立なので並列に計算し、総和は逐次で取る
	w := make([]float64, n)
	parallel.Map(w, parallel.DefaultThreshold, func(i int) float64 {
		return 1 / (sigmaY[i] * sigmaY[i])
	})

	var sw, sx, sy, sxy, sxx float64
	for i := 0; i < n; i++ {
		sw += w[i]
		sx += w[i] * x[i]
		sy += w[i] * y[i]
		sxy += w[i] * x[i] * y[i]
		sxx += w[i] * x[i] * x[i]
	}

	delta := sw*sxx - sx*sx
	if !(math.Abs(delta) > 4*epsilon*sw*sxx) || math.IsInf(delta, 0) {
		return nil, errors.NewDegenerateSystemError(op, delta)
	}

	fit := &LineFit{
		Slope:        (sw*sxy - sx*sy) / delta,
		Intercept:    (sxx*sy - sx*sxy) / delta,
		SlopeErr:     math.Sqrt(sw / delta),
		InterceptErr: math.Sqrt(sxx / delta),
		NPoints:      n,
	}

	pred := make([]float64, n)
	parallel.Map(pred, parallel.DefaultThreshold, func(i int) float64 {
		return fit.Eval(x[i])
	})

	chi2, err := metrics.ChiSquare(
		mat.NewVecDense(n, append([]float64(nil), y...)),
		mat.NewVecDense(n, pred),
		mat.NewVecDense(n, append([]float64(nil), sigmaY...)),
	)
	if err != nil {
		return nil, err
	}
	fit.ChiSquare = chi2

	fit.ReducedChiSquare, err = metrics.ReducedChiSquare(chi2, n, 2)
	if err != nil {
		return nil, err
	}

	return fit, nil
}

// epsilon は float64 のマシンイプシロン
const epsilon = 2.220446049250313e-16

// WeightedLinearRegression は WeightedFit を推定器として扱うためのラッパー
type WeightedLinearRegression struct {
	model.BaseEstimator

	result *LineFit
	logger log.Logger
}

// NewWeightedLinearRegression は新しい重み付き線形回帰モデルを作成する
func NewWeightedLinearRegression(opts ...Option) *WeightedLinearRegression {
	lr := &WeightedLinearRegression{logger: log.GetLogger()}
	for _, opt := range opts {
		opt(lr)
	}
	lr.logger = lr.logger.With(log.ComponentKey, "linear")
	return lr
}

// Fit はモデルを測定データで学習させる
func (lr *WeightedLinearRegression) Fit(x, y, sigmaY []float64) error {
	fit, err := WeightedFit(x, y, sigmaY)
	if err != nil {
		lr.logger.Debug("weighted linear fit failed",
			log.OperationKey, log.OperationLinearFit,
			log.SamplesKey, len(x),
			log.ErrorCodeKey, log.ErrorCode(err),
			"error", err,
		)
		return err
	}

	lr.result = fit
	lr.SetFitted(fit.NPoints)

	lr.logger.Debug("weighted linear fit completed",
		log.OperationKey, log.OperationLinearFit,
		log.SamplesKey, fit.NPoints,
		log.DegreesOfFreedomKey, fit.NPoints-2,
		log.ParamValuesKey, []float64{fit.Slope, fit.Intercept},
		log.StdErrorsKey, []float64{fit.SlopeErr, fit.InterceptErr},
		log.ChiSquareKey, fit.ChiSquare,
		log.ReducedChiSquareKey, fit.ReducedChiSquare,
	)
	return nil
}

// Result は学習結果を返す
func (lr *WeightedLinearRegression) Result() (*LineFit, error) {
	if err := lr.RequireFitted("WeightedLinearRegression", "Result"); err != nil {
		return nil, err
	}
	out := *lr.result
	return &out, nil
}

// Predict は入力 x に対する予測値を返す
func (lr *WeightedLinearRegression) Predict(x []float64) ([]float64, error) {
	if err := lr.RequireFitted("WeightedLinearRegression", "Predict"); err != nil {
		return nil, err
	}

	pred := make([]float64, len(x))
	parallel.Map(pred, parallel.DefaultThreshold, func(i int) float64 {
		return lr.result.Eval(x[i])
	})
	return pred, nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *WeightedLinearRegression) Score(x, y []float64) (float64, error) {
	if err := lr.RequireFitted("WeightedLinearRegression", "Score"); err != nil {
		return 0, err
	}
	if len(x) != len(y) {
		return 0, errors.NewDimensionError("WeightedLinearRegression.Score", "y", len(x), len(y))
	}
	if len(x) == 0 {
		return 0, errors.NewValidationError("x", "empty vector", 0)
	}

	pred, err := lr.Predict(x)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(
		mat.NewVecDense(len(y), append([]float64(nil), y...)),
		mat.NewVecDense(len(pred), pred),
	)
}
