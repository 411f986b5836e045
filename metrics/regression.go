// Package metrics は重み付き最小二乗フィットの適合度指標を提供する。
package metrics

import (
	"math"

	"github.com/YuminosukeSato/scifit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// WeightedResiduals は正規化残差 r_i = (yPred_i - yTrue_i) / sigma_i を計算する
func WeightedResiduals(yTrue, yPred, sigma *mat.VecDense) (*mat.VecDense, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValidationError("y", "empty vector", n)
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("WeightedResiduals", "y_pred", n, yPred.Len())
	}
	if sigma.Len() != n {
		return nil, errors.NewDimensionError("WeightedResiduals", "sigma", n, sigma.Len())
	}

	r := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		s := sigma.AtVec(i)
		if !(s > 0) {
			return nil, errors.NewValidationError("sigma", "values must be strictly positive", s)
		}
		r.SetVec(i, (yPred.AtVec(i)-yTrue.AtVec(i))/s)
	}
	return r, nil
}

// ChiSquare はカイ二乗 Σ ((yTrue_i - yPred_i) / sigma_i)² を計算する
func ChiSquare(yTrue, yPred, sigma *mat.VecDense) (float64, error) {
	r, err := WeightedResiduals(yTrue, yPred, sigma)
	if err != nil {
		return 0, err
	}
	return mat.Dot(r, r), nil
}

// ReducedChiSquare は換算カイ二乗 chiSquare / (nPoints - nParams) を計算する
// 自由度が0以下の場合は DegreesOfFreedomError を返す
func ReducedChiSquare(chiSquare float64, nPoints, nParams int) (float64, error) {
	dof := nPoints - nParams
	if dof <= 0 {
		return 0, errors.NewDegreesOfFreedomError("ReducedChiSquare", nPoints, nParams)
	}
	return chiSquare / float64(dof), nil
}

// RMSResidual は正規化残差の二乗平均平方根 sqrt(chiSquare / n) を返す
func RMSResidual(chiSquare float64, nPoints int) float64 {
	if nPoints <= 0 {
		return math.NaN()
	}
	return math.Sqrt(chiSquare / float64(nPoints))
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValidationError("y", "empty vector", n)
	}

	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Score", "y_pred", n, yPred.Len())
	}

	// yTrueの平均を計算
	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	// 全変動（TSS）と残差変動（RSS）を計算
	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.NewValidationError("y", "total sum of squares is zero (no variance)", tss)
	}

	// R² = 1 - RSS/TSS
	return 1 - rss/tss, nil
}
