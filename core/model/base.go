// Package model は推定器に共通する学習状態の管理を提供する。
package model

import "github.com/YuminosukeSato/scifit/pkg/errors"

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// String は状態名を返す
func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not fitted"
}

// BaseEstimator は全ての推定器の基底となる構造体
type BaseEstimator struct {
	state    EstimatorState
	nSamples int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted はモデルを学習済み状態に設定し、学習に使ったデータ点数を記録する
func (e *BaseEstimator) SetFitted(nSamples int) {
	e.state = Fitted
	e.nSamples = nSamples
}

// NSamples は学習に使ったデータ点数を返す（未学習なら0）
func (e *BaseEstimator) NSamples() int {
	return e.nSamples
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
	e.nSamples = 0
}

// RequireFitted は未学習の場合に NotFittedError を返す
func (e *BaseEstimator) RequireFitted(modelName, method string) error {
	if e.state != Fitted {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
