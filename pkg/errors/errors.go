// Package errors はscifit全体のエラーハンドリングと警告システムを提供します。
// 入力検証・退化系・収束失敗などを型付きエラーとして表現し、
// cockroachdb/errors によるスタックトレースと zerolog 向けの構造化情報を付与します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("scifit-warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// IndeterminateCovarianceWarning などの警告の処理方法を制御できます。
//
// 例:
//
//	prev := errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
//	defer errors.SetWarningHandler(prev)
//
// 戻り値は直前のハンドラです。
func SetWarningHandler(handler func(w error)) (previous func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	previous = warningHandler
	warningHandler = handler
	return previous
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nil を渡すと従来のハンドラに戻ります。戻り値は直前の関数です。
func SetZerologWarnFunc(warnFunc func(warning error)) (previous func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	previous = zerologWarnFunc
	zerologWarnFunc = warnFunc
	return previous
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	センチネルエラー
//
// ===========================================================================

var (
	// ErrInvalidInput は入力の長さ不一致・非正のsigma・データ点不足などを表します。
	ErrInvalidInput = New("invalid input")

	// ErrDegenerateSystem は閉形式の直線フィットで行列式が0になった場合のエラーです。
	ErrDegenerateSystem = New("degenerate system")

	// ErrConvergence は反復ソルバーが収束条件を満たさずに停止した場合のエラーです。
	ErrConvergence = New("convergence failure")

	// ErrInvalidDegreesOfFreedom は換算カイ二乗の自由度が0以下の場合のエラーです。
	ErrInvalidDegreesOfFreedom = New("invalid degrees of freedom")

	// ErrUnknownStyle はフォーマッタに未知の表記スタイルが渡された場合のエラーです。
	ErrUnknownStyle = New("unknown format style")
)

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// IndeterminateCovarianceWarning は共分散行列が決定できなかった場合の警告です。
// エラーではなく、推定値は有効だが不確かさが無限大であることを示します。
type IndeterminateCovarianceWarning struct {
	Op        string
	NParams   int
	Rank      int
	Condition float64
}

func (w *IndeterminateCovarianceWarning) Error() string {
	return fmt.Sprintf("%s: covariance of the parameters could not be estimated (jacobian rank %d < %d); standard errors set to +Inf",
		w.Op, w.Rank, w.NParams)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *IndeterminateCovarianceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Int("n_params", w.NParams).
		Int("rank", w.Rank).
		Float64("condition", w.Condition).
		Str("type", "IndeterminateCovarianceWarning")
}

// NewIndeterminateCovarianceWarning は新しいIndeterminateCovarianceWarningを作成します。
func NewIndeterminateCovarianceWarning(op string, nParams, rank int, condition float64) *IndeterminateCovarianceWarning {
	return &IndeterminateCovarianceWarning{Op: op, NParams: nParams, Rank: rank, Condition: condition}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` などを呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("scifit: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力系列の長さが期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Name     string // 問題のある系列名（例: "y", "sigma"）
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("scifit: %s: length mismatch for %s. Expected %d, got %d", e.Op, e.Name, e.Expected, e.Got)
}

// Is は ErrInvalidInput との比較を可能にします。
func (e *DimensionError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("name", e.Name).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op, name string, expected, got int) error {
	err := &DimensionError{Op: op, Name: name, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scifit: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// Is は ErrInvalidInput との比較を可能にします。
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// DegenerateSystemError は正規方程式の行列式が0（またはそれと区別できない）場合のエラーです。
// 例えば、すべての x が等しいときの直線フィットなど。
type DegenerateSystemError struct {
	Op          string
	Determinant float64
}

func (e *DegenerateSystemError) Error() string {
	return fmt.Sprintf("scifit: %s: degenerate system, determinant %g (x values are collinear or identical)", e.Op, e.Determinant)
}

// Is は ErrDegenerateSystem との比較を可能にします。
func (e *DegenerateSystemError) Is(target error) bool {
	return target == ErrDegenerateSystem
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateSystemError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("determinant", e.Determinant).
		Str("type", "DegenerateSystemError")
}

// NewDegenerateSystemError は新しいDegenerateSystemErrorを作成し、スタックトレースを付与します。
func NewDegenerateSystemError(op string, determinant float64) error {
	err := &DegenerateSystemError{Op: op, Determinant: determinant}
	return errors.WithStack(err)
}

// ConvergenceError は反復ソルバーが成功コードに到達せず停止した場合のエラーです。
// 最後に受理されたパラメータ推定値と診断メッセージを保持します。
type ConvergenceError struct {
	Algorithm   string
	Code        int
	Message     string
	Evaluations int
	Params      []float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("scifit: %s: optimal parameters not found: %s (code %d after %d evaluations)",
		e.Algorithm, e.Message, e.Code, e.Evaluations)
}

// Is は ErrConvergence との比較を可能にします。
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrConvergence
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConvergenceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("algorithm", e.Algorithm).
		Int("code", e.Code).
		Str("message", e.Message).
		Int("evaluations", e.Evaluations).
		Floats64("params", e.Params).
		Str("type", "ConvergenceError")
}

// NewConvergenceError は新しいConvergenceErrorを作成し、スタックトレースを付与します。
// params はコピーされます。
func NewConvergenceError(algorithm string, code int, message string, evaluations int, params []float64) error {
	err := &ConvergenceError{
		Algorithm:   algorithm,
		Code:        code,
		Message:     message,
		Evaluations: evaluations,
		Params:      append([]float64(nil), params...),
	}
	return errors.WithStack(err)
}

// DegreesOfFreedomError は換算カイ二乗の分母（データ点数 - パラメータ数）が0以下の場合のエラーです。
type DegreesOfFreedomError struct {
	Op      string
	NPoints int
	NParams int
}

func (e *DegreesOfFreedomError) Error() string {
	return fmt.Sprintf("scifit: %s: %d points and %d parameters leave %d degrees of freedom",
		e.Op, e.NPoints, e.NParams, e.NPoints-e.NParams)
}

// Is は ErrInvalidDegreesOfFreedom との比較を可能にします。
func (e *DegreesOfFreedomError) Is(target error) bool {
	return target == ErrInvalidDegreesOfFreedom
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegreesOfFreedomError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("n_points", e.NPoints).
		Int("n_params", e.NParams).
		Str("type", "DegreesOfFreedomError")
}

// NewDegreesOfFreedomError は新しいDegreesOfFreedomErrorを作成し、スタックトレースを付与します。
func NewDegreesOfFreedomError(op string, nPoints, nParams int) error {
	err := &DegreesOfFreedomError{Op: op, NPoints: nPoints, NParams: nParams}
	return errors.WithStack(err)
}

// UnknownStyleError はフォーマッタに未知の表記スタイルが指定された場合のエラーです。
type UnknownStyleError struct {
	Style string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("scifit: unknown format style %q (expected \"standard\" or \"compact\")", e.Style)
}

// Is は ErrUnknownStyle との比較を可能にします。
func (e *UnknownStyleError) Is(target error) bool {
	return target == ErrUnknownStyle
}

// NewUnknownStyleError は新しいUnknownStyleErrorを作成し、スタックトレースを付与します。
func NewUnknownStyleError(style string) error {
	return errors.WithStack(&UnknownStyleError{Style: style})
}

// NumericalInstabilityError は数値計算が不安定になった場合のエラーです。
// モデル関数が NaN や Inf を返した場合などに検出されます。
type NumericalInstabilityError struct {
	Operation string    // 発生した操作（例: "residuals", "jacobian"）
	Values    []float64 // 問題のある値
	Iteration int       // 発生したイテレーション番号
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("scifit: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("iteration", e.Iteration).
		Int("n_values", len(e.Values)).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
