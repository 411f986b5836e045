package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("WeightedFit", "sigma_y", 5, 4)

	want := "scifit: WeightedFit: length mismatch for sigma_y. Expected 5, got 4"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Name != "sigma_y" {
		t.Errorf("Name = %q, want sigma_y", dimErr.Name)
	}

	if !Is(err, ErrInvalidInput) {
		t.Error("DimensionError should match ErrInvalidInput")
	}

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("significant_figures", "must be at least 1", 0)

	want := "scifit: validation failed for parameter 'significant_figures': must be at least 1 (got: 0)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}
	if Is(err, ErrConvergence) {
		t.Error("ValidationError must not match ErrConvergence")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("WeightedLinearRegression", "Predict")

	want := "scifit: WeightedLinearRegression: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestTaxonomySentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"degenerate", NewDegenerateSystemError("WeightedFit", 0), ErrDegenerateSystem},
		{"convergence", NewConvergenceError("levenberg-marquardt", 5, "too many evaluations", 300, []float64{1, 2}), ErrConvergence},
		{"degrees of freedom", NewDegreesOfFreedomError("ReducedChiSquare", 2, 2), ErrInvalidDegreesOfFreedom},
		{"unknown style", NewUnknownStyleError("latex"), ErrUnknownStyle},
		{"wrapped", Wrap(NewDegenerateSystemError("WeightedFit", 0), "linfit"), ErrDegenerateSystem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.target) {
				t.Errorf("Is(%v, %v) = false, want true", tt.err, tt.target)
			}
			if Is(tt.err, ErrInvalidInput) {
				t.Errorf("%v must not match ErrInvalidInput", tt.err)
			}
		})
	}
}

func TestConvergenceErrorCopiesParams(t *testing.T) {
	params := []float64{1.5, -2}
	err := NewConvergenceError("levenberg-marquardt", 5, "number of calls to function has reached max_evals", 300, params)
	params[0] = 99

	var convErr *ConvergenceError
	if !As(err, &convErr) {
		t.Fatal("Error should be castable to *ConvergenceError")
	}
	if convErr.Params[0] != 1.5 {
		t.Errorf("Params[0] = %v, want 1.5 (must be a copy)", convErr.Params[0])
	}
	if !strings.Contains(err.Error(), "code 5 after 300 evaluations") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestWarnRoutesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	prev := SetZerologWarnFunc(func(w error) {
		ev := logger.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.Object("warning", m)
		}
		ev.Msg(w.Error())
	})
	defer SetZerologWarnFunc(prev)

	Warn(NewIndeterminateCovarianceWarning("leastsq.Fit", 2, 1, math.Inf(1)))

	out := buf.String()
	if !strings.Contains(out, "IndeterminateCovarianceWarning") {
		t.Errorf("expected structured warning type in output, got %s", out)
	}
	if !strings.Contains(out, `"rank":1`) {
		t.Errorf("expected rank field in output, got %s", out)
	}
}

func TestWarnFallsBackToHandler(t *testing.T) {
	var got []error
	prev := SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(prev)

	w := NewIndeterminateCovarianceWarning("leastsq.Fit", 3, 2, 1e20)
	Warn(w)

	if len(got) != 1 || got[0] != w {
		t.Fatalf("handler received %v, want [%v]", got, w)
	}
	if !strings.Contains(w.Error(), "rank 2 < 3") {
		t.Errorf("unexpected warning message: %s", w.Error())
	}
}

func TestCheckHelpers(t *testing.T) {
	if err := CheckFinite("x", []float64{1, 2, 3}); err != nil {
		t.Errorf("CheckFinite unexpected error: %v", err)
	}
	if err := CheckFinite("x", []float64{1, math.NaN()}); !Is(err, ErrInvalidInput) {
		t.Errorf("CheckFinite(NaN) = %v, want ErrInvalidInput", err)
	}
	if err := CheckPositive("sigma", []float64{0.1, 0}); !Is(err, ErrInvalidInput) {
		t.Errorf("CheckPositive(0) = %v, want ErrInvalidInput", err)
	}
	if err := CheckPositive("sigma", []float64{0.1, math.Inf(1)}); err == nil {
		t.Error("CheckPositive(+Inf) should fail")
	}

	err := CheckSameLength("Fit",
		Series{Name: "x", Values: []float64{1, 2, 3}},
		Series{Name: "y", Values: []float64{1, 2, 3}},
		Series{Name: "sigma", Values: []float64{1, 2}},
	)
	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatalf("CheckSameLength = %v, want DimensionError", err)
	}
	if dimErr.Name != "sigma" || dimErr.Expected != 3 || dimErr.Got != 2 {
		t.Errorf("unexpected DimensionError %+v", dimErr)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("residuals", []float64{0, 1, -1}, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("residuals", []float64{0, math.Inf(-1), math.NaN()}, 3)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if len(numErr.Values) != 2 || numErr.Iteration != 3 {
		t.Errorf("unexpected details %+v", numErr)
	}

	if err := CheckScalar("chi_square", math.NaN(), 1); err == nil {
		t.Error("CheckScalar(NaN) should fail")
	}
}

func TestSetWarningHandlerReturnsPrevious(t *testing.T) {
	var first, second int
	orig := SetWarningHandler(func(error) { first++ })
	defer SetWarningHandler(orig)

	prev := SetWarningHandler(func(error) { second++ })
	Warn(New("one"))
	SetWarningHandler(prev)
	Warn(New("two"))

	if first != 1 || second != 1 {
		t.Errorf("first = %d, second = %d, want 1 and 1", first, second)
	}
}
