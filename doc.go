// Package scifit fits measurements that carry per-point uncertainties and
// reports the results in scientific notation.
//
// # Features
//
//   - Weighted straight-line fit in closed form, with parameter uncertainties and chi-square
//   - Levenberg-Marquardt nonlinear least squares with covariance of the estimates
//   - Formatting of value ± uncertainty as "(1.078 \pm 0.033)e+01" or "1.078(33)e+01"
//   - Structured errors and logging shared by every package
//
// # Installation
//
//	go get github.com/YuminosukeSato/scifit
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scifit/leastsq"
//	    "github.com/YuminosukeSato/scifit/notation"
//	)
//
//	func main() {
//	    x := []float64{0, 1, 2, 3, 4}
//	    y := []float64{8.1, 5.6, 3.9, 2.8, 2.0}
//	    sigma := []float64{0.2, 0.2, 0.2, 0.2, 0.2}
//
//	    res, err := leastsq.Fit(leastsq.Exponential.Func, x, y, sigma, leastsq.Guess(5, -0.5))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for i, name := range leastsq.Exponential.Params {
//	        fmt.Println(name, notation.Measurement{Value: res.Params[i], Uncertainty: res.StdErrors[i]})
//	    }
//	}
//
// # Packages
//
//   - linear: weighted straight-line fit (WeightedFit, WeightedLinearRegression)
//   - leastsq: Levenberg-Marquardt solver and the model catalog
//   - notation: scientific notation with uncertainties
//   - metrics: chi-square, reduced chi-square, R²
//   - core/model: fitted-state bookkeeping for estimators
//   - core/parallel: parallel evaluation for large inputs
//   - pkg/errors, pkg/log: error types and structured logging
//
// The scifit command (cmd/scifit) exposes the same operations on the command line.
package scifit
