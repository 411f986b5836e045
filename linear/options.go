package linear

import "github.com/YuminosukeSato/scifit/pkg/log"

// Option is a function that configures WeightedLinearRegression
type Option func(*WeightedLinearRegression)

// WithLogger sets the logger used for fit diagnostics
func WithLogger(logger log.Logger) Option {
	return func(lr *WeightedLinearRegression) {
		if logger != nil {
			lr.logger = logger
		}
	}
}
