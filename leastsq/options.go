package leastsq

import (
	"math"
	"strings"

	"github.com/YuminosukeSato/scifit/pkg/errors"
	"github.com/YuminosukeSato/scifit/pkg/log"
)

// Difference selects the finite-difference formula used when no analytic gradient is supplied.
type Difference int

const (
	// Forward uses (r(p+h) - r(p)) / h, one extra evaluation per parameter.
	Forward Difference = iota
	// Central uses (r(p+h) - r(p-h)) / 2h, two extra evaluations per parameter.
	Central
)

// String returns the lower-case name of the formula.
func (d Difference) String() string {
	switch d {
	case Forward:
		return "forward"
	case Central:
		return "central"
	default:
		return "unknown"
	}
}

// ParseDifference parses "forward" or "central" (case-insensitive).
func ParseDifference(s string) (Difference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward":
		return Forward, nil
	case "central":
		return Central, nil
	default:
		return Forward, errors.NewValidationError("difference", "expected \"forward\" or \"central\"", s)
	}
}

// Settings holds the numeric controls of the solver.
// The zero value is not useful; start from DefaultSettings.
type Settings struct {
	// FTol is the relative error desired in the sum of squares.
	FTol float64
	// XTol is the relative error desired in the approximate solution.
	// At p = 0 it bounds the step norm directly.
	XTol float64
	// GTol is the orthogonality desired between the residuals and the Jacobian columns.
	GTol float64
	// MaxEvals caps residual-vector evaluations. 0 means 100*(len(p0)+1).
	MaxEvals int
	// Difference selects forward or central finite differences.
	Difference Difference
	// InitialDamping is the starting Levenberg–Marquardt factor λ.
	InitialDamping float64
}

// DefaultSettings returns the defaults used by Fit when no option overrides them.
func DefaultSettings() Settings {
	return Settings{
		FTol:           1.49012e-8,
		XTol:           1.49012e-8,
		GTol:           0,
		MaxEvals:       0,
		Difference:     Forward,
		InitialDamping: 1e-3,
	}
}

// Validate reports the first out-of-range field as a ValidationError.
func (s Settings) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"ftol", s.FTol},
		{"xtol", s.XTol},
		{"gtol", s.GTol},
	}
	for _, c := range checks {
		if c.value < 0 || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return errors.NewValidationError(c.name, "tolerance must be finite and non-negative", c.value)
		}
	}
	if s.MaxEvals < 0 {
		return errors.NewValidationError("max_evals", "must be non-negative", s.MaxEvals)
	}
	if s.Difference != Forward && s.Difference != Central {
		return errors.NewValidationError("difference", "unknown finite-difference formula", int(s.Difference))
	}
	if !(s.InitialDamping > 0) || math.IsInf(s.InitialDamping, 0) {
		return errors.NewValidationError("initial_damping", "must be finite and strictly positive", s.InitialDamping)
	}
	return nil
}

// maxEvals resolves the implicit cap for nParams parameters.
func (s Settings) maxEvals(nParams int) int {
	if s.MaxEvals == 0 {
		return 100 * (nParams + 1)
	}
	return s.MaxEvals
}

type config struct {
	Settings
	gradient  Gradient
	logger    log.Logger
	modelName string
}

// Option is a function that configures a fit
type Option func(*config)

// WithFTol sets the relative tolerance on the sum of squares
func WithFTol(tol float64) Option {
	return func(c *config) {
		c.FTol = tol
	}
}

// WithXTol sets the relative tolerance on the parameters
func WithXTol(tol float64) Option {
	return func(c *config) {
		c.XTol = tol
	}
}

// WithGTol sets the orthogonality tolerance between residuals and Jacobian columns
func WithGTol(tol float64) Option {
	return func(c *config) {
		c.GTol = tol
	}
}

// WithMaxEvals sets the evaluation cap (0 restores the implicit 100*(N+1))
func WithMaxEvals(n int) Option {
	return func(c *config) {
		c.MaxEvals = n
	}
}

// WithDifference selects the finite-difference formula
func WithDifference(d Difference) Option {
	return func(c *config) {
		c.Difference = d
	}
}

// WithJacobian supplies the analytic gradient of the model with respect to its parameters.
// Finite differences are not used when it is set.
func WithJacobian(g Gradient) Option {
	return func(c *config) {
		c.gradient = g
	}
}

// WithInitialDamping sets the starting damping factor λ
func WithInitialDamping(lambda float64) Option {
	return func(c *config) {
		c.InitialDamping = lambda
	}
}

// WithLogger sets the logger used for solver diagnostics
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSettings replaces every numeric control at once, e.g. from a config file.
// Options after it still apply.
func WithSettings(s Settings) Option {
	return func(c *config) {
		c.Settings = s
	}
}

func newConfig(opts []Option) *config {
	c := &config{Settings: DefaultSettings()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.GetLogger()
	}
	c.logger = c.logger.With(log.ComponentKey, "leastsq")
	if c.modelName != "" {
		c.logger = c.logger.With(log.ModelNameKey, c.modelName)
	}
	return c
}
