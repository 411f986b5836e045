// Package log defines standard attribute keys for fitting operations.
//
// Using these keys keeps records from the linear fitter, the Levenberg–Marquardt
// solver and the CLI consistent, so logs can be filtered by component and
// operation. Keys follow a hierarchical naming convention ("fit.params",
// "solver.lambda") to enable structured log analysis.

package log

import "github.com/YuminosukeSato/scifit/pkg/errors"

// Operation context
const (
	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "leastsq", "notation", "cli"
	ComponentKey = "fit.component"

	// OperationKey specifies the operation being performed.
	// Standard values: see the Operation* constants below.
	OperationKey = "fit.operation"

	// ModelNameKey names the fitted model when it comes from the catalog.
	// Examples: "line", "exponential", "gaussian"
	ModelNameKey = "fit.model"
)

// Data shape
const (
	// SamplesKey is the number of measurement points.
	SamplesKey = "data.samples"

	// ParamsKey is the number of free parameters.
	ParamsKey = "data.params"

	// DegreesOfFreedomKey is samples minus parameters.
	DegreesOfFreedomKey = "data.dof"
)

// Fit results
const (
	// ParamValuesKey holds the fitted (or current) parameter vector.
	ParamValuesKey = "fit.params"

	// StdErrorsKey holds the standard errors of the fitted parameters.
	StdErrorsKey = "fit.std_errors"

	// ChiSquareKey is the weighted sum of squared residuals.
	ChiSquareKey = "fit.chi_square"

	// ReducedChiSquareKey is chi-square divided by the degrees of freedom.
	ReducedChiSquareKey = "fit.reduced_chi_square"
)

// Solver progress
const (
	// IterationKey records the outer iteration number.
	IterationKey = "solver.iteration"

	// EvaluationsKey records the number of residual-vector evaluations so far.
	EvaluationsKey = "solver.evaluations"

	// LambdaKey records the current Levenberg–Marquardt damping factor.
	LambdaKey = "solver.lambda"

	// StepNormKey records the Euclidean norm of the last trial step.
	StepNormKey = "solver.step_norm"

	// TerminationCodeKey records the solver's termination code (1–4 success).
	TerminationCodeKey = "solver.code"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving an issue.
	// Examples: "try a different p0", "increase max_evals"
	SuggestionKey = "error.suggestion"

	// WarningKey holds the structured payload of a library warning.
	WarningKey = "warning"
)

// Standard attribute values.
const (
	OperationLinearFit    = "linear_fit"
	OperationNonlinearFit = "nonlinear_fit"
	OperationCovariance   = "covariance"
	OperationFormat       = "format"

	ErrorInvalidInput     = "INVALID_INPUT"
	ErrorDegenerateSystem = "DEGENERATE_SYSTEM"
	ErrorConvergence      = "CONVERGENCE_FAILURE"
	ErrorDegreesOfFreedom = "INVALID_DEGREES_OF_FREEDOM"
	ErrorUnknownFormat    = "UNKNOWN_FORMAT_STYLE"
	ErrorIndeterminateCov = "INDETERMINATE_COVARIANCE"
	ErrorNumerical        = "NUMERICAL_INSTABILITY"
	ErrorModelPanic       = "MODEL_PANIC"
)

// ErrorCode maps an error or warning from pkg/errors to its ErrorCodeKey value.
// Unknown errors map to "".
func ErrorCode(err error) string {
	var (
		numErr   *errors.NumericalInstabilityError
		panicErr *errors.PanicError
		covWarn  *errors.IndeterminateCovarianceWarning
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errors.ErrInvalidInput):
		return ErrorInvalidInput
	case errors.Is(err, errors.ErrDegenerateSystem):
		return ErrorDegenerateSystem
	case errors.Is(err, errors.ErrConvergence):
		return ErrorConvergence
	case errors.Is(err, errors.ErrInvalidDegreesOfFreedom):
		return ErrorDegreesOfFreedom
	case errors.Is(err, errors.ErrUnknownStyle):
		return ErrorUnknownFormat
	case errors.As(err, &covWarn):
		return ErrorIndeterminateCov
	case errors.As(err, &numErr):
		return ErrorNumerical
	case errors.As(err, &panicErr):
		return ErrorModelPanic
	default:
		return ""
	}
}
