package leastsq

import "fmt"

// TerminationCode describes why the solver stopped. Codes 1 to 4 are success.
type TerminationCode int

const (
	// ConvergedBoth means both the ftol and the xtol tests passed on the same step.
	ConvergedBoth TerminationCode = 1 + iota
	// ConvergedFTol means the actual and predicted relative reductions are at most ftol.
	ConvergedFTol
	// ConvergedXTol means the relative step is at most xtol.
	ConvergedXTol
	// ConvergedGTol means the residuals are orthogonal to the Jacobian columns within gtol.
	ConvergedGTol
	// MaxEvalsReached means the evaluation cap was hit first.
	MaxEvalsReached
	// NoFurtherReduction means λ grew past its ceiling without an accepted step.
	NoFurtherReduction
)

// Success reports whether the code denotes convergence.
func (c TerminationCode) Success() bool {
	return c >= ConvergedBoth && c <= ConvergedGTol
}

// Message returns the human-readable cause of termination.
func (c TerminationCode) Message() string {
	switch c {
	case ConvergedBoth:
		return "both actual and predicted relative reductions in the sum of squares are at most ftol " +
			"and the relative error between two consecutive iterates is at most xtol"
	case ConvergedFTol:
		return "both actual and predicted relative reductions in the sum of squares are at most ftol"
	case ConvergedXTol:
		return "the relative error between two consecutive iterates is at most xtol"
	case ConvergedGTol:
		return "the cosine of the angle between the residuals and any column of the jacobian is at most gtol in absolute value"
	case MaxEvalsReached:
		return "number of calls to the model has reached the evaluation cap"
	case NoFurtherReduction:
		return "no further reduction in the sum of squares is possible"
	default:
		return fmt.Sprintf("unknown termination code %d", int(c))
	}
}

// String implements fmt.Stringer.
func (c TerminationCode) String() string {
	return fmt.Sprintf("%d: %s", int(c), c.Message())
}

// suggestion is a hint for the caller when the fit stopped without converging.
func (c TerminationCode) suggestion() string {
	switch c {
	case MaxEvalsReached:
		return "increase max_evals or start closer to the optimum"
	case NoFurtherReduction:
		return "try a different p0 or check the model for discontinuities"
	default:
		return ""
	}
}
