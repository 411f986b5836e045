package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
// Only the offending values are reported, at most ten of them.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	var unstable []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unstable = append(unstable, v)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// CheckFinite validates caller input: every element of values must be finite.
// The returned error is a ValidationError naming the first offending index.
func CheckFinite(param string, values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewValidationError(param, "values must be finite", map[string]float64{"index": float64(i), "value": v})
		}
	}
	return nil
}

// CheckPositive validates that every element of values is finite and strictly positive,
// as required for measurement uncertainties.
func CheckPositive(param string, values []float64) error {
	for i, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			return NewValidationError(param, "values must be finite and strictly positive", map[string]float64{"index": float64(i), "value": v})
		}
	}
	return nil
}

// Series names a caller-supplied sequence for length validation.
type Series struct {
	Name   string
	Values []float64
}

// CheckSameLength validates that every series has the length of ref.
// The first mismatch, in argument order, is reported as a DimensionError.
func CheckSameLength(op string, ref Series, others ...Series) error {
	for _, s := range others {
		if len(s.Values) != len(ref.Values) {
			return NewDimensionError(op, s.Name, len(ref.Values), len(s.Values))
		}
	}
	return nil
}
