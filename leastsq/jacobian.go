package leastsq

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scifit/pkg/errors"
)

// sqrtEps is the relative finite-difference step.
var sqrtEps = math.Sqrt(machEps)

// jacobian fills jac (m×n) with ∂r_i/∂p_j at p. r must hold r(p); it is only
// read by the forward-difference formula.
func (s *solver) jacobian(p, r []float64, jac *mat.Dense) error {
	if s.grad != nil {
		return s.analyticJacobian(p, jac)
	}

	pStep := append([]float64(nil), p...)
	rPlus := make([]float64, s.m)
	var rMinus []float64
	if s.settings.Difference == Central {
		rMinus = make([]float64, s.m)
	}

	for j := 0; j < s.n; j++ {
		h := sqrtEps * math.Abs(p[j])
		if h == 0 {
			h = sqrtEps
		}

		pStep[j] = p[j] + h
		// the step actually taken after rounding
		hPlus := pStep[j] - p[j]
		if err := s.residuals(pStep, rPlus); err != nil {
			return err
		}

		if s.settings.Difference == Central {
			pStep[j] = p[j] - h
			hMinus := p[j] - pStep[j]
			if err := s.residuals(pStep, rMinus); err != nil {
				return err
			}
			for i := 0; i < s.m; i++ {
				jac.Set(i, j, (rPlus[i]-rMinus[i])/(hPlus+hMinus))
			}
		} else {
			for i := 0; i < s.m; i++ {
				jac.Set(i, j, (rPlus[i]-r[i])/hPlus)
			}
		}
		pStep[j] = p[j]
	}

	return errors.CheckNumericalStability("leastsq.jacobian", jac.RawMatrix().Data, s.iter)
}

// analyticJacobian evaluates the caller's gradient, scaled by 1/σ_i.
func (s *solver) analyticJacobian(p []float64, jac *mat.Dense) error {
	copy(s.pArg, p)
	err := errors.SafeExecute("leastsq.gradient", func() error {
		for i, xi := range s.x {
			for j := range s.gradBuf {
				s.gradBuf[j] = 0
			}
			s.grad(xi, s.pArg, s.gradBuf)
			for j, gj := range s.gradBuf {
				jac.Set(i, j, gj/s.sigma[i])
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return errors.CheckNumericalStability("leastsq.jacobian", jac.RawMatrix().Data, s.iter)
}
