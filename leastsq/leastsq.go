// Package leastsq fits arbitrary models to measurements with uncertainties
// using the Levenberg–Marquardt algorithm.
//
// The solver minimizes the chi-square
//
//	S(p) = Σ ((f(x_i, p) - y_i) / σ_i)²
//
// and reports the best-fit parameters together with their covariance
// (JᵀJ)⁻¹ taken at the optimum. The covariance is not rescaled by the reduced
// chi-square: σ is trusted as the absolute one-standard-deviation error of y.
//
// Basic usage:
//
//	res, err := leastsq.Fit(leastsq.Exponential.Func, x, y, sigma, []float64{1, -0.5})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Params, res.StdErrors)
package leastsq

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scifit/metrics"
	"github.com/YuminosukeSato/scifit/pkg/errors"
	"github.com/YuminosukeSato/scifit/pkg/log"
)

// Model evaluates the fitted function at x for the ordered parameters p.
// It must not retain or modify p.
type Model func(x float64, p []float64) float64

// Gradient writes ∂f/∂p_j at x into grad, which has len(p) elements.
type Gradient func(x float64, p []float64, grad []float64)

// maxDamping is the λ ceiling past which no reduction is considered possible.
const maxDamping = 1e16

// machEps is the float64 machine epsilon.
const machEps = 2.220446049250313e-16

const algorithm = "levenberg-marquardt"

// Result is the outcome of a successful fit. It is never modified after Fit returns.
type Result struct {
	Params     []float64
	StdErrors  []float64
	Covariance *mat.SymDense

	ChiSquare        float64
	ReducedChiSquare float64

	// CovarianceDeterminate is false when the Jacobian at the optimum is rank
	// deficient. Covariance and StdErrors are then +Inf everywhere.
	CovarianceDeterminate bool
}

// Info carries solver diagnostics. FitFull returns it even when the fit fails.
type Info struct {
	NEvaluations int
	NIterations  int
	// Residuals are the weighted residuals (f(x_i,p) - y_i)/σ_i at Params.
	Residuals []float64
	Code      TerminationCode
	Message   string
	// Params is the last accepted parameter vector.
	Params []float64
}

// Fit minimizes the chi-square of f against (xdata, ydata, sigma) starting from p0.
//
// A fit that stops without a success code returns a ConvergenceError carrying
// the last accepted parameters. Use FitFull to also get evaluation counts and residuals.
func Fit(f Model, xdata, ydata, sigma, p0 []float64, opts ...Option) (*Result, error) {
	res, _, err := FitFull(f, xdata, ydata, sigma, p0, opts...)
	return res, err
}

// FitFull is Fit with solver diagnostics as a secondary return value.
// Info is nil only when the inputs were rejected before the first evaluation.
func FitFull(f Model, xdata, ydata, sigma, p0 []float64, opts ...Option) (*Result, *Info, error) {
	const op = "leastsq.Fit"

	cfg := newConfig(opts)
	s, err := newSolver(op, f, xdata, ydata, sigma, p0, cfg)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	info, err := s.minimize(p0)
	if err != nil {
		fields := []any{
			log.OperationKey, log.OperationNonlinearFit,
			log.SamplesKey, s.m,
			log.EvaluationsKey, s.nfev,
			log.ErrorCodeKey, log.ErrorCode(err),
			"error", err,
		}
		if info != nil {
			if hint := info.Code.suggestion(); hint != "" {
				fields = append(fields, log.SuggestionKey, hint)
			}
		}
		s.logger.Warn("nonlinear fit failed", fields...)
		return nil, info, err
	}

	res, err := s.result(info)
	if err != nil {
		return nil, info, err
	}

	s.logger.Info("nonlinear fit completed",
		log.OperationKey, log.OperationNonlinearFit,
		log.SamplesKey, s.m,
		log.ParamsKey, s.n,
		log.DegreesOfFreedomKey, s.m-s.n,
		log.TerminationCodeKey, int(info.Code),
		log.IterationKey, info.NIterations,
		log.EvaluationsKey, info.NEvaluations,
		log.ChiSquareKey, res.ChiSquare,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, info, nil
}

// solver holds the copied inputs and working state of one fit.
type solver struct {
	op string

	f     Model
	grad  Gradient
	x     []float64
	y     []float64
	sigma []float64
	m, n  int

	settings Settings
	maxEvals int
	logger   log.Logger

	nfev    int
	iter    int
	pArg    []float64 // copy of the parameters handed to the caller's model
	gradBuf []float64
}

func newSolver(op string, f Model, xdata, ydata, sigma, p0 []float64, cfg *config) (*solver, error) {
	if f == nil {
		return nil, errors.NewValidationError("f", "model function is required", nil)
	}
	if err := errors.CheckSameLength(op,
		errors.Series{Name: "xdata", Values: xdata},
		errors.Series{Name: "ydata", Values: ydata},
		errors.Series{Name: "sigma", Values: sigma},
	); err != nil {
		return nil, err
	}
	if len(p0) == 0 {
		return nil, errors.NewValidationError("p0", "at least one parameter is required", 0)
	}
	if len(xdata) < len(p0) {
		return nil, errors.NewValidationError("xdata", "fewer points than parameters", len(xdata))
	}
	if len(xdata) == len(p0) {
		return nil, errors.NewDegreesOfFreedomError(op, len(xdata), len(p0))
	}
	for _, c := range []errors.Series{
		{Name: "xdata", Values: xdata},
		{Name: "ydata", Values: ydata},
		{Name: "p0", Values: p0},
	} {
		if err := errors.CheckFinite(c.Name, c.Values); err != nil {
			return nil, err
		}
	}
	if err := errors.CheckPositive("sigma", sigma); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := len(p0)
	return &solver{
		op:       op,
		f:        f,
		grad:     cfg.gradient,
		x:        append([]float64(nil), xdata...),
		y:        append([]float64(nil), ydata...),
		sigma:    append([]float64(nil), sigma...),
		m:        len(xdata),
		n:        n,
		settings: cfg.Settings,
		maxEvals: cfg.maxEvals(n),
		logger:   cfg.logger,
		pArg:     make([]float64, n),
		gradBuf:  make([]float64, n),
	}, nil
}

// residuals fills dst with (f(x_i,p) - y_i)/σ_i and counts one evaluation.
func (s *solver) residuals(p, dst []float64) (err error) {
	defer errors.Recover(&err, "leastsq.model")

	copy(s.pArg, p)
	for i, xi := range s.x {
		dst[i] = (s.f(xi, s.pArg) - s.y[i]) / s.sigma[i]
	}
	s.nfev++
	return nil
}

// checkedResiduals is residuals plus a NaN/Inf check.
func (s *solver) checkedResiduals(p, dst []float64) error {
	if err := s.residuals(p, dst); err != nil {
		return err
	}
	return errors.CheckNumericalStability("leastsq.residuals", dst, s.iter)
}

// minimize runs the damped Gauss–Newton iteration from p0.
func (s *solver) minimize(p0 []float64) (*Info, error) {
	m, n := s.m, s.n
	set := s.settings

	p := append([]float64(nil), p0...)
	r := make([]float64, m)
	if err := s.checkedResiduals(p, r); err != nil {
		return nil, err
	}
	sum := floats.Dot(r, r)

	var (
		jac    = mat.NewDense(m, n, nil)
		a      = &mat.SymDense{}
		damped = mat.NewSymDense(n, nil)
		g      = mat.NewVecDense(n, nil)
		negG   = mat.NewVecDense(n, nil)
		dp     = mat.NewVecDense(n, nil)
		jdp    = mat.NewVecDense(m, nil)
		chol   mat.Cholesky
		diag   = make([]float64, n)
		pTrial = make([]float64, n)
		rTrial = make([]float64, m)
		lambda = set.InitialDamping
		code   TerminationCode
	)

	debug := s.logger.Enabled(context.Background(), log.LevelDebug)

outer:
	for {
		if s.nfev >= s.maxEvals {
			code = MaxEvalsReached
			break
		}
		if err := s.jacobian(p, r, jac); err != nil {
			return s.info(p, r, 0), err
		}
		s.iter++

		a.Reset()
		a.SymOuterK(1, jac.T())
		g.MulVec(jac.T(), mat.NewVecDense(m, r))
		negG.ScaleVec(-1, g)

		if maxCosine(jac, g, sum) <= set.GTol {
			code = ConvergedGTol
			break
		}

		for j := 0; j < n; j++ {
			diag[j] = a.At(j, j)
			if diag[j] == 0 {
				diag[j] = 1
			}
		}
		// xtol is relative to ‖p‖, and absolute at the origin.
		xScale := floats.Norm(p, 2)
		if xScale == 0 {
			xScale = 1
		}

		for {
			if lambda > maxDamping {
				code = NoFurtherReduction
				break outer
			}
			if s.nfev >= s.maxEvals {
				code = MaxEvalsReached
				break outer
			}

			damped.CopySym(a)
			for j := 0; j < n; j++ {
				damped.SetSym(j, j, a.At(j, j)+lambda*diag[j])
			}
			if ok := chol.Factorize(damped); !ok {
				lambda *= 10
				continue
			}
			if err := chol.SolveVecTo(dp, negG); err != nil {
				lambda *= 10
				continue
			}

			step := dp.RawVector().Data
			floats.AddTo(pTrial, p, step)
			if err := s.residuals(pTrial, rTrial); err != nil {
				return s.info(p, r, 0), err
			}
			trialSum := floats.Dot(rTrial, rTrial)

			accepted := trialSum < sum
			// Non-finite trial residuals are treated as an overshoot.
			if err := errors.CheckScalar("leastsq.chi_square", trialSum, s.iter); err != nil {
				accepted = false
				if debug {
					s.logger.Debug("non-finite trial step rejected", log.LambdaKey, lambda, "error", err)
				}
			}

			jdp.MulVec(jac, dp)
			var predicted float64
			for i := 0; i < m; i++ {
				v := r[i] + jdp.AtVec(i)
				predicted += v * v
			}
			actred := -1.0
			if accepted {
				actred = (sum - trialSum) / sum
			}
			prered := (sum - predicted) / sum
			stepNorm := floats.Norm(step, 2)

			ftolOK := math.Abs(actred) <= set.FTol && prered <= set.FTol && actred <= 2*prered
			xtolOK := stepNorm <= set.XTol*xScale

			if debug {
				s.logger.Debug("levenberg-marquardt step",
					log.IterationKey, s.iter,
					log.EvaluationsKey, s.nfev,
					log.LambdaKey, lambda,
					log.ChiSquareKey, sum,
					log.StepNormKey, stepNorm,
					"accepted", accepted,
				)
			}

			if accepted {
				copy(p, pTrial)
				r, rTrial = rTrial, r
				sum = trialSum
				lambda /= 10
			} else {
				lambda *= 10
			}

			switch {
			case ftolOK && xtolOK:
				code = ConvergedBoth
			case ftolOK:
				code = ConvergedFTol
			case xtolOK:
				code = ConvergedXTol
			}
			if code != 0 {
				break outer
			}
			if accepted {
				break
			}
		}
	}

	info := s.info(p, r, code)
	if !code.Success() {
		msg := info.Message
		return info, errors.NewConvergenceError(algorithm, int(code), msg, s.nfev, p)
	}
	return info, nil
}

func (s *solver) info(p, r []float64, code TerminationCode) *Info {
	msg := code.Message()
	if code == MaxEvalsReached {
		msg = fmt.Sprintf("%s (max_evals = %d)", msg, s.maxEvals)
	}
	if code == 0 {
		msg = "fit aborted"
	}
	return &Info{
		NEvaluations: s.nfev,
		NIterations:  s.iter,
		Residuals:    append([]float64(nil), r...),
		Code:         code,
		Message:      msg,
		Params:       append([]float64(nil), p...),
	}
}

// maxCosine returns max_j |g_j| / (‖J_j‖·‖r‖) over the non-zero Jacobian columns,
// where g = Jᵀr and sum = ‖r‖². It is 0 when the residuals vanish.
func maxCosine(jac *mat.Dense, g *mat.VecDense, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	rNorm := math.Sqrt(sum)
	_, n := jac.Dims()
	var best float64
	for j := 0; j < n; j++ {
		colNorm := mat.Norm(jac.ColView(j), 2)
		if colNorm == 0 {
			continue
		}
		if c := math.Abs(g.AtVec(j)) / (colNorm * rNorm); c > best {
			best = c
		}
	}
	return best
}

// result assembles the Result at info.Params, recomputing the Jacobian for the covariance.
func (s *solver) result(info *Info) (*Result, error) {
	p := info.Params
	jac := mat.NewDense(s.m, s.n, nil)
	if err := s.jacobian(p, info.Residuals, jac); err != nil {
		return nil, err
	}
	info.NEvaluations = s.nfev

	cov, rank, cond := covariance(jac)
	determinate := rank == s.n
	if determinate {
		s.logger.Debug("covariance estimated",
			log.OperationKey, log.OperationCovariance,
			log.ParamsKey, s.n,
			"condition", cond,
		)
	} else {
		cov = infiniteCovariance(s.n)
		errors.Warn(errors.NewIndeterminateCovarianceWarning(s.op, s.n, rank, cond))
	}

	stdErrs := make([]float64, s.n)
	for i := range stdErrs {
		stdErrs[i] = math.Sqrt(cov.At(i, i))
	}

	chi2 := floats.Dot(info.Residuals, info.Residuals)
	reduced, err := metrics.ReducedChiSquare(chi2, s.m, s.n)
	if err != nil {
		return nil, err
	}

	return &Result{
		Params:                append([]float64(nil), p...),
		StdErrors:             stdErrs,
		Covariance:            cov,
		ChiSquare:             chi2,
		ReducedChiSquare:      reduced,
		CovarianceDeterminate: determinate,
	}, nil
}
