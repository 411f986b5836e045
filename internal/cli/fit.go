package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scifit/leastsq"
	"github.com/YuminosukeSato/scifit/metrics"
	"github.com/YuminosukeSato/scifit/pkg/errors"
)

func newFitCommand(a *app) *cobra.Command {
	var (
		data     dataFlags
		flags    formatFlags
		model    string
		p0       []float64
		central  bool
		maxEvals int
	)

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Levenberg-Marquardt fit of a catalog model",
		Long: `Fit a catalog model (see "scifit models") by minimizing chi-square.

Data and the initial guess come from the flags, or from the job section of
the config file when no data flag is given.`,
		Example: `  scifit fit --model exponential --x 0,1,2,3 --y 5.1,3.0,1.9,1.1 --sigma 0.1,0.1,0.1,0.1 --p0 5,-0.5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			x, y, sigma, err := data.resolve(cmd, a)
			if err != nil {
				return err
			}

			name := model
			guess := leastsq.Guess(p0...)
			if job := a.cfg.Job; job != nil {
				if !cmd.Flags().Changed("model") {
					name = job.Model
				}
				if !cmd.Flags().Changed("p0") {
					guess = leastsq.Guess(job.P0...)
				}
			}
			if name == "" {
				return errors.NewValidationError("model", "model name is required", name)
			}
			m, err := leastsq.Lookup(name)
			if err != nil {
				return err
			}

			settings, err := a.cfg.Solver.Settings()
			if err != nil {
				return err
			}
			fitOpts := []leastsq.Option{leastsq.WithLogger(a.logger)}
			if central {
				settings.Difference = leastsq.Central
				fitOpts = append(fitOpts, leastsq.WithJacobian(nil))
			}
			if cmd.Flags().Changed("max-evals") {
				settings.MaxEvals = maxEvals
			}

			opts, err := flags.options(cmd, a)
			if err != nil {
				return err
			}

			fitOpts = append([]leastsq.Option{leastsq.WithSettings(settings)}, fitOpts...)
			res, info, err := leastsq.FitModel(m, x, y, sigma, guess, fitOpts...)
			if err != nil {
				if info != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "termination: %s after %d evaluations\n", info.Message, info.NEvaluations)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model: %s (%s)\n", m.Name, m.Formula)
			for i, pname := range m.Params {
				fmt.Fprintln(out, formatParam(pname, res.Params[i], res.StdErrors[i], opts))
			}
			fmt.Fprintf(out, "chi2 = %.6g\n", res.ChiSquare)
			fmt.Fprintf(out, "reduced chi2 = %.6g (%d points)\n", res.ReducedChiSquare, len(x))
			fmt.Fprintf(out, "rms residual = %.6g\n", metrics.RMSResidual(res.ChiSquare, len(x)))
			fmt.Fprintf(out, "evaluations = %d, iterations = %d\n", info.NEvaluations, info.NIterations)
			fmt.Fprintf(out, "termination: %s\n", info.Message)
			if !res.CovarianceDeterminate {
				fmt.Fprintln(out, "warning: covariance could not be estimated")
			}
			return nil
		},
	}
	data.register(cmd)
	flags.register(cmd)
	cmd.Flags().StringVar(&model, "model", "", "catalog model name, e.g. gaussian or poly3")
	cmd.Flags().Float64SliceVar(&p0, "p0", nil, "initial guess, one value per model parameter")
	cmd.Flags().BoolVar(&central, "central", false, "use central finite differences instead of the analytic gradient")
	cmd.Flags().IntVar(&maxEvals, "max-evals", 0, "cap on residual evaluations (0 means 100*(N+1))")
	return cmd
}
