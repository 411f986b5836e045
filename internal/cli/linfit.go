package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scifit/linear"
	"github.com/YuminosukeSato/scifit/metrics"
	"github.com/YuminosukeSato/scifit/pkg/errors"
)

type dataFlags struct {
	x, y, sigma []float64
}

func (d *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVar(&d.x, "x", nil, "abscissae, comma separated")
	cmd.Flags().Float64SliceVar(&d.y, "y", nil, "measurements, comma separated")
	cmd.Flags().Float64SliceVar(&d.sigma, "sigma", nil, "uncertainty of each measurement, comma separated")
}

// resolve returns the flag data, or the config job's data when no data flag was given.
func (d *dataFlags) resolve(cmd *cobra.Command, a *app) (x, y, sigma []float64, err error) {
	f := cmd.Flags()
	if f.Changed("x") || f.Changed("y") || f.Changed("sigma") {
		return d.x, d.y, d.sigma, nil
	}
	if a.cfg.Job == nil {
		return nil, nil, nil, errors.NewValidationError("x", "no data: pass --x, --y and --sigma or a config file with a job", nil)
	}
	return a.cfg.Job.X, a.cfg.Job.Y, a.cfg.Job.Sigma, nil
}

func newLinfitCommand(a *app) *cobra.Command {
	var (
		data  dataFlags
		flags formatFlags
	)

	cmd := &cobra.Command{
		Use:     "linfit",
		Short:   "Weighted straight-line fit y = a*x + b",
		Example: `  scifit linfit --x 1,2,3,4 --y 2.1,3.9,6.2,7.8 --sigma 0.2,0.2,0.3,0.3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			x, y, sigma, err := data.resolve(cmd, a)
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, a)
			if err != nil {
				return err
			}

			lr := linear.NewWeightedLinearRegression(linear.WithLogger(a.logger))
			if err := lr.Fit(x, y, sigma); err != nil {
				return err
			}
			fit, err := lr.Result()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "model: a*x + b")
			fmt.Fprintln(out, formatParam("a", fit.Slope, fit.SlopeErr, opts))
			fmt.Fprintln(out, formatParam("b", fit.Intercept, fit.InterceptErr, opts))
			fmt.Fprintf(out, "chi2 = %.6g\n", fit.ChiSquare)
			fmt.Fprintf(out, "reduced chi2 = %.6g (%d points)\n", fit.ReducedChiSquare, fit.NPoints)
			fmt.Fprintf(out, "rms residual = %.6g\n", metrics.RMSResidual(fit.ChiSquare, fit.NPoints))
			return nil
		},
	}
	data.register(cmd)
	flags.register(cmd)
	return cmd
}
