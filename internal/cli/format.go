package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scifit/notation"
	"github.com/YuminosukeSato/scifit/pkg/errors"
	"github.com/YuminosukeSato/scifit/pkg/log"
)

type formatFlags struct {
	sig   int
	style string
}

func (f *formatFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.sig, "sig", notation.DefaultSignificantFigures, "significant figures of the uncertainty")
	cmd.Flags().StringVar(&f.style, "style", "standard", "notation style: standard or compact")
}

// options starts from the config file and applies the flags the user set.
func (f *formatFlags) options(cmd *cobra.Command, a *app) ([]notation.Option, error) {
	fc := a.cfg.Format
	if cmd.Flags().Changed("sig") {
		fc.SignificantFigures = f.sig
	}
	if cmd.Flags().Changed("style") {
		fc.Style = f.style
	}
	return fc.Options()
}

func newFormatCommand(a *app) *cobra.Command {
	var flags formatFlags

	cmd := &cobra.Command{
		Use:   "format X DX",
		Short: "Format a value and its uncertainty",
		Long: `Format a value and its uncertainty.

A negative X must follow "--", otherwise it is parsed as a flag.`,
		Example: `  scifit format 10.777777 0.33
  scifit format 10.777777 0.33 --style compact --sig 1
  scifit format -- -1 0.5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseFloatArg("X", args[0])
			if err != nil {
				return err
			}
			dx, err := parseFloatArg("DX", args[1])
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, a)
			if err != nil {
				return err
			}

			s, err := notation.Measurement{Value: x, Uncertainty: dx}.Format(opts...)
			if err != nil {
				return err
			}
			a.logger.Debug("formatted value", log.OperationKey, log.OperationFormat, "result", s)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewValidationError(name, "not a number", s)
	}
	return v, nil
}

// formatParam renders "name = value ± uncertainty" and falls back to plain
// %g when the uncertainty cannot be formatted (infinite or zero).
func formatParam(name string, value, stderr float64, opts []notation.Option) string {
	s, err := notation.Measurement{Value: value, Uncertainty: stderr}.Format(opts...)
	if err != nil {
		return fmt.Sprintf("%s = %g (uncertainty undetermined)", name, value)
	}
	return fmt.Sprintf("%s = %s", name, s)
}
