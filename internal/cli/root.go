// Package cli implements the scifit command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scifit/internal/config"
	"github.com/YuminosukeSato/scifit/pkg/log"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger log.Logger
}

// NewRootCommand builds the scifit command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "scifit",
		Short: "Fit measurements and report results in scientific notation",
		Long: `scifit fits data with per-point uncertainties and prints the
results as value ± uncertainty in scientific notation.

It provides a closed-form weighted straight-line fit, a Levenberg-Marquardt
fit against a catalog of models, and the formatter used for both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./scifit.yaml if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the config file)")

	root.AddCommand(
		newFormatCommand(a),
		newLinfitCommand(a),
		newFitCommand(a),
		newModelsCommand(a),
	)
	return root
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	levelName := cfg.Log.Level
	if cmd.Flags().Changed("log-level") {
		levelName = a.logLevel
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = log.SetupZerolog(cmd.ErrOrStderr(), level).With(log.ComponentKey, "cli")
	return nil
}
