package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/scifit/leastsq"
)

func newModelsCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models accepted by fit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFORMULA\tPARAMETERS")
			for _, m := range leastsq.Catalog() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, m.Formula, strings.Join(m.Params, ", "))
			}
			fmt.Fprintln(w, "polyN\tc0 + c1*x + ... + cN*x^N\tc0 ... cN (N <= 10)")
			return w.Flush()
		},
	}
}
