package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genomics-tools/datacheck/internal/checks"
)

var suitesCmd = &cobra.Command{
	Use:          "suites",
	Short:        "List the built-in check suites",
	RunE:         listSuites,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func listSuites(cmd *cobra.Command, args []string) error {
	registry := checks.Default()
	out := cmd.OutOrStdout()

	for _, name := range registry.Suites() {
		suite, err := registry.Suite(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s\n", name)
		for _, c := range suite {
			fmt.Fprintf(out, "  %s\n", c.Name)
		}
	}

	return nil
}
