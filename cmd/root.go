// Package cmd wires the configuration driver (package runner) onto a
// cobra CLI: one root command, "run" as its default action, matching
// spec.md §6's "accepts an optional config path; absent, reads a
// default config and falls back to interactive prompts."
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "metricspace",
	Short: "A pivot-based metric-space similarity search tool",
	Long: `metricspace builds an in-memory index over a dataset drawn from an
arbitrary metric space and answers range queries (every object within
radius r of a query point) while minimizing distance evaluations.

It supports five index structures (Pivot Table, Vantage Point Tree,
General Hyper-plane Tree, Multiple Vantage Point Tree, Linear
Partition Tree), five pivot selectors, and the dataset/distance
function combinations described in its configuration file format.`,
}

func init() {
	rootCmd.AddCommand(NewRunCmd())
}

// Execute runs the CLI, returning the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
