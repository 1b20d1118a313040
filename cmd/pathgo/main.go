// Command pathgo runs paced route searches over city street graphs and
// renders their progress live in the terminal.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pathgo",
	Short: "Watch A* find its way through a city",
	Long: `Pathgo runs a paced A* route search over a street graph and streams its
progress into the terminal: the visited cloud, the frontier, the best
known path, and finally the route.

Graphs come from JSON files or from built-in city presets, which generate
deterministic street grids locally.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
