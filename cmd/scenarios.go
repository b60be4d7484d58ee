package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/crowddynamics/crowddynamics/sim"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List built-in scenario presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range sim.ScenarioNames() {
			defaults, err := sim.ScenarioDefaults(name)
			if err != nil {
				return err
			}
			params := make([]string, 0, len(defaults))
			for k := range defaults {
				params = append(params, k)
			}
			sort.Strings(params)

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
			for _, k := range params {
				fmt.Fprintf(cmd.OutOrStdout(), "    %-12s %g\n", k, defaults[k])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}
