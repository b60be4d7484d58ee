package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crowddynamics/crowddynamics/sim"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config.yaml>",
	Short: "Parse and validate a simulation configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := sim.LoadConfig(args[0])
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		total := 0
		for _, g := range cfg.Agents {
			total += g.Count
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: valid\n", args[0])
		if cfg.Scenario != "" {
			fmt.Fprintf(out, "  scenario : %s\n", cfg.Scenario)
		} else {
			fmt.Fprintf(out, "  field    : %d obstacles, %d exits, %d spawn areas\n",
				len(cfg.Field.Obstacles), len(cfg.Field.Exits), len(cfg.Field.Spawns))
		}
		fmt.Fprintf(out, "  model    : %s (%s social force)\n", cfg.Model, cfg.Params.SocialForce)
		fmt.Fprintf(out, "  agents   : %d in %d groups\n", total, len(cfg.Agents))
		fmt.Fprintf(out, "  seed     : %d\n", cfg.Seed)
		fmt.Fprintf(out, "  max time : %.1f s\n", cfg.MaxTime)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
