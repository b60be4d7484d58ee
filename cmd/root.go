// Package cmd wires the command line interface of the crowd simulator.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "crowddynamics",
	Short: "Multi-agent crowd movement and evacuation simulator",
	Long: `crowddynamics simulates pedestrian crowds with a social force model:
agents steer along precomputed guidance fields, repel each other through
anticipatory social forces, and push through physical contact in dense
crushes. Runs are deterministic for a given seed and can be recorded to
SQLite or compressed trajectory streams for later rendering.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level (trace, debug, info, warn, error, fatal, panic)")
}
