package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crowddynamics/crowddynamics/sim"
	"github.com/crowddynamics/crowddynamics/sim/storage"
)

var (
	runConfigPath string
	runPreset     string
	runPresetBody string
	runAgentCount int

	runSeed             int64
	runMaxTime          float64
	runDatabase         string
	runTrajectories     string
	runSnapshotInterval float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a crowd simulation",
	Long: `Run a simulation from a YAML configuration file (--config) or from a
built-in scenario preset (--preset). Flags override the corresponding
configuration values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildRunConfig(cmd)
		if err != nil {
			return err
		}
		return runSimulation(cfg)
	},
}

// buildRunConfig assembles the effective configuration from the config
// file or preset plus any flag overrides.
func buildRunConfig(cmd *cobra.Command) (*sim.Config, error) {
	if (runConfigPath == "") == (runPreset == "") {
		return nil, fmt.Errorf("exactly one of --config and --preset is required")
	}

	var cfg *sim.Config
	if runConfigPath != "" {
		loaded, err := sim.LoadConfig(runConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = sim.DefaultConfig()
		cfg.Scenario = runPreset
		cfg.Agents = []sim.AgentGroupConfig{
			{Body: runPresetBody, Count: runAgentCount},
		}
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("max-time") {
		cfg.MaxTime = runMaxTime
	}
	if cmd.Flags().Changed("database") {
		cfg.Output.Database = runDatabase
	}
	if cmd.Flags().Changed("trajectories") {
		cfg.Output.Trajectories = runTrajectories
	}
	if cmd.Flags().Changed("snapshot-interval") {
		cfg.Output.SnapshotInterval = runSnapshotInterval
	}
	return cfg, nil
}

// runName labels the run in storage.
func runName(cfg *sim.Config) string {
	if cfg.Scenario != "" {
		return cfg.Scenario
	}
	return "custom"
}

func runSimulation(cfg *sim.Config) error {
	s, err := cfg.Build()
	if err != nil {
		return err
	}

	var recorders storage.MultiRecorder
	var store *storage.Store
	if cfg.Output.Database != "" {
		store, err = storage.Open(cfg.Output.Database)
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("serializing config: %w", err)
		}
		if err := store.BeginRun(runName(cfg), cfg.Seed, string(doc)); err != nil {
			return err
		}
		recorders = append(recorders, store)
	}
	if cfg.Output.Trajectories != "" {
		stream, err := storage.NewStreamWriter(cfg.Output.Trajectories)
		if err != nil {
			return err
		}
		defer stream.Close()
		recorders = append(recorders, stream)
	}
	if len(recorders) > 0 {
		s.Recorder = recorders
	}

	logrus.Infof("Starting simulation: seed=%d max_time=%.1fs model=%s force=%s",
		cfg.Seed, cfg.MaxTime, cfg.Model, cfg.Params.SocialForce)
	start := time.Now()
	s.Run()
	logrus.Infof("Simulation finished in %s wall time", time.Since(start).Round(time.Millisecond))

	s.Metrics.Print()
	if store != nil {
		if err := store.FinishRun(s.Metrics); err != nil {
			return err
		}
		logrus.Infof("Run stored in %s", cfg.Output.Database)
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "YAML simulation configuration file")
	runCmd.Flags().StringVar(&runPreset, "preset", "", "Built-in scenario preset (see 'crowddynamics scenarios')")
	runCmd.Flags().StringVar(&runPresetBody, "body", "adult", "Body class for --preset runs")
	runCmd.Flags().IntVar(&runAgentCount, "agents", 50, "Number of agents for --preset runs")

	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Master seed for deterministic runs")
	runCmd.Flags().Float64Var(&runMaxTime, "max-time", sim.DefaultMaxTime, "Simulated time limit in seconds")
	runCmd.Flags().StringVar(&runDatabase, "database", "", "SQLite file to store the run in")
	runCmd.Flags().StringVar(&runTrajectories, "trajectories", "", "Trajectory stream file (.jsonl, or .jsonl.sz for snappy)")
	runCmd.Flags().Float64Var(&runSnapshotInterval, "snapshot-interval", 0.1, "Seconds of simulated time between recorded frames")

	rootCmd.AddCommand(runCmd)
}
