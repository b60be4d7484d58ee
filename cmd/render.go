package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/crowddynamics/crowddynamics/sim"
	"github.com/crowddynamics/crowddynamics/sim/plotting"
	"github.com/crowddynamics/crowddynamics/sim/storage"
)

var (
	renderKind         string
	renderTrajectories string
	renderDatabase     string
	renderRunID        int64
	renderConfigPath   string
	renderOut          string
)

const (
	renderKindTrajectories = "trajectories"
	renderKindField        = "field"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render stored simulation output to PNG",
	Long: `Render recorded output. Kind "trajectories" draws agent paths from a
trajectory stream (--trajectories) or a stored run (--database, optionally
--run). Kind "field" draws the exit distance field of a configuration's
geometry (--config). Pass --config alongside trajectories to overlay the
field geometry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var p *plot.Plot
		var err error
		switch renderKind {
		case renderKindTrajectories:
			p, err = renderTrajectoryPlot()
		case renderKindField:
			p, err = renderFieldPlot()
		default:
			return fmt.Errorf("unknown --kind %q; valid: %s, %s",
				renderKind, renderKindTrajectories, renderKindField)
		}
		if err != nil {
			return err
		}
		if err := plotting.SavePNG(p, renderOut); err != nil {
			return err
		}
		logrus.Infof("Wrote %s", renderOut)
		return nil
	},
}

// loadRenderField builds the field of --config, when given.
func loadRenderField() (*sim.Field, error) {
	if renderConfigPath == "" {
		return nil, nil
	}
	cfg, err := sim.LoadConfig(renderConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Scenario != "" {
		return sim.BuildScenario(cfg.Scenario, cfg.ScenarioParams)
	}
	return cfg.Field.BuildField(), nil
}

func renderTrajectoryPlot() (*plot.Plot, error) {
	var frames []*sim.Frame
	switch {
	case renderTrajectories != "" && renderDatabase != "":
		return nil, fmt.Errorf("--trajectories and --database are mutually exclusive")
	case renderTrajectories != "":
		loaded, err := storage.ReadStream(renderTrajectories)
		if err != nil {
			return nil, err
		}
		frames = loaded
	case renderDatabase != "":
		store, err := storage.Open(renderDatabase)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		runID := renderRunID
		if runID == 0 {
			runID, err = store.LatestRunID()
			if err != nil {
				return nil, err
			}
		}
		frames, err = store.Frames(runID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("one of --trajectories and --database is required")
	}

	field, err := loadRenderField()
	if err != nil {
		return nil, err
	}
	return plotting.Trajectories(frames, field)
}

func renderFieldPlot() (*plot.Plot, error) {
	if renderConfigPath == "" {
		return nil, fmt.Errorf("--config is required for --kind field")
	}
	cfg, err := sim.LoadConfig(renderConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var field *sim.Field
	if cfg.Scenario != "" {
		field, err = sim.BuildScenario(cfg.Scenario, cfg.ScenarioParams)
	} else {
		field = cfg.Field.BuildField()
	}
	if err != nil {
		return nil, err
	}

	potential, err := field.NavigationPotential(
		cfg.Navigation.Step, cfg.Navigation.ObstacleRadius, cfg.Navigation.ObstacleStrength)
	if err != nil {
		return nil, err
	}
	return plotting.FieldHeatMap(potential.Distance, "Exit distance (m)")
}

func init() {
	renderCmd.Flags().StringVar(&renderKind, "kind", renderKindTrajectories,
		"What to render: trajectories or field")
	renderCmd.Flags().StringVar(&renderTrajectories, "trajectories", "", "Trajectory stream to read (.jsonl or .jsonl.sz)")
	renderCmd.Flags().StringVar(&renderDatabase, "database", "", "SQLite run store to read")
	renderCmd.Flags().Int64Var(&renderRunID, "run", 0, "Run ID inside --database (default: latest)")
	renderCmd.Flags().StringVar(&renderConfigPath, "config", "", "Configuration supplying the field geometry")
	renderCmd.Flags().StringVar(&renderOut, "out", "out.png", "Output PNG path")

	rootCmd.AddCommand(renderCmd)
}
