package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
	"gonum.org/v1/gonum/spatial/r2"
)

// Config is the top-level simulation configuration.
// Loaded from YAML via LoadConfig(path).
type Config struct {
	// Scenario names a built-in field preset; Field supplies inline
	// geometry instead. Exactly one of the two must be set.
	Scenario       string             `yaml:"scenario,omitempty"`
	ScenarioParams map[string]float64 `yaml:"scenario_params,omitempty"`
	Field          *FieldConfig       `yaml:"field,omitempty"`

	Seed     int64   `yaml:"seed"`
	MaxTime  float64 `yaml:"max_time,omitempty"`
	MaxSteps int     `yaml:"max_steps,omitempty"`

	Model    string `yaml:"model,omitempty"`
	Capacity int    `yaml:"capacity,omitempty"` // agent slots; defaults to the sum of group counts

	Params     Params             `yaml:"params,omitempty"`
	Integrator IntegratorConfig   `yaml:"integrator,omitempty"`
	Navigation NavigationConfig   `yaml:"navigation,omitempty"`
	Agents     []AgentGroupConfig `yaml:"agents"`
	Output     OutputConfig       `yaml:"output,omitempty"`
}

// FieldConfig is inline field geometry: a domain polygon, wall segments,
// exit segments, and spawn polygons. Points are [x, y] pairs; segments are
// [[x0, y0], [x1, y1]].
type FieldConfig struct {
	Domain    [][2]float64    `yaml:"domain"`
	Obstacles [][2][2]float64 `yaml:"obstacles,omitempty"`
	Exits     [][2][2]float64 `yaml:"exits"`
	Spawns    [][][2]float64  `yaml:"spawns"`
}

// IntegratorConfig bounds the adaptive timestep.
type IntegratorConfig struct {
	DtMin float64 `yaml:"dt_min,omitempty"`
	DtMax float64 `yaml:"dt_max,omitempty"`
}

// NavigationConfig controls the guidance field discretization.
type NavigationConfig struct {
	Step             float64 `yaml:"step,omitempty"`              // grid resolution in meters
	ObstacleRadius   float64 `yaml:"obstacle_radius,omitempty"`   // wall avoidance band width
	ObstacleStrength float64 `yaml:"obstacle_strength,omitempty"` // wall avoidance blend weight, in (0, 1)
}

// AgentGroupConfig spawns a batch of one body class into one spawn area.
type AgentGroupConfig struct {
	Body  string  `yaml:"body"`
	Count int     `yaml:"count"`
	Spawn int     `yaml:"spawn,omitempty"`
	Time  float64 `yaml:"time,omitempty"` // simulation time of the spawn
}

// OutputConfig selects where trajectory frames go.
type OutputConfig struct {
	SnapshotInterval float64 `yaml:"snapshot_interval,omitempty"` // seconds between frames
	Database         string  `yaml:"database,omitempty"`          // SQLite file for run storage
	Trajectories     string  `yaml:"trajectories,omitempty"`      // compressed JSONL stream
}

// DefaultConfig returns a Config with every tunable at its standard value.
// YAML decoding overlays onto this, so omitted keys keep defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:   ModelThreeCircle,
		MaxTime: DefaultMaxTime,
		Params:  DefaultParams(),
		Integrator: IntegratorConfig{
			DtMin: DefaultDtMin,
			DtMax: DefaultDtMax,
		},
		Navigation: NavigationConfig{
			Step:             DefaultNavStep,
			ObstacleRadius:   DefaultObstacleRadius,
			ObstacleStrength: DefaultObstacleStrength,
		},
		Output: OutputConfig{
			SnapshotInterval: 0.1,
		},
	}
}

// LoadConfig reads and parses a YAML simulation configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all fields in the config are valid.
func (c *Config) Validate() error {
	if c.Scenario == "" && c.Field == nil {
		return fmt.Errorf("either scenario or field must be set")
	}
	if c.Scenario != "" && c.Field != nil {
		return fmt.Errorf("scenario and field are mutually exclusive")
	}
	if c.Scenario != "" && !validScenario(c.Scenario) {
		return fmt.Errorf("unknown scenario %q; valid: %v", c.Scenario, ScenarioNames())
	}
	if c.Field != nil {
		if err := c.Field.validate(); err != nil {
			return err
		}
	}
	if !validModels[c.Model] {
		return fmt.Errorf("unknown model %q; valid: circular, three_circle", c.Model)
	}
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if c.MaxTime < 0 {
		return fmt.Errorf("max_time must be non-negative, got %f", c.MaxTime)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", c.MaxSteps)
	}
	if c.MaxTime == 0 && c.MaxSteps == 0 {
		return fmt.Errorf("at least one of max_time and max_steps must be positive")
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must be non-negative, got %d", c.Capacity)
	}
	if c.Integrator.DtMin <= 0 {
		return fmt.Errorf("integrator.dt_min must be positive, got %f", c.Integrator.DtMin)
	}
	if c.Integrator.DtMax < c.Integrator.DtMin {
		return fmt.Errorf("integrator.dt_max must be at least dt_min, got %f < %f",
			c.Integrator.DtMax, c.Integrator.DtMin)
	}
	if c.Navigation.Step <= 0 {
		return fmt.Errorf("navigation.step must be positive, got %f", c.Navigation.Step)
	}
	if c.Navigation.ObstacleRadius <= 0 {
		return fmt.Errorf("navigation.obstacle_radius must be positive, got %f", c.Navigation.ObstacleRadius)
	}
	if c.Navigation.ObstacleStrength <= 0 || c.Navigation.ObstacleStrength >= 1 {
		return fmt.Errorf("navigation.obstacle_strength must be in (0, 1), got %f", c.Navigation.ObstacleStrength)
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("at least one agent group required")
	}
	for i, g := range c.Agents {
		if err := validateAgentGroup(&g, i); err != nil {
			return err
		}
	}
	if c.Output.SnapshotInterval < 0 {
		return fmt.Errorf("output.snapshot_interval must be non-negative, got %f", c.Output.SnapshotInterval)
	}
	if (c.Output.Database != "" || c.Output.Trajectories != "") && c.Output.SnapshotInterval == 0 {
		return fmt.Errorf("output.snapshot_interval must be positive when recording is enabled")
	}
	return nil
}

func validateAgentGroup(g *AgentGroupConfig, idx int) error {
	prefix := fmt.Sprintf("agents[%d]", idx)
	if _, err := BodyByName(g.Body); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	if g.Count <= 0 {
		return fmt.Errorf("%s: count must be positive, got %d", prefix, g.Count)
	}
	if g.Spawn < 0 {
		return fmt.Errorf("%s: spawn must be non-negative, got %d", prefix, g.Spawn)
	}
	if g.Time < 0 || math.IsNaN(g.Time) || math.IsInf(g.Time, 0) {
		return fmt.Errorf("%s: time must be a non-negative finite number, got %f", prefix, g.Time)
	}
	return nil
}

func (fc *FieldConfig) validate() error {
	if len(fc.Domain) < 3 {
		return fmt.Errorf("field.domain needs at least 3 vertices, got %d", len(fc.Domain))
	}
	if len(fc.Exits) == 0 {
		return fmt.Errorf("field.exits must not be empty")
	}
	if len(fc.Spawns) == 0 {
		return fmt.Errorf("field.spawns must not be empty")
	}
	for i, s := range fc.Spawns {
		if len(s) < 3 {
			return fmt.Errorf("field.spawns[%d] needs at least 3 vertices, got %d", i, len(s))
		}
	}
	return nil
}

// BuildField converts the inline geometry into a Field.
func (fc *FieldConfig) BuildField() *Field {
	f := &Field{
		Domain: toPolygon(fc.Domain),
	}
	for _, s := range fc.Obstacles {
		f.Obstacles = append(f.Obstacles, toSegment(s))
	}
	for _, s := range fc.Exits {
		f.Exits = append(f.Exits, toSegment(s))
	}
	for _, p := range fc.Spawns {
		f.Spawns = append(f.Spawns, toPolygon(p))
	}
	return f
}

func toPolygon(pts [][2]float64) geometry.Polygon {
	poly := make(geometry.Polygon, len(pts))
	for i, p := range pts {
		poly[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return poly
}

func toSegment(s [2][2]float64) geometry.Segment {
	return geometry.Segment{
		P0: r2.Vec{X: s[0][0], Y: s[0][1]},
		P1: r2.Vec{X: s[1][0], Y: s[1][1]},
	}
}

// Build assembles a ready-to-run Simulator from a validated config: field,
// guidance potential, agent container, and the scheduled spawn and
// snapshot events.
func (c *Config) Build() (*Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var field *Field
	var err error
	if c.Scenario != "" {
		field, err = BuildScenario(c.Scenario, c.ScenarioParams)
		if err != nil {
			return nil, err
		}
	} else {
		field = c.Field.BuildField()
	}
	if err := field.Validate(); err != nil {
		return nil, err
	}

	potential, err := field.NavigationPotential(
		c.Navigation.Step, c.Navigation.ObstacleRadius, c.Navigation.ObstacleStrength)
	if err != nil {
		return nil, err
	}

	capacity := c.Capacity
	if capacity == 0 {
		for _, g := range c.Agents {
			capacity += g.Count
		}
	}
	agents, err := NewAgents(capacity, c.Model, c.Params)
	if err != nil {
		return nil, err
	}

	s := NewSimulator(field, agents, potential, NewSimulationKey(c.Seed))
	s.MaxTime = c.MaxTime
	s.MaxSteps = c.MaxSteps
	s.DtMin = c.Integrator.DtMin
	s.DtMax = c.Integrator.DtMax

	for i, g := range c.Agents {
		if g.Spawn >= len(field.Spawns) {
			return nil, fmt.Errorf("agents[%d]: spawn %d out of range, field has %d spawn areas",
				i, g.Spawn, len(field.Spawns))
		}
		s.Schedule(NewSpawnEvent(g.Time, g.Spawn, g.Body, g.Count))
	}
	if c.Output.SnapshotInterval > 0 {
		s.Schedule(NewSnapshotEvent(0, c.Output.SnapshotInterval))
	}
	return s, nil
}
