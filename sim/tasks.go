package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// Task is one stage of the per-step update pipeline. Tasks run in the
// order they appear in Simulator.Tasks; each reads and mutates the shared
// agent state.
type Task interface {
	Name() string
	Update(*Simulator)
}

// StandardTasks returns the default pipeline:
//
//	reset -> navigation -> orientation -> fluctuation -> adjusting ->
//	agent interactions -> obstacle interactions -> integrator -> evacuation
//
// Motion state is zeroed first, every force task accumulates, and the
// integrator consumes the totals. Evacuation runs last so agents leave on
// the same step they reach an exit.
func StandardTasks() []Task {
	return []Task{
		ResetMotionTask{},
		NavigationTask{},
		OrientationTask{},
		FluctuationTask{},
		AdjustingTask{},
		AgentInteractionsTask{},
		ObstacleInteractionsTask{},
		IntegratorTask{},
		EvacuationTask{},
	}
}

// ResetMotionTask zeroes accumulated forces and torques. Must run before
// any force task.
type ResetMotionTask struct{}

func (ResetMotionTask) Name() string { return "reset_motion" }

func (ResetMotionTask) Update(s *Simulator) {
	s.Agents.ResetMotion()
}

// NavigationTask steers agents along the precomputed guidance field. Cells
// without a usable direction (outside the grid, or unreachable pockets)
// leave the previous target direction in place.
type NavigationTask struct{}

func (NavigationTask) Name() string { return "navigation" }

func (NavigationTask) Update(s *Simulator) {
	if s.Potential == nil {
		return
	}
	a := s.Agents
	for _, i := range a.Indices() {
		dir := s.Potential.Direction.Sample(a.Position[i])
		if dir.X != 0 || dir.Y != 0 {
			a.TargetDirection[i] = dir
		}
	}
}

// OrientationTask points each agent's target orientation along its target
// direction, so the body rotates to face the way it walks.
type OrientationTask struct{}

func (OrientationTask) Name() string { return "orientation" }

func (OrientationTask) Update(s *Simulator) {
	a := s.Agents
	if !a.Orientable() {
		return
	}
	for _, i := range a.Indices() {
		d := a.TargetDirection[i]
		if d.X != 0 || d.Y != 0 {
			a.TargetOrientation[i] = geometry.AngleOf(d)
		}
	}
}

// FluctuationTask adds the random driving force and torque that keep the
// crowd from freezing into perfectly symmetric deadlocks.
type FluctuationTask struct{}

func (FluctuationTask) Name() string { return "fluctuation" }

func (FluctuationTask) Update(s *Simulator) {
	a := s.Agents
	rng := s.RNG.ForSubsystem(SubsystemFluctuation)
	for _, i := range a.Indices() {
		f := ForceFluctuation(rng, a.Mass[i], a.Params.StdRandForce)
		a.Force[i] = r2.Add(a.Force[i], f)
		if a.Orientable() {
			a.Torque[i] += TorqueFluctuation(rng, a.InertiaRot[i], a.Params.StdRandTorque)
		}
	}
}

// AdjustingTask adds the drive toward each agent's target velocity and
// orientation.
type AdjustingTask struct{}

func (AdjustingTask) Name() string { return "adjusting" }

func (AdjustingTask) Update(s *Simulator) {
	a := s.Agents
	for _, i := range a.Indices() {
		f := ForceAdjust(a.Mass[i], a.Params.TauAdj, a.TargetVelocity[i], a.TargetDirection[i], a.Velocity[i])
		a.Force[i] = r2.Add(a.Force[i], f)
		if a.Orientable() {
			a.Torque[i] += TorqueAdjust(a.InertiaRot[i], a.Params.TauRot,
				a.TargetOrientation[i], a.Orientation[i],
				a.TargetAngular[i], a.AngularVelocity[i])
		}
	}
}

// AgentInteractionsTask accumulates social and contact forces between
// agent pairs and keeps the resulting spatial partition for the density
// metrics.
type AgentInteractionsTask struct{}

func (AgentInteractionsTask) Name() string { return "agent_interactions" }

func (AgentInteractionsTask) Update(s *Simulator) {
	blocks := InteractAgents(s.Agents)
	s.occupancy = blocks
	if blocks != nil {
		s.Metrics.ObserveOccupancy(blocks.MaxCellCount(), blocks.CellArea())
	}
}

// ObstacleInteractionsTask accumulates social and contact forces between
// agents and the field's wall segments.
type ObstacleInteractionsTask struct{}

func (ObstacleInteractionsTask) Name() string { return "obstacle_interactions" }

func (ObstacleInteractionsTask) Update(s *Simulator) {
	InteractObstacles(s.Agents, s.walls)
}

// IntegratorTask advances positions and velocities by one adaptive step
// and moves the simulation clock.
type IntegratorTask struct{}

func (IntegratorTask) Name() string { return "integrator" }

func (IntegratorTask) Update(s *Simulator) {
	dt := VelocityVerlet(s.Agents, s.DtMin, s.DtMax)
	s.LastDt = dt
	s.Time += dt
	s.Steps++
	s.Metrics.RecordStep(dt)
	s.Metrics.ObserveSpeed(agentSpeedMean(s.Agents), dt)
}

// EvacuationTask deactivates agents whose body has reached an exit and
// records their evacuation times.
type EvacuationTask struct{}

func (EvacuationTask) Name() string { return "evacuation" }

func (EvacuationTask) Update(s *Simulator) {
	a := s.Agents
	for _, i := range a.Indices() {
		if s.Field.Evacuated(a.Position[i], a.Radius[i]) {
			s.Metrics.RecordEvacuation(s.Time)
			a.Deactivate(i)
		}
	}
}

// agentSpeedMax returns the highest speed among active agents. Used by
// tests and diagnostics.
func agentSpeedMax(a *Agents) float64 {
	v := 0.0
	for _, i := range a.Indices() {
		if n := r2.Norm(a.Velocity[i]); n > v {
			v = n
		}
	}
	return v
}

// agentSpeedMean returns the mean speed of active agents, 0 when empty.
func agentSpeedMean(a *Agents) float64 {
	ids := a.Indices()
	if len(ids) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range ids {
		sum += r2.Norm(a.Velocity[i])
	}
	return sum / float64(len(ids))
}
