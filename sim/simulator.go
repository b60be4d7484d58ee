// sim/simulator.go
package sim

import (
	"container/heap"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
	"github.com/crowddynamics/crowddynamics/sim/navigation"
)

// DefaultMaxTime caps a run at 100 simulated seconds unless configured
// otherwise.
const DefaultMaxTime = 100.0

// Simulator is the core object that holds simulation time, agent state,
// and the event loop. Physics advances in adaptive timesteps; discrete
// occurrences (spawns, snapshots) live in the event queue and fire when
// the clock passes their timestamps.
type Simulator struct {
	Field     *Field
	Agents    *Agents
	Potential *navigation.Potential
	Tasks     []Task
	Metrics   *Metrics
	RNG       *PartitionedRNG
	Recorder  FrameRecorder

	// EventQueue has the pending discrete events, like spawns and snapshots
	EventQueue EventQueue
	eventSeq   uint64

	Time   float64 // current simulation time in seconds
	Steps  int     // integration steps taken
	LastDt float64 // timestep of the most recent integration

	MaxTime  float64 // stop when Time reaches this; 0 disables
	MaxSteps int     // stop when Steps reaches this; 0 disables

	DtMin float64
	DtMax float64

	walls     []geometry.Segment // field obstacles, cached for the task loop
	occupancy *BlockList         // partition from the latest interaction sweep
}

// NewSimulator assembles a simulator around a validated field, an agent
// container, and the guidance potential computed for the field.
func NewSimulator(field *Field, agents *Agents, potential *navigation.Potential, key SimulationKey) *Simulator {
	return &Simulator{
		Field:      field,
		Agents:     agents,
		Potential:  potential,
		Tasks:      StandardTasks(),
		Metrics:    NewMetrics(),
		RNG:        NewPartitionedRNG(key),
		EventQueue: make(EventQueue, 0),
		MaxTime:    DefaultMaxTime,
		DtMin:      DefaultDtMin,
		DtMax:      DefaultDtMax,
		walls:      field.Obstacles,
	}
}

// Schedule pushes an event into the simulator's EventQueue. Events at
// equal timestamps execute in scheduling order.
func (s *Simulator) Schedule(ev Event) {
	heap.Push(&s.EventQueue, eventEntry{ev: ev, seq: s.eventSeq})
	s.eventSeq++
}

// Run drives the simulation: fire due events, step the physics pipeline,
// repeat until everyone has evacuated or a limit is reached.
func (s *Simulator) Run() {
	started := time.Now()
	for {
		// fire all events due at the current time
		for s.EventQueue.Len() > 0 && s.EventQueue[0].ev.Timestamp() <= s.Time {
			entry := heap.Pop(&s.EventQueue).(eventEntry)
			logrus.Infof("[t %8.3fs] Executing %T", s.Time, entry.ev)
			entry.ev.Execute(s)
		}

		if s.Agents.ActiveCount() == 0 {
			if s.EventQueue.Len() == 0 {
				logrus.Infof("[t %8.3fs] All agents evacuated", s.Time)
				break
			}
			// nobody to move; idle forward to the next scheduled event
			s.Time = s.EventQueue[0].ev.Timestamp()
			continue
		}

		for _, task := range s.Tasks {
			task.Update(s)
		}
		logrus.Debugf("[step %07d] t=%.3fs dt=%.4fs active=%d vmax=%.2f",
			s.Steps, s.Time, s.LastDt, s.Agents.ActiveCount(), agentSpeedMax(s.Agents))

		if s.MaxTime > 0 && s.Time >= s.MaxTime {
			logrus.Infof("[t %8.3fs] Time limit reached", s.Time)
			break
		}
		if s.MaxSteps > 0 && s.Steps >= s.MaxSteps {
			logrus.Infof("[t %8.3fs] Step limit reached", s.Time)
			break
		}
	}

	// capture the terminal state so stored runs always end on a frame
	s.RecordFrame()
	s.Metrics.WallTime = time.Since(started)
	logrus.Infof("[t %8.3fs] Simulation ended", s.Time)
}

// Spawn samples count agents of the named body class and places them in
// the given spawn area. Returns the number actually placed; a crowded
// area may hold fewer than requested, reported alongside the error.
func (s *Simulator) Spawn(area int, body string, count int) (int, error) {
	poly, err := s.Field.Spawn(area)
	if err != nil {
		return 0, err
	}
	b, err := BodyByName(body)
	if err != nil {
		return 0, err
	}
	if count <= 0 {
		return 0, nil
	}

	bodyRNG := s.RNG.ForSubsystem(SubsystemBodies)
	specs := make([]AgentSpec, count)
	radii := make([]float64, count)
	for k := range specs {
		specs[k] = b.Sample(bodyRNG)
		radii[k] = specs[k].Radius
	}

	// placement must avoid agents already in the field
	positions, placeErr := PlacePositions(
		s.RNG.ForSubsystem(SubsystemSpawn(area)),
		poly, radii, s.walls,
		activePositions(s.Agents), activeRadii(s.Agents),
	)

	placed := 0
	for k, pos := range positions {
		orientation := 0.0
		if s.Potential != nil {
			if dir := s.Potential.Direction.Sample(pos); dir.X != 0 || dir.Y != 0 {
				orientation = geometry.AngleOf(dir)
			}
		}
		if _, addErr := s.Agents.Add(specs[k], pos, orientation); addErr != nil {
			s.Metrics.RecordSpawn(placed)
			return placed, addErr
		}
		placed++
	}
	s.Metrics.RecordSpawn(placed)
	return placed, placeErr
}

// RecordFrame snapshots the active agents into the recorder, if any.
func (s *Simulator) RecordFrame() {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.RecordFrame(s.Agents.Snapshot(s.Time, s.Steps)); err != nil {
		logrus.Warnf("Recording frame at t=%.3fs failed: %v", s.Time, err)
	}
}

// Occupancy returns the spatial partition from the latest interaction
// sweep, or nil before the first step.
func (s *Simulator) Occupancy() *BlockList {
	return s.occupancy
}

func activePositions(a *Agents) []r2.Vec {
	ids := a.Indices()
	out := make([]r2.Vec, len(ids))
	for k, i := range ids {
		out[k] = a.Position[i]
	}
	return out
}

func activeRadii(a *Agents) []float64 {
	ids := a.Indices()
	out := make([]float64, len(ids))
	for k, i := range ids {
		out[k] = a.Radius[i]
	}
	return out
}
