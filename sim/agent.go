package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// Body model selection.
const (
	// ModelCircular represents each agent as a single circle.
	ModelCircular = "circular"

	// ModelThreeCircle adds two shoulder circles and rotational state.
	ModelThreeCircle = "three_circle"
)

var validModels = map[string]bool{
	ModelCircular: true, ModelThreeCircle: true,
}

// NeighborK is the number of nearest neighbors tracked per agent when
// Params.NeighborRadius is positive.
const NeighborK = 8

// Agents stores the state of every agent in parallel slices, indexed by
// agent ID. Slots are preallocated up to capacity and materialized by Add;
// evacuated agents are deactivated but keep their slot, so IDs stay stable
// for the whole run.
type Agents struct {
	Model  string
	Params Params

	count  int
	active []bool

	Mass   []float64
	Radius []float64

	Position        []r2.Vec
	Velocity        []r2.Vec
	TargetVelocity  []float64
	TargetDirection []r2.Vec
	Force           []r2.Vec

	// Three-circle state. Allocated for both models to keep indexing
	// uniform; meaningful only when Model is ModelThreeCircle.
	RadiusTorso    []float64
	RadiusShoulder []float64
	TorsoShoulder  []float64
	PositionLS     []r2.Vec
	PositionRS     []r2.Vec

	InertiaRot        []float64
	Orientation       []float64
	AngularVelocity   []float64
	TargetOrientation []float64
	TargetAngular     []float64
	Torque            []float64

	// Nearest neighbor bookkeeping, filled during the pair sweep when
	// Params.NeighborRadius > 0. Missing neighbors hold -1.
	Neighbors         []int
	NeighborDistances []float64
	neighborWorst     []float64
}

// NewAgents returns an empty container with capacity for size agents.
func NewAgents(size int, model string, params Params) (*Agents, error) {
	if size <= 0 {
		return nil, fmt.Errorf("agents: capacity must be positive, got %d", size)
	}
	if !validModels[model] {
		return nil, fmt.Errorf("agents: unknown model %q; valid: circular, three_circle", model)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}

	a := &Agents{
		Model:  model,
		Params: params,

		active: make([]bool, size),

		Mass:   make([]float64, size),
		Radius: make([]float64, size),

		Position:        make([]r2.Vec, size),
		Velocity:        make([]r2.Vec, size),
		TargetVelocity:  make([]float64, size),
		TargetDirection: make([]r2.Vec, size),
		Force:           make([]r2.Vec, size),

		RadiusTorso:    make([]float64, size),
		RadiusShoulder: make([]float64, size),
		TorsoShoulder:  make([]float64, size),
		PositionLS:     make([]r2.Vec, size),
		PositionRS:     make([]r2.Vec, size),

		InertiaRot:        make([]float64, size),
		Orientation:       make([]float64, size),
		AngularVelocity:   make([]float64, size),
		TargetOrientation: make([]float64, size),
		TargetAngular:     make([]float64, size),
		Torque:            make([]float64, size),
	}
	if params.NeighborRadius > 0 {
		a.Neighbors = make([]int, size*NeighborK)
		a.NeighborDistances = make([]float64, size*NeighborK)
		a.neighborWorst = make([]float64, size)
	}
	return a, nil
}

// Capacity returns the number of preallocated agent slots.
func (a *Agents) Capacity() int {
	return len(a.active)
}

// Count returns the number of materialized agents, active or not.
func (a *Agents) Count() int {
	return a.count
}

// Orientable reports whether agents carry rotational state.
func (a *Agents) Orientable() bool {
	return a.Model == ModelThreeCircle
}

// Active reports whether agent i is materialized and still in the field.
func (a *Agents) Active(i int) bool {
	return i >= 0 && i < a.count && a.active[i]
}

// Indices returns the IDs of all active agents in ascending order.
func (a *Agents) Indices() []int {
	out := make([]int, 0, a.count)
	for i := 0; i < a.count; i++ {
		if a.active[i] {
			out = append(out, i)
		}
	}
	return out
}

// ActiveCount returns the number of active agents.
func (a *Agents) ActiveCount() int {
	n := 0
	for i := 0; i < a.count; i++ {
		if a.active[i] {
			n++
		}
	}
	return n
}

// Add materializes one agent from a sampled spec at the given position and
// orientation, and returns its ID.
func (a *Agents) Add(spec AgentSpec, position r2.Vec, orientation float64) (int, error) {
	if a.count >= a.Capacity() {
		return -1, fmt.Errorf("agents: capacity %d exhausted", a.Capacity())
	}
	i := a.count
	a.count++
	a.active[i] = true

	a.Mass[i] = spec.Mass
	a.Radius[i] = spec.Radius
	a.RadiusTorso[i] = spec.RadiusTorso
	a.RadiusShoulder[i] = spec.RadiusShoulder
	a.TorsoShoulder[i] = spec.TorsoShoulder
	a.InertiaRot[i] = spec.InertiaRot
	a.TargetVelocity[i] = spec.TargetVelocity
	a.TargetAngular[i] = spec.TargetAngular

	a.Position[i] = position
	a.Velocity[i] = r2.Vec{}
	a.TargetDirection[i] = geometry.UnitVector(orientation)
	a.Orientation[i] = geometry.WrapToPi(orientation)
	a.AngularVelocity[i] = 0
	a.TargetOrientation[i] = a.Orientation[i]

	a.updateShoulders(i)
	return i, nil
}

// Deactivate removes agent i from the field. Its slot and final state stay
// readable.
func (a *Agents) Deactivate(i int) {
	if i >= 0 && i < a.count {
		a.active[i] = false
	}
}

// ResetMotion zeroes the accumulated forces and torques of all agents.
// Force tasks accumulate, so this must run first every step.
func (a *Agents) ResetMotion() {
	for i := 0; i < a.count; i++ {
		a.Force[i] = r2.Vec{}
		a.Torque[i] = 0
	}
}

// ResetNeighbors clears the nearest-neighbor lists before a pair sweep.
func (a *Agents) ResetNeighbors() {
	if a.Neighbors == nil {
		return
	}
	for i := range a.Neighbors {
		a.Neighbors[i] = -1
		a.NeighborDistances[i] = a.Params.NeighborRadius
	}
	for i := range a.neighborWorst {
		a.neighborWorst[i] = a.Params.NeighborRadius
	}
}

// updateShoulders recomputes the shoulder circle positions of agent i from
// its torso position and orientation. Shoulders sit on the axis
// perpendicular to the facing direction.
func (a *Agents) updateShoulders(i int) {
	t := geometry.Rotate270(geometry.UnitVector(a.Orientation[i]))
	offset := r2.Scale(a.TorsoShoulder[i], t)
	a.PositionLS[i] = r2.Sub(a.Position[i], offset)
	a.PositionRS[i] = r2.Add(a.Position[i], offset)
}

// UpdateShoulders refreshes shoulder positions for all active agents.
func (a *Agents) UpdateShoulders() {
	if !a.Orientable() {
		return
	}
	for i := 0; i < a.count; i++ {
		if a.active[i] {
			a.updateShoulders(i)
		}
	}
}

// circles returns the circle centers and radii of agent i. The circular
// model contributes a single circle, the three-circle model the torso and
// both shoulders.
func (a *Agents) circles(i int) ([3]r2.Vec, [3]float64, int) {
	if a.Model == ModelThreeCircle {
		return [3]r2.Vec{a.Position[i], a.PositionLS[i], a.PositionRS[i]},
			[3]float64{a.RadiusTorso[i], a.RadiusShoulder[i], a.RadiusShoulder[i]},
			3
	}
	return [3]r2.Vec{a.Position[i]}, [3]float64{a.Radius[i]}, 1
}

// noteNeighbor records agent j as a candidate nearest neighbor of agent i
// at skin-to-skin distance h, evicting the current worst entry.
func (a *Agents) noteNeighbor(i, j int, h float64) {
	if a.Neighbors == nil || h >= a.neighborWorst[i] {
		return
	}
	base := i * NeighborK
	worst := 0
	for s := 1; s < NeighborK; s++ {
		if a.NeighborDistances[base+s] > a.NeighborDistances[base+worst] {
			worst = s
		}
	}
	a.Neighbors[base+worst] = j
	a.NeighborDistances[base+worst] = h
	max := a.NeighborDistances[base]
	for s := 1; s < NeighborK; s++ {
		if a.NeighborDistances[base+s] > max {
			max = a.NeighborDistances[base+s]
		}
	}
	a.neighborWorst[i] = max
}

// NeighborList returns the IDs of the tracked nearest neighbors of agent
// i, closest first. Empty when tracking is disabled.
func (a *Agents) NeighborList(i int) []int {
	if a.Neighbors == nil {
		return nil
	}
	base := i * NeighborK
	type entry struct {
		id int
		h  float64
	}
	entries := make([]entry, 0, NeighborK)
	for s := 0; s < NeighborK; s++ {
		if a.Neighbors[base+s] >= 0 {
			entries = append(entries, entry{a.Neighbors[base+s], a.NeighborDistances[base+s]})
		}
	}
	for x := 1; x < len(entries); x++ {
		for y := x; y > 0 && entries[y].h < entries[y-1].h; y-- {
			entries[y], entries[y-1] = entries[y-1], entries[y]
		}
	}
	out := make([]int, len(entries))
	for k, e := range entries {
		out[k] = e.id
	}
	return out
}
