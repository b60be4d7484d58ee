package sim

// Frame is a snapshot of every active agent at one instant, laid out as
// parallel slices for cheap serialization.
type Frame struct {
	Time float64 `json:"time"`
	Step int     `json:"step"`

	IDs         []int     `json:"ids"`
	X           []float64 `json:"x"`
	Y           []float64 `json:"y"`
	VX          []float64 `json:"vx"`
	VY          []float64 `json:"vy"`
	Radius      []float64 `json:"radius"`
	Orientation []float64 `json:"orientation,omitempty"`
}

// FrameRecorder consumes trajectory frames as the simulation produces
// them. Implementations decide persistence: database rows, compressed
// streams, or in-memory buffers for tests.
type FrameRecorder interface {
	RecordFrame(f *Frame) error
}

// Snapshot captures the current state of all active agents.
func (a *Agents) Snapshot(time float64, step int) *Frame {
	ids := a.Indices()
	f := &Frame{
		Time:   time,
		Step:   step,
		IDs:    ids,
		X:      make([]float64, len(ids)),
		Y:      make([]float64, len(ids)),
		VX:     make([]float64, len(ids)),
		VY:     make([]float64, len(ids)),
		Radius: make([]float64, len(ids)),
	}
	if a.Orientable() {
		f.Orientation = make([]float64, len(ids))
	}
	for k, i := range ids {
		f.X[k] = a.Position[i].X
		f.Y[k] = a.Position[i].Y
		f.VX[k] = a.Velocity[i].X
		f.VY[k] = a.Velocity[i].Y
		f.Radius[k] = a.Radius[i]
		if f.Orientation != nil {
			f.Orientation[k] = a.Orientation[i]
		}
	}
	return f
}
