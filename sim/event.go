package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in seconds of simulation time) and an
// Execute method that mutates simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator)
}

// eventEntry pairs an event with its scheduling sequence number. Events at
// the same timestamp run in the order they were scheduled, which keeps the
// loop deterministic when spawns and snapshots coincide.
type eventEntry struct {
	ev  Event
	seq uint64
}

// EventQueue implements heap.Interface and orders events by timestamp,
// breaking ties by scheduling order.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []eventEntry

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	if eq[i].ev.Timestamp() != eq[j].ev.Timestamp() {
		return eq[i].ev.Timestamp() < eq[j].ev.Timestamp()
	}
	return eq[i].seq < eq[j].seq
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(eventEntry))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// SpawnEvent introduces a batch of agents into one of the field's spawn
// areas. Placement uses the spawn group's own RNG stream, so adding a group
// does not disturb the others.
type SpawnEvent struct {
	time  float64
	Area  int    // index into Field.Spawns
	Body  string // body class to sample from
	Count int
}

// NewSpawnEvent creates a SpawnEvent at the given simulation time.
func NewSpawnEvent(time float64, area int, body string, count int) *SpawnEvent {
	return &SpawnEvent{time: time, Area: area, Body: body, Count: count}
}

// Timestamp returns the scheduled time of the SpawnEvent.
func (e *SpawnEvent) Timestamp() float64 {
	return e.time
}

// Execute places the agents. A crowded spawn area may hold fewer agents
// than requested; the shortfall is logged and the run continues.
func (e *SpawnEvent) Execute(sim *Simulator) {
	logrus.Infof("<< Spawn: %d %q agents into area %d at %.3fs", e.Count, e.Body, e.Area, e.time)

	placed, err := sim.Spawn(e.Area, e.Body, e.Count)
	if err != nil {
		logrus.Warnf("Spawn into area %d failed: %v", e.Area, err)
		return
	}
	if placed < e.Count {
		logrus.Warnf("Spawn area %d full: placed %d of %d agents", e.Area, placed, e.Count)
	}
}

// SnapshotEvent captures the state of all active agents for the recorder
// and reschedules itself at a fixed interval while the simulation has
// agents left to observe.
type SnapshotEvent struct {
	time     float64
	Interval float64
}

// NewSnapshotEvent creates a SnapshotEvent at the given simulation time.
func NewSnapshotEvent(time, interval float64) *SnapshotEvent {
	return &SnapshotEvent{time: time, Interval: interval}
}

// Timestamp returns the scheduled time of the SnapshotEvent.
func (e *SnapshotEvent) Timestamp() float64 {
	return e.time
}

// Execute records a frame and schedules the next snapshot.
func (e *SnapshotEvent) Execute(sim *Simulator) {
	sim.RecordFrame()

	// Keep snapshotting while agents remain or spawns are still pending.
	if sim.Agents.ActiveCount() > 0 || sim.EventQueue.Len() > 0 {
		sim.Schedule(NewSnapshotEvent(e.time+e.Interval, e.Interval))
	}
}
