package sim

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvent struct {
	time float64
	tag  string
	log  *[]string
}

func (e *stubEvent) Timestamp() float64 { return e.time }
func (e *stubEvent) Execute(*Simulator) {
	*e.log = append(*e.log, e.tag)
}

func TestEventQueueOrdersByTime(t *testing.T) {
	var log []string
	eq := make(EventQueue, 0)
	for i, tm := range []float64{3, 1, 2} {
		heap.Push(&eq, eventEntry{ev: &stubEvent{time: tm, tag: string(rune('a' + i)), log: &log}, seq: uint64(i)})
	}

	var order []float64
	for eq.Len() > 0 {
		entry := heap.Pop(&eq).(eventEntry)
		order = append(order, entry.ev.Timestamp())
	}
	assert.Equal(t, []float64{1, 2, 3}, order)
}

func TestEventQueueTieBreaksBySequence(t *testing.T) {
	var log []string
	s := &Simulator{EventQueue: make(EventQueue, 0)}
	s.Schedule(&stubEvent{time: 1, tag: "first", log: &log})
	s.Schedule(&stubEvent{time: 1, tag: "second", log: &log})
	s.Schedule(&stubEvent{time: 1, tag: "third", log: &log})

	for s.EventQueue.Len() > 0 {
		entry := heap.Pop(&s.EventQueue).(eventEntry)
		entry.ev.Execute(s)
	}
	assert.Equal(t, []string{"first", "second", "third"}, log)
}

func TestSnapshotEventReschedules(t *testing.T) {
	s := buildTestSimulator(t, smallRunYAML)
	placed, err := s.Spawn(0, "adult", 2)
	require.NoError(t, err)
	require.Equal(t, 2, placed)

	s.EventQueue = make(EventQueue, 0)
	ev := NewSnapshotEvent(0, 0.5)
	ev.Execute(s)
	require.Equal(t, 1, s.EventQueue.Len(), "snapshot must reschedule while agents remain")

	next := heap.Pop(&s.EventQueue).(eventEntry).ev
	require.IsType(t, &SnapshotEvent{}, next)
	assert.Equal(t, 0.5, next.Timestamp())
}

func TestSnapshotEventStopsWhenIdle(t *testing.T) {
	s := buildTestSimulator(t, smallRunYAML)
	s.EventQueue = make(EventQueue, 0) // drop the scheduled spawn

	ev := NewSnapshotEvent(0, 0.5)
	ev.Execute(s)
	assert.Zero(t, s.EventQueue.Len(), "nothing left to observe, no reschedule")
}

func TestSpawnEventPlacesAgents(t *testing.T) {
	s := buildTestSimulator(t, smallRunYAML)
	s.EventQueue = make(EventQueue, 0)

	NewSpawnEvent(0, 0, "adult", 4).Execute(s)
	assert.Equal(t, 4, s.Agents.ActiveCount())
	assert.Equal(t, 4, s.Metrics.SpawnedAgents)
}

func TestSpawnEventBadAreaKeepsRunning(t *testing.T) {
	s := buildTestSimulator(t, smallRunYAML)
	s.EventQueue = make(EventQueue, 0)

	// Bad spawn area logs a warning instead of aborting the run.
	NewSpawnEvent(0, 5, "adult", 4).Execute(s)
	assert.Zero(t, s.Agents.ActiveCount())
}
