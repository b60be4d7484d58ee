// Tracks simulation-wide evacuation and timestep metrics.

package sim

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation
// for final reporting. Useful for evaluating egress performance
// and debugging behavior over time.
type Metrics struct {
	SpawnedAgents   int       // Number of agents placed into the field
	EvacuatedAgents int       // Number of agents that reached an exit
	EvacuationTimes []float64 // Evacuation time of each agent, in order of egress

	StepCount int     // Number of integration steps taken
	SimTime   float64 // Total simulated time in seconds
	MinDt     float64 // Smallest adaptive timestep seen
	MaxDt     float64 // Largest adaptive timestep seen

	PeakCellCount int     // Max agents observed in one partition cell
	PeakDensity   float64 // Corresponding density in agents per square meter

	WallTime time.Duration // Real time the run took

	speedIntegral float64 // time integral of the mean agent speed
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordSpawn counts agents placed into the field.
func (m *Metrics) RecordSpawn(n int) {
	m.SpawnedAgents += n
}

// RecordStep accounts for one integration step of length dt.
func (m *Metrics) RecordStep(dt float64) {
	if m.StepCount == 0 || dt < m.MinDt {
		m.MinDt = dt
	}
	if dt > m.MaxDt {
		m.MaxDt = dt
	}
	m.StepCount++
	m.SimTime += dt
}

// RecordEvacuation logs one agent leaving through an exit at time t.
func (m *Metrics) RecordEvacuation(t float64) {
	m.EvacuatedAgents++
	m.EvacuationTimes = append(m.EvacuationTimes, t)
}

// ObserveSpeed accumulates the mean agent speed over one step of length dt.
func (m *Metrics) ObserveSpeed(meanSpeed, dt float64) {
	m.speedIntegral += meanSpeed * dt
}

// MeanSpeed returns the time-averaged mean agent speed over the run, or 0
// before the first step.
func (m *Metrics) MeanSpeed() float64 {
	if m.SimTime <= 0 {
		return 0
	}
	return m.speedIntegral / m.SimTime
}

// ObserveOccupancy tracks the densest partition cell seen so far.
func (m *Metrics) ObserveOccupancy(cellCount int, cellArea float64) {
	if cellCount > m.PeakCellCount {
		m.PeakCellCount = cellCount
		if cellArea > 0 {
			m.PeakDensity = float64(cellCount) / cellArea
		}
	}
}

// MeanEvacuationTime returns the mean of all recorded evacuation times,
// or 0 when nothing has evacuated.
func (m *Metrics) MeanEvacuationTime() float64 {
	if len(m.EvacuationTimes) == 0 {
		return 0
	}
	return stat.Mean(m.EvacuationTimes, nil)
}

// EvacuationTimeQuantile returns the p-quantile (p in [0,1]) of recorded
// evacuation times, or 0 when nothing has evacuated.
func (m *Metrics) EvacuationTimeQuantile(p float64) float64 {
	if len(m.EvacuationTimes) == 0 {
		return 0
	}
	sorted := make([]float64, len(m.EvacuationTimes))
	copy(sorted, m.EvacuationTimes)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// FlowRate estimates egress throughput in agents per second over the span
// between the first and last evacuation. Needs at least two evacuations.
func (m *Metrics) FlowRate() float64 {
	n := len(m.EvacuationTimes)
	if n < 2 {
		return 0
	}
	span := m.EvacuationTimes[n-1] - m.EvacuationTimes[0]
	if span <= 0 {
		return 0
	}
	return float64(n) / span
}

// Print displays aggregated metrics at the end of the simulation.
// Includes evacuation counts, egress timing, flow rate, and peak density.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Spawned Agents       : %d\n", m.SpawnedAgents)
	fmt.Printf("Evacuated Agents     : %d\n", m.EvacuatedAgents)
	fmt.Printf("Steps                : %d\n", m.StepCount)
	fmt.Printf("Simulated Time       : %.2f s\n", m.SimTime)
	if m.StepCount > 0 {
		fmt.Printf("Timestep Range       : [%.4f, %.4f] s\n", m.MinDt, m.MaxDt)
		fmt.Printf("Mean Agent Speed     : %.2f m/s\n", m.MeanSpeed())
	}
	if m.EvacuatedAgents > 0 {
		fmt.Printf("Mean Evacuation Time : %.2f s\n", m.MeanEvacuationTime())
		fmt.Printf("Median Evac Time     : %.2f s\n", m.EvacuationTimeQuantile(0.5))
		fmt.Printf("P90 Evac Time        : %.2f s\n", m.EvacuationTimeQuantile(0.9))
		fmt.Printf("P99 Evac Time        : %.2f s\n", m.EvacuationTimeQuantile(0.99))
	}
	if rate := m.FlowRate(); rate > 0 {
		fmt.Printf("Flow Rate            : %.2f agents/s\n", rate)
	}
	if m.PeakCellCount > 0 {
		fmt.Printf("Peak Density         : %.2f agents/m^2\n", m.PeakDensity)
	}
	if m.WallTime > 0 {
		fmt.Printf("Wall Time            : %s\n", m.WallTime.Round(time.Millisecond))
	}
}
