package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// Timestep bounds in seconds. The adaptive scheme keeps the fastest agent
// from moving more than about a tenth of a meter per step.
const (
	DefaultDtMin = 0.001
	DefaultDtMax = 0.01

	// maxStepDisplacement caps the distance any agent may cover in one
	// step, keeping contact resolution stable in dense crushes.
	maxStepDisplacement = 0.1
)

// AdaptiveTimestep picks the timestep for the current state: large when
// everyone moves slowly, shrinking toward dtMin as the fastest agent
// approaches the displacement cap.
func AdaptiveTimestep(a *Agents, dtMin, dtMax float64) float64 {
	vMax := 0.0
	targetMax := 0.0
	for _, i := range a.Indices() {
		if v := r2.Norm(a.Velocity[i]); v > vMax {
			vMax = v
		}
		if a.TargetVelocity[i] > targetMax {
			targetMax = a.TargetVelocity[i]
		}
	}
	if vMax == 0 {
		return dtMax
	}

	dxMax := 1.1 * targetMax * dtMax
	if dxMax > maxStepDisplacement {
		dxMax = maxStepDisplacement
	}

	dt := dxMax / vMax
	switch {
	case dt > dtMax:
		return dtMax
	case dt < dtMin:
		return dtMin
	default:
		return dt
	}
}

// VelocityVerlet advances positions and velocities of all active agents by
// one adaptive step from the accumulated forces, and the rotational state
// from the accumulated torques. Returns the timestep used.
func VelocityVerlet(a *Agents, dtMin, dtMax float64) float64 {
	dt := AdaptiveTimestep(a, dtMin, dtMax)
	half := 0.5 * dt * dt

	for _, i := range a.Indices() {
		acc := r2.Scale(1/a.Mass[i], a.Force[i])
		a.Position[i] = r2.Add(r2.Add(a.Position[i], r2.Scale(dt, a.Velocity[i])), r2.Scale(half, acc))
		a.Velocity[i] = r2.Add(a.Velocity[i], r2.Scale(dt, acc))

		if a.Orientable() {
			angAcc := a.Torque[i] / a.InertiaRot[i]
			a.Orientation[i] += a.AngularVelocity[i]*dt + angAcc*half
			a.AngularVelocity[i] += angAcc * dt
			a.Orientation[i] = geometry.WrapToPi(a.Orientation[i])
		}
	}
	a.UpdateShoulders()
	return dt
}
