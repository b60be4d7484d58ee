package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// ForceFluctuation returns a random force with truncated-normal magnitude
// and uniform direction, scaled by the agent's mass.
func ForceFluctuation(rng *rand.Rand, mass, scale float64) r2.Vec {
	magnitude := truncatedHalfNormal(rng, scale)
	return r2.Scale(magnitude*mass, RandomUnitVector(rng))
}

// TorqueFluctuation returns a random torque with truncated-normal
// distribution, scaled by the agent's moment of inertia.
func TorqueFluctuation(rng *rand.Rand, inertia, scale float64) float64 {
	return truncatedNormal(rng, scale) * inertia
}

// ForceAdjust is the driving force that steers an agent toward walking at
// its target velocity in its target direction:
//
//	f = m/tau_adj (v0 e0 - v)
func ForceAdjust(mass, tauAdj, v0 float64, e0, v r2.Vec) r2.Vec {
	return r2.Scale(mass/tauAdj, r2.Sub(r2.Scale(v0, e0), v))
}

// TorqueAdjust is the rotational counterpart of ForceAdjust: it turns the
// agent toward its target orientation, spinning faster the further the
// body is from facing it.
func TorqueAdjust(inertia, tauRot, phi0, phi, omega0, omega float64) float64 {
	return inertia / tauRot * (geometry.WrapToPi(phi0-phi)/math.Pi*omega0 - omega)
}

// ForceSocialHelbing is Helbing's distance-based social repulsion
// A exp(-h/B) n, independent of velocities.
func ForceSocialHelbing(h float64, n r2.Vec, a, b float64) r2.Vec {
	return r2.Scale(a*math.Exp(-h/b), n)
}

// ForceContact is the physical contact force during overlap (h < 0): body
// compression along the normal, sliding friction along the tangent, and
// damping of the normal relative velocity.
func ForceContact(h float64, n, v, t r2.Vec, mu, kappa, damping float64) r2.Vec {
	core := r2.Scale(-h, r2.Sub(r2.Scale(mu, n), r2.Scale(kappa*r2.Dot(v, t), t)))
	return r2.Add(core, r2.Scale(damping*r2.Dot(v, n), n))
}

// Power-law force internals.
const (
	powerLawExponent = 2.0
	// Time-to-collision beyond this horizon never produces a force.
	tauMax = 999.0
	// Relative speeds below this yield no well-defined collision time.
	minRelativeSpeedSq = 0.001
)

// ForceSocialPowerLaw is the anticipatory social force between two agents,
// derived from the projected time to collision of their bounding circles.
// x and v are the relative position and velocity of agent i with respect
// to agent j, rTot the sum of radii. Returns the force on agent i; the
// force on agent j is its negation.
//
// Agents on a collision course (discriminant >= 0, 0 < tau < tauMax) feel
// a repulsion that grows as the collision gets nearer in time, capped at
// fMax. Diverging or barely moving pairs feel nothing.
func ForceSocialPowerLaw(x, v r2.Vec, rTot, k, tau0, fMax float64) r2.Vec {
	a := r2.Dot(v, v)
	b := -r2.Dot(x, v)
	c := r2.Dot(x, x) - rTot*rTot
	disc := b*b - a*c

	if disc < 0 || (-minRelativeSpeedSq < a && a < minRelativeSpeedSq) {
		return r2.Vec{}
	}
	d := math.Sqrt(disc)
	tau := (b - d) / a
	if tau <= 0 || tau > tauMax {
		return r2.Vec{}
	}

	m := powerLawExponent
	coeff := -k / (a * math.Pow(tau, m)) * math.Exp(-tau/tau0) * (m/tau + 1/tau0)
	grad := r2.Sub(v, r2.Scale(1/d, r2.Add(r2.Scale(b, v), r2.Scale(a, x))))
	force := r2.Scale(coeff, grad)

	return geometry.Truncate(force, fMax)
}
