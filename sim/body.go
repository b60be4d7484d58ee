package sim

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Body holds the anthropometric distribution of one body class. Individual
// agents are drawn from it with truncated normal sampling.
type Body struct {
	// Mass distribution, kg.
	Mass      float64
	MassScale float64

	// Torso circle radius distribution, m.
	Radius      float64
	RadiusScale float64

	// Three-circle model ratios relative to the full radius:
	// torso radius, shoulder radius, torso-to-shoulder offset.
	RatioTorso    float64
	RatioShoulder float64
	RatioTS       float64

	// Preferred walking speed distribution, m/s.
	Velocity      float64
	VelocityScale float64
}

// Default rotational constants. The moment of inertia follows the value
// measured for an average-sized person, scaled by mass and radius.
const (
	inertiaRotMass   = 73.5        // kg, reference mass
	inertiaRotRadius = 0.255       // m, reference radius
	inertiaRot       = 4.0         // kg m^2 at the reference build
	targetAngularVel = 4 * math.Pi // rad/s
)

// bodies is the registry of supported body classes.
var bodies = map[string]Body{
	"adult": {
		Mass: 73.5, MassScale: 8.0,
		Radius: 0.255, RadiusScale: 0.035,
		RatioTorso: 0.5882, RatioShoulder: 0.3725, RatioTS: 0.6275,
		Velocity: 1.25, VelocityScale: 0.30,
	},
	"male": {
		Mass: 80.0, MassScale: 8.0,
		Radius: 0.270, RadiusScale: 0.020,
		RatioTorso: 0.5882, RatioShoulder: 0.3725, RatioTS: 0.6275,
		Velocity: 1.35, VelocityScale: 0.30,
	},
	"female": {
		Mass: 67.0, MassScale: 8.0,
		Radius: 0.240, RadiusScale: 0.020,
		RatioTorso: 0.5882, RatioShoulder: 0.3725, RatioTS: 0.6275,
		Velocity: 1.15, VelocityScale: 0.30,
	},
	"child": {
		Mass: 57.0, MassScale: 5.0,
		Radius: 0.210, RadiusScale: 0.015,
		RatioTorso: 0.5882, RatioShoulder: 0.3725, RatioTS: 0.6275,
		Velocity: 0.90, VelocityScale: 0.30,
	},
	"eldery": {
		Mass: 70.0, MassScale: 8.0,
		Radius: 0.250, RadiusScale: 0.020,
		RatioTorso: 0.5882, RatioShoulder: 0.3725, RatioTS: 0.6275,
		Velocity: 0.80, VelocityScale: 0.30,
	},
}

// BodyByName returns the named body class.
func BodyByName(name string) (Body, error) {
	b, ok := bodies[name]
	if !ok {
		return Body{}, fmt.Errorf("unknown body type %q; valid: %v", name, BodyNames())
	}
	return b, nil
}

// BodyNames returns the supported body class names, sorted.
func BodyNames() []string {
	names := make([]string, 0, len(bodies))
	for name := range bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AgentSpec is the sampled physique of a single agent, ready to be added
// to an Agents container.
type AgentSpec struct {
	Mass           float64
	Radius         float64
	RadiusTorso    float64
	RadiusShoulder float64
	TorsoShoulder  float64
	InertiaRot     float64
	TargetVelocity float64
	TargetAngular  float64
}

// Sample draws one agent from the body class distributions.
func (b Body) Sample(rng *rand.Rand) AgentSpec {
	mass := TruncNorm(rng, b.Mass, b.MassScale)
	radius := TruncNorm(rng, b.Radius, b.RadiusScale)
	return AgentSpec{
		Mass:           mass,
		Radius:         radius,
		RadiusTorso:    b.RatioTorso * radius,
		RadiusShoulder: b.RatioShoulder * radius,
		TorsoShoulder:  b.RatioTS * radius,
		InertiaRot:     inertiaRot * (mass / inertiaRotMass) * math.Pow(radius/inertiaRotRadius, 2),
		TargetVelocity: TruncNorm(rng, b.Velocity, b.VelocityScale),
		TargetAngular:  targetAngularVel,
	}
}
