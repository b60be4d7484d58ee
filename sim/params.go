package sim

import "fmt"

// Social force model selection.
const (
	// SocialPowerLaw is the anticipatory power-law force derived from
	// time-to-collision (Karamouzas et al.).
	SocialPowerLaw = "power_law"

	// SocialHelbing is Helbing's original distance-based social force.
	SocialHelbing = "helbing"
)

var validSocialForces = map[string]bool{
	SocialPowerLaw: true, SocialHelbing: true,
}

// Params holds the force model constants shared by every agent in a
// simulation. Zero value is not usable; start from DefaultParams.
type Params struct {
	// SocialForce selects the agent-agent repulsion model,
	// "power_law" (default) or "helbing".
	SocialForce string `yaml:"social_force"`

	// TauAdj is the characteristic time in which an agent adjusts its
	// movement toward the target velocity, in seconds.
	TauAdj float64 `yaml:"tau_adj"`
	// TauRot is the characteristic time for orientation adjustment.
	TauRot float64 `yaml:"tau_rot"`

	// KSoc scales the power-law social force.
	KSoc float64 `yaml:"k_soc"`
	// Tau0 is the interaction time horizon of the power-law force: collisions
	// further than this in the future are ignored.
	Tau0 float64 `yaml:"tau_0"`

	// HelbingA and HelbingB parameterize the Helbing social force
	// A exp(-h/B) n.
	HelbingA float64 `yaml:"helbing_a"`
	HelbingB float64 `yaml:"helbing_b"`

	// Contact force constants.
	Mu      float64 `yaml:"mu"`      // body compression, kg/s^2
	Kappa   float64 `yaml:"kappa"`   // sliding friction, kg/(m s)
	Damping float64 `yaml:"damping"` // normal velocity damping, N s/m

	// Random force and torque scales.
	StdRandForce  float64 `yaml:"std_rand_force"`
	StdRandTorque float64 `yaml:"std_rand_torque"`

	// Interaction ranges, in meters.
	SightSoc  float64 `yaml:"sight_soc"`
	SightWall float64 `yaml:"sight_wall"`

	// Social force magnitude caps, in newtons.
	FSocMax  float64 `yaml:"f_soc_max"`
	FWallMax float64 `yaml:"f_wall_max"`

	// NeighborRadius enables k-nearest neighbor tracking during the pair
	// sweep when positive. Zero disables it.
	NeighborRadius float64 `yaml:"neighbor_radius"`
}

// DefaultParams returns the standard constants of the model.
func DefaultParams() Params {
	return Params{
		SocialForce:   SocialPowerLaw,
		TauAdj:        0.5,
		TauRot:        0.2,
		KSoc:          1.5,
		Tau0:          3.0,
		HelbingA:      2e3,
		HelbingB:      0.08,
		Mu:            1.2e5,
		Kappa:         4e4,
		Damping:       500,
		StdRandForce:  0.1,
		StdRandTorque: 0.1,
		SightSoc:      3.0,
		SightWall:     3.0,
		FSocMax:       2e3,
		FWallMax:      2e3,
	}
}

// Validate checks that the constants are physically meaningful.
func (p *Params) Validate() error {
	if !validSocialForces[p.SocialForce] {
		return fmt.Errorf("unknown social_force %q; valid: power_law, helbing", p.SocialForce)
	}
	if p.TauAdj <= 0 {
		return fmt.Errorf("tau_adj must be positive, got %f", p.TauAdj)
	}
	if p.TauRot <= 0 {
		return fmt.Errorf("tau_rot must be positive, got %f", p.TauRot)
	}
	if p.Tau0 <= 0 {
		return fmt.Errorf("tau_0 must be positive, got %f", p.Tau0)
	}
	if p.SightSoc <= 0 || p.SightWall <= 0 {
		return fmt.Errorf("sight ranges must be positive, got soc=%f wall=%f", p.SightSoc, p.SightWall)
	}
	if p.FSocMax <= 0 || p.FWallMax <= 0 {
		return fmt.Errorf("force caps must be positive, got soc=%f wall=%f", p.FSocMax, p.FWallMax)
	}
	if p.Mu < 0 || p.Kappa < 0 || p.Damping < 0 {
		return fmt.Errorf("contact constants must be non-negative, got mu=%f kappa=%f damping=%f", p.Mu, p.Kappa, p.Damping)
	}
	if p.StdRandForce < 0 || p.StdRandTorque < 0 {
		return fmt.Errorf("fluctuation scales must be non-negative, got force=%f torque=%f", p.StdRandForce, p.StdRandTorque)
	}
	if p.NeighborRadius < 0 {
		return fmt.Errorf("neighbor_radius must be non-negative, got %f", p.NeighborRadius)
	}
	return nil
}
