package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// headOn places two circular agents walking toward each other.
func headOn(t *testing.T, gap float64) *Agents {
	t.Helper()
	a := newTestAgents(t, 2, ModelCircular)
	spec := testSpec()
	if _, err := a.Add(spec, r2.Vec{X: 0}, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Add(spec, r2.Vec{X: 2*spec.Radius + gap}, math.Pi); err != nil {
		t.Fatal(err)
	}
	a.Velocity[0] = r2.Vec{X: 1}
	a.Velocity[1] = r2.Vec{X: -1}
	return a
}

func TestInteractAgentsNewtonThirdLaw(t *testing.T) {
	a := headOn(t, 0.5)
	InteractAgents(a)

	sum := r2.Add(a.Force[0], a.Force[1])
	vecClose(t, sum, r2.Vec{}, 1e-9, "pair forces must cancel")
	if a.Force[0].X >= 0 {
		t.Errorf("agent 0 should be pushed back, got force %v", a.Force[0])
	}
}

func TestInteractAgentsOutOfSight(t *testing.T) {
	a := headOn(t, 10) // beyond SightSoc of 3 m
	InteractAgents(a)

	vecClose(t, a.Force[0], r2.Vec{}, 0, "no force beyond sight range")
	vecClose(t, a.Force[1], r2.Vec{}, 0, "no force beyond sight range")
}

func TestInteractAgentsDivergingPairNoForce(t *testing.T) {
	a := headOn(t, 0.5)
	// walking apart: no projected collision, no power-law force
	a.Velocity[0] = r2.Vec{X: -1}
	a.Velocity[1] = r2.Vec{X: 1}
	InteractAgents(a)

	vecClose(t, a.Force[0], r2.Vec{}, 0, "diverging agents feel nothing")
}

func TestInteractAgentsContactOnOverlap(t *testing.T) {
	a := headOn(t, -0.05)
	InteractAgents(a)

	// contact pushes much harder than the social force alone
	if math.Abs(a.Force[0].X) < a.Params.FSocMax {
		t.Errorf("overlap should trigger contact force, got %v", a.Force[0])
	}
	sum := r2.Add(a.Force[0], a.Force[1])
	vecClose(t, sum, r2.Vec{}, 1e-6, "contact forces cancel pairwise")
}

func TestInteractAgentsHelbingModel(t *testing.T) {
	a := headOn(t, 0.5)
	a.Params.SocialForce = SocialHelbing
	// stationary agents: Helbing still repels, power-law would not
	a.Velocity[0] = r2.Vec{}
	a.Velocity[1] = r2.Vec{}
	InteractAgents(a)

	if a.Force[0].X >= 0 {
		t.Errorf("Helbing force should repel agent 0, got %v", a.Force[0])
	}
	want := ForceSocialHelbing(0.5, r2.Vec{X: -1}, a.Params.HelbingA, a.Params.HelbingB)
	vecClose(t, a.Force[0], want, 1e-9, "Helbing magnitude")
}

func TestInteractAgentsThreeCircleTorque(t *testing.T) {
	a := newTestAgents(t, 2, ModelThreeCircle)
	spec := testSpec()
	// offset in y so the contact is off-center and produces torque
	if _, err := a.Add(spec, r2.Vec{X: 0, Y: 0}, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Add(spec, r2.Vec{X: 0.4, Y: 0.12}, math.Pi); err != nil {
		t.Fatal(err)
	}
	a.Velocity[0] = r2.Vec{X: 1}
	a.Velocity[1] = r2.Vec{X: -1}
	InteractAgents(a)

	if a.Force[0].X >= 0 {
		t.Errorf("agent 0 should be repelled, got %v", a.Force[0])
	}
	if a.Torque[0] == 0 && a.Torque[1] == 0 {
		t.Error("off-center collision should produce torque")
	}
}

func TestInteractAgentsNeighborTracking(t *testing.T) {
	params := DefaultParams()
	params.NeighborRadius = 2.0
	a, err := NewAgents(3, ModelCircular, params)
	if err != nil {
		t.Fatal(err)
	}
	spec := testSpec()
	for _, p := range []r2.Vec{{X: 0}, {X: 1}, {X: 10}} {
		if _, err := a.Add(spec, p, 0); err != nil {
			t.Fatal(err)
		}
	}
	InteractAgents(a)

	if got := a.NeighborList(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("agent 0 neighbors = %v, want [1]", got)
	}
	if got := a.NeighborList(2); len(got) != 0 {
		t.Errorf("agent 2 neighbors = %v, want none", got)
	}
}

func TestInteractObstaclesRepelsAndContacts(t *testing.T) {
	a := newTestAgents(t, 1, ModelCircular)
	spec := testSpec()
	if _, err := a.Add(spec, r2.Vec{X: 0, Y: 0.5}, 0); err != nil {
		t.Fatal(err)
	}
	a.Velocity[0] = r2.Vec{Y: -1} // walking into the wall
	wall := []geometry.Segment{{P0: r2.Vec{X: -5, Y: 0}, P1: r2.Vec{X: 5, Y: 0}}}

	InteractObstacles(a, wall)
	if a.Force[0].Y <= 0 {
		t.Errorf("wall should push the agent away, got %v", a.Force[0])
	}

	// overlapping the wall brings the contact force in
	social := a.Force[0]
	a.ResetMotion()
	a.Position[0] = r2.Vec{X: 0, Y: 0.2} // radius 0.255 > 0.2
	InteractObstacles(a, wall)
	if a.Force[0].Y <= social.Y {
		t.Errorf("contact should add to the social push: %v vs %v", a.Force[0], social)
	}
}

func TestInteractObstaclesOutOfSight(t *testing.T) {
	a := newTestAgents(t, 1, ModelCircular)
	if _, err := a.Add(testSpec(), r2.Vec{X: 0, Y: 10}, 0); err != nil {
		t.Fatal(err)
	}
	a.Velocity[0] = r2.Vec{Y: -1}
	InteractObstacles(a, []geometry.Segment{{P0: r2.Vec{X: -5, Y: 0}, P1: r2.Vec{X: 5, Y: 0}}})

	vecClose(t, a.Force[0], r2.Vec{}, 0, "wall beyond sight range")
}

func TestInteractAgentsDeterministicSweep(t *testing.T) {
	build := func() *Agents {
		params := DefaultParams()
		a, err := NewAgents(20, ModelCircular, params)
		if err != nil {
			t.Fatal(err)
		}
		spec := testSpec()
		for k := 0; k < 20; k++ {
			p := r2.Vec{X: float64(k%5) * 0.6, Y: float64(k/5) * 0.6}
			if _, err := a.Add(spec, p, 0); err != nil {
				t.Fatal(err)
			}
			a.Velocity[k] = r2.Vec{X: 1, Y: 0.5}
		}
		return a
	}

	a1 := build()
	a2 := build()
	InteractAgents(a1)
	InteractAgents(a2)
	for k := 0; k < 20; k++ {
		if a1.Force[k] != a2.Force[k] {
			t.Fatalf("sweep not deterministic at agent %d: %v vs %v", k, a1.Force[k], a2.Force[k])
		}
	}
}
