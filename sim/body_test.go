package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestBodyByName(t *testing.T) {
	for _, name := range BodyNames() {
		if _, err := BodyByName(name); err != nil {
			t.Errorf("BodyByName(%q) failed: %v", name, err)
		}
	}
	if _, err := BodyByName("martian"); err == nil {
		t.Error("expected error for unknown body type")
	}
}

func TestBodyNamesSorted(t *testing.T) {
	names := BodyNames()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
	if len(names) != 5 {
		t.Errorf("expected 5 body classes, got %d", len(names))
	}
}

func TestBodySampleWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b, err := BodyByName("adult")
	if err != nil {
		t.Fatal(err)
	}

	for k := 0; k < 1000; k++ {
		spec := b.Sample(rng)
		if math.Abs(spec.Mass-b.Mass) > b.MassScale {
			t.Fatalf("mass %v outside [%v, %v]", spec.Mass, b.Mass-b.MassScale, b.Mass+b.MassScale)
		}
		if math.Abs(spec.Radius-b.Radius) > b.RadiusScale {
			t.Fatalf("radius %v outside bound", spec.Radius)
		}
		if math.Abs(spec.TargetVelocity-b.Velocity) > b.VelocityScale {
			t.Fatalf("target velocity %v outside bound", spec.TargetVelocity)
		}
		if spec.InertiaRot <= 0 {
			t.Fatalf("inertia must be positive, got %v", spec.InertiaRot)
		}
	}
}

func TestBodySampleThreeCircleGeometry(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	b, _ := BodyByName("adult")
	spec := b.Sample(rng)

	// shoulder circles must stay inside the full radius
	if spec.TorsoShoulder+spec.RadiusShoulder > spec.Radius+1e-12 {
		t.Errorf("shoulders poke out of the bounding circle: offset %v + r %v > %v",
			spec.TorsoShoulder, spec.RadiusShoulder, spec.Radius)
	}
	if spec.RadiusTorso >= spec.Radius {
		t.Errorf("torso radius %v must be below the bounding radius %v", spec.RadiusTorso, spec.Radius)
	}
}

func TestBodySampleScalesInertia(t *testing.T) {
	heavy := Body{Mass: 147, Radius: 0.255, RatioTorso: 0.6, RatioShoulder: 0.4, RatioTS: 0.6, Velocity: 1}
	light := Body{Mass: 73.5, Radius: 0.255, RatioTorso: 0.6, RatioShoulder: 0.4, RatioTS: 0.6, Velocity: 1}

	rng := rand.New(rand.NewSource(3))
	hi := heavy.Sample(rng).InertiaRot
	lo := light.Sample(rng).InertiaRot
	if math.Abs(hi-2*lo) > 1e-9 {
		t.Errorf("inertia should scale linearly with mass: %v vs %v", hi, lo)
	}
}
