package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

func vecClose(t *testing.T, got, want r2.Vec, tol float64, msg string) {
	t.Helper()
	if math.Abs(got.X-want.X) > tol || math.Abs(got.Y-want.Y) > tol {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func TestDistanceCircleCircle(t *testing.T) {
	tests := []struct {
		name  string
		x0    r2.Vec
		r0    float64
		x1    r2.Vec
		r1    float64
		wantH float64
		wantN r2.Vec
	}{
		{"separated", r2.Vec{X: 3, Y: 0}, 1, r2.Vec{}, 1, 1, r2.Vec{X: 1, Y: 0}},
		{"touching", r2.Vec{X: 2, Y: 0}, 1, r2.Vec{}, 1, 0, r2.Vec{X: 1, Y: 0}},
		{"overlapping", r2.Vec{X: 1.5, Y: 0}, 1, r2.Vec{}, 1, -0.5, r2.Vec{X: 1, Y: 0}},
		{"diagonal", r2.Vec{X: 3, Y: 4}, 1, r2.Vec{}, 2, 2, r2.Vec{X: 0.6, Y: 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, n := DistanceCircleCircle(tt.x0, tt.r0, tt.x1, tt.r1)
			if math.Abs(h-tt.wantH) > 1e-12 {
				t.Errorf("h = %v, want %v", h, tt.wantH)
			}
			vecClose(t, n, tt.wantN, 1e-12, "normal")
		})
	}
}

func TestDistanceCircleCircle_CoincidentCenters(t *testing.T) {
	h, n := DistanceCircleCircle(r2.Vec{X: 1, Y: 1}, 0.3, r2.Vec{X: 1, Y: 1}, 0.2)
	if h != -0.5 {
		t.Errorf("h = %v, want -0.5", h)
	}
	if n != (r2.Vec{}) {
		t.Errorf("normal = %v, want zero for coincident centers", n)
	}
}

func TestDistanceThreeCircle_TorsoPairClosest(t *testing.T) {
	// Two agents side by side, shoulders offset along y. The big torso
	// circles are the closest pair.
	x0 := [3]r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 0.15}, {X: 0, Y: -0.15}}
	r0 := [3]float64{0.25, 0.15, 0.15}
	x1 := [3]r2.Vec{{X: 1, Y: 0}, {X: 1, Y: 0.15}, {X: 1, Y: -0.15}}
	r1 := [3]float64{0.25, 0.15, 0.15}

	h, n, rm0, rm1 := DistanceThreeCircle(x1, r1, x0, r0)

	if math.Abs(h-0.5) > 1e-12 {
		t.Errorf("h = %v, want 0.5", h)
	}
	// normal points from agent 0 toward agent 1
	vecClose(t, n, r2.Vec{X: 1, Y: 0}, 1e-12, "normal")
	// moment arms run from each torso center to its contact point
	vecClose(t, rm0, r2.Vec{X: -0.25, Y: 0}, 1e-12, "moment arm 0")
	vecClose(t, rm1, r2.Vec{X: 0.25, Y: 0}, 1e-12, "moment arm 1")
}

func TestDistanceThreeCircle_ShoulderPairClosest(t *testing.T) {
	// Shrunken torsos, big shoulders: the shoulder pair wins and the
	// moment arm points to the shoulder contact, not the torso.
	x0 := [3]r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 0.15}, {X: 0, Y: -0.15}}
	r0 := [3]float64{0.1, 0.2, 0.2}
	x1 := [3]r2.Vec{{X: 1, Y: 0}, {X: 1, Y: 0.15}, {X: 1, Y: -0.15}}
	r1 := [3]float64{0.1, 0.2, 0.2}

	h, n, rm0, _ := DistanceThreeCircle(x0, r0, x1, r1)

	if math.Abs(h-0.6) > 1e-12 {
		t.Errorf("h = %v, want 0.6 (shoulder pair)", h)
	}
	vecClose(t, n, r2.Vec{X: -1, Y: 0}, 1e-12, "normal")
	vecClose(t, rm0, r2.Vec{X: 0.2, Y: 0.15}, 1e-12, "moment arm to shoulder contact")
}

func TestDistanceCircleSegment(t *testing.T) {
	wall := geometry.Segment{P0: r2.Vec{X: -5, Y: 0}, P1: r2.Vec{X: 5, Y: 0}}

	h, n := DistanceCircleSegment(r2.Vec{X: 0, Y: 1}, 0.3, wall)
	if math.Abs(h-0.7) > 1e-12 {
		t.Errorf("h = %v, want 0.7", h)
	}
	vecClose(t, n, r2.Vec{X: 0, Y: 1}, 1e-12, "normal")

	// overlap reported as negative h
	h, _ = DistanceCircleSegment(r2.Vec{X: 0, Y: 0.2}, 0.3, wall)
	if math.Abs(h+0.1) > 1e-12 {
		t.Errorf("h = %v, want -0.1", h)
	}
}

func TestDistanceCircleSegment_BeyondEndpoint(t *testing.T) {
	wall := geometry.Segment{P0: r2.Vec{X: -5, Y: 0}, P1: r2.Vec{X: 5, Y: 0}}

	x := r2.Vec{X: 6, Y: 0.5}
	h, n := DistanceCircleSegment(x, 0.3, wall)

	d := math.Hypot(1, 0.5)
	if math.Abs(h-(d-0.3)) > 1e-12 {
		t.Errorf("h = %v, want %v", h, d-0.3)
	}
	vecClose(t, n, r2.Vec{X: 1 / d, Y: 0.5 / d}, 1e-12, "endpoint normal")
}

func TestDistanceThreeCircleSegment(t *testing.T) {
	wall := geometry.Segment{P0: r2.Vec{X: -5, Y: 0}, P1: r2.Vec{X: 5, Y: 0}}

	// upright agent: torso hangs lowest
	x := [3]r2.Vec{{X: 0, Y: 1}, {X: -0.15, Y: 1}, {X: 0.15, Y: 1}}
	r := [3]float64{0.25, 0.15, 0.15}

	h, n, rm := DistanceThreeCircleSegment(x, r, wall)

	if math.Abs(h-0.75) > 1e-12 {
		t.Errorf("h = %v, want 0.75", h)
	}
	vecClose(t, n, r2.Vec{X: 0, Y: 1}, 1e-12, "normal")
	vecClose(t, rm, r2.Vec{X: 0, Y: -0.25}, 1e-12, "moment arm")
}

func TestDistanceThreeCircleSegment_LeaningShoulderClosest(t *testing.T) {
	wall := geometry.Segment{P0: r2.Vec{X: -5, Y: 0}, P1: r2.Vec{X: 5, Y: 0}}

	// one shoulder dips toward the wall
	x := [3]r2.Vec{{X: 0, Y: 1}, {X: -0.1, Y: 0.8}, {X: 0.1, Y: 1.1}}
	r := [3]float64{0.25, 0.15, 0.15}

	h, _, rm := DistanceThreeCircleSegment(x, r, wall)

	if math.Abs(h-0.65) > 1e-12 {
		t.Errorf("h = %v, want 0.65 (dipped shoulder)", h)
	}
	// arm from torso center to the shoulder's contact point
	vecClose(t, rm, r2.Vec{X: -0.1, Y: -0.35}, 1e-12, "moment arm")
}
