package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestRotations(t *testing.T) {
	v := r2.Vec{X: 1, Y: 2}

	assert.Equal(t, r2.Vec{X: -2, Y: 1}, Rotate90(v))
	assert.Equal(t, r2.Vec{X: 2, Y: -1}, Rotate270(v))

	// Rotating by 90 four times is the identity.
	assert.Equal(t, v, Rotate90(Rotate90(Rotate90(Rotate90(v)))))
	// Rotate270 undoes Rotate90.
	assert.Equal(t, v, Rotate270(Rotate90(v)))
}

func TestUnitVectorAngleRoundTrip(t *testing.T) {
	for _, angle := range []float64{0, 0.5, math.Pi / 2, 3, -3, -math.Pi / 2} {
		v := UnitVector(angle)
		assert.InDelta(t, 1.0, r2.Norm(v), 1e-12)
		assert.InDelta(t, angle, AngleOf(v), 1e-12, "angle %v", angle)
	}
}

func TestWrapToPi(t *testing.T) {
	tests := []struct {
		name string
		rad  float64
		want float64
	}{
		{name: "zero", rad: 0, want: 0},
		{name: "already in range", rad: 1.5, want: 1.5},
		{name: "negative in range", rad: -1.5, want: -1.5},
		{name: "pi", rad: math.Pi, want: math.Pi},
		{name: "above pi", rad: math.Pi + 0.5, want: -math.Pi + 0.5},
		{name: "below minus pi", rad: -math.Pi - 0.5, want: math.Pi - 0.5},
		{name: "full turn", rad: 2 * math.Pi, want: 0},
		{name: "two and a half turns", rad: 5 * math.Pi, want: math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WrapToPi(tt.rad), 1e-12)
		})
	}
}

func TestWrapToPiRange(t *testing.T) {
	for rad := -20.0; rad <= 20.0; rad += 0.1 {
		w := WrapToPi(rad)
		if w < -math.Pi || w > math.Pi {
			t.Fatalf("WrapToPi(%v) = %v outside [-pi, pi]", rad, w)
		}
		// Wrapping must preserve the angle modulo a full turn.
		if d := math.Mod(rad-w, 2*math.Pi); math.Abs(math.Remainder(d, 2*math.Pi)) > 1e-9 {
			t.Fatalf("WrapToPi(%v) = %v changed the angle", rad, w)
		}
	}
}

func TestNormalize(t *testing.T) {
	v := Normalize(r2.Vec{X: 3, Y: 4})
	assert.InDelta(t, 0.6, v.X, 1e-12)
	assert.InDelta(t, 0.8, v.Y, 1e-12)

	// The zero vector must map to zero, not NaN.
	z := Normalize(r2.Vec{})
	assert.Equal(t, r2.Vec{}, z)
}

func TestTruncate(t *testing.T) {
	v := r2.Vec{X: 3, Y: 4}

	// Below the limit the vector passes through unchanged.
	assert.Equal(t, v, Truncate(v, 10))

	// Above the limit the direction is kept and the magnitude clamped.
	w := Truncate(v, 1)
	assert.InDelta(t, 1.0, r2.Norm(w), 1e-12)
	assert.InDelta(t, AngleOf(v), AngleOf(w), 1e-12)

	assert.Equal(t, r2.Vec{}, Truncate(r2.Vec{}, 1))
}
