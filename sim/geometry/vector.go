// Package geometry provides the 2D primitives the simulation core is built
// on: vector helpers over gonum's r2.Vec, wall segments, and polygons.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rotate90 returns v rotated 90 degrees counterclockwise.
func Rotate90(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// Rotate270 returns v rotated 270 degrees counterclockwise (90 clockwise).
func Rotate270(v r2.Vec) r2.Vec {
	return r2.Vec{X: v.Y, Y: -v.X}
}

// UnitVector returns the unit vector pointing at the given angle (radians).
func UnitVector(angle float64) r2.Vec {
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

// AngleOf returns the heading of v in radians, in (-pi, pi].
func AngleOf(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// WrapToPi wraps an angle in radians onto [-pi, pi].
func WrapToPi(rad float64) float64 {
	w := math.Mod(rad, 2*math.Pi)
	if w > math.Pi {
		w -= 2 * math.Pi
	} else if w < -math.Pi {
		w += 2 * math.Pi
	}
	return w
}

// Normalize returns the unit vector colinear to v.
// Unlike r2.Unit it maps the zero vector to zero instead of NaN, which is
// what force kernels need when two centers coincide.
func Normalize(v r2.Vec) r2.Vec {
	l := r2.Norm(v)
	if l == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/l, v)
}

// Truncate limits the magnitude of v to at most limit.
func Truncate(v r2.Vec, limit float64) r2.Vec {
	l := r2.Norm(v)
	if l > limit && l > 0 {
		return r2.Scale(limit/l, v)
	}
	return v
}
