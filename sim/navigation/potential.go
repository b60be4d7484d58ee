package navigation

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// DistanceMap returns the shortest travel distance from every free cell to
// the nearest source cell, routed around blocked cells.
func DistanceMap(g Grid, sources []int, blocked []bool) *ScalarField {
	return SolveEikonal(g, sources, blocked)
}

// DirectionMap derives the unit direction of steepest descent of a
// distance map, the direction an agent should walk to reach the sources.
// Cells with no finite neighbors get a zero vector.
func DirectionMap(d *ScalarField) *VectorField {
	g := d.Grid
	out := NewVectorField(g)
	for iy := 0; iy < g.H; iy++ {
		for ix := 0; ix < g.W; ix++ {
			if math.IsInf(d.At(ix, iy), 1) {
				continue
			}
			gx := gradientAxis(d, ix, iy, 1, 0)
			gy := gradientAxis(d, ix, iy, 0, 1)
			out.Set(ix, iy, geometry.Normalize(r2.Vec{X: -gx, Y: -gy}))
		}
	}
	return out
}

// gradientAxis estimates the partial derivative along one axis with a
// central difference, falling back to one-sided differences when a
// neighbor is off-grid or unreachable.
func gradientAxis(d *ScalarField, ix, iy, dx, dy int) float64 {
	g := d.Grid
	c := d.At(ix, iy)

	lo, hasLo := math.Inf(1), false
	if g.InBounds(ix-dx, iy-dy) {
		if v := d.At(ix-dx, iy-dy); !math.IsInf(v, 1) {
			lo, hasLo = v, true
		}
	}
	hi, hasHi := math.Inf(1), false
	if g.InBounds(ix+dx, iy+dy) {
		if v := d.At(ix+dx, iy+dy); !math.IsInf(v, 1) {
			hi, hasHi = v, true
		}
	}

	switch {
	case hasLo && hasHi:
		return (hi - lo) / (2 * g.Step)
	case hasHi:
		return (hi - c) / g.Step
	case hasLo:
		return (c - lo) / g.Step
	default:
		return 0
	}
}

// MergeDirectionMaps blends the exit directions with the directions away
// from obstacles inside a band around the obstacles. The blend weight
// decays exponentially with clearance: right at an obstacle agents are
// steered straight away from it, at the band's edge almost purely toward
// the exits. strength must be in (0, 1); smaller values fade the obstacle
// influence faster.
func MergeDirectionMaps(toTarget, toObstacle *VectorField, obstacleDist *ScalarField, radius, strength float64) *VectorField {
	g := toTarget.Grid
	out := NewVectorField(g)
	band := 1.1 * radius
	for i, dir := range toTarget.Values {
		d := obstacleDist.Values[i]
		if math.IsInf(d, 1) || d >= band {
			out.Values[i] = dir
			continue
		}
		k := math.Pow(strength, d/radius)
		away := r2.Scale(-k, toObstacle.Values[i])
		out.Values[i] = geometry.Normalize(r2.Add(away, r2.Scale(1-k, dir)))
	}
	return out
}

// Potential is the precomputed steering data for one scenario: the travel
// distance to the nearest exit and the unit direction to walk, adjusted to
// keep clear of obstacles.
type Potential struct {
	Distance  *ScalarField
	Direction *VectorField
	Clearance *ScalarField
}

// ComputePotential solves the guidance fields for a scenario whose
// geometry has been rasterized onto g. targets holds the flat indices of
// exit cells, blocked marks obstacle cells. radius and strength control
// the obstacle avoidance band as in MergeDirectionMaps.
func ComputePotential(g Grid, targets []int, blocked []bool, radius, strength float64) (*Potential, error) {
	if len(targets) == 0 {
		return nil, errors.New("navigation: no target cells")
	}
	if radius <= 0 {
		return nil, errors.Errorf("navigation: obstacle radius %v must be positive", radius)
	}
	if strength <= 0 || strength >= 1 {
		return nil, errors.Errorf("navigation: obstacle strength %v must be in (0, 1)", strength)
	}

	dist := DistanceMap(g, targets, blocked)
	dirTarget := DirectionMap(dist)

	var obstacles []int
	for i, b := range blocked {
		if b {
			obstacles = append(obstacles, i)
		}
	}

	clearance := NewScalarField(g, math.Inf(1))
	direction := dirTarget
	if len(obstacles) > 0 {
		clearance = DistanceMap(g, obstacles, nil)
		dirObstacle := DirectionMap(clearance)
		direction = MergeDirectionMaps(dirTarget, dirObstacle, clearance, radius, strength)
	}

	return &Potential{
		Distance:  dist,
		Direction: direction,
		Clearance: clearance,
	}, nil
}
