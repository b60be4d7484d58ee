package sim

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
	"github.com/crowddynamics/crowddynamics/sim/navigation"
)

// Navigation defaults. Step is the grid resolution in meters; radius and
// strength shape the obstacle-avoidance band blended into the guidance
// field near walls.
const (
	DefaultNavStep          = 0.05
	DefaultObstacleRadius   = 0.3
	DefaultObstacleStrength = 0.3
)

// Field is the simulated environment: a domain polygon bounding the world,
// wall segments agents collide with, exit segments agents leave through,
// and spawn polygons agents appear in.
type Field struct {
	Domain    geometry.Polygon
	Obstacles []geometry.Segment
	Exits     []geometry.Segment
	Spawns    []geometry.Polygon
}

// Validate checks the field is usable for a simulation.
func (f *Field) Validate() error {
	if len(f.Domain) < 3 {
		return errors.Errorf("domain polygon has %d vertices, need at least 3", len(f.Domain))
	}
	min, max := f.Domain.Bounds()
	if max.X <= min.X || max.Y <= min.Y {
		return errors.New("domain polygon has no interior")
	}
	if len(f.Exits) == 0 {
		return errors.New("field has no exits")
	}
	for i, e := range f.Exits {
		if e.Length() == 0 {
			return errors.Errorf("exit %d has zero length", i)
		}
	}
	if len(f.Spawns) == 0 {
		return errors.New("field has no spawn areas")
	}
	for i, s := range f.Spawns {
		if len(s) < 3 {
			return errors.Errorf("spawn area %d has %d vertices, need at least 3", i, len(s))
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the domain.
func (f *Field) Bounds() (min, max r2.Vec) {
	return f.Domain.Bounds()
}

// Spawn returns the spawn polygon for the given group index.
func (f *Field) Spawn(i int) (geometry.Polygon, error) {
	if i < 0 || i >= len(f.Spawns) {
		return nil, errors.Errorf("spawn index %d out of range, field has %d spawn areas", i, len(f.Spawns))
	}
	return f.Spawns[i], nil
}

// NavigationPotential discretizes the field onto a grid and solves the
// guidance fields: obstacle cells are blocked, exit cells are targets, and
// the merged direction field steers agents toward exits while bending
// around walls.
func (f *Field) NavigationPotential(step, obstacleRadius, obstacleStrength float64) (*navigation.Potential, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if step <= 0 {
		return nil, errors.Errorf("grid step must be positive, got %v", step)
	}

	min, max := f.Domain.Bounds()
	grid := navigation.NewGrid(min, max, step)

	// everything outside the domain polygon is impassable
	blocked := make([]bool, grid.Cells())
	for i := range blocked {
		blocked[i] = true
	}
	navigation.RasterPolygon(grid, f.Domain, func(idx int) {
		blocked[idx] = false
	})
	for _, w := range f.Obstacles {
		navigation.RasterSegment(grid, w, func(idx int) {
			blocked[idx] = true
		})
	}

	// Exits punch through walls drawn across them, so targets clear the
	// blocked flag instead of skipping it.
	var targets []int
	for _, e := range f.Exits {
		navigation.RasterSegment(grid, e, func(idx int) {
			blocked[idx] = false
			targets = append(targets, idx)
		})
	}

	pot, err := navigation.ComputePotential(grid, targets, blocked, obstacleRadius, obstacleStrength)
	if err != nil {
		return nil, errors.Wrap(err, "computing field potential")
	}
	return pot, nil
}

// ExitDistance returns the shortest distance from p to any exit segment.
func (f *Field) ExitDistance(p r2.Vec) float64 {
	best := -1.0
	for _, e := range f.Exits {
		d, _ := e.DistanceWithNormal(p)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// Evacuated reports whether an agent with the given position and radius
// has reached an exit.
func (f *Field) Evacuated(p r2.Vec, radius float64) bool {
	d := f.ExitDistance(p)
	return d >= 0 && d <= radius
}
