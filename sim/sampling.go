package sim

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// TruncNorm samples a symmetric truncated normal around loc. The spread is
// an absolute bound: samples land in [loc-absScale, loc+absScale], with the
// standard deviation set to a third of the bound.
func TruncNorm(rng *rand.Rand, loc, absScale float64) float64 {
	if absScale == 0 {
		return loc
	}
	for {
		x := rng.NormFloat64()
		if math.Abs(x) <= 3 {
			return loc + x*absScale/3
		}
	}
}

// truncatedNormal samples N(0, sigma) truncated to three standard
// deviations.
func truncatedNormal(rng *rand.Rand, sigma float64) float64 {
	if sigma == 0 {
		return 0
	}
	for {
		x := rng.NormFloat64()
		if math.Abs(x) <= 3 {
			return x * sigma
		}
	}
}

// truncatedHalfNormal samples |N(0, sigma)| truncated to three standard
// deviations. Used for force magnitudes, which cannot be negative.
func truncatedHalfNormal(rng *rand.Rand, sigma float64) float64 {
	return math.Abs(truncatedNormal(rng, sigma))
}

// RandomUnitVector returns a unit vector with uniformly distributed
// direction.
func RandomUnitVector(rng *rand.Rand) r2.Vec {
	return geometry.UnitVector(rng.Float64() * 2 * math.Pi)
}

// PlacePositions draws non-overlapping positions inside the area polygon
// for circles of the given radii. Candidates are rejected when they
// overlap a previously placed circle, one of the existing circles, or come
// closer to an obstacle than their radius. Placement is Monte Carlo with a
// total attempt budget of 100 per circle; exceeding it returns the
// positions placed so far along with an error, which usually means the
// area is too crowded to fit the full request.
func PlacePositions(rng *rand.Rand, area geometry.Polygon, radii []float64,
	obstacles []geometry.Segment, existing []r2.Vec, existingRadii []float64) ([]r2.Vec, error) {

	if len(area) < 3 {
		return nil, fmt.Errorf("placement: spawn area needs at least 3 vertices, got %d", len(area))
	}
	min, max := area.Bounds()
	span := r2.Sub(max, min)
	if span.X <= 0 || span.Y <= 0 {
		return nil, fmt.Errorf("placement: spawn area has no interior")
	}

	placed := make([]r2.Vec, 0, len(radii))
	maxAttempts := 100 * len(radii)
	attempts := 0

	for len(placed) < len(radii) {
		if attempts >= maxAttempts {
			return placed, fmt.Errorf("placement: attempt limit %d reached after placing %d of %d agents",
				maxAttempts, len(placed), len(radii))
		}
		attempts++

		pos := r2.Vec{
			X: min.X + rng.Float64()*span.X,
			Y: min.Y + rng.Float64()*span.Y,
		}
		if !area.Contains(pos) {
			continue
		}

		r := radii[len(placed)]
		if overlapsAny(pos, r, placed, radii) ||
			overlapsAny(pos, r, existing, existingRadii) ||
			nearObstacle(pos, r, obstacles) {
			continue
		}
		placed = append(placed, pos)
	}
	return placed, nil
}

func overlapsAny(pos r2.Vec, r float64, others []r2.Vec, radii []float64) bool {
	for k, o := range others {
		if r2.Norm(r2.Sub(pos, o)) < r+radii[k] {
			return true
		}
	}
	return false
}

func nearObstacle(pos r2.Vec, r float64, obstacles []geometry.Segment) bool {
	for _, s := range obstacles {
		if d, _ := s.DistanceWithNormal(pos); d <= r {
			return true
		}
	}
	return false
}
