package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// DistanceCircleCircle returns the skin-to-skin distance h between two
// circles and the unit normal from circle 1 toward circle 0. h is negative
// when the circles overlap. Coinciding centers yield a zero normal.
func DistanceCircleCircle(x0 r2.Vec, r0 float64, x1 r2.Vec, r1 float64) (float64, r2.Vec) {
	x := r2.Sub(x0, x1)
	d := r2.Norm(x)
	h := d - (r0 + r1)
	if d == 0 {
		return h, r2.Vec{}
	}
	return h, r2.Scale(1/d, x)
}

// DistanceThreeCircle returns the minimal skin-to-skin distance between
// two three-circle agents over all circle pairs, the normal from agent 1
// toward agent 0 at the closest pair, and the moment arms from each
// agent's torso center to the closest surface point. The moment arms give
// the torque contribution of forces applied at the contact.
func DistanceThreeCircle(x0 [3]r2.Vec, r0 [3]float64, x1 [3]r2.Vec, r1 [3]float64) (float64, r2.Vec, r2.Vec, r2.Vec) {
	hMin := math.NaN()
	var normal r2.Vec
	iMin, jMin := 0, 0

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h, n := DistanceCircleCircle(x0[i], r0[i], x1[j], r1[j])
			if math.IsNaN(hMin) || h < hMin {
				hMin = h
				normal = n
				iMin, jMin = i, j
			}
		}
	}

	rMoment0 := r2.Sub(r2.Sub(x0[iMin], r2.Scale(r0[iMin], normal)), x0[0])
	rMoment1 := r2.Sub(r2.Add(x1[jMin], r2.Scale(r1[jMin], normal)), x1[0])
	return hMin, normal, rMoment0, rMoment1
}

// DistanceCircleSegment returns the skin-to-skin distance between a circle
// and a wall segment with the unit normal from the wall toward the circle
// center.
func DistanceCircleSegment(x r2.Vec, r float64, s geometry.Segment) (float64, r2.Vec) {
	d, n := s.DistanceWithNormal(x)
	return d - r, n
}

// DistanceThreeCircleSegment returns the minimal skin-to-skin distance
// between a three-circle agent and a wall segment, the normal at the
// closest circle, and the moment arm from the torso center to the closest
// surface point.
func DistanceThreeCircleSegment(x [3]r2.Vec, r [3]float64, s geometry.Segment) (float64, r2.Vec, r2.Vec) {
	hMin := math.NaN()
	var normal r2.Vec
	iMin := 0

	for i := 0; i < 3; i++ {
		h, n := DistanceCircleSegment(x[i], r[i], s)
		if math.IsNaN(hMin) || h < hMin {
			hMin = h
			normal = n
			iMin = i
		}
	}

	rMoment := r2.Sub(r2.Sub(x[iMin], r2.Scale(r[iMin], normal)), x[0])
	return hMin, normal, rMoment
}
