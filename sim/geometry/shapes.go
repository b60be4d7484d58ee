package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is a finite line segment, used for walls and exit lines.
type Segment struct {
	P0 r2.Vec
	P1 r2.Vec
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return r2.Norm(r2.Sub(s.P1, s.P0))
}

// Tangent returns the unit vector from P0 toward P1, or zero for a
// degenerate segment.
func (s Segment) Tangent() r2.Vec {
	return Normalize(r2.Sub(s.P1, s.P0))
}

// Normal returns the unit normal of the segment, the tangent rotated 90
// degrees counterclockwise.
func (s Segment) Normal() r2.Vec {
	return Rotate90(s.Tangent())
}

// Midpoint returns the point halfway between the endpoints.
func (s Segment) Midpoint() r2.Vec {
	return r2.Scale(0.5, r2.Add(s.P0, s.P1))
}

// Lerp returns the point P0 + t*(P1-P0). t is not clamped.
func (s Segment) Lerp(t float64) r2.Vec {
	return r2.Add(s.P0, r2.Scale(t, r2.Sub(s.P1, s.P0)))
}

// DistanceWithNormal returns the distance from x to the closest point of the
// segment together with the unit vector from that point toward x. Points
// beyond either endpoint measure against the endpoint itself, so the
// distance field is continuous around segment tips.
func (s Segment) DistanceWithNormal(x r2.Vec) (float64, r2.Vec) {
	d := r2.Sub(s.P1, s.P0)
	lw := r2.Norm(d)
	if lw == 0 {
		q := r2.Sub(x, s.P0)
		return r2.Norm(q), Normalize(q)
	}
	t := r2.Scale(1/lw, d)

	q0 := r2.Sub(x, s.P0)
	q1 := r2.Sub(x, s.P1)
	lt := -r2.Dot(t, q1) - r2.Dot(t, q0)

	switch {
	case lt > lw:
		return r2.Norm(q0), Normalize(q0)
	case lt < -lw:
		return r2.Norm(q1), Normalize(q1)
	default:
		n := Rotate90(t)
		ln := r2.Dot(n, q0)
		if ln < 0 {
			return -ln, r2.Scale(-1, n)
		}
		return ln, n
	}
}

// Polygon is a simple polygon given by its vertices in order. The closing
// edge from the last vertex back to the first is implicit.
type Polygon []r2.Vec

// Bounds returns the axis-aligned bounding box of the polygon.
func (p Polygon) Bounds() (min, max r2.Vec) {
	if len(p) == 0 {
		return r2.Vec{}, r2.Vec{}
	}
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// Contains reports whether x lies inside the polygon, using the even-odd
// ray casting rule. Points exactly on an edge may land on either side.
func (p Polygon) Contains(x r2.Vec) bool {
	inside := false
	n := len(p)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := p[i], p[j]
		if (pi.Y > x.Y) != (pj.Y > x.Y) {
			xc := pi.X + (x.Y-pi.Y)*(pj.X-pi.X)/(pj.Y-pi.Y)
			if x.X < xc {
				inside = !inside
			}
		}
	}
	return inside
}

// Edges returns the polygon's edges as segments, including the closing edge.
func (p Polygon) Edges() []Segment {
	if len(p) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(p))
	for i := range p {
		j := (i + 1) % len(p)
		out = append(out, Segment{P0: p[i], P1: p[j]})
	}
	return out
}

// Centroid returns the arithmetic mean of the vertices.
func (p Polygon) Centroid() r2.Vec {
	var c r2.Vec
	if len(p) == 0 {
		return c
	}
	for _, v := range p {
		c = r2.Add(c, v)
	}
	return r2.Scale(1/float64(len(p)), c)
}
