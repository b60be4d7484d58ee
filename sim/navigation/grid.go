// Package navigation precomputes the guidance fields agents steer by:
// distance maps solved with the fast marching method and the unit
// direction fields derived from them.
package navigation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// Grid is a uniform lattice of sample points covering a rectangular region
// of the world. Point (0,0) sits at Min and samples are Step apart.
type Grid struct {
	Min  r2.Vec
	Step float64
	W, H int
}

// NewGrid returns a grid whose samples cover the box from min to max with
// the given spacing. Both box edges are included.
func NewGrid(min, max r2.Vec, step float64) Grid {
	w := int(math.Ceil((max.X-min.X)/step)) + 1
	h := int(math.Ceil((max.Y-min.Y)/step)) + 1
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return Grid{Min: min, Step: step, W: w, H: h}
}

// Cells returns the total number of sample points.
func (g Grid) Cells() int {
	return g.W * g.H
}

// InBounds reports whether the cell coordinates lie on the grid.
func (g Grid) InBounds(ix, iy int) bool {
	return ix >= 0 && ix < g.W && iy >= 0 && iy < g.H
}

// Flat converts cell coordinates to a flat index.
func (g Grid) Flat(ix, iy int) int {
	return iy*g.W + ix
}

// Coords converts a flat index back to cell coordinates.
func (g Grid) Coords(idx int) (ix, iy int) {
	return idx % g.W, idx / g.W
}

// Index returns the cell nearest to the world position p, clamped onto the
// grid. Positions outside the covered region map to the border cell, so
// sampling never faults even when an agent strays out of bounds.
func (g Grid) Index(p r2.Vec) (ix, iy int) {
	ix = int(math.Round((p.X - g.Min.X) / g.Step))
	iy = int(math.Round((p.Y - g.Min.Y) / g.Step))
	if ix < 0 {
		ix = 0
	} else if ix >= g.W {
		ix = g.W - 1
	}
	if iy < 0 {
		iy = 0
	} else if iy >= g.H {
		iy = g.H - 1
	}
	return ix, iy
}

// Point returns the world position of the given cell.
func (g Grid) Point(ix, iy int) r2.Vec {
	return r2.Vec{
		X: g.Min.X + float64(ix)*g.Step,
		Y: g.Min.Y + float64(iy)*g.Step,
	}
}

// ScalarField stores one value per grid cell.
type ScalarField struct {
	Grid   Grid
	Values []float64
}

// NewScalarField returns a field over g with every cell set to fill.
func NewScalarField(g Grid, fill float64) *ScalarField {
	f := &ScalarField{Grid: g, Values: make([]float64, g.Cells())}
	for i := range f.Values {
		f.Values[i] = fill
	}
	return f
}

// At returns the value at the given cell.
func (f *ScalarField) At(ix, iy int) float64 {
	return f.Values[f.Grid.Flat(ix, iy)]
}

// Set stores a value at the given cell.
func (f *ScalarField) Set(ix, iy int, v float64) {
	f.Values[f.Grid.Flat(ix, iy)] = v
}

// Sample returns the value of the cell nearest to the world position p.
func (f *ScalarField) Sample(p r2.Vec) float64 {
	ix, iy := f.Grid.Index(p)
	return f.At(ix, iy)
}

// MinMax returns the smallest and largest finite values of the field.
// It returns zeros if the field holds no finite value.
func (f *ScalarField) MinMax() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	found := false
	for _, v := range f.Values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		found = true
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if !found {
		return 0, 0
	}
	return min, max
}

// VectorField stores one vector per grid cell.
type VectorField struct {
	Grid   Grid
	Values []r2.Vec
}

// NewVectorField returns a zero vector field over g.
func NewVectorField(g Grid) *VectorField {
	return &VectorField{Grid: g, Values: make([]r2.Vec, g.Cells())}
}

// At returns the vector at the given cell.
func (f *VectorField) At(ix, iy int) r2.Vec {
	return f.Values[f.Grid.Flat(ix, iy)]
}

// Set stores a vector at the given cell.
func (f *VectorField) Set(ix, iy int, v r2.Vec) {
	f.Values[f.Grid.Flat(ix, iy)] = v
}

// Sample returns the vector of the cell nearest to the world position p.
func (f *VectorField) Sample(p r2.Vec) r2.Vec {
	ix, iy := f.Grid.Index(p)
	return f.At(ix, iy)
}

// RasterSegment marks every cell crossed by the segment, calling set with
// flat cell indices.
func RasterSegment(g Grid, s geometry.Segment, set func(idx int)) {
	x0, y0 := g.Index(s.P0)
	x1, y1 := g.Index(s.P1)
	geometry.RasterLine(x0, y0, x1, y1, func(ix, iy int) {
		set(g.Flat(ix, iy))
	})
}

// RasterPolygon marks every cell whose sample point lies inside the
// polygon, calling set with flat cell indices.
func RasterPolygon(g Grid, p geometry.Polygon, set func(idx int)) {
	min, max := p.Bounds()
	x0, y0 := g.Index(min)
	x1, y1 := g.Index(max)
	for iy := y0; iy <= y1; iy++ {
		for ix := x0; ix <= x1; ix++ {
			if p.Contains(g.Point(ix, iy)) {
				set(g.Flat(ix, iy))
			}
		}
	}
}
