// Package plotting renders simulation output with gonum/plot: agent
// trajectories over the field geometry, and the navigation fields as
// heat maps.
package plotting

import (
	"image/color"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/crowddynamics/crowddynamics/sim"
	"github.com/crowddynamics/crowddynamics/sim/geometry"
	"github.com/crowddynamics/crowddynamics/sim/navigation"
)

var (
	wallColor = color.RGBA{A: 255}
	exitColor = color.RGBA{G: 160, A: 255}
)

// Trajectories plots the path of every agent across the recorded frames,
// with the field's walls and exits drawn underneath. field may be nil to
// plot bare paths.
func Trajectories(frames []*sim.Frame, field *sim.Field) (*plot.Plot, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to plot")
	}

	p := plot.New()
	p.Title.Text = "Trajectories"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	if field != nil {
		for _, w := range field.Obstacles {
			if err := addSegment(p, w, wallColor, vg.Points(2)); err != nil {
				return nil, err
			}
		}
		for _, e := range field.Exits {
			if err := addSegment(p, e, exitColor, vg.Points(3)); err != nil {
				return nil, err
			}
		}
		min, max := field.Bounds()
		p.X.Min, p.X.Max = min.X, max.X
		p.Y.Min, p.Y.Max = min.Y, max.Y
	}

	paths := make(map[int]plotter.XYs)
	for _, f := range frames {
		for k, id := range f.IDs {
			paths[id] = append(paths[id], plotter.XY{X: f.X[k], Y: f.Y[k]})
		}
	}
	ids := make([]int, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		line, err := plotter.NewLine(paths[id])
		if err != nil {
			return nil, errors.Wrapf(err, "building path of agent %d", id)
		}
		line.Color = plotutil.Color(id)
		p.Add(line)
	}
	return p, nil
}

func addSegment(p *plot.Plot, s geometry.Segment, c color.Color, width vg.Length) error {
	line, err := plotter.NewLine(plotter.XYs{
		{X: s.P0.X, Y: s.P0.Y},
		{X: s.P1.X, Y: s.P1.Y},
	})
	if err != nil {
		return errors.Wrap(err, "building segment line")
	}
	line.Color = c
	line.Width = width
	p.Add(line)
	return nil
}

// scalarGrid adapts a navigation field to the heat map's grid interface.
// Unreachable cells (+Inf) render at the hottest finite value so walls and
// walled-off pockets stay visible instead of breaking the color scale.
type scalarGrid struct {
	field *navigation.ScalarField
	max   float64
}

func (g scalarGrid) Dims() (c, r int) { return g.field.Grid.W, g.field.Grid.H }
func (g scalarGrid) X(c int) float64  { return g.field.Grid.Point(c, 0).X }
func (g scalarGrid) Y(r int) float64  { return g.field.Grid.Point(0, r).Y }

func (g scalarGrid) Z(c, r int) float64 {
	v := g.field.At(c, r)
	if math.IsInf(v, 1) || v > g.max {
		return g.max
	}
	return v
}

// FieldHeatMap renders a scalar navigation field, typically the distance
// to the nearest exit, as a heat map.
func FieldHeatMap(f *navigation.ScalarField, title string) (*plot.Plot, error) {
	if f == nil || len(f.Values) == 0 {
		return nil, errors.New("no field to plot")
	}
	_, max := f.MinMax()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	pal := moreland.SmoothBlueRed().Palette(255)
	p.Add(plotter.NewHeatMap(scalarGrid{field: f, max: max}, pal))
	return p, nil
}

// SavePNG writes the plot as a PNG sized for inspection.
func SavePNG(p *plot.Plot, path string) error {
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving plot to %s", path)
	}
	return nil
}
