package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/crowddynamics/crowddynamics/sim/geometry"
)

// Scenario presets build common benchmark fields from a handful of
// dimension parameters, so most runs need no inline geometry.
const (
	ScenarioOutdoor = "outdoor"
	ScenarioHallway = "hallway"
	ScenarioRoom    = "room"
)

type scenarioBuilder struct {
	defaults map[string]float64
	build    func(p map[string]float64) (*Field, error)
}

var scenarios = map[string]scenarioBuilder{
	ScenarioOutdoor: {
		defaults: map[string]float64{"width": 20, "height": 20},
		build:    buildOutdoor,
	},
	ScenarioHallway: {
		defaults: map[string]float64{"width": 20, "height": 3},
		build:    buildHallway,
	},
	ScenarioRoom: {
		defaults: map[string]float64{"width": 15, "height": 10, "door_width": 1.2},
		build:    buildRoom,
	},
}

func validScenario(name string) bool {
	_, ok := scenarios[name]
	return ok
}

// ScenarioNames returns the preset names in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScenarioDefaults returns a copy of the preset's parameter defaults.
func ScenarioDefaults(name string) (map[string]float64, error) {
	b, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q; valid: %v", name, ScenarioNames())
	}
	out := make(map[string]float64, len(b.defaults))
	for k, v := range b.defaults {
		out[k] = v
	}
	return out, nil
}

// BuildScenario constructs a preset field. Overrides replace the preset's
// default parameters; unknown parameter names are rejected.
func BuildScenario(name string, overrides map[string]float64) (*Field, error) {
	b, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q; valid: %v", name, ScenarioNames())
	}

	params := make(map[string]float64, len(b.defaults))
	for k, v := range b.defaults {
		params[k] = v
	}
	for k, v := range overrides {
		if _, known := b.defaults[k]; !known {
			valid := make([]string, 0, len(b.defaults))
			for dk := range b.defaults {
				valid = append(valid, dk)
			}
			sort.Strings(valid)
			return nil, fmt.Errorf("scenario %q: unknown parameter %q; valid: %v", name, k, valid)
		}
		if v <= 0 {
			return nil, fmt.Errorf("scenario %q: parameter %q must be positive, got %f", name, k, v)
		}
		params[k] = v
	}
	return b.build(params)
}

func rect(w, h float64) geometry.Polygon {
	return geometry.Polygon{
		{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h},
	}
}

func rectAt(x0, y0, x1, y1 float64) geometry.Polygon {
	return geometry.Polygon{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}
}

func seg(x0, y0, x1, y1 float64) geometry.Segment {
	return geometry.Segment{P0: r2.Vec{X: x0, Y: y0}, P1: r2.Vec{X: x1, Y: y1}}
}

// buildOutdoor is an open rectangle with no walls. Agents start in the
// left half and leave through the entire right edge.
func buildOutdoor(p map[string]float64) (*Field, error) {
	w, h := p["width"], p["height"]
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("outdoor: width and height must be at least 2, got %fx%f", w, h)
	}
	return &Field{
		Domain: rect(w, h),
		Exits:  []geometry.Segment{seg(w, 0, w, h)},
		Spawns: []geometry.Polygon{rectAt(0.5, 0.5, w/2, h-0.5)},
	}, nil
}

// buildHallway is a corridor with solid top and bottom walls, spawning on
// the left and exiting through the open right end.
func buildHallway(p map[string]float64) (*Field, error) {
	w, h := p["width"], p["height"]
	if w < 4 || h < 1.5 {
		return nil, fmt.Errorf("hallway: need width >= 4 and height >= 1.5, got %fx%f", w, h)
	}
	return &Field{
		Domain: rect(w, h),
		Obstacles: []geometry.Segment{
			seg(0, 0, w, 0),
			seg(0, h, w, h),
		},
		Exits:  []geometry.Segment{seg(w, 0, w, h)},
		Spawns: []geometry.Polygon{rectAt(0.5, 0.4, w/5, h-0.4)},
	}, nil
}

// buildRoom is a fully walled rectangle with a door gap centered on the
// right wall. The spawn area covers the left part of the room.
func buildRoom(p map[string]float64) (*Field, error) {
	w, h, door := p["width"], p["height"], p["door_width"]
	if w < 4 || h < 3 {
		return nil, fmt.Errorf("room: need width >= 4 and height >= 3, got %fx%f", w, h)
	}
	if door >= h-1 {
		return nil, fmt.Errorf("room: door_width %f too large for height %f", door, h)
	}
	doorLo := (h - door) / 2
	doorHi := (h + door) / 2
	return &Field{
		Domain: rect(w, h),
		Obstacles: []geometry.Segment{
			seg(0, 0, w, 0),
			seg(0, h, w, h),
			seg(0, 0, 0, h),
			seg(w, 0, w, doorLo),
			seg(w, doorHi, w, h),
		},
		Exits:  []geometry.Segment{seg(w, doorLo, w, doorHi)},
		Spawns: []geometry.Polygon{rectAt(0.5, 0.5, w*0.6, h-0.5)},
	}, nil
}
