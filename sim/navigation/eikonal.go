package navigation

import (
	"container/heap"
	"math"
)

// Cell states during a fast marching sweep.
const (
	cellFar uint8 = iota
	cellNarrow
	cellFrozen
)

type cellItem struct {
	idx int
	t   float64
}

// cellHeap orders narrow-band cells by arrival time, breaking ties on the
// flat index so sweeps are deterministic.
type cellHeap []cellItem

func (h cellHeap) Len() int { return len(h) }

func (h cellHeap) Less(i, j int) bool {
	if h[i].t != h[j].t {
		return h[i].t < h[j].t
	}
	return h[i].idx < h[j].idx
}

func (h cellHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cellHeap) Push(x any) { *h = append(*h, x.(cellItem)) }

func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// SolveEikonal computes the first arrival time from the source cells to
// every reachable cell of the grid at unit speed, using the fast marching
// method. Blocked cells and cells cut off by them keep +Inf. Sources that
// are out of range or blocked are ignored.
func SolveEikonal(g Grid, sources []int, blocked []bool) *ScalarField {
	f := NewScalarField(g, math.Inf(1))
	state := make([]uint8, g.Cells())

	band := make(cellHeap, 0, len(sources))
	for _, s := range sources {
		if s < 0 || s >= g.Cells() {
			continue
		}
		if blocked != nil && blocked[s] {
			continue
		}
		f.Values[s] = 0
		state[s] = cellNarrow
		band = append(band, cellItem{idx: s, t: 0})
	}
	heap.Init(&band)

	for band.Len() > 0 {
		it := heap.Pop(&band).(cellItem)
		if state[it.idx] == cellFrozen {
			continue
		}
		state[it.idx] = cellFrozen

		ix, iy := g.Coords(it.idx)
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := ix+d[0], iy+d[1]
			if !g.InBounds(nx, ny) {
				continue
			}
			ni := g.Flat(nx, ny)
			if state[ni] == cellFrozen {
				continue
			}
			if blocked != nil && blocked[ni] {
				continue
			}
			t := updateArrival(f, state, g, nx, ny)
			if t < f.Values[ni] {
				f.Values[ni] = t
				state[ni] = cellNarrow
				heap.Push(&band, cellItem{idx: ni, t: t})
			}
		}
	}
	return f
}

// updateArrival solves the upwind quadratic for one cell from its frozen
// neighbors' arrival times.
func updateArrival(f *ScalarField, state []uint8, g Grid, ix, iy int) float64 {
	tx := frozenMin(f, state, g, ix-1, iy, ix+1, iy)
	ty := frozenMin(f, state, g, ix, iy-1, ix, iy+1)
	h := g.Step

	switch {
	case math.IsInf(tx, 1) && math.IsInf(ty, 1):
		return math.Inf(1)
	case math.IsInf(tx, 1):
		return ty + h
	case math.IsInf(ty, 1):
		return tx + h
	}
	if d := tx - ty; math.Abs(d) < h {
		return (tx + ty + math.Sqrt(2*h*h-d*d)) / 2
	}
	return math.Min(tx, ty) + h
}

func frozenMin(f *ScalarField, state []uint8, g Grid, x0, y0, x1, y1 int) float64 {
	t := math.Inf(1)
	if g.InBounds(x0, y0) {
		if i := g.Flat(x0, y0); state[i] == cellFrozen {
			t = f.Values[i]
		}
	}
	if g.InBounds(x1, y1) {
		if i := g.Flat(x1, y1); state[i] == cellFrozen && f.Values[i] < t {
			t = f.Values[i]
		}
	}
	return t
}
