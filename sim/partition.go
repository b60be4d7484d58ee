package sim

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// BlockList is a uniform grid index over agent positions used to reduce
// the pair sweep from all pairs to pairs in neighboring cells. With the
// cell width set to the interaction range, every interacting pair is
// covered by one cell and its forward neighbor stencil.
type BlockList struct {
	cellWidth float64
	origin    r2.Vec
	w, h      int
	starts    []int
	items     []int
}

// forward neighbor stencil; together with in-cell pairs it visits every
// adjacent cell pair exactly once.
var blockStencil = [4][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}}

// NewBlockList indexes the positions of the given agent IDs into cells of
// the given width. IDs keep ascending order within each cell, so sweeps
// are deterministic.
func NewBlockList(ids []int, position []r2.Vec, cellWidth float64) *BlockList {
	b := &BlockList{cellWidth: cellWidth}
	if len(ids) == 0 || cellWidth <= 0 {
		return b
	}

	min := position[ids[0]]
	for _, i := range ids[1:] {
		p := position[i]
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
	}
	b.origin = min

	cellX := make([]int, len(ids))
	cellY := make([]int, len(ids))
	maxX, maxY := 0, 0
	for k, i := range ids {
		cellX[k] = int((position[i].X - min.X) / cellWidth)
		cellY[k] = int((position[i].Y - min.Y) / cellWidth)
		if cellX[k] > maxX {
			maxX = cellX[k]
		}
		if cellY[k] > maxY {
			maxY = cellY[k]
		}
	}
	b.w, b.h = maxX+1, maxY+1

	cells := make([]int, len(ids))
	counts := make([]int, b.w*b.h)
	for k := range cells {
		cells[k] = cellY[k]*b.w + cellX[k]
		counts[cells[k]]++
	}

	b.starts = make([]int, b.w*b.h+1)
	for c, n := range counts {
		b.starts[c+1] = b.starts[c] + n
	}

	b.items = make([]int, len(ids))
	fill := make([]int, b.w*b.h)
	for k, i := range ids {
		c := cells[k]
		b.items[b.starts[c]+fill[c]] = i
		fill[c]++
	}
	return b
}

// cell returns the agent IDs in cell (cx, cy).
func (b *BlockList) cell(cx, cy int) []int {
	c := cy*b.w + cx
	return b.items[b.starts[c]:b.starts[c+1]]
}

// ForEachPair calls fn once for every pair of agents in the same or
// adjacent cells, in a fixed deterministic order with i < j for in-cell
// pairs.
func (b *BlockList) ForEachPair(fn func(i, j int)) {
	for cy := 0; cy < b.h; cy++ {
		for cx := 0; cx < b.w; cx++ {
			here := b.cell(cx, cy)
			if len(here) == 0 {
				continue
			}
			for a := 0; a < len(here)-1; a++ {
				for c := a + 1; c < len(here); c++ {
					fn(here[a], here[c])
				}
			}
			for _, d := range blockStencil {
				nx, ny := cx+d[0], cy+d[1]
				if nx < 0 || nx >= b.w || ny < 0 || ny >= b.h {
					continue
				}
				for _, i := range here {
					for _, j := range b.cell(nx, ny) {
						fn(i, j)
					}
				}
			}
		}
	}
}

// MaxCellCount returns the occupancy of the fullest cell.
func (b *BlockList) MaxCellCount() int {
	max := 0
	for c := 0; c+1 < len(b.starts); c++ {
		if n := b.starts[c+1] - b.starts[c]; n > max {
			max = n
		}
	}
	return max
}

// CellArea returns the area of one cell in square meters.
func (b *BlockList) CellArea() float64 {
	return b.cellWidth * b.cellWidth
}
