package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collectLine(x0, y0, x1, y1 int) [][2]int {
	var cells [][2]int
	RasterLine(x0, y0, x1, y1, func(ix, iy int) {
		cells = append(cells, [2]int{ix, iy})
	})
	return cells
}

func TestRasterLineAxisAligned(t *testing.T) {
	cells := collectLine(0, 0, 3, 0)
	assert.Equal(t, [][2]int{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, cells)

	cells = collectLine(2, 5, 2, 2)
	assert.Equal(t, [][2]int{{2, 5}, {2, 4}, {2, 3}, {2, 2}}, cells)
}

func TestRasterLineDiagonal(t *testing.T) {
	cells := collectLine(0, 0, 3, 3)
	assert.Equal(t, [][2]int{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, cells)
}

func TestRasterLineEndpoints(t *testing.T) {
	for _, tt := range [][4]int{
		{0, 0, 7, 3},
		{7, 3, 0, 0},
		{-2, 4, 5, -1},
		{3, 3, 3, 3},
	} {
		cells := collectLine(tt[0], tt[1], tt[2], tt[3])
		assert.NotEmpty(t, cells)
		assert.Equal(t, [2]int{tt[0], tt[1]}, cells[0])
		assert.Equal(t, [2]int{tt[2], tt[3]}, cells[len(cells)-1])
	}
}

func TestRasterLineConnected(t *testing.T) {
	// Consecutive cells differ by at most one step in each axis.
	cells := collectLine(0, 0, 11, 4)
	for i := 1; i < len(cells); i++ {
		dx := absInt(cells[i][0] - cells[i-1][0])
		dy := absInt(cells[i][1] - cells[i-1][1])
		if dx > 1 || dy > 1 || dx+dy == 0 {
			t.Fatalf("cells %v and %v are not adjacent", cells[i-1], cells[i])
		}
	}
}
