package rasterizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collectEdgeCells(ax, ay, bx, by float64, w, h int) [][2]int {
	var cells [][2]int
	edgeCells(nil, ax, ay, bx, by, w, h, func(col, row int) {
		cells = append(cells, [2]int{col, row})
	})
	return cells
}

func TestEdgeCells(t *testing.T) {
	// diagonal through a corner only enters the two cells it splits
	require.ElementsMatch(t, [][2]int{{0, 0}, {1, 1}, {2, 2}}, collectEdgeCells(0, 0, 3, 3, 3, 3))

	// horizontal inside row 1
	require.ElementsMatch(t, [][2]int{{0, 1}, {1, 1}, {2, 1}}, collectEdgeCells(-1, 1.5, 4, 1.5, 3, 3))

	// along a grid line touches no interior
	require.Empty(t, collectEdgeCells(1, 0, 1, 3, 3, 3))
	require.Empty(t, collectEdgeCells(0, 2, 3, 2, 3, 3))

	// a short reach into the next column
	require.ElementsMatch(t, [][2]int{{0, 2}, {1, 1}, {0, 1}}, collectEdgeCells(0, 3, 1.005, 1.5, 3, 3))

	// degenerate and fully outside segments
	require.Empty(t, collectEdgeCells(1.5, 1.5, 1.5, 1.5, 3, 3))
	require.Empty(t, collectEdgeCells(-5, -1, 10, -1, 3, 3))
}
