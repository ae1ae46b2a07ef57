package rasterizer

import (
	"math"
	"slices"
)

// edgeCells calls burn for every cell of a w x h grid whose open interior the
// segment a-b crosses, in pixel coordinates. Segments running along a grid
// line burn nothing. ts is scratch space and is returned for reuse.
func edgeCells(ts []float64, ax, ay, bx, by float64, w, h int, burn func(col, row int)) []float64 {
	if ax == bx && ay == by {
		return ts
	}

	ts = append(ts[:0], 0, 1)
	ts = appendCrossings(ts, ax, bx, w)
	ts = appendCrossings(ts, ay, by, h)
	slices.Sort(ts)

	for i := 1; i < len(ts); i++ {
		t0, t1 := ts[i-1], ts[i]
		if t1 <= t0 {
			continue
		}
		// between two crossings the segment stays in one cell
		t := (t0 + t1) / 2
		x, y := ax+(bx-ax)*t, ay+(by-ay)*t
		if x <= 0 || y <= 0 || x >= float64(w) || y >= float64(h) {
			continue
		}
		if x == math.Trunc(x) || y == math.Trunc(y) {
			continue
		}
		burn(int(x), int(y))
	}
	return ts
}

// appendCrossings adds the segment parameters where the coordinate going from
// a to b passes an integer grid line within [0, n].
func appendCrossings(ts []float64, a, b float64, n int) []float64 {
	if a == b {
		return ts
	}
	first := max(math.Ceil(min(a, b)), 0)
	last := min(math.Floor(max(a, b)), float64(n))
	for v := first; v <= last; v++ {
		ts = append(ts, (v-a)/(b-a))
	}
	return ts
}
