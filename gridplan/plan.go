package gridplan

import (
	"fmt"
	"math"

	"github.com/royalcat/rgeolattice/geomodel"
)

// Plan derives grid dimensions from an extent and a spacing. Dimensions are
// truncated, so any remainder on the east and south edges is not covered.
func Plan(extent geomodel.Extent, cellSize float64) (geomodel.GridSpec, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		return geomodel.GridSpec{}, fmt.Errorf("%w: cell size must be positive, got %g", geomodel.ErrInvalidParameter, cellSize)
	}
	if err := extent.Validate(); err != nil {
		return geomodel.GridSpec{}, err
	}

	columns, err := cellCount(extent.Width(), cellSize)
	if err != nil {
		return geomodel.GridSpec{}, err
	}
	rows, err := cellCount(extent.Height(), cellSize)
	if err != nil {
		return geomodel.GridSpec{}, err
	}

	return geomodel.GridSpec{
		CellSize: cellSize,
		Columns:  columns,
		Rows:     rows,
	}, nil
}

// PlanLimited is Plan with an upper bound on the number of cells. A limit of
// zero or less disables the check.
func PlanLimited(extent geomodel.Extent, cellSize float64, maxCells int) (geomodel.GridSpec, error) {
	spec, err := Plan(extent, cellSize)
	if err != nil {
		return spec, err
	}
	if maxCells > 0 && spec.Columns > 0 && spec.Rows > maxCells/spec.Columns {
		return geomodel.GridSpec{}, fmt.Errorf("%w: grid of %dx%d cells exceeds limit of %d cells",
			geomodel.ErrInvalidParameter, spec.Columns, spec.Rows, maxCells)
	}
	return spec, nil
}

func cellCount(length, cellSize float64) (int, error) {
	n := math.Floor(length / cellSize)
	if n >= math.MaxInt32 {
		return 0, fmt.Errorf("%w: %g / %g gives too many cells", geomodel.ErrInvalidParameter, length, cellSize)
	}
	return int(n), nil
}
