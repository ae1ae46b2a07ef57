package gridplan_test

import (
	"errors"
	"math"
	"testing"

	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/gridplan"
	"github.com/stretchr/testify/require"
)

func TestPlanTruncates(t *testing.T) {
	cases := []struct {
		name          string
		extent        geomodel.Extent
		cellSize      float64
		columns, rows int
	}{
		{"exact", geomodel.Extent{XMin: 0, XMax: 30, YMin: 0, YMax: 30}, 10, 3, 3},
		{"remainder dropped", geomodel.Extent{XMin: 0, XMax: 105, YMin: 0, YMax: 59.9}, 10, 10, 5},
		{"narrower than cell", geomodel.Extent{XMin: 0, XMax: 5, YMin: 0, YMax: 40}, 10, 0, 4},
		{"offset extent", geomodel.Extent{XMin: 500010, XMax: 500125, YMin: 4600000, YMax: 4600019}, 10, 11, 1},
		{"degenerate", geomodel.Extent{XMin: 1, XMax: 1, YMin: 1, YMax: 1}, 0.5, 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := gridplan.Plan(c.extent, c.cellSize)
			require.NoError(t, err)
			require.Equal(t, c.columns, spec.Columns)
			require.Equal(t, c.rows, spec.Rows)
			require.Equal(t, c.cellSize, spec.CellSize)
		})
	}
}

func TestPlanInvalidCellSize(t *testing.T) {
	extent := geomodel.Extent{XMin: 0, XMax: 100, YMin: 0, YMax: 100}
	for _, size := range []float64{0, -1, -0.0001, math.NaN(), math.Inf(1)} {
		_, err := gridplan.Plan(extent, size)
		if !errors.Is(err, geomodel.ErrInvalidParameter) {
			t.Fatalf("cell size %g: expected ErrInvalidParameter, got %v", size, err)
		}
	}
}

func TestPlanInvertedExtent(t *testing.T) {
	_, err := gridplan.Plan(geomodel.Extent{XMin: 10, XMax: 0, YMin: 0, YMax: 10}, 1)
	require.ErrorIs(t, err, geomodel.ErrInvalidParameter)
}

func TestPlanLimited(t *testing.T) {
	extent := geomodel.Extent{XMin: 0, XMax: 100, YMin: 0, YMax: 100}

	_, err := gridplan.PlanLimited(extent, 1, 9999)
	require.ErrorIs(t, err, geomodel.ErrInvalidParameter)

	spec, err := gridplan.PlanLimited(extent, 1, 10000)
	require.NoError(t, err)
	require.Equal(t, 10000, spec.Cells())

	spec, err = gridplan.PlanLimited(extent, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 100, spec.Columns)
}

func FuzzPlanFloor(f *testing.F) {
	f.Add(0.0, 105.0, 0.0, 30.0, 10.0)
	f.Add(-3.5, 2.25, 10.0, 10.5, 0.1)

	f.Fuzz(func(t *testing.T, xMin, xMax, yMin, yMax, cellSize float64) {
		extent := geomodel.Extent{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}
		spec, err := gridplan.Plan(extent, cellSize)
		if err != nil {
			if !errors.Is(err, geomodel.ErrInvalidParameter) {
				t.Fatalf("unexpected error class: %v", err)
			}
			return
		}
		if want := int(math.Floor(extent.Width() / cellSize)); spec.Columns != want {
			t.Fatalf("columns: expected %d, got %d", want, spec.Columns)
		}
		if want := int(math.Floor(extent.Height() / cellSize)); spec.Rows != want {
			t.Fatalf("rows: expected %d, got %d", want, spec.Rows)
		}
	})
}
