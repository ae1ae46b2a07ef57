package lattice_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/lattice"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	points []geomodel.PointRecord
}

func (s *memorySink) Append(p geomodel.PointRecord) error {
	s.points = append(s.points, p)
	return nil
}

func fullMask(columns, rows int) *geomodel.Mask {
	return geomodel.NewMask(columns, rows, geomodel.Inside)
}

var extent30 = geomodel.Extent{XMin: 0, XMax: 30, YMin: 0, YMax: 30}

func TestExtractFullGrid(t *testing.T) {
	sink := &memorySink{}
	n, err := lattice.Extract(context.Background(), fullMask(3, 3), extent30, 10, sink)
	require.NoError(t, err)
	require.EqualValues(t, 9, n)

	expected := []geomodel.PointRecord{
		{ID: 1, X: 5, Y: 25}, {ID: 2, X: 15, Y: 25}, {ID: 3, X: 25, Y: 25},
		{ID: 4, X: 5, Y: 15}, {ID: 5, X: 15, Y: 15}, {ID: 6, X: 25, Y: 15},
		{ID: 7, X: 5, Y: 5}, {ID: 8, X: 15, Y: 5}, {ID: 9, X: 25, Y: 5},
	}
	require.Equal(t, expected, sink.points)
}

func TestExtractSkipsOutsideAndNoData(t *testing.T) {
	mask, err := geomodel.MaskFromRows([][]uint8{
		{0, 1, geomodel.DefaultNoData},
		{1, 0, 1},
	})
	require.NoError(t, err)

	ext := geomodel.Extent{XMin: 100, XMax: 130, YMin: 200, YMax: 220}
	sink := &memorySink{}
	n, err := lattice.Extract(context.Background(), mask, ext, 10, sink)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.Equal(t, []geomodel.PointRecord{
		{ID: 1, X: 115, Y: 215},
		{ID: 2, X: 105, Y: 205},
		{ID: 3, X: 125, Y: 205},
	}, sink.points)
}

func TestExtractIdempotent(t *testing.T) {
	mask, err := geomodel.MaskFromRows([][]uint8{
		{1, 0, 1, 1},
		{0, 1, 1, 0},
		{1, 1, 0, 1},
	})
	require.NoError(t, err)
	ext := geomodel.Extent{XMin: -2, XMax: 2, YMin: -1.5, YMax: 1.5}

	first, second := &memorySink{}, &memorySink{}
	_, err = lattice.Extract(context.Background(), mask, ext, 1, first)
	require.NoError(t, err)
	_, err = lattice.Extract(context.Background(), mask, ext, 1, second)
	require.NoError(t, err)
	require.Equal(t, first.points, second.points)

	fromIter := slices.Collect(lattice.Points(mask, ext, 1))
	require.Equal(t, first.points, fromIter)
}

func TestExtractOrientation(t *testing.T) {
	const rows, columns = 4, 3
	ext := geomodel.Extent{XMin: 0, XMax: 30, YMin: 0, YMax: 40}

	top := geomodel.NewMask(columns, rows, geomodel.Outside)
	top.Set(0, 1, geomodel.Inside)
	bottom := geomodel.NewMask(columns, rows, geomodel.Outside)
	bottom.Set(rows-1, 1, geomodel.Inside)

	a, b := &memorySink{}, &memorySink{}
	_, err := lattice.Extract(context.Background(), top, ext, 10, a)
	require.NoError(t, err)
	_, err = lattice.Extract(context.Background(), bottom, ext, 10, b)
	require.NoError(t, err)

	require.Len(t, a.points, 1)
	require.Len(t, b.points, 1)
	require.Equal(t, a.points[0].X, b.points[0].X)
	require.Equal(t, ext.Height()-10, a.points[0].Y-b.points[0].Y)
}

func TestExtractEmpty(t *testing.T) {
	for _, mask := range []*geomodel.Mask{
		geomodel.NewMask(0, 3, geomodel.Outside),
		geomodel.NewMask(3, 0, geomodel.Outside),
		geomodel.NewMask(5, 5, geomodel.Outside),
	} {
		sink := &memorySink{}
		n, err := lattice.Extract(context.Background(), mask, extent30, 10, sink)
		require.NoError(t, err)
		require.Zero(t, n)
		require.Empty(t, sink.points)
	}
}

func TestExtractInvalid(t *testing.T) {
	sink := &memorySink{}
	for _, size := range []float64{0, -10} {
		_, err := lattice.Extract(context.Background(), fullMask(3, 3), extent30, size, sink)
		require.ErrorIs(t, err, geomodel.ErrInvalidParameter)
	}
	_, err := lattice.Extract(context.Background(), nil, extent30, 10, sink)
	require.ErrorIs(t, err, geomodel.ErrInvalidParameter)
	_, err = lattice.Extract(context.Background(), fullMask(3, 3), extent30, 10, nil)
	require.ErrorIs(t, err, geomodel.ErrInvalidParameter)
	require.Empty(t, sink.points)
}

func TestExtractCancelledBeforeScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &memorySink{}
	n, err := lattice.Extract(ctx, fullMask(3, 3), extent30, 10, sink)
	require.ErrorIs(t, err, geomodel.ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, n)
	require.Empty(t, sink.points)
}

func TestExtractCancelledMidScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var points []geomodel.PointRecord
	sink := lattice.SinkFunc(func(p geomodel.PointRecord) error {
		points = append(points, p)
		if len(points) == 4 {
			cancel()
		}
		return nil
	})

	n, err := lattice.Extract(ctx, fullMask(3, 3), extent30, 10, sink, lattice.WithCancelCheckEvery(1))
	require.ErrorIs(t, err, geomodel.ErrCancelled)
	// cancellation is observed at the next row boundary
	require.EqualValues(t, 6, n)
	require.Len(t, points, 6)
	for i, p := range points {
		require.EqualValues(t, i+1, p.ID)
	}
}

func TestExtractCancelledAfterScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &memorySink{}
	n, err := lattice.Extract(ctx, fullMask(3, 3), extent30, 10, sink,
		lattice.WithCancelCheckEvery(0),
		lattice.WithProgress(func(done, rows int) {
			if done == rows {
				cancel()
			}
		}),
	)
	require.ErrorIs(t, err, geomodel.ErrCancelled)
	require.EqualValues(t, 9, n)
	require.Len(t, sink.points, 9)
}

func TestExtractSinkError(t *testing.T) {
	broken := errors.New("broken pipe")
	calls := 0
	sink := lattice.SinkFunc(func(p geomodel.PointRecord) error {
		calls++
		if calls == 2 {
			return broken
		}
		return nil
	})

	n, err := lattice.Extract(context.Background(), fullMask(3, 3), extent30, 10, sink)
	require.ErrorIs(t, err, broken)
	require.EqualValues(t, 1, n)
}

func TestExtractProgress(t *testing.T) {
	var seen []int
	_, err := lattice.Extract(context.Background(), fullMask(2, 3), extent30, 10, &memorySink{},
		lattice.WithProgress(func(done, rows int) {
			require.Equal(t, 3, rows)
			seen = append(seen, done)
		}))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, seen)
}

func TestPointsStopsEarly(t *testing.T) {
	var ids []int64
	for p := range lattice.Points(fullMask(3, 3), extent30, 10) {
		ids = append(ids, p.ID)
		if len(ids) == 2 {
			break
		}
	}
	require.Equal(t, []int64{1, 2}, ids)
}

func BenchmarkExtract(b *testing.B) {
	mask := geomodel.NewMask(1000, 1000, geomodel.Outside)
	for i := range mask.Cells {
		if i%3 != 0 {
			mask.Cells[i] = geomodel.Inside
		}
	}
	ext := geomodel.Extent{XMin: 0, XMax: 10000, YMin: 0, YMax: 10000}
	sink := lattice.SinkFunc(func(p geomodel.PointRecord) error { return nil })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := lattice.Extract(context.Background(), mask, ext, 10, sink)
		if err != nil {
			b.Fatal(err)
		}
	}
}
