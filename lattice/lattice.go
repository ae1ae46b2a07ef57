// Package lattice turns a binary mask into points at the centres of its inside cells.
package lattice

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/royalcat/rgeolattice/geomodel"
)

// Sink receives points incrementally in scan order.
type Sink interface {
	Append(p geomodel.PointRecord) error
}

type SinkFunc func(p geomodel.PointRecord) error

func (f SinkFunc) Append(p geomodel.PointRecord) error {
	return f(p)
}

// CellCenter returns the coordinate of the centre of a mask cell. Row 0 is
// the row touching extent.YMax, column 0 the one touching extent.XMin.
func CellCenter(extent geomodel.Extent, cellSize float64, row, col int) (x, y float64) {
	half := cellSize / 2.0
	x = (extent.XMin + half) + cellSize*float64(col)
	y = (extent.YMax - half) - cellSize*float64(row)
	return x, y
}

// Points yields the lattice of a mask row by row, west to east, with ids
// starting at 1. Every range over the sequence scans from the beginning.
func Points(mask *geomodel.Mask, extent geomodel.Extent, cellSize float64) iter.Seq[geomodel.PointRecord] {
	return func(yield func(geomodel.PointRecord) bool) {
		if mask == nil {
			return
		}
		var id int64
		for row := 0; row < mask.Rows; row++ {
			for col, v := range mask.Row(row) {
				if v != geomodel.Inside {
					continue
				}
				id++
				x, y := CellCenter(extent, cellSize, row, col)
				if !yield(geomodel.PointRecord{ID: id, X: x, Y: y}) {
					return
				}
			}
		}
	}
}

type Extractor struct {
	checkEvery int
	progress   func(rowsDone, rows int)
	log        *slog.Logger
}

func NewExtractor(opts ...Option) *Extractor {
	options := loadOptions(opts...)
	return &Extractor{
		checkEvery: options.checkEvery,
		progress:   options.progress,
		log:        options.logger.With("component", "lattice"),
	}
}

// Extract is NewExtractor(opts...).Extract.
func Extract(ctx context.Context, mask *geomodel.Mask, extent geomodel.Extent, cellSize float64, sink Sink, opts ...Option) (int64, error) {
	return NewExtractor(opts...).Extract(ctx, mask, extent, cellSize, sink)
}

// Extract scans the mask and appends one point per inside cell to sink. It
// returns the number of points appended. On cancellation the points already
// appended stay in the sink and the error wraps geomodel.ErrCancelled.
func (e *Extractor) Extract(ctx context.Context, mask *geomodel.Mask, extent geomodel.Extent, cellSize float64, sink Sink) (int64, error) {
	if !(cellSize > 0) {
		return 0, fmt.Errorf("%w: cell size must be positive, got %g", geomodel.ErrInvalidParameter, cellSize)
	}
	if mask == nil {
		return 0, fmt.Errorf("%w: no mask to extract from", geomodel.ErrInvalidParameter)
	}
	if len(mask.Cells) != mask.Columns*mask.Rows {
		return 0, fmt.Errorf("%w: mask has %d cells for %dx%d", geomodel.ErrInvalidParameter, len(mask.Cells), mask.Columns, mask.Rows)
	}
	if sink == nil {
		return 0, fmt.Errorf("%w: no point sink", geomodel.ErrInvalidParameter)
	}
	if err := geomodel.CheckCancelled(ctx); err != nil {
		return 0, err
	}

	var id int64
	for row := 0; row < mask.Rows; row++ {
		if e.checkEvery > 0 && row > 0 && row%e.checkEvery == 0 {
			if err := geomodel.CheckCancelled(ctx); err != nil {
				e.log.InfoContext(ctx, "extraction cancelled", "row", row, "points", id)
				return id, err
			}
		}

		for col, v := range mask.Row(row) {
			if v != geomodel.Inside {
				continue
			}
			x, y := CellCenter(extent, cellSize, row, col)
			if err := sink.Append(geomodel.PointRecord{ID: id + 1, X: x, Y: y}); err != nil {
				return id, fmt.Errorf("error appending point %d: %w", id+1, err)
			}
			id++
		}

		if e.progress != nil {
			e.progress(row+1, mask.Rows)
		}
	}

	if err := geomodel.CheckCancelled(ctx); err != nil {
		return id, err
	}

	e.log.DebugContext(ctx, "extraction complete", "points", id, "rows", mask.Rows, "columns", mask.Columns)
	return id, nil
}
