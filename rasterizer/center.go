package rasterizer

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/sourcegraph/conc/pool"
)

// Center burns a cell when its centre falls inside any polygon of the source.
// Rows are burned in parallel, each row is owned by exactly one worker.
type Center struct {
	workers int
	log     *slog.Logger
}

var _ Rasterizer = (*Center)(nil)

func NewCenter(opts ...Option) *Center {
	options := loadOptions(opts...)
	return &Center{
		workers: options.workers,
		log:     options.logger.With("component", "rasterizer.center"),
	}
}

func (c *Center) Rasterize(ctx context.Context, req Request) (*geomodel.Mask, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	polygons, err := req.Source.Polygons()
	if err != nil {
		return nil, err
	}

	idx := newPolygonIndex(polygons)
	mask := geomodel.NewMask(req.Width, req.Height, req.Init)
	mask.NoData = req.NoData
	pixelW, pixelH := req.PixelSize()

	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(c.workers)
	for row := 0; row < req.Height; row++ {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			y := req.Extent.YMax - (float64(row)+0.5)*pixelH
			cells := mask.Row(row)
			for col := range cells {
				x := req.Extent.XMin + (float64(col)+0.5)*pixelW
				if idx.contains(orb.Point{x, y}) {
					cells[col] = req.Burn
				}
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	c.log.DebugContext(ctx, "burned polygons", "polygons", len(polygons), "workers", c.workers)
	return mask, nil
}
