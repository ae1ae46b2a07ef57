package rasterizer

import (
	"context"
	"image"
	"image/draw"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/royalcat/rgeolattice/geomodel"
	"golang.org/x/image/vector"
)

// Touched burns every cell the polygon area overlaps. Coverage from an
// anti-aliasing scanline rasterizer finds the interior cells; it is 8 bit, so
// cells crossed by a ring edge are burned from the exact segment walk instead.
type Touched struct {
	log *slog.Logger
}

var _ Rasterizer = (*Touched)(nil)

func NewTouched(opts ...Option) *Touched {
	options := loadOptions(opts...)
	return &Touched{
		log: options.logger.With("component", "rasterizer.touched"),
	}
}

func (t *Touched) Rasterize(ctx context.Context, req Request) (*geomodel.Mask, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	polygons, err := req.Source.Polygons()
	if err != nil {
		return nil, err
	}

	pixelW, pixelH := req.PixelSize()
	toPixel64 := func(p orb.Point) (float64, float64) {
		return (p.X() - req.Extent.XMin) / pixelW, (req.Extent.YMax - p.Y()) / pixelH
	}
	toPixel := func(p orb.Point) (float32, float32) {
		x, y := toPixel64(p)
		return float32(x), float32(y)
	}

	r := vector.NewRasterizer(req.Width, req.Height)
	r.DrawOp = draw.Src
	for _, poly := range polygons {
		for i, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			// coverage is accumulated with sign, so holes must wind against the shell
			want := orb.CCW
			if i > 0 {
				want = orb.CW
			}
			if ring.Orientation() != want {
				ring = reversed(ring)
			}

			r.MoveTo(toPixel(ring[0]))
			for _, p := range ring[1:] {
				r.LineTo(toPixel(p))
			}
			r.ClosePath()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coverage := image.NewAlpha(image.Rect(0, 0, req.Width, req.Height))
	r.Draw(coverage, coverage.Bounds(), image.Opaque, image.Point{})

	mask := geomodel.NewMask(req.Width, req.Height, req.Init)
	mask.NoData = req.NoData
	for row := 0; row < req.Height; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells := mask.Row(row)
		for col := range cells {
			if coverage.AlphaAt(col, row).A > 0 {
				cells[col] = req.Burn
			}
		}
	}

	var ts []float64
	for _, poly := range polygons {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			for i := range ring {
				ax, ay := toPixel64(ring[i])
				bx, by := toPixel64(ring[(i+1)%len(ring)])
				ts = edgeCells(ts, ax, ay, bx, by, req.Width, req.Height, func(col, row int) {
					mask.Set(row, col, req.Burn)
				})
			}
		}
	}

	t.log.DebugContext(ctx, "burned polygons", "polygons", len(polygons))
	return mask, nil
}

func reversed(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}
