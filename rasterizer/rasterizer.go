// Package rasterizer burns polygon coverage into a binary grid.
//
// The Rasterizer interface is the capability contract, Adapter derives a
// request from a grid plan and classifies the outcome.
package rasterizer

import (
	"context"
	"fmt"

	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/source"
)

type CellType int

const (
	CellByte CellType = iota + 1
)

func (t CellType) String() string {
	switch t {
	case CellByte:
		return "Byte"
	}
	return fmt.Sprintf("CellType(%d)", int(t))
}

// Request mirrors the parameters of a classic rasterize call: burn value,
// background value, target size, target extent, cell type and nodata.
type Request struct {
	Source   source.Source
	Burn     uint8
	Init     uint8
	NoData   uint8
	Width    int
	Height   int
	Extent   geomodel.Extent
	CellType CellType
}

// PixelSize is the raster cell size implied by the target extent and size.
func (r Request) PixelSize() (w, h float64) {
	return r.Extent.Width() / float64(r.Width), r.Extent.Height() / float64(r.Height)
}

func (r Request) Validate() error {
	if r.Source == nil {
		return fmt.Errorf("%w: no source in request", geomodel.ErrMissingSource)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: raster size %dx%d", geomodel.ErrInvalidParameter, r.Width, r.Height)
	}
	if r.CellType != CellByte {
		return fmt.Errorf("%w: unsupported cell type %s", geomodel.ErrInvalidParameter, r.CellType)
	}
	if r.NoData == r.Burn || r.NoData == r.Init {
		return fmt.Errorf("%w: nodata %d collides with burn or init value", geomodel.ErrInvalidParameter, r.NoData)
	}
	return r.Extent.Validate()
}

// Rasterizer is a capability able to rasterize a polygon source into a grid
// of Request.Width x Request.Height cells, row 0 being the northern row.
type Rasterizer interface {
	Rasterize(ctx context.Context, req Request) (*geomodel.Mask, error)
}

// Func adapts a plain function to Rasterizer.
type Func func(ctx context.Context, req Request) (*geomodel.Mask, error)

func (f Func) Rasterize(ctx context.Context, req Request) (*geomodel.Mask, error) {
	return f(ctx, req)
}

// Mode selects a built in capability.
type Mode string

const (
	// ModeCenter burns cells whose centre lies inside a polygon.
	ModeCenter Mode = "center"
	// ModeTouched burns every cell whose interior the polygon overlaps.
	ModeTouched Mode = "touched"
)

func New(mode Mode, opts ...Option) (Rasterizer, error) {
	switch mode {
	case ModeCenter, "":
		return NewCenter(opts...), nil
	case ModeTouched:
		return NewTouched(opts...), nil
	}
	return nil, fmt.Errorf("%w: unknown raster mode %q", geomodel.ErrInvalidParameter, mode)
}
