package rasterizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/source"
)

// Adapter runs a Rasterizer for a planned grid. It never retries: a failed
// capability call is surfaced as ErrRasterizationFailed or ErrCancelled.
type Adapter struct {
	capability Rasterizer
	noData     uint8
	log        *slog.Logger
}

func NewAdapter(capability Rasterizer, opts ...Option) *Adapter {
	options := loadOptions(opts...)
	return &Adapter{
		capability: capability,
		noData:     options.noData,
		log:        options.logger.With("component", "rasterizer"),
	}
}

func (a *Adapter) Rasterize(ctx context.Context, src source.Source, spec geomodel.GridSpec, extent geomodel.Extent) (*geomodel.Mask, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no polygon source given", geomodel.ErrMissingSource)
	}
	if _, err := src.Polygons(); err != nil {
		if errors.Is(err, geomodel.ErrMissingSource) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", geomodel.ErrMissingSource, src.Name(), err)
	}
	if err := geomodel.CheckCancelled(ctx); err != nil {
		return nil, err
	}

	log := a.log.With("source", src.Name(), "columns", spec.Columns, "rows", spec.Rows)

	if spec.Empty() {
		log.DebugContext(ctx, "empty grid, skipping rasterization")
		mask := geomodel.NewMask(spec.Columns, spec.Rows, geomodel.Outside)
		mask.NoData = a.noData
		return mask, nil
	}

	req := Request{
		Source:   src,
		Burn:     geomodel.Inside,
		Init:     geomodel.Outside,
		NoData:   a.noData,
		Width:    spec.Columns,
		Height:   spec.Rows,
		Extent:   extent,
		CellType: CellByte,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	mask, err := a.capability.Rasterize(ctx, req)
	if err != nil {
		if cerr := geomodel.CheckCancelled(ctx); cerr != nil {
			log.InfoContext(ctx, "rasterization cancelled")
			return nil, cerr
		}
		log.ErrorContext(ctx, "rasterization failed", "error", err.Error())
		return nil, fmt.Errorf("%w: %w", geomodel.ErrRasterizationFailed, err)
	}
	if mask == nil || !mask.Fits(spec) {
		return nil, fmt.Errorf("%w: capability returned a mask not matching %dx%d",
			geomodel.ErrRasterizationFailed, spec.Columns, spec.Rows)
	}

	log.DebugContext(ctx, "rasterization complete")
	return mask, nil
}
