package algorithm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/gridplan"
	"github.com/royalcat/rgeolattice/maskio"
	"github.com/royalcat/rgeolattice/rasterizer"
	"github.com/royalcat/rgeolattice/source"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type MaskParams struct {
	Source   source.Source
	CellSize float64
	// MaskPath is where the mask raster is written, empty to keep it in memory only.
	MaskPath string
}

type MaskResult struct {
	Extent   geomodel.Extent
	Grid     geomodel.GridSpec
	Mask     *geomodel.Mask
	MaskPath string
}

// PolygonMask burns a polygon source into a 1-0 mask on a regular grid.
type PolygonMask struct {
	adapter  *rasterizer.Adapter
	maxCells int
	metrics  *instruments
	log      *slog.Logger
}

func NewPolygonMask(capability rasterizer.Rasterizer, opts ...Option) (*PolygonMask, error) {
	options := loadOptions(opts...)
	metrics, err := newInstruments()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize algorithm metrics: %w", err)
	}
	return &PolygonMask{
		adapter:  rasterizer.NewAdapter(capability, options.rasterizerOptions()...),
		maxCells: options.maxCells,
		metrics:  metrics,
		log:      options.logger.With("component", "algorithm", "algorithm", PolygonMaskDescriptor.ID),
	}, nil
}

func (a *PolygonMask) Descriptor() Descriptor {
	return PolygonMaskDescriptor
}

func (a *PolygonMask) Run(ctx context.Context, params MaskParams) (result *MaskResult, err error) {
	start := time.Now()
	defer func() { a.metrics.record(ctx, PolygonMaskDescriptor.ID, start, err) }()

	return a.run(ctx, params)
}

func (a *PolygonMask) run(ctx context.Context, params MaskParams) (result *MaskResult, err error) {
	ctx, span := startSpan(ctx, "PolygonMask.Run", attribute.Float64("cell_size", params.CellSize))
	defer func() { endSpan(span, err) }()

	src := params.Source
	if src == nil {
		return nil, fmt.Errorf("%w: %s is required", geomodel.ErrMissingSource, INPUT)
	}
	if err := geomodel.CheckCancelled(ctx); err != nil {
		return nil, err
	}

	log := a.log.With("source", src.Name())

	extent, err := src.Extent()
	if err != nil {
		if errors.Is(err, geomodel.ErrMissingSource) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", geomodel.ErrMissingSource, src.Name(), err)
	}

	spec, err := gridplan.PlanLimited(extent, params.CellSize, a.maxCells)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("columns", spec.Columns),
		attribute.Int("rows", spec.Rows),
	)
	log.DebugContext(ctx, "grid planned", "extent", extent.String(), "columns", spec.Columns, "rows", spec.Rows)

	mask, err := a.adapter.Rasterize(ctx, src, spec, extent)
	if err != nil {
		return nil, err
	}
	a.metrics.cells.Add(ctx, int64(spec.Cells()), metric.WithAttributes(attribute.String("algorithm", PolygonMaskDescriptor.ID)))

	if err := geomodel.CheckCancelled(ctx); err != nil {
		return nil, err
	}

	result = &MaskResult{Extent: extent, Grid: spec, Mask: mask}

	if params.MaskPath != "" {
		if spec.Empty() {
			log.WarnContext(ctx, "grid is empty, mask raster not written", "path", params.MaskPath)
		} else {
			err := maskio.SaveFile(params.MaskPath, maskio.Raster{Mask: mask, Extent: extent})
			if err != nil {
				return nil, fmt.Errorf("error saving mask: %w", err)
			}
			result.MaskPath = params.MaskPath
		}
	}

	log.InfoContext(ctx, "mask ready", "columns", spec.Columns, "rows", spec.Rows, "inside", mask.CountInside())
	return result, nil
}
