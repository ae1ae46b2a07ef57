package algorithm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/lattice"
	"github.com/royalcat/rgeolattice/rasterizer"
	"github.com/royalcat/rgeolattice/source"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type PointParams struct {
	Source   source.Source
	CellSize float64
	// MaskPath optionally keeps the intermediate mask raster.
	MaskPath string
	Sink     lattice.Sink
}

type PointResult struct {
	MaskResult
	Points int64
}

// PointNet places a point at the centre of every grid cell covered by the
// polygon source, numbering them from 1 in row-major order.
type PointNet struct {
	mask      *PolygonMask
	extractor *lattice.Extractor
	metrics   *instruments
	log       *slog.Logger
}

func NewPointNet(capability rasterizer.Rasterizer, opts ...Option) (*PointNet, error) {
	mask, err := NewPolygonMask(capability, opts...)
	if err != nil {
		return nil, err
	}
	options := loadOptions(opts...)
	return &PointNet{
		mask:      mask,
		extractor: lattice.NewExtractor(options.latticeOptions()...),
		metrics:   mask.metrics,
		log:       options.logger.With("component", "algorithm", "algorithm", PointNetDescriptor.ID),
	}, nil
}

func (a *PointNet) Descriptor() Descriptor {
	return PointNetDescriptor
}

// Run returns a result alongside ErrCancelled when extraction stopped early:
// Points then counts what the sink already received.
func (a *PointNet) Run(ctx context.Context, params PointParams) (result *PointResult, err error) {
	start := time.Now()
	defer func() { a.metrics.record(ctx, PointNetDescriptor.ID, start, err) }()

	ctx, span := startSpan(ctx, "PointNet.Run", attribute.Float64("cell_size", params.CellSize))
	defer func() { endSpan(span, err) }()

	if params.Sink == nil {
		return nil, fmt.Errorf("%w: %s is required", geomodel.ErrInvalidParameter, OUTPUT)
	}

	masked, err := a.mask.run(ctx, MaskParams{
		Source:   params.Source,
		CellSize: params.CellSize,
		MaskPath: params.MaskPath,
	})
	if err != nil {
		return nil, err
	}

	count, err := a.extractor.Extract(ctx, masked.Mask, masked.Extent, params.CellSize, params.Sink)
	a.metrics.points.Add(ctx, count, metric.WithAttributes(attribute.String("algorithm", PointNetDescriptor.ID)))
	span.SetAttributes(attribute.Int64("points", count))

	result = &PointResult{MaskResult: *masked, Points: count}
	if err != nil {
		a.log.WarnContext(ctx, "point extraction stopped", "points", count, "error", err.Error())
		return result, err
	}

	a.log.InfoContext(ctx, "point net ready", "source", params.Source.Name(), "points", count)
	return result, nil
}
