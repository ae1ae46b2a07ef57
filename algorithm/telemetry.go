package algorithm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/royalcat/rgeolattice/algorithm"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

type instruments struct {
	runs     metric.Int64Counter
	cells    metric.Int64Counter
	points   metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments() (*instruments, error) {
	runs, err := meter.Int64Counter("algorithm_run_total",
		metric.WithDescription("Algorithm runs by algorithm and status"))
	if err != nil {
		return nil, err
	}
	cells, err := meter.Int64Counter("mask_cells_total",
		metric.WithDescription("Cells of rasterized masks"))
	if err != nil {
		return nil, err
	}
	points, err := meter.Int64Counter("lattice_points_total",
		metric.WithDescription("Points appended to sinks"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("algorithm_run_duration_seconds",
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &instruments{runs: runs, cells: cells, points: points, duration: duration}, nil
}

func (i *instruments) record(ctx context.Context, id string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("algorithm", id),
		attribute.String("status", Status(err)),
	)
	i.runs.Add(ctx, 1, attrs)
	i.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
