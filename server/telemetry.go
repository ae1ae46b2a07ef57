package server

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/royalcat/rgeolattice/server")

type serverMetrics struct {
	requests metric.Int64Counter
	points   metric.Int64Counter
	inFlight metric.Int64ObservableGauge
}

func newServerMetrics(inFlight *xsync.Counter) (*serverMetrics, error) {
	requests, err := meter.Int64Counter("http_lattice_call_total")
	if err != nil {
		return nil, err
	}
	points, err := meter.Int64Counter("http_points_returned_total")
	if err != nil {
		return nil, err
	}
	gauge, err := meter.Int64ObservableGauge("http_jobs_in_flight",
		metric.WithDescription("Lattice jobs currently running"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(inFlight.Value())
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return &serverMetrics{requests: requests, points: points, inFlight: gauge}, nil
}

func endpointAttr(name string) metric.AddOption {
	return metric.WithAttributes(attribute.String("endpoint", name))
}
