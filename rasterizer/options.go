package rasterizer

import (
	"log/slog"
	"runtime"

	"github.com/royalcat/rgeolattice/geomodel"
)

type options struct {
	workers int
	noData  uint8
	logger  *slog.Logger
}

func loadOptions(opts ...Option) options {
	options := options{
		workers: runtime.GOMAXPROCS(0),
		noData:  geomodel.DefaultNoData,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o.apply(&options)
	}
	if options.workers < 1 {
		options.workers = 1
	}
	return options
}

type Option interface {
	apply(*options)
}

type workers int

func (w workers) apply(o *options) {
	o.workers = int(w)
}

// Default: GOMAXPROCS
func WithWorkers(n int) Option {
	return workers(n)
}

type noData uint8

func (n noData) apply(o *options) {
	o.noData = uint8(n)
}

// Default: 255
func WithNoData(v uint8) Option {
	return noData(v)
}

type loggerOption struct {
	logger *slog.Logger
}

func (l loggerOption) apply(o *options) {
	o.logger = l.logger
}

func WithLogger(logger *slog.Logger) Option {
	return loggerOption{logger: logger}
}
