package algorithm

import (
	"log/slog"

	"github.com/royalcat/rgeolattice/lattice"
	"github.com/royalcat/rgeolattice/rasterizer"
)

type options struct {
	maxCells int
	noData   uint8
	lattice  []lattice.Option
	logger   *slog.Logger
}

func loadOptions(opts ...Option) options {
	options := options{
		maxCells: 100_000_000,
		noData:   255,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o.apply(&options)
	}
	return options
}

func (o options) rasterizerOptions() []rasterizer.Option {
	return []rasterizer.Option{
		rasterizer.WithNoData(o.noData),
		rasterizer.WithLogger(o.logger),
	}
}

func (o options) latticeOptions() []lattice.Option {
	return append([]lattice.Option{lattice.WithLogger(o.logger)}, o.lattice...)
}

type Option interface {
	apply(*options)
}

type maxCells int

func (m maxCells) apply(o *options) {
	o.maxCells = int(m)
}

// WithMaxCells rejects plans with more cells. Zero disables the limit.
//
// Default: 100000000
func WithMaxCells(n int) Option {
	return maxCells(n)
}

type noData uint8

func (n noData) apply(o *options) {
	o.noData = uint8(n)
}

// Default: 255
func WithNoData(v uint8) Option {
	return noData(v)
}

type latticeOptions []lattice.Option

func (l latticeOptions) apply(o *options) {
	o.lattice = append(o.lattice, l...)
}

// WithLatticeOptions passes options to the point extractor.
func WithLatticeOptions(opts ...lattice.Option) Option {
	return latticeOptions(opts)
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
