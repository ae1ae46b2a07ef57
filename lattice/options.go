package lattice

import "log/slog"

type options struct {
	checkEvery int
	progress   func(rowsDone, rows int)
	logger     *slog.Logger
}

func loadOptions(opts ...Option) options {
	options := options{
		checkEvery: 1,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o.apply(&options)
	}
	return options
}

type Option interface {
	apply(*options)
}

type checkEvery int

func (c checkEvery) apply(o *options) {
	o.checkEvery = int(c)
}

// WithCancelCheckEvery sets how many rows are scanned between cancellation
// checks. Zero only checks before and after the scan.
//
// Default: 1
func WithCancelCheckEvery(rows int) Option {
	return checkEvery(rows)
}

type progress func(rowsDone, rows int)

func (p progress) apply(o *options) {
	o.progress = p
}

// WithProgress is called after every scanned row.
func WithProgress(f func(rowsDone, rows int)) Option {
	return progress(f)
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
