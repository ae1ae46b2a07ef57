package geomodel

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned for non positive spacing and other unusable inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMissingSource is returned when the polygon source is absent or unreadable.
	ErrMissingSource = errors.New("missing polygon source")
	// ErrRasterizationFailed wraps failures of the rasterization capability.
	ErrRasterizationFailed = errors.New("rasterization failed")
	// ErrCancelled marks a cooperative early stop. Output already emitted stays valid.
	ErrCancelled = errors.New("cancelled")
)

// CheckCancelled returns an ErrCancelled wrapping the context cause once ctx is done.
func CheckCancelled(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
