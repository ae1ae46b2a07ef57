package geomodel

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Extent is an axis aligned bounding box in the spatial reference of the
// polygon source it was read from.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

func ExtentFromBound(b orb.Bound) Extent {
	return Extent{
		XMin: b.Min.X(),
		XMax: b.Max.X(),
		YMin: b.Min.Y(),
		YMax: b.Max.Y(),
	}
}

func (e Extent) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.XMin, e.YMin},
		Max: orb.Point{e.XMax, e.YMax},
	}
}

func (e Extent) Width() float64 {
	return e.XMax - e.XMin
}

func (e Extent) Height() float64 {
	return e.YMax - e.YMin
}

// Validate reports inverted or non finite extents. Zero width or height is
// allowed, it plans to an empty grid.
func (e Extent) Validate() error {
	for _, v := range [...]float64{e.XMin, e.XMax, e.YMin, e.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: extent %s is not finite", ErrInvalidParameter, e)
		}
	}
	if e.XMax < e.XMin || e.YMax < e.YMin {
		return fmt.Errorf("%w: extent %s is inverted", ErrInvalidParameter, e)
	}
	return nil
}

func (e Extent) String() string {
	return fmt.Sprintf("[%g, %g, %g, %g]", e.XMin, e.XMax, e.YMin, e.YMax)
}
