// Package source provides the read only polygon layers the lattice is sampled from.
package source

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/royalcat/rgeolattice/geomodel"
)

// DefaultSpatialRef is assumed for GeoJSON input without a crs member.
const DefaultSpatialRef = "EPSG:4326"

// Source is a polygon layer with a single bounding extent.
type Source interface {
	Name() string
	SpatialRef() string
	Extent() (geomodel.Extent, error)
	Polygons() (orb.MultiPolygon, error)
}

// Memory is a source over polygons already in memory.
type Memory struct {
	Label   string
	SRS     string
	Polygon orb.MultiPolygon
}

var _ Source = (*Memory)(nil)

func NewMemory(name, srs string, geoms ...orb.Geometry) (*Memory, error) {
	mp := orb.MultiPolygon{}
	for _, g := range geoms {
		mp = appendPolygons(mp, g)
	}
	if len(mp) == 0 {
		return nil, fmt.Errorf("%w: %s contains no polygons", geomodel.ErrMissingSource, name)
	}
	return &Memory{Label: name, SRS: srs, Polygon: mp}, nil
}

func (m *Memory) Name() string {
	return m.Label
}

func (m *Memory) SpatialRef() string {
	return m.SRS
}

func (m *Memory) Extent() (geomodel.Extent, error) {
	return polygonsExtent(m.Label, m.Polygon)
}

func (m *Memory) Polygons() (orb.MultiPolygon, error) {
	if len(m.Polygon) == 0 {
		return nil, fmt.Errorf("%w: %s contains no polygons", geomodel.ErrMissingSource, m.Label)
	}
	return m.Polygon, nil
}

func polygonsExtent(name string, mp orb.MultiPolygon) (geomodel.Extent, error) {
	if len(mp) == 0 {
		return geomodel.Extent{}, fmt.Errorf("%w: %s contains no polygons", geomodel.ErrMissingSource, name)
	}
	return geomodel.ExtentFromBound(mp.Bound()), nil
}

// appendPolygons keeps only areal geometries, everything else is not part of
// a polygon layer.
func appendPolygons(mp orb.MultiPolygon, g orb.Geometry) orb.MultiPolygon {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) > 0 {
			mp = append(mp, g)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			mp = appendPolygons(mp, p)
		}
	case orb.Bound:
		mp = append(mp, g.ToPolygon())
	case orb.Collection:
		for _, c := range g {
			mp = appendPolygons(mp, c)
		}
	}
	return mp
}
