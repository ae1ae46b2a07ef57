package rasterizer

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/qtree"
)

// polygonIndex answers point in polygon queries, prefiltering candidates by
// their bounds. It is immutable after construction and safe for concurrent use.
type polygonIndex struct {
	polygons []orb.Polygon
	qt       qtree.QTree
}

func newPolygonIndex(mp orb.MultiPolygon) *polygonIndex {
	idx := &polygonIndex{polygons: make([]orb.Polygon, 0, len(mp))}
	for _, p := range mp {
		bound := p.Bound()
		idx.qt.Insert(bound.Min, bound.Max, len(idx.polygons))
		idx.polygons = append(idx.polygons, p)
	}
	return idx
}

func (idx *polygonIndex) contains(point orb.Point) bool {
	found := false
	idx.qt.Search(point, point, func(_, _ [2]float64, data interface{}) bool {
		if planar.PolygonContains(idx.polygons[data.(int)], point) {
			found = true
			return false
		}
		return true
	})
	return found
}
