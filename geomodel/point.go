package geomodel

//go:generate go tool easyjson -all point.go

import "github.com/paulmach/orb"

// PointRecord is a single lattice point. Ids start at 1 and follow scan order.
type PointRecord struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

func (p PointRecord) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

type PointList []PointRecord
