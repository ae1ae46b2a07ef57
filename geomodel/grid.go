package geomodel

// GridSpec is the raster grid derived from an Extent and a requested spacing.
type GridSpec struct {
	CellSize float64
	Columns  int
	Rows     int
}

func (g GridSpec) Cells() int {
	return g.Columns * g.Rows
}

func (g GridSpec) Empty() bool {
	return g.Columns == 0 || g.Rows == 0
}
