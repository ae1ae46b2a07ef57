package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/royalcat/rgeolattice/geomodel"
	"github.com/royalcat/rgeolattice/source"
	"github.com/stretchr/testify/require"
)

const squares = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::32632"}},
  "features": [
    {"type": "Feature", "properties": {"name": "a"}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
    {"type": "Feature", "properties": {"name": "b"}, "geometry": {"type": "MultiPolygon", "coordinates": [[[[20,5],[30,5],[30,25],[20,25],[20,5]]]]}},
    {"type": "Feature", "properties": {"name": "c"}, "geometry": {"type": "Point", "coordinates": [100,100]}}
  ]
}`

func TestParseGeoJSONCollection(t *testing.T) {
	src, err := source.ParseGeoJSON("squares", []byte(squares))
	require.NoError(t, err)
	require.Equal(t, "EPSG:32632", src.SpatialRef())

	ext, err := src.Extent()
	require.NoError(t, err)
	require.Equal(t, geomodel.Extent{XMin: 0, XMax: 30, YMin: 0, YMax: 25}, ext)

	polys, err := src.Polygons()
	require.NoError(t, err)
	require.Len(t, polys, 2)
}

func TestParseGeoJSONGeometry(t *testing.T) {
	src, err := source.ParseGeoJSON("bare", []byte(`{"type":"Polygon","coordinates":[[[1,2],[3,2],[3,5],[1,2]]]}`))
	require.NoError(t, err)
	require.Equal(t, source.DefaultSpatialRef, src.SpatialRef())

	ext, err := src.Extent()
	require.NoError(t, err)
	require.Equal(t, geomodel.Extent{XMin: 1, XMax: 3, YMin: 2, YMax: 5}, ext)
}

func TestParseGeoJSONWithoutPolygons(t *testing.T) {
	_, err := source.ParseGeoJSON("points", []byte(`{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}`))
	require.ErrorIs(t, err, geomodel.ErrMissingSource)

	_, err = source.ParseGeoJSON("garbage", []byte(`{`))
	require.ErrorIs(t, err, geomodel.ErrMissingSource)
}

func TestNormalizeSpatialRef(t *testing.T) {
	cases := [][2]string{
		{"urn:ogc:def:crs:EPSG::3857", "EPSG:3857"},
		{"urn:ogc:def:crs:OGC:1.3:CRS84", "EPSG:4326"},
		{"http://www.opengis.net/def/crs/EPSG/0/25832", "EPSG:25832"},
		{"EPSG:2056", "EPSG:2056"},
	}
	for _, c := range cases {
		if got := source.NormalizeSpatialRef(c[0]); got != c[1] {
			t.Errorf("%s: expected %s, got %s", c[0], c[1], got)
		}
	}
}

func TestParseWKB(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {4, 0}, {4, 3}, {0, 3}, {0, 0}}}
	data, err := wkb.Marshal(poly)
	require.NoError(t, err)

	src, err := source.ParseWKB("poly.wkb", "EPSG:3035", data)
	require.NoError(t, err)
	require.Equal(t, "EPSG:3035", src.SpatialRef())

	ext, err := src.Extent()
	require.NoError(t, err)
	require.Equal(t, geomodel.Extent{XMin: 0, XMax: 4, YMin: 0, YMax: 3}, ext)

	_, err = source.ParseWKB("broken.wkb", "", []byte{1, 2, 3})
	require.ErrorIs(t, err, geomodel.ErrMissingSource)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "squares.geojson")
	require.NoError(t, os.WriteFile(plain, []byte(squares), 0644))

	src, err := source.OpenFile(plain, "")
	require.NoError(t, err)
	require.Equal(t, "squares.geojson", src.Name())
	require.Equal(t, "EPSG:32632", src.SpatialRef())

	compressed := filepath.Join(dir, "squares.geojson.zst")
	f, err := os.Create(compressed)
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(squares))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	src, err = source.OpenFile(compressed, "EPSG:25832")
	require.NoError(t, err)
	require.Equal(t, "EPSG:25832", src.SpatialRef())
	ext, err := src.Extent()
	require.NoError(t, err)
	require.Equal(t, 30.0, ext.XMax)

	_, err = source.OpenFile(filepath.Join(dir, "missing.geojson"), "")
	require.ErrorIs(t, err, geomodel.ErrMissingSource)

	shp := filepath.Join(dir, "layer.shp")
	require.NoError(t, os.WriteFile(shp, []byte("x"), 0644))
	_, err = source.OpenFile(shp, "")
	require.ErrorIs(t, err, geomodel.ErrMissingSource)
}
