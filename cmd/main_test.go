package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/royalcat/rgeolattice/sink"
	"github.com/stretchr/testify/require"
)

const squareGeoJSON = `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
"geometry":{"type":"Polygon","coordinates":[[[0,0],[40,0],[40,20],[0,20],[0,0]]]}}]}`

func TestPointsCommand(t *testing.T) {
	t.Setenv("OTEL_METRICS_EXPORTER", "none")
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("OTEL_LOGS_EXPORTER", "none")

	dir := t.TempDir()
	input := filepath.Join(dir, "area.geojson")
	require.NoError(t, os.WriteFile(input, []byte(squareGeoJSON), 0644))

	output := filepath.Join(dir, "points.rgl.zst")
	mask := filepath.Join(dir, "mask.tif")
	report := filepath.Join(dir, "stats.txt")

	err := newApp().Run([]string{appName, "points",
		"-i", input,
		"-s", "10",
		"-o", output,
		"--mask", mask,
		"--srs", "EPSG:3857",
		"--stats", report,
	})
	require.NoError(t, err)

	header, points, err := sink.LoadBinaryFile(output)
	require.NoError(t, err)
	require.Equal(t, "EPSG:3857", header.SpatialRef)
	require.Equal(t, 10.0, header.CellSize)
	require.Len(t, points, 8)
	require.Equal(t, int64(1), points[0].ID)
	require.Equal(t, 5.0, points[0].X)
	require.Equal(t, 15.0, points[0].Y)

	require.FileExists(t, mask)
	require.FileExists(t, filepath.Join(dir, "mask.tfw"))
	require.FileExists(t, report)
}

func TestAlgorithmsCommand(t *testing.T) {
	require.NoError(t, newApp().Run([]string{appName, "algorithms"}))
}

func TestMissingInput(t *testing.T) {
	err := newApp().Run([]string{appName, "mask", "-o", filepath.Join(t.TempDir(), "mask.asc")})
	require.Error(t, err)
}
