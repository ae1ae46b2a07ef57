package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/royalcat/rgeolattice/config"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 10.0, cfg.Grid.CellSize)
	require.Equal(t, "center", cfg.Raster.Mode)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lattice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
grid:
  cell_size: 25
raster:
  mode: touched
server:
  listen: ":9090"
`), 0644))

	t.Setenv("RGEOLATTICE_GRID_MAX_CELLS", "5000")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 25.0, cfg.Grid.CellSize)
	require.Equal(t, 5000, cfg.Grid.MaxCells)
	require.Equal(t, "touched", cfg.Raster.Mode)
	require.Equal(t, ":9090", cfg.Server.Listen)
	require.Equal(t, 255, cfg.Raster.NoData)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.CellSize = 0
	cfg.Raster.Mode = "bilinear"
	cfg.Raster.NoData = 1

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "grid.cell_size")
	require.Contains(t, err.Error(), "raster.mode")
	require.Contains(t, err.Error(), "raster.nodata")
}
