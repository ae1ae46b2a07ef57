package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Grid      GridConfig      `mapstructure:"grid"`
	Raster    RasterConfig    `mapstructure:"raster"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type GridConfig struct {
	CellSize float64 `mapstructure:"cell_size"`
	MaxCells int     `mapstructure:"max_cells"`
}

type RasterConfig struct {
	Mode    string `mapstructure:"mode"`
	Workers int    `mapstructure:"workers"`
	NoData  int    `mapstructure:"nodata"`
}

type ServerConfig struct {
	Listen      string `mapstructure:"listen"`
	MaxBodySize int    `mapstructure:"max_body_size"`
}

type TelemetryConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func Default() Config {
	return Config{
		Grid: GridConfig{
			CellSize: 10,
			MaxCells: 100_000_000,
		},
		Raster: RasterConfig{
			Mode:    "center",
			Workers: runtime.GOMAXPROCS(0),
			NoData:  255,
		},
		Server: ServerConfig{
			Listen:      ":8080",
			MaxBodySize: 32 * 1000 * 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional file and RGEOLATTICE_ prefixed
// environment variables, on top of Default. An empty path looks for
// rgeolattice.yaml in the working directory and is fine to miss.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("grid.cell_size", def.Grid.CellSize)
	v.SetDefault("grid.max_cells", def.Grid.MaxCells)
	v.SetDefault("raster.mode", def.Raster.Mode)
	v.SetDefault("raster.workers", def.Raster.Workers)
	v.SetDefault("raster.nodata", def.Raster.NoData)
	v.SetDefault("server.listen", def.Server.Listen)
	v.SetDefault("server.max_body_size", def.Server.MaxBodySize)
	v.SetDefault("telemetry.endpoint", def.Telemetry.Endpoint)
	v.SetDefault("log.level", def.Log.Level)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("rgeolattice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // OK if missing
	}

	// RGEOLATTICE_GRID_CELL_SIZE -> grid.cell_size
	v.SetEnvPrefix("RGEOLATTICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	var errs []string

	if !(c.Grid.CellSize > 0) {
		errs = append(errs, fmt.Sprintf("grid.cell_size must be positive, got %g", c.Grid.CellSize))
	}
	if c.Grid.MaxCells < 0 {
		errs = append(errs, fmt.Sprintf("grid.max_cells must not be negative, got %d", c.Grid.MaxCells))
	}
	switch c.Raster.Mode {
	case "center", "touched":
	default:
		errs = append(errs, fmt.Sprintf("raster.mode must be center or touched, got %q", c.Raster.Mode))
	}
	if c.Raster.NoData < 2 || c.Raster.NoData > 255 {
		errs = append(errs, fmt.Sprintf("raster.nodata must be 2-255, got %d", c.Raster.NoData))
	}
	if c.Server.Listen == "" {
		errs = append(errs, "server.listen is required")
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Sprintf("server.max_body_size must be positive, got %d", c.Server.MaxBodySize))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}
