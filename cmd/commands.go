package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/pprof"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/royalcat/rgeolattice/algorithm"
	"github.com/royalcat/rgeolattice/config"
	"github.com/royalcat/rgeolattice/internal/stats"
	"github.com/royalcat/rgeolattice/internal/telemetry"
	"github.com/royalcat/rgeolattice/lattice"
	"github.com/royalcat/rgeolattice/rasterizer"
	"github.com/royalcat/rgeolattice/server"
	"github.com/royalcat/rgeolattice/sink"
	"github.com/royalcat/rgeolattice/source"
	"github.com/urfave/cli/v3"

	_ "net/http/pprof"
)

// loadConfig reads the config file and applies the flags given on the
// command line on top of it.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if ctx.IsSet("spacing") {
		cfg.Grid.CellSize = ctx.Float64("spacing")
	}
	if ctx.IsSet("mode") {
		cfg.Raster.Mode = ctx.String("mode")
	}
	if ctx.IsSet("threads") {
		cfg.Raster.Workers = ctx.Int("threads")
	}
	if ctx.IsSet("listen") {
		cfg.Server.Listen = ctx.String("listen")
	}
	return cfg, cfg.Validate()
}

func setupTelemetry(ctx context.Context, cfg *config.Config) (func(), error) {
	level, err := telemetry.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	client, err := telemetry.Setup(ctx, telemetry.Config{
		AppName:  appName,
		Endpoint: cfg.Telemetry.Endpoint,
		Level:    level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Shutdown(shutdownCtx)
	}, nil
}

func newCapability(cfg *config.Config) (rasterizer.Rasterizer, error) {
	return rasterizer.New(rasterizer.Mode(cfg.Raster.Mode),
		rasterizer.WithWorkers(cfg.Raster.Workers),
		rasterizer.WithNoData(uint8(cfg.Raster.NoData)),
		rasterizer.WithLogger(slog.Default()),
	)
}

func algorithmOptions(cfg *config.Config, extra ...algorithm.Option) []algorithm.Option {
	return append([]algorithm.Option{
		algorithm.WithMaxCells(cfg.Grid.MaxCells),
		algorithm.WithNoData(uint8(cfg.Raster.NoData)),
		algorithm.WithLogger(slog.Default()),
	}, extra...)
}

// job holds what both lattice commands share.
type job struct {
	cfg        *config.Config
	src        source.Source
	capability rasterizer.Rasterizer
	collector  *stats.Collector
	shutdown   func()
}

func startJob(ctx *cli.Context) (*job, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	shutdown, err := setupTelemetry(ctx.Context, cfg)
	if err != nil {
		return nil, err
	}

	j := &job{cfg: cfg, shutdown: shutdown}
	if ctx.String("stats") != "" {
		j.collector, err = stats.NewCollector(100 * time.Millisecond)
		if err != nil {
			shutdown()
			return nil, err
		}
		j.collector.Start()
	}

	j.src, err = source.OpenFile(ctx.String("input"), ctx.String("srs"))
	if err != nil {
		j.finish(ctx)
		return nil, err
	}
	j.mark("open")

	j.capability, err = newCapability(cfg)
	if err != nil {
		j.finish(ctx)
		return nil, err
	}

	slog.Info("Input layer", "name", j.src.Name(), "srs", j.src.SpatialRef(), "spacing", cfg.Grid.CellSize, "mode", cfg.Raster.Mode)
	return j, nil
}

func (j *job) mark(stage string) {
	if j.collector != nil {
		j.collector.Mark(stage)
	}
}

func (j *job) finish(ctx *cli.Context) {
	if j.collector != nil {
		report := j.collector.Stop()
		if err := report.SaveToFile(ctx.String("stats")); err != nil {
			slog.Error("failed to save stats", "error", err.Error())
		}
	}
	j.shutdown()
}

func maskCommand(ctx *cli.Context) error {
	j, err := startJob(ctx)
	if err != nil {
		return err
	}
	defer j.finish(ctx)

	alg, err := algorithm.NewPolygonMask(j.capability, algorithmOptions(j.cfg)...)
	if err != nil {
		return err
	}

	res, err := alg.Run(ctx.Context, algorithm.MaskParams{
		Source:   j.src,
		CellSize: j.cfg.Grid.CellSize,
		MaskPath: ctx.String("output"),
	})
	if err != nil {
		return err
	}
	j.mark("mask")

	fmt.Printf("Grid: %d x %d (%s cells)\n", res.Grid.Columns, res.Grid.Rows, humanize.Comma(int64(res.Grid.Cells())))
	fmt.Printf("Inside: %s cells\n", humanize.Comma(int64(res.Mask.CountInside())))
	if res.MaskPath != "" {
		fmt.Printf("Saved mask to: %s\n", res.MaskPath)
	}
	return nil
}

func pointsCommand(ctx *cli.Context) error {
	if pprofListen := ctx.String("pprof.listen"); pprofListen != "" {
		go func() {
			slog.Info("Starting pprof server")
			err := http.ListenAndServe(pprofListen, nil)
			if err != nil {
				slog.Error("Error starting pprof server", "error", err)
			}
		}()
	}

	if ctx.Bool("pprof.profile") {
		f, err := os.OpenFile("profile.cpu.pprof", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("error creating pprof file: %w", err)
		}
		defer f.Close()
		err = pprof.StartCPUProfile(f)
		if err != nil {
			return fmt.Errorf("error starting pprof: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	j, err := startJob(ctx)
	if err != nil {
		return err
	}
	defer j.finish(ctx)

	var extra []algorithm.Option
	var bar *pb.ProgressBar
	if ctx.Bool("progress") {
		extra = append(extra, algorithm.WithLatticeOptions(lattice.WithProgress(func(rowsDone, rows int) {
			if bar == nil {
				bar = pb.New(rows)
				bar.SetWriter(os.Stderr)
				bar.Start()
			}
			bar.SetCurrent(int64(rowsDone))
		})))
	}

	alg, err := algorithm.NewPointNet(j.capability, algorithmOptions(j.cfg, extra...)...)
	if err != nil {
		return err
	}

	output := ctx.String("output")
	out, err := sink.Create(output, j.src.SpatialRef(), j.cfg.Grid.CellSize)
	if err != nil {
		return err
	}

	res, err := alg.Run(ctx.Context, algorithm.PointParams{
		Source:   j.src,
		CellSize: j.cfg.Grid.CellSize,
		MaskPath: ctx.String("mask"),
		Sink:     out,
	})
	if bar != nil {
		bar.Finish()
	}
	// points appended before a cancellation are kept
	if cerr := out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to save points to file: %w", cerr)
	}
	if err != nil {
		return err
	}
	j.mark("points")

	fmt.Printf("Grid: %d x %d\n", res.Grid.Columns, res.Grid.Rows)
	fmt.Printf("Points: %s\n", humanize.Comma(res.Points))
	if info, err := os.Stat(output); err == nil {
		fmt.Printf("Saved to: %s (%s)\n", output, humanize.Bytes(uint64(info.Size())))
	}
	return nil
}

func algorithmsCommand(ctx *cli.Context) error {
	for _, d := range algorithm.Descriptors() {
		fmt.Printf("%s [%s/%s]\n  %s\n", d.DisplayName, d.Group, d.GroupID, d.Help)
		for _, p := range d.Parameters {
			line := fmt.Sprintf("  - %s (%s): %s", p.Name, p.Type, p.Description)
			if p.Default != nil {
				line += fmt.Sprintf(", default %g", *p.Default)
			}
			if p.Optional {
				line += ", optional"
			}
			fmt.Println(line)
		}
	}
	return nil
}

func serveCommand(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	shutdown, err := setupTelemetry(ctx.Context, cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	capability, err := newCapability(cfg)
	if err != nil {
		return err
	}

	return server.Run(ctx.Context, server.Config{
		Address:     cfg.Server.Listen,
		MaxBodySize: cfg.Server.MaxBodySize,
		CellSize:    cfg.Grid.CellSize,
	}, capability, algorithmOptions(cfg)...)
}
