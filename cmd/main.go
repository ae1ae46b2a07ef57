package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	_ "github.com/KimMachineGun/automemlimit"
	_ "go.uber.org/automaxprocs"
)

const appName = "rgeolattice"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run cancels the running job on SIGINT/SIGTERM, points already written stay
// in the output.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newApp().RunContext(ctx, os.Args)
}

func newApp() *cli.App {
	return &cli.App{
		Name:        appName,
		Description: "Regular point lattices from polygon layers",
		Commands: []*cli.Command{
			{
				Name:  "mask",
				Usage: "rasterize a polygon layer into a 1-0 mask",
				Flags: append(jobFlags(),
					&cli.StringFlag{
						Name:      "output",
						Aliases:   []string{"o"},
						Usage:     "mask raster, .tif or .asc",
						Required:  true,
						TakesFile: true,
					},
				),
				Action: maskCommand,
			},
			{
				Name:    "points",
				Aliases: []string{"p"},
				Usage:   "place a point at the centre of every covered grid cell",
				Flags: append(jobFlags(),
					&cli.StringFlag{
						Name:      "output",
						Aliases:   []string{"o"},
						Usage:     "points file, .geojson or .rgl with optional .zst",
						Required:  true,
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:      "mask",
						Aliases:   []string{"m"},
						Usage:     "also keep the mask raster",
						TakesFile: true,
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "show extraction progress",
					},
					&cli.StringFlag{
						Name:        "pprof.listen",
						DefaultText: "",
					},
					&cli.BoolFlag{
						Name:        "pprof.profile",
						DefaultText: "",
					},
				),
				Action: pointsCommand,
			},
			{
				Name:   "algorithms",
				Usage:  "list the available algorithms",
				Action: algorithmsCommand,
			},
			{
				Name:  "serve",
				Usage: "serve the lattice api",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "address to listen on",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "rasterization mode, center or touched",
					},
				},
				Action: serveCommand,
			},
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:      "config",
		Aliases:   []string{"c"},
		Usage:     "yaml config file",
		TakesFile: true,
	}
}

func jobFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:      "input",
			Aliases:   []string{"i"},
			Usage:     "polygon layer, .geojson or .wkb with optional .zst",
			Required:  true,
			TakesFile: true,
		},
		&cli.Float64Flag{
			Name:    "spacing",
			Aliases: []string{"s"},
			Usage:   "grid cell size in layer units",
		},
		&cli.StringFlag{
			Name:  "srs",
			Usage: "spatial reference of the input, overrides the one in the file",
		},
		&cli.StringFlag{
			Name:  "mode",
			Usage: "rasterization mode, center or touched",
		},
		&cli.IntFlag{
			Name:        "threads",
			Aliases:     []string{"t"},
			DefaultText: "max",
		},
		&cli.StringFlag{
			Name:      "stats",
			Usage:     "write a resource usage report to this file",
			TakesFile: true,
		},
	}
}
