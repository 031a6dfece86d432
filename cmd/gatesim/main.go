package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const (
	verboseKey    = "verbose"
	bitsKey       = "bits"
	workersKey    = "workers"
	formatKey     = "format"
	iterationsKey = "iterations"
	seedKey       = "seed"
	snapshotKey   = "snapshot"
)

func main() {
	cmd := &cli.Command{
		Name:  "gatesim",
		Usage: "Analyze and run an accumulator circuit",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log analysis and scheduling details",
			},
			&cli.IntFlag{
				Name:  bitsKey,
				Usage: "Width of the accumulator",
				Value: 8,
			},
			&cli.IntFlag{
				Name:  workersKey,
				Usage: "Worker goroutines, 0 for GOMAXPROCS",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "schedule",
				Usage: "Print the coordinates assigned to every calculator",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  formatKey,
						Usage: "Output format, table or dot",
						Value: "table",
					},
				},
				Action: schedule,
			},
			{
				Name:  "run",
				Usage: "Accumulate random operands and check the result",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  iterationsKey,
						Usage: "Clock cycles to run",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  seedKey,
						Usage: "Seed of the operand generator",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  snapshotKey,
						Usage: "Write the final scheduling state as JSON to this file",
					},
				},
				Action: run,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(cmd *cli.Command) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cmd.Bool(verboseKey) {
		log.SetLevel(log.DebugLevel)
	}
}
