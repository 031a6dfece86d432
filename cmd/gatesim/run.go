package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/delaneyj/bitparty/logic"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"go.uber.org/atomic"
)

func run(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	acc, err := newAccumulator(int(cmd.Int(bitsKey)))
	if err != nil {
		return err
	}
	sim, err := acc.simulator(int(cmd.Int(workersKey)), newLogProgress())
	if err != nil {
		return err
	}
	defer sim.Shutdown()

	var calculations atomic.Int64
	sim.OnCalculated(func(logic.Calculator) { calculations.Inc() })

	sim.ScheduleAll()
	sim.DoSimulation()

	rng := rand.New(rand.NewSource(int64(cmd.Int(seedKey))))
	iterations := int(cmd.Int(iterationsKey))
	mask := acc.mask()
	var want uint64
	waves := 0
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := rng.Uint64() & mask
		waves += acc.cycle(sim, v)
		want = (want + v) & mask

		got, ok := acc.acc.Uint()
		if !ok || got != want {
			return errors.Errorf("cycle %d: accumulator holds %s, want %d", i, acc.acc, want)
		}
		log.WithFields(log.Fields{"cycle": i, "in": v, "acc": got}).Debug("clocked")
	}
	elapsed := time.Since(start)

	fmt.Printf("%s cycles, %s waves, %s calculations in %v (%s calculations/s)\n",
		humanize.Comma(int64(iterations)),
		humanize.Comma(int64(waves)),
		humanize.Comma(calculations.Load()),
		elapsed,
		humanize.Comma(int64(float64(calculations.Load())/elapsed.Seconds())),
	)
	fmt.Printf("accumulator = %d (%s)\n", want, acc.acc)

	if path := cmd.String(snapshotKey); path != "" {
		buf, err := json.Marshal(sim.Snapshot())
		if err != nil {
			return errors.Wrap(err, "encode snapshot")
		}
		if err := os.WriteFile(path, buf, 0644); err != nil {
			return errors.Wrap(err, "write snapshot")
		}
		log.WithFields(log.Fields{"path": path, "size": humanize.Bytes(uint64(len(buf)))}).Info("snapshot written")
	}
	return nil
}
