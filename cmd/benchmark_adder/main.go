package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/delaneyj/bitparty/gates"
	"github.com/delaneyj/bitparty/logic"
	"github.com/delaneyj/bitparty/simulator"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

func main() {
	log.Info("Starting adder benchmark, please wait...")
	defer log.Info("Finished adder benchmark")

	perfTestCfgs := []benchmarkTestConfig{
		{
			name:       "single byte",
			width:      8,
			adders:     1,
			iterations: 20000,
		},
		{
			name:       "word",
			width:      32,
			adders:     1,
			iterations: 5000,
		},
		{
			name:       "many bytes",
			width:      8,
			adders:     256,
			iterations: 500,
		},
		{
			name:       "many words",
			width:      64,
			adders:     64,
			iterations: 200,
		},
		{
			name:       "many words, one worker",
			width:      64,
			adders:     64,
			workers:    1,
			iterations: 200,
		},
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "size", "workers", "nTimes", "waves", "calculations", "time", "updateRate",
	})

	testRepeats := 5
	for _, cfg := range perfTestCfgs {
		log.WithField("config", cfg.name).Info("running")
		bench, err := benchmarkMakeAdders(&cfg)
		if err != nil {
			log.Fatal(err)
		}

		best := &results{duration: time.Hour}
		for i := 0; i < testRepeats; i++ {
			log.Debugf("Running '%s' config, iteration %d/%d", cfg.name, i+1, testRepeats)
			res, err := bench.run(cfg.iterations)
			if err != nil {
				log.Fatal(err)
			}
			if res.duration < best.duration {
				best = res
			}
		}
		bench.sim.Shutdown()

		updateRate := float64(best.count) / (float64(best.duration) / float64(time.Millisecond))
		table.Append([]string{
			cfg.name,
			fmt.Sprintf("%dx%d", cfg.adders, cfg.width),
			fmt.Sprint(cfg.workers),
			humanize.Comma(cfg.iterations),
			humanize.Comma(best.waves),
			humanize.Comma(best.count),
			fmt.Sprint(best.duration),
			humanize.Comma(int64(updateRate)),
		})
	}
	table.Render()
}

type benchmarkTestConfig struct {
	name       string // friendly name for the test, should be unique
	width      int    // bits per adder
	adders     int    // independent adders in the circuit
	workers    int    // simulator workers, 0 for GOMAXPROCS
	iterations int64  // operand changes per run
}

type results struct {
	waves    int64
	count    int64
	duration time.Duration
}

type adder struct {
	a, b, sum logic.Signal
	cout      *logic.SignalBit
}

type benchmarkAdders struct {
	sim     *simulator.Simulator
	adders  []adder
	width   int
	counter *atomic.Int64
	rng     *rand.Rand
}

func benchmarkMakeAdders(cfg *benchmarkTestConfig) (*benchmarkAdders, error) {
	bench := &benchmarkAdders{
		width:   cfg.width,
		counter: atomic.NewInt64(0),
		rng:     rand.New(rand.NewSource(1)),
	}

	var calcs []logic.Calculator
	for i := 0; i < cfg.adders; i++ {
		ad := adder{
			a:    logic.NewBus(fmt.Sprintf("a%d", i), cfg.width, logic.Low),
			b:    logic.NewBus(fmt.Sprintf("b%d", i), cfg.width, logic.Low),
			sum:  logic.NewBus(fmt.Sprintf("s%d", i), cfg.width, logic.Low),
			cout: logic.NewSignalBit(fmt.Sprintf("cout%d", i), logic.Low),
		}
		calcs = append(calcs, gates.RippleAdder(fmt.Sprintf("add%d", i), ad.a, ad.b, logic.ConstLow, ad.sum, ad.cout)...)
		bench.adders = append(bench.adders, ad)
	}

	sim, err := simulator.New(calcs, nil, &simulator.Config{Workers: cfg.workers})
	if err != nil {
		return nil, err
	}
	sim.OnCalculated(func(logic.Calculator) { bench.counter.Inc() })
	sim.ScheduleAll()
	sim.DoSimulation()
	bench.sim = sim
	return bench, nil
}

func (bench *benchmarkAdders) run(iterations int64) (*results, error) {
	mask := uint64(1)<<bench.width - 1
	if bench.width >= 64 {
		mask = ^uint64(0)
	}

	bench.counter.Store(0)
	res := &results{}
	start := time.Now()
	for i := int64(0); i < iterations; i++ {
		for _, ad := range bench.adders {
			ad.a.SetUint(bench.rng.Uint64() & mask)
			ad.b.SetUint(bench.rng.Uint64() & mask)
		}
		res.waves += int64(bench.sim.DoSimulation())
	}
	res.duration = time.Since(start)
	res.count = bench.counter.Load()

	// verify the last sums
	for i, ad := range bench.adders {
		x, _ := ad.a.Uint()
		y, _ := ad.b.Uint()
		s, _ := ad.sum.Uint()
		if !added(x, y, s, ad.cout.Get().Bool(), mask) {
			return nil, errors.Errorf("adder %d: %d + %d gave %d", i, x, y, s)
		}
	}
	return res, nil
}

// added reports whether s and carry are the sum of x and y truncated to mask
// and its carry out.
func added(x, y, s uint64, carry bool, mask uint64) bool {
	sum := (x + y) & mask
	return s == sum && carry == (sum < x)
}
