package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/bitparty/gates"
	"github.com/delaneyj/bitparty/logic"
	"github.com/delaneyj/bitparty/simulator"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
)

var (
	profile = flag.String("profile", "default.pgo", "CPU profile output, empty to disable")
	workers = flag.Int("workers", 0, "worker goroutines, 0 for GOMAXPROCS")
)

func main() {
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Info("warming up")
	benchmarkChains(false)
	benchmarkChains(true)
}

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100, 1_000}
	iters = 100
)

// chains builds w inverter chains of depth h, all fed by src.
func chains(src *logic.SignalBit, w, h int) []logic.Calculator {
	calcs := make([]logic.Calculator, 0, w*h)
	for i := 0; i < w; i++ {
		last := src
		for j := 0; j < h; j++ {
			next := logic.NewSignalBit(fmt.Sprintf("c%d.%d", i, j), logic.Low)
			calcs = append(calcs, gates.Not(fmt.Sprintf("not%d.%d", i, j), last, next))
			last = next
		}
	}
	return calcs
}

func benchmarkChains(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Inverter chains")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "build", "waves", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			src := logic.NewSignalBit("src", logic.Low)
			start := time.Now()
			sim, err := simulator.New(chains(src, w, h), nil, &simulator.Config{Workers: *workers})
			if err != nil {
				log.Fatal(err)
			}
			build := time.Since(start)

			sim.ScheduleAll()
			sim.DoSimulation()

			waves := 0
			for i := 0; i < iters; i++ {
				start := time.Now()
				src.Set(src.Get().Not())
				waves = sim.DoSimulation()
				tach.AddTime(time.Since(start))
			}
			sim.Shutdown()

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					build,
					waves,
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
