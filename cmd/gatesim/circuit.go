package main

import (
	"github.com/delaneyj/bitparty/gates"
	"github.com/delaneyj/bitparty/logic"
	"github.com/delaneyj/bitparty/simulator"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// accumulator adds in to acc on every rising edge of clk.
//
//	in ---+
//	      adder -> sum -> reg -> acc
//	acc --+                ^
//	clk -------------------+
//
// The operand is declared earlier than the clock, so the adder always
// settles before the register samples it.
type accumulator struct {
	width int
	in    logic.Signal
	sum   logic.Signal
	acc   logic.Signal
	clk   *logic.SignalBit
	carry *logic.SignalBit
	reg   *gates.Register

	calcs []logic.Calculator
	prio  simulator.Priorities
}

func newAccumulator(width int) (*accumulator, error) {
	if width <= 0 || width > 64 {
		return nil, errors.Errorf("accumulator width %d not in [1, 64]", width)
	}
	a := &accumulator{
		width: width,
		in:    logic.NewBus("in", width, logic.Low),
		sum:   logic.NewBus("sum", width, logic.Low),
		acc:   logic.NewBus("acc", width, logic.Low),
		clk:   logic.NewSignalBit("clk", logic.Low),
		carry: logic.NewSignalBit("carry", logic.Low),
	}
	a.reg = gates.NewRegister("reg", a.clk, a.sum, a.acc)
	a.calcs = append(gates.RippleAdder("add", a.in, a.acc, logic.ConstLow, a.sum, a.carry), a.reg)
	a.prio = simulator.Priorities{}.AddSignal(a.in, logic.NewSignal(a.clk))
	return a, nil
}

func (a *accumulator) simulator(workers int, progress simulator.Progress) (*simulator.Simulator, error) {
	sim, err := simulator.New(a.calcs, a.prio, &simulator.Config{
		Workers:  workers,
		Progress: progress,
		Logger:   log.WithField("component", "simulator"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build accumulator")
	}
	return sim, nil
}

func (a *accumulator) mask() uint64 {
	if a.width == 64 {
		return ^uint64(0)
	}
	return 1<<a.width - 1
}

// cycle loads v, lets the adder settle and pulses the clock. It returns the
// number of waves run.
func (a *accumulator) cycle(sim *simulator.Simulator, v uint64) int {
	a.in.SetUint(v)
	waves := sim.DoSimulation()
	a.clk.Set(logic.High)
	waves += sim.DoSimulation()
	a.clk.Set(logic.Low)
	waves += sim.DoSimulation()
	return waves
}

// logProgress reports every analysis pass at debug level.
type logProgress struct {
	totals map[simulator.Pass]int
	done   map[simulator.Pass]int
}

func newLogProgress() *logProgress {
	return &logProgress{totals: map[simulator.Pass]int{}, done: map[simulator.Pass]int{}}
}

func (p *logProgress) Begin(pass simulator.Pass, total int) {
	p.totals[pass] = total
	log.WithFields(log.Fields{"pass": pass, "total": total}).Debug("analysis pass")
}

func (p *logProgress) Advance(pass simulator.Pass, n int) {
	p.done[pass] += n
	if p.done[pass] == p.totals[pass] {
		log.WithField("pass", pass).Debug("analysis pass done")
	}
}
