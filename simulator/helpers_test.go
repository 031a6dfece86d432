package simulator_test

import (
	"slices"
	"sync"
	"testing"

	"github.com/delaneyj/bitparty/logic"
	"github.com/delaneyj/bitparty/simulator"
	"github.com/stretchr/testify/require"
)

func bit(name string) *logic.SignalBit {
	return logic.NewSignalBit(name, logic.Low)
}

func buffer(name string, in, out *logic.SignalBit) *logic.Func {
	return logic.NewFunc(name, logic.NewSignal(in), logic.NewSignal(out), func(in, out logic.Signal) {
		out.Bit(0).Set(in.Bit(0).Get())
	})
}

func inverter(name string, in, out *logic.SignalBit) *logic.Func {
	return logic.NewFunc(name, logic.NewSignal(in), logic.NewSignal(out), func(in, out logic.Signal) {
		out.Bit(0).Set(in.Bit(0).Get().Not())
	})
}

func nor(name string, a, b, out *logic.SignalBit) *logic.Func {
	return logic.NewFunc(name, logic.NewSignal(a, b), logic.NewSignal(out), func(in, out logic.Signal) {
		out.Bit(0).Set(in.Bit(0).Get().Or(in.Bit(1).Get()).Not())
	})
}

func calcs(fs ...*logic.Func) []logic.Calculator {
	out := make([]logic.Calculator, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

func build(t *testing.T, prio simulator.Priorities, fs ...*logic.Func) *simulator.Simulator {
	t.Helper()
	sim, err := simulator.New(calcs(fs...), prio, &simulator.Config{Workers: 4})
	require.NoError(t, err)
	t.Cleanup(sim.Shutdown)
	return sim
}

func coord(t *testing.T, sim *simulator.Simulator, c logic.Calculator) simulator.Coordinate {
	t.Helper()
	co, ok := sim.Coordinate(c)
	require.True(t, ok)
	return co
}

// recorder collects the names of the calculators run by the simulator.
type recorder struct {
	mu  sync.Mutex
	ran []string
}

func record(sim *simulator.Simulator) *recorder {
	r := &recorder{}
	sim.OnCalculated(func(c logic.Calculator) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.ran = append(r.ran, c.(logic.Named).Name())
	})
	return r
}

// take returns the names recorded since the last call, sorted.
func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.ran
	r.ran = nil
	slices.Sort(out)
	return out
}

func names(cs []logic.Calculator) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.(logic.Named).Name()
	}
	return out
}
