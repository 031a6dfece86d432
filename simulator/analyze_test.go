package simulator_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/delaneyj/bitparty/logic"
	"github.com/delaneyj/bitparty/simulator"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndependentCalculators(t *testing.T) {
	// x1 -> X -> x2
	// y1 -> Y -> y2
	x1, x2, y1, y2 := bit("x1"), bit("x2"), bit("y1"), bit("y2")
	x := buffer("X", x1, x2)
	y := buffer("Y", y1, y2)
	sim := build(t, nil, x, y)
	ran := record(sim)

	cx, cy := coord(t, sim, x), coord(t, sim, y)
	assert.Equal(t, simulator.Coordinate{Priority: 0, Group: 0, Order: 0}, cx)
	assert.Equal(t, simulator.Coordinate{Priority: 0, Group: 1, Order: 0}, cy)
	assert.Equal(t, 1, sim.Levels())

	x1.Set(logic.High)
	y1.Set(logic.High)
	require.True(t, sim.DoStep())
	assert.Equal(t, []string{"X", "Y"}, ran.take())
	assert.False(t, sim.DoStep())
	assert.Equal(t, logic.High, x2.Get())
	assert.Equal(t, logic.High, y2.Get())
}

func TestChainedCalculators(t *testing.T) {
	// in -> X -> b1 -> Y -> b2
	in, b1, b2 := bit("in"), bit("b1"), bit("b2")
	x := buffer("X", in, b1)
	y := buffer("Y", b1, b2)
	sim := build(t, nil, y, x)
	ran := record(sim)

	cx, cy := coord(t, sim, x), coord(t, sim, y)
	assert.Equal(t, 0, cx.Order)
	assert.Equal(t, 1, cy.Order)
	assert.Equal(t, cx.Group, cy.Group)

	in.Set(logic.High)
	require.True(t, sim.DoStep())
	assert.Equal(t, []string{"X"}, ran.take())
	require.True(t, sim.DoStep())
	assert.Equal(t, []string{"Y"}, ran.take())
	assert.False(t, sim.DoStep())
	assert.Equal(t, logic.High, b2.Get())
}

func TestNondisjunctReaders(t *testing.T) {
	clkHigh, clkLow, out := bit("clk_high"), bit("clk_low"), bit("out")
	both := logic.NewFunc("both", logic.NewSignal(clkHigh, clkLow), logic.NewSignal(out), func(in, out logic.Signal) {})

	_, err := simulator.New(calcs(both), simulator.Priorities{}.Add(clkHigh, clkLow), nil)
	require.Error(t, err)

	var nd *simulator.NondisjunctReadersWritersError
	require.True(t, errors.As(err, &nd))
	assert.Equal(t, simulator.DisjunctReaders, nd.Kind)
	assert.Same(t, clkHigh, nd.High)
	assert.Same(t, clkLow, nd.Low)
	assert.Equal(t, []string{"both"}, names(nd.Calculators))
	assert.Contains(t, err.Error(), "clk_high > clk_low")
}

func TestNondisjunctWriters(t *testing.T) {
	in, a, b := bit("in"), bit("a"), bit("b")
	w := logic.NewFunc("w", logic.NewSignal(in), logic.NewSignal(a, b), func(in, out logic.Signal) {})

	_, err := simulator.New(calcs(w), simulator.Priorities{}.Add(a, b), nil)
	var nd *simulator.NondisjunctReadersWritersError
	require.True(t, errors.As(err, &nd))
	assert.Equal(t, simulator.DisjunctWriters, nd.Kind)
}

func TestAllViolationsReported(t *testing.T) {
	a, b, c, d, out := bit("a"), bit("b"), bit("c"), bit("d"), bit("out")
	ab := logic.NewFunc("ab", logic.NewSignal(a, b), logic.NewSignal(out), func(in, out logic.Signal) {})
	cd := logic.NewFunc("cd", logic.NewSignal(c, d), logic.NewSignal(out), func(in, out logic.Signal) {})

	_, err := simulator.New(calcs(ab, cd), simulator.Priorities{}.Add(a, b).Add(c, d), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a > b")
	assert.Contains(t, err.Error(), "c > d")
}

func TestDirectedCycle(t *testing.T) {
	x, y, o1, o2 := bit("x"), bit("y"), bit("o1"), bit("o2")
	rx := buffer("rx", x, o1)
	ry := buffer("ry", y, o2)

	prio := simulator.Priorities{}.Add(x, y).Add(y, x)
	_, err := simulator.New(calcs(rx, ry), prio, nil)

	var cycle *simulator.DirectedPriorityCycleError
	require.True(t, errors.As(err, &cycle))
	assert.Len(t, cycle.Pairs, 2)
}

func TestChainedDirectedCycle(t *testing.T) {
	a, b, c := bit("a"), bit("b"), bit("c")
	ra := buffer("ra", a, bit("oa"))
	rb := buffer("rb", b, bit("ob"))
	rc := buffer("rc", c, bit("oc"))

	// a > b > c is fine
	sim, err := simulator.New(calcs(ra, rb, rc), simulator.Priorities{}.Add(a, b).Add(b, c), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sim.Levels())
	sim.Shutdown()

	// a > b > c > a is not
	prio := simulator.Priorities{}.Add(a, b).Add(b, c).Add(c, a)
	_, err = simulator.New(calcs(ra, rb, rc), prio, nil)
	var cycle *simulator.DirectedPriorityCycleError
	require.True(t, errors.As(err, &cycle))
	assert.Len(t, cycle.Pairs, 3)
}

func TestPriorityLevels(t *testing.T) {
	// hi -> A -> o1 -> C -> o3    level 0
	// lo -> B -> o2               level 1
	// in -> D -> o4               last level
	hi, lo, in := bit("hi"), bit("lo"), bit("in")
	o1, o2, o3, o4 := bit("o1"), bit("o2"), bit("o3"), bit("o4")
	a := buffer("A", hi, o1)
	b := buffer("B", lo, o2)
	c := buffer("C", o1, o3)
	d := buffer("D", in, o4)
	sim := build(t, simulator.Priorities{}.Add(hi, lo), d, c, b, a)
	ran := record(sim)

	assert.Equal(t, 3, sim.Levels())
	assert.Equal(t, 0, coord(t, sim, a).Priority)
	assert.Equal(t, 0, coord(t, sim, c).Priority)
	assert.Equal(t, 1, coord(t, sim, b).Priority)
	assert.Equal(t, 2, coord(t, sim, d).Priority)
	assert.Equal(t, coord(t, sim, a).Order+1, coord(t, sim, c).Order)

	in.Set(logic.High)
	lo.Set(logic.High)
	hi.Set(logic.High)

	var waves [][]string
	for sim.DoStep() {
		waves = append(waves, ran.take())
	}
	assert.Equal(t, [][]string{{"A"}, {"C"}, {"B"}, {"D"}}, waves)
}

func TestIndependentDeclarationsShareLevels(t *testing.T) {
	// x > y > z chained, p > q on its own
	// x -> A, y -> B, z -> C, p -> P, q -> Q
	x, y, z, p, q := bit("x"), bit("y"), bit("z"), bit("p"), bit("q")
	a := buffer("A", x, bit("oa"))
	b := buffer("B", y, bit("ob"))
	c := buffer("C", z, bit("oc"))
	pp := buffer("P", p, bit("op"))
	qq := buffer("Q", q, bit("oq"))
	prio := simulator.Priorities{}.Add(x, y).Add(y, z).Add(p, q)
	sim := build(t, prio, qq, c, pp, b, a)
	ran := record(sim)

	assert.Equal(t, 3, sim.Levels())
	for want, fs := range [][]*logic.Func{{a, pp}, {b, qq}, {c}} {
		for _, f := range fs {
			assert.Equal(t, want, coord(t, sim, f).Priority, f.Name())
		}
	}

	for _, in := range []*logic.SignalBit{x, y, z, p, q} {
		in.Set(logic.High)
	}
	var waves [][]string
	for sim.DoStep() {
		waves = append(waves, ran.take())
	}
	assert.Equal(t, [][]string{{"A", "P"}, {"B", "Q"}, {"C"}}, waves)
}

func TestPriorityOnSignals(t *testing.T) {
	clk := logic.NewBus("clk", 2, logic.Low)
	a := buffer("A", clk.Bit(0), bit("o1"))
	b := buffer("B", clk.Bit(1), bit("o2"))

	sim := build(t, simulator.Priorities{}.AddSignal(clk.Slice(0, 1), clk.Slice(1, 2)), a, b)
	assert.Less(t, coord(t, sim, a).Priority, coord(t, sim, b).Priority)
}

func TestWritersNeverShareOrder(t *testing.T) {
	//  i1 -> W1 \
	//            z -> R -> out
	//  i2 -> W2 /
	i1, i2, z, out := bit("i1"), bit("i2"), bit("z"), bit("out")
	w1 := logic.NewFunc("W1", logic.NewSignal(i1), logic.NewSignal(z), func(in, out logic.Signal) {})
	w2 := logic.NewFunc("W2", logic.NewSignal(i2), logic.NewSignal(z), func(in, out logic.Signal) {})
	r := buffer("R", z, out)
	sim := build(t, nil, w1, w2, r)

	c1, c2, cr := coord(t, sim, w1), coord(t, sim, w2), coord(t, sim, r)
	assert.Equal(t, c1.Group, c2.Group)
	assert.NotEqual(t, c1.Order, c2.Order)
	assert.Greater(t, cr.Order, c1.Order)
	assert.Greater(t, cr.Order, c2.Order)
}

func TestDuplicateCalculators(t *testing.T) {
	x := buffer("X", bit("in"), bit("out"))
	sim := build(t, nil, x, x, x)
	assert.Equal(t, 1, sim.Len())
}

func TestEmptySimulator(t *testing.T) {
	sim := build(t, nil)
	assert.Equal(t, 0, sim.Len())
	assert.False(t, sim.DoStep())
	assert.Equal(t, 0, sim.DoSimulation())
}

// randomCircuit wires n calculators over a pool of bits. Some bits have more
// than one writer and loops are allowed.
func randomCircuit(rng *rand.Rand, n, nbits int) ([]*logic.Func, []*logic.SignalBit) {
	bits := make([]*logic.SignalBit, nbits)
	for i := range bits {
		bits[i] = bit(fmt.Sprintf("b%d", i))
	}
	fs := make([]*logic.Func, n)
	for i := range fs {
		in := logic.NewSignal(bits[rng.Intn(nbits)], bits[rng.Intn(nbits)])
		out := logic.NewSignal(bits[rng.Intn(nbits)])
		fs[i] = logic.NewFunc(fmt.Sprintf("c%d", i), in, out, func(in, out logic.Signal) {
			out.Bit(0).Set(in.Bit(0).Get().Xor(in.Bit(1).Get()))
		})
	}
	return fs, bits
}

func TestCoordinatesCoverAndConflictFree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		fs, bits := randomCircuit(rng, 200, 150)

		prio := simulator.Priorities{}
		for i := 0; i < 3; i++ {
			prio.Add(bits[rng.Intn(len(bits))], bits[rng.Intn(len(bits))])
		}
		sim, err := simulator.New(calcs(fs...), prio, nil)
		if err != nil {
			// random declarations may well be invalid
			var nd *simulator.NondisjunctReadersWritersError
			var cycle *simulator.DirectedPriorityCycleError
			require.True(t, errors.As(err, &nd) || errors.As(err, &cycle), err)
			continue
		}

		placements := sim.Placements()
		require.Len(t, placements, len(fs))
		seen := map[simulator.Coordinate]bool{}
		for _, p := range placements {
			require.False(t, seen[p.Coordinate], "duplicate coordinate %+v", p.Coordinate)
			seen[p.Coordinate] = true
		}

		type wave struct{ priority, group, order int }
		written := map[*logic.SignalBit]map[wave]string{}
		for _, p := range placements {
			w := wave{p.Priority, p.Group, p.Order}
			for _, b := range p.Calculator.Outputs() {
				if written[b] == nil {
					written[b] = map[wave]string{}
				}
				other, ok := written[b][w]
				require.False(t, ok, "%s and %s write %s in the same wave", other, p.Calculator, b)
				written[b][w] = p.Calculator.(logic.Named).Name()
			}
		}
		sim.Shutdown()
	}
}

func TestReaders(t *testing.T) {
	in, o1, o2 := bit("in"), bit("o1"), bit("o2")
	a := buffer("A", in, o1)
	b := buffer("B", in, o2)
	sim := build(t, nil, a, b)
	assert.Equal(t, []string{"A", "B"}, names(sim.Readers(in)))
	assert.Empty(t, sim.Readers(o1))
}
