package logic_test

import (
	"sync"
	"testing"

	"github.com/delaneyj/bitparty/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitTruthTables(t *testing.T) {
	L, H, Z := logic.Low, logic.High, logic.HighZ

	td := []struct {
		a, b         logic.Bit
		and, or, xor logic.Bit
		is           logic.Bit
	}{
		{L, L, L, L, L, L},
		{L, H, L, H, H, H},
		{H, L, L, H, H, L},
		{H, H, H, H, L, H},
		{H, Z, L, H, H, H},
		{Z, H, L, H, H, H},
		{Z, Z, L, L, L, Z},
		{L, Z, L, L, L, L},
	}
	for _, d := range td {
		assert.Equal(t, d.and, d.a.And(d.b), "%v and %v", d.a, d.b)
		assert.Equal(t, d.or, d.a.Or(d.b), "%v or %v", d.a, d.b)
		assert.Equal(t, d.xor, d.a.Xor(d.b), "%v xor %v", d.a, d.b)
		assert.Equal(t, d.is, d.a.Is(d.b), "%v is %v", d.a, d.b)
	}

	assert.Equal(t, H, L.Not())
	assert.Equal(t, L, H.Not())
	assert.Equal(t, Z, Z.Not())
	assert.Equal(t, "0", L.String())
	assert.Equal(t, "1", H.String())
	assert.Equal(t, "Z", Z.String())
	assert.Panics(t, func() { logic.Bit(7).Not() })
}

func TestSignalBitNotifiesOnlyOnChange(t *testing.T) {
	b := logic.NewSignalBit("b", logic.Low)

	type event struct{ old, new logic.Bit }
	var events []event
	id := b.AddListener(logic.ListenerFunc(func(sb *logic.SignalBit, old, new logic.Bit) {
		assert.Same(t, b, sb)
		events = append(events, event{old, new})
	}))

	b.Set(logic.Low)
	assert.Empty(t, events)

	b.Set(logic.High)
	b.Set(logic.High)
	b.Set(logic.HighZ)
	assert.Equal(t, []event{{logic.Low, logic.High}, {logic.High, logic.HighZ}}, events)

	require.True(t, b.RemoveListener(id))
	assert.False(t, b.RemoveListener(id))
	b.Set(logic.Low)
	assert.Len(t, events, 2)
	assert.Equal(t, 0, b.Listeners())
}

func TestSignalBitIdentity(t *testing.T) {
	a := logic.NewSignalBit("", logic.High)
	b := logic.NewSignalBit("", logic.High)
	assert.NotSame(t, a, b)
	assert.Less(t, a.ID(), b.ID())
	assert.Equal(t, a.Get(), b.Get())
}

func TestConstants(t *testing.T) {
	assert.Same(t, logic.ConstLow, logic.Const(logic.Low))
	assert.Same(t, logic.ConstHigh, logic.Const(logic.High))
	assert.Same(t, logic.ConstZ, logic.Const(logic.HighZ))
	assert.True(t, logic.ConstHigh.Constant())

	// writing the value it already holds is a no-op
	logic.ConstHigh.Set(logic.High)
	assert.Panics(t, func() { logic.ConstHigh.Set(logic.Low) })
	assert.Equal(t, logic.High, logic.ConstHigh.Get())
}

func TestSignalBitConcurrentSet(t *testing.T) {
	b := logic.NewSignalBit("racy", logic.Low)
	var mu sync.Mutex
	changes := 0
	b.AddListener(logic.ListenerFunc(func(_ *logic.SignalBit, old, new logic.Bit) {
		assert.NotEqual(t, old, new)
		mu.Lock()
		changes++
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				b.Set(logic.FromBool((i+j)%2 == 0))
			}
		}(i)
	}
	wg.Wait()
	assert.Greater(t, changes, 0)
}

func TestSignalBitListenerChurn(t *testing.T) {
	b := logic.NewSignalBit("churn", logic.Low)
	noop := logic.ListenerFunc(func(*logic.SignalBit, logic.Bit, logic.Bit) {})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				id := b.AddListener(noop)
				b.Set(logic.FromBool(j%2 == 0))
				b.RemoveListener(id)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, b.Listeners())
}

func TestSignalComposition(t *testing.T) {
	a := logic.NewBus("a", 4, logic.Low)
	b := logic.NewBus("b", 2, logic.Low)

	ab := a.Concat(b)
	require.Equal(t, 6, ab.Len())
	assert.Same(t, a.Bit(0), ab.Bit(0))
	assert.Same(t, b.Bit(1), ab.Bit(5))

	mid := ab.Slice(2, 5)
	assert.Equal(t, 3, mid.Len())
	assert.Same(t, a.Bit(2), mid.Bit(0))
	assert.Same(t, b.Bit(0), mid.Bit(2))

	rep := b.Repeat(3)
	assert.Equal(t, 6, rep.Len())
	assert.Same(t, b.Bit(0), rep.Bit(4))

	// aliases see each other's writes
	ab.SetUint(0b10_1001)
	v, ok := a.Uint()
	require.True(t, ok)
	assert.Equal(t, uint64(0b1001), v)
	v, ok = b.Uint()
	require.True(t, ok)
	assert.Equal(t, uint64(0b10), v)
	assert.Equal(t, "101001", ab.String())

	a.Bit(3).Set(logic.HighZ)
	_, ok = a.Uint()
	assert.False(t, ok)

	assert.Panics(t, func() { a.Set([]logic.Bit{logic.High}) })
	assert.Panics(t, func() { logic.NewSignal(nil) })
}

func TestSignalListenerAggregates(t *testing.T) {
	b := logic.NewBus("b", 2, logic.Low)
	s := b.Concat(b) // the same two wires twice

	var changed []string
	cancel := s.AddListener(func(sig logic.Signal, sb *logic.SignalBit, old, new logic.Bit) {
		assert.Equal(t, 4, sig.Len())
		changed = append(changed, sb.Name())
	})

	s.SetUint(0b0101)
	assert.Equal(t, []string{"b[0]"}, changed)

	cancel()
	s.SetUint(0)
	assert.Len(t, changed, 1)
	assert.Equal(t, 0, b.Bit(0).Listeners())
}

func TestFunc(t *testing.T) {
	in := logic.NewBus("in", 2, logic.Low)
	out := logic.NewBus("out", 1, logic.Low)
	f := logic.NewFunc("and", in, out, func(in, out logic.Signal) {
		out.Bit(0).Set(in.Bit(0).Get().And(in.Bit(1).Get()))
	})

	var c logic.Calculator = f
	assert.Equal(t, in.Bits(), c.Inputs())
	assert.Equal(t, out.Bits(), c.Outputs())
	assert.Equal(t, "and", f.Name())

	in.SetUint(3)
	c.Execute()
	assert.Equal(t, logic.High, out.Bit(0).Get())
}
