package gates

import "github.com/delaneyj/bitparty/logic"

// Register copies d to q on every rising edge of clk. It keeps the last
// clock value it saw, which a simulator never races since a calculator is
// not run concurrently with itself.
type Register struct {
	name   string
	clk    *logic.SignalBit
	d, q   logic.Signal
	inputs []*logic.SignalBit
	last   logic.Bit
}

func NewRegister(name string, clk *logic.SignalBit, d, q logic.Signal) *Register {
	if d.Len() != q.Len() {
		panic("gates: register d and q widths differ")
	}
	return &Register{
		name:   name,
		clk:    clk,
		d:      d,
		q:      q,
		inputs: logic.NewSignal(clk).Concat(d).Bits(),
		last:   clk.Get(),
	}
}

func (r *Register) Name() string                { return r.name }
func (r *Register) Inputs() []*logic.SignalBit  { return r.inputs }
func (r *Register) Outputs() []*logic.SignalBit { return r.q.Bits() }
func (r *Register) Q() logic.Signal             { return r.q }

func (r *Register) String() string { return r.name }

func (r *Register) Execute() {
	c := r.clk.Get()
	if r.last != logic.High && c == logic.High {
		r.q.Set(r.d.Get())
	}
	r.last = c
}
