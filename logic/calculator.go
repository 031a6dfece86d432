package logic

// Calculator is one atomic unit of computation. Execute must only read
// Inputs and only write Outputs, and is never called concurrently with
// itself. Implementations must be comparable, typically pointers.
type Calculator interface {
	Inputs() []*SignalBit
	Outputs() []*SignalBit
	Execute()
}

// Named is implemented by calculators that have a display name.
type Named interface {
	Name() string
}

// Func is a Calculator built from a step function.
type Func struct {
	name string
	in   Signal
	out  Signal
	step func(in, out Signal)
}

func NewFunc(name string, in, out Signal, step func(in, out Signal)) *Func {
	if step == nil {
		panic("logic: nil step function for " + name)
	}
	return &Func{name: name, in: in, out: out, step: step}
}

func (f *Func) Name() string          { return f.name }
func (f *Func) In() Signal            { return f.in }
func (f *Func) Out() Signal           { return f.out }
func (f *Func) Inputs() []*SignalBit  { return f.in.bits }
func (f *Func) Outputs() []*SignalBit { return f.out.bits }
func (f *Func) Execute()              { f.step(f.in, f.out) }

func (f *Func) String() string { return f.name }
