package logic

import (
	"runtime"
	"strconv"

	"go.uber.org/atomic"
)

// Listener receives value changes of a SignalBit. It runs synchronously on
// the goroutine that changed the value.
type Listener interface {
	BitChanged(b *SignalBit, old, new Bit)
}

type ListenerFunc func(b *SignalBit, old, new Bit)

func (fn ListenerFunc) BitChanged(b *SignalBit, old, new Bit) { fn(b, old, new) }

// Subscription identifies a listener registered on a SignalBit.
type Subscription uint64

type subscriber struct {
	id Subscription
	l  Listener
}

// SignalBit is a single wire of the circuit. Two SignalBits holding the same
// value are still different wires: identity is what the simulator tracks.
type SignalBit struct {
	id       uint64
	name     string
	constant bool

	value atomic.Uint32

	// subs is replaced wholesale on every change so that notification can
	// iterate a snapshot without locking. spin guards writers only.
	spin    atomic.Bool
	subs    atomic.Pointer[[]subscriber]
	lastSub Subscription
}

var lastID atomic.Uint64

// NewSignalBit allocates a wire holding v. The name is only used for display
// and may be empty.
func NewSignalBit(name string, v Bit) *SignalBit {
	b := &SignalBit{id: lastID.Inc(), name: name}
	b.value.Store(uint32(v.check()))
	return b
}

// ID returns the allocation sequence number of b. IDs are unique and
// increase with allocation order.
func (b *SignalBit) ID() uint64 { return b.id }

func (b *SignalBit) Name() string {
	if b.name == "" {
		return "#" + strconv.FormatUint(b.id, 10)
	}
	return b.name
}

// Constant reports whether b is one of ConstLow, ConstHigh or ConstZ.
func (b *SignalBit) Constant() bool { return b.constant }

func (b *SignalBit) Get() Bit {
	return Bit(b.value.Load())
}

// Set installs v. When the value actually changes every listener is called
// with the previous and new value before Set returns.
func (b *SignalBit) Set(v Bit) {
	v.check()
	for {
		old := Bit(b.value.Load())
		if old == v {
			return
		}
		if b.constant {
			panic("logic: cannot drive constant " + b.Name())
		}
		if b.value.CompareAndSwap(uint32(old), uint32(v)) {
			b.notify(old, v)
			return
		}
	}
}

func (b *SignalBit) notify(old, new Bit) {
	subs := b.subs.Load()
	if subs == nil {
		return
	}
	for _, s := range *subs {
		s.l.BitChanged(b, old, new)
	}
}

func (b *SignalBit) lock() {
	for !b.spin.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

func (b *SignalBit) unlock() {
	b.spin.Store(false)
}

// AddListener registers l and returns a handle for RemoveListener.
func (b *SignalBit) AddListener(l Listener) Subscription {
	if l == nil {
		panic("logic: nil listener")
	}
	b.lock()
	defer b.unlock()

	b.lastSub++
	var next []subscriber
	if cur := b.subs.Load(); cur != nil {
		next = make([]subscriber, len(*cur), len(*cur)+1)
		copy(next, *cur)
	}
	next = append(next, subscriber{id: b.lastSub, l: l})
	b.subs.Store(&next)
	return b.lastSub
}

// RemoveListener unregisters the listener behind id. It reports whether id
// was registered.
func (b *SignalBit) RemoveListener(id Subscription) bool {
	b.lock()
	defer b.unlock()

	cur := b.subs.Load()
	if cur == nil {
		return false
	}
	for i, s := range *cur {
		if s.id != id {
			continue
		}
		next := make([]subscriber, 0, len(*cur)-1)
		next = append(next, (*cur)[:i]...)
		next = append(next, (*cur)[i+1:]...)
		b.subs.Store(&next)
		return true
	}
	return false
}

// Listeners returns the number of registered listeners.
func (b *SignalBit) Listeners() int {
	if cur := b.subs.Load(); cur != nil {
		return len(*cur)
	}
	return 0
}

func (b *SignalBit) String() string {
	return b.Name() + "=" + b.Get().String()
}

var (
	ConstLow  = newConst("L", Low)
	ConstHigh = newConst("H", High)
	ConstZ    = newConst("Z", HighZ)
)

func newConst(name string, v Bit) *SignalBit {
	b := NewSignalBit(name, v)
	b.constant = true
	return b
}

// Const returns the shared constant wire for v.
func Const(v Bit) *SignalBit {
	switch v.check() {
	case Low:
		return ConstLow
	case High:
		return ConstHigh
	default:
		return ConstZ
	}
}
