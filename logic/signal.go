package logic

import (
	"strconv"
	"strings"
)

// Signal is an ordered, immutable list of SignalBit references. Index 0 is
// the least significant bit. Several Signals may share the same SignalBits.
type Signal struct {
	bits []*SignalBit
}

func NewSignal(bits ...*SignalBit) Signal {
	for _, b := range bits {
		if b == nil {
			panic("logic: nil SignalBit in Signal")
		}
	}
	return Signal{bits: append([]*SignalBit(nil), bits...)}
}

// NewBus allocates width fresh wires named name[0] .. name[width-1], all
// holding v.
func NewBus(name string, width int, v Bit) Signal {
	bits := make([]*SignalBit, width)
	for i := range bits {
		bits[i] = NewSignalBit(name+"["+strconv.Itoa(i)+"]", v)
	}
	return Signal{bits: bits}
}

func (s Signal) Len() int { return len(s.bits) }

func (s Signal) Bit(i int) *SignalBit { return s.bits[i] }

// Bits returns a copy of the underlying references.
func (s Signal) Bits() []*SignalBit {
	return append([]*SignalBit(nil), s.bits...)
}

// Concat returns s followed by others, s providing the low bits.
func (s Signal) Concat(others ...Signal) Signal {
	n := len(s.bits)
	for _, o := range others {
		n += len(o.bits)
	}
	bits := make([]*SignalBit, 0, n)
	bits = append(bits, s.bits...)
	for _, o := range others {
		bits = append(bits, o.bits...)
	}
	return Signal{bits: bits}
}

// Slice returns the bits [from, to).
func (s Signal) Slice(from, to int) Signal {
	return Signal{bits: append([]*SignalBit(nil), s.bits[from:to]...)}
}

// Repeat returns s concatenated n times.
func (s Signal) Repeat(n int) Signal {
	if n < 0 {
		panic("logic: negative repeat count")
	}
	bits := make([]*SignalBit, 0, n*len(s.bits))
	for i := 0; i < n; i++ {
		bits = append(bits, s.bits...)
	}
	return Signal{bits: bits}
}

func (s Signal) Get() []Bit {
	vs := make([]Bit, len(s.bits))
	for i, b := range s.bits {
		vs[i] = b.Get()
	}
	return vs
}

// Set writes vs bit by bit. Concurrent readers may see a partial update.
func (s Signal) Set(vs []Bit) {
	if len(vs) != len(s.bits) {
		panic("logic: signal width mismatch: " + strconv.Itoa(len(vs)) + " values for " + strconv.Itoa(len(s.bits)) + " bits")
	}
	for i, b := range s.bits {
		b.Set(vs[i])
	}
}

// Uint returns the value of s as an unsigned integer. ok is false when one
// of the bits is HighZ or s is wider than 64 bits.
func (s Signal) Uint() (v uint64, ok bool) {
	if len(s.bits) > 64 {
		return 0, false
	}
	for i, b := range s.bits {
		switch b.Get() {
		case High:
			v |= 1 << uint(i)
		case HighZ:
			return 0, false
		}
	}
	return v, true
}

func (s Signal) SetUint(v uint64) {
	for i, b := range s.bits {
		b.Set(FromBool(i < 64 && v&(1<<uint(i)) != 0))
	}
}

// AddListener registers fn on every distinct bit of s and returns a function
// removing all of these registrations.
func (s Signal) AddListener(fn func(s Signal, b *SignalBit, old, new Bit)) (cancel func()) {
	type reg struct {
		b  *SignalBit
		id Subscription
	}
	l := ListenerFunc(func(b *SignalBit, old, new Bit) { fn(s, b, old, new) })
	seen := make(map[*SignalBit]struct{}, len(s.bits))
	regs := make([]reg, 0, len(s.bits))
	for _, b := range s.bits {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		regs = append(regs, reg{b, b.AddListener(l)})
	}
	return func() {
		for _, r := range regs {
			r.b.RemoveListener(r.id)
		}
	}
}

// String prints the most significant bit first.
func (s Signal) String() string {
	var sb strings.Builder
	for i := len(s.bits) - 1; i >= 0; i-- {
		sb.WriteString(s.bits[i].Get().String())
	}
	return sb.String()
}
