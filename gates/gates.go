// Package gates provides ready made calculators: the usual logic gates,
// tri-state drivers, adders and an edge triggered register.
package gates

import (
	"fmt"

	"github.com/delaneyj/bitparty/logic"
)

func unary(name string, in, out *logic.SignalBit, fn func(logic.Bit) logic.Bit) *logic.Func {
	return logic.NewFunc(name, logic.NewSignal(in), logic.NewSignal(out), func(in, out logic.Signal) {
		out.Bit(0).Set(fn(in.Bit(0).Get()))
	})
}

func binary(name string, a, b, out *logic.SignalBit, fn func(a, b logic.Bit) logic.Bit) *logic.Func {
	return logic.NewFunc(name, logic.NewSignal(a, b), logic.NewSignal(out), func(in, out logic.Signal) {
		out.Bit(0).Set(fn(in.Bit(0).Get(), in.Bit(1).Get()))
	})
}

func Buffer(name string, in, out *logic.SignalBit) *logic.Func {
	return unary(name, in, out, func(v logic.Bit) logic.Bit { return v })
}

func Not(name string, in, out *logic.SignalBit) *logic.Func {
	return unary(name, in, out, logic.Bit.Not)
}

func And(name string, a, b, out *logic.SignalBit) *logic.Func {
	return binary(name, a, b, out, logic.Bit.And)
}

func Or(name string, a, b, out *logic.SignalBit) *logic.Func {
	return binary(name, a, b, out, logic.Bit.Or)
}

func Xor(name string, a, b, out *logic.SignalBit) *logic.Func {
	return binary(name, a, b, out, logic.Bit.Xor)
}

func Nand(name string, a, b, out *logic.SignalBit) *logic.Func {
	return binary(name, a, b, out, func(a, b logic.Bit) logic.Bit { return a.And(b).Not() })
}

func Nor(name string, a, b, out *logic.SignalBit) *logic.Func {
	return binary(name, a, b, out, func(a, b logic.Bit) logic.Bit { return a.Or(b).Not() })
}

// TriState drives out with in while enable is high and releases it (HighZ)
// otherwise.
func TriState(name string, in, enable, out *logic.SignalBit) *logic.Func {
	return binary(name, in, enable, out, func(in, enable logic.Bit) logic.Bit {
		if enable == logic.High {
			return in
		}
		return logic.HighZ
	})
}

// Resolve merges the values of drivers onto out. Released drivers (HighZ)
// are ignored; when several drivers are active the last one wins.
func Resolve(name string, drivers logic.Signal, out *logic.SignalBit) *logic.Func {
	return logic.NewFunc(name, drivers, logic.NewSignal(out), func(in, out logic.Signal) {
		v := logic.HighZ
		for _, d := range in.Get() {
			v = v.Is(d)
		}
		out.Bit(0).Set(v)
	})
}

// FullAdder adds a, b and cin into sum and cout.
func FullAdder(name string, a, b, cin, sum, cout *logic.SignalBit) *logic.Func {
	return logic.NewFunc(name, logic.NewSignal(a, b, cin), logic.NewSignal(sum, cout), func(in, out logic.Signal) {
		a, b, c := in.Bit(0).Get(), in.Bit(1).Get(), in.Bit(2).Get()
		out.Bit(0).Set(a.Xor(b).Xor(c))
		out.Bit(1).Set(a.And(b).Or(c.And(a.Xor(b))))
	})
}

// RippleAdder chains one FullAdder per bit, least significant bit first.
// a, b and sum must have the same width.
func RippleAdder(name string, a, b logic.Signal, cin *logic.SignalBit, sum logic.Signal, cout *logic.SignalBit) []logic.Calculator {
	if a.Len() != b.Len() || a.Len() != sum.Len() {
		panic(fmt.Sprintf("gates: adder widths %d, %d and %d differ", a.Len(), b.Len(), sum.Len()))
	}
	out := make([]logic.Calculator, a.Len())
	carry := cin
	for i := range out {
		next := cout
		if i < a.Len()-1 {
			next = logic.NewSignalBit(fmt.Sprintf("%s.c[%d]", name, i+1), logic.Low)
		}
		out[i] = FullAdder(fmt.Sprintf("%s[%d]", name, i), a.Bit(i), b.Bit(i), carry, sum.Bit(i), next)
		carry = next
	}
	return out
}
