package logic

// Bit is a three-valued logic level.
type Bit uint8

const (
	Low Bit = iota
	High
	HighZ // high impedance, nothing drives the line
)

// FromBool returns High for true and Low for false.
func FromBool(b bool) Bit {
	if b {
		return High
	}
	return Low
}

// Bool reports whether b is High. HighZ is falsy.
func (b Bit) Bool() bool {
	return b.check() == High
}

func (b Bit) And(o Bit) Bit {
	return FromBool(b.Bool() && o.Bool())
}

func (b Bit) Or(o Bit) Bit {
	return FromBool(b.Bool() || o.Bool())
}

func (b Bit) Xor(o Bit) Bit {
	return FromBool(b.Bool() != o.Bool())
}

// Not swaps Low and High and leaves HighZ alone.
func (b Bit) Not() Bit {
	switch b.check() {
	case Low:
		return High
	case High:
		return Low
	default:
		return HighZ
	}
}

// Is merges two drivers of the same line: o wins unless it is HighZ.
func (b Bit) Is(o Bit) Bit {
	if o.check() == HighZ {
		return b.check()
	}
	return o
}

func (b Bit) String() string {
	switch b {
	case Low:
		return "0"
	case High:
		return "1"
	case HighZ:
		return "Z"
	default:
		return "?"
	}
}

func (b Bit) check() Bit {
	if b > HighZ {
		panic("logic: invalid bit value")
	}
	return b
}
