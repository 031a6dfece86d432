package simulator

import (
	"slices"

	"github.com/delaneyj/bitparty/logic"
)

// Priorities maps a high priority SignalBit to the SignalBits that must be
// treated as logically later. Readers of the key run before readers of the
// listed bits, and likewise for writers.
type Priorities map[*logic.SignalBit][]*logic.SignalBit

// Add declares every low as later than high.
func (p Priorities) Add(high *logic.SignalBit, lows ...*logic.SignalBit) Priorities {
	p[high] = append(p[high], lows...)
	return p
}

// AddSignal declares every bit of every low as later than every bit of high.
func (p Priorities) AddSignal(high logic.Signal, lows ...logic.Signal) Priorities {
	for _, h := range high.Bits() {
		for _, l := range lows {
			p.Add(h, l.Bits()...)
		}
	}
	return p
}

// declarations returns the (high, low) pairs ordered by bit ID, without
// duplicates.
func (p Priorities) declarations() [][2]*logic.SignalBit {
	highs := make([]*logic.SignalBit, 0, len(p))
	for h := range p {
		highs = append(highs, h)
	}
	slices.SortFunc(highs, byID)

	var out [][2]*logic.SignalBit
	for _, h := range highs {
		lows := slices.Clone(p[h])
		slices.SortFunc(lows, byID)
		lows = slices.Compact(lows)
		for _, l := range lows {
			out = append(out, [2]*logic.SignalBit{h, l})
		}
	}
	return out
}

func byID(a, b *logic.SignalBit) int {
	switch {
	case a.ID() < b.ID():
		return -1
	case a.ID() > b.ID():
		return 1
	}
	return 0
}
