package simulator

import "go.uber.org/atomic"

// dirtyList collects calculators whose inputs changed. Pushes come from any
// goroutine changing a SignalBit, drain only runs between waves. A calculator
// is pushed only after winning its dirty flag, so the list never holds more
// entries than there are calculators.
type dirtyList struct {
	entries []*orderedCalc
	next    atomic.Int64
}

func newDirtyList(size int) *dirtyList {
	return &dirtyList{entries: make([]*orderedCalc, size)}
}

func (l *dirtyList) push(c *orderedCalc) {
	l.entries[l.next.Inc()-1] = c
}

func (l *dirtyList) drain(fn func(c *orderedCalc)) {
	n := int(l.next.Load())
	for i, c := range l.entries[:n] {
		l.entries[i] = nil
		fn(c)
	}
	l.next.Store(0)
}
