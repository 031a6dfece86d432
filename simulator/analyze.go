package simulator

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/bitparty/logic"
	"github.com/sirupsen/logrus"
)

// Coordinate is the place of a calculator in the schedule. Calculators run
// by increasing (Priority, Order); groups of one priority level share no
// wires and advance their orders in lockstep. Number tells apart the
// calculators of one (Priority, Group, Order).
type Coordinate struct {
	Priority int
	Group    int
	Order    int
	Number   int
}

func (c Coordinate) less(o Coordinate) bool {
	switch {
	case c.Priority != o.Priority:
		return c.Priority < o.Priority
	case c.Group != o.Group:
		return c.Group < o.Group
	case c.Order != o.Order:
		return c.Order < o.Order
	}
	return c.Number < o.Number
}

// layout is the outcome of the analysis, the shape of every scheduling
// structure the simulator allocates.
type layout struct {
	coords []Coordinate
	pairs  int

	// shape[priority][group][order] is the number of slots of that order
	shape [][][]int

	// fanout lists the calculators reading each bit, in input order
	fanout map[*logic.SignalBit][]int
}

type analyzer struct {
	cfg   Config
	log   logrus.FieldLogger
	calcs []logic.Calculator

	readers map[*logic.SignalBit]mapset.Set[int]
	writers map[*logic.SignalBit]mapset.Set[int]

	// sorted copies of readers and writers for deterministic walks
	readerList map[*logic.SignalBit][]int
	writerList map[*logic.SignalBit][]int
	bits       []*logic.SignalBit

	pairs    []*priorityPair
	priority []int // -1 while unplaced
	levels   int

	root   []int // union-find parent, then group representative
	coords []Coordinate

	// scratch sets of the order pass, cleared after every group
	inGroup *bitset.BitSet
	visited *bitset.BitSet
}

func newAnalyzer(calcs []logic.Calculator, cfg Config) *analyzer {
	a := &analyzer{
		cfg:        cfg,
		log:        cfg.Logger,
		calcs:      calcs,
		readers:    make(map[*logic.SignalBit]mapset.Set[int]),
		writers:    make(map[*logic.SignalBit]mapset.Set[int]),
		readerList: make(map[*logic.SignalBit][]int),
		writerList: make(map[*logic.SignalBit][]int),
		priority:   make([]int, len(calcs)),
		coords:     make([]Coordinate, len(calcs)),
	}
	for i := range a.priority {
		a.priority[i] = -1
	}
	return a
}

func (a *analyzer) analyze(prio Priorities) (*layout, error) {
	a.index()
	if err := a.derivePairs(prio); err != nil {
		return nil, err
	}
	a.log.WithField("pairs", len(a.pairs)).Debug("priority pairs derived")

	if err := a.placeLevels(); err != nil {
		return nil, err
	}
	a.log.WithField("levels", a.levels).Debug("priority levels placed")

	a.pullIn()
	members := a.group()
	a.cfg.Progress.Begin(PassOrders, len(a.calcs))
	a.inGroup = bitset.New(uint(len(a.calcs)))
	a.visited = bitset.New(uint(len(a.calcs)))
	for p, groups := range members {
		for _, m := range groups {
			a.order(m)
		}
		a.log.WithFields(logrus.Fields{"priority": p, "groups": len(groups)}).Debug("level ordered")
	}
	return a.slots(), nil
}

// index records who reads and who writes every bit.
func (a *analyzer) index() {
	a.cfg.Progress.Begin(PassIndex, len(a.calcs))
	add := func(index map[*logic.SignalBit]mapset.Set[int], b *logic.SignalBit, c int) {
		s, ok := index[b]
		if !ok {
			s = mapset.NewThreadUnsafeSet[int]()
			index[b] = s
		}
		s.Add(c)
	}
	for i, c := range a.calcs {
		for _, b := range c.Inputs() {
			add(a.readers, b, i)
		}
		for _, b := range c.Outputs() {
			add(a.writers, b, i)
		}
		a.cfg.Progress.Advance(PassIndex, 1)
	}

	seen := make(map[*logic.SignalBit]struct{}, len(a.readers)+len(a.writers))
	for b, s := range a.readers {
		a.readerList[b] = sorted(s)
		seen[b] = struct{}{}
	}
	for b, s := range a.writers {
		a.writerList[b] = sorted(s)
		seen[b] = struct{}{}
	}
	a.bits = make([]*logic.SignalBit, 0, len(seen))
	for b := range seen {
		a.bits = append(a.bits, b)
	}
	slices.SortFunc(a.bits, byID)
}

// pullIn places the calculators no declaration mentions. Walking the levels
// in order, a calculator fed by a level joins it as soon as every writer of
// its inputs is placed at that level or an earlier one. The rest form one
// last level.
func (a *analyzer) pullIn() {
	pool := bitset.New(uint(len(a.calcs)))
	byLevel := make([][]int, a.levels)
	for c, p := range a.priority {
		if p < 0 {
			pool.Set(uint(c))
		} else {
			byLevel[p] = append(byLevel[p], c)
		}
	}
	a.cfg.Progress.Begin(PassPullIn, int(pool.Count()))

	for lvl, queue := range byLevel {
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			for _, b := range a.calcs[c].Outputs() {
				for _, r := range a.readerList[b] {
					if !pool.Test(uint(r)) || !a.eligible(r, lvl) {
						continue
					}
					pool.Clear(uint(r))
					a.priority[r] = lvl
					queue = append(queue, r)
					a.cfg.Progress.Advance(PassPullIn, 1)
				}
			}
		}
	}

	if rest := pool.Count(); rest > 0 {
		last := a.levels
		for c, ok := pool.NextSet(0); ok; c, ok = pool.NextSet(c + 1) {
			a.priority[c] = last
		}
		a.levels++
		a.cfg.Progress.Advance(PassPullIn, int(rest))
	}
}

func (a *analyzer) eligible(c, lvl int) bool {
	for _, b := range a.calcs[c].Inputs() {
		for _, w := range a.writerList[b] {
			if w == c {
				continue
			}
			if p := a.priority[w]; p < 0 || p > lvl {
				return false
			}
		}
	}
	return true
}

// group splits every level into connected components. A bit joins its
// writers and readers of the same level; bits nobody at that level writes,
// constants typically, join nothing. It returns the members of every group,
// by level, in input order.
func (a *analyzer) group() [][][]int {
	a.cfg.Progress.Begin(PassGroups, len(a.calcs))
	a.root = make([]int, len(a.calcs))
	for i := range a.root {
		a.root[i] = i
	}
	for _, b := range a.bits {
		for _, w := range a.writerList[b] {
			for _, m := range a.writerList[b] {
				if a.priority[m] == a.priority[w] {
					a.union(w, m)
				}
			}
			for _, m := range a.readerList[b] {
				if a.priority[m] == a.priority[w] {
					a.union(w, m)
				}
			}
		}
	}

	members := make([][][]int, a.levels)
	groupOf := make(map[int]int, len(a.calcs))
	for c := range a.calcs {
		r := a.find(c)
		a.root[c] = r
		p := a.priority[c]
		g, ok := groupOf[r]
		if !ok {
			g = len(members[p])
			groupOf[r] = g
			members[p] = append(members[p], nil)
		}
		members[p][g] = append(members[p][g], c)
		a.coords[c].Priority = p
		a.coords[c].Group = g
		a.cfg.Progress.Advance(PassGroups, 1)
	}
	return members
}

func (a *analyzer) find(c int) int {
	for a.root[c] != c {
		a.root[c] = a.root[a.root[c]]
		c = a.root[c]
	}
	return c
}

func (a *analyzer) union(x, y int) {
	rx, ry := a.find(x), a.find(y)
	if rx == ry {
		return
	}
	// the lowest index stays representative
	if ry < rx {
		rx, ry = ry, rx
	}
	a.root[ry] = rx
}

// slots numbers the calculators sharing a (priority, group, order) and
// derives the shape of the scheduler and the fan-out table.
func (a *analyzer) slots() *layout {
	a.cfg.Progress.Begin(PassSlots, len(a.calcs))
	lay := &layout{
		coords: a.coords,
		shape:  make([][][]int, a.levels),
		fanout: make(map[*logic.SignalBit][]int, len(a.readerList)),
		pairs:  len(a.pairs),
	}

	byCoord := make([]int, len(a.calcs))
	for i := range byCoord {
		byCoord[i] = i
	}
	slices.SortStableFunc(byCoord, func(x, y int) int {
		cx, cy := a.coords[x], a.coords[y]
		if cx.Priority != cy.Priority {
			return cx.Priority - cy.Priority
		}
		if cx.Group != cy.Group {
			return cx.Group - cy.Group
		}
		return cx.Order - cy.Order
	})

	for _, c := range byCoord {
		co := &a.coords[c]
		for len(lay.shape[co.Priority]) <= co.Group {
			lay.shape[co.Priority] = append(lay.shape[co.Priority], nil)
		}
		orders := lay.shape[co.Priority][co.Group]
		for len(orders) <= co.Order {
			orders = append(orders, 0)
		}
		co.Number = orders[co.Order]
		orders[co.Order]++
		lay.shape[co.Priority][co.Group] = orders
		a.cfg.Progress.Advance(PassSlots, 1)
	}

	for _, b := range a.bits {
		if rs := a.readerList[b]; len(rs) > 0 {
			lay.fanout[b] = rs
		}
	}
	return lay
}

func (a *analyzer) calculators(s mapset.Set[int]) []logic.Calculator {
	idx := sorted(s)
	out := make([]logic.Calculator, len(idx))
	for i, c := range idx {
		out[i] = a.calcs[c]
	}
	return out
}

func sorted(s mapset.Set[int]) []int {
	out := s.ToSlice()
	slices.Sort(out)
	return out
}
