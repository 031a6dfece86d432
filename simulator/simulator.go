package simulator

import (
	"slices"
	"sync"

	"github.com/delaneyj/bitparty/logic"
	"github.com/delaneyj/bitparty/veb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

type orderedCalc struct {
	calc  logic.Calculator
	index int
	coord Coordinate

	dirty   atomic.Bool
	slotted bool // only touched by the controlling goroutine
}

type group struct {
	orders *veb.Set         // orders with occupied slots
	slots  [][]*orderedCalc // [order][number]
}

type level struct {
	groups  []*group
	pending *veb.Set // groups with a non empty order tree
}

// fanout marks the readers of one SignalBit dirty when it changes.
type fanout struct {
	sim     *Simulator
	readers []*orderedCalc
}

func (f *fanout) BitChanged(*logic.SignalBit, logic.Bit, logic.Bit) {
	for _, c := range f.readers {
		f.sim.markDirty(c)
	}
}

type attachment struct {
	bit *logic.SignalBit
	sub logic.Subscription
}

type calculatedSub struct {
	id uint64
	fn func(logic.Calculator)
}

// Simulator runs calculators in waves. Only calculators whose inputs changed
// since their last run are executed, lower priority levels first and, inside
// a level, by increasing order. Every wave is run by a fixed pool of worker
// goroutines.
//
// DoStep, DoSimulation, Schedule, Snapshot, Restore, Shutdown and Restart
// must be called from a single controlling goroutine.
type Simulator struct {
	cfg Config
	log logrus.FieldLogger

	calcs  []*orderedCalc
	byCalc map[logic.Calculator]*orderedCalc
	fanout map[*logic.SignalBit]*fanout

	levels  []*level
	pending *veb.Set // levels with pending groups
	dirty   *dirtyList
	batch   []*orderedCalc

	pool     *pool
	inFlight atomic.Bool
	attached []attachment

	subsMu  sync.Mutex
	subs    atomic.Pointer[[]calculatedSub]
	lastSub uint64

	pairs       int
	fingerprint uint64
}

// New analyzes calcs under the priority relation prio and starts the worker
// pool. Calculators listed more than once are kept once. Calculators are
// used as map keys and must be comparable.
//
// An invalid priority relation is reported as a
// *NondisjunctReadersWritersError or a *DirectedPriorityCycleError, reachable
// with errors.As.
func New(calcs []logic.Calculator, prio Priorities, cfg *Config) (*Simulator, error) {
	c := cfg.withDefaults()

	unique := make([]logic.Calculator, 0, len(calcs))
	seen := make(map[logic.Calculator]struct{}, len(calcs))
	for _, calc := range calcs {
		if calc == nil {
			panic("simulator: nil calculator")
		}
		if _, ok := seen[calc]; ok {
			continue
		}
		seen[calc] = struct{}{}
		unique = append(unique, calc)
	}

	lay, err := newAnalyzer(unique, c).analyze(prio)
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	s := &Simulator{
		cfg:     c,
		log:     c.Logger,
		calcs:   make([]*orderedCalc, len(unique)),
		byCalc:  make(map[logic.Calculator]*orderedCalc, len(unique)),
		fanout:  make(map[*logic.SignalBit]*fanout, len(lay.fanout)),
		levels:  make([]*level, len(lay.shape)),
		pending: veb.New(max(1, len(lay.shape))),
		dirty:   newDirtyList(len(unique)),
		batch:   make([]*orderedCalc, 0, len(unique)),
		pairs:   lay.pairs,
	}
	for i, calc := range unique {
		oc := &orderedCalc{calc: calc, index: i, coord: lay.coords[i]}
		s.calcs[i] = oc
		s.byCalc[calc] = oc
	}

	groups := 0
	for p, shape := range lay.shape {
		lvl := &level{
			groups:  make([]*group, len(shape)),
			pending: veb.New(max(1, len(shape))),
		}
		for g, orders := range shape {
			grp := &group{
				orders: veb.New(max(1, len(orders))),
				slots:  make([][]*orderedCalc, len(orders)),
			}
			for o, n := range orders {
				grp.slots[o] = make([]*orderedCalc, n)
			}
			lvl.groups[g] = grp
		}
		s.levels[p] = lvl
		groups += len(shape)
	}

	for b, readers := range lay.fanout {
		f := &fanout{sim: s, readers: make([]*orderedCalc, len(readers))}
		for i, r := range readers {
			f.readers[i] = s.calcs[r]
		}
		s.fanout[b] = f
	}
	s.fingerprint = fingerprint(lay.coords)

	s.pool = newPool(c.Workers, s.calculate)
	s.attach()

	s.log.WithFields(logrus.Fields{
		"calculators": len(s.calcs),
		"pairs":       s.pairs,
		"levels":      len(s.levels),
		"groups":      groups,
		"workers":     c.Workers,
	}).Debug("simulator ready")
	return s, nil
}

func (s *Simulator) calculate(c *orderedCalc) {
	c.calc.Execute()
	if subs := s.subs.Load(); subs != nil {
		for _, sub := range *subs {
			sub.fn(c.calc)
		}
	}
}

func (s *Simulator) markDirty(c *orderedCalc) {
	if c.dirty.CAS(false, true) {
		s.dirty.push(c)
	}
}

// reschedule moves the dirty calculators into their slots.
func (s *Simulator) reschedule() {
	s.dirty.drain(func(c *orderedCalc) {
		c.dirty.Store(false)
		s.occupy(c)
	})
}

func (s *Simulator) occupy(c *orderedCalc) {
	if c.slotted {
		return
	}
	co := c.coord
	lvl := s.levels[co.Priority]
	grp := lvl.groups[co.Group]
	grp.slots[co.Order][co.Number] = c
	c.slotted = true
	grp.orders.Insert(co.Order)
	lvl.pending.Insert(co.Group)
	s.pending.Insert(co.Priority)
}

// DoStep runs one wave: for the lowest level with pending work, the lowest
// pending order of every pending group. It reports false when nothing was
// pending.
//
// DoStep panics if the simulator was shut down and work is pending.
func (s *Simulator) DoStep() bool {
	s.reschedule()
	p := s.pending.Min()
	if p < 0 {
		return false
	}
	if !s.pool.running() {
		panic("simulator: DoStep on a shut down simulator")
	}

	lvl := s.levels[p]
	batch := s.batch[:0]
	for g := lvl.pending.Min(); g >= 0; g = lvl.pending.Next(g) {
		grp := lvl.groups[g]
		o := grp.orders.Min()
		grp.orders.Delete(o)
		for i, c := range grp.slots[o] {
			if c == nil {
				continue
			}
			grp.slots[o][i] = nil
			c.slotted = false
			batch = append(batch, c)
		}
		if grp.orders.Empty() {
			lvl.pending.Delete(g)
		}
	}
	if lvl.pending.Empty() {
		s.pending.Delete(p)
	}

	s.inFlight.Store(true)
	s.pool.execute(batch)
	s.inFlight.Store(false)

	clear(batch)
	s.batch = batch[:0]
	return true
}

// DoSimulation runs waves until no calculator is pending and returns the
// number of waves run. Circuits that never settle make it loop forever.
func (s *Simulator) DoSimulation() int {
	waves := 0
	for s.DoStep() {
		waves++
	}
	return waves
}

// Schedule marks calcs as needing to run, as if one of their inputs changed.
// It panics on a calculator the simulator was not built with.
func (s *Simulator) Schedule(calcs ...logic.Calculator) {
	for _, calc := range calcs {
		c, ok := s.byCalc[calc]
		if !ok {
			panic("simulator: unknown calculator " + calculatorName(calc))
		}
		s.markDirty(c)
	}
}

// ScheduleAll marks every calculator as needing to run. It is typically
// called once to settle a freshly built circuit.
func (s *Simulator) ScheduleAll() {
	for _, c := range s.calcs {
		s.markDirty(c)
	}
}

// ScheduledCalculators returns the calculators waiting to run, in the order
// they were given to New.
func (s *Simulator) ScheduledCalculators() []logic.Calculator {
	var out []logic.Calculator
	for _, c := range s.calcs {
		if c.slotted || c.dirty.Load() {
			out = append(out, c.calc)
		}
	}
	return out
}

// OnCalculated registers fn to be called after every execution of a
// calculator, on the worker goroutine that ran it.
func (s *Simulator) OnCalculated(fn func(c logic.Calculator)) (cancel func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.lastSub++
	id := s.lastSub
	var subs []calculatedSub
	if old := s.subs.Load(); old != nil {
		subs = slices.Clone(*old)
	}
	subs = append(subs, calculatedSub{id: id, fn: fn})
	s.subs.Store(&subs)

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		old := s.subs.Load()
		if old == nil {
			return
		}
		subs := slices.DeleteFunc(slices.Clone(*old), func(sub calculatedSub) bool {
			return sub.id == id
		})
		s.subs.Store(&subs)
	}
}

// Coordinate returns the place of c in the schedule.
func (s *Simulator) Coordinate(c logic.Calculator) (Coordinate, bool) {
	oc, ok := s.byCalc[c]
	if !ok {
		return Coordinate{}, false
	}
	return oc.coord, true
}

// Placement is a calculator with its coordinate.
type Placement struct {
	Calculator logic.Calculator
	Coordinate
}

// Placements lists every calculator sorted by coordinate.
func (s *Simulator) Placements() []Placement {
	out := make([]Placement, len(s.calcs))
	for i, c := range s.calcs {
		out[i] = Placement{Calculator: c.calc, Coordinate: c.coord}
	}
	slices.SortFunc(out, func(a, b Placement) int {
		switch {
		case a.Coordinate.less(b.Coordinate):
			return -1
		case b.Coordinate.less(a.Coordinate):
			return 1
		}
		return 0
	})
	return out
}

// Readers returns the calculators reading b, in the order they were given to
// New.
func (s *Simulator) Readers(b *logic.SignalBit) []logic.Calculator {
	f, ok := s.fanout[b]
	if !ok {
		return nil
	}
	out := make([]logic.Calculator, len(f.readers))
	for i, c := range f.readers {
		out[i] = c.calc
	}
	return out
}

// Levels returns the number of priority levels.
func (s *Simulator) Levels() int { return len(s.levels) }

// Len returns the number of calculators.
func (s *Simulator) Len() int { return len(s.calcs) }

// Shutdown stops the worker goroutines. Pending work is kept; running it
// requires a Restart.
func (s *Simulator) Shutdown() {
	if !s.pool.running() {
		return
	}
	s.pool.stop()
	s.log.Debug("simulator shut down")
}

// Restart starts a new set of workers after Shutdown.
func (s *Simulator) Restart() {
	if s.pool.running() {
		return
	}
	s.pool.start(s.cfg.Workers)
	s.log.WithField("workers", s.cfg.Workers).Debug("simulator restarted")
}

func (s *Simulator) attach() {
	for b, f := range s.fanout {
		if b.Constant() {
			continue
		}
		s.attached = append(s.attached, attachment{bit: b, sub: b.AddListener(f)})
	}
}

// Detach removes the listeners the simulator registered on its SignalBits.
// Changes made afterwards no longer schedule anything.
func (s *Simulator) Detach() {
	for _, a := range s.attached {
		a.bit.RemoveListener(a.sub)
	}
	s.attached = nil
}
