package simulator

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/bitparty/logic"
	"go.uber.org/multierr"
)

// priorityPair is one side (readers or writers) of a declared priority. Every
// calculator in precede must run at a lower level than every calculator in
// follow.
type priorityPair struct {
	decl    Declaration
	precede mapset.Set[int]
	follow  mapset.Set[int]
	level   int
}

// derivePairs turns every declared (high, low) into a readers pair and a
// writers pair. Pairs with an empty side order nothing and are dropped.
func (a *analyzer) derivePairs(prio Priorities) error {
	decls := prio.declarations()
	a.cfg.Progress.Begin(PassPairs, len(decls))

	var errs error
	for _, d := range decls {
		high, low := d[0], d[1]
		for _, kind := range []PairKind{DisjunctReaders, DisjunctWriters} {
			index := a.readers
			if kind == DisjunctWriters {
				index = a.writers
			}
			precede, follow := setOf(index, high), setOf(index, low)

			if common := precede.Intersect(follow); common.Cardinality() > 0 {
				errs = multierr.Append(errs, &NondisjunctReadersWritersError{
					Kind:        kind,
					High:        high,
					Low:         low,
					Calculators: a.calculators(common),
				})
				continue
			}
			if precede.Cardinality() == 0 || follow.Cardinality() == 0 {
				continue
			}
			a.pairs = append(a.pairs, &priorityPair{
				decl:    Declaration{Kind: kind, High: high, Low: low},
				precede: precede,
				follow:  follow,
			})
		}
		a.cfg.Progress.Advance(PassPairs, 1)
	}
	return errs
}

// placeLevels layers the pairs and the calculators they mention by longest
// path over the graph precede calculators -> pair -> follow calculators. A
// pair sits at the highest level of its precede side and its follow side
// lands at least one level above it. Whatever Kahn's algorithm can not reach
// lies on or behind a directed cycle.
func (a *analyzer) placeLevels() error {
	n := len(a.calcs)

	// nodes [0, n) are calculators, [n, n+len(pairs)) are pairs
	succ := make([][]int, n+len(a.pairs))
	indeg := make([]int, n+len(a.pairs))
	mentioned := make([]bool, n)
	for i, p := range a.pairs {
		pn := n + i
		for _, c := range sorted(p.precede) {
			succ[c] = append(succ[c], pn)
			indeg[pn]++
			mentioned[c] = true
		}
		for _, c := range sorted(p.follow) {
			succ[pn] = append(succ[pn], c)
			indeg[c]++
			mentioned[c] = true
		}
	}

	total := 0
	for _, m := range mentioned {
		if m {
			total++
		}
	}
	a.cfg.Progress.Begin(PassLevels, len(a.pairs))
	a.cfg.Progress.Begin(PassConstrained, total)

	level := make([]int, n+len(a.pairs))
	queue := make([]int, 0, total+len(a.pairs))
	for c := 0; c < n; c++ {
		if mentioned[c] && indeg[c] == 0 {
			queue = append(queue, c)
		}
	}
	done := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		done++
		if u < n {
			a.cfg.Progress.Advance(PassConstrained, 1)
		} else {
			a.cfg.Progress.Advance(PassLevels, 1)
		}
		for _, v := range succ[u] {
			l := level[u]
			if v < n {
				// pair -> follow calculator
				l++
			}
			if l > level[v] {
				level[v] = l
			}
			indeg[v]--
			if indeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if done < total+len(a.pairs) {
		cycle := &DirectedPriorityCycleError{}
		for i, p := range a.pairs {
			if indeg[n+i] > 0 {
				cycle.Pairs = append(cycle.Pairs, p.decl)
			}
		}
		return cycle
	}

	for c := 0; c < n; c++ {
		if !mentioned[c] {
			continue
		}
		a.priority[c] = level[c]
		if level[c]+1 > a.levels {
			a.levels = level[c] + 1
		}
	}
	for i, p := range a.pairs {
		p.level = level[n+i]
	}
	return nil
}

func setOf(index map[*logic.SignalBit]mapset.Set[int], b *logic.SignalBit) mapset.Set[int] {
	if s, ok := index[b]; ok {
		return s
	}
	return mapset.NewThreadUnsafeSet[int]()
}
