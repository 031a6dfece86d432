package simulator

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/bitparty/logic"
)

// order assigns order depths to the members of one group, given in input
// order. Depth is the longest path over the data edges that point forward in
// breadth first discovery order, so combinational loops inside a group are
// cut where the walk first closes them.
func (a *analyzer) order(members []int) {
	inGroup, visited := a.inGroup, a.visited
	for _, c := range members {
		inGroup.Set(uint(c))
	}
	defer func() {
		for _, c := range members {
			inGroup.Clear(uint(c))
			visited.Clear(uint(c))
		}
	}()

	discovered := a.discover(members)
	pos := make(map[int]int, len(discovered))
	for i, c := range discovered {
		pos[c] = i
	}

	// orders already taken on each bit written by more than one member
	taken := make(map[*logic.SignalBit]mapset.Set[int])
	depth := make(map[int]int, len(discovered))
	for _, v := range discovered {
		d := 0
		for _, b := range a.calcs[v].Inputs() {
			for _, u := range a.writerList[b] {
				if u == v || !inGroup.Test(uint(u)) || pos[u] > pos[v] {
					continue
				}
				if du := depth[u] + 1; du > d {
					d = du
				}
			}
		}

		for a.conflicts(v, d, taken) {
			d++
		}
		for _, b := range a.calcs[v].Outputs() {
			if len(a.writerList[b]) < 2 {
				continue
			}
			s, ok := taken[b]
			if !ok {
				s = mapset.NewThreadUnsafeSet[int]()
				taken[b] = s
			}
			s.Add(d)
		}

		depth[v] = d
		a.coords[v].Order = d
		a.cfg.Progress.Advance(PassOrders, 1)
	}
}

func (a *analyzer) conflicts(c, d int, taken map[*logic.SignalBit]mapset.Set[int]) bool {
	for _, b := range a.calcs[c].Outputs() {
		if s, ok := taken[b]; ok && s.Contains(d) {
			return true
		}
	}
	return false
}

// discover walks the group breadth first from its sources along reader
// edges. Members no source reaches are picked up lowest index first.
func (a *analyzer) discover(members []int) []int {
	visited := a.visited
	out := make([]int, 0, len(members))
	queue := make([]int, 0, len(members))

	visit := func(c int) {
		if visited.Test(uint(c)) {
			return
		}
		visited.Set(uint(c))
		queue = append(queue, c)
	}
	for _, c := range members {
		if a.isSource(c) {
			visit(c)
		}
	}

	next := 0
	for len(out) < len(members) {
		if len(queue) == 0 {
			for visited.Test(uint(members[next])) {
				next++
			}
			visit(members[next])
		}
		u := queue[0]
		queue = queue[1:]
		out = append(out, u)
		for _, b := range a.calcs[u].Outputs() {
			for _, r := range a.readerList[b] {
				if r != u && a.inGroup.Test(uint(r)) {
					visit(r)
				}
			}
		}
	}
	return out
}

// isSource reports whether no other member of the group writes an input of c.
func (a *analyzer) isSource(c int) bool {
	for _, b := range a.calcs[c].Inputs() {
		for _, w := range a.writerList[b] {
			if w != c && a.inGroup.Test(uint(w)) {
				return false
			}
		}
	}
	return true
}
