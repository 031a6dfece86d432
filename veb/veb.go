// Package veb implements a set of small non-negative integers with
// O(log log u) insert, delete, min, max and successor queries, u being the
// size of the universe.
//
// Universes of up to 64 values are a single machine word. Larger universes
// are split on their bit length: the high half of a value selects a cluster,
// the low half is the offset inside it, and a summary set of the same kind
// tracks the non-empty clusters. As in a van Emde Boas tree the minimum of a
// node is cached and not stored in its clusters.
package veb

import (
	"math/bits"
	"strconv"
)

const leafBits = 6 // 64 values

// Set is a van Emde Boas style integer set over [0, Universe()).
// The zero value is not usable, use New.
type Set struct {
	root     *node
	universe int
	size     int
}

// New returns an empty set over [0, universe). universe must be positive.
func New(universe int) *Set {
	if universe <= 0 {
		panic("veb: universe must be positive, got " + strconv.Itoa(universe))
	}
	return &Set{
		root:     newNode(uint(bits.Len(uint(universe - 1)))),
		universe: universe,
	}
}

func (s *Set) Universe() int { return s.universe }
func (s *Set) Len() int      { return s.size }
func (s *Set) Empty() bool   { return s.size == 0 }

// Min returns the smallest element or -1 when the set is empty.
func (s *Set) Min() int { return s.root.min }

// Max returns the largest element or -1 when the set is empty.
func (s *Set) Max() int { return s.root.max }

func (s *Set) Contains(x int) bool {
	if x < 0 || x >= s.universe {
		return false
	}
	return s.root.contains(x)
}

// Insert adds x and reports whether it was absent.
func (s *Set) Insert(x int) bool {
	s.check(x)
	if s.root.contains(x) {
		return false
	}
	s.root.insert(x)
	s.size++
	return true
}

// Delete removes x and reports whether it was present.
func (s *Set) Delete(x int) bool {
	s.check(x)
	if !s.root.contains(x) {
		return false
	}
	s.root.delete(x)
	s.size--
	return true
}

// Next returns the smallest element strictly greater than x, or -1.
func (s *Set) Next(x int) int {
	if x < 0 {
		return s.root.min
	}
	if x >= s.universe-1 {
		return -1
	}
	return s.root.next(x)
}

// Clear removes every element.
func (s *Set) Clear() {
	s.root = newNode(s.root.bits)
	s.size = 0
}

// Each calls fn for every element in increasing order until fn returns false.
func (s *Set) Each(fn func(x int) bool) {
	for x := s.root.min; x >= 0; x = s.Next(x) {
		if !fn(x) {
			return
		}
	}
}

func (s *Set) check(x int) {
	if x < 0 || x >= s.universe {
		panic("veb: " + strconv.Itoa(x) + " out of range [0, " + strconv.Itoa(s.universe) + ")")
	}
}

type node struct {
	bits     uint // log2 of the universe of this node
	lowBits  uint
	min, max int

	mask uint64 // leaves only

	summary  *node
	clusters []*node // allocated on first use
}

func newNode(bits uint) *node {
	n := &node{bits: bits, min: -1, max: -1}
	if bits > leafBits {
		n.lowBits = bits / 2
		n.clusters = make([]*node, 1<<(bits-n.lowBits))
	}
	return n
}

func (n *node) leaf() bool  { return n.bits <= leafBits }
func (n *node) empty() bool { return n.min < 0 }

func (n *node) high(x int) int     { return x >> n.lowBits }
func (n *node) low(x int) int      { return x & (1<<n.lowBits - 1) }
func (n *node) index(h, l int) int { return h<<n.lowBits | l }

func (n *node) contains(x int) bool {
	if n.leaf() {
		return n.mask&(1<<uint(x)) != 0
	}
	if n.empty() {
		return false
	}
	if x == n.min || x == n.max {
		return true
	}
	c := n.clusters[n.high(x)]
	return c != nil && c.contains(n.low(x))
}

func (n *node) insert(x int) {
	if n.leaf() {
		n.mask |= 1 << uint(x)
		n.min = bits.TrailingZeros64(n.mask)
		n.max = 63 - bits.LeadingZeros64(n.mask)
		return
	}
	if n.empty() {
		n.min, n.max = x, x
		return
	}
	if x < n.min {
		x, n.min = n.min, x
	}
	h, l := n.high(x), n.low(x)
	c := n.clusters[h]
	if c == nil {
		c = newNode(n.lowBits)
		n.clusters[h] = c
	}
	if c.empty() {
		if n.summary == nil {
			n.summary = newNode(n.bits - n.lowBits)
		}
		n.summary.insert(h)
	}
	c.insert(l)
	if x > n.max {
		n.max = x
	}
}

// delete assumes x is present.
func (n *node) delete(x int) {
	if n.leaf() {
		n.mask &^= 1 << uint(x)
		if n.mask == 0 {
			n.min, n.max = -1, -1
		} else {
			n.min = bits.TrailingZeros64(n.mask)
			n.max = 63 - bits.LeadingZeros64(n.mask)
		}
		return
	}
	if n.min == n.max {
		n.min, n.max = -1, -1
		return
	}
	if x == n.min {
		// promote the smallest clustered value to be the new min
		first := n.summary.min
		x = n.index(first, n.clusters[first].min)
		n.min = x
	}
	h := n.high(x)
	c := n.clusters[h]
	c.delete(n.low(x))
	if c.empty() {
		n.summary.delete(h)
		if x == n.max {
			if n.summary.empty() {
				n.max = n.min
			} else {
				last := n.summary.max
				n.max = n.index(last, n.clusters[last].max)
			}
		}
	} else if x == n.max {
		n.max = n.index(h, c.max)
	}
}

// next assumes x >= 0.
func (n *node) next(x int) int {
	if n.leaf() {
		m := n.mask &^ (uint64(2)<<uint(x) - 1)
		if m == 0 {
			return -1
		}
		return bits.TrailingZeros64(m)
	}
	if n.empty() {
		return -1
	}
	if x < n.min {
		return n.min
	}
	h, l := n.high(x), n.low(x)
	if c := n.clusters[h]; c != nil && !c.empty() && l < c.max {
		return n.index(h, c.next(l))
	}
	if n.summary == nil {
		return -1
	}
	s := n.summary.next(h)
	if s < 0 {
		return -1
	}
	return n.index(s, n.clusters[s].min)
}
