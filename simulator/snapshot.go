package simulator

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// State is the scheduling state of a Simulator: which calculators wait to
// run. Calculators are identified by their position in the list given to New
// after duplicates were removed.
type State struct {
	Fingerprint uint64 `json:"fingerprint"`
	Pending     []int  `json:"pending"`
}

// Snapshot captures the pending calculators. It must not be called while a
// wave is running.
func (s *Simulator) Snapshot() *State {
	st := &State{Fingerprint: s.fingerprint, Pending: []int{}}
	for _, c := range s.calcs {
		if c.slotted || c.dirty.Load() {
			st.Pending = append(st.Pending, c.index)
		}
	}
	return st
}

// Restore replaces the pending calculators with the ones recorded in st and
// attaches the simulator to its SignalBits again. A State taken from a
// simulator with a different layout is rejected with ErrSnapshotMismatch.
//
// Restore panics when called while a wave is running.
func (s *Simulator) Restore(st *State) error {
	if s.inFlight.Load() {
		panic("simulator: Restore during a wave")
	}
	if st.Fingerprint != s.fingerprint {
		return errors.Wrapf(ErrSnapshotMismatch, "fingerprint %016x, want %016x", st.Fingerprint, s.fingerprint)
	}
	for _, i := range st.Pending {
		if i < 0 || i >= len(s.calcs) {
			return errors.Wrapf(ErrSnapshotMismatch, "pending calculator %d out of range", i)
		}
	}

	s.Detach()
	s.dirty.drain(func(*orderedCalc) {})
	s.pending.Clear()
	for _, lvl := range s.levels {
		lvl.pending.Clear()
		for _, grp := range lvl.groups {
			grp.orders.Clear()
			for _, slots := range grp.slots {
				clear(slots)
			}
		}
	}
	for _, c := range s.calcs {
		c.dirty.Store(false)
		c.slotted = false
	}

	for _, i := range st.Pending {
		s.occupy(s.calcs[i])
	}
	s.attach()

	s.log.WithField("pending", len(st.Pending)).Debug("simulator restored")
	return nil
}

// fingerprint hashes the coordinate of every calculator.
func fingerprint(coords []Coordinate) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 8*4)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(coords)))
	d.Write(buf)
	for _, c := range coords {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Priority))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Group))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Order))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(c.Number))
		d.Write(buf)
	}
	return d.Sum64()
}
