package simulator

import (
	"fmt"
	"strings"

	"github.com/delaneyj/bitparty/logic"
	"github.com/pkg/errors"
)

// PairKind tells which side of a priority declaration a derived pair
// constrains.
type PairKind int

const (
	DisjunctReaders PairKind = iota
	DisjunctWriters
)

func (k PairKind) String() string {
	if k == DisjunctWriters {
		return "writers"
	}
	return "readers"
}

// NondisjunctReadersWritersError reports a priority declaration (High, Low)
// where the same calculators read (or write) both bits, so they would have
// to run both before and after themselves.
type NondisjunctReadersWritersError struct {
	Kind        PairKind
	High, Low   *logic.SignalBit
	Calculators []logic.Calculator
}

func (e *NondisjunctReadersWritersError) Error() string {
	return fmt.Sprintf("priority %s > %s: %s not disjunct, shared by %s",
		e.High.Name(), e.Low.Name(), e.Kind, calculatorNames(e.Calculators))
}

// Declaration is one (high, low) entry of a priority relation.
type Declaration struct {
	Kind      PairKind
	High, Low *logic.SignalBit
}

func (d Declaration) String() string {
	return d.High.Name() + " > " + d.Low.Name() + " (" + d.Kind.String() + ")"
}

// DirectedPriorityCycleError reports priority declarations that can not be
// ordered because they form a directed cycle.
type DirectedPriorityCycleError struct {
	Pairs []Declaration
}

func (e *DirectedPriorityCycleError) Error() string {
	parts := make([]string, len(e.Pairs))
	for i, p := range e.Pairs {
		parts[i] = p.String()
	}
	return "directed priority cycle between " + strings.Join(parts, ", ")
}

// ErrSnapshotMismatch is returned by Restore when a State was taken from a
// differently shaped simulator.
var ErrSnapshotMismatch = errors.New("snapshot does not match simulator layout")

func calculatorName(c logic.Calculator) string {
	if n, ok := c.(logic.Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", c)
}

func calculatorNames(cs []logic.Calculator) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = calculatorName(c)
	}
	return strings.Join(names, ", ")
}
