package graph

import (
	"errors"
	"fmt"
)

// ErrNotFound reports an operation referencing a unit id absent from the
// targeted graph. The graph and completed-set are left untouched.
var ErrNotFound = errors.New("unit not found")

// Outcome describes the result of marking a unit complete.
type Outcome struct {
	// Next is the first unit, in insertion order, that is Available after
	// the completion. Empty when nothing is available.
	Next string

	// AlreadyDone is true when the unit was completed before this call.
	// Repeats are idempotent no-ops, not errors: duplicate events must
	// never corrupt the completed-set.
	AlreadyDone bool

	// Leaf is true when the completed unit has no dependents. The caller
	// may follow up with an expansion request.
	Leaf bool
}

// Complete marks the unit with the given id complete: it adds the id to
// the completed-set, re-resolves every unit's status, and suggests the
// next unit to open. The completed-set only ever grows; statuses of
// already-completed units never change.
func Complete(g *Graph, completed map[string]bool, id string) (Outcome, error) {
	if !g.Has(id) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	out := Outcome{
		AlreadyDone: completed[id],
		Leaf:        g.IsLeaf(id),
	}
	completed[id] = true
	g.Resolve(completed, "")
	out.Next = g.FirstAvailable(completed)
	return out, nil
}
