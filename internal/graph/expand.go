package graph

import (
	"errors"
	"fmt"
)

// ErrNoSuggestions reports that the generation collaborator returned
// nothing to expand with. The graph is left unmodified.
var ErrNoSuggestions = errors.New("no follow-on suggestions")

// ErrParentNotCompleted reports an expansion attempt under a unit that
// is not yet completed. Minted units depend on their parent, so they
// would land Locked instead of Available.
var ErrParentNotCompleted = errors.New("unit not completed")

// Draft is an externally generated candidate for a new unit. Everything
// else about the unit (id, dependencies, edges, status) is minted here.
type Draft struct {
	Title       string
	Description string
}

// Expand appends one new unit per draft under a completed parent.
//
// Minted ids are "<parent>-<n>" with n the lowest counter not yet in use
// for that parent, so repeated expansions of the same parent keep
// counting upward and never collide with any existing id. Each new unit
// depends on exactly the parent, so new units resolve Available the
// moment they land.
//
// The append is all-or-nothing: every structural check runs against the
// combined node set before the first unit is committed, and a failure at
// any point leaves the graph exactly as it was.
func Expand(g *Graph, completed map[string]bool, parentID string, drafts []Draft) ([]string, error) {
	if !g.Has(parentID) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, parentID)
	}
	if !completed[parentID] {
		return nil, fmt.Errorf("%w: %q", ErrParentNotCompleted, parentID)
	}
	if len(drafts) == 0 {
		return nil, ErrNoSuggestions
	}

	taken := func(id string) bool { return g.Has(id) }
	units := make([]Unit, 0, len(drafts))
	ids := make([]string, 0, len(drafts))
	n := 1
	for _, d := range drafts {
		var id string
		for {
			id = fmt.Sprintf("%s-%d", parentID, n)
			n++
			if !taken(id) && !containsID(units, id) {
				break
			}
		}
		units = append(units, Unit{
			ID:           id,
			Title:        d.Title,
			Description:  d.Description,
			Dependencies: []string{parentID},
		})
		ids = append(ids, id)
	}

	// Guard: rechecks uniqueness and closure over existing + new units.
	combined := make([]Unit, 0, g.Len()+len(units))
	for _, u := range g.Units() {
		combined = append(combined, *u)
	}
	combined = append(combined, units...)
	if err := validateUnits(combined); err != nil {
		return nil, err
	}

	g.addUnits(units)
	g.Resolve(completed, "")
	return ids, nil
}

func containsID(units []Unit, id string) bool {
	for i := range units {
		if units[i].ID == id {
			return true
		}
	}
	return false
}
