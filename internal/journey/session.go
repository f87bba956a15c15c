package journey

import (
	"errors"
	"fmt"

	"github.com/compasslearn/compass/internal/graph"
)

var (
	// ErrNoSubGraph reports entering deep study on a unit that has no
	// materialized sub-graph yet.
	ErrNoSubGraph = errors.New("unit has no sub-graph")

	// ErrMilestoneIncomplete reports a direct completion attempt on a
	// unit whose sub-graph is not yet fully completed. Milestone units
	// complete only by roll-up.
	ErrMilestoneIncomplete = errors.New("sub-graph not fully completed")
)

// Session is one learning journey: a root graph, a completed-set, and a
// current-view pointer. Sessions are fully independent of one another;
// nothing here is shared.
type Session struct {
	ID      string
	Context string // the topic the journey was generated from

	Root      *graph.Graph
	Completed CompletedSet

	// View is "" while the root graph is in view, otherwise the id of
	// the unit whose sub-graph is being studied.
	View string

	// Active is the id of the unit currently open in the UI, within the
	// current view. Overlay only; never persisted.
	Active string

	// Revision increments on every committed mutation. In-flight
	// generation results are tagged with the revision they were issued
	// against and dropped if it has moved on.
	Revision uint64
}

// New creates a session owning the given root graph.
func New(id, context string, root *graph.Graph) *Session {
	s := &Session{
		ID:        id,
		Context:   context,
		Root:      root,
		Completed: make(CompletedSet),
	}
	s.resolveCurrent()
	return s
}

// CurrentGraph returns the graph the session is viewing: the root graph,
// or the sub-graph of the unit named by View.
func (s *Session) CurrentGraph() *graph.Graph {
	if s.View == "" {
		return s.Root
	}
	if u, ok := s.Root.Unit(s.View); ok && u.SubGraph != nil {
		return u.SubGraph
	}
	// Dangling view pointer falls back to root.
	return s.Root
}

// resolveCurrent re-derives statuses for the graph in view.
func (s *Session) resolveCurrent() {
	s.CurrentGraph().Resolve(s.Completed.View(s.View), s.Active)
}

// SetActive marks a unit as the one open in the UI, within the current
// view. An empty id clears the overlay.
func (s *Session) SetActive(id string) error {
	if id != "" && !s.CurrentGraph().Has(id) {
		return fmt.Errorf("%w: %q", graph.ErrNotFound, id)
	}
	s.Active = id
	s.resolveCurrent()
	return nil
}

// CompleteResult describes one completion event, including any sub-graph
// roll-up it triggered.
type CompleteResult struct {
	graph.Outcome

	// RolledUp is true when this completion finished the last unit of a
	// sub-graph, completing its parent milestone and returning the view
	// to the root graph.
	RolledUp bool

	// Milestone is the id of the parent unit completed by roll-up.
	Milestone string
}

// Complete marks a unit in the current view complete.
//
// In a sub-graph view, finishing the final unit rolls up: the parent
// unit's id enters the root completed-set, the view returns to root, and
// root statuses re-resolve so newly unlocked units become Available.
// That roll-up is the only way a milestone unit's id can enter the set.
func (s *Session) Complete(id string) (CompleteResult, error) {
	g := s.CurrentGraph()
	scope := s.View

	if scope == "" {
		if u, ok := g.Unit(id); ok && u.SubGraph != nil && !u.SubGraph.AllCompleted(s.Completed.View(id)) {
			return CompleteResult{}, fmt.Errorf("%w: %q", ErrMilestoneIncomplete, id)
		}
	}

	view := s.Completed.View(scope)
	out, err := graph.Complete(g, view, id)
	if err != nil {
		return CompleteResult{}, err
	}

	res := CompleteResult{Outcome: out}
	if out.AlreadyDone {
		// Idempotent repeat: nothing committed, revision untouched.
		s.resolveCurrent()
		return res, nil
	}

	s.Completed.Add(scope, id)
	if s.Active == id {
		s.Active = ""
	}
	s.Revision++

	if scope != "" && g.AllCompleted(view) {
		s.Completed.Add("", scope)
		res.RolledUp = true
		res.Milestone = scope
		s.View = ""
		s.Active = ""
		s.Revision++
	}
	s.resolveCurrent()
	return res, nil
}

// Expand appends externally generated follow-on units under a unit of
// the current view. All-or-nothing, per graph.Expand.
func (s *Session) Expand(parentID string, drafts []graph.Draft) ([]string, error) {
	g := s.CurrentGraph()
	ids, err := graph.Expand(g, s.Completed.View(s.View), parentID, drafts)
	if err != nil {
		return nil, err
	}
	s.Revision++
	s.resolveCurrent()
	return ids, nil
}

// AttachSubGraph hands ownership of a freshly materialized sub-graph to
// the named root unit. Attaching is rejected when the unit already owns
// one, so a re-entrant materialization can never clobber progress.
func (s *Session) AttachSubGraph(unitID string, sub *graph.Graph) error {
	u, ok := s.Root.Unit(unitID)
	if !ok {
		return fmt.Errorf("%w: %q", graph.ErrNotFound, unitID)
	}
	if u.SubGraph != nil {
		return fmt.Errorf("unit %q already has a sub-graph", unitID)
	}
	u.SubGraph = sub
	sub.Resolve(s.Completed.View(unitID), "")
	s.Revision++
	return nil
}

// EnterSubGraph switches the view to a root unit's sub-graph.
func (s *Session) EnterSubGraph(unitID string) error {
	u, ok := s.Root.Unit(unitID)
	if !ok {
		return fmt.Errorf("%w: %q", graph.ErrNotFound, unitID)
	}
	if u.SubGraph == nil {
		return fmt.Errorf("%w: %q", ErrNoSubGraph, unitID)
	}
	s.View = unitID
	s.Active = ""
	s.Revision++
	s.resolveCurrent()
	return nil
}

// ExitSubGraph returns the view to the root graph ("go back"). No-op
// when already at root.
func (s *Session) ExitSubGraph() {
	if s.View == "" {
		return
	}
	s.View = ""
	s.Active = ""
	s.Revision++
	s.resolveCurrent()
}

// StatusOf returns a unit's status within the current view.
func (s *Session) StatusOf(unitID string) (graph.Status, error) {
	u, ok := s.CurrentGraph().Unit(unitID)
	if !ok {
		return graph.StatusLocked, fmt.Errorf("%w: %q", graph.ErrNotFound, unitID)
	}
	return u.Status, nil
}

// Progress counts completed units over the graph currently in view.
// Sub-graph units count only while their sub-graph is the active view.
func (s *Session) Progress() (done, total int) {
	return s.CurrentGraph().Progress(s.Completed.View(s.View))
}
