package journey

import (
	"context"

	"github.com/compasslearn/compass/internal/graph"
)

// DepRow is one prerequisite of a unit, resolved to its title.
type DepRow struct {
	Title string
	Done  bool
}

// UnitRow is one unit of a view, flattened for rendering.
type UnitRow struct {
	ID          string
	Title       string
	Description string
	Status      graph.Status

	HasSubGraph bool
	SubDone     int
	SubTotal    int

	Requires []DepRow
	Unlocks  []string
}

// ViewSnapshot is an immutable copy of everything a renderer needs from
// one session's current view. It shares no memory with the live session,
// so it can be read freely while mutations run on the session behind the
// service's lock.
type ViewSnapshot struct {
	SessionID string
	Context   string

	// View is "" for the root graph, otherwise the id of the unit whose
	// sub-graph is in view; ViewTitle is that unit's title.
	View      string
	ViewTitle string

	// Done/Total cover the view in the snapshot; RootDone/RootTotal
	// always cover the root graph.
	Done      int
	Total     int
	RootDone  int
	RootTotal int

	Units    []UnitRow
	Glossary []graph.Term
}

// UnitByID returns the row for a unit id, or nil.
func (v *ViewSnapshot) UnitByID(id string) *UnitRow {
	for i := range v.Units {
		if v.Units[i].ID == id {
			return &v.Units[i]
		}
	}
	return nil
}

// Snapshot copies the session's current view under its mutation lock.
// Renderers hold the copy instead of the live session, so an in-flight
// completion or expansion can never be observed half-applied.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (ViewSnapshot, error) {
	h, err := s.handle(ctx, sessionID)
	if err != nil {
		return ViewSnapshot{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return snapshotView(h.sess), nil
}

func snapshotView(s *Session) ViewSnapshot {
	g := s.CurrentGraph()
	completed := s.Completed.View(s.View)

	snap := ViewSnapshot{
		SessionID: s.ID,
		Context:   s.Context,
		View:      s.View,
	}
	if s.View != "" {
		if u, ok := s.Root.Unit(s.View); ok {
			snap.ViewTitle = u.Title
		}
	}
	snap.Done, snap.Total = g.Progress(completed)
	snap.RootDone, snap.RootTotal = s.Root.Progress(s.Completed.View(""))

	titleOf := func(id string) string {
		if u, ok := g.Unit(id); ok {
			return u.Title
		}
		return id
	}

	snap.Units = make([]UnitRow, 0, g.Len())
	for _, u := range g.Units() {
		row := UnitRow{
			ID:          u.ID,
			Title:       u.Title,
			Description: u.Description,
			Status:      u.Status,
			HasSubGraph: u.SubGraph != nil,
		}
		if u.SubGraph != nil {
			row.SubDone, row.SubTotal = u.SubGraph.Progress(s.Completed.View(u.ID))
		}
		for _, dep := range u.Dependencies {
			row.Requires = append(row.Requires, DepRow{
				Title: titleOf(dep),
				Done:  completed[dep],
			})
		}
		for _, dep := range g.Dependents(u.ID) {
			row.Unlocks = append(row.Unlocks, titleOf(dep))
		}
		snap.Units = append(snap.Units, row)
	}

	snap.Glossary = append([]graph.Term(nil), g.Glossary()...)
	return snap
}
