package journey

import (
	"encoding/json"
	"fmt"

	"github.com/compasslearn/compass/internal/graph"
)

// Record is the persisted form of a session. Unit statuses inside
// rootGraph are written for inspectability but never trusted on load;
// statuses are re-derived from completedUnitIds through the resolver.
type Record struct {
	ID                string       `json:"id"`
	Context           string       `json:"context"`
	RootGraph         *graph.Graph `json:"rootGraph"`
	CompletedUnitIDs  []string     `json:"completedUnitIds"`
	CurrentSubGraphID *string      `json:"currentSubGraphId"`
}

// Snapshot captures the session in its persisted layout.
func (s *Session) Snapshot() Record {
	rec := Record{
		ID:               s.ID,
		Context:          s.Context,
		RootGraph:        s.Root,
		CompletedUnitIDs: s.Completed.Keys(),
	}
	if s.View != "" {
		view := s.View
		rec.CurrentSubGraphID = &view
	}
	return rec
}

// Marshal serializes the session.
func (s *Session) Marshal() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// Load rebuilds a session from its persisted form. The root graph and
// every sub-graph are re-validated structurally, and every status is
// re-derived from the completed-set. Persisted status fields are
// ignored, so an out-of-band edit cannot plant a drifted status.
func Load(data []byte) (*Session, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec.RootGraph == nil {
		return nil, fmt.Errorf("load session %q: missing root graph", rec.ID)
	}

	s := &Session{
		ID:        rec.ID,
		Context:   rec.Context,
		Root:      rec.RootGraph,
		Completed: make(CompletedSet, len(rec.CompletedUnitIDs)),
	}
	for _, key := range rec.CompletedUnitIDs {
		s.Completed[key] = true
	}

	if rec.CurrentSubGraphID != nil {
		id := *rec.CurrentSubGraphID
		if u, ok := s.Root.Unit(id); ok && u.SubGraph != nil {
			s.View = id
		}
		// A view pointing at a unit that no longer owns a sub-graph
		// falls back to root rather than failing the load.
	}

	s.Root.Resolve(s.Completed.View(""), "")
	for _, u := range s.Root.Units() {
		if u.SubGraph != nil {
			u.SubGraph.Resolve(s.Completed.View(u.ID), "")
		}
	}
	return s, nil
}
