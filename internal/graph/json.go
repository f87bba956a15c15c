package graph

import (
	"encoding/json"
	"fmt"
)

// unitJSON is the persisted form of a Unit. Status is written for
// inspectability only; loading re-derives it through the resolver, so an
// out-of-band edit to a saved file can never plant a drifted status.
type unitJSON struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Dependencies []string `json:"dependencies"`
	Status       string   `json:"status"`
	SubGraph     *Graph   `json:"subGraph,omitempty"`
}

type graphJSON struct {
	Units    []unitJSON `json:"units"`
	Links    []Link     `json:"links"`
	Glossary []Term     `json:"glossary,omitempty"`
}

// MarshalJSON writes units in insertion order, the materialized link
// list, and the glossary.
func (g *Graph) MarshalJSON() ([]byte, error) {
	out := graphJSON{
		Units:    make([]unitJSON, 0, len(g.order)),
		Links:    g.links,
		Glossary: g.glossary,
	}
	for _, id := range g.order {
		u := g.nodes[id]
		deps := u.Dependencies
		if deps == nil {
			deps = []string{}
		}
		out.Units = append(out.Units, unitJSON{
			ID:           u.ID,
			Title:        u.Title,
			Description:  u.Description,
			Dependencies: deps,
			Status:       u.Status.String(),
			SubGraph:     u.SubGraph,
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the graph through Build, so a persisted graph
// that violates any structural invariant is rejected rather than loaded.
// Persisted links are ignored and re-derived from dependencies.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var in graphJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	units := make([]Unit, 0, len(in.Units))
	for _, uj := range in.Units {
		units = append(units, Unit{
			ID:           uj.ID,
			Title:        uj.Title,
			Description:  uj.Description,
			Dependencies: uj.Dependencies,
			Status:       ParseStatus(uj.Status),
			SubGraph:     uj.SubGraph,
		})
	}

	built, err := Build(units, in.Glossary)
	if err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	*g = *built
	return nil
}
