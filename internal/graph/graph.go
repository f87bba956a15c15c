package graph

// Graph holds a DAG of learning units with dependency edges.
// Node insertion order is preserved so display and "next unit" selection
// are deterministic.
type Graph struct {
	order    []string
	nodes    map[string]*Unit
	links    []Link
	glossary []Term
}

// Build constructs a graph from a slice of units, validating every
// structural invariant (unique ids, referential closure, acyclicity)
// before any state exists. New units start with statuses resolved against
// an empty completed-set: roots Available, everything else Locked.
func Build(units []Unit, glossary []Term) (*Graph, error) {
	if err := validateUnits(units); err != nil {
		return nil, err
	}

	g := &Graph{
		order:    make([]string, 0, len(units)),
		nodes:    make(map[string]*Unit, len(units)),
		glossary: glossary,
	}
	for i := range units {
		u := units[i]
		g.order = append(g.order, u.ID)
		g.nodes[u.ID] = &u
	}
	g.links = deriveLinks(units)
	g.Resolve(nil, "")
	return g, nil
}

// deriveLinks materializes one edge per (dependency → unit) pair,
// in unit insertion order.
func deriveLinks(units []Unit) []Link {
	var links []Link
	for i := range units {
		for _, dep := range units[i].Dependencies {
			links = append(links, Link{Source: dep, Target: units[i].ID})
		}
	}
	return links
}

// Unit returns the unit with the given id.
func (g *Graph) Unit(id string) (*Unit, bool) {
	u, ok := g.nodes[id]
	return u, ok
}

// Has reports whether a unit with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Units returns all units in insertion order. The pointers alias the
// graph's own nodes; callers treat them as read-only outside mutations.
func (g *Graph) Units() []*Unit {
	out := make([]*Unit, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// UnitIDs returns all unit ids in insertion order.
func (g *Graph) UnitIDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Links returns the materialized edge list.
func (g *Graph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// Glossary returns the graph's term/definition pairs.
func (g *Graph) Glossary() []Term {
	out := make([]Term, len(g.glossary))
	copy(out, g.glossary)
	return out
}

// Len returns the number of units in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// IsLeaf reports whether no other unit depends on the given id.
// Completing a leaf means the learner has exhausted the generated
// curriculum at that branch; the caller may then request expansion.
func (g *Graph) IsLeaf(id string) bool {
	for _, l := range g.links {
		if l.Source == id {
			return false
		}
	}
	return true
}

// Dependents returns the ids of units that directly depend on id,
// in insertion order.
func (g *Graph) Dependents(id string) []string {
	var out []string
	for _, l := range g.links {
		if l.Source == id {
			out = append(out, l.Target)
		}
	}
	return out
}

// addUnits appends pre-validated units and their edges. Callers must have
// validated the combined node set first; this commit step cannot fail,
// which is what makes Expand all-or-nothing.
func (g *Graph) addUnits(units []Unit) {
	for i := range units {
		u := units[i]
		g.order = append(g.order, u.ID)
		g.nodes[u.ID] = &u
		for _, dep := range u.Dependencies {
			g.links = append(g.links, Link{Source: dep, Target: u.ID})
		}
	}
}
