package graph

// Statuses computes the status of every unit from the completed-set,
// with active (may be empty) naming the unit currently open in the UI.
// It is pure: same graph, same completed-set and same active id give the same
// result for every unit.
//
// Rules, in precedence order:
//   - id in completed           → Completed (the active overlay never shadows it)
//   - id == active              → Active
//   - every dependency in completed → Available (vacuously true for roots)
//   - otherwise                 → Locked
func Statuses(g *Graph, completed map[string]bool, active string) map[string]Status {
	out := make(map[string]Status, len(g.order))
	for _, id := range g.order {
		out[id] = statusOf(g.nodes[id], completed, active)
	}
	return out
}

func statusOf(u *Unit, completed map[string]bool, active string) Status {
	if completed[u.ID] {
		return StatusCompleted
	}
	if u.ID == active {
		return StatusActive
	}
	for _, dep := range u.Dependencies {
		if !completed[dep] {
			return StatusLocked
		}
	}
	return StatusAvailable
}

// Resolve recomputes and stores every unit's Status from the
// completed-set. This is the only place unit statuses are written;
// every mutation ends with a Resolve so stored statuses never drift
// from what Statuses would report.
func (g *Graph) Resolve(completed map[string]bool, active string) {
	for _, id := range g.order {
		u := g.nodes[id]
		u.Status = statusOf(u, completed, active)
	}
}

// FirstAvailable returns the id of the first unit, in insertion order,
// whose status resolves to Available against the completed-set.
// Returns "" if no unit is available.
func (g *Graph) FirstAvailable(completed map[string]bool) string {
	for _, id := range g.order {
		if statusOf(g.nodes[id], completed, "") == StatusAvailable {
			return id
		}
	}
	return ""
}

// AllCompleted reports whether every unit in the graph is in the
// completed-set. Vacuously false for an empty graph.
func (g *Graph) AllCompleted(completed map[string]bool) bool {
	if len(g.order) == 0 {
		return false
	}
	for _, id := range g.order {
		if !completed[id] {
			return false
		}
	}
	return true
}

// Progress counts completed units against the graph total.
func (g *Graph) Progress(completed map[string]bool) (done, total int) {
	for _, id := range g.order {
		if completed[id] {
			done++
		}
	}
	return done, len(g.order)
}
